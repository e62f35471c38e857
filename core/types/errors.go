package types

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// Errors concerning transaction processing. Parameterless conditions are
// sentinel values usable with errors.Is; parameterized ones are typed so
// callers can inspect the offending quantities with errors.As.

var (
	// ErrAlreadyImported means the transaction is already in the queue.
	ErrAlreadyImported = errors.New(transactionError("Already imported"))
	// ErrStale means the state already has a higher nonce.
	ErrStale = errors.New(transactionError("No longer valid"))
	// ErrTooCheapToReplace means a transaction with the same sender and nonce
	// but a higher gas price is already queued.
	ErrTooCheapToReplace = errors.New(transactionError("Gas price too low to replace"))
	// ErrLimitReached means the queue is full.
	ErrLimitReached = errors.New(transactionError("Transaction limit reached"))
	// ErrTooBig means the transaction exceeds the size cap.
	ErrTooBig = errors.New(transactionError("Transaction too big"))
)

func transactionError(msg string) string {
	return "Transaction error (" + msg + ")"
}

// ChainIDMismatchError means the transaction names a different chain than the
// network it was submitted to.
type ChainIDMismatchError struct {
	Expected uint32
	Got      uint32
}

func (e *ChainIDMismatchError) Error() string {
	return transactionError(fmt.Sprintf("Chain id mismatch, expected %d, got %d", e.Expected, e.Got))
}

// EpochHeightOutOfBoundError means the transaction's epoch height is too far
// from the packing block's height.
type EpochHeightOutOfBoundError struct {
	BlockHeight           uint64
	Set                   uint64
	TransactionEpochBound uint64
}

func (e *EpochHeightOutOfBoundError) Error() string {
	return transactionError(fmt.Sprintf(
		"EpochHeight out of bound:block_height %d, transaction epoch_height %d, transaction_epoch_bound %d",
		e.BlockHeight, e.Set, e.TransactionEpochBound))
}

// NotEnoughBaseGasError means the gas paid is below the intrinsic cost.
type NotEnoughBaseGasError struct {
	Required *uint256.Int
	Got      *uint256.Int
}

func (e *NotEnoughBaseGasError) Error() string {
	return transactionError(fmt.Sprintf("Transaction gas %v less than intrinsic gas %v", e.Got, e.Required))
}

// InsufficientGasPriceError means the gas price is below the threshold.
type InsufficientGasPriceError struct {
	Minimal *uint256.Int
	Got     *uint256.Int
}

func (e *InsufficientGasPriceError) Error() string {
	return transactionError(fmt.Sprintf("Insufficient gas price. Min=%v, Given=%v", e.Minimal, e.Got))
}

// InsufficientGasError means the gas is below the minimal gas requirement.
type InsufficientGasError struct {
	Minimal *uint256.Int
	Got     *uint256.Int
}

func (e *InsufficientGasError) Error() string {
	return transactionError(fmt.Sprintf("Insufficient gas. Min=%v, Given=%v", e.Minimal, e.Got))
}

// InsufficientBalanceError means the sender cannot cover the up-front cost.
// Cost is gas*gasPrice+value and can overflow 256 bits, hence big.Int.
type InsufficientBalanceError struct {
	Balance *big.Int
	Cost    *big.Int
}

func (e *InsufficientBalanceError) Error() string {
	return transactionError(fmt.Sprintf("Insufficient balance for transaction. Balance=%v, Cost=%v", e.Balance, e.Cost))
}

// GasLimitExceededError means the gas exceeds the block gas limit share.
type GasLimitExceededError struct {
	Limit *uint256.Int
	Got   *uint256.Int
}

func (e *GasLimitExceededError) Error() string {
	return transactionError(fmt.Sprintf("Gas limit exceeded. Limit=%v, Given=%v", e.Limit, e.Got))
}

// InvalidGasLimitError means the gas falls outside the accepted bounds.
// Nil Min or Max marks that side as unbounded.
type InvalidGasLimitError struct {
	Min   *uint256.Int
	Max   *uint256.Int
	Found *uint256.Int
}

func (e *InvalidGasLimitError) Error() string {
	var bounds string
	switch {
	case e.Min != nil && e.Max != nil:
		bounds = fmt.Sprintf("Value %v out of bounds. Min=%v, Max=%v", e.Found, e.Min, e.Max)
	case e.Min != nil:
		bounds = fmt.Sprintf("Value %v out of bounds. Min=%v", e.Found, e.Min)
	case e.Max != nil:
		bounds = fmt.Sprintf("Value %v out of bounds. Max=%v", e.Found, e.Max)
	default:
		bounds = fmt.Sprintf("Value %v out of bounds", e.Found)
	}
	return transactionError("Invalid gas limit. " + bounds)
}

// InvalidSignatureError wraps a cryptographic verification failure.
type InvalidSignatureError struct {
	Reason string
}

func (e *InvalidSignatureError) Error() string {
	return transactionError(fmt.Sprintf("Transaction has invalid signature: %s.", e.Reason))
}

// InvalidRlpError wraps a decoding failure.
type InvalidRlpError struct {
	Reason string
}

func (e *InvalidRlpError) Error() string {
	return transactionError(fmt.Sprintf("Transaction has invalid RLP structure: %s.", e.Reason))
}

// SignatureError adapts a crypto-layer error into the transaction taxonomy.
func SignatureError(err error) error {
	return &InvalidSignatureError{Reason: err.Error()}
}

// RlpError adapts a codec-layer error into the transaction taxonomy.
func RlpError(err error) error {
	return &InvalidRlpError{Reason: err.Error()}
}
