package types

import (
	"github.com/holiman/uint256"

	"github.com/cfx2030/cfx2030/crypto"
)

// TxShortID is a shorter id for transactions in compact blocks.
type TxShortID = uint64

// TxPropagateID identifies a transaction during propagation.
type TxPropagateID = uint32

// ChainIDParams holds the parameters that determine the chain id for a given
// epoch number.
type ChainIDParams struct {
	// Preconfigured chain id.
	ChainID uint32
}

// GetChainID returns the chain id in effect at the given epoch number.
func (p ChainIDParams) GetChainID(epochNumber uint64) uint32 {
	return p.ChainID
}

// Action selects what a transaction acts on. The zero value is contract
// creation; a non-nil Call is a call to (or transfer into) that address.
type Action struct {
	Call *Address
}

// ActionCreate returns the contract-creation action.
func ActionCreate() Action { return Action{} }

// ActionCall returns a call action targeting addr.
func ActionCall(addr Address) Action { return Action{Call: &addr} }

// IsCreate reports whether the action is contract creation.
func (a Action) IsCreate() bool { return a.Call == nil }

// Transaction is the unsigned transaction payload. It carries no signature
// and caches nothing: Hash is recomputed from the fields on every call.
// Fields are set by the caller at construction and must not be mutated once
// the transaction has been signed.
type Transaction struct {
	// Nonce.
	Nonce uint256.Int
	// Gas price.
	GasPrice uint256.Int
	// Gas paid up front for transaction execution.
	Gas uint256.Int
	// Action, either contract creation or a call.
	Action Action
	// Transferred value.
	Value uint256.Int
	// Maximum storage increase in this execution.
	StorageLimit uint64
	// The epoch height of the transaction. A transaction can only be packed
	// within TransactionEpochBound epochs of this height.
	EpochHeight uint64
	// The chain id of the transaction.
	ChainID uint32
	// Transaction data.
	Data []byte
}

// Hash returns the digest of the canonical encoding of the unsigned payload.
// This is the message that gets signed; it is distinct from the transaction
// identity hash, which is computed over the signed form.
func (tx *Transaction) Hash() Hash {
	return keccakHash(tx.EncodeRLP())
}

// Sign signs the transaction with the given secret and returns the fully
// attributed result, with the public key recovered from the fresh signature.
// A valid secret and digest always yield a valid, self-consistent signature;
// a failure here is a broken invariant, not a runtime condition, and panics.
func (tx *Transaction) Sign(secret *crypto.Secret) *SignedTransaction {
	sig, err := crypto.Sign(secret, tx.Hash().Bytes())
	if err != nil {
		panic("types: valid secret and digest must produce a signature: " + err.Error())
	}
	t := tx.WithSignature(sig)
	public, err := t.RecoverPublic()
	if err != nil {
		panic("types: freshly produced signature must be recoverable: " + err.Error())
	}
	return NewSignedTransaction(public, t)
}

// Sentinel signature attached by FakeSign. It exists only so that IsUnsigned
// (r == 0 and s == 0) reads false for fake-signed values; it is not a real
// signature and must never be treated as verifiable. If the unsigned
// detection rule ever changes, this sentinel must change with it.
var (
	fakeSignatureR = uint256.NewInt(1)
	fakeSignatureS = uint256.NewInt(1)
)

// FakeSign binds the given sender to the transaction without any
// cryptography. No public key is recorded, so the result can never pass
// signature verification; it is only for callers that already trust the
// sender out-of-band, such as replay of previously authenticated
// transactions.
func (tx *Transaction) FakeSign(from Address) *SignedTransaction {
	t := TransactionWithSignature{
		TransactionWithSignatureSerializePart: TransactionWithSignatureSerializePart{
			Unsigned: *tx,
			V:        0,
			R:        *fakeSignatureR,
			S:        *fakeSignatureS,
		},
	}
	t.computeHash()
	return &SignedTransaction{
		TransactionWithSignature: t,
		sender:                   from,
	}
}

// WithSignature attaches an externally obtained signature to the transaction
// and caches the resulting identity hash and encoded size.
func (tx *Transaction) WithSignature(sig crypto.Signature) *TransactionWithSignature {
	t := &TransactionWithSignature{
		TransactionWithSignatureSerializePart: TransactionWithSignatureSerializePart{
			Unsigned: *tx,
			V:        sig.V(),
			R:        *sig.R(),
			S:        *sig.S(),
		},
	}
	t.computeHash()
	return t
}

// MemorySize approximates the heap footprint of the transaction; the payload
// bytes dominate.
func (tx *Transaction) MemorySize() int { return len(tx.Data) }

// TransactionWithSignatureSerializePart is the exact byte layout that is
// hashed to produce transaction identity once signed: the unsigned payload
// followed by the signature components.
type TransactionWithSignatureSerializePart struct {
	// Plain unsigned transaction.
	Unsigned Transaction
	// The V field of the signature: the recovery id.
	V byte
	// The R field of the signature.
	R uint256.Int
	// The S field of the signature.
	S uint256.Int
}

// IsUnsigned reports whether the signature is empty.
func (p *TransactionWithSignatureSerializePart) IsUnsigned() bool {
	return p.R.IsZero() && p.S.IsZero()
}

// Signature assembles the compact signature from the r, s, v fields.
func (p *TransactionWithSignatureSerializePart) Signature() crypto.Signature {
	return crypto.NewSignature(&p.R, &p.S, p.V)
}

// CheckLowS fails if s lies in the upper half of the curve order. High-s
// signatures are malleable and rejected independently of validity.
func (p *TransactionWithSignatureSerializePart) CheckLowS() error {
	sig := p.Signature()
	if !sig.IsLowS() {
		return crypto.ErrInvalidSignature
	}
	return nil
}

// TransactionWithSignature is a transaction carrying signature bytes whose
// sender has not been established. The identity hash and encoded size are
// caches populated once at construction and never recomputed implicitly.
type TransactionWithSignature struct {
	TransactionWithSignatureSerializePart
	hash    Hash
	rlpSize int
}

// NewUnsignedTransactionWithSignature wraps an unsigned payload with an empty
// signature. The hash cache is left zero, matching the not-yet-signed state.
func NewUnsignedTransactionWithSignature(tx Transaction) *TransactionWithSignature {
	return &TransactionWithSignature{
		TransactionWithSignatureSerializePart: TransactionWithSignatureSerializePart{
			Unsigned: tx,
		},
	}
}

// computeHash populates the hash and size caches from the serialize part.
func (t *TransactionWithSignature) computeHash() {
	enc := t.EncodeRLP()
	t.hash = keccakHash(enc)
	t.rlpSize = len(enc)
}

// Hash returns the cached transaction identity hash: the digest of the
// canonical encoding of the serialize part.
func (t *TransactionWithSignature) Hash() Hash { return t.hash }

// RlpSize returns the canonical encoded length, recomputing it when the
// cache was never populated.
func (t *TransactionWithSignature) RlpSize() int {
	if t.rlpSize != 0 {
		return t.rlpSize
	}
	return len(t.EncodeRLP())
}

// RecoverPublic recovers the signer's public key from the signature and the
// unsigned payload hash.
func (t *TransactionWithSignature) RecoverPublic() (Public, error) {
	pub, err := crypto.Recover(t.Signature(), t.Unsigned.Hash().Bytes())
	if err != nil {
		return Public{}, err
	}
	return BytesToPublic(pub), nil
}

// SignedTransaction is a transaction with an established sender and,
// when real cryptography produced it, the recovered public key.
type SignedTransaction struct {
	TransactionWithSignature
	sender Address
	public *Public
}

// NewSignedTransaction attributes t to the given public key. An unsigned t
// can never be attributed to a real identity: it is forced to the reserved
// unsigned sender and the public key is discarded.
func NewSignedTransaction(public Public, t *TransactionWithSignature) *SignedTransaction {
	if t.IsUnsigned() {
		return &SignedTransaction{
			TransactionWithSignature: *t,
			sender:                   UnsignedSender,
		}
	}
	p := public
	return &SignedTransaction{
		TransactionWithSignature: *t,
		sender:                   PublicToAddress(public),
		public:                   &p,
	}
}

// NewUnsignedSignedTransaction wraps t with the reserved unsigned sender and
// no public key, without inspecting the signature.
func NewUnsignedSignedTransaction(t *TransactionWithSignature) *SignedTransaction {
	return &SignedTransaction{
		TransactionWithSignature: *t,
		sender:                   UnsignedSender,
	}
}

// SetPublic replaces the cached public key and re-derives the sender.
// This is the only permitted mutation after construction and must not race
// with readers.
func (st *SignedTransaction) SetPublic(public Public) {
	st.sender = PublicToAddress(public)
	st.public = &public
}

// Sender returns the transaction sender.
func (st *SignedTransaction) Sender() Address { return st.sender }

// PublicKey returns the cached public key, or nil when none was recovered.
func (st *SignedTransaction) PublicKey() *Public { return st.public }

// Nonce returns the payload nonce.
func (st *SignedTransaction) Nonce() *uint256.Int { return &st.Unsigned.Nonce }

// Gas returns the payload gas.
func (st *SignedTransaction) Gas() *uint256.Int { return &st.Unsigned.Gas }

// GasPrice returns the payload gas price.
func (st *SignedTransaction) GasPrice() *uint256.Int { return &st.Unsigned.GasPrice }

// GasLimit returns the payload gas, under its gas-limit reading.
func (st *SignedTransaction) GasLimit() *uint256.Int { return &st.Unsigned.Gas }

// Value returns the transferred value.
func (st *SignedTransaction) Value() *uint256.Int { return &st.Unsigned.Value }

// Data returns the payload data.
func (st *SignedTransaction) Data() []byte { return st.Unsigned.Data }

// MemorySize approximates the heap footprint of the transaction.
func (st *SignedTransaction) MemorySize() int { return st.Unsigned.MemorySize() }

// VerifyPublic checks the cached public key against the signature.
//
// With no cached key it returns false with no error: the transaction is not
// yet verified. With skip true the cached key is trusted outright, the fast
// path for values already verified and persisted as trusted. With skip false
// the key is re-validated against the signature over the unsigned payload
// hash; anything short of a clean match fails with a signature error.
func (st *SignedTransaction) VerifyPublic(skip bool) (bool, error) {
	if st.public == nil {
		return false, nil
	}
	if skip {
		return true, nil
	}
	ok, err := crypto.VerifyPublic(st.public[:], st.Signature(), st.Unsigned.Hash().Bytes())
	if err != nil {
		return false, err
	}
	if !ok {
		return false, crypto.ErrInvalidSignature
	}
	return true, nil
}
