package types

import (
	"bytes"
	"math"

	"github.com/cfx2030/cfx2030/rlp"
)

// Wire layout:
//
//	Transaction                 = [nonce, gasPrice, gas, action, value,
//	                               storageLimit, epochHeight, chainID, data]
//	SerializePart               = [Transaction, v, r, s]
//	SignedTransaction (storage) = [SerializePart, sender, publicOption]
//
// action is shape-polymorphic: the empty string for contract creation, a
// 20-byte string for a call. publicOption is the empty list for absent and a
// one-item list otherwise.

func appendAction(buf []byte, a Action) []byte {
	if a.Call == nil {
		return rlp.AppendBytes(buf, nil)
	}
	return rlp.AppendBytes(buf, a.Call[:])
}

func decodeAction(s *rlp.Stream) (Action, error) {
	b, err := s.Bytes()
	if err != nil {
		return Action{}, err
	}
	switch len(b) {
	case 0:
		return Action{}, nil
	case AddressLength:
		addr := BytesToAddress(b)
		return Action{Call: &addr}, nil
	default:
		return Action{}, rlp.ErrInvalidLength
	}
}

func (tx *Transaction) appendRLP(buf []byte) []byte {
	var payload []byte
	payload = rlp.AppendUint256(payload, &tx.Nonce)
	payload = rlp.AppendUint256(payload, &tx.GasPrice)
	payload = rlp.AppendUint256(payload, &tx.Gas)
	payload = appendAction(payload, tx.Action)
	payload = rlp.AppendUint256(payload, &tx.Value)
	payload = rlp.AppendUint64(payload, tx.StorageLimit)
	payload = rlp.AppendUint64(payload, tx.EpochHeight)
	payload = rlp.AppendUint64(payload, uint64(tx.ChainID))
	payload = rlp.AppendBytes(payload, tx.Data)
	return append(buf, rlp.WrapList(payload)...)
}

// EncodeRLP returns the canonical encoding of the unsigned payload.
func (tx *Transaction) EncodeRLP() []byte { return tx.appendRLP(nil) }

// decodeTransactionBody reads the nine payload fields from the stream.
func decodeTransactionBody(s *rlp.Stream) (Transaction, error) {
	var tx Transaction
	if _, err := s.List(); err != nil {
		return tx, err
	}
	nonce, err := s.Uint256()
	if err != nil {
		return tx, err
	}
	tx.Nonce = *nonce
	gasPrice, err := s.Uint256()
	if err != nil {
		return tx, err
	}
	tx.GasPrice = *gasPrice
	gas, err := s.Uint256()
	if err != nil {
		return tx, err
	}
	tx.Gas = *gas
	if tx.Action, err = decodeAction(s); err != nil {
		return tx, err
	}
	value, err := s.Uint256()
	if err != nil {
		return tx, err
	}
	tx.Value = *value
	if tx.StorageLimit, err = s.Uint64(); err != nil {
		return tx, err
	}
	if tx.EpochHeight, err = s.Uint64(); err != nil {
		return tx, err
	}
	chainID, err := s.Uint64()
	if err != nil {
		return tx, err
	}
	if chainID > math.MaxUint32 {
		return tx, rlp.ErrUint64Range
	}
	tx.ChainID = uint32(chainID)
	data, err := s.Bytes()
	if err != nil {
		return tx, err
	}
	tx.Data = bytes.Clone(data)
	if err := s.ListEnd(); err != nil {
		return tx, err
	}
	return tx, nil
}

// DecodeTransaction decodes an unsigned payload. The input must consist of
// exactly one list; trailing bytes are rejected.
func DecodeTransaction(data []byte) (*Transaction, error) {
	_, rest, err := rlp.SplitList(data)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, rlp.ErrTrailingBytes
	}
	s := rlp.NewStream(data)
	tx, err := decodeTransactionBody(s)
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

// EncodeRLP returns the canonical encoding of the signed form. This is the
// pre-image of the transaction identity hash.
func (p *TransactionWithSignatureSerializePart) EncodeRLP() []byte {
	var payload []byte
	payload = p.Unsigned.appendRLP(payload)
	payload = rlp.AppendUint64(payload, uint64(p.V))
	payload = rlp.AppendUint256(payload, &p.R)
	payload = rlp.AppendUint256(payload, &p.S)
	return rlp.WrapList(payload)
}

// DecodeTransactionWithSignature decodes the signed form and seeds the hash
// and size caches from the raw input, so decoded values never re-encode to
// learn their own identity.
func DecodeTransactionWithSignature(data []byte) (*TransactionWithSignature, error) {
	content, rest, err := rlp.SplitList(data)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, rlp.ErrTrailingBytes
	}
	n, err := rlp.CountValues(content)
	if err != nil {
		return nil, err
	}
	if n != 4 {
		return nil, rlp.ErrIncorrectListLen
	}

	s := rlp.NewStream(data)
	if _, err := s.List(); err != nil {
		return nil, err
	}
	unsigned, err := decodeTransactionBody(s)
	if err != nil {
		return nil, err
	}
	v, err := s.Uint64()
	if err != nil {
		return nil, err
	}
	if v > math.MaxUint8 {
		return nil, rlp.ErrUint64Range
	}
	r, err := s.Uint256()
	if err != nil {
		return nil, err
	}
	sv, err := s.Uint256()
	if err != nil {
		return nil, err
	}
	if err := s.ListEnd(); err != nil {
		return nil, err
	}

	return &TransactionWithSignature{
		TransactionWithSignatureSerializePart: TransactionWithSignatureSerializePart{
			Unsigned: unsigned,
			V:        byte(v),
			R:        *r,
			S:        *sv,
		},
		hash:    keccakHash(data),
		rlpSize: len(data),
	}, nil
}

// EncodeRLP returns the storage encoding: the signed form plus the sender
// attribution and the optional recovered public key.
func (st *SignedTransaction) EncodeRLP() []byte {
	var payload []byte
	payload = append(payload, st.TransactionWithSignatureSerializePart.EncodeRLP()...)
	payload = rlp.AppendBytes(payload, st.sender[:])
	if st.public != nil {
		payload = append(payload, rlp.WrapList(rlp.AppendBytes(nil, st.public[:]))...)
	} else {
		payload = append(payload, rlp.WrapList(nil)...)
	}
	return rlp.WrapList(payload)
}

// DecodeSignedTransaction decodes the storage encoding. Sender and public
// key are taken from the input as-is; nothing is re-derived or re-verified.
func DecodeSignedTransaction(data []byte) (*SignedTransaction, error) {
	content, rest, err := rlp.SplitList(data)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, rlp.ErrTrailingBytes
	}
	n, err := rlp.CountValues(content)
	if err != nil {
		return nil, err
	}
	if n != 3 {
		return nil, rlp.ErrIncorrectListLen
	}

	s := rlp.NewStream(data)
	if _, err := s.List(); err != nil {
		return nil, err
	}
	txRaw, err := s.Raw()
	if err != nil {
		return nil, err
	}
	t, err := DecodeTransactionWithSignature(txRaw)
	if err != nil {
		return nil, err
	}
	senderBytes, err := s.Bytes()
	if err != nil {
		return nil, err
	}
	if len(senderBytes) != AddressLength {
		return nil, rlp.ErrInvalidLength
	}
	public, err := decodeOptionPublic(s)
	if err != nil {
		return nil, err
	}
	if err := s.ListEnd(); err != nil {
		return nil, err
	}

	return &SignedTransaction{
		TransactionWithSignature: *t,
		sender:                   BytesToAddress(senderBytes),
		public:                   public,
	}, nil
}

func decodeOptionPublic(s *rlp.Stream) (*Public, error) {
	size, err := s.List()
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return nil, s.ListEnd()
	}
	b, err := s.Bytes()
	if err != nil {
		return nil, err
	}
	if len(b) != PublicLength {
		return nil, rlp.ErrInvalidLength
	}
	if err := s.ListEnd(); err != nil {
		return nil, err
	}
	p := BytesToPublic(b)
	return &p, nil
}
