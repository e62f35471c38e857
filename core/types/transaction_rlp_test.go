package types

import (
	"bytes"
	"errors"
	"testing"

	"github.com/holiman/uint256"

	"github.com/cfx2030/cfx2030/crypto"
	"github.com/cfx2030/cfx2030/rlp"
)

func sampleTransaction() Transaction {
	to := HexToAddress("0f572e5295c57f15886f9b263e2f6d2d6c7b5ec6")
	return Transaction{
		Nonce:        *uint256.NewInt(3),
		GasPrice:     *uint256.NewInt(100),
		Gas:          *uint256.NewInt(21000),
		Action:       ActionCall(to),
		Value:        *uint256.NewInt(1000000),
		StorageLimit: 64,
		EpochHeight:  42,
		ChainID:      1029,
		Data:         []byte{0xde, 0xad, 0xbe, 0xef},
	}
}

func transactionsEqual(a, b *Transaction) bool {
	if a.Nonce != b.Nonce || a.GasPrice != b.GasPrice || a.Gas != b.Gas || a.Value != b.Value {
		return false
	}
	if a.StorageLimit != b.StorageLimit || a.EpochHeight != b.EpochHeight || a.ChainID != b.ChainID {
		return false
	}
	if !bytes.Equal(a.Data, b.Data) {
		return false
	}
	if a.Action.IsCreate() != b.Action.IsCreate() {
		return false
	}
	if !a.Action.IsCreate() && *a.Action.Call != *b.Action.Call {
		return false
	}
	return true
}

func TestTransactionRoundTrip(t *testing.T) {
	for _, tx := range []Transaction{sampleTransaction(), {}} {
		enc := tx.EncodeRLP()
		got, err := DecodeTransaction(enc)
		if err != nil {
			t.Fatalf("decode %x: %v", enc, err)
		}
		if !transactionsEqual(got, &tx) {
			t.Fatalf("round trip mismatch: %+v vs %+v", got, tx)
		}
		if got.Hash() != tx.Hash() {
			t.Fatal("decoded payload must hash identically")
		}
	}
}

func TestTransactionCreateActionEncodesEmpty(t *testing.T) {
	var tx Transaction
	enc := tx.EncodeRLP()
	// All nine fields are empty scalars.
	want := []byte{0xc9, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80}
	if !bytes.Equal(enc, want) {
		t.Fatalf("zero transaction: got %x, want %x", enc, want)
	}
}

func TestTransactionDecodeTrailingBytes(t *testing.T) {
	tx := sampleTransaction()
	enc := append(tx.EncodeRLP(), 0x00)
	if _, err := DecodeTransaction(enc); !errors.Is(err, rlp.ErrTrailingBytes) {
		t.Fatalf("got %v, want %v", err, rlp.ErrTrailingBytes)
	}
}

func TestTransactionDecodeBadAction(t *testing.T) {
	// Nine items with a three-byte action string.
	payload := []byte{0x80, 0x80, 0x80, 0x83, 0x01, 0x02, 0x03, 0x80, 0x80, 0x80, 0x80, 0x80}
	enc := rlp.WrapList(payload)
	if _, err := DecodeTransaction(enc); !errors.Is(err, rlp.ErrInvalidLength) {
		t.Fatalf("got %v, want %v", err, rlp.ErrInvalidLength)
	}
}

func TestTransactionDecodeNonMinimalNonce(t *testing.T) {
	// Nonce encoded with a leading zero byte.
	payload := []byte{0x82, 0x00, 0x03, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80}
	enc := rlp.WrapList(payload)
	if _, err := DecodeTransaction(enc); !errors.Is(err, rlp.ErrCanonInt) {
		t.Fatalf("got %v, want %v", err, rlp.ErrCanonInt)
	}
}

func TestTransactionWithSignatureRoundTrip(t *testing.T) {
	tx := sampleTransaction()
	sig := crypto.NewSignature(uint256.NewInt(0x1111), uint256.NewInt(0x2222), 1)
	tws := tx.WithSignature(sig)

	enc := tws.EncodeRLP()
	got, err := DecodeTransactionWithSignature(enc)
	if err != nil {
		t.Fatal(err)
	}
	if !transactionsEqual(&got.Unsigned, &tx) {
		t.Fatal("unsigned payload mismatch after round trip")
	}
	if got.V != tws.V || got.R != tws.R || got.S != tws.S {
		t.Fatal("signature components mismatch after round trip")
	}
	if got.Hash() != tws.Hash() {
		t.Fatalf("hash cache: got %s, want %s", got.Hash(), tws.Hash())
	}
	if got.RlpSize() != len(enc) {
		t.Fatalf("size cache: got %d, want %d", got.RlpSize(), len(enc))
	}
}

func TestTransactionWithSignatureDecodeItemCount(t *testing.T) {
	tx := sampleTransaction()
	tws := tx.WithSignature(crypto.Signature{})
	enc := tws.EncodeRLP()

	// Append a fifth item inside the outer list.
	content, _, err := rlp.SplitList(enc)
	if err != nil {
		t.Fatal(err)
	}
	five := rlp.WrapList(append(bytes.Clone(content), 0x80))
	if _, err := DecodeTransactionWithSignature(five); !errors.Is(err, rlp.ErrIncorrectListLen) {
		t.Fatalf("five items: got %v, want %v", err, rlp.ErrIncorrectListLen)
	}

	if _, err := DecodeTransactionWithSignature(append(bytes.Clone(enc), 0xff)); !errors.Is(err, rlp.ErrTrailingBytes) {
		t.Fatalf("trailing: got %v, want %v", err, rlp.ErrTrailingBytes)
	}

	if _, err := DecodeTransactionWithSignature([]byte{0x01}); !errors.Is(err, rlp.ErrExpectedList) {
		t.Fatalf("scalar: got %v, want %v", err, rlp.ErrExpectedList)
	}
}

func TestSignedTransactionRoundTripWithPublic(t *testing.T) {
	secret, err := crypto.SecretFromBytes(mustDecodeHex("4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"))
	if err != nil {
		t.Fatal(err)
	}
	tx := sampleTransaction()
	st := tx.Sign(secret)

	enc := st.EncodeRLP()
	got, err := DecodeSignedTransaction(enc)
	if err != nil {
		t.Fatal(err)
	}
	if got.Sender() != st.Sender() {
		t.Fatalf("sender: got %s, want %s", got.Sender(), st.Sender())
	}
	if got.PublicKey() == nil || *got.PublicKey() != *st.PublicKey() {
		t.Fatal("public key mismatch after round trip")
	}
	if got.Hash() != st.Hash() {
		t.Fatalf("hash: got %s, want %s", got.Hash(), st.Hash())
	}

	// Verification still works on the decoded value.
	ok, err := got.VerifyPublic(false)
	if !ok || err != nil {
		t.Fatalf("verify after decode: got %v, %v", ok, err)
	}
}

func TestSignedTransactionRoundTripWithoutPublic(t *testing.T) {
	tx := sampleTransaction()
	from := HexToAddress("0f572e5295c57f15886f9b263e2f6d2d6c7b5ec6")
	st := tx.FakeSign(from)

	enc := st.EncodeRLP()
	got, err := DecodeSignedTransaction(enc)
	if err != nil {
		t.Fatal(err)
	}
	if got.Sender() != from {
		t.Fatalf("sender: got %s, want %s", got.Sender(), from)
	}
	if got.PublicKey() != nil {
		t.Fatal("absent public key must decode as nil")
	}
	if got.Hash() != st.Hash() {
		t.Fatal("hash mismatch after round trip")
	}
}

func TestSignedTransactionOptionWireForm(t *testing.T) {
	var tx Transaction
	st := tx.FakeSign(Address{})
	enc := st.EncodeRLP()
	// The absent public key is the empty list at the very end.
	if enc[len(enc)-1] != 0xc0 {
		t.Fatalf("absent option: last byte got %x, want c0", enc[len(enc)-1])
	}
}

func TestSignedTransactionDecodeItemCount(t *testing.T) {
	var tx Transaction
	enc := tx.FakeSign(Address{}).EncodeRLP()
	content, _, err := rlp.SplitList(enc)
	if err != nil {
		t.Fatal(err)
	}
	four := rlp.WrapList(append(bytes.Clone(content), 0x80))
	if _, err := DecodeSignedTransaction(four); !errors.Is(err, rlp.ErrIncorrectListLen) {
		t.Fatalf("four items: got %v, want %v", err, rlp.ErrIncorrectListLen)
	}
}
