package types

import (
	"bytes"
	"testing"

	"github.com/holiman/uint256"

	"github.com/cfx2030/cfx2030/crypto"
)

func TestActionDefault(t *testing.T) {
	var a Action
	if !a.IsCreate() {
		t.Fatal("zero action must be create")
	}
	if ActionCreate().Call != nil {
		t.Fatal("create action must have no callee")
	}
	addr := HexToAddress("0f572e5295c57f15886f9b263e2f6d2d6c7b5ec6")
	call := ActionCall(addr)
	if call.IsCreate() || *call.Call != addr {
		t.Fatal("call action must carry the callee")
	}
}

func TestChainIDParams(t *testing.T) {
	p := ChainIDParams{ChainID: 0}
	if p.GetChainID(1) != p.ChainID {
		t.Fatal("chain id must not vary with epoch yet")
	}
}

func TestTransactionHashFixedVector(t *testing.T) {
	var tx Transaction
	want := HexToHash("c5b2c658f5fa236c598a6e7fbf7f21413dc42e2a41dd982eb772b30707cba2eb")
	if got := tx.Hash(); got != want {
		t.Fatalf("zero transaction hash: got %s, want %s", got, want)
	}
}

func TestWithSignatureFixedVector(t *testing.T) {
	var tx Transaction
	var sig crypto.Signature
	tws := tx.WithSignature(sig)

	want := HexToHash("6afedf2d3f8fe6e19c0e9318a9af5c2034b0987f9990b1012e314286dcb51655")
	if got := tws.Hash(); got != want {
		t.Fatalf("signed form hash: got %s, want %s", got, want)
	}

	// [[80 x9], 80, 80, 80] is 14 bytes in total.
	wantEnc := []byte{
		0xcd,
		0xc9, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80, 0x80,
		0x80, 0x80, 0x80,
	}
	if got := tws.EncodeRLP(); !bytes.Equal(got, wantEnc) {
		t.Fatalf("signed form encoding: got %x, want %x", got, wantEnc)
	}
	if tws.RlpSize() != 14 {
		t.Fatalf("rlp size: got %d, want 14", tws.RlpSize())
	}
}

func TestNewUnsignedTransactionWithSignature(t *testing.T) {
	var tx Transaction
	tws := NewUnsignedTransactionWithSignature(tx)
	if !tws.Hash().IsZero() {
		t.Fatal("hash cache must stay zero before signing")
	}
	// The size cache is unset too, so the size is recomputed on demand.
	if tws.RlpSize() != 14 {
		t.Fatalf("rlp size: got %d, want 14", tws.RlpSize())
	}
	if !tws.IsUnsigned() {
		t.Fatal("empty signature must read as unsigned")
	}
	if err := tws.CheckLowS(); err != nil {
		t.Fatalf("zero s must pass the low-s check: %v", err)
	}
	var zeroSig crypto.Signature
	if tws.Signature() != zeroSig {
		t.Fatal("signature of unsigned form must be all zero")
	}
}

func TestFakeSign(t *testing.T) {
	var tx Transaction
	from := HexToAddress("0f572e5295c57f15886f9b263e2f6d2d6c7b5ec6")
	st := tx.FakeSign(from)

	if st.Sender() != from {
		t.Fatalf("sender: got %s, want %s", st.Sender(), from)
	}
	if st.PublicKey() != nil {
		t.Fatal("fake signing must not attach a public key")
	}
	if st.IsUnsigned() {
		t.Fatal("fake signature must not read as unsigned")
	}
	if st.R.Cmp(uint256.NewInt(1)) != 0 || st.S.Cmp(uint256.NewInt(1)) != 0 || st.V != 0 {
		t.Fatalf("fake signature components: r=%v s=%v v=%d", &st.R, &st.S, st.V)
	}
	if st.Hash() != keccakHash(st.TransactionWithSignatureSerializePart.EncodeRLP()) {
		t.Fatal("hash cache must cover the fake-signed form")
	}

	// The sentinel never verifies.
	ok, err := st.VerifyPublic(false)
	if ok || err != nil {
		t.Fatalf("fake-signed verify: got %v, %v", ok, err)
	}
}

func TestNewSignedTransactionForcesUnsignedSender(t *testing.T) {
	var tx Transaction
	tws := NewUnsignedTransactionWithSignature(tx)
	var public Public
	st := NewSignedTransaction(public, tws)
	if st.Sender() != UnsignedSender {
		t.Fatalf("sender: got %s, want reserved unsigned sender", st.Sender())
	}
	if st.PublicKey() != nil {
		t.Fatal("unsigned transaction must not keep a public key")
	}
}

func TestNewUnsignedSignedTransaction(t *testing.T) {
	var tx Transaction
	st := NewUnsignedSignedTransaction(tx.WithSignature(crypto.Signature{}))
	if st.Sender() != UnsignedSender || st.PublicKey() != nil {
		t.Fatal("wrapper must use the reserved unsigned sender and no key")
	}
}

func TestSignEndToEnd(t *testing.T) {
	secret, err := crypto.SecretFromBytes(mustDecodeHex("4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"))
	if err != nil {
		t.Fatal(err)
	}
	pubBytes, err := crypto.PublicFromSecret(secret)
	if err != nil {
		t.Fatal(err)
	}
	pub := BytesToPublic(pubBytes)

	to := HexToAddress("0f572e5295c57f15886f9b263e2f6d2d6c7b5ec6")
	tx := Transaction{
		Nonce:        *uint256.NewInt(3),
		GasPrice:     *uint256.NewInt(1),
		Gas:          *uint256.NewInt(21000),
		Action:       ActionCall(to),
		Value:        *uint256.NewInt(1000),
		StorageLimit: 64,
		EpochHeight:  42,
		ChainID:      1029,
		Data:         []byte{0xde, 0xad},
	}
	st := tx.Sign(secret)

	if st.IsUnsigned() {
		t.Fatal("signed transaction must not read as unsigned")
	}
	if st.Sender() != PublicToAddress(pub) {
		t.Fatalf("sender: got %s, want %s", st.Sender(), PublicToAddress(pub))
	}
	if st.PublicKey() == nil || *st.PublicKey() != pub {
		t.Fatal("recovered public key must match the secret's")
	}
	if err := st.CheckLowS(); err != nil {
		t.Fatalf("fresh signature must be low-s: %v", err)
	}

	recovered, err := st.RecoverPublic()
	if err != nil {
		t.Fatal(err)
	}
	if recovered != pub {
		t.Fatalf("recover: got %s, want %s", recovered, pub)
	}

	for _, skip := range []bool{true, false} {
		ok, err := st.VerifyPublic(skip)
		if err != nil {
			t.Fatalf("verify(skip=%v): %v", skip, err)
		}
		if !ok {
			t.Fatalf("verify(skip=%v) must succeed", skip)
		}
	}
}

func TestVerifyPublicMismatchFails(t *testing.T) {
	secret, err := crypto.SecretFromBytes(mustDecodeHex("4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"))
	if err != nil {
		t.Fatal(err)
	}
	other, err := crypto.SecretFromBytes(mustDecodeHex("0000000000000000000000000000000000000000000000000000000000000002"))
	if err != nil {
		t.Fatal(err)
	}
	otherPubBytes, err := crypto.PublicFromSecret(other)
	if err != nil {
		t.Fatal(err)
	}

	var tx Transaction
	st := tx.Sign(secret)
	st.SetPublic(BytesToPublic(otherPubBytes))

	// Skipping trusts the cache blindly.
	ok, err := st.VerifyPublic(true)
	if !ok || err != nil {
		t.Fatalf("verify(skip=true): got %v, %v", ok, err)
	}
	// Actually checking detects the swap.
	ok, err = st.VerifyPublic(false)
	if ok || err == nil {
		t.Fatalf("verify(skip=false): got %v, %v", ok, err)
	}
}

func TestSetPublicRederivesSender(t *testing.T) {
	other, err := crypto.SecretFromBytes(mustDecodeHex("0000000000000000000000000000000000000000000000000000000000000002"))
	if err != nil {
		t.Fatal(err)
	}
	pubBytes, err := crypto.PublicFromSecret(other)
	if err != nil {
		t.Fatal(err)
	}
	pub := BytesToPublic(pubBytes)

	var tx Transaction
	st := tx.FakeSign(HexToAddress("0f572e5295c57f15886f9b263e2f6d2d6c7b5ec6"))
	st.SetPublic(pub)
	if st.Sender() != PublicToAddress(pub) {
		t.Fatal("sender must follow the public key")
	}
	if st.PublicKey() == nil || *st.PublicKey() != pub {
		t.Fatal("public key must be cached")
	}
}

func TestSignedTransactionAccessors(t *testing.T) {
	tx := Transaction{
		Nonce:    *uint256.NewInt(7),
		GasPrice: *uint256.NewInt(2),
		Gas:      *uint256.NewInt(50000),
		Value:    *uint256.NewInt(9),
		Data:     []byte{0x01, 0x02, 0x03},
	}
	st := tx.FakeSign(HexToAddress("0f572e5295c57f15886f9b263e2f6d2d6c7b5ec6"))
	if st.Nonce().Uint64() != 7 || st.GasPrice().Uint64() != 2 || st.Value().Uint64() != 9 {
		t.Fatal("scalar accessors must reflect the payload")
	}
	if st.Gas().Uint64() != 50000 || st.GasLimit().Uint64() != 50000 {
		t.Fatal("gas accessors must reflect the payload")
	}
	if !bytes.Equal(st.Data(), []byte{0x01, 0x02, 0x03}) {
		t.Fatal("data accessor must reflect the payload")
	}
	if st.MemorySize() != 3 {
		t.Fatalf("memory size: got %d, want 3", st.MemorySize())
	}
}
