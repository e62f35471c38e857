package types

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/cfx2030/cfx2030/rlp"
)

// Discriminant byte of the regular storage layout. Decoding any other value
// fails so future layouts must be introduced explicitly.
const storageLayoutRegular = 0x00

// StorageLayout describes how a contract organizes its storage entries.
// Only the regular layout exists today, versioned for future evolution.
type StorageLayout struct {
	Version byte
}

// StorageLayoutRegularV0 is the layout assigned to newly created contracts.
var StorageLayoutRegularV0 = StorageLayout{Version: 0}

// ToBytes returns the two-byte persisted form: discriminant then version.
func (l StorageLayout) ToBytes() []byte {
	return []byte{storageLayoutRegular, l.Version}
}

// StorageLayoutFromBytes parses the persisted form.
func StorageLayoutFromBytes(raw []byte) (StorageLayout, error) {
	if len(raw) != 2 || raw[0] != storageLayoutRegular {
		return StorageLayout{}, fmt.Errorf("unknown storage layout: 0x%x", raw)
	}
	return StorageLayout{Version: raw[1]}, nil
}

// NodeMerkleTriplet carries the storage merkle roots of an account across the
// three commitment tiers. A nil entry means the account is absent from that
// tier, which is distinct from being present with an empty subtree.
type NodeMerkleTriplet struct {
	Delta        *Hash
	Intermediate *Hash
	Snapshot     *Hash
}

// EncodeRLP returns the canonical encoding: a three-item list of optional
// hashes, absent tiers encoding as the empty list.
func (t *NodeMerkleTriplet) EncodeRLP() []byte {
	var payload []byte
	payload = appendOptionHash(payload, t.Delta)
	payload = appendOptionHash(payload, t.Intermediate)
	payload = appendOptionHash(payload, t.Snapshot)
	return rlp.WrapList(payload)
}

// DecodeNodeMerkleTriplet decodes the three-tier optional form.
func DecodeNodeMerkleTriplet(data []byte) (*NodeMerkleTriplet, error) {
	_, rest, err := rlp.SplitList(data)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, rlp.ErrTrailingBytes
	}
	s := rlp.NewStream(data)
	if _, err := s.List(); err != nil {
		return nil, err
	}
	var t NodeMerkleTriplet
	if t.Delta, err = decodeOptionHash(s); err != nil {
		return nil, err
	}
	if t.Intermediate, err = decodeOptionHash(s); err != nil {
		return nil, err
	}
	if t.Snapshot, err = decodeOptionHash(s); err != nil {
		return nil, err
	}
	if err := s.ListEnd(); err != nil {
		return nil, err
	}
	return &t, nil
}

func appendOptionHash(buf []byte, h *Hash) []byte {
	if h == nil {
		return append(buf, rlp.WrapList(nil)...)
	}
	return append(buf, rlp.WrapList(rlp.AppendBytes(nil, h[:]))...)
}

func decodeOptionHash(s *rlp.Stream) (*Hash, error) {
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
	if len(b) != HashLength {
		return nil, rlp.ErrInvalidLength
	}
	if err := s.ListEnd(); err != nil {
		return nil, err
	}
	h := BytesToHash(b)
	return &h, nil
}

// StorageRoot is the fully resolved form of a triplet: every tier carries a
// concrete root hash.
type StorageRoot struct {
	Delta        Hash
	Intermediate Hash
	Snapshot     Hash
}

// StorageRootFromNodeMerkleTriplet resolves a triplet into concrete roots.
// An account absent from every tier has no storage root at all and resolves
// to nil; otherwise each absent tier takes the empty-subtree hash.
func StorageRootFromNodeMerkleTriplet(t *NodeMerkleTriplet) *StorageRoot {
	if t.Delta == nil && t.Intermediate == nil && t.Snapshot == nil {
		return nil
	}
	root := &StorageRoot{
		Delta:        MerkleNullNode,
		Intermediate: MerkleNullNode,
		Snapshot:     MerkleNullNode,
	}
	if t.Delta != nil {
		root.Delta = *t.Delta
	}
	if t.Intermediate != nil {
		root.Intermediate = *t.Intermediate
	}
	if t.Snapshot != nil {
		root.Snapshot = *t.Snapshot
	}
	return root
}

// EncodeRLP returns the canonical encoding: a three-item list of hashes.
func (r *StorageRoot) EncodeRLP() []byte {
	b, err := rlp.EncodeToBytes(r)
	if err != nil {
		panic("types: storage root must encode: " + err.Error())
	}
	return b
}

// DecodeStorageRoot decodes the three-hash form.
func DecodeStorageRoot(data []byte) (*StorageRoot, error) {
	var r StorageRoot
	if err := rlp.DecodeBytes(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// StorageValue is one storage entry: a 256-bit value and, for entries whose
// collateral is charged to someone other than the reading default, the owner
// it is charged to.
type StorageValue struct {
	Value uint256.Int
	Owner *Address
}

// EncodeRLP returns the canonical encoding. An entry without an owner encodes
// as the bare value scalar; with an owner it is a two-item list. The decoder
// tells the forms apart by the container kind, so no tag byte is spent on the
// overwhelmingly common ownerless case.
func (v *StorageValue) EncodeRLP() []byte {
	if v.Owner == nil {
		return rlp.AppendUint256(nil, &v.Value)
	}
	payload := rlp.AppendUint256(nil, &v.Value)
	payload = rlp.AppendBytes(payload, v.Owner[:])
	return rlp.WrapList(payload)
}

// DecodeStorageValue decodes either form of a storage entry.
func DecodeStorageValue(data []byte) (*StorageValue, error) {
	kind, content, rest, err := rlp.Split(data)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, rlp.ErrTrailingBytes
	}
	s := rlp.NewStream(data)
	var v StorageValue
	if kind == rlp.List {
		n, err := rlp.CountValues(content)
		if err != nil {
			return nil, err
		}
		if n != 2 {
			return nil, rlp.ErrIncorrectListLen
		}
		if _, err := s.List(); err != nil {
			return nil, err
		}
		value, err := s.Uint256()
		if err != nil {
			return nil, err
		}
		v.Value = *value
		ownerBytes, err := s.Bytes()
		if err != nil {
			return nil, err
		}
		if len(ownerBytes) != AddressLength {
			return nil, rlp.ErrInvalidLength
		}
		owner := BytesToAddress(ownerBytes)
		v.Owner = &owner
		if err := s.ListEnd(); err != nil {
			return nil, err
		}
		return &v, nil
	}
	value, err := s.Uint256()
	if err != nil {
		return nil, err
	}
	v.Value = *value
	return &v, nil
}
