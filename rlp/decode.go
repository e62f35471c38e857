package rlp

import (
	"bytes"
	"io"
	"math/big"
	"reflect"

	"github.com/holiman/uint256"
)

// Kind represents the type of an RLP value.
type Kind int

const (
	Byte   Kind = iota // Single byte in [0x00, 0x7f].
	String             // RLP string (including empty string).
	List               // RLP list.
)

// Decode reads an RLP-encoded value from r and stores it in the value pointed to by val.
func Decode(r io.Reader, val interface{}) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return DecodeBytes(data, val)
}

// DecodeBytes decodes an RLP-encoded byte slice into the value pointed to by val.
// The input must consist of exactly one value; trailing bytes are rejected.
func DecodeBytes(b []byte, val interface{}) error {
	s := newByteStream(b)
	if err := s.decodeValue(reflect.ValueOf(val)); err != nil {
		return err
	}
	if s.pos != len(s.data) {
		return ErrTrailingBytes
	}
	return nil
}

// Stream provides streaming access to RLP-encoded data.
type Stream struct {
	data  []byte
	pos   int
	stack []listFrame // for List/ListEnd scoping
}

type listFrame struct {
	end int // exclusive end position of the current list
}

// NewStream creates a new RLP stream over b.
func NewStream(b []byte) *Stream {
	return newByteStream(b)
}

func newByteStream(data []byte) *Stream {
	return &Stream{data: data, pos: 0}
}

// header describes the prefix of the RLP item at pos.
type header struct {
	kind    Kind
	prefix  int // length of the size prefix
	size    int // payload length (1 for Byte, counting the byte itself)
}

// readHeader parses and validates the item prefix at s.pos without consuming it.
func (s *Stream) readHeader() (header, error) {
	lim := s.limit()
	if s.pos >= lim {
		if len(s.stack) > 0 {
			return header{}, ErrEOL
		}
		return header{}, io.EOF
	}
	p := s.data[s.pos]
	switch {
	case p <= 0x7f:
		return header{kind: Byte, prefix: 0, size: 1}, nil

	case p <= 0xb7:
		size := int(p - 0x80)
		if s.pos+1+size > lim {
			return header{}, io.ErrUnexpectedEOF
		}
		if size == 1 && s.data[s.pos+1] <= 0x7f {
			// Single bytes below 0x80 must be encoded as themselves.
			return header{}, ErrCanonSize
		}
		return header{kind: String, prefix: 1, size: size}, nil

	case p <= 0xbf:
		lenOfLen := int(p - 0xb7)
		if s.pos+1+lenOfLen > lim {
			return header{}, io.ErrUnexpectedEOF
		}
		sizeBytes := s.data[s.pos+1 : s.pos+1+lenOfLen]
		if sizeBytes[0] == 0 {
			return header{}, ErrCanonSize
		}
		size64 := readBigEndian(sizeBytes)
		if size64 <= 55 {
			return header{}, ErrNonCanonicalSize
		}
		// Compare as uint64 before narrowing: a declared length near the
		// uint64 ceiling must not wrap into a small (or negative) int.
		if size64 > uint64(lim-s.pos-1-lenOfLen) {
			return header{}, io.ErrUnexpectedEOF
		}
		return header{kind: String, prefix: 1 + lenOfLen, size: int(size64)}, nil

	case p <= 0xf7:
		size := int(p - 0xc0)
		if s.pos+1+size > lim {
			return header{}, io.ErrUnexpectedEOF
		}
		return header{kind: List, prefix: 1, size: size}, nil

	default:
		lenOfLen := int(p - 0xf7)
		if s.pos+1+lenOfLen > lim {
			return header{}, io.ErrUnexpectedEOF
		}
		sizeBytes := s.data[s.pos+1 : s.pos+1+lenOfLen]
		if sizeBytes[0] == 0 {
			return header{}, ErrCanonSize
		}
		size64 := readBigEndian(sizeBytes)
		if size64 <= 55 {
			return header{}, ErrNonCanonicalSize
		}
		if size64 > uint64(lim-s.pos-1-lenOfLen) {
			return header{}, io.ErrUnexpectedEOF
		}
		return header{kind: List, prefix: 1 + lenOfLen, size: int(size64)}, nil
	}
}

// Kind returns the type and payload size of the next value without consuming it.
func (s *Stream) Kind() (Kind, uint64, error) {
	h, err := s.readHeader()
	if err != nil {
		return 0, 0, err
	}
	return h.kind, uint64(h.size), nil
}

// readItem reads a complete RLP item and returns its payload bytes.
// For single bytes [0x00, 0x7f] the payload is the byte itself.
func (s *Stream) readItem() (Kind, []byte, error) {
	h, err := s.readHeader()
	if err != nil {
		return 0, nil, err
	}
	start := s.pos + h.prefix
	s.pos = start + h.size
	return h.kind, s.data[start : start+h.size], nil
}

// Raw consumes the next item and returns its complete encoding (prefix included).
func (s *Stream) Raw() ([]byte, error) {
	h, err := s.readHeader()
	if err != nil {
		return nil, err
	}
	start := s.pos
	s.pos += h.prefix + h.size
	return s.data[start:s.pos], nil
}

// Bytes reads an RLP string value and returns it as []byte.
func (s *Stream) Bytes() ([]byte, error) {
	kind, payload, err := s.readItem()
	if err != nil {
		return nil, err
	}
	if kind == List {
		return nil, ErrExpectedString
	}
	return payload, nil
}

// List reads the start of an RLP list and enters a scope for reading its items.
// Subsequent Bytes/Uint64/etc. calls read from within the list. Call ListEnd
// when done reading.
func (s *Stream) List() (uint64, error) {
	h, err := s.readHeader()
	if err != nil {
		return 0, err
	}
	if h.kind != List {
		return 0, ErrExpectedList
	}
	s.pos += h.prefix
	s.stack = append(s.stack, listFrame{end: s.pos + h.size})
	return uint64(h.size), nil
}

// ListEnd verifies that all items in the current list have been read.
func (s *Stream) ListEnd() error {
	if len(s.stack) == 0 {
		return ErrExpectedList
	}
	top := s.stack[len(s.stack)-1]
	if s.pos != top.end {
		return ErrEOL
	}
	s.stack = s.stack[:len(s.stack)-1]
	return nil
}

// limit returns the current read boundary.
func (s *Stream) limit() int {
	if len(s.stack) > 0 {
		return s.stack[len(s.stack)-1].end
	}
	return len(s.data)
}

// Uint64 reads an RLP-encoded unsigned integer.
func (s *Stream) Uint64() (uint64, error) {
	b, err := s.Bytes()
	if err != nil {
		return 0, err
	}
	if len(b) > 8 {
		return 0, ErrUint64Range
	}
	if len(b) > 0 && b[0] == 0 {
		return 0, ErrCanonInt
	}
	return readBigEndian(b), nil
}

// Uint256 reads an RLP-encoded 256-bit unsigned integer.
func (s *Stream) Uint256() (*uint256.Int, error) {
	b, err := s.Bytes()
	if err != nil {
		return nil, err
	}
	if len(b) > 32 {
		return nil, ErrUint256Range
	}
	if len(b) > 0 && b[0] == 0 {
		return nil, ErrCanonInt
	}
	return new(uint256.Int).SetBytes(b), nil
}

// BigInt reads an RLP-encoded big integer.
func (s *Stream) BigInt() (*big.Int, error) {
	b, err := s.Bytes()
	if err != nil {
		return nil, err
	}
	if len(b) > 0 && b[0] == 0 {
		return nil, ErrCanonInt
	}
	return new(big.Int).SetBytes(b), nil
}

func readBigEndian(b []byte) uint64 {
	var val uint64
	for _, x := range b {
		val = (val << 8) | uint64(x)
	}
	return val
}

// decodeValue decodes the next RLP value into v (must be a non-nil pointer).
func (s *Stream) decodeValue(v reflect.Value) error {
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return ErrExpectedString
	}
	return s.decodeInto(v.Elem())
}

func (s *Stream) decodeInto(v reflect.Value) error {
	switch v.Type() {
	case bigIntType:
		bi, err := s.BigInt()
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(*bi))
		return nil
	case uint256Type:
		u, err := s.Uint256()
		if err != nil {
			return err
		}
		v.Set(reflect.ValueOf(*u))
		return nil
	}
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			v.Set(reflect.New(v.Type().Elem()))
		}
		return s.decodeInto(v.Elem())
	}

	switch v.Kind() {
	case reflect.Bool:
		b, err := s.Bytes()
		if err != nil {
			return err
		}
		switch {
		case len(b) == 0:
			v.SetBool(false)
		case len(b) == 1 && b[0] == 0x01:
			v.SetBool(true)
		default:
			return ErrCanonInt
		}
		return nil

	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uint:
		u, err := s.Uint64()
		if err != nil {
			return err
		}
		if v.OverflowUint(u) {
			return ErrUint64Range
		}
		v.SetUint(u)
		return nil

	case reflect.String:
		b, err := s.Bytes()
		if err != nil {
			return err
		}
		v.SetString(string(b))
		return nil

	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			b, err := s.Bytes()
			if err != nil {
				return err
			}
			v.SetBytes(bytes.Clone(b))
			return nil
		}
		return s.decodeList(v)

	case reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			b, err := s.Bytes()
			if err != nil {
				return err
			}
			if len(b) != v.Len() {
				return ErrInvalidLength
			}
			for i := 0; i < v.Len(); i++ {
				v.Index(i).SetUint(uint64(b[i]))
			}
			return nil
		}
		return s.decodeList(v)

	case reflect.Struct:
		return s.decodeStruct(v)

	default:
		return ErrExpectedString
	}
}

func (s *Stream) decodeList(v reflect.Value) error {
	if _, err := s.List(); err != nil {
		return err
	}
	i := 0
	for s.pos < s.stack[len(s.stack)-1].end {
		if v.Kind() == reflect.Slice {
			if i >= v.Len() {
				v.Set(reflect.Append(v, reflect.New(v.Type().Elem()).Elem()))
			}
		} else if i >= v.Len() {
			return ErrIncorrectListLen
		}
		if err := s.decodeInto(v.Index(i)); err != nil {
			return err
		}
		i++
	}
	if v.Kind() == reflect.Array && i != v.Len() {
		return ErrIncorrectListLen
	}
	return s.ListEnd()
}

func (s *Stream) decodeStruct(v reflect.Value) error {
	if _, err := s.List(); err != nil {
		return err
	}
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if !t.Field(i).IsExported() {
			continue
		}
		if err := s.decodeInto(v.Field(i)); err != nil {
			return err
		}
	}
	return s.ListEnd()
}
