package rlp

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestSplit(t *testing.T) {
	// "dog" followed by trailing 0xff.
	kind, content, rest, err := Split([]byte{0x83, 0x64, 0x6f, 0x67, 0xff})
	if err != nil {
		t.Fatal(err)
	}
	if kind != String {
		t.Fatalf("kind: got %v, want String", kind)
	}
	if !bytes.Equal(content, []byte("dog")) {
		t.Fatalf("content: got %x", content)
	}
	if !bytes.Equal(rest, []byte{0xff}) {
		t.Fatalf("rest: got %x", rest)
	}
}

func TestSplitByte(t *testing.T) {
	kind, content, rest, err := Split([]byte{0x05, 0x06})
	if err != nil {
		t.Fatal(err)
	}
	if kind != Byte || !bytes.Equal(content, []byte{0x05}) || !bytes.Equal(rest, []byte{0x06}) {
		t.Fatalf("got kind %v content %x rest %x", kind, content, rest)
	}
}

func TestSplitList(t *testing.T) {
	content, rest, err := SplitList([]byte{0xc2, 0x01, 0x02})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(content, []byte{0x01, 0x02}) || len(rest) != 0 {
		t.Fatalf("got content %x rest %x", content, rest)
	}
	if _, _, err := SplitList([]byte{0x01}); !errors.Is(err, ErrExpectedList) {
		t.Fatalf("got %v, want %v", err, ErrExpectedList)
	}
}

func TestSplitString(t *testing.T) {
	if _, _, err := SplitString([]byte{0xc0}); !errors.Is(err, ErrExpectedString) {
		t.Fatalf("got %v, want %v", err, ErrExpectedString)
	}
}

func TestCountValues(t *testing.T) {
	tests := []struct {
		payload []byte
		want    int
	}{
		{nil, 0},
		{[]byte{0x01}, 1},
		{[]byte{0x80, 0x80, 0x80}, 3},
		{[]byte{0xc2, 0x01, 0x02, 0x83, 0x64, 0x6f, 0x67}, 2},
	}
	for _, tt := range tests {
		got, err := CountValues(tt.payload)
		if err != nil {
			t.Fatalf("%x: %v", tt.payload, err)
		}
		if got != tt.want {
			t.Fatalf("%x: got %d, want %d", tt.payload, got, tt.want)
		}
	}
}

func TestCountValuesTruncated(t *testing.T) {
	if _, err := CountValues([]byte{0x83, 0x64}); err == nil {
		t.Fatal("expected error for truncated payload")
	}
}

func TestSplitHugeDeclaredLength(t *testing.T) {
	str := []byte{0xbf, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	if _, _, _, err := Split(str); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("string: got %v, want %v", err, io.ErrUnexpectedEOF)
	}
	list := []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff}
	if _, err := CountValues(list); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("list: got %v, want %v", err, io.ErrUnexpectedEOF)
	}
}
