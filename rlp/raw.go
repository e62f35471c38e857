package rlp

// Raw-item helpers for shape-polymorphic codecs: decoders that dispatch on
// the container kind (scalar vs. list) of an encoding before interpreting it.

// Split returns the kind and content of the first RLP value in b and any
// bytes remaining after it. For Byte items the content is the byte itself.
func Split(b []byte) (kind Kind, content, rest []byte, err error) {
	s := newByteStream(b)
	h, err := s.readHeader()
	if err != nil {
		return 0, nil, nil, err
	}
	start := h.prefix
	end := h.prefix + h.size
	return h.kind, b[start:end], b[end:], nil
}

// SplitString is like Split but rejects list items.
func SplitString(b []byte) (content, rest []byte, err error) {
	kind, content, rest, err := Split(b)
	if err != nil {
		return nil, nil, err
	}
	if kind == List {
		return nil, nil, ErrExpectedString
	}
	return content, rest, nil
}

// SplitList returns the content of the list at the start of b and any bytes
// remaining after it.
func SplitList(b []byte) (content, rest []byte, err error) {
	kind, content, rest, err := Split(b)
	if err != nil {
		return nil, nil, err
	}
	if kind != List {
		return nil, nil, ErrExpectedList
	}
	return content, rest, nil
}

// CountValues counts the number of encoded values in a list payload b.
func CountValues(b []byte) (int, error) {
	n := 0
	for len(b) > 0 {
		var err error
		if _, _, b, err = Split(b); err != nil {
			return 0, err
		}
		n++
	}
	return n, nil
}
