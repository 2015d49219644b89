// Package renlib reads RenLib opening libraries: a 20-byte header followed
// by a preorder stream of two-byte move records.
package renlib

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

const headerSize = 20

var magic = [8]byte{0xFF, 'R', 'e', 'n', 'L', 'i', 'b', 0xFF}

// maxText bounds a single text block.
const maxText = 1 << 16

// Version is the format version from the header.
type Version struct {
	Major, Minor uint8
}

func (v Version) String() string { return fmt.Sprintf("%d.%d", v.Major, v.Minor) }

var supported = []Version{{3, 0}, {3, 4}}

// ReadHeader validates the header and returns its version.
func ReadHeader(r io.Reader) (Version, error) {
	var h [headerSize]byte
	if _, err := io.ReadFull(r, h[:]); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return Version{}, fmt.Errorf("%w: header", ErrTruncatedStream)
		}
		return Version{}, err
	}
	if !bytes.Equal(h[:8], magic[:]) {
		return Version{}, ErrUnsupportedFormat
	}
	for _, b := range h[10:] {
		if b != 0xFF {
			return Version{}, ErrUnsupportedFormat
		}
	}
	v := Version{Major: h[8], Minor: h[9]}
	for _, s := range supported {
		if s == v {
			return v, nil
		}
	}
	return Version{}, &VersionError{Major: v.Major, Minor: v.Minor}
}

type reader struct {
	r      *bufio.Reader
	offset int
}

func (rd *reader) fail(at int, err error) error {
	return &ParseError{Offset: at, Err: err}
}

// pair reads two bytes. n reports how many were available before EOF.
func (rd *reader) pair() (b [2]byte, n int, err error) {
	n, err = io.ReadFull(rd.r, b[:])
	rd.offset += n
	return b, n, err
}

// text reads a zero-terminated block stored in two-byte chunks.
func (rd *reader) text() ([]byte, error) {
	start := rd.offset
	var out []byte
	for {
		chunk, _, err := rd.pair()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, rd.fail(start, fmt.Errorf("%w: unterminated text", ErrTruncatedStream))
			}
			return nil, rd.fail(start, err)
		}
		if i := bytes.IndexByte(chunk[:], 0); i >= 0 {
			return append(out, chunk[:i]...), nil
		}
		out = append(out, chunk[:]...)
		if len(out) > maxText {
			return nil, rd.fail(start, fmt.Errorf("%w: text block over %d bytes", ErrMalformed, maxText))
		}
	}
}

func (rd *reader) record() (Record, bool, error) {
	at := rd.offset
	b, n, err := rd.pair()
	if err != nil {
		// A clean end, or a single trailing pad byte, ends the stream.
		if n < 2 && (errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)) {
			return Record{}, false, nil
		}
		return Record{}, false, rd.fail(at, err)
	}
	p, err := decodePoint(b[0])
	if err != nil {
		return Record{}, false, rd.fail(at, fmt.Errorf("%w: 0x%02x", err, b[0]))
	}
	rec := Record{Point: p, Flags: Flags(b[1]), Offset: at}

	if rec.Flags.Has(Extension) {
		ext, _, err := rd.pair()
		if err != nil {
			return Record{}, false, rd.fail(at, fmt.Errorf("%w: extension", ErrTruncatedStream))
		}
		rec.Flags |= Flags(uint32(ext[0])<<8|uint32(ext[1])) << 8
	}

	switch {
	case rec.Flags.Has(Comment):
		t, err := rd.text()
		if err != nil {
			return Record{}, false, err
		}
		one, multi := splitComment(t)
		rec.OneLine, rec.MultiLine = decodeComment(one), decodeComment(multi)
	case rec.Flags.Has(OldComment):
		t, err := rd.text()
		if err != nil {
			return Record{}, false, err
		}
		one, multi := splitComment(t)
		rec.OneLine, rec.MultiLine = decodeLegacyComment(one), decodeLegacyComment(multi)
	}
	if rec.Flags.Has(BoardText) {
		t, err := rd.text()
		if err != nil {
			return Record{}, false, err
		}
		rec.BoardText = decodeComment(t)
	}
	return rec, true, nil
}

// ReadRecords decodes the record stream that follows the header.
func ReadRecords(r io.Reader) ([]Record, error) {
	rd := &reader{r: bufio.NewReader(r)}
	var out []Record
	for {
		rec, ok, err := rd.record()
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, rec)
	}
}

// Parse reads a whole library: header, records and the move tree they encode.
func Parse(r io.Reader) (*Library, error) {
	v, err := ReadHeader(r)
	if err != nil {
		return nil, err
	}
	recs, err := ReadRecords(r)
	if err != nil {
		return nil, err
	}
	return build(v, recs), nil
}

// ParseBytes is Parse over an in-memory file.
func ParseBytes(data []byte) (*Library, error) {
	return Parse(bytes.NewReader(data))
}
