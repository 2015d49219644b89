package renlib

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// commentSeparator splits a comment into its one-line and multi-line parts.
const commentSeparator = 0x08

// legacyAccents maps the 7-bit stand-ins used by old Swedish comments back
// to their Latin-1 letters.
var legacyAccents = map[byte]byte{
	'}':  0xE5, // å
	'{':  0xE4, // ä
	'|':  0xF6, // ö
	']':  0xC5, // Å
	'[':  0xC4, // Ä
	'\\': 0xD6, // Ö
}

func decode(dec *encoding.Decoder, b []byte) string {
	out, _, err := transform.Bytes(dec, b)
	if err != nil {
		return string(bytes.ToValidUTF8(b, []byte("�")))
	}
	return string(out)
}

// decodeComment turns stored comment bytes into text. Newer libraries write
// UTF-8; anything else is read as Windows-1252.
func decodeComment(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return decode(charmap.Windows1252.NewDecoder(), b)
}

func decodeLegacyComment(b []byte) string {
	mapped := make([]byte, len(b))
	for i, c := range b {
		if r, ok := legacyAccents[c]; ok {
			c = r
		}
		mapped[i] = c
	}
	return decode(charmap.ISO8859_1.NewDecoder(), mapped)
}

// splitComment separates the one-line title from the multi-line body.
func splitComment(b []byte) (one, multi []byte) {
	if len(b) > 0 && b[0] == commentSeparator {
		return nil, b[1:]
	}
	if i := bytes.IndexByte(b, commentSeparator); i >= 0 {
		return b[:i], b[i+1:]
	}
	return b, nil
}
