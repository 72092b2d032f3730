// Package encoding sniffs the charset of uploaded files and exposes them
// as UTF-8. Supplier price lists come from spreadsheet exports on machines
// we do not control, so UTF-8, UTF-16 with BOM and legacy Windows
// codepages all show up in practice.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const sniffSize = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// charsets maps chardet results to decoders for the legacy encodings we
// accept. Anything else falls through to the Windows-1252 default, which
// decodes every byte and at worst mangles a few accents.
var charsets = map[string]encoding.Encoding{
	"ISO-8859-1":   charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"ISO-8859-15":  charmap.ISO8859_15,
}

// NewUTF8Reader wraps r so its content reads as UTF-8.
//
// Detection order: BOM, then UTF-8 validity of the sniffed prefix, then
// chardet's heuristic, then Windows-1252 as the fallback.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)

	buf, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("sniffing charset: %w", err)
	}

	switch {
	case bytes.HasPrefix(buf, bomUTF8):
		_, _ = br.Discard(len(bomUTF8))
		return br, nil
	case bytes.HasPrefix(buf, bomUTF16LE):
		return decode(br, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)), nil
	case bytes.HasPrefix(buf, bomUTF16BE):
		return decode(br, unicode.UTF16(unicode.BigEndian, unicode.UseBOM)), nil
	}

	if utf8.Valid(buf) {
		return br, nil
	}

	if result, err := chardet.NewTextDetector().DetectBest(buf); err == nil {
		if result.Charset == "UTF-8" {
			return br, nil
		}

		if enc, ok := charsets[result.Charset]; ok {
			return decode(br, enc), nil
		}
	}

	return decode(br, charmap.Windows1252), nil
}

func decode(r io.Reader, enc encoding.Encoding) io.Reader {
	return transform.NewReader(r, enc.NewDecoder())
}
