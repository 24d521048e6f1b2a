package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// peekSize covers the BOM plus enough of the body for charset heuristics.
const peekSize = 4096

var utf16BOMs = []struct {
	prefix []byte
	endian unicode.Endianness
}{
	{[]byte{0xFF, 0xFE}, unicode.LittleEndian},
	{[]byte{0xFE, 0xFF}, unicode.BigEndian},
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// charsetDecoders maps chardet results for uploads we actually see
// (banks tend to export Windows-1252 or ISO-8859 variants).
var charsetDecoders = map[string]*charmap.Charmap{
	"ISO-8859-1":   charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"ISO-8859-9":   charmap.ISO8859_9,
	"ISO-8859-15":  charmap.ISO8859_15,
}

// NewUTF8Reader wraps r so that statement uploads read back as UTF-8
// regardless of how the bank encoded them. A UTF-8 BOM is stripped,
// UTF-16 is decoded, anything else goes through chardet with a
// Windows-1252 fallback.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)

	head, err := br.Peek(peekSize)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("peeking upload: %w", err)
	}

	if bytes.HasPrefix(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
		return br, nil
	}

	for _, bom := range utf16BOMs {
		if bytes.HasPrefix(head, bom.prefix) {
			dec := unicode.UTF16(bom.endian, unicode.UseBOM).NewDecoder()
			return transform.NewReader(br, dec), nil
		}
	}

	if utf8.Valid(head) {
		return br, nil
	}

	if result, err := chardet.NewTextDetector().DetectBest(head); err == nil {
		if result.Charset == "UTF-8" {
			return br, nil
		}
		if cm, ok := charsetDecoders[result.Charset]; ok {
			return transform.NewReader(br, cm.NewDecoder()), nil
		}
	}

	return transform.NewReader(br, charmap.Windows1252.NewDecoder()), nil
}
