// Package statement holds what bank statement parsers produce and the
// charset handling they share.
package statement

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"time"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/MrJamesThe3rd/pennywise/internal/ledger"
)

// Line is one movement of a bank statement. Amount is in cents and always
// positive; Type carries the direction.
type Line struct {
	Date        time.Time
	Description string
	Amount      int64
	Type        ledger.Type
}

const sniffSize = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Decode wraps r so it yields UTF-8 and reports the charset it detected.
// A BOM wins, then valid UTF-8, then chardet, and Windows-1252 otherwise.
func Decode(r io.Reader) (io.Reader, string, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	buf, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, "", fmt.Errorf("peek: %w", err)
	}

	switch {
	case bytes.HasPrefix(buf, bomUTF8):
		_, _ = br.Discard(len(bomUTF8))
		return br, "UTF-8", nil
	case bytes.HasPrefix(buf, bomUTF16LE):
		return decoded(br, unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)), "UTF-16LE", nil
	case bytes.HasPrefix(buf, bomUTF16BE):
		return decoded(br, unicode.UTF16(unicode.BigEndian, unicode.UseBOM)), "UTF-16BE", nil
	}

	if utf8.Valid(trimPartialRune(buf)) {
		return br, "UTF-8", nil
	}

	if res, err := chardet.NewTextDetector().DetectBest(buf); err == nil {
		switch res.Charset {
		case "UTF-8":
			return br, "UTF-8", nil
		case "ISO-8859-1", "windows-1252":
			return decoded(br, charmap.Windows1252), "windows-1252", nil
		case "ISO-8859-15":
			return decoded(br, charmap.ISO8859_15), "ISO-8859-15", nil
		case "ISO-8859-9":
			return decoded(br, charmap.ISO8859_9), "ISO-8859-9", nil
		}
	}

	return decoded(br, charmap.Windows1252), "windows-1252", nil
}

func decoded(r io.Reader, enc encoding.Encoding) io.Reader {
	return transform.NewReader(r, enc.NewDecoder())
}

// trimPartialRune drops a multi-byte sequence cut off by the sniff window.
func trimPartialRune(b []byte) []byte {
	for i := 1; i <= utf8.UTFMax && i <= len(b); i++ {
		if utf8.RuneStart(b[len(b)-i]) {
			if !utf8.FullRune(b[len(b)-i:]) {
				return b[:len(b)-i]
			}

			break
		}
	}

	return b
}
