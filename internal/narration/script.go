package narration

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrInvalidEncoding marks a script that is neither valid UTF-8 nor
// BOM-marked UTF-16.
var ErrInvalidEncoding = errors.New("narration script is not valid UTF-8")

// ReadScript returns the full narration text. A UTF-8 byte order mark is
// dropped and BOM-marked UTF-16 files are decoded to UTF-8. Anything else
// must already be valid UTF-8.
func ReadScript(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open narration script: %w", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("read narration script: %w", err)
	}
	if !isUTF16(raw) {
		if offset := invalidOffset(raw); offset >= 0 {
			return "", fmt.Errorf("%w: %s: invalid byte at offset %d", ErrInvalidEncoding, path, offset)
		}
	}

	data, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), raw)
	if err != nil {
		return "", fmt.Errorf("decode narration script: %w", err)
	}
	return string(data), nil
}

func isUTF16(raw []byte) bool {
	return bytes.HasPrefix(raw, []byte{0xFE, 0xFF}) || bytes.HasPrefix(raw, []byte{0xFF, 0xFE})
}

func invalidOffset(raw []byte) int {
	for i := 0; i < len(raw); {
		r, size := utf8.DecodeRune(raw[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return -1
}
