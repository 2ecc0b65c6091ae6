package capture

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Clipboard producers are sloppy about payload encoding: HGLOBAL buffers come
// NUL padded, UTF-16 content is frequently published without BOM and some
// applications put single byte Windows-1252 into formats documented as UTF-8.
// DecodeBytes is a total function - it always returns some text.

const decodeSampleSize = 1024

// zero-byte fractions over a 1024 byte sample classify UTF-16 endianness
const (
	wideZeroHigh = 0.55
	wideZeroLow  = 0.25
)

// DecodeBytes converts a raw clipboard payload to text. Wide-character
// payloads are detected statistically (and via BOM), everything else goes
// through a fixed fallback codec chain ending in Latin-1 which maps every
// byte. Embedded NUL characters are removed from the result.
func DecodeBytes(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	looksLE := looksLikeUTF16(data, 1)
	looksBE := looksLikeUTF16(data, 0)
	hasBOM := bytes.HasPrefix(data, []byte{0xff, 0xfe}) || bytes.HasPrefix(data, []byte{0xfe, 0xff})

	if !hasBOM && !looksLE && !looksBE {
		data = bytes.TrimRight(data, "\x00")
		if len(data) == 0 {
			return ""
		}
	}

	var decoders []*encoding.Decoder
	switch {
	case hasBOM:
		decoders = []*encoding.Decoder{
			unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder(),
		}
	case looksLE:
		data = trimOddTrailingByte(data)
		decoders = []*encoding.Decoder{
			unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder(),
		}
	case looksBE:
		data = trimOddTrailingByte(data)
		decoders = []*encoding.Decoder{
			unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewDecoder(),
		}
	}

	for _, dec := range decoders {
		if out, err := dec.Bytes(data); err == nil {
			return stripNUL(string(out))
		}
	}

	// Fallback chain: UTF-8, then Windows-1252 rejecting undefined bytes,
	// then Latin-1 which cannot fail.
	if utf8.Valid(data) {
		return stripNUL(string(data))
	}
	if windows1252Plausible(data) {
		if out, err := charmap.Windows1252.NewDecoder().Bytes(data); err == nil {
			return stripNUL(string(out))
		}
	}
	out, _ := charmap.ISO8859_1.NewDecoder().Bytes(data)
	return stripNUL(string(out))
}

// looksLikeUTF16 computes zero-byte fractions at even and odd offsets of the
// sample. With zeroParity 1 a high odd-zero fraction suggests little-endian
// text, with zeroParity 0 - big-endian.
func looksLikeUTF16(data []byte, zeroParity int) bool {
	sample := data
	if len(sample) > decodeSampleSize {
		sample = sample[:decodeSampleSize]
	}
	if len(sample) < 8 {
		return false
	}

	var evenZero, oddZero, even, odd int
	for i, b := range sample {
		if i%2 == 0 {
			even++
			if b == 0 {
				evenZero++
			}
		} else {
			odd++
			if b == 0 {
				oddZero++
			}
		}
	}
	if even == 0 || odd == 0 {
		return false
	}

	evenFrac := float64(evenZero) / float64(even)
	oddFrac := float64(oddZero) / float64(odd)
	if zeroParity == 1 {
		return oddFrac > wideZeroHigh && evenFrac < wideZeroLow
	}
	return evenFrac > wideZeroHigh && oddFrac < wideZeroLow
}

func trimOddTrailingByte(data []byte) []byte {
	if len(data)%2 == 1 {
		return data[:len(data)-1]
	}
	return data
}

// windows1252Plausible rejects payloads containing bytes undefined in
// Windows-1252 so that the decoder does not silently produce replacement
// characters for them.
func windows1252Plausible(data []byte) bool {
	for _, b := range data {
		switch b {
		case 0x81, 0x8d, 0x8f, 0x90, 0x9d:
			return false
		}
	}
	return true
}

func stripNUL(s string) string {
	if !strings.ContainsRune(s, 0) {
		return s
	}
	return strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, s)
}
