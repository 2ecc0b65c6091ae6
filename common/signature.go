package common

import (
	"fmt"
	"strings"
)

// Capture signatures look like "html:0123456789abcdef" - a source label and a
// 64 bit content hash in hex. They travel through session files and command
// lines, so validate before trusting one.
func NormalizeSignature(in string) (string, error) {
	s := strings.ToLower(strings.TrimSpace(in))
	if s == "" {
		return "", nil
	}

	label, hash, found := strings.Cut(s, ":")
	if !found {
		return "", fmt.Errorf("signature must look like source:hash, got %q", in)
	}
	switch label {
	case "text", "html", "rtf":
	default:
		return "", fmt.Errorf("unknown signature source %q", label)
	}
	if len(hash) != 16 {
		return "", fmt.Errorf("signature hash must be 16 hex characters, got %d", len(hash))
	}
	for i := 0; i < len(hash); i++ {
		c := hash[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", fmt.Errorf("signature hash must be lowercase hex, got %q", c)
		}
	}
	return s, nil
}
