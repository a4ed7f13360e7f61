package cipher

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrInvalidMetadata marks metadata that cannot drive DecodeWithMetadata:
// unreadable, wrong type, unknown token or wrong length.
var ErrInvalidMetadata = errors.New("invalid metadata")

// Metadata is the per-rune class sequence produced by Encode, aligned with
// the cipher text by rune index.
type Metadata []Class

// #region codec

// MarshalMetadata serializes meta as a JSON array of class tokens.
func MarshalMetadata(meta Metadata) ([]byte, error) {
	if meta == nil {
		meta = Metadata{}
	}
	data, err := json.Marshal([]Class(meta))
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	return data, nil
}

// ParseMetadata decodes a JSON array of class tokens. Every failure wraps
// ErrInvalidMetadata.
func ParseMetadata(data []byte) (Metadata, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: not an array", ErrInvalidMetadata)
	}
	var tokens []string
	if err := json.Unmarshal(trimmed, &tokens); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMetadata, err)
	}
	meta := make(Metadata, len(tokens))
	for i, t := range tokens {
		k, ok := ParseClass(t)
		if !ok {
			return nil, fmt.Errorf("%w: unknown token %q at %d", ErrInvalidMetadata, t, i)
		}
		meta[i] = k
	}
	return meta, nil
}

// CheckMetadata reports whether meta can decode cipherText.
func CheckMetadata(meta Metadata, cipherText string) error {
	if meta == nil {
		return fmt.Errorf("%w: none", ErrInvalidMetadata)
	}
	if n := utf8.RuneCountInString(cipherText); len(meta) != n {
		return fmt.Errorf("%w: length %d, cipher text has %d", ErrInvalidMetadata, len(meta), n)
	}
	return nil
}

// #endregion codec
