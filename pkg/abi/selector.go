package abi

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Selector is the 4-byte identifier callers use to address a constructor or
// message.
type Selector [4]byte

// SelectorFromUint32 returns the big-endian selector of v.
func SelectorFromUint32(v uint32) Selector {
	var s Selector
	binary.BigEndian.PutUint32(s[:], v)
	return s
}

// Uint32 returns the selector as a big-endian integer.
func (s Selector) Uint32() uint32 {
	return binary.BigEndian.Uint32(s[:])
}

// Hex returns the selector as a single 0x-prefixed lowercase hex string.
func (s Selector) Hex() string {
	return "0x" + hex.EncodeToString(s[:])
}

// String renders the selector the way manifests carry it:
// ["0x07","0x5B","0xCD","0x15"].
func (s Selector) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range s {
		if i > 0 {
			b.WriteByte(',')
		}
		fmt.Fprintf(&b, `"0x%02X"`, v)
	}
	b.WriteByte(']')
	return b.String()
}

// MarshalJSON encodes the rendered selector as a JSON string.
func (s Selector) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts any form ParseSelector accepts.
func (s *Selector) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSelector, err)
	}
	sel, err := ParseSelector(text)
	if err != nil {
		return err
	}
	*s = sel
	return nil
}

// ParseSelector parses "0x075BCD15", "075bcd15" or the rendered array form
// ["0x07","0x5B","0xCD","0x15"].
func ParseSelector(text string) (Selector, error) {
	var sel Selector
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "[") {
		var parts []string
		if err := json.Unmarshal([]byte(text), &parts); err != nil {
			return sel, fmt.Errorf("%w: %q", ErrInvalidSelector, text)
		}
		if len(parts) != len(sel) {
			return sel, fmt.Errorf("%w: expected %d bytes, got %d", ErrInvalidSelector, len(sel), len(parts))
		}
		for i, p := range parts {
			b, err := decodeHex(p)
			if err != nil || len(b) != 1 {
				return sel, fmt.Errorf("%w: byte %d is %q", ErrInvalidSelector, i, p)
			}
			sel[i] = b[0]
		}
		return sel, nil
	}

	b, err := decodeHex(text)
	if err != nil || len(b) != len(sel) {
		return sel, fmt.Errorf("%w: %q", ErrInvalidSelector, text)
	}
	copy(sel[:], b)
	return sel, nil
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return hex.DecodeString(s)
}

// SelectorHash names a selector derivation scheme.
type SelectorHash string

const (
	// HashBlake2b takes the first four bytes of the blake2b-256 digest of
	// the entry point label.
	HashBlake2b SelectorHash = "blake2b"
	// HashKeccak takes the first four bytes of the legacy keccak-256 digest
	// of the signature "name(type,...)".
	HashKeccak SelectorHash = "keccak"
)

// ParseSelectorHash validates a hash name.
func ParseSelectorHash(name string) (SelectorHash, error) {
	switch h := SelectorHash(strings.ToLower(strings.TrimSpace(name))); h {
	case HashBlake2b, HashKeccak:
		return h, nil
	default:
		return "", fmt.Errorf("unknown selector hash %q (want %s or %s)", name, HashBlake2b, HashKeccak)
	}
}

// DeriveSelector hashes signature with the given scheme.
func DeriveSelector(hash SelectorHash, signature string) (Selector, error) {
	var sel Selector
	switch hash {
	case HashBlake2b:
		sum := blake2b.Sum256([]byte(signature))
		copy(sel[:], sum[:4])
	case HashKeccak:
		h := sha3.NewLegacyKeccak256()
		h.Write([]byte(signature))
		copy(sel[:], h.Sum(nil)[:4])
	default:
		return sel, fmt.Errorf("unknown selector hash %q", hash)
	}
	return sel, nil
}
