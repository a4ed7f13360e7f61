package cipher

import "fmt"

// #region class

// Class is the shift class of a single plaintext rune.
type Class uint8

const (
	Other Class = iota
	LowerFirstHalf
	LowerSecondHalf
	UpperFirstHalf
	UpperSecondHalf
)

var classTokens = [...]string{
	Other:           "O",
	LowerFirstHalf:  "L1",
	LowerSecondHalf: "L2",
	UpperFirstHalf:  "U1",
	UpperSecondHalf: "U2",
}

// #endregion class

// #region classify

func isLower(r rune) bool { return r >= 'a' && r <= 'z' }
func isUpper(r rune) bool { return r >= 'A' && r <= 'Z' }

// Classify maps r to its class. Anything outside a-z and A-Z is Other.
func Classify(r rune) Class {
	switch {
	case isLower(r):
		if r <= 'm' {
			return LowerFirstHalf
		}
		return LowerSecondHalf
	case isUpper(r):
		if r <= 'M' {
			return UpperFirstHalf
		}
		return UpperSecondHalf
	default:
		return Other
	}
}

// #endregion classify

// #region text-encoding

// String returns the persisted token for k.
func (k Class) String() string {
	if int(k) < len(classTokens) {
		return classTokens[k]
	}
	return fmt.Sprintf("Class(%d)", uint8(k))
}

// ParseClass resolves a persisted token.
func ParseClass(token string) (Class, bool) {
	for k, t := range classTokens {
		if t == token {
			return Class(k), true
		}
	}
	return Other, false
}

func (k Class) MarshalText() ([]byte, error) {
	if int(k) >= len(classTokens) {
		return nil, fmt.Errorf("unknown class %d", uint8(k))
	}
	return []byte(classTokens[k]), nil
}

func (k *Class) UnmarshalText(b []byte) error {
	c, ok := ParseClass(string(b))
	if !ok {
		return fmt.Errorf("unknown class token %q", b)
	}
	*k = c
	return nil
}

// #endregion text-encoding
