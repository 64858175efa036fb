package domain

import "strings"

const addressHexLen = 64

// NormalizeAddress returns the canonical form of a Sui address: lowercase,
// "0x" prefixed and left-padded to 64 hex digits, so "0xAB" and
// "0x00...ab" name the same owner. Strings that are not addresses are
// returned unchanged.
func NormalizeAddress(addr string) string {
	trimmed := strings.TrimSpace(addr)
	if len(trimmed) < 3 || (trimmed[:2] != "0x" && trimmed[:2] != "0X") {
		return addr
	}
	digits := strings.ToLower(trimmed[2:])
	if len(digits) > addressHexLen {
		return addr
	}
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return addr
		}
	}
	return "0x" + strings.Repeat("0", addressHexLen-len(digits)) + digits
}

// SameAddress reports whether a and b name the same owner.
func SameAddress(a, b string) bool {
	return NormalizeAddress(a) == NormalizeAddress(b)
}
