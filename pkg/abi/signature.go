// Package abi models contract interfaces as sets of function descriptors
// keyed by canonical signature, with name lookup as a secondary index that is
// valid only when a name is unambiguous.
package abi

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/crypto/sha3"
)

var (
	functionNameRegex = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
	elementTypeRegex  = regexp.MustCompile(`^(uint|int)(8|16|24|32|40|48|56|64|72|80|88|96|104|112|120|128|136|144|152|160|168|176|184|192|200|208|216|224|232|240|248|256)$|^address$|^bool$|^string$|^bytes$|^bytes([1-9]|1[0-9]|2[0-9]|3[0-2])$`)
	arraySuffixRegex  = regexp.MustCompile(`^(\[[0-9]*\])+$`)
)

// CanonicalType normalizes a parameter type to its canonical ABI form:
// whitespace stripped, the uint/int aliases widened to uint256/int256
// (including inside array types). Returns an error for types that are not
// valid canonical element types.
func CanonicalType(typ string) (string, error) {
	t := strings.TrimSpace(typ)
	if t == "" {
		return "", fmt.Errorf("empty parameter type")
	}

	elem := t
	suffix := ""
	if idx := strings.Index(t, "["); idx >= 0 {
		elem = t[:idx]
		suffix = t[idx:]
		if !arraySuffixRegex.MatchString(suffix) {
			return "", fmt.Errorf("invalid array suffix in type %q", typ)
		}
	}

	switch elem {
	case "uint":
		elem = "uint256"
	case "int":
		elem = "int256"
	}

	if !elementTypeRegex.MatchString(elem) {
		return "", fmt.Errorf("invalid parameter type %q", typ)
	}
	return elem + suffix, nil
}

// ParseSignature splits a signature string of the form name(type1,type2,...)
// into its name and canonicalized parameter types.
func ParseSignature(sig string) (string, []string, error) {
	s := strings.TrimSpace(sig)

	open := strings.Index(s, "(")
	if open < 0 || !strings.HasSuffix(s, ")") {
		return "", nil, fmt.Errorf("invalid signature %q: expected name(type1,type2,...)", sig)
	}

	name := strings.TrimSpace(s[:open])
	if !functionNameRegex.MatchString(name) {
		return "", nil, fmt.Errorf("invalid function name %q in signature", name)
	}

	inner := s[open+1 : len(s)-1]
	if strings.TrimSpace(inner) == "" {
		return name, nil, nil
	}

	parts := strings.Split(inner, ",")
	types := make([]string, 0, len(parts))
	for _, p := range parts {
		canonical, err := CanonicalType(p)
		if err != nil {
			return "", nil, fmt.Errorf("signature %q: %w", sig, err)
		}
		types = append(types, canonical)
	}
	return name, types, nil
}

// Canonicalize returns the canonical form of a signature string.
func Canonicalize(sig string) (string, error) {
	name, types, err := ParseSignature(sig)
	if err != nil {
		return "", err
	}
	return BuildSignature(name, types), nil
}

// BuildSignature assembles a canonical signature from a name and parameter types.
// The types are assumed canonical already.
func BuildSignature(name string, types []string) string {
	return name + "(" + strings.Join(types, ",") + ")"
}

// IsSignature reports whether a function reference is a full signature rather
// than a bare name.
func IsSignature(ref string) bool {
	return strings.Contains(ref, "(")
}

// Selector computes the 4-byte keccak-256 selector of a canonical signature,
// hex-encoded with a 0x prefix.
func Selector(canonicalSig string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(canonicalSig))
	sum := h.Sum(nil)
	return "0x" + hex.EncodeToString(sum[:4])
}

// ValidateFunctionName validates a bare function name.
func ValidateFunctionName(name string) bool {
	return functionNameRegex.MatchString(name)
}

// intBits returns the bit width of an integer type, assuming the element
// type already passed canonical validation.
func intBits(elem string) int {
	s := strings.TrimPrefix(strings.TrimPrefix(elem, "uint"), "int")
	if s == "" {
		return 256
	}
	bits, err := strconv.Atoi(s)
	if err != nil {
		return 256
	}
	return bits
}
