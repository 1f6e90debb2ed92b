package abi

import (
	"encoding/json"
	"fmt"
	"math/big"
	"regexp"
	"strconv"
	"strings"
)

var (
	addressRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	hexDataRegex = regexp.MustCompile(`^0x([0-9a-fA-F]{2})*$`)
	decimalRegex = regexp.MustCompile(`^-?[0-9]+$`)
)

// CheckArgs validates argument values against a descriptor's parameters.
// Count and types must match exactly; on failure an ArgumentMismatchError
// names the resolved signature and the first offending argument. Values are
// expected in their JSON-decoded form (float64, string, bool, []interface{},
// json.Number).
func CheckArgs(fn *Function, args []interface{}) error {
	if len(args) != len(fn.Inputs) {
		return &ArgumentMismatchError{
			Signature: fn.Signature(),
			Reason:    fmt.Sprintf("expected %d arguments, got %d", len(fn.Inputs), len(args)),
		}
	}
	for i, p := range fn.Inputs {
		if err := checkValue(p.Type, args[i]); err != nil {
			return &ArgumentMismatchError{
				Signature: fn.Signature(),
				Reason:    fmt.Sprintf("argument %d (%s): %v", i, p.Type, err),
			}
		}
	}
	return nil
}

func checkValue(typ string, v interface{}) error {
	if idx := strings.Index(typ, "["); idx >= 0 {
		return checkArrayValue(typ, idx, v)
	}

	switch {
	case strings.HasPrefix(typ, "uint"), strings.HasPrefix(typ, "int"):
		return checkIntValue(typ, v)
	case typ == "address":
		s, ok := v.(string)
		if !ok || !addressRegex.MatchString(s) {
			return fmt.Errorf("expected 0x-prefixed 20-byte address, got %v", describe(v))
		}
		return nil
	case typ == "bool":
		if _, ok := v.(bool); !ok {
			return fmt.Errorf("expected bool, got %v", describe(v))
		}
		return nil
	case typ == "string":
		if _, ok := v.(string); !ok {
			return fmt.Errorf("expected string, got %v", describe(v))
		}
		return nil
	case typ == "bytes" || strings.HasPrefix(typ, "bytes"):
		return checkBytesValue(typ, v)
	default:
		return fmt.Errorf("unsupported parameter type %q", typ)
	}
}

// checkArrayValue validates a value against an array type like uint256[3] or
// address[]. Only the outermost dimension is split off; inner dimensions are
// validated recursively.
func checkArrayValue(typ string, bracket int, v interface{}) error {
	elemType := typ[:bracket]
	dims := typ[bracket:]

	// Outermost dimension is the last bracket pair in ABI array notation.
	lastOpen := strings.LastIndex(dims, "[")
	innerType := elemType + dims[:lastOpen]
	sizeStr := strings.TrimSuffix(dims[lastOpen+1:], "]")

	arr, ok := v.([]interface{})
	if !ok {
		return fmt.Errorf("expected array for %s, got %v", typ, describe(v))
	}
	if sizeStr != "" {
		size, err := strconv.Atoi(sizeStr)
		if err != nil {
			return fmt.Errorf("invalid array size in %q", typ)
		}
		if len(arr) != size {
			return fmt.Errorf("expected %d elements for %s, got %d", size, typ, len(arr))
		}
	}
	for i, elem := range arr {
		if err := checkValue(innerType, elem); err != nil {
			return fmt.Errorf("element %d: %v", i, err)
		}
	}
	return nil
}

func checkIntValue(typ string, v interface{}) error {
	unsigned := strings.HasPrefix(typ, "uint")
	bits := intBits(typ)

	var n *big.Int
	switch val := v.(type) {
	case float64:
		if val != float64(int64(val)) {
			return fmt.Errorf("expected integer, got non-integral number %v", val)
		}
		n = big.NewInt(int64(val))
	case json.Number:
		parsed, ok := new(big.Int).SetString(val.String(), 10)
		if !ok {
			return fmt.Errorf("expected integer, got %q", val.String())
		}
		n = parsed
	case string:
		if !decimalRegex.MatchString(val) {
			return fmt.Errorf("expected decimal integer string, got %q", val)
		}
		n, _ = new(big.Int).SetString(val, 10)
	default:
		return fmt.Errorf("expected integer, got %v", describe(v))
	}

	if unsigned {
		if n.Sign() < 0 {
			return fmt.Errorf("negative value %s for %s", n, typ)
		}
		max := new(big.Int).Lsh(big.NewInt(1), uint(bits))
		if n.Cmp(max) >= 0 {
			return fmt.Errorf("value %s overflows %s", n, typ)
		}
		return nil
	}

	limit := new(big.Int).Lsh(big.NewInt(1), uint(bits-1))
	min := new(big.Int).Neg(limit)
	if n.Cmp(min) < 0 || n.Cmp(limit) >= 0 {
		return fmt.Errorf("value %s overflows %s", n, typ)
	}
	return nil
}

func checkBytesValue(typ string, v interface{}) error {
	s, ok := v.(string)
	if !ok || !hexDataRegex.MatchString(s) {
		return fmt.Errorf("expected 0x-prefixed hex string for %s, got %v", typ, describe(v))
	}
	if typ == "bytes" {
		return nil
	}
	size, err := strconv.Atoi(strings.TrimPrefix(typ, "bytes"))
	if err != nil {
		return fmt.Errorf("invalid bytes size in %q", typ)
	}
	if got := (len(s) - 2) / 2; got != size {
		return fmt.Errorf("expected %d bytes for %s, got %d", size, typ, got)
	}
	return nil
}

func describe(v interface{}) string {
	if v == nil {
		return "null"
	}
	return fmt.Sprintf("%T(%v)", v, v)
}
