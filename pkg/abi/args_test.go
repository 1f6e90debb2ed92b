package abi

import (
	"errors"
	"testing"
)

func initTwoArgs(t *testing.T) *Function {
	t.Helper()
	iface := boxInterface(t)
	fn, err := iface.Function("initialize(uint256,uint256)")
	if err != nil {
		t.Fatalf("abi:args_test - Function: %v", err)
	}
	return fn
}

func TestCheckArgs_Arity(t *testing.T) {
	fn := initTwoArgs(t)

	if err := CheckArgs(fn, []interface{}{float64(42), float64(100)}); err != nil {
		t.Fatalf("abi:args_test - CheckArgs with two integers: %v", err)
	}

	err := CheckArgs(fn, []interface{}{float64(42), float64(100), float64(7)})
	var mismatch *ArgumentMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("abi:args_test - expected ArgumentMismatchError for three args, got %T: %v", err, err)
	}
	if mismatch.Signature != "initialize(uint256,uint256)" {
		t.Errorf("abi:args_test - mismatch.Signature = %q", mismatch.Signature)
	}

	if err := CheckArgs(fn, nil); err == nil {
		t.Error("abi:args_test - expected ArgumentMismatchError for zero args")
	}
}

func TestCheckArgs_Types(t *testing.T) {
	tests := []struct {
		name    string
		typ     string
		value   interface{}
		wantErr bool
	}{
		{"uint256 from number", "uint256", float64(42), false},
		{"uint256 from decimal string", "uint256", "115792089237316195423570985008687907853269984665640564039457584007913129639935", false},
		{"uint256 negative", "uint256", float64(-1), true},
		{"uint8 overflow", "uint8", float64(256), true},
		{"uint8 max", "uint8", float64(255), false},
		{"int256 negative ok", "int256", float64(-5), false},
		{"int8 overflow", "int8", float64(128), true},
		{"non-integral number", "uint256", 1.5, true},
		{"integer from bool", "uint256", true, true},
		{"address valid", "address", "0x1f9090aaE28b8a3dCeaDf281B0F12828e676c326", false},
		{"address short", "address", "0x1f9090", true},
		{"address not string", "address", float64(1), true},
		{"bool valid", "bool", true, false},
		{"bool from string", "bool", "true", true},
		{"string valid", "string", "A sample", false},
		{"string from number", "string", float64(1), true},
		{"bytes valid", "bytes", "0xdeadbeef", false},
		{"bytes empty", "bytes", "0x", false},
		{"bytes odd length", "bytes", "0xabc", true},
		{"bytes32 exact", "bytes32", "0x" + repeatHex("00", 32), false},
		{"bytes32 wrong size", "bytes32", "0xdead", true},
		{"dynamic array", "uint256[]", []interface{}{float64(1), float64(2)}, false},
		{"fixed array size ok", "uint256[2]", []interface{}{float64(1), float64(2)}, false},
		{"fixed array size wrong", "uint256[2]", []interface{}{float64(1)}, true},
		{"array element type wrong", "uint256[]", []interface{}{"nope"}, true},
		{"array from scalar", "uint256[]", float64(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn := &Function{Name: "f", Inputs: []Parameter{{Name: "a", Type: tt.typ}}}
			err := CheckArgs(fn, []interface{}{tt.value})
			if tt.wantErr && err == nil {
				t.Errorf("abi:args_test - CheckArgs(%s, %v) expected error", tt.typ, tt.value)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("abi:args_test - CheckArgs(%s, %v): %v", tt.typ, tt.value, err)
			}
		})
	}
}

func repeatHex(pair string, n int) string {
	out := ""
	for i := 0; i < n; i++ {
		out += pair
	}
	return out
}
