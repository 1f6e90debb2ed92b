package abi

import "testing"

func TestCanonicalType(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"uint widens to uint256", "uint", "uint256", false},
		{"int widens to int256", "int", "int256", false},
		{"uint256 unchanged", "uint256", "uint256", false},
		{"uint8 unchanged", "uint8", "uint8", false},
		{"address", "address", "address", false},
		{"bool", "bool", "bool", false},
		{"string", "string", "string", false},
		{"bytes", "bytes", "bytes", false},
		{"bytes32", "bytes32", "bytes32", false},
		{"whitespace stripped", "  uint256 ", "uint256", false},
		{"dynamic array", "uint[]", "uint256[]", false},
		{"fixed array", "uint[3]", "uint256[3]", false},
		{"nested array", "address[2][]", "address[2][]", false},
		{"invalid width", "uint7", "", true},
		{"bytes33 invalid", "bytes33", "", true},
		{"empty", "", "", true},
		{"garbage", "uint256x", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CanonicalType(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("abi:signature_test - CanonicalType(%q) expected error, got %q", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("abi:signature_test - CanonicalType(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("abi:signature_test - CanonicalType(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{"already canonical", "initialize(uint256,uint256)", "initialize(uint256,uint256)", false},
		{"aliases widened", "initialize(uint,uint)", "initialize(uint256,uint256)", false},
		{"whitespace stripped", "transfer( address , uint256 )", "transfer(address,uint256)", false},
		{"no parameters", "greet()", "greet()", false},
		{"three params", "initialize(uint256,address,address)", "initialize(uint256,address,address)", false},
		{"missing parens", "initialize", "", true},
		{"unbalanced", "initialize(uint256", "", true},
		{"bad name", "9lives(uint256)", "", true},
		{"bad type", "f(uint257)", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Canonicalize(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("abi:signature_test - Canonicalize(%q) expected error, got %q", tt.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("abi:signature_test - Canonicalize(%q) error: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("abi:signature_test - Canonicalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSelector(t *testing.T) {
	// Known selectors for canonical ERC-20 signatures.
	tests := []struct {
		sig  string
		want string
	}{
		{"transfer(address,uint256)", "0xa9059cbb"},
		{"balanceOf(address)", "0x70a08231"},
		{"totalSupply()", "0x18160ddd"},
		{"approve(address,uint256)", "0x095ea7b3"},
	}

	for _, tt := range tests {
		if got := Selector(tt.sig); got != tt.want {
			t.Errorf("abi:signature_test - Selector(%q) = %s, want %s", tt.sig, got, tt.want)
		}
	}
}

func TestIsSignature(t *testing.T) {
	if !IsSignature("greet()") {
		t.Error("abi:signature_test - IsSignature(\"greet()\") = false, want true")
	}
	if IsSignature("greet") {
		t.Error("abi:signature_test - IsSignature(\"greet\") = true, want false")
	}
}
