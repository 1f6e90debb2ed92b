package abi

import (
	"errors"
	"testing"
)

// upgradeable-contract shape: a derived initializer next to the base one it
// chains to, same name, different arity.
func boxInterface(t *testing.T) *Interface {
	t.Helper()
	iface := New("BoxV2")
	fns := []Function{
		{
			Name:            "initialize",
			Inputs:          []Parameter{{Name: "value", Type: "uint256"}, {Name: "cap", Type: "uint256"}},
			StateMutability: "nonpayable",
		},
		{
			Name: "initialize",
			Inputs: []Parameter{
				{Name: "value", Type: "uint256"},
				{Name: "admin", Type: "address"},
				{Name: "operator", Type: "address"},
			},
			StateMutability: "nonpayable",
		},
		{
			Name:            "greet",
			Outputs:         []Parameter{{Type: "string"}},
			StateMutability: "view",
		},
	}
	for _, fn := range fns {
		if err := iface.Add(fn); err != nil {
			t.Fatalf("abi:types_test - Add(%s): %v", fn.Name, err)
		}
	}
	return iface
}

func TestFunctionByName_Ambiguous(t *testing.T) {
	iface := boxInterface(t)

	_, err := iface.FunctionByName("initialize")
	if err == nil {
		t.Fatal("abi:types_test - expected AmbiguousNameError for overloaded name")
	}
	var ambErr *AmbiguousNameError
	if !errors.As(err, &ambErr) {
		t.Fatalf("abi:types_test - expected AmbiguousNameError, got %T: %v", err, err)
	}
	if ambErr.Name != "initialize" {
		t.Errorf("abi:types_test - ambErr.Name = %q, want %q", ambErr.Name, "initialize")
	}
	if len(ambErr.Signatures) != 2 {
		t.Fatalf("abi:types_test - ambErr.Signatures = %v, want 2 entries", ambErr.Signatures)
	}
	if ambErr.Signatures[0] != "initialize(uint256,address,address)" ||
		ambErr.Signatures[1] != "initialize(uint256,uint256)" {
		t.Errorf("abi:types_test - ambErr.Signatures = %v", ambErr.Signatures)
	}
}

func TestFunctionByName_Unique(t *testing.T) {
	iface := boxInterface(t)

	fn, err := iface.FunctionByName("greet")
	if err != nil {
		t.Fatalf("abi:types_test - FunctionByName(greet): %v", err)
	}
	if fn.Signature() != "greet()" {
		t.Errorf("abi:types_test - signature = %q, want %q", fn.Signature(), "greet()")
	}
}

func TestFunctionByName_Unknown(t *testing.T) {
	iface := boxInterface(t)

	_, err := iface.FunctionByName("destroy")
	var unkErr *UnknownSignatureError
	if !errors.As(err, &unkErr) {
		t.Fatalf("abi:types_test - expected UnknownSignatureError, got %T: %v", err, err)
	}
}

func TestFunction_BySignature(t *testing.T) {
	iface := boxInterface(t)

	fn, err := iface.Function("initialize(uint256,uint256)")
	if err != nil {
		t.Fatalf("abi:types_test - Function(initialize(uint256,uint256)): %v", err)
	}
	if fn.Signature() != "initialize(uint256,uint256)" {
		t.Errorf("abi:types_test - resolved %q, want the two-arg overload", fn.Signature())
	}

	// Non-canonical input resolves to the same descriptor.
	alias, err := iface.Function("initialize(uint, uint)")
	if err != nil {
		t.Fatalf("abi:types_test - Function with alias types: %v", err)
	}
	if alias != fn {
		t.Error("abi:types_test - alias lookup resolved a different descriptor")
	}
}

func TestFunction_UnknownSignature(t *testing.T) {
	iface := boxInterface(t)

	_, err := iface.Function("initialize(uint256)")
	var unkErr *UnknownSignatureError
	if !errors.As(err, &unkErr) {
		t.Fatalf("abi:types_test - expected UnknownSignatureError, got %T: %v", err, err)
	}
	if unkErr.Signature != "initialize(uint256)" {
		t.Errorf("abi:types_test - unkErr.Signature = %q", unkErr.Signature)
	}
}

func TestResolve(t *testing.T) {
	iface := boxInterface(t)

	tests := []struct {
		name    string
		ref     string
		wantSig string
		wantErr interface{}
	}{
		{"bare unique name", "greet", "greet()", nil},
		{"bare overloaded name", "initialize", "", &AmbiguousNameError{}},
		{"full signature", "initialize(uint256,uint256)", "initialize(uint256,uint256)", nil},
		{"full signature three args", "initialize(uint256,address,address)", "initialize(uint256,address,address)", nil},
		{"unknown signature", "greet(uint256)", "", &UnknownSignatureError{}},
		{"unknown name", "pause", "", &UnknownSignatureError{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := iface.Resolve(tt.ref)
			if tt.wantErr != nil {
				if err == nil {
					t.Fatalf("abi:types_test - Resolve(%q) expected error", tt.ref)
				}
				switch tt.wantErr.(type) {
				case *AmbiguousNameError:
					var e *AmbiguousNameError
					if !errors.As(err, &e) {
						t.Errorf("abi:types_test - Resolve(%q) error = %T, want AmbiguousNameError", tt.ref, err)
					}
				case *UnknownSignatureError:
					var e *UnknownSignatureError
					if !errors.As(err, &e) {
						t.Errorf("abi:types_test - Resolve(%q) error = %T, want UnknownSignatureError", tt.ref, err)
					}
				}
				return
			}
			if err != nil {
				t.Fatalf("abi:types_test - Resolve(%q): %v", tt.ref, err)
			}
			if fn.Signature() != tt.wantSig {
				t.Errorf("abi:types_test - Resolve(%q) = %q, want %q", tt.ref, fn.Signature(), tt.wantSig)
			}
		})
	}
}

func TestAdd_DuplicateSignature(t *testing.T) {
	iface := New("Box")
	fn := Function{Name: "store", Inputs: []Parameter{{Type: "uint256"}}}
	if err := iface.Add(fn); err != nil {
		t.Fatalf("abi:types_test - Add: %v", err)
	}
	// Alias type spells the same canonical signature.
	dup := Function{Name: "store", Inputs: []Parameter{{Type: "uint"}}}
	if err := iface.Add(dup); err == nil {
		t.Error("abi:types_test - expected duplicate signature to be rejected")
	}
}

func TestOverloads(t *testing.T) {
	iface := boxInterface(t)

	overloads := iface.Overloads("initialize")
	if len(overloads) != 2 {
		t.Fatalf("abi:types_test - Overloads(initialize) = %d entries, want 2", len(overloads))
	}
	if overloads[0].Signature() != "initialize(uint256,address,address)" {
		t.Errorf("abi:types_test - overloads[0] = %q", overloads[0].Signature())
	}
	if got := iface.Overloads("nothing"); len(got) != 0 {
		t.Errorf("abi:types_test - Overloads(nothing) = %d entries, want 0", len(got))
	}
}

func TestFunctions_SortedBySignature(t *testing.T) {
	iface := boxInterface(t)

	fns := iface.Functions()
	if len(fns) != 3 {
		t.Fatalf("abi:types_test - Functions() = %d entries, want 3", len(fns))
	}
	for i := 1; i < len(fns); i++ {
		if fns[i-1].Signature() > fns[i].Signature() {
			t.Errorf("abi:types_test - Functions() not sorted: %q > %q", fns[i-1].Signature(), fns[i].Signature())
		}
	}
}
