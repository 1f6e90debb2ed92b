package abi

import (
	"fmt"
	"sort"
)

// Parameter is a single function input or output.
type Parameter struct {
	Name string `json:"name,omitempty"`
	Type string `json:"type"`
}

// Function describes one callable of a contract interface. Its canonical
// signature (name plus ordered canonical parameter types) is the unique key
// within an Interface; the name alone is not.
type Function struct {
	Name            string      `json:"name"`
	Inputs          []Parameter `json:"inputs"`
	Outputs         []Parameter `json:"outputs,omitempty"`
	StateMutability string      `json:"stateMutability,omitempty"`

	signature string
}

// Signature returns the canonical signature, e.g. "initialize(uint256,uint256)".
func (f *Function) Signature() string {
	if f.signature == "" {
		types := make([]string, len(f.Inputs))
		for i, p := range f.Inputs {
			canonical, err := CanonicalType(p.Type)
			if err != nil {
				canonical = p.Type
			}
			types[i] = canonical
		}
		f.signature = BuildSignature(f.Name, types)
	}
	return f.signature
}

// Selector returns the 4-byte keccak selector of the canonical signature.
func (f *Function) Selector() string {
	return Selector(f.Signature())
}

// Interface is a named collection of function descriptors. Descriptors may
// share a name (overloads) but never a canonical signature.
type Interface struct {
	Name string

	functions map[string]*Function
	byName    map[string][]*Function
	order     []string
}

// New creates an empty Interface.
func New(name string) *Interface {
	return &Interface{
		Name:      name,
		functions: make(map[string]*Function),
		byName:    make(map[string][]*Function),
	}
}

// Add registers a function descriptor. Parameter types are canonicalized and
// validated; a descriptor whose canonical signature is already present is
// rejected.
func (i *Interface) Add(fn Function) error {
	if !ValidateFunctionName(fn.Name) {
		return fmt.Errorf("interface %s: invalid function name %q", i.Name, fn.Name)
	}

	inputs := make([]Parameter, len(fn.Inputs))
	for idx, p := range fn.Inputs {
		canonical, err := CanonicalType(p.Type)
		if err != nil {
			return fmt.Errorf("interface %s: function %s input %d: %w", i.Name, fn.Name, idx, err)
		}
		inputs[idx] = Parameter{Name: p.Name, Type: canonical}
	}
	fn.Inputs = inputs
	fn.signature = ""

	sig := fn.Signature()
	if _, exists := i.functions[sig]; exists {
		return fmt.Errorf("interface %s: duplicate signature %s", i.Name, sig)
	}

	stored := fn
	i.functions[sig] = &stored
	i.byName[fn.Name] = append(i.byName[fn.Name], &stored)
	i.order = append(i.order, sig)
	return nil
}

// Len returns the number of function descriptors.
func (i *Interface) Len() int {
	return len(i.functions)
}

// Functions returns all descriptors sorted by canonical signature.
func (i *Interface) Functions() []*Function {
	sigs := make([]string, len(i.order))
	copy(sigs, i.order)
	sort.Strings(sigs)

	out := make([]*Function, 0, len(sigs))
	for _, s := range sigs {
		out = append(out, i.functions[s])
	}
	return out
}

// Overloads returns all descriptors sharing the given name, sorted by signature.
func (i *Interface) Overloads(name string) []*Function {
	fns := i.byName[name]
	out := make([]*Function, len(fns))
	copy(out, fns)
	sort.Slice(out, func(a, b int) bool { return out[a].Signature() < out[b].Signature() })
	return out
}

// Function looks up a descriptor by full signature. The input is
// canonicalized first, so "initialize(uint,  uint)" finds
// "initialize(uint256,uint256)". Returns UnknownSignatureError when no
// descriptor matches, and never consults the name index.
func (i *Interface) Function(signature string) (*Function, error) {
	canonical, err := Canonicalize(signature)
	if err != nil {
		return nil, &UnknownSignatureError{Signature: signature}
	}
	fn, ok := i.functions[canonical]
	if !ok {
		return nil, &UnknownSignatureError{Signature: canonical}
	}
	return fn, nil
}

// FunctionByName looks up a descriptor by bare name. Defined only when
// exactly one descriptor carries the name: overloads produce
// AmbiguousNameError, a miss produces UnknownSignatureError. Argument values
// are never used to pick between overloads — a numeric value compatible with
// several integer widths must be routed by full signature.
func (i *Interface) FunctionByName(name string) (*Function, error) {
	fns := i.byName[name]
	switch len(fns) {
	case 0:
		return nil, &UnknownSignatureError{Signature: name}
	case 1:
		return fns[0], nil
	default:
		sigs := make([]string, len(fns))
		for idx, fn := range fns {
			sigs[idx] = fn.Signature()
		}
		sort.Strings(sigs)
		return nil, &AmbiguousNameError{Name: name, Signatures: sigs}
	}
}

// Resolve dispatches a function reference to exactly one descriptor: full
// signatures go through Function, bare names through FunctionByName.
func (i *Interface) Resolve(ref string) (*Function, error) {
	if IsSignature(ref) {
		return i.Function(ref)
	}
	return i.FunctionByName(ref)
}
