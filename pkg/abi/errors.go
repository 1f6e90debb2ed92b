package abi

import (
	"fmt"
	"strings"
)

// AmbiguousNameError is returned when a bare function name matches more than
// one descriptor in an interface. The caller must retry with one of the full
// signatures listed in Signatures.
type AmbiguousNameError struct {
	Name       string
	Signatures []string
}

func (e *AmbiguousNameError) Error() string {
	return fmt.Sprintf("ambiguous function name %q: matches %s; call by full signature",
		e.Name, strings.Join(e.Signatures, ", "))
}

// UnknownSignatureError is returned when no descriptor matches the given
// signature (or bare name, when the name matches nothing at all).
type UnknownSignatureError struct {
	Signature string
}

func (e *UnknownSignatureError) Error() string {
	return fmt.Sprintf("no function matches signature %q", e.Signature)
}

// ArgumentMismatchError is returned when argument count or types do not match
// the resolved descriptor's parameters.
type ArgumentMismatchError struct {
	Signature string
	Reason    string
}

func (e *ArgumentMismatchError) Error() string {
	return fmt.Sprintf("arguments do not match %s: %s", e.Signature, e.Reason)
}
