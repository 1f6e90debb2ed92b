// Package artifact loads compiled contract artifacts and converts their ABI
// entries into interface descriptors.
package artifact

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/chainmint/interface-registry/pkg/abi"
)

const logPrefix = "artifact:loader"

// Entry is a single ABI entry in a compiled artifact. Only function entries
// carry interface information; constructors, events, and errors are skipped
// when building the interface.
type Entry struct {
	Type            string          `json:"type"`
	Name            string          `json:"name,omitempty"`
	Inputs          []abi.Parameter `json:"inputs,omitempty"`
	Outputs         []abi.Parameter `json:"outputs,omitempty"`
	StateMutability string          `json:"stateMutability,omitempty"`
}

// Artifact is a compiled contract artifact: identity, implementation version,
// and the ABI produced by the compiler.
type Artifact struct {
	ContractName string  `json:"contractName"`
	App          string  `json:"app"`
	Version      string  `json:"version"`
	Description  string  `json:"description,omitempty"`
	ABI          []Entry `json:"abi"`
}

// Load reads a contract artifact from a JSON file.
func Load(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s - failed to read artifact %s: %w", logPrefix, path, err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("%s - failed to parse artifact %s: %w", logPrefix, path, err)
	}

	if a.ContractName == "" {
		return nil, fmt.Errorf("%s - artifact %s missing contractName", logPrefix, path)
	}
	if len(a.ABI) == 0 {
		return nil, fmt.Errorf("%s - artifact %s has an empty abi", logPrefix, path)
	}

	slog.Info(fmt.Sprintf("%s - Loaded artifact %s (%d ABI entries) from %s",
		logPrefix, a.ContractName, len(a.ABI), path))
	return &a, nil
}

// Interface builds the contract interface from the artifact's function
// entries. Non-function entries are ignored; a duplicate canonical signature
// in the artifact is an error.
func (a *Artifact) Interface() (*abi.Interface, error) {
	iface := abi.New(a.ContractName)
	for _, e := range a.ABI {
		if e.Type != "function" {
			continue
		}
		fn := abi.Function{
			Name:            e.Name,
			Inputs:          e.Inputs,
			Outputs:         e.Outputs,
			StateMutability: e.StateMutability,
		}
		if err := iface.Add(fn); err != nil {
			return nil, fmt.Errorf("%s - artifact %s: %w", logPrefix, a.ContractName, err)
		}
	}
	if iface.Len() == 0 {
		return nil, fmt.Errorf("%s - artifact %s has no function entries", logPrefix, a.ContractName)
	}
	return iface, nil
}
