package commsutil

import (
	"fmt"
	"strings"
)

// Default COMMS subjects.
const (
	SubjectRegistry    = "contract.system.registry.v1"
	SubjectChangeEvent = "interface.changed"
)

// BuildChangeSubject builds a granular change event subject for a contract.
func BuildChangeSubject(app, name string) string {
	return fmt.Sprintf("interface.changed.%s.%s", app, safeToken(name))
}

// BuildEndpointSubject builds the COMMS subject a contract's implementation
// listens on for a given major version.
func BuildEndpointSubject(app, name string, major int) string {
	return fmt.Sprintf("contract.%s.%s.v%d", app, safeToken(name), major)
}

func safeToken(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}
