// Package semver provides contract reference parsing and version resolution
// for upgradeable-contract implementation versions.
package semver

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const logPrefix = "semver:parser"

// ParsedContractRef holds the parsed components of a contract reference string.
type ParsedContractRef struct {
	// Full contract path (e.g. "demo/Box")
	Full string
	// Application namespace (e.g. "demo")
	App string
	// Contract name within the app (e.g. "Box")
	Name string
	// Version range if specified (e.g. "^2.0.0", "2", ""); empty means no version
	Range string
	// Raw input string
	Raw string
}

var (
	contractNameRegex = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
	appNameRegex      = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
	majorOnlyRegex    = regexp.MustCompile(`^\d+$`)
	exactVersionRegex = regexp.MustCompile(`^\d+\.\d+\.\d+(-[\w.]+)?(\+[\w.]+)?$`)
)

// ParseContractRef parses a contract reference of the form app/Name[@range].
// Examples:
//
//	demo/Box           (no version: default major, latest)
//	demo/Box@2         (major pin)
//	demo/Box@2.1.0     (exact version)
//	demo/Box@^2.1.0    (caret range)
//	demo/Box@>=2.0.0   (comparison range)
func ParseContractRef(input string) (*ParsedContractRef, error) {
	raw := strings.TrimSpace(input)

	contractPart := raw
	rangeStr := ""
	if at := strings.Index(raw, "@"); at >= 0 {
		contractPart = raw[:at]
		rangeStr = raw[at+1:]
	}

	slash := strings.Index(contractPart, "/")
	if slash < 0 {
		return nil, fmt.Errorf("%s - invalid contract reference, missing app: %s", logPrefix, raw)
	}

	app := contractPart[:slash]
	name := contractPart[slash+1:]
	if app == "" || name == "" {
		return nil, fmt.Errorf("%s - invalid contract reference: %s", logPrefix, raw)
	}

	return &ParsedContractRef{
		Full:  contractPart,
		App:   app,
		Name:  name,
		Range: rangeStr,
		Raw:   raw,
	}, nil
}

// BuildContractRef builds a full contract reference from parts.
func BuildContractRef(app, name, version string) string {
	ref := app + "/" + name
	if version != "" {
		ref += "@" + version
	}
	return ref
}

// IsMajorOnly checks if a range is a major-only specifier (e.g. "2").
func IsMajorOnly(rangeStr string) bool {
	return majorOnlyRegex.MatchString(rangeStr)
}

// IsExactVersion checks if a range is an exact version (e.g. "2.1.0").
func IsExactVersion(rangeStr string) bool {
	return exactVersionRegex.MatchString(rangeStr)
}

// ExtractMajorFromRange extracts the major version from a major-only range.
// Returns -1 when the range is not major-only.
func ExtractMajorFromRange(rangeStr string) int {
	if !IsMajorOnly(rangeStr) {
		return -1
	}
	major, err := strconv.Atoi(rangeStr)
	if err != nil {
		return -1
	}
	return major
}

// ValidateContractName validates a contract name (letters, digits, underscores,
// starting with a letter).
func ValidateContractName(name string) bool {
	return contractNameRegex.MatchString(name)
}

// ValidateAppName validates an app namespace (lowercase alphanumeric, hyphens).
func ValidateAppName(app string) bool {
	return appNameRegex.MatchString(app)
}
