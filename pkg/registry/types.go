// Package registry implements the core interface-registry business logic.
package registry

// RegisterInput holds parameters for the register method.
type RegisterInput struct {
	App          string               `json:"app"`
	Name         string               `json:"name"`
	Description  string               `json:"description,omitempty"`
	Tags         []string             `json:"tags,omitempty"`
	Version      VersionInput         `json:"version"`
	Functions    []FunctionDefinition `json:"functions"`
	SetAsDefault bool                 `json:"setAsDefault,omitempty"`
	Env          string               `json:"env,omitempty"`
}

// VersionInput holds version parameters for register.
type VersionInput struct {
	Major      int    `json:"major"`
	Minor      int    `json:"minor"`
	Patch      int    `json:"patch"`
	Prerelease string `json:"prerelease,omitempty"`
	Changelog  string `json:"changelog,omitempty"`
}

// FunctionDefinition holds one function descriptor for register. Parameter
// types may use shorthand aliases (uint, int); they are canonicalized before
// storage.
type FunctionDefinition struct {
	Name            string      `json:"name"`
	Inputs          []ParamInfo `json:"inputs,omitempty"`
	Outputs         []ParamInfo `json:"outputs,omitempty"`
	StateMutability string      `json:"stateMutability,omitempty"`
	Description     string      `json:"description,omitempty"`
}

// ParamInfo is a single function input or output parameter.
type ParamInfo struct {
	Name string `json:"name,omitempty"`
	Type string `json:"type"`
}

// RegisterOutput holds the result of the register method.
type RegisterOutput struct {
	Action     string `json:"action"`
	ContractID string `json:"contractId"`
	VersionID  string `json:"versionId"`
	Contract   string `json:"contract"`
	Version    string `json:"version"`
	Subject    string `json:"subject"`
	Functions  int    `json:"functions"`
}

// ResolveInput holds parameters for the resolve method.
type ResolveInput struct {
	Contract         string `json:"contract"`
	Ver              string `json:"ver,omitempty"`
	Env              string `json:"env,omitempty"`
	IncludeFunctions bool   `json:"includeFunctions,omitempty"`
}

// ResolveOutput holds the result of the resolve method.
type ResolveOutput struct {
	Contract        string         `json:"contract"`
	CommsUrl        string         `json:"commsUrl"`
	Subject         string         `json:"subject"`
	Major           int            `json:"major"`
	ResolvedVersion string         `json:"resolvedVersion"`
	Status          string         `json:"status"`
	TTLSeconds      int            `json:"ttlSeconds"`
	Etag            string         `json:"etag"`
	Functions       []FunctionInfo `json:"functions,omitempty"`
}

// FunctionInfo holds one function descriptor in responses. Signature is the
// canonical form (name plus ordered canonical parameter types) and is the
// unique key; Name alone may be shared by overloads.
type FunctionInfo struct {
	Name            string      `json:"name"`
	Signature       string      `json:"signature"`
	Selector        string      `json:"selector"`
	Inputs          []ParamInfo `json:"inputs"`
	Outputs         []ParamInfo `json:"outputs,omitempty"`
	StateMutability string      `json:"stateMutability,omitempty"`
	Description     string      `json:"description,omitempty"`
}

// DescribeInput holds parameters for the describe method.
type DescribeInput struct {
	Contract string `json:"contract"`
	Major    *int   `json:"major,omitempty"`
	Version  string `json:"version,omitempty"`
	Env      string `json:"env,omitempty"`
}

// DescribeOutput holds the result of the describe method.
type DescribeOutput struct {
	Contract    string         `json:"contract"`
	App         string         `json:"app"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Version     string         `json:"version"`
	Major       int            `json:"major"`
	Status      string         `json:"status"`
	Functions   []FunctionInfo `json:"functions"`
	Tags        []string       `json:"tags"`
	Changelog   string         `json:"changelog,omitempty"`
}

// DiscoverInput holds parameters for the discover method.
type DiscoverInput struct {
	App    string   `json:"app,omitempty"`
	Tags   []string `json:"tags,omitempty"`
	Query  string   `json:"query,omitempty"`
	Status string   `json:"status,omitempty"`
	Env    string   `json:"env,omitempty"`
	Page   int      `json:"page,omitempty"`
	Limit  int      `json:"limit,omitempty"`
}

// DiscoverOutput holds the result of the discover method.
type DiscoverOutput struct {
	Contracts  []DiscoveredContract `json:"contracts"`
	Pagination Pagination           `json:"pagination"`
}

// DiscoveredContract holds discovery result for a single contract.
type DiscoveredContract struct {
	Contract      string   `json:"contract"`
	App           string   `json:"app"`
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Tags          []string `json:"tags"`
	ActiveMajor   int      `json:"activeMajor"`
	LatestVersion string   `json:"latestVersion"`
	Majors        []int    `json:"majors"`
	Status        string   `json:"status"`
}

// Pagination holds pagination information.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// UpgradeInput holds parameters for the upgrade method, which moves the
// active major for a contract (the registry's view of a proxy repoint).
type UpgradeInput struct {
	Contract string `json:"contract"`
	Major    int    `json:"major"`
	Env      string `json:"env,omitempty"`
}

// UpgradeOutput holds the result of the upgrade method.
type UpgradeOutput struct {
	Success       bool   `json:"success"`
	PreviousMajor *int   `json:"previousMajor,omitempty"`
	NewMajor      int    `json:"newMajor"`
	Subject       string `json:"subject"`
}

// DeprecateInput holds parameters for the deprecate and disable methods.
type DeprecateInput struct {
	Contract string `json:"contract"`
	Version  string `json:"version,omitempty"`
	Major    *int   `json:"major,omitempty"`
	Reason   string `json:"reason"`
}

// DeprecateOutput holds the result of the deprecate and disable methods.
type DeprecateOutput struct {
	Success          bool     `json:"success"`
	AffectedVersions []string `json:"affectedVersions"`
}

// ListVersionsInput holds parameters for the listVersions method.
type ListVersionsInput struct {
	Contract        string `json:"contract"`
	IncludeInactive bool   `json:"includeInactive,omitempty"`
	Env             string `json:"env,omitempty"`
}

// ListVersionsOutput holds the result of the listVersions method.
type ListVersionsOutput struct {
	Majors []MajorInfo `json:"majors"`
}

// MajorInfo holds information about one major version line.
type MajorInfo struct {
	Major         int    `json:"major"`
	LatestVersion string `json:"latestVersion"`
	Status        string `json:"status"`
	VersionCount  int    `json:"versionCount"`
	IsActive      bool   `json:"isActive"`
}

// HealthOutput holds the result of the health method.
type HealthOutput struct {
	Status    string       `json:"status"`
	Checks    HealthChecks `json:"checks"`
	Timestamp string       `json:"timestamp"`
}

// HealthChecks holds individual health check results.
type HealthChecks struct {
	Database bool `json:"database"`
	COMMS    bool `json:"comms,omitempty"`
}

// RegistryError is a structured error from the registry.
type RegistryError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func (e *RegistryError) Error() string {
	return e.Code + ": " + e.Message
}

// NewRegistryError creates a new RegistryError.
func NewRegistryError(code, message string) *RegistryError {
	return &RegistryError{Code: code, Message: message}
}
