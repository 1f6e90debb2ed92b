package db

import "time"

// Contract represents a row in the contracts table.
type Contract struct {
	ID          string    `json:"id"`
	App         string    `json:"app"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Tags        []string  `json:"tags"`
	Status      string    `json:"status"`
	Revision    int       `json:"revision"`
	Created     time.Time `json:"created"`
	CreatedBy   string    `json:"created_by"`
	Modified    time.Time `json:"modified"`
	ModifiedBy  string    `json:"modified_by"`
}

// InterfaceVersion represents a row in the interface_versions table: one
// implementation version of a contract's interface.
type InterfaceVersion struct {
	ID                string     `json:"id"`
	ContractID        string     `json:"contract_id"`
	Major             int        `json:"major"`
	Minor             int        `json:"minor"`
	Patch             int        `json:"patch"`
	Prerelease        *string    `json:"prerelease,omitempty"`
	Status            string     `json:"status"`
	DeprecationReason *string    `json:"deprecation_reason,omitempty"`
	DeprecatedAt      *time.Time `json:"deprecated_at,omitempty"`
	DisabledAt        *time.Time `json:"disabled_at,omitempty"`
	Changelog         *string    `json:"changelog,omitempty"`
	Created           time.Time  `json:"created"`
	CreatedBy         string     `json:"created_by"`
	Modified          time.Time  `json:"modified"`
	ModifiedBy        string     `json:"modified_by"`
}

// InterfaceFunction represents a row in the interface_functions table: one
// function descriptor of an interface version, keyed by canonical signature.
type InterfaceFunction struct {
	ID          string    `json:"id"`
	VersionID   string    `json:"version_id"`
	Name        string    `json:"name"`
	Signature   string    `json:"signature"`
	Selector    string    `json:"selector"`
	Inputs      []byte    `json:"inputs"`
	Outputs     []byte    `json:"outputs,omitempty"`
	Mutability  string    `json:"mutability"`
	Description *string   `json:"description,omitempty"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
}

// InterfaceDefault represents a row in the interface_defaults table: the
// active (default) major for a contract in an environment — the registry's
// view of where the proxy points.
type InterfaceDefault struct {
	ID           string    `json:"id"`
	ContractID   string    `json:"contract_id"`
	DefaultMajor int       `json:"default_major"`
	Env          string    `json:"env"`
	Created      time.Time `json:"created"`
	CreatedBy    string    `json:"created_by"`
	Modified     time.Time `json:"modified"`
	ModifiedBy   string    `json:"modified_by"`
}
