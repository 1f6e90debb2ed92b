// Package events defines event types and publisher interfaces for interface
// change events.
package events

// InterfaceChangedEvent is emitted when a contract's registry entry changes:
// a new interface version is registered, the active major moves (upgrade), or
// versions are deprecated or disabled.
type InterfaceChangedEvent struct {
	App            string   `json:"app"`
	Contract       string   `json:"contract"`
	ChangedFields  []string `json:"changedFields"`
	NewActiveMajor *int     `json:"newActiveMajor,omitempty"`
	AffectedMajors []int    `json:"affectedMajors"`
	Revision       int      `json:"revision"`
	Etag           string   `json:"etag"`
	Timestamp      string   `json:"timestamp"`
	Env            string   `json:"env,omitempty"`
}
