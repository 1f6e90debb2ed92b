package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/chainmint/interface-registry/pkg/abi"
	"github.com/chainmint/interface-registry/pkg/commsutil"
	"github.com/chainmint/interface-registry/pkg/db"
	"github.com/chainmint/interface-registry/pkg/events"
	"github.com/chainmint/interface-registry/pkg/semver"
)

const (
	defaultTTLSeconds = 300
	defaultEnv        = "development"
)

// Config holds registry configuration.
type Config struct {
	DefaultTTLSeconds int
	DefaultEnv        string
	// CommsUrl is the COMMS server URL where contract endpoint subjects live.
	// Included in resolve responses so clients know where to connect.
	CommsUrl string
}

// DefaultConfig returns the default registry configuration.
func DefaultConfig() Config {
	return Config{
		DefaultTTLSeconds: defaultTTLSeconds,
		DefaultEnv:        defaultEnv,
	}
}

// Registry is the main registry service containing all business logic methods.
type Registry struct {
	repo      *db.Repository
	publisher events.EventPublisher
	config    Config
}

// NewRegistryParams holds parameters for NewRegistry.
type NewRegistryParams struct {
	Repo      *db.Repository
	Publisher events.EventPublisher
	Config    Config
}

// NewRegistry creates a new Registry instance.
func NewRegistry(params NewRegistryParams) *Registry {
	cfg := params.Config
	if cfg.DefaultTTLSeconds == 0 {
		cfg.DefaultTTLSeconds = defaultTTLSeconds
	}
	if cfg.DefaultEnv == "" {
		cfg.DefaultEnv = defaultEnv
	}

	pub := params.Publisher
	if pub == nil {
		pub = &events.NoOpPublisher{}
	}

	return &Registry{
		repo:      params.Repo,
		publisher: pub,
		config:    cfg,
	}
}

// getEnv returns the request environment or the configured default.
func (r *Registry) getEnv(env string) string {
	if env != "" {
		return env
	}
	return r.config.DefaultEnv
}

// requireRepo returns an error if the repository is not configured (e.g. in tests with nil repo).
func (r *Registry) requireRepo() *RegistryError {
	if r.repo == nil {
		return &RegistryError{Code: "INTERNAL_ERROR", Message: "repository not configured"}
	}
	return nil
}

// publishChange emits an interface.changed event. Failures are logged, never
// returned: registration and upgrades must not fail because the event bus is
// down.
func (r *Registry) publishChange(ctx context.Context, event *events.InterfaceChangedEvent) {
	event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	if err := r.publisher.PublishChanged(ctx, event); err != nil {
		slog.Error(fmt.Sprintf("registry - publish interface.changed failed: %v", err))
	}
}

// dbVersionsToRecords converts DB version rows to resolver records.
func dbVersionsToRecords(versions []db.InterfaceVersion) []semver.VersionRecord {
	records := make([]semver.VersionRecord, len(versions))
	for i, v := range versions {
		prerelease := ""
		if v.Prerelease != nil {
			prerelease = *v.Prerelease
		}
		records[i] = semver.VersionRecord{
			ID:            v.ID,
			Major:         v.Major,
			Minor:         v.Minor,
			Patch:         v.Patch,
			Prerelease:    prerelease,
			Status:        v.Status,
			VersionString: semver.ToVersionString(v.Major, v.Minor, v.Patch, prerelease),
		}
	}
	return records
}

// functionsToInfos converts DB function rows to response descriptors.
func functionsToInfos(functions []db.InterfaceFunction) []FunctionInfo {
	infos := make([]FunctionInfo, len(functions))
	for i, f := range functions {
		infos[i] = FunctionInfo{
			Name:            f.Name,
			Signature:       f.Signature,
			Selector:        f.Selector,
			Inputs:          jsonBytesToParams(f.Inputs),
			Outputs:         jsonBytesToParams(f.Outputs),
			StateMutability: f.Mutability,
			Description:     ptrStringOr(f.Description, ""),
		}
	}
	return infos
}

// functionsToInterface rebuilds an abi.Interface from stored function rows.
// Stored signatures are already canonical so Add cannot reject them.
func functionsToInterface(name string, functions []db.InterfaceFunction) (*abi.Interface, error) {
	iface := abi.New(name)
	for _, f := range functions {
		fn := abi.Function{
			Name:            f.Name,
			Inputs:          paramsToABI(jsonBytesToParams(f.Inputs)),
			Outputs:         paramsToABI(jsonBytesToParams(f.Outputs)),
			StateMutability: f.Mutability,
		}
		if err := iface.Add(fn); err != nil {
			return nil, fmt.Errorf("stored descriptor %s rejected: %w", f.Signature, err)
		}
	}
	return iface, nil
}

func paramsToABI(params []ParamInfo) []abi.Parameter {
	out := make([]abi.Parameter, len(params))
	for i, p := range params {
		out[i] = abi.Parameter{Name: p.Name, Type: p.Type}
	}
	return out
}

func jsonBytesToParams(data []byte) []ParamInfo {
	if len(data) == 0 {
		return nil
	}
	var params []ParamInfo
	if err := json.Unmarshal(data, &params); err != nil {
		return nil
	}
	return params
}

// MapResolutionError converts typed resolution errors into registry error
// codes so callers can tell an ambiguous bare name from an unknown signature
// from bad arguments.
func MapResolutionError(err error) *RegistryError {
	switch e := err.(type) {
	case *abi.AmbiguousNameError:
		return &RegistryError{
			Code:    "AMBIGUOUS_NAME",
			Message: e.Error(),
			Details: map[string]interface{}{"name": e.Name, "signatures": e.Signatures},
		}
	case *abi.UnknownSignatureError:
		return &RegistryError{
			Code:    "UNKNOWN_SIGNATURE",
			Message: e.Error(),
			Details: map[string]interface{}{"signature": e.Signature},
		}
	case *abi.ArgumentMismatchError:
		return &RegistryError{
			Code:    "ARGUMENT_MISMATCH",
			Message: e.Error(),
			Details: map[string]interface{}{"signature": e.Signature, "reason": e.Reason},
		}
	default:
		return &RegistryError{Code: "INTERNAL_ERROR", Message: err.Error()}
	}
}

// endpointSubject returns the COMMS subject a contract implementation
// listens on for the given major.
func endpointSubject(app, name string, major int) string {
	return commsutil.BuildEndpointSubject(app, name, major)
}

func ptrStringOr(s *string, fallback string) string {
	if s != nil {
		return *s
	}
	return fallback
}

func orDefault(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}
