package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chainmint/interface-registry/pkg/abi"
	"github.com/chainmint/interface-registry/pkg/semver"
)

const resolveLogPrefix = "registry:resolve"

// Resolve finds the implementation version a contract reference points at and
// returns the endpoint subject for its major. With no version range, the
// pinned active major for the environment wins (the proxy's current
// implementation line).
func (r *Registry) Resolve(ctx context.Context, input *ResolveInput) (*ResolveOutput, error) {
	slog.Info(fmt.Sprintf("%s - contract=%s ver=%s", resolveLogPrefix, input.Contract, input.Ver))

	if err := r.requireRepo(); err != nil {
		return nil, err
	}

	resolved, err := r.resolveVersion(ctx, input.Contract, input.Ver, input.Env)
	if err != nil {
		return nil, err
	}

	commsUrl := r.config.CommsUrl
	if commsUrl == "" {
		commsUrl = "nats://127.0.0.1:4222"
	}

	result := &ResolveOutput{
		Contract:        semver.BuildContractRef(resolved.parsed.App, resolved.parsed.Name, resolved.record.VersionString),
		CommsUrl:        commsUrl,
		Subject:         endpointSubject(resolved.parsed.App, resolved.parsed.Name, resolved.record.Major),
		Major:           resolved.record.Major,
		ResolvedVersion: resolved.record.VersionString,
		Status:          resolved.record.Status,
		TTLSeconds:      r.config.DefaultTTLSeconds,
		Etag:            fmt.Sprintf("%s-%d", resolved.contractID, resolved.revision),
	}

	if input.IncludeFunctions {
		functions, err := r.repo.GetFunctions(ctx, resolved.record.ID)
		if err == nil {
			result.Functions = functionsToInfos(functions)
		}
	}

	return result, nil
}

// ResolveInterface resolves a contract reference and rebuilds the full
// abi.Interface of the resolved version. Used by the invoker to dispatch
// function references before sending anything to the implementation.
func (r *Registry) ResolveInterface(ctx context.Context, contractRef, ver, env string) (*abi.Interface, *ResolveOutput, error) {
	if err := r.requireRepo(); err != nil {
		return nil, nil, err
	}

	resolved, err := r.resolveVersion(ctx, contractRef, ver, env)
	if err != nil {
		return nil, nil, err
	}

	functions, ferr := r.repo.GetFunctions(ctx, resolved.record.ID)
	if ferr != nil {
		return nil, nil, &RegistryError{Code: "INTERNAL_ERROR", Message: ferr.Error()}
	}

	iface, ierr := functionsToInterface(resolved.parsed.Name, functions)
	if ierr != nil {
		return nil, nil, &RegistryError{Code: "INTERNAL_ERROR", Message: ierr.Error()}
	}

	commsUrl := r.config.CommsUrl
	if commsUrl == "" {
		commsUrl = "nats://127.0.0.1:4222"
	}

	out := &ResolveOutput{
		Contract:        semver.BuildContractRef(resolved.parsed.App, resolved.parsed.Name, resolved.record.VersionString),
		CommsUrl:        commsUrl,
		Subject:         endpointSubject(resolved.parsed.App, resolved.parsed.Name, resolved.record.Major),
		Major:           resolved.record.Major,
		ResolvedVersion: resolved.record.VersionString,
		Status:          resolved.record.Status,
		TTLSeconds:      r.config.DefaultTTLSeconds,
		Etag:            fmt.Sprintf("%s-%d", resolved.contractID, resolved.revision),
	}
	return iface, out, nil
}

type resolvedVersion struct {
	parsed     *semver.ParsedContractRef
	record     *semver.VersionRecord
	contractID string
	revision   int
}

func (r *Registry) resolveVersion(ctx context.Context, contractRef, ver, env string) (*resolvedVersion, error) {
	parsed, err := semver.ParseContractRef(contractRef)
	if err != nil {
		return nil, &RegistryError{Code: "INVALID_ARGUMENT", Message: err.Error()}
	}

	rangeStr := ver
	if rangeStr == "" {
		rangeStr = parsed.Range
	}

	contract, err := r.repo.GetContract(ctx, parsed.App, parsed.Name)
	if err != nil {
		return nil, &RegistryError{Code: "INTERNAL_ERROR", Message: err.Error()}
	}
	if contract == nil {
		return nil, &RegistryError{Code: "NOT_FOUND", Message: fmt.Sprintf("Contract not found: %s", parsed.Full)}
	}

	versions, err := r.repo.GetVersions(ctx, contract.ID)
	if err != nil {
		return nil, &RegistryError{Code: "INTERNAL_ERROR", Message: err.Error()}
	}
	if len(versions) == 0 {
		return nil, &RegistryError{Code: "NOT_FOUND", Message: fmt.Sprintf("No versions found for contract: %s", parsed.Full)}
	}

	defaultEntry, _ := r.repo.GetDefault(ctx, contract.ID, r.getEnv(env))
	defaultMajor := -1
	if defaultEntry != nil {
		defaultMajor = defaultEntry.DefaultMajor
	}

	resolved := semver.ResolveVersion(semver.ResolveVersionParams{
		Versions:     dbVersionsToRecords(versions),
		Range:        rangeStr,
		DefaultMajor: defaultMajor,
	})
	if resolved == nil {
		return nil, &RegistryError{
			Code:    "NOT_FOUND",
			Message: fmt.Sprintf("No matching version for %s@%s", parsed.Full, orDefault(rangeStr, "default")),
		}
	}

	return &resolvedVersion{
		parsed:     parsed,
		record:     resolved,
		contractID: contract.ID,
		revision:   contract.Revision,
	}, nil
}
