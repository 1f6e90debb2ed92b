package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chainmint/interface-registry/pkg/db"
	"github.com/chainmint/interface-registry/pkg/semver"
)

const describeLogPrefix = "registry:describe"

// Describe returns the full function descriptor set of one interface version.
// With no major or version given, the environment's active version is used.
func (r *Registry) Describe(ctx context.Context, input *DescribeInput) (*DescribeOutput, error) {
	slog.Info(fmt.Sprintf("%s - contract=%s", describeLogPrefix, input.Contract))

	if err := r.requireRepo(); err != nil {
		return nil, err
	}

	rangeStr := input.Version
	if rangeStr == "" && input.Major != nil {
		rangeStr = fmt.Sprintf("%d", *input.Major)
	}

	resolved, err := r.resolveVersion(ctx, input.Contract, rangeStr, input.Env)
	if err != nil {
		return nil, err
	}

	contract, err := r.repo.GetContractByID(ctx, resolved.contractID)
	if err != nil || contract == nil {
		return nil, &RegistryError{Code: "INTERNAL_ERROR", Message: "Failed to load contract"}
	}

	functions, err := r.repo.GetFunctions(ctx, resolved.record.ID)
	if err != nil {
		return nil, &RegistryError{Code: "INTERNAL_ERROR", Message: err.Error()}
	}

	version, err := r.repo.GetVersion(ctx, versionKey(resolved))
	if err != nil {
		return nil, &RegistryError{Code: "INTERNAL_ERROR", Message: err.Error()}
	}
	changelog := ""
	if version != nil && version.Changelog != nil {
		changelog = *version.Changelog
	}

	return &DescribeOutput{
		Contract:    semver.BuildContractRef(contract.App, contract.Name, resolved.record.VersionString),
		App:         contract.App,
		Name:        contract.Name,
		Description: ptrStringOr(contract.Description, ""),
		Version:     resolved.record.VersionString,
		Major:       resolved.record.Major,
		Status:      resolved.record.Status,
		Functions:   functionsToInfos(functions),
		Tags:        contract.Tags,
		Changelog:   changelog,
	}, nil
}

func versionKey(resolved *resolvedVersion) db.GetVersionParams {
	params := db.GetVersionParams{
		ContractID: resolved.contractID,
		Major:      resolved.record.Major,
		Minor:      resolved.record.Minor,
		Patch:      resolved.record.Patch,
	}
	if resolved.record.Prerelease != "" {
		prerelease := resolved.record.Prerelease
		params.Prerelease = &prerelease
	}
	return params
}
