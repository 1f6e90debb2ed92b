package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chainmint/interface-registry/pkg/semver"
)

const listVersionsLogPrefix = "registry:listVersions"

// ListVersions summarizes a contract's major lines: the latest version in
// each, version counts, status, and which major is active in the environment.
func (r *Registry) ListVersions(ctx context.Context, input *ListVersionsInput) (*ListVersionsOutput, error) {
	slog.Info(fmt.Sprintf("%s - contract=%s", listVersionsLogPrefix, input.Contract))

	if err := r.requireRepo(); err != nil {
		return nil, err
	}

	parsed, err := semver.ParseContractRef(input.Contract)
	if err != nil {
		return nil, &RegistryError{Code: "INVALID_ARGUMENT", Message: err.Error()}
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

	activeMajor := -1
	if d, _ := r.repo.GetDefault(ctx, contract.ID, r.getEnv(input.Env)); d != nil {
		activeMajor = d.DefaultMajor
	}

	records := dbVersionsToRecords(versions)
	majors := semver.GetUniqueMajors(records)

	infos := make([]MajorInfo, 0, len(majors))
	for _, major := range majors {
		var inMajor []semver.VersionRecord
		allDisabled := true
		for _, rec := range records {
			if rec.Major != major {
				continue
			}
			inMajor = append(inMajor, rec)
			if rec.Status != "disabled" {
				allDisabled = false
			}
		}
		if allDisabled && !input.IncludeInactive {
			continue
		}

		latest := ""
		status := "disabled"
		if resolved := semver.ResolveVersion(semver.ResolveVersionParams{
			Versions:     inMajor,
			Range:        fmt.Sprintf("%d", major),
			DefaultMajor: -1,
		}); resolved != nil {
			latest = resolved.VersionString
			status = resolved.Status
		}

		infos = append(infos, MajorInfo{
			Major:         major,
			LatestVersion: latest,
			Status:        status,
			VersionCount:  len(inMajor),
			IsActive:      major == activeMajor,
		})
	}

	return &ListVersionsOutput{Majors: infos}, nil
}
