package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chainmint/interface-registry/pkg/db"
	"github.com/chainmint/interface-registry/pkg/events"
	"github.com/chainmint/interface-registry/pkg/semver"
)

const deprecateLogPrefix = "registry:deprecate"

// Deprecate marks interface versions as deprecated. Deprecated versions still
// resolve (with a warning status) so existing callers keep working.
func (r *Registry) Deprecate(ctx context.Context, input *DeprecateInput, userID string) (*DeprecateOutput, error) {
	return r.applyStatus(ctx, input, "deprecated", userID)
}

// Disable marks interface versions as disabled. Disabled versions never
// resolve again; callers pinned to them get NOT_FOUND.
func (r *Registry) Disable(ctx context.Context, input *DeprecateInput, userID string) (*DeprecateOutput, error) {
	return r.applyStatus(ctx, input, "disabled", userID)
}

func (r *Registry) applyStatus(ctx context.Context, input *DeprecateInput, status, userID string) (*DeprecateOutput, error) {
	slog.Info(fmt.Sprintf("%s - contract=%s status=%s version=%s", deprecateLogPrefix, input.Contract, status, input.Version))

	if err := r.requireRepo(); err != nil {
		return nil, err
	}

	parsed, err := semver.ParseContractRef(input.Contract)
	if err != nil {
		return nil, &RegistryError{Code: "INVALID_ARGUMENT", Message: err.Error()}
	}
	if input.Version == "" && input.Major == nil {
		return nil, &RegistryError{Code: "INVALID_ARGUMENT", Message: "version or major is required"}
	}
	if input.Reason == "" {
		return nil, &RegistryError{Code: "INVALID_ARGUMENT", Message: "reason is required"}
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

	var targets []db.InterfaceVersion
	for _, v := range versions {
		prerelease := ""
		if v.Prerelease != nil {
			prerelease = *v.Prerelease
		}
		versionString := semver.ToVersionString(v.Major, v.Minor, v.Patch, prerelease)
		switch {
		case input.Version != "" && versionString == input.Version:
			targets = append(targets, v)
		case input.Version == "" && input.Major != nil && v.Major == *input.Major:
			targets = append(targets, v)
		}
	}
	if len(targets) == 0 {
		return nil, &RegistryError{Code: "NOT_FOUND", Message: fmt.Sprintf("No matching versions for %s", parsed.Full)}
	}

	reason := input.Reason
	affected := make([]string, 0, len(targets))
	majorSet := make(map[int]bool)
	for _, v := range targets {
		if _, err := r.repo.UpdateVersionStatus(ctx, db.UpdateVersionStatusParams{
			VersionID: v.ID,
			Status:    status,
			Reason:    &reason,
			UserID:    userID,
		}); err != nil {
			return nil, &RegistryError{Code: "INTERNAL_ERROR", Message: err.Error()}
		}
		prerelease := ""
		if v.Prerelease != nil {
			prerelease = *v.Prerelease
		}
		affected = append(affected, semver.ToVersionString(v.Major, v.Minor, v.Patch, prerelease))
		majorSet[v.Major] = true
	}

	revision, revErr := r.repo.IncrementRevision(ctx, contract.ID)
	if revErr != nil {
		slog.Error(fmt.Sprintf("%s - IncrementRevision failed: %v", deprecateLogPrefix, revErr))
		revision = contract.Revision
	}

	majors := make([]int, 0, len(majorSet))
	for m := range majorSet {
		majors = append(majors, m)
	}
	r.publishChange(ctx, &events.InterfaceChangedEvent{
		App:            parsed.App,
		Contract:       parsed.Name,
		ChangedFields:  []string{"status"},
		AffectedMajors: majors,
		Revision:       revision,
		Etag:           fmt.Sprintf("%s-%d", contract.ID, revision),
	})

	return &DeprecateOutput{Success: true, AffectedVersions: affected}, nil
}
