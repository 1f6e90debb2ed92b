package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chainmint/interface-registry/pkg/db"
	"github.com/chainmint/interface-registry/pkg/events"
	"github.com/chainmint/interface-registry/pkg/semver"
)

const upgradeLogPrefix = "registry:upgrade"

// Upgrade moves the active major for a contract in an environment. This is
// the registry's view of repointing a proxy to a new implementation line:
// bare references resolve to the new major afterwards. The target major must
// have at least one non-disabled version.
func (r *Registry) Upgrade(ctx context.Context, input *UpgradeInput, userID string) (*UpgradeOutput, error) {
	slog.Info(fmt.Sprintf("%s - contract=%s major=%d env=%s", upgradeLogPrefix, input.Contract, input.Major, input.Env))

	if err := r.requireRepo(); err != nil {
		return nil, err
	}

	parsed, err := semver.ParseContractRef(input.Contract)
	if err != nil {
		return nil, &RegistryError{Code: "INVALID_ARGUMENT", Message: err.Error()}
	}
	if input.Major < 0 {
		return nil, &RegistryError{Code: "INVALID_ARGUMENT", Message: "major must be >= 0"}
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
	target := semver.ResolveVersion(semver.ResolveVersionParams{
		Versions:     dbVersionsToRecords(versions),
		Range:        fmt.Sprintf("%d", input.Major),
		DefaultMajor: -1,
	})
	if target == nil {
		return nil, &RegistryError{
			Code:    "NOT_FOUND",
			Message: fmt.Sprintf("No usable version in major %d for %s", input.Major, parsed.Full),
		}
	}

	env := r.getEnv(input.Env)

	var previousMajor *int
	if existing, _ := r.repo.GetDefault(ctx, contract.ID, env); existing != nil {
		prev := existing.DefaultMajor
		previousMajor = &prev
	}

	if _, err := r.repo.SetDefault(ctx, db.SetDefaultParams{
		ContractID: contract.ID,
		Major:      input.Major,
		Env:        env,
		UserID:     userID,
	}); err != nil {
		return nil, &RegistryError{Code: "INTERNAL_ERROR", Message: err.Error()}
	}

	revision, revErr := r.repo.IncrementRevision(ctx, contract.ID)
	if revErr != nil {
		slog.Error(fmt.Sprintf("%s - IncrementRevision failed: %v", upgradeLogPrefix, revErr))
		revision = contract.Revision
	}

	newMajor := input.Major
	affected := []int{newMajor}
	if previousMajor != nil && *previousMajor != newMajor {
		affected = append(affected, *previousMajor)
	}
	r.publishChange(ctx, &events.InterfaceChangedEvent{
		App:            parsed.App,
		Contract:       parsed.Name,
		ChangedFields:  []string{"activeMajor"},
		NewActiveMajor: &newMajor,
		AffectedMajors: affected,
		Revision:       revision,
		Etag:           fmt.Sprintf("%s-%d", contract.ID, revision),
		Env:            env,
	})

	return &UpgradeOutput{
		Success:       true,
		PreviousMajor: previousMajor,
		NewMajor:      newMajor,
		Subject:       endpointSubject(parsed.App, parsed.Name, newMajor),
	}, nil
}
