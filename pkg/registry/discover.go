package registry

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/chainmint/interface-registry/pkg/db"
	"github.com/chainmint/interface-registry/pkg/semver"
)

const discoverLogPrefix = "registry:discover"

// Discover lists registered contracts with their major lines and the active
// major per environment.
func (r *Registry) Discover(ctx context.Context, input *DiscoverInput) (*DiscoverOutput, error) {
	slog.Info(fmt.Sprintf("%s - app=%s query=%s", discoverLogPrefix, input.App, input.Query))

	if err := r.requireRepo(); err != nil {
		return nil, err
	}

	page := input.Page
	if page < 1 {
		page = 1
	}
	limit := input.Limit
	if limit < 1 || limit > 100 {
		limit = 20
	}

	contracts, total, err := r.repo.ListContracts(ctx, db.ListContractsParams{
		App:    input.App,
		Tags:   input.Tags,
		Query:  input.Query,
		Status: input.Status,
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		return nil, &RegistryError{Code: "INTERNAL_ERROR", Message: err.Error()}
	}

	ids := make([]string, len(contracts))
	for i, c := range contracts {
		ids[i] = c.ID
	}
	versionsByContract, err := r.repo.GetVersionsByContractIDs(ctx, ids)
	if err != nil {
		return nil, &RegistryError{Code: "INTERNAL_ERROR", Message: err.Error()}
	}
	defaults, err := r.repo.GetDefaultsBatch(ctx, ids, r.getEnv(input.Env))
	if err != nil {
		return nil, &RegistryError{Code: "INTERNAL_ERROR", Message: err.Error()}
	}

	discovered := make([]DiscoveredContract, 0, len(contracts))
	for _, c := range contracts {
		records := dbVersionsToRecords(versionsByContract[c.ID])
		majors := semver.GetUniqueMajors(records)

		activeMajor := -1
		if d := defaults[c.ID]; d != nil {
			activeMajor = d.DefaultMajor
		} else if len(majors) > 0 {
			activeMajor = majors[0]
		}

		latest := ""
		if resolved := semver.ResolveVersion(semver.ResolveVersionParams{
			Versions:     records,
			DefaultMajor: activeMajor,
		}); resolved != nil {
			latest = resolved.VersionString
		}

		discovered = append(discovered, DiscoveredContract{
			Contract:      semver.BuildContractRef(c.App, c.Name, ""),
			App:           c.App,
			Name:          c.Name,
			Description:   ptrStringOr(c.Description, ""),
			Tags:          c.Tags,
			ActiveMajor:   activeMajor,
			LatestVersion: latest,
			Majors:        majors,
			Status:        c.Status,
		})
	}

	totalPages := (total + limit - 1) / limit
	return &DiscoverOutput{
		Contracts: discovered,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: totalPages,
		},
	}, nil
}
