package semver

import (
	"fmt"
	"sort"

	masterminds "github.com/Masterminds/semver/v3"
)

// VersionRecord is one implementation version of a contract, as stored.
type VersionRecord struct {
	ID            string
	Major         int
	Minor         int
	Patch         int
	Prerelease    string
	Status        string // "active", "deprecated", "disabled"
	VersionString string
}

// ToVersionString converts version components to a version string.
func ToVersionString(major, minor, patch int, prerelease string) string {
	s := fmt.Sprintf("%d.%d.%d", major, minor, patch)
	if prerelease != "" {
		s += "-" + prerelease
	}
	return s
}

// ResolveVersionParams holds parameters for ResolveVersion.
type ResolveVersionParams struct {
	Versions     []VersionRecord
	Range        string // SemVer range, major-only, exact, or empty
	DefaultMajor int    // -1 means no default pinned
}

// ResolveVersion picks the implementation version a contract reference
// resolves to. Disabled versions never resolve. With no range, the pinned
// default major wins (the proxy's active implementation line), falling back
// to the highest major; within a major the latest stable active version is
// preferred over prereleases and deprecated ones.
func ResolveVersion(params ResolveVersionParams) *VersionRecord {
	candidates := make([]VersionRecord, 0, len(params.Versions))
	for _, v := range params.Versions {
		if v.Status == "disabled" {
			continue
		}
		if v.VersionString == "" {
			v.VersionString = ToVersionString(v.Major, v.Minor, v.Patch, v.Prerelease)
		}
		candidates = append(candidates, v)
	}
	if len(candidates) == 0 {
		return nil
	}

	switch {
	case params.Range == "":
		major := params.DefaultMajor
		if major < 0 {
			major = highestMajor(candidates)
		}
		return latestInMajor(candidates, major)
	case IsMajorOnly(params.Range):
		return latestInMajor(candidates, ExtractMajorFromRange(params.Range))
	default:
		return resolveRange(candidates, params.Range)
	}
}

// GetUniqueMajors returns all distinct major versions sorted descending.
func GetUniqueMajors(versions []VersionRecord) []int {
	seen := make(map[int]bool)
	var majors []int
	for _, v := range versions {
		if !seen[v.Major] {
			seen[v.Major] = true
			majors = append(majors, v.Major)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(majors)))
	return majors
}

// SatisfiesRange checks whether a version string satisfies a range.
func SatisfiesRange(version, rangeStr string) bool {
	sv, err := masterminds.NewVersion(version)
	if err != nil {
		return false
	}
	if IsMajorOnly(rangeStr) {
		return int(sv.Major()) == ExtractMajorFromRange(rangeStr)
	}
	constraint, err := masterminds.NewConstraint(rangeStr)
	if err != nil {
		return false
	}
	return constraint.Check(sv)
}

func resolveRange(candidates []VersionRecord, rangeStr string) *VersionRecord {
	constraint, err := masterminds.NewConstraint(rangeStr)
	if err != nil {
		// Not a parseable range: try exact-string match.
		for i := range candidates {
			if candidates[i].VersionString == rangeStr {
				return &candidates[i]
			}
		}
		return nil
	}

	var matching []VersionRecord
	for _, v := range candidates {
		sv, err := masterminds.NewVersion(v.VersionString)
		if err != nil {
			continue
		}
		if constraint.Check(sv) {
			matching = append(matching, v)
		}
	}
	if len(matching) == 0 {
		return nil
	}

	sort.Slice(matching, func(i, j int) bool {
		vi, err1 := masterminds.NewVersion(matching[i].VersionString)
		vj, err2 := masterminds.NewVersion(matching[j].VersionString)
		if err1 != nil || err2 != nil {
			return false
		}
		return vi.GreaterThan(vj)
	})

	for i := range matching {
		if matching[i].Status == "active" {
			return &matching[i]
		}
	}
	return &matching[0]
}

func highestMajor(versions []VersionRecord) int {
	highest := -1
	for _, v := range versions {
		if v.Major > highest {
			highest = v.Major
		}
	}
	return highest
}

func latestInMajor(versions []VersionRecord, major int) *VersionRecord {
	var inMajor []VersionRecord
	for _, v := range versions {
		if v.Major == major {
			inMajor = append(inMajor, v)
		}
	}
	if len(inMajor) == 0 {
		return nil
	}

	// Stable releases shadow prereleases within the major.
	var stable []VersionRecord
	for _, v := range inMajor {
		if v.Prerelease == "" {
			stable = append(stable, v)
		}
	}
	candidates := inMajor
	if len(stable) > 0 {
		candidates = stable
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.Minor != b.Minor {
			return a.Minor > b.Minor
		}
		return a.Patch > b.Patch
	})

	for i := range candidates {
		if candidates[i].Status == "active" {
			return &candidates[i]
		}
	}
	return &candidates[0]
}
