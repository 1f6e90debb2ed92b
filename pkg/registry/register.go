package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/chainmint/interface-registry/pkg/abi"
	"github.com/chainmint/interface-registry/pkg/db"
	"github.com/chainmint/interface-registry/pkg/events"
	"github.com/chainmint/interface-registry/pkg/semver"
)

const (
	registerLogPrefix   = "registry:register"
	maxVersionComponent = 9999
	maxFunctions        = 500
)

// validateRegisterInput checks app, name, version bounds and function count.
// Signature-level validation (type canonicalization, duplicate canonical
// signatures) happens when the abi.Interface is built.
func validateRegisterInput(input *RegisterInput) *RegistryError {
	if !semver.ValidateAppName(input.App) {
		return &RegistryError{Code: "INVALID_ARGUMENT", Message: "app must be lowercase alphanumeric with hyphens only"}
	}
	if !semver.ValidateContractName(input.Name) {
		return &RegistryError{Code: "INVALID_ARGUMENT", Message: "name must start with a letter and contain only letters, digits, underscores"}
	}
	v := &input.Version
	if v.Major < 0 || v.Major > maxVersionComponent || v.Minor < 0 || v.Minor > maxVersionComponent || v.Patch < 0 || v.Patch > maxVersionComponent {
		return &RegistryError{Code: "INVALID_ARGUMENT", Message: "version major, minor, patch must be 0-9999"}
	}
	if len(input.Functions) == 0 {
		return &RegistryError{Code: "INVALID_ARGUMENT", Message: "at least one function is required"}
	}
	if len(input.Functions) > maxFunctions {
		return &RegistryError{Code: "INVALID_ARGUMENT", Message: fmt.Sprintf("functions count exceeds maximum %d", maxFunctions)}
	}
	return nil
}

// buildInterface canonicalizes the submitted descriptors into an
// abi.Interface. Overloads are fine; two descriptors collapsing onto the same
// canonical signature (e.g. transfer(uint) and transfer(uint256)) are not.
func buildInterface(input *RegisterInput) (*abi.Interface, *RegistryError) {
	iface := abi.New(input.Name)
	for _, def := range input.Functions {
		fn := abi.Function{
			Name:            def.Name,
			Inputs:          paramsToABI(def.Inputs),
			Outputs:         paramsToABI(def.Outputs),
			StateMutability: def.StateMutability,
		}
		if err := iface.Add(fn); err != nil {
			return nil, &RegistryError{Code: "INVALID_ARGUMENT", Message: err.Error()}
		}
	}
	return iface, nil
}

// functionDescriptions maps canonical signature to the submitted description,
// so overloads sharing a name keep their own text.
func functionDescriptions(defs []FunctionDefinition) map[string]string {
	out := make(map[string]string, len(defs))
	for _, def := range defs {
		if def.Description == "" {
			continue
		}
		fn := abi.Function{Name: def.Name, Inputs: paramsToABI(def.Inputs)}
		out[fn.Signature()] = def.Description
	}
	return out
}

// Register creates or updates a contract's interface version with its
// function descriptors. Descriptors are stored by canonical signature, each
// with its 4-byte selector.
func (r *Registry) Register(ctx context.Context, input *RegisterInput, userID string) (*RegisterOutput, error) {
	slog.Info(fmt.Sprintf("%s - app=%s name=%s version=%d.%d.%d functions=%d",
		registerLogPrefix, input.App, input.Name,
		input.Version.Major, input.Version.Minor, input.Version.Patch, len(input.Functions)))

	if err := r.requireRepo(); err != nil {
		return nil, err
	}
	if err := validateRegisterInput(input); err != nil {
		return nil, err
	}

	iface, regErr := buildInterface(input)
	if regErr != nil {
		return nil, regErr
	}

	var prerelease *string
	if input.Version.Prerelease != "" {
		prerelease = &input.Version.Prerelease
	}

	existingContract, err := r.repo.GetContract(ctx, input.App, input.Name)
	if err != nil {
		slog.Error(fmt.Sprintf("%s - GetContract failed: %v", registerLogPrefix, err))
		return nil, &RegistryError{Code: "INTERNAL_ERROR", Message: "Failed to look up contract"}
	}
	existingVersion := (*db.InterfaceVersion)(nil)
	if existingContract != nil {
		existingVersion, err = r.repo.GetVersion(ctx, db.GetVersionParams{
			ContractID: existingContract.ID,
			Major:      input.Version.Major,
			Minor:      input.Version.Minor,
			Patch:      input.Version.Patch,
			Prerelease: prerelease,
		})
		if err != nil {
			slog.Error(fmt.Sprintf("%s - GetVersion failed: %v", registerLogPrefix, err))
		}
	}

	var desc *string
	if input.Description != "" {
		desc = &input.Description
	}
	contract, err := r.repo.UpsertContract(ctx, db.UpsertContractParams{
		App:         input.App,
		Name:        input.Name,
		Description: desc,
		Tags:        input.Tags,
		UserID:      userID,
	})
	if err != nil {
		return nil, &RegistryError{Code: "INTERNAL_ERROR", Message: err.Error()}
	}

	var changelog *string
	if input.Version.Changelog != "" {
		changelog = &input.Version.Changelog
	}
	version, err := r.repo.UpsertVersion(ctx, db.UpsertVersionParams{
		ContractID: contract.ID,
		Major:      input.Version.Major,
		Minor:      input.Version.Minor,
		Patch:      input.Version.Patch,
		Prerelease: prerelease,
		Changelog:  changelog,
		UserID:     userID,
	})
	if err != nil {
		return nil, &RegistryError{Code: "INTERNAL_ERROR", Message: err.Error()}
	}

	// Replace descriptors wholesale: the submitted interface is the truth.
	if err := r.repo.DeleteFunctions(ctx, version.ID); err != nil {
		return nil, &RegistryError{Code: "INTERNAL_ERROR", Message: err.Error()}
	}
	descBySig := functionDescriptions(input.Functions)
	for _, fn := range iface.Functions() {
		inputs, _ := json.Marshal(fn.Inputs)
		outputs, _ := json.Marshal(fn.Outputs)
		var fnDesc *string
		if d, ok := descBySig[fn.Signature()]; ok {
			fnDesc = &d
		}
		_, err := r.repo.InsertFunction(ctx, db.InsertFunctionParams{
			VersionID:   version.ID,
			Name:        fn.Name,
			Signature:   fn.Signature(),
			Selector:    fn.Selector(),
			Inputs:      inputs,
			Outputs:     outputs,
			Mutability:  fn.StateMutability,
			Description: fnDesc,
		})
		if err != nil {
			return nil, &RegistryError{Code: "INTERNAL_ERROR", Message: err.Error()}
		}
	}

	env := r.getEnv(input.Env)
	var newActiveMajor *int
	if input.SetAsDefault {
		_, err := r.repo.SetDefault(ctx, db.SetDefaultParams{
			ContractID: contract.ID,
			Major:      input.Version.Major,
			Env:        env,
			UserID:     userID,
		})
		if err != nil {
			return nil, &RegistryError{Code: "INTERNAL_ERROR", Message: err.Error()}
		}
		major := input.Version.Major
		newActiveMajor = &major
	}

	revision, revErr := r.repo.IncrementRevision(ctx, contract.ID)
	if revErr != nil {
		slog.Error(fmt.Sprintf("%s - IncrementRevision failed: %v", registerLogPrefix, revErr))
		revision = contract.Revision
	}

	changed := []string{"functions"}
	if input.SetAsDefault {
		changed = append(changed, "activeMajor")
	}
	r.publishChange(ctx, &events.InterfaceChangedEvent{
		App:            input.App,
		Contract:       input.Name,
		ChangedFields:  changed,
		NewActiveMajor: newActiveMajor,
		AffectedMajors: []int{input.Version.Major},
		Revision:       revision,
		Etag:           fmt.Sprintf("%s-%d", contract.ID, revision),
		Env:            env,
	})

	action := "created"
	if existingVersion != nil {
		action = "updated"
	}

	return &RegisterOutput{
		Action:     action,
		ContractID: contract.ID,
		VersionID:  version.ID,
		Contract:   semver.BuildContractRef(input.App, input.Name, ""),
		Version:    semver.ToVersionString(input.Version.Major, input.Version.Minor, input.Version.Patch, input.Version.Prerelease),
		Subject:    endpointSubject(input.App, input.Name, input.Version.Major),
		Functions:  iface.Len(),
	}, nil
}
