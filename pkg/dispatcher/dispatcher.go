package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/chainmint/interface-registry/pkg/invoker"
	"github.com/chainmint/interface-registry/pkg/registry"
)

const logPrefix = "dispatcher:dispatch"

// Dispatcher routes COMMS requests to registry methods and the invoker.
type Dispatcher struct {
	registry *registry.Registry
	invoker  *invoker.Invoker
}

// NewDispatcher creates a new Dispatcher. The invoker may be nil; the invoke
// method then reports INTERNAL_ERROR.
func NewDispatcher(reg *registry.Registry, inv *invoker.Invoker) *Dispatcher {
	return &Dispatcher{registry: reg, invoker: inv}
}

// Dispatch routes a request to the appropriate registry method and returns a response.
func (d *Dispatcher) Dispatch(ctx context.Context, req *RegistryRequest) *RegistryResponse {
	slog.Debug(fmt.Sprintf("%s - method=%s id=%s", logPrefix, req.Method, req.ID))

	userID := "system"
	if req.Ctx != nil && req.Ctx.UserID != "" {
		userID = req.Ctx.UserID
	}

	switch req.Method {
	case "register":
		return d.handleRegister(ctx, req, userID)
	case "resolve":
		return d.handleResolve(ctx, req)
	case "describe":
		return d.handleDescribe(ctx, req)
	case "discover":
		return d.handleDiscover(ctx, req)
	case "upgrade":
		return d.handleUpgrade(ctx, req, userID)
	case "deprecate":
		return d.handleDeprecate(ctx, req, userID)
	case "disable":
		return d.handleDisable(ctx, req, userID)
	case "listVersions":
		return d.handleListVersions(ctx, req)
	case "invoke":
		return d.handleInvoke(ctx, req, userID)
	case "health":
		return d.handleHealth(ctx, req)
	default:
		return &RegistryResponse{
			ID: req.ID,
			Ok: false,
			Error: &ErrorDetail{
				Code:      "METHOD_NOT_FOUND",
				Message:   fmt.Sprintf("Unknown method: %s", req.Method),
				Retryable: false,
			},
		}
	}
}

func (d *Dispatcher) handleRegister(ctx context.Context, req *RegistryRequest, userID string) *RegistryResponse {
	var input registry.RegisterInput
	if err := json.Unmarshal(req.Params, &input); err != nil {
		return errorResponse(req.ID, "INVALID_ARGUMENT", "Failed to parse register params", false)
	}

	result, err := d.registry.Register(ctx, &input, userID)
	if err != nil {
		return registryErrorToResponse(req.ID, err)
	}
	return &RegistryResponse{ID: req.ID, Ok: true, Result: result}
}

func (d *Dispatcher) handleResolve(ctx context.Context, req *RegistryRequest) *RegistryResponse {
	var input registry.ResolveInput
	if err := json.Unmarshal(req.Params, &input); err != nil {
		return errorResponse(req.ID, "INVALID_ARGUMENT", "Failed to parse resolve params", false)
	}
	if input.Env == "" && req.Ctx != nil {
		input.Env = req.Ctx.Env
	}

	result, err := d.registry.Resolve(ctx, &input)
	if err != nil {
		return registryErrorToResponse(req.ID, err)
	}
	return &RegistryResponse{ID: req.ID, Ok: true, Result: result}
}

func (d *Dispatcher) handleDescribe(ctx context.Context, req *RegistryRequest) *RegistryResponse {
	var input registry.DescribeInput
	if err := json.Unmarshal(req.Params, &input); err != nil {
		return errorResponse(req.ID, "INVALID_ARGUMENT", "Failed to parse describe params", false)
	}

	result, err := d.registry.Describe(ctx, &input)
	if err != nil {
		return registryErrorToResponse(req.ID, err)
	}
	return &RegistryResponse{ID: req.ID, Ok: true, Result: result}
}

func (d *Dispatcher) handleDiscover(ctx context.Context, req *RegistryRequest) *RegistryResponse {
	var input registry.DiscoverInput
	if err := json.Unmarshal(req.Params, &input); err != nil {
		return errorResponse(req.ID, "INVALID_ARGUMENT", "Failed to parse discover params", false)
	}
	if input.Env == "" && req.Ctx != nil {
		input.Env = req.Ctx.Env
	}

	result, err := d.registry.Discover(ctx, &input)
	if err != nil {
		return registryErrorToResponse(req.ID, err)
	}
	return &RegistryResponse{ID: req.ID, Ok: true, Result: result}
}

func (d *Dispatcher) handleUpgrade(ctx context.Context, req *RegistryRequest, userID string) *RegistryResponse {
	var input registry.UpgradeInput
	if err := json.Unmarshal(req.Params, &input); err != nil {
		return errorResponse(req.ID, "INVALID_ARGUMENT", "Failed to parse upgrade params", false)
	}

	result, err := d.registry.Upgrade(ctx, &input, userID)
	if err != nil {
		return registryErrorToResponse(req.ID, err)
	}
	return &RegistryResponse{ID: req.ID, Ok: true, Result: result}
}

func (d *Dispatcher) handleDeprecate(ctx context.Context, req *RegistryRequest, userID string) *RegistryResponse {
	var input registry.DeprecateInput
	if err := json.Unmarshal(req.Params, &input); err != nil {
		return errorResponse(req.ID, "INVALID_ARGUMENT", "Failed to parse deprecate params", false)
	}

	result, err := d.registry.Deprecate(ctx, &input, userID)
	if err != nil {
		return registryErrorToResponse(req.ID, err)
	}
	return &RegistryResponse{ID: req.ID, Ok: true, Result: result}
}

func (d *Dispatcher) handleDisable(ctx context.Context, req *RegistryRequest, userID string) *RegistryResponse {
	var input registry.DeprecateInput
	if err := json.Unmarshal(req.Params, &input); err != nil {
		return errorResponse(req.ID, "INVALID_ARGUMENT", "Failed to parse disable params", false)
	}

	result, err := d.registry.Disable(ctx, &input, userID)
	if err != nil {
		return registryErrorToResponse(req.ID, err)
	}
	return &RegistryResponse{ID: req.ID, Ok: true, Result: result}
}

func (d *Dispatcher) handleListVersions(ctx context.Context, req *RegistryRequest) *RegistryResponse {
	var input registry.ListVersionsInput
	if err := json.Unmarshal(req.Params, &input); err != nil {
		return errorResponse(req.ID, "INVALID_ARGUMENT", "Failed to parse listVersions params", false)
	}

	result, err := d.registry.ListVersions(ctx, &input)
	if err != nil {
		return registryErrorToResponse(req.ID, err)
	}
	return &RegistryResponse{ID: req.ID, Ok: true, Result: result}
}

func (d *Dispatcher) handleInvoke(ctx context.Context, req *RegistryRequest, userID string) *RegistryResponse {
	if d.invoker == nil {
		return errorResponse(req.ID, "INTERNAL_ERROR", "Invoker not configured", false)
	}

	var input invoker.InvokeInput
	if err := json.Unmarshal(req.Params, &input); err != nil {
		return errorResponse(req.ID, "INVALID_ARGUMENT", "Failed to parse invoke params", false)
	}
	if input.Env == "" && req.Ctx != nil {
		input.Env = req.Ctx.Env
	}
	if input.Caller == "" {
		input.Caller = userID
	}

	result, err := d.invoker.Invoke(ctx, &input)
	if err != nil {
		return registryErrorToResponse(req.ID, err)
	}
	return &RegistryResponse{ID: req.ID, Ok: true, Result: result}
}

func (d *Dispatcher) handleHealth(ctx context.Context, req *RegistryRequest) *RegistryResponse {
	result := d.registry.Health(ctx)
	return &RegistryResponse{ID: req.ID, Ok: true, Result: result}
}

// --- helpers ---

func errorResponse(id, code, message string, retryable bool) *RegistryResponse {
	return &RegistryResponse{
		ID: id,
		Ok: false,
		Error: &ErrorDetail{
			Code:      code,
			Message:   message,
			Retryable: retryable,
		},
	}
}

func registryErrorToResponse(id string, err error) *RegistryResponse {
	if regErr, ok := err.(*registry.RegistryError); ok {
		retryable := regErr.Code == "INTERNAL_ERROR" || regErr.Code == "UNAVAILABLE"
		return &RegistryResponse{
			ID: id,
			Ok: false,
			Error: &ErrorDetail{
				Code:      regErr.Code,
				Message:   regErr.Message,
				Details:   regErr.Details,
				Retryable: retryable,
			},
		}
	}
	return errorResponse(id, "INTERNAL_ERROR", err.Error(), true)
}
