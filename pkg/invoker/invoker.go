// Package invoker routes function calls to contract implementations over
// COMMS. A call names its target by bare function name or full canonical
// signature; the invoker resolves it against the registered interface of the
// resolved implementation version before anything is sent, so a call that
// cannot be routed unambiguously has no side effects.
package invoker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	comms "github.com/nats-io/nats.go"

	"github.com/chainmint/interface-registry/pkg/abi"
	"github.com/chainmint/interface-registry/pkg/registry"
)

const logPrefix = "invoker"

const defaultRequestTimeout = 5 * time.Second

// CallRequest is the envelope sent to a contract endpoint subject. Function
// is always the full canonical signature: the endpoint never needs to do its
// own overload resolution.
type CallRequest struct {
	Function string        `json:"function"`
	Selector string        `json:"selector"`
	Args     []interface{} `json:"args"`
	Caller   string        `json:"caller,omitempty"`
}

// CallResponse is the envelope returned by a contract endpoint.
type CallResponse struct {
	Ok     bool                    `json:"ok"`
	Result interface{}             `json:"result,omitempty"`
	Error  *registry.RegistryError `json:"error,omitempty"`
}

// InvokeInput holds parameters for Invoke.
type InvokeInput struct {
	// Contract reference, e.g. "demo/Box" or "demo/Box@^2.0.0".
	Contract string `json:"contract"`
	// Function reference: bare name ("greet") or full signature
	// ("initialize(uint256,uint256)"). A bare name shared by several
	// descriptors is rejected as ambiguous.
	Function string        `json:"function"`
	Args     []interface{} `json:"args"`
	Ver      string        `json:"ver,omitempty"`
	Env      string        `json:"env,omitempty"`
	Caller   string        `json:"caller,omitempty"`
}

// InvokeOutput holds the result of Invoke.
type InvokeOutput struct {
	Contract        string      `json:"contract"`
	ResolvedVersion string      `json:"resolvedVersion"`
	Signature       string      `json:"signature"`
	Selector        string      `json:"selector"`
	Subject         string      `json:"subject"`
	Result          interface{} `json:"result,omitempty"`
}

// InterfaceResolver resolves a contract reference to the full interface of
// one implementation version. *registry.Registry is the production
// implementation.
type InterfaceResolver interface {
	ResolveInterface(ctx context.Context, contractRef, ver, env string) (*abi.Interface, *registry.ResolveOutput, error)
}

// Invoker dispatches function calls through the registry to contract
// endpoints.
type Invoker struct {
	resolver InterfaceResolver
	conn     *comms.Conn
	timeout  time.Duration
}

// NewInvokerParams holds parameters for NewInvoker.
type NewInvokerParams struct {
	Resolver InterfaceResolver
	Conn     *comms.Conn
	Timeout  time.Duration
}

// NewInvoker creates a new Invoker.
func NewInvoker(params NewInvokerParams) *Invoker {
	timeout := params.Timeout
	if timeout == 0 {
		timeout = defaultRequestTimeout
	}
	return &Invoker{
		resolver: params.Resolver,
		conn:     params.Conn,
		timeout:  timeout,
	}
}

// Invoke resolves a contract reference and a function reference, validates
// the arguments against the resolved descriptor, and only then performs the
// request against the implementation's endpoint subject. Resolution failures
// (ambiguous name, unknown signature, argument mismatch) return before any
// message is published.
func (i *Invoker) Invoke(ctx context.Context, input *InvokeInput) (*InvokeOutput, error) {
	slog.Info(fmt.Sprintf("%s - contract=%s function=%s", logPrefix, input.Contract, input.Function))

	if input.Function == "" {
		return nil, registry.NewRegistryError("INVALID_ARGUMENT", "function is required")
	}

	if i.resolver == nil {
		return nil, registry.NewRegistryError("INTERNAL_ERROR", "resolver not configured")
	}

	iface, resolved, err := i.resolver.ResolveInterface(ctx, input.Contract, input.Ver, input.Env)
	if err != nil {
		return nil, err
	}

	fn, err := iface.Resolve(input.Function)
	if err != nil {
		return nil, registry.MapResolutionError(err)
	}

	if err := abi.CheckArgs(fn, input.Args); err != nil {
		return nil, registry.MapResolutionError(err)
	}

	if i.conn == nil {
		return nil, registry.NewRegistryError("INTERNAL_ERROR", "comms connection not configured")
	}

	payload, merr := json.Marshal(&CallRequest{
		Function: fn.Signature(),
		Selector: fn.Selector(),
		Args:     input.Args,
		Caller:   input.Caller,
	})
	if merr != nil {
		return nil, registry.NewRegistryError("INTERNAL_ERROR", merr.Error())
	}

	timeout := i.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	msg, rerr := i.conn.Request(resolved.Subject, payload, timeout)
	if rerr != nil {
		slog.Error(fmt.Sprintf("%s - request to %s failed: %v", logPrefix, resolved.Subject, rerr))
		if rerr == comms.ErrNoResponders || rerr == comms.ErrTimeout {
			return nil, registry.NewRegistryError("UNAVAILABLE",
				fmt.Sprintf("no implementation responding on %s", resolved.Subject))
		}
		return nil, registry.NewRegistryError("INTERNAL_ERROR", rerr.Error())
	}

	var response CallResponse
	if err := json.Unmarshal(msg.Data, &response); err != nil {
		return nil, registry.NewRegistryError("INTERNAL_ERROR",
			fmt.Sprintf("invalid response from %s: %v", resolved.Subject, err))
	}
	if !response.Ok {
		if response.Error != nil {
			return nil, response.Error
		}
		return nil, registry.NewRegistryError("INTERNAL_ERROR",
			fmt.Sprintf("call to %s failed without error detail", resolved.Subject))
	}

	return &InvokeOutput{
		Contract:        resolved.Contract,
		ResolvedVersion: resolved.ResolvedVersion,
		Signature:       fn.Signature(),
		Selector:        fn.Selector(),
		Subject:         resolved.Subject,
		Result:          response.Result,
	}, nil
}
