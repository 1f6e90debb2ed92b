package registry

import (
	"context"
	"testing"
)

func validRegisterInput() *RegisterInput {
	return &RegisterInput{
		App:  "demo",
		Name: "Box",
		Version: VersionInput{
			Major: 2, Minor: 0, Patch: 0,
		},
		Functions: []FunctionDefinition{
			{
				Name: "initialize",
				Inputs: []ParamInfo{
					{Name: "value", Type: "uint256"},
					{Name: "cap", Type: "uint256"},
				},
			},
			{
				Name: "initialize",
				Inputs: []ParamInfo{
					{Name: "value", Type: "uint256"},
					{Name: "admin", Type: "address"},
					{Name: "operator", Type: "address"},
				},
			},
			{
				Name:            "greet",
				Outputs:         []ParamInfo{{Type: "string"}},
				StateMutability: "view",
			},
		},
	}
}

func TestValidateRegisterInput(t *testing.T) {
	if err := validateRegisterInput(validRegisterInput()); err != nil {
		t.Fatalf("registry:register_test - valid input rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*RegisterInput)
	}{
		{"bad app", func(in *RegisterInput) { in.App = "Demo App!" }},
		{"bad name", func(in *RegisterInput) { in.Name = "2Box" }},
		{"negative major", func(in *RegisterInput) { in.Version.Major = -1 }},
		{"no functions", func(in *RegisterInput) { in.Functions = nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validRegisterInput()
			tt.mutate(in)
			err := validateRegisterInput(in)
			if err == nil {
				t.Fatal("registry:register_test - expected INVALID_ARGUMENT")
			}
			if err.Code != "INVALID_ARGUMENT" {
				t.Errorf("registry:register_test - expected INVALID_ARGUMENT, got %s", err.Code)
			}
		})
	}
}

func TestBuildInterface_CanonicalCollision(t *testing.T) {
	in := validRegisterInput()
	// transfer(uint) and transfer(uint256) collapse to the same canonical
	// signature and must be rejected at registration time.
	in.Functions = []FunctionDefinition{
		{Name: "transfer", Inputs: []ParamInfo{{Type: "uint"}}},
		{Name: "transfer", Inputs: []ParamInfo{{Type: "uint256"}}},
	}

	_, err := buildInterface(in)
	if err == nil {
		t.Fatal("registry:register_test - expected duplicate signature rejection")
	}
	if err.Code != "INVALID_ARGUMENT" {
		t.Errorf("registry:register_test - expected INVALID_ARGUMENT, got %s", err.Code)
	}
}

func TestBuildInterface_OverloadsAllowed(t *testing.T) {
	iface, err := buildInterface(validRegisterInput())
	if err != nil {
		t.Fatalf("registry:register_test - overloads rejected: %v", err)
	}
	if iface.Len() != 3 {
		t.Errorf("registry:register_test - expected 3 descriptors, got %d", iface.Len())
	}
	if len(iface.Overloads("initialize")) != 2 {
		t.Errorf("registry:register_test - expected 2 initialize overloads")
	}
}

func TestFunctionDescriptions_PerOverload(t *testing.T) {
	in := validRegisterInput()
	in.Functions[0].Description = "Initialize with a value and cap"
	in.Functions[1].Description = "Initialize with admin and operator"

	descs := functionDescriptions(in.Functions)
	if got := descs["initialize(uint256,uint256)"]; got != "Initialize with a value and cap" {
		t.Errorf("registry:register_test - two-arg description = %q", got)
	}
	if got := descs["initialize(uint256,address,address)"]; got != "Initialize with admin and operator" {
		t.Errorf("registry:register_test - three-arg description = %q", got)
	}
	if _, ok := descs["greet()"]; ok {
		t.Errorf("registry:register_test - greet has no description, should be absent")
	}
}

func TestRegister_RequireRepo(t *testing.T) {
	reg := NewRegistry(NewRegistryParams{Config: DefaultConfig()})

	_, err := reg.Register(context.Background(), validRegisterInput(), "test-user")
	if err == nil {
		t.Fatal("registry:register_test - expected error when repo is nil")
	}
	if regErr, ok := err.(*RegistryError); !ok || regErr.Code != "INTERNAL_ERROR" {
		t.Errorf("registry:register_test - expected INTERNAL_ERROR, got %v", err)
	}
}
