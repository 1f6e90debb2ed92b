package semver

import "testing"

func TestParseContractRef(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantApp   string
		wantName  string
		wantRange string
		wantErr   bool
	}{
		{"plain ref", "demo/Box", "demo", "Box", "", false},
		{"major pin", "demo/Box@2", "demo", "Box", "2", false},
		{"exact version", "demo/Box@2.1.0", "demo", "Box", "2.1.0", false},
		{"caret range", "demo/Box@^2.1.0", "demo", "Box", "^2.1.0", false},
		{"comparison range", "demo/Box@>=2.0.0", "demo", "Box", ">=2.0.0", false},
		{"whitespace trimmed", "  demo/Box@2  ", "demo", "Box", "2", false},
		{"missing app", "Box", "", "", "", true},
		{"empty name", "demo/", "", "", "", true},
		{"empty app", "/Box", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := ParseContractRef(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("semver:parser_test - ParseContractRef(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("semver:parser_test - ParseContractRef(%q): %v", tt.input, err)
			}
			if parsed.App != tt.wantApp {
				t.Errorf("semver:parser_test - App = %q, want %q", parsed.App, tt.wantApp)
			}
			if parsed.Name != tt.wantName {
				t.Errorf("semver:parser_test - Name = %q, want %q", parsed.Name, tt.wantName)
			}
			if parsed.Range != tt.wantRange {
				t.Errorf("semver:parser_test - Range = %q, want %q", parsed.Range, tt.wantRange)
			}
		})
	}
}

func TestBuildContractRef(t *testing.T) {
	if got := BuildContractRef("demo", "Box", ""); got != "demo/Box" {
		t.Errorf("semver:parser_test - BuildContractRef = %q, want demo/Box", got)
	}
	if got := BuildContractRef("demo", "Box", "2.1.0"); got != "demo/Box@2.1.0" {
		t.Errorf("semver:parser_test - BuildContractRef = %q, want demo/Box@2.1.0", got)
	}
}

func TestRangeClassifiers(t *testing.T) {
	if !IsMajorOnly("3") {
		t.Error("semver:parser_test - IsMajorOnly(3) = false")
	}
	if IsMajorOnly("3.1.0") {
		t.Error("semver:parser_test - IsMajorOnly(3.1.0) = true")
	}
	if !IsExactVersion("3.1.0") {
		t.Error("semver:parser_test - IsExactVersion(3.1.0) = false")
	}
	if !IsExactVersion("3.1.0-rc.1") {
		t.Error("semver:parser_test - IsExactVersion(3.1.0-rc.1) = false")
	}
	if IsExactVersion("^3.1.0") {
		t.Error("semver:parser_test - IsExactVersion(^3.1.0) = true")
	}
	if got := ExtractMajorFromRange("7"); got != 7 {
		t.Errorf("semver:parser_test - ExtractMajorFromRange(7) = %d", got)
	}
	if got := ExtractMajorFromRange("^7.0.0"); got != -1 {
		t.Errorf("semver:parser_test - ExtractMajorFromRange(^7.0.0) = %d, want -1", got)
	}
}

func TestValidators(t *testing.T) {
	valid := []string{"Box", "BoxV2", "My_Token"}
	for _, name := range valid {
		if !ValidateContractName(name) {
			t.Errorf("semver:parser_test - ValidateContractName(%q) = false", name)
		}
	}
	invalid := []string{"", "2Box", "my.box", "Box-V2"}
	for _, name := range invalid {
		if ValidateContractName(name) {
			t.Errorf("semver:parser_test - ValidateContractName(%q) = true", name)
		}
	}

	if !ValidateAppName("demo-app2") {
		t.Error("semver:parser_test - ValidateAppName(demo-app2) = false")
	}
	if ValidateAppName("Demo") {
		t.Error("semver:parser_test - ValidateAppName(Demo) = true")
	}
}
