package schema

import (
	"strings"
	"testing"
)

const validRegistryYAML = `name: demo
repositories:
  - name: ui-kit
    url: https://github.com/acme/ui-kit
    components:
      - name: button
        path: components/button
`

func TestDecodeYAMLAndJSON(t *testing.T) {
	fromYAML, err := Decode([]byte(validRegistryYAML))
	if err != nil {
		t.Fatalf("Decode(yaml): %v", err)
	}
	if !strings.Contains(string(fromYAML), `"name":"demo"`) {
		t.Errorf("unexpected JSON: %s", fromYAML)
	}

	fromJSON, err := Decode([]byte(`{"name": "demo", "repositories": []}`))
	if err != nil {
		t.Fatalf("Decode(json): %v", err)
	}
	if !strings.Contains(string(fromJSON), `"repositories":[]`) {
		t.Errorf("unexpected JSON: %s", fromJSON)
	}
}

func TestDecodeEmpty(t *testing.T) {
	if _, err := Decode([]byte("")); err == nil {
		t.Error("expected error for empty document")
	}
}

func TestValidateRegistry(t *testing.T) {
	doc, err := Decode([]byte(validRegistryYAML))
	if err != nil {
		t.Fatal(err)
	}
	res, err := Validate(Registry, doc)
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !res.Valid {
		t.Errorf("expected valid, got issues: %s", res.Summary())
	}
}

func TestValidateRegistryReportsIssues(t *testing.T) {
	tests := []struct {
		name     string
		doc      string
		wantPath string
	}{
		{"missing name", `{"repositories": []}`, ""},
		{"empty repo name", `{"name": "x", "repositories": [{"name": "", "url": "https://a/b", "components": []}]}`, "/repositories/0/name"},
		{"component without path", `{"name": "x", "repositories": [{"name": "r", "url": "https://a/b", "components": [{"name": "c"}]}]}`, "/repositories/0/components/0"},
		{"wrong type", `{"name": 3, "repositories": []}`, "/name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Validate(Registry, []byte(tt.doc))
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if res.Valid {
				t.Fatal("expected validation issues")
			}
			found := false
			for _, issue := range res.Issues {
				if issue.Path == tt.wantPath {
					found = true
				}
			}
			if !found {
				t.Errorf("no issue at %q in %s", tt.wantPath, res.Summary())
			}
		})
	}
}

func TestValidateTracking(t *testing.T) {
	good := `{"lastSync": "2024-01-01T00:00:00Z", "components": [
		{"name": "button", "repositoryName": "ui-kit", "version": "abc", "path": "button",
		 "originalPath": "components/button", "lastSynced": "2024-01-01T00:00:00Z", "customized": false}]}`
	res, err := Validate(Tracking, []byte(good))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if !res.Valid {
		t.Errorf("expected valid, got %s", res.Summary())
	}

	bad := `{"components": [{"name": "button", "customized": "yes"}]}`
	res, err = Validate(Tracking, []byte(bad))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if res.Valid {
		t.Error("expected invalid tracking document")
	}
}
