package api

import (
	"encoding/json"
	"testing"

	"github.com/opsgate/opsgate/internal/config"
	"github.com/opsgate/opsgate/pkg/openapi"
)

func docsConfig() *config.Config {
	return &config.Config{
		Version: "1.2.3",
		API: config.APIConfig{
			BasePath: "/api",
			Docs: openapi.Config{
				Title:       "OpsGate API",
				Description: "Approval orchestration",
			},
		},
	}
}

func TestBuildSpec(t *testing.T) {
	spec := buildSpec(docsConfig())

	if spec.Info.Title != "OpsGate API" {
		t.Errorf("title = %s", spec.Info.Title)
	}
	if spec.Info.Version != "1.2.3" {
		t.Errorf("version = %s", spec.Info.Version)
	}
	if len(spec.Servers) != 1 || spec.Servers[0].URL != "/api" {
		t.Errorf("servers = %v", spec.Servers)
	}

	paths := []string{
		"/requests",
		"/approvals",
		"/approvals/pending",
		"/approvals/{id}",
		"/approvals/{id}/decision",
		"/audit",
		"/audit/export",
		"/storage",
		"/storage/{key}",
		"/storage/download/{key}",
	}
	for _, p := range paths {
		if _, ok := spec.Paths[p]; !ok {
			t.Errorf("missing path %s", p)
		}
	}

	for _, name := range []string{"SubmitCommand", "Approval", "DecisionCommand", "Confirmation", "AuditEntry"} {
		if _, ok := spec.Components.Schemas[name]; !ok {
			t.Errorf("missing schema %s", name)
		}
	}

	decision := spec.Paths["/approvals/{id}/decision"]
	if decision.Post == nil {
		t.Fatal("decision path has no POST operation")
	}
	if _, ok := decision.Post.Responses[409]; !ok {
		t.Error("decision should document the already-processed conflict")
	}
}

func TestBuildSpecMarshals(t *testing.T) {
	data, err := openapi.MarshalJSON(buildSpec(docsConfig()))
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}

	var parsed map[string]any
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("generated spec is not valid JSON: %v", err)
	}
	if parsed["openapi"] != "3.1.0" {
		t.Errorf("openapi = %v", parsed["openapi"])
	}
}
