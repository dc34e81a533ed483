package linkedin

import (
	"encoding/json"
	"testing"
)

func TestJobDetailCompany(t *testing.T) {
	payload := `{
		"jobState": "LISTED",
		"companyDetails": {
			"com.linkedin.voyager.deco.jobs.web.shared.WebJobPostingCompany": {
				"companyResolutionResult": {
					"entityUrn": "urn:li:fs_normalized_company:1337",
					"name": "Acme",
					"universalName": "acme"
				}
			}
		}
	}`

	var detail JobDetail
	if err := json.Unmarshal([]byte(payload), &detail); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	company := detail.Company()
	if company == nil {
		t.Fatal("expected resolved company")
	}
	if company.ID() != "1337" {
		t.Errorf("company ID = %q, want %q", company.ID(), "1337")
	}
	if company.UniversalName != "acme" {
		t.Errorf("universalName = %q, want %q", company.UniversalName, "acme")
	}
}

func TestJobDetailCompanyUnresolvable(t *testing.T) {
	// A deleted company arrives as a bare URN with no resolution result.
	payload := `{"companyDetails": {"com.linkedin.voyager.jobs.JobPostingCompanyName": {"companyName": "ghost"}}}`

	var detail JobDetail
	if err := json.Unmarshal([]byte(payload), &detail); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if detail.Company() != nil {
		t.Error("expected nil company for unresolvable payload")
	}
}

func TestLargestArtifactURL(t *testing.T) {
	img := &VectorImage{
		RootURL: "https://cdn.example.com/logo/",
		Artifacts: []ImageArtifact{
			{Width: 100, FileIdentifyingURLPathSegment: "100.png"},
			{Width: 400, FileIdentifyingURLPathSegment: "400.png"},
			{Width: 200, FileIdentifyingURLPathSegment: "200.png"},
		},
	}
	if got := img.LargestArtifactURL(); got != "https://cdn.example.com/logo/400.png" {
		t.Errorf("LargestArtifactURL = %q", got)
	}

	var empty *VectorImage
	if got := empty.LargestArtifactURL(); got != "" {
		t.Errorf("nil image should yield empty URL, got %q", got)
	}
}

func TestIDFromURN(t *testing.T) {
	if got := IDFromURN("urn:li:jobPosting:99"); got != "99" {
		t.Errorf("IDFromURN = %q, want 99", got)
	}
	if got := IDFromURN("plain"); got != "plain" {
		t.Errorf("IDFromURN without colons = %q, want plain", got)
	}
}
