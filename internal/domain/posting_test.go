package domain

import (
	"testing"
	"time"
)

func TestNormalizeListedAt(t *testing.T) {
	want := time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)

	testCases := []struct {
		name  string
		value interface{}
	}{
		{name: "epoch seconds", value: want.Unix()},
		{name: "epoch milliseconds", value: want.UnixMilli()},
		{name: "rfc3339 string", value: "2024-03-15T12:30:00Z"},
		{name: "time value", value: want},
		{name: "float epoch", value: float64(want.Unix())},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeListedAt(tc.value)
			if err != nil {
				t.Fatalf("NormalizeListedAt(%v) error: %v", tc.value, err)
			}
			if !got.Equal(want) {
				t.Errorf("NormalizeListedAt(%v) = %v, want %v", tc.value, got, want)
			}
		})
	}
}

func TestNormalizeListedAtRejectsGarbage(t *testing.T) {
	if _, err := NormalizeListedAt("yesterday"); err == nil {
		t.Error("expected error for unparseable string")
	}
	if _, err := NormalizeListedAt(struct{}{}); err == nil {
		t.Error("expected error for unsupported type")
	}
}

func TestApplyWorkplaceType(t *testing.T) {
	var p Posting
	p.ApplyWorkplaceType("urn:li:fs_workplaceType:2")
	p.ApplyWorkplaceType("3")

	if p.OnSite {
		t.Error("OnSite should stay false for codes 2 and 3")
	}
	if !p.Remote {
		t.Error("Remote should be set for code 2")
	}
	if !p.Hybrid {
		t.Error("Hybrid should be set for code 3")
	}

	// Flags are additive; an unknown code changes nothing.
	p.ApplyWorkplaceType("urn:li:fs_workplaceType:9")
	if !p.Remote || !p.Hybrid {
		t.Error("unknown code must not clear existing flags")
	}
}

func TestInsertMetadata(t *testing.T) {
	company := Company{}
	company.InsertMetadata(map[string]interface{}{"source": "search"})
	company.InsertMetadata(map[string]interface{}{"source": "detail"})

	if len(company.Metadata) != 2 {
		t.Fatalf("expected 2 metadata entries, got %d", len(company.Metadata))
	}
	if _, ok := company.Metadata["1"]; !ok {
		t.Error("first metadata entry missing under key 1")
	}
	if _, ok := company.Metadata["2"]; !ok {
		t.Error("second metadata entry missing under key 2")
	}
}
