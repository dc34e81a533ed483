package domain

import (
	"strings"

	"gorm.io/gorm"
)

// Title is a job-title taxon. Titles form an operator-managed tree through
// ParentID; a root title used in searches expands to itself plus all active
// descendants. OtherNames holds semicolon-joined aliases.
type Title struct {
	Base
	Name       string  `gorm:"column:title;type:text;not null" json:"title"`
	ParentID   *uint   `gorm:"index" json:"parent_id,omitempty"`
	Parent     *Title  `gorm:"foreignKey:ParentID" json:"-"`
	OtherNames string  `gorm:"type:text" json:"other_names,omitempty"`
	LinkedInID string  `gorm:"column:linkedin_id;type:text;uniqueIndex;not null" json:"linkedin_id"`
	Children   []Title `gorm:"foreignKey:ParentID" json:"-"`
}

// TableName returns the database table name for Title.
func (Title) TableName() string {
	return "job_titles"
}

// BeforeSave normalizes the alias list on every save.
func (t *Title) BeforeSave(tx *gorm.DB) error {
	t.OtherNames = NormalizeAliases(t.OtherNames)
	return nil
}

// OtherNameList splits the semicolon-joined alias list.
func (t *Title) OtherNameList() []string {
	if t.OtherNames == "" {
		return nil
	}
	return strings.Split(t.OtherNames, ";")
}

// AddOtherName appends an alias unless an equal entry (case-insensitive)
// already exists.
func (t *Title) AddOtherName(name string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	for _, existing := range t.OtherNameList() {
		if strings.EqualFold(existing, name) {
			return
		}
	}
	names := append(t.OtherNameList(), name)
	t.OtherNames = strings.Join(names, ";")
}

// NormalizeAliases trims every segment, drops empty segments, and removes
// case-insensitive duplicates keeping the first occurrence.
func NormalizeAliases(raw string) string {
	if raw == "" {
		return ""
	}
	seen := make(map[string]bool)
	var names []string
	for _, n := range strings.Split(raw, ";") {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		key := strings.ToLower(n)
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, n)
	}
	return strings.Join(names, ";")
}
