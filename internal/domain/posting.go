package domain

import (
	"fmt"
	"strings"
	"time"
)

// Workplace-mode codes used by the external detail payload. Codes arrive as
// URNs ("urn:li:fs_workplaceType:2") and are additive, not exclusive.
const (
	workplaceOnSite = "1"
	workplaceRemote = "2"
	workplaceHybrid = "3"
)

// msThreshold splits epoch seconds from epoch milliseconds: any numeric
// listed-at value above it cannot be a plausible seconds timestamp.
const msThreshold = int64(1e11)

// Posting is a scraped job record. The search stage creates it as a stub
// (external id, title, location, initial status) and the detail stage
// enriches it in place. It is never re-created once its external identifier
// exists.
type Posting struct {
	Base
	LinkedInID   string     `gorm:"column:linkedin_id;type:text;uniqueIndex;not null" json:"linkedin_id"`
	Title        string     `gorm:"type:text;not null" json:"title"`
	Description  string     `gorm:"type:text" json:"description,omitempty"`
	Attributes   JSONList   `gorm:"type:text" json:"attributes,omitempty"`
	FullLocation string     `gorm:"type:text" json:"full_location,omitempty"`
	ListedAt     *time.Time `json:"listed_at,omitempty"`

	OnSite bool `gorm:"default:false" json:"on_site"`
	Hybrid bool `gorm:"default:false" json:"hybrid"`
	Remote bool `gorm:"default:false" json:"remote"`

	FullTime bool `gorm:"default:false" json:"full_time"`
	PartTime bool `gorm:"default:false" json:"part_time"`
	Contract bool `gorm:"default:false" json:"contract"`

	Status PostingStatus `gorm:"type:text;index;default:PARTIALLY_PROCEEDED" json:"status"`
	Points uint          `gorm:"default:0" json:"points"`

	CompanyID  *uint    `json:"company_id,omitempty"`
	Company    *Company `gorm:"foreignKey:CompanyID" json:"company,omitempty"`
	LocationID uint     `gorm:"not null;index" json:"location_id"`
	Location   Location `gorm:"foreignKey:LocationID" json:"location"`

	Titles []Title `gorm:"many2many:posting_titles" json:"titles,omitempty"`
	Skills []Skill `gorm:"many2many:posting_skills" json:"skills,omitempty"`
}

// TableName returns the database table name for Posting.
func (Posting) TableName() string {
	return "jobs"
}

// SetListedAt normalizes the listing timestamp into ListedAt. The external
// payload has carried epoch seconds, epoch milliseconds, and pre-resolved
// date-times across revisions; numeric values are disambiguated by range.
// Parameters:
//   - v: raw listed-at value (int64/float64 epoch, time.Time, or RFC3339 string).
// Returns:
//   - error: non-nil if the value cannot be interpreted as a timestamp.
func (p *Posting) SetListedAt(v interface{}) error {
	t, err := NormalizeListedAt(v)
	if err != nil {
		return err
	}
	p.ListedAt = &t
	return nil
}

// NormalizeListedAt converts a raw listed-at value into a UTC time.
func NormalizeListedAt(v interface{}) (time.Time, error) {
	switch val := v.(type) {
	case time.Time:
		return val.UTC(), nil
	case *time.Time:
		if val == nil {
			return time.Time{}, fmt.Errorf("nil listed-at value")
		}
		return val.UTC(), nil
	case string:
		t, err := time.Parse(time.RFC3339, val)
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse listed-at %q: %w", val, err)
		}
		return t.UTC(), nil
	case int:
		return epochToTime(int64(val)), nil
	case int64:
		return epochToTime(val), nil
	case float64:
		return epochToTime(int64(val)), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported listed-at type %T", v)
	}
}

// epochToTime interprets the value as seconds unless it is out of range for a
// plausible seconds timestamp, in which case it is retried as milliseconds.
func epochToTime(v int64) time.Time {
	if v > msThreshold {
		return time.UnixMilli(v).UTC()
	}
	return time.Unix(v, 0).UTC()
}

// ApplyWorkplaceType sets the workplace-mode flag for one external code.
// The code may arrive as a bare digit or a URN whose last segment is the code.
func (p *Posting) ApplyWorkplaceType(code string) {
	if idx := strings.LastIndex(code, ":"); idx != -1 {
		code = code[idx+1:]
	}
	switch code {
	case workplaceOnSite:
		p.OnSite = true
	case workplaceRemote:
		p.Remote = true
	case workplaceHybrid:
		p.Hybrid = true
	}
}
