package domain

// Company is an employer resolved from job detail payloads, upserted by its
// external identifier. Logo holds the asset-store key of the company logo and
// stays empty until a logo has been fetched.
type Company struct {
	Base
	Name          string `gorm:"type:text;not null" json:"name"`
	UniversalName string `gorm:"type:text" json:"universal_name"`
	LinkedInID    string `gorm:"column:linkedin_id;type:text;uniqueIndex;not null" json:"linkedin_id"`
	Logo          string `gorm:"type:text" json:"logo,omitempty"`
}

// TableName returns the database table name for Company.
func (Company) TableName() string {
	return "companies"
}

// Skill is a taxonomy entry attached to postings, upserted by its external
// identifier.
type Skill struct {
	Base
	Name       string `gorm:"type:text;not null" json:"name"`
	LinkedInID string `gorm:"column:linkedin_id;type:text;uniqueIndex;not null" json:"linkedin_id"`
}

// TableName returns the database table name for Skill.
func (Skill) TableName() string {
	return "job_skills"
}
