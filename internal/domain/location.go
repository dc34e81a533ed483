package domain

// Location is static geographic reference data managed by an operator.
// LinkedInGeoID is the external identifier used in search requests.
type Location struct {
	Base
	Title         string `gorm:"type:text;not null" json:"title"`
	ISOCode       string `gorm:"type:text" json:"iso_code"`
	LinkedInGeoID string `gorm:"column:linkedin_geo_id;type:text;not null;index" json:"linkedin_geo_id"`
	FlagEmoji     string `gorm:"type:text" json:"flag_emoji"`
}

// TableName returns the database table name for Location.
func (Location) TableName() string {
	return "job_locations"
}
