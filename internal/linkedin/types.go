package linkedin

import (
	"encoding/json"
	"strings"
)

// jobState value for a posting that is still live.
const JobStateListed = "LISTED"

// SearchResult is one item of a paginated job-search response.
type SearchResult struct {
	TrackingURN string `json:"trackingUrn"`
	Title       string `json:"title"`
}

// ID extracts the external job identifier from the tracking URN.
func (r *SearchResult) ID() string {
	return IDFromURN(r.TrackingURN)
}

// searchResponse is the envelope of the search endpoint.
type searchResponse struct {
	Elements []SearchResult `json:"elements"`
}

// JobDetail is the full-detail payload of a single posting.
type JobDetail struct {
	JobState          string                     `json:"jobState"`
	Description       JobDescription             `json:"description"`
	CompanyDetails    map[string]json.RawMessage `json:"companyDetails"`
	WorkRemoteAllowed bool                       `json:"workRemoteAllowed"`
	FormattedLocation string                     `json:"formattedLocation"`
	ListedAt          json.Number                `json:"listedAt"`
	WorkplaceTypes    []string                   `json:"workplaceTypes"`
}

// JobDescription carries the free text and its structured attributes.
type JobDescription struct {
	Text       string        `json:"text"`
	Attributes []interface{} `json:"attributes"`
}

// CompanyPayload is the resolved company substructure of a job detail.
type CompanyPayload struct {
	EntityURN     string     `json:"entityUrn"`
	Name          string     `json:"name"`
	UniversalName string     `json:"universalName"`
	Logo          *LogoImage `json:"logo"`
}

// ID extracts the external company identifier from the entity URN.
func (c *CompanyPayload) ID() string {
	return IDFromURN(c.EntityURN)
}

// LogoImage wraps the vector-image variants of a company logo.
type LogoImage struct {
	Image struct {
		VectorImage *VectorImage `json:"com.linkedin.common.VectorImage"`
	} `json:"image"`
}

// VectorImage lists the available artifact sizes of an image asset.
type VectorImage struct {
	RootURL   string          `json:"rootUrl"`
	Artifacts []ImageArtifact `json:"artifacts"`
}

// ImageArtifact is one size variant of a vector image.
type ImageArtifact struct {
	Width                         int    `json:"width"`
	FileIdentifyingURLPathSegment string `json:"fileIdentifyingUrlPathSegment"`
}

// LargestArtifactURL returns the URL of the widest available variant, or
// empty when the image has no artifacts.
func (v *VectorImage) LargestArtifactURL() string {
	if v == nil || len(v.Artifacts) == 0 {
		return ""
	}
	largest := v.Artifacts[0]
	for _, a := range v.Artifacts[1:] {
		if a.Width > largest.Width {
			largest = a
		}
	}
	return v.RootURL + largest.FileIdentifyingURLPathSegment
}

// companyWrapper is the inner object keyed by a decoration class name inside
// companyDetails.
type companyWrapper struct {
	CompanyResolutionResult *CompanyPayload `json:"companyResolutionResult"`
}

// Company digs the resolved company out of the decoration-keyed
// companyDetails map. Returns nil when no resolvable company substructure is
// present.
func (d *JobDetail) Company() *CompanyPayload {
	for _, raw := range d.CompanyDetails {
		var wrapper companyWrapper
		if err := json.Unmarshal(raw, &wrapper); err != nil {
			continue
		}
		if wrapper.CompanyResolutionResult != nil && wrapper.CompanyResolutionResult.EntityURN != "" {
			return wrapper.CompanyResolutionResult
		}
	}
	return nil
}

// SkillMatches is the response of the job-skill endpoint.
type SkillMatches struct {
	SkillMatchStatuses []SkillMatchStatus `json:"skillMatchStatuses"`
}

// SkillMatchStatus is one matched skill entry.
type SkillMatchStatus struct {
	Skill SkillPayload `json:"skill"`
}

// SkillPayload identifies a skill taxonomy entry.
type SkillPayload struct {
	Name      string `json:"name"`
	EntityURN string `json:"entityUrn"`
}

// ID extracts the external skill identifier from the entity URN.
func (s *SkillPayload) ID() string {
	return IDFromURN(s.EntityURN)
}

// IDFromURN returns the last colon-separated segment of a URN.
func IDFromURN(urn string) string {
	if idx := strings.LastIndex(urn, ":"); idx != -1 {
		return urn[idx+1:]
	}
	return urn
}
