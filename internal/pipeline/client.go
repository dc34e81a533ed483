package pipeline

import (
	"context"
	"time"

	"github.com/relohub/relohub/internal/domain"
	"github.com/relohub/relohub/internal/linkedin"
)

// Client is the slice of the external API the pipeline consumes. Satisfied by
// *linkedin.Client; faked in tests.
type Client interface {
	SearchJobs(ctx context.Context, geoID string, titleIDs []string, offset, limit int, listedWithin time.Duration) ([]linkedin.SearchResult, error)
	GetJob(ctx context.Context, jobID string) (*linkedin.JobDetail, error)
	GetJobSkills(ctx context.Context, jobID string) (*linkedin.SkillMatches, error)
	FetchImage(ctx context.Context, url string) ([]byte, error)
}

// ClientFactory builds an authenticated client for a credential. Each unit of
// work constructs its own client so the session state of the credential it
// acquired is the one being reused and refreshed.
type ClientFactory func(ctx context.Context, cred *domain.Credential) (Client, error)
