package pipeline

import (
	"context"
	"time"

	"github.com/relohub/relohub/internal/dispatch"
	"github.com/relohub/relohub/internal/logger"
	"github.com/relohub/relohub/internal/repository"
	"github.com/relohub/relohub/internal/storage"
)

// Config holds the tunables of both pipeline stages and their drivers.
type Config struct {
	// Search stage
	SearchPageSize  int
	SearchOffsetCap int
	ListedWithin    time.Duration

	// Scoring heuristic
	Keywords    []string
	Complements []string

	// Drivers
	ProcessBatchSize int
	DispatchBackoff  time.Duration
	SearchLockTTL    time.Duration
	ProcessLockTTL   time.Duration
}

// Pipeline wires the ingestion stages over the repositories, the client
// factory, and the dispatcher. It owns no state of its own; everything lives
// in the store.
type Pipeline struct {
	credentials *repository.CredentialRepository
	locations   *repository.LocationRepository
	titles      *repository.TitleRepository
	companies   *repository.CompanyRepository
	skills      *repository.SkillRepository
	postings    *repository.PostingRepository

	newClient  ClientFactory
	storage    storage.ObjectStorage
	dispatcher *dispatch.Dispatcher
	logger     *logger.Logger
	cfg        Config
}

// Repos bundles the repositories the pipeline depends on.
type Repos struct {
	Credentials *repository.CredentialRepository
	Locations   *repository.LocationRepository
	Titles      *repository.TitleRepository
	Companies   *repository.CompanyRepository
	Skills      *repository.SkillRepository
	Postings    *repository.PostingRepository
}

// New creates a Pipeline.
// Parameters:
//   - repos: entity repositories.
//   - newClient: factory for authenticated API clients.
//   - objectStorage: asset store for company logos; nil disables logo fetch.
//   - dispatcher: work dispatcher with per-credential locking.
//   - log: structured logger.
//   - cfg: stage and driver tunables.
// Returns:
//   - *Pipeline: wired pipeline service.
func New(
	repos Repos,
	newClient ClientFactory,
	objectStorage storage.ObjectStorage,
	dispatcher *dispatch.Dispatcher,
	log *logger.Logger,
	cfg Config,
) *Pipeline {
	if cfg.SearchPageSize <= 0 {
		cfg.SearchPageSize = 20
	}
	if cfg.SearchOffsetCap <= 0 {
		cfg.SearchOffsetCap = 200
	}
	if cfg.ListedWithin <= 0 {
		cfg.ListedWithin = 24 * time.Hour
	}
	if cfg.ProcessBatchSize <= 0 {
		cfg.ProcessBatchSize = 10
	}
	if cfg.DispatchBackoff <= 0 {
		cfg.DispatchBackoff = 5 * time.Second
	}
	if cfg.SearchLockTTL <= 0 {
		cfg.SearchLockTTL = 6 * time.Minute
	}
	if cfg.ProcessLockTTL <= 0 {
		cfg.ProcessLockTTL = 3 * time.Minute
	}

	return &Pipeline{
		credentials: repos.Credentials,
		locations:   repos.Locations,
		titles:      repos.Titles,
		companies:   repos.Companies,
		skills:      repos.Skills,
		postings:    repos.Postings,
		newClient:   newClient,
		storage:     objectStorage,
		dispatcher:  dispatcher,
		logger:      log,
		cfg:         cfg,
	}
}

// log returns a logger from context if available, otherwise the pipeline's.
func (p *Pipeline) log(ctx context.Context) *logger.Logger {
	if l := logger.FromContext(ctx); l != nil {
		return l
	}
	return p.logger
}
