package repository

import (
	"context"
	"errors"
	"time"

	"github.com/relohub/relohub/internal/domain"
	"gorm.io/gorm"
)

// ErrNoCredentialAvailable is returned when no active scraping credential exists.
var ErrNoCredentialAvailable = errors.New("no active credential available")

// CredentialRepository handles scraping-credential data operations, including
// least-recently-used rotation.
type CredentialRepository struct {
	db *gorm.DB
}

// NewCredentialRepository creates a new CredentialRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *CredentialRepository: repository instance bound to db.
func NewCredentialRepository(db *gorm.DB) *CredentialRepository {
	return &CredentialRepository{db: db}
}

// AcquireLeastUsed selects the active credential with the oldest last-used
// timestamp (ties broken by ID) and stamps it with the current time before
// returning. This is best-effort load spreading, not mutual exclusion: a
// concurrent caller may receive the same credential.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - *domain.Credential: acquired credential with proxy preloaded.
//   - error: ErrNoCredentialAvailable when no credential is active.
func (r *CredentialRepository) AcquireLeastUsed(ctx context.Context) (*domain.Credential, error) {
	var cred domain.Credential
	err := r.db.WithContext(ctx).
		Preload("Proxy").
		Where("is_active = ?", true).
		Order("last_used ASC, id ASC").
		First(&cred).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoCredentialAvailable
		}
		return nil, err
	}

	cred.LastUsed = time.Now().UTC()
	if err := r.db.WithContext(ctx).Model(&cred).Update("last_used", cred.LastUsed).Error; err != nil {
		return nil, err
	}

	return &cred, nil
}

// GetByID retrieves a credential by its ID with proxy preloaded.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: credential ID.
// Returns:
//   - *domain.Credential: credential record if found.
//   - error: non-nil if lookup fails.
func (r *CredentialRepository) GetByID(ctx context.Context, id uint) (*domain.Credential, error) {
	var cred domain.Credential
	if err := r.db.WithContext(ctx).Preload("Proxy").First(&cred, id).Error; err != nil {
		return nil, err
	}
	return &cred, nil
}

// SaveCookies persists refreshed session state back to the credential so a
// later client construction can reuse prior authentication.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - cred: credential whose Cookies field holds the new session state.
// Returns:
//   - error: non-nil if the update fails.
func (r *CredentialRepository) SaveCookies(ctx context.Context, cred *domain.Credential) error {
	return r.db.WithContext(ctx).Model(cred).Update("cookies", cred.Cookies).Error
}

// Create inserts a new credential record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - cred: credential record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *CredentialRepository) Create(ctx context.Context, cred *domain.Credential) error {
	return r.db.WithContext(ctx).Create(cred).Error
}
