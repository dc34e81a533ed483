package repository

import (
	"context"
	"errors"

	"github.com/relohub/relohub/internal/domain"
	"gorm.io/gorm"
)

// CompanyRepository handles company data operations.
type CompanyRepository struct {
	db *gorm.DB
}

// NewCompanyRepository creates a new CompanyRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *CompanyRepository: repository instance bound to db.
func NewCompanyRepository(db *gorm.DB) *CompanyRepository {
	return &CompanyRepository{db: db}
}

// GetOrCreate retrieves a company by external identifier, creating it with
// the given defaults when absent. Existing records are never overwritten.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - company: company with LinkedInID set and creation defaults populated.
// Returns:
//   - *domain.Company: existing or newly created record.
//   - bool: true when a new record was created.
//   - error: non-nil if lookup or insert fails.
func (r *CompanyRepository) GetOrCreate(ctx context.Context, company *domain.Company) (*domain.Company, bool, error) {
	var existing domain.Company
	err := r.db.WithContext(ctx).First(&existing, "linkedin_id = ?", company.LinkedInID).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	if err := r.db.WithContext(ctx).Create(company).Error; err != nil {
		return nil, false, err
	}
	return company, true, nil
}

// SaveLogo persists the asset-store key of a fetched company logo.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - company: company whose Logo field holds the new asset key.
// Returns:
//   - error: non-nil if the update fails.
func (r *CompanyRepository) SaveLogo(ctx context.Context, company *domain.Company) error {
	return r.db.WithContext(ctx).Model(company).
		Updates(map[string]interface{}{"logo": company.Logo, "metadata": company.Metadata}).Error
}

// GetByLinkedInID retrieves a company by its external identifier.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - linkedinID: external company identifier.
// Returns:
//   - *domain.Company: company record if found.
//   - error: non-nil if lookup fails.
func (r *CompanyRepository) GetByLinkedInID(ctx context.Context, linkedinID string) (*domain.Company, error) {
	var company domain.Company
	if err := r.db.WithContext(ctx).First(&company, "linkedin_id = ?", linkedinID).Error; err != nil {
		return nil, err
	}
	return &company, nil
}
