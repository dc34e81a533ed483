package repository

import (
	"context"

	"github.com/relohub/relohub/internal/domain"
	"gorm.io/gorm"
)

// LocationRepository handles job-location reference data.
type LocationRepository struct {
	db *gorm.DB
}

// NewLocationRepository creates a new LocationRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *LocationRepository: repository instance bound to db.
func NewLocationRepository(db *gorm.DB) *LocationRepository {
	return &LocationRepository{db: db}
}

// ListActive retrieves all active locations.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - []domain.Location: active location records.
//   - error: non-nil if the query fails.
func (r *LocationRepository) ListActive(ctx context.Context) ([]domain.Location, error) {
	var locations []domain.Location
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Find(&locations).Error; err != nil {
		return nil, err
	}
	return locations, nil
}

// GetByID retrieves a location by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: location ID.
// Returns:
//   - *domain.Location: location record if found.
//   - error: non-nil if lookup fails.
func (r *LocationRepository) GetByID(ctx context.Context, id uint) (*domain.Location, error) {
	var location domain.Location
	if err := r.db.WithContext(ctx).First(&location, id).Error; err != nil {
		return nil, err
	}
	return &location, nil
}

// Create inserts a new location record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - location: location record to persist.
// Returns:
//   - error: non-nil if the insert fails.
func (r *LocationRepository) Create(ctx context.Context, location *domain.Location) error {
	return r.db.WithContext(ctx).Create(location).Error
}
