package repository

import (
	"context"
	"errors"

	"github.com/relohub/relohub/internal/domain"
	"gorm.io/gorm"
)

// SkillRepository handles job-skill taxonomy operations.
type SkillRepository struct {
	db *gorm.DB
}

// NewSkillRepository creates a new SkillRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *SkillRepository: repository instance bound to db.
func NewSkillRepository(db *gorm.DB) *SkillRepository {
	return &SkillRepository{db: db}
}

// GetOrCreate retrieves a skill by external identifier, creating it with the
// given name when absent.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - linkedinID: external skill identifier.
//   - name: display name used when creating.
// Returns:
//   - *domain.Skill: existing or newly created record.
//   - error: non-nil if lookup or insert fails.
func (r *SkillRepository) GetOrCreate(ctx context.Context, linkedinID, name string) (*domain.Skill, error) {
	var skill domain.Skill
	err := r.db.WithContext(ctx).First(&skill, "linkedin_id = ?", linkedinID).Error
	if err == nil {
		return &skill, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	skill = domain.Skill{LinkedInID: linkedinID, Name: name}
	if err := r.db.WithContext(ctx).Create(&skill).Error; err != nil {
		return nil, err
	}
	return &skill, nil
}
