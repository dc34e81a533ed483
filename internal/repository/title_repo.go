package repository

import (
	"context"

	"github.com/relohub/relohub/internal/domain"
	"gorm.io/gorm"
)

// TitleRepository handles job-title taxonomy operations, including recursive
// descendant expansion over the parent tree.
type TitleRepository struct {
	db *gorm.DB
}

// NewTitleRepository creates a new TitleRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *TitleRepository: repository instance bound to db.
func NewTitleRepository(db *gorm.DB) *TitleRepository {
	return &TitleRepository{db: db}
}

// ListActiveRoots retrieves all active titles without a parent. Only root
// titles drive searches; descendants are folded in through expansion.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - []domain.Title: active root title records.
//   - error: non-nil if the query fails.
func (r *TitleRepository) ListActiveRoots(ctx context.Context) ([]domain.Title, error) {
	var titles []domain.Title
	if err := r.db.WithContext(ctx).
		Where("is_active = ? AND parent_id IS NULL", true).
		Find(&titles).Error; err != nil {
		return nil, err
	}
	return titles, nil
}

// GetByID retrieves a title by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: title ID.
// Returns:
//   - *domain.Title: title record if found.
//   - error: non-nil if lookup fails.
func (r *TitleRepository) GetByID(ctx context.Context, id uint) (*domain.Title, error) {
	var title domain.Title
	if err := r.db.WithContext(ctx).First(&title, id).Error; err != nil {
		return nil, err
	}
	return &title, nil
}

// ExpandLinkedInIDs returns the external identifier of the given title plus
// those of all its active descendants, deduplicated. The tree is walked
// iteratively with a queue so arbitrarily deep taxonomies cannot exhaust the
// call stack.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - title: root of the expansion.
// Returns:
//   - []string: unique external identifiers, root first.
//   - error: non-nil if a child query fails.
func (r *TitleRepository) ExpandLinkedInIDs(ctx context.Context, title *domain.Title) ([]string, error) {
	seen := map[string]bool{title.LinkedInID: true}
	ids := []string{title.LinkedInID}

	queue := []uint{title.ID}
	for len(queue) > 0 {
		parentID := queue[0]
		queue = queue[1:]

		var children []domain.Title
		if err := r.db.WithContext(ctx).
			Where("parent_id = ? AND is_active = ?", parentID, true).
			Find(&children).Error; err != nil {
			return nil, err
		}

		for _, child := range children {
			if !seen[child.LinkedInID] {
				seen[child.LinkedInID] = true
				ids = append(ids, child.LinkedInID)
			}
			queue = append(queue, child.ID)
		}
	}

	return ids, nil
}

// Save persists a title record, triggering alias normalization.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - title: title record to save.
// Returns:
//   - error: non-nil if the save fails.
func (r *TitleRepository) Save(ctx context.Context, title *domain.Title) error {
	return r.db.WithContext(ctx).Save(title).Error
}
