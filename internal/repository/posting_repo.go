package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/relohub/relohub/internal/domain"
	"gorm.io/gorm"
)

// ErrInvalidTransition is returned when a status change is not permitted by
// the posting lifecycle.
var ErrInvalidTransition = errors.New("invalid posting status transition")

// PostingRepository handles job-posting data operations.
type PostingRepository struct {
	db *gorm.DB
}

// NewPostingRepository creates a new PostingRepository.
// Parameters:
//   - db: GORM database handle used for queries.
// Returns:
//   - *PostingRepository: repository instance bound to db.
func NewPostingRepository(db *gorm.DB) *PostingRepository {
	return &PostingRepository{db: db}
}

// GetOrCreateStub upserts a posting by external identifier. When absent, a
// stub with title, location, and initial status is created; when present, the
// existing record is returned untouched so prior enrichment is preserved.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - linkedinID: external posting identifier.
//   - title: posting title from the search result.
//   - locationID: searched location.
// Returns:
//   - *domain.Posting: existing or newly created record.
//   - bool: true when a new stub was created.
//   - error: non-nil if lookup or insert fails.
func (r *PostingRepository) GetOrCreateStub(ctx context.Context, linkedinID, title string, locationID uint) (*domain.Posting, bool, error) {
	var existing domain.Posting
	err := r.db.WithContext(ctx).First(&existing, "linkedin_id = ?", linkedinID).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	posting := domain.Posting{
		LinkedInID: linkedinID,
		Title:      title,
		LocationID: locationID,
		Status:     domain.StatusPartiallyProceeded,
	}
	if err := r.db.WithContext(ctx).Create(&posting).Error; err != nil {
		return nil, false, err
	}
	return &posting, true, nil
}

// AttachTitle adds a title to the posting's title relation. Additive; never
// removes existing associations.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - posting: posting to modify.
//   - title: title to attach.
// Returns:
//   - error: non-nil if the association fails.
func (r *PostingRepository) AttachTitle(ctx context.Context, posting *domain.Posting, title *domain.Title) error {
	return r.db.WithContext(ctx).Model(posting).Association("Titles").Append(title)
}

// AttachSkill adds a skill to the posting's skill relation. Additive.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - posting: posting to modify.
//   - skill: skill to attach.
// Returns:
//   - error: non-nil if the association fails.
func (r *PostingRepository) AttachSkill(ctx context.Context, posting *domain.Posting, skill *domain.Skill) error {
	return r.db.WithContext(ctx).Model(posting).Association("Skills").Append(skill)
}

// Save persists all mutations of a posting record.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - posting: posting record with updated fields.
// Returns:
//   - error: non-nil if the save fails.
func (r *PostingRepository) Save(ctx context.Context, posting *domain.Posting) error {
	return r.db.WithContext(ctx).Save(posting).Error
}

// Delete permanently removes a posting. Used when the external payload has no
// resolvable company and the stub is dropped rather than retried.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - posting: posting record to delete.
// Returns:
//   - error: non-nil if the delete fails.
func (r *PostingRepository) Delete(ctx context.Context, posting *domain.Posting) error {
	return r.db.WithContext(ctx).Select("Titles", "Skills").Delete(posting).Error
}

// GetByID retrieves a posting by its ID.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - id: posting ID.
// Returns:
//   - *domain.Posting: posting record if found.
//   - error: non-nil if lookup fails.
func (r *PostingRepository) GetByID(ctx context.Context, id uint) (*domain.Posting, error) {
	var posting domain.Posting
	if err := r.db.WithContext(ctx).First(&posting, id).Error; err != nil {
		return nil, err
	}
	return &posting, nil
}

// GetByLinkedInID retrieves a posting by its external identifier.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - linkedinID: external posting identifier.
// Returns:
//   - *domain.Posting: posting record if found.
//   - error: non-nil if lookup fails.
func (r *PostingRepository) GetByLinkedInID(ctx context.Context, linkedinID string) (*domain.Posting, error) {
	var posting domain.Posting
	if err := r.db.WithContext(ctx).
		Preload("Titles").
		Preload("Skills").
		First(&posting, "linkedin_id = ?", linkedinID).Error; err != nil {
		return nil, err
	}
	return &posting, nil
}

// ListIDsByStatus retrieves IDs of active postings in the given status,
// ordered by creation time. Used by the detail driver to build batches.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - status: posting status to filter by.
// Returns:
//   - []uint: matching posting IDs in creation order.
//   - error: non-nil if the query fails.
func (r *PostingRepository) ListIDsByStatus(ctx context.Context, status domain.PostingStatus) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&domain.Posting{}).
		Where("is_active = ? AND status = ?", true, status).
		Order("created_at ASC").
		Pluck("id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ListByIDs retrieves postings by a list of IDs.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - ids: posting IDs.
// Returns:
//   - []domain.Posting: matching posting records.
//   - error: non-nil if the query fails.
func (r *PostingRepository) ListByIDs(ctx context.Context, ids []uint) ([]domain.Posting, error) {
	if len(ids) == 0 {
		return []domain.Posting{}, nil
	}
	var postings []domain.Posting
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&postings).Error; err != nil {
		return nil, fmt.Errorf("failed to get postings by IDs: %w", err)
	}
	return postings, nil
}

// ListByStatus retrieves postings by status with pagination.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - status: posting status to filter by.
//   - limit: maximum number of records to return.
//   - offset: number of records to skip.
// Returns:
//   - []domain.Posting: matching posting records.
//   - error: non-nil if the query fails.
func (r *PostingRepository) ListByStatus(ctx context.Context, status domain.PostingStatus, limit, offset int) ([]domain.Posting, error) {
	var postings []domain.Posting
	if err := r.db.WithContext(ctx).
		Preload("Company").
		Where("status = ?", status).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&postings).Error; err != nil {
		return nil, err
	}
	return postings, nil
}

// CountByStatus counts postings grouped by status.
// Parameters:
//   - ctx: context for cancellation and deadlines.
// Returns:
//   - map[domain.PostingStatus]int64: count per status.
//   - error: non-nil if the query fails.
func (r *PostingRepository) CountByStatus(ctx context.Context) (map[domain.PostingStatus]int64, error) {
	type row struct {
		Status domain.PostingStatus
		Count  int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&domain.Posting{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[domain.PostingStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}

// Transition moves a posting to a new lifecycle status, enforcing the
// transition graph.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - posting: posting to transition.
//   - to: target status.
// Returns:
//   - error: ErrInvalidTransition if the move is not allowed; otherwise any
//     persistence error.
func (r *PostingRepository) Transition(ctx context.Context, posting *domain.Posting, to domain.PostingStatus) error {
	if !domain.CanTransition(posting.Status, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, posting.Status, to)
	}
	posting.Status = to
	return r.db.WithContext(ctx).Model(posting).Update("status", to).Error
}
