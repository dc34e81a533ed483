package pipeline

import (
	"context"
	"fmt"

	"github.com/relohub/relohub/internal/domain"
	"github.com/relohub/relohub/internal/linkedin"
	"github.com/relohub/relohub/internal/logger"
)

// Search runs the search stage for one location × root-title pair: it expands
// the title to all active descendant identifiers, pages through the search
// endpoint, and upserts a stub posting per result. Existing postings keep
// their enrichment; the searched title is attached additively either way.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - cred: credential acquired for this unit.
//   - location: searched location.
//   - title: active root title driving the search.
// Returns:
//   - error: non-nil when the retry budget is exhausted or the store fails.
func (p *Pipeline) Search(ctx context.Context, cred *domain.Credential, location *domain.Location, title *domain.Title) error {
	log := p.log(ctx).WithFields(logger.Fields{
		logger.FieldComponent:    "search",
		logger.FieldCredentialID: cred.ID,
		"location":               location.Title,
		"title":                  title.Name,
	})

	titleIDs, err := p.titles.ExpandLinkedInIDs(ctx, title)
	if err != nil {
		return fmt.Errorf("failed to expand title %d: %w", title.ID, err)
	}

	client, err := p.newClient(ctx, cred)
	if err != nil {
		return err
	}

	var results []linkedin.SearchResult
	offset := 0
	for {
		page, err := client.SearchJobs(ctx, location.LinkedInGeoID, titleIDs, offset, p.cfg.SearchPageSize, p.cfg.ListedWithin)
		if err != nil {
			return err
		}

		results = append(results, page...)
		offset += p.cfg.SearchPageSize

		// Stop on empty page, offset cap, or short page.
		if len(page) == 0 || offset >= p.cfg.SearchOffsetCap || len(page) < p.cfg.SearchPageSize {
			break
		}
	}

	created := 0
	for _, result := range results {
		externalID := result.ID()
		if externalID == "" {
			continue
		}

		posting, isNew, err := p.postings.GetOrCreateStub(ctx, externalID, result.Title, location.ID)
		if err != nil {
			return fmt.Errorf("failed to upsert posting %s: %w", externalID, err)
		}
		if isNew {
			created++
		}

		if err := p.postings.AttachTitle(ctx, posting, title); err != nil {
			return fmt.Errorf("failed to attach title to posting %s: %w", externalID, err)
		}
	}

	log.WithFields(logger.Fields{
		logger.FieldCount: len(results),
		"created":         created,
	}).Info("Search completed")

	return nil
}
