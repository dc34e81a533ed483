package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/relohub/relohub/internal/domain"
	"github.com/relohub/relohub/internal/linkedin"
	"github.com/relohub/relohub/internal/logger"
	_ "golang.org/x/image/webp"
)

// Process runs the detail-resolution stage for one batch of stub postings.
// Per item it fetches the full detail, resolves the company (deleting the
// stub when none is resolvable), enriches the record, attaches skills, and
// scores it. Each item is fully persisted before the next one starts, so a
// crash mid-batch leaves the remaining stubs eligible for the next run.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - cred: credential acquired for this unit.
//   - postingIDs: batch of posting IDs, all expected PARTIALLY_PROCEEDED.
// Returns:
//   - error: non-nil when the retry budget is exhausted or the store fails.
func (p *Pipeline) Process(ctx context.Context, cred *domain.Credential, postingIDs []uint) error {
	log := p.log(ctx).WithFields(logger.Fields{
		logger.FieldComponent:    "process",
		logger.FieldCredentialID: cred.ID,
	})

	postings, err := p.postings.ListByIDs(ctx, postingIDs)
	if err != nil {
		return err
	}

	client, err := p.newClient(ctx, cred)
	if err != nil {
		return err
	}

	for i := range postings {
		posting := &postings[i]
		itemLog := log.WithField(logger.FieldPostingID, posting.LinkedInID)

		detail, err := client.GetJob(ctx, posting.LinkedInID)
		if err != nil {
			return err
		}

		// Delisted items are a terminal business outcome, not an error.
		if detail.JobState != linkedin.JobStateListed {
			posting.Status = domain.StatusExpired
			if err := p.postings.Save(ctx, posting); err != nil {
				return err
			}
			itemLog.Info("Posting expired")
			continue
		}

		companyPayload := detail.Company()
		if companyPayload == nil {
			// No resolvable company: drop the stub permanently.
			if err := p.postings.Delete(ctx, posting); err != nil {
				return err
			}
			itemLog.Warn("Posting dropped: no resolvable company")
			continue
		}

		company, err := p.resolveCompany(ctx, client, companyPayload)
		if err != nil {
			return err
		}
		posting.CompanyID = &company.ID

		posting.Description = detail.Description.Text
		posting.Attributes = domain.JSONList(detail.Description.Attributes)
		posting.Remote = detail.WorkRemoteAllowed
		posting.FullLocation = detail.FormattedLocation
		if raw, err := detail.ListedAt.Int64(); err == nil && raw > 0 {
			if err := posting.SetListedAt(raw); err != nil {
				itemLog.WithError(err).Warn("Failed to normalize listed-at")
			}
		}
		for _, workplaceType := range detail.WorkplaceTypes {
			posting.ApplyWorkplaceType(workplaceType)
		}
		applyEmploymentTypes(posting)

		skills, err := client.GetJobSkills(ctx, posting.LinkedInID)
		if err != nil {
			return err
		}
		for _, match := range skills.SkillMatchStatuses {
			skill, err := p.skills.GetOrCreate(ctx, match.Skill.ID(), match.Skill.Name)
			if err != nil {
				return err
			}
			if err := p.postings.AttachSkill(ctx, posting, skill); err != nil {
				return err
			}
		}

		points := Score(posting.Title, posting.Description, p.cfg.Keywords, p.cfg.Complements)
		posting.Points = uint(points)
		posting.Status = StatusForPoints(points)

		if err := p.postings.Save(ctx, posting); err != nil {
			return err
		}

		itemLog.WithFields(logger.Fields{
			"points":           points,
			logger.FieldStatus: string(posting.Status),
		}).Info("Posting processed")
	}

	return nil
}

// resolveCompany upserts the company and attaches its logo on first sight.
// The logo is best-effort: any fetch or upload failure is swallowed.
func (p *Pipeline) resolveCompany(ctx context.Context, client Client, payload *linkedin.CompanyPayload) (*domain.Company, error) {
	company, _, err := p.companies.GetOrCreate(ctx, &domain.Company{
		LinkedInID:    payload.ID(),
		Name:          payload.Name,
		UniversalName: payload.UniversalName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upsert company %s: %w", payload.ID(), err)
	}

	if company.Logo == "" && payload.Logo != nil {
		p.fetchLogo(ctx, client, company, payload.Logo.Image.VectorImage)
	}

	return company, nil
}

// fetchLogo downloads the largest logo variant and stores it under the
// company slug. Failures are logged and ignored; the logo never blocks
// posting enrichment.
func (p *Pipeline) fetchLogo(ctx context.Context, client Client, company *domain.Company, img *linkedin.VectorImage) {
	if p.storage == nil {
		return
	}

	url := img.LargestArtifactURL()
	if url == "" {
		return
	}

	log := p.log(ctx).WithField("company", company.LinkedInID)

	data, err := client.FetchImage(ctx, url)
	if err != nil {
		log.WithError(err).Warn("Failed to fetch company logo")
		return
	}

	// Record dimensions when the format is decodable; sniff failure is fine.
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		company.InsertMetadata(map[string]interface{}{
			"logo_width":  cfg.Width,
			"logo_height": cfg.Height,
		})
	}

	slug := company.UniversalName
	if slug == "" {
		slug = company.LinkedInID
	}
	key := "company/" + slug + ".png"

	if err := p.storage.Upload(ctx, key, bytes.NewReader(data), int64(len(data)), "image/png"); err != nil {
		log.WithError(err).Warn("Failed to store company logo")
		return
	}

	company.Logo = key
	if err := p.companies.SaveLogo(ctx, company); err != nil {
		log.WithError(err).Warn("Failed to persist company logo key")
	}
}

// applyEmploymentTypes derives the employment-type flags from the posting
// description. Best effort; flags are additive and never cleared.
func applyEmploymentTypes(posting *domain.Posting) {
	description := strings.ToLower(posting.Description)
	if strings.Contains(description, "full-time") || strings.Contains(description, "full time") {
		posting.FullTime = true
	}
	if strings.Contains(description, "part-time") || strings.Contains(description, "part time") {
		posting.PartTime = true
	}
	if strings.Contains(description, "contract") {
		posting.Contract = true
	}
}
