package pipeline

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/relohub/relohub/internal/dispatch"
	"github.com/relohub/relohub/internal/domain"
	"github.com/relohub/relohub/internal/logger"
)

// pendingUnit is a unit whose dispatch was rejected as a duplicate and is
// waiting for its credential to free up.
type pendingUnit struct {
	key  string
	ttl  time.Duration
	unit dispatch.Unit
}

// RunSearchAll fans the full location × root-title cross product out as
// search units, one credential per unit. Units rejected as duplicates are
// queued and re-offered every backoff interval until every unit has been
// accepted. Accepted means dispatched, not completed.
// Parameters:
//   - ctx: context for cancellation; aborts the retry loop when done.
// Returns:
//   - error: non-nil when no credential is available or the store fails.
func (p *Pipeline) RunSearchAll(ctx context.Context) error {
	locations, err := p.locations.ListActive(ctx)
	if err != nil {
		return err
	}
	titles, err := p.titles.ListActiveRoots(ctx)
	if err != nil {
		return err
	}

	log := p.log(ctx).WithField(logger.FieldComponent, "search-driver")
	log.WithFields(logger.Fields{
		"locations": len(locations),
		"titles":    len(titles),
	}).Info("Fanning out search units")

	var pending []pendingUnit
	for _, location := range locations {
		for _, title := range titles {
			cred, err := p.credentials.AcquireLeastUsed(ctx)
			if err != nil {
				return err
			}

			unit := p.searchUnit(cred.ID, location, title)
			key := strconv.FormatUint(uint64(cred.ID), 10)

			_, err = p.dispatcher.Dispatch(ctx, key, p.cfg.SearchLockTTL, unit)
			if errors.Is(err, dispatch.ErrDuplicateUnit) {
				pending = append(pending, pendingUnit{key: key, ttl: p.cfg.SearchLockTTL, unit: unit})
				continue
			}
			if err != nil {
				return err
			}
		}
	}

	return p.drainPending(ctx, pending)
}

// RunProcessAll selects every active stub posting in creation order, chunks
// the IDs into fixed-size batches, and dispatches one detail-resolution unit
// per batch with the same accept/retry discipline as the search driver.
// Parameters:
//   - ctx: context for cancellation; aborts the retry loop when done.
// Returns:
//   - error: non-nil when no credential is available or the store fails.
func (p *Pipeline) RunProcessAll(ctx context.Context) error {
	ids, err := p.postings.ListIDsByStatus(ctx, domain.StatusPartiallyProceeded)
	if err != nil {
		return err
	}

	log := p.log(ctx).WithField(logger.FieldComponent, "process-driver")
	log.WithField(logger.FieldCount, len(ids)).Info("Fanning out process units")

	var pending []pendingUnit
	for offset := 0; offset < len(ids); offset += p.cfg.ProcessBatchSize {
		end := offset + p.cfg.ProcessBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		batch := ids[offset:end]

		cred, err := p.credentials.AcquireLeastUsed(ctx)
		if err != nil {
			return err
		}

		unit := p.processUnit(cred.ID, batch)
		key := strconv.FormatUint(uint64(cred.ID), 10)

		_, err = p.dispatcher.Dispatch(ctx, key, p.cfg.ProcessLockTTL, unit)
		if errors.Is(err, dispatch.ErrDuplicateUnit) {
			pending = append(pending, pendingUnit{key: key, ttl: p.cfg.ProcessLockTTL, unit: unit})
			continue
		}
		if err != nil {
			return err
		}
	}

	return p.drainPending(ctx, pending)
}

// drainPending re-offers rejected units every backoff interval until all have
// been accepted or the context is cancelled.
func (p *Pipeline) drainPending(ctx context.Context, pending []pendingUnit) error {
	for len(pending) > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.cfg.DispatchBackoff):
		}

		remaining := pending[:0]
		for _, pu := range pending {
			_, err := p.dispatcher.Dispatch(ctx, pu.key, pu.ttl, pu.unit)
			if errors.Is(err, dispatch.ErrDuplicateUnit) {
				remaining = append(remaining, pu)
				continue
			}
			if err != nil {
				return err
			}
		}
		pending = remaining
	}
	return nil
}

// searchUnit closes over one location × title pair. The credential is
// re-loaded inside the unit so the freshest session state is used at
// execution time, not dispatch time.
func (p *Pipeline) searchUnit(credentialID uint, location domain.Location, title domain.Title) dispatch.Unit {
	return func(ctx context.Context) error {
		cred, err := p.credentials.GetByID(ctx, credentialID)
		if err != nil {
			return err
		}
		return p.Search(ctx, cred, &location, &title)
	}
}

// processUnit closes over one batch of posting IDs.
func (p *Pipeline) processUnit(credentialID uint, postingIDs []uint) dispatch.Unit {
	return func(ctx context.Context) error {
		cred, err := p.credentials.GetByID(ctx, credentialID)
		if err != nil {
			return err
		}
		return p.Process(ctx, cred, postingIDs)
	}
}
