package dispatch

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/relohub/relohub/internal/logger"
)

// ErrDuplicateUnit signals that a unit for the same key is already in flight.
// It is an expected outcome, not a failure: callers queue the unit and retry
// after a backoff.
var ErrDuplicateUnit = errors.New("duplicate unit for key already in flight")

// Unit is one independently schedulable execution of a pipeline stage for a
// bounded input.
type Unit func(ctx context.Context) error

// Dispatcher runs units on background goroutines under an at-most-one-
// in-flight-per-key constraint. "Accepted" means dispatched, not completed; a
// failed unit is not retried by the dispatcher.
type Dispatcher struct {
	locker Locker
	wg     sync.WaitGroup
	log    *logger.Logger
}

// NewDispatcher creates a dispatcher over the given locker.
// Parameters:
//   - locker: in-flight marker store (memory or redis backed).
//   - log: structured logger.
// Returns:
//   - *Dispatcher: ready dispatcher.
func NewDispatcher(locker Locker, log *logger.Logger) *Dispatcher {
	return &Dispatcher{locker: locker, log: log}
}

// Dispatch accepts the unit if no other unit holds the key, and runs it on a
// goroutine. The key is released when the unit finishes, successfully or not.
// Parameters:
//   - ctx: context propagated into the unit.
//   - key: uniqueness key, normally the credential identifier.
//   - ttl: lock lifetime guarding against a crashed worker.
//   - unit: work to execute.
// Returns:
//   - string: unit ID assigned to the accepted unit.
//   - error: ErrDuplicateUnit when the key is busy; locker errors otherwise.
func (d *Dispatcher) Dispatch(ctx context.Context, key string, ttl time.Duration, unit Unit) (string, error) {
	ok, err := d.locker.TryAcquire(ctx, key, ttl)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrDuplicateUnit
	}

	unitID := uuid.NewString()
	unitCtx := logger.SetUnitID(ctx, unitID)
	log := d.log.WithFields(logger.Fields{
		logger.FieldUnitID: unitID,
		"key":              key,
	})

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() {
			if err := d.locker.Release(context.Background(), key); err != nil {
				log.WithError(err).Warn("Failed to release in-flight marker")
			}
		}()

		start := time.Now()
		if err := unit(unitCtx); err != nil {
			log.WithError(err).WithField(logger.FieldDurationMs, time.Since(start).Milliseconds()).
				Error("Unit failed")
			return
		}
		log.WithField(logger.FieldDurationMs, time.Since(start).Milliseconds()).
			Info("Unit completed")
	}()

	return unitID, nil
}

// Wait blocks until every accepted unit has finished. Used for graceful
// shutdown and by one-shot runs.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
