// Package trigger implements the deferred-execution scheduler: the daemon
// side of the "invoke execute(reviewID) no earlier than deadline" contract.
// Due reviews live in a Redis sorted set scored by deadline, so any number of
// CLI processes can schedule and a single daemon fires them.
//
// The trigger is best-effort by design: execution is also manually invokable
// by any caller once the window closes, and Execute itself rejects a second
// invocation, so a duplicate or late firing is harmless.
package trigger

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/vpalmerio/clawdera/internal/coordinator"
	"github.com/vpalmerio/clawdera/pkg/boardroom"
)

// ExecuteFunc is the callback invoked when a review comes due.
type ExecuteFunc func(ctx context.Context, reviewID int64) error

// Scheduler registers deadlines and fires the executor once they pass.
type Scheduler struct {
	bb       *boardroom.Client
	exec     ExecuteFunc
	interval time.Duration
	now      func() time.Time
}

// NewScheduler creates a scheduler polling at the given interval.
// Bind an executor with SetExecutor before calling Run.
func NewScheduler(bb *boardroom.Client, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Second
	}
	return &Scheduler{
		bb:       bb,
		interval: interval,
		now:      time.Now,
	}
}

// SetExecutor binds the callback Run invokes for due reviews.
func (s *Scheduler) SetExecutor(exec ExecuteFunc) {
	s.exec = exec
}

// SetNow overrides the scheduler's clock. Intended for tests.
func (s *Scheduler) SetNow(now func() time.Time) {
	s.now = now
}

// Schedule registers a deferred-execution request for a review and returns
// an opaque handle for observability. Implements coordinator.Scheduler.
func (s *Scheduler) Schedule(ctx context.Context, reviewID, deadlineMs int64) (string, error) {
	if err := s.bb.AddDue(ctx, reviewID, deadlineMs); err != nil {
		return "", err
	}
	return uuid.New().String(), nil
}

// Run polls the due set and invokes the executor for every review whose
// deadline has passed. Blocks until the context is cancelled.
//
// A due entry is removed when execution succeeds or when the review turns
// out to be already executed (the manual fallback beat us to it). Other
// errors leave the entry in place for retry on the next tick.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.exec == nil {
		return errors.New("scheduler has no executor bound")
	}

	log.Printf("[Trigger] Scheduler starting for instance '%s' (poll interval %v)", s.bb.InstanceName(), s.interval)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[Trigger] Shutting down...")
			return nil
		case <-ticker.C:
			s.fireDue(ctx)
		}
	}
}

// fireDue runs one poll cycle. Failures are logged and never stop the loop.
func (s *Scheduler) fireDue(ctx context.Context) {
	due, err := s.bb.DueBefore(ctx, s.now().UnixMilli())
	if err != nil {
		log.Printf("[Trigger] Failed to read due set: %v", err)
		return
	}

	for _, reviewID := range due {
		err := s.exec(ctx, reviewID)
		switch {
		case err == nil:
			s.logEvent("deadline_fired", map[string]interface{}{
				"review_id": reviewID,
			})
		case errors.Is(err, coordinator.ErrAlreadyExecuted):
			// Manual fallback got there first; just retire the entry.
			s.logEvent("deadline_already_executed", map[string]interface{}{
				"review_id": reviewID,
			})
			if err := s.bb.RemoveDue(ctx, reviewID); err != nil {
				log.Printf("[Trigger] Failed to retire due entry for review %d: %v", reviewID, err)
			}
		default:
			// Leave the entry; the next tick retries.
			log.Printf("[Trigger] Execute failed for review %d (will retry): %v", reviewID, err)
		}
	}
}

// logEvent logs a structured event in JSON format.
func (s *Scheduler) logEvent(eventType string, data map[string]interface{}) {
	data["timestamp"] = s.now().UTC().Format(time.RFC3339)
	data["level"] = "info"
	data["component"] = "trigger"
	data["event_type"] = eventType
	data["instance"] = s.bb.InstanceName()

	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Printf("[Trigger] Failed to marshal log event: %v", err)
		return
	}
	log.Println(string(jsonData))
}
