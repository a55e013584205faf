package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/andrew/juris-chat/pkg/models"
)

// ErrRunTimeout is returned when a run does not reach a terminal status
// within the policy's MaxWait. Distinct from RunError: the run may still be
// executing remotely, the client just stopped waiting.
var ErrRunTimeout = fmt.Errorf("run did not finish in time")

// PollPolicy bounds the run poller. Polling with no ceiling lets a stalled
// remote run spin forever; MaxWait caps the total wait.
type PollPolicy struct {
	Interval time.Duration
	MaxWait  time.Duration
}

// DefaultPollPolicy polls every second with a two-minute ceiling.
func DefaultPollPolicy() PollPolicy {
	return PollPolicy{Interval: time.Second, MaxWait: 2 * time.Minute}
}

// Poller drives a remote run to a terminal status by fixed-interval status
// polling. It holds no locks; serializing runs per thread is the caller's
// job.
type Poller struct {
	client Client
	policy PollPolicy
	logger *slog.Logger

	// sleep is swapped out in tests.
	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// NewPoller creates a poller over the given client. Zero policy fields fall
// back to the defaults.
func NewPoller(client Client, policy PollPolicy, logger *slog.Logger) *Poller {
	def := DefaultPollPolicy()
	if policy.Interval <= 0 {
		policy.Interval = def.Interval
	}
	if policy.MaxWait <= 0 {
		policy.MaxWait = def.MaxWait
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		client: client,
		policy: policy,
		logger: logger,
		sleep:  sleepCtx,
		now:    time.Now,
	}
}

// AwaitReply polls the run until it terminates. On completed it fetches and
// returns the latest assistant message; failed and expired surface a
// *RunError and fetch nothing. Statuses outside the known set are treated as
// still pending, since the remote owns the vocabulary.
func (p *Poller) AwaitReply(ctx context.Context, threadID, runID string) (models.Message, error) {
	deadline := p.now().Add(p.policy.MaxWait)
	for {
		state, err := p.client.GetRunStatus(ctx, threadID, runID)
		if err != nil {
			return models.Message{}, err
		}
		switch state.Status {
		case models.RunStatusCompleted:
			return p.client.ListLatestMessage(ctx, threadID)
		case models.RunStatusFailed, models.RunStatusExpired:
			return models.Message{}, &RunError{RunID: runID, Status: state.Status}
		default:
			if !state.Status.Terminal() && state.Status != models.RunStatusQueued && state.Status != models.RunStatusInProgress {
				p.logger.Debug("run reported unknown status, polling on", "run", runID, "status", state.Status)
			}
		}
		if p.now().After(deadline) {
			return models.Message{}, fmt.Errorf("%w after %s (run %s, last status %s)",
				ErrRunTimeout, p.policy.MaxWait, runID, state.Status)
		}
		if err := p.sleep(ctx, p.policy.Interval); err != nil {
			return models.Message{}, err
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
