package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/fitchallenge/challenge-backend/internal/mailer"
	"github.com/fitchallenge/challenge-backend/internal/metrics"
	"github.com/fitchallenge/challenge-backend/internal/models"
	"github.com/fitchallenge/challenge-backend/internal/repository"
)

// DefaultClaimTTL is how long a claim blocks other sweeps before it is considered abandoned.
const DefaultClaimTTL = 15 * time.Minute

// SweepResult counts recipients by outcome. Deferred recipients keep their
// entries unprocessed; the claim expires and a later sweep takes them over.
type SweepResult struct {
	Sent      int `json:"sent"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
	Deferred  int `json:"deferred"`
	Processed int `json:"processed"`
}

// outcomeDeferred means the recipient could not be loaded, so nothing is known
// about their current preferences.
const outcomeDeferred Outcome = "deferred"

// Batcher drains the digest queue: one email per recipient per sweep.
// Every delivered or suppressed entry is marked processed, including those
// whose send failed. Entries whose recipient lookup failed are left for retry.
type Batcher struct {
	repo     *repository.Repository
	sender   mailer.Sender
	composer *Composer
	timeout  time.Duration
	claimTTL time.Duration
	now      func() time.Time
}

func NewBatcher(repo *repository.Repository, sender mailer.Sender, composer *Composer, timeout time.Duration) *Batcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Batcher{
		repo:     repo,
		sender:   sender,
		composer: composer,
		timeout:  timeout,
		claimTTL: DefaultClaimTTL,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (b *Batcher) Sweep(ctx context.Context) (SweepResult, error) {
	start := time.Now()
	var res SweepResult
	defer func() {
		metrics.DigestSweepDuration.Observe(time.Since(start).Seconds())
	}()

	now := b.now()
	entries, err := b.repo.Digests.Claim(ctx, uuid.New(), now, now.Add(-b.claimTTL))
	if err != nil {
		return res, fmt.Errorf("claim digest entries: %w", err)
	}

	order := make([]uuid.UUID, 0)
	groups := make(map[uuid.UUID][]models.DigestQueueEntry)
	for _, e := range entries {
		if _, ok := groups[e.UserID]; !ok {
			order = append(order, e.UserID)
		}
		groups[e.UserID] = append(groups[e.UserID], e)
	}

	for _, userID := range order {
		batch := groups[userID]
		outcome, err := b.deliver(ctx, userID, batch)
		switch outcome {
		case OutcomeSent:
			res.Sent++
		case OutcomeFailed:
			res.Failed++
		case outcomeDeferred:
			res.Deferred++
			slog.Error("digest recipient lookup failed, entries deferred",
				"action", "digest_sweep",
				"user_id", userID.String(),
				"entries", len(batch),
				"error", err.Error(),
			)
			continue
		default:
			res.Skipped++
		}

		ids := make([]uuid.UUID, len(batch))
		for i, e := range batch {
			ids[i] = e.ID
		}
		if err := b.repo.Digests.MarkProcessed(ctx, ids, b.now()); err != nil {
			return res, fmt.Errorf("mark digest entries processed: %w", err)
		}
		res.Processed += len(ids)
	}

	metrics.RecordDigestSweep(b.now())
	slog.Info("digest sweep complete",
		"recipients", len(order),
		"sent", res.Sent,
		"skipped", res.Skipped,
		"failed", res.Failed,
		"deferred", res.Deferred,
		"processed", res.Processed,
	)
	return res, nil
}

// deliver re-checks preferences as they are now, not as they were at enqueue time.
// A deleted profile suppresses the batch; any other lookup error defers it.
func (b *Batcher) deliver(ctx context.Context, userID uuid.UUID, batch []models.DigestQueueEntry) (Outcome, error) {
	user, err := b.repo.Users.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		slog.Warn("digest recipient has no profile", "user_id", userID.String())
		return OutcomeSuppressed, nil
	}
	if err != nil {
		return outcomeDeferred, fmt.Errorf("load digest recipient: %w", err)
	}
	if !user.EmailNotifications || user.DeliveryMode != models.DeliveryDigest {
		return OutcomeSuppressed, nil
	}

	items := make([]models.DigestQueueEntry, 0, len(batch))
	for _, e := range batch {
		if user.WantsEmail(e.NewStatus) {
			items = append(items, e)
		}
	}
	if len(items) == 0 {
		return OutcomeSuppressed, nil
	}

	msg, err := b.composer.Digest(*user, items)
	if err != nil {
		slog.Error("digest render failed", "user_id", userID.String(), "error", err.Error())
		return OutcomeFailed, nil
	}

	sendCtx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	sendErr := b.sender.Send(sendCtx, msg)

	logIDs := make([]string, len(items))
	for i, e := range items {
		logIDs[i] = e.LogID.String()
	}
	recordEmail(ctx, b.repo.EmailLogs, *user, models.EmailDigest, msg, sendErr, map[string]any{
		"entries": len(items),
		"log_ids": logIDs,
	})
	if sendErr != nil {
		return OutcomeFailed, nil
	}
	return OutcomeSent, nil
}

// Run sweeps every interval until ctx is cancelled. A non-positive interval disables it.
func (b *Batcher) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := b.Sweep(ctx); err != nil {
				slog.Error("digest sweep failed", "action", "digest_sweep", "error", err.Error())
			}
		}
	}
}
