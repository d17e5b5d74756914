package job

import (
	"context"
	"time"

	"go.uber.org/zap"

	"gitdocsync/internal/docstore"
	"gitdocsync/internal/pkg/logutil"
)

// CheckoutReleaseJob drops checkout locks older than the configured TTL.
// It backstops crashed pushes that never reached check-in or cancel.
type CheckoutReleaseJob struct {
	store docstore.Store
	ttl   time.Duration
}

func NewCheckoutReleaseJob(store docstore.Store, ttl time.Duration) *CheckoutReleaseJob {
	return &CheckoutReleaseJob{store: store, ttl: ttl}
}

func (j *CheckoutReleaseJob) Name() string {
	return "checkout_release"
}

func (j *CheckoutReleaseJob) Run(ctx context.Context) error {
	cutoff := time.Now().Add(-j.ttl).Unix()
	released, err := j.store.ReleaseStaleCheckouts(ctx, cutoff)
	if err != nil {
		return err
	}
	if released > 0 {
		logutil.From(ctx).Info("released stale checkouts", zap.Int64("count", released))
	}
	return nil
}
