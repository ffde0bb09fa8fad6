package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/zen-systems/intentgate/pkg/adapter"
)

type callTarget struct {
	Adapter  string
	Model    string
	Fallback bool
}

// call tries each target in turn, retrying transient errors with
// exponential backoff before moving on.
func (r *Runner) call(ctx context.Context, targets []callTarget, req adapter.Request) (*adapter.Response, []adapter.CallReport, error) {
	var reports []adapter.CallReport
	var lastErr error

	for _, target := range targets {
		impl, ok := r.adapters[target.Adapter]
		if !ok {
			return nil, reports, fmt.Errorf("adapter %s not found", target.Adapter)
		}
		req.Model = target.Model

		for attempt := 0; attempt <= r.retry.MaxRetries; attempt++ {
			resp, err := impl.Generate(ctx, req)
			if err == nil {
				report := adapter.CallReport{
					Adapter:      target.Adapter,
					Model:        target.Model,
					Retries:      attempt,
					FallbackUsed: target.Fallback,
				}
				if resp.Usage != nil {
					report.Usage = *resp.Usage
				}
				reports = append(reports, report)
				return resp, reports, nil
			}

			lastErr = err
			if !adapter.IsTransient(err) || attempt == r.retry.MaxRetries {
				reports = append(reports, adapter.CallReport{
					Adapter:      target.Adapter,
					Model:        target.Model,
					Retries:      attempt,
					FallbackUsed: target.Fallback,
					Error:        err.Error(),
					Status:       adapter.StatusOf(err),
				})
				break
			}

			backoff := computeBackoff(r.retry.BaseBackoffMs, r.retry.MaxBackoffMs, attempt)
			r.logger.Debug("retrying adapter call",
				zap.String("adapter", target.Adapter),
				zap.String("model", target.Model),
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
				zap.Error(err),
			)
			if err := sleepWithContext(ctx, backoff); err != nil {
				return nil, reports, err
			}
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("adapter call failed")
	}
	return nil, reports, lastErr
}

func computeBackoff(baseMs, maxMs, attempt int) time.Duration {
	limit := time.Duration(maxMs) * time.Millisecond
	backoff := time.Duration(baseMs) * time.Millisecond
	for i := 0; i < attempt; i++ {
		backoff *= 2
		if backoff >= limit {
			return limit
		}
	}
	if backoff > limit {
		return limit
	}
	return backoff
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
