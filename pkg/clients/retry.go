package clients

import (
	"context"
	"time"

	"github.com/DRSN-tech/starmatch-backend/pkg/jitter"
	"github.com/DRSN-tech/starmatch-backend/pkg/logger"
)

// RetryPolicy задаёт повторы подключения к внешним хранилищам при старте.
type RetryPolicy struct {
	Attempts int
	Base     time.Duration
	Max      time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		Attempts: 5,
		Base:     200 * time.Millisecond,
		Max:      5 * time.Second,
	}
}

// Retry вызывает fn, пока она не завершится успешно или не кончатся попытки.
// Паузы растут экспоненциально с джиттером. Возвращает последнюю ошибку.
func Retry(ctx context.Context, policy RetryPolicy, name string, log logger.Logger, fn func(ctx context.Context) error) error {
	backoff := jitter.NewBackoff(policy.Base, policy.Max, jitter.DefaultFactor)

	var err error
	for attempt := 0; attempt < max(policy.Attempts, 1); attempt++ {
		if err = fn(ctx); err == nil {
			return nil
		}

		if attempt == policy.Attempts-1 {
			break
		}

		wait := backoff.Delay(attempt)
		log.Warnf("%s is not ready (attempt %d/%d), retrying in %s: %v", name, attempt+1, policy.Attempts, wait, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return err
}
