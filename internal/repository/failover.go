package repository

import (
	"context"
	"sync/atomic"
	"time"

	"hotelbook/internal/domain"

	"github.com/rs/zerolog"
)

const defaultRetryAfter = time.Minute

// FailoverTokenStore prefers the primary store and switches to the fallback
// when the primary errors, retrying the primary after retryAfter.
//
// Revocations are always written to the fallback as well, so a token revoked
// while the primary was down stays revoked after it recovers.
type FailoverTokenStore struct {
	primary    domain.TokenStore
	fallback   domain.TokenStore
	logger     *zerolog.Logger
	retryAfter time.Duration
	isDown     atomic.Bool
	lastCheck  atomic.Int64
}

func NewFailoverTokenStore(primary, fallback domain.TokenStore, logger *zerolog.Logger) *FailoverTokenStore {
	return &FailoverTokenStore{
		primary:    primary,
		fallback:   fallback,
		logger:     logger,
		retryAfter: defaultRetryAfter,
	}
}

func (r *FailoverTokenStore) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	return time.Since(time.Unix(0, r.lastCheck.Load())) > r.retryAfter
}

func (r *FailoverTokenStore) markDown(err error) {
	if !r.isDown.Swap(true) {
		r.logger.Error().Err(err).Msg("Primary token store failed, falling back to memory")
	}
	r.lastCheck.Store(time.Now().UnixNano())
}

func (r *FailoverTokenStore) markUp() {
	if r.isDown.Swap(false) {
		r.logger.Info().Msg("Primary token store recovered")
	}
}

func (r *FailoverTokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if err := r.fallback.Revoke(ctx, tokenID, ttl); err != nil {
		return err
	}
	if r.usePrimary() {
		if err := r.primary.Revoke(ctx, tokenID, ttl); err != nil {
			r.markDown(err)
			return nil
		}
		r.markUp()
	}
	return nil
}

func (r *FailoverTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	revoked, err := r.fallback.IsRevoked(ctx, tokenID)
	if err != nil || revoked {
		return revoked, err
	}
	if r.usePrimary() {
		revoked, err := r.primary.IsRevoked(ctx, tokenID)
		if err == nil {
			r.markUp()
			return revoked, nil
		}
		r.markDown(err)
	}
	return false, nil
}

func (r *FailoverTokenStore) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r.usePrimary() {
		allowed, err := r.primary.CheckRateLimit(ctx, key, limit, window)
		if err == nil {
			r.markUp()
			return allowed, nil
		}
		r.markDown(err)
	}
	return r.fallback.CheckRateLimit(ctx, key, limit, window)
}
