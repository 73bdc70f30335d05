package session

import (
	"context"
	"fmt"
	"log/slog"

	"newsdesk/internal/domain"
)

// Reconciler keeps the local user cache consistent with the remote session.
// The server's answer always wins over cached state.
type Reconciler struct {
	client AuthClient
	cache  Cache
	logger *slog.Logger
}

func NewReconciler(client AuthClient, cache Cache, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		client: client,
		cache:  cache,
		logger: logger.With("component", "session"),
	}
}

// outcome is the result of one verification round trip.
type outcome struct {
	state    domain.AuthState
	response *domain.VerifyResponse
}

// verify performs exactly one call to the auth service. A nil response
// means the call itself failed and nothing is known about the session.
func (r *Reconciler) verify(ctx context.Context) outcome {
	resp, err := r.client.Verify(ctx)
	if err != nil {
		r.logger.Error("auth verification failed", "error", err)
		return outcome{state: domain.Unauthenticated}
	}

	if !resp.Success {
		r.clearIfPresent(ctx)
		return outcome{state: domain.Unauthenticated, response: resp}
	}

	return outcome{state: domain.Authenticated, response: resp}
}

// VerifyAuth checks the session and repairs an empty cache from the same
// response.
func (r *Reconciler) VerifyAuth(ctx context.Context) domain.AuthState {
	out := r.verify(ctx)
	if out.state != domain.Authenticated || !out.response.HasUser() {
		return out.state
	}

	cached, err := r.cache.Get(ctx)
	if err != nil {
		r.logger.Warn("failed to read user cache", "error", err)
	}
	if domain.IsEmptyUserData(cached) {
		if err := r.cache.Set(ctx, out.response.Data); err != nil {
			r.logger.Warn("failed to restore user cache", "error", err)
		} else {
			r.logger.Info("restored user cache from session")
		}
	}

	return domain.Authenticated
}

// ReinitializeUserData repopulates the cache when the server still reports
// a session. It returns true only if the cache now holds fresh user data.
func (r *Reconciler) ReinitializeUserData(ctx context.Context) bool {
	out := r.verify(ctx)
	if out.state != domain.Authenticated || !out.response.HasUser() {
		return false
	}

	if err := r.cache.Set(ctx, out.response.Data); err != nil {
		r.logger.Warn("failed to store user data", "error", err)
		return false
	}

	r.logger.Debug("user data reinitialized")
	return true
}

// Logout ends the remote session and always drops the local copy, since the
// cache must never claim a session the user asked to end. The watcher
// restores it if the server kept the session alive.
func (r *Reconciler) Logout(ctx context.Context) (string, error) {
	resp, err := r.client.Logout(ctx)

	if clearErr := r.cache.Clear(ctx); clearErr != nil {
		r.logger.Warn("failed to clear user cache", "error", clearErr)
	}

	if err != nil {
		return "", fmt.Errorf("logout: %w", err)
	}

	if !resp.Success {
		r.logger.Warn("server rejected logout", "message", resp.Message)
	}

	return resp.Message, nil
}

// State reports the locally observed state without contacting the server.
func (r *Reconciler) State(ctx context.Context) domain.AuthState {
	data, err := r.cache.Get(ctx)
	if err != nil || domain.IsEmptyUserData(data) {
		return domain.Unauthenticated
	}
	return domain.Authenticated
}

// clearIfPresent leaves an already empty cache alone so that other watchers
// sharing it are not told about a change that did not happen.
func (r *Reconciler) clearIfPresent(ctx context.Context) {
	data, err := r.cache.Get(ctx)
	if err == nil && domain.IsEmptyUserData(data) {
		return
	}
	if err := r.cache.Clear(ctx); err != nil {
		r.logger.Warn("failed to clear user cache", "error", err)
	}
}

// cacheEmpty treats read errors as empty so a broken cache gets rewritten.
func (r *Reconciler) cacheEmpty(ctx context.Context) bool {
	data, err := r.cache.Get(ctx)
	if err != nil {
		r.logger.Warn("failed to read user cache", "error", err)
		return true
	}
	return domain.IsEmptyUserData(data)
}
