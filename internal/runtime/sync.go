package runtime

import (
	"context"
	"strings"

	"github.com/aretw0/casenav/pkg/domain"
	"github.com/aretw0/casenav/pkg/ports"
)

const (
	msgSyncMissing   = "Session error, expected sync block but didn't get one."
	msgSyncSucceeded = "Case claim successful"
	msgSyncFailed    = "Case claim failed with message: "
)

// doSync performs the remote side effect of a sync screen. On success local
// storage is restored, volatile evaluation results are cleared, the identity's
// cached queries are invalidated and the session is persisted. On failure the
// session stays on the sync screen. Only persistence failures are returned as errors.
func (e *Engine) doSync(ctx context.Context, s *domain.Session, ev ports.Evaluator, screen *domain.SyncScreen, auth domain.Auth) (*domain.Notification, error) {
	logger := e.logger.With("session_id", s.ID, "sync_id", screen.ID)

	fail := func(msg string, status int) *domain.Notification {
		logger.Warn("Sync failed", "status", status, "reason", msg)
		e.emitSync(ctx, s, screen.ID, false, status)
		return domain.Failure(msgSyncFailed + msg)
	}

	req, err := ev.SyncRequest(s.Context, screen)
	if err != nil {
		return fail(err.Error(), 0), nil
	}
	if req == nil {
		logger.Error("Sync screen without sync request")
		e.emitSync(ctx, s, screen.ID, false, 0)
		return domain.Failure(msgSyncMissing), nil
	}
	if e.sync == nil {
		return fail("remote sync is not configured", 0), nil
	}

	resp, err := e.sync.Sync(ctx, *req, auth)
	if err != nil {
		return fail(err.Error(), 0), nil
	}
	if !resp.OK() {
		return fail(strings.TrimSpace(string(resp.Body)), resp.StatusCode), nil
	}

	restore, err := e.sync.Restore(ctx, s.Identity(), auth)
	if err != nil {
		return fail(err.Error(), resp.StatusCode), nil
	}
	if err := ev.CompleteSync(s.Context, screen, restore); err != nil {
		return fail(err.Error(), resp.StatusCode), nil
	}
	ev.ClearVolatiles(s.Context)

	if e.cache != nil {
		if err := e.cache.Invalidate(ctx, s.Identity()); err != nil {
			logger.Warn("Failed to invalidate query cache", "err", err)
		}
	}

	if err := e.persist(ctx, s); err != nil {
		return nil, err
	}

	logger.Info("Sync completed", "status", resp.StatusCode)
	e.emitSync(ctx, s, screen.ID, true, resp.StatusCode)
	return domain.Info(msgSyncSucceeded), nil
}
