package runtime

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/casenav/pkg/domain"
	"github.com/aretw0/casenav/pkg/ports"
)

const (
	msgQuerySucceeded = "Successfully queried server"
	msgQueryFailed    = "Query failed with message "
)

// doQuery answers the screen's prompts, fetches results (cache first) and
// installs them. The returned notification is never nil. On failure the
// query stays unresolved.
func (e *Engine) doQuery(ctx context.Context, s *domain.Session, ev ports.Evaluator, screen *domain.QueryScreen, entry domain.QueryEntry, auth domain.Auth) *domain.Notification {
	logger := e.logger.With("session_id", s.ID, "query_id", screen.ID)

	fail := func(msg string) *domain.Notification {
		logger.Warn("Query failed", "reason", msg)
		e.emitQuery(ctx, s, screen.ID, domain.QueryFailure)
		return domain.Failure(msgQueryFailed + msg)
	}

	req, err := ev.QueryRequest(s.Context, screen, entry.Inputs)
	if err != nil {
		return fail(err.Error())
	}

	key := domain.QueryCacheKey{Identity: s.Identity(), URL: req.URL, Params: req.Params}
	body, hit := e.cached(ctx, key)
	if !hit {
		if e.search == nil {
			return fail("remote search is not configured")
		}
		resp, err := e.search.PostForm(ctx, req, auth)
		if err != nil {
			return fail(err.Error())
		}
		if !resp.OK() {
			return fail(fmt.Sprintf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(resp.Body))))
		}
		body = resp.Body
	}

	if err := ev.InstallQueryResult(s.Context, screen, body); err != nil {
		return fail(err.Error())
	}

	outcome := domain.QueryHit
	if !hit {
		outcome = domain.QueryMiss
		if e.cache != nil {
			if err := e.cache.Put(ctx, key, body); err != nil {
				logger.Warn("Failed to cache query result", "err", err)
			}
		}
	}
	logger.Debug("Query resolved", "cache", outcome)
	e.emitQuery(ctx, s, screen.ID, outcome)
	return domain.Info(msgQuerySucceeded)
}

// cached looks key up, treating cache errors as misses.
func (e *Engine) cached(ctx context.Context, key domain.QueryCacheKey) ([]byte, bool) {
	if e.cache == nil {
		return nil, false
	}
	body, ok, err := e.cache.Get(ctx, key)
	if err != nil {
		e.logger.Warn("Query cache lookup failed", "err", err)
		return nil, false
	}
	return body, ok
}
