package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/casenav/pkg/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHooksRecord(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	hooks := c.Hooks()
	ctx := context.Background()

	hooks.OnScreen(ctx, &domain.ScreenEvent{Type: domain.ScreenMenu})
	hooks.OnScreen(ctx, &domain.ScreenEvent{Type: domain.ScreenMenu})
	hooks.OnScreen(ctx, &domain.ScreenEvent{Type: domain.ScreenEntity})
	hooks.OnQuery(ctx, &domain.QueryEvent{Outcome: domain.QueryMiss})
	hooks.OnQuery(ctx, &domain.QueryEvent{Outcome: domain.QueryHit})
	hooks.OnSync(ctx, &domain.SyncEvent{OK: false, Status: 409})
	hooks.OnAdvance(ctx, &domain.AdvanceEvent{Duration: 20 * time.Millisecond})
	hooks.OnAdvance(ctx, &domain.AdvanceEvent{Duration: time.Millisecond, Err: errors.New("boom")})

	assert.Equal(t, 2.0, testutil.ToFloat64(c.screens.WithLabelValues("menu")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.screens.WithLabelValues("entity")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.queries.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.queries.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.syncs.WithLabelValues("error")))
	assert.Equal(t, 2, testutil.CollectAndCount(c.advances))
}

func TestHandlerExposesMetrics(t *testing.T) {
	c, err := New()
	require.NoError(t, err)
	c.Hooks().OnScreen(context.Background(), &domain.ScreenEvent{Type: domain.ScreenQuery})

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `casenav_screens_total{type="query"} 1`)
}
