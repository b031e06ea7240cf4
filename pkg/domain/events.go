package domain

import (
	"context"
	"time"
)

// ScreenEvent is emitted each time a response is produced.
type ScreenEvent struct {
	SessionID string     `json:"session_id"`
	AppID     string     `json:"app_id"`
	Type      ScreenType `json:"type"`
}

// QueryOutcome classifies a query attempt.
type QueryOutcome string

const (
	QueryHit     QueryOutcome = "hit"
	QueryMiss    QueryOutcome = "miss"
	QueryFailure QueryOutcome = "failure"
)

// QueryEvent is emitted after a query sub-protocol run.
type QueryEvent struct {
	SessionID string       `json:"session_id"`
	QueryID   string       `json:"query_id"`
	Outcome   QueryOutcome `json:"outcome"`
}

// SyncEvent is emitted after a sync attempt.
type SyncEvent struct {
	SessionID string `json:"session_id"`
	SyncID    string `json:"sync_id"`
	OK        bool   `json:"ok"`
	Status    int    `json:"status,omitempty"`
}

// AdvanceEvent is emitted when an advance completes.
type AdvanceEvent struct {
	SessionID string        `json:"session_id"`
	Consumed  int           `json:"consumed"`
	Duration  time.Duration `json:"duration"`
	Err       error         `json:"-"`
}

// NavigationHooks defines callbacks for engine observability.
type NavigationHooks struct {
	OnScreen  func(context.Context, *ScreenEvent)
	OnQuery   func(context.Context, *QueryEvent)
	OnSync    func(context.Context, *SyncEvent)
	OnAdvance func(context.Context, *AdvanceEvent)
}
