package ports

import (
	"context"

	"github.com/aretw0/casenav/pkg/domain"
)

// Evaluator is the application evaluation engine. It is the only component
// that interprets an EvalContext: it derives screens from the frame, applies
// selections, and installs remote data.
type Evaluator interface {
	// AppTitle is the first breadcrumb of every response.
	AppTitle() string

	// ResetToRoot clears the frame, positioning the context at the root menu.
	ResetToRoot(ec *domain.EvalContext)

	// NextScreen derives the current screen. A nil screen means form entry.
	NextScreen(ec *domain.EvalContext) (domain.Screen, error)

	// ApplySelection pushes the step chosen by selection onto the frame.
	// Returns *domain.InvalidSelectionError for input the screen cannot accept.
	ApplySelection(ec *domain.EvalContext, screen domain.Screen, selection string) error

	// Title is the breadcrumb for a selection applied on screen.
	Title(ec *domain.EvalContext, screen domain.Screen, selection string) string

	// IsAutoSkippable reports whether screen may be passed without user input.
	IsAutoSkippable(screen domain.Screen) bool

	// ResolveSelectionValue returns the datum value a reference resolves to.
	ResolveSelectionValue(ec *domain.EvalContext, screen *domain.EntityScreen, ref string) (string, error)

	// QueryRequest records inputs as prompt answers and builds the search request from all current answers.
	QueryRequest(ec *domain.EvalContext, screen *domain.QueryScreen, inputs map[string]string) (domain.RemoteRequest, error)

	// InstallQueryResult parses body into a query-scoped instance and marks the query resolved.
	InstallQueryResult(ec *domain.EvalContext, screen *domain.QueryScreen, body []byte) error

	// SyncRequest returns the request for the pending sync, nil when the app declares none.
	SyncRequest(ec *domain.EvalContext, screen *domain.SyncScreen) (*domain.RemoteRequest, error)

	// LoadRestore replaces local storage with a restore payload.
	LoadRestore(ec *domain.EvalContext, restore []byte) error

	// CompleteSync installs the restore payload and marks the sync done.
	CompleteSync(ec *domain.EvalContext, screen *domain.SyncScreen, restore []byte) error

	// MarkResolved records a query or sync screen as already resolved, for
	// replays that reuse an earlier resolution without contacting remote services.
	MarkResolved(ec *domain.EvalContext, screen domain.Screen) error

	// ClearVolatiles drops cached results derived from local storage.
	ClearVolatiles(ec *domain.EvalContext)

	// FormEntry describes the form reached by the current frame.
	FormEntry(ec *domain.EvalContext) (*domain.FormSession, error)

	// Detail returns the detail view of one entity on screen.
	Detail(ec *domain.EvalContext, screen *domain.EntityScreen, entityID string) (*domain.EntityDetail, error)
}

// AppRegistry resolves installed applications.
type AppRegistry interface {
	// Evaluator returns domain.ErrAppNotFound for unknown ids.
	Evaluator(ctx context.Context, appID string) (Evaluator, error)

	// Apps lists the registered application ids.
	Apps(ctx context.Context) ([]string, error)
}
