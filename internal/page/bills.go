// Package page holds the per-visit state of the bills page.
package page

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pigeonworks-llc/billed/internal/bills"
	"github.com/pigeonworks-llc/billed/internal/models"
)

// State is the observable state of a bills page.
type State int

const (
	StateLoading State = iota
	StateLoaded
	StateFetchFailed
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFetchFailed:
		return "fetch_failed"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// BillLister is the store collaborator the page fetches from.
type BillLister interface {
	ListBills(ctx context.Context, email string) ([]models.Bill, error)
}

// ErrNotLoaded is returned by Resolve before the rows are available.
var ErrNotLoaded = errors.New("bills page is not loaded")

// View is a snapshot of the page for rendering.
type View struct {
	State   State
	Session models.Session
	Rows    []bills.ViewRow
	Err     string
}

// BillsPage is one visit of the bills page. It starts in StateLoading and
// reaches StateLoaded or StateFetchFailed after a single fetch; both are
// terminal. A new navigation builds a new BillsPage.
type BillsPage struct {
	session      models.Session
	lister       BillLister
	materializer *bills.Materializer
	logger       *slog.Logger

	mu       sync.Mutex
	state    State
	rows     []bills.ViewRow
	errMsg   string
	fetching bool
	closed   bool
}

// NewBillsPage creates a page for session. The session is passed explicitly
// rather than read from ambient storage.
func NewBillsPage(session models.Session, lister BillLister, m *bills.Materializer, logger *slog.Logger) *BillsPage {
	if logger == nil {
		logger = slog.Default()
	}
	return &BillsPage{
		session:      session,
		lister:       lister,
		materializer: m,
		logger:       logger,
		state:        StateLoading,
	}
}

// Load fetches and materializes the session's bills and returns the
// resulting state. Only the first call fetches; later calls return the
// current state. A result arriving after Close is discarded.
func (p *BillsPage) Load(ctx context.Context) State {
	p.mu.Lock()
	if p.fetching || p.closed || p.state != StateLoading {
		state := p.state
		p.mu.Unlock()
		return state
	}
	p.fetching = true
	p.mu.Unlock()

	email := p.session.Email
	if !p.session.IsEmployee() {
		email = ""
	}

	records, fetchErr := p.lister.ListBills(ctx, email)

	var rows []bills.ViewRow
	if fetchErr == nil {
		var formatErr error
		rows, formatErr = p.materializer.Materialize(records)
		if formatErr != nil {
			p.logger.Warn("bills rendered with raw fallback values",
				"email", p.session.Email,
				"error", formatErr)
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		p.logger.Debug("discarding bills fetched after page teardown", "email", p.session.Email)
		return p.state
	}

	if fetchErr != nil {
		p.state = StateFetchFailed
		p.errMsg = fetchErr.Error()
		p.logger.Error("failed to fetch bills", "email", p.session.Email, "error", fetchErr)
		return p.state
	}

	p.state = StateLoaded
	p.rows = rows
	return p.state
}

// Close tears the page down. Pending fetches resolve into a discarded state.
func (p *BillsPage) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

// Snapshot returns the current state for rendering.
func (p *BillsPage) Snapshot() View {
	p.mu.Lock()
	defer p.mu.Unlock()

	return View{
		State:   p.state,
		Session: p.session,
		Rows:    append([]bills.ViewRow(nil), p.rows...),
		Err:     p.errMsg,
	}
}

// Resolve dispatches the action bound to target on the loaded rows.
func (p *BillsPage) Resolve(target string) (bills.NavigationCommand, error) {
	view := p.Snapshot()
	if view.State != StateLoaded {
		return bills.NavigationCommand{}, ErrNotLoaded
	}
	return bills.Resolve(target, view.Rows)
}
