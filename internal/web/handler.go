// Package web serves the HTML pages of the employee front end.
package web

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pigeonworks-llc/billed/internal/bills"
	"github.com/pigeonworks-llc/billed/internal/models"
	"github.com/pigeonworks-llc/billed/internal/page"
	"github.com/pigeonworks-llc/billed/internal/routes"
	"github.com/pigeonworks-llc/billed/internal/views"
	"github.com/pigeonworks-llc/billed/pkg/db"
	"github.com/shopspring/decimal"
)

// BillBackend is where bills are read from and filed to: the local store or
// the remote API client.
type BillBackend interface {
	page.BillLister
	CreateBill(ctx context.Context, req *models.CreateBillRequest) (*models.Bill, error)
}

// VisitRecorder records bills page loads.
type VisitRecorder interface {
	Record(ctx context.Context, visit db.Visit) error
}

// Options configures a Handler.
type Options struct {
	Backend      BillBackend
	Sessions     SessionStore
	Views        *views.Renderer
	Materializer *bills.Materializer
	Visits       VisitRecorder // optional
	FetchTimeout time.Duration // Default: 10 seconds
	Logger       *slog.Logger
}

// Handler serves the login, bills and new bill pages.
type Handler struct {
	backend      BillBackend
	sessions     SessionStore
	views        *views.Renderer
	materializer *bills.Materializer
	visits       VisitRecorder
	fetchTimeout time.Duration
	logger       *slog.Logger
}

// New creates a Handler.
func New(opts Options) *Handler {
	timeout := opts.FetchTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		backend:      opts.Backend,
		sessions:     opts.Sessions,
		views:        opts.Views,
		materializer: opts.Materializer,
		visits:       opts.Visits,
		fetchTimeout: timeout,
		logger:       logger,
	}
}

// Routes mounts the page routes on r.
func (h *Handler) Routes(r chi.Router) {
	r.Get(routes.Login, h.LoginPage)
	r.Post(routes.LoginSubmit, h.Login)
	r.Post(routes.Logout, h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(h.RequireSession)
		r.Get(routes.Bills, h.Bills)
		r.Get(routes.NewBill, h.NewBillPage)
		r.Post(routes.NewBill, h.CreateBill)
	})
}

// Bills handles GET /employee/bills. The optional action query parameter
// names an element of the page; it is resolved through the action map so a
// receipt opens in a modal and the new bill button navigates away.
func (h *Handler) Bills(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())

	p := page.NewBillsPage(*session, h.backend, h.materializer, h.logger)
	defer p.Close()

	ctx, cancel := context.WithTimeout(r.Context(), h.fetchTimeout)
	defer cancel()

	p.Load(ctx)
	view := p.Snapshot()
	h.recordVisit(r, view)

	switch view.State {
	case page.StateLoaded:
		var modal *bills.ViewRow
		if target := r.URL.Query().Get("action"); target != "" {
			cmd, err := p.Resolve(target)
			switch {
			case err != nil:
				h.logger.Warn("ignoring unresolvable action", "target", target, "error", err)
			case cmd.Kind == bills.CommandNavigate:
				http.Redirect(w, r, cmd.Path, http.StatusSeeOther)
				return
			case cmd.Kind == bills.CommandOpenModal:
				modal = cmd.Receipt
			}
		}
		h.render(w, http.StatusOK, func(w io.Writer) error {
			return h.views.Bills(w, view.Session, view.Rows, modal)
		})
	case page.StateFetchFailed:
		h.render(w, http.StatusOK, func(w io.Writer) error {
			return h.views.Error(w, view.Session, view.Err)
		})
	default:
		h.render(w, http.StatusOK, func(w io.Writer) error {
			return h.views.Loading(w, view.Session)
		})
	}
}

// NewBillPage handles GET /employee/bill/new.
func (h *Handler) NewBillPage(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())
	h.render(w, http.StatusOK, func(w io.Writer) error {
		return h.views.NewBill(w, *session, views.NewBillForm{}, "")
	})
}

// CreateBill handles POST /employee/bill/new. The bill is filed under the
// session's email and the user is sent back to the bills page.
func (h *Handler) CreateBill(w http.ResponseWriter, r *http.Request) {
	session, _ := SessionFromContext(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}

	form := views.NewBillForm{
		Type:       r.FormValue("type"),
		Name:       strings.TrimSpace(r.FormValue("name")),
		Date:       r.FormValue("date"),
		Amount:     r.FormValue("amount"),
		VAT:        r.FormValue("vat"),
		Pct:        r.FormValue("pct"),
		Commentary: r.FormValue("commentary"),
		FileURL:    r.FormValue("fileUrl"),
	}

	req, err := parseNewBillForm(session.Email, form)
	if err == nil {
		err = req.Validate()
	}
	if err != nil {
		h.render(w, http.StatusBadRequest, func(w io.Writer) error {
			return h.views.NewBill(w, *session, form, err.Error())
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.fetchTimeout)
	defer cancel()

	bill, err := h.backend.CreateBill(ctx, req)
	if err != nil {
		h.logger.Error("failed to create bill", "email", session.Email, "error", err)
		h.render(w, http.StatusBadGateway, func(w io.Writer) error {
			return h.views.NewBill(w, *session, form, err.Error())
		})
		return
	}

	h.logger.Info("bill created", "id", bill.ID, "email", session.Email)
	http.Redirect(w, r, routes.Bills, http.StatusSeeOther)
}

func parseNewBillForm(email string, form views.NewBillForm) (*models.CreateBillRequest, error) {
	req := &models.CreateBillRequest{
		Email:      email,
		Type:       form.Type,
		Name:       form.Name,
		Date:       form.Date,
		VAT:        form.VAT,
		Commentary: form.Commentary,
		FileURL:    form.FileURL,
		FileName:   fileNameFromURL(form.FileURL),
	}

	if form.Amount != "" {
		amount, err := decimal.NewFromString(form.Amount)
		if err != nil {
			return nil, errors.Join(models.ErrInvalidBill, err)
		}
		req.Amount = amount
	}

	if form.Pct != "" {
		pct, err := strconv.Atoi(form.Pct)
		if err != nil {
			return nil, errors.Join(models.ErrInvalidBill, err)
		}
		req.Pct = pct
	}

	return req, nil
}

func fileNameFromURL(u string) string {
	if u == "" {
		return ""
	}
	u, _, _ = strings.Cut(u, "?")
	return u[strings.LastIndex(u, "/")+1:]
}

func (h *Handler) recordVisit(r *http.Request, view page.View) {
	if h.visits == nil {
		return
	}

	formatErrors := 0
	for _, row := range view.Rows {
		if row.FormatErr != nil {
			formatErrors++
		}
	}

	visit := db.Visit{
		Email:        view.Session.Email,
		UserType:     string(view.Session.Type),
		Path:         r.URL.Path,
		Outcome:      view.State.String(),
		RowCount:     len(view.Rows),
		FormatErrors: formatErrors,
		ErrorMessage: view.Err,
	}
	// The visit outlives a canceled request.
	if err := h.visits.Record(context.WithoutCancel(r.Context()), visit); err != nil {
		h.logger.Warn("failed to record visit", "error", err)
	}
}

// render buffers the page so a template failure still yields a clean 500.
func (h *Handler) render(w http.ResponseWriter, status int, fn func(io.Writer) error) {
	var buf bytes.Buffer
	if err := fn(&buf); err != nil {
		h.logger.Error("failed to render page", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
