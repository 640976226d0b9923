package page

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/pigeonworks-llc/billed/internal/bills"
	"github.com/pigeonworks-llc/billed/internal/models"
	"github.com/pigeonworks-llc/billed/internal/routes"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLister struct {
	mu     sync.Mutex
	bills  []models.Bill
	err    error
	calls  int
	emails []string
}

func (f *fakeLister) ListBills(_ context.Context, email string) ([]models.Bill, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.emails = append(f.emails, email)
	if f.err != nil {
		return nil, f.err
	}
	return f.bills, nil
}

// blockingLister waits for release before answering.
type blockingLister struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingLister) ListBills(_ context.Context, _ string) ([]models.Bill, error) {
	close(b.started)
	<-b.release
	return []models.Bill{{ID: "late", Date: "2021-01-01", Status: models.BillStatusPending}}, nil
}

var employee = models.Session{Type: models.UserTypeEmployee, Email: "a@a"}

func newMaterializer(t *testing.T) *bills.Materializer {
	t.Helper()
	m, err := bills.NewMaterializer("fr")
	require.NoError(t, err)
	return m
}

func TestBillsPage_StartsLoading(t *testing.T) {
	p := NewBillsPage(employee, &fakeLister{}, newMaterializer(t), nil)

	view := p.Snapshot()
	assert.Equal(t, StateLoading, view.State)
	assert.Empty(t, view.Rows)
}

func TestBillsPage_LoadSuccess(t *testing.T) {
	lister := &fakeLister{bills: []models.Bill{
		{ID: "1", Date: "2021-01-01", Status: models.BillStatusPending, Amount: decimal.NewFromInt(10)},
		{ID: "2", Date: "2022-03-03", Status: models.BillStatusAccepted, Amount: decimal.NewFromInt(20)},
		{ID: "3", Date: "2021-06-15", Status: models.BillStatusRefused, Amount: decimal.NewFromInt(30)},
	}}
	p := NewBillsPage(employee, lister, newMaterializer(t), nil)

	assert.Equal(t, StateLoaded, p.Load(context.Background()))

	view := p.Snapshot()
	require.Len(t, view.Rows, 3)
	assert.Equal(t, "2022-03-03", view.Rows[0].RawDate)
	assert.Equal(t, "2021-06-15", view.Rows[1].RawDate)
	assert.Equal(t, "2021-01-01", view.Rows[2].RawDate)
	assert.Equal(t, []string{"a@a"}, lister.emails)
}

func TestBillsPage_AdminListsEveryBill(t *testing.T) {
	lister := &fakeLister{}
	admin := models.Session{Type: models.UserTypeAdmin, Email: "admin@billed.test"}

	NewBillsPage(admin, lister, newMaterializer(t), nil).Load(context.Background())

	assert.Equal(t, []string{""}, lister.emails)
}

func TestBillsPage_FetchFailedKeepsMessage(t *testing.T) {
	for _, msg := range []string{"Erreur 404", "Erreur 500"} {
		t.Run(msg, func(t *testing.T) {
			p := NewBillsPage(employee, &fakeLister{err: errors.New(msg)}, newMaterializer(t), nil)

			assert.Equal(t, StateFetchFailed, p.Load(context.Background()))

			view := p.Snapshot()
			assert.Equal(t, msg, view.Err)
			assert.Empty(t, view.Rows)
		})
	}
}

func TestBillsPage_TerminalStates(t *testing.T) {
	lister := &fakeLister{err: errors.New("Erreur 500")}
	p := NewBillsPage(employee, lister, newMaterializer(t), nil)

	p.Load(context.Background())
	lister.err = nil
	assert.Equal(t, StateFetchFailed, p.Load(context.Background()))
	assert.Equal(t, 1, lister.calls, "no automatic retry")
}

func TestBillsPage_DiscardsResultAfterClose(t *testing.T) {
	lister := &blockingLister{started: make(chan struct{}), release: make(chan struct{})}
	p := NewBillsPage(employee, lister, newMaterializer(t), nil)

	done := make(chan State)
	go func() {
		done <- p.Load(context.Background())
	}()

	<-lister.started
	p.Close()
	close(lister.release)

	assert.Equal(t, StateLoading, <-done)
	assert.Empty(t, p.Snapshot().Rows)
}

func TestBillsPage_Resolve(t *testing.T) {
	lister := &fakeLister{bills: []models.Bill{
		{ID: "b1", Date: "2021-01-01", Status: models.BillStatusPending, FileURL: "https://example.com/b1.jpg"},
	}}
	p := NewBillsPage(employee, lister, newMaterializer(t), nil)

	_, err := p.Resolve(bills.TargetNewBill)
	assert.ErrorIs(t, err, ErrNotLoaded)

	p.Load(context.Background())

	cmd, err := p.Resolve(bills.EyeTarget("b1"))
	require.NoError(t, err)
	assert.Equal(t, bills.CommandOpenModal, cmd.Kind)
	assert.Equal(t, "https://example.com/b1.jpg", cmd.Receipt.FileURL)

	cmd, err = p.Resolve(bills.TargetNewBill)
	require.NoError(t, err)
	assert.Equal(t, routes.NewBill, cmd.Path)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "loading", StateLoading.String())
	assert.Equal(t, "loaded", StateLoaded.String())
	assert.Equal(t, "fetch_failed", StateFetchFailed.String())
}
