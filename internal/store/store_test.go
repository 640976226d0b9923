package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/pigeonworks-llc/billed/internal/models"
	"github.com/shopspring/decimal"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	st, err := New(filepath.Join(t.TempDir(), "billed.db"))
	if err != nil {
		t.Fatalf("Failed to initialize store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func TestCreateAndGetBill(t *testing.T) {
	st := newTestStore(t)

	created, err := st.CreateBill(context.Background(), &models.CreateBillRequest{
		Email:   "a@a",
		Type:    "Transports",
		Name:    "train Paris",
		Date:    "2022-03-03",
		Amount:  decimal.NewFromInt(120),
		FileURL: "https://example.com/receipt.jpg",
	})
	if err != nil {
		t.Fatalf("CreateBill() error = %v", err)
	}
	if created.ID == "" {
		t.Fatal("Expected generated ID")
	}
	if created.Status != models.BillStatusPending {
		t.Errorf("Status = %q, want pending", created.Status)
	}

	got, err := st.GetBill(created.ID)
	if err != nil {
		t.Fatalf("GetBill() error = %v", err)
	}
	if got.Name != "train Paris" || !got.Amount.Equal(decimal.NewFromInt(120)) {
		t.Errorf("GetBill() = %+v", got)
	}
}

func TestGetBillNotFound(t *testing.T) {
	st := newTestStore(t)

	if _, err := st.GetBill("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetBill() error = %v, want ErrNotFound", err)
	}
	if _, err := st.GetBill(""); !errors.Is(err, ErrInvalidID) {
		t.Errorf("GetBill(\"\") error = %v, want ErrInvalidID", err)
	}
}

func TestListBillsFiltersByEmail(t *testing.T) {
	st := newTestStore(t)

	for _, b := range []models.Bill{
		{ID: "1", Email: "a@a", Date: "2021-01-01"},
		{ID: "2", Email: "b@b", Date: "2022-03-03"},
		{ID: "3", Email: "a@a", Date: "2021-06-15"},
	} {
		bill := b
		if err := st.SaveBill(&bill); err != nil {
			t.Fatalf("SaveBill() error = %v", err)
		}
	}

	all, err := st.ListBills(context.Background(), "")
	if err != nil {
		t.Fatalf("ListBills() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("ListBills(all) returned %d bills, want 3", len(all))
	}

	mine, err := st.ListBills(context.Background(), "a@a")
	if err != nil {
		t.Fatalf("ListBills() error = %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("ListBills(a@a) returned %d bills, want 2", len(mine))
	}
	for _, b := range mine {
		if b.Email != "a@a" {
			t.Errorf("unexpected bill for %s", b.Email)
		}
	}
}

func TestListBillsCanceledContext(t *testing.T) {
	st := newTestStore(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := st.ListBills(ctx, ""); !errors.Is(err, context.Canceled) {
		t.Errorf("ListBills() error = %v, want context.Canceled", err)
	}
}

func TestUpdateBillStatus(t *testing.T) {
	st := newTestStore(t)

	bill := &models.Bill{ID: "b1", Email: "a@a", Date: "2021-01-01"}
	if err := st.SaveBill(bill); err != nil {
		t.Fatalf("SaveBill() error = %v", err)
	}

	updated, err := st.UpdateBillStatus("b1", &models.UpdateBillStatusRequest{
		Status:       models.BillStatusRefused,
		CommentAdmin: "pas de justificatif",
	})
	if err != nil {
		t.Fatalf("UpdateBillStatus() error = %v", err)
	}
	if updated.Status != models.BillStatusRefused || updated.CommentAdmin != "pas de justificatif" {
		t.Errorf("UpdateBillStatus() = %+v", updated)
	}

	if _, err := st.UpdateBillStatus("b1", &models.UpdateBillStatusRequest{Status: "archived"}); err == nil {
		t.Error("Expected error for unknown status")
	}
	if _, err := st.UpdateBillStatus("nope", &models.UpdateBillStatusRequest{Status: models.BillStatusAccepted}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateBillStatus(nope) error = %v, want ErrNotFound", err)
	}
}

func TestDeleteBill(t *testing.T) {
	st := newTestStore(t)

	bill := &models.Bill{Email: "a@a", Date: "2021-01-01"}
	if err := st.SaveBill(bill); err != nil {
		t.Fatalf("SaveBill() error = %v", err)
	}
	if err := st.DeleteBill(bill.ID); err != nil {
		t.Fatalf("DeleteBill() error = %v", err)
	}
	if err := st.DeleteBill(bill.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteBill() error = %v, want ErrNotFound", err)
	}
}

func TestSessions(t *testing.T) {
	st := newTestStore(t)

	session, err := st.CreateSession(models.UserTypeEmployee, "a@a")
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	got, err := st.GetSession(session.ID)
	if err != nil {
		t.Fatalf("GetSession() error = %v", err)
	}
	if got.ID != session.ID || got.Email != "a@a" || !got.IsEmployee() {
		t.Errorf("GetSession() = %+v", got)
	}

	if err := st.DeleteSession(session.ID); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if _, err := st.GetSession(session.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSession() after delete error = %v, want ErrNotFound", err)
	}
}

func TestTokens(t *testing.T) {
	st := newTestStore(t)
	now := time.Now()

	if err := st.PutToken("live", now.Add(time.Hour)); err != nil {
		t.Fatalf("PutToken() error = %v", err)
	}
	if err := st.PutToken("stale", now.Add(-time.Minute)); err != nil {
		t.Fatalf("PutToken() error = %v", err)
	}

	tests := []struct {
		token string
		want  bool
	}{
		{"live", true},
		{"stale", false},
		{"unknown", false},
		{"", false},
	}
	for _, tt := range tests {
		got, err := st.ValidToken(tt.token, now)
		if err != nil {
			t.Fatalf("ValidToken(%q) error = %v", tt.token, err)
		}
		if got != tt.want {
			t.Errorf("ValidToken(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}

	// Expired tokens are purged on validation.
	if err := st.RevokeToken("stale"); !errors.Is(err, ErrNotFound) {
		t.Errorf("RevokeToken(stale) error = %v, want ErrNotFound", err)
	}
	if err := st.RevokeToken("live"); err != nil {
		t.Errorf("RevokeToken(live) error = %v", err)
	}
}
