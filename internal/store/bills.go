package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pigeonworks-llc/billed/internal/models"
)

// CreateBill creates a new pending bill.
func (s *Store) CreateBill(ctx context.Context, req *models.CreateBillRequest) (*models.Bill, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	bill := &models.Bill{
		ID:         uuid.NewString(),
		Email:      req.Email,
		Type:       req.Type,
		Name:       req.Name,
		Date:       req.Date,
		Amount:     req.Amount,
		VAT:        req.VAT,
		Pct:        req.Pct,
		Commentary: req.Commentary,
		Status:     models.BillStatusPending,
		FileURL:    req.FileURL,
		FileName:   req.FileName,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.Put(BucketBills, bill.ID, bill); err != nil {
		return nil, fmt.Errorf("failed to save bill: %w", err)
	}
	return bill, nil
}

// SaveBill stores bill as is, assigning an ID when it has none.
func (s *Store) SaveBill(bill *models.Bill) error {
	if bill.ID == "" {
		bill.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if bill.CreatedAt.IsZero() {
		bill.CreatedAt = now
	}
	bill.UpdatedAt = now
	if bill.Status == "" {
		bill.Status = models.BillStatusPending
	}

	if err := s.Put(BucketBills, bill.ID, bill); err != nil {
		return fmt.Errorf("failed to save bill %s: %w", bill.ID, err)
	}
	return nil
}

// GetBill retrieves a bill by ID.
func (s *Store) GetBill(id string) (*models.Bill, error) {
	var bill models.Bill
	if err := s.Get(BucketBills, id, &bill); err != nil {
		return nil, err
	}
	return &bill, nil
}

// ListBills returns the bills issued by email, or every bill when email is empty.
// Bills come back in storage order; ordering for display is the caller's concern.
func (s *Store) ListBills(ctx context.Context, email string) ([]models.Bill, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	filter := func(data []byte) bool {
		if email == "" {
			return true
		}
		var bill models.Bill
		if err := json.Unmarshal(data, &bill); err != nil {
			return false
		}
		return bill.Email == email
	}

	results, err := s.List(BucketBills, filter)
	if err != nil {
		return nil, err
	}

	bills := make([]models.Bill, 0, len(results))
	for _, data := range results {
		var bill models.Bill
		if err := json.Unmarshal(data, &bill); err != nil {
			return nil, fmt.Errorf("failed to unmarshal bill: %w", err)
		}
		bills = append(bills, bill)
	}
	return bills, nil
}

// UpdateBillStatus records an admin decision on a bill.
func (s *Store) UpdateBillStatus(id string, req *models.UpdateBillStatusRequest) (*models.Bill, error) {
	if !req.Status.Valid() {
		return nil, fmt.Errorf("unknown status %q", req.Status)
	}

	bill, err := s.GetBill(id)
	if err != nil {
		return nil, err
	}

	bill.Status = req.Status
	bill.CommentAdmin = req.CommentAdmin
	bill.UpdatedAt = time.Now().UTC()

	if err := s.Put(BucketBills, id, bill); err != nil {
		return nil, fmt.Errorf("failed to update bill: %w", err)
	}
	return bill, nil
}

// DeleteBill deletes a bill by ID.
func (s *Store) DeleteBill(id string) error {
	return s.Delete(BucketBills, id)
}
