package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func validCreateRequest() CreateBillRequest {
	return CreateBillRequest{
		Email:   "employee@test.tld",
		Type:    "Transports",
		Name:    "Vol Paris Londres",
		Date:    "2024-05-01",
		Amount:  decimal.RequireFromString("348.50"),
		Pct:     20,
		FileURL: "https://receipts.billed.test/vol.jpg",
	}
}

func TestCreateBillRequestValidate(t *testing.T) {
	req := validCreateRequest()
	assert.NoError(t, req.Validate())

	tests := []struct {
		name   string
		mutate func(*CreateBillRequest)
	}{
		{"missing email", func(r *CreateBillRequest) { r.Email = "" }},
		{"bad email", func(r *CreateBillRequest) { r.Email = "not-an-email" }},
		{"missing name", func(r *CreateBillRequest) { r.Name = "" }},
		{"missing date", func(r *CreateBillRequest) { r.Date = "" }},
		{"bad date", func(r *CreateBillRequest) { r.Date = "01/05/2024" }},
		{"impossible date", func(r *CreateBillRequest) { r.Date = "2024-13-45" }},
		{"pct above range", func(r *CreateBillRequest) { r.Pct = 101 }},
		{"negative pct", func(r *CreateBillRequest) { r.Pct = -1 }},
		{"zero amount", func(r *CreateBillRequest) { r.Amount = decimal.Zero }},
		{"negative amount", func(r *CreateBillRequest) { r.Amount = decimal.NewFromInt(-5) }},
		{"bad file url", func(r *CreateBillRequest) { r.FileURL = "vol.jpg" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validCreateRequest()
			tt.mutate(&req)
			assert.ErrorIs(t, req.Validate(), ErrInvalidBill)
		})
	}
}

func TestCreateBillRequestValidate_OptionalFields(t *testing.T) {
	req := validCreateRequest()
	req.Type = ""
	req.FileURL = ""
	req.Pct = 0
	assert.NoError(t, req.Validate())
}

func TestBillStatusValid(t *testing.T) {
	for _, s := range []BillStatus{BillStatusPending, BillStatusAccepted, BillStatusRefused} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, BillStatus("lost").Valid())
}
