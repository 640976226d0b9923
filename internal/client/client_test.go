package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pigeonworks-llc/billed/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListBills(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/bills", r.URL.Path)
		assert.Equal(t, "a@a", r.URL.Query().Get("email"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"bills": []models.Bill{
				{ID: "1", Email: "a@a", Date: "2004-04-04", Amount: decimal.NewFromInt(400), Status: models.BillStatusPending},
			},
		})
	}))
	defer srv.Close()

	c := New(context.Background(), Config{BaseURL: srv.URL + "/"})
	got, err := c.ListBills(context.Background(), "a@a")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].ID)
	assert.True(t, got[0].Amount.Equal(decimal.NewFromInt(400)))
}

func TestListBillsStatusErrors(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{http.StatusNotFound, "Erreur 404"},
		{http.StatusInternalServerError, "Erreur 500"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", tt.code)
			}))
			defer srv.Close()

			c := New(context.Background(), Config{BaseURL: srv.URL})
			_, err := c.ListBills(context.Background(), "")
			require.Error(t, err)
			assert.EqualError(t, err, tt.want)

			var se *StatusError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.code, se.StatusCode)
		})
	}
}

func TestCreateBill(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var req models.CreateBillRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"bill": models.Bill{ID: "new", Email: req.Email, Name: req.Name, Status: models.BillStatusPending},
		})
	}))
	defer srv.Close()

	c := New(context.Background(), Config{BaseURL: srv.URL})
	bill, err := c.CreateBill(context.Background(), &models.CreateBillRequest{Email: "a@a", Name: "train"})
	require.NoError(t, err)
	assert.Equal(t, "new", bill.ID)
	assert.Equal(t, "train", bill.Name)
}

func TestClientCredentials(t *testing.T) {
	var authHeader string
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/api/v1/bills", func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"bills":[]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(context.Background(), Config{
		BaseURL:      srv.URL,
		ClientID:     "id",
		ClientSecret: "secret",
		TokenURL:     srv.URL + "/token",
	})
	got, err := c.ListBills(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, "Bearer tok", authHeader)
}
