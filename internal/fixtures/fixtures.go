// Package fixtures loads bill fixtures from YAML.
package fixtures

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/pigeonworks-llc/billed/internal/models"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

//go:embed testdata/bills.yaml
var defaultBills []byte

// BillFixture is one bill as written in a fixture file.
// Amounts are strings so they are parsed as exact decimals.
type BillFixture struct {
	ID           string `yaml:"id"`
	Email        string `yaml:"email"`
	Type         string `yaml:"type"`
	Name         string `yaml:"name"`
	Date         string `yaml:"date"`
	Amount       string `yaml:"amount"`
	VAT          string `yaml:"vat"`
	Pct          int    `yaml:"pct"`
	Commentary   string `yaml:"commentary"`
	CommentAdmin string `yaml:"commentAdmin"`
	Status       string `yaml:"status"`
	FileName     string `yaml:"fileName"`
	FileURL      string `yaml:"fileUrl"`
}

// File is the layout of a fixture file.
type File struct {
	Bills []BillFixture `yaml:"bills"`
}

// Default returns the bundled demo bills.
func Default() ([]models.Bill, error) {
	return Parse(defaultBills)
}

// Load reads bills from a YAML fixture file.
func Load(path string) ([]models.Bill, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read fixture file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML fixture data into bills.
func Parse(data []byte) ([]models.Bill, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	bills := make([]models.Bill, 0, len(file.Bills))
	for i, f := range file.Bills {
		amount := decimal.Zero
		if f.Amount != "" {
			var err error
			amount, err = decimal.NewFromString(f.Amount)
			if err != nil {
				return nil, fmt.Errorf("bill %d (%s): invalid amount %q: %w", i, f.ID, f.Amount, err)
			}
		}

		status := models.BillStatus(f.Status)
		if status == "" {
			status = models.BillStatusPending
		}

		bills = append(bills, models.Bill{
			ID:           f.ID,
			Email:        f.Email,
			Type:         f.Type,
			Name:         f.Name,
			Date:         f.Date,
			Amount:       amount,
			VAT:          f.VAT,
			Pct:          f.Pct,
			Commentary:   f.Commentary,
			CommentAdmin: f.CommentAdmin,
			Status:       status,
			FileURL:      f.FileURL,
			FileName:     f.FileName,
		})
	}
	return bills, nil
}
