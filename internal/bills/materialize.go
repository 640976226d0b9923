// Package bills turns stored bill records into display rows and resolves
// the actions a user can take on them.
package bills

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pigeonworks-llc/billed/internal/models"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DateLayout is the storage format of bill dates.
const DateLayout = models.DateLayout

// ViewRow is the render-ready projection of a bill.
type ViewRow struct {
	ID          string
	Email       string
	Type        string
	Name        string
	RawDate     string
	Date        string
	Status      models.BillStatus
	StatusLabel string
	Amount      string
	FileURL     string
	FileName    string

	// FormatErr is set when a field fell back to its raw value.
	FormatErr error
}

// FormatError reports a single field of a single bill that could not be
// formatted. The row is still rendered with the raw value.
type FormatError struct {
	BillID string
	Field  string
	Value  string
	Err    error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("bill %s: cannot format %s %q: %v", e.BillID, e.Field, e.Value, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

var (
	// ErrUnknownStatus is wrapped by FormatError when a status has no label.
	ErrUnknownStatus = errors.New("unknown status")

	// ErrAmountOutOfRange is wrapped by FormatError when an amount is too
	// large or too precise to print exactly.
	ErrAmountOutOfRange = errors.New("amount out of range")
)

// Materializer sorts and formats bills for one locale.
type Materializer struct {
	lang      language.Tag
	localizer *i18n.Localizer
	printer   *message.Printer
}

// NewMaterializer creates a Materializer for lang ("fr", "en", ...).
func NewMaterializer(lang string) (*Materializer, error) {
	if lang == "" {
		lang = DefaultLanguage
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return nil, fmt.Errorf("invalid language %q: %w", lang, err)
	}

	bundle, err := newBundle()
	if err != nil {
		return nil, err
	}

	return &Materializer{
		lang:      tag,
		localizer: i18n.NewLocalizer(bundle, tag.String()),
		printer:   message.NewPrinter(tag),
	}, nil
}

type datedBill struct {
	bill     models.Bill
	date     time.Time
	parsed   bool
	parseErr error
}

// Materialize returns one row per record, most recent date first.
//
// Records sharing a date keep their input order. Records whose date does not
// parse keep their raw date and are placed after every dated record. The
// input slice is left untouched. The returned rows are always complete; the
// error, when non-nil, joins the FormatError of every row that fell back.
func (m *Materializer) Materialize(records []models.Bill) ([]ViewRow, error) {
	items := make([]datedBill, len(records))
	for i, b := range records {
		t, err := time.Parse(DateLayout, b.Date)
		items[i] = datedBill{bill: b, date: t, parsed: err == nil, parseErr: err}
	}

	slices.SortStableFunc(items, func(a, b datedBill) int {
		switch {
		case a.parsed && b.parsed:
			return b.date.Compare(a.date)
		case a.parsed:
			return -1
		case b.parsed:
			return 1
		}
		return 0
	})

	rows := make([]ViewRow, len(items))
	var errs []error
	for i, item := range items {
		rows[i] = m.row(item)
		if rows[i].FormatErr != nil {
			errs = append(errs, rows[i].FormatErr)
		}
	}
	return rows, errors.Join(errs...)
}

func (m *Materializer) row(item datedBill) ViewRow {
	b := item.bill
	row := ViewRow{
		ID:       b.ID,
		Email:    b.Email,
		Type:     b.Type,
		Name:     b.Name,
		RawDate:  b.Date,
		Status:   b.Status,
		FileURL:  b.FileURL,
		FileName: b.FileName,
	}

	var errs []error
	if item.parsed {
		date, err := m.formatDate(item.date)
		if err != nil {
			row.Date = b.Date
			errs = append(errs, &FormatError{BillID: b.ID, Field: "date", Value: b.Date, Err: err})
		} else {
			row.Date = date
		}
	} else {
		row.Date = b.Date
		errs = append(errs, &FormatError{BillID: b.ID, Field: "date", Value: b.Date, Err: item.parseErr})
	}

	amount, err := m.FormatAmount(b.Amount)
	if err != nil {
		row.Amount = b.Amount.String()
		errs = append(errs, &FormatError{BillID: b.ID, Field: "amount", Value: b.Amount.String(), Err: err})
	} else {
		row.Amount = amount
	}

	label, err := m.StatusLabel(b.Status)
	if err != nil {
		row.StatusLabel = string(b.Status)
		errs = append(errs, &FormatError{BillID: b.ID, Field: "status", Value: string(b.Status), Err: err})
	} else {
		row.StatusLabel = label
	}

	row.FormatErr = errors.Join(errs...)
	return row
}

// formatDate renders t as "4 Avr. 04".
func (m *Materializer) formatDate(t time.Time) (string, error) {
	month, err := m.localizer.Localize(&i18n.LocalizeConfig{MessageID: monthMessageID(int(t.Month()))})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d %s. %02d", t.Day(), month, t.Year()%100), nil
}

// FormatDate formats a stored YYYY-MM-DD date for display.
func (m *Materializer) FormatDate(raw string) (string, error) {
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return "", err
	}
	return m.formatDate(t)
}

// StatusLabel returns the localized label of status.
func (m *Materializer) StatusLabel(status models.BillStatus) (string, error) {
	if !status.Valid() {
		return "", fmt.Errorf("%w %q", ErrUnknownStatus, status)
	}
	return m.localizer.Localize(&i18n.LocalizeConfig{MessageID: statusMessageID(string(status))})
}

// FormatAmount renders an amount in euros with locale number symbols.
// Amounts that cannot be printed without losing digits are rejected with
// ErrAmountOutOfRange.
func (m *Materializer) FormatAmount(amount decimal.Decimal) (string, error) {
	if amount.Equal(amount.Truncate(0)) {
		n := amount.IntPart()
		if !amount.Equal(decimal.NewFromInt(n)) {
			return "", fmt.Errorf("%w: %s", ErrAmountOutOfRange, amount)
		}
		return m.printer.Sprintf("%d €", n), nil
	}

	rounded := amount.Round(2)
	f := rounded.InexactFloat64()
	if !decimal.NewFromFloat(f).Round(2).Equal(rounded) {
		return "", fmt.Errorf("%w: %s", ErrAmountOutOfRange, amount)
	}
	return m.printer.Sprintf("%.2f €", f), nil
}
