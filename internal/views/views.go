// Package views renders the HTML pages of the front end.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/pigeonworks-llc/billed/internal/bills"
	"github.com/pigeonworks-llc/billed/internal/models"
	"github.com/pigeonworks-llc/billed/internal/routes"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page template names.
const (
	PageLogin   = "login"
	PageBills   = "bills"
	PageLoading = "loading"
	PageError   = "error"
	PageNewBill = "newbill"
)

// ExpenseTypes are the categories offered on the new bill form.
var ExpenseTypes = []string{
	"Transports",
	"Restaurants et bars",
	"Hôtel et logement",
	"Services en ligne",
	"IT et électronique",
	"Equipement et matériel",
	"Fournitures de bureau",
}

// NewBillForm holds the values of the new bill form.
type NewBillForm struct {
	Type       string
	Name       string
	Date       string
	Amount     string
	VAT        string
	Pct        string
	Commentary string
	FileURL    string
}

// Data is what every page template receives.
type Data struct {
	Title      string
	ActiveIcon routes.Icon
	Session    models.Session
	Rows       []bills.ViewRow
	Modal      *bills.ViewRow
	Error      string
	Form       NewBillForm
}

// Renderer renders page templates inside the vertical layout.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses the embedded templates.
func New() (*Renderer, error) {
	funcs := template.FuncMap{
		"eyeTarget":    bills.EyeTarget,
		"billsPath":    func() string { return routes.Bills },
		"newBillPath":  func() string { return routes.NewBill },
		"loginPath":    func() string { return routes.LoginSubmit },
		"logoutPath":   func() string { return routes.Logout },
		"expenseTypes": func() []string { return ExpenseTypes },
	}

	pages := make(map[string]*template.Template)
	for _, name := range []string{PageLogin, PageBills, PageLoading, PageError, PageNewBill} {
		tmpl, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &Renderer{pages: pages}, nil
}

// Render writes the named page. The page is rendered to a buffer first so a
// template error never leaves a half-written response.
func (r *Renderer) Render(w io.Writer, name string, data Data) error {
	tmpl, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Bills renders the bills page, with the receipt modal when modal is set.
func (r *Renderer) Bills(w io.Writer, session models.Session, rows []bills.ViewRow, modal *bills.ViewRow) error {
	return r.Render(w, PageBills, Data{
		Title:      "Mes notes de frais",
		ActiveIcon: routes.ActiveIcon(routes.Bills),
		Session:    session,
		Rows:       rows,
		Modal:      modal,
	})
}

// Loading renders the loading page.
func (r *Renderer) Loading(w io.Writer, session models.Session) error {
	return r.Render(w, PageLoading, Data{
		Title:      "Loading",
		ActiveIcon: routes.ActiveIcon(routes.Bills),
		Session:    session,
	})
}

// Error renders msg verbatim in the page body.
func (r *Renderer) Error(w io.Writer, session models.Session, msg string) error {
	return r.Render(w, PageError, Data{
		Title:      "Erreur",
		ActiveIcon: routes.ActiveIcon(routes.Bills),
		Session:    session,
		Error:      msg,
	})
}

// NewBill renders the new bill form.
func (r *Renderer) NewBill(w io.Writer, session models.Session, form NewBillForm, msg string) error {
	return r.Render(w, PageNewBill, Data{
		Title:      "Envoyer une note de frais",
		ActiveIcon: routes.ActiveIcon(routes.NewBill),
		Session:    session,
		Form:       form,
		Error:      msg,
	})
}

// Login renders the login page.
func (r *Renderer) Login(w io.Writer) error {
	return r.Render(w, PageLogin, Data{Title: "Login"})
}
