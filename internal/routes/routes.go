// Package routes holds the path constants of the front end.
package routes

const (
	Login       = "/"
	LoginSubmit = "/login"
	Logout      = "/logout"
	Bills       = "/employee/bills"
	NewBill     = "/employee/bill/new"
	Health      = "/health"
	API         = "/api/v1"
)

// Icon identifies an entry of the vertical navigation layout.
type Icon string

const (
	IconWindow Icon = "icon-window"
	IconMail   Icon = "icon-mail"
)

// ActiveIcon returns the layout icon highlighted for path, or "" when none is.
func ActiveIcon(path string) Icon {
	switch path {
	case Bills:
		return IconWindow
	case NewBill:
		return IconMail
	}
	return ""
}
