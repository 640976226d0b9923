package bills

import (
	"errors"
	"fmt"

	"github.com/pigeonworks-llc/billed/internal/routes"
)

// ActionKind is a user gesture on the bills page.
type ActionKind int

const (
	ActionViewReceipt ActionKind = iota + 1
	ActionCreateNew
)

func (k ActionKind) String() string {
	switch k {
	case ActionViewReceipt:
		return "view_receipt"
	case ActionCreateNew:
		return "create_new"
	}
	return fmt.Sprintf("action(%d)", int(k))
}

// Action is a resolved gesture, with the bill it applies to if any.
type Action struct {
	Kind   ActionKind
	BillID string
}

// CommandKind is the side effect a NavigationCommand asks for.
type CommandKind int

const (
	CommandOpenModal CommandKind = iota + 1
	CommandNavigate
)

// NavigationCommand tells the page what to do after an action.
type NavigationCommand struct {
	Kind CommandKind

	// Path is the navigation target for CommandNavigate.
	Path string

	// Receipt is the row whose receipt is shown for CommandOpenModal.
	Receipt *ViewRow
}

// Element identifiers carried by the rendered page.
const (
	TargetNewBill   = "btn-new-bill"
	TargetEyePrefix = "icon-eye-"
)

var (
	// ErrUnknownAction is returned for a target that maps to no action.
	ErrUnknownAction = errors.New("unknown action")

	// ErrMissingRow is returned when a row action has no row to act on.
	ErrMissingRow = errors.New("action requires a bill row")
)

// Dispatch resolves an action into a navigation command.
// ViewReceipt opens the receipt modal and leaves the route unchanged;
// CreateNew always navigates to the new bill route.
func Dispatch(action Action, row *ViewRow) (NavigationCommand, error) {
	switch action.Kind {
	case ActionViewReceipt:
		if row == nil {
			return NavigationCommand{}, ErrMissingRow
		}
		return NavigationCommand{Kind: CommandOpenModal, Receipt: row}, nil
	case ActionCreateNew:
		return NavigationCommand{Kind: CommandNavigate, Path: routes.NewBill}, nil
	}
	return NavigationCommand{}, fmt.Errorf("%w: %s", ErrUnknownAction, action.Kind)
}

// EyeTarget returns the element identifier of the receipt action of a row.
func EyeTarget(billID string) string {
	return TargetEyePrefix + billID
}

// ActionMap maps every actionable element identifier of a rendered page to
// its action. Rows without an ID carry no receipt action.
func ActionMap(rows []ViewRow) map[string]Action {
	actions := make(map[string]Action, len(rows)+1)
	actions[TargetNewBill] = Action{Kind: ActionCreateNew}
	for _, row := range rows {
		if row.ID == "" {
			continue
		}
		actions[EyeTarget(row.ID)] = Action{Kind: ActionViewReceipt, BillID: row.ID}
	}
	return actions
}

// Resolve looks target up in the action map of rows and dispatches it.
func Resolve(target string, rows []ViewRow) (NavigationCommand, error) {
	action, ok := ActionMap(rows)[target]
	if !ok {
		return NavigationCommand{}, fmt.Errorf("%w: %q", ErrUnknownAction, target)
	}

	var row *ViewRow
	if action.BillID != "" {
		for i := range rows {
			if rows[i].ID == action.BillID {
				row = &rows[i]
				break
			}
		}
	}
	return Dispatch(action, row)
}
