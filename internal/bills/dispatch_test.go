package bills

import (
	"testing"

	"github.com/pigeonworks-llc/billed/internal/routes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatch_CreateNewIsIdempotent(t *testing.T) {
	first, err := Dispatch(Action{Kind: ActionCreateNew}, nil)
	require.NoError(t, err)
	second, err := Dispatch(Action{Kind: ActionCreateNew}, nil)
	require.NoError(t, err)

	assert.Equal(t, CommandNavigate, first.Kind)
	assert.Equal(t, routes.NewBill, first.Path)
	assert.Equal(t, first, second)
}

func TestDispatch_ViewReceiptOpensModal(t *testing.T) {
	row := &ViewRow{ID: "b1", FileURL: "https://example.com/r.jpg"}

	cmd, err := Dispatch(Action{Kind: ActionViewReceipt, BillID: "b1"}, row)
	require.NoError(t, err)

	assert.Equal(t, CommandOpenModal, cmd.Kind)
	assert.Empty(t, cmd.Path, "opening a receipt must not navigate")
	assert.Same(t, row, cmd.Receipt)
}

func TestDispatch_Errors(t *testing.T) {
	_, err := Dispatch(Action{Kind: ActionViewReceipt, BillID: "b1"}, nil)
	assert.ErrorIs(t, err, ErrMissingRow)

	_, err = Dispatch(Action{Kind: ActionKind(99)}, nil)
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestActionMap(t *testing.T) {
	rows := []ViewRow{{ID: "a"}, {ID: "b"}}

	actions := ActionMap(rows)

	assert.Len(t, actions, 3)
	assert.Equal(t, Action{Kind: ActionCreateNew}, actions[TargetNewBill])
	assert.Equal(t, Action{Kind: ActionViewReceipt, BillID: "a"}, actions["icon-eye-a"])
	assert.Equal(t, Action{Kind: ActionViewReceipt, BillID: "b"}, actions[EyeTarget("b")])
}

func TestActionMap_SkipsRowsWithoutID(t *testing.T) {
	rows := []ViewRow{{ID: "a"}, {Name: "orphan"}}

	actions := ActionMap(rows)

	assert.Len(t, actions, 2)
	assert.NotContains(t, actions, EyeTarget(""))

	_, err := Resolve(EyeTarget(""), rows)
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestResolve(t *testing.T) {
	rows := []ViewRow{{ID: "a", FileURL: "https://example.com/a.jpg"}, {ID: "b"}}

	cmd, err := Resolve(EyeTarget("a"), rows)
	require.NoError(t, err)
	assert.Equal(t, CommandOpenModal, cmd.Kind)
	assert.Equal(t, "https://example.com/a.jpg", cmd.Receipt.FileURL)

	cmd, err = Resolve(TargetNewBill, rows)
	require.NoError(t, err)
	assert.Equal(t, routes.NewBill, cmd.Path)

	_, err = Resolve("icon-eye-zzz", rows)
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestActionKindString(t *testing.T) {
	assert.Equal(t, "view_receipt", ActionViewReceipt.String())
	assert.Equal(t, "create_new", ActionCreateNew.String())
	assert.Equal(t, "action(7)", ActionKind(7).String())
}
