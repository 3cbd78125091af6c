package order

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_JSON(t *testing.T) {
	data, err := json.Marshal(StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, `"DELIVERED"`, string(data))

	var s Status
	require.NoError(t, json.Unmarshal([]byte(`"cancelled"`), &s))
	assert.Equal(t, StatusCancelled, s)

	require.NoError(t, json.Unmarshal([]byte(`1`), &s))
	assert.Equal(t, StatusConfirmed, s)

	assert.Error(t, json.Unmarshal([]byte(`"SHIPPED"`), &s))
	assert.Error(t, json.Unmarshal([]byte(`9`), &s))
	assert.Error(t, json.Unmarshal([]byte(`true`), &s))
}

func TestStatus_Terminal(t *testing.T) {
	assert.True(t, StatusDelivered.IsTerminal())
	for _, s := range []Status{StatusPending, StatusConfirmed, StatusCancelled} {
		assert.False(t, s.IsTerminal(), s.String())
	}
	assert.False(t, Status(7).IsValid())
	assert.Equal(t, "UNKNOWN(7)", Status(7).String())
}

func TestBooks_Validate(t *testing.T) {
	tests := []struct {
		name  string
		books Books
		want  error
	}{
		{"合法", Books{"b1": 1, "b2": 3}, nil},
		{"空明细", Books{}, ErrInvalidOrderItems},
		{"nil明细", nil, ErrInvalidOrderItems},
		{"数量为0", Books{"b1": 0}, ErrInvalidQuantity},
		{"数量为负", Books{"b1": -2}, ErrInvalidQuantity},
		{"空book_id", Books{" ": 1}, ErrMissingBookID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.books.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestBooks_BookIDsSorted(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, Books{"c": 1, "a": 2, "b": 3}.BookIDs())
}

func TestNewOrder(t *testing.T) {
	books := Books{"b1": 2}
	o := NewOrder("u1", books)

	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, "u1", o.UserID)
	_, err := uuid.Parse(o.OrderID)
	assert.NoError(t, err)

	// 明细是副本,修改入参不影响订单
	books["b1"] = 99
	assert.Equal(t, 2, o.Books["b1"])

	assert.NotEqual(t, o.OrderID, NewOrder("u1", books).OrderID)
}

func TestOrder_CanTransitionTo(t *testing.T) {
	o := &Order{Status: StatusPending}
	assert.True(t, o.CanTransitionTo(StatusDelivered))
	assert.True(t, o.CanTransitionTo(StatusPending))
	assert.False(t, o.CanTransitionTo(Status(42)))

	o.Status = StatusCancelled
	assert.True(t, o.CanTransitionTo(StatusConfirmed))

	o.Status = StatusDelivered
	assert.False(t, o.CanTransitionTo(StatusCancelled))
	assert.False(t, o.CanTransitionTo(StatusDelivered))
}

func TestRequests_Validate(t *testing.T) {
	assert.ErrorIs(t, CreateRequest{Books: Books{"b1": 1}}.Validate(), ErrMissingUserID)
	assert.ErrorIs(t, CreateRequest{UserID: "u1"}.Validate(), ErrInvalidOrderItems)
	assert.NoError(t, CreateRequest{UserID: "u1", Books: Books{"b1": 1}}.Validate())

	assert.ErrorIs(t, StatusChange{Status: StatusConfirmed}.Validate(), ErrMissingOrderID)
	assert.ErrorIs(t, StatusChange{OrderID: "o1", Status: Status(-1)}.Validate(), ErrInvalidStatus)
	assert.NoError(t, StatusChange{OrderID: "o1", Status: StatusDelivered}.Validate())
}
