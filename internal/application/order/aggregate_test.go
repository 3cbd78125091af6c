package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookorder/internal/domain/book"
	"github.com/xiebiao/bookorder/internal/domain/order"
	apperrors "github.com/xiebiao/bookorder/pkg/errors"
)

func TestAggregateDemand(t *testing.T) {
	demand := AggregateDemand(
		order.Books{"a": 3, "b": 1},
		order.Books{"a": 2},
		order.Books{"c": 4},
	)
	assert.Equal(t, map[string]int{"a": 5, "b": 1, "c": 4}, demand)
	assert.Empty(t, AggregateDemand())
}

func TestDistinctIDs(t *testing.T) {
	reqs := []order.CreateRequest{{UserID: "u2"}, {UserID: "u1"}, {UserID: "u2"}}
	assert.Equal(t, []string{"u2", "u1"}, DistinctUserIDs(reqs))
	assert.Equal(t, []string{"a", "b", "c"}, DistinctBookIDs(map[string]int{"c": 1, "a": 1, "b": 1}))
}

func TestMissingIDs(t *testing.T) {
	assert.Equal(t, []string{"x", "z"}, MissingIDs([]string{"x", "y", "z"}, []string{"y"}))
	assert.Empty(t, MissingIDs([]string{"y"}, []string{"y", "w"}))
}

func TestCheckStock(t *testing.T) {
	found := []*book.Book{
		book.NewBook("a", "A", 5),
		book.NewBook("b", "B", 0),
		book.NewBook("c", "C", 2),
	}

	t.Run("刚好够", func(t *testing.T) {
		assert.NoError(t, CheckStock(found, map[string]int{"a": 5, "c": 2}))
	})

	t.Run("列出所有不足的图书", func(t *testing.T) {
		err := CheckStock(found, map[string]int{"a": 6, "b": 1, "c": 1})
		require.Error(t, err)
		assert.Equal(t, apperrors.KindInsufficientStock, apperrors.KindOf(err))
		assert.Contains(t, err.Error(), "a(库存5,需要6)")
		assert.Contains(t, err.Error(), "b(库存0,需要1)")
		assert.NotContains(t, err.Error(), "c(")
	})

	t.Run("图书缺失", func(t *testing.T) {
		err := CheckStock(found, map[string]int{"zz": 1})
		assert.ErrorIs(t, err, book.ErrBookNotFound)
	})
}

func TestInRequestOrder(t *testing.T) {
	o1 := &order.Order{OrderID: "1"}
	o2 := &order.Order{OrderID: "2"}
	o3 := &order.Order{OrderID: "3"}

	sorted := inRequestOrder([]*order.Order{o1, o2, o3}, []string{"3", "1", "missing", "2"})
	assert.Equal(t, []*order.Order{o3, o1, o2}, sorted)
}
