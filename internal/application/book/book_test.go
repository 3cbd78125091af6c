package book

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/bookorder/internal/domain/book"
	"github.com/xiebiao/bookorder/internal/infrastructure/config"
	"github.com/xiebiao/bookorder/internal/infrastructure/persistence/mysql"
	apperrors "github.com/xiebiao/bookorder/pkg/errors"
)

func newBookRepo(t *testing.T) book.Repository {
	t.Helper()

	cfg := &config.Config{}
	cfg.Server.Mode = "test"
	cfg.Database.Driver = "sqlite"
	cfg.Database.SQLitePath = filepath.Join(t.TempDir(), "books.db")

	db, err := mysql.NewDB(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return mysql.NewBookRepository(db)
}

func TestPublishBook(t *testing.T) {
	ctx := context.Background()
	repo := newBookRepo(t)
	uc := NewPublishBookUseCase(repo, zap.NewNop())

	b, err := uc.Execute(ctx, PublishBookRequest{BookID: "book_a", Title: "Go语言编程", Stock: 5})
	require.NoError(t, err)
	assert.NotZero(t, b.ID)
	assert.Equal(t, 5, b.StockCount)

	tests := []struct {
		name string
		req  PublishBookRequest
		kind apperrors.Kind
	}{
		{"空book_id", PublishBookRequest{BookID: " ", Stock: 1}, apperrors.KindValidation},
		{"负库存", PublishBookRequest{BookID: "book_b", Stock: -1}, apperrors.KindValidation},
		{"book_id重复", PublishBookRequest{BookID: "book_a", Stock: 1}, apperrors.KindConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Execute(ctx, tt.req)
			require.Error(t, err)
			assert.Equal(t, tt.kind, apperrors.KindOf(err))
		})
	}
}

func TestDelistBook(t *testing.T) {
	ctx := context.Background()
	repo := newBookRepo(t)
	_, err := NewPublishBookUseCase(repo, zap.NewNop()).Execute(ctx, PublishBookRequest{BookID: "book_a", Stock: 5})
	require.NoError(t, err)

	uc := NewDelistBookUseCase(repo, zap.NewNop())
	require.NoError(t, uc.Execute(ctx, "book_a"))

	found, err := repo.FindActiveByBookIDs(ctx, []string{"book_a"})
	require.NoError(t, err)
	assert.Empty(t, found)

	err = uc.Execute(ctx, "book_a")
	assert.ErrorIs(t, err, book.ErrBookNotFound, "重复下架")
}

func TestListStockLogs(t *testing.T) {
	ctx := context.Background()
	repo := newBookRepo(t)
	require.NoError(t, repo.AppendStockLogs(ctx, []*book.StockLog{
		book.NewDeliverLog("book_a", "o1", 2, 5),
		book.NewDeliverLog("book_a", "o2", 1, 3),
		book.NewDeliverLog("book_b", "o2", 1, 9),
	}))

	logs, err := NewListStockLogsUseCase(repo).Execute(ctx, "book_a")
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "o1", logs[0].OrderID)
	assert.Equal(t, 2, logs[1].AfterStock)
}
