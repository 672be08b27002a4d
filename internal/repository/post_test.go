package repository

import (
	"context"
	"testing"
	"time"

	"inkwell/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestPostRepositoryGetByID(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	t.Run("found with owner preloaded", func(t *testing.T) {
		postRows := sqlmock.NewRows([]string{"id", "title", "content", "user_id"}).
			AddRow(10, "First post", "Hello", 1)
		mock.ExpectQuery(`SELECT \* FROM "posts" WHERE "posts"\."id" = \$1`).
			WithArgs(10, 1).
			WillReturnRows(postRows)

		userRows := sqlmock.NewRows([]string{"id", "username"}).AddRow(1, "alice")
		mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"\."id" = \$1`).
			WithArgs(1).
			WillReturnRows(userRows)

		post, err := repo.GetByID(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, "First post", post.Title)
		assert.Equal(t, "alice", post.User.Username)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM "posts" WHERE "posts"\."id" = \$1`).
			WithArgs(99, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		post, err := repo.GetByID(ctx, 99)
		assert.Nil(t, post)

		var appErr *models.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, models.CodeNotFound, appErr.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostRepositoryList(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	t.Run("empty result", func(t *testing.T) {
		mock.ExpectQuery(`SELECT \* FROM "posts" ORDER BY created_at DESC LIMIT \$1`).
			WithArgs(10).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		posts, err := repo.List(context.Background(), 10, 0)
		require.NoError(t, err)
		assert.Empty(t, posts)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostRepositorySearch(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	rows := sqlmock.NewRows([]string{"id", "title", "content", "user_id"}).
		AddRow(10, "Go tips", "...", 1)
	mock.ExpectQuery(`SELECT \* FROM "posts" WHERE LOWER\(title\) LIKE LOWER\(\$1\) OR LOWER\(content\) LIKE LOWER\(\$2\)`).
		WithArgs("%go%", "%go%", 10).
		WillReturnRows(rows)

	userRows := sqlmock.NewRows([]string{"id", "username"}).AddRow(1, "alice")
	mock.ExpectQuery(`SELECT \* FROM "users" WHERE "users"\."id" = \$1`).
		WithArgs(1).
		WillReturnRows(userRows)

	posts, err := repo.Search(context.Background(), "go", 10, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Go tips", posts[0].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepositoryDelete(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "posts" WHERE "posts"\."id" = \$1`).
		WithArgs(10).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), 10)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostRepositoryCountSince(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)

	since := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"count"}).AddRow(3)
	mock.ExpectQuery(`SELECT count\(\*\) FROM "posts" WHERE user_id = \$1 AND created_at >= \$2`).
		WithArgs(1, sqlmock.AnyArg()).
		WillReturnRows(rows)

	count, err := repo.CountSince(context.Background(), 1, since)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
