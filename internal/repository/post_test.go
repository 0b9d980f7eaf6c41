package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"devhub/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostRepository_CreateAndListNewestFirst(t *testing.T) {
	repo := NewPostRepository(setupTestDB(t))
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	for i, text := range []string{"first", "second", "third"} {
		post := &models.Post{UserID: uuid.NewString(), Text: text, Date: base.Add(time.Duration(i) * time.Minute)}
		require.NoError(t, repo.Create(ctx, post))
		assert.Equal(t, int64(1), post.Version)
	}

	posts, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "third", posts[0].Text)
	assert.Equal(t, "first", posts[2].Text)
	assert.NotNil(t, posts[0].Likes)
	assert.NotNil(t, posts[0].Comments)
}

func TestPostRepository_GetByIDAndDelete(t *testing.T) {
	repo := NewPostRepository(setupTestDB(t))
	ctx := context.Background()

	post := &models.Post{UserID: uuid.NewString(), Text: "hello", Name: "Alice"}
	require.NoError(t, repo.Create(ctx, post))

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Text)
	assert.Equal(t, "Alice", got.Name)

	require.NoError(t, repo.Delete(ctx, post.ID))
	_, err = repo.GetByID(ctx, post.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	err = repo.Delete(ctx, post.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
	err = repo.Delete(ctx, "bogus")
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestPostRepository_UpdatePersistsSubCollections(t *testing.T) {
	repo := NewPostRepository(setupTestDB(t))
	ctx := context.Background()
	post := &models.Post{UserID: uuid.NewString(), Text: "hello"}
	require.NoError(t, repo.Create(ctx, post))

	liker := uuid.NewString()
	updated, err := repo.Update(ctx, post.ID, func(p *models.Post) error {
		p.Likes = append([]models.Like{{ID: uuid.NewString(), UserID: liker}}, p.Likes...)
		p.Comments = append([]models.Comment{{ID: uuid.NewString(), UserID: liker, Text: "nice"}}, p.Comments...)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)

	stored, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, stored.LikedBy(liker))
	require.Len(t, stored.Comments, 1)
	assert.Equal(t, "nice", stored.Comments[0].Text)
}

func TestPostRepository_UpdateDetectsStaleWrite(t *testing.T) {
	repo := NewPostRepository(setupTestDB(t))
	ctx := context.Background()
	post := &models.Post{UserID: uuid.NewString(), Text: "hello"}
	require.NoError(t, repo.Create(ctx, post))

	_, err := repo.Update(ctx, post.ID, func(p *models.Post) error {
		_, innerErr := repo.Update(ctx, post.ID, func(q *models.Post) error {
			q.Likes = append(q.Likes, models.Like{ID: uuid.NewString(), UserID: "winner"})
			return nil
		})
		require.NoError(t, innerErr)
		p.Likes = append(p.Likes, models.Like{ID: uuid.NewString(), UserID: "loser"})
		return nil
	})
	assert.True(t, models.IsCode(err, models.CodeStaleWrite))

	stored, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, stored.LikedBy("winner"))
	assert.False(t, stored.LikedBy("loser"))
}

func TestPostRepository_StaleWritePostgres(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewPostRepository(db)
	id := uuid.NewString()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "posts" WHERE id = $1`)).
		WithArgs(id, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "text", "likes", "comments", "version"}).
			AddRow(id, uuid.NewString(), "hello", "[]", "[]", 3))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "posts" SET`)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	_, err := repo.Update(context.Background(), id, func(p *models.Post) error {
		p.Text = "edited"
		return nil
	})
	assert.True(t, models.IsCode(err, models.CodeStaleWrite))
	assert.NoError(t, mock.ExpectationsWereMet())
}
