package service

import (
	"context"
	"testing"
	"time"

	"newsroom/internal/apperr"
	"newsroom/internal/entity"
	"newsroom/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsSnapshot(t *testing.T) {
	repo := newMemRepo()
	author := repo.addUser("a@x.com", entity.RoleUser)
	repo.addUser("w@x.com", entity.RoleWriter)
	repo.addUser("b@x.com", entity.RoleUser, func(u *entity.DbUser) { u.Status = entity.UserStatusBanned })
	repo.addArticle("p1", entity.ArticlePublished)
	repo.addArticle("d1", entity.ArticleDraft)
	repo.addComment(author.ID, "p1", entity.CommentApproved)
	repo.addComment(author.ID, "p1", entity.CommentApproved)
	repo.addComment(author.ID, "p1", entity.CommentPending)
	repo.addComment(author.ID, "p1", entity.CommentSpam)

	svc := NewStatsService(repo)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	stats, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Users.Total)
	assert.Equal(t, int64(2), stats.Users.ByRole["USER"])
	assert.Equal(t, int64(1), stats.Users.ByStatus["BANNED"])
	assert.Equal(t, int64(2), stats.Articles.Total)
	assert.Equal(t, int64(1), stats.Articles.ByStatus["PUBLISHED"])
	assert.Equal(t, int64(20), stats.Articles.TotalViews)
	assert.Equal(t, int64(3), stats.Categories.Total)
	assert.Equal(t, int64(4), stats.Comments.Total)
	assert.Equal(t, int64(2), stats.Comments.ByStatus["APPROVED"])
	assert.Equal(t, int64(1), stats.Comments.ByStatus["SPAM"])
	assert.Equal(t, fixed, stats.LastUpdated)
}

func TestStatsSnapshotFailure(t *testing.T) {
	repo := newMemRepo()
	repo.failWith = errBoom
	_, err := NewStatsService(repo).Snapshot(context.Background())
	appErr := requireCode(t, err, apperr.KindInternal, apperr.CodeInternal)
	assert.ErrorIs(t, appErr, errBoom)
}

func TestRefreshGauges(t *testing.T) {
	repo := newMemRepo()
	author := repo.addUser("a@x.com", entity.RoleUser)
	repo.addUser("b@x.com", entity.RoleUser)
	repo.addComment(author.ID, "p1", entity.CommentPending)
	repo.addComment(author.ID, "p1", entity.CommentPending)
	repo.addComment(author.ID, "p1", entity.CommentApproved)

	require.NoError(t, NewStatsService(repo).RefreshGauges(context.Background()))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.CommentsPending))
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.UsersTotal))

	repo.failWith = errBoom
	assert.ErrorIs(t, NewStatsService(repo).RefreshGauges(context.Background()), errBoom)
}
