package service

import (
	"context"
	"time"

	"newsroom/internal/apperr"
	"newsroom/internal/entity"
	"newsroom/internal/metrics"
	"newsroom/internal/model"

	"golang.org/x/sync/errgroup"
)

// StatsService aggregates dashboard counts.
type StatsService struct {
	repo model.StatsRepository
	now  func() time.Time
}

func NewStatsService(repo model.StatsRepository) *StatsService {
	return &StatsService{repo: repo, now: time.Now}
}

// Snapshot runs every count in parallel and joins them.
func (s *StatsService) Snapshot(ctx context.Context) (*entity.SystemStats, error) {
	var stats entity.SystemStats
	var usersByRole, usersByStatus, articlesByStatus, commentsByState []entity.GroupCount

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.Users.Total, err = s.repo.CountUsers(gctx)
		return err
	})
	g.Go(func() (err error) {
		usersByRole, err = s.repo.CountUsersByRole(gctx)
		return err
	})
	g.Go(func() (err error) {
		usersByStatus, err = s.repo.CountUsersByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.Articles.Total, err = s.repo.CountArticles(gctx)
		return err
	})
	g.Go(func() (err error) {
		articlesByStatus, err = s.repo.CountArticlesByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.Articles.TotalViews, err = s.repo.SumArticleViews(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.Categories.Total, err = s.repo.CountCategories(gctx)
		return err
	})
	g.Go(func() (err error) {
		commentsByState, err = s.repo.CountCommentsByState(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperr.Internal("failed to aggregate stats", err)
	}

	stats.Users.ByRole = entity.CountMap(usersByRole)
	stats.Users.ByStatus = entity.CountMap(usersByStatus)
	stats.Articles.ByStatus = entity.CountMap(articlesByStatus)
	stats.Comments.ByStatus = entity.CountMap(commentsByState)
	for _, row := range commentsByState {
		stats.Comments.Total += row.Count
	}
	stats.LastUpdated = s.now().UTC()
	return &stats, nil
}

// RefreshGauges publishes the pending comment and user counts.
func (s *StatsService) RefreshGauges(ctx context.Context) error {
	byState, err := s.repo.CountCommentsByState(ctx)
	if err != nil {
		return err
	}
	users, err := s.repo.CountUsers(ctx)
	if err != nil {
		return err
	}
	metrics.SetModerationGauges(entity.CountMap(byState)[string(entity.CommentPending)], users)
	return nil
}
