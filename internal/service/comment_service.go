package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"newsroom/internal/apperr"
	"newsroom/internal/auth"
	"newsroom/internal/entity"
	"newsroom/internal/entity/converter"
	"newsroom/internal/metrics"
	"newsroom/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	minCommentLength = 3
	maxCommentLength = 1000

	threadDefaultLimit     = 20
	threadMaxLimit         = 50
	moderationDefaultLimit = 50
	moderationMaxLimit     = 100
	historyDefaultLimit    = 20
	historyMaxLimit        = 50
	recentDefaultLimit     = 10
	recentMaxLimit         = 50
)

// CommentOptions controls the initial moderation state of new comments.
type CommentOptions struct {
	// AutoApprove publishes new comments immediately instead of queueing them.
	AutoApprove bool
	// BlockSpam stores comments that trip a spam heuristic in SPAM state.
	BlockSpam bool
}

// CommentList is one page of comments.
type CommentList struct {
	Comments []entity.CommentDTO
	Meta     *entity.Meta
}

// CommentService 评论服务，负责评论的增删改查与审核
type CommentService struct {
	repo model.Repository
	opts CommentOptions
}

// NewCommentService 创建评论服务实例
func NewCommentService(repo model.Repository, opts CommentOptions) *CommentService {
	return &CommentService{repo: repo, opts: opts}
}

// Create adds a comment to a published article.
func (s *CommentService) Create(ctx context.Context, caller auth.Identity, req entity.CreateCommentRequest) (*entity.CommentDTO, error) {
	articleID := strings.TrimSpace(req.ArticleID)
	if articleID == "" {
		return nil, apperr.Validation("Article ID is required", apperr.CodeMissingArticleID)
	}
	content, err := normalizeContent(req.Content)
	if err != nil {
		return nil, err
	}

	article, err := s.repo.GetArticleByID(ctx, articleID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Internal("failed to load article", err)
	}
	if err != nil || !article.IsPublic() {
		return nil, apperr.NotFound("Article not found", apperr.CodeArticleNotFound)
	}

	state := entity.CommentPending
	if s.opts.AutoApprove {
		state = entity.CommentApproved
	}
	signals := spamSignals(content)
	if len(signals) > 0 {
		logrus.WithFields(logrus.Fields{
			"author_id":  caller.UserID,
			"article_id": articleID,
			"signals":    signals,
		}).Warn("comment tripped spam heuristics")
		if s.opts.BlockSpam {
			state = entity.CommentSpam
		}
	}

	comment := &entity.DbComment{
		Content:   content,
		AuthorID:  caller.UserID,
		ArticleID: articleID,
	}
	comment.SetState(state)
	if err := s.repo.CreateComment(ctx, comment); err != nil {
		return nil, apperr.Internal("failed to create comment", err)
	}
	metrics.ObserveCommentCreated(string(state), signals)
	return s.reload(ctx, comment.ID)
}

// Update replaces the content of the caller's own comment.
func (s *CommentService) Update(ctx context.Context, caller auth.Identity, commentID string, req entity.UpdateCommentRequest) (*entity.CommentDTO, error) {
	comment, err := s.load(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != caller.UserID {
		return nil, apperr.Authorization("You can only edit your own comments", apperr.CodeInsufficientPermissions)
	}
	content, err := normalizeContent(req.Content)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateComment(ctx, comment.ID, entity.CommentUpdates{Content: &content}); err != nil {
		return nil, apperr.Internal("failed to update comment", err)
	}
	return s.reload(ctx, comment.ID)
}

// Delete removes a comment owned by the caller, or any comment for roles
// allowed to delete others' comments.
func (s *CommentService) Delete(ctx context.Context, caller auth.Identity, commentID string) error {
	comment, err := s.load(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.AuthorID != caller.UserID && !caller.Role.Can(entity.ActionCommentDeleteAny) {
		return apperr.Authorization("You can only delete your own comments", apperr.CodeInsufficientPermissions)
	}
	if err := s.repo.DeleteComment(ctx, comment.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperr.NotFound("Comment not found", apperr.CodeCommentNotFound)
		}
		return apperr.Internal("failed to delete comment", err)
	}
	return nil
}

// MarkAsSpam moves a comment to SPAM.
func (s *CommentService) MarkAsSpam(ctx context.Context, caller auth.Identity, commentID string) (*entity.CommentDTO, error) {
	if !caller.Role.Can(entity.ActionCommentModerate) {
		return nil, apperr.Authorization("Only admins and moderators can mark comments as spam", apperr.CodeInsufficientPermissions)
	}
	return s.moderate(ctx, caller, commentID, entity.CommentSpam)
}

// Approve moves a comment to APPROVED.
func (s *CommentService) Approve(ctx context.Context, caller auth.Identity, commentID string) (*entity.CommentDTO, error) {
	if !caller.Role.Can(entity.ActionCommentModerate) {
		return nil, apperr.Authorization("Only admins and moderators can approve comments", apperr.CodeInsufficientPermissions)
	}
	return s.moderate(ctx, caller, commentID, entity.CommentApproved)
}

func (s *CommentService) moderate(ctx context.Context, caller auth.Identity, commentID string, state entity.CommentState) (*entity.CommentDTO, error) {
	comment, err := s.load(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if err := s.repo.UpdateComment(ctx, comment.ID, entity.CommentUpdates{State: &state}); err != nil {
		return nil, apperr.Internal("failed to moderate comment", err)
	}
	metrics.ObserveModeration(string(state))
	logrus.WithFields(logrus.Fields{
		"comment_id":   comment.ID,
		"moderator_id": caller.UserID,
		"from":         comment.State(),
		"to":           state,
	}).Info("comment moderated")
	return s.reload(ctx, comment.ID)
}

// ListByArticle returns an article thread, oldest first. The include flags
// are honored only for callers whose role may see hidden comments; anyone
// else gets approved comments only.
func (s *CommentService) ListByArticle(ctx context.Context, caller *auth.Identity, articleID string, query entity.CommentListQuery) (*CommentList, error) {
	articleID = strings.TrimSpace(articleID)
	if articleID == "" {
		return nil, apperr.Validation("Article ID is required", apperr.CodeMissingArticleID)
	}

	var visibility entity.CommentVisibility
	page := entity.NormalizePage(query.Page, query.Limit, threadDefaultLimit, threadMaxLimit)
	if caller != nil && caller.Role.Can(entity.ActionCommentViewHidden) && (query.IncludeSpam || query.IncludeUnapproved) {
		visibility = entity.CommentVisibility{IncludeSpam: query.IncludeSpam, IncludeUnapproved: query.IncludeUnapproved}
		page = entity.NormalizePage(query.Page, query.Limit, moderationDefaultLimit, moderationMaxLimit)
	}

	filter := entity.CommentFilter{ArticleID: articleID, States: visibility.States()}
	return s.list(ctx, filter, page, entity.OrderOldestFirst)
}

// ListByUser returns a user's comment history, newest first. Spam is never
// included. An empty userID means the caller.
func (s *CommentService) ListByUser(ctx context.Context, caller auth.Identity, userID string, params entity.PageParams) (*CommentList, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		userID = caller.UserID
	}
	if userID != caller.UserID && !caller.Role.Can(entity.ActionCommentViewOthers) {
		return nil, apperr.Authorization("You can only view your own comments", apperr.CodeInsufficientPermissions)
	}
	filter := entity.CommentFilter{
		AuthorID: userID,
		States:   []entity.CommentState{entity.CommentApproved, entity.CommentPending},
	}
	page := entity.NormalizePage(params.Page, params.Limit, historyDefaultLimit, historyMaxLimit)
	return s.list(ctx, filter, page, entity.OrderNewestFirst)
}

// Recent returns the latest approved comments across all articles.
func (s *CommentService) Recent(ctx context.Context, caller auth.Identity, limit int) ([]entity.CommentDTO, error) {
	if !caller.Role.Can(entity.ActionCommentViewRecent) {
		return nil, apperr.Authorization("Insufficient permissions", apperr.CodeInsufficientPermissions)
	}
	page := entity.NormalizePage(1, limit, recentDefaultLimit, recentMaxLimit)
	filter := entity.CommentFilter{States: []entity.CommentState{entity.CommentApproved}}
	list, err := s.list(ctx, filter, page, entity.OrderNewestFirst)
	if err != nil {
		return nil, err
	}
	return list.Comments, nil
}

// Stats counts the approved comments of an article.
func (s *CommentService) Stats(ctx context.Context, articleID string) (*entity.CommentStats, error) {
	articleID = strings.TrimSpace(articleID)
	if articleID == "" {
		return nil, apperr.Validation("Article ID is required", apperr.CodeMissingArticleID)
	}
	count, err := s.repo.CountComments(ctx, entity.CommentFilter{
		ArticleID: articleID,
		States:    []entity.CommentState{entity.CommentApproved},
	})
	if err != nil {
		return nil, apperr.Internal("failed to count comments", err)
	}
	return &entity.CommentStats{ArticleID: articleID, ApprovedCount: count}, nil
}

func (s *CommentService) list(ctx context.Context, filter entity.CommentFilter, page entity.Page, order entity.CommentOrder) (*CommentList, error) {
	comments, total, err := s.repo.ListComments(ctx, filter, page, order)
	if err != nil {
		return nil, apperr.Internal("failed to list comments", err)
	}
	return &CommentList{
		Comments: converter.CommentsToDTOs(comments),
		Meta:     entity.NewMeta(page, total),
	}, nil
}

func (s *CommentService) load(ctx context.Context, commentID string) (*entity.DbComment, error) {
	commentID = strings.TrimSpace(commentID)
	if commentID == "" {
		return nil, apperr.Validation("Comment ID is required", apperr.CodeMissingCommentID)
	}
	comment, err := s.repo.GetCommentByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Comment not found", apperr.CodeCommentNotFound)
		}
		return nil, apperr.Internal("failed to load comment", err)
	}
	return comment, nil
}

func (s *CommentService) reload(ctx context.Context, commentID string) (*entity.CommentDTO, error) {
	comment, err := s.load(ctx, commentID)
	if err != nil {
		return nil, err
	}
	dto := converter.CommentToDTO(comment)
	return &dto, nil
}

// normalizeContent trims and bounds comment text, counting characters.
func normalizeContent(raw string) (string, error) {
	content := sanitizeText(raw)
	n := utf8.RuneCountInString(content)
	switch {
	case n == 0:
		return "", apperr.Validation("Comment content is required", apperr.CodeContentRequired)
	case n < minCommentLength:
		return "", apperr.Validation("Comment is too short (min 3 characters)", apperr.CodeContentTooShort)
	case n > maxCommentLength:
		return "", apperr.Validation("Comment is too long (max 1000 characters)", apperr.CodeContentTooLong)
	}
	return content, nil
}
