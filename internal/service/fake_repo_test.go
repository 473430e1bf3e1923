package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"newsroom/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

// memRepo is an in-memory model.Repository for service tests.
type memRepo struct {
	mu          sync.Mutex
	users       map[string]*entity.DbUser
	articles    map[string]*entity.DbArticle
	comments    map[string]*entity.DbComment
	subscribers map[string]bool
	clock       time.Time

	// failWith makes every call return the error.
	failWith error
}

func newMemRepo() *memRepo {
	return &memRepo{
		users:       map[string]*entity.DbUser{},
		articles:    map[string]*entity.DbArticle{},
		comments:    map[string]*entity.DbComment{},
		subscribers: map[string]bool{},
		clock:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (r *memRepo) tick() time.Time {
	r.clock = r.clock.Add(time.Second)
	return r.clock
}

func (r *memRepo) CreateUser(_ context.Context, user *entity.DbUser) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	for _, u := range r.users {
		if u.Email == user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = r.tick()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memRepo) UpdateUser(_ context.Context, id string, updates entity.UserUpdates) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	u, ok := r.users[id]
	if !ok {
		return nil
	}
	values := updates.ToMap()
	for col, v := range values {
		switch col {
		case "name":
			u.Name = v.(string)
		case "email":
			u.Email = v.(string)
		case "bio":
			u.Bio = v.(string)
		case "profile_image":
			u.ProfileImage = v.(string)
		case "password_hash":
			s := v.(string)
			u.PasswordHash = &s
		case "role":
			u.Role = v.(entity.Role)
		case "status":
			u.Status = v.(entity.UserStatus)
		case "is_verified":
			u.IsVerified = v.(bool)
		case "google_id":
			s := v.(string)
			u.GoogleID = &s
		case "verification_selector":
			u.VerificationSelector = optionalString(v)
		case "verification_token_hash":
			u.VerificationTokenHash = optionalString(v)
		case "verification_expires_at":
			if at, ok := v.(time.Time); ok {
				u.VerificationExpiresAt = &at
			} else {
				u.VerificationExpiresAt = nil
			}
		}
	}
	u.UpdatedAt = r.tick()
	return nil
}

func optionalString(v interface{}) *string {
	if s, ok := v.(string); ok {
		return &s
	}
	return nil
}

func (r *memRepo) findUser(match func(*entity.DbUser) bool) (*entity.DbUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	for _, u := range r.users {
		if match(u) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *memRepo) GetUserByEmail(_ context.Context, email string) (*entity.DbUser, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return r.findUser(func(u *entity.DbUser) bool { return u.Email == email })
}

func (r *memRepo) GetUserByID(_ context.Context, id string) (*entity.DbUser, error) {
	return r.findUser(func(u *entity.DbUser) bool { return u.ID == id })
}

func (r *memRepo) GetUserByGoogleID(_ context.Context, googleID string) (*entity.DbUser, error) {
	return r.findUser(func(u *entity.DbUser) bool { return u.GoogleID != nil && *u.GoogleID == googleID })
}

func (r *memRepo) GetUserByVerificationSelector(_ context.Context, selector string) (*entity.DbUser, error) {
	return r.findUser(func(u *entity.DbUser) bool {
		return u.VerificationSelector != nil && *u.VerificationSelector == selector
	})
}

func (r *memRepo) ListUsers(_ context.Context, query entity.UserQuery, page entity.Page) ([]entity.DbUser, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.DbUser
	for _, u := range r.users {
		if query.Role != "" && u.Role != query.Role {
			continue
		}
		if query.Status != "" && u.Status != query.Status {
			continue
		}
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return paginate(out, page), int64(len(out)), nil
}

func (r *memRepo) HasActiveSubscription(_ context.Context, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return false, r.failWith
	}
	return r.subscribers[userID], nil
}

func (r *memRepo) GetArticleByID(_ context.Context, id string) (*entity.DbArticle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.articles[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *memRepo) CreateComment(_ context.Context, c *entity.DbComment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return r.failWith
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = r.tick()
	c.UpdatedAt = c.CreatedAt
	clone := *c
	clone.Author = nil
	r.comments[c.ID] = &clone
	return nil
}

func (r *memRepo) GetCommentByID(_ context.Context, id string) (*entity.DbComment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return r.withAuthor(c), nil
}

func (r *memRepo) withAuthor(c *entity.DbComment) *entity.DbComment {
	clone := *c
	if u, ok := r.users[c.AuthorID]; ok {
		author := *u
		clone.Author = &author
	}
	return &clone
}

func (r *memRepo) UpdateComment(_ context.Context, id string, updates entity.CommentUpdates) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.comments[id]
	if !ok {
		return nil
	}
	if updates.Content != nil {
		c.Content = *updates.Content
	}
	if updates.State != nil {
		c.SetState(*updates.State)
	}
	c.UpdatedAt = r.tick()
	return nil
}

func (r *memRepo) DeleteComment(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.comments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.comments, id)
	return nil
}

func (r *memRepo) matching(filter entity.CommentFilter) []entity.DbComment {
	var out []entity.DbComment
	for _, c := range r.comments {
		if filter.ArticleID != "" && c.ArticleID != filter.ArticleID {
			continue
		}
		if filter.AuthorID != "" && c.AuthorID != filter.AuthorID {
			continue
		}
		if len(filter.States) > 0 && !containsState(filter.States, c.State()) {
			continue
		}
		out = append(out, *r.withAuthor(c))
	}
	return out
}

func containsState(states []entity.CommentState, s entity.CommentState) bool {
	for _, candidate := range states {
		if candidate == s {
			return true
		}
	}
	return false
}

func (r *memRepo) ListComments(_ context.Context, filter entity.CommentFilter, page entity.Page, order entity.CommentOrder) ([]entity.DbComment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, 0, r.failWith
	}
	out := r.matching(filter)
	sort.Slice(out, func(i, j int) bool {
		if order == entity.OrderNewestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return paginate(out, page), int64(len(out)), nil
}

func (r *memRepo) CountComments(_ context.Context, filter entity.CommentFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.matching(filter))), nil
}

func (r *memRepo) CountUsers(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return 0, r.failWith
	}
	return int64(len(r.users)), nil
}

func (r *memRepo) CountUsersByRole(context.Context) ([]entity.GroupCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int64{}
	for _, u := range r.users {
		counts[string(u.Role)]++
	}
	return groupRows(counts), nil
}

func (r *memRepo) CountUsersByStatus(context.Context) ([]entity.GroupCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int64{}
	for _, u := range r.users {
		counts[string(u.Status)]++
	}
	return groupRows(counts), nil
}

func (r *memRepo) CountArticles(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.articles)), nil
}

func (r *memRepo) CountArticlesByStatus(context.Context) ([]entity.GroupCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[string]int64{}
	for _, a := range r.articles {
		counts[string(a.Status)]++
	}
	return groupRows(counts), nil
}

func (r *memRepo) SumArticleViews(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var total int64
	for _, a := range r.articles {
		total += a.ViewCount
	}
	return total, nil
}

func (r *memRepo) CountCategories(context.Context) (int64, error) {
	return 3, nil
}

func (r *memRepo) CountCommentsByState(context.Context) ([]entity.GroupCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failWith != nil {
		return nil, r.failWith
	}
	counts := map[string]int64{}
	for _, c := range r.comments {
		counts[string(c.State())]++
	}
	return groupRows(counts), nil
}

func groupRows(counts map[string]int64) []entity.GroupCount {
	rows := make([]entity.GroupCount, 0, len(counts))
	for k, v := range counts {
		rows = append(rows, entity.GroupCount{Key: k, Count: v})
	}
	return rows
}

func paginate[T any](items []T, page entity.Page) []T {
	start := page.Offset()
	if start >= len(items) {
		return nil
	}
	end := start + page.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// seed helpers

func (r *memRepo) addUser(email string, role entity.Role, mutate ...func(*entity.DbUser)) *entity.DbUser {
	u := &entity.DbUser{
		Name:       "User " + email,
		Email:      email,
		Role:       role,
		Status:     entity.UserStatusActive,
		IsVerified: true,
	}
	for _, fn := range mutate {
		fn(u)
	}
	if err := r.CreateUser(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}

func (r *memRepo) addArticle(id string, status entity.ArticleStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.articles[id] = &entity.DbArticle{ID: id, Title: id, Status: status, ViewCount: 10}
}

func (r *memRepo) addComment(authorID, articleID string, state entity.CommentState) *entity.DbComment {
	c := &entity.DbComment{Content: "seeded comment", AuthorID: authorID, ArticleID: articleID}
	c.SetState(state)
	if err := r.CreateComment(context.Background(), c); err != nil {
		panic(err)
	}
	return c
}

func (r *memRepo) user(id string) *entity.DbUser {
	u, err := r.GetUserByID(context.Background(), id)
	if err != nil {
		return nil
	}
	return u
}

// mockSender records verification emails.
type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendVerificationEmail(ctx context.Context, to, name, rawToken string) error {
	args := m.Called(ctx, to, name, rawToken)
	return args.Error(0)
}

var errBoom = errors.New("boom")
