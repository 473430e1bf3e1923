package sql

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"newsroom/internal/entity"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestRepo(t *testing.T) (*GormRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	if err := db.AutoMigrate(&entity.DbUser{}, &entity.DbSubscription{}, &entity.DbCategory{}, &entity.DbArticle{}, &entity.DbComment{}); err != nil {
		t.Skipf("sqlite migrate failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewGormRepository(db), db
}

func seedUser(t *testing.T, repo *GormRepository, email string, role entity.Role) *entity.DbUser {
	t.Helper()
	u := &entity.DbUser{Name: "Test", Email: email, Role: role, Status: entity.UserStatusActive}
	if err := repo.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestUserLifecycle(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	u := seedUser(t, repo, "  Ann@Example.com ", entity.RoleUser)
	if u.ID == "" {
		t.Fatal("expected generated id")
	}

	got, err := repo.GetUserByEmail(ctx, "ann@example.com")
	if err != nil {
		t.Fatalf("get by email: %v", err)
	}
	if got.ID != u.ID || got.Email != "ann@example.com" {
		t.Fatalf("unexpected user %+v", got)
	}

	dup := &entity.DbUser{Name: "Dup", Email: "ann@example.com", Role: entity.RoleUser, Status: entity.UserStatusActive}
	if err := repo.CreateUser(ctx, dup); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("expected duplicate key error, got %v", err)
	}

	if _, err := repo.GetUserByID(ctx, "missing"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	err = repo.UpdateUser(ctx, u.ID, entity.UserUpdates{Verification: &entity.VerificationToken{Selector: "sel", Hash: "hash"}})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	holder, err := repo.GetUserByVerificationSelector(ctx, "sel")
	if err != nil || holder.ID != u.ID {
		t.Fatalf("expected selector lookup to find user, got %v %v", holder, err)
	}

	verified := true
	if err := repo.UpdateUser(ctx, u.ID, entity.UserUpdates{IsVerified: &verified, ConsumeVerification: true}); err != nil {
		t.Fatalf("update: %v", err)
	}
	redeemed, err := repo.GetUserByVerificationSelector(ctx, "sel")
	if err != nil || redeemed.VerificationTokenHash != nil || !redeemed.IsVerified {
		t.Fatalf("expected redeemed token to keep selector only, got %+v %v", redeemed, err)
	}

	if err := repo.UpdateUser(ctx, u.ID, entity.UserUpdates{ClearVerification: true}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if _, err := repo.GetUserByVerificationSelector(ctx, "sel"); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected cleared selector, got %v", err)
	}
}

func TestListUsersNewestFirst(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()

	older := seedUser(t, repo, "old@example.com", entity.RoleUser)
	db.Model(&entity.DbUser{}).Where("id = ?", older.ID).Update("created_at", time.Now().Add(-time.Hour))
	newer := seedUser(t, repo, "new@example.com", entity.RoleWriter)

	users, total, err := repo.ListUsers(ctx, entity.UserQuery{Status: entity.UserStatusActive}, entity.Page{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(users) != 2 || users[0].ID != newer.ID {
		t.Fatalf("unexpected listing total=%d users=%v", total, users)
	}

	writers, total, _ := repo.ListUsers(ctx, entity.UserQuery{Role: entity.RoleWriter}, entity.Page{Page: 1, Limit: 10})
	if total != 1 || writers[0].ID != newer.ID {
		t.Fatalf("expected only writer, got %v", writers)
	}
}

func TestHasActiveSubscription(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()
	u := seedUser(t, repo, "sub@example.com", entity.RoleUser)

	db.Create(&entity.DbSubscription{UserID: u.ID, Status: entity.SubscriptionCancelled})
	if ok, err := repo.HasActiveSubscription(ctx, u.ID); err != nil || ok {
		t.Fatalf("cancelled subscription must not count, got %v %v", ok, err)
	}
	db.Create(&entity.DbSubscription{UserID: u.ID, Status: entity.SubscriptionActive})
	if ok, err := repo.HasActiveSubscription(ctx, u.ID); err != nil || !ok {
		t.Fatalf("expected active subscription, got %v %v", ok, err)
	}
}

func TestCommentListingFiltersAndOrder(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()
	author := seedUser(t, repo, "author@example.com", entity.RoleUser)
	article := &entity.DbArticle{Title: "Hello", Slug: "hello", Status: entity.ArticlePublished}
	db.Create(article)

	base := time.Now().Add(-time.Hour)
	states := []entity.CommentState{entity.CommentApproved, entity.CommentPending, entity.CommentSpam, entity.CommentApproved}
	ids := make([]string, len(states))
	for i, state := range states {
		c := &entity.DbComment{Content: fmt.Sprintf("comment %d", i), AuthorID: author.ID, ArticleID: article.ID}
		c.SetState(state)
		if err := repo.CreateComment(ctx, c); err != nil {
			t.Fatalf("create comment: %v", err)
		}
		db.Model(&entity.DbComment{}).Where("id = ?", c.ID).Update("created_at", base.Add(time.Duration(i)*time.Minute))
		ids[i] = c.ID
	}

	visible, total, err := repo.ListComments(ctx,
		entity.CommentFilter{ArticleID: article.ID, States: []entity.CommentState{entity.CommentApproved}},
		entity.Page{Page: 1, Limit: 10}, entity.OrderOldestFirst)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || visible[0].ID != ids[0] || visible[1].ID != ids[3] {
		t.Fatalf("unexpected visible comments total=%d %v", total, visible)
	}
	if visible[0].Author == nil || visible[0].Author.ID != author.ID {
		t.Fatal("expected author to be preloaded")
	}

	all, total, _ := repo.ListComments(ctx, entity.CommentFilter{ArticleID: article.ID}, entity.Page{Page: 1, Limit: 2}, entity.OrderNewestFirst)
	if total != 4 || len(all) != 2 || all[0].ID != ids[3] {
		t.Fatalf("unexpected newest-first page total=%d %v", total, all)
	}

	approved, err := repo.CountComments(ctx, entity.CommentFilter{ArticleID: article.ID, States: []entity.CommentState{entity.CommentApproved}})
	if err != nil || approved != 2 {
		t.Fatalf("expected 2 approved, got %d %v", approved, err)
	}

	byState, err := repo.CountCommentsByState(ctx)
	if err != nil {
		t.Fatalf("count by state: %v", err)
	}
	counts := entity.CountMap(byState)
	if counts["APPROVED"] != 2 || counts["PENDING"] != 1 || counts["SPAM"] != 1 {
		t.Fatalf("unexpected state counts %v", counts)
	}
}

func TestCommentUpdateAndDelete(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	author := seedUser(t, repo, "a@example.com", entity.RoleUser)

	c := &entity.DbComment{Content: "first", AuthorID: author.ID, ArticleID: "art"}
	c.SetState(entity.CommentApproved)
	if err := repo.CreateComment(ctx, c); err != nil {
		t.Fatalf("create: %v", err)
	}

	spam := entity.CommentSpam
	if err := repo.UpdateComment(ctx, c.ID, entity.CommentUpdates{State: &spam}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repo.GetCommentByID(ctx, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.IsApproved || !got.IsSpam {
		t.Fatalf("expected spam-only flags, got %+v", got)
	}

	if err := repo.DeleteComment(ctx, c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := repo.DeleteComment(ctx, c.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestStatsCounts(t *testing.T) {
	repo, db := newTestRepo(t)
	ctx := context.Background()
	seedUser(t, repo, "u1@example.com", entity.RoleUser)
	seedUser(t, repo, "u2@example.com", entity.RoleAdmin)
	db.Create(&entity.DbArticle{Title: "a", Slug: "a", Status: entity.ArticlePublished, ViewCount: 10})
	db.Create(&entity.DbArticle{Title: "b", Slug: "b", Status: entity.ArticleDraft, ViewCount: 5})
	db.Create(&entity.DbCategory{Name: "World", Slug: "world"})

	if n, _ := repo.CountUsers(ctx); n != 2 {
		t.Fatalf("expected 2 users, got %d", n)
	}
	byRole, _ := repo.CountUsersByRole(ctx)
	if m := entity.CountMap(byRole); m["USER"] != 1 || m["ADMIN"] != 1 {
		t.Fatalf("unexpected role counts %v", m)
	}
	if views, _ := repo.SumArticleViews(ctx); views != 15 {
		t.Fatalf("expected 15 views, got %d", views)
	}
	byStatus, _ := repo.CountArticlesByStatus(ctx)
	if m := entity.CountMap(byStatus); m["PUBLISHED"] != 1 || m["DRAFT"] != 1 {
		t.Fatalf("unexpected article counts %v", m)
	}
	if n, _ := repo.CountCategories(ctx); n != 1 {
		t.Fatalf("expected 1 category, got %d", n)
	}
}

func TestNilRepository(t *testing.T) {
	var repo *GormRepository
	if _, err := repo.GetUserByID(context.Background(), "x"); !errors.Is(err, errNotInitialised) {
		t.Fatalf("expected errNotInitialised, got %v", err)
	}
}
