package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ArticleStatus string

const (
	ArticleDraft     ArticleStatus = "DRAFT"
	ArticlePublished ArticleStatus = "PUBLISHED"
	ArticleArchived  ArticleStatus = "ARCHIVED"
)

// DbArticle is the subset of an article that comment moderation and stats
// read. Article authoring lives outside this service.
type DbArticle struct {
	ID        string        `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Title     string        `gorm:"column:title;type:varchar(255);not null" json:"title"`
	Slug      string        `gorm:"column:slug;type:varchar(255);uniqueIndex" json:"slug"`
	Status    ArticleStatus `gorm:"column:status;type:varchar(20);index;not null;default:DRAFT" json:"status"`
	AuthorID  string        `gorm:"column:author_id;type:varchar(36);index" json:"author_id"`
	ViewCount int64         `gorm:"column:view_count;not null;default:0" json:"view_count"`
}

func (DbArticle) TableName() string {
	return "articles"
}

func (a *DbArticle) BeforeCreate(*gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// IsPublic reports whether readers may see and comment on the article.
func (a *DbArticle) IsPublic() bool {
	return a != nil && a.Status == ArticlePublished
}

type DbCategory struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"column:name;type:varchar(50);uniqueIndex;not null" json:"name"`
	Slug      string    `gorm:"column:slug;type:varchar(60);uniqueIndex" json:"slug"`
}

func (DbCategory) TableName() string {
	return "categories"
}

func (c *DbCategory) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
