package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommentState is the moderation state of a comment. Storage keeps two
// flags; every read and write in service code goes through this type so
// that approved and spam can never be set together.
type CommentState string

const (
	CommentPending  CommentState = "PENDING"
	CommentApproved CommentState = "APPROVED"
	CommentSpam     CommentState = "SPAM"
)

// Flags returns the persisted (isApproved, isSpam) pair for the state.
func (s CommentState) Flags() (approved bool, spam bool) {
	switch s {
	case CommentApproved:
		return true, false
	case CommentSpam:
		return false, true
	default:
		return false, false
	}
}

// CommentStateFromFlags decodes persisted flags. Spam wins over approved so
// that an inconsistent row is never shown to readers.
func CommentStateFromFlags(approved, spam bool) CommentState {
	switch {
	case spam:
		return CommentSpam
	case approved:
		return CommentApproved
	default:
		return CommentPending
	}
}

// DbComment is a persisted comment on an article.
type DbComment struct {
	ID         string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	Content    string    `gorm:"column:content;type:text;not null" json:"content"`
	AuthorID   string    `gorm:"column:author_id;type:varchar(36);index;not null" json:"author_id"`
	ArticleID  string    `gorm:"column:article_id;type:varchar(36);index;not null" json:"article_id"`
	IsApproved bool      `gorm:"column:is_approved;not null;default:false" json:"is_approved"`
	IsSpam     bool      `gorm:"column:is_spam;not null;default:false" json:"is_spam"`

	Author *DbUser `gorm:"foreignKey:AuthorID;references:ID" json:"author,omitempty"`
}

func (DbComment) TableName() string {
	return "comments"
}

func (c *DbComment) BeforeCreate(*gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// State returns the moderation state encoded in the row flags.
func (c *DbComment) State() CommentState {
	if c == nil {
		return CommentPending
	}
	return CommentStateFromFlags(c.IsApproved, c.IsSpam)
}

// SetState writes both flags from a single state.
func (c *DbComment) SetState(state CommentState) {
	c.IsApproved, c.IsSpam = state.Flags()
}

// IsPublic reports whether ordinary readers may see the comment.
func (c *DbComment) IsPublic() bool {
	return c.State() == CommentApproved
}

// CommentVisibility holds the moderation include-flags a caller asked for.
type CommentVisibility struct {
	IncludeSpam       bool
	IncludeUnapproved bool
}

// States returns the moderation states selected by the flags. Approved
// comments are always included.
func (v CommentVisibility) States() []CommentState {
	states := []CommentState{CommentApproved}
	if v.IncludeUnapproved {
		states = append(states, CommentPending)
	}
	if v.IncludeSpam {
		states = append(states, CommentSpam)
	}
	return states
}

// CommentOrder is the sort direction on created_at.
type CommentOrder string

const (
	OrderOldestFirst CommentOrder = "asc"
	OrderNewestFirst CommentOrder = "desc"
)

// CommentFilter narrows repository listings and counts.
type CommentFilter struct {
	ArticleID string
	AuthorID  string
	States    []CommentState
}

// CommentAuthor is the public projection of a comment author.
type CommentAuthor struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ProfileImage string `json:"profileImage,omitempty"`
	Role         Role   `json:"role"`
}

// CommentDTO is the client-facing shape of a comment.
type CommentDTO struct {
	ID         string         `json:"id"`
	Content    string         `json:"content"`
	ArticleID  string         `json:"articleId"`
	IsApproved bool           `json:"isApproved"`
	IsSpam     bool           `json:"isSpam"`
	State      CommentState   `json:"state"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	Author     *CommentAuthor `json:"author,omitempty"`
}
