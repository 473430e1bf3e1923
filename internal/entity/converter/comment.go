package converter

import "newsroom/internal/entity"

// CommentToDTO converts a persisted comment, including its preloaded author.
func CommentToDTO(c *entity.DbComment) entity.CommentDTO {
	if c == nil {
		return entity.CommentDTO{}
	}
	state := c.State()
	approved, spam := state.Flags()
	dto := entity.CommentDTO{
		ID:         c.ID,
		Content:    c.Content,
		ArticleID:  c.ArticleID,
		IsApproved: approved,
		IsSpam:     spam,
		State:      state,
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
	if c.Author != nil {
		dto.Author = &entity.CommentAuthor{
			ID:           c.Author.ID,
			Name:         c.Author.Name,
			ProfileImage: c.Author.ProfileImage,
			Role:         c.Author.Role,
		}
	}
	return dto
}

func CommentsToDTOs(comments []entity.DbComment) []entity.CommentDTO {
	out := make([]entity.CommentDTO, len(comments))
	for i := range comments {
		out[i] = CommentToDTO(&comments[i])
	}
	return out
}
