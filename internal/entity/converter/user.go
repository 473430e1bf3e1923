package converter

import "newsroom/internal/entity"

// UserToProfile converts a persisted user into its safe client projection.
// The credential and token hashes never leave this package boundary.
func UserToProfile(u *entity.DbUser, isSubscriber bool) entity.UserProfile {
	if u == nil {
		return entity.UserProfile{}
	}
	return entity.UserProfile{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         u.Role,
		Status:       u.Status,
		IsVerified:   u.IsVerified,
		IsSubscriber: isSubscriber,
		ProfileImage: u.ProfileImage,
		Bio:          u.Bio,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

// UsersToProfiles converts a slice of users. Subscriber flags are not
// resolved for listings.
func UsersToProfiles(users []entity.DbUser) []entity.UserProfile {
	profiles := make([]entity.UserProfile, len(users))
	for i := range users {
		profiles[i] = UserToProfile(&users[i], false)
	}
	return profiles
}
