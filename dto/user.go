package dto

// UpdateProfileRequest ignores role: it cannot be changed through the profile.
type UpdateProfileRequest struct {
	Username             *string `json:"username" binding:"omitempty,min=1,max=255"`
	Email                *string `json:"email" binding:"omitempty,email,max=255"`
	Password             *string `json:"password" binding:"omitempty,min=6,max=72"`
	PasswordConfirmation *string `json:"password_confirmation"`
}

type UserListItem struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}
