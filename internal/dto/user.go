package dto

// CreateUserRequest is the payload for registering a new user account.
type CreateUserRequest struct {
	Username   string  `json:"username" validate:"required,min=3,max=50"`
	Password   string  `json:"password" validate:"required,min=6"`
	FullName   string  `json:"full_name" validate:"required"`
	Role       string  `json:"role" validate:"required,oneof=admin employee viewer"`
	Department *string `json:"department,omitempty"`
}

// UpdateUserRequest carries optional user field updates.
type UpdateUserRequest struct {
	Username   *string `json:"username,omitempty" validate:"omitempty,min=3,max=50"`
	FullName   *string `json:"full_name,omitempty"`
	Role       *string `json:"role,omitempty" validate:"omitempty,oneof=admin employee viewer"`
	Department *string `json:"department,omitempty"`
	Active     *bool   `json:"active,omitempty"`
}

// UserQuery carries user list filters from the query string.
type UserQuery struct {
	Role     string
	Active   *bool
	Search   string
	Page     int
	PageSize int
}
