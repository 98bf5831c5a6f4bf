package user

// CreateUserDTO is the admin-facing payload for creating an account.
type CreateUserDTO struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	IsActive *bool  `json:"is_active,omitempty"`
	IsAdmin  *bool  `json:"is_admin,omitempty"`
}

// UpdateUserDTO is the payload for PUT/PATCH on an account. Pointer fields
// let partial updates distinguish omitted from zero values.
type UpdateUserDTO struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	IsActive *bool  `json:"is_active,omitempty"`
	IsAdmin  *bool  `json:"is_admin,omitempty"`
}

// UserOutput is the response projection; it never carries the password hash.
type UserOutput struct {
	ID          int64    `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	IsActive    bool     `json:"is_active"`
	IsAdmin     bool     `json:"is_admin"`
	IsSuperuser bool     `json:"is_superuser"`
	Permissions []string `json:"permissions,omitempty"`
}

func ToOutput(u *User) UserOutput {
	out := UserOutput{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		IsActive:    u.IsActive,
		IsAdmin:     u.IsAdmin,
		IsSuperuser: u.IsSuperuser,
	}
	for _, p := range u.Permissions {
		out.Permissions = append(out.Permissions, p.Codename)
	}
	return out
}
