package auth

// LoginDTO accepts credential logins.
type LoginDTO struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ChangePasswordDTO struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=128"`
}

type ForgotPasswordDTO struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordDTO struct {
	ResetPasswordToken string `json:"resetPasswordToken" validate:"required"`
	NewPassword        string `json:"newPassword" validate:"required,min=8,max=128"`
}

type ValidateResetTokenDTO struct {
	ResetPasswordToken string `json:"resetPasswordToken" validate:"required"`
}

// TokenOutput is the login response body.
type TokenOutput struct {
	AccessToken string `json:"accessToken"`
}
