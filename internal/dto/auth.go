package dto

type SendOTPRequestDTO struct {
	Email string `json:"email" validate:"required,email" example:"student@example.com"`
}

type VerifyOTPRequestDTO struct {
	Email string `json:"email" validate:"required,email" example:"student@example.com"`
	OTP   string `json:"otp" validate:"required,len=6,numeric" example:"482913"`
}

type RegisterRequestDTO struct {
	Name     string `json:"name" validate:"required,max=255" example:"Asha Verma"`
	Email    string `json:"email" validate:"required,email" example:"student@example.com"`
	Phone    string `json:"phone" validate:"omitempty,max=32" example:"9876543210"`
	Password string `json:"password" validate:"required,min=6" example:"s3cretpass"`
	OTP      string `json:"otp" validate:"required,len=6,numeric" example:"482913"`
}

type LoginRequestDTO struct {
	Email    string `json:"email" validate:"required,email" example:"student@example.com"`
	Password string `json:"password" validate:"required" example:"s3cretpass"`
}

type UserDTO struct {
	ID         int    `json:"id" example:"1"`
	Name       string `json:"name" example:"Asha Verma"`
	Email      string `json:"email" example:"student@example.com"`
	Phone      string `json:"phone,omitempty" example:"9876543210"`
	Role       string `json:"role" example:"student"`
	IsVerified bool   `json:"isVerified" example:"true"`
}

type AuthResponseDTO struct {
	Success bool    `json:"success" example:"true"`
	Message string  `json:"message" example:"Login successful"`
	Token   string  `json:"token"`
	User    UserDTO `json:"user"`
}

type MessageResponseDTO struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"OTP sent"`
}
