package validate

import (
	"testing"

	"github.com/GlebRadaev/projecthub/internal/dto"
	"github.com/GlebRadaev/projecthub/pkg/apperr"
	"github.com/stretchr/testify/assert"
)

func TestStruct(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		message string
	}{
		{
			name:  "Valid OTP request",
			input: dto.VerifyOTPRequestDTO{Email: "asha@example.com", OTP: "123456"},
		},
		{
			name:    "Missing email",
			input:   dto.SendOTPRequestDTO{},
			message: "email is required",
		},
		{
			name:    "Malformed email",
			input:   dto.SendOTPRequestDTO{Email: "asha"},
			message: "email must be a valid email address",
		},
		{
			name:    "Short OTP",
			input:   dto.VerifyOTPRequestDTO{Email: "asha@example.com", OTP: "123"},
			message: "otp must be 6 characters long",
		},
		{
			name:    "Non-numeric OTP",
			input:   dto.VerifyOTPRequestDTO{Email: "asha@example.com", OTP: "12a456"},
			message: "otp must contain digits only",
		},
		{
			name:    "Short password",
			input:   dto.RegisterRequestDTO{Name: "Asha", Email: "asha@example.com", Password: "abc", OTP: "123456"},
			message: "password must be at least 6 characters long",
		},
		{
			name:    "Team without members",
			input:   dto.TeamRequestDTO{TeamName: "Falcons", Members: []dto.TeamMemberDTO{}},
			message: "members must have at least 1 entries",
		},
		{
			name:    "Member without name",
			input:   dto.TeamRequestDTO{TeamName: "Falcons", Members: []dto.TeamMemberDTO{{Email: "ravi@example.com"}}},
			message: "name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.input)
			if tt.message == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, apperr.ErrValidation)
			assert.EqualError(t, err, tt.message)
		})
	}
}
