package auth

import (
	"context"
	"net/http"

	"github.com/GlebRadaev/projecthub/internal/domain"
	"github.com/GlebRadaev/projecthub/internal/dto"
	"github.com/GlebRadaev/projecthub/internal/service/authservice"
	pkgauth "github.com/GlebRadaev/projecthub/pkg/auth"
	"github.com/GlebRadaev/projecthub/pkg/utils"
	"github.com/GlebRadaev/projecthub/pkg/validate"
)

type Service interface {
	SendOTP(ctx context.Context, email string) error
	VerifyOTP(ctx context.Context, email, code string) error
	Register(ctx context.Context, in authservice.RegisterInput) (*domain.User, error)
	Authenticate(ctx context.Context, email, password, role string) (*domain.User, error)
	GenerateToken(userID int) (string, error)
	Profile(ctx context.Context, userID int) (*domain.User, error)
}

type AuthHandler struct {
	authService Service
}

func New(authService Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

func toUserDTO(u *domain.User) dto.UserDTO {
	return dto.UserDTO{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		Phone:      u.Phone,
		Role:       u.Role,
		IsVerified: u.IsVerified,
	}
}

func (h *AuthHandler) respondWithToken(w http.ResponseWriter, user *domain.User, message string) {
	token, err := h.authService.GenerateToken(user.ID)
	if err != nil {
		utils.RespondWithError(w, http.StatusInternalServerError, "Error generating token")
		return
	}
	w.Header().Set("Authorization", "Bearer "+token)
	utils.RespondWithJSON(w, http.StatusOK, dto.AuthResponseDTO{
		Success: true,
		Message: message,
		Token:   token,
		User:    toUserDTO(user),
	})
}

// SendOTP godoc
//
//	@Summary		Send a registration OTP
//	@Description	Email a 6-digit code that is valid for a few minutes
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.SendOTPRequestDTO	true	"Email to verify"
//	@Success		200		{object}	dto.MessageResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid email or already registered"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/users/send-otp [post]
func (h *AuthHandler) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req dto.SendOTPRequestDTO
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	if err := h.authService.SendOTP(r.Context(), req.Email); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.MessageResponseDTO{Success: true, Message: "OTP sent to your email"})
}

// VerifyOTP godoc
//
//	@Summary		Verify an OTP
//	@Description	Consume an OTP without registering
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.VerifyOTPRequestDTO	true	"Email and code"
//	@Success		200		{object}	dto.MessageResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid or expired OTP"
//	@Router			/api/users/verify-otp [post]
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyOTPRequestDTO
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	if err := h.authService.VerifyOTP(r.Context(), req.Email, req.OTP); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dto.MessageResponseDTO{Success: true, Message: "OTP verified"})
}

// Register godoc
//
//	@Summary		Register a new student
//	@Description	Create a verified student account using the OTP sent to the email
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.RegisterRequestDTO	true	"Register request body"
//	@Success		200		{object}	dto.AuthResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid body, email taken or bad OTP"
//	@Failure		500		{object}	utils.Response	"Internal server error"
//	@Router			/api/users/register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequestDTO
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	user, err := h.authService.Register(r.Context(), authservice.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
		OTP:      req.OTP,
	})
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	h.respondWithToken(w, user, "User successfully registered")
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, role string) {
	var req dto.LoginRequestDTO
	if err := utils.DecodeJSON(r, &req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	if err := validate.Struct(req); err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	user, err := h.authService.Authenticate(r.Context(), req.Email, req.Password, role)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	h.respondWithToken(w, user, "Login successful")
}

// Login godoc
//
//	@Summary		Authenticate a student
//	@Tags			Users
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.LoginRequestDTO	true	"Login request body"
//	@Success		200		{object}	dto.AuthResponseDTO
//	@Failure		400		{object}	utils.Response	"Invalid request body"
//	@Failure		401		{object}	utils.Response	"Invalid credentials"
//	@Router			/api/users/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, domain.RoleStudent)
}

// AdminLogin godoc
//
//	@Summary		Authenticate an administrator
//	@Tags			Admin
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.LoginRequestDTO	true	"Login request body"
//	@Success		200		{object}	dto.AuthResponseDTO
//	@Failure		401		{object}	utils.Response	"Invalid credentials"
//	@Router			/api/admin/login [post]
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	h.login(w, r, domain.RoleAdmin)
}

// Me godoc
//
//	@Summary		Current user profile
//	@Tags			Users
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	dto.UserDTO
//	@Failure		401	{object}	utils.Response	"User not authorized"
//	@Router			/api/users/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, _ := pkgauth.UserID(r.Context())
	user, err := h.authService.Profile(r.Context(), userID)
	if err != nil {
		utils.RespondWithAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, toUserDTO(user))
}
