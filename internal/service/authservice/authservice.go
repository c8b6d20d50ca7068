package authservice

import (
	"context"
	"strings"
	"time"

	"github.com/GlebRadaev/projecthub/internal/domain"
	"github.com/GlebRadaev/projecthub/internal/notify"
	"github.com/GlebRadaev/projecthub/internal/otp"
	"github.com/GlebRadaev/projecthub/pkg/apperr"
	"github.com/GlebRadaev/projecthub/pkg/auth"
	"go.uber.org/zap"
)

type Repo interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id int) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

type OTPStore interface {
	Put(ctx context.Context, email, code string, ttl time.Duration) error
	Consume(ctx context.Context, email, code string) (bool, error)
}

type Notifier interface {
	Send(ctx context.Context, msg notify.Message) error
}

type Service struct {
	userRepo    Repo
	otpStore    OTPStore
	notifier    Notifier
	hashService auth.HashServiceInterface
	jwtService  auth.JWTServiceInterface
	tokenTTL    time.Duration
	otpTTL      time.Duration
	generateOTP func() (string, error)
}

func New(repo Repo, otpStore OTPStore, notifier Notifier, hashService auth.HashServiceInterface, jwtService auth.JWTServiceInterface, tokenTTL, otpTTL time.Duration) *Service {
	return &Service{
		userRepo:    repo,
		otpStore:    otpStore,
		notifier:    notifier,
		hashService: hashService,
		jwtService:  jwtService,
		tokenTTL:    tokenTTL,
		otpTTL:      otpTTL,
		generateOTP: otp.Generate,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	OTP      string
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Service) SendOTP(ctx context.Context, email string) error {
	email = normalizeEmail(email)
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		zap.L().Error("can't find user: ", zap.Error(err))
		return err
	}
	if existing != nil {
		return apperr.Validation("Email is already registered")
	}

	code, err := s.generateOTP()
	if err != nil {
		zap.L().Error("can't generate otp", zap.Error(err))
		return err
	}
	if err := s.otpStore.Put(ctx, email, code, s.otpTTL); err != nil {
		return err
	}
	if err := s.notifier.Send(ctx, notify.OTP(email, code, s.otpTTL)); err != nil {
		return err
	}
	zap.L().Info("otp sent", zap.String("email", email))
	return nil
}

func (s *Service) VerifyOTP(ctx context.Context, email, code string) error {
	ok, err := s.otpStore.Consume(ctx, normalizeEmail(email), code)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Validation("Invalid or expired OTP")
	}
	return nil
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := normalizeEmail(in.Email)
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		zap.L().Error("can't find user: ", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		zap.L().Info("user already exists", zap.String("email", email))
		return nil, apperr.Validation("User already exists")
	}

	if err := s.VerifyOTP(ctx, email, in.OTP); err != nil {
		return nil, err
	}

	hashedPassword, err := s.hashService.HashPassword(in.Password)
	if err != nil {
		zap.L().Error("can't hash password: ", zap.Error(err))
		return nil, err
	}
	user := &domain.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		Phone:        strings.TrimSpace(in.Phone),
		PasswordHash: hashedPassword,
		Role:         domain.RoleStudent,
		IsVerified:   true,
	}
	newUser, err := s.userRepo.Create(ctx, user)
	if err != nil {
		zap.L().Error("can't create user: ", zap.Error(err))
		return nil, err
	}

	zap.L().Info("user successfully registered", zap.String("email", email))
	return newUser, nil
}

// Authenticate checks the credentials of a user holding role.
func (s *Service) Authenticate(ctx context.Context, email, password, role string) (*domain.User, error) {
	user, err := s.userRepo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		zap.L().Error("can't find user: ", zap.Error(err))
		return nil, err
	}
	if user == nil || user.Role != role || !s.hashService.ComparePassword(user.PasswordHash, password) {
		zap.L().Info("invalid credentials", zap.String("email", email), zap.String("role", role))
		return nil, apperr.Unauthorized("Invalid credentials")
	}
	zap.L().Info("user successfully authenticated", zap.String("email", user.Email))
	return user, nil
}

func (s *Service) GenerateToken(userID int) (string, error) {
	token, err := s.jwtService.GenerateJWT(userID, time.Now().Add(s.tokenTTL))
	if err != nil {
		zap.L().Error("can't generate token: ", zap.Error(err))
		return "", err
	}
	return token, nil
}

func (s *Service) Profile(ctx context.Context, userID int) (*domain.User, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.NotFound("User not found")
	}
	return user, nil
}

// UserRole backs the per-request role check. A vanished user is unauthorized.
func (s *Service) UserRole(ctx context.Context, userID int) (string, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", apperr.Unauthorized("User not found")
	}
	return user.Role, nil
}

// EnsureAdmin creates the bootstrap admin account if it does not exist yet.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" {
		return nil
	}
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	hashedPassword, err := s.hashService.HashPassword(password)
	if err != nil {
		zap.L().Error("can't hash admin password", zap.Error(err))
		return err
	}
	_, err = s.userRepo.Create(ctx, &domain.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hashedPassword,
		Role:         domain.RoleAdmin,
		IsVerified:   true,
	})
	if err != nil {
		return err
	}
	zap.L().Info("admin account created", zap.String("email", email))
	return nil
}
