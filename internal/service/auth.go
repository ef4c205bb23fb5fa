package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"assetdesk-backend/internal/apperrors"
	"assetdesk-backend/internal/domain"
	"assetdesk-backend/internal/logger"
	"assetdesk-backend/internal/repository"
	"assetdesk-backend/internal/security"
)

// resetTokenTTL bounds how long a password-reset link stays valid.
const resetTokenTTL = 10 * time.Minute

type authService struct {
	userRepo      repository.UserRepository
	tokens        security.TokenManager
	emailSvc      EmailService
	clientBaseURL string
}

func NewAuthService(userRepo repository.UserRepository, tokens security.TokenManager, emailSvc EmailService, clientBaseURL string) AuthService {
	return &authService{
		userRepo:      userRepo,
		tokens:        tokens,
		emailSvc:      emailSvc,
		clientBaseURL: clientBaseURL,
	}
}

func (s *authService) Register(ctx context.Context, name, email, password, department, phone string) (*domain.User, string, error) {
	if name == "" || email == "" {
		return nil, "", apperrors.Validation("name and email are required")
	}
	if len(password) < 6 {
		return nil, "", apperrors.Validation("password must be at least 6 characters")
	}
	if !domain.ValidDepartment(department) {
		return nil, "", apperrors.Validation("unknown department: %s", department)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	// Self-registration always produces a regular user; role changes go
	// through the admin user management endpoints.
	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         domain.RoleUser,
		Department:   department,
		Phone:        phone,
		Status:       domain.UserStatusActive,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", apperrors.Validation("email is already registered")
		}
		return nil, "", err
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	logger.Info("User registered", "userID", user.ID, "email", user.Email)
	return user, token, nil
}

func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", apperrors.Unauthorized("invalid credentials")
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", apperrors.Unauthorized("invalid credentials")
	}

	if user.Status == domain.UserStatusSuspended {
		return nil, "", apperrors.Forbidden("account is suspended")
	}

	now := time.Now()
	user.LastLogin = &now
	if err := s.userRepo.Update(ctx, user); err != nil {
		// Login still succeeds when the timestamp write fails.
		logger.Warn("Failed to record last login", "userID", user.ID, "error", err)
	}

	token, err := s.tokens.GenerateAccessToken(user.ID, user.Role)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

func (s *authService) GetMe(ctx context.Context, userID int32) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) UpdateDetails(ctx context.Context, userID int32, name, email, department, phone string) (*domain.User, error) {
	user, err := s.GetMe(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name != "" {
		user.Name = name
	}
	if email != "" {
		user.Email = email
	}
	if department != "" {
		if !domain.ValidDepartment(department) {
			return nil, apperrors.Validation("unknown department: %s", department)
		}
		user.Department = department
	}
	if phone != "" {
		user.Phone = phone
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Validation("email is already registered")
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) UpdatePassword(ctx context.Context, userID int32, currentPassword, newPassword string) (string, error) {
	user, err := s.GetMe(ctx, userID)
	if err != nil {
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return "", apperrors.Unauthorized("current password is incorrect")
	}
	if len(newPassword) < 6 {
		return "", apperrors.Validation("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	user.PasswordHash = string(hash)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return "", err
	}

	return s.tokens.GenerateAccessToken(user.ID, user.Role)
}

func (s *authService) VerifyPassword(ctx context.Context, userID int32, password string) error {
	user, err := s.GetMe(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return apperrors.Unauthorized("password is incorrect")
	}
	return nil
}

func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("there is no user with that email")
		}
		return err
	}

	token, digest := security.NewResetToken()
	expire := time.Now().Add(resetTokenTTL)
	user.ResetPasswordToken = digest
	user.ResetPasswordExpire = &expire
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", s.clientBaseURL, token)
	if err := s.emailSvc.SendPasswordReset(ctx, user.Email, user.Name, resetURL); err != nil {
		// The token is useless if the mail never went out, so roll it
		// back before reporting the failure.
		user.ResetPasswordToken = ""
		user.ResetPasswordExpire = nil
		if clearErr := s.userRepo.Update(ctx, user); clearErr != nil {
			logger.Error("Failed to clear reset token", "userID", user.ID, "error", clearErr)
		}
		return apperrors.Dependency("email could not be sent")
	}
	return nil
}

func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) (string, error) {
	user, err := s.userRepo.GetByResetToken(ctx, security.HashResetToken(token), time.Now())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", apperrors.Validation("invalid or expired reset token")
		}
		return "", err
	}
	if len(newPassword) < 6 {
		return "", apperrors.Validation("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	user.PasswordHash = string(hash)
	user.ResetPasswordToken = ""
	user.ResetPasswordExpire = nil
	if err := s.userRepo.Update(ctx, user); err != nil {
		return "", err
	}

	logger.Info("Password reset completed", "userID", user.ID)
	return s.tokens.GenerateAccessToken(user.ID, user.Role)
}
