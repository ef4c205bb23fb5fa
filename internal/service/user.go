package service

import (
	"context"
	"database/sql"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"assetdesk-backend/internal/apperrors"
	"assetdesk-backend/internal/domain"
	"assetdesk-backend/internal/logger"
	"assetdesk-backend/internal/repository"
)

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) CreateUser(ctx context.Context, name, email, password string, role domain.Role, department, phone string) (*domain.User, error) {
	if name == "" || email == "" {
		return nil, apperrors.Validation("name and email are required")
	}
	if len(password) < 6 {
		return nil, apperrors.Validation("password must be at least 6 characters")
	}
	if role == "" {
		role = domain.RoleUser
	}
	if !role.Valid() {
		return nil, apperrors.Validation("unknown role: %s", role)
	}
	if !domain.ValidDepartment(department) {
		return nil, apperrors.Validation("unknown department: %s", department)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Department:   department,
		Phone:        phone,
		Status:       domain.UserStatusActive,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Validation("email is already registered")
		}
		return nil, err
	}
	logger.Info("User created", "userID", user.ID, "role", user.Role)
	return user, nil
}

func (s *userService) GetUser(ctx context.Context, id int32) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("user not found")
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, role domain.Role, department string) ([]domain.User, error) {
	switch {
	case role != "":
		if !role.Valid() {
			return nil, apperrors.Validation("unknown role: %s", role)
		}
		return s.userRepo.ListByRole(ctx, role)
	case department != "":
		return s.userRepo.ListByDepartment(ctx, department)
	default:
		return s.userRepo.List(ctx)
	}
}

func (s *userService) UpdateUser(ctx context.Context, id int32, update UserUpdate) (*domain.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		user.Name = *update.Name
	}
	if update.Email != nil {
		user.Email = *update.Email
	}
	if update.Role != nil {
		if !update.Role.Valid() {
			return nil, apperrors.Validation("unknown role: %s", *update.Role)
		}
		user.Role = *update.Role
	}
	if update.Department != nil {
		if !domain.ValidDepartment(*update.Department) {
			return nil, apperrors.Validation("unknown department: %s", *update.Department)
		}
		user.Department = *update.Department
	}
	if update.Phone != nil {
		user.Phone = *update.Phone
	}
	if update.Status != nil {
		switch *update.Status {
		case domain.UserStatusActive, domain.UserStatusSuspended, domain.UserStatusPending:
			user.Status = *update.Status
		default:
			return nil, apperrors.Validation("unknown status: %s", *update.Status)
		}
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Validation("email is already registered")
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, actorID, id int32) error {
	if actorID == id {
		return apperrors.Validation("you cannot delete your own account")
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apperrors.NotFound("user not found")
		}
		return err
	}
	logger.Info("User deleted", "userID", id, "actorID", actorID)
	return nil
}

func (s *userService) GetUserStats(ctx context.Context) (*domain.UserStats, error) {
	return s.userRepo.Stats(ctx)
}
