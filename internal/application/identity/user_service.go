package identity

import (
	"context"

	"github.com/crm/backend/internal/domain/identity"
	"github.com/crm/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// UserService manages CRM users
type UserService struct {
	userRepo identity.UserRepository
	logger   *zap.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo identity.UserRepository, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{userRepo: userRepo, logger: logger}
}

// Create adds a user; emails are unique across tenants
func (s *UserService) Create(ctx context.Context, input CreateUserInput) (*UserInfo, error) {
	user, err := identity.NewUser(input.TenantID, input.Email, input.DisplayName, input.Password, identity.Role(input.Role))
	if err != nil {
		return nil, err
	}

	existing, err := s.userRepo.FindByEmail(ctx, user.Email)
	switch {
	case err == nil && existing != nil:
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A user with this email already exists")
	case err != nil && !shared.IsNotFound(err):
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.logger.Info("User created",
		zap.String("user_id", user.ID.String()),
		zap.String("tenant_id", user.TenantID.String()),
		zap.String("role", string(user.Role)))

	info := ToUserInfo(user)
	return &info, nil
}
