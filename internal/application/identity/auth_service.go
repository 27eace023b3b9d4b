package identity

import (
	"context"

	"github.com/edupay/backend/internal/domain/identity"
	"github.com/edupay/backend/internal/domain/school"
	"github.com/edupay/backend/internal/domain/shared"
	"github.com/edupay/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthService handles authentication operations
type AuthService struct {
	userRepo    identity.UserRepository
	studentRepo school.StudentRepository
	jwtService  *auth.JWTService
	log         *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	studentRepo school.StudentRepository,
	jwtService *auth.JWTService,
	log *zap.Logger,
) *AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AuthService{
		userRepo:    userRepo,
		studentRepo: studentRepo,
		jwtService:  jwtService,
		log:         log,
	}
}

// Login authenticates a user and returns a token pair. Failed lookups
// and wrong passwords return the same error so usernames cannot be
// probed.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.log.Warn("Login attempt for unknown username", zap.String("username", req.Username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	if !user.IsActive() {
		s.log.Warn("Login attempt for deactivated account", zap.String("username", req.Username))
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	if !user.VerifyPassword(req.Password) {
		s.log.Warn("Invalid password attempt", zap.String("username", req.Username))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")
	}

	ownerAdminID, err := s.resolveOwnerAdmin(ctx, user)
	if err != nil {
		return nil, err
	}

	pair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID:       user.ID,
		Username:     user.Username,
		Role:         string(user.Role),
		OwnerAdminID: ownerAdminID,
	})
	if err != nil {
		s.log.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	user.RecordLoginSuccess()
	if err := s.userRepo.Save(ctx, user); err != nil {
		// don't fail the login over a bookkeeping write
		s.log.Error("Failed to record login timestamp", zap.Error(err))
	}

	s.log.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	return &LoginResponse{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User: UserInfo{
			ID:                 user.ID,
			Username:           user.Username,
			Role:               string(user.Role),
			MustChangePassword: user.MustChangePassword,
		},
	}, nil
}

// RefreshToken exchanges a valid refresh token for a new pair
func (s *AuthService) RefreshToken(ctx context.Context, req RefreshTokenRequest) (*LoginResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, mapTokenError(err)
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid user ID in token")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "User no longer exists")
	}
	if !user.IsActive() {
		return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
	}

	ownerAdminID, err := s.resolveOwnerAdmin(ctx, user)
	if err != nil {
		return nil, err
	}

	pair, err := s.jwtService.RefreshTokenPair(req.RefreshToken, user.Username, string(user.Role), ownerAdminID)
	if err != nil {
		return nil, mapTokenError(err)
	}

	return &LoginResponse{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
		User: UserInfo{
			ID:                 user.ID,
			Username:           user.Username,
			Role:               string(user.Role),
			MustChangePassword: user.MustChangePassword,
		},
	}, nil
}

// ChangePassword changes a user's password after verifying the old one
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, req ChangePasswordRequest) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return shared.ErrNotFound
	}

	if err := user.ChangePassword(req.OldPassword, req.NewPassword); err != nil {
		return err
	}

	if err := s.userRepo.SaveWithLock(ctx, user); err != nil {
		return err
	}

	s.log.Info("Password changed", zap.String("user_id", userID.String()))
	return nil
}

// resolveOwnerAdmin determines the tenant for token claims: admins own
// themselves, students belong to the admin who enrolled them.
func (s *AuthService) resolveOwnerAdmin(ctx context.Context, user *identity.User) (uuid.UUID, error) {
	if user.IsAdmin() {
		return user.ID, nil
	}

	student, err := s.studentRepo.FindByUserID(ctx, user.ID)
	if err != nil {
		return uuid.Nil, err
	}
	if student == nil {
		s.log.Error("Portal account has no student record", zap.String("user_id", user.ID.String()))
		return uuid.Nil, shared.NewDomainError("INTERNAL_ERROR", "Portal account is not linked to a student")
	}
	return student.OwnerAdminID, nil
}

func mapTokenError(err error) error {
	switch err {
	case auth.ErrExpiredToken:
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case auth.ErrMaxRefreshExceeded:
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	default:
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}
}
