package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"kyc_arena/internal/domain"
	"kyc_arena/internal/utils"

	"gorm.io/gorm"
)

// Messages shown to clients on login failures.
const (
	MsgInvalidCredentials = "Invalid username or password"
	MsgBanned             = "You have been banned from using this platform"
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]{3,32}$`)

// normalizeUsername lower-cases the username so lookups are case-insensitive
func normalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func validatePassword(password string) error {
	if len(password) < 4 {
		return validation("Password must be at least 4 characters")
	}
	if len(password) > 72 {
		return validation("Password must be at most 72 bytes")
	}
	return nil
}

// NewUser describes an account to create.
type NewUser struct {
	Username string
	Password string
	Role     string
	Approved bool
}

// CreateUser inserts a user together with its empty stats row.
func (s *Service) CreateUser(ctx context.Context, in NewUser) (*domain.User, error) {
	if !usernamePattern.MatchString(strings.TrimSpace(in.Username)) {
		return nil, validation("Username must be 3-32 letters, digits, '.', '_' or '-'")
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}
	role := in.Role
	if role == "" {
		role = domain.RoleUser
	}
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return nil, validation("Role must be user or admin")
	}

	username := normalizeUsername(in.Username)
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if count > 0 {
		return nil, validation("Username already exists")
	}

	hash, err := utils.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := domain.User{
		Username:   username,
		Password:   hash,
		Role:       role,
		IsApproved: in.Approved,
		IsEnabled:  true,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			return err
		}
		return tx.Create(&domain.UserStats{UserID: user.ID}).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, validation("Username already exists")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// Register creates a regular, not yet approved account.
func (s *Service) Register(ctx context.Context, username, password string) (*domain.User, error) {
	return s.CreateUser(ctx, NewUser{Username: username, Password: password, Role: domain.RoleUser})
}

// Authenticate checks credentials and refuses disabled accounts.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.GetUserByUsername(ctx, username)
	if errors.Is(err, ErrNotFound) {
		return nil, unauthenticated(MsgInvalidCredentials)
	}
	if err != nil {
		return nil, err
	}
	if !utils.CheckPassword(user.Password, password) {
		return nil, unauthenticated(MsgInvalidCredentials)
	}
	if !user.IsEnabled {
		return nil, unauthenticated(MsgBanned)
	}
	return user, nil
}

// GetUser loads a user by id.
func (s *Service) GetUser(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// GetUserByUsername loads a user by (case-insensitive) username.
func (s *Service) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	err := s.db.WithContext(ctx).Where("username = ?", normalizeUsername(username)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("User not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// ListUsers returns every account, newest first.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := s.db.WithContext(ctx).Order("created_at desc, id desc").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// adminTarget loads the account an admin acts on and refuses self-targeting.
func (s *Service) adminTarget(ctx context.Context, actor *domain.User, id uint, selfMsg string) (*domain.User, error) {
	if actor.ID == id {
		return nil, validation(selfMsg)
	}
	return s.GetUser(ctx, id)
}

// ApproveUser lets a user start submitting.
func (s *Service) ApproveUser(ctx context.Context, actor *domain.User, id uint) (*domain.User, error) {
	user, err := s.adminTarget(ctx, actor, id, "Cannot approve your own account")
	if err != nil {
		return nil, err
	}
	user.IsApproved = true
	if err := s.db.WithContext(ctx).Model(user).Update("is_approved", true).Error; err != nil {
		return nil, fmt.Errorf("failed to approve user: %w", err)
	}
	return user, nil
}

// ToggleUserEnabled bans or unbans a user. Banning ends the user's sessions.
func (s *Service) ToggleUserEnabled(ctx context.Context, actor *domain.User, id uint) (*domain.User, error) {
	user, err := s.adminTarget(ctx, actor, id, "Cannot disable your own account")
	if err != nil {
		return nil, err
	}
	user.IsEnabled = !user.IsEnabled
	if err := s.db.WithContext(ctx).Model(user).Update("is_enabled", user.IsEnabled).Error; err != nil {
		return nil, fmt.Errorf("failed to toggle user: %w", err)
	}
	if !user.IsEnabled {
		if err := s.revokeSessions(ctx, user.ID); err != nil {
			return nil, err
		}
	}
	return user, nil
}

// ResetUserPassword sets a new password and ends the user's sessions.
func (s *Service) ResetUserPassword(ctx context.Context, actor *domain.User, id uint, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	user, err := s.adminTarget(ctx, actor, id, "Cannot reset your own password here")
	if err != nil {
		return err
	}
	return s.setPassword(ctx, user, newPassword)
}

func (s *Service) setPassword(ctx context.Context, user *domain.User, password string) error {
	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(user).Update("password", hash).Error; err != nil {
		return fmt.Errorf("failed to reset password: %w", err)
	}
	user.Password = hash
	return s.revokeSessions(ctx, user.ID)
}

// DeleteUser removes a user with their notifications, submissions and stats.
func (s *Service) DeleteUser(ctx context.Context, actor *domain.User, id uint) error {
	if actor.ID == id {
		return validation("Cannot delete your own account")
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&domain.Notification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&domain.Submission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&domain.UserStats{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&domain.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFound("User not found")
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	s.forgetStats(ctx, id)
	return s.revokeSessions(ctx, id)
}

// PromoteToAdmin makes an existing account an approved, enabled admin and
// optionally sets a new password.
func (s *Service) PromoteToAdmin(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if password != "" {
		if err := validatePassword(password); err != nil {
			return nil, err
		}
		if err := s.setPassword(ctx, user, password); err != nil {
			return nil, err
		}
	}
	user.Role = domain.RoleAdmin
	user.IsApproved = true
	user.IsEnabled = true
	err = s.db.WithContext(ctx).Model(user).Updates(map[string]any{
		"role":        user.Role,
		"is_approved": true,
		"is_enabled":  true,
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to promote user: %w", err)
	}
	return user, nil
}

// GetStats returns the user's ledger row, creating an empty one if needed.
func (s *Service) GetStats(ctx context.Context, userID uint) (*domain.UserStats, error) {
	var st domain.UserStats
	key := s.statsCacheKey(ctx, userID)
	if found, err := s.cache.Get(ctx, key, &st); err == nil && found {
		return &st, nil
	}
	err := s.db.WithContext(ctx).Where(domain.UserStats{UserID: userID}).FirstOrCreate(&st).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	_ = s.cache.Set(ctx, key, st)
	return &st, nil
}
