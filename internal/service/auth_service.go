package service

import (
	"errors"
	"lms_backend/internal/config"
	"lms_backend/internal/model"
	"lms_backend/internal/repository"
	"lms_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthService struct {
	UserRepo *repository.UserRepository
	Users    *UserService
	Cfg      *config.Config
}

func NewAuthService(userRepo *repository.UserRepository, users *UserService, cfg *config.Config) *AuthService {
	return &AuthService{
		UserRepo: userRepo,
		Users:    users,
		Cfg:      cfg,
	}
}

type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

func (s *AuthService) Register(user *model.User, password, password2 string) error {
	return s.Users.Create(user, password, password2)
}

func (s *AuthService) Login(username, password string) (*model.User, *TokenPair, error) {
	user, err := s.UserRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, util.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, util.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, nil, util.ErrInactiveAccount
	}

	tokens, err := s.issue(user)
	if err != nil {
		return nil, nil, err
	}
	return user, tokens, nil
}

// Refresh exchanges a refresh token for a new access token. The user is
// reloaded so a role change or deactivation takes effect.
func (s *AuthService) Refresh(refreshToken string) (string, error) {
	claims, err := util.ParseJWT(refreshToken, s.Cfg.JWT.Secret)
	if err != nil || claims.TokenType != util.TokenRefresh {
		return "", util.ErrUnauthorized
	}
	user, err := s.UserRepo.FindByID(claims.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", util.ErrUnauthorized
		}
		return "", err
	}
	if !user.IsActive {
		return "", util.ErrInactiveAccount
	}
	return util.GenerateJWT(user, util.TokenAccess, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
}

func (s *AuthService) issue(user *model.User) (*TokenPair, error) {
	access, err := util.GenerateJWT(user, util.TokenAccess, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
	if err != nil {
		return nil, err
	}
	refresh, err := util.GenerateJWT(user, util.TokenRefresh, s.Cfg.JWT.Secret, s.Cfg.JWT.RefreshExpire)
	if err != nil {
		return nil, err
	}
	return &TokenPair{Access: access, Refresh: refresh}, nil
}
