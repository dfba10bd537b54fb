package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/dto"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/model"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/internal/repository"
	"github.com/IamAshrafee/Employee-Tracker-AttendanceFocused/pkg/jwt"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrDeviceMismatch     = errors.New("logged in from another device")
)

// AuthService 认证业务接口（单设备会话）
type AuthService interface {
	Login(ctx context.Context, req *dto.LoginRequest, ip string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, userID, deviceID, jti string, exp time.Time) error
	// CheckSession 校验 Token 中的设备是否仍为用户当前登录设备，且账号未被锁定
	CheckSession(ctx context.Context, userID, deviceID string) error
	Me(ctx context.Context, userID string) (*dto.UserResponse, error)
}

type authService struct {
	repo   *repository.Repository
	jwtMgr *jwt.Manager
	tokens TokenBlacklist
	tl     timeline
	logger *zap.Logger
}

// NewAuthService 创建 AuthService 实例；tokens 为 nil 时注销不写黑名单
func NewAuthService(
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	tokens TokenBlacklist,
	tl timeline,
	logger *zap.Logger,
) AuthService {
	return &authService{
		repo:   repo,
		jwtMgr: jwtMgr,
		tokens: tokens,
		tl:     tl,
		logger: logger,
	}
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest, ip string) (*dto.TokenResponse, error) {
	// 1. 查询用户
	user, err := s.repo.User.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	// 2. 验证密码 (bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 3. 账号状态
	switch user.Status {
	case model.UserStatusLocked:
		return nil, lockedError(user)
	case model.UserStatusInactive:
		return nil, ErrAccountInactive
	}

	// 4. 新设备顶替旧设备
	deviceID := uuid.New().String()
	previous := user.DeviceID
	err = withTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		if previous != nil && *previous != "" {
			if err := txRepo.LoginHistory.Create(ctx, s.history(user.UserID, model.LoginActionForceLogout, *previous, nil, ip)); err != nil {
				return err
			}
		}
		if err := txRepo.User.SetDevice(ctx, user.UserID, &deviceID); err != nil {
			return err
		}
		return txRepo.LoginHistory.Create(ctx, s.history(user.UserID, model.LoginActionLogin, deviceID, &req.DeviceInfo, ip))
	})
	if err != nil {
		s.logger.Error("记录登录设备失败", zap.String("user_id", user.UserID), zap.Error(err))
		return nil, err
	}
	user.DeviceID = &deviceID

	// 5. 签发 Token
	teamID := ""
	if user.TeamID != nil {
		teamID = *user.TeamID
	}
	accessToken, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Role, teamID, deviceID)
	if err != nil {
		s.logger.Error("生成 AccessToken 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		AccessToken: accessToken,
		ExpiresIn:   int(s.jwtMgr.AccessTokenTTL().Seconds()),
		DeviceID:    deviceID,
		User:        toUserResponse(user),
	}, nil
}

func (s *authService) history(userID, action, deviceID string, info *string, ip string) *model.LoginHistory {
	h := &model.LoginHistory{
		UserID:    userID,
		Action:    action,
		DeviceID:  deviceID,
		CreatedAt: s.tl.Now(),
	}
	if info != nil && *info != "" {
		h.DeviceInfo = info
	}
	if ip != "" {
		h.IPAddress = &ip
	}
	return h
}

// Logout 仅当 Token 设备仍是当前设备时才清空设备绑定，旧设备注销不影响新会话
func (s *authService) Logout(ctx context.Context, userID, deviceID, jti string, exp time.Time) error {
	user, err := getUser(ctx, s.repo, s.logger, userID)
	if err != nil {
		return err
	}

	err = withTx(ctx, s.repo, s.logger, func(txRepo *repository.Repository) error {
		if user.DeviceID != nil && *user.DeviceID == deviceID {
			if err := txRepo.User.SetDevice(ctx, userID, nil); err != nil {
				return err
			}
		}
		return txRepo.LoginHistory.Create(ctx, s.history(userID, model.LoginActionLogout, deviceID, nil, ""))
	})
	if err != nil {
		s.logger.Error("注销失败", zap.String("user_id", userID), zap.Error(err))
		return err
	}

	if s.tokens != nil && jti != "" {
		if err := s.tokens.BlacklistToken(ctx, jti, time.Until(exp)); err != nil {
			s.logger.Warn("Token 加入黑名单失败", zap.String("jti", jti), zap.Error(err))
		}
	}
	return nil
}

func (s *authService) CheckSession(ctx context.Context, userID, deviceID string) error {
	user, err := getUser(ctx, s.repo, s.logger, userID)
	if err != nil {
		return err
	}
	if user.DeviceID == nil || *user.DeviceID != deviceID {
		return ErrDeviceMismatch
	}
	if user.IsLocked() {
		return lockedError(user)
	}
	return nil
}

func (s *authService) Me(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := getUser(ctx, s.repo, s.logger, userID)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
