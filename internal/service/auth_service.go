package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// TokenBlacklist Token 吊销存储（由 Redis 实现）
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthService 认证业务接口
// 登录与签发 Token 由身份子系统负责，这里只处理吊销
type AuthService interface {
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
}

type authService struct {
	blacklist TokenBlacklist
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuthService 创建 AuthService 实例；blacklist 为 nil 时登出只记录日志
func NewAuthService(blacklist TokenBlacklist, logger *zap.Logger) AuthService {
	return &authService{blacklist: blacklist, logger: logger, now: time.Now}
}

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.blacklist == nil {
		s.logger.Warn("Redis 未启用，Token 无法吊销", zap.String("jti", jti))
		return nil
	}
	if jti == "" {
		return nil
	}

	// TTL 与 Token 剩余有效期一致，过期后黑名单自动清理
	if err := s.blacklist.BlacklistToken(ctx, jti, expiresAt.Sub(s.now())); err != nil {
		s.logger.Error("Token 加入黑名单失败", zap.String("jti", jti), zap.Error(err))
		return err
	}
	return nil
}
