package service

import (
	"go.uber.org/zap"

	"elearn/backend/config"
	"elearn/backend/internal/repository"
	"elearn/backend/pkg/render"
	"elearn/backend/pkg/storage"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth        AuthService
	Enrollment  EnrollmentService
	Progress    ProgressService
	Completion  CompletionService
	Certificate CertificateService
}

// NewService 创建 Service 聚合
// blacklist 可为 nil（Redis 未启用时登出不吊销 Token）
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	renderer render.Renderer,
	store storage.Store,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) *Service {
	completion := NewCompletionService(repo, logger)
	return &Service{
		Auth:        NewAuthService(blacklist, logger),
		Enrollment:  NewEnrollmentService(repo, logger),
		Progress:    NewProgressService(repo, logger),
		Completion:  completion,
		Certificate: NewCertificateService(cfg, repo, completion, renderer, store, logger),
	}
}
