package handler

import "elearn/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth        *AuthHandler
	Course      *CourseHandler
	Certificate *CertificateHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(svc.Auth),
		Course:      NewCourseHandler(svc.Enrollment, svc.Completion, svc.Progress),
		Certificate: NewCertificateHandler(svc.Certificate),
	}
}
