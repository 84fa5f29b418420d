package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"elearn/backend/internal/service"
	"elearn/backend/pkg/response"
)

// CourseHandler 选课与观看进度 HTTP 处理器
type CourseHandler struct {
	enrollSvc     service.EnrollmentService
	completionSvc service.CompletionService
	progressSvc   service.ProgressService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(
	enrollSvc service.EnrollmentService,
	completionSvc service.CompletionService,
	progressSvc service.ProgressService,
) *CourseHandler {
	return &CourseHandler{
		enrollSvc:     enrollSvc,
		completionSvc: completionSvc,
		progressSvc:   progressSvc,
	}
}

// Enroll 报名课程
// POST /api/v1/courses/:id/enroll
func (h *CourseHandler) Enroll(c *gin.Context) {
	courseID, ok := uuidParam(c, "id", "课程ID")
	if !ok {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	result, err := h.enrollSvc.Enroll(c.Request.Context(), userID, role, courseID)
	if err != nil {
		handleCourseError(c, err)
		return
	}

	response.OK(c, result)
}

// GetProgress 当前用户的课程观看进度
// GET /api/v1/courses/:id/progress
func (h *CourseHandler) GetProgress(c *gin.Context) {
	courseID, ok := uuidParam(c, "id", "课程ID")
	if !ok {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.completionSvc.Progress(c.Request.Context(), userID, courseID)
	if err != nil {
		handleCourseError(c, err)
		return
	}

	response.OK(c, result)
}

// MarkWatched 标记视频已看完
// POST /api/v1/videos/:id/watched
func (h *CourseHandler) MarkWatched(c *gin.Context) {
	videoID, ok := uuidParam(c, "id", "视频ID")
	if !ok {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.progressSvc.MarkWatched(c.Request.Context(), userID, videoID)
	if err != nil {
		handleCourseError(c, err)
		return
	}

	response.OK(c, result)
}

// ListEnrolledCourses 我报名的课程
// GET /api/v1/users/me/courses/enrolled
func (h *CourseHandler) ListEnrolledCourses(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.enrollSvc.ListEnrolledCourses(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKList(c, list)
}

// handleCourseError 实体不存在与选课相关错误映射
func handleCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 20001, "学生不存在")
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 20002, "课程不存在")
	case errors.Is(err, service.ErrVideoNotFound):
		response.NotFound(c, 20008, "视频不存在")
	case errors.Is(err, service.ErrNotStudent):
		response.Forbidden(c, 20009, "仅学生可以报名课程")
	default:
		response.InternalError(c)
	}
}
