package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"elearn/backend/internal/dto"
	"elearn/backend/internal/service"
	"elearn/backend/pkg/response"
)

// CertificateHandler 证书模块 HTTP 处理器
type CertificateHandler struct {
	certSvc service.CertificateService
}

// NewCertificateHandler 创建 CertificateHandler
func NewCertificateHandler(certSvc service.CertificateService) *CertificateHandler {
	return &CertificateHandler{certSvc: certSvc}
}

// Issue 完成课程并签发证书
// POST /api/v1/courses/:id/certificate
func (h *CertificateHandler) Issue(c *gin.Context) {
	courseID, ok := uuidParam(c, "id", "课程ID")
	if !ok {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	cert, err := h.certSvc.Issue(c.Request.Context(), userID, courseID)
	if err != nil {
		h.handleCertificateError(c, err)
		return
	}

	response.OK(c, cert)
}

// GetCertificate 证书详情
// GET /api/v1/certificates/:id
func (h *CertificateHandler) GetCertificate(c *gin.Context) {
	id, ok := uuidParam(c, "id", "证书ID")
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

	cert, err := h.certSvc.Get(c.Request.Context(), userID, role, id)
	if err != nil {
		h.handleCertificateError(c, err)
		return
	}

	response.OK(c, cert)
}

// Download 下载证书文件
// GET /api/v1/certificates/:id/download
func (h *CertificateHandler) Download(c *gin.Context) {
	id, ok := uuidParam(c, "id", "证书ID")
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

	file, err := h.certSvc.Download(c.Request.Context(), userID, role, id)
	if err != nil {
		h.handleCertificateError(c, err)
		return
	}

	response.File(c, file.Filename, file.ContentType, file.Data)
}

// ListMyCertificates 我的证书
// GET /api/v1/users/me/certificates
func (h *CertificateHandler) ListMyCertificates(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.certSvc.ListForStudent(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKList(c, list)
}

// Upload 管理员上传外部证书（multipart: user_id, course_id, file）
// POST /api/v1/certificates/upload
func (h *CertificateHandler) Upload(c *gin.Context) {
	var req dto.UploadCertificateRequest
	if err := c.ShouldBind(&req); err != nil {
		bindError(c, err)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "缺少证书文件")
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, 10001, "读取证书文件失败")
		return
	}
	defer f.Close()

	req.Data, err = io.ReadAll(f)
	if err != nil {
		response.BadRequest(c, 10001, "读取证书文件失败")
		return
	}

	cert, err := h.certSvc.Upload(c.Request.Context(), &req)
	if err != nil {
		h.handleCertificateError(c, err)
		return
	}

	response.Created(c, cert)
}

func (h *CertificateHandler) handleCertificateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCertificateNotFound):
		response.NotFound(c, 20007, "证书不存在")
	case errors.Is(err, service.ErrNotEnrolled):
		response.Forbidden(c, 20003, "未报名该课程")
	case errors.Is(err, service.ErrIncompleteCourse):
		response.Forbidden(c, 20004, "尚未看完全部课程视频")
	case errors.Is(err, service.ErrRenderFailed):
		response.Error(c, http.StatusInternalServerError, 20005, "证书生成失败")
	case errors.Is(err, service.ErrStorageFailed):
		response.Error(c, http.StatusInternalServerError, 20006, "证书保存失败")
	case errors.Is(err, service.ErrInvalidUpload):
		response.BadRequest(c, 20010, "上传文件必须是 PDF")
	default:
		handleCourseError(c, err)
	}
}
