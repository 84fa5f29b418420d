package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"elearn/backend/config"
	"elearn/backend/internal/dto"
	"elearn/backend/internal/model"
	"elearn/backend/internal/repository"
	pkgerrors "elearn/backend/pkg/errors"
	"elearn/backend/pkg/render"
	"elearn/backend/pkg/storage"
)

// ── 证书模块业务错误 ──

var (
	ErrCertificateNotFound = errors.New("证书不存在")
	ErrNotEnrolled         = errors.New("未报名该课程")
	ErrIncompleteCourse    = errors.New("尚未看完全部课程视频")
	ErrRenderFailed        = errors.New("证书生成失败")
	ErrStorageFailed       = errors.New("证书保存失败")
	ErrInvalidUpload       = errors.New("上传文件必须是 PDF")
)

const (
	pdfContentType = "application/pdf"
	pdfExt         = ".pdf"
)

// ArtifactKey 证书文件的存储路径，只由 (学生, 课程) 与文件格式决定
// 同格式重复签发覆盖同一文件；格式切换时由 removeStale 清理另一格式的旧文件
func ArtifactKey(studentID, courseID, ext string) string {
	return fmt.Sprintf("certificates/%s/%s%s", studentID, courseID, ext)
}

// CertificateService 证书业务接口
type CertificateService interface {
	// Issue 校验完成条件后生成证书文件并落库；重复调用刷新同一证书
	Issue(ctx context.Context, studentID, courseID string) (*dto.CertificateResponse, error)
	Get(ctx context.Context, callerID, callerRole, certificateID string) (*dto.CertificateResponse, error)
	Download(ctx context.Context, callerID, callerRole, certificateID string) (*dto.CertificateFile, error)
	ListForStudent(ctx context.Context, studentID string) ([]dto.CertificateListItem, error)
	// Upload 管理员上传外部 PDF 证书，不做完成度校验
	Upload(ctx context.Context, req *dto.UploadCertificateRequest) (*dto.CertificateResponse, error)
}

type certificateService struct {
	cfg        *config.Config
	repo       *repository.Repository
	completion CompletionService
	renderer   render.Renderer
	store      storage.Store
	logger     *zap.Logger

	group singleflight.Group
	now   func() time.Time
}

// NewCertificateService 创建 CertificateService 实例
func NewCertificateService(
	cfg *config.Config,
	repo *repository.Repository,
	completion CompletionService,
	renderer render.Renderer,
	store storage.Store,
	logger *zap.Logger,
) CertificateService {
	return &certificateService{
		cfg:        cfg,
		repo:       repo,
		completion: completion,
		renderer:   renderer,
		store:      store,
		logger:     logger,
		now:        time.Now,
	}
}

// ────── Issue ──────

func (s *certificateService) Issue(ctx context.Context, studentID, courseID string) (*dto.CertificateResponse, error) {
	// 同进程内同一 (学生, 课程) 的并发签发合并为一次；跨进程由唯一索引 + 原子 upsert 保证
	// 共享执行不随首个调用方取消而中断
	v, err, _ := s.group.Do(studentID+"/"+courseID, func() (interface{}, error) {
		return s.issue(context.WithoutCancel(ctx), studentID, courseID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*dto.CertificateResponse), nil
}

func (s *certificateService) issue(ctx context.Context, studentID, courseID string) (*dto.CertificateResponse, error) {
	// 1. 实体存在性
	student, err := lookupStudent(ctx, s.repo, s.logger, studentID)
	if err != nil {
		return nil, err
	}
	course, err := lookupCourse(ctx, s.repo, s.logger, courseID)
	if err != nil {
		return nil, err
	}

	// 2. 报名校验
	enrolled, err := s.repo.Enrollment.Exists(ctx, studentID, courseID)
	if err != nil {
		s.logger.Error("查询报名记录失败", zap.String("student_id", studentID), zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}
	if !enrolled {
		return nil, ErrNotEnrolled
	}

	// 3. 完成度校验
	complete, err := s.completion.IsComplete(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}
	if !complete {
		return nil, ErrIncompleteCourse
	}

	// 4. 渲染
	issuedAt := s.now()
	data := render.CertificateData{
		Name:        student.Name,
		CourseTitle: course.Title,
		Date:        issuedAt.Format(s.cfg.Certificate.DateFormat),
		Issuer:      s.cfg.Certificate.Issuer,
	}
	content, err := s.safeRender(data)
	if err != nil {
		s.logger.Error("证书渲染失败", zap.String("student_id", studentID), zap.String("course_id", courseID), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}

	// 5. 文件落盘后才更新数据库指针
	key := ArtifactKey(studentID, courseID, s.renderer.Extension())
	if err := s.store.Put(ctx, key, content); err != nil {
		s.logger.Error("证书文件写入失败", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}

	// 6. 原子 upsert
	saved, err := s.repo.Certificate.Upsert(ctx, &model.Certificate{
		StudentID:      studentID,
		CourseID:       courseID,
		ArtifactKey:    key,
		CertificateURL: s.store.URL(key),
		ContentType:    s.renderer.ContentType(),
		Source:         model.CertificateSourceIssued,
		Details: datatypes.JSONMap{
			"name":         data.Name,
			"course_title": data.CourseTitle,
			"date":         data.Date,
		},
		IssuedAt: issuedAt,
	})
	if err != nil {
		// 文件已写入但未登记，下次签发会覆盖同一路径
		s.logger.Error("证书记录保存失败", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}

	s.removeStale(ctx, saved)

	s.logger.Info("证书已签发",
		zap.String("certificate_id", saved.CertificateID),
		zap.String("student_id", studentID),
		zap.String("course_id", courseID),
	)

	return s.toResponse(saved, course.Title), nil
}

// safeRender 渲染器内部 panic 也按渲染失败处理
func (s *certificateService) safeRender(data render.CertificateData) (content []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			content = nil
			err = fmt.Errorf("renderer panic: %v", r)
		}
	}()
	content, err = s.renderer.Render(data)
	if err == nil && len(content) == 0 {
		err = errors.New("renderer returned empty content")
	}
	return content, err
}

// ────── 查询与下载 ──────

func (s *certificateService) Get(ctx context.Context, callerID, callerRole, certificateID string) (*dto.CertificateResponse, error) {
	cert, err := s.getVisible(ctx, callerID, callerRole, certificateID)
	if err != nil {
		return nil, err
	}
	return s.toResponse(cert, ""), nil
}

func (s *certificateService) Download(ctx context.Context, callerID, callerRole, certificateID string) (*dto.CertificateFile, error) {
	cert, err := s.getVisible(ctx, callerID, callerRole, certificateID)
	if err != nil {
		return nil, err
	}

	data, err := s.store.Get(ctx, cert.ArtifactKey)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrArtifactNotFound) {
			s.logger.Warn("证书记录存在但文件缺失", zap.String("certificate_id", cert.CertificateID), zap.String("key", cert.ArtifactKey))
			return nil, fmt.Errorf("%w: %v", ErrCertificateNotFound, err)
		}
		s.logger.Error("读取证书文件失败", zap.String("key", cert.ArtifactKey), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}

	contentType := cert.ContentType
	if contentType == "" {
		contentType = storage.ContentTypeForKey(cert.ArtifactKey)
	}

	return &dto.CertificateFile{
		Filename:    "certificate-" + cert.CertificateID + path.Ext(cert.ArtifactKey),
		ContentType: contentType,
		Data:        data,
	}, nil
}

// getVisible 证书仅对本人与管理员可见，其他人一律视为不存在
func (s *certificateService) getVisible(ctx context.Context, callerID, callerRole, certificateID string) (*model.Certificate, error) {
	if !validID(certificateID) {
		return nil, ErrCertificateNotFound
	}
	cert, err := s.repo.Certificate.GetByID(ctx, certificateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCertificateNotFound
		}
		s.logger.Error("查询证书失败", zap.String("certificate_id", certificateID), zap.Error(err))
		return nil, err
	}
	if cert.StudentID != callerID && callerRole != model.RoleAdmin {
		return nil, ErrCertificateNotFound
	}
	return cert, nil
}

func (s *certificateService) ListForStudent(ctx context.Context, studentID string) ([]dto.CertificateListItem, error) {
	certs, err := s.repo.Certificate.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("查询证书列表失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.CertificateListItem, 0, len(certs))
	for _, c := range certs {
		item := dto.CertificateListItem{
			ID:             c.CertificateID,
			CourseID:       c.CourseID,
			CertificateURL: c.CertificateURL,
			IssuedAt:       c.IssuedAt.Format(time.RFC3339),
		}
		if c.Course != nil {
			item.CourseTitle = c.Course.Title
		}
		result = append(result, item)
	}
	return result, nil
}

// ────── Upload ──────

func (s *certificateService) Upload(ctx context.Context, req *dto.UploadCertificateRequest) (*dto.CertificateResponse, error) {
	if _, err := lookupStudent(ctx, s.repo, s.logger, req.StudentID); err != nil {
		return nil, err
	}
	course, err := lookupCourse(ctx, s.repo, s.logger, req.CourseID)
	if err != nil {
		return nil, err
	}

	if len(req.Data) == 0 || http.DetectContentType(req.Data) != pdfContentType {
		return nil, ErrInvalidUpload
	}

	key := ArtifactKey(req.StudentID, req.CourseID, pdfExt)
	if err := s.store.Put(ctx, key, req.Data); err != nil {
		s.logger.Error("上传证书写入失败", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}

	saved, err := s.repo.Certificate.Upsert(ctx, &model.Certificate{
		StudentID:      req.StudentID,
		CourseID:       req.CourseID,
		ArtifactKey:    key,
		CertificateURL: s.store.URL(key),
		ContentType:    pdfContentType,
		Source:         model.CertificateSourceUploaded,
		Details:        datatypes.JSONMap{"size": len(req.Data)},
		IssuedAt:       s.now(),
	})
	if err != nil {
		s.logger.Error("上传证书记录保存失败", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrStorageFailed, err)
	}

	s.removeStale(ctx, saved)

	s.logger.Info("外部证书已上传",
		zap.String("certificate_id", saved.CertificateID),
		zap.String("student_id", req.StudentID),
		zap.String("course_id", req.CourseID),
	)

	return s.toResponse(saved, course.Title), nil
}

// ── 内部方法 ──

// removeStale 删除同一 (学生, 课程) 下当前记录不再引用的其他格式文件
// 记录已指向新文件，清理失败只记日志，不影响本次结果
func (s *certificateService) removeStale(ctx context.Context, saved *model.Certificate) {
	for _, ext := range []string{s.renderer.Extension(), pdfExt} {
		key := ArtifactKey(saved.StudentID, saved.CourseID, ext)
		if key == saved.ArtifactKey {
			continue
		}
		if err := s.store.Delete(ctx, key); err != nil {
			s.logger.Warn("清理旧证书文件失败", zap.String("key", key), zap.Error(err))
		}
	}
}

func (s *certificateService) toResponse(cert *model.Certificate, courseTitle string) *dto.CertificateResponse {
	if courseTitle == "" && cert.Course != nil {
		courseTitle = cert.Course.Title
	}
	return &dto.CertificateResponse{
		ID:             cert.CertificateID,
		StudentID:      cert.StudentID,
		CourseID:       cert.CourseID,
		CourseTitle:    courseTitle,
		CertificateURL: cert.CertificateURL,
		DownloadURL:    strings.TrimRight(s.cfg.Server.BaseURL, "/") + "/api/v1/certificates/" + cert.CertificateID + "/download",
		ContentType:    cert.ContentType,
		Source:         cert.Source,
		IssuedAt:       cert.IssuedAt.Format(time.RFC3339),
	}
}
