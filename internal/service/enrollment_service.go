package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"elearn/backend/internal/dto"
	"elearn/backend/internal/model"
	"elearn/backend/internal/repository"
)

// ── 选课模块业务错误 ──

var (
	ErrNotStudent = errors.New("仅学生可以报名课程")
)

// EnrollmentService 选课业务接口
type EnrollmentService interface {
	// Enroll 报名课程，重复报名为空操作
	Enroll(ctx context.Context, studentID, role, courseID string) (*dto.EnrollResponse, error)
	ListEnrolledCourses(ctx context.Context, studentID string) ([]dto.EnrolledCourseResponse, error)
}

type enrollmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewEnrollmentService 创建 EnrollmentService 实例
func NewEnrollmentService(repo *repository.Repository, logger *zap.Logger) EnrollmentService {
	return &enrollmentService{repo: repo, logger: logger, now: time.Now}
}

func (s *enrollmentService) Enroll(ctx context.Context, studentID, role, courseID string) (*dto.EnrollResponse, error) {
	if role != model.RoleStudent {
		return nil, ErrNotStudent
	}
	if _, err := lookupStudent(ctx, s.repo, s.logger, studentID); err != nil {
		return nil, err
	}
	if _, err := lookupCourse(ctx, s.repo, s.logger, courseID); err != nil {
		return nil, err
	}

	created, err := s.repo.Enrollment.Create(ctx, &model.Enrollment{
		StudentID:  studentID,
		CourseID:   courseID,
		EnrolledAt: s.now(),
	})
	if err != nil {
		s.logger.Error("报名失败", zap.String("student_id", studentID), zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	if created {
		s.logger.Info("学生报名课程", zap.String("student_id", studentID), zap.String("course_id", courseID))
	}

	return &dto.EnrollResponse{
		CourseID: courseID,
		Enrolled: true,
		Created:  created,
	}, nil
}

func (s *enrollmentService) ListEnrolledCourses(ctx context.Context, studentID string) ([]dto.EnrolledCourseResponse, error) {
	enrollments, err := s.repo.Enrollment.ListByStudent(ctx, studentID)
	if err != nil {
		s.logger.Error("查询已报名课程失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.EnrolledCourseResponse, 0, len(enrollments))
	for _, e := range enrollments {
		item := dto.EnrolledCourseResponse{
			CourseID:   e.CourseID,
			EnrolledAt: e.EnrolledAt.Format(time.RFC3339),
		}
		if e.Course != nil {
			item.Title = e.Course.Title
			item.TeacherID = e.Course.TeacherID
		}
		result = append(result, item)
	}
	return result, nil
}
