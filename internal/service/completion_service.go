package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"elearn/backend/internal/dto"
	"elearn/backend/internal/repository"
)

// ── 通用"不存在"错误 ──

var (
	ErrStudentNotFound = errors.New("学生不存在")
	ErrCourseNotFound  = errors.New("课程不存在")
)

// CompletionService 课程完成度判定
//
// 完成条件：课程"当前"的每一个视频都有该学生的观看记录。
// 按视频 ID 做集合比较而不是比较数量：课程增删视频后，数量相等并不代表看完。
// 课程没有视频时视为完成，报名条件由签发流程单独校验。
type CompletionService interface {
	IsComplete(ctx context.Context, studentID, courseID string) (bool, error)
	// Progress 返回观看进度明细，供"完成课程"按钮展示
	Progress(ctx context.Context, studentID, courseID string) (*dto.CourseProgressResponse, error)
}

type completionService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCompletionService 创建 CompletionService 实例
func NewCompletionService(repo *repository.Repository, logger *zap.Logger) CompletionService {
	return &completionService{repo: repo, logger: logger}
}

func (s *completionService) IsComplete(ctx context.Context, studentID, courseID string) (bool, error) {
	_, missing, err := s.evaluate(ctx, studentID, courseID)
	if err != nil {
		return false, err
	}
	return len(missing) == 0, nil
}

func (s *completionService) Progress(ctx context.Context, studentID, courseID string) (*dto.CourseProgressResponse, error) {
	videoIDs, missing, err := s.evaluate(ctx, studentID, courseID)
	if err != nil {
		return nil, err
	}

	enrolled, err := s.repo.Enrollment.Exists(ctx, studentID, courseID)
	if err != nil {
		s.logger.Error("查询报名记录失败", zap.String("student_id", studentID), zap.String("course_id", courseID), zap.Error(err))
		return nil, err
	}

	if missing == nil {
		missing = []string{}
	}
	return &dto.CourseProgressResponse{
		CourseID:        courseID,
		Enrolled:        enrolled,
		TotalVideos:     len(videoIDs),
		WatchedVideos:   len(videoIDs) - len(missing),
		MissingVideoIDs: missing,
		Complete:        len(missing) == 0,
	}, nil
}

// evaluate 返回课程当前视频集合 V 以及 V 中尚未观看的视频
func (s *completionService) evaluate(ctx context.Context, studentID, courseID string) (videoIDs, missing []string, err error) {
	if _, err := lookupStudent(ctx, s.repo, s.logger, studentID); err != nil {
		return nil, nil, err
	}
	if _, err := lookupCourse(ctx, s.repo, s.logger, courseID); err != nil {
		return nil, nil, err
	}

	videoIDs, err = s.repo.Video.ListIDsByCourse(ctx, courseID)
	if err != nil {
		s.logger.Error("查询课程视频失败", zap.String("course_id", courseID), zap.Error(err))
		return nil, nil, err
	}

	watched, err := s.repo.Progress.ListWatchedVideoIDs(ctx, studentID, videoIDs)
	if err != nil {
		s.logger.Error("查询观看记录失败", zap.String("student_id", studentID), zap.Error(err))
		return nil, nil, err
	}

	watchedSet := make(map[string]struct{}, len(watched))
	for _, id := range watched {
		watchedSet[id] = struct{}{}
	}
	for _, id := range videoIDs {
		if _, ok := watchedSet[id]; !ok {
			missing = append(missing, id)
		}
	}
	return videoIDs, missing, nil
}
