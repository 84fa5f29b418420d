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

// ── 进度模块业务错误 ──

var (
	ErrVideoNotFound = errors.New("视频不存在")
)

// ProgressService 观看进度业务接口
type ProgressService interface {
	// MarkWatched 记录学生看完某个视频，重复记录为空操作
	MarkWatched(ctx context.Context, studentID, videoID string) (*dto.WatchResponse, error)
}

type progressService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewProgressService 创建 ProgressService 实例
func NewProgressService(repo *repository.Repository, logger *zap.Logger) ProgressService {
	return &progressService{repo: repo, logger: logger, now: time.Now}
}

func (s *progressService) MarkWatched(ctx context.Context, studentID, videoID string) (*dto.WatchResponse, error) {
	if _, err := lookupStudent(ctx, s.repo, s.logger, studentID); err != nil {
		return nil, err
	}
	video, err := lookupVideo(ctx, s.repo, s.logger, videoID)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Progress.MarkWatched(ctx, &model.WatchRecord{
		StudentID: studentID,
		VideoID:   videoID,
		WatchedAt: s.now(),
	})
	if err != nil {
		s.logger.Error("记录观看失败", zap.String("student_id", studentID), zap.String("video_id", videoID), zap.Error(err))
		return nil, err
	}

	return &dto.WatchResponse{
		VideoID:  videoID,
		CourseID: video.CourseID,
		Created:  created,
	}, nil
}
