package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"elearn/backend/internal/model"
	"elearn/backend/internal/repository"
)

// ── 实体查询辅助：统一把"不存在"翻译为业务错误 ──

// validID 所有主键均为 UUID，格式非法直接视为不存在
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func lookupStudent(ctx context.Context, repo *repository.Repository, logger *zap.Logger, id string) (*model.User, error) {
	if !validID(id) {
		return nil, ErrStudentNotFound
	}
	user, err := repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		logger.Error("查询用户失败", zap.String("user_id", id), zap.Error(err))
		return nil, err
	}
	return user, nil
}

func lookupCourse(ctx context.Context, repo *repository.Repository, logger *zap.Logger, id string) (*model.Course, error) {
	if !validID(id) {
		return nil, ErrCourseNotFound
	}
	course, err := repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		logger.Error("查询课程失败", zap.String("course_id", id), zap.Error(err))
		return nil, err
	}
	return course, nil
}

func lookupVideo(ctx context.Context, repo *repository.Repository, logger *zap.Logger, id string) (*model.Video, error) {
	if !validID(id) {
		return nil, ErrVideoNotFound
	}
	video, err := repo.Video.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVideoNotFound
		}
		logger.Error("查询视频失败", zap.String("video_id", id), zap.Error(err))
		return nil, err
	}
	return video, nil
}
