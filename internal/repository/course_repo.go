package repository

import (
	"context"

	"gorm.io/gorm"

	"elearn/backend/internal/model"
)

// CourseRepository 课程数据访问接口（只读）
type CourseRepository interface {
	GetByID(ctx context.Context, id string) (*model.Course, error)
}

type courseRepo struct {
	db *gorm.DB
}

// NewCourseRepo 创建 CourseRepository 实例
func NewCourseRepo(db *gorm.DB) CourseRepository {
	return &courseRepo{db: db}
}

func (r *courseRepo) GetByID(ctx context.Context, id string) (*model.Course, error) {
	var course model.Course
	err := r.db.WithContext(ctx).
		Where("course_id = ?", id).
		First(&course).Error
	if err != nil {
		return nil, err
	}
	return &course, nil
}

// VideoRepository 视频数据访问接口（只读）
type VideoRepository interface {
	GetByID(ctx context.Context, id string) (*model.Video, error)
	// ListIDsByCourse 返回课程当前的全部视频 ID（按 position 排序）
	ListIDsByCourse(ctx context.Context, courseID string) ([]string, error)
}

type videoRepo struct {
	db *gorm.DB
}

// NewVideoRepo 创建 VideoRepository 实例
func NewVideoRepo(db *gorm.DB) VideoRepository {
	return &videoRepo{db: db}
}

func (r *videoRepo) GetByID(ctx context.Context, id string) (*model.Video, error) {
	var video model.Video
	err := r.db.WithContext(ctx).
		Where("video_id = ?", id).
		First(&video).Error
	if err != nil {
		return nil, err
	}
	return &video, nil
}

func (r *videoRepo) ListIDsByCourse(ctx context.Context, courseID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.Video{}).
		Where("course_id = ?", courseID).
		Order("position ASC, created_at ASC").
		Pluck("video_id", &ids).Error
	return ids, err
}
