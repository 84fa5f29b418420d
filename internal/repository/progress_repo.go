package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"elearn/backend/internal/model"
)

// ProgressRepository 观看进度数据访问接口
type ProgressRepository interface {
	// MarkWatched 记录观看；已记录时不插入，返回 created=false
	MarkWatched(ctx context.Context, record *model.WatchRecord) (bool, error)
	// ListWatchedVideoIDs 返回 videoIDs 中该学生已观看的子集
	ListWatchedVideoIDs(ctx context.Context, studentID string, videoIDs []string) ([]string, error)
}

type progressRepo struct {
	db *gorm.DB
}

// NewProgressRepo 创建 ProgressRepository 实例
func NewProgressRepo(db *gorm.DB) ProgressRepository {
	return &progressRepo{db: db}
}

func (r *progressRepo) MarkWatched(ctx context.Context, record *model.WatchRecord) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "video_id"}},
			DoNothing: true,
		}).
		Create(record)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *progressRepo) ListWatchedVideoIDs(ctx context.Context, studentID string, videoIDs []string) ([]string, error) {
	if len(videoIDs) == 0 {
		return nil, nil
	}
	var ids []string
	err := r.db.WithContext(ctx).
		Model(&model.WatchRecord{}).
		Where("student_id = ? AND video_id IN ?", studentID, videoIDs).
		Pluck("video_id", &ids).Error
	return ids, err
}
