package model

import (
	"time"

	"gorm.io/gorm"
)

// Enrollment 选课表 — 对应 enrollments
// (student_id, course_id) 唯一：重复报名是空操作
type Enrollment struct {
	EnrollmentID string    `gorm:"type:uuid;primaryKey"                                        json:"enrollment_id"`
	StudentID    string    `gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_student_course" json:"student_id"`
	CourseID     string    `gorm:"type:uuid;not null;uniqueIndex:idx_enrollments_student_course" json:"course_id"`
	EnrolledAt   time.Time `gorm:"not null"                                                    json:"enrolled_at"`
	BaseModel

	Course *Course `gorm:"foreignKey:CourseID;references:CourseID" json:"course,omitempty"`
}

// TableName 指定表名
func (Enrollment) TableName() string { return "enrollments" }

// BeforeCreate 生成主键
func (e *Enrollment) BeforeCreate(_ *gorm.DB) error {
	ensureID(&e.EnrollmentID)
	return nil
}

// WatchRecord 观看记录表 — 对应 watch_records
// (student_id, video_id) 唯一：多次标记只保留一条
type WatchRecord struct {
	WatchRecordID string    `gorm:"type:uuid;primaryKey"                                        json:"watch_record_id"`
	StudentID     string    `gorm:"type:uuid;not null;uniqueIndex:idx_watch_records_student_video" json:"student_id"`
	VideoID       string    `gorm:"type:uuid;not null;uniqueIndex:idx_watch_records_student_video" json:"video_id"`
	WatchedAt     time.Time `gorm:"not null"                                                    json:"watched_at"`
	BaseModel
}

// TableName 指定表名
func (WatchRecord) TableName() string { return "watch_records" }

// BeforeCreate 生成主键
func (w *WatchRecord) BeforeCreate(_ *gorm.DB) error {
	ensureID(&w.WatchRecordID)
	return nil
}
