package model

import "gorm.io/gorm"

// Course 课程表 — 对应 courses
type Course struct {
	CourseID    string `gorm:"type:uuid;primaryKey"       json:"course_id"`
	Title       string `gorm:"type:varchar(200);not null" json:"title"`
	Description string `gorm:"type:text"                  json:"description,omitempty"`
	TeacherID   string `gorm:"type:uuid;not null;index"   json:"teacher_id"`
	BaseModel

	// 关联
	Teacher *User   `gorm:"foreignKey:TeacherID;references:UserID" json:"teacher,omitempty"`
	Videos  []Video `gorm:"foreignKey:CourseID;references:CourseID" json:"videos,omitempty"`
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// BeforeCreate 生成主键
func (c *Course) BeforeCreate(_ *gorm.DB) error {
	ensureID(&c.CourseID)
	return nil
}

// Video 视频课时表 — 对应 videos
// 每个视频只属于一个课程；课程的视频集合会随教师追加课时而变化
type Video struct {
	VideoID  string `gorm:"type:uuid;primaryKey"       json:"video_id"`
	CourseID string `gorm:"type:uuid;not null;index"   json:"course_id"`
	Title    string `gorm:"type:varchar(200);not null" json:"title"`
	VideoURL string `gorm:"type:text"                  json:"video_url,omitempty"`
	Position int    `gorm:"not null;default:0"         json:"position"`
	BaseModel
}

// TableName 指定表名
func (Video) TableName() string { return "videos" }

// BeforeCreate 生成主键
func (v *Video) BeforeCreate(_ *gorm.DB) error {
	ensureID(&v.VideoID)
	return nil
}
