package dto

// ── 选课与进度 DTO ──

// EnrollResponse 报名结果
type EnrollResponse struct {
	CourseID string `json:"course_id"`
	Enrolled bool   `json:"enrolled"`
	// Created 为 false 表示此前已报名
	Created bool `json:"created"`
}

// EnrolledCourseResponse 已报名课程
type EnrolledCourseResponse struct {
	CourseID   string `json:"course_id"`
	Title      string `json:"title"`
	TeacherID  string `json:"teacher_id"`
	EnrolledAt string `json:"enrolled_at"`
}

// CourseProgressResponse 课程观看进度
type CourseProgressResponse struct {
	CourseID        string   `json:"course_id"`
	Enrolled        bool     `json:"enrolled"`
	TotalVideos     int      `json:"total_videos"`
	WatchedVideos   int      `json:"watched_videos"`
	MissingVideoIDs []string `json:"missing_video_ids"`
	Complete        bool     `json:"complete"`
}

// WatchResponse 标记观看结果
type WatchResponse struct {
	VideoID  string `json:"video_id"`
	CourseID string `json:"course_id"`
	Created  bool   `json:"created"`
}
