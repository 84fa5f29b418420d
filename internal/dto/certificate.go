package dto

// ── 证书模块 DTO ──

// CertificateResponse 证书引用（签发结果 / 详情）
type CertificateResponse struct {
	ID             string `json:"id"`
	StudentID      string `json:"student_id"`
	CourseID       string `json:"course_id"`
	CourseTitle    string `json:"course_title,omitempty"`
	CertificateURL string `json:"certificate_url"`
	DownloadURL    string `json:"download_url"`
	ContentType    string `json:"content_type"`
	Source         string `json:"source"`
	IssuedAt       string `json:"issued_at"`
}

// CertificateListItem 我的证书列表项
type CertificateListItem struct {
	ID             string `json:"id"`
	CourseID       string `json:"course_id"`
	CourseTitle    string `json:"course_title,omitempty"`
	CertificateURL string `json:"certificate_url"`
	IssuedAt       string `json:"issued_at"`
}

// CertificateFile 证书文件下载内容
type CertificateFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// UploadCertificateRequest 管理员上传外部证书（multipart 表单字段）
type UploadCertificateRequest struct {
	StudentID string `form:"user_id"   binding:"required,uuid"`
	CourseID  string `form:"course_id" binding:"required,uuid"`
	// Data 由 Handler 从 multipart 文件读取
	Data []byte `form:"-"`
}
