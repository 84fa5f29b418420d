// Package render 将证书数据渲染为可下载的文档字节。
package render

import "errors"

// ErrMissingField 渲染所需字段为空
var ErrMissingField = errors.New("证书渲染字段缺失")

// CertificateData 证书模板数据
type CertificateData struct {
	Name        string // 学生显示名
	CourseTitle string
	Date        string // 已格式化的签发日期（日.月.年）
	Issuer      string
}

// Renderer 证书渲染器：纯函数，相同输入产生相同输出
type Renderer interface {
	Render(data CertificateData) ([]byte, error)
	ContentType() string
	// Extension 文件扩展名（含点），用于拼接存储路径
	Extension() string
}
