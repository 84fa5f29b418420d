// Package storage 提供证书文件的公共存储（可外部下载的命名空间）。
//
// 路径统一使用正斜杠分隔的相对路径，例如 certificates/<student>/<course>.png。
// Put 会自动创建中间层级并覆盖同名文件，返回即表示写入已持久化。
package storage

import (
	"context"
	"errors"
	"path"
	"strings"

	"go.uber.org/zap"

	"elearn/backend/config"
)

// ErrInvalidPath 路径为空、为绝对路径或越出存储根目录
var ErrInvalidPath = errors.New("非法的存储路径")

// Store 证书文件存储接口
type Store interface {
	Put(ctx context.Context, key string, data []byte) error
	// Get 读取文件；不存在时返回 pkg/errors.ErrArtifactNotFound
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete 删除文件；文件不存在视为成功
	Delete(ctx context.Context, key string) error
	// URL 返回文件的公开访问地址
	URL(key string) string
}

// cleanKey 规范化存储路径并拒绝越界路径
func cleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidPath
	}
	cleaned := path.Clean(key)
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", ErrInvalidPath
	}
	return cleaned, nil
}

// ContentTypeForKey 按扩展名推断 Content-Type
func ContentTypeForKey(key string) string {
	switch strings.ToLower(path.Ext(key)) {
	case ".png":
		return "image/png"
	case ".pdf":
		return "application/pdf"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + key
}

// New 按配置创建存储后端
func New(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (Store, error) {
	switch cfg.Backend {
	case config.StorageGCS:
		return NewGCSStore(ctx, cfg, logger)
	default:
		s, err := NewLocalStore(cfg.LocalDir, cfg.PublicBaseURL)
		if err != nil {
			return nil, err
		}
		logger.Info("本地存储已就绪", zap.String("dir", s.Root()))
		return s, nil
	}
}
