package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	gcs "cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"elearn/backend/config"
	pkgerrors "elearn/backend/pkg/errors"
)

// GCSStore Google Cloud Storage 存储
type GCSStore struct {
	client    *gcs.Client
	bucket    string
	cdnDomain string
	logger    *zap.Logger
}

// NewGCSStore 创建 GCS 客户端；未配置凭据文件时使用 ADC
func NewGCSStore(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (*GCSStore, error) {
	opts := []option.ClientOption{option.WithScopes(gcs.ScopeReadWrite)}
	if cfg.GCSCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GCSCredentialsFile))
	} else {
		logger.Warn("未配置 storage.gcs_credentials_file，使用默认应用凭据")
	}

	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("创建 GCS 客户端失败: %w", err)
	}

	logger.Info("GCS 存储已就绪", zap.String("bucket", cfg.GCSBucket))

	return &GCSStore{
		client:    client,
		bucket:    cfg.GCSBucket,
		cdnDomain: cfg.CDNDomain,
		logger:    logger,
	}, nil
}

// Put 上传对象；Writer.Close 成功即表示对象已持久化
func (s *GCSStore) Put(ctx context.Context, key string, data []byte) error {
	cleaned, err := cleanKey(key)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := s.client.Bucket(s.bucket).Object(cleaned).NewWriter(ctx)
	w.ContentType = ContentTypeForKey(cleaned)
	// 同一路径会被重新签发覆盖，禁止 CDN 长期缓存旧版本
	w.CacheControl = "no-cache, max-age=0"

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return fmt.Errorf("写入 GCS 失败: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("提交 GCS 对象失败: %w", err)
	}
	return nil
}

// Get 下载对象内容
func (s *GCSStore) Get(ctx context.Context, key string) ([]byte, error) {
	cleaned, err := cleanKey(key)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	r, err := s.client.Bucket(s.bucket).Object(cleaned).NewReader(ctx)
	if err != nil {
		if errors.Is(err, gcs.ErrObjectNotExist) {
			return nil, pkgerrors.ErrArtifactNotFound
		}
		return nil, fmt.Errorf("打开 GCS 对象失败: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("读取 GCS 对象失败: %w", err)
	}
	return data, nil
}

// Delete 删除对象，不存在时忽略
func (s *GCSStore) Delete(ctx context.Context, key string) error {
	cleaned, err := cleanKey(key)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()

	if err := s.client.Bucket(s.bucket).Object(cleaned).Delete(ctx); err != nil && !errors.Is(err, gcs.ErrObjectNotExist) {
		return fmt.Errorf("删除 GCS 对象失败: %w", err)
	}
	return nil
}

// URL 优先使用 CDN 域名
func (s *GCSStore) URL(key string) string {
	if s.cdnDomain != "" {
		return joinURL("https://"+s.cdnDomain, key)
	}
	return joinURL(fmt.Sprintf("https://storage.googleapis.com/%s", s.bucket), key)
}

// Close 关闭客户端
func (s *GCSStore) Close() error {
	return s.client.Close()
}
