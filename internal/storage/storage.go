package storage

import (
	"context"
	"fmt"
	"strings"

	"newsroom/internal/config"
)

const (
	// TypeLocal 表示本地文件系统存储。
	TypeLocal = "local"
	// TypeS3 表示 Amazon S3 或兼容的存储后端。
	TypeS3 = "s3"
	// TypeOSS 表示阿里云 OSS 存储。
	TypeOSS = "oss"
	// TypeCOS 表示腾讯云 COS 存储。
	TypeCOS = "cos"
	// TypeR2 表示 Cloudflare R2 存储。
	TypeR2 = "r2"
)

// ObjectOptions 控制对象的存放位置。
//
// Folder groups objects (e.g. "avatars"), Name seeds the file name and
// ContentType selects both the stored Content-Type and the file extension.
type ObjectOptions struct {
	Folder      string
	Name        string
	ContentType string
}

// Storage persists binary objects and returns a backend-relative key.
type Storage interface {
	Save(ctx context.Context, data []byte, opts ObjectOptions) (string, error)
	// Delete removes the object. Missing objects are not an error.
	Delete(ctx context.Context, key string) error
}

// LocalBaseDirProvider 由暴露可通过 HTTP 直接提供服务的本地目录的存储驱动实现。
type LocalBaseDirProvider interface {
	LocalBaseDir() string
}

// NewStorage 根据配置实例化存储后端。
func NewStorage(cfg *config.Config) (Storage, error) {
	typeName := strings.ToLower(strings.TrimSpace(cfg.StorageType))
	switch typeName {
	case "", TypeLocal:
		return NewLocalStorage(cfg.StorageLocalDir)
	case TypeS3:
		return NewS3Storage(cfg)
	case TypeOSS:
		return NewOSSStorage(cfg)
	case TypeCOS:
		return NewCOSStorage(cfg)
	case TypeR2:
		return NewR2Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.StorageType)
	}
}

// URLResolver maps storage keys to public URLs and back.
type URLResolver struct {
	base string
}

func NewURLResolver(publicBaseURL string) URLResolver {
	return URLResolver{base: strings.TrimRight(strings.TrimSpace(publicBaseURL), "/")}
}

// PublicURL returns the client-facing URL of key.
func (r URLResolver) PublicURL(key string) string {
	key = strings.TrimLeft(key, "/")
	if r.base == "" {
		return "/" + key
	}
	return r.base + "/" + key
}

// KeyFromURL returns the key of an object previously published through
// PublicURL. ok is false for URLs that belong to another host or prefix.
func (r URLResolver) KeyFromURL(publicURL string) (key string, ok bool) {
	prefix := r.base + "/"
	if !strings.HasPrefix(publicURL, prefix) {
		return "", false
	}
	key = strings.TrimPrefix(publicURL, prefix)
	if key == "" || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}
