package storage

import (
	"fmt"
	"mime"
	"path"
	"strings"
	"time"
)

var preferredExtensions = map[string]string{
	"image/jpeg":    "jpg",
	"image/png":     "png",
	"image/gif":     "gif",
	"image/webp":    "webp",
	"image/svg+xml": "svg",
	"image/avif":    "avif",
}

func sanitizePathSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	builder := strings.Builder{}
	builder.Grow(len(value))
	for i := 0; i < len(value); i++ {
		ch := value[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9':
			builder.WriteByte(ch)
		case ch >= 'A' && ch <= 'Z':
			builder.WriteByte(ch + 32)
		case ch == '-', ch == '_':
			builder.WriteByte(ch)
		}
	}
	return builder.String()
}

// extensionFor picks a file extension (without the dot) for a MIME type.
func extensionFor(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return "bin"
	}
	if ext, ok := preferredExtensions[mediaType]; ok {
		return ext
	}
	if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
		if ext := sanitizePathSegment(strings.TrimPrefix(exts[0], ".")); ext != "" {
			return ext
		}
	}
	return "bin"
}

func contentTypeOrDefault(contentType string) string {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		return mediaType
	}
	return "application/octet-stream"
}

// buildObjectPath returns folder/yyyy/mm/dd/name-<nanos>.ext.
func buildObjectPath(now time.Time, opts ObjectOptions) string {
	now = now.UTC()
	folder := sanitizePathSegment(opts.Folder)
	if folder == "" {
		folder = "misc"
	}
	base := sanitizeFileBase(opts.Name)
	filename := fmt.Sprintf("%d.%s", now.UnixNano(), extensionFor(opts.ContentType))
	if base != "" {
		filename = base + "-" + filename
	}
	datedir := fmt.Sprintf("%04d/%02d/%02d", now.Year(), now.Month(), now.Day())
	return path.Join(folder, datedir, filename)
}

func joinPrefix(prefix, key string) string {
	cleanPrefix := trimPrefix(prefix)
	if cleanPrefix == "" {
		return strings.TrimLeft(key, "/")
	}
	return path.Join(cleanPrefix, strings.TrimLeft(key, "/"))
}

func trimPrefix(prefix string) string {
	return strings.Trim(strings.TrimSpace(prefix), "/")
}

func sanitizeFileBase(value string) string {
	replaced := strings.ReplaceAll(strings.TrimSpace(value), " ", "-")
	sanitized := sanitizePathSegment(replaced)
	return strings.Trim(sanitized, "-_")
}
