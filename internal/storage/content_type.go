// internal/storage/content_type.go
package storage

import (
	"net/http"
	"path/filepath"
	"strings"
)

// extensionContentTypes covers the extensions this registry actually
// produces or consumes; anything else falls back to content sniffing.
var extensionContentTypes = map[string]string{
	".yaml": "text/yaml; charset=utf-8",
	".yml":  "text/yaml; charset=utf-8",
	".tgz":  "application/gzip",
	".json": "application/json",
}

func resolveContentType(name string, data []byte) string {
	ext := strings.ToLower(filepath.Ext(name))
	if ct, ok := extensionContentTypes[ext]; ok {
		return ct
	}
	if len(data) == 0 {
		return "application/octet-stream"
	}
	return http.DetectContentType(data)
}
