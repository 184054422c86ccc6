package storage

import (
	"fmt"
	"path"
	"strings"
)

// PublicStorage wraps LocalStorage and exposes stored files under a public
// base URL, the way a hosted object store would. Upload enforces the
// configured MIME and size limits before anything touches the disk.
type PublicStorage struct {
	local        *LocalStorage
	baseURL      string
	maxSizeBytes int64
	allowedMIMEs map[string]struct{}
}

// NewPublicStorage builds a public-facing storage handle.
func NewPublicStorage(local *LocalStorage, baseURL string, maxSizeBytes int64, allowedMIMEs []string) *PublicStorage {
	mimes := make(map[string]struct{}, len(allowedMIMEs))
	for _, m := range allowedMIMEs {
		mimes[strings.ToLower(strings.TrimSpace(m))] = struct{}{}
	}
	return &PublicStorage{
		local:        local,
		baseURL:      strings.TrimRight(baseURL, "/"),
		maxSizeBytes: maxSizeBytes,
		allowedMIMEs: mimes,
	}
}

// Upload validates and persists the blob, returning its public URL.
func (s *PublicStorage) Upload(filename, contentType string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty file")
	}
	if s.maxSizeBytes > 0 && int64(len(data)) > s.maxSizeBytes {
		return "", fmt.Errorf("file size %d exceeds limit %d", len(data), s.maxSizeBytes)
	}
	if len(s.allowedMIMEs) > 0 {
		if _, ok := s.allowedMIMEs[strings.ToLower(contentType)]; !ok {
			return "", fmt.Errorf("content type %q is not allowed", contentType)
		}
	}
	rel, err := s.local.Save(filename, data)
	if err != nil {
		return "", err
	}
	return s.PublicURL(rel), nil
}

// Delete removes a stored file by its relative path.
func (s *PublicStorage) Delete(filename string) error {
	return s.local.Delete(filename)
}

// PublicURL derives the externally reachable URL for a stored path.
func (s *PublicStorage) PublicURL(rel string) string {
	return s.baseURL + "/" + path.Clean(strings.TrimLeft(rel, "/"))
}
