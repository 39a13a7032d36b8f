package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// VideoLibrary materializes downloaded artifact bytes into the file store
// and returns the URL under which the API serves them.
type VideoLibrary struct {
	files   *FileStore
	baseURL string
}

func NewVideoLibrary(files *FileStore, baseURL string) *VideoLibrary {
	return &VideoLibrary{files: files, baseURL: strings.TrimRight(baseURL, "/")}
}

// Materialize writes the bytes under a fresh key and returns their serving URL.
func (l *VideoLibrary) Materialize(ctx context.Context, data []byte, contentType string) (string, error) {
	key := fmt.Sprintf("videos/%s%s", uuid.NewString(), extensionFor(contentType))
	written, err := l.files.Write(ctx, key, data)
	if err != nil {
		return "", err
	}
	return l.baseURL + "/" + written, nil
}

func extensionFor(contentType string) string {
	switch strings.ToLower(strings.TrimSpace(contentType)) {
	case "video/webm":
		return ".webm"
	case "video/quicktime":
		return ".mov"
	default:
		return ".mp4"
	}
}
