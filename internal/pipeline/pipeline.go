// Package pipeline implements the generation orchestration layer: one fixed
// sequence of backend calls per generation mode, plus the single-flight
// dispatcher that routes requests to them.
package pipeline

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/faelscarpato/capyvision/internal/genai"
)

// Backend is the slice of the genai client the pipelines depend on.
type Backend interface {
	GenerateContent(ctx context.Context, model string, parts []genai.Part, imageCfg *genai.ImageConfig) (*genai.ContentResponse, error)
	GenerateVideos(ctx context.Context, model string, job genai.VideoJob) (*genai.Operation, error)
	PollOperation(ctx context.Context, name string) (*genai.Operation, error)
	Download(ctx context.Context, uri string) ([]byte, error)
}

// Models names the backend model variants each pipeline targets.
type Models struct {
	ImagePro string
	Image    string
	Text     string
	Video    string
}

// SourceImage is an uploaded file used as pipeline input.
type SourceImage struct {
	MimeType string
	Data     []byte
}

func (s *SourceImage) inlinePart() genai.Part {
	return genai.InlinePart(s.MimeType, base64.StdEncoding.EncodeToString(s.Data))
}

// dataURI assembles a browser-displayable data URI from a MIME type and an
// already-encoded base64 payload.
func dataURI(mimeType, data string) string {
	return fmt.Sprintf("data:%s;base64,%s", mimeType, data)
}
