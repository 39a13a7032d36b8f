package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/faelscarpato/capyvision/internal/domain"
	"github.com/faelscarpato/capyvision/internal/genai"
)

// maskInstruction scopes the edit to the highlighted region and directs the
// backend to leave the rest untouched.
const maskInstruction = "The second image provided is a highlight mask indicating the area to be edited. " +
	"Please modify only the highlighted region according to this instruction: %s. " +
	"Maintain the rest of the image exactly as it is."

// EditPipeline performs a single-call masked or whole-image edit.
type EditPipeline struct {
	backend Backend
	model   string
	logger  zerolog.Logger
}

func NewEditPipeline(backend Backend, models Models, logger zerolog.Logger) *EditPipeline {
	return &EditPipeline{backend: backend, model: models.Image, logger: logger}
}

// Edit sends the source image with the instruction, plus the PNG mask and a
// region-scoped instruction when a mask is supplied. There is no fallback
// tier: success and failure mirror the image pipeline's final tier.
func (p *EditPipeline) Edit(ctx context.Context, instruction string, source SourceImage, maskPNG []byte) (string, error) {
	parts := []genai.Part{source.inlinePart()}
	if len(maskPNG) > 0 {
		mask := SourceImage{MimeType: "image/png", Data: maskPNG}
		parts = append(parts,
			mask.inlinePart(),
			genai.TextPart(fmt.Sprintf(maskInstruction, instruction)),
		)
	} else {
		parts = append(parts, genai.TextPart(instruction))
	}

	resp, err := p.backend.GenerateContent(ctx, p.model, parts, nil)
	if err != nil {
		return "", fmt.Errorf("edit image: %w", err)
	}

	if mimeType, data, ok := resp.InlineImage(); ok {
		return dataURI(mimeType, data), nil
	}
	if text := strings.TrimSpace(resp.Text()); text != "" {
		return "", errors.New(text)
	}
	return "", domain.ErrNoArtifact
}
