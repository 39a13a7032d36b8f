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

// imageTier is one entry of the ordered fallback chain. The pro tier accepts
// explicit size control; the flash tier only honors aspect ratio.
type imageTier struct {
	model       string
	includeSize bool
}

// ImagePipeline generates an image through an ordered list of model tiers.
// Earlier tiers are availability-sensitive; their failures are logged and
// never surfaced, since the next tier usually recovers.
type ImagePipeline struct {
	backend Backend
	tiers   []imageTier
	logger  zerolog.Logger
}

func NewImagePipeline(backend Backend, models Models, logger zerolog.Logger) *ImagePipeline {
	return &ImagePipeline{
		backend: backend,
		tiers: []imageTier{
			{model: models.ImagePro, includeSize: true},
			{model: models.Image},
		},
		logger: logger,
	}
}

// Generate returns a data URI for the produced image. When no tier yields an
// image, the last tier's textual explanation (if any) becomes the failure
// message; otherwise domain.ErrNoArtifact.
func (p *ImagePipeline) Generate(ctx context.Context, prompt string, cfg domain.GenerationConfig) (string, error) {
	finalPrompt := stylePrompt(prompt, cfg)

	last := len(p.tiers) - 1
	for i, tier := range p.tiers {
		imageCfg := &genai.ImageConfig{AspectRatio: string(cfg.AspectRatio)}
		if tier.includeSize {
			imageCfg.ImageSize = string(cfg.ImageSize)
		}

		resp, err := p.backend.GenerateContent(ctx, tier.model, []genai.Part{genai.TextPart(finalPrompt)}, imageCfg)
		if err != nil {
			if i < last {
				p.logger.Warn().Err(err).Str("model", tier.model).Msg("image tier unavailable, falling back")
				continue
			}
			return "", fmt.Errorf("generate image: %w", err)
		}

		if mimeType, data, ok := resp.InlineImage(); ok {
			return dataURI(mimeType, data), nil
		}

		if i == last {
			// A text-only answer from the final tier is the backend
			// explaining itself; surface it verbatim.
			if text := strings.TrimSpace(resp.Text()); text != "" {
				return "", errors.New(text)
			}
		} else {
			p.logger.Warn().Str("model", tier.model).Msg("image tier returned no payload, falling back")
		}
	}

	return "", domain.ErrNoArtifact
}

// stylePrompt appends the selected artistic style to the prompt text.
func stylePrompt(prompt string, cfg domain.GenerationConfig) string {
	if !cfg.HasStyle() {
		return prompt
	}
	return fmt.Sprintf("%s. Artistic Style: %s", prompt, strings.TrimSpace(cfg.Style))
}
