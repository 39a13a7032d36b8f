package pipeline

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/faelscarpato/capyvision/internal/genai"
)

const (
	defaultAnalysisQuestion = "Analyze this image in detail."
	emptyAnalysisAnswer     = "No analysis provided."
)

// AnalyzePipeline asks the text model a question about an image. This mode
// has no hard failure path besides transport errors: an empty answer becomes
// a fixed placeholder.
type AnalyzePipeline struct {
	backend Backend
	model   string
	logger  zerolog.Logger
}

func NewAnalyzePipeline(backend Backend, models Models, logger zerolog.Logger) *AnalyzePipeline {
	return &AnalyzePipeline{backend: backend, model: models.Text, logger: logger}
}

// Analyze returns the model's textual answer verbatim.
func (p *AnalyzePipeline) Analyze(ctx context.Context, question string, source SourceImage) (string, error) {
	if strings.TrimSpace(question) == "" {
		question = defaultAnalysisQuestion
	}

	resp, err := p.backend.GenerateContent(ctx, p.model, []genai.Part{
		source.inlinePart(),
		genai.TextPart(question),
	}, nil)
	if err != nil {
		return "", fmt.Errorf("analyze image: %w", err)
	}

	answer := strings.TrimSpace(resp.Text())
	if answer == "" {
		return emptyAnalysisAnswer, nil
	}
	return answer, nil
}
