package pipeline

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/rs/zerolog"

	"github.com/faelscarpato/capyvision/internal/genai"
)

func TestAnalyze_ReturnsAnswerVerbatim(t *testing.T) {
	backend := &fakeBackend{
		generate: func(call int, model string, parts []genai.Part, cfg *genai.ImageConfig) (*genai.ContentResponse, error) {
			return textResponse("a fox on a meadow"), nil
		},
	}
	p := NewAnalyzePipeline(backend, testModels, zerolog.New(io.Discard))

	answer, err := p.Analyze(context.Background(), "what is this?", testSource())
	if err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if answer != "a fox on a meadow" {
		t.Fatalf("unexpected answer %q", answer)
	}

	call := backend.generateCalls[0]
	if call.model != "flash-text" {
		t.Fatalf("unexpected model %q", call.model)
	}
	if len(call.parts) != 2 || call.parts[0].InlineData == nil || call.parts[1].Text != "what is this?" {
		t.Fatalf("unexpected parts %+v", call.parts)
	}
}

func TestAnalyze_DefaultQuestion(t *testing.T) {
	backend := &fakeBackend{
		generate: func(call int, model string, parts []genai.Part, cfg *genai.ImageConfig) (*genai.ContentResponse, error) {
			return textResponse("ok"), nil
		},
	}
	p := NewAnalyzePipeline(backend, testModels, zerolog.New(io.Discard))

	if _, err := p.Analyze(context.Background(), "   ", testSource()); err != nil {
		t.Fatalf("Analyze error: %v", err)
	}
	if got := backend.generateCalls[0].parts[1].Text; got != "Analyze this image in detail." {
		t.Fatalf("expected default question, got %q", got)
	}
}

func TestAnalyze_EmptyAnswerPlaceholder(t *testing.T) {
	backend := &fakeBackend{
		generate: func(call int, model string, parts []genai.Part, cfg *genai.ImageConfig) (*genai.ContentResponse, error) {
			return emptyResponse(), nil
		},
	}
	p := NewAnalyzePipeline(backend, testModels, zerolog.New(io.Discard))

	answer, err := p.Analyze(context.Background(), "describe", testSource())
	if err != nil {
		t.Fatalf("empty answers must not fail, got %v", err)
	}
	if answer != "No analysis provided." {
		t.Fatalf("unexpected placeholder %q", answer)
	}
}

func TestAnalyze_TransportErrorFails(t *testing.T) {
	backend := &fakeBackend{
		generate: func(call int, model string, parts []genai.Part, cfg *genai.ImageConfig) (*genai.ContentResponse, error) {
			return nil, errors.New("connection reset")
		},
	}
	p := NewAnalyzePipeline(backend, testModels, zerolog.New(io.Discard))

	if _, err := p.Analyze(context.Background(), "describe", testSource()); err == nil {
		t.Fatal("expected transport error to propagate")
	}
}
