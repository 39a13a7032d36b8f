package pipeline

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/faelscarpato/capyvision/internal/domain"
	"github.com/faelscarpato/capyvision/internal/genai"
)

// Materializer turns downloaded artifact bytes into a locally referenceable
// URL.
type Materializer interface {
	Materialize(ctx context.Context, data []byte, contentType string) (string, error)
}

// VideoPipeline runs the asynchronous video job: submit, poll until the
// backend reports a terminal state, download, materialize.
type VideoPipeline struct {
	backend      Backend
	model        string
	pollInterval time.Duration
	// maxPolls bounds the poll loop; 0 keeps polling until the backend
	// answers or ctx is cancelled.
	maxPolls int
	blobs    Materializer
	logger   zerolog.Logger
}

// VideoPipelineOptions configures the poll loop and artifact materialization.
type VideoPipelineOptions struct {
	PollInterval time.Duration
	MaxPolls     int
	Blobs        Materializer
}

func NewVideoPipeline(backend Backend, models Models, opts VideoPipelineOptions, logger zerolog.Logger) *VideoPipeline {
	interval := opts.PollInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &VideoPipeline{
		backend:      backend,
		model:        models.Video,
		pollInterval: interval,
		maxPolls:     opts.MaxPolls,
		blobs:        opts.Blobs,
		logger:       logger,
	}
}

// Generate submits a single-video job and blocks until it resolves. Only the
// two ratios the video model supports are forwarded: vertical requests stay
// vertical, everything else is pinned to horizontal.
func (p *VideoPipeline) Generate(ctx context.Context, prompt string, source *SourceImage, cfg domain.GenerationConfig) (string, error) {
	aspect := string(domain.AspectHorizontal)
	if cfg.AspectRatio == domain.AspectVertical {
		aspect = string(domain.AspectVertical)
	}

	job := genai.VideoJob{
		Prompt:         prompt,
		NumberOfVideos: 1,
		Resolution:     string(cfg.VideoRes),
		AspectRatio:    aspect,
	}
	if source != nil {
		job.Image = &genai.InlineData{
			MimeType: source.MimeType,
			Data:     base64.StdEncoding.EncodeToString(source.Data),
		}
	}

	op, err := p.backend.GenerateVideos(ctx, p.model, job)
	if err != nil {
		return "", fmt.Errorf("submit video job: %w", err)
	}
	if op.Error != nil {
		return "", fmt.Errorf("%w: %s", domain.ErrJobFailed, op.Error.Message)
	}

	op, err = p.awaitCompletion(ctx, op)
	if err != nil {
		return "", err
	}

	uri := op.DownloadURI()
	if uri == "" {
		return "", domain.ErrNoDownloadLink
	}

	blob, err := p.backend.Download(ctx, uri)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrDownloadFailed, err)
	}

	url, err := p.blobs.Materialize(ctx, blob, "video/mp4")
	if err != nil {
		return "", fmt.Errorf("store video: %w", err)
	}
	return url, nil
}

// awaitCompletion re-queries the job handle every pollInterval until the
// backend reports done or an error. The wait is cooperative: ctx cancels it
// between polls.
func (p *VideoPipeline) awaitCompletion(ctx context.Context, op *genai.Operation) (*genai.Operation, error) {
	attempts := 0
	for !op.Done {
		if p.maxPolls > 0 && attempts >= p.maxPolls {
			return nil, fmt.Errorf("video job %s still pending after %d polls", op.Name, attempts)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.pollInterval):
		}

		next, err := p.backend.PollOperation(ctx, op.Name)
		if err != nil {
			return nil, fmt.Errorf("poll video job: %w", err)
		}
		attempts++
		if next.Error != nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrJobFailed, next.Error.Message)
		}
		op = next

		p.logger.Debug().Str("operation", op.Name).Int("polls", attempts).Bool("done", op.Done).Msg("video job polled")
	}
	return op, nil
}
