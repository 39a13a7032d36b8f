package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/faelscarpato/capyvision/internal/credential"
	"github.com/faelscarpato/capyvision/internal/domain"
)

// Request is one user-submitted generation request.
type Request struct {
	Mode   domain.Mode
	Prompt string
	Config domain.GenerationConfig
	// Source is required for EDIT and ANALYZE, optional conditioning input
	// for VIDEO, ignored for IMAGE.
	Source *SourceImage
	// MaskPNG scopes an EDIT to a region. PNG-encoded by the producer.
	MaskPNG []byte
}

// CredentialResolver is the dispatcher's view of the credential layer.
type CredentialResolver interface {
	Resolve(ctx context.Context) (credential.Credential, error)
}

// BackendFactory builds a backend client bound to the resolved secret. The
// secret may be empty when the hosting environment authorizes out of band.
type BackendFactory func(secret string) Backend

// DispatcherOptions wires the dispatcher's collaborators.
type DispatcherOptions struct {
	Resolver   CredentialResolver
	NewBackend BackendFactory
	Models     Models
	Video      VideoPipelineOptions
}

// Dispatcher routes requests to the pipeline matching their mode and
// enforces the single-flight invariant with an atomic busy token: a second
// dispatch while one is in flight fails with domain.ErrBusy instead of
// queueing.
type Dispatcher struct {
	resolver   CredentialResolver
	newBackend BackendFactory
	models     Models
	video      VideoPipelineOptions
	logger     zerolog.Logger
	busy       atomic.Bool
}

func NewDispatcher(opts DispatcherOptions, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		resolver:   opts.Resolver,
		newBackend: opts.NewBackend,
		models:     opts.Models,
		video:      opts.Video,
		logger:     logger,
	}
}

// Busy reports whether a dispatch is currently in flight.
func (d *Dispatcher) Busy() bool {
	return d.busy.Load()
}

// Dispatch resolves the credential, routes to the mode's pipeline and wraps
// the produced artifact into a MediaItem. Input validation happens before
// any network call.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) (domain.MediaItem, error) {
	if !d.busy.CompareAndSwap(false, true) {
		return domain.MediaItem{}, domain.ErrBusy
	}
	defer d.busy.Store(false)

	switch req.Mode {
	case domain.ModeEdit, domain.ModeAnalyze:
		if req.Source == nil || len(req.Source.Data) == 0 {
			return domain.MediaItem{}, domain.ErrMissingInput
		}
	case domain.ModeImage, domain.ModeVideo:
	default:
		return domain.MediaItem{}, fmt.Errorf("unsupported mode %q", req.Mode)
	}

	cred, err := d.resolver.Resolve(ctx)
	if err != nil {
		return domain.MediaItem{}, fmt.Errorf("resolve credential: %w", err)
	}
	if !cred.Active {
		return domain.MediaItem{}, domain.ErrCredentialRequired
	}

	backend := d.newBackend(cred.Secret)
	cfg := req.Config.Normalize()

	started := time.Now()
	var url string
	switch req.Mode {
	case domain.ModeImage:
		url, err = NewImagePipeline(backend, d.models, d.logger).Generate(ctx, req.Prompt, cfg)
	case domain.ModeVideo:
		url, err = NewVideoPipeline(backend, d.models, d.video, d.logger).Generate(ctx, req.Prompt, req.Source, cfg)
	case domain.ModeEdit:
		url, err = NewEditPipeline(backend, d.models, d.logger).Edit(ctx, req.Prompt, *req.Source, req.MaskPNG)
	case domain.ModeAnalyze:
		url, err = NewAnalyzePipeline(backend, d.models, d.logger).Analyze(ctx, req.Prompt, *req.Source)
	}
	if err != nil {
		d.logger.Error().Err(err).Str("mode", string(req.Mode)).Dur("elapsed", time.Since(started)).Msg("generation failed")
		return domain.MediaItem{}, err
	}

	item := domain.MediaItem{
		ID:        domain.NewItemID(),
		Kind:      req.Mode.Kind(),
		URL:       url,
		Prompt:    promptLabel(req.Mode, req.Prompt),
		Timestamp: time.Now(),
		Metadata:  domain.MediaMetadata{Config: cfg, Mode: req.Mode},
	}
	d.logger.Info().Str("mode", string(req.Mode)).Str("item", item.ID).Dur("elapsed", time.Since(started)).Msg("generation finished")
	return item, nil
}

// promptLabel substitutes a mode-specific placeholder for empty prompts.
func promptLabel(mode domain.Mode, prompt string) string {
	if prompt != "" {
		return prompt
	}
	if mode == domain.ModeAnalyze {
		return "Image Analysis"
	}
	return "Untitled"
}
