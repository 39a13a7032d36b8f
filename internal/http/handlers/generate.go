package handlers

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/faelscarpato/capyvision/internal/domain"
	"github.com/faelscarpato/capyvision/internal/notify"
	"github.com/faelscarpato/capyvision/internal/pipeline"
)

// maxUploadBytes bounds the multipart body. Source images are re-encoded
// client-side before upload; 32 MiB is generous.
const maxUploadBytes = 32 << 20

func (a *App) Generate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid multipart payload")
		return
	}

	mode, ok := domain.ParseMode(r.FormValue("mode"))
	if !ok {
		a.error(w, http.StatusBadRequest, "bad_request", "unsupported mode")
		return
	}

	req := pipeline.Request{
		Mode:   mode,
		Prompt: r.FormValue("prompt"),
		Config: domain.GenerationConfig{
			AspectRatio: domain.AspectRatio(r.FormValue("aspect_ratio")),
			ImageSize:   domain.ImageSize(r.FormValue("image_size")),
			VideoRes:    domain.VideoResolution(r.FormValue("video_resolution")),
			Style:       r.FormValue("style"),
		},
	}

	source, err := formImage(r, "file")
	if err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "unreadable source image")
		return
	}
	req.Source = source

	if mask, err := formBytes(r, "mask"); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "unreadable mask")
		return
	} else {
		req.MaskPNG = mask
	}

	item, err := a.Dispatcher.Dispatch(r.Context(), req)
	if err != nil {
		a.dispatchError(w, r, err)
		return
	}

	a.Gallery.Prepend(r.Context(), item)
	a.Notifier.Success(r.Context(), a.localized(r, notify.MsgGenerationDone))
	a.json(w, http.StatusCreated, item)
}

// dispatchError maps orchestration sentinels onto transport status codes.
func (a *App) dispatchError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrBusy):
		a.error(w, http.StatusConflict, "busy", "a generation is already in flight")
	case errors.Is(err, domain.ErrCredentialRequired):
		a.error(w, http.StatusUnauthorized, "credential_required", a.localized(r, notify.MsgKeyRequired))
	case errors.Is(err, domain.ErrMissingInput):
		a.error(w, http.StatusBadRequest, "missing_input", "this mode requires a source image")
	default:
		a.Notifier.Failure(r.Context(), a.localized(r, notify.MsgUnexpectedError))
		a.error(w, http.StatusBadGateway, "generation_failed", err.Error())
	}
}

// formImage reads an optional multipart file into a SourceImage. A missing
// part is not an error; validation of required inputs belongs to dispatch.
func formImage(r *http.Request, field string) (*pipeline.SourceImage, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	return &pipeline.SourceImage{MimeType: partMimeType(header), Data: data}, nil
}

func formBytes(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

func partMimeType(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
