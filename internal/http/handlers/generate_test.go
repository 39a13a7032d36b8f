package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/faelscarpato/capyvision/internal/credential"
	"github.com/faelscarpato/capyvision/internal/domain"
	"github.com/faelscarpato/capyvision/internal/gallery"
	"github.com/faelscarpato/capyvision/internal/middleware"
	"github.com/faelscarpato/capyvision/internal/pipeline"
)

type stubDispatcher struct {
	mu   sync.Mutex
	last pipeline.Request
	item domain.MediaItem
	err  error
	busy bool
}

func (d *stubDispatcher) Dispatch(ctx context.Context, req pipeline.Request) (domain.MediaItem, error) {
	d.mu.Lock()
	d.last = req
	d.mu.Unlock()
	if d.err != nil {
		return domain.MediaItem{}, d.err
	}
	return d.item, nil
}

func (d *stubDispatcher) Busy() bool { return d.busy }

type stubCredentials struct {
	secret string
	setErr error
	got    string
	calls  []string
}

func (s *stubCredentials) Secret(ctx context.Context) (string, error) {
	s.calls = append(s.calls, "secret")
	return s.secret, nil
}

func (s *stubCredentials) SetSecret(ctx context.Context, secret string) error {
	s.calls = append(s.calls, "set")
	s.got = secret
	return s.setErr
}

func (s *stubCredentials) Clear(ctx context.Context) error {
	s.calls = append(s.calls, "clear")
	return nil
}

type stubResolver struct {
	cred credential.Credential
	err  error
}

func (s *stubResolver) Resolve(ctx context.Context) (credential.Credential, error) {
	return s.cred, s.err
}

type recordingSink struct {
	success []string
	failure []string
	info    []string
}

func (s *recordingSink) Success(ctx context.Context, msg string) { s.success = append(s.success, msg) }
func (s *recordingSink) Failure(ctx context.Context, msg string) { s.failure = append(s.failure, msg) }
func (s *recordingSink) Info(ctx context.Context, msg string)    { s.info = append(s.info, msg) }

type memorySnapshots struct {
	data []byte
}

func (m *memorySnapshots) Save(ctx context.Context, data []byte) error {
	m.data = append([]byte(nil), data...)
	return nil
}

func (m *memorySnapshots) Load(ctx context.Context) ([]byte, error) { return m.data, nil }

func newTestApp(d *stubDispatcher) (*App, *recordingSink, *gallery.Store) {
	sink := &recordingSink{}
	store := gallery.NewStore(&memorySnapshots{}, zerolog.New(io.Discard))
	app := &App{
		Dispatcher:  d,
		Gallery:     store,
		Credentials: &stubCredentials{},
		Resolver:    &stubResolver{},
		Notifier:    sink,
		Logger:      zerolog.New(io.Discard),
	}
	return app, sink, store
}

type formFile struct {
	field, name, mime string
	data              []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...formFile) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	for _, f := range files {
		hdr := make(map[string][]string)
		hdr["Content-Disposition"] = []string{`form-data; name="` + f.field + `"; filename="` + f.name + `"`}
		hdr["Content-Type"] = []string{f.mime}
		part, err := mw.CreatePart(hdr)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(f.data); err != nil {
			t.Fatalf("write part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return body, mw.FormDataContentType()
}

func TestGenerate_Success(t *testing.T) {
	disp := &stubDispatcher{item: domain.MediaItem{
		ID:        "abc123xyz",
		Kind:      domain.MediaKindImage,
		URL:       "data:image/png;base64,eA==",
		Prompt:    "a capybara",
		Timestamp: time.Now(),
	}}
	app, sink, store := newTestApp(disp)

	body, ct := multipartBody(t, map[string]string{
		"mode":         "image",
		"prompt":       "a capybara",
		"aspect_ratio": "16:9",
		"image_size":   "2K",
		"style":        "Anime",
	})
	req := httptest.NewRequest(http.MethodPost, "/v1/generate", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	app.Generate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var item domain.MediaItem
	if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if item.ID != "abc123xyz" {
		t.Fatalf("unexpected item: %+v", item)
	}
	if disp.last.Mode != domain.ModeImage || disp.last.Prompt != "a capybara" {
		t.Fatalf("unexpected dispatch request: %+v", disp.last)
	}
	if disp.last.Config.AspectRatio != domain.AspectHorizontal || disp.last.Config.ImageSize != domain.ImageSize2K {
		t.Fatalf("config not forwarded: %+v", disp.last.Config)
	}
	if disp.last.Config.Style != "Anime" {
		t.Fatalf("style not forwarded: %+v", disp.last.Config)
	}
	if store.Len() != 1 {
		t.Fatalf("item not prepended to gallery")
	}
	if len(sink.success) != 1 {
		t.Fatalf("expected one success notification, got %v", sink.success)
	}
}

func TestGenerate_ForwardsSourceAndMask(t *testing.T) {
	disp := &stubDispatcher{item: domain.MediaItem{ID: "x"}}
	app, _, _ := newTestApp(disp)

	body, ct := multipartBody(t, map[string]string{"mode": "edit", "prompt": "remove the hat"},
		formFile{field: "file", name: "in.jpg", mime: "image/jpeg", data: []byte{0xff, 0xd8, 0x01}},
		formFile{field: "mask", name: "mask.png", mime: "image/png", data: []byte{0x89, 0x50}},
	)
	req := httptest.NewRequest(http.MethodPost, "/v1/generate", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	app.Generate(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if disp.last.Source == nil || disp.last.Source.MimeType != "image/jpeg" {
		t.Fatalf("source not forwarded: %+v", disp.last.Source)
	}
	if !bytes.Equal(disp.last.Source.Data, []byte{0xff, 0xd8, 0x01}) {
		t.Fatalf("source bytes mangled")
	}
	if !bytes.Equal(disp.last.MaskPNG, []byte{0x89, 0x50}) {
		t.Fatalf("mask bytes mangled")
	}
}

func TestGenerate_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"busy", domain.ErrBusy, http.StatusConflict},
		{"credential required", domain.ErrCredentialRequired, http.StatusUnauthorized},
		{"missing input", domain.ErrMissingInput, http.StatusBadRequest},
		{"backend failure", errors.New("model exploded"), http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app, sink, store := newTestApp(&stubDispatcher{err: tc.err})
			body, ct := multipartBody(t, map[string]string{"mode": "image", "prompt": "p"})
			req := httptest.NewRequest(http.MethodPost, "/v1/generate", body)
			req.Header.Set("Content-Type", ct)
			rec := httptest.NewRecorder()
			app.Generate(rec, req)

			if rec.Code != tc.want {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tc.want, rec.Body.String())
			}
			if store.Len() != 0 {
				t.Fatalf("failed dispatch must not touch the gallery")
			}
			if len(sink.success) != 0 {
				t.Fatalf("failed dispatch must not report success")
			}
		})
	}
}

func TestGenerate_FailureSurfacesMessage(t *testing.T) {
	app, sink, _ := newTestApp(&stubDispatcher{err: errors.New("tier 2 said no")})
	body, ct := multipartBody(t, map[string]string{"mode": "image", "prompt": "p"})
	req := httptest.NewRequest(http.MethodPost, "/v1/generate", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	app.Generate(rec, req)

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp["message"] != "tier 2 said no" {
		t.Fatalf("deepest failure message lost: %q", resp["message"])
	}
	if len(sink.failure) != 1 {
		t.Fatalf("expected one failure notification, got %v", sink.failure)
	}
}

func TestGenerate_UnknownMode(t *testing.T) {
	app, _, _ := newTestApp(&stubDispatcher{})
	body, ct := multipartBody(t, map[string]string{"mode": "hologram"})
	req := httptest.NewRequest(http.MethodPost, "/v1/generate", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	app.Generate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestGenerate_LocalizedCredentialMessage(t *testing.T) {
	app, _, _ := newTestApp(&stubDispatcher{err: domain.ErrCredentialRequired})
	body, ct := multipartBody(t, map[string]string{"mode": "image", "prompt": "p"})
	req := httptest.NewRequest(http.MethodPost, "/v1/generate", body)
	req.Header.Set("Content-Type", ct)
	req = req.WithContext(context.WithValue(req.Context(), middleware.LocaleKey, "pt"))
	rec := httptest.NewRecorder()
	app.Generate(rec, req)

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if resp["message"] != "Por favor, insira sua chave API para continuar" {
		t.Fatalf("expected localized message, got %q", resp["message"])
	}
}
