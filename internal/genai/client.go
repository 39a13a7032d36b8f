// Package genai is a lightweight facade over the generative backend's HTTP
// API. Pipelines translate domain requests into parts and configs; this
// package owns the wire shapes, authentication and response decoding.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options controls how the client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     zerolog.Logger
}

// Client issues generateContent calls, long-running video jobs and
// authenticated artifact downloads. The API key may be empty: hosted
// environments authorize calls out of band, and the key query parameter is
// simply omitted.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient constructs a client with sane defaults. A nil HTTP client gets a
// reusable one sized for long generation calls.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     opts.Logger,
	}
}

// Part is one element of a multi-part request or response content.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

// InlineData carries base64-encoded binary content with its MIME type.
type InlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

// TextPart builds a text-only part.
func TextPart(text string) Part {
	return Part{Text: text}
}

// InlinePart builds an inline-data part from already-encoded base64 content.
func InlinePart(mimeType, data string) Part {
	return Part{InlineData: &InlineData{MimeType: mimeType, Data: data}}
}

// ImageConfig mirrors the backend's image generation controls. ImageSize is
// only honored by the pro model tier; the flash tier receives aspect ratio
// alone.
type ImageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
	ImageSize   string `json:"imageSize,omitempty"`
}

type content struct {
	Parts []Part `json:"parts"`
}

type generationConfig struct {
	ImageConfig *ImageConfig `json:"imageConfig,omitempty"`
}

type generateContentRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

// ContentResponse is the decoded generateContent payload.
type ContentResponse struct {
	Candidates []candidate `json:"candidates"`
}

// InlineImage returns the MIME type and base64 payload of the first inline
// part in the response, if any.
func (r *ContentResponse) InlineImage() (mimeType, data string, ok bool) {
	if r == nil {
		return "", "", false
	}
	for _, cand := range r.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				return part.InlineData.MimeType, part.InlineData.Data, true
			}
		}
	}
	return "", "", false
}

// Text returns the first textual part in the response, or "".
func (r *ContentResponse) Text() string {
	if r == nil {
		return ""
	}
	for _, cand := range r.Candidates {
		for _, part := range cand.Content.Parts {
			if part.Text != "" {
				return part.Text
			}
		}
	}
	return ""
}

// GenerateContent invokes a model with the given parts and optional image
// generation controls.
func (c *Client) GenerateContent(ctx context.Context, model string, parts []Part, imageCfg *ImageConfig) (*ContentResponse, error) {
	payload := generateContentRequest{
		Contents: []content{{Parts: parts}},
	}
	if imageCfg != nil {
		payload.GenerationConfig = &generationConfig{ImageConfig: imageCfg}
	}

	var response ContentResponse
	path := fmt.Sprintf("/models/%s:generateContent", url.PathEscape(model))
	if err := c.invoke(ctx, path, payload, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// VideoJob describes a video synthesis submission.
type VideoJob struct {
	Prompt         string
	NumberOfVideos int
	Resolution     string
	AspectRatio    string
	Image          *InlineData
}

type videoInstance struct {
	Prompt string      `json:"prompt"`
	Image  *videoImage `json:"image,omitempty"`
}

type videoImage struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType"`
}

type videoParameters struct {
	NumberOfVideos int    `json:"numberOfVideos,omitempty"`
	Resolution     string `json:"resolution,omitempty"`
	AspectRatio    string `json:"aspectRatio,omitempty"`
}

type videoJobRequest struct {
	Instances  []videoInstance `json:"instances"`
	Parameters videoParameters `json:"parameters"`
}

// OperationError is a backend-reported job failure.
type OperationError struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

type generatedVideo struct {
	URI string `json:"uri,omitempty"`
}

type generatedSample struct {
	Video generatedVideo `json:"video"`
}

type videoJobResponse struct {
	GeneratedSamples []generatedSample `json:"generatedSamples,omitempty"`
}

type operationResponse struct {
	GenerateVideoResponse *videoJobResponse `json:"generateVideoResponse,omitempty"`
}

// Operation is the transient handle of an asynchronous video job. Polled
// until Done; discarded once resolved.
type Operation struct {
	Name     string             `json:"name"`
	Done     bool               `json:"done"`
	Error    *OperationError    `json:"error,omitempty"`
	Response *operationResponse `json:"response,omitempty"`
}

// DownloadURI returns the artifact locator of a finished job, or "".
func (o *Operation) DownloadURI() string {
	if o == nil || o.Response == nil || o.Response.GenerateVideoResponse == nil {
		return ""
	}
	for _, sample := range o.Response.GenerateVideoResponse.GeneratedSamples {
		if sample.Video.URI != "" {
			return sample.Video.URI
		}
	}
	return ""
}

// GenerateVideos submits a long-running video synthesis job.
func (c *Client) GenerateVideos(ctx context.Context, model string, job VideoJob) (*Operation, error) {
	instance := videoInstance{Prompt: job.Prompt}
	if job.Image != nil {
		instance.Image = &videoImage{
			BytesBase64Encoded: job.Image.Data,
			MimeType:           job.Image.MimeType,
		}
	}
	payload := videoJobRequest{
		Instances: []videoInstance{instance},
		Parameters: videoParameters{
			NumberOfVideos: job.NumberOfVideos,
			Resolution:     job.Resolution,
			AspectRatio:    job.AspectRatio,
		},
	}

	var op Operation
	path := fmt.Sprintf("/models/%s:predictLongRunning", url.PathEscape(model))
	if err := c.invoke(ctx, path, payload, &op); err != nil {
		return nil, err
	}
	return &op, nil
}

// PollOperation re-queries a job handle by name.
func (c *Client) PollOperation(ctx context.Context, name string) (*Operation, error) {
	endpoint := c.baseURL + "/" + strings.TrimLeft(name, "/")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("genai: create poll request: %w", err)
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("genai: poll operation: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, c.decodeError(resp)
	}

	var op Operation
	if err := json.NewDecoder(resp.Body).Decode(&op); err != nil {
		return nil, fmt.Errorf("genai: decode operation: %w", err)
	}
	return &op, nil
}

// Download fetches artifact bytes from a locator, appending the held key as
// an access token the way the backend's signed download links expect.
func (c *Client) Download(ctx context.Context, uri string) ([]byte, error) {
	target := uri
	if c.apiKey != "" {
		target = uri + "&key=" + c.apiKey
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("genai: create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("genai: download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("genai: download status %d", resp.StatusCode)
	}

	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("genai: read download: %w", err)
	}
	return blob, nil
}

func (c *Client) invoke(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("genai: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("genai: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("genai: invoke: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return c.decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("genai: decode response: %w", err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.apiKey == "" {
		return
	}
	q := req.URL.Query()
	q.Set("key", c.apiKey)
	req.URL.RawQuery = q.Encode()
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

func (c *Client) decodeError(resp *http.Response) error {
	var apiErr apiErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error.Message != "" {
		return fmt.Errorf("genai: status %d: %s", resp.StatusCode, apiErr.Error.Message)
	}
	data, _ := io.ReadAll(resp.Body)
	if len(data) > 0 {
		return fmt.Errorf("genai: status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return fmt.Errorf("genai: status %d", resp.StatusCode)
}
