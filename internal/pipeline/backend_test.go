package pipeline

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/faelscarpato/capyvision/internal/genai"
)

func mustUnmarshal(raw []byte, out any) {
	if err := json.Unmarshal(raw, out); err != nil {
		panic(err)
	}
}

// fakeBackend scripts backend behavior per call and records what it saw.
type fakeBackend struct {
	generateCalls []generateCall
	generate      func(call int, model string, parts []genai.Part, cfg *genai.ImageConfig) (*genai.ContentResponse, error)

	submitOp  *genai.Operation
	submitErr error

	pollCalls int
	poll      func(call int) (*genai.Operation, error)

	downloadedURI string
	downloadBody  []byte
	downloadErr   error
}

type generateCall struct {
	model string
	parts []genai.Part
	cfg   *genai.ImageConfig
}

func (f *fakeBackend) GenerateContent(ctx context.Context, model string, parts []genai.Part, cfg *genai.ImageConfig) (*genai.ContentResponse, error) {
	call := len(f.generateCalls)
	f.generateCalls = append(f.generateCalls, generateCall{model: model, parts: parts, cfg: cfg})
	if f.generate == nil {
		return nil, errors.New("generate not scripted")
	}
	return f.generate(call, model, parts, cfg)
}

func (f *fakeBackend) GenerateVideos(ctx context.Context, model string, job genai.VideoJob) (*genai.Operation, error) {
	return f.submitOp, f.submitErr
}

func (f *fakeBackend) PollOperation(ctx context.Context, name string) (*genai.Operation, error) {
	f.pollCalls++
	if f.poll == nil {
		return nil, errors.New("poll not scripted")
	}
	return f.poll(f.pollCalls)
}

func (f *fakeBackend) Download(ctx context.Context, uri string) ([]byte, error) {
	f.downloadedURI = uri
	return f.downloadBody, f.downloadErr
}

// inlineResponse builds a response carrying a single inline image part.
func inlineResponse(mimeType, data string) *genai.ContentResponse {
	var resp genai.ContentResponse
	raw := []byte(`{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"` + mimeType + `","data":"` + data + `"}}]}}]}`)
	mustUnmarshal(raw, &resp)
	return &resp
}

// textResponse builds a response carrying a single text part.
func textResponse(text string) *genai.ContentResponse {
	var resp genai.ContentResponse
	mustUnmarshal([]byte(`{"candidates":[{"content":{"parts":[{"text":"`+text+`"}]}}]}`), &resp)
	return &resp
}

// emptyResponse builds a response with no usable parts.
func emptyResponse() *genai.ContentResponse {
	return &genai.ContentResponse{}
}
