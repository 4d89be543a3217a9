// Package gemini is the client for the external generative image model. It
// speaks the generateContent REST protocol with inline image parts and
// normalizes every outcome into exactly one image or a classified Failure.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"prolink-server/internal/infra"
)

const defaultModel = "gemini-2.5-flash-image"

// Options controls how the client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	Model      string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// Client invokes the generateContent endpoint for one model.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
	logger     *infra.Logger
}

// Image is one inline image payload, either an input or the single output.
type Image struct {
	Data []byte
	MIME string
}

// NewClient constructs a client with sane defaults. A nil HTTP client gets a
// reusable one with a generation-sized timeout.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 120 * time.Second}
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}

	model := opts.Model
	if model == "" {
		model = defaultModel
	}

	logger := opts.Logger
	if logger == nil {
		discard := infra.Logger(zerolog.New(io.Discard))
		logger = &discard
	}

	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		model:      model,
		httpClient: httpClient,
		logger:     logger,
	}
}

// Model returns the configured model identifier.
func (c *Client) Model() string {
	return c.model
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inlineData,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type geminiImageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type geminiGenerationConfig struct {
	ImageConfig *geminiImageConfig `json:"imageConfig,omitempty"`
}

type geminiGenerateContentRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiCandidate struct {
	Content      geminiContent `json:"content"`
	FinishReason string        `json:"finishReason,omitempty"`
}

type geminiGenerateContentResponse struct {
	Candidates []geminiCandidate `json:"candidates"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// GenerateImage sends the input images followed by the instruction text and
// returns the single image part of the response. A completed call that carries
// only text is a refusal; one with neither image nor text is malformed.
func (c *Client) GenerateImage(ctx context.Context, images []Image, instruction string) (Image, error) {
	parts := make([]geminiPart, 0, len(images)+1)
	for _, img := range images {
		parts = append(parts, geminiPart{
			InlineData: &geminiInlineData{
				MimeType: img.MIME,
				Data:     base64.StdEncoding.EncodeToString(img.Data),
			},
		})
	}
	parts = append(parts, geminiPart{Text: instruction})

	payload := geminiGenerateContentRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: &geminiGenerationConfig{
			ImageConfig: &geminiImageConfig{AspectRatio: "1:1"},
		},
	}

	var response geminiGenerateContentResponse
	if err := c.invoke(ctx, fmt.Sprintf("/models/%s:generateContent", url.PathEscape(c.model)), payload, &response); err != nil {
		return Image{}, &Failure{Kind: FailureTransport, Err: err}
	}

	return extractImage(response)
}

func extractImage(resp geminiGenerateContentResponse) (Image, error) {
	if len(resp.Candidates) == 0 {
		return Image{}, &Failure{Kind: FailureMalformed, Detail: "no candidates returned"}
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil && part.InlineData.Data != "" {
			data, err := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if err != nil {
				return Image{}, &Failure{Kind: FailureMalformed, Detail: "undecodable inline data", Err: err}
			}
			mime := part.InlineData.MimeType
			if mime == "" {
				mime = "image/png"
			}
			return Image{Data: data, MIME: mime}, nil
		}
		if part.Text != "" {
			text.WriteString(part.Text)
		}
	}

	if msg := strings.TrimSpace(text.String()); msg != "" {
		return Image{}, &Failure{Kind: FailureRefusal, Detail: msg}
	}
	return Image{}, &Failure{Kind: FailureMalformed, Detail: "no image data found in response"}
}

func (c *Client) invoke(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr geminiErrorResponse
		raw, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(raw, &apiErr); err == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		if len(raw) > 0 {
			return fmt.Errorf("gemini status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		}
		return fmt.Errorf("gemini status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}
