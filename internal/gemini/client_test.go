package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Options{
		APIKey:     "test-key",
		BaseURL:    srv.URL,
		Model:      "test-model",
		HTTPClient: srv.Client(),
	})
}

func imageResponse(data []byte, mime string) geminiGenerateContentResponse {
	return geminiGenerateContentResponse{
		Candidates: []geminiCandidate{{
			Content: geminiContent{Parts: []geminiPart{{
				InlineData: &geminiInlineData{
					MimeType: mime,
					Data:     base64.StdEncoding.EncodeToString(data),
				},
			}}},
		}},
	}
}

func TestGenerateImageSuccess(t *testing.T) {
	pixels := []byte{0x89, 0x50, 0x4e, 0x47}
	var gotRequest geminiGenerateContentRequest

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/test-model:generateContent" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("api key header = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotRequest); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(imageResponse(pixels, "image/png"))
	})

	out, err := client.GenerateImage(context.Background(),
		[]Image{{Data: []byte("selfie"), MIME: "image/jpeg"}},
		"make it professional")
	if err != nil {
		t.Fatalf("GenerateImage() error: %v", err)
	}
	if !bytes.Equal(out.Data, pixels) || out.MIME != "image/png" {
		t.Fatalf("GenerateImage() = %+v", out)
	}

	parts := gotRequest.Contents[0].Parts
	if len(parts) != 2 {
		t.Fatalf("request parts = %d, want image + text", len(parts))
	}
	if parts[0].InlineData == nil || parts[0].InlineData.MimeType != "image/jpeg" {
		t.Fatalf("first part is not the inline selfie: %+v", parts[0])
	}
	if parts[1].Text != "make it professional" {
		t.Fatalf("instruction text = %q", parts[1].Text)
	}
	ic := gotRequest.GenerationConfig.ImageConfig
	if ic == nil || ic.AspectRatio != "1:1" {
		t.Fatalf("image config = %+v, want 1:1 aspect ratio", ic)
	}
}

func TestGenerateImageSecondInlineImage(t *testing.T) {
	var gotRequest geminiGenerateContentRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&gotRequest)
		_ = json.NewEncoder(w).Encode(imageResponse([]byte{1}, "image/png"))
	})

	_, err := client.GenerateImage(context.Background(), []Image{
		{Data: []byte("selfie"), MIME: "image/jpeg"},
		{Data: []byte("office"), MIME: "image/png"},
	}, "composite")
	if err != nil {
		t.Fatalf("GenerateImage() error: %v", err)
	}
	parts := gotRequest.Contents[0].Parts
	if len(parts) != 3 || parts[1].InlineData == nil || parts[1].InlineData.MimeType != "image/png" {
		t.Fatalf("custom background did not travel as second inline part: %+v", parts)
	}
}

func TestGenerateImageRefusal(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(geminiGenerateContentResponse{
			Candidates: []geminiCandidate{{
				Content: geminiContent{Parts: []geminiPart{{
					Text: "I cannot edit photos of this kind.",
				}}},
			}},
		})
	})

	_, err := client.GenerateImage(context.Background(), []Image{{Data: []byte{1}, MIME: "image/png"}}, "x")
	if KindOf(err) != FailureRefusal {
		t.Fatalf("KindOf() = %q, want refusal (err=%v)", KindOf(err), err)
	}
	var f *Failure
	if !errors.As(err, &f) || f.Detail != "I cannot edit photos of this kind." {
		t.Fatalf("refusal detail = %+v", f)
	}
}

func TestGenerateImageMalformed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(geminiGenerateContentResponse{})
	})

	_, err := client.GenerateImage(context.Background(), []Image{{Data: []byte{1}, MIME: "image/png"}}, "x")
	if KindOf(err) != FailureMalformed {
		t.Fatalf("KindOf() = %q, want malformed (err=%v)", KindOf(err), err)
	}
}

func TestGenerateImageTransportError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"code":429,"message":"quota exceeded"}}`))
	})

	_, err := client.GenerateImage(context.Background(), []Image{{Data: []byte{1}, MIME: "image/png"}}, "x")
	if KindOf(err) != FailureTransport {
		t.Fatalf("KindOf() = %q, want transport (err=%v)", KindOf(err), err)
	}
	if got := err.Error(); !bytes.Contains([]byte(got), []byte("quota exceeded")) {
		t.Fatalf("transport error lost the API message: %q", got)
	}
}

func TestGenerateImageDefaultsMIME(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		resp := imageResponse([]byte{1, 2}, "")
		_ = json.NewEncoder(w).Encode(resp)
	})

	out, err := client.GenerateImage(context.Background(), []Image{{Data: []byte{1}, MIME: "image/png"}}, "x")
	if err != nil {
		t.Fatalf("GenerateImage() error: %v", err)
	}
	if out.MIME != "image/png" {
		t.Fatalf("missing mime type defaulted to %q", out.MIME)
	}
}
