package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/cognicore/topictrend/pkg/topictrend/internalerr"
)

type roundTrip func(*http.Request) *http.Response

func (rt roundTrip) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt(req), nil
}

func stubProvider(status int, body string, inspect func(*http.Request)) *Provider {
	return New(Config{
		BaseURL: "http://ollama.test",
		HTTPClient: &http.Client{Transport: roundTrip(func(req *http.Request) *http.Response {
			if inspect != nil {
				inspect(req)
			}
			return &http.Response{
				StatusCode: status,
				Body:       io.NopCloser(strings.NewReader(body)),
				Header:     make(http.Header),
			}
		})},
	})
}

func TestEmbed(t *testing.T) {
	p := stubProvider(200, `{"embedding":[0.5,-1,2]}`, func(req *http.Request) {
		if req.URL.Path != "/api/embeddings" {
			t.Errorf("unexpected path %s", req.URL.Path)
		}
		var body embedRequest
		if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body.Model != DefaultModel || body.Prompt != "cold food" {
			t.Errorf("unexpected request %+v", body)
		}
	})

	emb, err := p.Embed(context.Background(), "cold food")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(emb) != 3 || emb[0] != 0.5 || emb[1] != -1 || emb[2] != 2 {
		t.Errorf("unexpected embedding %v", emb)
	}
	if p.Model() != DefaultModel {
		t.Errorf("Model = %q", p.Model())
	}
}

func TestEmbedEmpty(t *testing.T) {
	p := stubProvider(200, `{"embedding":[]}`, nil)
	if _, err := p.Embed(context.Background(), "x"); !errors.Is(err, internalerr.ErrEmbeddingUnavailable) {
		t.Errorf("expected ErrEmbeddingUnavailable, got %v", err)
	}
}

func TestEmbedHTTPError(t *testing.T) {
	p := stubProvider(404, `model not found`, nil)
	_, err := p.Embed(context.Background(), "x")
	if err == nil || !strings.Contains(err.Error(), "model not found") {
		t.Errorf("expected status error, got %v", err)
	}
}
