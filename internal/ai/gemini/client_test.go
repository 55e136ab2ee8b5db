package gemini

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

type fakeEmbedClient struct {
	calls  []int
	models []string
	err    error
	short  bool
}

func (f *fakeEmbedClient) EmbedContent(_ context.Context, model string, contents []*genai.Content, _ *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	f.calls = append(f.calls, len(contents))
	f.models = append(f.models, model)
	if f.err != nil {
		return nil, f.err
	}

	resp := &genai.EmbedContentResponse{}
	n := len(contents)
	if f.short {
		n--
	}
	for i := 0; i < n; i++ {
		text := contents[i].Parts[0].Text
		resp.Embeddings = append(resp.Embeddings, &genai.ContentEmbedding{Values: []float32{float32(len(text))}})
	}
	return resp, nil
}

func TestEmbedderBatchesRequests(t *testing.T) {
	client := &fakeEmbedClient{}
	embedder := newEmbedder(client, "", zap.NewNop())

	texts := make([]string, maxBatch+5)
	for i := range texts {
		texts[i] = "word"
	}
	texts[maxBatch+4] = "longer text"

	vectors, err := embedder.Embed(context.Background(), texts)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(vectors) != len(texts) {
		t.Fatalf("expected %d vectors, got %d", len(texts), len(vectors))
	}
	if len(client.calls) != 2 || client.calls[0] != maxBatch || client.calls[1] != 5 {
		t.Fatalf("unexpected batches: %v", client.calls)
	}
	if client.models[0] != defaultModel {
		t.Fatalf("expected default model, got %q", client.models[0])
	}
	if vectors[maxBatch+4][0] != float32(len("longer text")) {
		t.Fatalf("expected vectors to keep input order")
	}
}

func TestEmbedderErrors(t *testing.T) {
	failing := newEmbedder(&fakeEmbedClient{err: errors.New("quota")}, "m", nil)
	if _, err := failing.Embed(context.Background(), []string{"a"}); err == nil {
		t.Fatalf("expected error from client")
	}

	short := newEmbedder(&fakeEmbedClient{short: true}, "m", nil)
	if _, err := short.Embed(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatalf("expected error on embedding count mismatch")
	}

	var nilEmbedder *Embedder
	if _, err := nilEmbedder.Embed(context.Background(), []string{"a"}); err == nil {
		t.Fatalf("expected error for nil embedder")
	}

	if _, err := NewEmbedder(context.Background(), "  ", "", nil); err == nil {
		t.Fatalf("expected error for empty api key")
	}
}
