package embedding

import (
	"context"
	"fmt"
	"hash/fnv"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"
)

// queryPrefix conditions the instruction-tuned embedding model for retrieval
// queries. Site embeddings are stored un-prefixed.
const queryPrefix = "Represent this sentence for searching relevant passages: "

// Embedder maps free text to a fixed-length numeric vector. Implementations
// must return vectors of a consistent dimension; the planner excludes catalog
// records whose stored embeddings do not match it.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Dimension() int
}

// GeminiEmbedder produces embeddings through the Gemini embedding API.
type GeminiEmbedder struct {
	client *genai.Client
	model  string
	dim    int
	logger *slog.Logger
}

func NewGeminiEmbedder(ctx context.Context, model string, dim int, logger *slog.Logger) (*GeminiEmbedder, error) {
	apiKey := os.Getenv("GOOGLE_GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GOOGLE_GEMINI_API_KEY environment variable is not set")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiEmbedder{client: client, model: model, dim: dim, logger: logger}, nil
}

func (e *GeminiEmbedder) Dimension() int { return e.dim }

func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	ctx, span := otel.Tracer("Embedding").Start(ctx, "Embed")
	defer span.End()

	if text == "" {
		return make([]float64, e.dim), nil
	}
	if !strings.HasPrefix(text, queryPrefix) {
		text = queryPrefix + strings.TrimSpace(text)
	}

	dim := int32(e.dim)
	result, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), &genai.EmbedContentConfig{
		OutputDimensionality: &dim,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Embedding request failed")
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}
	if len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		err := fmt.Errorf("embedding response contained no values")
		span.RecordError(err)
		return nil, err
	}

	values := result.Embeddings[0].Values
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	span.SetStatus(codes.Ok, "Embedded")
	return out, nil
}

// LocalEmbedder derives deterministic pseudo-embeddings from a hash of the
// input text. It carries no semantics but satisfies the dimensionality
// contract, which is enough for offline runs and reproducible tests.
type LocalEmbedder struct {
	dim int
}

func NewLocalEmbedder(dim int) *LocalEmbedder {
	return &LocalEmbedder{dim: dim}
}

func (e *LocalEmbedder) Dimension() int { return e.dim }

func (e *LocalEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	if text == "" {
		return make([]float64, e.dim), nil
	}
	h := fnv.New64a()
	h.Write([]byte(strings.ToLower(strings.TrimSpace(text))))
	rng := rand.New(rand.NewSource(int64(h.Sum64())))

	vec := make([]float64, e.dim)
	var mag float64
	for i := range vec {
		vec[i] = rng.Float64() - 0.5
		mag += vec[i] * vec[i]
	}
	mag = math.Sqrt(mag)
	if mag > 0 {
		for i := range vec {
			vec[i] /= mag
		}
	}
	return vec, nil
}
