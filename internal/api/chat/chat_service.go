package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/genai"

	"github.com/nileways/trip-planner/internal/models"
)

// Message is one turn of the planning conversation.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// Extraction is the structured trip request distilled from a conversation,
// plus the assistant's next reply. Complete flips once every field the planner
// needs has been collected.
type Extraction struct {
	Reply    string                 `json:"reply"`
	Request  models.UserTripRequest `json:"request"`
	Complete bool                   `json:"complete"`
}

// ModelClient generates one text completion for a prompt.
type ModelClient interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// GeminiClient calls the Gemini API for chat completions.
type GeminiClient struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

var _ ModelClient = (*GeminiClient)(nil)

func NewGeminiClient(ctx context.Context, model string, logger *slog.Logger) (*GeminiClient, error) {
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
	return &GeminiClient{client: client, model: model, logger: logger}, nil
}

func (c *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	ctx, span := otel.Tracer("ChatClient").Start(ctx, "GenerateText")
	defer span.End()

	result, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.4),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Chat completion failed")
		return "", fmt.Errorf("failed to generate chat completion: %w", err)
	}
	span.SetStatus(codes.Ok, "Generated")
	return result.Text(), nil
}

// Service extracts a structured trip request from a planning conversation.
type Service interface {
	ExtractTripRequest(ctx context.Context, messages []Message) (Extraction, error)
}

var _ Service = (*ServiceImpl)(nil)

type ServiceImpl struct {
	client ModelClient
	logger *slog.Logger
}

func NewServiceImpl(client ModelClient, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{client: client, logger: logger}
}

const extractorPersona = `You are Amira, a friendly Egyptian travel consultant helping a visitor plan a trip through Egypt.
Collect, over the conversation, the traveler's age, total budget in EGP, trip length in days, interests, and the cities they want to visit.
Keep replies short, warm and concrete. Suggest Cairo, Giza, Luxor, Aswan and Alexandria when the traveler is unsure.
If the traveler states a budget in another currency, convert it to EGP (assume 1 USD = 50 EGP, 1 EUR = 53 EGP) and confirm the converted amount in your reply.

Respond with a single JSON object and nothing else:
{
  "reply": "<your next message to the traveler>",
  "age": <number or 0 if unknown>,
  "budget": <number in EGP or 0 if unknown>,
  "days": <number or 0 if unknown>,
  "interests": [<strings, empty if unknown>],
  "cities": [<strings, empty if unknown>],
  "complete": <true only when age, budget, days, interests and cities are all known>
}`

// ExtractTripRequest runs the conversation through the model and parses its
// JSON answer. A malformed answer degrades to an incomplete extraction whose
// reply is the raw model text, so the conversation can continue.
func (s *ServiceImpl) ExtractTripRequest(ctx context.Context, messages []Message) (Extraction, error) {
	ctx, span := otel.Tracer("ChatService").Start(ctx, "ExtractTripRequest")
	defer span.End()

	text, err := s.client.GenerateText(ctx, buildConversationPrompt(messages))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Chat completion failed")
		return Extraction{}, fmt.Errorf("failed to extract trip request: %w", err)
	}

	extraction, err := parseExtraction(text)
	if err != nil {
		s.logger.WarnContext(ctx, "Model answer was not valid JSON, continuing conversation",
			slog.Any("error", err))
		return Extraction{Reply: strings.TrimSpace(text)}, nil
	}
	span.SetStatus(codes.Ok, "Extracted")
	return extraction, nil
}

func buildConversationPrompt(messages []Message) string {
	var b strings.Builder
	b.WriteString(extractorPersona)
	b.WriteString("\n\nConversation so far:\n")
	for _, m := range messages {
		role := m.Role
		if role != "assistant" {
			role = "traveler"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, strings.TrimSpace(m.Content))
	}
	b.WriteString("\nYour JSON answer:")
	return b.String()
}

// extractionPayload is the flat JSON shape the model is instructed to emit.
type extractionPayload struct {
	Reply     string   `json:"reply"`
	Age       int      `json:"age"`
	Budget    float64  `json:"budget"`
	Days      int      `json:"days"`
	Interests []string `json:"interests"`
	Cities    []string `json:"cities"`
	Complete  bool     `json:"complete"`
}

// parseExtraction pulls the first JSON object out of the model text, tolerating
// markdown fences and prose around it.
func parseExtraction(text string) (Extraction, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return Extraction{}, fmt.Errorf("no JSON object in model answer")
	}

	var payload extractionPayload
	if err := json.Unmarshal([]byte(text[start:end+1]), &payload); err != nil {
		return Extraction{}, fmt.Errorf("failed to parse model answer: %w", err)
	}
	return Extraction{
		Reply: payload.Reply,
		Request: models.UserTripRequest{
			Age:       payload.Age,
			BudgetEGP: payload.Budget,
			Days:      payload.Days,
			Interests: payload.Interests,
			Cities:    payload.Cities,
		},
		Complete: payload.Complete,
	}, nil
}
