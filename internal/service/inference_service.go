package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	config "github.com/fbuehler/autopost-api/configs"
	"github.com/fbuehler/autopost-api/pkg/utils"
)

const defaultInferenceModel = "x-ai/grok-4-fast"

// Providers whose models are worth surfacing to the bot's model picker.
var inferenceProviders = []string{"openai", "x-ai", "anthropic", "google"}

type InferenceResult struct {
	Content     string          `json:"content"`
	ContentJSON json.RawMessage `json:"content_json,omitempty"`
	ModelUsed   string          `json:"model_used"`
}

type ModelInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// InferenceService proxies chat completions to OpenRouter. It exists for
// the caption-generation flows of the bot; scheduling never touches it.
type InferenceService interface {
	Complete(ctx context.Context, model, text string) (*InferenceResult, error)
	ListModels(ctx context.Context) ([]ModelInfo, error)
}

type inferenceService struct {
	client *openai.Client
}

func NewInferenceService(cfg config.Config) InferenceService {
	clientCfg := openai.DefaultConfig(cfg.OpenRouterAPIKey)
	clientCfg.BaseURL = cfg.OpenRouterBaseURL
	return &inferenceService{client: openai.NewClientWithConfig(clientCfg)}
}

func (s *inferenceService) Complete(ctx context.Context, model, text string) (*InferenceResult, error) {
	if model == "" {
		model = defaultInferenceModel
	}

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		slog.Error("inference request failed", "model", model, "error", err)
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return &InferenceResult{ModelUsed: model}, nil
	}

	content := resp.Choices[0].Message.Content
	return &InferenceResult{
		Content:     content,
		ContentJSON: utils.ExtractJSON(content),
		ModelUsed:   model,
	}, nil
}

func (s *inferenceService) ListModels(ctx context.Context) ([]ModelInfo, error) {
	list, err := s.client.ListModels(ctx)
	if err != nil {
		slog.Error("listing models failed", "error", err)
		return nil, err
	}

	var filtered []ModelInfo
	for _, model := range list.Models {
		id := strings.ToLower(model.ID)
		for _, provider := range inferenceProviders {
			if strings.Contains(id, provider) {
				filtered = append(filtered, ModelInfo{ID: model.ID, Name: model.ID})
				break
			}
		}
	}
	return filtered, nil
}
