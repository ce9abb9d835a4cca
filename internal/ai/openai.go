package ai

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/agentstation/apidrift/pkg/errors"
	"github.com/agentstation/apidrift/pkg/logging"
)

// OpenAI generates JSON with an OpenAI-compatible chat completion API.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates an OpenAI generator. baseURL may be empty.
func NewOpenAI(apiKey, model, baseURL string) (*OpenAI, error) {
	if apiKey == "" {
		return nil, &errors.ConfigError{Component: "openai", Message: "OPENAI_API_KEY is not set", Err: errors.ErrAPIKeyRequired}
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg), model: model}, nil
}

// GenerateJSON implements Generator.
func (o *OpenAI) GenerateJSON(ctx context.Context, system, prompt string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: system})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: prompt})

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    messages,
		Temperature: 0.1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", errors.WrapAPI("openai", openAIStatus(err), err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.NewAPIError("openai", 0, "no choices returned")
	}
	text := resp.Choices[0].Message.Content

	logging.FromContext(ctx).Debug().
		Str("model", o.model).
		Int("prompt_length", len(prompt)).
		Int("response_length", len(text)).
		Msg("openai completion")
	return CleanJSON(text), nil
}

func openAIStatus(err error) int {
	var apiErr *openai.APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if stderrors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

// String describes the generator.
func (o *OpenAI) String() string {
	return fmt.Sprintf("openai(%s)", o.model)
}
