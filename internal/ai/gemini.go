package ai

import (
	"context"
	stderrors "errors"
	"fmt"

	"google.golang.org/genai"

	"github.com/agentstation/apidrift/pkg/errors"
	"github.com/agentstation/apidrift/pkg/logging"
)

// Gemini generates JSON with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini generator.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, &errors.ConfigError{Component: "gemini", Message: "GEMINI_API_KEY is not set", Err: errors.ErrAPIKeyRequired}
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.NewConfigError("gemini", "failed to create client", err)
	}
	return &Gemini{client: client, model: model}, nil
}

// GenerateJSON implements Generator.
func (g *Gemini) GenerateJSON(ctx context.Context, system, prompt string) (string, error) {
	var instruction *genai.Content
	if system != "" {
		instruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: instruction,
		Temperature:       genai.Ptr[float32](0.1),
		ResponseMIMEType:  "application/json",
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", errors.WrapAPI("gemini", geminiStatus(err), err)
	}
	text := resp.Text()
	if text == "" {
		return "", errors.NewAPIError("gemini", 0, "empty response")
	}

	logging.FromContext(ctx).Debug().
		Str("model", g.model).
		Int("prompt_length", len(prompt)).
		Int("response_length", len(text)).
		Msg("gemini completion")
	return CleanJSON(text), nil
}

func geminiStatus(err error) int {
	var ptr *genai.APIError
	if stderrors.As(err, &ptr) {
		return ptr.Code
	}
	var val genai.APIError
	if stderrors.As(err, &val) {
		return val.Code
	}
	return 0
}

// String describes the generator.
func (g *Gemini) String() string {
	return fmt.Sprintf("gemini(%s)", g.model)
}
