package gateway

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// SystemPrompt sets the assistant's persona.
const SystemPrompt = `You are Astrin, a cosmic AI companion with deep knowledge of space, astronomy, astrophysics, and space exploration.
You're capable of retrieving live cosmic data via external tools. Respond with concise, inspiring cosmic metaphors.`

var errNoChoices = errors.New("completion returned no choices")

// TogetherCompleter answers prompts through Together's OpenAI-compatible
// chat completions API.
type TogetherCompleter struct {
	client openai.Client
	model  string
}

func NewTogetherCompleter(baseURL, apiKey, model string, opts ...option.RequestOption) *TogetherCompleter {
	base := []option.RequestOption{
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	return &TogetherCompleter{
		client: openai.NewClient(append(base, opts...)...),
		model:  model,
	}
}

func (c *TogetherCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt),
			openai.UserMessage(prompt),
		},
		Model:       openai.ChatModel(c.model),
		Temperature: openai.Float(0.7),
		MaxTokens:   openai.Int(300),
		TopP:        openai.Float(0.9),
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", &CompletionStatusError{Code: apiErr.StatusCode, Err: err}
		}
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errNoChoices
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
