package describe

import (
	"context"
	"fmt"
	"log"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/cloudtrackerhq/cloudtracker/internal/pkg/env"
)

// Describer proposes short application descriptions from name and repository URL.
// It is best-effort: without an API key or on any API failure it returns "".
type Describer struct {
	client *openai.Client
	model  string
}

func New() *Describer {
	apiKey := env.GetEnv("OPENAI_API_KEY", "")
	if apiKey == "" {
		return &Describer{}
	}

	model := env.GetEnv("OPENAI_MODEL", openai.GPT4oMini)
	return &Describer{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Enabled reports whether an API key is configured.
func (d *Describer) Enabled() bool {
	return d.client != nil
}

// Suggest returns a one-sentence description for the application, or "" when
// the feature is unavailable or the request fails.
func (d *Describer) Suggest(ctx context.Context, name, repositoryURL string) string {
	if d.client == nil {
		return ""
	}

	prompt := fmt.Sprintf("Write one short sentence describing a software project named %q.", name)
	if repositoryURL != "" {
		prompt = fmt.Sprintf("Write one short sentence describing a software project named %q hosted at %s.", name, repositoryURL)
	}

	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     d.model,
		MaxTokens: 60,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You write terse, factual one-sentence project descriptions. No marketing language.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		log.Printf("description suggestion failed: %v", err)
		return ""
	}

	if len(resp.Choices) == 0 {
		return ""
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content)
}
