package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/chatzinho/chatzinho/backend/internal/config"
	replyservice "github.com/chatzinho/chatzinho/backend/internal/service/reply"
)

// Service wraps a chat model as a one-shot text completion client.
type Service struct {
	chain  compose.Runnable[map[string]any, *schema.Message]
	system string
}

var _ replyservice.Completer = (*Service)(nil)

// NewService compiles the completion chain around chatModel.
func NewService(ctx context.Context, chatModel model.BaseChatModel, botName string) (*Service, error) {
	if chatModel == nil {
		return nil, fmt.Errorf("chat model is required")
	}

	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.SystemMessage("{system}"),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile completion chain: %w", err)
	}

	return &Service{
		chain:  runnable,
		system: BuildSystemPrompt(botName),
	}, nil
}

// NewServiceFromConfig builds the ark chat model described by cfg and wraps it.
func NewServiceFromConfig(ctx context.Context, cfg config.AIConfig, botName string) (*Service, error) {
	chatModel, err := cfg.NewChatModel(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat model: %w", err)
	}
	return NewService(ctx, chatModel, botName)
}

// Complete sends prompt to the model and returns the first choice text. A
// blank reply is reported as ErrEmptyCompletion.
func (s *Service) Complete(ctx context.Context, prompt string) (string, error) {
	response, err := s.chain.Invoke(ctx, map[string]any{
		"system": s.system,
		"query":  prompt,
	})
	if err != nil {
		return "", fmt.Errorf("failed to run completion chain: %w", err)
	}
	if response == nil {
		return "", replyservice.ErrEmptyCompletion
	}

	text := strings.TrimSpace(response.Content)
	if text == "" {
		return "", replyservice.ErrEmptyCompletion
	}
	log.Printf("[ai] completion finished, length=%d", len(text))
	return text, nil
}

// BuildSystemPrompt describes the bot to the remote model.
func BuildSystemPrompt(botName string) string {
	name := strings.TrimSpace(botName)
	if name == "" {
		name = "ChatzinhoBot"
	}
	return fmt.Sprintf("Você é o %s, um assistente de chat simpático. Responda em português, em uma ou duas frases curtas.", name)
}
