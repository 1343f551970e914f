package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"shopsmart/internal/model"
)

// ChatClient is the part of *openai.Client the assistant uses.
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

var errEmptyCompletion = errors.New("llm returned no choices")

// CallLLM sends the system prompt, the product context, prior turns and the
// new question, and returns the reply text.
func (s *Server) CallLLM(
	ctx context.Context,
	systemPrompt string,
	contextText string,
	history []model.ChatMessage,
	userMessage string,
) (string, error) {

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
		{Role: openai.ChatMessageRoleSystem, Content: "PRODUCT CONTEXT:\n" + contextText},
	}
	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: userMessage})

	var chars int
	for _, m := range messages {
		chars += len(m.Content)
	}
	s.Log.Debug().Int("messages", len(messages)).Int("chars", chars).Int("tokens_estimate", chars/4).Msg("Sending chat payload")

	resp, err := s.LLM.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.Model,
		Messages:    messages,
		Temperature: 0.3,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

// completeJSON asks for a JSON object reply and decodes it into out.
func (s *Server) completeJSON(ctx context.Context, system, user string, out any) error {
	resp, err := s.LLM.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return err
	}
	if len(resp.Choices) == 0 {
		return errEmptyCompletion
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		content = "{}"
	}
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("decode llm reply: %w", err)
	}
	return nil
}
