// Package generate asks a chat-completion endpoint for a script.
package generate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/robottwo/llmscript/internal/environment"
	"github.com/robottwo/llmscript/internal/utils"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

var (
	// ErrTransport covers connection failures, timeouts, non-2xx statuses and
	// bodies that are not valid JSON.
	ErrTransport = errors.New("completion request failed")
	// ErrEmptyCompletion means the endpoint answered but gave no usable text.
	ErrEmptyCompletion = errors.New("empty completion response")
)

type Generator struct {
	llmClient *openai.Client
	logger    *zap.Logger
	modelId   string
	maxTokens int
	timeout   time.Duration
}

func NewGenerator(config *environment.Config, logger *zap.Logger) *Generator {
	return &Generator{
		llmClient: utils.GetLLMClient(config),
		logger:    logger,
		modelId:   config.Model,
		maxTokens: config.MaxTokens,
		timeout:   config.RequestTimeout,
	}
}

// Generate sends exactly one request and returns the first choice's content
// verbatim. It never retries.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	request := openai.ChatCompletionRequest{
		Model: g.modelId,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens: g.maxTokens,
	}

	g.logger.Debug(
		"requesting completion",
		zap.String("model", g.modelId),
		zap.Int("max_tokens", g.maxTokens),
		zap.Duration("timeout", g.timeout),
	)

	start := time.Now()
	chatCompletion, err := g.llmClient.CreateChatCompletion(ctx, request)
	if err != nil {
		g.logger.Error("LLM API call failed", zap.Error(err), zap.Duration("elapsed", time.Since(start)))
		return "", fmt.Errorf("%w: %w", ErrTransport, err)
	}

	if len(chatCompletion.Choices) == 0 {
		g.logger.Warn("LLM returned no choices", zap.String("id", chatCompletion.ID))
		return "", fmt.Errorf("%w: no choices returned", ErrEmptyCompletion)
	}

	content := chatCompletion.Choices[0].Message.Content
	if content == "" {
		g.logger.Warn(
			"LLM returned empty content",
			zap.String("id", chatCompletion.ID),
			zap.String("finish_reason", string(chatCompletion.Choices[0].FinishReason)),
		)
		return "", fmt.Errorf("%w: first choice has no content", ErrEmptyCompletion)
	}

	g.logger.Info(
		"received completion",
		zap.String("id", chatCompletion.ID),
		zap.String("size", humanize.Bytes(uint64(len(content)))),
		zap.Int("completion_tokens", chatCompletion.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)),
	)

	return content, nil
}
