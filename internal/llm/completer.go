package llm

import (
	"context"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/shared"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// Completer turns a prompt into generated text.
type Completer interface {
	Complete(ctx context.Context, prompt string, temperature float64) (string, error)
}

// CompleterOptions configures the chat-completion backed Completer.
type CompleterOptions struct {
	Client *Client
	Model  string
}

const defaultModel = "gpt-4o-mini"

type chatCompleter struct {
	client *Client
	logger *logrus.Logger
	model  string
}

// NewCompleter constructs a Completer that sends the prompt as a single user message.
func NewCompleter(opts CompleterOptions) (Completer, error) {
	if opts.Client == nil {
		return nil, eris.New("llm client is required")
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = defaultModel
	}

	return &chatCompleter{
		client: opts.Client,
		logger: opts.Client.logger,
		model:  model,
	}, nil
}

func (c *chatCompleter) Complete(ctx context.Context, prompt string, temperature float64) (string, error) {
	trimmed := strings.TrimSpace(prompt)
	if trimmed == "" {
		return "", eris.New("prompt is required")
	}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(trimmed),
		},
		Temperature: openai.Float(temperature),
	}

	fields := logrus.Fields{"model": c.model, "temperature": temperature}

	completion, err := c.client.chat.New(ctx, params)
	if err != nil {
		c.logError(fields, err, "requesting chat completion")
		return "", eris.Wrap(err, "requesting chat completion")
	}

	if len(completion.Choices) == 0 {
		err := eris.New("llm completion returned no choices")
		c.logError(fields, err, "processing chat completion")
		return "", err
	}

	choice := completion.Choices[0]
	if reason := strings.TrimSpace(choice.FinishReason); strings.EqualFold(reason, "content_filter") {
		err := eris.New("llm blocked the request via content filter")
		c.logError(fields, err, "completion blocked")
		return "", err
	}

	if refusal := strings.TrimSpace(choice.Message.Refusal); refusal != "" {
		err := eris.Errorf("llm refused to answer: %s", refusal)
		c.logError(fields, err, "completion refused")
		return "", err
	}

	content := strings.TrimSpace(choice.Message.Content)
	if content == "" {
		err := eris.New("llm response content is empty")
		c.logError(fields, err, "processing chat completion")
		return "", err
	}

	return content, nil
}

func (c *chatCompleter) logError(fields logrus.Fields, err error, message string) {
	if c.logger == nil || err == nil {
		return
	}

	entry := c.logger.WithField("error", err.Error())
	if len(fields) > 0 {
		entry = entry.WithFields(fields)
	}
	entry.Warn(message)
}
