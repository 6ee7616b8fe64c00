// Package chat holds the bot's conversational brain: GPT responses with
// rolling memory, markov babble, canned responses and ElevenLabs speech.
package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/time/rate"

	"github.com/glitchlabs/glitchbot/pkg/config"
	"github.com/glitchlabs/glitchbot/pkg/logger"
	"github.com/glitchlabs/glitchbot/pkg/store"
)

const maxAttempts = 3

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Completer produces one assistant reply for a message history. The OpenAI
// client satisfies it in production; tests substitute failures.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

type Service struct {
	completer Completer
	cfg       *config.Config
	store     *store.Store
	limiter   *rate.Limiter
	dataDir   string
}

func NewService(cfg *config.Config, st *store.Store, dataDir string) *Service {
	rpm := cfg.Chat.RequestsPerMin
	if rpm <= 0 {
		rpm = 15
	}
	return &Service{
		completer: newOpenAICompleter(cfg),
		cfg:       cfg,
		store:     st,
		limiter:   rate.NewLimiter(rate.Limit(float64(rpm)/60.0), rpm),
		dataDir:   dataDir,
	}
}

// SetCompleter swaps the reply backend, for tests.
func (s *Service) SetCompleter(c Completer) { s.completer = c }

type openAICompleter struct {
	client *openai.Client
	cfg    *config.Config
}

func newOpenAICompleter(cfg *config.Config) *openAICompleter {
	opts := []option.RequestOption{
		option.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
	}
	if cfg.Chat.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.Chat.APIKey))
	}
	client := openai.NewClient(opts...)
	return &openAICompleter{client: &client, cfg: cfg}
}

func (o *openAICompleter) Complete(ctx context.Context, messages []Message) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model:               o.cfg.Chat.Model,
		Messages:            make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)),
		Temperature:         openai.Float(o.cfg.Chat.Temperature),
		MaxCompletionTokens: openai.Int(int64(o.cfg.Chat.MaxTokens)),
	}
	for _, m := range messages {
		switch m.Role {
		case "system":
			params.Messages = append(params.Messages, openai.SystemMessage(m.Content))
		case "assistant":
			params.Messages = append(params.Messages, openai.AssistantMessage(m.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(m.Content))
		}
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return "", fmt.Errorf("OpenAI API request failed (status=%d): %s",
				apiErr.StatusCode, strings.TrimSpace(apiErr.Message))
		}
		return "", fmt.Errorf("OpenAI API request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("OpenAI API returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// Respond builds the message history (system prompt, tone prepend, recalled
// memory, the user prompt) and asks the backend for a reply, retrying empty
// answers a few times.
func (s *Service) Respond(ctx context.Context, prompt string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", err
	}

	var messages []Message
	if sys := s.readTextFile("gpt_prompt.txt"); sys != "" {
		messages = append(messages, Message{Role: "system", Content: sys})
	}
	if prepend := s.readTextFile("gpt_prepend.txt"); prepend != "" {
		messages = append(messages, Message{Role: "assistant", Content: prepend})
	}
	if s.cfg.Chat.UseMemory {
		messages = append(messages, s.Recall()...)
	}
	messages = append(messages, Message{Role: "user", Content: prompt})

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		response, err := s.completer.Complete(ctx, messages)
		if err != nil {
			lastErr = err
			logger.WarnCF("chat", "GPT request failed, retrying", map[string]any{
				"attempt": attempt + 1, "error": err.Error(),
			})
			continue
		}

		// Strip quotation marks if the model wrapped its reply in them.
		if strings.HasPrefix(response, `"`) && strings.HasSuffix(response, `"`) && len(response) >= 2 {
			response = response[1 : len(response)-1]
		}
		if response != "" {
			return response, nil
		}
		logger.WarnC("chat", "GPT returned an empty response, retrying")
	}

	if lastErr != nil {
		return "", fmt.Errorf("no GPT response after %d attempts: %w", maxAttempts, lastErr)
	}
	return "", fmt.Errorf("no GPT response after %d attempts", maxAttempts)
}

func (s *Service) readTextFile(name string) string {
	data, err := os.ReadFile(filepath.Join(s.dataDir, name))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
