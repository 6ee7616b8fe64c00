package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/glitchlabs/glitchbot/pkg/config"
	"github.com/glitchlabs/glitchbot/pkg/logger"
)

const defaultTTSBaseURL = "https://api.elevenlabs.io"

// TTSClient talks to the ElevenLabs text-to-speech HTTP API.
type TTSClient struct {
	cfg     *config.Config
	baseURL string
	http    *http.Client
}

func NewTTSClient(cfg *config.Config) *TTSClient {
	return &TTSClient{
		cfg:     cfg,
		baseURL: defaultTTSBaseURL,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

// SetBaseURL overrides the API endpoint, for tests.
func (t *TTSClient) SetBaseURL(url string) { t.baseURL = strings.TrimRight(url, "/") }

func (t *TTSClient) Available() bool {
	return t.cfg.TTS.APIKey != ""
}

// Synthesize converts text to mp3 audio bytes. The prompt should already be
// capped via CapPrompt.
func (t *TTSClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if !t.Available() {
		return nil, fmt.Errorf("ElevenLabs API key is not configured")
	}

	reqBody, err := json.Marshal(map[string]string{
		"text":     text,
		"model_id": t.cfg.TTS.ModelID,
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1/text-to-speech/%s", t.baseURL, t.cfg.TTS.VoiceID)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("xi-api-key", t.cfg.TTS.APIKey)

	resp, err := t.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		logger.ErrorCF("tts", "ElevenLabs API error", map[string]any{
			"status_code": resp.StatusCode,
			"response":    string(body),
		})
		return nil, fmt.Errorf("%s", t.describeError(body))
	}
	return body, nil
}

// describeError maps the API's detail.status codes to user-facing text.
func (t *TTSClient) describeError(body []byte) string {
	var parsed struct {
		Detail struct {
			Status string `json:"status"`
		} `json:"detail"`
	}
	json.Unmarshal(body, &parsed)

	switch parsed.Detail.Status {
	case "max_character_limit_exceeded":
		return "Text input has too many characters for ElevenLabs text-to-speech (max is ~10k)"
	case "invalid_api_key":
		return "ElevenLabs API key is invalid!"
	case "voice_not_found":
		return fmt.Sprintf("ElevenLabs voice ID %q is invalid!", t.cfg.TTS.VoiceID)
	case "model_not_found":
		return fmt.Sprintf("ElevenLabs model ID %q is invalid!", t.cfg.TTS.ModelID)
	case "quota_exceeded":
		return "ElevenLabs account is out of credits!"
	case "free_users_not_allowed":
		return fmt.Sprintf("Voice with ID %q needs an active ElevenLabs subscription to use.", t.cfg.TTS.VoiceID)
	default:
		return "There was an issue with the ElevenLabs API, try again later."
	}
}

// CapPrompt limits prompt length. The hard cap cuts abruptly; the soft cap
// cuts at the first space or punctuation after it.
func CapPrompt(text string, softCap, hardCap int) string {
	if hardCap > 0 && len(text) > hardCap {
		text = text[:hardCap]
	}
	if softCap <= 0 || len(text) <= softCap {
		return text
	}
	for i := softCap; i < len(text); i++ {
		switch text[i] {
		case ' ', '.', '?', '!', ',':
			return text[:i]
		}
	}
	return text
}
