package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/caarlos0/env/v11"
)

// FlexibleStringSlice is a []string that also accepts JSON numbers,
// so allow_from can contain both "123" and 123.
type FlexibleStringSlice []string

func (f *FlexibleStringSlice) UnmarshalJSON(data []byte) error {
	// Try []string first
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}

	// Try []interface{} to handle mixed types
	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	result := make([]string, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case string:
			result = append(result, val)
		case float64:
			result = append(result, fmt.Sprintf("%.0f", val))
		default:
			result = append(result, fmt.Sprintf("%v", val))
		}
	}
	*f = result
	return nil
}

type Config struct {
	Bot      BotConfig      `json:"bot" label:"Bot"`
	Channels ChannelsConfig `json:"channels" label:"Messaging Channels"`
	Chat     ChatConfig     `json:"chat" label:"Chat & Replies"`
	Dice     DiceConfig     `json:"dice" label:"Dice"`
	Sound    SoundConfig    `json:"sound" label:"Sound Library"`
	TTS      TTSConfig      `json:"tts" label:"Text To Speech"`
	mu       sync.RWMutex
}

type BotConfig struct {
	Name             string `json:"name" label:"Bot Name" env:"GLITCHBOT_BOT_NAME"`
	DataDir          string `json:"data_dir" label:"Data Directory" env:"GLITCHBOT_BOT_DATA_DIR"`
	MaxMessageLength int    `json:"max_message_length" label:"Max Message Length" env:"GLITCHBOT_BOT_MAX_MESSAGE_LENGTH"`
	RequireAdmin     bool   `json:"require_admin" label:"Enforce Admin Checks" env:"GLITCHBOT_BOT_REQUIRE_ADMIN"`
	UseWhitelist     bool   `json:"use_whitelist" label:"Enforce Chat Whitelist" env:"GLITCHBOT_BOT_USE_WHITELIST"`
	LogLevel         string `json:"log_level" label:"Log Level" env:"GLITCHBOT_BOT_LOG_LEVEL"`
}

type ChannelsConfig struct {
	Discord  DiscordConfig  `json:"discord" label:"Discord"`
	Telegram TelegramConfig `json:"telegram" label:"Telegram"`
}

type DiscordConfig struct {
	Enabled     bool                `json:"enabled" label:"Enabled" env:"GLITCHBOT_CHANNELS_DISCORD_ENABLED"`
	Token       string              `json:"token" label:"Token" env:"GLITCHBOT_CHANNELS_DISCORD_TOKEN"`
	AllowFrom   FlexibleStringSlice `json:"allow_from" label:"Allow From" env:"GLITCHBOT_CHANNELS_DISCORD_ALLOW_FROM"`
	AutoSuper   bool                `json:"auto_super" label:"Auto Assign First Superadmin" env:"GLITCHBOT_CHANNELS_DISCORD_AUTO_SUPER"`
	VCAutoLeave bool                `json:"vc_auto_leave" label:"Leave Voice When Alone" env:"GLITCHBOT_CHANNELS_DISCORD_VC_AUTO_LEAVE"`
}

type TelegramConfig struct {
	Enabled   bool                `json:"enabled" label:"Enabled" env:"GLITCHBOT_CHANNELS_TELEGRAM_ENABLED"`
	Token     string              `json:"token" label:"Token" env:"GLITCHBOT_CHANNELS_TELEGRAM_TOKEN"`
	AllowFrom FlexibleStringSlice `json:"allow_from" label:"Allow From" env:"GLITCHBOT_CHANNELS_TELEGRAM_ALLOW_FROM"`
	AutoSuper bool                `json:"auto_super" label:"Auto Assign First Superadmin" env:"GLITCHBOT_CHANNELS_TELEGRAM_AUTO_SUPER"`
}

type ChatConfig struct {
	APIKey          string  `json:"api_key" label:"OpenAI API Key" env:"GLITCHBOT_CHAT_API_KEY"`
	Model           string  `json:"model" label:"GPT Model" env:"GLITCHBOT_CHAT_MODEL"`
	Temperature     float64 `json:"temperature" label:"Temperature" env:"GLITCHBOT_CHAT_TEMPERATURE"`
	MaxTokens       int     `json:"max_tokens" label:"Max Tokens" env:"GLITCHBOT_CHAT_MAX_TOKENS"`
	UseMemory       bool    `json:"use_memory" label:"Use Conversation Memory" env:"GLITCHBOT_CHAT_USE_MEMORY"`
	RecordAll       bool    `json:"record_all" label:"Record All Messages" env:"GLITCHBOT_CHAT_RECORD_ALL"`
	MemorySize      int     `json:"memory_size" label:"Memory Size" env:"GLITCHBOT_CHAT_MEMORY_SIZE"`
	ReplyToName     bool    `json:"reply_to_name" label:"Reply When Named" env:"GLITCHBOT_CHAT_REPLY_TO_NAME"`
	ReplyToMonkey   bool    `json:"reply_to_monkey" label:"Monkey Easter Egg" env:"GLITCHBOT_CHAT_REPLY_TO_MONKEY"`
	RandReplyChance float64 `json:"rand_reply_chance" label:"Random Reply Chance" env:"GLITCHBOT_CHAT_RAND_REPLY_CHANCE"`
	RequestsPerMin  int     `json:"requests_per_min" label:"OpenAI Requests Per Minute" env:"GLITCHBOT_CHAT_REQUESTS_PER_MIN"`
	MinMarkov       int     `json:"min_markov" label:"Markov Min Words" env:"GLITCHBOT_CHAT_MIN_MARKOV"`
	MaxMarkov       int     `json:"max_markov" label:"Markov Max Words" env:"GLITCHBOT_CHAT_MAX_MARKOV"`
}

type DiceConfig struct {
	MaxDice  int `json:"max_dice" label:"Max Dice" env:"GLITCHBOT_DICE_MAX_DICE"`
	MaxFaces int `json:"max_faces" label:"Max Faces" env:"GLITCHBOT_DICE_MAX_FACES"`
}

type SoundConfig struct {
	MinSimilarity float64 `json:"min_similarity" label:"Fuzzy Match Threshold" env:"GLITCHBOT_SOUND_MIN_SIMILARITY"`
}

type TTSConfig struct {
	APIKey  string `json:"api_key" label:"ElevenLabs API Key" env:"GLITCHBOT_TTS_API_KEY"`
	VoiceID string `json:"voice_id" label:"Voice ID" env:"GLITCHBOT_TTS_VOICE_ID"`
	ModelID string `json:"model_id" label:"Model ID" env:"GLITCHBOT_TTS_MODEL_ID"`
	SoftCap int    `json:"soft_cap" label:"Prompt Soft Cap" env:"GLITCHBOT_TTS_SOFT_CAP"`
	HardCap int    `json:"hard_cap" label:"Prompt Hard Cap" env:"GLITCHBOT_TTS_HARD_CAP"`
}

func DefaultConfig() *Config {
	return &Config{
		Bot: BotConfig{
			Name:             "glitchbot",
			DataDir:          "data",
			MaxMessageLength: 1500,
			RequireAdmin:     true,
			UseWhitelist:     false,
			LogLevel:         "info",
		},
		Channels: ChannelsConfig{
			Discord: DiscordConfig{
				Enabled:     false,
				Token:       "",
				AllowFrom:   FlexibleStringSlice{},
				AutoSuper:   true,
				VCAutoLeave: true,
			},
			Telegram: TelegramConfig{
				Enabled:   false,
				Token:     "",
				AllowFrom: FlexibleStringSlice{},
				AutoSuper: true,
			},
		},
		Chat: ChatConfig{
			Model:           "gpt-4o-mini",
			Temperature:     1.0,
			MaxTokens:       256,
			UseMemory:       true,
			RecordAll:       false,
			MemorySize:      20,
			ReplyToName:     true,
			ReplyToMonkey:   true,
			RandReplyChance: 0.05,
			RequestsPerMin:  15,
			MinMarkov:       10,
			MaxMarkov:       30,
		},
		Dice: DiceConfig{
			MaxDice:  100,
			MaxFaces: 1000,
		},
		Sound: SoundConfig{
			MinSimilarity: 0.75,
		},
		TTS: TTSConfig{
			VoiceID: "21m00Tcm4TlvDq8ikWAM",
			ModelID: "eleven_monolingual_v1",
			SoftCap: 400,
			HardCap: 1000,
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	// A missing file just means defaults; the environment still applies.
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func SaveConfig(path string, cfg *Config) error {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()
	return saveConfigLocked(path, cfg)
}

func saveConfigLocked(path string, cfg *Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

func (c *Config) Lock()    { c.mu.Lock() }
func (c *Config) Unlock()  { c.mu.Unlock() }
func (c *Config) RLock()   { c.mu.RLock() }
func (c *Config) RUnlock() { c.mu.RUnlock() }

func (c *Config) DataPath() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return expandHome(c.Bot.DataDir)
}

// SoundsPath and TempPath anchor the on-disk library layout under the data dir.
func (c *Config) SoundsPath() string { return filepath.Join(c.DataPath(), "sounds") }
func (c *Config) TempPath() string   { return filepath.Join(c.DataPath(), "temp") }
func (c *Config) StorePath() string  { return filepath.Join(c.DataPath(), "store") }
func (c *Config) LogsPath() string   { return filepath.Join(c.DataPath(), "logs") }

func (c *Config) ParsedLogLevel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return strings.ToLower(c.Bot.LogLevel)
}

func expandHome(path string) string {
	if path == "" {
		return path
	}
	if path[0] == '~' {
		home, _ := os.UserHomeDir()
		if len(path) > 1 && path[1] == '/' {
			return home + path[1:]
		}
		return home
	}
	return path
}
