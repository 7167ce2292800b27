package config

import (
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"

	"clip2gif/internal/domain"
)

const (
	defaultGIFWidth   = 480
	defaultGIFFPS     = 15
	defaultGIFLoop    = 0
	defaultFFmpegPath = "ffmpeg"

	DefaultTwitchAuthURL    = "https://id.twitch.tv/oauth2/token"
	DefaultTwitchAPIBaseURL = "https://api.twitch.tv/helix"
)

type (
	Config struct {
		Debug          bool
		FFmpegPath     string
		ClipIdentifier string
		Twitch         Twitch
		Discord        Discord
		Telegram       Telegram
		GIF            GIF
	}
	Twitch struct {
		ClientID     string
		ClientSecret string
		AuthURL      string
		APIBaseURL   string
	}
	Discord struct {
		WebhookURL string
		Message    string
		Username   string
	}
	// Telegram is optional; an empty BotToken disables the mirror.
	Telegram struct {
		BotToken string
		ChatID   int64
	}
	// GIF holds conversion parameters. MaxDurationSeconds of zero means unlimited.
	GIF struct {
		Width              int
		FPS                int
		Loop               int
		MaxDurationSeconds float64
	}
)

// NewConfig loads envFile into the process environment, without overriding
// variables that are already set, and then reads the configuration.
// A missing envFile is not an error.
func NewConfig(envFile string) (*Config, error) {
	const errMsg = "Config.NewConfig"

	err := loadEnvFile(envFile)
	if err != nil {
		return nil, errors.Wrap(err, errMsg)
	}

	c, err := FromEnv()
	if err != nil {
		return nil, errors.Wrap(err, errMsg)
	}

	return c, nil
}

// FromEnv reads the configuration from the current environment only.
func FromEnv() (*Config, error) {
	c := &Config{}

	err := c.loadEnv()
	if err != nil {
		return nil, err
	}

	err = c.validate()
	if err != nil {
		return nil, err
	}

	return c, nil
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}

	_, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}

	err = godotenv.Load(path)
	if err != nil {
		return domain.NewError(domain.ErrConfig, errors.Wrapf(err, "load %s", path))
	}

	return nil
}

func (c *Config) loadEnv() error {
	var err error

	c.Twitch.ClientID, err = requiredEnv("TWITCH_CLIENT_ID")
	if err != nil {
		return err
	}

	c.Twitch.ClientSecret, err = requiredEnv("TWITCH_CLIENT_SECRET")
	if err != nil {
		return err
	}

	c.Discord.WebhookURL, err = requiredEnv("DISCORD_WEBHOOK_URL")
	if err != nil {
		return err
	}

	c.ClipIdentifier = firstEnv("TWITCH_CLIP_ID", "TWITCH_CLIP_URL")
	c.Discord.Message = firstEnv("DISCORD_MESSAGE", "DISCORD_MESSAGE_TEMPLATE")
	c.Discord.Username = os.Getenv("DISCORD_USERNAME")

	c.Twitch.AuthURL = firstEnv("TWITCH_AUTH_URL")
	if c.Twitch.AuthURL == "" {
		c.Twitch.AuthURL = DefaultTwitchAuthURL
	}

	c.Twitch.APIBaseURL = strings.TrimRight(firstEnv("TWITCH_API_BASE_URL"), "/")
	if c.Twitch.APIBaseURL == "" {
		c.Twitch.APIBaseURL = DefaultTwitchAPIBaseURL
	}

	c.FFmpegPath = firstEnv("FFMPEG_PATH")
	if c.FFmpegPath == "" {
		c.FFmpegPath = defaultFFmpegPath
	}

	c.Debug, _ = strconv.ParseBool(os.Getenv("DEBUG"))

	c.GIF.Width, err = positiveIntEnv("GIF_WIDTH", defaultGIFWidth)
	if err != nil {
		return err
	}

	c.GIF.FPS, err = positiveIntEnv("GIF_FPS", defaultGIFFPS)
	if err != nil {
		return err
	}

	c.GIF.Loop, err = nonNegativeIntEnv("GIF_LOOP", defaultGIFLoop)
	if err != nil {
		return err
	}

	c.GIF.MaxDurationSeconds, err = positiveFloatEnv("GIF_MAX_DURATION_SECONDS")
	if err != nil {
		return err
	}

	c.Telegram.BotToken = firstEnv("TELEGRAM_BOT_TOKEN")

	rawChatID := os.Getenv("TELEGRAM_CHAT_ID")
	if rawChatID != "" {
		c.Telegram.ChatID, err = strconv.ParseInt(strings.TrimSpace(rawChatID), 10, 64)
		if err != nil {
			return invalidValue("TELEGRAM_CHAT_ID", rawChatID, "an integer chat id")
		}
	}

	return nil
}

func (c *Config) validate() error {
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == 0 {
		err := errors.New("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")

		return domain.NewError(domain.ErrConfig, err)
	}

	if c.Telegram.BotToken == "" && c.Telegram.ChatID != 0 {
		err := errors.New("TELEGRAM_BOT_TOKEN is required when TELEGRAM_CHAT_ID is set")

		return domain.NewError(domain.ErrConfig, err)
	}

	return nil
}

// TelegramEnabled reports whether GIFs should also be mirrored to Telegram.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != ""
}

func requiredEnv(key string) (string, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		err := errors.Errorf("missing required environment variable %s", key)

		return "", domain.NewError(domain.ErrConfig, err)
	}

	return value, nil
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
	}

	return ""
}

func positiveIntEnv(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}

	parsed, ok := parseInteger(raw)
	if !ok || parsed <= 0 {
		return 0, invalidValue(key, raw, "a positive integer")
	}

	return parsed, nil
}

func nonNegativeIntEnv(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}

	parsed, ok := parseInteger(raw)
	if !ok || parsed < 0 {
		return 0, invalidValue(key, raw, "a non-negative integer")
	}

	return parsed, nil
}

func positiveFloatEnv(key string) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return 0, nil
	}

	parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsInf(parsed, 0) || math.IsNaN(parsed) || parsed <= 0 {
		return 0, invalidValue(key, raw, "a positive number")
	}

	return parsed, nil
}

// parseInteger accepts integral values written as floats too ("480.0").
func parseInteger(raw string) (int, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return 0, false
	}

	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}

	return int(f), true
}

func invalidValue(key, raw, expected string) error {
	err := errors.Errorf("expected %s to be %s, received %q", key, expected, raw)

	return domain.NewError(domain.ErrConfig, err)
}
