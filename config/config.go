package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/JerryLinyx/newsdigest/news"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

var ErrMissingCredential = errors.New("missing credential")

type Config struct {
	App struct {
		Name            string   `mapstructure:"name"`
		Port            string   `mapstructure:"port"`
		FrontendOrigins []string `mapstructure:"frontend_origins"`
	} `mapstructure:"app"`
	News       NewsConfig          `mapstructure:"news"`
	Summarizer SummarizerConfig    `mapstructure:"summarizer"`
	Aggregator AggregatorConfig    `mapstructure:"aggregator"`
	Categories []news.CategorySpec `mapstructure:"categories"`
	Email      EmailConfig         `mapstructure:"email"`
	Telegram   TelegramConfig      `mapstructure:"telegram"`
	Database   DatabaseConfig      `mapstructure:"database"`
	Redis      RedisConfig         `mapstructure:"redis"`
	Auth       AuthConfig          `mapstructure:"auth"`
}

type NewsConfig struct {
	Provider string        `mapstructure:"provider"`
	APIKey   string        `mapstructure:"api_key"`
	BaseURL  string        `mapstructure:"base_url"`
	Language string        `mapstructure:"language"`
	Country  string        `mapstructure:"country"`
	Timeout  time.Duration `mapstructure:"timeout"`
	Recency  string        `mapstructure:"recency"`
}

type SummarizerConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	URL           string        `mapstructure:"url"`
	Token         string        `mapstructure:"token"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MaxInputChars int           `mapstructure:"max_input_chars"`
	FallbackChars int           `mapstructure:"fallback_chars"`
	MinLength     int           `mapstructure:"min_length"`
	MaxLength     int           `mapstructure:"max_length"`
}

type AggregatorConfig struct {
	ArticlesPerCategory int `mapstructure:"articles_per_category"`
	Concurrency         int `mapstructure:"concurrency"`
}

type EmailConfig struct {
	Address    string   `mapstructure:"address"`
	Password   string   `mapstructure:"password"`
	Host       string   `mapstructure:"host"`
	Port       int      `mapstructure:"port"`
	Recipients []string `mapstructure:"recipients"`
	Subject    string   `mapstructure:"subject"`
}

type TelegramConfig struct {
	Token  string `mapstructure:"token"`
	ChatID int64  `mapstructure:"chat_id"`
}

type DatabaseConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Host         string `mapstructure:"host"`
	Port         string `mapstructure:"port"`
	User         string `mapstructure:"user"`
	Password     string `mapstructure:"password"`
	Name         string `mapstructure:"name"`
	Sslmode      string `mapstructure:"sslmode"`
	Timezone     string `mapstructure:"timezone"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Addr            string        `mapstructure:"addr"`
	Password        string        `mapstructure:"password"`
	DB              int           `mapstructure:"db"`
	TTL             time.Duration `mapstructure:"ttl"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
}

type AuthConfig struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
	AdminUsername string        `mapstructure:"admin_username"`
	AdminPassword string        `mapstructure:"admin_password"`
}

// DefaultCategories mirrors the dashboard's original five buckets.
func DefaultCategories() []news.CategorySpec {
	return []news.CategorySpec{
		{Name: "Business", Query: "business finance economy", Emoji: "💼"},
		{Name: "Technology", Query: "technology tech software", Emoji: "💻"},
		{Name: "AI", Query: "artificial intelligence AI machine learning", Emoji: "🤖"},
		{Name: "Stocks", Query: "stock market trading investment", Emoji: "📈"},
		{Name: "Movies", Query: "movies cinema film entertainment", Emoji: "🎬"},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "newsdigest")
	v.SetDefault("app.port", ":5000")

	v.SetDefault("news.provider", "newsapi")
	v.SetDefault("news.language", "en")
	v.SetDefault("news.country", "us")
	v.SetDefault("news.timeout", 10*time.Second)
	v.SetDefault("news.recency", "today")

	v.SetDefault("summarizer.enabled", true)
	v.SetDefault("summarizer.url", "https://api-inference.huggingface.co/models/facebook/bart-large-cnn")
	v.SetDefault("summarizer.timeout", 30*time.Second)
	v.SetDefault("summarizer.max_input_chars", 800)
	v.SetDefault("summarizer.fallback_chars", 150)
	v.SetDefault("summarizer.min_length", 30)
	v.SetDefault("summarizer.max_length", 100)

	v.SetDefault("aggregator.articles_per_category", 1)
	v.SetDefault("aggregator.concurrency", 4)

	v.SetDefault("email.host", "smtp.gmail.com")
	v.SetDefault("email.port", 465)
	v.SetDefault("email.subject", "📰 Today's Top News")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.timezone", "UTC")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 10)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.ttl", 10*time.Minute)
	v.SetDefault("redis.refresh_interval", time.Minute)

	v.SetDefault("auth.token_ttl", 24*time.Hour)
}

// envBindings maps config keys to the environment variable names the
// deployment already uses. The first set variable wins.
var envBindings = map[string][]string{
	"app.port":          {"PORT"},
	"news.provider":     {"NEWS_PROVIDER"},
	"news.api_key":      {"NEWS_API_KEY", "GNEWS_API_KEY", "WORLD_NEWS_API_KEY", "API_KEY"},
	"summarizer.token":  {"HF_API_TOKEN"},
	"email.address":     {"EMAIL_ADDRESS"},
	"email.password":    {"EMAIL_PASSWORD"},
	"telegram.token":    {"TELEGRAM_BOT_TOKEN"},
	"telegram.chat_id":  {"TELEGRAM_CHAT_ID"},
	"redis.addr":        {"REDIS_ADDR"},
	"auth.jwt_secret":   {"JWT_SECRET"},
	"database.host":     {"DB_HOST"},
	"database.user":     {"DB_USER"},
	"database.password": {"DB_PASSWORD"},
	"database.name":     {"DB_NAME"},
}

// Load reads path (or ./config/config.yaml when empty) plus the environment.
// A missing config file is not an error; defaults and environment apply.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("ignoring .env: %v", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, names := range envBindings {
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return nil, fmt.Errorf("binding env for %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if raw := os.Getenv("FRONTEND_ORIGINS"); raw != "" {
		cfg.App.FrontendOrigins = splitList(raw)
	}
	if raw := os.Getenv("EMAIL_RECIPIENTS"); raw != "" {
		cfg.Email.Recipients = splitList(raw)
	}
	if len(cfg.Categories) == 0 {
		cfg.Categories = DefaultCategories()
	}
	switch {
	case cfg.App.Port == "":
		cfg.App.Port = ":5000"
	case !strings.Contains(cfg.App.Port, ":"):
		cfg.App.Port = ":" + cfg.App.Port
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the parts of the config every command relies on.
func (c *Config) Validate() error {
	if _, err := news.ParseWindow(c.News.Recency); err != nil {
		return err
	}
	switch strings.ToLower(c.News.Provider) {
	case "", "newsapi", "gnews", "worldnews", "worldnewsapi", "rss":
	default:
		return fmt.Errorf("news.provider %q is not one of newsapi, gnews, worldnews, rss", c.News.Provider)
	}
	if c.Aggregator.ArticlesPerCategory < 1 {
		return fmt.Errorf("aggregator.articles_per_category must be >= 1, got %d", c.Aggregator.ArticlesPerCategory)
	}
	seen := make(map[string]bool, len(c.Categories))
	for i, cat := range c.Categories {
		if strings.TrimSpace(cat.Name) == "" {
			return fmt.Errorf("category %d: name is required", i)
		}
		if strings.TrimSpace(cat.Query) == "" {
			return fmt.Errorf("category %q: query is required", cat.Name)
		}
		if seen[cat.Name] {
			return fmt.Errorf("category %q: duplicate name", cat.Name)
		}
		seen[cat.Name] = true
	}
	return nil
}

// RequireEmail reports the first missing SMTP credential.
func (c *Config) RequireEmail() error {
	if c.Email.Address == "" {
		return fmt.Errorf("%w: EMAIL_ADDRESS (email.address)", ErrMissingCredential)
	}
	if c.Email.Password == "" {
		return fmt.Errorf("%w: EMAIL_PASSWORD (email.password)", ErrMissingCredential)
	}
	return nil
}

// RecencyWindow is the parsed news.recency value.
func (c *Config) RecencyWindow() news.Window {
	w, err := news.ParseWindow(c.News.Recency)
	if err != nil {
		return news.Today
	}
	return w
}

// AuthEnabled reports whether admin login can be offered.
func (c *Config) AuthEnabled() bool {
	return c.Auth.JWTSecret != "" && c.Auth.AdminUsername != "" && c.Auth.AdminPassword != ""
}

// TelegramEnabled reports whether digests should also go to Telegram.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.Token != "" && c.Telegram.ChatID != 0
}

func splitList(raw string) []string {
	var out []string
	for _, v := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
