package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv      = "NEWSTEP_CONFIG"
	serverAddrEnv      = "NEWSTEP_ADDR"
	storagePathEnv     = "NEWSTEP_DB_PATH"
	translateKeyEnv    = "TRANSLATE_API_KEY"
	telegramTokenEnv   = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv  = "TELEGRAM_CHAT_ID"
	aggregatorEndpoint = "https://api.rss2json.com/v1/api.json"
)

// Config holds high-level settings required across the application.
type Config struct {
	Server        ServerConfig       `yaml:"server"`
	Feeds         FeedsConfig        `yaml:"feeds"`
	Aggregator    AggregatorConfig   `yaml:"aggregator"`
	Cache         CacheConfig        `yaml:"cache"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Storage       StorageConfig      `yaml:"storage"`
	Dictionary    DictionaryConfig   `yaml:"dictionary"`
	Translate     TranslateConfig    `yaml:"translate"`
	Notifications NotificationConfig `yaml:"notifications"`
	Logging       LoggingConfig      `yaml:"logging"`
}

// ServerConfig describes the local API listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// FeedsConfig holds the three fixed upstream feed identities, one per
// learner level.
type FeedsConfig struct {
	Level1 string `yaml:"level1"`
	Level2 string `yaml:"level2"`
	Level3 string `yaml:"level3"`
}

// AggregatorConfig describes the feed-to-JSON aggregation proxy.
type AggregatorConfig struct {
	Endpoint       string `yaml:"endpoint"`
	TimeoutSeconds int    `yaml:"timeoutSeconds"`
}

// Timeout resolves the per-feed request timeout.
func (a AggregatorConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// CacheConfig bounds how long a prior fetch counts as fresh.
type CacheConfig struct {
	TTLMinutes int `yaml:"ttlMinutes"`
}

// TTL resolves the article cache time-to-live.
func (c CacheConfig) TTL() time.Duration {
	if c.TTLMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(c.TTLMinutes) * time.Minute
}

// SchedulerConfig defines how often the periodic check fires.
type SchedulerConfig struct {
	CheckIntervalMinutes int `yaml:"checkIntervalMinutes"`
}

// CheckInterval resolves the periodic check period, aligned by default to
// the cache TTL.
func (s SchedulerConfig) CheckInterval() time.Duration {
	if s.CheckIntervalMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(s.CheckIntervalMinutes) * time.Minute
}

// StorageConfig locates the snapshot database.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// DictionaryConfig describes the word-definition API.
type DictionaryConfig struct {
	Endpoint string `yaml:"endpoint"`
}

// TranslateConfig wires the upstream translation API; the key comes from
// the environment, never from the YAML file.
type TranslateConfig struct {
	Endpoint   string `yaml:"endpoint"`
	AuthScheme string `yaml:"authScheme"`
	APIKey     string `yaml:"-"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send messages.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// LoggingConfig selects verbosity.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(serverAddrEnv); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv(storagePathEnv); v != "" {
		c.Storage.Path = v
	}
	if v := os.Getenv(translateKeyEnv); v != "" {
		c.Translate.APIKey = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Server.Addr != "" {
		base.Server = override.Server
	}

	if override.Feeds.Level1 != "" {
		base.Feeds.Level1 = override.Feeds.Level1
	}
	if override.Feeds.Level2 != "" {
		base.Feeds.Level2 = override.Feeds.Level2
	}
	if override.Feeds.Level3 != "" {
		base.Feeds.Level3 = override.Feeds.Level3
	}

	if override.Aggregator.Endpoint != "" {
		base.Aggregator.Endpoint = override.Aggregator.Endpoint
	}
	if override.Aggregator.TimeoutSeconds > 0 {
		base.Aggregator.TimeoutSeconds = override.Aggregator.TimeoutSeconds
	}

	if override.Cache.TTLMinutes > 0 {
		base.Cache.TTLMinutes = override.Cache.TTLMinutes
	}
	if override.Scheduler.CheckIntervalMinutes > 0 {
		base.Scheduler.CheckIntervalMinutes = override.Scheduler.CheckIntervalMinutes
	}

	if override.Storage.Path != "" {
		base.Storage.Path = override.Storage.Path
	}
	if override.Dictionary.Endpoint != "" {
		base.Dictionary.Endpoint = override.Dictionary.Endpoint
	}

	if override.Translate.Endpoint != "" {
		base.Translate.Endpoint = override.Translate.Endpoint
	}
	if override.Translate.AuthScheme != "" {
		base.Translate.AuthScheme = override.Translate.AuthScheme
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{Addr: ":3001"},
		Feeds: FeedsConfig{
			Level1: "https://www.newsinlevels.com/feed/",
			Level2: "https://www.newsinlevels.com/level-2/feed/",
			Level3: "https://www.newsinlevels.com/level-3/feed/",
		},
		Aggregator: AggregatorConfig{
			Endpoint:       aggregatorEndpoint,
			TimeoutSeconds: 10,
		},
		Cache:      CacheConfig{TTLMinutes: 60},
		Scheduler:  SchedulerConfig{CheckIntervalMinutes: 60},
		Storage:    StorageConfig{Path: "newstep.db"},
		Dictionary: DictionaryConfig{Endpoint: "https://api.dictionaryapi.dev/api/v2/entries/en"},
		Translate: TranslateConfig{
			Endpoint:   "https://dapi.kakao.com/v2/translation/translate",
			AuthScheme: "KakaoAK",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
