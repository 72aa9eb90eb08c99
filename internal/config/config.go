package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

// Config 应用程序配置结构
type Config struct {
	Server   Server   `yaml:"server"`
	Data     Data     `yaml:"data"`
	Telegram Telegram `yaml:"telegram"`
	Scraper  Scraper  `yaml:"scraper"`
	App      App      `yaml:"app"`
}

// Server Web服务配置
type Server struct {
	Addr             string        `yaml:"addr"`
	Mode             string        `yaml:"mode"`
	ReadTimeout      time.Duration `yaml:"read_timeout"`
	WriteTimeout     time.Duration `yaml:"write_timeout"`
	RefreshPerMinute int           `yaml:"refresh_per_minute"`
	SessionCookie    string        `yaml:"session_cookie"`
	SessionMaxAge    time.Duration `yaml:"session_max_age"`
	SecureCookie     bool          `yaml:"secure_cookie"`
}

// Data 数据源配置，BaseURL 非空时通过HTTP加载，否则读取本地目录
type Data struct {
	Dir             string        `yaml:"dir"`
	BaseURL         string        `yaml:"base_url"`
	Timeout         time.Duration `yaml:"timeout"`
	HistoryFile     string        `yaml:"history_file"`
	PredictionsFile string        `yaml:"predictions_file"`
	ArchiveFile     string        `yaml:"archive_file"`
}

// Telegram Bot配置
type Telegram struct {
	Enabled bool          `yaml:"enabled"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

// Scraper 开奖历史抓取配置
type Scraper struct {
	URL       string        `yaml:"url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

// App 应用程序配置
type App struct {
	RefreshInterval time.Duration `yaml:"refresh_interval"`
	LogLevel        string        `yaml:"log_level"`
	LogFormat       string        `yaml:"log_format"`
	CacheSize       int           `yaml:"cache_size"`
	ViewTTL         time.Duration `yaml:"view_ttl"`
}

// LoadConfig 加载配置文件，随后应用默认值与环境变量覆盖
func LoadConfig(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()

	// .env 文件可选
	_ = godotenv.Load()
	if err := config.applyEnvOverrides(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Default 返回仅包含默认值的配置
func Default() *Config {
	var config Config
	config.applyDefaults()
	return &config
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.Mode == "" {
		c.Server.Mode = "release"
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 10 * time.Second
	}
	if c.Server.RefreshPerMinute == 0 {
		c.Server.RefreshPerMinute = 6
	}
	if c.Server.SessionCookie == "" {
		c.Server.SessionCookie = "ssq_session"
	}
	if c.Server.SessionMaxAge == 0 {
		c.Server.SessionMaxAge = 30 * 24 * time.Hour
	}

	if c.Data.Dir == "" && c.Data.BaseURL == "" {
		c.Data.Dir = "data"
	}
	if c.Data.Timeout == 0 {
		c.Data.Timeout = 10 * time.Second
	}
	if c.Data.HistoryFile == "" {
		c.Data.HistoryFile = "lottery_history.json"
	}
	if c.Data.PredictionsFile == "" {
		c.Data.PredictionsFile = "ai_predictions.json"
	}
	if c.Data.ArchiveFile == "" {
		c.Data.ArchiveFile = "predictions_history.json"
	}

	if c.Telegram.Timeout == 0 {
		c.Telegram.Timeout = 60 * time.Second
	}

	if c.Scraper.URL == "" {
		c.Scraper.URL = "https://datachart.500.com/ssq/history/history.shtml"
	}
	if c.Scraper.Timeout == 0 {
		c.Scraper.Timeout = 30 * time.Second
	}
	if c.Scraper.UserAgent == "" {
		c.Scraper.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
	}

	if c.App.RefreshInterval == 0 {
		c.App.RefreshInterval = 5 * time.Minute
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.LogFormat == "" {
		c.App.LogFormat = "text"
	}
	if c.App.CacheSize == 0 {
		c.App.CacheSize = 1000
	}
	if c.App.ViewTTL == 0 {
		c.App.ViewTTL = 24 * time.Hour
	}
}

// applyEnvOverrides 使用 SSQ_* 环境变量覆盖配置
func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("SSQ_SERVER_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("SSQ_SECURE_COOKIE"); v != "" {
		secure, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("failed to parse SSQ_SECURE_COOKIE: %w", err)
		}
		c.Server.SecureCookie = secure
	}
	if v := os.Getenv("SSQ_DATA_DIR"); v != "" {
		c.Data.Dir = v
	}
	if v := os.Getenv("SSQ_DATA_BASE_URL"); v != "" {
		c.Data.BaseURL = v
	}
	if v := os.Getenv("SSQ_TELEGRAM_TOKEN"); v != "" {
		c.Telegram.Token = v
	}
	if v := os.Getenv("SSQ_TELEGRAM_ENABLED"); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("failed to parse SSQ_TELEGRAM_ENABLED: %w", err)
		}
		c.Telegram.Enabled = enabled
	}
	if v := os.Getenv("SSQ_LOG_LEVEL"); v != "" {
		c.App.LogLevel = v
	}
	if v := os.Getenv("SSQ_REFRESH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("failed to parse SSQ_REFRESH_INTERVAL: %w", err)
		}
		c.App.RefreshInterval = d
	}
	return nil
}

// Path 获取本地数据文件路径
func (d *Data) Path(name string) string {
	return filepath.Join(d.Dir, name)
}

// URL 获取远程数据文件地址
func (d *Data) URL(name string) string {
	base := d.BaseURL
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base + "/" + name
}
