package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"flzt_checkin/internal/model"
	"flzt_checkin/internal/utils"
)

const (
	EnvBaseURL       = "FLZT_BASE_URL"
	EnvEmail         = "FLZT_EMAIL"
	EnvPassword      = "FLZT_PASSWORD"
	EnvConvert       = "FLZT_CONVERT_TRAFFIC"
	EnvConvertAmount = "FLZT_CONVERT_AMOUNT"
	EnvUserAgent     = "FLZT_USER_AGENT"
	EnvTimeoutMs     = "FLZT_TIMEOUT_MS"
	EnvMinIntervalMs = "FLZT_MIN_INTERVAL_MS"
	EnvLogLevel      = "LOG_LEVEL"

	EnvBarkPush     = "BARK_PUSH"
	EnvTGBotToken   = "TG_BOT_TOKEN"
	EnvTGUserID     = "TG_USER_ID"
	EnvTGAPIHost    = "TG_API_HOST"
	EnvSMTPServer   = "SMTP_SERVER"
	EnvSMTPSSL      = "SMTP_SSL"
	EnvSMTPEmail    = "SMTP_EMAIL"
	EnvSMTPPassword = "SMTP_PASSWORD"
	EnvSMTPName     = "SMTP_NAME"
)

type Config struct {
	Provider ProviderConfig        `yaml:"provider"`
	Account  model.Credentials     `yaml:"account"`
	Convert  model.ConvertSettings `yaml:"convert"`
	Notify   model.NotifySettings  `yaml:"notify"`
	Log      LogConfig             `yaml:"log"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type ProviderConfig struct {
	BaseURL   string `yaml:"baseURL"`
	UserAgent string `yaml:"userAgent"`

	// TimeoutMs 为 0 时远端调用不设超时，一直等到对端响应或连接出错。
	TimeoutMs int `yaml:"timeoutMs"`
	// MinIntervalMs 相邻两次远端调用之间的最小间隔，0 表示不限制。
	MinIntervalMs int `yaml:"minIntervalMs"`
}

func (c ProviderConfig) Timeout() time.Duration {
	if c.TimeoutMs <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

func (c ProviderConfig) MinInterval() time.Duration {
	if c.MinIntervalMs <= 0 {
		return 0
	}
	return time.Duration(c.MinIntervalMs) * time.Millisecond
}

// MissingError reports a required setting that was not supplied.
type MissingError struct {
	Key string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing required setting %s", e.Key)
}

// Load reads an optional yaml file, then overlays environment variables.
// A .env file in the working directory is loaded first without overriding
// variables that are already set.
func Load(path string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Provider.BaseURL, EnvBaseURL)
	setString(&c.Provider.UserAgent, EnvUserAgent)
	setString(&c.Account.Email, EnvEmail)
	setString(&c.Account.Password, EnvPassword)
	setString(&c.Log.Level, EnvLogLevel)
	setString(&c.Notify.Bark.Push, EnvBarkPush)
	setString(&c.Notify.Telegram.BotToken, EnvTGBotToken)
	setString(&c.Notify.Telegram.APIHost, EnvTGAPIHost)
	setString(&c.Notify.Email.Server, EnvSMTPServer)
	setString(&c.Notify.Email.Email, EnvSMTPEmail)
	setString(&c.Notify.Email.AuthCode, EnvSMTPPassword)
	setString(&c.Notify.Email.Name, EnvSMTPName)

	if err := setBool(&c.Convert.Enabled, EnvConvert); err != nil {
		return err
	}
	if err := setBool(&c.Notify.Email.SSL, EnvSMTPSSL); err != nil {
		return err
	}
	if err := setInt64(&c.Convert.AmountMB, EnvConvertAmount); err != nil {
		return err
	}
	if err := setInt64(&c.Notify.Telegram.UserID, EnvTGUserID); err != nil {
		return err
	}

	var timeoutMs, intervalMs int64
	if err := setInt64(&timeoutMs, EnvTimeoutMs); err != nil {
		return err
	}
	if timeoutMs != 0 {
		c.Provider.TimeoutMs = int(timeoutMs)
	}
	if err := setInt64(&intervalMs, EnvMinIntervalMs); err != nil {
		return err
	}
	if intervalMs != 0 {
		c.Provider.MinIntervalMs = int(intervalMs)
	}
	return nil
}

func (c *Config) applyDefaults() {
	c.Provider.BaseURL = strings.TrimRight(strings.TrimSpace(c.Provider.BaseURL), "/")
	c.Account.Email = strings.TrimSpace(c.Account.Email)
	c.Account.Password = strings.TrimSpace(c.Account.Password)
	c.Provider.UserAgent = utils.NormalizeUserAgent(c.Provider.UserAgent)
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Convert.AmountMB < 0 {
		c.Convert.AmountMB = 0
	}
}

func (c Config) validate() error {
	if c.Provider.BaseURL == "" {
		return &MissingError{Key: EnvBaseURL}
	}
	if c.Account.Email == "" {
		return &MissingError{Key: EnvEmail}
	}
	if c.Account.Password == "" {
		return &MissingError{Key: EnvPassword}
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	switch strings.ToLower(v) {
	case "yes", "on", "y":
		*dst = true
		return nil
	case "no", "off", "n":
		*dst = false
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s: invalid boolean %q", key, v)
	}
	*dst = b
	return nil
}

func setInt64(dst *int64, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("%s: invalid integer %q", key, v)
	}
	*dst = n
	return nil
}
