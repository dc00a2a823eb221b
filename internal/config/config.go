package config

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type Config struct {
	PlatformBaseURL     string `mapstructure:"platform_base_url"`
	PlatformAccessToken string `mapstructure:"platform_access_token"`
	APIGeneration       string `mapstructure:"api_generation"`

	BotHandle      string `mapstructure:"bot_handle"`
	PinnedTweetURL string `mapstructure:"pinned_tweet_url"`

	PollInterval     time.Duration `mapstructure:"poll_interval"`
	PollErrorBackoff time.Duration `mapstructure:"poll_error_backoff"`

	ReportPath string `mapstructure:"report_path"`
	ListenAddr string `mapstructure:"listen_addr"`

	PostgresDSN string `mapstructure:"postgres_dsn"`
}

func New() *Config {
	cfg := &Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		logrus.Fatalf("unmarshalling config: %v", err)
	}
	return cfg
}

func SetupCommon() {
	viper.SetDefault("platform_base_url", "https://api.x.com")
	viper.SetDefault("api_generation", "v2")
	viper.SetDefault("bot_handle", "apsnygame")
	viper.SetDefault("pinned_tweet_url", "https://t.co/3gB7kLhXvY")
	viper.SetDefault("report_path", "weekly_report.json")
	viper.SetDefault("listen_addr", ":8080")
	viper.SetEnvPrefix("RPSBOT")

	viper.MustBindEnv("platform_access_token")
	viper.MustBindEnv("postgres_dsn")
	viper.AutomaticEnv()
}
