package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Cfg 全局可访问的配置实例
var Cfg *Config

// LoadConfig 从文件加载配置并填充到 Cfg
func LoadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return fmt.Errorf("config file not found: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	Cfg = &cfg

	return nil
}

func setDefaults() {
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("security.jwt_expire_hours", 24)
	viper.SetDefault("cache.visibility_ttl_seconds", 300)
	viper.SetDefault("pipeline.max_attempts", 3)
	viper.SetDefault("pipeline.retry_backoff_ms", 200)
	viper.SetDefault("pipeline.allow_fallback_id", false)
	viper.SetDefault("encryption.timeout_seconds", 30)
	viper.SetDefault("cron.stats_dirty_spec", "*/30 * * * * *")
	viper.SetDefault("cron.stats_repair_spec", "@daily")
}

// VisibilityTTL 可见性缓存有效期
func (c *Config) VisibilityTTL() time.Duration {
	if c.Cache.VisibilityTTLSeconds <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.Cache.VisibilityTTLSeconds) * time.Second
}
