package config

// Config 配置主体
type Config struct {
	Server                  ServerConfig            `mapstructure:"server"`
	DB                      DBConfig                `mapstructure:"database"`
	Redis                   RedisConfig             `mapstructure:"redis"`
	Log                     LogConfig               `mapstructure:"log"`
	Security                SecurityConfig          `mapstructure:"security"`
	Cache                   CacheConfig             `mapstructure:"cache"`
	Pipeline                PipelineConfig          `mapstructure:"pipeline"`
	Encryption              EncryptionConfig        `mapstructure:"encryption"`
	Ledger                  LedgerConfig            `mapstructure:"ledger"`
	Cron                    CronConfig              `mapstructure:"cron"`
	Kafka                   KafkaConfig             `mapstructure:"kafka"`
	KafkaVisibilityConsumer KafkaVisibilityConsumer `mapstructure:"kafka_visibility_consumer"`
	KafkaEngagementConsumer KafkaEngagementConsumer `mapstructure:"kafka_engagement_consumer"`
}

// ServerConfig Server配置
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DBConfig 数据库配置
type DBConfig struct {
	DSN         string `mapstructure:"dsn"`
	MaxIdle     int    `mapstructure:"max_idle"`
	MaxOpen     int    `mapstructure:"max_open"`
	MaxLifetime int    `mapstructure:"max_lifetime"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// SecurityConfig 会话与内容加密密钥
type SecurityConfig struct {
	JWTSecret      string `mapstructure:"jwt_secret"`
	JWTExpireHours int    `mapstructure:"jwt_expire_hours"`
	ContentKey     string `mapstructure:"content_key"` // 32 字节 hex
}

// CacheConfig 可见性缓存
type CacheConfig struct {
	VisibilityTTLSeconds int `mapstructure:"visibility_ttl_seconds"`
}

// PipelineConfig 内容创建流水线
type PipelineConfig struct {
	MaxAttempts     int  `mapstructure:"max_attempts"`
	RetryBackoffMs  int  `mapstructure:"retry_backoff_ms"`
	AllowFallbackID bool `mapstructure:"allow_fallback_id"`
}

// EncryptionConfig 加密服务（relayer）
type EncryptionConfig struct {
	URL            string `mapstructure:"url"`
	ApiKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// LedgerConfig 链上合约
type LedgerConfig struct {
	RPCURL          string `mapstructure:"rpc_url"`
	ChainID         int64  `mapstructure:"chain_id"`
	ContractAddress string `mapstructure:"contract_address"`
	PrivateKey      string `mapstructure:"private_key"`
}

// CronConfig 定时任务
type CronConfig struct {
	StatsDirtySpec  string `mapstructure:"stats_dirty_spec"`
	StatsRepairSpec string `mapstructure:"stats_repair_spec"`
}

type KafkaConfig struct {
	Brokers  []string       `mapstructure:"brokers"`
	Sasl     SaslConfig     `mapstructure:"sasl"`
	Consumer ConsumerConfig `mapstructure:"consumer"`
}

type SaslConfig struct {
	Enable   bool   `mapstructure:"enable"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

type ConsumerConfig struct {
	SessionTimeout    int `mapstructure:"session_timeout"`
	HeartbeatInterval int `mapstructure:"heartbeat_interval"`
	RebalanceTimeout  int `mapstructure:"rebalance_timeout"`
	MaxProcessingTime int `mapstructure:"max_processing_time"`
}

type KafkaVisibilityConsumer struct {
	Topic   string `mapstructure:"topic"`
	GroupID string `mapstructure:"group_id"`
}

type KafkaEngagementConsumer struct {
	Topics  []string `mapstructure:"topics"`
	GroupID string   `mapstructure:"group_id"`
}
