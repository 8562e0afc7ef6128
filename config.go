package numgen

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-redis/redis/v8"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config 配置结构
type Config struct {
	Generator      *GeneratorConfig      `mapstructure:"generator"`
	History        *HistoryConfig        `mapstructure:"history"`
	Storage        *StorageConfig        `mapstructure:"storage"`
	Redis          *RedisConfig          `mapstructure:"redis"`
	CircuitBreaker *CircuitBreakerConfig `mapstructure:"circuit_breaker"`
	Log            *LogConfig            `mapstructure:"log"`
}

// Validate checks every section
func (c *Config) Validate() error {
	if c.Generator == nil || c.History == nil || c.Storage == nil {
		return ErrConfigInvalid.WithDetails("missing section")
	}
	if err := c.Generator.Validate(); err != nil {
		return err
	}
	if err := c.History.Validate(); err != nil {
		return err
	}

	switch c.Storage.Driver {
	case StorageMemory:
	case StorageBunt:
		if c.Storage.Path == "" {
			return ErrConfigInvalid.WithDetails("storage path is required for the bunt driver")
		}
	case StorageRedis:
		if c.Redis == nil || c.Redis.Addr == "" {
			return ErrConfigInvalid.WithDetails("redis address is required")
		}
		if c.Redis.PoolSize <= 0 {
			return ErrConfigInvalid.WithDetails("redis pool size must be positive")
		}
	default:
		return ErrConfigInvalid.WithDetails(fmt.Sprintf("unknown storage driver %q", c.Storage.Driver))
	}

	if c.Storage.RetryAttempts < 0 || c.Storage.RetryAttempts > MaxRetryAttempts {
		return ErrConfigInvalid.WithDetails("retry attempts must be between 0 and 10")
	}

	return nil
}

// GeneratorConfig holds the default range and the animation settings
type GeneratorConfig struct {
	DefaultMin   int           `mapstructure:"default_min"`
	DefaultMax   int           `mapstructure:"default_max"`
	Ticks        int           `mapstructure:"ticks"`
	TickInterval time.Duration `mapstructure:"tick_interval"`
}

// DefaultGeneratorConfig returns 1..100 with a 20 x 50ms roll
func DefaultGeneratorConfig() *GeneratorConfig {
	return &GeneratorConfig{
		DefaultMin:   DefaultMin,
		DefaultMax:   DefaultMax,
		Ticks:        DefaultTicks,
		TickInterval: DefaultTickInterval,
	}
}

// Validate checks the default range and animation settings
func (c *GeneratorConfig) Validate() error {
	if err := ValidateRange(c.DefaultMin, c.DefaultMax); err != nil {
		return err
	}
	return c.RollerConfig().Validate()
}

// RollerConfig extracts the animation settings
func (c *GeneratorConfig) RollerConfig() *RollerConfig {
	return &RollerConfig{Ticks: c.Ticks, TickInterval: c.TickInterval}
}

// StorageConfig selects the history backend
type StorageConfig struct {
	Driver        string        `mapstructure:"driver"`
	Path          string        `mapstructure:"path"`
	TTL           time.Duration `mapstructure:"ttl"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryInterval time.Duration `mapstructure:"retry_interval"`
	// DistributedLock serializes rolls through Redis when the redis driver is used
	DistributedLock bool `mapstructure:"distributed_lock"`
}

// DefaultStorageConfig stores history in a buntdb file under the user's home directory
func DefaultStorageConfig() *StorageConfig {
	return &StorageConfig{
		Driver:        StorageBunt,
		Path:          defaultStoragePath(),
		RetryAttempts: DefaultRetryAttempts,
		RetryInterval: DefaultRetryInterval,
	}
}

func defaultStoragePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".numgen", "history.db")
	}
	return filepath.Join(home, ".numgen", "history.db")
}

// RedisConfig Redis 配置
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	PoolSize     int `mapstructure:"pool_size"`
	MinIdleConns int `mapstructure:"min_idle_conns"`
	MaxRetries   int `mapstructure:"max_retries"`

	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	PoolTimeout  time.Duration `mapstructure:"pool_timeout"`
}

// DefaultRedisConfig 返回默认的Redis配置
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:         DefaultRedisAddr,
		Password:     DefaultRedisPassword,
		DB:           DefaultRedisDB,
		PoolSize:     DefaultRedisPoolSize,
		MinIdleConns: DefaultRedisMinIdleConns,
		MaxRetries:   DefaultRedisMaxRetries,
		DialTimeout:  DefaultRedisDialTimeout,
		ReadTimeout:  DefaultRedisReadTimeout,
		WriteTimeout: DefaultRedisWriteTimeout,
		PoolTimeout:  DefaultRedisPoolTimeout,
	}
}

// NewRedisClientFromConfig 从配置创建Redis客户端
func NewRedisClientFromConfig(config *RedisConfig) *redis.Client {
	if config == nil {
		config = DefaultRedisConfig()
	}

	return redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		MaxRetries:   config.MaxRetries,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
		PoolTimeout:  config.PoolTimeout,
	})
}

// CircuitBreakerConfig 熔断器配置
type CircuitBreakerConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Name          string        `mapstructure:"name"`
	MaxRequests   uint32        `mapstructure:"max_requests"`
	Interval      time.Duration `mapstructure:"interval"`
	Timeout       time.Duration `mapstructure:"timeout"`
	FailureRatio  float64       `mapstructure:"failure_ratio"`
	MinRequests   uint32        `mapstructure:"min_requests"`
	OnStateChange bool          `mapstructure:"on_state_change"`
}

// DefaultCircuitBreakerConfig 返回默认熔断器配置
func DefaultCircuitBreakerConfig() *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		Enabled:       true,
		Name:          DefaultCircuitBreakerName,
		MaxRequests:   DefaultCircuitBreakerMaxRequests,
		Interval:      DefaultCircuitBreakerInterval,
		Timeout:       DefaultCircuitBreakerTimeout,
		FailureRatio:  DefaultCircuitBreakerFailureRatio,
		MinRequests:   DefaultCircuitBreakerMinRequests,
		OnStateChange: true,
	}
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	return &Config{
		Generator:      DefaultGeneratorConfig(),
		History:        DefaultHistoryConfig(),
		Storage:        DefaultStorageConfig(),
		Redis:          DefaultRedisConfig(),
		CircuitBreaker: DefaultCircuitBreakerConfig(),
		Log:            &LogConfig{Level: "info"},
	}
}

// ConfigManager 配置管理器
type ConfigManager struct {
	viper *viper.Viper

	mu     sync.RWMutex
	config *Config
}

// NewConfigManager 创建配置管理器
func NewConfigManager() *ConfigManager {
	v := viper.New()

	v.SetConfigName("numgen")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("$HOME/.numgen")

	v.SetEnvPrefix("NUMGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cm := &ConfigManager{viper: v}
	cm.setDefaults()
	return cm
}

// SetConfigFile reads exactly this file instead of searching the config paths
func (cm *ConfigManager) SetConfigFile(path string) {
	if path != "" {
		cm.viper.SetConfigFile(path)
	}
}

// BindFlag lets a command-line flag override key
func (cm *ConfigManager) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("flag for %s is not defined", key)
	}
	return cm.viper.BindPFlag(key, flag)
}

// LoadConfig 加载配置
func (cm *ConfigManager) LoadConfig() (*Config, error) {
	if err := cm.viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// 配置文件不存在时使用默认配置
	}

	config, err := cm.decode()
	if err != nil {
		return nil, err
	}

	cm.mu.Lock()
	cm.config = config
	cm.mu.Unlock()
	return config, nil
}

func (cm *ConfigManager) decode() (*Config, error) {
	config := DefaultConfig()
	if err := cm.viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return config, nil
}

// setDefaults 设置默认配置值
func (cm *ConfigManager) setDefaults() {
	cm.viper.SetDefault("generator.default_min", DefaultMin)
	cm.viper.SetDefault("generator.default_max", DefaultMax)
	cm.viper.SetDefault("generator.ticks", DefaultTicks)
	cm.viper.SetDefault("generator.tick_interval", DefaultTickInterval.String())

	cm.viper.SetDefault("history.max_entries", MaxHistoryEntries)
	cm.viper.SetDefault("history.key", DefaultHistoryKey)

	cm.viper.SetDefault("storage.driver", StorageBunt)
	cm.viper.SetDefault("storage.path", defaultStoragePath())
	cm.viper.SetDefault("storage.ttl", "0s")
	cm.viper.SetDefault("storage.retry_attempts", DefaultRetryAttempts)
	cm.viper.SetDefault("storage.retry_interval", DefaultRetryInterval.String())
	cm.viper.SetDefault("storage.distributed_lock", false)

	cm.viper.SetDefault("redis.addr", DefaultRedisAddr)
	cm.viper.SetDefault("redis.password", DefaultRedisPassword)
	cm.viper.SetDefault("redis.db", DefaultRedisDB)
	cm.viper.SetDefault("redis.pool_size", DefaultRedisPoolSize)
	cm.viper.SetDefault("redis.min_idle_conns", DefaultRedisMinIdleConns)
	cm.viper.SetDefault("redis.max_retries", DefaultRedisMaxRetries)
	cm.viper.SetDefault("redis.dial_timeout", DefaultRedisDialTimeout.String())
	cm.viper.SetDefault("redis.read_timeout", DefaultRedisReadTimeout.String())
	cm.viper.SetDefault("redis.write_timeout", DefaultRedisWriteTimeout.String())
	cm.viper.SetDefault("redis.pool_timeout", DefaultRedisPoolTimeout.String())

	cm.viper.SetDefault("circuit_breaker.enabled", true)
	cm.viper.SetDefault("circuit_breaker.name", DefaultCircuitBreakerName)
	cm.viper.SetDefault("circuit_breaker.max_requests", DefaultCircuitBreakerMaxRequests)
	cm.viper.SetDefault("circuit_breaker.interval", DefaultCircuitBreakerInterval.String())
	cm.viper.SetDefault("circuit_breaker.timeout", DefaultCircuitBreakerTimeout.String())
	cm.viper.SetDefault("circuit_breaker.failure_ratio", DefaultCircuitBreakerFailureRatio)
	cm.viper.SetDefault("circuit_breaker.min_requests", DefaultCircuitBreakerMinRequests)
	cm.viper.SetDefault("circuit_breaker.on_state_change", true)

	cm.viper.SetDefault("log.level", "info")
}

// WatchConfig 监听配置变化; an invalid edit keeps the previous configuration
func (cm *ConfigManager) WatchConfig(callback func(*Config), logger Logger) {
	if logger == nil {
		logger = NewSilentLogger()
	}

	cm.viper.OnConfigChange(func(e fsnotify.Event) {
		config, err := cm.decode()
		if err != nil {
			logger.Error("Ignoring config change in %s: %v", e.Name, err)
			return
		}

		cm.mu.Lock()
		cm.config = config
		cm.mu.Unlock()

		logger.Info("Config reloaded from %s", e.Name)
		if callback != nil {
			callback(config)
		}
	})
	cm.viper.WatchConfig()
}

// GetConfig 获取当前配置
func (cm *ConfigManager) GetConfig() *Config {
	cm.mu.RLock()
	defer cm.mu.RUnlock()

	return cm.config
}
