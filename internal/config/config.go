package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Steam     SteamConfig     `yaml:"steam"`
	Guide     GuideConfig     `yaml:"guide"`
	Redis     RedisConfig     `yaml:"redis"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Retention RetentionConfig `yaml:"retention"`
	Trending  TrendingConfig  `yaml:"trending"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

// SteamConfig holds Steam Web API settings
type SteamConfig struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	// AchievementIconBase is a fmt pattern taking the app ID, used to qualify
	// relative achievement icon paths.
	AchievementIconBase string `yaml:"achievement_icon_base"`
	// GameIconBase is a fmt pattern taking the app ID and the icon hash.
	GameIconBase string `yaml:"game_icon_base"`
	Language     string `yaml:"language"`
}

// GuideConfig holds settings for the strategy guide search
type GuideConfig struct {
	SearchURL     string        `yaml:"search_url"`
	APIKey        string        `yaml:"api_key"`
	EngineID      string        `yaml:"engine_id"`
	Domain        string        `yaml:"domain"`
	QueryTemplate string        `yaml:"query_template"`
	MaxResults    int           `yaml:"max_results"`
	Timeout       time.Duration `yaml:"timeout"`
}

// Configured reports whether search credentials are present.
func (c *GuideConfig) Configured() bool {
	return c.APIKey != "" && c.EngineID != ""
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Addr         string        `yaml:"addr"`
	Password     string        `yaml:"password"`
	DB           int           `yaml:"db"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"ssl_mode"`
	MaxConnections  int           `yaml:"max_connections"`
	MinConnections  int           `yaml:"min_connections"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
}

// ConnectionString returns the PostgreSQL connection string
func (c *PostgresConfig) ConnectionString() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, sslMode,
	)
}

// KafkaConfig holds Kafka connection configuration
type KafkaConfig struct {
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic"`
	GroupID      string        `yaml:"group_id"`
	Enabled      bool          `yaml:"enabled"`
	BatchSize    int           `yaml:"batch_size"`
	BatchTimeout time.Duration `yaml:"batch_timeout"`
}

// RetentionConfig controls pruning of the lookup audit log
type RetentionConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Interval time.Duration `yaml:"interval"`
	MaxAge   time.Duration `yaml:"max_age"`
}

// TrendingConfig holds limits for the trending titles endpoint
type TrendingConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	return &cfg, nil
}

// applyEnv lets well-known environment variables override the file.
func (c *Config) applyEnv() {
	if v := os.Getenv("STEAM_API_KEY"); v != "" {
		c.Steam.APIKey = v
	}
	if v := os.Getenv("ALLOWED_ORIGIN"); v != "" {
		origins := strings.Split(v, ",")
		for i := range origins {
			origins[i] = strings.TrimSpace(origins[i])
		}
		c.Server.AllowedOrigins = origins
	}
	if v := os.Getenv("GUIDE_SEARCH_KEY"); v != "" {
		c.Guide.APIKey = v
	}
	if v := os.Getenv("GUIDE_SEARCH_ENGINE_ID"); v != "" {
		c.Guide.EngineID = v
	}
}

// applyDefaults sets default values for missing configuration
func (c *Config) applyDefaults() {
	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 5 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 30 * time.Second
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 120 * time.Second
	}
	if len(c.Server.AllowedOrigins) == 0 {
		c.Server.AllowedOrigins = []string{"http://localhost:3000"}
	}

	// Steam defaults
	if c.Steam.BaseURL == "" {
		c.Steam.BaseURL = "https://api.steampowered.com"
	}
	if c.Steam.Timeout == 0 {
		c.Steam.Timeout = 10 * time.Second
	}
	if c.Steam.AchievementIconBase == "" {
		c.Steam.AchievementIconBase = "https://steamcdn-a.akamaihd.net/steamcommunity/public/images/apps/%s/"
	}
	if c.Steam.GameIconBase == "" {
		c.Steam.GameIconBase = "https://media.steampowered.com/steamcommunity/public/images/apps/%d/%s.jpg"
	}
	if c.Steam.Language == "" {
		c.Steam.Language = "english"
	}

	// Guide defaults
	if c.Guide.SearchURL == "" {
		c.Guide.SearchURL = "https://www.googleapis.com/customsearch/v1"
	}
	if c.Guide.Domain == "" {
		c.Guide.Domain = "powerpyx.com"
	}
	if c.Guide.QueryTemplate == "" {
		c.Guide.QueryTemplate = "%s achievement guide site:%s"
	}
	if c.Guide.MaxResults == 0 {
		c.Guide.MaxResults = 5
	}
	if c.Guide.Timeout == 0 {
		c.Guide.Timeout = 5 * time.Second
	}

	// Redis defaults
	if c.Redis.Addr == "" {
		c.Redis.Addr = "localhost:6379"
	}
	if c.Redis.PoolSize == 0 {
		c.Redis.PoolSize = 20
	}
	if c.Redis.MinIdleConns == 0 {
		c.Redis.MinIdleConns = 2
	}
	if c.Redis.DialTimeout == 0 {
		c.Redis.DialTimeout = 5 * time.Second
	}
	if c.Redis.ReadTimeout == 0 {
		c.Redis.ReadTimeout = 3 * time.Second
	}
	if c.Redis.WriteTimeout == 0 {
		c.Redis.WriteTimeout = 3 * time.Second
	}

	// PostgreSQL defaults
	if c.Postgres.Host == "" {
		c.Postgres.Host = "localhost"
	}
	if c.Postgres.Port == 0 {
		c.Postgres.Port = 5432
	}
	if c.Postgres.MaxConnections == 0 {
		c.Postgres.MaxConnections = 10
	}
	if c.Postgres.MinConnections == 0 {
		c.Postgres.MinConnections = 1
	}
	if c.Postgres.MaxConnLifetime == 0 {
		c.Postgres.MaxConnLifetime = 1 * time.Hour
	}
	if c.Postgres.MaxConnIdleTime == 0 {
		c.Postgres.MaxConnIdleTime = 30 * time.Minute
	}

	// Kafka defaults
	if len(c.Kafka.Brokers) == 0 {
		c.Kafka.Brokers = []string{"localhost:9092"}
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "steam-lookups"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "steam-lookups-recorder"
	}
	if c.Kafka.BatchSize == 0 {
		c.Kafka.BatchSize = 100
	}
	if c.Kafka.BatchTimeout == 0 {
		c.Kafka.BatchTimeout = 1 * time.Second
	}

	// Retention defaults
	if c.Retention.Interval == 0 {
		c.Retention.Interval = 1 * time.Hour
	}
	if c.Retention.MaxAge == 0 {
		c.Retention.MaxAge = 30 * 24 * time.Hour
	}

	// Trending defaults
	if c.Trending.DefaultLimit == 0 {
		c.Trending.DefaultLimit = 10
	}
	if c.Trending.MaxLimit == 0 {
		c.Trending.MaxLimit = 100
	}
}

// Validate checks that required settings are present. All failures are
// reported together.
func (c *Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Steam.APIKey) == "" {
		errs = append(errs, errors.New("STEAM_API_KEY (steam.api_key) is required"))
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("ALLOWED_ORIGIN (server.allowed_origins) must have at least one origin"))
	}
	if c.Guide.MaxResults <= 0 {
		errs = append(errs, errors.New("guide.max_results must be positive"))
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("kafka.brokers is required when kafka is enabled"))
	}
	if c.Retention.Enabled && !c.Postgres.Enabled {
		errs = append(errs, errors.New("retention requires postgres to be enabled"))
	}
	if c.Trending.DefaultLimit > c.Trending.MaxLimit {
		errs = append(errs, errors.New("trending.default_limit must not exceed trending.max_limit"))
	}

	return errors.Join(errs...)
}

// DefaultConfig returns a configuration with all defaults
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyEnv()
	cfg.applyDefaults()
	return cfg
}
