package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"perpus/repository"
)

const envPrefix = "PERPUS"

type Config struct {
	Database repository.DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig               `mapstructure:"redis"`
	HTTP     HTTPConfig                `mapstructure:"http"`
	Log      LogConfig                 `mapstructure:"log"`
	Workflow WorkflowConfig            `mapstructure:"workflow"`
	Report   ReportConfig              `mapstructure:"report"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type HTTPConfig struct {
	Addr           string        `mapstructure:"addr"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type WorkflowConfig struct {
	// Transactional runs each borrowing operation inside one database
	// transaction. When false, steps are applied one by one and undone by
	// compensating writes on failure.
	Transactional bool `mapstructure:"transactional"`
}

type ReportConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	Timezone string        `mapstructure:"timezone"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.username", "perpus")
	v.SetDefault("database.password", "perpus")
	v.SetDefault("database.database_name", "perpus")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.path", "perpus.db")
	v.SetDefault("database.slow_threshold", 200*time.Millisecond)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("http.addr", ":8080")
	v.SetDefault("http.request_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("workflow.transactional", true)

	v.SetDefault("report.cache_ttl", 5*time.Minute)
	v.SetDefault("report.timezone", "Asia/Jakarta")
}

// Load reads .env, the optional config file at path and PERPUS_* variables,
// in increasing order of precedence.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
