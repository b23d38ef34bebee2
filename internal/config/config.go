// config предоставляет структуру конфигурации pulse-reader
// и функции загрузки из YAML/ENV с предсказуемым приоритетом.
package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"gopkg.in/yaml.v3"
)

// Драйверы хранилища.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config — корневая конфигурация сервиса.
// Приоритет источников:
//  1. явный путь, переданный в MustLoad/Load;
//  2. переменная окружения CONFIG_PATH;
//  3. файл ./local.yaml из рабочей директории;
//  4. переменные окружения.
type Config struct {
	Env             string                `yaml:"env" env:"ENV" env-default:"local"`
	HTTP            HTTPConfig            `yaml:"http"`
	GRPC            GRPCConfig            `yaml:"grpc"`
	DB              DBConfig              `yaml:"db"`
	Redis           RedisConfig           `yaml:"redis"`
	Fetcher         FetcherConfig         `yaml:"fetcher"`
	Classifier      ClassifierConfig      `yaml:"classifier"`
	Retention       RetentionConfig       `yaml:"retention"`
	Limits          LimitsConfig          `yaml:"limits"`
	Personalization PersonalizationConfig `yaml:"personalization"`
	Auth            AuthConfig            `yaml:"auth"`
	Timeouts        TimeoutConfig         `yaml:"timeouts"`
}

// TimeoutConfig — таймауты сервиса.
type TimeoutConfig struct {
	// Service — дедлайн на обработку одного запроса (HTTP и gRPC).
	Service  time.Duration `yaml:"service" env:"SERVICE_TIMEOUT" env-default:"5s"`
	Shutdown time.Duration `yaml:"shutdown" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// HTTPConfig — сетевые настройки HTTP-сервера (API, /metrics, /livez, /healthz).
type HTTPConfig struct {
	Host string `yaml:"host" env:"HTTP_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"HTTP_PORT" env-default:"8080"`
}

// GRPCConfig — сетевые настройки gRPC health-сервера.
type GRPCConfig struct {
	Host string `yaml:"host" env:"GRPC_HOST" env-default:"0.0.0.0"`
	Port string `yaml:"port" env:"GRPC_PORT" env-default:"50051"`
}

// Addr возвращает адрес в формате host:port.
func (g GRPCConfig) Addr() string {
	return net.JoinHostPort(g.Host, g.Port)
}

// Addr возвращает адрес в формате host:port.
func (h HTTPConfig) Addr() string {
	return net.JoinHostPort(h.Host, h.Port)
}

// DBConfig — настройки хранилища.
type DBConfig struct {
	// Driver: postgres | memory. memory — для локального запуска без БД.
	Driver string `yaml:"driver" env:"DB_DRIVER" env-default:"postgres"`
	URL    string `yaml:"url" env:"DATABASE_URL"`
}

// RedisConfig — кэш профилей. Пустой URL — кэш выключен.
type RedisConfig struct {
	URL        string        `yaml:"url" env:"REDIS_URL"`
	Prefix     string        `yaml:"prefix" env:"REDIS_PREFIX" env-default:"pulse:profile:"`
	ProfileTTL time.Duration `yaml:"profile_ttl" env:"REDIS_PROFILE_TTL" env-default:"5m"`
}

// FetcherConfig — параметры периодического опроса RSS.
type FetcherConfig struct {
	// Источники, которые гарантированно заводятся при старте. Через ENV — RSS_SOURCES, разделитель запятая.
	Sources  []string      `yaml:"sources" env:"RSS_SOURCES" env-separator:","`
	Interval time.Duration `yaml:"interval" env:"FETCH_INTERVAL" env-default:"15m"`
	Timeout  time.Duration `yaml:"timeout" env:"FETCH_TIMEOUT" env-default:"30s"`
	// CycleTimeout — общий бюджет одного цикла ингеста, в том числе запущенного вручную через API.
	CycleTimeout time.Duration `yaml:"cycle_timeout" env:"FETCH_CYCLE_TIMEOUT" env-default:"10m"`
	// Workers без env-default: явный 0 должен дойти до validate, см. applyCountDefaults.
	Workers      int    `yaml:"workers" env:"FETCH_WORKERS"`
	UserAgent    string `yaml:"user_agent" env:"FETCH_USER_AGENT" env-default:"pulse-reader/1.0"`
	MaxBodyBytes int64  `yaml:"max_body_bytes" env:"FETCH_MAX_BODY_BYTES" env-default:"10485760"`
}

// ClassifierConfig — OpenAI-совместимый классификатор. Пустой APIKey — классификатор выключен.
type ClassifierConfig struct {
	APIKey    string        `yaml:"api_key" env:"OPENAI_API_KEY"`
	BaseURL   string        `yaml:"base_url" env:"OPENAI_BASE_URL"`
	Model     string        `yaml:"model" env:"OPENAI_MODEL" env-default:"gpt-4o-mini"`
	Timeout   time.Duration `yaml:"timeout" env:"CLASSIFIER_TIMEOUT" env-default:"20s"`
	RPS       float64       `yaml:"rps" env:"CLASSIFIER_RPS" env-default:"2"`
	Burst     int           `yaml:"burst" env:"CLASSIFIER_BURST" env-default:"2"`
	MaxTopics int           `yaml:"max_topics" env:"CLASSIFIER_MAX_TOPICS" env-default:"5"`
	// ReclassifyBatch — сколько неклассифицированных статей добирать после цикла ингеста (0 — выключено).
	ReclassifyBatch int `yaml:"reclassify_batch" env:"CLASSIFIER_RECLASSIFY_BATCH" env-default:"50"`
}

// RetentionConfig — политика удаления старых статей.
type RetentionConfig struct {
	Window   time.Duration `yaml:"window" env:"RETENTION_WINDOW" env-default:"720h"`
	Interval time.Duration `yaml:"interval" env:"RETENTION_INTERVAL" env-default:"24h"`
}

// LimitsConfig — серверные лимиты на выдачу.
type LimitsConfig struct {
	// Применяется при запросе без limit.
	Default int `yaml:"default" env:"DEFAULT_LIMIT" env-default:"20"`
	// Верхняя граница для limit.
	Max int `yaml:"max" env:"MAX_LIMIT" env-default:"100"`
}

// PersonalizationConfig — параметры цикла дочитывания при активном блоклисте.
// Дефолты проставляет applyCountDefaults.
type PersonalizationConfig struct {
	OverfetchMultiplier int `yaml:"overfetch_multiplier" env:"OVERFETCH_MULTIPLIER"`
	MaxRounds           int `yaml:"max_rounds" env:"OVERFETCH_MAX_ROUNDS"`
}

// Дефолты счётчиков, для которых 0 — ошибка конфигурации, а не "не задано".
const (
	DefaultFetchWorkers        = 4
	DefaultOverfetchMultiplier = 2
	DefaultMaxRounds           = 3
)

// AuthConfig — проверка bearer-токенов внешнего identity-провайдера.
type AuthConfig struct {
	JWTSecret string   `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	Issuer    string   `yaml:"issuer" env:"JWT_ISSUER"`
	Audience  []string `yaml:"audience" env:"JWT_AUDIENCE" env-separator:","`
	AdminRole string   `yaml:"admin_role" env:"ADMIN_ROLE" env-default:"admin"`
}

// MustLoad — обёртка над Load с panic при ошибке.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load загружает конфигурацию по приоритету:
// 1) явный путь; 2) CONFIG_PATH; 3) ./local.yaml; 4) ENV.
func Load(path string) (*Config, error) {
	var cfg Config

	tryRead := func(p string) error {
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("config file does not exist: %s", p)
		}
		if err := cleanenv.ReadConfig(p, &cfg); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
		return nil
	}

	var (
		src string
		err error
	)

	switch envPath := os.Getenv("CONFIG_PATH"); {
	case path != "":
		src = path
		err = tryRead(path)
	case envPath != "":
		src = envPath
		err = tryRead(envPath)
	default:
		if _, statErr := os.Stat("local.yaml"); statErr == nil {
			src = "local.yaml"
			if err := cleanenv.ReadConfig(src, &cfg); err != nil {
				return nil, fmt.Errorf("failed to read local.yaml: %w", err)
			}
		} else if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("config not found: provide --config, CONFIG_PATH, local.yaml or env vars: %w", err)
		}
	}
	if err != nil {
		return nil, err
	}

	if err := applyCountDefaults(src, &cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// countKeys — какие из счётчиков явно заданы в YAML.
type countKeys struct {
	Fetcher struct {
		Workers *int `yaml:"workers"`
	} `yaml:"fetcher"`
	Personalization struct {
		OverfetchMultiplier *int `yaml:"overfetch_multiplier"`
		MaxRounds           *int `yaml:"max_rounds"`
	} `yaml:"personalization"`
}

// applyCountDefaults проставляет дефолт только ключам, которых нет ни в файле, ни в ENV.
// cleanenv подставляет env-default и поверх явного нуля, поэтому для этих полей
// присутствие ключа определяется отдельно.
func applyCountDefaults(src string, cfg *Config) error {
	var keys countKeys
	if src != "" {
		data, err := os.ReadFile(src)
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &keys); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	fill := func(dst, inFile *int, env string, def int) {
		if inFile != nil {
			return
		}
		if _, ok := os.LookupEnv(env); ok {
			return
		}
		*dst = def
	}

	fill(&cfg.Fetcher.Workers, keys.Fetcher.Workers, "FETCH_WORKERS", DefaultFetchWorkers)
	fill(&cfg.Personalization.OverfetchMultiplier, keys.Personalization.OverfetchMultiplier, "OVERFETCH_MULTIPLIER", DefaultOverfetchMultiplier)
	fill(&cfg.Personalization.MaxRounds, keys.Personalization.MaxRounds, "OVERFETCH_MAX_ROUNDS", DefaultMaxRounds)

	return nil
}

// validate — базовая валидация значений.
func (c *Config) validate() error {
	switch c.DB.Driver {
	case DriverPostgres:
		if c.DB.URL == "" {
			return fmt.Errorf("db.url is required for the postgres driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("db.driver must be %q or %q", DriverPostgres, DriverMemory)
	}
	if c.Fetcher.Interval < time.Minute {
		return fmt.Errorf("fetcher.interval must be at least 1m")
	}
	if c.Fetcher.Timeout <= 0 {
		return fmt.Errorf("fetcher.timeout must be > 0")
	}
	if c.Fetcher.CycleTimeout <= 0 {
		return fmt.Errorf("fetcher.cycle_timeout must be > 0")
	}
	if c.Fetcher.Workers <= 0 {
		return fmt.Errorf("fetcher.workers must be > 0")
	}
	if c.Classifier.MaxTopics <= 0 {
		return fmt.Errorf("classifier.max_topics must be > 0")
	}
	if c.Classifier.ReclassifyBatch < 0 {
		return fmt.Errorf("classifier.reclassify_batch must be >= 0")
	}
	if c.Retention.Window <= 0 {
		return fmt.Errorf("retention.window must be > 0")
	}
	if c.Retention.Interval < time.Minute {
		return fmt.Errorf("retention.interval must be at least 1m")
	}
	if c.Limits.Default <= 0 {
		return fmt.Errorf("limits.default must be > 0")
	}
	if c.Limits.Max <= 0 || c.Limits.Max > 100 {
		return fmt.Errorf("limits.max must be in 1..100")
	}
	if c.Limits.Default > c.Limits.Max {
		return fmt.Errorf("limits.default must be <= limits.max")
	}
	if c.Personalization.OverfetchMultiplier < 1 {
		return fmt.Errorf("personalization.overfetch_multiplier must be >= 1")
	}
	if c.Personalization.MaxRounds < 1 {
		return fmt.Errorf("personalization.max_rounds must be >= 1")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	return nil
}
