package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Scheduler SchedulerConfig
	Solver    SolverConfig
	Jobs      JobsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig toggles the HTTP gateway's timetable endpoints.
type SchedulerConfig struct {
	Enabled     bool
	ProposalTTL time.Duration
}

// SolverConfig carries the SOLVER_* solve settings loaded by Load. No
// caller in this repository reads it: options a request omits get the
// defaults applied by internal/intake and internal/engine instead.
type SolverConfig struct {
	Engine                    string
	TimeBudgetSeconds         int
	Workers                   int
	Population                int
	Generations               int
	CrossoverProb             float64
	MutationProb              float64
	Seed                      int64
	PreferMorning             bool
	AvoidBackToBackPracticals bool
	MaxPerDay                 int
	MinPerDay                 int
	SlotMinutes               int
	BreakMinutes              int
	LunchWindowStart          string
	LunchWindowEnd            string
	DayWindowStart            string
	DayWindowEnd              string
	VariableCeiling           int
}

// JobsConfig tunes the asynchronous job runner collaborator.
type JobsConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduler = SchedulerConfig{
		Enabled:     v.GetBool("ENABLE_SCHEDULER"),
		ProposalTTL: parseDuration(v.GetString("SCHEDULER_PROPOSAL_TTL"), 30*time.Minute),
	}

	cfg.Solver = SolverConfig{
		Engine:                    v.GetString("SOLVER_ENGINE"),
		TimeBudgetSeconds:         v.GetInt("SOLVER_TIME_BUDGET_SECONDS"),
		Workers:                   v.GetInt("SOLVER_WORKERS"),
		Population:                v.GetInt("SOLVER_POPULATION"),
		Generations:               v.GetInt("SOLVER_GENERATIONS"),
		CrossoverProb:             v.GetFloat64("SOLVER_CX_PROB"),
		MutationProb:              v.GetFloat64("SOLVER_MUT_PROB"),
		Seed:                      v.GetInt64("SOLVER_SEED"),
		PreferMorning:             v.GetBool("SOLVER_PREFER_MORNING"),
		AvoidBackToBackPracticals: v.GetBool("SOLVER_AVOID_BACK_TO_BACK_PRACTICALS"),
		MaxPerDay:                 v.GetInt("SOLVER_MAX_PER_DAY"),
		MinPerDay:                 v.GetInt("SOLVER_MIN_PER_DAY"),
		SlotMinutes:               v.GetInt("SOLVER_SLOT_MINUTES"),
		BreakMinutes:              v.GetInt("SOLVER_BREAK_MINUTES"),
		LunchWindowStart:          v.GetString("SOLVER_LUNCH_WINDOW_START"),
		LunchWindowEnd:            v.GetString("SOLVER_LUNCH_WINDOW_END"),
		DayWindowStart:            v.GetString("SOLVER_DAY_WINDOW_START"),
		DayWindowEnd:              v.GetString("SOLVER_DAY_WINDOW_END"),
		VariableCeiling:           v.GetInt("SOLVER_VARIABLE_CEILING"),
	}

	cfg.Jobs = JobsConfig{
		Workers:    v.GetInt("JOBS_WORKERS"),
		BufferSize: v.GetInt("JOBS_BUFFER_SIZE"),
		MaxRetries: v.GetInt("JOBS_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("JOBS_RETRY_DELAY"), 5*time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "schedcore")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_SCHEDULER", true)
	v.SetDefault("SCHEDULER_PROPOSAL_TTL", "30m")

	v.SetDefault("SOLVER_ENGINE", "auto")
	v.SetDefault("SOLVER_TIME_BUDGET_SECONDS", 300)
	v.SetDefault("SOLVER_WORKERS", 8)
	v.SetDefault("SOLVER_POPULATION", 300)
	v.SetDefault("SOLVER_GENERATIONS", 100)
	v.SetDefault("SOLVER_CX_PROB", 0.7)
	v.SetDefault("SOLVER_MUT_PROB", 0.2)
	v.SetDefault("SOLVER_SEED", 1)
	v.SetDefault("SOLVER_PREFER_MORNING", true)
	v.SetDefault("SOLVER_AVOID_BACK_TO_BACK_PRACTICALS", true)
	v.SetDefault("SOLVER_MAX_PER_DAY", 0)
	v.SetDefault("SOLVER_MIN_PER_DAY", 0)
	v.SetDefault("SOLVER_SLOT_MINUTES", 60)
	v.SetDefault("SOLVER_BREAK_MINUTES", 10)
	v.SetDefault("SOLVER_LUNCH_WINDOW_START", "13:00")
	v.SetDefault("SOLVER_LUNCH_WINDOW_END", "14:00")
	v.SetDefault("SOLVER_DAY_WINDOW_START", "08:00")
	v.SetDefault("SOLVER_DAY_WINDOW_END", "17:00")
	v.SetDefault("SOLVER_VARIABLE_CEILING", 200000)

	v.SetDefault("JOBS_WORKERS", 2)
	v.SetDefault("JOBS_BUFFER_SIZE", 32)
	v.SetDefault("JOBS_MAX_RETRIES", 1)
	v.SetDefault("JOBS_RETRY_DELAY", "5s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
