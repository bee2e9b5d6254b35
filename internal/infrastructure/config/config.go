package config

import (
	"cmp"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Cookie    CookieConfig
	Log       LogConfig
	Event     EventConfig
	HTTP      HTTPConfig
	Scheduler SchedulerConfig
	Storage   StorageConfig
	Scoring   ScoringConfig
	Payroll   PayrollConfig
	Swagger   SwaggerConfig
	Telemetry TelemetryConfig
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// JWTConfig holds JWT settings
type JWTConfig struct {
	Secret                 string
	AccessTokenExpiration  time.Duration
	RefreshTokenExpiration time.Duration
	Issuer                 string
	RefreshSecret          string
	MaxRefreshCount        int
	ExpirationHours        int // Deprecated: use AccessTokenExpiration instead
}

// CookieConfig holds cookie settings for refresh token
type CookieConfig struct {
	Domain   string // Domain for cookies (empty = current domain)
	Path     string // Path for cookies
	Secure   bool   // Secure flag (should be true in production for HTTPS)
	SameSite string // SameSite policy: "strict", "lax", or "none"
}

// EventConfig holds event processing configuration
type EventConfig struct {
	ProcessorEnabled bool
	BatchSize        int
	PollInterval     time.Duration
	MaxRetries       int
	CleanupEnabled   bool
	CleanupRetention time.Duration
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout           time.Duration
	WriteTimeout          time.Duration
	IdleTimeout           time.Duration
	MaxHeaderBytes        int
	MaxBodySize           int64
	RateLimitEnabled      bool
	RateLimitRequests     int
	RateLimitWindow       time.Duration
	AuthRateLimitEnabled  bool          // Enable stricter rate limiting for auth endpoints
	AuthRateLimitRequests int           // Max auth attempts (default: 5)
	AuthRateLimitWindow   time.Duration // Auth rate limit window (default: 1 minute)
	CORSAllowOrigins      []string
	CORSAllowMethods      []string
	CORSAllowHeaders      []string
	TrustedProxies        []string
}

// SchedulerConfig holds register export scheduler configuration
type SchedulerConfig struct {
	Enabled           bool
	DailyCronSchedule string
	MaxConcurrentJobs int
	JobTimeout        time.Duration
	RetryAttempts     int
	RetryDelay        time.Duration
}

// StorageConfig holds object storage settings for payroll register exports.
// Compatible with any S3-compatible backend (AWS S3, MinIO, RustFS, etc.)
type StorageConfig struct {
	Endpoint          string        // S3 endpoint (empty = http://localhost:9000)
	Region            string        // AWS region (empty = us-east-1)
	Bucket            string        // Bucket for register exports
	AccessKey         string        // Static access key
	SecretKey         string        // Static secret key
	UseSSL            bool          // Prepend https:// when the endpoint has no scheme
	UsePathStyle      bool          // Path-style addressing (required for MinIO/RustFS)
	PresignExpiration time.Duration // Default validity of presigned download URLs
}

// TierBandConfig is one row of the bonus tier table. Bands are half-open
// [min, max) except the last, which includes its upper bound.
type TierBandConfig struct {
	MinScore     float64 `mapstructure:"min_score"`
	MaxScore     float64 `mapstructure:"max_score"`
	Name         string  `mapstructure:"name"`
	Color        string  `mapstructure:"color"`
	BonusPercent float64 `mapstructure:"bonus_percent"`
}

// ScoringConfig holds performance scoring settings.
// An empty tier table means the built-in default bands are used.
type ScoringConfig struct {
	Tiers []TierBandConfig
}

// PayrollConfig holds payroll engine settings
type PayrollConfig struct {
	DefaultCurrency string // ISO 4217 code used when a company has none configured
}

// SwaggerConfig holds Swagger documentation endpoint configuration
type SwaggerConfig struct {
	Enabled     bool     // Whether to enable Swagger endpoint
	RequireAuth bool     // Require authentication to access Swagger
	AllowedIPs  []string // IP whitelist (empty = allow all)
}

// TelemetryConfig holds OpenTelemetry configuration
type TelemetryConfig struct {
	Enabled           bool    // Whether to enable OpenTelemetry
	CollectorEndpoint string  // OTEL Collector endpoint (e.g., "localhost:4317")
	SamplingRatio     float64 // Sampling ratio (0.0-1.0, 1.0 = 100%)
	ServiceName       string  // Service name for traces
	Insecure          bool    // Use insecure (non-TLS) connection (development only)
	// Database tracing options
	DBTraceEnabled    bool          // Enable database query tracing (otelgorm)
	DBLogFullSQL      bool          // Log full SQL statements (dev only, disable in prod for security)
	DBSlowQueryThresh time.Duration // Slow query threshold for warnings (default: 200ms)
	// Continuous profiling options (Pyroscope)
	ProfilerEnabled       bool   // Enable continuous profiling
	ProfilerServerAddress string // Pyroscope server address (e.g., "http://pyroscope:4040")
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with PAYOPS_ prefix (e.g., PAYOPS_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
//
// The per-section loaders treat a zero value as "not configured" and fall
// back to the built-in default, so setting e.g. PAYOPS_DATABASE_PORT=0
// yields 5432, not 0.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	// A missing config file is fine; defaults and env vars cover it
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("PAYOPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App:       loadApp(v),
		Database:  loadDatabase(v),
		Redis:     loadRedis(v),
		JWT:       loadJWT(v),
		Cookie:    loadCookie(v),
		Log:       loadLog(v),
		Event:     loadEvent(v),
		HTTP:      loadHTTP(v),
		Scheduler: loadScheduler(v),
		Storage:   loadStorage(v),
		Payroll:   loadPayroll(v),
		Swagger:   loadSwagger(v),
		Telemetry: loadTelemetry(v),
	}

	// The tier table has list-of-table shape, which GetXxx accessors can't read
	if err := v.UnmarshalKey("scoring.tiers", &cfg.Scoring.Tiers); err != nil {
		return nil, fmt.Errorf("error parsing scoring.tiers: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// listOr is cmp.Or for string slices: an empty list means "use the default".
func listOr(val, def []string) []string {
	if len(val) == 0 {
		return def
	}
	return val
}

func loadApp(v *viper.Viper) AppConfig {
	return AppConfig{
		Name: cmp.Or(v.GetString("app.name"), "payops-backend"),
		Env:  cmp.Or(v.GetString("app.env"), "development"),
		Port: cmp.Or(v.GetString("app.port"), "8080"),
	}
}

func loadDatabase(v *viper.Viper) DatabaseConfig {
	return DatabaseConfig{
		Host:            cmp.Or(v.GetString("database.host"), "localhost"),
		Port:            cmp.Or(v.GetInt("database.port"), 5432),
		User:            cmp.Or(v.GetString("database.user"), "postgres"),
		Password:        v.GetString("database.password"),
		DBName:          cmp.Or(v.GetString("database.dbname"), "payops"),
		SSLMode:         cmp.Or(v.GetString("database.sslmode"), "disable"),
		MaxOpenConns:    cmp.Or(v.GetInt("database.max_open_conns"), 25),
		MaxIdleConns:    cmp.Or(v.GetInt("database.max_idle_conns"), 5),
		ConnMaxLifetime: cmp.Or(v.GetInt("database.conn_max_lifetime"), 60),
		ConnMaxIdleTime: cmp.Or(v.GetInt("database.conn_max_idle_time"), 30),
	}
}

func loadRedis(v *viper.Viper) RedisConfig {
	return RedisConfig{
		Host:     cmp.Or(v.GetString("redis.host"), "localhost"),
		Port:     cmp.Or(v.GetInt("redis.port"), 6379),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
	}
}

func loadJWT(v *viper.Viper) JWTConfig {
	return JWTConfig{
		Secret:                 v.GetString("jwt.secret"),
		AccessTokenExpiration:  cmp.Or(v.GetDuration("jwt.access_token_expiration"), 15*time.Minute),
		RefreshTokenExpiration: cmp.Or(v.GetDuration("jwt.refresh_token_expiration"), 168*time.Hour),
		Issuer:                 cmp.Or(v.GetString("jwt.issuer"), "payops-backend"),
		RefreshSecret:          v.GetString("jwt.refresh_secret"),
		MaxRefreshCount:        cmp.Or(v.GetInt("jwt.max_refresh_count"), 10),
		ExpirationHours:        v.GetInt("jwt.expiration_hours"),
	}
}

func loadCookie(v *viper.Viper) CookieConfig {
	return CookieConfig{
		Domain:   v.GetString("cookie.domain"),
		Path:     cmp.Or(v.GetString("cookie.path"), "/"),
		Secure:   v.GetBool("cookie.secure"),
		SameSite: cmp.Or(v.GetString("cookie.same_site"), "lax"),
	}
}

func loadLog(v *viper.Viper) LogConfig {
	return LogConfig{
		Level:  cmp.Or(v.GetString("log.level"), "info"),
		Format: cmp.Or(v.GetString("log.format"), "console"),
		Output: cmp.Or(v.GetString("log.output"), "stdout"),
	}
}

func loadEvent(v *viper.Viper) EventConfig {
	return EventConfig{
		ProcessorEnabled: v.GetBool("event.processor_enabled"),
		BatchSize:        cmp.Or(v.GetInt("event.batch_size"), 100),
		PollInterval:     cmp.Or(v.GetDuration("event.poll_interval"), 5*time.Second),
		MaxRetries:       cmp.Or(v.GetInt("event.max_retries"), 5),
		CleanupEnabled:   v.GetBool("event.cleanup_enabled"),
		CleanupRetention: cmp.Or(v.GetDuration("event.cleanup_retention"), 168*time.Hour),
	}
}

func loadHTTP(v *viper.Viper) HTTPConfig {
	return HTTPConfig{
		ReadTimeout:          cmp.Or(v.GetDuration("http.read_timeout"), 15*time.Second),
		WriteTimeout:         cmp.Or(v.GetDuration("http.write_timeout"), 15*time.Second),
		IdleTimeout:          cmp.Or(v.GetDuration("http.idle_timeout"), 60*time.Second),
		MaxHeaderBytes:       cmp.Or(v.GetInt("http.max_header_bytes"), 1<<20),
		MaxBodySize:          cmp.Or(v.GetInt64("http.max_body_size"), 10<<20),
		RateLimitEnabled:     v.GetBool("http.rate_limit_enabled"),
		RateLimitRequests:    cmp.Or(v.GetInt("http.rate_limit_requests"), 100),
		RateLimitWindow:      cmp.Or(v.GetDuration("http.rate_limit_window"), time.Minute),
		AuthRateLimitEnabled: v.GetBool("http.auth_rate_limit_enabled"),
		// Stricter defaults on auth endpoints to slow brute force
		AuthRateLimitRequests: cmp.Or(v.GetInt("http.auth_rate_limit_requests"), 5),
		AuthRateLimitWindow:   cmp.Or(v.GetDuration("http.auth_rate_limit_window"), time.Minute),
		// CORS origins deliberately have no fallback: an empty list means no
		// cross-origin requests until origins are configured explicitly.
		CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
		CORSAllowMethods: listOr(v.GetStringSlice("http.cors_allow_methods"),
			[]string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}),
		CORSAllowHeaders: listOr(v.GetStringSlice("http.cors_allow_headers"),
			[]string{"Content-Type", "Authorization", "X-Request-ID", "X-Tenant-ID"}),
		TrustedProxies: v.GetStringSlice("http.trusted_proxies"),
	}
}

func loadScheduler(v *viper.Viper) SchedulerConfig {
	return SchedulerConfig{
		Enabled:           v.GetBool("scheduler.enabled"),
		DailyCronSchedule: cmp.Or(v.GetString("scheduler.daily_cron_schedule"), "0 2 * * *"),
		MaxConcurrentJobs: cmp.Or(v.GetInt("scheduler.max_concurrent_jobs"), 3),
		JobTimeout:        cmp.Or(v.GetDuration("scheduler.job_timeout"), 30*time.Minute),
		RetryAttempts:     cmp.Or(v.GetInt("scheduler.retry_attempts"), 3),
		RetryDelay:        cmp.Or(v.GetDuration("scheduler.retry_delay"), 5*time.Minute),
	}
}

func loadStorage(v *viper.Viper) StorageConfig {
	return StorageConfig{
		Endpoint:          v.GetString("storage.endpoint"),
		Region:            v.GetString("storage.region"),
		Bucket:            cmp.Or(v.GetString("storage.bucket"), "payops-registers"),
		AccessKey:         v.GetString("storage.access_key"),
		SecretKey:         v.GetString("storage.secret_key"),
		UseSSL:            v.GetBool("storage.use_ssl"),
		UsePathStyle:      v.GetBool("storage.use_path_style"),
		PresignExpiration: cmp.Or(v.GetDuration("storage.presign_expiration"), 15*time.Minute),
	}
}

func loadPayroll(v *viper.Viper) PayrollConfig {
	return PayrollConfig{
		DefaultCurrency: cmp.Or(v.GetString("payroll.default_currency"), "INR"),
	}
}

func loadSwagger(v *viper.Viper) SwaggerConfig {
	return SwaggerConfig{
		Enabled:     v.GetBool("swagger.enabled"),
		RequireAuth: v.GetBool("swagger.require_auth"),
		AllowedIPs:  v.GetStringSlice("swagger.allowed_ips"),
	}
}

func loadTelemetry(v *viper.Viper) TelemetryConfig {
	return TelemetryConfig{
		Enabled:           v.GetBool("telemetry.enabled"),
		CollectorEndpoint: cmp.Or(v.GetString("telemetry.collector_endpoint"), "localhost:4317"),
		SamplingRatio:     cmp.Or(v.GetFloat64("telemetry.sampling_ratio"), 1.0),
		ServiceName:       cmp.Or(v.GetString("telemetry.service_name"), "payops-backend"),
		Insecure:          v.GetBool("telemetry.insecure"),
		DBTraceEnabled:    v.GetBool("telemetry.db_trace_enabled"),
		DBLogFullSQL:      v.GetBool("telemetry.db_log_full_sql"),
		DBSlowQueryThresh: cmp.Or(v.GetDuration("telemetry.db_slow_query_threshold"), 200*time.Millisecond),
		ProfilerEnabled:   v.GetBool("telemetry.profiler_enabled"),
		ProfilerServerAddress: v.GetString("telemetry.profiler_server_address"),
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.App.Env == "production" {
		if err := c.validateProduction(); err != nil {
			return err
		}
	}

	// Tier table shape only; ordering and coverage are checked where the
	// policy is built
	for i, band := range c.Scoring.Tiers {
		if band.Name == "" {
			return fmt.Errorf("scoring.tiers[%d].name is required", i)
		}
		if band.MaxScore <= band.MinScore {
			return fmt.Errorf("scoring.tiers[%d]: max_score must be greater than min_score", i)
		}
	}
	if len(c.Payroll.DefaultCurrency) != 3 {
		return fmt.Errorf("payroll.default_currency must be a 3-letter ISO 4217 code, got %q", c.Payroll.DefaultCurrency)
	}

	if c.Telemetry.SamplingRatio < 0.0 || c.Telemetry.SamplingRatio > 1.0 {
		return fmt.Errorf("telemetry.sampling_ratio must be between 0.0 and 1.0, got %f", c.Telemetry.SamplingRatio)
	}

	return nil
}

// validateProduction enforces the hardening a production deployment needs:
// real secrets, TLS to the database, secure cookies, explicit CORS origins
// and a protected (or disabled) swagger endpoint.
func (c *Config) validateProduction() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required in production")
	}
	if len(c.JWT.Secret) < 32 {
		return fmt.Errorf("jwt.secret must be at least 32 characters in production")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("database.password is required in production")
	}
	if c.Database.SSLMode == "disable" {
		return fmt.Errorf("database.sslmode cannot be 'disable' in production")
	}
	if !c.Cookie.Secure {
		return fmt.Errorf("cookie.secure must be true in production (HTTPS required for secure cookies)")
	}
	if c.Cookie.SameSite == "none" && !c.Cookie.Secure {
		return fmt.Errorf("cookie.same_site=none requires cookie.secure=true")
	}
	for _, origin := range c.HTTP.CORSAllowOrigins {
		if origin == "*" {
			return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
		}
	}
	if c.Swagger.Enabled && !c.Swagger.RequireAuth && len(c.Swagger.AllowedIPs) == 0 {
		return fmt.Errorf("swagger endpoint must be disabled, require authentication, or have IP restriction in production")
	}
	// Full SQL statements in traces would leak salary data
	if c.Telemetry.DBLogFullSQL {
		return fmt.Errorf("telemetry.db_log_full_sql must be false in production to prevent sensitive data exposure in traces")
	}
	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
