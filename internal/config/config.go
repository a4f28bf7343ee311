package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	S3       S3Config
	Log      LogConfig
	Parser   ParserConfig
	CORS     CORSConfig
	Email    EmailConfig
	Template TemplateConfig
	Output   OutputConfig
}

// EmailConfig holds generation notice delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ParserProviderConfig holds settings for a single LLM extraction provider.
type ParserProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ParserConfig holds bill extraction settings with multi-provider support.
type ParserConfig struct {
	// Legacy flat fields (single provider)
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	// Multi-provider fields
	Primary   ParserProviderConfig `mapstructure:"primary"`
	Secondary ParserProviderConfig `mapstructure:"secondary"`
	Tertiary  ParserProviderConfig `mapstructure:"tertiary"`
}

// PrimaryConfig returns the primary parser provider config, falling back to legacy flat fields.
func (p *ParserConfig) PrimaryConfig() *ParserProviderConfig {
	if p.Primary.Provider != "" {
		return &p.Primary
	}
	return &ParserProviderConfig{
		Provider:     p.Provider,
		APIKey:       p.APIKey,
		DefaultModel: p.DefaultModel,
		MaxRetries:   p.MaxRetries,
		TimeoutSecs:  p.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary parser provider config, or nil if not configured.
func (p *ParserConfig) SecondaryConfig() *ParserProviderConfig {
	if p.Secondary.Provider != "" {
		return &p.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary parser provider config, or nil if not configured.
func (p *ParserConfig) TertiaryConfig() *ParserProviderConfig {
	if p.Tertiary.Provider != "" {
		return &p.Tertiary
	}
	return nil
}

// Chain returns the configured providers in fallback order.
func (p *ParserConfig) Chain() []*ParserProviderConfig {
	chain := []*ParserProviderConfig{p.PrimaryConfig()}
	if s := p.SecondaryConfig(); s != nil {
		chain = append(chain, s)
	}
	if t := p.TertiaryConfig(); t != nil {
		chain = append(chain, t)
	}
	return chain
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds generation history database settings.
type DBConfig struct {
	Driver     string `mapstructure:"driver"`
	Host       string `mapstructure:"host"`
	Port       int    `mapstructure:"port"`
	User       string `mapstructure:"user"`
	Password   string `mapstructure:"password"`
	Name       string `mapstructure:"name"`
	SSLMode    string `mapstructure:"sslmode"`
	SQLitePath string `mapstructure:"sqlite_path"`
	MaxOpen    int    `mapstructure:"max_open"`
	MaxIdle    int    `mapstructure:"max_idle"`
}

// DSN returns the driver-specific connection string.
func (d *DBConfig) DSN() string {
	if d.Driver == DriverSQLite {
		return d.SQLitePath
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// MigrateURL returns the golang-migrate database URL.
func (d *DBConfig) MigrateURL() string {
	if d.Driver == DriverSQLite {
		return "sqlite3://" + d.SQLitePath
	}
	return d.DSN()
}

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// TemplateConfig holds notice template settings.
type TemplateConfig struct {
	Source      string        `mapstructure:"source"`
	Dir         string        `mapstructure:"dir"`
	Bucket      string        `mapstructure:"bucket"`
	Prefix      string        `mapstructure:"prefix"`
	DefaultName string        `mapstructure:"default_name"`
	CacheSize   int           `mapstructure:"cache_size"`
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
}

// Template sources.
const (
	TemplateSourceFile = "file"
	TemplateSourceS3   = "s3"
)

// OutputConfig holds settings for storing generated documents.
type OutputConfig struct {
	Bucket        string `mapstructure:"bucket"`
	Prefix        string `mapstructure:"prefix"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// Load reads configuration from environment variables with the BILLDOC_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BILLDOC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.driver", DriverPostgres)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "billdoc")
	v.SetDefault("db.password", "billdoc_secret")
	v.SetDefault("db.name", "billdoc_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.sqlite_path", "billdoc.db")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "ap-northeast-2")
	v.SetDefault("s3.bucket", "billdoc-documents")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 20)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:8501")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "ap-northeast-2")
	v.SetDefault("email.from_address", "noreply@billdoc.local")
	v.SetDefault("email.from_name", "Billdoc")

	// Template defaults
	v.SetDefault("template.source", TemplateSourceFile)
	v.SetDefault("template.dir", "templates")
	v.SetDefault("template.bucket", "")
	v.SetDefault("template.prefix", "templates/")
	v.SetDefault("template.default_name", "water_bill.odt")
	v.SetDefault("template.cache_size", 32)
	v.SetDefault("template.cache_ttl", "10m")

	// Output defaults
	v.SetDefault("output.bucket", "")
	v.SetDefault("output.prefix", "generations/")
	v.SetDefault("output.presign_expiry", 3600)

	// Parser defaults (legacy flat)
	v.SetDefault("parser.provider", "gemini")
	v.SetDefault("parser.api_key", "")
	v.SetDefault("parser.default_model", "gemini-2.0-flash")
	v.SetDefault("parser.max_retries", 2)
	v.SetDefault("parser.timeout_secs", 120)

	// Parser primary/secondary/tertiary defaults
	for _, slot := range []string{"primary", "secondary", "tertiary"} {
		v.SetDefault("parser."+slot+".provider", "")
		v.SetDefault("parser."+slot+".api_key", "")
		v.SetDefault("parser."+slot+".default_model", "")
		v.SetDefault("parser."+slot+".max_retries", 2)
		v.SetDefault("parser."+slot+".timeout_secs", 120)
	}

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                    "BILLDOC_SERVER_PORT",
		"server.read_timeout":            "BILLDOC_SERVER_READ_TIMEOUT",
		"server.write_timeout":           "BILLDOC_SERVER_WRITE_TIMEOUT",
		"server.environment":             "BILLDOC_SERVER_ENVIRONMENT",
		"db.driver":                      "BILLDOC_DB_DRIVER",
		"db.host":                        "BILLDOC_DB_HOST",
		"db.port":                        "BILLDOC_DB_PORT",
		"db.user":                        "BILLDOC_DB_USER",
		"db.password":                    "BILLDOC_DB_PASSWORD",
		"db.name":                        "BILLDOC_DB_NAME",
		"db.sslmode":                     "BILLDOC_DB_SSLMODE",
		"db.sqlite_path":                 "BILLDOC_DB_SQLITE_PATH",
		"db.max_open":                    "BILLDOC_DB_MAX_OPEN",
		"db.max_idle":                    "BILLDOC_DB_MAX_IDLE",
		"s3.region":                      "BILLDOC_S3_REGION",
		"s3.bucket":                      "BILLDOC_S3_BUCKET",
		"s3.endpoint":                    "BILLDOC_S3_ENDPOINT",
		"s3.access_key":                  "BILLDOC_S3_ACCESS_KEY",
		"s3.secret_key":                  "BILLDOC_S3_SECRET_KEY",
		"s3.max_file_size_mb":            "BILLDOC_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":              "BILLDOC_S3_PRESIGN_EXPIRY",
		"log.level":                      "BILLDOC_LOG_LEVEL",
		"log.format":                     "BILLDOC_LOG_FORMAT",
		"cors.allowed_origins":           "BILLDOC_CORS_ALLOWED_ORIGINS",
		"email.provider":                 "BILLDOC_EMAIL_PROVIDER",
		"email.region":                   "BILLDOC_EMAIL_REGION",
		"email.from_address":             "BILLDOC_EMAIL_FROM_ADDRESS",
		"email.from_name":                "BILLDOC_EMAIL_FROM_NAME",
		"template.source":                "BILLDOC_TEMPLATE_SOURCE",
		"template.dir":                   "BILLDOC_TEMPLATE_DIR",
		"template.bucket":                "BILLDOC_TEMPLATE_BUCKET",
		"template.prefix":                "BILLDOC_TEMPLATE_PREFIX",
		"template.default_name":          "BILLDOC_TEMPLATE_DEFAULT_NAME",
		"template.cache_size":            "BILLDOC_TEMPLATE_CACHE_SIZE",
		"template.cache_ttl":             "BILLDOC_TEMPLATE_CACHE_TTL",
		"output.bucket":                  "BILLDOC_OUTPUT_BUCKET",
		"output.prefix":                  "BILLDOC_OUTPUT_PREFIX",
		"output.presign_expiry":          "BILLDOC_OUTPUT_PRESIGN_EXPIRY",
		"parser.provider":                "BILLDOC_PARSER_PROVIDER",
		"parser.api_key":                 "BILLDOC_PARSER_API_KEY",
		"parser.default_model":           "BILLDOC_PARSER_DEFAULT_MODEL",
		"parser.max_retries":             "BILLDOC_PARSER_MAX_RETRIES",
		"parser.timeout_secs":            "BILLDOC_PARSER_TIMEOUT_SECS",
		"parser.primary.provider":        "BILLDOC_PARSER_PRIMARY_PROVIDER",
		"parser.primary.api_key":         "BILLDOC_PARSER_PRIMARY_API_KEY",
		"parser.primary.default_model":   "BILLDOC_PARSER_PRIMARY_DEFAULT_MODEL",
		"parser.primary.max_retries":     "BILLDOC_PARSER_PRIMARY_MAX_RETRIES",
		"parser.primary.timeout_secs":    "BILLDOC_PARSER_PRIMARY_TIMEOUT_SECS",
		"parser.secondary.provider":      "BILLDOC_PARSER_SECONDARY_PROVIDER",
		"parser.secondary.api_key":       "BILLDOC_PARSER_SECONDARY_API_KEY",
		"parser.secondary.default_model": "BILLDOC_PARSER_SECONDARY_DEFAULT_MODEL",
		"parser.secondary.max_retries":   "BILLDOC_PARSER_SECONDARY_MAX_RETRIES",
		"parser.secondary.timeout_secs":  "BILLDOC_PARSER_SECONDARY_TIMEOUT_SECS",
		"parser.tertiary.provider":       "BILLDOC_PARSER_TERTIARY_PROVIDER",
		"parser.tertiary.api_key":        "BILLDOC_PARSER_TERTIARY_API_KEY",
		"parser.tertiary.default_model":  "BILLDOC_PARSER_TERTIARY_DEFAULT_MODEL",
		"parser.tertiary.max_retries":    "BILLDOC_PARSER_TERTIARY_MAX_RETRIES",
		"parser.tertiary.timeout_secs":   "BILLDOC_PARSER_TERTIARY_TIMEOUT_SECS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Hosting platforms set a PORT env var. Use it if BILLDOC_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("BILLDOC_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Driver:     v.GetString("db.driver"),
		Host:       v.GetString("db.host"),
		Port:       v.GetInt("db.port"),
		User:       v.GetString("db.user"),
		Password:   v.GetString("db.password"),
		Name:       v.GetString("db.name"),
		SSLMode:    v.GetString("db.sslmode"),
		SQLitePath: v.GetString("db.sqlite_path"),
		MaxOpen:    v.GetInt("db.max_open"),
		MaxIdle:    v.GetInt("db.max_idle"),
	}
	if cfg.DB.Driver != DriverPostgres && cfg.DB.Driver != DriverSQLite {
		return nil, fmt.Errorf("unsupported db driver %q (want %s or %s)", cfg.DB.Driver, DriverPostgres, DriverSQLite)
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Parser = ParserConfig{
		Provider:     v.GetString("parser.provider"),
		APIKey:       v.GetString("parser.api_key"),
		DefaultModel: v.GetString("parser.default_model"),
		MaxRetries:   v.GetInt("parser.max_retries"),
		TimeoutSecs:  v.GetInt("parser.timeout_secs"),
		Primary:      providerConfig(v, "primary"),
		Secondary:    providerConfig(v, "secondary"),
		Tertiary:     providerConfig(v, "tertiary"),
	}

	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
	}

	cfg.Template = TemplateConfig{
		Source:      v.GetString("template.source"),
		Dir:         v.GetString("template.dir"),
		Bucket:      v.GetString("template.bucket"),
		Prefix:      v.GetString("template.prefix"),
		DefaultName: v.GetString("template.default_name"),
		CacheSize:   v.GetInt("template.cache_size"),
		CacheTTL:    v.GetDuration("template.cache_ttl"),
	}
	// Templates and outputs share the upload bucket unless configured otherwise.
	if cfg.Template.Bucket == "" {
		cfg.Template.Bucket = cfg.S3.Bucket
	}

	cfg.Output = OutputConfig{
		Bucket:        v.GetString("output.bucket"),
		Prefix:        v.GetString("output.prefix"),
		PresignExpiry: v.GetInt64("output.presign_expiry"),
	}
	if cfg.Output.Bucket == "" {
		cfg.Output.Bucket = cfg.S3.Bucket
	}

	return cfg, nil
}

func providerConfig(v *viper.Viper, slot string) ParserProviderConfig {
	return ParserProviderConfig{
		Provider:     v.GetString("parser." + slot + ".provider"),
		APIKey:       v.GetString("parser." + slot + ".api_key"),
		DefaultModel: v.GetString("parser." + slot + ".default_model"),
		MaxRetries:   v.GetInt("parser." + slot + ".max_retries"),
		TimeoutSecs:  v.GetInt("parser." + slot + ".timeout_secs"),
	}
}
