package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/induskill/marketplace-api/internal/secrets"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Identity  IdentityConfig
	ApiKey    ApiKeyConfig
	Storage   StorageConfig
	Secrets   SecretsConfig
	Logging   LoggingConfig
	Server    ServerConfig
	CORS      CORSConfig
	Security  SecurityConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Mail      MailConfig
	Jobs      JobsConfig
	Web       WebConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
	// PublicURL is used when building absolute links (image URLs, mail footers)
	PublicURL string
}

type DatabaseConfig struct {
	// Driver selects the gorm dialect: "postgres" (hosted database) or "sqlite" (local development)
	Driver string
	// URL is a full connection string for the hosted database; it wins over the discrete fields
	URL             string
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	// AutoMigrate runs gorm AutoMigrate on startup (development only)
	AutoMigrate bool
}

// IdentityConfig configures the third-party identity provider whose session tokens we accept
type IdentityConfig struct {
	// Issuer is the expected "iss" claim (e.g. https://clerk.example.com)
	Issuer string
	// JWKSURL overrides the default "<issuer>/.well-known/jwks.json"
	JWKSURL string
	// AuthorizedParties restricts the "azp" claim (comma separated origins); empty disables the check
	AuthorizedParties string
	// PublishableKey is handed to the browser widget
	PublishableKey string
	// SecretKey authenticates calls to the provider's backend API
	SecretKey string
	// APIURL is the provider backend API base URL
	APIURL string
	// SessionCookie is the cookie the browser widget stores the session token in
	SessionCookie string
}

type ApiKeyConfig struct {
	Value string
}

type StorageConfig struct {
	Mode                  string
	LocalBasePath         string
	CloudConnectionString string
	CloudContainer        string
	MaxUploadSizeMB       int64
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment", "vault", or "auto"
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	// AllowedOrigins is a list of allowed origins for CORS requests
	// Use "*" to allow all origins (not recommended for production)
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	HSTSPreload           bool
	ContentSecurityPolicy string
	FrameOptions          string
	ContentTypeNosniff    bool
	XSSProtection         string
	ReferrerPolicy        string
	PermissionsPolicy     string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled               bool
	RequestsPerMinute     int
	RequestsPerMinuteAuth int
	// FormRequestsPerMinute caps anonymous form posts (contact, enroll) per IP and path
	FormRequestsPerMinute int
	WhitelistIPs          []string
	// WhitelistPaths match exactly, or by prefix when they end in "/*"
	WhitelistPaths []string
}

// CacheConfig configures the Redis-backed response cache for catalog reads
type CacheConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	// TTL is the lifetime of cached catalog responses in seconds
	TTL int
}

// MailConfig configures outbound SMTP used for contact replies
type MailConfig struct {
	Host        string
	Port        int
	Username    string
	Password    string
	FromName    string
	FromAddress string
}

// JobsConfig configures background jobs
type JobsConfig struct {
	CourseStatsEnabled bool
	CourseStatsCron    string
	CourseStatsTimeout int // seconds
}

// WebConfig configures the server-rendered pages
type WebConfig struct {
	// ThemeCookie is the cookie that carries the visitor's "light" or "dark" choice
	ThemeCookie  string
	DefaultTheme string
	// SignInURL is where dashboard pages send anonymous visitors
	SignInURL string
}

// ConnectionString builds the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// Addr returns the redis host:port pair
func (c *CacheConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// TTLDuration returns the cache TTL as duration
func (c *CacheConfig) TTLDuration() time.Duration {
	return time.Duration(c.TTL) * time.Second
}

// Addr returns the SMTP host:port pair
func (m *MailConfig) Addr() string {
	return fmt.Sprintf("%s:%d", m.Host, m.Port)
}

// Enabled reports whether an SMTP host is configured
func (m *MailConfig) Enabled() bool {
	return strings.TrimSpace(m.Host) != ""
}

// CourseStatsTimeoutDuration returns the stats job timeout as duration
func (j *JobsConfig) CourseStatsTimeoutDuration() time.Duration {
	return time.Duration(j.CourseStatsTimeout) * time.Second
}

// JWKSEndpoint returns the configured JWKS URL or the issuer's well-known default
func (i *IdentityConfig) JWKSEndpoint() string {
	if i.JWKSURL != "" {
		return i.JWKSURL
	}
	return strings.TrimSuffix(i.Issuer, "/") + "/.well-known/jwks.json"
}

// AuthorizedPartyList splits AuthorizedParties into trimmed, non-empty entries
func (i *IdentityConfig) AuthorizedPartyList() []string {
	var parties []string
	for _, p := range strings.Split(i.AuthorizedParties, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parties = append(parties, p)
		}
	}
	return parties
}

// Load loads configuration from file and environment variables.
// It does not contact the vault; use LoadWithSecrets for that.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.ApiKey.Value == "" {
		cfg.ApiKey.Value = v.GetString("ADMIN_API_KEY")
	}
	if cfg.Database.URL == "" {
		cfg.Database.URL = v.GetString("DATABASE_URL")
	}
	if key := v.GetString("DATABASE_SERVICE_KEY"); key != "" {
		cfg.Database.Password = key
	}
	if cfg.Identity.PublishableKey == "" {
		cfg.Identity.PublishableKey = v.GetString("IDENTITY_PUBLISHABLE_KEY")
	}
	if cfg.Identity.SecretKey == "" {
		cfg.Identity.SecretKey = v.GetString("IDENTITY_SECRET_KEY")
	}
	if cfg.Identity.Issuer == "" {
		cfg.Identity.Issuer = v.GetString("IDENTITY_ISSUER")
	}
	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}

	return &cfg, nil
}

// LoadWithSecrets loads configuration and resolves secrets from the configured source.
//
// Key Vault is used when USE_AZURE_KEY_VAULT=true and the environment is staging or
// production; otherwise the values from Load are returned unchanged.
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isValidEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	if !useKeyVault {
		logger.Info("USE_AZURE_KEY_VAULT not enabled, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if !isValidEnv {
		logger.Warn("USE_AZURE_KEY_VAULT is enabled but environment is not staging or production, using environment variables",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	provider, err := secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider (USE_AZURE_KEY_VAULT=true requires valid vault): %w", err)
	}

	logger.Info("Loading secrets from Azure Key Vault",
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)

	applySecrets(ctx, cfg, provider)

	logger.Info("Secrets loaded from vault successfully")
	return cfg, nil
}

// SecretSource is the subset of secrets.Provider used to resolve configuration values
type SecretSource interface {
	GetSecretOrEnv(ctx context.Context, secretName, envName string) (string, error)
}

// applySecrets overwrites configuration values with whatever the secret source can resolve.
// Missing secrets keep the value loaded from file/environment.
func applySecrets(ctx context.Context, cfg *Config, src SecretSource) {
	set := func(target *string, secretName, envName string) {
		if value, err := src.GetSecretOrEnv(ctx, secretName, envName); err == nil && value != "" {
			*target = value
		}
	}

	set(&cfg.Database.URL, "database-url", "DATABASE_URL")
	set(&cfg.Database.Password, "database-service-key", "DATABASE_SERVICE_KEY")
	set(&cfg.Identity.SecretKey, "identity-secret-key", "IDENTITY_SECRET_KEY")
	set(&cfg.Identity.PublishableKey, "identity-publishable-key", "IDENTITY_PUBLISHABLE_KEY")
	set(&cfg.ApiKey.Value, "admin-api-key", "ADMIN_API_KEY")
	set(&cfg.Storage.CloudConnectionString, "storage-connection-string", "STORAGE_CLOUDCONNECTIONSTRING")
	set(&cfg.Cache.Password, "redis-password", "CACHE_PASSWORD")
	set(&cfg.Mail.Password, "smtp-password", "MAIL_PASSWORD")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "InduSkill Marketplace")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.publicURL", "http://localhost:8080")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "marketplace")
	v.SetDefault("database.user", "marketplace_user")
	v.SetDefault("database.password", "marketplace_password")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.sqlitePath", "./marketplace.db")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)
	v.SetDefault("database.autoMigrate", false)

	v.SetDefault("identity.apiURL", "https://api.clerk.com/v1")
	v.SetDefault("identity.sessionCookie", "__session")

	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300)

	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.localBasePath", "./storage")
	v.SetDefault("storage.cloudContainer", "course-images")
	v.SetDefault("storage.maxUploadSizeMB", 5)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)

	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-API-Key", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID", "X-Cache"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000)
	v.SetDefault("security.hstsIncludeSubdomains", true)
	v.SetDefault("security.hstsPreload", false)
	// The theme bootstrap script is inline, so scripts need 'unsafe-inline'
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'; img-src 'self' https: data:; script-src 'self' 'unsafe-inline'; style-src 'self' 'unsafe-inline'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.xssProtection", "1; mode=block")
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")
	v.SetDefault("security.permissionsPolicy", "geolocation=(), microphone=(), camera=()")

	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 60)
	v.SetDefault("rateLimit.requestsPerMinuteAuth", 120)
	v.SetDefault("rateLimit.formRequestsPerMinute", 5)
	v.SetDefault("rateLimit.whitelistIPs", []string{"127.0.0.1", "::1"})
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db", "/health/ready", "/static/*"})

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.host", "localhost")
	v.SetDefault("cache.port", 6379)
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", 300)

	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.fromName", "InduSkill Marketplace")
	v.SetDefault("mail.fromAddress", "no-reply@induskill.io")

	v.SetDefault("jobs.courseStatsEnabled", true)
	v.SetDefault("jobs.courseStatsCron", "0 */15 * * * *")
	v.SetDefault("jobs.courseStatsTimeout", 60)

	v.SetDefault("web.themeCookie", "theme")
	v.SetDefault("web.defaultTheme", "light")
	v.SetDefault("web.signInURL", "/sign-in")
}
