package logger

import (
	"context"
	"fmt"
	"strings"

	"github.com/induskill/marketplace-api/internal/auth"
	"github.com/induskill/marketplace-api/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log formats accepted in LOGGING_FORMAT
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

type contextKey struct{}

// NewLogger builds the service logger. Production always logs JSON so the
// log shipper can parse it; elsewhere the configured format is used.
// An unknown level falls back to info with a warning.
func NewLogger(cfg *config.LoggingConfig, appCfg *config.AppConfig) (*zap.Logger, error) {
	format := strings.ToLower(strings.TrimSpace(cfg.Format))
	if format == "" || appCfg.Environment == "production" {
		format = FormatJSON
	}

	var zapCfg zap.Config
	switch format {
	case FormatJSON:
		zapCfg = zap.NewProductionConfig()
		zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	case FormatConsole:
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("unknown log format %q (want %q or %q)", cfg.Format, FormatJSON, FormatConsole)
	}

	level, levelErr := zapcore.ParseLevel(cfg.Level)
	if levelErr != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	zapCfg.InitialFields = map[string]interface{}{
		"service":     appCfg.Name,
		"environment": appCfg.Environment,
	}

	log, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	if levelErr != nil && cfg.Level != "" {
		log.Warn("unknown log level, using info", zap.String("level", cfg.Level))
	}
	return log, nil
}

// WithRequest tags log with the request line and id
func WithRequest(log *zap.Logger, method, path, requestID string) *zap.Logger {
	return log.With(
		zap.String("request_id", requestID),
		zap.String("method", method),
		zap.String("path", path),
	)
}

// WithUser tags log with the signed-in user and the role they act as
func WithUser(log *zap.Logger, user *auth.UserContext) *zap.Logger {
	if user == nil {
		return log
	}
	fields := []zap.Field{
		zap.String("user_id", user.UserID),
		zap.String("role", string(user.EffectiveRole())),
	}
	if user.IsSystem {
		fields = append(fields, zap.Bool("system", true))
	}
	return log.With(fields...)
}

// NewContext stores a request-scoped logger in ctx
func NewContext(ctx context.Context, log *zap.Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, log)
}

// FromContext returns the request-scoped logger, or fallback when there is none.
// The signed-in user, if any, is added to the returned logger.
func FromContext(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	log, ok := ctx.Value(contextKey{}).(*zap.Logger)
	if !ok {
		log = fallback
	}
	if user, ok := auth.FromContext(ctx); ok {
		log = WithUser(log, user)
	}
	return log
}
