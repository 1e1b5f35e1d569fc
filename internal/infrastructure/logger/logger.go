package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/taskmaster/todo/internal/infrastructure/config"
)

// Logger is the structured logger shared by services, handlers and the server
type Logger struct {
	*zap.SugaredLogger
}

// New builds a JSON (production) or console (development) logger from cfg
func New(cfg config.LoggerConfig) (*Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	zapConfig := baseConfig(cfg.Format)
	zapConfig.Level = zap.NewAtomicLevelAt(level)
	zapConfig.OutputPaths, zapConfig.ErrorOutputPaths = outputPaths(cfg)

	zapLogger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return FromZap(zapLogger), nil
}

func baseConfig(format string) zap.Config {
	if format == "json" {
		return zap.NewProductionConfig()
	}
	zapConfig := zap.NewDevelopmentConfig()
	zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapConfig
}

func outputPaths(cfg config.LoggerConfig) ([]string, []string) {
	if cfg.Output == "file" && cfg.Filename != "" {
		return []string{cfg.Filename}, []string{cfg.Filename}
	}
	return []string{"stdout"}, []string{"stderr"}
}

// FromZap wraps an existing zap logger
func FromZap(l *zap.Logger) *Logger {
	return &Logger{SugaredLogger: l.Sugar()}
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return FromZap(zap.NewNop())
}

// WithFields returns a child logger carrying the given key/value pairs
func (l *Logger) WithFields(fields ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(fields...)}
}

// WithError attaches err; a nil error leaves the logger unchanged
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	return l.WithFields("error", err.Error())
}

// WithRequestID tags entries with the X-Request-ID of the current request
func (l *Logger) WithRequestID(requestID string) *Logger {
	if requestID == "" {
		return l
	}
	return l.WithFields("request_id", requestID)
}

func (l *Logger) WithUserID(userID string) *Logger {
	return l.WithFields("user_id", userID)
}

func (l *Logger) WithComponent(component string) *Logger {
	return l.WithFields("component", component)
}

// LogUserAction records a state-changing action taken by a user
func (l *Logger) LogUserAction(userID, action string, metadata map[string]interface{}) {
	l.WithUserID(userID).Infow("User action", withMetadata([]interface{}{"action", action}, metadata)...)
}

// LogSecurityEvent records an authentication failure or similar event at warn level
func (l *Logger) LogSecurityEvent(event, userID, ip string, details map[string]interface{}) {
	fields := []interface{}{"security_event", event, "ip", ip}
	if userID != "" {
		fields = append(fields, "user_id", userID)
	}
	l.Warnw("Security event", withMetadata(fields, details)...)
}

func withMetadata(fields []interface{}, metadata map[string]interface{}) []interface{} {
	for k, v := range metadata {
		fields = append(fields, k, v)
	}
	return fields
}

// Close flushes any buffered log entries
func (l *Logger) Close() error {
	return l.SugaredLogger.Sync()
}
