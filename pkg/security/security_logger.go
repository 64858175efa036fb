package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EventType represents the type of security event
type EventType string

const (
	EventRateLimitTriggered EventType = "rate_limit_triggered"
	EventValidationFailed   EventType = "validation_failed"
	EventUploadAccepted     EventType = "upload_accepted"
	EventOverlayChanged     EventType = "overlay_changed"
	EventSuspiciousInput    EventType = "suspicious_input"
)

// Severity is derived from EventType, never user-provided
type Severity string

const (
	SeverityINFO Severity = "INFO"
	SeverityWARN Severity = "WARN"
	SeverityHIGH Severity = "HIGH"
)

var eventSeverity = map[EventType]Severity{
	EventUploadAccepted:     SeverityINFO,
	EventOverlayChanged:     SeverityINFO,
	EventRateLimitTriggered: SeverityWARN,
	EventValidationFailed:   SeverityWARN,
	EventSuspiciousInput:    SeverityHIGH,
}

// GetSeverity returns the severity for an event type, WARN if unmapped
func GetSeverity(eventType EventType) Severity {
	if s, ok := eventSeverity[eventType]; ok {
		return s
	}
	return SeverityWARN
}

// SecurityEvent represents a security-related event to be logged
type SecurityEvent struct {
	Timestamp    time.Time      `json:"timestamp"`
	Service      string         `json:"service"`
	Environment  string         `json:"env"`
	Level        string         `json:"level"`
	Event        EventType      `json:"event"`
	SubjectType  string         `json:"subject_type,omitempty"`  // "owner", "ip"
	SubjectValue string         `json:"subject_value,omitempty"` // hashed for owners
	IP           string         `json:"ip,omitempty"`
	UserAgent    string         `json:"user_agent,omitempty"`
	RequestID    string         `json:"request_id,omitempty"`
	Details      map[string]any `json:"details,omitempty"`
}

// SecurityLogger provides structured logging for upload and overlay events
type SecurityLogger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
	// Optional: DB persistence function
	persistFunc func(ctx context.Context, event SecurityEvent) error
}

// NewSecurityLogger builds a production zap logger writing JSON to stdout
func NewSecurityLogger(serviceName, environment string) *SecurityLogger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.MessageKey = "message"
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build(zap.AddCaller())
	if err != nil {
		logger, _ = zap.NewProduction()
	}
	return NewSecurityLoggerWith(logger, serviceName, environment)
}

// NewSecurityLoggerWith wraps an existing zap logger
func NewSecurityLoggerWith(logger *zap.Logger, serviceName, environment string) *SecurityLogger {
	return &SecurityLogger{
		zapLogger:   logger,
		serviceName: serviceName,
		environment: environment,
	}
}

// SetPersistFunc sets the function to persist events to database
func (sl *SecurityLogger) SetPersistFunc(f func(ctx context.Context, event SecurityEvent) error) {
	sl.persistFunc = f
}

// Log logs a security event
func (sl *SecurityLogger) Log(ctx context.Context, event SecurityEvent) {
	if sl == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.Service = sl.serviceName
	event.Environment = sl.environment

	level := zapcore.WarnLevel
	switch GetSeverity(event.Event) {
	case SeverityINFO:
		level = zapcore.InfoLevel
	case SeverityHIGH:
		level = zapcore.ErrorLevel
	}
	event.Level = level.String()

	fields := []zap.Field{
		zap.String("service", event.Service),
		zap.String("env", event.Environment),
		zap.String("event", string(event.Event)),
		zap.String("severity", string(GetSeverity(event.Event))),
	}
	if event.SubjectType != "" {
		fields = append(fields, zap.String("subject_type", event.SubjectType))
	}
	if event.SubjectValue != "" {
		fields = append(fields, zap.String("subject_value", event.SubjectValue))
	}
	if event.IP != "" {
		fields = append(fields, zap.String("ip", event.IP))
	}
	if event.UserAgent != "" {
		fields = append(fields, zap.String("user_agent", event.UserAgent))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		detailsJSON, _ := json.Marshal(event.Details)
		fields = append(fields, zap.String("details", string(detailsJSON)))
	}

	sl.zapLogger.Log(level, string(event.Event), fields...)

	if sl.persistFunc != nil {
		go func(e SecurityEvent) {
			// Request context may already be canceled
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := sl.persistFunc(ctx, e); err != nil {
				sl.zapLogger.Error("Failed to persist security event", zap.Error(err))
			}
		}(event)
	}
}

// LogRateLimitTriggered logs when the upload limiter rejects a request
func (sl *SecurityLogger) LogRateLimitTriggered(ctx context.Context, ip, userAgent, requestID, endpoint string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventRateLimitTriggered,
		SubjectType:  "ip",
		SubjectValue: ip,
		IP:           ip,
		UserAgent:    userAgent,
		RequestID:    requestID,
		Details:      map[string]any{"endpoint": endpoint},
	})
}

// LogValidationFailed logs a rejected upload
func (sl *SecurityLogger) LogValidationFailed(ctx context.Context, owner, ip, requestID, reason string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventValidationFailed,
		SubjectType:  "owner",
		SubjectValue: HashValue(owner),
		IP:           ip,
		RequestID:    requestID,
		Details:      map[string]any{"reason": reason},
	})
}

// LogUploadAccepted logs a published avatar with its storage tier
func (sl *SecurityLogger) LogUploadAccepted(ctx context.Context, owner, ip, requestID, tier string, size int) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventUploadAccepted,
		SubjectType:  "owner",
		SubjectValue: HashValue(owner),
		IP:           ip,
		RequestID:    requestID,
		Details:      map[string]any{"tier": tier, "size": size},
	})
}

// LogOverlayChanged logs a local overlay write for an owner
func (sl *SecurityLogger) LogOverlayChanged(ctx context.Context, owner, ip, requestID, field, action string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventOverlayChanged,
		SubjectType:  "owner",
		SubjectValue: HashValue(owner),
		IP:           ip,
		RequestID:    requestID,
		Details:      map[string]any{"field": field, "action": action},
	})
}

// Sync flushes any buffered log entries
func (sl *SecurityLogger) Sync() error {
	return sl.zapLogger.Sync()
}

// HashValue creates a SHA256 hash of a value (for logging without PII)
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8])
}
