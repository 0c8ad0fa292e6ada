package logger

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowQueryThreshold marks queries logged at warn level
const DefaultSlowQueryThreshold = 200 * time.Millisecond

// SQLLogger writes the statements issued by the CRM repositories to zap,
// tagged with the request and tenant that caused them. Bind parameters carry
// contact names, emails and phone numbers, so they are left out unless
// WithQueryParams is set.
type SQLLogger struct {
	logger        *zap.Logger
	logLevel      gormlogger.LogLevel
	slowThreshold time.Duration
	logParams     bool
	logNotFound   bool
}

// SQLLoggerOption configures a SQLLogger
type SQLLoggerOption func(*SQLLogger)

// WithSlowThreshold overrides the slow query threshold; zero disables it
func WithSlowThreshold(threshold time.Duration) SQLLoggerOption {
	return func(l *SQLLogger) {
		l.slowThreshold = threshold
	}
}

// WithQueryParams inlines bind parameters into logged SQL
func WithQueryParams(enabled bool) SQLLoggerOption {
	return func(l *SQLLogger) {
		l.logParams = enabled
	}
}

// WithNotFoundErrors logs record-not-found lookups as SQL errors
func WithNotFoundErrors(enabled bool) SQLLoggerOption {
	return func(l *SQLLogger) {
		l.logNotFound = enabled
	}
}

// NewSQLLogger creates a GORM logger backed by zap
func NewSQLLogger(zl *zap.Logger, level gormlogger.LogLevel, opts ...SQLLoggerOption) *SQLLogger {
	sl := &SQLLogger{
		logger:        zl.Named("sql"),
		logLevel:      level,
		slowThreshold: DefaultSlowQueryThreshold,
	}
	for _, opt := range opts {
		opt(sl)
	}
	return sl
}

// LogMode implements gormlogger.Interface
func (l *SQLLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.logLevel = level
	return &clone
}

func (l *SQLLogger) Info(_ context.Context, msg string, data ...any) {
	if l.logLevel >= gormlogger.Info {
		l.logger.Sugar().Infof(msg, data...)
	}
}

func (l *SQLLogger) Warn(_ context.Context, msg string, data ...any) {
	if l.logLevel >= gormlogger.Warn {
		l.logger.Sugar().Warnf(msg, data...)
	}
}

func (l *SQLLogger) Error(_ context.Context, msg string, data ...any) {
	if l.logLevel >= gormlogger.Error {
		l.logger.Sugar().Errorf(msg, data...)
	}
}

// ParamsFilter is picked up by gorm before the statement is rendered for Trace.
// Dropping the vars leaves the placeholders in the logged SQL.
func (l *SQLLogger) ParamsFilter(_ context.Context, sql string, params ...any) (string, []any) {
	if l.logParams {
		return sql, params
	}
	return sql, nil
}

// Trace implements gormlogger.Interface
func (l *SQLLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.logLevel <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	notFound := errors.Is(err, gormlogger.ErrRecordNotFound)
	slow := l.slowThreshold != 0 && elapsed > l.slowThreshold

	var msg string
	switch {
	case err != nil && (!notFound || l.logNotFound) && l.logLevel >= gormlogger.Error:
		msg = "SQL Error"
	case slow && l.logLevel >= gormlogger.Warn:
		msg = "Slow SQL"
	case l.logLevel >= gormlogger.Info:
		msg = "SQL Query"
	default:
		return
	}

	sql, rows := fc()
	fields := []zap.Field{
		zap.String("statement", statementVerb(sql)),
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	}
	if id := RequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if id := TenantID(ctx); id != "" {
		fields = append(fields, zap.String("tenant_id", id))
	}

	switch msg {
	case "SQL Error":
		l.logger.Error(msg, append(fields, zap.Error(err))...)
	case "Slow SQL":
		l.logger.Warn(msg, append(fields, zap.Duration("threshold", l.slowThreshold))...)
	default:
		l.logger.Debug(msg, fields...)
	}
}

// statementVerb is the leading keyword of sql, upper-cased
func statementVerb(sql string) string {
	sql = strings.TrimSpace(sql)
	if i := strings.IndexAny(sql, " \t\n("); i > 0 {
		sql = sql[:i]
	}
	return strings.ToUpper(sql)
}

// MapGormLogLevel maps an application log level to a GORM log level
func MapGormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
