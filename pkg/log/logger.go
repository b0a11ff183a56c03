// Package log is a small structured logger with asynchronous delivery,
// context-carried request ids and pluggable transporters.
package log

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
)

const defaultBufferSize = 1000

// Logger writes structured entries at or above its level.
type Logger struct {
	mu         sync.RWMutex
	level      Level
	buffer     *Buffer
	baseFields map[string]any
}

// New creates a logger with the given minimum level and transporters.
func New(level Level, transporters ...Transporter) *Logger {
	return &Logger{
		level:      level,
		buffer:     NewBuffer(defaultBufferSize, transporters...),
		baseFields: make(map[string]any),
	}
}

// SetLevel changes the minimum level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// With returns a child logger sharing the buffer with extra base fields.
func (l *Logger) With(keysAndValues ...any) *Logger {
	l.mu.RLock()
	fields := make(map[string]any, len(l.baseFields))
	for k, v := range l.baseFields {
		fields[k] = v
	}
	level := l.level
	l.mu.RUnlock()

	mergePairs(fields, keysAndValues)

	return &Logger{level: level, buffer: l.buffer, baseFields: fields}
}

// Close flushes pending entries.
func (l *Logger) Close() {
	l.buffer.Close()
}

func (l *Logger) log(ctx context.Context, level Level, msg string, keysAndValues []any) {
	l.mu.RLock()
	enabled := l.level.Enables(level)
	l.mu.RUnlock()
	if !enabled {
		return
	}

	entry := NewEntry(level, msg)
	entry.Caller = caller(3)

	l.mu.RLock()
	for k, v := range l.baseFields {
		entry.Fields[k] = v
	}
	l.mu.RUnlock()

	if ctx != nil {
		entry.RequestID = RequestIDFromContext(ctx)
		for k, v := range FieldsFromContext(ctx) {
			entry.Fields[k] = v
		}
	}

	mergePairs(entry.Fields, keysAndValues)
	l.buffer.Send(*entry)
}

func caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return ""
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

func (l *Logger) Debug(msg string, kv ...any) { l.log(nil, Debug, msg, kv) }
func (l *Logger) Info(msg string, kv ...any)  { l.log(nil, Info, msg, kv) }
func (l *Logger) Warn(msg string, kv ...any)  { l.log(nil, Warn, msg, kv) }
func (l *Logger) Error(msg string, kv ...any) { l.log(nil, Error, msg, kv) }

func (l *Logger) DebugCtx(ctx context.Context, msg string, kv ...any) { l.log(ctx, Debug, msg, kv) }
func (l *Logger) InfoCtx(ctx context.Context, msg string, kv ...any)  { l.log(ctx, Info, msg, kv) }
func (l *Logger) WarnCtx(ctx context.Context, msg string, kv ...any)  { l.log(ctx, Warn, msg, kv) }
func (l *Logger) ErrorCtx(ctx context.Context, msg string, kv ...any) { l.log(ctx, Error, msg, kv) }

var (
	globalMu     sync.RWMutex
	globalLogger *Logger
	discard      = &Logger{level: Fatal + 1, buffer: NewBuffer(1), baseFields: map[string]any{}}
)

// SetDefault replaces the global logger.
func SetDefault(l *Logger) {
	globalMu.Lock()
	globalLogger = l
	globalMu.Unlock()
}

// Default returns the global logger, or a logger that discards everything.
func Default() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	if globalLogger == nil {
		return discard
	}
	return globalLogger
}

// The Global* helpers log through Default(). They call log directly so the
// recorded caller is the helper's caller.

func GlobalDebug(msg string, kv ...any) { Default().log(nil, Debug, msg, kv) }
func GlobalInfo(msg string, kv ...any)  { Default().log(nil, Info, msg, kv) }
func GlobalWarn(msg string, kv ...any)  { Default().log(nil, Warn, msg, kv) }
func GlobalError(msg string, kv ...any) { Default().log(nil, Error, msg, kv) }

func GlobalDebugCtx(ctx context.Context, msg string, kv ...any) { Default().log(ctx, Debug, msg, kv) }
func GlobalInfoCtx(ctx context.Context, msg string, kv ...any)  { Default().log(ctx, Info, msg, kv) }
func GlobalWarnCtx(ctx context.Context, msg string, kv ...any)  { Default().log(ctx, Warn, msg, kv) }
func GlobalErrorCtx(ctx context.Context, msg string, kv ...any) { Default().log(ctx, Error, msg, kv) }
