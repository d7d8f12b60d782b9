package logger

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger 基于 zap 的日志器，提供 printf 风格接口
type Logger struct {
	zapLogger *zap.Logger
}

// Options 日志配置
type Options struct {
	Level  string // debug, info, warn, error, fatal
	Output string // stdout, stderr, file
	File   string // output 为 file 时的日志文件路径
}

var defaultLogger = mustNew(Options{Level: "info", Output: "stdout"})

// Init 按配置重建默认日志器
func Init(opts Options) error {
	l, err := New(opts)
	if err != nil {
		return err
	}
	defaultLogger.Sync()
	defaultLogger = l
	return nil
}

// New 创建日志器
func New(opts Options) (*Logger, error) {
	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.Format("2006-01-02 15:04:05"))
	}
	encCfg.CallerKey = "caller"
	encCfg.EncodeCaller = zapcore.ShortCallerEncoder
	encCfg.LevelKey = "level"
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	encCfg.MessageKey = "message"

	var sink zapcore.WriteSyncer
	switch strings.ToLower(opts.Output) {
	case "file":
		if opts.File == "" {
			opts.File = "logs/app.log"
		}
		sink = zapcore.AddSync(&lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    100, // MB
			MaxBackups: 3,
			MaxAge:     28, // 天
			Compress:   true,
		})
	case "stderr":
		sink = zapcore.AddSync(os.Stderr)
	default:
		sink = zapcore.AddSync(os.Stdout)
	}

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), sink, parseLevel(opts.Level))
	return &Logger{zapLogger: zap.New(core, zap.AddCaller(), zap.AddCallerSkip(2))}, nil
}

func mustNew(opts Options) *Logger {
	l, err := New(opts)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	return l
}

// Debug 调试日志
func (l *Logger) Debug(format string, args ...any) {
	l.zapLogger.Debug(fmt.Sprintf(format, args...))
}

// Info 信息日志
func (l *Logger) Info(format string, args ...any) {
	l.zapLogger.Info(fmt.Sprintf(format, args...))
}

// Warn 警告日志
func (l *Logger) Warn(format string, args ...any) {
	l.zapLogger.Warn(fmt.Sprintf(format, args...))
}

// Error 错误日志
func (l *Logger) Error(format string, args ...any) {
	l.zapLogger.Error(fmt.Sprintf(format, args...))
}

// Fatal 致命错误日志
func (l *Logger) Fatal(format string, args ...any) {
	l.zapLogger.Fatal(fmt.Sprintf(format, args...))
}

// Sync 刷新缓冲
func (l *Logger) Sync() {
	l.zapLogger.Sync()
}

// With 附加结构化字段
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{zapLogger: l.zapLogger.With(fields...)}
}

// 包级默认日志器入口

func Debug(format string, args ...any) { defaultLogger.Debug(format, args...) }
func Info(format string, args ...any)  { defaultLogger.Info(format, args...) }
func Warn(format string, args ...any)  { defaultLogger.Warn(format, args...) }
func Error(format string, args ...any) { defaultLogger.Error(format, args...) }
func Fatal(format string, args ...any) { defaultLogger.Fatal(format, args...) }
func Sync()                            { defaultLogger.Sync() }

// parseLevel 解析日志级别字符串
func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}
