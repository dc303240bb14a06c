package logger

import (
	"io"
	"os"
	"runtime/debug"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init 初始化全局日志，pretty 为 true 时输出彩色控制台格式
func Init(level string, pretty bool) {
	InitWithWriter(os.Stdout, level, pretty)
}

// InitWithWriter 同 Init，但可以指定输出位置
func InitWithWriter(w io.Writer, level string, pretty bool) {
	out := w
	if pretty {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(out).With().Timestamp().Logger()
	zerolog.SetGlobalLevel(ParseLevel(level))
}

// ParseLevel 解析日志级别，未知级别回退到 info
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// Room 返回带房间号字段的子日志
func Room(code string) zerolog.Logger {
	return log.With().Str("room", code).Logger()
}

// LogPanic logs a panic with stack trace
func LogPanic(r any, fields map[string]any) {
	log.Error().
		Fields(fields).
		Interface("panic", r).
		Bytes("stack", debug.Stack()).
		Msg("💥 recovered from panic")
}
