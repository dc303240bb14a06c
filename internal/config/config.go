package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config 服务端配置
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Redis    RedisConfig    `yaml:"redis"`
	Game     GameConfig     `yaml:"game"`
	Voice    VoiceConfig    `yaml:"voice"`
	Security SecurityConfig `yaml:"security"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig WebSocket 服务器配置
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	PublicURL      string   `yaml:"public_url"`      // 前端地址，用于生成房间二维码
	AllowedOrigins []string `yaml:"allowed_origins"` // 为空时允许所有来源
	MaxConnections int      `yaml:"max_connections"`

	// ShutdownTimeoutSeconds 关闭时等待进行中的对局结束的最长时间
	ShutdownTimeoutSeconds int `yaml:"shutdown_timeout_seconds"`
}

// RedisConfig Redis 配置（仅用于记录对局结果）
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GameConfig 游戏阶段时长配置
type GameConfig struct {
	NightActionSeconds      int `yaml:"night_action_seconds"`      // 夜晚每轮行动时间
	NightIntroMillis        int `yaml:"night_intro_ms"`            // 入夜动画
	NightEmptyPauseMillis   int `yaml:"night_empty_pause_ms"`      // 无人醒来时的停顿
	DealingTimeoutSeconds   int `yaml:"dealing_timeout_seconds"`   // 发牌确认超时
	AccompliceSelectSeconds int `yaml:"accomplice_select_seconds"` // 大盗选择同伙时间
	AccompliceRevealSeconds int `yaml:"accomplice_reveal_seconds"` // 同伙揭晓后进入白天的延迟
	DayDiscussionSeconds    int `yaml:"day_discussion_seconds"`    // 白天讨论时间
	VotingSeconds           int `yaml:"voting_seconds"`            // 投票时间
	ReconnectTimeoutSeconds int `yaml:"reconnect_timeout_seconds"` // 断线重连等待时间
}

// VoiceConfig 语音服务配置，URL 为空时不启用
type VoiceConfig struct {
	URL                   string `yaml:"url"`
	APIKey                string `yaml:"api_key"`
	APISecret             string `yaml:"api_secret"`
	TokenTTLMinutes       int    `yaml:"token_ttl_minutes"`
	RequestTimeoutSeconds int    `yaml:"request_timeout_seconds"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	ConnectLimit LimitConfig `yaml:"connect_limit"` // 每个 IP 建立连接的速率
	MessageLimit LimitConfig `yaml:"message_limit"` // 每个连接的消息速率
	ChatLimit    LimitConfig `yaml:"chat_limit"`    // 每个玩家的聊天速率
}

// LimitConfig 令牌桶参数
type LimitConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// ShutdownTimeoutDuration 返回关闭等待时长
func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

// NightActionDuration 返回夜晚每轮行动时长
func (c *GameConfig) NightActionDuration() time.Duration {
	return time.Duration(c.NightActionSeconds) * time.Second
}

// NightIntroDuration 返回入夜动画时长
func (c *GameConfig) NightIntroDuration() time.Duration {
	return time.Duration(c.NightIntroMillis) * time.Millisecond
}

// NightEmptyPauseDuration 返回无人醒来时的停顿时长
func (c *GameConfig) NightEmptyPauseDuration() time.Duration {
	return time.Duration(c.NightEmptyPauseMillis) * time.Millisecond
}

// DealingTimeoutDuration 返回发牌确认超时时长
func (c *GameConfig) DealingTimeoutDuration() time.Duration {
	return time.Duration(c.DealingTimeoutSeconds) * time.Second
}

// AccompliceRevealDuration 返回同伙揭晓延迟
func (c *GameConfig) AccompliceRevealDuration() time.Duration {
	return time.Duration(c.AccompliceRevealSeconds) * time.Second
}

// ReconnectTimeoutDuration 返回断线重连等待时长
func (c *GameConfig) ReconnectTimeoutDuration() time.Duration {
	return time.Duration(c.ReconnectTimeoutSeconds) * time.Second
}

// TokenTTLDuration 返回语音令牌有效期
func (c *VoiceConfig) TokenTTLDuration() time.Duration {
	return time.Duration(c.TokenTTLMinutes) * time.Minute
}

// RequestTimeoutDuration 返回语音服务请求超时
func (c *VoiceConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// Enabled 是否配置了语音服务
func (c *VoiceConfig) Enabled() bool {
	return c.URL != "" && c.APIKey != "" && c.APISecret != ""
}

// Load 加载配置文件，并用环境变量覆盖
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	cfg.applyEnv()
	return &cfg, nil
}

// LoadDotEnv 加载 .env 文件到环境变量，文件不存在时忽略
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return nil
}

// Default 返回默认配置（同样应用环境变量覆盖）
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	cfg.applyEnv()
	return cfg
}

func (cfg *Config) applyDefaults() {
	d := defaults()

	if cfg.Server.Host == "" {
		cfg.Server.Host = d.Server.Host
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = d.Server.Port
	}
	if cfg.Server.MaxConnections == 0 {
		cfg.Server.MaxConnections = d.Server.MaxConnections
	}
	setInt(&cfg.Server.ShutdownTimeoutSeconds, d.Server.ShutdownTimeoutSeconds)
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = d.Redis.Addr
	}

	setInt(&cfg.Game.NightActionSeconds, d.Game.NightActionSeconds)
	setInt(&cfg.Game.NightIntroMillis, d.Game.NightIntroMillis)
	setInt(&cfg.Game.NightEmptyPauseMillis, d.Game.NightEmptyPauseMillis)
	setInt(&cfg.Game.DealingTimeoutSeconds, d.Game.DealingTimeoutSeconds)
	setInt(&cfg.Game.AccompliceSelectSeconds, d.Game.AccompliceSelectSeconds)
	setInt(&cfg.Game.AccompliceRevealSeconds, d.Game.AccompliceRevealSeconds)
	setInt(&cfg.Game.DayDiscussionSeconds, d.Game.DayDiscussionSeconds)
	setInt(&cfg.Game.VotingSeconds, d.Game.VotingSeconds)
	setInt(&cfg.Game.ReconnectTimeoutSeconds, d.Game.ReconnectTimeoutSeconds)

	setInt(&cfg.Voice.TokenTTLMinutes, d.Voice.TokenTTLMinutes)
	setInt(&cfg.Voice.RequestTimeoutSeconds, d.Voice.RequestTimeoutSeconds)

	if cfg.Security.ConnectLimit.PerSecond == 0 {
		cfg.Security.ConnectLimit = d.Security.ConnectLimit
	}
	if cfg.Security.MessageLimit.PerSecond == 0 {
		cfg.Security.MessageLimit = d.Security.MessageLimit
	}
	if cfg.Security.ChatLimit.PerSecond == 0 {
		cfg.Security.ChatLimit = d.Security.ChatLimit
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = d.Log.Level
	}
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Host:                   "0.0.0.0",
			Port:                   3001,
			MaxConnections:         2000,
			ShutdownTimeoutSeconds: 30,
		},
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
		Game: GameConfig{
			NightActionSeconds:      15,
			NightIntroMillis:        1500,
			NightEmptyPauseMillis:   2000,
			DealingTimeoutSeconds:   30,
			AccompliceSelectSeconds: 20,
			AccompliceRevealSeconds: 5,
			DayDiscussionSeconds:    180,
			VotingSeconds:           30,
			ReconnectTimeoutSeconds: 60,
		},
		Voice: VoiceConfig{
			TokenTTLMinutes:       1440,
			RequestTimeoutSeconds: 5,
		},
		Security: SecurityConfig{
			ConnectLimit: LimitConfig{PerSecond: 2, Burst: 10},
			MessageLimit: LimitConfig{PerSecond: 20, Burst: 40},
			ChatLimit:    LimitConfig{PerSecond: 1, Burst: 5},
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// applyEnv 环境变量优先级高于配置文件
func (cfg *Config) applyEnv() {
	envInt("SERVER_PORT", &cfg.Server.Port)
	envString("PUBLIC_URL", &cfg.Server.PublicURL)
	if v := os.Getenv("CORS_ORIGIN"); v != "" && v != "*" {
		cfg.Server.AllowedOrigins = strings.Split(v, ",")
	}

	envString("REDIS_ADDR", &cfg.Redis.Addr)
	envString("REDIS_PASSWORD", &cfg.Redis.Password)
	envBool("REDIS_ENABLED", &cfg.Redis.Enabled)

	envInt("NIGHT_ACTION_SECONDS", &cfg.Game.NightActionSeconds)
	envInt("NIGHT_EMPTY_PAUSE_MS", &cfg.Game.NightEmptyPauseMillis)
	envInt("DEALING_TIMEOUT_SECONDS", &cfg.Game.DealingTimeoutSeconds)
	envInt("ACCOMPLICE_SELECT_SECONDS", &cfg.Game.AccompliceSelectSeconds)
	envInt("DAY_DISCUSSION_SECONDS", &cfg.Game.DayDiscussionSeconds)
	envInt("VOTING_SECONDS", &cfg.Game.VotingSeconds)
	envInt("RECONNECT_TIMEOUT_SECONDS", &cfg.Game.ReconnectTimeoutSeconds)

	envString("LIVEKIT_URL", &cfg.Voice.URL)
	envString("LIVEKIT_API_KEY", &cfg.Voice.APIKey)
	envString("LIVEKIT_API_SECRET", &cfg.Voice.APISecret)

	envString("LOG_LEVEL", &cfg.Log.Level)
}

func setInt(dst *int, fallback int) {
	if *dst == 0 {
		*dst = fallback
	}
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

// envInt 非法数字忽略
func envInt(key string, dst *int) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

func envBool(key string, dst *bool) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	if b, err := strconv.ParseBool(v); err == nil {
		*dst = b
	}
}
