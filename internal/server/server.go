package server

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/palemoky/cheese-thief/internal/config"
	"github.com/palemoky/cheese-thief/internal/game/room"
	"github.com/palemoky/cheese-thief/internal/server/handler"
	"github.com/palemoky/cheese-thief/internal/server/storage"
	"github.com/palemoky/cheese-thief/internal/voice"
)

const (
	voiceQueueSize   = 256
	janitorInterval  = 30 * time.Second
	limiterSweep     = 5 * time.Minute
	monitorInterval  = 30 * time.Second
	redisDialTimeout = 5 * time.Second
)

// Server WebSocket 游戏服务器
type Server struct {
	config      *config.Config
	redis       *redis.Client // 未启用 Redis 时为 nil
	store       storage.Store
	voice       *voice.Dispatcher
	roomManager *room.RoomManager
	handler     *handler.Handler
	upgrader    websocket.Upgrader

	clients   map[string]*Client
	clientsMu sync.RWMutex

	// 安全组件
	rateLimiter   *RateLimiter
	chatLimiter   *ChatRateLimiter
	originChecker *OriginChecker

	// 连接控制
	maxConnections int
	semaphore      chan struct{}

	maintenance atomic.Bool
	httpServer  *http.Server
}

// NewServer 创建服务器实例，启用 Redis 时先检查连接
func NewServer(cfg *config.Config) (*Server, error) {
	s := &Server{
		config:         cfg,
		store:          storage.NoopStore{},
		clients:        make(map[string]*Client),
		rateLimiter:    NewRateLimiter(cfg.Security.ConnectLimit),
		chatLimiter:    NewChatRateLimiter(cfg.Security.ChatLimit),
		originChecker:  NewOriginChecker(cfg.Server.AllowedOrigins),
		maxConnections: cfg.Server.MaxConnections,
		semaphore:      make(chan struct{}, cfg.Server.MaxConnections),
	}

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store := storage.NewResultStore(rdb)
		ctx, cancel := context.WithTimeout(context.Background(), redisDialTimeout)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			_ = rdb.Close()
			return nil, fmt.Errorf("redis 连接失败: %w", err)
		}
		s.redis = rdb
		s.store = store
		log.Info().Str("addr", cfg.Redis.Addr).Msg("🗄️ 对局结果写入 Redis")
	}

	ctrl, tokens := voice.FromConfig(cfg.Voice)
	s.voice = voice.NewDispatcher(ctrl, voiceQueueSize, cfg.Voice.RequestTimeoutDuration())

	s.roomManager = room.NewRoomManager(room.Options{
		Timing:   cfg.Game,
		Voice:    s.voice,
		Recorder: s.store,
	})

	s.handler = handler.NewHandler(handler.HandlerDeps{
		Server:      s,
		RoomManager: s.roomManager,
		ChatLimiter: s.chatLimiter,
		Tokens:      tokens,
	})

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.originChecker.Check,
	}

	log.Info().
		Float64("connect_per_sec", cfg.Security.ConnectLimit.PerSecond).
		Float64("message_per_sec", cfg.Security.MessageLimit.PerSecond).
		Float64("chat_per_sec", cfg.Security.ChatLimit.PerSecond).
		Int("max_connections", cfg.Server.MaxConnections).
		Msg("🔒 安全配置")

	return s, nil
}

// Router 返回 HTTP 路由
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/ws", s.handleWebSocket)
	r.Get("/health", s.handleHealth)
	r.Get("/stats", s.handleStats)
	r.Get("/rooms/{code}/qr.png", s.handleRoomQR)
	return r
}

// Start 启动服务器，阻塞直到 ctx 结束并完成关闭
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	bg, cancel := context.WithCancel(ctx)
	defer cancel()
	s.runBackground(bg)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Int("cpus", runtime.NumCPU()).Msg("🚀 服务器启动")
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.closeResources()
		return err
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeoutDuration())
	defer stop()
	return s.Shutdown(shutdownCtx)
}

// runBackground 启动房间清理、限流记录清理和状态监控
func (s *Server) runBackground(ctx context.Context) {
	go s.roomManager.StartJanitor(ctx, janitorInterval)
	go s.rateLimiter.runCleanup(ctx, limiterSweep)
	go s.chatLimiter.runCleanup(ctx, limiterSweep)
	go s.monitorStats(ctx, monitorInterval)
}

// handleDisconnect 连接断开：注销连接并释放连接名额，房间内的玩家进入重连等待
func (s *Server) handleDisconnect(c *Client) {
	s.handler.OnDisconnect(c)
	s.unregisterClient(c)
	<-s.semaphore
	log.Debug().Str("conn", c.ID).Msg("❌ 连接断开")
}

func (s *Server) registerClient(c *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	s.clients[c.ID] = c
}

func (s *Server) unregisterClient(c *Client) {
	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	delete(s.clients, c.ID)
}
