package server

import (
	"context"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/cheese-thief/internal/protocol"
	"github.com/palemoky/cheese-thief/internal/protocol/codec"
)

// 关闭时检查对局是否结束的间隔
const shutdownPollInterval = time.Second

// monitorStats 定期输出服务器状态
func (s *Server) monitorStats(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)

			log.Info().
				Int("online", s.GetOnlineCount()).
				Int("rooms", s.roomManager.Count()).
				Int("games", s.roomManager.GetActiveGamesCount()).
				Int("goroutines", runtime.NumGoroutine()).
				Int("conns", len(s.semaphore)).
				Int("max_conns", s.maxConnections).
				Float64("mem_mb", float64(m.Alloc)/1024/1024).
				Msg("📊 [监控]")
		}
	}
}

// EnterMaintenanceMode 进入维护模式：拒绝新连接，停止创建和加入房间
func (s *Server) EnterMaintenanceMode() {
	if s.maintenance.Swap(true) {
		return
	}
	s.Broadcast(codec.NewErrorMessage(protocol.ErrCodeMaintenance))
	log.Info().Msg("🔧 进入维护模式：停止新连接和房间创建")
}

// IsMaintenanceMode 检查是否在维护模式
func (s *Server) IsMaintenanceMode() bool {
	return s.maintenance.Load()
}

// Shutdown 优雅关闭：进入维护模式，等待进行中的对局结束或 ctx 到期，再关闭连接和外部资源
func (s *Server) Shutdown(ctx context.Context) error {
	s.EnterMaintenanceMode()
	s.waitForGames(ctx)

	var err error
	if s.httpServer != nil {
		// 被劫持的 WebSocket 连接不受 http.Server.Shutdown 管理，单独关闭
		httpCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if e := s.httpServer.Shutdown(httpCtx); e != nil && !errors.Is(e, http.ErrServerClosed) {
			err = e
		}
	}
	s.closeAllClients()
	s.closeResources()

	log.Info().Msg("服务器已关闭")
	return err
}

// waitForGames 等待所有对局结束
func (s *Server) waitForGames(ctx context.Context) {
	ticker := time.NewTicker(shutdownPollInterval)
	defer ticker.Stop()

	for {
		active := s.roomManager.GetActiveGamesCount()
		if active == 0 {
			log.Info().Msg("✅ 所有对局已结束")
			return
		}
		select {
		case <-ctx.Done():
			log.Warn().Int("games", active).Msg("⚠️ 等待超时，强制关闭进行中的对局")
			return
		case <-ticker.C:
			log.Info().Int("games", active).Msg("⏳ 等待对局结束")
		}
	}
}

// closeResources 关闭语音队列和 Redis
func (s *Server) closeResources() {
	s.voice.Close()
	if s.redis != nil {
		_ = s.redis.Close()
	}
}
