package server

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/skip2/go-qrcode"

	"github.com/palemoky/cheese-thief/internal/server/storage"
)

const (
	defaultRecentGames = 20
	qrSize             = 256
)

// statsResponse /stats 返回内容：实时人数加历史战绩
type statsResponse struct {
	Online      int  `json:"online"`
	Rooms       int  `json:"rooms"`
	ActiveGames int  `json:"active_games"`
	Maintenance bool `json:"maintenance"`
	*storage.Stats
}

// handleHealth 健康检查
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleStats 返回服务器统计，?recent=N 控制最近对局条数
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	recent := defaultRecentGames
	if v := r.URL.Query().Get("recent"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "invalid recent", http.StatusBadRequest)
			return
		}
		recent = n
	}

	stats, err := s.store.GetStats(r.Context(), recent)
	if err != nil {
		log.Warn().Err(err).Msg("读取对局统计失败")
		http.Error(w, "stats unavailable", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(statsResponse{
		Online:      s.GetOnlineCount(),
		Rooms:       s.roomManager.Count(),
		ActiveGames: s.roomManager.GetActiveGamesCount(),
		Maintenance: s.IsMaintenanceMode(),
		Stats:       stats,
	})
}

// handleRoomQR 生成房间邀请二维码，只对存在的房间生成
func (s *Server) handleRoomQR(w http.ResponseWriter, r *http.Request) {
	rm := s.roomManager.GetRoom(chi.URLParam(r, "code"))
	if rm == nil {
		http.NotFound(w, r)
		return
	}

	png, err := qrcode.Encode(s.inviteURL(rm.Code), qrcode.Medium, qrSize)
	if err != nil {
		log.Error().Err(err).Str("room", rm.Code).Msg("生成二维码失败")
		http.Error(w, "qr encode failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

// inviteURL 房间邀请链接 <public_url>/?room=<code>
func (s *Server) inviteURL(code string) string {
	base := strings.TrimRight(s.config.Server.PublicURL, "/")
	return base + "/?room=" + url.QueryEscape(code)
}
