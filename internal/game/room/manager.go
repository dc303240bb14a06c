package room

import (
	"context"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/palemoky/cheese-thief/internal/apperrors"
)

const (
	roomCodeLength   = 4                                  // 房间号长度
	roomCodeChars    = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789" // 房间号字符集，去掉易混淆的 I O 0 1
	maxCodeAttempts  = 100
	emptyRoomMaxIdle = time.Minute // 没有玩家的房间最多保留多久
)

// RoomManager 房间目录
type RoomManager struct {
	opts    Options
	genCode func() string
	rooms   map[string]*Room
	mu      sync.RWMutex
}

// NewRoomManager 创建房间目录
func NewRoomManager(opts Options) *RoomManager {
	rm := &RoomManager{
		opts:    opts.withDefaults(),
		genCode: generateRoomCode,
		rooms:   make(map[string]*Room),
	}
	return rm
}

// CreateRoom 创建房间，房间号冲突时重试，重试耗尽返回错误
func (rm *RoomManager) CreateRoom() (*Room, error) {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	for range maxCodeAttempts {
		code := rm.genCode()
		if _, exists := rm.rooms[code]; exists {
			continue
		}

		opts := rm.opts
		opts.OnEmpty = func(code string) { rm.CleanupIfEmpty(code) }
		room := New(code, opts)
		rm.rooms[code] = room

		log.Info().Str("room", code).Int("rooms", len(rm.rooms)).Msg("🏠 房间已创建")
		return room, nil
	}

	log.Error().Int("rooms", len(rm.rooms)).Msg("🚨 房间号已耗尽")
	return nil, apperrors.ErrSpaceExhausted
}

// GetRoom 按房间号查找，忽略大小写
func (rm *RoomManager) GetRoom(code string) *Room {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.rooms[NormalizeCode(code)]
}

// RemoveRoom 删除房间并清理语音频道
func (rm *RoomManager) RemoveRoom(code string) {
	code = NormalizeCode(code)

	rm.mu.Lock()
	_, exists := rm.rooms[code]
	delete(rm.rooms, code)
	rm.mu.Unlock()

	if exists {
		rm.opts.Voice.DeleteRoom(code)
		log.Info().Str("room", code).Msg("🏠 房间已解散")
	}
}

// CleanupIfEmpty 房间没有玩家时删除，返回是否删除
func (rm *RoomManager) CleanupIfEmpty(code string) bool {
	room := rm.GetRoom(code)
	if room == nil || room.PlayerCount() > 0 {
		return false
	}
	rm.RemoveRoom(code)
	return true
}

// Count 当前房间数
func (rm *RoomManager) Count() int {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return len(rm.rooms)
}

// GetActiveGamesCount 正在游戏中的房间数
func (rm *RoomManager) GetActiveGamesCount() int {
	rm.mu.RLock()
	rooms := make([]*Room, 0, len(rm.rooms))
	for _, r := range rm.rooms {
		rooms = append(rooms, r)
	}
	rm.mu.RUnlock()

	n := 0
	for _, r := range rooms {
		if r.IsPlaying() {
			n++
		}
	}
	return n
}

// StartJanitor 定期清理创建后一直没有玩家的房间，直到 ctx 结束
func (rm *RoomManager) StartJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rm.sweep()
		}
	}
}

// sweep 清理空闲的空房间
func (rm *RoomManager) sweep() {
	now := rm.opts.Clock.Now()

	rm.mu.RLock()
	var stale []string
	for code, r := range rm.rooms {
		if now.Sub(r.CreatedAt) > emptyRoomMaxIdle {
			stale = append(stale, code)
		}
	}
	rm.mu.RUnlock()

	for _, code := range stale {
		if rm.CleanupIfEmpty(code) {
			log.Info().Str("room", code).Msg("🧹 清理空房间")
		}
	}
}

// NormalizeCode 房间号统一为大写
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// generateRoomCode 生成随机房间号
func generateRoomCode() string {
	var b strings.Builder
	b.Grow(roomCodeLength)
	for range roomCodeLength {
		b.WriteByte(roomCodeChars[rand.IntN(len(roomCodeChars))])
	}
	return b.String()
}
