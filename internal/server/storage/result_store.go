package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/palemoky/cheese-thief/internal/protocol"
)

const (
	// Redis key
	gamesTotalKey = "cheese:games:total"
	teamWinsKey   = "cheese:wins:team"
	historyKey    = "cheese:games:history"

	// 最近对局保留条数
	historyLimit = 100
)

// GameRecord 一局结束后的记录
type GameRecord struct {
	RoomCode    string        `json:"room_code"`
	PlayerCount int           `json:"player_count"`
	WinnerTeam  protocol.Team `json:"winner_team"`
	WinnerLabel string        `json:"winner_label"`
	ThiefName   string        `json:"thief_name"`
	Accomplices []string      `json:"accomplices,omitempty"`
	Scapegoat   string        `json:"scapegoat,omitempty"`
	FinishedAt  int64         `json:"finished_at"`
}

// Stats 全服统计
type Stats struct {
	TotalGames int                   `json:"total_games"`
	TeamWins   map[protocol.Team]int `json:"team_wins"`
	Recent     []GameRecord          `json:"recent"`
}

// Store 对局结果存储接口
type Store interface {
	RecordGame(ctx context.Context, rec *GameRecord) error
	GetStats(ctx context.Context, recent int) (*Stats, error)
}

// ResultStore 基于 Redis 的对局结果存储
type ResultStore struct {
	client *redis.Client
}

// NewResultStore 创建结果存储
func NewResultStore(client *redis.Client) *ResultStore {
	return &ResultStore{client: client}
}

// RecordGame 记录一局结果：总局数、阵营胜场、最近对局列表
func (s *ResultStore) RecordGame(ctx context.Context, rec *GameRecord) error {
	if rec == nil {
		return nil
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("序列化对局记录失败: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Incr(ctx, gamesTotalKey)
	pipe.HIncrBy(ctx, teamWinsKey, string(rec.WinnerTeam), 1)
	pipe.LPush(ctx, historyKey, data)
	pipe.LTrim(ctx, historyKey, 0, historyLimit-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("写入对局记录失败: %w", err)
	}
	return nil
}

// GetStats 读取统计，recent 为返回的最近对局条数
func (s *ResultStore) GetStats(ctx context.Context, recent int) (*Stats, error) {
	if recent <= 0 || recent > historyLimit {
		recent = historyLimit
	}

	stats := &Stats{TeamWins: make(map[protocol.Team]int)}

	total, err := s.client.Get(ctx, gamesTotalKey).Int()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, err
	}
	stats.TotalGames = total

	wins, err := s.client.HGetAll(ctx, teamWinsKey).Result()
	if err != nil {
		return nil, err
	}
	for team, v := range wins {
		n, err := strconv.Atoi(v)
		if err != nil {
			continue
		}
		stats.TeamWins[protocol.Team(team)] = n
	}

	items, err := s.client.LRange(ctx, historyKey, 0, int64(recent-1)).Result()
	if err != nil {
		return nil, err
	}
	stats.Recent = make([]GameRecord, 0, len(items))
	for _, item := range items {
		var rec GameRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			continue
		}
		stats.Recent = append(stats.Recent, rec)
	}

	return stats, nil
}

// Ping 检查连接
func (s *ResultStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// NoopStore 未启用 Redis 时使用
type NoopStore struct{}

func (NoopStore) RecordGame(context.Context, *GameRecord) error { return nil }

func (NoopStore) GetStats(context.Context, int) (*Stats, error) {
	return &Stats{TeamWins: map[protocol.Team]int{}, Recent: []GameRecord{}}, nil
}
