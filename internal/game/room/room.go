package room

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/palemoky/cheese-thief/internal/config"
	"github.com/palemoky/cheese-thief/internal/logger"
	"github.com/palemoky/cheese-thief/internal/protocol"
	"github.com/palemoky/cheese-thief/internal/server/storage"
)

// VoiceChannel 语音频道控制，实现必须立即返回
type VoiceChannel interface {
	MuteAll(room string)
	UnmuteAll(room string)
	UnmuteSubset(room string, allowed []string)
	DeleteRoom(room string)
}

// ResultRecorder 对局结果记录
type ResultRecorder interface {
	RecordGame(ctx context.Context, rec *storage.GameRecord) error
}

// Options 房间依赖
type Options struct {
	Timing   config.GameConfig
	Clock    clockwork.Clock
	NewRand  func() *rand.Rand
	Voice    VoiceChannel
	Recorder ResultRecorder

	// OnEmpty 房间最后一名玩家被移除后调用（在房间锁外）
	OnEmpty func(code string)
}

func (o *Options) withDefaults() Options {
	out := *o
	if out.Clock == nil {
		out.Clock = clockwork.NewRealClock()
	}
	if out.NewRand == nil {
		out.NewRand = func() *rand.Rand {
			return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
	}
	if out.Voice == nil {
		out.Voice = noopVoice{}
	}
	if out.Recorder == nil {
		out.Recorder = storage.NoopStore{}
	}
	return out
}

const recordTimeout = 5 * time.Second

// Room 游戏房间，所有游戏状态的唯一来源
type Room struct {
	Code      string
	CreatedAt time.Time

	players  []*Player // 按加入顺序，即座位顺序
	settings protocol.GameSettings
	stage    stage
	round    *gameRound // 大厅阶段为 nil

	phaseTimer ownedTimer // 发牌、夜晚、同伙阶段共用
	dayTimer   ownedTimer
	voteTimer  ownedTimer

	clock    clockwork.Clock
	rand     *rand.Rand
	timing   config.GameConfig
	voice    VoiceChannel
	recorder ResultRecorder
	onEmpty  func(code string)
	log      zerolog.Logger

	mu     sync.Mutex
	after  []func() // 解锁后执行
	closed bool
}

// New 创建房间
func New(code string, opts Options) *Room {
	o := opts.withDefaults()
	return &Room{
		Code:      code,
		CreatedAt: o.Clock.Now(),
		stage:     lobbyStage{},
		settings: protocol.GameSettings{
			NightActionSeconds:      o.Timing.NightActionSeconds,
			AccompliceSelectSeconds: o.Timing.AccompliceSelectSeconds,
			DayDiscussionSeconds:    o.Timing.DayDiscussionSeconds,
			VotingSeconds:           o.Timing.VotingSeconds,
		},
		clock:    o.Clock,
		rand:     o.NewRand(),
		timing:   o.Timing,
		voice:    o.Voice,
		recorder: o.Recorder,
		onEmpty:  o.OnEmpty,
		log:      logger.Room(code),
	}
}

func (r *Room) lock() {
	r.mu.Lock()
}

// unlock 释放锁后执行延迟的回调（语音、房间清理等不能在锁内进行的操作）
func (r *Room) unlock() {
	hooks := r.after
	r.after = nil
	r.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

func (r *Room) deferUnlocked(fn func()) {
	r.after = append(r.after, fn)
}

// Phase 当前阶段
func (r *Room) Phase() protocol.Phase {
	r.lock()
	defer r.unlock()
	return r.stage.phase()
}

// PlayerCount 当前玩家数
func (r *Room) PlayerCount() int {
	r.lock()
	defer r.unlock()
	return len(r.players)
}

// Settings 当前设置
func (r *Room) Settings() protocol.GameSettings {
	r.lock()
	defer r.unlock()
	return r.settings
}

// IsPlaying 是否在游戏中（非大厅）
func (r *Room) IsPlaying() bool {
	r.lock()
	defer r.unlock()
	return r.stage.phase() != protocol.PhaseLobby
}

// Closed 房间是否已关闭
func (r *Room) Closed() bool {
	r.lock()
	defer r.unlock()
	return r.closed
}

// PlayerName 返回玩家昵称
func (r *Room) PlayerName(id string) (string, bool) {
	r.lock()
	defer r.unlock()
	if p := r.findPlayer(id); p != nil {
		return p.Name, true
	}
	return "", false
}

// View 返回某个玩家视角的状态
func (r *Room) View(viewerID string) protocol.ClientGameState {
	r.lock()
	defer r.unlock()
	return r.buildView(viewerID)
}

func (r *Room) findPlayer(id string) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) findByToken(token string) *Player {
	if token == "" {
		return nil
	}
	for _, p := range r.players {
		if p.SessionToken == token {
			return p
		}
	}
	return nil
}

func (r *Room) host() *Player {
	for _, p := range r.players {
		if p.IsHost {
			return p
		}
	}
	return nil
}

func (r *Room) isHost(id string) bool {
	p := r.findPlayer(id)
	return p != nil && p.IsHost
}

func (r *Room) thief() *Player {
	if r.round == nil {
		return nil
	}
	return r.findPlayer(r.round.thiefID)
}

func (r *Room) playerIDs() []string {
	ids := make([]string, len(r.players))
	for i, p := range r.players {
		ids[i] = p.ID
	}
	return ids
}

func (r *Room) now() time.Time {
	return r.clock.Now()
}

// cancelTimers 取消所有阶段定时器
func (r *Room) cancelTimers() {
	r.phaseTimer.cancel()
	r.dayTimer.cancel()
	r.voteTimer.cancel()
}

// --- 语音 ---

func (r *Room) muteAll() {
	code := r.Code
	r.deferUnlocked(func() { r.voice.MuteAll(code) })
}

func (r *Room) unmuteAll() {
	code := r.Code
	r.deferUnlocked(func() { r.voice.UnmuteAll(code) })
}

func (r *Room) unmuteSubset(ids []string) {
	code := r.Code
	allowed := append([]string(nil), ids...)
	r.deferUnlocked(func() { r.voice.UnmuteSubset(code, allowed) })
}

type noopVoice struct{}

func (noopVoice) MuteAll(string)                {}
func (noopVoice) UnmuteAll(string)              {}
func (noopVoice) UnmuteSubset(string, []string) {}
func (noopVoice) DeleteRoom(string)             {}
