package protocol

// --- 客户端请求 Payloads ---

// AvatarCount 客户端头像数量，avatar_index 取值 [0, AvatarCount)
const AvatarCount = 8

// CreateRoomPayload 创建房间请求
type CreateRoomPayload struct {
	Name        string `json:"name"`
	AvatarIndex int    `json:"avatar_index"`
}

// JoinRoomPayload 加入房间请求
type JoinRoomPayload struct {
	RoomCode    string `json:"room_code"`
	Name        string `json:"name"`
	AvatarIndex int    `json:"avatar_index"`
}

// ReconnectPayload 断线重连请求
type ReconnectPayload struct {
	SessionToken string `json:"session_token"`
	RoomCode     string `json:"room_code"`
}

// UpdateSettingsPayload 修改设置请求，未提供的字段保持不变
type UpdateSettingsPayload struct {
	UseScapegoat            *bool `json:"use_scapegoat,omitempty"`
	NightActionSeconds      *int  `json:"night_action_seconds,omitempty"`
	AccompliceSelectSeconds *int  `json:"accomplice_select_seconds,omitempty"`
	DayDiscussionSeconds    *int  `json:"day_discussion_seconds,omitempty"`
	VotingSeconds           *int  `json:"voting_seconds,omitempty"`
}

// DealingReadyPayload 发牌阶段确认
type DealingReadyPayload struct {
	ChosenWakeDice *int `json:"chosen_wake_dice,omitempty"`
}

// NightActionKind 夜晚行动类型
type NightActionKind string

const (
	NightActionViewDice NightActionKind = "VIEW_DICE"
	NightActionSkip     NightActionKind = "SKIP"
	NightActionSteal    NightActionKind = "STEAL"
	NightActionWitness  NightActionKind = "WITNESS"
)

// NightActionPayload 夜晚行动请求
type NightActionPayload struct {
	Action   NightActionKind `json:"action"`
	TargetID string          `json:"target_id,omitempty"`
}

// AccompliceSelectPayload 选择同伙请求
type AccompliceSelectPayload struct {
	TargetIDs []string `json:"target_ids"`
}

// SendMessagePayload 聊天请求
type SendMessagePayload struct {
	Content string `json:"content"`
}

// CastVotePayload 投票请求
type CastVotePayload struct {
	TargetID string `json:"target_id"`
}

// PingPayload 心跳请求
type PingPayload struct {
	Timestamp int64 `json:"timestamp"` // 客户端时间戳（毫秒）
}

// --- 服务端响应 Payloads ---

// RoomJoinedPayload 加入房间成功，客户端需保存 session_token 用于重连
type RoomJoinedPayload struct {
	RoomCode     string `json:"room_code"`
	PlayerID     string `json:"player_id"`
	SessionToken string `json:"session_token"`
}

// ReconnectedPayload 重连成功
type ReconnectedPayload struct {
	RoomCode string `json:"room_code"`
	PlayerID string `json:"player_id"`
}

// ChatMessage 聊天消息
type ChatMessage struct {
	ID         string `json:"id"`
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	Content    string `json:"content"`
	Timestamp  int64  `json:"timestamp"`
}

// VoteUpdatePayload 投票进度（只包含人数）
type VoteUpdatePayload struct {
	VotedCount int `json:"voted_count"`
	TotalCount int `json:"total_count"`
}

// PlayerDisconnectedPayload 玩家掉线通知
type PlayerDisconnectedPayload struct {
	PlayerID string `json:"player_id"`
	Name     string `json:"name"`
	Timeout  int    `json:"timeout"` // 等待重连超时（秒）
}

// VoiceTokenPayload 语音令牌，未配置语音服务时为 null
type VoiceTokenPayload struct {
	Token *string `json:"token"`
	URL   *string `json:"url"`
}

// PongPayload 心跳响应
type PongPayload struct {
	ClientTimestamp int64 `json:"client_timestamp"` // 客户端发送的时间戳
	ServerTimestamp int64 `json:"server_timestamp"` // 服务器时间戳（毫秒）
}

// ErrorPayload 错误响应
type ErrorPayload struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
