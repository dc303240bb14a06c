package protocol

// 错误码
const (
	ErrCodeUnknown        = 1000
	ErrCodeInvalidMsg     = 1001
	ErrCodeRateLimit      = 1002 // 速率限制
	ErrCodeInternal       = 1003 // 服务器内部错误
	ErrCodeMaintenance    = 1004 // 服务器维护中
	ErrCodeRoomNotFound   = 2001
	ErrCodeRoomFull       = 2002
	ErrCodeNotInRoom      = 2003
	ErrCodeGameStarted    = 2004 // 游戏已开始
	ErrCodeSessionExpired = 2005 // 会话已过期
	ErrCodeInvalidName    = 2006
	ErrCodeSpaceExhausted = 2007 // 房间号耗尽
	ErrCodeNotHost        = 3001
	ErrCodePlayerCount    = 3002
	ErrCodeWrongPhase     = 3003
	ErrCodeInvalidTarget  = 3004
	ErrCodeInvalidVote    = 3005
	ErrCodeInvalidSelect  = 3006
	ErrCodeInvalidChat    = 3007
)

// ErrorMessages 错误码对应的消息
var ErrorMessages = map[int]string{
	ErrCodeUnknown:        "未知错误",
	ErrCodeInvalidMsg:     "无效的消息格式",
	ErrCodeRateLimit:      "请求过于频繁",
	ErrCodeInternal:       "服务器内部错误，请重试",
	ErrCodeMaintenance:    "服务器维护中，暂停创建和加入房间",
	ErrCodeRoomNotFound:   "房间不存在",
	ErrCodeRoomFull:       "房间已满或游戏已开始",
	ErrCodeNotInRoom:      "您不在房间中",
	ErrCodeGameStarted:    "游戏已开始",
	ErrCodeSessionExpired: "会话已过期",
	ErrCodeInvalidName:    "昵称长度需要在 1-16 个字符之间",
	ErrCodeSpaceExhausted: "创建房间失败",
	ErrCodeNotHost:        "只有房主可以执行此操作",
	ErrCodePlayerCount:    "玩家人数需要在 4-8 人之间",
	ErrCodeWrongPhase:     "当前阶段不能执行此操作",
	ErrCodeInvalidTarget:  "无效的目标",
	ErrCodeInvalidVote:    "无效的投票",
	ErrCodeInvalidSelect:  "无效的同伙选择",
	ErrCodeInvalidChat:    "消息长度需要在 1-200 个字符之间",
}
