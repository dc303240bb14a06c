package protocol

import "encoding/json"

// Message 基础消息结构
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MessageType 消息类型
type MessageType string

// 客户端 → 服务端 消息类型
const (
	// 连接操作
	MsgReconnect MessageType = "reconnect" // 断线重连
	MsgPing      MessageType = "ping"      // 心跳 ping

	// 房间操作
	MsgCreateRoom     MessageType = "create_room"     // 创建房间
	MsgJoinRoom       MessageType = "join_room"       // 加入房间
	MsgLeaveRoom      MessageType = "leave_room"      // 离开房间
	MsgUpdateSettings MessageType = "update_settings" // 修改设置（房主）
	MsgStartGame      MessageType = "start_game"      // 开始游戏（房主）
	MsgBackToLobby    MessageType = "back_to_lobby"   // 返回大厅（房主）

	// 游戏操作
	MsgDealingReady     MessageType = "dealing_ready"     // 确认身份和骰子
	MsgNightAction      MessageType = "night_action"      // 夜晚行动（偷看/跳过）
	MsgNightSteal       MessageType = "night_steal"       // 偷奶酪
	MsgNightReady       MessageType = "night_ready"       // 夜晚行动完毕
	MsgAccompliceSelect MessageType = "accomplice_select" // 大盗选择同伙
	MsgSendMessage      MessageType = "send_message"      // 白天发言
	MsgCastVote         MessageType = "cast_vote"         // 投票

	// 语音
	MsgRequestVoiceToken MessageType = "request_voice_token" // 申请语音令牌
)

// 服务端 → 客户端 消息类型
const (
	MsgRoomJoined         MessageType = "room_joined"         // 加入房间成功（含会话令牌）
	MsgReconnected        MessageType = "reconnected"         // 重连成功
	MsgGameState          MessageType = "game_state"          // 完整游戏状态
	MsgChatMessage        MessageType = "chat_message"        // 聊天消息
	MsgVoteUpdate         MessageType = "vote_update"         // 投票进度
	MsgPlayerDisconnected MessageType = "player_disconnected" // 玩家掉线通知
	MsgVoiceToken         MessageType = "voice_token"         // 语音令牌
	MsgPong               MessageType = "pong"                // 心跳 pong
	MsgError              MessageType = "error"               // 错误消息
)
