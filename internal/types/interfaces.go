package types

import (
	"github.com/palemoky/cheese-thief/internal/protocol"
)

// ClientInterface 定义客户端连接接口
// GetID 是连接 ID，每次重连都会变化；GetPlayerID 是房间内的稳定玩家 ID
type ClientInterface interface {
	GetID() string
	GetRoom() string
	SetRoom(code string)
	GetPlayerID() string
	SetPlayerID(id string)
	SendMessage(msg *protocol.Message)
	Close()
}

// ChatLimiter 聊天速率限制器接口
type ChatLimiter interface {
	AllowChat(playerID string) bool
	RemovePlayer(playerID string)
}

// ServerInterface 处理器依赖的服务器状态
type ServerInterface interface {
	IsMaintenanceMode() bool
}
