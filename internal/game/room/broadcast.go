package room

import (
	"github.com/palemoky/cheese-thief/internal/protocol"
	"github.com/palemoky/cheese-thief/internal/protocol/codec"
)

// broadcast 向所有在线玩家发送同一条消息
func (r *Room) broadcast(msg *protocol.Message) {
	for _, p := range r.players {
		if !p.send(msg) {
			r.log.Debug().Str("player", p.Name).Str("type", string(msg.Type)).Msg("跳过离线玩家")
		}
	}
}

// broadcastState 向每个在线玩家推送各自视角的状态
func (r *Room) broadcastState() {
	for _, p := range r.players {
		if !p.IsConnected() {
			continue
		}
		msg, err := codec.NewMessage(protocol.MsgGameState, r.buildView(p.ID))
		if err != nil {
			r.log.Error().Err(err).Str("player", p.Name).Msg("状态编码失败")
			continue
		}
		p.send(msg)
	}
}
