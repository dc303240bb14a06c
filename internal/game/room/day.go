package room

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/palemoky/cheese-thief/internal/apperrors"
	"github.com/palemoky/cheese-thief/internal/protocol"
	"github.com/palemoky/cheese-thief/internal/protocol/codec"
)

const maxChatLength = 200

// enterDay 天亮，开放讨论
func (r *Room) enterDay() {
	r.phaseTimer.cancel()
	d := time.Duration(r.settings.DayDiscussionSeconds) * time.Second
	r.stage = &dayStage{deadline: r.now().Add(d)}
	r.log.Info().Msg("☀️ 天亮了")

	r.unmuteAll()
	r.broadcastState()
	r.dayTimer.arm(r, d, r.enterVoting)
}

// SendMessage 白天发言，内容去除首尾空白后需在 1-200 个字符之间
func (r *Room) SendMessage(playerID, content string) error {
	r.lock()
	defer r.unlock()

	st, ok := r.stage.(*dayStage)
	if !ok {
		return apperrors.ErrWrongPhase
	}
	p := r.findPlayer(playerID)
	if p == nil {
		return apperrors.ErrNotInRoom
	}

	content = strings.TrimSpace(content)
	if n := utf8.RuneCountInString(content); n == 0 || n > maxChatLength {
		return apperrors.ErrInvalidChat
	}

	msg := protocol.ChatMessage{
		ID:         uuid.NewString(),
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Content:    content,
		Timestamp:  r.now().UnixMilli(),
	}
	st.messages = append(st.messages, msg)
	r.broadcast(codec.MustNewMessage(protocol.MsgChatMessage, msg))
	return nil
}
