package handler

import (
	"github.com/palemoky/cheese-thief/internal/protocol"
	"github.com/palemoky/cheese-thief/internal/protocol/codec"
	"github.com/palemoky/cheese-thief/internal/types"
)

// handleDealingReady 确认身份，可附带选择的醒来骰子
func (h *Handler) handleDealingReady(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.DealingReadyPayload](msg)
	if err != nil {
		invalidMessage(client)
		return
	}

	rm, playerID, ok := h.currentRoom(client)
	if !ok {
		return
	}
	rm.DealingReady(playerID, payload.ChosenWakeDice)
}

// handleNightAction 偷看骰子或跳过
func (h *Handler) handleNightAction(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.NightActionPayload](msg)
	if err != nil {
		invalidMessage(client)
		return
	}

	rm, playerID, ok := h.currentRoom(client)
	if !ok {
		return
	}
	sendError(client, rm.NightAction(playerID, payload.Action, payload.TargetID))
}

func (h *Handler) handleNightSteal(client types.ClientInterface) {
	rm, playerID, ok := h.currentRoom(client)
	if !ok {
		return
	}
	rm.NightSteal(playerID)
}

func (h *Handler) handleNightReady(client types.ClientInterface) {
	rm, playerID, ok := h.currentRoom(client)
	if !ok {
		return
	}
	rm.NightReady(playerID)
}

// handleAccompliceSelect 大盗选择同伙
func (h *Handler) handleAccompliceSelect(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.AccompliceSelectPayload](msg)
	if err != nil {
		invalidMessage(client)
		return
	}

	rm, playerID, ok := h.currentRoom(client)
	if !ok {
		return
	}
	sendError(client, rm.AccompliceSelect(playerID, payload.TargetIDs))
}

// handleCastVote 投票
func (h *Handler) handleCastVote(client types.ClientInterface, msg *protocol.Message) {
	payload, err := codec.ParsePayload[protocol.CastVotePayload](msg)
	if err != nil {
		invalidMessage(client)
		return
	}

	rm, playerID, ok := h.currentRoom(client)
	if !ok {
		return
	}
	sendError(client, rm.CastVote(playerID, payload.TargetID))
}
