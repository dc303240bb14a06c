package room

import (
	"time"

	"github.com/palemoky/cheese-thief/internal/apperrors"
	"github.com/palemoky/cheese-thief/internal/protocol"
	"github.com/palemoky/cheese-thief/internal/protocol/codec"
)

// enterVoting 讨论结束，开始投票
func (r *Room) enterVoting() {
	r.dayTimer.cancel()
	for _, p := range r.players {
		p.resetVote()
	}

	d := time.Duration(r.settings.VotingSeconds) * time.Second
	r.stage = &votingStage{deadline: r.now().Add(d)}
	r.log.Info().Msg("🗳️ 开始投票")

	r.muteAll()
	r.broadcastState()
	r.voteTimer.arm(r, d, r.voteTimeout)
}

// CastVote 投票，每人一票，不能投自己
func (r *Room) CastVote(playerID, targetID string) error {
	r.lock()
	defer r.unlock()

	if _, ok := r.stage.(*votingStage); !ok {
		return apperrors.ErrWrongPhase
	}
	voter := r.findPlayer(playerID)
	if voter == nil {
		return apperrors.ErrNotInRoom
	}
	if voter.HasVoted {
		return apperrors.ErrInvalidVote
	}
	target := r.findPlayer(targetID)
	if target == nil || target.ID == voter.ID {
		return apperrors.ErrInvalidVote
	}

	voter.HasVoted = true
	voter.VotedFor = target.ID

	voted := r.votedCount()
	r.log.Debug().Str("player", voter.Name).Int("voted", voted).Int("total", len(r.players)).Msg("🗳️ 投票")

	r.broadcast(codec.MustNewMessage(protocol.MsgVoteUpdate, protocol.VoteUpdatePayload{
		VotedCount: voted,
		TotalCount: len(r.players),
	}))

	if r.allVoted() {
		r.voteTimer.cancel()
		r.endVoting()
		return nil
	}
	r.broadcastState()
	return nil
}

func (r *Room) votedCount() int {
	n := 0
	for _, p := range r.players {
		if p.HasVoted {
			n++
		}
	}
	return n
}

func (r *Room) allVoted() bool {
	return r.votedCount() == len(r.players)
}

// voteTimeout 未投票的玩家视为弃权
func (r *Room) voteTimeout() {
	if _, ok := r.stage.(*votingStage); !ok {
		return
	}
	for _, p := range r.players {
		if !p.HasVoted {
			p.HasVoted = true
		}
	}
	r.log.Info().Msg("⏰ 投票超时")
	r.endVoting()
}

// tallyVotes 按仍在房间的玩家的投票重新计票，离开的玩家的票作废
func (r *Room) tallyVotes() {
	for _, p := range r.players {
		p.VoteCount = 0
	}
	for _, p := range r.players {
		if p.VotedFor == "" {
			continue
		}
		if target := r.findPlayer(p.VotedFor); target != nil {
			target.VoteCount++
		}
	}
}

// endVoting 统计票数并结算；调用时所有玩家都已投票或弃权
func (r *Room) endVoting() {
	r.tallyVotes()
	res := ComputeResult(r.players)
	r.stage = &resultStage{result: res}
	r.log.Info().Str("winner", string(res.WinnerTeam)).Msg("🏆 游戏结束")

	r.unmuteAll()
	r.broadcastState()
	r.recordResult(res)
}
