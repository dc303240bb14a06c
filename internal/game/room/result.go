package room

import (
	"context"

	"github.com/palemoky/cheese-thief/internal/protocol"
	"github.com/palemoky/cheese-thief/internal/server/storage"
)

// 胜利文案
var winnerLabels = map[protocol.Team]string{
	protocol.TeamEvil:    "奶酪大盗胜利",
	protocol.TeamGood:    "贪睡鼠胜利",
	protocol.TeamNeutral: "背锅鼠胜利",
}

// ComputeResult 根据票数判定胜负
// 最高票（且大于 0）的玩家中有背锅鼠则背锅鼠胜，其次有大盗则贪睡鼠胜，否则大盗阵营胜
func ComputeResult(players []*Player) protocol.ClientResultState {
	maxVotes := 0
	for _, p := range players {
		maxVotes = max(maxVotes, p.VoteCount)
	}

	var top []*Player
	if maxVotes > 0 {
		for _, p := range players {
			if p.VoteCount == maxVotes {
				top = append(top, p)
			}
		}
	}

	winner := protocol.TeamEvil
	for _, p := range top {
		if p.Role == protocol.RoleScapegoat {
			winner = protocol.TeamNeutral
			break
		}
		if p.Role == protocol.RoleThief {
			winner = protocol.TeamGood
		}
	}

	res := protocol.ClientResultState{
		WinnerTeam:      winner,
		WinnerLabel:     winnerLabels[winner],
		RevealedPlayers: make([]protocol.RevealedPlayer, 0, len(top)),
		AllPlayers:      make([]protocol.FullPlayerInfo, 0, len(players)),
	}
	for _, p := range top {
		res.RevealedPlayers = append(res.RevealedPlayers, protocol.RevealedPlayer{
			ID:        p.ID,
			Name:      p.Name,
			Role:      p.Role,
			VoteCount: p.VoteCount,
		})
	}
	for _, p := range players {
		info := protocol.FullPlayerInfo{
			ID:           p.ID,
			Name:         p.Name,
			Role:         p.Role,
			DiceValues:   append([]int(nil), p.DiceValues...),
			IsAccomplice: p.IsAccomplice,
		}
		if p.VotedFor != "" {
			target := p.VotedFor
			info.VotedFor = &target
		}
		res.AllPlayers = append(res.AllPlayers, info)
	}
	return res
}

// recordResult 异步写入对局记录，失败只记日志
func (r *Room) recordResult(res protocol.ClientResultState) {
	rec := &storage.GameRecord{
		RoomCode:    r.Code,
		PlayerCount: len(r.players),
		WinnerTeam:  res.WinnerTeam,
		WinnerLabel: res.WinnerLabel,
		FinishedAt:  r.now().Unix(),
	}
	for _, p := range r.players {
		switch {
		case p.Role == protocol.RoleThief:
			rec.ThiefName = p.Name
		case p.Role == protocol.RoleScapegoat:
			rec.Scapegoat = p.Name
		}
		if p.IsAccomplice {
			rec.Accomplices = append(rec.Accomplices, p.Name)
		}
	}

	recorder, log := r.recorder, r.log
	r.deferUnlocked(func() {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
			defer cancel()
			if err := recorder.RecordGame(ctx, rec); err != nil {
				log.Warn().Err(err).Msg("⚠️ 记录对局结果失败")
			}
		}()
	})
}
