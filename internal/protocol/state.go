package protocol

// Phase 游戏阶段
type Phase string

const (
	PhaseLobby      Phase = "LOBBY"
	PhaseDealing    Phase = "DEALING"
	PhaseNight      Phase = "NIGHT"
	PhaseAccomplice Phase = "ACCOMPLICE"
	PhaseDay        Phase = "DAY"
	PhaseVoting     Phase = "VOTING"
	PhaseResult     Phase = "RESULT"
)

// Role 角色
type Role string

const (
	RoleThief     Role = "THIEF"     // 奶酪大盗
	RoleSleepy    Role = "SLEEPY"    // 贪睡鼠
	RoleScapegoat Role = "SCAPEGOAT" // 背锅鼠
)

// Team 阵营
type Team string

const (
	TeamGood    Team = "GOOD"
	TeamEvil    Team = "EVIL"
	TeamNeutral Team = "NEUTRAL"
)

// GameSettings 房间设置
type GameSettings struct {
	UseScapegoat            bool `json:"use_scapegoat"`
	NightActionSeconds      int  `json:"night_action_seconds"`
	AccompliceSelectSeconds int  `json:"accomplice_select_seconds"`
	DayDiscussionSeconds    int  `json:"day_discussion_seconds"`
	VotingSeconds           int  `json:"voting_seconds"`
}

// ClientGameState 某个玩家视角下的完整游戏状态
type ClientGameState struct {
	RoomCode   string                 `json:"room_code"`
	Phase      Phase                  `json:"phase"`
	Players    []ClientPlayer         `json:"players"`
	Settings   GameSettings           `json:"settings"`
	Night      *ClientNightState      `json:"night"`
	Accomplice *ClientAccompliceState `json:"accomplice"`
	Day        *ClientDayState        `json:"day"`
	Vote       *ClientVoteState       `json:"vote"`
	Result     *ClientResultState     `json:"result"`
}

// ClientPlayer 脱敏后的玩家信息，不可见字段为 null
type ClientPlayer struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	AvatarIndex  int     `json:"avatar_index"`
	IsHost       bool    `json:"is_host"`
	IsConnected  bool    `json:"is_connected"`
	HasVoted     bool    `json:"has_voted"`
	Role         *Role   `json:"role"`
	DiceValues   []int   `json:"dice_values"`
	IsAccomplice *bool   `json:"is_accomplice"`
	VoteCount    *int    `json:"vote_count"`
	VotedFor     *string `json:"voted_for"`
}

// NightSeat 夜晚座位（仅醒着的玩家可见）
type NightSeat struct {
	PlayerID   string `json:"player_id"`
	PlayerName string `json:"player_name"`
	SeatIndex  int    `json:"seat_index"`
	IsAwake    bool   `json:"is_awake"`
	IsSelf     bool   `json:"is_self"`
}

// ViewedDice 偷看到的骰子
type ViewedDice struct {
	TargetID   string `json:"target_id"`
	TargetName string `json:"target_name"`
	Value      int    `json:"value"`
}

// NightViewDiceAction 本轮偷看动作
type NightViewDiceAction struct {
	ViewerID   string `json:"viewer_id"`
	ViewerName string `json:"viewer_name"`
	TargetID   string `json:"target_id"`
	TargetName string `json:"target_name"`
	Value      int    `json:"value"`
	Timestamp  int64  `json:"timestamp"`
}

// ClientNightState 夜晚阶段视图
type ClientNightState struct {
	CurrentDice        int                  `json:"current_dice"`
	IsYourTurn         bool                 `json:"is_your_turn"`
	AwakePlayerIDs     []string             `json:"awake_player_ids"`
	CanViewDice        bool                 `json:"can_view_dice"`
	ViewedDice         *ViewedDice          `json:"viewed_dice"`
	CheeseStealVisible bool                 `json:"cheese_steal_visible"`
	StealerName        *string              `json:"stealer_name"`
	StealerID          *string              `json:"stealer_id"`
	RemainingSeconds   int                  `json:"remaining_seconds"`
	CanSteal           bool                 `json:"can_steal"`
	HasStolen          bool                 `json:"has_stolen"`
	HasActed           bool                 `json:"has_acted"`
	StealTimestamp     *int64               `json:"steal_timestamp"`
	Seats              []NightSeat          `json:"seats"`
	ViewDiceAction     *NightViewDiceAction `json:"view_dice_action"`
}

// Candidate 同伙候选人
type Candidate struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ClientAccompliceState 同伙阶段视图
type ClientAccompliceState struct {
	IsThiefSelecting     bool        `json:"is_thief_selecting"`
	SelectCount          int         `json:"select_count"`
	Candidates           []Candidate `json:"candidates"`
	RemainingSeconds     int         `json:"remaining_seconds"`
	YouAreAccomplice     bool        `json:"you_are_accomplice"`
	KnownThiefID         *string     `json:"known_thief_id"`
	KnownThiefName       *string     `json:"known_thief_name"`
	KnownAccompliceIDs   []string    `json:"known_accomplice_ids"`
	KnownAccompliceNames []string    `json:"known_accomplice_names"`
}

// ClientDayState 白天阶段视图
type ClientDayState struct {
	Messages         []ChatMessage `json:"messages"`
	RemainingSeconds int           `json:"remaining_seconds"`
}

// ClientVoteState 投票阶段视图
type ClientVoteState struct {
	RemainingSeconds int     `json:"remaining_seconds"`
	VotedCount       int     `json:"voted_count"`
	TotalCount       int     `json:"total_count"`
	YourVote         *string `json:"your_vote"`
}

// RevealedPlayer 得票最高的玩家
type RevealedPlayer struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	VoteCount int    `json:"vote_count"`
}

// FullPlayerInfo 结算时公开的完整信息
type FullPlayerInfo struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Role         Role    `json:"role"`
	DiceValues   []int   `json:"dice_values"`
	IsAccomplice bool    `json:"is_accomplice"`
	VotedFor     *string `json:"voted_for"`
}

// ClientResultState 结算视图
type ClientResultState struct {
	WinnerTeam      Team             `json:"winner_team"`
	WinnerLabel     string           `json:"winner_label"`
	RevealedPlayers []RevealedPlayer `json:"revealed_players"`
	AllPlayers      []FullPlayerInfo `json:"all_players"`
}
