package compiler

// Report is the rfpoker payload for one hand. Every collection is emitted
// as an array or object, never null, because the receiving endpoint does
// not tolerate missing keys.
type Report struct {
	TournamentID string         `json:"tournament_id"`
	Round        Round          `json:"round"`
	Hands        []Hand         `json:"hands"`
	Streets      []StreetReport `json:"streets"`
	Actions      []Action       `json:"actions"`
	TableID      string         `json:"tableId"`
	Sessions     []any          `json:"sessions"`
}

type Round struct {
	Timestamp     string     `json:"timestamp"`
	Variation     string     `json:"variation"`
	Difficulty    string     `json:"difficulty"`
	Button        int        `json:"button"`
	BlindLevel    BlindLevel `json:"blindLevel"`
	Mode          string     `json:"mode"`
	HandNumber    int        `json:"handNumber"`
	Pot           int64      `json:"pot"`
	IsStarred     bool       `json:"isStarred"`
	Permissions   string     `json:"permissions"`
	TimeLeft      int        `json:"timeLeft"`
	TotalPlayers  int        `json:"totalPlayers"`
	ActivePlayers int        `json:"activePlayers"`
}

type BlindLevel struct {
	Index                int            `json:"index"`
	BombPot              int            `json:"bombPot"`
	Boards               int            `json:"boards"`
	SmallestDenomination int            `json:"smallestDenomination"`
	Blinds               Blinds         `json:"blinds"`
	Antes                map[string]int `json:"antes"`
	Straddles            map[string]int `json:"straddles"`
	Duration             int            `json:"duration"`
	BreakTime            int            `json:"breakTime"`
}

type Blinds struct {
	SB int64 `json:"sb"`
	BB int64 `json:"bb"`
}

// Hand is one seated player's line in the report.
type Hand struct {
	Cards              []string `json:"cards"`
	StartingStack      int64    `json:"startingStack"`
	EndingStack        int64    `json:"endingStack"`
	Seat               int      `json:"seat"`
	Position           string   `json:"position"`
	PlayerNameOverride string   `json:"playerNameOverride"`
	PlayerID           *string  `json:"playerId"`
	SessionID          *string  `json:"sessionId"`
	BuyIn              int64    `json:"buyIn"`
	Bonus              int      `json:"bonus"`
	Tips               int      `json:"tips"`
	IsWinner           bool     `json:"isWinner"`
	IsShowdown         bool     `json:"isShowdown"`
	IsAllIn            bool     `json:"isAllIn"`
	HandClasses        []string `json:"handClasses"`
	Timestamp          string   `json:"timestamp"`
	Permissions        string   `json:"permissions"`
}

type StreetReport struct {
	Cards       []string `json:"cards"`
	Boards      int      `json:"boards"`
	Pot         int64    `json:"pot"`
	Timestamp   string   `json:"timestamp"`
	StreetType  string   `json:"streetType"`
	Equities    []any    `json:"equities"`
	PlayerSeats []int    `json:"playerSeats"`
}

type Action struct {
	Bet         int64  `json:"bet"`
	ActionType  string `json:"actionType"`
	Timestamp   string `json:"timestamp"`
	Call        int64  `json:"call"`
	MinRaise    int64  `json:"minRaise"`
	MaxRaise    int64  `json:"maxRaise"`
	Stack       int64  `json:"stack"`
	ActingSeat  int    `json:"actingSeat"`
	Equities    []any  `json:"equities"`
	Street      string `json:"street"`
	PlayerSeats []int  `json:"playerSeats"`
	Pot         int64  `json:"pot"`
	PowerupType string `json:"powerupType"`
}
