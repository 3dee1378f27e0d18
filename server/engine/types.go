package engine

type Seat string

const (
	SB Seat = "SB"
	BB Seat = "BB"
)

// ActionKind values are the names the table engine writes to the action log.
type ActionKind string

const (
	Fold  ActionKind = "FOLD"
	Check ActionKind = "CHECK"
	Call  ActionKind = "CALL"
	Raise ActionKind = "RAISE_TO"
)

type Action struct {
	Seat   Seat       `json:"seat"`
	Kind   ActionKind `json:"action"`
	Amount int        `json:"to,omitempty"`
}

type Card struct {
	Rank int
	Suit byte
} // e.g. "As" => rank 14, suit 's'
