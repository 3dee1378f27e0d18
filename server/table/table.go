package table

import (
	"rfpoker-export/server/handlog"

	"github.com/shopspring/decimal"
)

// UserProfile is the account linked to a seated player, when there is one.
type UserProfile struct {
	ID           string          `json:"id"`
	DefaultBuyin decimal.Decimal `json:"default_buyin"` // in big blinds
}

// Player is the live table's view of a seated player. It reflects the
// state after the hand settled.
type Player struct {
	ID       string          `json:"id,omitempty"`
	Username string          `json:"username"`
	Position int             `json:"position"`
	Stack    decimal.Decimal `json:"stack"`
	Wagers   decimal.Decimal `json:"wagers"`
	Active   bool            `json:"active"`
	User     *UserProfile    `json:"user,omitempty"`
}

// History is the table's hand history as seen by the exporter.
type History interface {
	// Len is the number of hands recorded so far.
	Len() int
	// CurrentHand returns the filtered log of the hand that just finished.
	CurrentHand() (*handlog.HandLog, bool)
}

// Recorded is a History captured at one point in time.
type Recorded struct {
	Count   int
	Current *handlog.HandLog
}

func (r Recorded) Len() int { return r.Count }

func (r Recorded) CurrentHand() (*handlog.HandLog, bool) {
	return r.Current, r.Current != nil
}

var positions = [...]string{"SB", "BB", "UTG", "UTG1", "UTG2", "LJ", "HJ", "CO", "BTN"}

// PositionLabel maps a seat index to its position label.
func PositionLabel(seat int) string {
	if seat < 0 || seat >= len(positions) {
		return "UNKNOWN"
	}
	return positions[seat]
}

// Snapshot is a table captured to a file or posted over HTTP: the roster
// after the hand plus the recorded history.
type Snapshot struct {
	TableID       string           `json:"table_id"`
	Players       []Player         `json:"players"`
	HandsRecorded int              `json:"hands_recorded"`
	Hand          *handlog.HandLog `json:"hand"`
}

func (s Snapshot) History() Recorded {
	return Recorded{Count: s.HandsRecorded, Current: s.Hand}
}
