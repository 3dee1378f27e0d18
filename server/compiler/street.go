package compiler

import "rfpoker-export/server/handlog"

type Street int

const (
	Preflop Street = iota
	Flop
	Turn
	River
)

var streetNames = [...]string{"PREFLOP", "FLOP", "TURN", "RIVER"}

func (s Street) String() string {
	if s < Preflop || s > River {
		return ""
	}
	return streetNames[s]
}

// boardSize is how many community cards are visible on the street.
func (s Street) boardSize() int {
	switch s {
	case Flop:
		return 3
	case Turn:
		return 4
	case River:
		return 5
	}
	return 0
}

// Tracker replays the merged log and follows the current street. Only a
// NEW_STREET event from the authority subject moves it; the same marker
// from any other subject is an echo and ignored.
type Tracker struct {
	authority string
	cur       Street
}

func NewTracker(authority string) *Tracker {
	return &Tracker{authority: authority}
}

// Observe consumes one record and returns the street in effect after it.
func (t *Tracker) Observe(r handlog.Record) Street {
	if r.IsEvent() && r.Is(handlog.NewStreet) && r.From(t.authority) && t.cur < River {
		t.cur++
	}
	return t.cur
}

func (t *Tracker) Current() Street { return t.cur }

// Reached lists the streets entered so far, always starting at PREFLOP.
func (t *Tracker) Reached() []Street {
	out := make([]Street, 0, t.cur+1)
	for s := Preflop; s <= t.cur; s++ {
		out = append(out, s)
	}
	return out
}
