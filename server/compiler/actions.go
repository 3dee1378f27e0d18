package compiler

import (
	"strings"

	"rfpoker-export/server/handlog"
)

// tagAction turns an action record into a report action attributed to the
// street in effect at that point of the replay. Actions by players who are
// no longer seated are dropped.
func tagAction(r handlog.Record, street Street, players roster) (Action, bool) {
	p, ok := players.lookup(r.Subj)
	if !ok {
		return Action{}, false
	}
	return Action{
		Bet:         r.Amount(),
		ActionType:  strings.TrimSpace(r.Name),
		Timestamp:   r.TS.String(),
		ActingSeat:  p.Position,
		Equities:    []any{},
		Street:      street.String(),
		PlayerSeats: []int{},
		PowerupType: "NONE",
	}, true
}
