package compiler

import (
	"strings"

	"rfpoker-export/server/handlog"
	"rfpoker-export/server/table"

	"github.com/shopspring/decimal"
)

// roster indexes the live players by username.
type roster struct {
	order  []table.Player
	byName map[string]int
}

func newRoster(players []table.Player) roster {
	r := roster{order: players, byName: make(map[string]int, len(players))}
	for i, p := range players {
		name := strings.TrimSpace(p.Username)
		if name == "" {
			continue
		}
		if _, dup := r.byName[name]; !dup {
			r.byName[name] = i
		}
	}
	return r
}

func (r roster) lookup(subj string) (table.Player, bool) {
	i, ok := r.byName[strings.TrimSpace(subj)]
	if !ok {
		return table.Player{}, false
	}
	return r.order[i], true
}

func (r roster) names() []string {
	out := make([]string, 0, len(r.order))
	for _, p := range r.order {
		out = append(out, p.Username)
	}
	return out
}

// playerTrace is what the log says about one player.
type playerTrace struct {
	cards  []string
	allIn  bool
	folded bool
}

// handExtractor collects dealt cards and outcomes per player while the
// merged log is replayed.
type handExtractor struct {
	roster roster
	traces map[string]*playerTrace
	winner string
}

func newHandExtractor(r roster) *handExtractor {
	return &handExtractor{roster: r, traces: map[string]*playerTrace{}}
}

func (x *handExtractor) trace(name string) *playerTrace {
	t, ok := x.traces[name]
	if !ok {
		t = &playerTrace{}
		x.traces[name] = t
	}
	return t
}

func (x *handExtractor) observe(r handlog.Record) {
	subj := strings.TrimSpace(r.Subj)
	if subj == "" {
		return
	}
	if _, ok := x.roster.lookup(subj); !ok {
		return
	}
	if r.IsEvent() && r.Is(handlog.Win) && x.winner == "" {
		x.winner = subj
	}
	t := x.trace(subj)
	if r.IsEvent() && r.Is(handlog.Deal) {
		if c, ok := r.Card(); ok {
			t.cards = append(t.cards, c)
		}
	}
	if r.Flag("all_in") {
		t.allIn = true
	}
	if r.Is(handlog.Fold) {
		t.folded = true
	}
}

// startingStack finds the hand-start stack for a live player; zero when the
// player was not in the snapshot.
func startingStack(snaps []handlog.PlayerSnapshot, p table.Player) decimal.Decimal {
	name := strings.TrimSpace(p.Username)
	for _, s := range snaps {
		if name != "" && strings.TrimSpace(s.Username) == name {
			return s.Stack
		}
	}
	id := strings.TrimSpace(p.ID)
	for _, s := range snaps {
		if id != "" && strings.TrimSpace(s.ID) == id {
			return s.Stack
		}
	}
	return decimal.Zero
}
