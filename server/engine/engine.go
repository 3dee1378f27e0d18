package engine

import (
	"fmt"
	"strings"

	"rfpoker-export/server/handlog"
)

// Config describes a heads-up table. Table, Authority and Dealer are the
// subjects written to the log for table echoes, street changes and board
// deals.
type Config struct {
	SB, BB, StartStack int
	Table              string
	Authority          string
	Dealer             string
}

type Player struct {
	Name      string
	Seat      Seat
	Stack     int
	Committed int
	Wagered   int
	Hole      []Card
	Folded    bool
	AllIn     bool
}

// Position is the seat index the player is logged under.
func (p *Player) Position() int {
	if p.Seat == SB {
		return 0
	}
	return 1
}

// Hand plays one heads-up hand and records it the way the live table
// engine does: an event log, an action log and a start-of-hand snapshot,
// all sharing one clock.
type Hand struct {
	ID       string
	Cfg      Config
	Deck     []Card
	Board    []Card
	Pot      int
	Street   string
	SB, BB   *Player
	ToAct    Seat
	CurBet   int
	MinRaise int
	History  []Action
	Number   int

	acted int
	clock int
	log   handlog.HandLog
}

func NewHand(id string, number int, cfg Config, deck []Card, sbName, bbName string) *Hand {
	h := &Hand{
		ID: id, Number: number, Cfg: cfg, Deck: deck, Street: "preflop",
		SB: &Player{Name: sbName, Seat: SB, Stack: cfg.StartStack},
		BB: &Player{Name: bbName, Seat: BB, Stack: cfg.StartStack},
	}
	for _, p := range []*Player{h.SB, h.BB} {
		h.log.Players = append(h.log.Players, handlog.PlayerSnapshot{
			Username: p.Name,
			Position: p.Position(),
			Stack:    handlog.Decimal(p.Stack),
		})
	}
	h.postBlinds()
	h.dealHole()
	h.ToAct = SB        // HU preflop: SB first
	h.MinRaise = cfg.BB // postflop increment; preflop min to is set on first raise
	return h
}

func (h *Hand) postBlinds() {
	h.bet(h.SB, h.Cfg.SB)
	h.event("POST", h.SB.Name, map[string]any{"amt": chips(h.SB.Committed)})
	h.bet(h.BB, h.Cfg.BB)
	h.event("POST", h.BB.Name, map[string]any{"amt": chips(h.BB.Committed)})
}

func (h *Hand) dealHole() {
	for i := 0; i < 2; i++ {
		for _, p := range []*Player{h.SB, h.BB} {
			c := h.pop()
			p.Hole = append(p.Hole, c)
			h.event(handlog.Deal, p.Name, map[string]any{"card": c.String()})
		}
	}
}

func (h *Hand) pop() Card { c := h.Deck[0]; h.Deck = h.Deck[1:]; return c }

func (h *Hand) tick() handlog.Timestamp {
	h.clock++
	return handlog.NumberTS(float64(h.clock))
}

func (h *Hand) event(name, subj string, args map[string]any) {
	h.log.Events = append(h.log.Events, handlog.NewEvent(name, subj, args, h.tick()))
}

func (h *Hand) action(kind ActionKind, p *Player, amount int) {
	args := map[string]any{"amt": chips(amount)}
	if p.AllIn {
		args["all_in"] = true
	}
	h.log.Actions = append(h.log.Actions, handlog.NewAction(string(kind), p.Name, args, h.tick()))
}

// chips renders an amount the way the table engine does, as a decimal string.
func chips(n int) string { return fmt.Sprintf("%d.00", n) }

func (h *Hand) bet(p *Player, amt int) {
	if amt >= p.Stack {
		amt = p.Stack
		p.AllIn = true
	}
	p.Stack -= amt
	p.Committed += amt
	p.Wagered += amt
	if p.Committed > h.CurBet {
		h.CurBet = p.Committed
	}
	h.Pot += amt
}

func (h *Hand) other(p *Player) *Player {
	if p.Seat == SB {
		return h.BB
	}
	return h.SB
}

func (h *Hand) actor() *Player {
	if h.ToAct == SB {
		return h.SB
	}
	return h.BB
}

func (h *Hand) owes(p *Player) int {
	if d := h.CurBet - p.Committed; d > 0 {
		return d
	}
	return 0
}

func (h *Hand) Legal() []ActionKind {
	a := h.actor()
	if a.Folded || a.AllIn || h.roundDone() {
		return nil
	}
	var out []ActionKind
	if h.owes(a) == 0 {
		out = append(out, Check)
	} else {
		out = append(out, Fold, Call)
	}
	if !h.other(a).AllIn {
		out = append(out, Raise)
	}
	return out
}

func (h *Hand) Apply(kind ActionKind, amount int) error {
	a := h.actor()
	switch kind {
	case Fold:
		a.Folded = true
		h.History = append(h.History, Action{Seat: a.Seat, Kind: Fold})
		h.action(Fold, a, 0)
	case Check:
		if h.owes(a) != 0 {
			return fmt.Errorf("cannot check")
		}
		h.History = append(h.History, Action{Seat: a.Seat, Kind: Check})
		h.action(Check, a, 0)
	case Call:
		to := h.owes(a)
		h.bet(a, to)
		h.History = append(h.History, Action{Seat: a.Seat, Kind: Call, Amount: to})
		h.action(Call, a, to)
	case Raise:
		allIn := amount >= a.Stack+a.Committed
		if allIn {
			amount = a.Stack + a.Committed
		}
		if amount < h.CurBet+h.MinRaise && !allIn {
			return fmt.Errorf("min raise to %d", h.CurBet+h.MinRaise)
		}
		prevCur := h.CurBet
		h.bet(a, amount-a.Committed)
		if inc := a.Committed - prevCur; inc > h.MinRaise {
			h.MinRaise = inc
		}
		h.History = append(h.History, Action{Seat: a.Seat, Kind: Raise, Amount: a.Committed})
		h.action(Raise, a, a.Committed)
	default:
		return fmt.Errorf("unknown action %q", kind)
	}
	h.acted++
	h.ToAct = h.other(a).Seat
	return nil
}

// roundDone reports whether the current betting round is closed.
func (h *Hand) roundDone() bool {
	if h.SB.Folded || h.BB.Folded {
		return true
	}
	if h.SB.AllIn || h.BB.AllIn {
		return (h.owes(h.SB) == 0 || h.SB.AllIn) && (h.owes(h.BB) == 0 || h.BB.AllIn)
	}
	return h.owes(h.SB) == 0 && h.owes(h.BB) == 0 && h.acted >= 2
}

// NextStreet deals the next street. The street change is announced by the
// authority subject and echoed by the table, as the live engine does.
func (h *Hand) NextStreet() {
	var n int
	switch h.Street {
	case "preflop":
		n, h.Street = 3, "flop"
	case "flop":
		n, h.Street = 1, "turn"
	case "turn":
		n, h.Street = 1, "river"
	default:
		return
	}
	h.event(handlog.NewStreet, h.Cfg.Authority, nil)
	h.event(handlog.NewStreet, h.Cfg.Table, nil)
	for i := 0; i < n; i++ {
		c := h.pop()
		h.Board = append(h.Board, c)
		h.event(handlog.Deal, h.Cfg.Dealer, map[string]any{"card": c.String()})
	}
	h.CurBet = 0
	h.SB.Committed = 0
	h.BB.Committed = 0
	h.MinRaise = h.Cfg.BB
	h.acted = 0
	h.ToAct = BB // postflop in HU
}

func (h *Hand) Done() bool {
	return h.SB.Folded || h.BB.Folded || (h.Street == "river" && h.roundDone())
}

// Showdown returns the winning seat, or "" on a tie.
func (h *Hand) Showdown() Seat {
	if h.SB.Folded {
		return BB
	}
	if h.BB.Folded {
		return SB
	}
	sb := best5of7(append(append([]Card{}, h.SB.Hole...), h.Board...))
	bb := best5of7(append(append([]Card{}, h.BB.Hole...), h.Board...))
	switch {
	case better(sb, bb):
		return SB
	case better(bb, sb):
		return BB
	default:
		return "" // tie
	}
}

// Policy picks the next action for the player to act.
type Policy func(h *Hand, p *Player, legal []ActionKind) (ActionKind, int)

const maxActionsPerStreet = 20

// Play runs the hand to completion with the given policy and settles the pot.
// A street that does not close within maxActionsPerStreet actions is an error.
func (h *Hand) Play(policy Policy) (Seat, error) {
	for {
		for i := 0; ; i++ {
			legal := h.Legal()
			if len(legal) == 0 {
				break
			}
			if i >= maxActionsPerStreet {
				return "", fmt.Errorf("%s: betting still open after %d actions", h.Street, maxActionsPerStreet)
			}
			kind, amt := policy(h, h.actor(), legal)
			if err := h.Apply(kind, amt); err != nil {
				return "", fmt.Errorf("%s %s: %w", h.ToAct, kind, err)
			}
		}
		if h.SB.Folded || h.BB.Folded || h.Street == "river" {
			break
		}
		h.NextStreet()
	}
	return h.Settle(), nil
}

// Settle pays the pot and logs the winners. A tie splits the pot, odd chip
// to the small blind, and logs a WIN for each player.
func (h *Hand) Settle() Seat {
	w := h.Showdown()
	switch w {
	case SB, BB:
		p := h.SB
		if w == BB {
			p = h.BB
		}
		p.Stack += h.Pot
		h.event(handlog.Win, p.Name, map[string]any{"amt": chips(h.Pot)})
	default:
		half := h.Pot / 2
		h.SB.Stack += h.Pot - half
		h.BB.Stack += half
		h.event(handlog.Win, h.SB.Name, map[string]any{"amt": chips(h.Pot - half)})
		h.event(handlog.Win, h.BB.Name, map[string]any{"amt": chips(half)})
	}
	h.Pot = 0
	return w
}

// Log returns the recorded hand in the upstream filtered-log shape.
func (h *Hand) Log() *handlog.HandLog {
	out := h.log
	out.Events = append([]handlog.Record{}, h.log.Events...)
	out.Actions = append([]handlog.Record{}, h.log.Actions...)
	out.Players = append([]handlog.PlayerSnapshot{}, h.log.Players...)
	out.Table = handlog.TableInfo{
		ID:         h.ID,
		Name:       h.Cfg.Table,
		Variation:  "NLHE",
		SB:         handlog.Decimal(h.Cfg.SB),
		BB:         handlog.Decimal(h.Cfg.BB),
		Button:     h.SB.Position(),
		HandNumber: h.Number,
		Board:      strings.Join(cardsToStr(h.Board), ","),
	}
	return &out
}
