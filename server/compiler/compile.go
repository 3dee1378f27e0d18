// Package compiler turns a finished hand's event and action logs into the
// rfpoker hand report.
//
// Compile is pure: it reads the hand log and the live roster, keeps all of
// its state on the stack of one call, and can run concurrently for
// different tables.
package compiler

import (
	"strings"
	"time"

	"rfpoker-export/server/engine"
	"rfpoker-export/server/handlog"
	"rfpoker-export/server/table"

	"github.com/shopspring/decimal"
)

const (
	DefaultStreetAuthority = "sidefx"
	DefaultBonus           = 5
)

var DefaultDealerSubjects = []string{"dealer", "table"}

// Classifier names the best hand made from hole and board cards, or "".
type Classifier func(hole, board []string) string

type Options struct {
	TournamentID string
	// StreetAuthority is the only subject whose NEW_STREET marker advances the street.
	StreetAuthority string
	// DealerSubjects may deal community cards (the logged table name and id always can).
	DealerSubjects []string
	Bonus          int
	Classify       Classifier
	Now            func() time.Time
}

func (o Options) withDefaults() Options {
	if strings.TrimSpace(o.StreetAuthority) == "" {
		o.StreetAuthority = DefaultStreetAuthority
	}
	if o.DealerSubjects == nil {
		o.DealerSubjects = DefaultDealerSubjects
	}
	if o.Classify == nil {
		o.Classify = engine.Classify
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Input is everything the compiler reads about one table.
type Input struct {
	TableID string
	Players []table.Player
	History table.History
}

// Compile builds the report for the hand that just finished. It returns nil
// when there is nothing to report yet: fewer than two recorded hands or no
// log for the current one.
func Compile(in Input, opts Options) *Report {
	opts = opts.withDefaults()
	if in.History == nil || in.History.Len() < 2 {
		return nil
	}
	hl, ok := in.History.CurrentHand()
	if !ok || hl == nil {
		return nil
	}
	now := opts.Now().UTC().Format(time.RFC3339Nano)
	players := newRoster(in.Players)

	// one pass drives the street tracker, the extractor and the tagger so
	// every action sees the street as of its own position in the log
	tracker := NewTracker(opts.StreetAuthority)
	extractor := newHandExtractor(players)
	actions := []Action{}
	for _, rec := range handlog.Merge(hl.Events, hl.Actions) {
		street := tracker.Observe(rec)
		extractor.observe(rec)
		if !rec.IsAction() {
			continue
		}
		if a, ok := tagAction(rec, street, players); ok {
			actions = append(actions, a)
		}
	}

	tableID := in.TableID
	if tableID == "" {
		tableID = hl.Table.ID
	}
	board := boardCards(hl, dealerSubjects(opts.DealerSubjects, hl, tableID, players.names()))
	final := tracker.Current()

	return &Report{
		TournamentID: opts.TournamentID,
		Round:        assembleRound(hl, in.Players, now),
		Hands:        assembleHands(hl, players, extractor, sliceBoard(board, final), final, opts, now),
		Streets:      assembleStreets(board, tracker.Reached(), now),
		Actions:      actions,
		TableID:      tableID,
		Sessions:     []any{},
	}
}

func assembleRound(hl *handlog.HandLog, players []table.Player, now string) Round {
	pot := decimal.Zero
	active := 0
	for _, p := range players {
		pot = pot.Add(p.Wagers)
		if p.Active {
			active++
		}
	}
	return Round{
		Timestamp:  now,
		Variation:  hl.Table.Variation,
		Difficulty: "ADVANCED",
		Button:     hl.Table.Button,
		BlindLevel: BlindLevel{
			Boards:               1,
			SmallestDenomination: 25,
			Blinds:               Blinds{SB: hl.Table.SB.IntPart(), BB: hl.Table.BB.IntPart()},
			Antes:                map[string]int{},
			Straddles:            map[string]int{},
		},
		Mode:          "CASH",
		HandNumber:    hl.Table.HandNumber,
		Pot:           pot.IntPart(),
		Permissions:   "PRIVATE",
		TotalPlayers:  len(players),
		ActivePlayers: active,
	}
}

func assembleHands(hl *handlog.HandLog, players roster, x *handExtractor, board []string, final Street, opts Options, now string) []Hand {
	out := make([]Hand, 0, len(players.order))
	for _, p := range players.order {
		name := strings.TrimSpace(p.Username)
		tr, ok := x.traces[name]
		if !ok {
			tr = &playerTrace{}
		}
		cards := append([]string{}, tr.cards...)
		class := ""
		if len(cards) > 0 && len(cards)+len(board) >= 5 {
			class = opts.Classify(cards, board)
		}
		h := Hand{
			Cards:              cards,
			StartingStack:      startingStack(hl.Players, p).IntPart(),
			EndingStack:        p.Stack.IntPart(),
			Seat:               p.Position,
			Position:           table.PositionLabel(p.Position),
			PlayerNameOverride: p.Username,
			Bonus:              opts.Bonus,
			IsWinner:           name != "" && name == x.winner,
			IsShowdown:         final == River && !tr.folded && len(cards) > 0,
			IsAllIn:            tr.allIn,
			HandClasses:        []string{class},
			Timestamp:          now,
			Permissions:        "PRIVATE",
		}
		if p.User != nil {
			id := p.User.ID
			h.PlayerID = &id
			h.BuyIn = p.User.DefaultBuyin.Mul(hl.Table.BB).IntPart()
		}
		out = append(out, h)
	}
	return out
}

func assembleStreets(board []string, reached []Street, now string) []StreetReport {
	out := make([]StreetReport, 0, len(reached))
	for _, s := range reached {
		out = append(out, StreetReport{
			Cards:       sliceBoard(board, s),
			Boards:      1,
			Timestamp:   now,
			StreetType:  s.String(),
			Equities:    []any{},
			PlayerSeats: []int{},
		})
	}
	return out
}
