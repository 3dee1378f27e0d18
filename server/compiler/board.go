package compiler

import (
	"strings"

	"rfpoker-export/server/handlog"
)

// boardCards reconstructs the community cards. Deals from a dealer subject
// in the event log win; the logged board string is the fallback.
func boardCards(hl *handlog.HandLog, dealers map[string]bool) []string {
	var cards []string
	for _, ev := range hl.Events {
		if !ev.IsEvent() || !ev.Is(handlog.Deal) || !dealers[strings.TrimSpace(ev.Subj)] {
			continue
		}
		if c, ok := ev.Card(); ok {
			cards = append(cards, c)
		}
	}
	if len(cards) > 0 {
		return cards
	}
	return hl.Table.BoardCards()
}

// dealerSubjects is the set of subjects allowed to deal the board. Player
// names are removed so a player called "table" cannot deal community cards.
func dealerSubjects(configured []string, hl *handlog.HandLog, tableID string, players []string) map[string]bool {
	set := map[string]bool{}
	subjects := append(append([]string{}, configured...), hl.Table.Name, hl.Table.ID, tableID)
	for _, s := range subjects {
		if s = strings.TrimSpace(s); s != "" {
			set[s] = true
		}
	}
	for _, p := range players {
		delete(set, strings.TrimSpace(p))
	}
	return set
}

// sliceBoard returns the cards visible on a street. The result is always a
// fresh non-nil slice and never longer than the board.
func sliceBoard(board []string, s Street) []string {
	n := s.boardSize()
	if n > len(board) {
		n = len(board)
	}
	out := make([]string, n)
	copy(out, board[:n])
	return out
}
