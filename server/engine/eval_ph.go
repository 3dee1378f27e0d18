package engine

import (
	poker "github.com/paulhankin/poker"
)

// Library-based hand rank. Larger score = stronger hand.
type handRank struct{ score int16 }

func better(a, b handRank) bool { return a.score > b.score }

// Convert our engine.Card -> library card.
func toPH(c Card) poker.Card {
	var s poker.Suit
	switch c.Suit {
	case 'c':
		s = poker.Club
	case 'd':
		s = poker.Diamond
	case 'h':
		s = poker.Heart
	case 's':
		s = poker.Spade
	default:
		s = poker.Club
	}
	// Our ranks: 2..14 (Ace=14). Library: 1..13 (Ace=1).
	var r poker.Rank
	if c.Rank == 14 {
		r = poker.Rank(1)
	} else {
		r = poker.Rank(c.Rank)
	}
	card, _ := poker.MakeCard(s, r)
	return card
}

func best5of7(cards []Card) handRank {
	score, _ := bestFive(cards)
	return handRank{score: score}
}

// bestFive picks the strongest 5-card subset of 5..7 cards.
func bestFive(cards []Card) (int16, [5]poker.Card) {
	n := len(cards)
	pcs := make([]poker.Card, n)
	for i, c := range cards {
		pcs[i] = toPH(c)
	}
	var best [5]poker.Card
	bestScore := int16(-32768)
	choose := [5]int{}
	var five [5]poker.Card
	var rec func(start, k int)
	rec = func(start, k int) {
		if k == 5 {
			for i := 0; i < 5; i++ {
				five[i] = pcs[choose[i]]
			}
			if score := poker.Eval5(&five); score > bestScore {
				bestScore = score
				best = five
			}
			return
		}
		for i := start; i <= n-(5-k); i++ {
			choose[k] = i
			rec(i+1, k+1)
		}
	}
	rec(0, 0)
	return bestScore, best
}

// Classify names the best five-card hand that hole and board cards make,
// e.g. "full house, kings full of twos". It returns "" when fewer than five
// cards are known or any card does not parse.
func Classify(hole, board []string) string {
	all := make([]Card, 0, len(hole)+len(board))
	for _, s := range append(append([]string{}, hole...), board...) {
		c, err := ParseCard(s)
		if err != nil {
			return ""
		}
		all = append(all, c)
	}
	if len(all) < 5 || len(all) > 7 || hasDuplicate(all) {
		return ""
	}
	_, five := bestFive(all)
	desc, err := poker.Describe(five[:])
	if err != nil {
		return ""
	}
	return desc
}

func hasDuplicate(cs []Card) bool {
	seen := map[Card]bool{}
	for _, c := range cs {
		if seen[c] {
			return true
		}
		seen[c] = true
	}
	return false
}
