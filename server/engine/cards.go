package engine

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

func NewDeck(seed int64) []Card {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := rand.New(rand.NewSource(seed))
	var deck []Card
	for s := 0; s < 4; s++ {
		for rnk := 2; rnk <= 14; rnk++ {
			deck = append(deck, Card{Rank: rnk, Suit: "cdhs"[s]})
		}
	}
	for i := len(deck) - 1; i > 0; i-- {
		j := r.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}

func (c Card) String() string {
	ranks := "  23456789TJQKA"
	return fmt.Sprintf("%c%c", ranks[c.Rank], c.Suit)
}

// ParseCard reads "As", "td" or "10h".
func ParseCard(s string) (Card, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return Card{}, fmt.Errorf("bad card %q", s)
	}
	rs, suit := strings.ToUpper(s[:len(s)-1]), s[len(s)-1]
	if suit >= 'A' && suit <= 'Z' {
		suit += 'a' - 'A'
	}
	if !strings.ContainsRune("cdhs", rune(suit)) {
		return Card{}, fmt.Errorf("bad suit in %q", s)
	}
	var rank int
	switch rs {
	case "T", "10":
		rank = 10
	case "J":
		rank = 11
	case "Q":
		rank = 12
	case "K":
		rank = 13
	case "A":
		rank = 14
	default:
		if len(rs) != 1 || rs[0] < '2' || rs[0] > '9' {
			return Card{}, fmt.Errorf("bad rank in %q", s)
		}
		rank = int(rs[0] - '0')
	}
	return Card{Rank: rank, Suit: suit}, nil
}

func cardsToStr(cs []Card) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.String()
	}
	return out
}
