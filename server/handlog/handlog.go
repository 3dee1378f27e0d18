package handlog

import (
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
)

// HandLog is the filtered view of one hand as recorded by the table engine.
type HandLog struct {
	Events  []Record         `json:"events"`
	Actions []Record         `json:"actions"`
	Players []PlayerSnapshot `json:"players"`
	Table   TableInfo        `json:"table"`
}

// PlayerSnapshot is a player's state captured when the hand started.
type PlayerSnapshot struct {
	ID       string          `json:"id,omitempty"`
	Username string          `json:"username"`
	Position int             `json:"position"`
	Stack    decimal.Decimal `json:"stack"`
}

func (p *PlayerSnapshot) UnmarshalJSON(b []byte) error {
	*p = PlayerSnapshot{}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil
	}
	p.ID = rawString(fields["id"])
	p.Username = rawString(fields["username"])
	p.Position = rawInt(fields["position"])
	p.Stack = Decimal(rawNumber(fields["stack"]))
	return nil
}

// TableInfo is the table metadata logged alongside the hand.
type TableInfo struct {
	ID         string          `json:"id,omitempty"`
	Name       string          `json:"name,omitempty"`
	Variation  string          `json:"table_type"`
	SB         decimal.Decimal `json:"sb"`
	BB         decimal.Decimal `json:"bb"`
	Button     int             `json:"btn_idx"`
	HandNumber int             `json:"hand_number"`
	Board      string          `json:"board,omitempty"`
}

func (t *TableInfo) UnmarshalJSON(b []byte) error {
	*t = TableInfo{}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil
	}
	t.ID = rawString(fields["id"])
	t.Name = rawString(fields["name"])
	t.Variation = rawString(fields["table_type"])
	t.SB = Decimal(rawNumber(fields["sb"]))
	t.BB = Decimal(rawNumber(fields["bb"]))
	t.Button = rawInt(fields["btn_idx"])
	t.HandNumber = rawInt(fields["hand_number"])
	t.Board = boardString(fields["board"])
	return nil
}

// BoardCards splits the comma-separated board field.
func (t TableInfo) BoardCards() []string {
	var out []string
	for _, c := range strings.Split(t.Board, ",") {
		if c = strings.TrimSpace(c); c != "" {
			out = append(out, c)
		}
	}
	return out
}

// boardString accepts either "Ah,Kd,2c" or ["Ah","Kd","2c"].
func boardString(raw json.RawMessage) string {
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, ",")
	}
	return rawString(raw)
}
