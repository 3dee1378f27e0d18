package handlog

import (
	"encoding/json"
	"testing"
)

func TestMergeOrdersByTimestamp(t *testing.T) {
	events := []Record{
		NewEvent("DEAL", "alice", map[string]any{"card": "As"}, NumberTS(1)),
		NewEvent(NewStreet, "sidefx", nil, NumberTS(5)),
	}
	actions := []Record{
		NewAction("CALL", "alice", map[string]any{"amt": "2"}, NumberTS(3)),
		NewAction("CHECK", "bob", nil, NumberTS(7)),
	}
	got := Merge(events, actions)
	want := []string{"DEAL", "CALL", NewStreet, "CHECK"}
	if len(got) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(got))
	}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("position %d: want %s got %s", i, name, got[i].Name)
		}
	}
	if events[1].Name != NewStreet || actions[0].Name != "CALL" {
		t.Fatalf("inputs were modified")
	}
}

func TestMergeTiesKeepEventsFirst(t *testing.T) {
	events := []Record{
		NewEvent("E1", "x", nil, StringTS("2024-01-01T00:00:01")),
		NewEvent("E2", "x", nil, StringTS("2024-01-01T00:00:01")),
	}
	actions := []Record{
		NewAction("A1", "x", nil, StringTS("2024-01-01T00:00:01")),
	}
	got := Merge(events, actions)
	if got[0].Name != "E1" || got[1].Name != "E2" || got[2].Name != "A1" {
		t.Fatalf("unexpected tie order: %s %s %s", got[0].Name, got[1].Name, got[2].Name)
	}
}

func TestMergeMissingTimestampsSortFirst(t *testing.T) {
	events := []Record{NewEvent("LATE", "x", nil, NumberTS(10))}
	actions := []Record{
		NewAction("NO_TS_1", "x", nil, Timestamp{}),
		NewAction("NO_TS_2", "x", nil, Timestamp{}),
	}
	got := Merge(events, actions)
	if got[0].Name != "NO_TS_1" || got[1].Name != "NO_TS_2" || got[2].Name != "LATE" {
		t.Fatalf("unexpected order: %s %s %s", got[0].Name, got[1].Name, got[2].Name)
	}
}

func TestMergeNumericTextSortsWithNumbers(t *testing.T) {
	events := []Record{
		NewEvent("E3", "x", nil, NumberTS(3)),
		NewEvent("E10", "x", nil, NumberTS(10)),
	}
	actions := []Record{
		NewAction("A2", "x", nil, StringTS("2")),
		NewAction("A7", "x", nil, StringTS("7.5")),
		NewAction("LATE", "x", nil, StringTS("2024-01-01T00:00:00")),
	}
	got := Merge(events, actions)
	want := []string{"A2", "E3", "A7", "E10", "LATE"}
	for i, name := range want {
		if got[i].Name != name {
			t.Fatalf("position %d: want %s got %s", i, name, got[i].Name)
		}
	}
	if got[0].TS.String() != "2" {
		t.Fatalf("numeric text should keep its form, got %q", got[0].TS.String())
	}
	b, err := json.Marshal(got[0].TS)
	if err != nil || string(b) != `"2"` {
		t.Fatalf("numeric text should stay quoted, got %s %v", b, err)
	}
	if StringTS("NaN").Before(NumberTS(1)) {
		t.Fatalf("NaN text must not sort as a number")
	}
}

func TestDecodeTolerantLog(t *testing.T) {
	raw := `{
		"events": [
			{"event": "DEAL", "subj": "alice", "args": {"card": "Kd"}, "ts": 1.5},
			{"event": "NEW_STREET", "subj": 42, "args": "oops"},
			"garbage"
		],
		"actions": [
			{"action": "RAISE_TO", "subj": "bob", "args": {"amt": "150.75", "all_in": true}, "ts": "2"}
		],
		"players": [{"username": "alice", "position": 3, "stack": "1000.50"}, {"username": "bob", "stack": null}],
		"table": {"table_type": "NLHE", "sb": 1, "bb": "2.00", "btn_idx": 4, "hand_number": "17", "board": ["Ah", "Kd", "2c"]}
	}`
	var hl HandLog
	if err := json.Unmarshal([]byte(raw), &hl); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(hl.Events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(hl.Events))
	}
	if c, ok := hl.Events[0].Card(); !ok || c != "Kd" {
		t.Fatalf("unexpected card %q", c)
	}
	if hl.Events[0].TS.String() != "1.5" {
		t.Fatalf("unexpected ts %q", hl.Events[0].TS.String())
	}
	if hl.Events[1].Subj != "42" || hl.Events[1].Args != nil || !hl.Events[1].TS.Missing() {
		t.Fatalf("unexpected degraded event: %+v", hl.Events[1])
	}
	if hl.Events[2].Name != "" {
		t.Fatalf("expected zero record for garbage, got %+v", hl.Events[2])
	}
	a := hl.Actions[0]
	if !a.IsAction() || a.Amount() != 150 || !a.Flag("all_in") {
		t.Fatalf("unexpected action: %+v", a)
	}
	if got := hl.Players[0].Stack.IntPart(); got != 1000 {
		t.Fatalf("unexpected stack %d", got)
	}
	if !hl.Players[1].Stack.IsZero() {
		t.Fatalf("expected zero stack for null")
	}
	if hl.Table.HandNumber != 17 || hl.Table.Button != 4 || hl.Table.BB.IntPart() != 2 {
		t.Fatalf("unexpected table: %+v", hl.Table)
	}
	if cards := hl.Table.BoardCards(); len(cards) != 3 || cards[2] != "2c" {
		t.Fatalf("unexpected board %v", cards)
	}
}

func TestRecordJSONRoundTripKeepsKind(t *testing.T) {
	in := NewAction("CALL", "bob", map[string]any{"amt": "20"}, NumberTS(12))
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out Record
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.IsAction() || out.Name != "CALL" || out.Amount() != 20 || out.TS.String() != "12" {
		t.Fatalf("unexpected record after round trip: %+v", out)
	}
}

func TestChips(t *testing.T) {
	cases := []struct {
		in   any
		want int64
	}{
		{nil, 0},
		{"", 0},
		{"abc", 0},
		{"100", 100},
		{" 99.99 ", 99},
		{"-5.5", -5},
		{json.Number("0.30000000000000004"), 0},
		{json.Number("1e3"), 1000},
		{2.9, 2},
		{7, 7},
		{[]string{"1"}, 0},
	}
	for _, tc := range cases {
		if got := Chips(tc.in); got != tc.want {
			t.Fatalf("Chips(%#v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
