package handlog

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

type tsKind int

const (
	tsMissing tsKind = iota
	tsNumber
	tsString
)

// Timestamp is the "ts" field of a record. The engine writes either a
// sortable string or a number; anything else counts as missing.
type Timestamp struct {
	kind   tsKind
	num    float64
	text   string
	quoted bool
}

func NumberTS(v float64) Timestamp {
	return Timestamp{kind: tsNumber, num: v, text: strconv.FormatFloat(v, 'f', -1, 64)}
}

// StringTS keeps text as the timestamp. Text that reads as a number sorts
// with the numeric timestamps.
func StringTS(s string) Timestamp {
	if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
		return Timestamp{kind: tsNumber, num: f, text: s, quoted: true}
	}
	return Timestamp{kind: tsString, text: s, quoted: true}
}

func (t Timestamp) Missing() bool { return t.kind == tsMissing }

// String is the timestamp as it should appear in the report.
func (t Timestamp) String() string { return t.text }

// Before orders missing < numbers < strings; numbers (including numeric
// text) compare numerically and other strings lexically.
func (t Timestamp) Before(o Timestamp) bool {
	if t.kind != o.kind {
		return t.kind < o.kind
	}
	switch t.kind {
	case tsNumber:
		return t.num < o.num
	case tsString:
		return t.text < o.text
	}
	return false
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	switch {
	case t.kind == tsMissing:
		return []byte("null"), nil
	case t.quoted:
		return json.Marshal(t.text)
	}
	return []byte(t.text), nil
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	*t = rawTimestamp(b)
	return nil
}

func rawTimestamp(raw json.RawMessage) Timestamp {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return Timestamp{}
	}
	if raw[0] == '"' {
		return StringTS(rawString(raw))
	}
	s := rawString(raw)
	if s == "" {
		return Timestamp{}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Timestamp{}
	}
	return Timestamp{kind: tsNumber, num: f, text: s}
}

// Merge interleaves the event and action logs into one sequence ordered by
// timestamp. The sort is stable over events-then-actions, so equal (or
// missing) timestamps keep their source order with events first.
func Merge(events, actions []Record) []Record {
	out := make([]Record, 0, len(events)+len(actions))
	out = append(out, events...)
	out = append(out, actions...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].TS.Before(out[j].TS) })
	return out
}
