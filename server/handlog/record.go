package handlog

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Kind says which of the two upstream logs a record came from.
type Kind int

const (
	KindEvent Kind = iota
	KindAction
)

// Well-known record names emitted by the table engine.
const (
	Deal      = "DEAL"
	NewStreet = "NEW_STREET"
	Win       = "WIN"
	Fold      = "FOLD"
)

// Record is a typed view over one raw log entry. Both events
// ({"event": ..., "subj": ..., "args": {...}, "ts": ...}) and actions
// ({"action": ..., ...}) decode into it; every accessor has one fixed
// fallback so callers never deal with missing keys.
type Record struct {
	Kind Kind
	Name string
	Subj string
	Args map[string]any
	TS   Timestamp
}

func NewEvent(name, subj string, args map[string]any, ts Timestamp) Record {
	return Record{Kind: KindEvent, Name: name, Subj: subj, Args: args, TS: ts}
}

func NewAction(name, subj string, args map[string]any, ts Timestamp) Record {
	return Record{Kind: KindAction, Name: name, Subj: subj, Args: args, TS: ts}
}

func (r Record) IsEvent() bool  { return r.Kind == KindEvent }
func (r Record) IsAction() bool { return r.Kind == KindAction }

// Is reports whether the record carries the given name, ignoring case and padding.
func (r Record) Is(name string) bool {
	return strings.EqualFold(strings.TrimSpace(r.Name), name)
}

// From reports whether subj emitted the record.
func (r Record) From(subj string) bool {
	s := strings.TrimSpace(r.Subj)
	return s != "" && s == strings.TrimSpace(subj)
}

// Arg returns args[key] or nil.
func (r Record) Arg(key string) any {
	if r.Args == nil {
		return nil
	}
	return r.Args[key]
}

// Card returns the dealt card value, if the payload carries one.
func (r Record) Card() (string, bool) {
	s, ok := r.Arg("card").(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}

// Amount is the "amt" arg in whole chips; 0 when absent or malformed.
func (r Record) Amount() int64 { return Chips(r.Arg("amt")) }

// Flag reads a boolean-ish arg ("all_in": true, "1", 1 ...).
func (r Record) Flag(key string) bool {
	switch v := r.Arg(key).(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && b
	case json.Number:
		return !Decimal(v).IsZero()
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	}
	return false
}

func (r *Record) UnmarshalJSON(b []byte) error {
	*r = Record{}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		// not an object: keep the zero record rather than failing the whole log
		return nil
	}
	if raw, ok := fields["action"]; ok {
		r.Kind = KindAction
		r.Name = rawString(raw)
	} else {
		r.Kind = KindEvent
		r.Name = rawString(fields["event"])
	}
	r.Subj = rawString(fields["subj"])
	r.Args = rawObject(fields["args"])
	r.TS = rawTimestamp(fields["ts"])
	return nil
}

func (r Record) MarshalJSON() ([]byte, error) {
	key := "event"
	if r.Kind == KindAction {
		key = "action"
	}
	out := map[string]any{
		key:    r.Name,
		"subj": r.Subj,
		"args": r.Args,
	}
	if r.Args == nil {
		out["args"] = map[string]any{}
	}
	if !r.TS.Missing() {
		out["ts"] = r.TS
	}
	return json.Marshal(out)
}

// rawString renders a scalar JSON value as text: strings as-is, numbers by
// their literal, anything else as "".
func rawString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		return string(raw)
	}
	return ""
}

func rawInt(raw json.RawMessage) int {
	return int(Chips(rawNumber(raw)))
}

// rawNumber returns a value Chips understands, or nil.
func rawNumber(raw json.RawMessage) any {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil
	}
	if raw[0] == '"' {
		return rawString(raw)
	}
	if s := rawString(raw); s != "" {
		return json.Number(s)
	}
	return nil
}

func rawObject(raw json.RawMessage) map[string]any {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil
	}
	return m
}
