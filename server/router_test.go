package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"rfpoker-export/server/compiler"
	"rfpoker-export/server/engine"
	"rfpoker-export/server/handlog"
	"rfpoker-export/server/sidebetz"
	"rfpoker-export/server/store"
	"rfpoker-export/server/table"
)

type memStore struct {
	mu         sync.Mutex
	tables     map[string]handlog.TableInfo
	players    map[string]map[string]table.Player
	logs       map[string][]*handlog.HandLog
	deliveries []store.Delivery
}

func newMemStore() *memStore {
	return &memStore{
		tables:  map[string]handlog.TableInfo{},
		players: map[string]map[string]table.Player{},
		logs:    map[string][]*handlog.HandLog{},
	}
}

func (m *memStore) Ping(ctx context.Context) error { return nil }

func (m *memStore) UpsertTable(ctx context.Context, id string, info handlog.TableInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[id] = info
	return nil
}

func (m *memStore) UpsertPlayer(ctx context.Context, tableID string, p table.Player) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tables[tableID]; !ok {
		return errors.New("unknown table")
	}
	if m.players[tableID] == nil {
		m.players[tableID] = map[string]table.Player{}
	}
	m.players[tableID][p.Username] = p
	return nil
}

func (m *memStore) LoadPlayers(ctx context.Context, tableID string) ([]table.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []table.Player{}
	for _, p := range m.players[tableID] {
		out = append(out, p)
	}
	// seat order, like the SQL query
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Position < out[j-1].Position; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

func (m *memStore) InsertHandLog(ctx context.Context, tableID string, hl *handlog.HandLog) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs[tableID] = append(m.logs[tableID], hl)
	return int64(len(m.logs[tableID])), nil
}

func (m *memStore) LoadHistory(ctx context.Context, tableID string) (table.Recorded, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	logs := m.logs[tableID]
	rec := table.Recorded{Count: len(logs)}
	if len(logs) > 0 {
		rec.Current = logs[len(logs)-1]
	}
	return rec, nil
}

func (m *memStore) RecordDelivery(ctx context.Context, d store.Delivery) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deliveries = append(m.deliveries, d)
	return nil
}

func (m *memStore) RecentDeliveries(ctx context.Context, tableID string, limit int) ([]store.DeliveryRow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []store.DeliveryRow{}
	for _, d := range m.deliveries {
		if d.TableID == tableID {
			out = append(out, store.DeliveryRow{HandNumber: d.HandNumber, Target: d.Target, Sent: d.Sent})
		}
	}
	return out, nil
}

var quiet = log.New(io.Discard, "", 0)

func testExporter(t *testing.T, db tableStore, delivery sidebetz.Config) *exporter {
	t.Helper()
	ex := &exporter{
		opts: compiler.Options{
			TournamentID: "tour-1",
			Now:          func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) },
		},
		client: sidebetz.New(delivery, nil, quiet),
		file:   filepath.Join(t.TempDir(), "rfpoker.json"),
		log:    quiet,
	}
	if db != nil {
		ex.db = db
	}
	return ex
}

func playedHand(t *testing.T, n int) (*handlog.HandLog, []table.Player) {
	t.Helper()
	cfg := engine.Config{SB: 5, BB: 10, StartStack: 1000, Table: "t-1", Authority: "sidefx", Dealer: "dealer"}
	h := engine.NewHand("t-1", n, cfg, engine.NewDeck(int64(n)), "alice", "bob")
	check := func(h *engine.Hand, p *engine.Player, legal []engine.ActionKind) (engine.ActionKind, int) {
		for _, k := range legal {
			if k == engine.Check {
				return k, 0
			}
		}
		return engine.Call, 0
	}
	if _, err := h.Play(check); err != nil {
		t.Fatalf("play: %v", err)
	}
	return h.Log(), demoRoster(h)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := Router(testExporter(t, newMemStore(), sidebetz.Config{}))
	rec := do(t, h, http.MethodGet, "/api/health", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	var got map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &got)
	if got["ok"] != true || got["db"] != true || got["delivery"] != false {
		t.Fatalf("unexpected health %v", got)
	}
}

func TestCompileEndpoint(t *testing.T) {
	h := Router(testExporter(t, nil, sidebetz.Config{}))
	hl, players := playedHand(t, 2)

	rec := do(t, h, http.MethodPost, "/api/compile", table.Snapshot{TableID: "t-1", Players: players, HandsRecorded: 1, Hand: hl})
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 for the first hand, got %d", rec.Code)
	}

	rec = do(t, h, http.MethodPost, "/api/compile", table.Snapshot{TableID: "t-1", Players: players, HandsRecorded: 2, Hand: hl})
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	var rep compiler.Report
	if err := json.Unmarshal(rec.Body.Bytes(), &rep); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if rep.TableID != "t-1" || rep.TournamentID != "tour-1" || len(rep.Hands) != 2 || len(rep.Streets) != 4 {
		t.Fatalf("unexpected report %+v", rep)
	}
	if rep.Round.Timestamp != "2026-01-02T03:04:05Z" {
		t.Fatalf("unexpected timestamp %q", rep.Round.Timestamp)
	}

	req := httptest.NewRequest(http.MethodPost, "/api/compile", bytes.NewBufferString("{not json"))
	bad := httptest.NewRecorder()
	h.ServeHTTP(bad, req)
	if bad.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", bad.Code)
	}
}

func TestTableRoutesNeedDB(t *testing.T) {
	h := Router(testExporter(t, nil, sidebetz.Config{}))
	for _, path := range []string{"/api/tables/t-1/report", "/api/tables/t-1/deliveries"} {
		if rec := do(t, h, http.MethodGet, path, nil); rec.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s: expected 503, got %d", path, rec.Code)
		}
	}
}

func TestRecordThenExport(t *testing.T) {
	var posted int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posted++
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	db := newMemStore()
	ex := testExporter(t, db, sidebetz.Config{Enabled: true, URL: srv.URL})
	h := Router(ex)

	if rec := do(t, h, http.MethodGet, "/api/tables/t-1/report", nil); rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on an empty table, got %d", rec.Code)
	}

	for n := 1; n <= 2; n++ {
		hl, players := playedHand(t, n)
		rec := do(t, h, http.MethodPost, "/api/tables/t-1/hands", map[string]any{"players": players, "hand": hl})
		if rec.Code != http.StatusCreated {
			t.Fatalf("record hand %d: status %d: %s", n, rec.Code, rec.Body.String())
		}
	}
	if rec := do(t, h, http.MethodPost, "/api/tables/t-1/hands", map[string]any{"players": []any{}}); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without a hand, got %d", rec.Code)
	}

	rec := do(t, h, http.MethodGet, "/api/tables/t-1/report", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("report: status %d", rec.Code)
	}
	if posted != 0 {
		t.Fatalf("report must not deliver")
	}

	rec = do(t, h, http.MethodPost, "/api/tables/t-1/export", nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("export: status %d: %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Report   compiler.Report `json:"report"`
		Delivery deliveryView    `json:"delivery"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if !body.Delivery.Sent || body.Delivery.Status != http.StatusOK || body.Delivery.File == "" {
		t.Fatalf("unexpected delivery %+v", body.Delivery)
	}
	if body.Report.Round.HandNumber != 2 || posted != 1 {
		t.Fatalf("unexpected export: hand %d posted %d", body.Report.Round.HandNumber, posted)
	}
	if len(db.deliveries) != 1 || db.deliveries[0].HandNumber != 2 || !db.deliveries[0].Sent {
		t.Fatalf("unexpected audit %+v", db.deliveries)
	}

	rec = do(t, h, http.MethodGet, "/api/tables/t-1/deliveries", nil)
	var rows []store.DeliveryRow
	_ = json.Unmarshal(rec.Body.Bytes(), &rows)
	if rec.Code != http.StatusOK || len(rows) != 1 {
		t.Fatalf("unexpected deliveries %d %+v", rec.Code, rows)
	}
}

func TestExportSurvivesDeliveryFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	db := newMemStore()
	ex := testExporter(t, db, sidebetz.Config{Enabled: true, URL: srv.URL})
	hl, players := playedHand(t, 5)

	rep, view := ex.export(context.Background(), "t-1", players, table.Recorded{Count: 5, Current: hl})
	if rep == nil {
		t.Fatalf("expected a report despite the failed delivery")
	}
	if view.Sent || view.Status != http.StatusServiceUnavailable || view.Error == "" {
		t.Fatalf("unexpected delivery view %+v", view)
	}
	if len(db.deliveries) != 1 || db.deliveries[0].Err == nil {
		t.Fatalf("expected the failure to be audited, got %+v", db.deliveries)
	}
}

func TestExportDisabledSkipsAudit(t *testing.T) {
	db := newMemStore()
	ex := testExporter(t, db, sidebetz.Config{Enabled: false})
	hl, players := playedHand(t, 3)

	rep, view := ex.export(context.Background(), "t-1", players, table.Recorded{Count: 3, Current: hl})
	if rep == nil || view.Enabled || view.Sent {
		t.Fatalf("unexpected export %v %+v", rep == nil, view)
	}
	if view.File == "" {
		t.Fatalf("expected the report file to be written")
	}
	if len(db.deliveries) != 0 {
		t.Fatalf("disabled delivery must not be audited")
	}
}
