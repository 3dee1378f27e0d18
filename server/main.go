package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	mrand "math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"time"

	"rfpoker-export/server/compiler"
	"rfpoker-export/server/config"
	"rfpoker-export/server/engine"
	"rfpoker-export/server/sidebetz"
	"rfpoker-export/server/store"
	"rfpoker-export/server/table"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	_ = godotenv.Load()

	var migrate, demo bool
	var compileFile string
	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--migrate":
			migrate = true
		case "--demo":
			demo = true
		case "--compile":
			if i+1 >= len(args) {
				log.Fatal("--compile needs a snapshot file")
			}
			i++
			compileFile = args[i]
		}
	}

	cfg := config.FromEnv()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go watchSignals(cancel)

	if migrate {
		config.MustEnv("DATABASE_URL")
	}
	var db *store.DB
	if cfg.DatabaseURL != "" {
		p, err := store.Open(cfg.DatabaseURL)
		if err != nil {
			if migrate {
				log.Fatal(err)
			}
			log.Printf("DB disabled (open failed): %v", err)
		} else {
			db = p
			defer db.Close(context.Background())
			if migrate || cfg.AutoMigrate {
				if err := store.Migrate(ctx, db); err != nil {
					log.Fatal(err)
				}
				log.Println("migrated")
			}
		}
	}
	if migrate {
		return
	}

	ex := &exporter{
		opts:   cfg.CompileOptions(),
		client: sidebetz.New(cfg.Sidebetz, nil, log.Default()),
		file:   cfg.ExportFile,
		log:    log.Default(),
	}
	if db != nil {
		ex.db = db
	}

	switch {
	case compileFile != "":
		if err := runCompile(ctx, ex, compileFile); err != nil {
			log.Fatal(err)
		}
	case demo:
		if err := runDemo(ctx, ex, atoiEnv("DEMO_HANDS", 3), int64(atoiEnv("DEMO_SEED", 1))); err != nil {
			log.Fatal(err)
		}
	default:
		srv := &http.Server{Addr: ":" + cfg.Port, Handler: Router(ex), ReadTimeout: 15 * time.Second, WriteTimeout: 15 * time.Second}
		go func() {
			<-ctx.Done()
			shutdown, done := context.WithTimeout(context.Background(), 5*time.Second)
			defer done()
			_ = srv.Shutdown(shutdown)
		}()
		log.Printf("listening on http://localhost:%s (Ctrl+C to stop)", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}
}

func watchSignals(cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c
	cancel()
}

func atoiEnv(k string, def int) int { return config.AtoiDef(os.Getenv(k), def) }

// runCompile exports a table snapshot read from a JSON file and prints the
// report.
func runCompile(ctx context.Context, ex *exporter, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var snap table.Snapshot
	if err := json.Unmarshal(b, &snap); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	rep, view := ex.export(ctx, snap.TableID, snap.Players, snap.History())
	if rep == nil {
		log.Printf("%s: nothing to report (hands_recorded=%d)", path, snap.HandsRecorded)
		return nil
	}
	logDelivery(view)
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

// runDemo plays heads-up hands on the simulator and exports each one the
// way a live table would after it settles.
func runDemo(ctx context.Context, ex *exporter, hands int, seed int64) error {
	const tableID = "demo-table"
	authority := ex.opts.StreetAuthority
	if authority == "" {
		authority = compiler.DefaultStreetAuthority
	}
	cfg := engine.Config{
		SB: 5, BB: 10, StartStack: 1000,
		Table:     "demo",
		Authority: authority,
		Dealer:    "dealer",
	}
	rng := mrand.New(mrand.NewSource(seed))
	policy := func(h *engine.Hand, p *engine.Player, legal []engine.ActionKind) (engine.ActionKind, int) {
		k := legal[rng.Intn(len(legal))]
		if k == engine.Raise {
			return k, h.CurBet + h.MinRaise
		}
		return k, 0
	}

	for n := 1; n <= hands; n++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		h := engine.NewHand(fmt.Sprintf("%s-%d", tableID, n), n, cfg, engine.NewDeck(seed+int64(n)), "alice", "bob")
		if _, err := h.Play(policy); err != nil {
			return fmt.Errorf("hand %d: %w", n, err)
		}
		players := demoRoster(h)
		hist := table.Recorded{Count: n, Current: h.Log()}
		if ex.db != nil {
			if _, err := recordHand(ctx, ex.db, tableID, players, hist.Current); err != nil {
				log.Printf("store hand %d: %v", n, err)
			}
		}
		rep, view := ex.export(ctx, tableID, players, hist)
		if rep == nil {
			log.Printf("hand %d: nothing to report yet", n)
			continue
		}
		logDelivery(view)
		var winners []string
		for _, hd := range rep.Hands {
			if hd.IsWinner {
				winners = append(winners, hd.PlayerNameOverride)
			}
		}
		log.Printf("hand %d: streets=%d actions=%d pot=%d winner=%s",
			n, len(rep.Streets), len(rep.Actions), rep.Round.Pot, strings.Join(winners, ","))
	}
	return nil
}

func demoRoster(h *engine.Hand) []table.Player {
	out := make([]table.Player, 0, 2)
	for _, p := range []*engine.Player{h.SB, h.BB} {
		out = append(out, table.Player{
			Username: p.Name,
			Position: p.Position(),
			Stack:    decimal.NewFromInt(int64(p.Stack)),
			Wagers:   decimal.NewFromInt(int64(p.Wagered)),
			Active:   !p.Folded,
		})
	}
	return out
}

func logDelivery(v deliveryView) {
	switch {
	case !v.Enabled:
		log.Printf("delivery disabled; report written to %q", v.File)
	case v.Sent:
		log.Printf("delivered to %s (request %s, status %d)", v.Target, v.RequestID, v.Status)
	default:
		log.Printf("delivery to %s failed: %s", v.Target, v.Error)
	}
}
