package main

import (
	"context"
	"log"

	"rfpoker-export/server/compiler"
	"rfpoker-export/server/handlog"
	"rfpoker-export/server/sidebetz"
	"rfpoker-export/server/store"
	"rfpoker-export/server/table"
)

// tableStore is the part of store.DB the exporter and the API use.
type tableStore interface {
	Ping(ctx context.Context) error
	UpsertTable(ctx context.Context, id string, info handlog.TableInfo) error
	UpsertPlayer(ctx context.Context, tableID string, p table.Player) error
	LoadPlayers(ctx context.Context, tableID string) ([]table.Player, error)
	InsertHandLog(ctx context.Context, tableID string, hl *handlog.HandLog) (int64, error)
	LoadHistory(ctx context.Context, tableID string) (table.Recorded, error)
	RecordDelivery(ctx context.Context, d store.Delivery) error
	RecentDeliveries(ctx context.Context, tableID string, limit int) ([]store.DeliveryRow, error)
}

type exporter struct {
	opts   compiler.Options
	client *sidebetz.Client
	file   string
	db     tableStore // nil without DATABASE_URL
	log    *log.Logger
}

type deliveryView struct {
	Enabled   bool   `json:"enabled"`
	Target    string `json:"target"`
	RequestID string `json:"request_id,omitempty"`
	Sent      bool   `json:"sent"`
	Status    int    `json:"status,omitempty"`
	Error     string `json:"error,omitempty"`
	File      string `json:"file,omitempty"`
}

// export compiles the table's latest hand, persists it to the export file
// and hands it to the delivery client. Failures after compilation are
// logged and reported, never returned.
func (e *exporter) export(ctx context.Context, tableID string, players []table.Player, hist table.History) (*compiler.Report, deliveryView) {
	view := deliveryView{Enabled: e.client.Enabled(), Target: e.client.URL()}
	rep := compiler.Compile(compiler.Input{TableID: tableID, Players: players, History: hist}, e.opts)
	if rep == nil {
		return nil, view
	}
	if e.file != "" {
		if err := sidebetz.WriteFile(e.file, rep); err != nil {
			e.log.Printf("export file: %v", err)
		} else {
			view.File = e.file
		}
	}

	out := e.client.Send(ctx, rep)
	view.RequestID, view.Sent, view.Status = out.RequestID, out.Sent, out.Status
	if out.Err != nil {
		view.Error = out.Err.Error()
	}
	if e.db != nil && view.Enabled {
		d := store.Delivery{
			TableID:    rep.TableID,
			HandNumber: rep.Round.HandNumber,
			RequestID:  out.RequestID,
			Target:     e.client.URL(),
			Sent:       out.Sent,
			Status:     out.Status,
			Err:        out.Err,
		}
		if err := e.db.RecordDelivery(ctx, d); err != nil {
			e.log.Printf("record delivery for %s hand %d: %v", d.TableID, d.HandNumber, err)
		}
	}
	return rep, view
}

// exportStored loads a table from the store and exports its latest hand.
func (e *exporter) exportStored(ctx context.Context, tableID string) (*compiler.Report, deliveryView, error) {
	players, hist, err := loadTable(ctx, e.db, tableID)
	if err != nil {
		return nil, deliveryView{}, err
	}
	rep, view := e.export(ctx, tableID, players, hist)
	return rep, view, nil
}

func loadTable(ctx context.Context, db tableStore, tableID string) ([]table.Player, table.Recorded, error) {
	players, err := db.LoadPlayers(ctx, tableID)
	if err != nil {
		return nil, table.Recorded{}, err
	}
	hist, err := db.LoadHistory(ctx, tableID)
	if err != nil {
		return nil, table.Recorded{}, err
	}
	return players, hist, nil
}

// recordHand stores a finished hand and the roster as it stands after it.
func recordHand(ctx context.Context, db tableStore, tableID string, players []table.Player, hl *handlog.HandLog) (int64, error) {
	if err := db.UpsertTable(ctx, tableID, hl.Table); err != nil {
		return 0, err
	}
	for _, p := range players {
		if err := db.UpsertPlayer(ctx, tableID, p); err != nil {
			return 0, err
		}
	}
	return db.InsertHandLog(ctx, tableID, hl)
}
