package store

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"rfpoker-export/server/handlog"
	"rfpoker-export/server/table"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schema embed.FS

type DB struct{ *pgxpool.Pool }

func Open(dsn string) (*DB, error) {
	p, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	return &DB{p}, nil
}

func (db *DB) Close(ctx context.Context)      { db.Pool.Close() }
func (db *DB) Ping(ctx context.Context) error { return db.Pool.Ping(ctx) }

func Migrate(ctx context.Context, db *DB) error {
	sqlBytes, err := schema.ReadFile("schema.sql")
	if err != nil {
		return err
	}
	_, err = db.Exec(ctx, string(sqlBytes))
	return err
}

/* -----------------------------
   Tables and rosters
------------------------------*/

// UpsertTable creates the table row or refreshes its metadata.
func (db *DB) UpsertTable(ctx context.Context, id string, info handlog.TableInfo) error {
	_, err := db.Exec(ctx, `
        INSERT INTO poker_tables(id, name, table_type, sb, bb)
        VALUES ($1,$2,$3,$4::numeric,$5::numeric)
        ON CONFLICT (id) DO UPDATE
          SET name = EXCLUDED.name,
              table_type = EXCLUDED.table_type,
              sb = EXCLUDED.sb,
              bb = EXCLUDED.bb,
              updated_at = now()
    `, id, info.Name, info.Variation, info.SB.String(), info.BB.String())
	return err
}

// UpsertPlayer stores the post-hand state of one seated player.
func (db *DB) UpsertPlayer(ctx context.Context, tableID string, p table.Player) error {
	var playerID, userID, buyin any
	if v := strings.TrimSpace(p.ID); v != "" {
		playerID = v
	}
	if p.User != nil {
		userID = p.User.ID
		buyin = p.User.DefaultBuyin.String()
	}
	_, err := db.Exec(ctx, `
        INSERT INTO table_players(table_id, username, player_id, user_id, default_buyin, position, stack, wagers, active)
        VALUES ($1,$2,$3,$4,$5::numeric,$6,$7::numeric,$8::numeric,$9)
        ON CONFLICT (table_id, username) DO UPDATE
          SET player_id = EXCLUDED.player_id,
              user_id = EXCLUDED.user_id,
              default_buyin = EXCLUDED.default_buyin,
              position = EXCLUDED.position,
              stack = EXCLUDED.stack,
              wagers = EXCLUDED.wagers,
              active = EXCLUDED.active,
              updated_at = now()
    `, tableID, p.Username, playerID, userID, buyin, p.Position, p.Stack.String(), p.Wagers.String(), p.Active)
	return err
}

// LoadPlayers returns the live roster ordered by seat.
func (db *DB) LoadPlayers(ctx context.Context, tableID string) ([]table.Player, error) {
	rows, err := db.Query(ctx, `
        SELECT username, COALESCE(player_id,''), user_id, default_buyin::text,
               position, stack::text, wagers::text, active
          FROM table_players
         WHERE table_id = $1
         ORDER BY position, username
    `, tableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []table.Player{}
	for rows.Next() {
		var p table.Player
		var userID, buyin *string
		var stack, wagers string
		if err := rows.Scan(&p.Username, &p.ID, &userID, &buyin, &p.Position, &stack, &wagers, &p.Active); err != nil {
			return nil, err
		}
		p.Stack = handlog.Decimal(stack)
		p.Wagers = handlog.Decimal(wagers)
		if userID != nil {
			p.User = &table.UserProfile{ID: *userID}
			if buyin != nil {
				p.User.DefaultBuyin = handlog.Decimal(*buyin)
			}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

/* -----------------------------
   Hand history
------------------------------*/

// InsertHandLog appends a hand log, replacing an earlier log with the same
// hand number, and returns its row id.
func (db *DB) InsertHandLog(ctx context.Context, tableID string, hl *handlog.HandLog) (int64, error) {
	if hl == nil {
		return 0, errors.New("nil hand log")
	}
	b, err := json.Marshal(hl)
	if err != nil {
		return 0, fmt.Errorf("encode hand log: %w", err)
	}
	var id int64
	err = db.QueryRow(ctx, `
        INSERT INTO hand_logs(table_id, hand_number, log)
        VALUES ($1,$2,$3)
        ON CONFLICT (table_id, hand_number) DO UPDATE
          SET log = EXCLUDED.log,
              recorded_at = now()
        RETURNING id
    `, tableID, hl.Table.HandNumber, b).Scan(&id)
	return id, err
}

// LoadHistory returns how many hands the table has recorded and the most
// recent one. A table without hands yields an empty history, not an error.
func (db *DB) LoadHistory(ctx context.Context, tableID string) (table.Recorded, error) {
	var rec table.Recorded
	if err := db.QueryRow(ctx, `SELECT COUNT(*) FROM hand_logs WHERE table_id = $1`, tableID).Scan(&rec.Count); err != nil {
		return rec, err
	}
	var raw []byte
	err := db.QueryRow(ctx, `
        SELECT log FROM hand_logs
         WHERE table_id = $1
         ORDER BY hand_number DESC, id DESC
         LIMIT 1
    `, tableID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return rec, nil
	}
	if err != nil {
		return rec, err
	}
	var hl handlog.HandLog
	if err := json.Unmarshal(raw, &hl); err != nil {
		return rec, fmt.Errorf("decode hand log: %w", err)
	}
	rec.Current = &hl
	return rec, nil
}

/* -----------------------------
   Delivery audit
------------------------------*/

type Delivery struct {
	TableID    string
	HandNumber int
	RequestID  string
	Target     string
	Sent       bool
	Status     int
	Err        error
}

func (db *DB) RecordDelivery(ctx context.Context, d Delivery) error {
	var reqID, status, errText any
	if d.RequestID != "" {
		reqID = d.RequestID
	}
	if d.Status != 0 {
		status = d.Status
	}
	if d.Err != nil {
		errText = d.Err.Error()
	}
	_, err := db.Exec(ctx, `
        INSERT INTO export_deliveries(table_id, hand_number, request_id, target, sent, status, error)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
    `, d.TableID, d.HandNumber, reqID, d.Target, d.Sent, status, errText)
	return err
}

// DeliveryRow is an audit row as read back for reporting.
type DeliveryRow struct {
	HandNumber int     `json:"hand_number"`
	RequestID  *string `json:"request_id"`
	Target     string  `json:"target"`
	Sent       bool    `json:"sent"`
	Status     *int    `json:"status"`
	Error      *string `json:"error"`
	CreatedAt  string  `json:"created_at"`
}

// RecentDeliveries lists the latest delivery attempts for a table.
func (db *DB) RecentDeliveries(ctx context.Context, tableID string, limit int) ([]DeliveryRow, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.Query(ctx, `
        SELECT hand_number, request_id, target, sent, status, error,
               to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD"T"HH24:MI:SS"Z"')
          FROM export_deliveries
         WHERE table_id = $1
         ORDER BY created_at DESC, id DESC
         LIMIT $2
    `, tableID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []DeliveryRow{}
	for rows.Next() {
		var r DeliveryRow
		if err := rows.Scan(&r.HandNumber, &r.RequestID, &r.Target, &r.Sent, &r.Status, &r.Error, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
