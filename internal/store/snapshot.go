package store

import (
	"context"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/dukerupert/dinemenu/internal/model"
)

// DefaultSnapshotLimit caps List when no limit is given.
const DefaultSnapshotLimit = 20

// SnapshotStore keeps the history of fetched menus per restaurant.
type SnapshotStore struct {
	db     *sql.DB
	now    func() time.Time
	logger *slog.Logger
}

func NewSnapshotStore(db *sql.DB, logger *slog.Logger) *SnapshotStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SnapshotStore{db: db, now: time.Now, logger: logger}
}

// Digest is the BLAKE2b-256 of the document's JSON form, hex encoded.
func Digest(doc *model.MenuDocument) (string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode menu: %w", err)
	}
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func scanSnapshot(scanner interface{ Scan(...any) error }) (*model.MenuSnapshot, error) {
	var s model.MenuSnapshot
	err := scanner.Scan(&s.ID, &s.RestaurantID, &s.Title, &s.Digest, &s.CategoryCount, &s.ItemCount, &s.FetchedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

const snapshotCols = `id, restaurant_id, title, digest, category_count, item_count, fetched_at`

// Save stores a snapshot of doc and reports whether it differs from the
// restaurant's previous one.
func (s *SnapshotStore) Save(ctx context.Context, doc *model.MenuDocument) (*model.MenuSnapshot, bool, error) {
	digest, err := Digest(doc)
	if err != nil {
		return nil, false, err
	}

	prev, err := s.Latest(ctx, doc.RestaurantID)
	if err != nil {
		return nil, false, err
	}

	result, err := s.db.ExecContext(ctx,
		`INSERT INTO menu_snapshots (restaurant_id, title, digest, category_count, item_count, fetched_at) VALUES (?, ?, ?, ?, ?, ?)`,
		doc.RestaurantID, doc.Title, digest, len(doc.Categories), len(doc.Items), s.now().UTC(),
	)
	if err != nil {
		return nil, false, fmt.Errorf("insert snapshot: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, false, fmt.Errorf("last insert id: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+snapshotCols+` FROM menu_snapshots WHERE id = ?`, id)
	snap, err := scanSnapshot(row)
	if err != nil {
		return nil, false, fmt.Errorf("get snapshot: %w", err)
	}
	return snap, prev == nil || prev.Digest != digest, nil
}

// Record implements menu.Recorder.
func (s *SnapshotStore) Record(ctx context.Context, doc *model.MenuDocument) error {
	snap, changed, err := s.Save(ctx, doc)
	if err != nil {
		return err
	}
	if changed {
		s.logger.Info("menu changed", "restaurant", snap.RestaurantID, "digest", snap.Digest, "items", snap.ItemCount)
	} else {
		s.logger.Debug("menu unchanged", "restaurant", snap.RestaurantID, "digest", snap.Digest)
	}
	return nil
}

// Latest returns the newest snapshot of a restaurant, or nil if none.
func (s *SnapshotStore) Latest(ctx context.Context, restaurantID string) (*model.MenuSnapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+snapshotCols+` FROM menu_snapshots WHERE restaurant_id = ? ORDER BY id DESC LIMIT 1`,
		restaurantID,
	)
	snap, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest snapshot: %w", err)
	}
	return snap, nil
}

// List returns up to limit snapshots of a restaurant, newest first.
func (s *SnapshotStore) List(ctx context.Context, restaurantID string, limit int) ([]model.MenuSnapshot, error) {
	if limit <= 0 {
		limit = DefaultSnapshotLimit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+snapshotCols+` FROM menu_snapshots WHERE restaurant_id = ? ORDER BY id DESC LIMIT ?`,
		restaurantID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	snaps := []model.MenuSnapshot{}
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snaps = append(snaps, *snap)
	}
	return snaps, rows.Err()
}
