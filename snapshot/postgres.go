package snapshot

import (
	"database/sql"
	"time"

	"github.com/golang/glog"
	"github.com/lib/pq"

	e "github.com/microcosm-cc/avatars/errors"
	h "github.com/microcosm-cc/avatars/helpers"
	"github.com/microcosm-cc/avatars/models"
)

const createTablesSQL = `
CREATE TABLE IF NOT EXISTS avatar_stores (
    name text NOT NULL PRIMARY KEY
   ,url text NOT NULL
   ,last_refreshed timestamp with time zone
);

CREATE TABLE IF NOT EXISTS avatar_cache (
    store_name text NOT NULL REFERENCES avatar_stores (name) ON DELETE CASCADE
   ,hash character(64) NOT NULL
   ,last_updated timestamp with time zone NOT NULL
   ,mime_type text NOT NULL
   ,bytes bytea NOT NULL
   ,PRIMARY KEY (store_name, hash)
);`

// PostgresStore keeps snapshots in the avatar_stores and avatar_cache tables.
// Several stores may share the tables, each under its own name.
type PostgresStore struct {
	db   *sql.DB
	Name string
}

// NewPostgresStore returns a PostgresStore saving under name, creating the
// tables if they do not exist
func NewPostgresStore(db *sql.DB, name string) (*PostgresStore, error) {
	_, err := db.Exec(createTablesSQL)
	if err != nil {
		return nil, e.Wrap("snapshot.NewPostgresStore", e.SnapshotFailure, err)
	}

	return &PostgresStore{db: db, Name: name}, nil
}

// Load implements models.SnapshotStore
func (s *PostgresStore) Load() (*models.StoreSnapshot, error) {
	snap := &models.StoreSnapshot{}

	var lastRefreshed pq.NullTime
	err := s.db.QueryRow(`
SELECT url
      ,last_refreshed
  FROM avatar_stores
 WHERE name = $1`,
		s.Name,
	).Scan(
		&snap.URL,
		&lastRefreshed,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	} else if err != nil {
		return nil, e.Wrap("snapshot.PostgresStore.Load", e.SnapshotFailure, err)
	}
	if lastRefreshed.Valid {
		snap.LastRefresh = lastRefreshed.Time
	}

	rows, err := s.db.Query(`
SELECT hash
      ,last_updated
      ,mime_type
      ,bytes
  FROM avatar_cache
 WHERE store_name = $1
 ORDER BY hash`,
		s.Name,
	)
	if err != nil {
		return nil, e.Wrap("snapshot.PostgresStore.Load", e.SnapshotFailure, err)
	}
	defer rows.Close()

	for rows.Next() {
		m := models.AvatarType{}
		err = rows.Scan(
			&m.Hash,
			&m.LastUpdated,
			&m.MimeType,
			&m.Bytes,
		)
		if err != nil {
			return nil, e.Wrap("snapshot.PostgresStore.Load", e.SnapshotFailure, err)
		}
		snap.Avatars = append(snap.Avatars, m)
	}
	err = rows.Err()
	if err != nil {
		return nil, e.Wrap("snapshot.PostgresStore.Load", e.SnapshotFailure, err)
	}
	rows.Close()

	return snap, nil
}

// Save implements models.SnapshotStore. The rows of the store are replaced
// within one transaction.
func (s *PostgresStore) Save(snap *models.StoreSnapshot) error {
	tx, err := h.GetTransaction(s.db)
	if err != nil {
		return e.Wrap("snapshot.PostgresStore.Save", e.SnapshotFailure, err)
	}
	defer tx.Rollback()

	var lastRefreshed pq.NullTime
	if !snap.LastRefresh.IsZero() {
		lastRefreshed = pq.NullTime{Time: snap.LastRefresh, Valid: true}
	}

	_, err = tx.Exec(`
INSERT INTO avatar_stores (
    name
   ,url
   ,last_refreshed
) VALUES (
    $1
   ,$2
   ,$3
)
ON CONFLICT (name) DO UPDATE
   SET url = EXCLUDED.url
      ,last_refreshed = EXCLUDED.last_refreshed`,
		s.Name,
		snap.URL,
		lastRefreshed,
	)
	if err != nil {
		return e.Wrap("snapshot.PostgresStore.Save", e.SnapshotFailure, err)
	}

	_, err = tx.Exec(`DELETE FROM avatar_cache WHERE store_name = $1`, s.Name)
	if err != nil {
		return e.Wrap("snapshot.PostgresStore.Save", e.SnapshotFailure, err)
	}

	stmt, err := tx.Prepare(pq.CopyIn(
		"avatar_cache",
		"store_name",
		"hash",
		"last_updated",
		"mime_type",
		"bytes",
	))
	if err != nil {
		return e.Wrap("snapshot.PostgresStore.Save", e.SnapshotFailure, err)
	}

	for _, m := range snap.Avatars {
		lastUpdated := m.LastUpdated
		if lastUpdated.IsZero() {
			lastUpdated = time.Now()
		}

		_, err = stmt.Exec(s.Name, m.Hash, lastUpdated, m.MimeType, m.Bytes)
		if err != nil {
			stmt.Close()
			return e.Wrap("snapshot.PostgresStore.Save", e.SnapshotFailure, err)
		}
	}

	// Flushes the COPY
	_, err = stmt.Exec()
	if err != nil {
		stmt.Close()
		return e.Wrap("snapshot.PostgresStore.Save", e.SnapshotFailure, err)
	}

	err = stmt.Close()
	if err != nil {
		return e.Wrap("snapshot.PostgresStore.Save", e.SnapshotFailure, err)
	}

	err = tx.Commit()
	if err != nil {
		return e.Wrap("snapshot.PostgresStore.Save", e.SnapshotFailure, err)
	}

	if glog.V(2) {
		glog.Infof("Saved %d avatars to avatar_cache as %s", len(snap.Avatars), s.Name)
	}

	return nil
}
