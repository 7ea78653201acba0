// Package sqlitevec provides a SQLite-backed similarity index using sqlite-vec.
package sqlitevec

import (
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	sqlite_vec "github.com/asg017/sqlite-vec-go-bindings/cgo"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/draftloop/exemplar/pkg/vector"
)

// Index implements vector.Index using SQLite with the sqlite-vec extension.
// Vector ordinal positions map to vec0 rowids (position = rowid - 1).
type Index struct {
	db     *sql.DB
	dims   int
	logger *zap.Logger
}

// Config holds configuration for the sqlite-vec index.
type Config struct {
	// DBPath is the path to the SQLite database file.
	// Use ":memory:" for an in-memory database.
	DBPath string

	// Dimensions is the number of dimensions for the embedding vectors.
	Dimensions int
}

// NewIndex creates a sqlite-vec backed similarity index.
func NewIndex(c Config, logger *zap.Logger) (*Index, error) {
	// enable connections to have the sqlite-vec extension
	sqlite_vec.Auto()

	if c.DBPath == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if c.Dimensions <= 0 {
		return nil, fmt.Errorf("sqlite-vec embedding dimensions cannot be 0, must be configured")
	}

	db, err := sql.Open("sqlite3", c.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Verify sqlite-vec is loaded
	var vecVersion string
	if err := db.QueryRow("SELECT vec_version()").Scan(&vecVersion); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: sqlite-vec not available: %v", vector.ErrConnection, err)
	}

	// cosine distance over pre-normalized vectors orders identically to
	// descending inner product
	createVec := fmt.Sprintf(
		`CREATE VIRTUAL TABLE IF NOT EXISTS post_embeddings USING vec0(embedding float[%d] distance_metric=cosine)`,
		c.Dimensions,
	)
	if _, err := db.Exec(createVec); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating vec0 table: %w", err)
	}

	logger.Info("sqlite-vec index initialized",
		zap.String("db_path", c.DBPath),
		zap.Int("dimensions", c.Dimensions),
		zap.String("vec_version", vecVersion),
	)

	return &Index{
		db:     db,
		dims:   c.Dimensions,
		logger: logger,
	}, nil
}

// serializeFloat32 converts a float32 slice to a little-endian byte slice
// suitable for sqlite-vec BLOB format.
func serializeFloat32(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// Append adds a vector and returns its ordinal position.
func (i *Index) Append(ctx context.Context, vec []float32) (int, error) {
	if len(vec) != i.dims {
		return 0, fmt.Errorf("%w: got %d, index has %d", vector.ErrDimensionMismatch, len(vec), i.dims)
	}

	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM post_embeddings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting vectors: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO post_embeddings(rowid, embedding) VALUES (?, ?)`,
		count+1, serializeFloat32(vec),
	); err != nil {
		return 0, fmt.Errorf("inserting embedding: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}

	i.logger.Debug("appended vector to sqlite-vec", zap.Int("position", count))

	return count, nil
}

// Count reports the number of indexed vectors.
func (i *Index) Count(ctx context.Context) (int, error) {
	var count int
	if err := i.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM post_embeddings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting vectors: %w", err)
	}
	return count, nil
}

// Search returns indexed vectors ordered by descending inner product
// against the query, ties broken by ascending position.
func (i *Index) Search(ctx context.Context, query []float32, topK int) ([]vector.Match, error) {
	if len(query) != i.dims {
		return nil, fmt.Errorf("%w: got %d, index has %d", vector.ErrDimensionMismatch, len(query), i.dims)
	}

	k := topK
	if k <= 0 {
		count, err := i.Count(ctx)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, nil
		}
		k = count
	}

	// KNN query via vec0 MATCH; cosine distance ascending is inner
	// product descending for unit vectors.
	rows, err := i.db.QueryContext(ctx, `
		SELECT rowid, distance
		FROM post_embeddings
		WHERE embedding MATCH ?
			AND k = ?
		ORDER BY distance
	`, serializeFloat32(query), k)
	if err != nil {
		return nil, fmt.Errorf("querying vectors: %w", err)
	}
	defer rows.Close()

	var matches []vector.Match
	for rows.Next() {
		var rowID int64
		var distance float64
		if err := rows.Scan(&rowID, &distance); err != nil {
			return nil, fmt.Errorf("scanning query result: %w", err)
		}

		matches = append(matches, vector.Match{
			Position: int(rowID) - 1,
			Score:    float32(1.0 - distance),
		})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating query results: %w", err)
	}

	// sqlite orders by distance only; pin equal-score ordering to
	// insertion order for deterministic rankings.
	sort.SliceStable(matches, func(a, b int) bool {
		if matches[a].Score != matches[b].Score {
			return matches[a].Score > matches[b].Score
		}
		return matches[a].Position < matches[b].Position
	})

	i.logger.Debug("queried sqlite-vec", zap.Int("results", len(matches)))

	return matches, nil
}

// Rebuild replaces the index contents with the given vectors, in order.
// vec0 has no point deletion, so the table is dropped and recreated.
func (i *Index) Rebuild(ctx context.Context, vecs [][]float32) error {
	for n, vec := range vecs {
		if len(vec) != i.dims {
			return fmt.Errorf("%w: vector %d has %d dims, index has %d", vector.ErrDimensionMismatch, n, len(vec), i.dims)
		}
	}

	if _, err := i.db.ExecContext(ctx, `DROP TABLE IF EXISTS post_embeddings`); err != nil {
		return fmt.Errorf("dropping vec0 table: %w", err)
	}

	createVec := fmt.Sprintf(
		`CREATE VIRTUAL TABLE post_embeddings USING vec0(embedding float[%d] distance_metric=cosine)`,
		i.dims,
	)
	if _, err := i.db.ExecContext(ctx, createVec); err != nil {
		return fmt.Errorf("recreating vec0 table: %w", err)
	}

	tx, err := i.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for n, vec := range vecs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO post_embeddings(rowid, embedding) VALUES (?, ?)`,
			n+1, serializeFloat32(vec),
		); err != nil {
			return fmt.Errorf("inserting embedding %d: %w", n, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	i.logger.Debug("rebuilt sqlite-vec index", zap.Int("count", len(vecs)))

	return nil
}

// Save is a no-op; SQLite persists on write.
func (i *Index) Save() error {
	return nil
}

// Close releases resources held by the index.
func (i *Index) Close() error {
	return i.db.Close()
}

var _ vector.Index = (*Index)(nil)
