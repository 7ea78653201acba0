// Package flat provides a brute-force flat inner-product index.
//
// Vectors live in memory and are ranked by exact inner product on every
// search. The index persists to a binary artifact whose header records a
// format version and the vector dimensionality; an artifact that does not
// match the configured dimension is discarded on load, leaving an empty
// index that the store treats as incomplete until the next rebuild. This
// is how an embedding-model swap (e.g. 768 -> 1536 dims) is detected
// rather than silently mixing vector spaces.
package flat

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/draftloop/exemplar/pkg/vector"
)

const (
	// artifactMagic identifies the flat index artifact format.
	artifactMagic = "FLIX"

	// artifactVersion is the current artifact format version.
	artifactVersion = 1
)

// Config holds configuration for the flat index.
type Config struct {
	// Path is the location of the index artifact. Empty means the index
	// is memory-only and Save is a no-op.
	Path string

	// Dimensions is the vector dimensionality. Required.
	Dimensions int
}

// Index implements vector.Index with an in-memory flat vector slice.
type Index struct {
	mu     sync.RWMutex
	path   string
	dims   int
	vecs   [][]float32
	logger *zap.Logger
}

// NewIndex creates a flat index, loading an existing artifact from
// Config.Path when one is present and compatible.
func NewIndex(c Config, logger *zap.Logger) (*Index, error) {
	if c.Dimensions <= 0 {
		return nil, errors.New("flat index dimensions must be configured")
	}

	idx := &Index{
		path:   c.Path,
		dims:   c.Dimensions,
		logger: logger,
	}

	if c.Path != "" {
		if err := idx.load(); err != nil {
			// A stale or foreign artifact is not fatal: start empty and
			// let the store's completeness check route around it until
			// the next rebuild.
			logger.Warn("discarding incompatible flat index artifact",
				zap.String("path", c.Path),
				zap.Error(err),
			)
			idx.vecs = nil
		}
	}

	logger.Info("flat vector index initialized",
		zap.String("path", c.Path),
		zap.Int("dimensions", c.Dimensions),
		zap.Int("count", len(idx.vecs)),
	)

	return idx, nil
}

// Append adds a vector and returns its ordinal position.
func (i *Index) Append(_ context.Context, vec []float32) (int, error) {
	if len(vec) != i.dims {
		return 0, fmt.Errorf("%w: got %d, index has %d", vector.ErrDimensionMismatch, len(vec), i.dims)
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	stored := make([]float32, len(vec))
	copy(stored, vec)
	i.vecs = append(i.vecs, stored)

	return len(i.vecs) - 1, nil
}

// Count reports the number of indexed vectors.
func (i *Index) Count(_ context.Context) (int, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.vecs), nil
}

// Search returns indexed vectors ordered by descending inner product
// against the query, ties broken by ascending position.
func (i *Index) Search(_ context.Context, query []float32, topK int) ([]vector.Match, error) {
	if len(query) != i.dims {
		return nil, fmt.Errorf("%w: got %d, index has %d", vector.ErrDimensionMismatch, len(query), i.dims)
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	matches := make([]vector.Match, len(i.vecs))
	for pos, vec := range i.vecs {
		matches[pos] = vector.Match{
			Position: pos,
			Score:    dot(query, vec),
		}
	}

	sort.SliceStable(matches, func(a, b int) bool {
		if matches[a].Score != matches[b].Score {
			return matches[a].Score > matches[b].Score
		}
		return matches[a].Position < matches[b].Position
	})

	if topK > 0 && topK < len(matches) {
		matches = matches[:topK]
	}

	return matches, nil
}

// Rebuild replaces the index contents with the given vectors, in order.
func (i *Index) Rebuild(_ context.Context, vecs [][]float32) error {
	for n, vec := range vecs {
		if len(vec) != i.dims {
			return fmt.Errorf("%w: vector %d has %d dims, index has %d", vector.ErrDimensionMismatch, n, len(vec), i.dims)
		}
	}

	i.mu.Lock()
	defer i.mu.Unlock()

	replacement := make([][]float32, len(vecs))
	for n, vec := range vecs {
		stored := make([]float32, len(vec))
		copy(stored, vec)
		replacement[n] = stored
	}
	i.vecs = replacement

	i.logger.Debug("rebuilt flat index", zap.Int("count", len(replacement)))

	return nil
}

// Save writes the artifact with a temp-file-then-rename so a torn write
// never leaves a corrupt artifact behind.
func (i *Index) Save() error {
	if i.path == "" {
		return nil
	}

	i.mu.RLock()
	defer i.mu.RUnlock()

	tmp, err := os.CreateTemp(filepath.Dir(i.path), ".flatindex-*")
	if err != nil {
		return fmt.Errorf("creating temp index file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := i.write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("writing index artifact: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp index file: %w", err)
	}

	if err := os.Rename(tmp.Name(), i.path); err != nil {
		return fmt.Errorf("replacing index artifact: %w", err)
	}

	return nil
}

// Close releases resources held by the index.
func (i *Index) Close() error {
	return nil
}

func (i *Index) write(w io.Writer) error {
	if _, err := w.Write([]byte(artifactMagic)); err != nil {
		return err
	}

	header := []uint32{artifactVersion, uint32(i.dims), uint32(len(i.vecs))}
	for _, field := range header {
		if err := binary.Write(w, binary.LittleEndian, field); err != nil {
			return err
		}
	}

	buf := make([]byte, 4)
	for _, vec := range i.vecs {
		for _, f := range vec {
			binary.LittleEndian.PutUint32(buf, math.Float32bits(f))
			if _, err := w.Write(buf); err != nil {
				return err
			}
		}
	}

	return nil
}

func (i *Index) load() error {
	data, err := os.ReadFile(i.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("reading index artifact: %w", err)
	}

	const headerLen = 4 + 3*4
	if len(data) < headerLen {
		return errors.New("artifact truncated")
	}
	if string(data[:4]) != artifactMagic {
		return errors.New("artifact magic mismatch")
	}

	version := binary.LittleEndian.Uint32(data[4:])
	dims := int(binary.LittleEndian.Uint32(data[8:]))
	count := int(binary.LittleEndian.Uint32(data[12:]))

	if version != artifactVersion {
		return fmt.Errorf("unsupported artifact version %d", version)
	}
	if dims != i.dims {
		return fmt.Errorf("%w: artifact has %d dims, configured %d", vector.ErrDimensionMismatch, dims, i.dims)
	}

	body := data[headerLen:]
	if len(body) != count*dims*4 {
		return errors.New("artifact body length mismatch")
	}

	vecs := make([][]float32, count)
	for n := range vecs {
		vec := make([]float32, dims)
		for d := range vec {
			off := (n*dims + d) * 4
			vec[d] = math.Float32frombits(binary.LittleEndian.Uint32(body[off:]))
		}
		vecs[n] = vec
	}

	i.vecs = vecs

	return nil
}

func dot(a, b []float32) float32 {
	var sum float32
	for n := range a {
		sum += a[n] * b[n]
	}
	return sum
}

var _ vector.Index = (*Index)(nil)
