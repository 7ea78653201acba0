// Package vectorutils is the vector index utility package
package vectorutils

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/draftloop/exemplar/pkg/vector"
	"github.com/draftloop/exemplar/pkg/vector/flat"
	"github.com/draftloop/exemplar/pkg/vector/sqlitevec"
)

type NewIndexOpts struct {
	ProviderType string
	Path         string
	Dimensions   int
	Logger       *zap.Logger
}

func NewIndex(o *NewIndexOpts) (vector.Index, error) {
	switch o.ProviderType {
	case "flat":
		return flat.NewIndex(flat.Config{
			Path:       o.Path,
			Dimensions: o.Dimensions,
		}, o.Logger)
	case "sqlite":
		return sqlitevec.NewIndex(sqlitevec.Config{
			DBPath:     o.Path,
			Dimensions: o.Dimensions,
		}, o.Logger)
	case "none", "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported vector index provider: %s", o.ProviderType)
	}
}
