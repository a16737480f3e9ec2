package features

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Source supplies the records a registry is built from.
type Source interface {
	Load(ctx context.Context) ([]Record, error)
}

// Finder is implemented by sources that can fetch a single feature the
// registry does not hold.
type Finder interface {
	Find(ctx context.Context, id string) (Record, bool, error)
}

// SourceFunc adapts a function to a Source.
type SourceFunc func(ctx context.Context) ([]Record, error)

func (f SourceFunc) Load(ctx context.Context) ([]Record, error) { return f(ctx) }

// Static returns a Source that always yields the given records.
func Static(records ...Record) Source {
	return SourceFunc(func(ctx context.Context) ([]Record, error) {
		return records, nil
	})
}

// Build loads every record from src into a new registry and seals it.
// A duplicate id fails the whole build.
func Build(ctx context.Context, src Source) (*Registry, error) {
	records, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load features")
	}

	reg := NewRegistry()
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := reg.Register(rec); err != nil {
			return nil, err
		}
	}
	reg.Seal()

	logrus.Debugf("feature registry sealed with %d features", reg.Len())
	return reg, nil
}
