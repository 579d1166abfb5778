package exec

import (
	"github.com/brimdata/gather/metrics"
	"github.com/brimdata/gather/storage"
	"go.uber.org/zap"
)

// Environment is what a query runs against: the collections of a database
// and the process-wide logger and metrics.
type Environment struct {
	Catalog *storage.Catalog
	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

var _ storage.IndexProvider = (*Environment)(nil)

func NewEnvironment(catalog *storage.Catalog, logger *zap.Logger, m *metrics.Metrics) *Environment {
	if catalog == nil {
		catalog = storage.NewCatalog()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Environment{Catalog: catalog, Logger: logger, Metrics: m}
}

func (e *Environment) Lookup(collection string) (*storage.Collection, error) {
	return e.Catalog.Lookup(collection)
}

func (e *Environment) Indexes(collection string) []storage.IndexDef {
	return e.Catalog.Indexes(collection)
}
