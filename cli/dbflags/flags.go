package dbflags

import (
	"github.com/alecthomas/kingpin/v2"
	"github.com/brimdata/gather/storage"
	"github.com/brimdata/gather/storage/boltstore"
	"go.uber.org/zap"
)

const DefaultPath = "gather.db"

type Flags struct {
	Path string
}

func (f *Flags) SetFlags(app *kingpin.Application) {
	app.Flag("db", "database file").Envar("GATHER_DB").Default(DefaultPath).StringVar(&f.Path)
}

func (f *Flags) Open(logger *zap.Logger) (*boltstore.Store, error) {
	return boltstore.Open(f.Path, logger)
}

// Catalog reads every collection of the database into memory.
func (f *Flags) Catalog(logger *zap.Logger) (*storage.Catalog, error) {
	store, err := f.Open(logger)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	cat := storage.NewCatalog()
	if err := store.Load(cat); err != nil {
		return nil, err
	}
	return cat, nil
}
