package load

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/brimdata/gather/cli/inputflags"
	"github.com/brimdata/gather/cmd/gather/root"
	"github.com/brimdata/gather/storage"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

type Command struct {
	*root.Command
	inputFlags inputflags.Flags
	indexes    []string
	indexType  string
	quiet      bool
}

func Register(app *kingpin.Application, parent *root.Command) {
	c := &Command{Command: parent}
	cmd := app.Command("load", "load documents into collections of the database")
	c.inputFlags.SetFlags(cmd)
	cmd.Flag("index", "create an index on comma-separated attributes; may be repeated").StringsVar(&c.indexes)
	cmd.Flag("index-type", "type of the indexes created with -index [hash,skiplist,persistent]").Default("skiplist").StringVar(&c.indexType)
	cmd.Flag("quiet", "do not report what was loaded").Short('q').BoolVar(&c.quiet)
	cmd.Action(func(*kingpin.ParseContext) error {
		return c.Run()
	})
}

func (c *Command) Run() error {
	typ, err := storage.ParseIndexType(c.indexType)
	if err != nil {
		return err
	}
	logger, err := c.LogFlags.Logger()
	if err != nil {
		return err
	}
	docs, err := c.inputFlags.ReadAll(context.Background())
	if err != nil {
		return err
	}
	store, err := c.DBFlags.Open(logger)
	if err != nil {
		return err
	}
	defer store.Close()
	loaded := make(map[string]int)
	for k, path := range c.inputFlags.Files {
		coll := c.inputFlags.CollectionName(path)
		// Validate documents before anything is written.
		check := storage.NewCollection(coll)
		for _, doc := range docs[k] {
			if err := check.Insert(doc); err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
		}
		if err := store.Append(coll, docs[k]); err != nil {
			return err
		}
		loaded[coll] += len(docs[k])
		logger.Info("loaded file", zap.String("file", path), zap.String("collection", coll), zap.Int("documents", len(docs[k])))
	}
	for coll, n := range loaded {
		for _, s := range c.indexes {
			def := storage.IndexDef{Name: s, Type: typ, Fields: storage.SplitFields(s)}
			if err := store.EnsureIndex(coll, def); err != nil {
				return err
			}
		}
		if !c.quiet {
			fmt.Fprintf(os.Stderr, "%s: %s documents\n", coll, humanize.Comma(int64(n)))
		}
	}
	return nil
}
