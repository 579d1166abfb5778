package inputflags

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kingpin/v2"
	"github.com/brimdata/gather"
	"golang.org/x/sync/errgroup"
)

type Flags struct {
	Files      []string
	Collection string
	Threads    int
}

func (f *Flags) SetFlags(cmd *kingpin.CmdClause) {
	cmd.Flag("collection", "collection to load into (default: each file's base name)").Short('c').StringVar(&f.Collection)
	cmd.Flag("threads", "number of files read concurrently").Default("4").IntVar(&f.Threads)
	cmd.Arg("files", "JSON or JSON Lines files of documents").Required().ExistingFilesVar(&f.Files)
}

// CollectionName returns the collection that the documents of path go to.
func (f *Flags) CollectionName(path string) string {
	if f.Collection != "" {
		return f.Collection
	}
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ReadAll reads the files concurrently and returns the documents of each
// file in the order of Files.
func (f *Flags) ReadAll(ctx context.Context) ([][]gather.Value, error) {
	docs := make([][]gather.Value, len(f.Files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(f.Threads, 1))
	for k, path := range f.Files {
		g.Go(func() error {
			vals, err := readFile(ctx, path)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			docs[k] = vals
			return nil
		})
	}
	return docs, g.Wait()
}

// readFile reads a stream of JSON values.  A file holding a single JSON
// array is read as the elements of the array.
func readFile(ctx context.Context, path string) ([]gather.Value, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	dec := gather.NewDecoder(file)
	var vals []gather.Value
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
	}
	if len(vals) == 1 && vals[0].IsArray() {
		return vals[0].Array(), nil
	}
	return vals, nil
}
