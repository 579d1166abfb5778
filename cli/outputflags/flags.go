package outputflags

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kingpin/v2"
	"github.com/brimdata/gather"
	"github.com/goccy/go-json"
)

type Flags struct {
	Format     string
	outputFile string
}

func (f *Flags) SetFlags(cmd *kingpin.CmdClause) {
	cmd.Flag("format", "output format [json,pretty]").Short('f').Default("json").EnumVar(&f.Format, "json", "pretty")
	cmd.Flag("output", "write output to file instead of stdout").Short('o').StringVar(&f.outputFile)
}

// Open returns the writer for query results.  Close must be called to
// flush it.
func (f *Flags) Open() (*Writer, error) {
	var w io.WriteCloser = nopCloser{os.Stdout}
	if f.outputFile != "" {
		file, err := os.Create(f.outputFile)
		if err != nil {
			return nil, err
		}
		w = file
	}
	return &Writer{out: bufio.NewWriter(w), closer: w, pretty: f.Format == "pretty"}, nil
}

// Writer writes the value of each row as a line of JSON.
type Writer struct {
	out    *bufio.Writer
	closer io.Closer
	pretty bool
	buf    []byte
}

func (w *Writer) Write(row gather.Row) error {
	if len(row) == 0 {
		return nil
	}
	return w.WriteValue(row[0])
}

func (w *Writer) WriteValue(v gather.Value) error {
	w.buf = gather.AppendJSON(w.buf[:0], v)
	if w.pretty {
		var b bytes.Buffer
		if err := json.Indent(&b, w.buf, "", "  "); err != nil {
			return err
		}
		w.buf = append(w.buf[:0], b.Bytes()...)
	}
	w.buf = append(w.buf, '\n')
	_, err := w.out.Write(w.buf)
	return err
}

// WriteJSON writes any JSON-encodable value, such as an explained plan.
func (w *Writer) WriteJSON(v any) error {
	var b []byte
	var err error
	if w.pretty {
		b, err = json.MarshalIndent(v, "", "  ")
	} else {
		b, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w.out, "%s\n", b)
	return err
}

func (w *Writer) Close() error {
	err := w.out.Flush()
	if cerr := w.closer.Close(); err == nil {
		err = cerr
	}
	return err
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
