// Package ztest runs formulaic tests ("ztests") of query plans in-process.
//
// A ztest is defined in a YAML file.  It declares the collections a plan
// runs against, the plan itself in JSON or YAML, and the expected output:
//
//	collections:
//	  - name: docs
//	    indexes:
//	      - {name: group, type: skiplist, fields: [group]}
//	    data: |
//	      {"group":1,"value":10}
//	      {"group":2,"value":20}
//	plan: |
//	  body:
//	    - {kind: CollectionScan, collection: docs, var: {kind: VarExpr, name: d}}
//	    - {kind: ReturnOp, expr: {kind: DotExpr, lhs: {kind: VarExpr, name: d}, rhs: value}}
//	output: |
//	  10
//	  20
//
// Output holds one JSON value per line.  The optional options field holds
// query options in the YAML form read by runtime.LoadOptions.  The explain
// field, if present, is compared with a one-line-per-node summary of the
// optimized plan, and the warnings field with the compile-time warnings.
// A test that expects a failure gives the error message in the error
// field.
//
// Name YAML files descriptively since each ztest runs as a subtest
// named for the file that defines it.
//
// pkg_test.go should contain a Go test named TestZTest that calls Run.
//
//	func TestZTest(t *testing.T) { ztest.Run(t, "ztests") }
//
// Tests can be skipped by setting the skip field to a non-empty string.  A
// message containing the string will be written to the test log.
package ztest

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/brimdata/gather"
	"github.com/brimdata/gather/compiler"
	"github.com/brimdata/gather/compiler/dag"
	"github.com/brimdata/gather/compiler/optimizer"
	"github.com/brimdata/gather/runtime"
	"github.com/brimdata/gather/runtime/exec"
	"github.com/brimdata/gather/storage"
	"github.com/goccy/go-yaml"
	yamlparser "github.com/goccy/go-yaml/parser"
	"github.com/pmezard/go-difflib/difflib"
)

type Bundle struct {
	TestName string
	FileName string
	Test     *ZTest
	Error    error
}

func Load(dirname string) ([]Bundle, error) {
	var bundles []Bundle
	fileinfos, err := os.ReadDir(dirname)
	if err != nil {
		return nil, err
	}
	for _, fi := range fileinfos {
		filename := fi.Name()
		const dotyaml = ".yaml"
		if !strings.HasSuffix(filename, dotyaml) {
			continue
		}
		testname := strings.TrimSuffix(filename, dotyaml)
		filename = filepath.Join(dirname, filename)
		zt, err := FromYAMLFile(filename)
		bundles = append(bundles, Bundle{testname, filename, zt, err})
	}
	return bundles, nil
}

// Run runs the ztests in the directory named dirname.  For each file f.yaml in
// the directory, Run calls FromYAMLFile to load a ztest and then runs it in
// subtest named f.
func Run(t *testing.T, dirname string) {
	bundles, err := Load(dirname)
	if err != nil {
		t.Fatal(err)
	}
	for _, b := range bundles {
		t.Run(b.TestName, func(t *testing.T) {
			t.Parallel()
			if b.Error != nil {
				t.Fatalf("%s: %s", b.FileName, b.Error)
			}
			b.Test.Run(t, b.FileName)
		})
	}
}

// Collection is a collection a ztest runs against.
type Collection struct {
	Name    string             `yaml:"name"`
	Indexes []storage.IndexDef `yaml:"indexes,omitempty"`
	// Data holds the documents of the collection as JSON lines.
	Data string `yaml:"data,omitempty"`
}

// ZTest defines a ztest.
type ZTest struct {
	Skip string `yaml:"skip,omitempty"`

	Collections []Collection `yaml:"collections,omitempty"`
	Plan        string       `yaml:"plan"`
	Options     string       `yaml:"options,omitempty"`

	Output   string  `yaml:"output,omitempty"`
	Explain  *string `yaml:"explain,omitempty"`
	Warnings string  `yaml:"warnings,omitempty"`
	Error    string  `yaml:"error,omitempty"`
}

func (z *ZTest) check() error {
	if z.Plan == "" {
		return errors.New("plan field missing")
	}
	for _, c := range z.Collections {
		if c.Name == "" {
			return errors.New("collection without a name")
		}
	}
	return nil
}

// FromYAMLFile loads a ZTest from the YAML file named filename.
func FromYAMLFile(filename string) (*ZTest, error) {
	f, err := yamlparser.ParseFile(filename, 0)
	if err != nil {
		return nil, err
	}
	if len(f.Docs) != 1 {
		return nil, errors.New("file must contain one YAML document")
	}
	var z ZTest
	if err := yaml.NodeToValue(f.Docs[0].Body, &z, yaml.DisallowUnknownField()); err != nil {
		return nil, err
	}
	return &z, nil
}

func (z *ZTest) Run(t *testing.T, filename string) {
	if z.Skip != "" {
		t.Skip("skipping test:", z.Skip)
	}
	if err := z.RunInternal(t.Context()); err != nil {
		t.Fatalf("%s: %s", filename, err)
	}
}

func (z *ZTest) RunInternal(ctx context.Context) error {
	if err := z.check(); err != nil {
		return fmt.Errorf("bad yaml format: %w", err)
	}
	env, err := z.environment()
	if err != nil {
		return err
	}
	main, err := z.plan()
	if err != nil {
		return err
	}
	opts, err := runtime.LoadOptions(strings.NewReader(z.Options))
	if err != nil {
		return err
	}
	var errs []error
	if z.Explain != nil {
		rctx := runtime.NewContext(ctx, opts, nil)
		e, err := compiler.Explain(rctx, env, main)
		if err == nil {
			errs = append(errs, diff("explain", *z.Explain, Summarize(e)))
		}
	}
	rctx := runtime.NewContext(ctx, opts, nil)
	out, err := run(rctx, env, main)
	errs = append(errs, z.diffInternal(out, err), diff("warnings", z.Warnings, warnings(rctx)))
	return errors.Join(errs...)
}

func (z *ZTest) environment() (*exec.Environment, error) {
	cat := storage.NewCatalog()
	for _, c := range z.Collections {
		coll := cat.Create(c.Name)
		dec := gather.NewDecoder(strings.NewReader(c.Data))
		for {
			doc, err := dec.Decode()
			if err != nil {
				if errors.Is(err, io.EOF) {
					break
				}
				return nil, fmt.Errorf("collection %s: %w", c.Name, err)
			}
			if err := coll.Insert(doc); err != nil {
				return nil, err
			}
		}
		for _, def := range c.Indexes {
			if _, err := coll.EnsureIndex(def); err != nil {
				return nil, err
			}
		}
	}
	return exec.NewEnvironment(cat, nil, nil), nil
}

// plan converts the plan, which may be written in YAML, to JSON and
// unmarshals it.
func (z *ZTest) plan() (*dag.Main, error) {
	b, err := yaml.YAMLToJSON([]byte(z.Plan))
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	return dag.UnmarshalMain(b)
}

func run(rctx *runtime.Context, env *exec.Environment, main *dag.Main) (string, error) {
	vals, err := compiler.RunAll(rctx, env, main)
	if err != nil {
		return "", err
	}
	var b []byte
	for _, v := range vals {
		b = gather.AppendJSON(b, v)
		b = append(b, '\n')
	}
	return string(b), nil
}

func warnings(rctx *runtime.Context) string {
	var b strings.Builder
	for _, w := range rctx.Warnings {
		fmt.Fprintln(&b, w)
	}
	return b.String()
}

func (z *ZTest) diffInternal(out string, err error) error {
	var outDiffErr, errDiffErr error
	if z.Output != out {
		outDiffErr = diffErr("output", z.Output, out)
	}
	var errStr string
	if err != nil {
		// Append newline if err doesn't end with one.
		errStr = strings.TrimSuffix(err.Error(), "\n") + "\n"
	}
	if z.Error != errStr {
		errDiffErr = diffErr("error", z.Error, errStr)
	}
	return errors.Join(outDiffErr, errDiffErr)
}

func diff(name, expected, actual string) error {
	if expected == actual {
		return nil
	}
	return diffErr(name, expected, actual)
}

func diffErr(name, expected, actual string) error {
	if !utf8.ValidString(expected) {
		expected = hex.Dump([]byte(expected))
		actual = hex.Dump([]byte(actual))
	}
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		FromFile: "expected",
		B:        difflib.SplitLines(actual),
		ToFile:   "actual",
		Context:  5,
	})
	if err != nil {
		panic("ztest: " + err.Error())
	}
	return fmt.Errorf("expected and actual %s differ:\n%s", name, diff)
}

// Summarize renders an explained plan one node per line followed by the
// applied rules.
func Summarize(e *optimizer.Explain) string {
	var b strings.Builder
	for _, n := range e.Plan.Nodes {
		var details []string
		switch n.Type {
		case "SingletonNode":
			continue
		case "EnumerateCollectionNode":
			details = append(details, n.Collection)
		case "IndexNode":
			details = append(details, n.Collection)
			for _, def := range n.Indexes {
				details = append(details, def.Name)
			}
			if n.Reverse {
				details = append(details, "reverse")
			}
		case "EnumerateListNode", "CalculationNode":
			details = append(details, n.OutVariable.Name, "=", n.Expression)
		case "FilterNode", "ReturnNode":
			details = append(details, n.Expression)
		case "SortNode":
			var elems []string
			for _, e := range n.Elements {
				dir := "ASC"
				if !e.Ascending {
					dir = "DESC"
				}
				elems = append(elems, e.Expression+" "+dir)
			}
			details = append(details, strings.Join(elems, ", "))
			if n.Implicit {
				details = append(details, "implicit")
			}
		case "LimitNode":
			details = append(details, fmt.Sprintf("%d, %d", *n.Offset, *n.Limit))
			if n.FullCount {
				details = append(details, "fullCount")
			}
		case "CollectNode":
			details = append(details, n.CollectOptions.Method)
			if n.EliminatedSort {
				details = append(details, "eliminatedSort")
			}
			if n.MethodOverridden {
				details = append(details, "methodOverridden")
			}
		}
		fmt.Fprintln(&b, strings.Join(append([]string{n.Type}, details...), " "))
	}
	fmt.Fprintf(&b, "rules: %s\n", strings.Join(e.Plan.Rules, ", "))
	return b.String()
}
