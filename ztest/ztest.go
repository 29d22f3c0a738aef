// Package ztest runs formulaic tests ("ztests") that can be (1) run in-process
// against the compiled-in validator or (2) run as a bash script invoking the
// sqlsem command.  The first case comprises the "statement test style" and the
// second the "script test style".  Case (1) is easier to debug by simply
// running "go test".
//
// In the statement style, ztest validates a statement written in tree
// notation against a catalog and checks for an expected output or error.
//
// A statement-style test is defined in a YAML file.
//
//	catalog: ../../catalog/testdata/sales.yaml
//
//	statement: |
//	  (SELECT :list [ENAME] :from EMP)
//
//	output: |
//	  RecordType(VARCHAR(20) NOT NULL ENAME)
//
// The catalog path is relative to the directory of the YAML file.  The mode
// field selects what is run: validate (the default) prints the row type and
// the types of dynamic parameters, rewrite prints the canonical form of the
// statement and hints prints the completions for the identifier at byte
// offset pos.  Output is text unless output-flags says otherwise, e.g.,
//
//	output-flags: --format json
//
// A failed validation is compared against the error field, which holds the
// error positioned in the statement text.
//
//	statement: |
//	  (SELECT :list [NAME] :from EMP)
//
//	error: |
//	  Column 'NAME' not found in any table (did you mean 'ENAME'?) at line 1, column 16:
//	  (SELECT :list [NAME] :from EMP)
//	                 ~~~~
//
// Validator settings may be given inline in the format read by
// semantic.LoadConfig:
//
//	config: |
//	  case_sensitive: false
//
// Alternatively, tests can be configured to run as shell scripts.  Scripts
// are executed by "bash -e -o pipefail", and a nonzero shell exit code causes
// a test failure.  The yaml sets up a collection of input files and stdin,
// the script runs, and the test driver compares expected output files,
// stdout, and stderr with data in the yaml spec.
//
//	inputs:
//	  - name: q.sx
//	    data: |
//	      (SELECT :list [ENAME] :from EMP)
//	  - name: sales.yaml
//	    source: ../../catalog/testdata/sales.yaml
//
//	script: |
//	  sqlsem validate --catalog sales.yaml q.sx
//
//	outputs:
//	  - name: stdout
//	    data: |
//	      RecordType(VARCHAR(20) NOT NULL ENAME)
//
// Each input and output has a name.  For inputs, a file (source) or inline
// data (data) may be specified.  If no data is specified, then a file of the
// same name as the name field is looked for in the same directory as the
// yaml file.  For outputs you can also specify a "regexp" string instead of
// expected data.
//
// Ztest YAML files for a package should reside in a subdirectory named
// testdata/ztest and pkg_test.go should contain a Go test that calls Run.
//
//	func TestZTest(t *testing.T) { ztest.Run(t, "testdata/ztest") }
//
// If the ZTEST_PATH environment variable is unset or empty, Run runs the
// statement tests in the current process and skips the script tests.
// Otherwise, Run runs only the script tests, using the sqlsem executable in
// the directories specified by ZTEST_PATH.
//
// Tests of either style can be skipped by setting the skip field to a
// non-empty string.
package ztest

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/brimdata/sqlsem/catalog"
	"github.com/brimdata/sqlsem/cli/outputflags"
	"github.com/brimdata/sqlsem/compiler/operator"
	"github.com/brimdata/sqlsem/compiler/semantic"
	"github.com/brimdata/sqlsem/compiler/sexpr"
	"github.com/brimdata/sqlsem/types"
	"github.com/kr/pretty"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

func ShellPath() string {
	return os.Getenv("ZTEST_PATH")
}

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
	shellPath := ShellPath()
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
			b.Test.Run(t, shellPath, b.FileName)
		})
	}
}

type File struct {
	// Name is the name of the file with respect to the directory in which
	// the test script runs.  For inputs, if no data source is specified,
	// then name is also the name of a data file in the directory containing
	// the yaml test file, which is copied to the test script directory.
	// Name can also be stdin (for inputs) or stdout or stderr (for outputs).
	Name   string  `yaml:"name"`
	Data   *string `yaml:"data,omitempty"`
	Source string  `yaml:"source,omitempty"`
	// Re is a regular expression describing the contents of the file,
	// which is only applicable to output files.
	Re string `yaml:"regexp,omitempty"`
}

func (f *File) check() error {
	if f.Data != nil && f.Source != "" {
		return fmt.Errorf("%s: must specify at most one of data or source", f.Name)
	}
	return nil
}

func (f *File) load(dir string) ([]byte, *regexp.Regexp, error) {
	if f.Data != nil {
		return []byte(*f.Data), nil, nil
	}
	if f.Source != "" {
		b, err := os.ReadFile(filepath.Join(dir, f.Source))
		return b, nil, err
	}
	if f.Re != "" {
		re, err := regexp.Compile(f.Re)
		return nil, re, err
	}
	b, err := os.ReadFile(filepath.Join(dir, f.Name))
	if err == nil {
		return b, nil, nil
	}
	if os.IsNotExist(err) {
		err = fmt.Errorf("%s: no data source", f.Name)
	}
	return nil, nil, err
}

// ZTest defines a ztest.
type ZTest struct {
	Skip string `yaml:"skip,omitempty"`
	Tag  string `yaml:"tag,omitempty"`

	// For statement-style tests.
	Statement   string `yaml:"statement,omitempty"`
	Catalog     string `yaml:"catalog,omitempty"`
	Config      string `yaml:"config,omitempty"`
	Mode        string `yaml:"mode,omitempty"`
	Pos         int    `yaml:"pos,omitempty"`
	Output      string `yaml:"output,omitempty"`
	OutputFlags string `yaml:"output-flags,omitempty"`
	Error       string `yaml:"error,omitempty"`

	// For script-style tests.
	Script  string   `yaml:"script,omitempty"`
	Inputs  []File   `yaml:"inputs,omitempty"`
	Outputs []File   `yaml:"outputs,omitempty"`
	Env     []string `yaml:"env,omitempty"`
}

func (z *ZTest) check() error {
	if z.Script != "" {
		if z.Outputs == nil {
			return errors.New("outputs field missing in a sh test")
		}
		for _, f := range z.Inputs {
			if err := f.check(); err != nil {
				return err
			}
			if f.Re != "" {
				return fmt.Errorf("%s: cannot use regexp in an input", f.Name)
			}
		}
		for _, f := range z.Outputs {
			if err := f.check(); err != nil {
				return err
			}
		}
		return nil
	}
	if z.Statement == "" {
		return errors.New("either a statement field or script field must be present")
	}
	switch z.Mode {
	case "", "validate", "hints":
		if z.Catalog == "" {
			return errors.New("catalog field missing")
		}
	case "rewrite":
	default:
		return fmt.Errorf("unknown mode %q", z.Mode)
	}
	return nil
}

// FromYAMLFile loads a ZTest from the YAML file named filename.
func FromYAMLFile(filename string) (*ZTest, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	var z ZTest
	if err := dec.Decode(&z); err != nil {
		return nil, err
	}
	var extra ZTest
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, errors.New("file must contain one YAML document")
	}
	return &z, nil
}

func (z *ZTest) ShouldSkip(path string) string {
	switch {
	case z.Script != "" && path == "":
		return "script test on in-process run"
	case z.Statement != "" && path != "":
		return "in-process test on script run"
	case z.Skip != "":
		return z.Skip
	case z.Tag != "" && z.Tag != os.Getenv("ZTEST_TAG"):
		return fmt.Sprintf("tag %q does not match ZTEST_TAG=%q", z.Tag, os.Getenv("ZTEST_TAG"))
	}
	return ""
}

func (z *ZTest) RunScript(ctx context.Context, shellPath, testDir, tempDir string) error {
	if err := z.check(); err != nil {
		return fmt.Errorf("bad yaml format: %w", err)
	}
	return runsh(ctx, shellPath, testDir, tempDir, z)
}

// RunInternal runs a statement-style test in the current process.  testDir
// is the directory holding the test's YAML file.
func (z *ZTest) RunInternal(testDir string) error {
	if err := z.check(); err != nil {
		return fmt.Errorf("bad yaml format: %w", err)
	}
	out, err := z.runInternal(testDir)
	return z.diffInternal(out, err)
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

func (z *ZTest) Run(t *testing.T, path, filename string) {
	if msg := z.ShouldSkip(path); msg != "" {
		t.Skip("skipping test:", msg)
	}
	var err error
	if z.Script != "" {
		err = z.RunScript(t.Context(), path, filepath.Dir(filename), t.TempDir())
	} else {
		err = z.RunInternal(filepath.Dir(filename))
	}
	if err != nil {
		t.Logf("%# v", pretty.Formatter(z))
		t.Fatalf("%s: %s", filename, err)
	}
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

func runsh(ctx context.Context, path, testDir, tempDir string, zt *ZTest) error {
	var stdin io.Reader
	for _, f := range zt.Inputs {
		b, _, err := f.load(testDir)
		if err != nil {
			return err
		}
		if f.Name == "stdin" {
			stdin = bytes.NewReader(b)
			continue
		}
		if err := os.WriteFile(filepath.Join(tempDir, f.Name), b, 0644); err != nil {
			return err
		}
	}
	stdout, stderr, err := RunShell(ctx, tempDir, path, zt.Script, stdin, zt.Env)
	if err != nil {
		return fmt.Errorf("script failed: %w\n=== stdout ===\n%s=== stderr ===\n%s",
			err, stdout, stderr)
	}
	for _, f := range zt.Outputs {
		var actual string
		switch f.Name {
		case "stdout":
			actual = stdout
		case "stderr":
			actual = stderr
		default:
			b, err := os.ReadFile(filepath.Join(tempDir, f.Name))
			if err != nil {
				return fmt.Errorf("%s: %w", f.Name, err)
			}
			actual = string(b)
		}
		expected, expectedRE, err := f.load(testDir)
		if err != nil {
			return err
		}
		if expected != nil && string(expected) != actual {
			return diffErr(f.Name, string(expected), actual)
		}
		if expectedRE != nil && !expectedRE.MatchString(actual) {
			return fmt.Errorf("%s: regexp %q does not match %q", f.Name, expectedRE, actual)
		}
	}
	return nil
}

// runInternal runs the statement and returns what the sqlsem command would
// print.  A validation failure is returned as an error positioned in the
// statement text.
func (z *ZTest) runInternal(testDir string) (string, error) {
	fs := pflag.NewFlagSet("output-flags", pflag.ContinueOnError)
	var outflags outputflags.Flags
	outflags.SetFlags(fs)
	if err := fs.Parse(strings.Fields(z.OutputFlags)); err != nil {
		return "", err
	}
	if err := outflags.Init(); err != nil {
		return "", err
	}
	cfg := semantic.DefaultConfig()
	if z.Config != "" {
		if err := yaml.Unmarshal([]byte(z.Config), &cfg); err != nil {
			return "", err
		}
	}
	f := types.NewFactory()
	ops := operator.NewStdCatalog(f)
	stmt, err := sexpr.Parse(ops, z.Statement)
	if err != nil {
		return "", err
	}
	var out bytes.Buffer
	w := outflags.NewWriter(&out, false)
	if z.Mode == "rewrite" {
		tree, root, err := semantic.Rewrite(ops, stmt.Tree(), stmt.Root())
		if err != nil {
			return "", err
		}
		err = w.Tree("", tree, root)
		return out.String(), err
	}
	reader, err := catalog.Load(f, filepath.Join(testDir, z.Catalog))
	if err != nil {
		return "", err
	}
	v := semantic.New(reader, ops, f, nil, cfg)
	if z.Mode == "hints" {
		hints, err := v.LookupHints(stmt.Tree(), stmt.Root(), z.Pos)
		if err != nil {
			return "", err
		}
		err = w.Hints("", hints)
		return out.String(), err
	}
	res, err := v.Validate(stmt.Tree(), stmt.Root())
	if err != nil {
		return "", semantic.Locate(err, stmt.Files())
	}
	err = w.Validated("", res)
	return out.String(), err
}
