package main

import (
	"bytes"
	"io"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sales = "../../catalog/testdata/sales.yaml"

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := command()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestGolden(t *testing.T) {
	cases := []struct {
		name string
		args []string
		fail bool
	}{
		{"validate-text", []string{"validate", "--catalog", sales, "-c", "(SELECT :list [ENAME SAL] :from EMP :where (= DEPTNO ?))"}, false},
		{"validate-json", []string{"validate", "--catalog", sales, "--format", "json", "-c", "(SELECT :list [ENAME SAL] :from EMP :where (= DEPTNO ?))"}, false},
		{"validate-error", []string{"validate", "--catalog", sales, "-c", "(SELECT :list [ENAME] :from EMPS)"}, true},
		{"validate-files", []string{"validate", "--catalog", sales, "testdata/emp.sx", "testdata/bad.sx"}, true},
		{"rewrite", []string{"rewrite", "-c", "(ORDER_BY :query (SELECT :list [ENAME] :from EMP) :order [ENAME])"}, false},
		{"hints", []string{"hints", "--catalog", sales, "--pos", "16", "-c", "(SELECT :list [EN] :from EMP)"}, false},
		{"hints-json", []string{"hints", "--catalog", sales, "--format", "json", "--pos", "15", "-c", "(SELECT :list [E] :from EMP)"}, false},
	}
	g := goldie.New(t)
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			out, err := run(t, c.args...)
			if c.fail {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			g.Assert(t, c.name, []byte(out))
		})
	}
}

func TestUsageErrors(t *testing.T) {
	_, err := run(t, "validate", "-c", "(SELECT :list [ENAME] :from EMP)")
	assert.EqualError(t, err, "no catalog specified (use --catalog)")
	_, err = run(t, "validate", "--catalog", sales)
	assert.EqualError(t, err, "no statement specified")
	_, err = run(t, "validate", "--format", "xml", "--catalog", sales, "-c", "(SELECT :list [ENAME] :from EMP)")
	assert.ErrorContains(t, err, `invalid format "xml"`)
	_, err = run(t, "hints", "--catalog", sales, "-c", "(SELECT :list [EN] :from EMP)")
	assert.EqualError(t, err, "--pos is required")
	_, err = run(t, "validate", "--catalog", sales, "--config", "testdata/missing.yaml", "-c", "(SELECT :list [ENAME] :from EMP)")
	assert.Error(t, err)
}

func TestMetricsFile(t *testing.T) {
	path := t.TempDir() + "/metrics.prom"
	_, err := run(t, "validate", "--catalog", sales, "--metrics-file", path, "testdata/emp.sx", "testdata/bad.sx")
	require.Error(t, err)
	assert.FileExists(t, path)
}
