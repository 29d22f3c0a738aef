package semantic_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brimdata/sqlsem/compiler/semantic"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sqlsem.yaml")
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := semantic.LoadConfig(writeConfig(t, "case_sensitive: false\nsuggestions: 5\n"))
	require.NoError(t, err)
	def := semantic.DefaultConfig()
	assert.False(t, cfg.CaseSensitive)
	assert.Equal(t, 5, cfg.Suggestions)
	assert.Equal(t, def.DefaultCharset, cfg.DefaultCharset)
	assert.Equal(t, def.CatalogCacheSize, cfg.CatalogCacheSize)

	_, err = semantic.LoadConfig(writeConfig(t, "suggestions: -1\n"))
	assert.Error(t, err)
	_, err = semantic.LoadConfig(writeConfig(t, "default_charset: NO-SUCH-CHARSET\n"))
	assert.Error(t, err)
	_, err = semantic.LoadConfig(writeConfig(t, "case_sensitive: [\n"))
	assert.Error(t, err)
	_, err = semantic.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestMetrics(t *testing.T) {
	x := newFixture(t)
	reg := prometheus.NewRegistry()
	x.v.SetMetrics(semantic.NewMetrics(reg))
	x.valid(t, "(SELECT :list [ENAME] :from EMP)")
	x.invalid(t, "(SELECT :list [ENAME] :from NOSUCH)", semantic.TableNotFound)
	expected := `
# HELP sqlsem_validation_errors_total Number of failed validations, by error code.
# TYPE sqlsem_validation_errors_total counter
sqlsem_validation_errors_total{code="TableNotFound"} 1
# HELP sqlsem_validations_total Number of statements validated, by result.
# TYPE sqlsem_validations_total counter
sqlsem_validations_total{result="error"} 1
sqlsem_validations_total{result="ok"} 1
`
	err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "sqlsem_validations_total", "sqlsem_validation_errors_total")
	assert.NoError(t, err)
	n, err := testutil.GatherAndCount(reg, "sqlsem_validation_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
