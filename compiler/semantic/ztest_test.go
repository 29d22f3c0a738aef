package semantic_test

import (
	"testing"

	"github.com/brimdata/sqlsem/ztest"
)

func TestZTest(t *testing.T) { ztest.Run(t, "testdata/ztest") }
