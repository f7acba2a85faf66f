package expect

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yusing/envinject/internal/common"
)

func init() {
	if common.IsTest {
		// force verbose output
		os.Args = append([]string{os.Args[0], "-test.v"}, os.Args[1:]...)
	}
}

var (
	NoError       = require.NoError
	HasError      = require.Error
	True          = require.True
	False         = require.False
	Nil           = require.Nil
	ErrorContains = require.ErrorContains
)

func ErrorIs(t *testing.T, expected error, err error, msgAndArgs ...any) {
	t.Helper()
	require.ErrorIs(t, err, expected, msgAndArgs...)
}

func Equal[T any](t *testing.T, got T, want T, msgAndArgs ...any) {
	t.Helper()
	require.EqualValues(t, want, got, msgAndArgs...)
}

// Count asserts that sub occurs exactly n times in s.
func Count(t *testing.T, s string, sub string, n int, msgAndArgs ...any) {
	t.Helper()
	require.Equal(t, n, strings.Count(s, sub), msgAndArgs...)
}
