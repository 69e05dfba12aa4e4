package observability

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseHeaders(t *testing.T) {
	require.Nil(t, parseHeaders(""))
	require.Nil(t, parseHeaders("broken, =x"))
	got := parseHeaders("api-key=abc, x-team = core")
	require.Equal(t, map[string]string{"api-key": "abc", "x-team": "core"}, got)
}

func TestClampRatio(t *testing.T) {
	require.Equal(t, 0.0, clampRatio(-1))
	require.Equal(t, 1.0, clampRatio(3))
	require.Equal(t, 0.25, clampRatio(0.25))
}
