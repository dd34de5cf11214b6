package device

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDetectReturnsSaneProfile(t *testing.T) {
	profile := Detect()

	require.GreaterOrEqual(t, profile.LogicalCores, 1)
	require.Equal(t, runtime.GOARCH, profile.Architecture)
	require.Equal(t, runtime.GOOS, profile.OS)
	require.GreaterOrEqual(t, profile.TotalMemoryGB, float64(0))
}

func TestRoundToTenth(t *testing.T) {
	require.Equal(t, 1.2, roundToTenth(1.24))
	require.Equal(t, 1.3, roundToTenth(1.25))
	require.Equal(t, 0.0, roundToTenth(0))
}
