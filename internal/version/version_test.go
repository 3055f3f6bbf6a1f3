package version

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUserAgentTracksVersion(t *testing.T) {
	old := Version
	t.Cleanup(func() { Version = old })

	Version = "9.9.9"
	require.Equal(t, "legacylift/9.9.9", UserAgent())
	require.Contains(t, Full(), "legacylift 9.9.9")
}
