package debug

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLog(t *testing.T) {
	dir := t.TempDir()
	Log("engine", "dropped before enable")

	require.NoError(t, Enable(dir))
	t.Cleanup(Disable)
	assert.True(t, Enabled())

	Log("engine", "beat=%d", 4)
	for i := 0; i < 10; i++ {
		LogEvery(5, "tick", "frame %d", i)
	}
	Disable()
	assert.False(t, Enabled())
	Log("engine", "dropped after disable")

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, "Debug logging started")
	assert.Contains(t, out, "beat=4")
	assert.NotContains(t, out, "dropped")
	assert.Equal(t, 2, strings.Count(out, "tick "))
	assert.Contains(t, out, "frame 4 (every 5, count=5)")
}
