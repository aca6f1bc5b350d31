package configuration

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadEnv_MissingFilesIgnored(t *testing.T) {
	n, err := LoadEnv([]string{"does-not-exist.env"})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestConfiguration_Load(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_NAME", "replyhub_test")
	t.Setenv("LOG_PATH", filepath.Join(dir, "app.log"))
	t.Setenv("PORT", "4321")

	c := &Configuration{}
	err := c.load(nil)
	require.NoError(t, err)
	t.Cleanup(c.Unload)

	assert.Equal(t, "replyhub_test", c.Database.Name)
	assert.Contains(t, c.Database.Opts, "dbname=replyhub_test")
	assert.Equal(t, "localhost:4321", c.SocketAddress)
	assert.NotNil(t, c.Logger())

	_, err = os.Stat(filepath.Join(dir, "app.log"))
	require.NoError(t, err)
}
