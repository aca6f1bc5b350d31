package application

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectSchemaStatements(t *testing.T) {
	t.Parallel()
	fsys := fstest.MapFS{
		"schema/tables.sql": &fstest.MapFile{Data: []byte(`
CREATE TABLE IF NOT EXISTS widgets (
    id uuid PRIMARY KEY,
    label varchar(255) NOT NULL DEFAULT 'none'
);

-- one per label
CREATE UNIQUE INDEX IF NOT EXISTS widgets_label_idx ON widgets (label);
`)},
		"schema/README.md": &fstest.MapFile{Data: []byte("not sql; ignored")},
	}

	statements, err := collectSchemaStatements(fsys)
	require.NoError(t, err)
	require.Len(t, statements, 2)
	assert.Contains(t, statements[0], "CREATE TABLE IF NOT EXISTS widgets")
	assert.Contains(t, statements[1], "CREATE UNIQUE INDEX IF NOT EXISTS widgets_label_idx")
}

func TestCollectSchemaStatements_EmptyFS(t *testing.T) {
	t.Parallel()
	statements, err := collectSchemaStatements(fstest.MapFS{})
	require.NoError(t, err)
	assert.Empty(t, statements)
}

func TestServiceResolution(t *testing.T) {
	t.Parallel()
	type widgetService struct{ name string }

	app := New(&ApplicationOptions{})
	svc := &widgetService{name: "widgets"}
	app.RegisterServices(svc)

	assert.Same(t, svc, app.Service(widgetService{}))
	assert.Same(t, svc, app.Service(&widgetService{}))
	assert.Nil(t, app.Service("unregistered"))
}
