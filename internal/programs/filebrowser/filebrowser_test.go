package filebrowser

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"

	"github.com/1broseidon/workbench/internal/registry"
)

func TestTree_IndentsNestedEntries(t *testing.T) {
	fsys := fstest.MapFS{
		"root/a.txt":       {Data: []byte("hello")},
		"root/docs/b.txt":  {Data: []byte("hi")},
		"root/docs/c/d.md": {Data: []byte("")},
	}
	assert.Equal(t, []string{
		"a.txt  5B",
		"[docs]",
		"  b.txt  2B",
		"  [c]",
		"    d.md  0B",
	}, tree(fsys, "root"))
}

func TestRender_ListsBundledFiles(t *testing.T) {
	lines := render(registry.RenderContext{})
	assert.Contains(t, lines, "[docs]")
	assert.Contains(t, lines, "  windows.txt  70B")
}
