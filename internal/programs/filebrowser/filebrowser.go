// Package filebrowser lists the bundled read-only filesystem.
package filebrowser

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"

	"github.com/1broseidon/workbench/internal/registry"
)

//go:embed filesystem
var files embed.FS

// tree renders root as an indented listing in walk order.
func tree(fsys fs.FS, root string) []string {
	var lines []string
	_ = fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || path == root {
			return nil
		}
		depth := strings.Count(strings.TrimPrefix(path, root+"/"), "/")
		indent := strings.Repeat("  ", depth)
		if d.IsDir() {
			lines = append(lines, fmt.Sprintf("%s[%s]", indent, d.Name()))
			return nil
		}
		size := int64(0)
		if info, err := d.Info(); err == nil {
			size = info.Size()
		}
		lines = append(lines, fmt.Sprintf("%s%s  %dB", indent, d.Name(), size))
		return nil
	})
	return lines
}

func render(registry.RenderContext) []string {
	return append([]string{"/", ""}, tree(files, "filesystem")...)
}

func init() {
	registry.Register(registry.Program{
		ID:      "filebrowser",
		Title:   "File Browser",
		Icon:    "#",
		Content: render,
	})
}
