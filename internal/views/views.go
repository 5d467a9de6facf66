// Package views holds the embedded HTML templates rendered by the handlers.
package views

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/gofiber/template/html/v2"
	"github.com/shopspring/decimal"
)

// BaseLayout wraps every page.
const BaseLayout = "layouts/base"

//go:embed templates
var templates embed.FS

// NewEngine returns a fiber view engine over the embedded templates.
func NewEngine() (*html.Engine, error) {
	root, err := fs.Sub(templates, "templates")
	if err != nil {
		return nil, fmt.Errorf("failed to open embedded templates: %w", err)
	}
	engine := html.NewFileSystem(http.FS(root), ".html")
	engine.AddFunc("money", func(d decimal.Decimal) string {
		return d.StringFixed(2)
	})
	return engine, nil
}
