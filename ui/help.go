package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// helpMarkdown documents the expected workbook format for analysts.
const helpMarkdown = `# MAU Metrics Dashboard

Upload an Excel workbook to get started.

The workbook must have two sheets:

1. MAU Signals
2. MAU Devices

Each sheet should have the following format:

| Country  | Month1 | Month2 | ... |
|----------|--------|--------|-----|
| CountryA | Value1 | Value2 | ... |
| CountryB | Value1 | Value2 | ... |

Note: if you only have data for one month, the format should be:

| Country  | MonthName |
|----------|-----------|
| CountryA | Value1    |
| CountryB | Value2    |

Rows labelled ` + "`International`" + ` or ` + "`Global`" + ` are treated as
aggregate rollups: they are reported separately and never plotted on the map.
Values may carry thousands separators (for example ` + "`1,234`" + `).
`

// handleHelp renders the workbook format instructions as HTML.
func (s *Server) handleHelp(c *gin.Context) {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	rendered := markdown.ToHTML([]byte(helpMarkdown), p, renderer)
	c.Data(http.StatusOK, "text/html; charset=utf-8", rendered)
}
