package review

import (
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	glamouransi "github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	xansi "github.com/charmbracelet/x/ansi"
)

const defaultRenderWidth = 80

var (
	rendererMu      sync.Mutex
	renderersByKind = map[rendererKey]*glamour.TermRenderer{}
)

type rendererKey struct {
	width int
	dark  bool
}

// Render formats markdown for a terminal. It falls back to the input when
// no renderer can be built.
func Render(markdown string, width int, dark bool) string {
	markdown = strings.TrimRight(markdown, "\n")
	if markdown == "" {
		return ""
	}
	if width <= 0 {
		width = defaultRenderWidth
	}
	r := getRenderer(width, dark)
	if r == nil {
		return markdown
	}
	out, err := r.Render(markdown)
	if err != nil {
		return markdown
	}
	out = strings.TrimRight(out, "\n")
	out = xansi.Hardwrap(out, width, true)
	return strings.TrimRight(out, "\n")
}

func getRenderer(width int, dark bool) *glamour.TermRenderer {
	rendererMu.Lock()
	defer rendererMu.Unlock()
	key := rendererKey{width: width, dark: dark}
	if r, ok := renderersByKind[key]; ok && r != nil {
		return r
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(buildStyleConfig(dark)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	renderersByKind[key] = r
	return r
}

func buildStyleConfig(dark bool) glamouransi.StyleConfig {
	var base glamouransi.StyleConfig
	if dark {
		base = styles.DarkStyleConfig
	} else {
		base = styles.LightStyleConfig
	}
	zero := uint(0)
	base.Document.Margin = &zero
	faint := true
	color := "245"
	base.BlockQuote.StylePrimitive.Faint = &faint
	base.BlockQuote.StylePrimitive.Color = &color
	return base
}
