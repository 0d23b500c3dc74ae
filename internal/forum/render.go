package forum

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	renderPolicy = bluemonday.UGCPolicy()
)

// RenderContent turns stored markdown content into sanitized HTML.
// Rendering errors yield an empty string; clients fall back to the raw content.
func RenderContent(content string) string {
	if content == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(content), &buf); err != nil {
		return ""
	}
	return string(renderPolicy.SanitizeBytes(buf.Bytes()))
}
