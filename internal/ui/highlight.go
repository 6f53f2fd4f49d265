package ui

import (
	"bytes"
	"encoding/json"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/alecthomas/chroma/v2/styles"
	sigsyaml "sigs.k8s.io/yaml"
)

func init() {
	// Initialize chroma styles
	_ = styles.Get("dracula")
}

// Highlight applies syntax highlighting to content using chroma.
// format can be "json", "yaml", etc.
func Highlight(content, format string) string {
	var buf bytes.Buffer
	err := quick.Highlight(&buf, content, format, "terminal256", "dracula")
	if err != nil {
		return content
	}
	return buf.String()
}

// RenderDoc renders a raw JSON document for the describe pane, either
// pretty-printed JSON or converted to YAML.
func RenderDoc(raw []byte, asYAML bool) string {
	if asYAML {
		if y, err := sigsyaml.JSONToYAML(raw); err == nil {
			return Highlight(string(y), "yaml")
		}
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return Highlight(string(raw), "json")
	}
	return Highlight(buf.String(), "json")
}
