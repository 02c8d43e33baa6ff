// Package prompt assembles the provider-facing instruction from the fields
// of a generation request. Composition stays deliberately thin; style
// presets and templating belong to the clients sending the request.
package prompt

import "strings"

// BatchSize is how many images one generation request fans out to.
const BatchSize = 16

// Compose builds the instruction sent to the render provider. The free-form
// prompt leads; character and scene hints follow when present.
func Compose(base, character, sceneType string) string {
	parts := make([]string, 0, 3)
	if p := strings.TrimSpace(base); p != "" {
		parts = append(parts, p)
	}
	if c := strings.TrimSpace(character); c != "" {
		parts = append(parts, "featuring "+c)
	}
	if s := strings.TrimSpace(sceneType); s != "" {
		parts = append(parts, s+" scene")
	}
	return strings.Join(parts, ", ")
}
