package prompt

import "testing"

func TestCompose(t *testing.T) {
	tests := []struct {
		name      string
		base      string
		character string
		sceneType string
		want      string
	}{
		{"prompt only", "battle scene", "", "", "battle scene"},
		{"with character", "rooftop duel", "Rin", "", "rooftop duel, featuring Rin"},
		{"with scene type", "sunset city", "", "battle", "sunset city, battle scene"},
		{"all fields", "sunset city", "Rin", "battle", "sunset city, featuring Rin, battle scene"},
		{"whitespace trimmed", "  sunset city  ", "  ", " battle ", "sunset city, battle scene"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compose(tt.base, tt.character, tt.sceneType); got != tt.want {
				t.Fatalf("Compose = %q, want %q", got, tt.want)
			}
		})
	}
}
