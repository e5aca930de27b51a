package pipeline

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SourceSetEntry is one (URL, condition) pair of an assembled source-set.
type SourceSetEntry struct {
	URL       string
	Condition string
}

// Descriptor is the value a processed image request evaluates to: either an
// img-style descriptor (src/srcset, optional dimensions) or a bg-style one
// (src wrapped in url(...), imageSet), depending on the preset.
type Descriptor struct {
	Src      string `json:"src"`
	SrcSet   string `json:"srcset,omitempty"`
	ImageSet string `json:"imageSet,omitempty"`
	Width    int    `json:"width,omitempty"`
	Height   int    `json:"height,omitempty"`
}

// ModuleSource serializes the descriptor as an ES module whose evaluated
// default export is the descriptor value.
func (d *Descriptor) ModuleSource() (string, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return "", fmt.Errorf("failed to serialize descriptor: %w", err)
	}
	return "export default " + string(data) + ";\n", nil
}

// joinEntries assembles the srcset/imageSet string: each entry space-joins
// its URL and condition (conditions may be empty), entries comma-join in
// their already-sorted order.
func joinEntries(entries []SourceSetEntry) string {
	parts := make([]string, 0, len(entries))
	for _, e := range entries {
		parts = append(parts, strings.TrimSpace(e.URL+" "+e.Condition))
	}
	return strings.Join(parts, ", ")
}
