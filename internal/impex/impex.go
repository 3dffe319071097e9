// Package impex parses and renders the interchange formats used for
// translation-memory backups: a JSON array of {japanese, chinese} objects,
// or one pair per line separated by "|||" (falling back to a tab).
package impex

import (
	"encoding/json"
	"strings"

	"github.com/hiroyagi/yakumemo/internal/models"
)

// Candidate is one parsed source/target pair before validation.
type Candidate struct {
	Japanese string `json:"japanese"`
	Chinese  string `json:"chinese"`
}

// Parse decodes data as the JSON format first and falls back to the
// delimited-text format. Candidates missing either field are dropped, as
// are lines that do not split into at least two fields.
func Parse(data []byte) []Candidate {
	var decoded []Candidate
	if err := json.Unmarshal(data, &decoded); err == nil {
		out := make([]Candidate, 0, len(decoded))
		for _, c := range decoded {
			c.Japanese = strings.TrimSpace(c.Japanese)
			c.Chinese = strings.TrimSpace(c.Chinese)
			if c.Japanese == "" || c.Chinese == "" {
				continue
			}
			out = append(out, c)
		}
		return out
	}
	return parseDelimited(string(data))
}

func parseDelimited(content string) []Candidate {
	var out []Candidate
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		var parts []string
		if strings.Contains(line, "|||") {
			parts = strings.Split(line, "|||")
		} else {
			parts = strings.Split(line, "\t")
		}
		if len(parts) < 2 {
			continue
		}
		source := strings.TrimSpace(parts[0])
		target := strings.TrimSpace(parts[1])
		if source == "" || target == "" {
			continue
		}
		out = append(out, Candidate{Japanese: source, Chinese: target})
	}
	return out
}

// Export renders pairs as the JSON array format, the same shape Parse
// accepts, so an exported corpus can be imported back unchanged.
func Export(pairs []models.TranslationPair) ([]byte, error) {
	out := make([]Candidate, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, Candidate{Japanese: p.SourceText, Chinese: p.TargetText})
	}
	return json.MarshalIndent(out, "", "  ")
}
