package massimport

import (
	"strings"
	"unicode"

	"hse-backend/internal/shared/util"
)

// NormalizeKey folds a human label into a machine key:
// "Mise à pied" -> "mise_a_pied", "Formation EPI" -> "formation_epi".
func NormalizeKey(label string) string {
	s := strings.ToLower(util.FoldAccents(strings.TrimSpace(label)))
	var b strings.Builder
	b.Grow(len(s))
	lastUnderscore := false
	for _, r := range s {
		switch {
		case unicode.IsSpace(r), r == '-', r == '\'', r == '’', r == '_':
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		default:
			b.WriteRune(r)
			lastUnderscore = false
		}
	}
	return strings.Trim(b.String(), "_")
}
