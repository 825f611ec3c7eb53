package massimport

import (
	"math/big"
	"regexp"
	"strings"
	"unicode"

	"hse-backend/internal/shared/util"
)

var (
	// Only forms that cannot survive normalization are rewritten, so the
	// function stays a fixed point on its own output.
	scientificRe    = regexp.MustCompile(`^(?:[0-9]+\.[0-9]+[eE][+-]?[0-9]+|[0-9]+[eE][+-][0-9]+)$`)
	floatArtifactRe = regexp.MustCompile(`^([0-9]+)\.0+$`)
)

// NormalizeIdentifier turns a raw CIN (cell value or PDF file name) into its
// canonical form: uppercase ASCII letters and digits only. An empty result
// means the identifier is missing.
func NormalizeIdentifier(raw string) string {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, raw)
	if len(s) >= 4 && strings.EqualFold(s[len(s)-4:], ".pdf") {
		s = s[:len(s)-4]
	}

	switch {
	case scientificRe.MatchString(s):
		if f, ok := new(big.Float).SetPrec(256).SetString(s); ok {
			if i, _ := f.Int(nil); i != nil {
				s = i.String()
			}
		}
	case floatArtifactRe.MatchString(s):
		s = floatArtifactRe.ReplaceAllString(s, "$1")
	}

	s = strings.ToUpper(util.FoldAccents(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}
