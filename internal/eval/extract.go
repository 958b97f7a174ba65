package eval

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/powder-labs/powder/internal/model"
)

// diacriticFolder strips combining marks so "Montréal" and "Montreal"
// compare equal after lowering.
var diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// foldName normalizes a resort name for matching: diacritics stripped,
// lowercased, punctuation dropped, whitespace collapsed to single spaces.
func foldName(s string) string {
	folded, _, err := transform.String(diacriticFolder, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	b.Grow(len(folded))
	lastSpace := true
	for _, r := range strings.ToLower(folded) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case !lastSpace:
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimRight(b.String(), " ")
}

// ExtractResorts finds catalog mountains mentioned in free text, in order of
// first mention. Matching is whole-word over folded text, so "Stowe" does
// not fire on "stowed" and "Smugglers' Notch" matches "Smugglers Notch".
func ExtractResorts(text string, mountains []model.Mountain) []string {
	folded := " " + foldName(text) + " "

	type mention struct {
		name string
		pos  int
	}
	var found []mention
	for _, m := range mountains {
		needle := foldName(m.Name)
		if needle == "" {
			continue
		}
		pos := strings.Index(folded, " "+needle+" ")
		if pos < 0 {
			continue
		}
		found = append(found, mention{name: m.Name, pos: pos})
	}

	// Insertion sort by first occurrence keeps the producer's own ordering.
	for i := 1; i < len(found); i++ {
		for j := i; j > 0 && found[j].pos < found[j-1].pos; j-- {
			found[j], found[j-1] = found[j-1], found[j]
		}
	}

	names := make([]string, len(found))
	for i, f := range found {
		names[i] = f.name
	}
	return names
}

// containsName reports whether any of the folded expected names matches name.
func containsName(expected []string, name string) bool {
	folded := foldName(name)
	for _, e := range expected {
		if foldName(e) == folded {
			return true
		}
	}
	return false
}
