package shell

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/pmezard/go-difflib/difflib"
)

// mangleArgument is a bounded compatibility heuristic for quoted external
// arguments that don't name an existing filesystem entry. It is gated by
// the shell's EnableArgMangling configuration flag and only applies to
// tokens whose quoting was Single or Double — unquoted tokens are passed
// through unchanged.
//
// The chain, in order: try the literal text quoted in single quotes, then
// with one or two trailing backslashes (quoted and unquoted), then scan the
// parent directory for an entry containing the text as a substring, and
// finally fall back to the parent directory's closest match by edit
// distance. Grounded on the original implementation's argument-resolution
// pass in pipeline.rs; see DESIGN.md.
func mangleArgument(w Word) string {
	if w.Quote == QuoteNone {
		return w.Text
	}
	if _, err := os.Stat(w.Text); err == nil {
		return w.Text
	}

	candidates := []string{
		"'" + w.Text + "'",
		w.Text + "\\",
		w.Text + "\\\\",
		"'" + w.Text + "\\'",
		"'" + w.Text + "\\\\'",
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}

	dir := filepath.Dir(w.Text)
	base := filepath.Base(w.Text)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return w.Text
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}

	for _, name := range names {
		if strings.Contains(name, base) {
			return filepath.Join(dir, name)
		}
	}

	best, ok := closestByEditDistance(base, names)
	if !ok {
		return w.Text
	}
	return filepath.Join(dir, best)
}

// closestByEditDistance ranks candidates first by difflib's quick-ratio
// similarity score, falling back to Levenshtein edit distance to break ties
// among the top-scoring candidates — matching the original's "nearest
// neighbor" fallback while using the pack's string-matching libraries
// instead of a hand-rolled scorer.
func closestByEditDistance(target string, candidates []string) (string, bool) {
	if len(candidates) == 0 {
		return "", false
	}

	sm := difflib.NewMatcher(splitChars(target), nil)

	type scored struct {
		name  string
		ratio float64
		dist  int
	}

	var scoredCandidates []scored
	for _, c := range candidates {
		sm.SetSeq2(splitChars(c))
		scoredCandidates = append(scoredCandidates, scored{
			name:  c,
			ratio: sm.QuickRatio(),
			dist:  levenshtein.ComputeDistance(target, c),
		})
	}

	best := scoredCandidates[0]
	for _, s := range scoredCandidates[1:] {
		if s.ratio > best.ratio || (s.ratio == best.ratio && s.dist < best.dist) {
			best = s
		}
	}

	return best.name, true
}

func splitChars(s string) []string {
	runes := []rune(s)
	out := make([]string, len(runes))
	for i, r := range runes {
		out[i] = string(r)
	}
	return out
}
