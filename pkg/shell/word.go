package shell

// QuoteType records the quoting context in which a Word was produced by the
// tokenizer. It is retained per-token (rather than discarded once splitting
// is done) because later stages treat quoted and unquoted tokens
// differently: a quoted "|" or ">" is just text, and a quoted filename that
// doesn't exist on disk is a candidate for the argument-mangling heuristics
// in mangle.go.
type QuoteType int

const (
	QuoteNone QuoteType = iota
	QuoteSingle
	QuoteDouble
)

// Word is one whitespace-delimited token produced by the tokenizer, tagged
// with how it was quoted.
type Word struct {
	Text  string
	Quote QuoteType
}

func words(ss ...string) []Word {
	ws := make([]Word, len(ss))
	for i, s := range ss {
		ws[i] = Word{Text: s, Quote: QuoteNone}
	}
	return ws
}

// wordTexts returns the plain text of each word, discarding quoting tags. Used
// wherever a consumer only cares about argv, not provenance (e.g. handing
// args to a builtin).
func wordTexts(ws []Word) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.Text
	}
	return out
}
