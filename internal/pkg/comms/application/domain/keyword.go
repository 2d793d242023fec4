package comms

import "strings"

// Keyword is the classification of an inbound SMS body against the
// carrier-mandated command grammar.
type Keyword int

const (
	KeywordNone Keyword = iota
	KeywordStop
	KeywordStart
	KeywordHelp
)

var keywordTable = map[string]Keyword{
	"STOP":        KeywordStop,
	"UNSUBSCRIBE": KeywordStop,
	"CANCEL":      KeywordStop,
	"END":         KeywordStop,
	"QUIT":        KeywordStop,
	"START":       KeywordStart,
	"YES":         KeywordStart,
	"HELP":        KeywordHelp,
}

// ClassifyKeyword matches a trimmed, case-insensitive body against the
// command grammar. Only an exact single-word match counts; "STOP please"
// is a normal message.
func ClassifyKeyword(body string) Keyword {
	normalized := strings.ToUpper(strings.TrimSpace(body))
	if kw, ok := keywordTable[normalized]; ok {
		return kw
	}
	return KeywordNone
}
