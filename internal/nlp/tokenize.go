package nlp

import (
	"unicode"
)

// DefaultMaxInputLen bounds instruction length in runes.
const DefaultMaxInputLen = 1000

// Tokenize normalizes raw instruction text and tags it with the given
// tagger. It is a pure function over (text, tagger): lowercasing, noise
// stripping and whitespace splitting with rune offsets into the source,
// in source order. A tagger failure surfaces as ModelUnavailable; tags
// are never silently omitted because every downstream stage assumes
// they exist.
func Tokenize(text string, tagger Tagger, maxLen int) ([]Token, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxInputLen
	}
	runes := []rune(text)
	if len(runes) > maxLen {
		return nil, &ParseError{Code: FailInputTooLong, Text: text}
	}

	var tokens []Token
	start := -1
	var norm []rune
	flush := func(end int) {
		if start < 0 {
			return
		}
		tokens = append(tokens, Token{
			Surface: string(runes[start:end]),
			Norm:    string(norm),
			Start:   start,
			End:     end,
		})
		start = -1
		norm = norm[:0]
	}
	for i, r := range runes {
		if keepRune(r) {
			if start < 0 {
				start = i
			}
			norm = append(norm, unicode.ToLower(r))
			continue
		}
		flush(i)
	}
	flush(len(runes))

	words := make([]string, len(tokens))
	for i, t := range tokens {
		words[i] = t.Norm
	}
	tags, err := tagger.Tag(words)
	if err != nil {
		return nil, &ParseError{Code: FailModelUnavailable, Text: text, cause: err}
	}
	for i := range tokens {
		if i < len(tags) {
			tokens[i].Tag = tags[i]
		} else {
			tokens[i].Tag = PosOther
		}
	}
	return tokens, nil
}

// keepRune keeps letters, digits and the characters that carry meaning in
// command text ('#' task refs, ':' clock times). Everything else is
// treated as separator noise.
func keepRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '#' || r == ':'
}
