package nlp

import (
	"strings"

	prose "github.com/jdkato/prose/v2"
)

// ProseTagger tags English words with the prose statistical model. The
// model is embedded in the library and warmed once in the constructor;
// after that the tagger is read-only and safe for concurrent parses.
type ProseTagger struct{}

// NewProseTagger loads the English model. A load failure here is the
// ModelUnavailable condition and must abort startup, not degrade to an
// untagged parse.
func NewProseTagger() (*ProseTagger, error) {
	if _, err := prose.NewDocument("warm up", prose.WithSegmentation(false)); err != nil {
		return nil, err
	}
	return &ProseTagger{}, nil
}

func (t *ProseTagger) Language() string { return "en" }

func (t *ProseTagger) Tag(words []string) ([]Pos, error) {
	if len(words) == 0 {
		return nil, nil
	}
	doc, err := prose.NewDocument(strings.Join(words, " "), prose.WithSegmentation(false))
	if err != nil {
		return nil, err
	}
	// prose tokenizes on its own; align its tokens back onto our words
	// sequentially and fall back to X where alignment drifts.
	tags := make([]Pos, len(words))
	for i := range tags {
		tags[i] = PosOther
	}
	toks := doc.Tokens()
	ti := 0
	for wi, w := range words {
		for ti < len(toks) {
			if strings.EqualFold(toks[ti].Text, w) {
				tags[wi] = pennToPos(toks[ti].Tag)
				ti++
				break
			}
			ti++
		}
	}
	return tags, nil
}

func pennToPos(tag string) Pos {
	switch {
	case strings.HasPrefix(tag, "NNP"):
		return PosProper
	case strings.HasPrefix(tag, "NN"):
		return PosNoun
	case strings.HasPrefix(tag, "VB"), tag == "MD":
		return PosVerb
	case tag == "CD":
		return PosNumber
	case strings.HasPrefix(tag, "RB"):
		return PosAdverb
	case tag == "IN", tag == "TO", tag == "DT", tag == "CC":
		return PosParticle
	default:
		return PosOther
	}
}
