package nlp

import "fmt"

// Pos is a coarse part-of-speech tag. Both tagger backends map onto this
// closed set so the extractor stays backend-agnostic.
type Pos string

const (
	PosNoun     Pos = "NOUN"
	PosProper   Pos = "PROPN"
	PosVerb     Pos = "VERB"
	PosNumber   Pos = "NUM"
	PosAdverb   Pos = "ADV"
	PosParticle Pos = "PART"
	PosOther    Pos = "X"
)

// Token is one unit of the normalized instruction. Offsets are rune
// positions in the source text. Tokens are immutable and scoped to a
// single parse.
type Token struct {
	Surface string
	Norm    string
	Tag     Pos
	Start   int
	End     int
}

// Tagger assigns part-of-speech tags to normalized words. Implementations
// wrap a language model loaded once at process start; they must be safe
// for concurrent use and must not mutate after initialization. Tests
// substitute a lightweight TaggerFunc.
type Tagger interface {
	Tag(words []string) ([]Pos, error)
	Language() string
}

// NewTagger selects the tagging backend for the configured language.
func NewTagger(lang string) (Tagger, error) {
	switch lang {
	case "", "ko":
		return NewKoreanTagger(), nil
	case "en":
		return NewProseTagger()
	default:
		return nil, fmt.Errorf("unsupported language %q", lang)
	}
}

// TaggerFunc adapts a plain function to the Tagger interface.
type TaggerFunc func(words []string) ([]Pos, error)

func (f TaggerFunc) Tag(words []string) ([]Pos, error) { return f(words) }

func (f TaggerFunc) Language() string { return "test" }
