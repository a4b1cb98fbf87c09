package nlp

import (
	"regexp"
	"strings"
	"unicode"
)

// KoreanTagger is a lexicon- and suffix-rule tagger for Korean command
// text. Korean has no maintained morphological analyzer in the Go
// ecosystem, and command input is a narrow register (imperatives over a
// small temporal/domain vocabulary), so suffix rules over josa and verb
// endings are adequate here.
type KoreanTagger struct{}

func NewKoreanTagger() *KoreanTagger { return &KoreanTagger{} }

func (t *KoreanTagger) Language() string { return "ko" }

var (
	koNumberRe = regexp.MustCompile(`^#?\d+(번|시|분|초|월|일|년)?(에|에서|까지|부터|으로|로)?$`)

	// Temporal and domain nouns the extractor keys on.
	koNounLexicon = map[string]bool{
		"오늘": true, "내일": true, "모레": true, "어제": true,
		"오전": true, "오후": true, "정오": true, "자정": true,
		"이번": true, "다음": true, "이번주": true, "다음주": true, "담주": true,
		"주": true, "요일": true,
		"일정": true, "약속": true, "이벤트": true, "회의": true,
		"작업": true, "할일": true, "태스크": true,
		"완료": true, "진행중": true,
	}

	koVerbEndings = []string{
		"해줘", "해주세요", "해라", "하자", "할래", "해", "줘", "주세요",
		"하기", "시켜", "해봐", "돼", "된다",
	}

	koParticles = []string{
		"에서", "으로", "이랑", "한테", "에게", "하고",
		"은", "는", "이", "가", "을", "를", "에", "와", "과", "랑", "로", "의", "도", "만", "까지", "부터",
	}
)

// Tag classifies each word using suffix rules. Never fails: the lexicon
// is compiled in, so this backend cannot be unavailable.
func (t *KoreanTagger) Tag(words []string) ([]Pos, error) {
	tags := make([]Pos, len(words))
	for i, w := range words {
		tags[i] = koTag(w)
	}
	return tags, nil
}

func koTag(w string) Pos {
	if w == "" {
		return PosOther
	}
	if koNumberRe.MatchString(w) {
		return PosNumber
	}
	base := koStripParticle(w)
	if koNounLexicon[base] || koNounLexicon[w] {
		return PosNoun
	}
	if strings.HasSuffix(base, "요일") || strings.HasSuffix(w, "요일") {
		return PosNoun
	}
	for _, end := range koVerbEndings {
		if strings.HasSuffix(w, end) && len([]rune(w)) > len([]rune(end)) {
			return PosVerb
		}
	}
	if !hasHangul(w) {
		if isAsciiLetters(w) {
			return PosProper
		}
		return PosOther
	}
	// Bare Hangul content words default to noun; person detection relies
	// on relation particles, not on a proper-noun dictionary.
	return PosNoun
}

// koStripParticle removes one trailing josa from a word, longest first.
func koStripParticle(w string) string {
	for _, p := range koParticles {
		if strings.HasSuffix(w, p) {
			if base := strings.TrimSuffix(w, p); len([]rune(base)) >= 1 {
				return base
			}
		}
	}
	return w
}

func hasHangul(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Hangul, r) {
			return true
		}
	}
	return false
}

func isAsciiLetters(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}
