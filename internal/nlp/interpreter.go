// Package nlp converts free-text calendar/task instructions into typed
// operation requests: tokenization and POS tagging, entity extraction,
// relative date/time resolution and intent classification. The pipeline
// is pure and synchronous; the only shared resource is the injected
// tagging model, which is read-only after load.
package nlp

import (
	"time"
)

// Interpreter runs the full parse pipeline. Construct once and share
// across requests; Interpret holds no mutable state between calls.
type Interpreter struct {
	tagger   Tagger
	maxLen   int
	resolver *Resolver
}

// InterpreterConfig carries the locale knobs resolution depends on.
type InterpreterConfig struct {
	MaxInputLen int
	WeekStart   time.Weekday
}

func NewInterpreter(tagger Tagger, cfg InterpreterConfig) *Interpreter {
	if cfg.MaxInputLen <= 0 {
		cfg.MaxInputLen = DefaultMaxInputLen
	}
	return &Interpreter{
		tagger:   tagger,
		maxLen:   cfg.MaxInputLen,
		resolver: NewResolver(cfg.WeekStart),
	}
}

// Interpret parses one instruction against the caller-supplied reference
// instant; relative dates resolve in that instant's location, so callers
// localize `now` to the user's zone first. Repeated invocations with
// identical (text, now) yield an identical CommandRequest or an
// identical failure; the wall clock is never read here.
func (in *Interpreter) Interpret(text string, now time.Time) (*CommandRequest, error) {
	tokens, err := Tokenize(text, in.tagger, in.maxLen)
	if err != nil {
		return nil, err
	}
	entities := ExtractEntities(tokens)
	when, err := in.resolver.Resolve(entities, now)
	if err != nil {
		return nil, err
	}
	intent := Classify(tokens, entities)
	if intent == IntentUnknown {
		return nil, &ParseError{Code: FailUnknownIntent, Text: text}
	}
	return BuildCommand(intent, text, entities, when), nil
}
