package nlp

import (
	"errors"
	"fmt"
	"strings"
)

// FailureCode identifies why an instruction could not be interpreted.
type FailureCode string

const (
	// FailInputTooLong: input exceeded the configured maximum length.
	FailInputTooLong FailureCode = "input_too_long"
	// FailModelUnavailable: the tagging model could not be used. Fatal to
	// the request; downstream stages require POS tags.
	FailModelUnavailable FailureCode = "model_unavailable"
	// FailAmbiguous: conflicting date cues with no authoritative winner.
	FailAmbiguous FailureCode = "ambiguous_date"
	// FailUnknownIntent: no intent rule matched. Terminal; nothing else
	// in the parse is trusted.
	FailUnknownIntent FailureCode = "unknown_intent"
	// FailPartialCommand: intent recognized but required fields are missing.
	FailPartialCommand FailureCode = "partial_command"
)

// ParseError is the typed failure returned by the interpreter. Parsing is
// deterministic, so the same input always yields the same ParseError; the
// core never retries and never substitutes a guessed value.
type ParseError struct {
	Code FailureCode
	// Text preserves the original instruction for unknown-intent reports.
	Text string
	// Candidates lists the competing resolved dates for ambiguity reports.
	Candidates []string
	// Missing lists unresolved required field names for partial commands.
	Missing []string

	cause error
}

func (e *ParseError) Error() string {
	switch e.Code {
	case FailAmbiguous:
		return fmt.Sprintf("ambiguous date: candidates %s", strings.Join(e.Candidates, ", "))
	case FailUnknownIntent:
		return fmt.Sprintf("could not understand: %q", e.Text)
	case FailPartialCommand:
		return fmt.Sprintf("missing required fields: %s", strings.Join(e.Missing, ", "))
	case FailModelUnavailable:
		if e.cause != nil {
			return fmt.Sprintf("language model unavailable: %v", e.cause)
		}
		return "language model unavailable"
	default:
		return string(e.Code)
	}
}

func (e *ParseError) Unwrap() error { return e.cause }

// AsParseError unwraps err into a *ParseError, or returns nil.
func AsParseError(err error) *ParseError {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe
	}
	return nil
}

// IsFailure reports whether err is a ParseError with the given code.
func IsFailure(err error, code FailureCode) bool {
	pe := AsParseError(err)
	return pe != nil && pe.Code == code
}
