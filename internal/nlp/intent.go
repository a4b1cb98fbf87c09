package nlp

import "strings"

// Intent is the classified operation kind. Unknown is terminal: no other
// parse output is trusted once classification fails.
type Intent string

const (
	IntentCreateEvent      Intent = "create_event"
	IntentCreateTask       Intent = "create_task"
	IntentListEvents       Intent = "list_events"
	IntentListTasks        Intent = "list_tasks"
	IntentUpdateTaskStatus Intent = "update_task_status"
	IntentDeleteEvent      Intent = "delete_event"
	IntentDeleteTask       Intent = "delete_task"
	IntentUnknown          Intent = "unknown"
)

var (
	deleteCues = []string{"삭제", "취소", "지워", "delete", "cancel", "remove"}
	listCues   = []string{"보여", "조회", "알려", "목록", "show", "list", "display", "what"}
	createCues = []string{"추가", "등록", "만들", "잡아", "schedule", "add", "create", "new"}
	markCues   = []string{"표시", "변경", "mark", "set"}
)

// intentRule is one entry in the ordered classification cascade. Rules
// are tried top to bottom; the first match wins, which keeps tie-break
// order auditable in one place.
type intentRule struct {
	name  string
	match func(in classifyInput) (Intent, bool)
}

type classifyInput struct {
	tokens    []Token
	hasRef    bool
	hasStatus bool
	taskNoun  bool
	date      *DateSpec
	hasTime   bool
}

var intentRules = []intentRule{
	{"update-status", func(in classifyInput) (Intent, bool) {
		if in.hasRef && (in.hasStatus || hasCue(in.tokens, markCues)) {
			return IntentUpdateTaskStatus, true
		}
		return IntentUnknown, false
	}},
	{"delete", func(in classifyInput) (Intent, bool) {
		if !hasCue(in.tokens, deleteCues) {
			return IntentUnknown, false
		}
		if in.hasRef || in.taskNoun {
			return IntentDeleteTask, true
		}
		return IntentDeleteEvent, true
	}},
	{"list", func(in classifyInput) (Intent, bool) {
		if !hasCue(in.tokens, listCues) || hasCue(in.tokens, createCues) {
			return IntentUnknown, false
		}
		if in.taskNoun {
			return IntentListTasks, true
		}
		return IntentListEvents, true
	}},
	{"create", func(in classifyInput) (Intent, bool) {
		if !hasCue(in.tokens, createCues) {
			return IntentUnknown, false
		}
		if in.taskNoun {
			return IntentCreateTask, true
		}
		// A due-style date with no clock time reads as a deadline, which
		// is task phrasing; an explicit start time favors an event.
		if in.date != nil && in.date.Deadline && !in.hasTime {
			return IntentCreateTask, true
		}
		return IntentCreateEvent, true
	}},
}

// Classify runs the rule cascade over the full token sequence and the
// extracted entities. No rule matching means Unknown; the command builder
// short-circuits on it rather than guessing a default.
func Classify(tokens []Token, entities []Entity) Intent {
	in := classifyInput{tokens: tokens}
	for i := range entities {
		switch entities[i].Kind {
		case EntityTaskRef:
			in.hasRef = true
		case EntityStatus:
			in.hasStatus = true
		case EntityTime:
			in.hasTime = true
		case EntityDate:
			if in.date == nil {
				in.date = &entities[i].Date
			}
		}
	}
	for _, t := range tokens {
		if taskNouns[koStripParticle(t.Norm)] {
			in.taskNoun = true
			break
		}
	}
	for _, r := range intentRules {
		if intent, ok := r.match(in); ok {
			return intent
		}
	}
	return IntentUnknown
}

func hasCue(tokens []Token, cues []string) bool {
	for _, t := range tokens {
		for _, c := range cues {
			if strings.Contains(t.Norm, c) {
				return true
			}
		}
	}
	return false
}
