package nlp

// CommandRequest is the typed operation request handed to the executor.
// It is constructed per parse, never persisted, and discarded after
// dispatch. Missing required fields are reported through Unresolved so
// the caller can prompt for clarification instead of the parser guessing.
type CommandRequest struct {
	Intent       Intent            `json:"intent"`
	Text         string            `json:"text"`
	Title        string            `json:"title,omitempty"`
	When         *ResolvedDateTime `json:"when,omitempty"`
	Participants []string          `json:"participants,omitempty"`
	TaskRef      int64             `json:"taskRef,omitempty"`
	Status       string            `json:"status,omitempty"`
	Unresolved   []string          `json:"unresolved,omitempty"`
}

// requiredFields is the fixed per-intent field table. Exhaustive over
// every non-terminal intent; list intents require nothing and filter on
// whatever was extracted.
var requiredFields = map[Intent][]string{
	IntentCreateEvent:      {"title", "start"},
	IntentCreateTask:       {"title"},
	IntentListEvents:       {},
	IntentListTasks:        {},
	IntentUpdateTaskStatus: {"task_ref", "status"},
	IntentDeleteEvent:      {"title"},
	IntentDeleteTask:       {"task_ref"},
}

// BuildCommand assembles entities and the resolved intent into one
// CommandRequest, validating presence of the intent's required fields.
func BuildCommand(intent Intent, text string, entities []Entity, when *ResolvedDateTime) *CommandRequest {
	req := &CommandRequest{Intent: intent, Text: text, When: when}
	for i := range entities {
		e := &entities[i]
		switch e.Kind {
		case EntityTitle:
			req.Title = e.Text
		case EntityPerson:
			req.Participants = append(req.Participants, e.Person)
		case EntityTaskRef:
			req.TaskRef = e.TaskRef
		case EntityStatus:
			req.Status = e.Status
		}
	}
	for _, field := range requiredFields[intent] {
		if !req.has(field) {
			req.Unresolved = append(req.Unresolved, field)
		}
	}
	return req
}

func (r *CommandRequest) has(field string) bool {
	switch field {
	case "title":
		return r.Title != ""
	case "start":
		// An all-day resolution is a valid start; the event is stored
		// with all-day semantics.
		return r.When != nil
	case "task_ref":
		return r.TaskRef != 0
	case "status":
		return r.Status != ""
	}
	return false
}
