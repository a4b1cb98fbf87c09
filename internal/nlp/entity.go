package nlp

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// EntityKind is the closed set of span types the extractor produces.
type EntityKind string

const (
	EntityDate    EntityKind = "DATE"
	EntityTime    EntityKind = "TIME"
	EntityPerson  EntityKind = "PERSON"
	EntityStatus  EntityKind = "STATUS"
	EntityTaskRef EntityKind = "TASK_REF"
	EntityTitle   EntityKind = "TITLE"
)

// DateRule names the resolution rule a DATE cue calls for.
type DateRule string

const (
	RuleLiteral      DateRule = "literal"
	RuleDayOffset    DateRule = "relative-day"
	RuleRelativeWeek DateRule = "relative-week"
	RuleNamedWeekday DateRule = "named-weekday"
)

// DateSpec is the unresolved content of a DATE entity. Resolution against
// a reference instant happens in the temporal resolver.
type DateSpec struct {
	Rule       DateRule
	Month, Day int // literal
	DayOffset  int // relative-day
	Weekday    time.Weekday
	HasWeekday bool
	WeekOffset int // 0 = current week, 1 = following week
	// Deadline marks due-style phrasing ("~까지", "by ~"), which biases
	// intent classification toward tasks.
	Deadline bool
}

// Entity is a typed span over the token sequence. Start/End are token
// indices, [Start,End). Only the fields for the entity's kind are set.
type Entity struct {
	Kind  EntityKind
	Text  string
	Start int
	End   int

	Date    DateSpec
	Hour    int
	Minute  int
	Person  string
	Status  string // canonical: todo | in_progress | done
	TaskRef int64
}

var (
	koMonthRe    = regexp.MustCompile(`^(\d{1,2})월$`)
	koDayRe      = regexp.MustCompile(`^(\d{1,2})일(에|까지|부터)?$`)
	koMonthDayRe = regexp.MustCompile(`^(\d{1,2})월(\d{1,2})일?(에|까지|부터)?$`)
	koHourRe     = regexp.MustCompile(`^(\d{1,2})시(반)?$`)
	koHourMinRe  = regexp.MustCompile(`^(\d{1,2})시(\d{1,2})분?$`)
	koMeridiemRe = regexp.MustCompile(`^(오전|오후)(\d{1,2})시(반)?(에|까지|부터)?$`)
	clockRe      = regexp.MustCompile(`^(\d{1,2}):(\d{2})(am|pm)?$`)
	enHourRe     = regexp.MustCompile(`^(\d{1,2})(am|pm)$`)
	hashRefRe    = regexp.MustCompile(`^#(\d+)$`)
	bareNumRe    = regexp.MustCompile(`^(\d+)번?$`)

	relativeDays = map[string]int{
		"오늘": 0, "내일": 1, "모레": 2,
		"today": 0, "tomorrow": 1,
	}

	koWeekdays = map[string]time.Weekday{
		"월": time.Monday, "화": time.Tuesday, "수": time.Wednesday,
		"목": time.Thursday, "금": time.Friday, "토": time.Saturday, "일": time.Sunday,
	}

	enWeekdays = map[string]time.Weekday{
		"monday": time.Monday, "tuesday": time.Tuesday, "wednesday": time.Wednesday,
		"thursday": time.Thursday, "friday": time.Friday,
		"saturday": time.Saturday, "sunday": time.Sunday,
	}

	enMonths = map[string]int{
		"january": 1, "february": 2, "march": 3, "april": 4, "may": 5, "june": 6,
		"july": 7, "august": 8, "september": 9, "october": 10, "november": 11, "december": 12,
	}

	relationParticles = []string{"이랑", "하고", "한테", "에게", "와", "과", "랑"}

	domainNouns = map[string]bool{
		"일정": true, "약속": true, "이벤트": true,
		"작업": true, "할일": true, "태스크": true,
		"event": true, "events": true, "task": true, "tasks": true,
		"todo": true, "schedule": true,
	}

	taskNouns = map[string]bool{
		"작업": true, "할일": true, "태스크": true,
		"task": true, "tasks": true, "todo": true,
	}

	verbCues = []string{
		"추가", "등록", "만들", "잡아",
		"보여", "알려", "조회", "목록",
		"삭제", "취소", "지워",
		"표시", "변경",
	}

	enFunctionWords = map[string]bool{
		"a": true, "an": true, "the": true, "my": true, "me": true,
		"at": true, "on": true, "in": true, "by": true, "for": true,
		"with": true, "to": true, "of": true, "and": true, "please": true,
		"as": true,
	}

	statusWords = map[string]string{
		"완료": "done", "done": "done", "complete": "done", "completed": "done",
		"진행중": "in_progress",
		"할일": "todo", "todo": "todo",
	}
)

// ExtractEntities scans tagged tokens for typed spans. Claim priority is
// DATE > TIME > PERSON > STATUS > TITLE; a token claimed by an earlier
// pass is never reassigned. No entity is fabricated when no cue matches.
func ExtractEntities(tokens []Token) []Entity {
	claimed := make([]bool, len(tokens))
	var out []Entity

	out = append(out, extractDates(tokens, claimed)...)
	out = append(out, extractTimes(tokens, claimed)...)
	out = append(out, extractPersons(tokens, claimed)...)
	out = append(out, extractRefsAndStatus(tokens, claimed)...)
	if title, ok := extractTitle(tokens, claimed); ok {
		out = append(out, title)
	}
	return out
}

func extractDates(tokens []Token, claimed []bool) []Entity {
	var out []Entity
	for i := 0; i < len(tokens); i++ {
		if claimed[i] {
			continue
		}
		norm := tokens[i].Norm
		base := koStripParticle(norm)
		deadline := strings.HasSuffix(norm, "까지") || (i > 0 && tokens[i-1].Norm == "by")

		// Literal "M월D일" in one token.
		if m := koMonthDayRe.FindStringSubmatch(norm); m != nil {
			mo, _ := strconv.Atoi(m[1])
			d, _ := strconv.Atoi(m[2])
			out = append(out, claimSpan(tokens, claimed, i, i+1, Entity{
				Kind: EntityDate,
				Date: DateSpec{Rule: RuleLiteral, Month: mo, Day: d, Deadline: deadline},
			}))
			continue
		}
		// Literal "M월 D일" across two tokens.
		if m := koMonthRe.FindStringSubmatch(norm); m != nil && i+1 < len(tokens) && !claimed[i+1] {
			if d := koDayRe.FindStringSubmatch(tokens[i+1].Norm); d != nil {
				mo, _ := strconv.Atoi(m[1])
				dd, _ := strconv.Atoi(d[1])
				dl := deadline || strings.HasSuffix(tokens[i+1].Norm, "까지")
				out = append(out, claimSpan(tokens, claimed, i, i+2, Entity{
					Kind: EntityDate,
					Date: DateSpec{Rule: RuleLiteral, Month: mo, Day: dd, Deadline: dl},
				}))
				i++
				continue
			}
		}
		// English "march 5".
		if mo, ok := enMonths[norm]; ok && i+1 < len(tokens) && !claimed[i+1] {
			if d, err := strconv.Atoi(tokens[i+1].Norm); err == nil && d >= 1 && d <= 31 {
				out = append(out, claimSpan(tokens, claimed, i, i+2, Entity{
					Kind: EntityDate,
					Date: DateSpec{Rule: RuleLiteral, Month: mo, Day: d, Deadline: deadline},
				}))
				i++
				continue
			}
		}
		// 오늘 / 내일 / 모레 / today / tomorrow.
		if off, ok := relativeDays[base]; ok {
			out = append(out, claimSpan(tokens, claimed, i, i+1, Entity{
				Kind: EntityDate,
				Date: DateSpec{Rule: RuleDayOffset, DayOffset: off, Deadline: deadline},
			}))
			continue
		}
		// Weekday, optionally qualified by 이번 주 / 다음 주 / this / next.
		if wd, ok := weekdayOf(norm); ok {
			start, rule, weekOff := i, RuleNamedWeekday, 0
			if i >= 1 && !claimed[i-1] {
				switch koStripParticle(tokens[i-1].Norm) {
				case "이번주", "this":
					start, rule, weekOff = i-1, RuleRelativeWeek, 0
				case "다음주", "담주", "next":
					start, rule, weekOff = i-1, RuleRelativeWeek, 1
				case "주":
					if i >= 2 && !claimed[i-2] {
						switch tokens[i-2].Norm {
						case "이번":
							start, rule, weekOff = i-2, RuleRelativeWeek, 0
						case "다음":
							start, rule, weekOff = i-2, RuleRelativeWeek, 1
						}
					}
				}
			}
			out = append(out, claimSpan(tokens, claimed, start, i+1, Entity{
				Kind: EntityDate,
				Date: DateSpec{Rule: rule, Weekday: wd, HasWeekday: true, WeekOffset: weekOff, Deadline: deadline},
			}))
			continue
		}
		// Week reference with no weekday: 다음 주 / 이번 주 / next week.
		if ent, end, ok := bareWeek(tokens, claimed, i); ok {
			out = append(out, claimSpan(tokens, claimed, i, end, ent))
			i = end - 1
			continue
		}
	}
	return out
}

// bareWeek matches "다음주"/"이번주" (or 다음·이번 + 주, next/this + week)
// when no weekday token follows.
func bareWeek(tokens []Token, claimed []bool, i int) (Entity, int, bool) {
	norm := koStripParticle(tokens[i].Norm)
	end := i + 1
	var weekOff int
	switch norm {
	case "다음주", "담주":
		weekOff = 1
	case "이번주":
		weekOff = 0
	case "다음", "이번", "next", "this":
		if i+1 >= len(tokens) || claimed[i+1] {
			return Entity{}, 0, false
		}
		next := koStripParticle(tokens[i+1].Norm)
		if next != "주" && next != "week" {
			return Entity{}, 0, false
		}
		if norm == "다음" || norm == "next" {
			weekOff = 1
		}
		end = i + 2
	default:
		return Entity{}, 0, false
	}
	// A following weekday is handled by the weekday branch instead.
	if end < len(tokens) && !claimed[end] {
		if _, ok := weekdayOf(tokens[end].Norm); ok {
			return Entity{}, 0, false
		}
	}
	return Entity{
		Kind: EntityDate,
		Date: DateSpec{Rule: RuleRelativeWeek, WeekOffset: weekOff},
	}, end, true
}

func extractTimes(tokens []Token, claimed []bool) []Entity {
	var out []Entity
	for i := 0; i < len(tokens); i++ {
		if claimed[i] {
			continue
		}
		norm := tokens[i].Norm
		base := koStripParticle(norm)

		switch base {
		case "정오", "noon":
			out = append(out, claimSpan(tokens, claimed, i, i+1, Entity{Kind: EntityTime, Hour: 12}))
			continue
		case "자정", "midnight":
			out = append(out, claimSpan(tokens, claimed, i, i+1, Entity{Kind: EntityTime, Hour: 0}))
			continue
		}

		// "오후2시" fused into one token.
		if m := koMeridiemRe.FindStringSubmatch(norm); m != nil {
			h, _ := strconv.Atoi(m[2])
			minute := 0
			if m[3] == "반" {
				minute = 30
			}
			h = adjustHour(h, m[1] == "오후", m[1] == "오전")
			out = append(out, claimSpan(tokens, claimed, i, i+1, Entity{Kind: EntityTime, Hour: h, Minute: minute}))
			continue
		}

		h, minute, ok, pm, am := matchHourToken(base)
		if m := clockRe.FindStringSubmatch(base); m != nil {
			h, _ = strconv.Atoi(m[1])
			minute, _ = strconv.Atoi(m[2])
			ok, pm, am = true, m[3] == "pm", m[3] == "am"
		}
		if !ok {
			continue
		}
		start, end := i, i+1
		// Leading 오전/오후/am/pm token.
		if i >= 1 && !claimed[i-1] {
			switch koStripParticle(tokens[i-1].Norm) {
			case "오후", "pm":
				pm, start = true, i-1
			case "오전", "am":
				am, start = true, i-1
			}
		}
		// Trailing am/pm token ("2:30 pm").
		if end < len(tokens) && !claimed[end] {
			switch tokens[end].Norm {
			case "pm":
				pm, end = true, end+1
			case "am":
				am, end = true, end+1
			}
		}
		h = adjustHour(h, pm, am)
		if h > 23 || minute > 59 {
			continue
		}
		out = append(out, claimSpan(tokens, claimed, start, end, Entity{Kind: EntityTime, Hour: h, Minute: minute}))
		i = end - 1
	}
	return out
}

func matchHourToken(base string) (h, minute int, ok, pm, am bool) {
	if m := koHourMinRe.FindStringSubmatch(base); m != nil {
		h, _ = strconv.Atoi(m[1])
		minute, _ = strconv.Atoi(m[2])
		return h, minute, true, false, false
	}
	if m := koHourRe.FindStringSubmatch(base); m != nil {
		h, _ = strconv.Atoi(m[1])
		if m[2] == "반" {
			minute = 30
		}
		return h, minute, true, false, false
	}
	if m := enHourRe.FindStringSubmatch(base); m != nil {
		h, _ = strconv.Atoi(m[1])
		return h, 0, true, m[2] == "pm", m[2] == "am"
	}
	return 0, 0, false, false, false
}

func adjustHour(h int, pm, am bool) int {
	if pm && h < 12 {
		return h + 12
	}
	if am && h == 12 {
		return 0
	}
	return h
}

func extractPersons(tokens []Token, claimed []bool) []Entity {
	var out []Entity
	for i := 0; i < len(tokens); i++ {
		if claimed[i] {
			continue
		}
		norm := tokens[i].Norm
		// Korean: noun + relation josa (존과, 민수랑, 엄마한테).
		if hasHangul(norm) {
			for _, p := range relationParticles {
				if !strings.HasSuffix(norm, p) {
					continue
				}
				person := strings.TrimSuffix(norm, p)
				if len([]rune(person)) == 0 || koNounLexicon[person] {
					break
				}
				if _, ok := weekdayOf(person); ok {
					break
				}
				e := claimSpan(tokens, claimed, i, i+1, Entity{Kind: EntityPerson})
				e.Person = person
				out = append(out, e)
				break
			}
			continue
		}
		// English: "with <proper noun>".
		if norm == "with" && i+1 < len(tokens) && !claimed[i+1] && tokens[i+1].Tag == PosProper {
			e := claimSpan(tokens, claimed, i, i+2, Entity{Kind: EntityPerson})
			e.Person = tokens[i+1].Norm
			out = append(out, e)
			i++
		}
	}
	return out
}

func extractRefsAndStatus(tokens []Token, claimed []bool) []Entity {
	var out []Entity
	haveRef := false
	for i := 0; i < len(tokens); i++ {
		if claimed[i] {
			continue
		}
		norm := tokens[i].Norm
		if m := hashRefRe.FindStringSubmatch(norm); m != nil {
			ref, _ := strconv.ParseInt(m[1], 10, 64)
			e := claimSpan(tokens, claimed, i, i+1, Entity{Kind: EntityTaskRef})
			e.TaskRef = ref
			out = append(out, e)
			haveRef = true
			continue
		}
		// "작업 5" / "task 12" style references.
		if m := bareNumRe.FindStringSubmatch(norm); m != nil && i >= 1 {
			if taskNouns[koStripParticle(tokens[i-1].Norm)] {
				ref, _ := strconv.ParseInt(m[1], 10, 64)
				e := claimSpan(tokens, claimed, i, i+1, Entity{Kind: EntityTaskRef})
				e.TaskRef = ref
				out = append(out, e)
				haveRef = true
			}
		}
	}
	for i := 0; i < len(tokens); i++ {
		if claimed[i] {
			continue
		}
		base := koStripParticle(tokens[i].Norm)
		canon, ok := statusWords[base]
		if !ok {
			continue
		}
		// 할일/todo doubles as a task noun; treat it as a status value only
		// next to an explicit task reference.
		if canon == "todo" && !haveRef {
			continue
		}
		e := claimSpan(tokens, claimed, i, i+1, Entity{Kind: EntityStatus})
		e.Status = canon
		out = append(out, e)
	}
	return out
}

// extractTitle claims the longest remaining contiguous content span,
// dropping command verbs, domain nouns and function words.
func extractTitle(tokens []Token, claimed []bool) (Entity, bool) {
	type span struct{ start, end int }
	var best, cur span
	flush := func() {
		if cur.end-cur.start > best.end-best.start {
			best = cur
		}
		cur = span{}
	}
	for i := 0; i < len(tokens); i++ {
		if claimed[i] || !titleWorthy(tokens[i]) {
			flush()
			continue
		}
		if cur.end == 0 {
			cur = span{start: i, end: i + 1}
		} else {
			cur.end = i + 1
		}
	}
	flush()
	if best.end == best.start {
		return Entity{}, false
	}
	words := make([]string, 0, best.end-best.start)
	for i := best.start; i < best.end; i++ {
		words = append(words, stripObjectParticle(tokens[i].Surface))
		claimed[i] = true
	}
	return Entity{
		Kind:  EntityTitle,
		Text:  strings.Join(words, " "),
		Start: best.start,
		End:   best.end,
	}, true
}

func titleWorthy(t Token) bool {
	norm := t.Norm
	if t.Tag == PosVerb || t.Tag == PosParticle {
		return false
	}
	base := koStripParticle(norm)
	if domainNouns[base] || domainNouns[norm] || enFunctionWords[norm] {
		return false
	}
	for _, cue := range verbCues {
		if strings.Contains(norm, cue) {
			return false
		}
	}
	return true
}

// stripObjectParticle removes a trailing 을/를 from a title word.
func stripObjectParticle(w string) string {
	for _, p := range []string{"을", "를"} {
		if strings.HasSuffix(w, p) {
			if base := strings.TrimSuffix(w, p); len([]rune(base)) >= 1 {
				return base
			}
		}
	}
	return w
}

func weekdayOf(norm string) (time.Weekday, bool) {
	base := koStripParticle(norm)
	if strings.HasSuffix(base, "요일") {
		if wd, ok := koWeekdays[strings.TrimSuffix(base, "요일")]; ok {
			return wd, true
		}
	}
	if wd, ok := enWeekdays[base]; ok {
		return wd, true
	}
	return 0, false
}

func claimSpan(tokens []Token, claimed []bool, start, end int, e Entity) Entity {
	parts := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		claimed[i] = true
		parts = append(parts, tokens[i].Surface)
	}
	e.Start, e.End = start, end
	if e.Text == "" {
		e.Text = strings.Join(parts, " ")
	}
	return e
}
