package nlp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var seoul = time.FixedZone("KST", 9*60*60)

func resolveText(t *testing.T, text string, now time.Time) (*ResolvedDateTime, error) {
	t.Helper()
	ents := ExtractEntities(mustTokens(t, text))
	return NewResolver(time.Monday).Resolve(ents, now)
}

func TestResolveTomorrowKeepsTimeOfDay(t *testing.T) {
	// Reference: Sunday 2024-03-10 09:00.
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, seoul)

	rdt, err := resolveText(t, "내일 회의 추가해줘", now)
	require.NoError(t, err)
	require.NotNil(t, rdt)
	assert.Equal(t, time.Date(2024, 3, 11, 9, 0, 0, 0, seoul), rdt.At())
	assert.True(t, rdt.HasTime)
	assert.Equal(t, RuleDayOffset, rdt.Rule)
}

func TestResolveTimeOverridesReferenceTime(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, seoul)

	rdt, err := resolveText(t, "내일 오후 2시에 회의 추가해줘", now)
	require.NoError(t, err)
	require.NotNil(t, rdt)
	assert.Equal(t, time.Date(2024, 3, 11, 14, 0, 0, 0, seoul), rdt.At())
}

func TestResolveThisWeekIsLiteral(t *testing.T) {
	// Reference: Saturday 2024-03-16. "이번 주 금요일" already passed;
	// literal-week policy resolves to the past Friday, not the next one.
	now := time.Date(2024, 3, 16, 10, 0, 0, 0, seoul)

	rdt, err := resolveText(t, "이번 주 금요일 회의 추가해줘", now)
	require.NoError(t, err)
	require.NotNil(t, rdt)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, seoul), rdt.Date)
	assert.False(t, rdt.HasTime, "weekday-only cue is all-day")
}

func TestResolveNextWeekWeekday(t *testing.T) {
	// Reference: Sunday 2024-03-10; week starts Monday, so the current
	// week is Mar 4–10 and next Tuesday is Mar 12.
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, seoul)

	rdt, err := resolveText(t, "다음 주 화요일 회의 추가해줘", now)
	require.NoError(t, err)
	require.NotNil(t, rdt)
	assert.Equal(t, time.Date(2024, 3, 12, 0, 0, 0, 0, seoul), rdt.Date)
}

func TestResolveBareWeekdayWithinCurrentWeek(t *testing.T) {
	// Reference: Monday 2024-03-11 → that week's Friday is Mar 15.
	now := time.Date(2024, 3, 11, 9, 0, 0, 0, seoul)

	rdt, err := resolveText(t, "금요일까지 보고서 제출 작업 추가해줘", now)
	require.NoError(t, err)
	require.NotNil(t, rdt)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, seoul), rdt.Date)
	assert.False(t, rdt.HasTime)
	assert.True(t, rdt.Deadline)
}

func TestResolveTimeOnlyDefaultsToReferenceDate(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, seoul)

	rdt, err := resolveText(t, "오후 3시에 회의 추가해줘", now)
	require.NoError(t, err)
	require.NotNil(t, rdt)
	assert.Equal(t, time.Date(2024, 3, 10, 15, 0, 0, 0, seoul), rdt.At())
}

func TestResolveLiteralDateRollsForward(t *testing.T) {
	now := time.Date(2024, 12, 20, 9, 0, 0, 0, seoul)

	rdt, err := resolveText(t, "3월 5일에 회의 추가해줘", now)
	require.NoError(t, err)
	require.NotNil(t, rdt)
	assert.Equal(t, time.Date(2025, 3, 5, 0, 0, 0, 0, seoul), rdt.Date)
	assert.Equal(t, RuleLiteral, rdt.Rule)
}

func TestResolveAnchorsToReferenceLocation(t *testing.T) {
	// Sunday 2024-03-10 23:00 in New York is already Monday in Seoul.
	// Resolution follows the reference instant's own location, so
	// "내일" is the New York Monday, not the Seoul Tuesday.
	est := time.FixedZone("EST", -5*60*60)
	now := time.Date(2024, 3, 10, 23, 0, 0, 0, est)

	rdt, err := resolveText(t, "내일 회의 추가해줘", now)
	require.NoError(t, err)
	require.NotNil(t, rdt)
	assert.Equal(t, time.Date(2024, 3, 11, 23, 0, 0, 0, est), rdt.At())
	assert.Equal(t, est, rdt.Date.Location())
}

func TestResolveAgreeingDatesNotAmbiguous(t *testing.T) {
	// Two date cues naming the same calendar day agree; only
	// disagreeing candidates are ambiguous.
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, seoul)

	rdt, err := resolveText(t, "내일 3월 11일에 회의 추가해줘", now)
	require.NoError(t, err)
	require.NotNil(t, rdt)
	assert.Equal(t, time.Date(2024, 3, 11, 0, 0, 0, 0, seoul), rdt.Date)
}

func TestResolveBareWeekCueMarksWholeWeek(t *testing.T) {
	// Sunday 2024-03-10; week starts Monday, so the current week
	// began on Mar 4. A bare week cue covers all seven days.
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, seoul)

	rdt, err := resolveText(t, "이번 주 일정 보여줘", now)
	require.NoError(t, err)
	require.NotNil(t, rdt)
	assert.Equal(t, time.Date(2024, 3, 4, 0, 0, 0, 0, seoul), rdt.Date)
	assert.True(t, rdt.WholeWeek)

	// A week cue with an explicit weekday stays a single day.
	single, err := resolveText(t, "이번 주 금요일 일정 보여줘", now)
	require.NoError(t, err)
	require.NotNil(t, single)
	assert.False(t, single.WholeWeek)
}

func TestResolveConflictingDatesAmbiguous(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, seoul)

	_, err := resolveText(t, "이번 주 월요일 그리고 다음 주 화요일에 회의 추가해줘", now)
	require.Error(t, err)
	assert.True(t, IsFailure(err, FailAmbiguous))

	pe := AsParseError(err)
	require.NotNil(t, pe)
	assert.ElementsMatch(t, []string{"2024-03-04", "2024-03-12"}, pe.Candidates)
}

func TestResolveAbsenceIsNotAnError(t *testing.T) {
	rdt, err := NewResolver(time.Monday).Resolve(nil, time.Now())
	require.NoError(t, err)
	assert.Nil(t, rdt)
}

// Resolution must be bit-identical across repeated invocations.
func TestResolveRoundTripDeterminism(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, seoul)
	a, err := resolveText(t, "3월 5일 오전 10시 회의 추가해줘", now)
	require.NoError(t, err)
	b, err := resolveText(t, "3월 5일 오전 10시 회의 추가해줘", now)
	require.NoError(t, err)
	require.NotNil(t, a)
	assert.Equal(t, a, b)
	assert.True(t, a.At().Equal(b.At()))
}
