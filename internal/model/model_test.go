package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewConference_AppliesDefaults(t *testing.T) {
	now := time.Now().UTC()
	c, err := NewConference("id-1", "user-1", CreateConferenceRequest{Name: "GopherCon"}, now)
	require.NoError(t, err)

	require.Equal(t, "Default City", c.City)
	require.Equal(t, []string{"Default", "Topic"}, c.Topics)
	require.Equal(t, 0, c.MaxAttendees)
	require.Equal(t, 0, c.SeatsAvailable)
	require.Equal(t, 0, c.Month)
	require.Nil(t, c.StartDate)
}

func TestNewConference_SeatsStartAtCapacity(t *testing.T) {
	c, err := NewConference("id-1", "user-1", CreateConferenceRequest{
		Name:         "GopherCon",
		MaxAttendees: 120,
	}, time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, 120, c.SeatsAvailable)
}

func TestNewConference_MonthDerivedFromStartDate(t *testing.T) {
	c, err := NewConference("id-1", "user-1", CreateConferenceRequest{
		Name:      "GopherCon",
		StartDate: "2026-06-15",
		EndDate:   "2026-06-17",
	}, time.Now().UTC())
	require.NoError(t, err)
	require.Equal(t, 6, c.Month)
	require.Equal(t, "2026-06-15", c.StartDate.Format(DateLayout))
	require.Equal(t, "2026-06-17", c.EndDate.Format(DateLayout))
}

func TestNewConference_RejectsMalformedDate(t *testing.T) {
	_, err := NewConference("id-1", "user-1", CreateConferenceRequest{
		Name:      "GopherCon",
		StartDate: "June 15th",
	}, time.Now().UTC())
	require.Error(t, err)
}

func TestParseDate_TruncatesTimeComponent(t *testing.T) {
	d, err := ParseDate("2026-06-15T09:00:00")
	require.NoError(t, err)
	require.Equal(t, "2026-06-15", d.Format(DateLayout))
}

func TestNewSession_RejectsOutOfRangeHour(t *testing.T) {
	_, err := NewSession("id-1", "conf-1", "user-1", CreateSessionRequest{
		Name:      "Keynote",
		StartTime: 24,
	}, time.Now().UTC())
	require.Error(t, err)
}

func TestParseTeeShirtSize(t *testing.T) {
	size, err := ParseTeeShirtSize("xl_m")
	require.NoError(t, err)
	require.Equal(t, TeeShirtXLM, size)

	_, err = ParseTeeShirtSize("HUGE")
	require.Error(t, err)
}

func TestProfile_AttendanceList(t *testing.T) {
	p := &Profile{ConferenceKeysToAttend: []string{"a", "b", "c"}}

	require.True(t, p.Attending("b"))
	require.False(t, p.Attending("z"))

	require.True(t, p.RemoveConferenceKey("b"))
	require.Equal(t, []string{"a", "c"}, p.ConferenceKeysToAttend)
	require.False(t, p.RemoveConferenceKey("b"))
}

func TestConference_CloneIsDeep(t *testing.T) {
	start := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	c := &Conference{Topics: []string{"Go"}, StartDate: &start}

	cp := c.Clone()
	cp.Topics[0] = "Rust"
	*cp.StartDate = cp.StartDate.AddDate(1, 0, 0)

	require.Equal(t, "Go", c.Topics[0])
	require.Equal(t, 2026, c.StartDate.Year())
}
