package cache

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnnouncement_EmptyWhenAbsent(t *testing.T) {
	c := New()
	require.Equal(t, "", c.Announcement())
	require.Equal(t, "", c.FeaturedSpeaker())
}

func TestAnnouncement_SetAndClear(t *testing.T) {
	c := New()

	c.SetAnnouncement("nearly sold out: GopherCon")
	require.Equal(t, "nearly sold out: GopherCon", c.Announcement())

	c.ClearAnnouncement()
	require.Equal(t, "", c.Announcement())
}

func TestFeaturedSpeaker_IndependentOfAnnouncement(t *testing.T) {
	c := New()

	c.SetFeaturedSpeaker("Rob Pike")
	c.SetAnnouncement("something")
	c.ClearAnnouncement()

	require.Equal(t, "Rob Pike", c.FeaturedSpeaker())
}
