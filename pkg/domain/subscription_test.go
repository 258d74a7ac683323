package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSubscription() Subscription {
	return Subscription{
		OwnerID:     "user-1",
		Name:        "ai news",
		Keywords:    []string{"AI"},
		Channels:    []Channel{ChannelTelegram},
		Frequency:   Frequency{Kind: FrequencyRealtime},
		ActiveHours: ActiveHours{Start: 0, End: 23},
		IsActive:    true,
	}
}

func TestSubscription_Validate(t *testing.T) {
	tooMany := make([]string, MaxKeywords+1)
	for i := range tooMany {
		tooMany[i] = fmt.Sprintf("k%d", i)
	}

	tests := []struct {
		name   string
		modify func(s *Subscription)
		field  string
	}{
		{"valid", func(s *Subscription) {}, ""},
		{"active without keywords", func(s *Subscription) { s.Keywords = nil }, "keywords"},
		{"inactive without keywords", func(s *Subscription) { s.Keywords = nil; s.Channels = nil; s.IsActive = false }, ""},
		{"active without channels", func(s *Subscription) { s.Channels = nil }, "channels"},
		{"too many keywords", func(s *Subscription) { s.Keywords = tooMany }, "keywords"},
		{"blank keyword", func(s *Subscription) { s.Keywords = []string{"ai", "  "} }, "keywords"},
		{"duplicate channel", func(s *Subscription) { s.Channels = []Channel{ChannelEmail, ChannelEmail} }, "channels"},
		{"unknown channel", func(s *Subscription) { s.Channels = []Channel{"fax"} }, "channels"},
		{"bad hours", func(s *Subscription) { s.ActiveHours = ActiveHours{Start: 22, End: 24} }, "active_hours"},
		{"bad media mode", func(s *Subscription) { s.MediaMode = "maybe" }, "media_mode"},
		{"interval without duration", func(s *Subscription) { s.Frequency = Frequency{Kind: FrequencyInterval} }, "frequency"},
		{"unknown frequency", func(s *Subscription) { s.Frequency = Frequency{Kind: "weekly"} }, "frequency"},
		{"bad timezone", func(s *Subscription) { s.Timezone = "Mars/Olympus" }, "timezone"},
		{"missing owner", func(s *Subscription) { s.OwnerID = "" }, "owner"},
		{"negative threshold", func(s *Subscription) { s.MinLikes = -1 }, "thresholds"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSubscription()
			tt.modify(&s)
			err := s.Validate()
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsValidation(err))
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestFrequency_Period(t *testing.T) {
	assert.Equal(t, time.Duration(0), Frequency{Kind: FrequencyRealtime}.Period())
	assert.Equal(t, time.Hour, Frequency{Kind: FrequencyHourly}.Period())
	assert.Equal(t, 24*time.Hour, Frequency{Kind: FrequencyDaily}.Period())
	assert.Equal(t, 15*time.Minute, Frequency{Kind: FrequencyInterval, Interval: 15 * time.Minute}.Period())
}

func TestSubscription_Location(t *testing.T) {
	s := validSubscription()
	assert.Equal(t, time.UTC, s.Location())
	s.Timezone = "America/New_York"
	assert.Equal(t, "America/New_York", s.Location().String())

	t.Run("resolved once", func(t *testing.T) {
		s := validSubscription()
		s.Timezone = "Asia/Tokyo"
		assert.Equal(t, "Asia/Tokyo", s.ResolveLocation().String())
		s.Timezone = "Europe/Berlin" // changed after resolving, resolved zone stays
		assert.Equal(t, "Asia/Tokyo", s.Location().String())

		cp := s
		assert.Same(t, s.Location(), cp.Location())
	})

	t.Run("validate resolves", func(t *testing.T) {
		s := validSubscription()
		s.Timezone = "Europe/Berlin"
		require.NoError(t, s.Validate())
		s.Timezone = ""
		assert.Equal(t, "Europe/Berlin", s.Location().String())
	})

	t.Run("unknown zone", func(t *testing.T) {
		s := validSubscription()
		s.Timezone = "Mars/Olympus"
		assert.Equal(t, time.UTC, s.ResolveLocation())
	})
}
