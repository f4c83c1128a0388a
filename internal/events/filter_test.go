package events_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AhmedAlfahdi/analytics-api/internal/events"
)

func TestIsLoopbackAddress(t *testing.T) {
	tests := []struct {
		ip       string
		loopback bool
	}{
		{"127.0.0.1", true},
		{"localhost", true},
		{"LOCALHOST", true},
		{"  LocalHost  ", true},
		{"127.5.2.1", true},
		{"::1", true},
		{"::ffff:127.0.0.1", true},
		{"::FFFF:127.0.0.1", true},
		{"unknown", false},
		{"", false},
		{"10.0.0.5", false},
		{"203.0.113.1", false},
		{"1270.0.0.1", false},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			assert.Equal(t, tt.loopback, events.IsLoopbackAddress(tt.ip))
		})
	}
}

func TestIsLoopbackSource(t *testing.T) {
	tests := []struct {
		source   string
		loopback bool
	}{
		{"localhost", true},
		{"http://localhost:3000/page", true},
		{"https://localhost/page", true},
		{"http://127.0.0.1:8080", true},
		{"my-localhost-mirror.example.com", true},
		{"", false},
		{"google", false},
		{"https://example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			assert.Equal(t, tt.loopback, events.IsLoopbackSource(tt.source))
		})
	}
}

func TestFilterPartitionsViewsAndExits(t *testing.T) {
	normalized := []events.Event{
		{IP: "203.0.113.1", Path: "/a"},
		{IP: "203.0.113.1", Path: "/a", EventType: events.EventTypePageExit},
		{IP: "203.0.113.2", Path: "/b", EventType: events.EventTypePageView},
	}

	filtered := events.Filter(normalized, nil)
	assert.Len(t, filtered.PageViews, 2)
	assert.Len(t, filtered.ExitEvents, 1)
}

func TestFilterExcludesLoopbackFromAllViews(t *testing.T) {
	normalized := []events.Event{
		{IP: "203.0.113.1", Path: "/a"},
		{IP: "127.0.0.1", Path: "/a"},
		{IP: "::1", Path: "/a", EventType: events.EventTypePageExit},
		{IP: "203.0.113.2", Path: "/b", EventType: events.EventTypePageExit},
	}
	uniqueIPs := []string{"203.0.113.1", "127.0.0.1", "LOCALHOST", "127.5.2.1", "::1", "unknown", "10.0.0.5"}

	filtered := events.Filter(normalized, uniqueIPs)

	assert.Len(t, filtered.PageViews, 1)
	assert.Equal(t, "203.0.113.1", filtered.PageViews[0].IP)
	assert.Len(t, filtered.ExitEvents, 1)
	assert.Equal(t, "203.0.113.2", filtered.ExitEvents[0].IP)
	assert.ElementsMatch(t, []string{"203.0.113.1", "unknown", "10.0.0.5"}, filtered.DistinctIPs)
}

func TestFilterKeepsUnknownAddressTraffic(t *testing.T) {
	normalized := []events.Event{
		{IP: "unknown", Path: "/a"},
		{Path: "/b"},
	}

	filtered := events.Filter(normalized, nil)
	assert.Len(t, filtered.PageViews, 2)
}
