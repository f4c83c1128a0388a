package events_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AhmedAlfahdi/analytics-api/internal/events"
)

func boolPtr(b bool) *bool        { return &b }
func intPtr(i int) *int           { return &i }
func floatPtr(f float64) *float64 { return &f }

func aggregateRaw(t *testing.T, raw []string, uniqueIPs []string) events.Stats {
	t.Helper()
	return events.Aggregate(events.Filter(events.Normalize(raw), uniqueIPs))
}

func TestAggregateMixedScenario(t *testing.T) {
	raw := []string{
		`{"path":"/a","ip":"203.0.113.1","visitorId":"v1"}`,
		`{"path":"/a","ip":"127.0.0.1","visitorId":"v2"}`,
		`{"path":"/b","ip":"203.0.113.2","visitorId":"v1","eventType":"page_exit","timeOnPage":30}`,
	}

	stats := aggregateRaw(t, raw, nil)

	assert.Equal(t, 1, stats.TotalViews)
	assert.Equal(t, 1, stats.UniqueVisitors)
	assert.Equal(t, []events.PageCount{{Path: "/a", Count: 1}}, stats.TopPages)
	assert.Equal(t, "/a", stats.TopPage)
	// The exit event's address is not loopback, so it contributes to
	// engagement even though it is excluded from page views.
	assert.Equal(t, 30, stats.AvgTimeOnPage)
}

func TestAggregateEmptyInput(t *testing.T) {
	stats := events.Aggregate(events.FilteredEvents{})

	assert.Equal(t, 0, stats.TotalViews)
	assert.Equal(t, 0, stats.DistinctIPs)
	assert.Equal(t, 0, stats.UniqueVisitors)
	assert.Equal(t, "/", stats.TopPage)
	assert.Empty(t, stats.TopPages)
	assert.Empty(t, stats.RecentVisitors)
	assert.Equal(t, 0, stats.AvgTimeOnPage)
	assert.Equal(t, 0, stats.AvgScrollDepth)
	assert.Equal(t, 0, stats.TotalSessions)
	assert.Equal(t, "0", stats.AvgPagesPerSession)
	assert.Equal(t, 0, stats.BounceRate)
}

func TestAggregateIsDeterministic(t *testing.T) {
	raw := []string{
		`{"path":"/a","ip":"203.0.113.1","visitorId":"v1","deviceType":"mobile","browser":"chrome","os":"android","source":"google","sourceType":"search","sessionId":"s1","hour":14,"dayName":"Monday"}`,
		`{"path":"/b","ip":"203.0.113.2","visitorId":"v2","deviceType":"desktop","browser":"firefox","os":"linux","source":"direct","sourceType":"direct","sessionId":"s2","hour":9,"dayName":"Tuesday"}`,
		`{"path":"/a","ip":"203.0.113.3","visitorId":"v3","deviceType":"tablet","browser":"safari","os":"ios","source":"news.ycombinator.com","sourceType":"referral","sessionId":"s2","hour":14,"dayName":"Monday"}`,
	}
	uniqueIPs := []string{"203.0.113.1", "203.0.113.2", "203.0.113.3"}

	filtered := events.Filter(events.Normalize(raw), uniqueIPs)

	first, err := json.Marshal(events.Aggregate(filtered))
	require.NoError(t, err)
	second, err := json.Marshal(events.Aggregate(filtered))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestTopPagesOrderingAndTruncation(t *testing.T) {
	views := make([]events.Event, 0)
	// 12 distinct paths: /p0 seen 13 times, /p1 12 times, ... /p11 twice.
	// /tie-a and /tie-b both get 1 view, /tie-a first.
	for i := 0; i < 12; i++ {
		path := string(rune('a'+i)) + "-page"
		for j := 0; j < 13-i; j++ {
			views = append(views, events.Event{IP: "203.0.113.1", Path: "/" + path})
		}
	}
	views = append(views,
		events.Event{IP: "203.0.113.1", Path: "/tie-a"},
		events.Event{IP: "203.0.113.1", Path: "/tie-b"},
	)

	stats := events.Aggregate(events.FilteredEvents{PageViews: views})

	require.Len(t, stats.TopPages, 10)
	assert.Equal(t, "/a-page", stats.TopPages[0].Path)
	assert.Equal(t, 13, stats.TopPages[0].Count)
	assert.Equal(t, "/a-page", stats.TopPage)

	truncated := 0
	for _, page := range stats.TopPages {
		truncated += page.Count
	}
	assert.LessOrEqual(t, truncated, stats.TotalViews)
	assert.Equal(t, len(views), stats.TotalViews)
}

func TestTopPagesTieBreaksByFirstSeen(t *testing.T) {
	views := []events.Event{
		{IP: "203.0.113.1", Path: "/first"},
		{IP: "203.0.113.1", Path: "/second"},
		{IP: "203.0.113.1", Path: "/second"},
		{IP: "203.0.113.1", Path: "/third"},
	}

	stats := events.Aggregate(events.FilteredEvents{PageViews: views})

	require.Len(t, stats.TopPages, 3)
	assert.Equal(t, "/second", stats.TopPages[0].Path)
	assert.Equal(t, "/first", stats.TopPages[1].Path)
	assert.Equal(t, "/third", stats.TopPages[2].Path)
}

func TestBreakdownsSkipAbsentFields(t *testing.T) {
	views := []events.Event{
		{IP: "203.0.113.1", Path: "/a", DeviceType: "mobile", Browser: "chrome"},
		{IP: "203.0.113.2", Path: "/b"},
	}

	stats := events.Aggregate(events.FilteredEvents{PageViews: views})

	assert.Equal(t, []events.TypeCount{{Type: "mobile", Count: 1}}, stats.DeviceTypes)
	assert.Equal(t, []events.BrowserCount{{Browser: "chrome", Count: 1}}, stats.Browsers)
	assert.Empty(t, stats.OperatingSystems)
	// The event without a device type still counts everywhere else.
	assert.Equal(t, 2, stats.TotalViews)
}

func TestTrafficSourcesExcludeLoopbackAndSortDescending(t *testing.T) {
	views := []events.Event{
		{IP: "203.0.113.1", Path: "/a", Source: "google"},
		{IP: "203.0.113.2", Path: "/a", Source: "google"},
		{IP: "203.0.113.3", Path: "/a", Source: "http://localhost:3000/"},
		{IP: "203.0.113.4", Path: "/a", Source: "bing"},
	}

	stats := events.Aggregate(events.FilteredEvents{PageViews: views})

	assert.Equal(t, []events.SourceCount{
		{Source: "google", Count: 2},
		{Source: "bing", Count: 1},
	}, stats.TrafficSources)
}

func TestNewAndReturningVisitors(t *testing.T) {
	views := []events.Event{
		{IP: "203.0.113.1", Path: "/a", IsNewVisitor: boolPtr(true)},
		{IP: "203.0.113.2", Path: "/a", IsNewVisitor: boolPtr(true)},
		{IP: "203.0.113.3", Path: "/a", IsNewVisitor: boolPtr(false)},
		{IP: "203.0.113.4", Path: "/a"},
	}

	stats := events.Aggregate(events.FilteredEvents{PageViews: views})

	assert.Equal(t, 2, stats.NewVisitors)
	assert.Equal(t, 1, stats.ReturningVisitors)
}

func TestVisitTimePatterns(t *testing.T) {
	views := []events.Event{
		{IP: "203.0.113.1", Path: "/a", Hour: intPtr(14), DayName: "Monday"},
		{IP: "203.0.113.2", Path: "/a", Hour: intPtr(14), DayName: "Monday"},
		{IP: "203.0.113.3", Path: "/a", Hour: intPtr(9)},
	}

	stats := events.Aggregate(events.FilteredEvents{PageViews: views})

	assert.Equal(t, []events.HourCount{{Hour: 14, Count: 2}, {Hour: 9, Count: 1}}, stats.VisitsByHour)
	assert.Equal(t, []events.DayCount{{Day: "Monday", Count: 2}}, stats.VisitsByDay)
}

func TestEngagementAverages(t *testing.T) {
	exits := []events.Event{
		{IP: "203.0.113.1", Path: "/a", EventType: events.EventTypePageExit, TimeOnPage: 10, ScrollDepth: floatPtr(50)},
		{IP: "203.0.113.2", Path: "/a", EventType: events.EventTypePageExit, TimeOnPage: 25, ScrollDepth: floatPtr(75)},
		// Zero time on page is ignored, defined scroll depth still counts.
		{IP: "203.0.113.3", Path: "/a", EventType: events.EventTypePageExit, ScrollDepth: floatPtr(100)},
	}

	stats := events.Aggregate(events.FilteredEvents{ExitEvents: exits})

	assert.Equal(t, 18, stats.AvgTimeOnPage) // round(35/2)
	assert.Equal(t, 75, stats.AvgScrollDepth)
}

func TestSessionMetrics(t *testing.T) {
	views := []events.Event{
		{IP: "203.0.113.1", Path: "/a", SessionID: "s1"},
		{IP: "203.0.113.1", Path: "/b", SessionID: "s1"},
		{IP: "203.0.113.2", Path: "/a", SessionID: "s2"},
		{IP: "203.0.113.3", Path: "/a"},
	}

	stats := events.Aggregate(events.FilteredEvents{PageViews: views})

	assert.Equal(t, 2, stats.TotalSessions)
	assert.Equal(t, "1.5", stats.AvgPagesPerSession)
	assert.Equal(t, 50, stats.BounceRate)
}

func TestBounceRateBounds(t *testing.T) {
	allBounces := events.FilteredEvents{PageViews: []events.Event{
		{IP: "203.0.113.1", Path: "/a", SessionID: "s1"},
		{IP: "203.0.113.2", Path: "/a", SessionID: "s2"},
	}}
	assert.Equal(t, 100, events.Aggregate(allBounces).BounceRate)

	noBounces := events.FilteredEvents{PageViews: []events.Event{
		{IP: "203.0.113.1", Path: "/a", SessionID: "s1"},
		{IP: "203.0.113.1", Path: "/b", SessionID: "s1"},
		{IP: "203.0.113.2", Path: "/a", SessionID: "s2"},
		{IP: "203.0.113.2", Path: "/b", SessionID: "s2"},
	}}
	assert.Equal(t, 0, events.Aggregate(noBounces).BounceRate)
}

func TestMalformedEntryDoesNotChangeAggregate(t *testing.T) {
	clean := []string{
		`{"path":"/a","ip":"203.0.113.1","visitorId":"v1"}`,
		`{"path":"/b","ip":"203.0.113.2","visitorId":"v2"}`,
	}
	dirty := []string{clean[0], `"{not json`, clean[1]}

	cleanJSON, err := json.Marshal(aggregateRaw(t, clean, nil))
	require.NoError(t, err)
	dirtyJSON, err := json.Marshal(aggregateRaw(t, dirty, nil))
	require.NoError(t, err)

	assert.Equal(t, cleanJSON, dirtyJSON)
}

func TestRecentVisitorsProjection(t *testing.T) {
	views := []events.Event{
		{
			IP: "203.0.113.1", Path: "/a", Timestamp: "2026-08-30T10:00:00.000Z",
			DeviceType: "mobile", Browser: "chrome", OS: "android",
			Source: "google", SourceType: "search",
			CountryCode: "DE", City: "Berlin",
			Latitude: floatPtr(52.52), Longitude: floatPtr(13.4),
		},
		{IP: "203.0.113.2", Path: "/b", Source: "server-log", Referrer: "https://example.com"},
		{IP: "203.0.113.3", Path: "/c", Referrer: "https://blog.example.com"},
		{IP: "203.0.113.4", Path: "/d", Referrer: "direct"},
		{IP: "", Path: "/no-address"},
		{IP: "203.0.113.5", Path: ""},
	}

	stats := events.Aggregate(events.FilteredEvents{PageViews: views})

	require.Len(t, stats.RecentVisitors, 4)

	full := stats.RecentVisitors[0]
	assert.Equal(t, "203.0.113.1", full.IP)
	require.NotNil(t, full.Timestamp)
	assert.Equal(t, "2026-08-30T10:00:00.000Z", *full.Timestamp)
	require.NotNil(t, full.DeviceType)
	assert.Equal(t, "mobile", *full.DeviceType)
	assert.Equal(t, "google", full.Source)
	require.NotNil(t, full.CountryCode)
	assert.Equal(t, "DE", *full.CountryCode)

	serverLogged := stats.RecentVisitors[1]
	require.NotNil(t, serverLogged.DeviceType)
	assert.Equal(t, "unknown", *serverLogged.DeviceType)
	require.NotNil(t, serverLogged.SourceType)
	assert.Equal(t, "server-log", *serverLogged.SourceType)
	assert.Equal(t, "server-log", serverLogged.Source)

	referred := stats.RecentVisitors[2]
	assert.Nil(t, referred.DeviceType)
	assert.Equal(t, "https://blog.example.com", referred.Source)

	direct := stats.RecentVisitors[3]
	assert.Equal(t, "direct", direct.Source)
	assert.Nil(t, direct.Timestamp)
	assert.Nil(t, direct.Browser)
	assert.Nil(t, direct.Latitude)
}

func TestRecentVisitorsCap(t *testing.T) {
	views := make([]events.Event, 0, 350)
	for i := 0; i < 350; i++ {
		views = append(views, events.Event{IP: "203.0.113.1", Path: "/a"})
	}

	stats := events.Aggregate(events.FilteredEvents{PageViews: views})
	assert.Len(t, stats.RecentVisitors, 300)
	assert.Equal(t, 350, stats.TotalViews)
}

func TestRecentVisitorsNullableFieldsSerializeAsNull(t *testing.T) {
	views := []events.Event{{IP: "203.0.113.1", Path: "/a"}}
	stats := events.Aggregate(events.FilteredEvents{PageViews: views})

	payload, err := json.Marshal(stats.RecentVisitors[0])
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"timestamp":null`)
	assert.Contains(t, string(payload), `"deviceType":null`)
	assert.Contains(t, string(payload), `"latitude":null`)
	assert.Contains(t, string(payload), `"source":"direct"`)
}
