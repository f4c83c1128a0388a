package events

import (
	"math"
	"sort"
	"strconv"
)

const (
	topPagesLimit       = 10
	recentVisitorsLimit = 300
)

// PageCount is one entry of the top-pages table.
type PageCount struct {
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// TypeCount is a generic (type, count) breakdown entry.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// BrowserCount is one entry of the browser breakdown.
type BrowserCount struct {
	Browser string `json:"browser"`
	Count   int    `json:"count"`
}

// OSCount is one entry of the operating-system breakdown.
type OSCount struct {
	OS    string `json:"os"`
	Count int    `json:"count"`
}

// SourceCount is one entry of the traffic-source breakdown.
type SourceCount struct {
	Source string `json:"source"`
	Count  int    `json:"count"`
}

// HourCount is one entry of the visits-by-hour table.
type HourCount struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// DayCount is one entry of the visits-by-day table.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// RecentVisitor is the display-safe projection of one page view. Optional
// fields serialize as null when the event did not carry them.
type RecentVisitor struct {
	IP          string   `json:"ip"`
	Path        string   `json:"path"`
	Timestamp   *string  `json:"timestamp"`
	DeviceType  *string  `json:"deviceType"`
	Browser     *string  `json:"browser"`
	OS          *string  `json:"os"`
	SourceType  *string  `json:"sourceType"`
	Source      string   `json:"source"`
	CountryCode *string  `json:"countryCode"`
	RegionCode  *string  `json:"regionCode"`
	City        *string  `json:"city"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// Stats is the full statistics bundle returned by the query endpoints.
type Stats struct {
	TotalViews         int             `json:"totalViews"`
	DistinctIPs        int             `json:"distinctIPs"`
	UniqueVisitors     int             `json:"uniqueVisitors"`
	TopPage            string          `json:"topPage"`
	TopPages           []PageCount     `json:"topPages"`
	RecentVisitors     []RecentVisitor `json:"recentVisitors"`
	DeviceTypes        []TypeCount     `json:"deviceTypes"`
	Browsers           []BrowserCount  `json:"browsers"`
	OperatingSystems   []OSCount       `json:"operatingSystems"`
	TrafficSources     []SourceCount   `json:"trafficSources"`
	SourceTypes        []TypeCount     `json:"sourceTypes"`
	NewVisitors        int             `json:"newVisitors"`
	ReturningVisitors  int             `json:"returningVisitors"`
	VisitsByHour       []HourCount     `json:"visitsByHour"`
	VisitsByDay        []DayCount      `json:"visitsByDay"`
	AvgTimeOnPage      int             `json:"avgTimeOnPage"`
	AvgScrollDepth     int             `json:"avgScrollDepth"`
	TotalSessions      int             `json:"totalSessions"`
	AvgPagesPerSession string          `json:"avgPagesPerSession"`
	BounceRate         int             `json:"bounceRate"`
}

// counter is an insertion-ordered frequency table. Iteration follows the
// order keys were first seen, which keeps Aggregate deterministic across
// runs on the same input.
type counter struct {
	keys   []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, seen := c.counts[key]; !seen {
		c.keys = append(c.keys, key)
	}
	c.counts[key]++
}

func (c *counter) len() int {
	return len(c.keys)
}

// Aggregate derives the statistics bundle from filtered events. It is a
// pure function: no I/O, no clock, no state across calls.
func Aggregate(input FilteredEvents) Stats {
	stats := Stats{
		TotalViews:  len(input.PageViews),
		DistinctIPs: len(input.DistinctIPs),
	}

	// Unique visitors come from the filtered page views, not the stored
	// unique-visitor set: the set is unfiltered and never trimmed.
	visitorIDs := make(map[string]struct{})
	for _, view := range input.PageViews {
		if view.VisitorID != "" {
			visitorIDs[view.VisitorID] = struct{}{}
		}
	}
	stats.UniqueVisitors = len(visitorIDs)

	pageCounts := newCounter()
	deviceTypes := newCounter()
	browsers := newCounter()
	operatingSystems := newCounter()
	trafficSources := newCounter()
	sourceTypes := newCounter()
	visitsByHour := newCounter()
	visitsByDay := newCounter()
	pagesPerSession := newCounter()

	for _, view := range input.PageViews {
		if view.Path != "" {
			pageCounts.add(view.Path)
		}
		if view.DeviceType != "" {
			deviceTypes.add(view.DeviceType)
		}
		if view.Browser != "" {
			browsers.add(view.Browser)
		}
		if view.OS != "" {
			operatingSystems.add(view.OS)
		}
		if view.SourceType != "" && !IsLoopbackSource(view.SourceType) {
			sourceTypes.add(view.SourceType)
		}
		if view.Source != "" && !IsLoopbackSource(view.Source) {
			trafficSources.add(view.Source)
		}
		if view.IsNewVisitor != nil {
			if *view.IsNewVisitor {
				stats.NewVisitors++
			} else {
				stats.ReturningVisitors++
			}
		}
		if view.Hour != nil {
			visitsByHour.add(strconv.Itoa(*view.Hour))
		}
		if view.DayName != "" {
			visitsByDay.add(view.DayName)
		}
		if view.SessionID != "" {
			pagesPerSession.add(view.SessionID)
		}
	}

	stats.TopPages = topPages(pageCounts)
	stats.TopPage = "/"
	if len(stats.TopPages) > 0 {
		stats.TopPage = stats.TopPages[0].Path
	}

	stats.DeviceTypes = typeCounts(deviceTypes)
	stats.SourceTypes = typeCounts(sourceTypes)

	stats.Browsers = make([]BrowserCount, 0, browsers.len())
	for _, key := range browsers.keys {
		stats.Browsers = append(stats.Browsers, BrowserCount{Browser: key, Count: browsers.counts[key]})
	}

	stats.OperatingSystems = make([]OSCount, 0, operatingSystems.len())
	for _, key := range operatingSystems.keys {
		stats.OperatingSystems = append(stats.OperatingSystems, OSCount{OS: key, Count: operatingSystems.counts[key]})
	}

	stats.TrafficSources = make([]SourceCount, 0, trafficSources.len())
	for _, key := range trafficSources.keys {
		stats.TrafficSources = append(stats.TrafficSources, SourceCount{Source: key, Count: trafficSources.counts[key]})
	}
	sort.SliceStable(stats.TrafficSources, func(i, j int) bool {
		return stats.TrafficSources[i].Count > stats.TrafficSources[j].Count
	})

	stats.VisitsByHour = make([]HourCount, 0, visitsByHour.len())
	for _, key := range visitsByHour.keys {
		hour, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		stats.VisitsByHour = append(stats.VisitsByHour, HourCount{Hour: hour, Count: visitsByHour.counts[key]})
	}

	stats.VisitsByDay = make([]DayCount, 0, visitsByDay.len())
	for _, key := range visitsByDay.keys {
		stats.VisitsByDay = append(stats.VisitsByDay, DayCount{Day: key, Count: visitsByDay.counts[key]})
	}

	stats.AvgTimeOnPage, stats.AvgScrollDepth = engagement(input.ExitEvents)

	stats.TotalSessions, stats.AvgPagesPerSession, stats.BounceRate = sessions(pagesPerSession)

	stats.RecentVisitors = recentVisitors(input.PageViews)

	return stats
}

// topPages sorts paths by view count descending, ties broken by first
// appearance in the page-view stream, and keeps the top 10.
func topPages(pageCounts *counter) []PageCount {
	pages := make([]PageCount, 0, pageCounts.len())
	for _, path := range pageCounts.keys {
		pages = append(pages, PageCount{Path: path, Count: pageCounts.counts[path]})
	}
	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].Count > pages[j].Count
	})
	if len(pages) > topPagesLimit {
		pages = pages[:topPagesLimit]
	}
	return pages
}

func typeCounts(c *counter) []TypeCount {
	result := make([]TypeCount, 0, c.len())
	for _, key := range c.keys {
		result = append(result, TypeCount{Type: key, Count: c.counts[key]})
	}
	return result
}

// engagement averages time-on-page and scroll depth over exit events,
// rounded to the nearest integer. Zero when no event qualifies.
func engagement(exitEvents []Event) (avgTimeOnPage int, avgScrollDepth int) {
	var timeSum float64
	var timeCount int
	var scrollSum float64
	var scrollCount int

	for _, exit := range exitEvents {
		if exit.TimeOnPage > 0 {
			timeSum += exit.TimeOnPage
			timeCount++
		}
		if exit.ScrollDepth != nil {
			scrollSum += *exit.ScrollDepth
			scrollCount++
		}
	}

	if timeCount > 0 {
		avgTimeOnPage = int(math.Round(timeSum / float64(timeCount)))
	}
	if scrollCount > 0 {
		avgScrollDepth = int(math.Round(scrollSum / float64(scrollCount)))
	}
	return avgTimeOnPage, avgScrollDepth
}

// sessions derives session metrics from the per-session page-view counts.
// A bounce is a session with exactly one page view.
func sessions(pagesPerSession *counter) (total int, avgPages string, bounceRate int) {
	total = pagesPerSession.len()
	if total == 0 {
		return 0, "0", 0
	}

	var viewSum int
	var bounces int
	for _, sessionID := range pagesPerSession.keys {
		count := pagesPerSession.counts[sessionID]
		viewSum += count
		if count == 1 {
			bounces++
		}
	}

	avgPages = strconv.FormatFloat(float64(viewSum)/float64(total), 'f', 1, 64)
	bounceRate = int(math.Round(float64(bounces) / float64(total) * 100))
	return total, avgPages, bounceRate
}

// recentVisitors projects the newest page views (store order is already
// most recent first) into display-safe records, capped at 300.
func recentVisitors(pageViews []Event) []RecentVisitor {
	recent := make([]RecentVisitor, 0, recentVisitorsLimit)
	for _, view := range pageViews {
		if view.IP == "" || view.Path == "" {
			continue
		}
		if len(recent) == recentVisitorsLimit {
			break
		}
		recent = append(recent, projectVisitor(view))
	}
	return recent
}

func projectVisitor(view Event) RecentVisitor {
	visitor := RecentVisitor{
		IP:          view.IP,
		Path:        view.Path,
		Timestamp:   optional(view.Timestamp),
		DeviceType:  optional(view.DeviceType),
		Browser:     optional(view.Browser),
		OS:          optional(view.OS),
		SourceType:  optional(view.SourceType),
		CountryCode: optional(view.CountryCode),
		RegionCode:  optional(view.RegionCode),
		City:        optional(view.City),
		Latitude:    view.Latitude,
		Longitude:   view.Longitude,
	}

	// Pixel-logged records carry no client-side device metadata; label them
	// instead of leaving holes in the dashboard.
	if visitor.DeviceType == nil && view.Source == SourceServerLog {
		visitor.DeviceType = optional("unknown")
	}
	if visitor.SourceType == nil && view.Source == SourceServerLog {
		visitor.SourceType = optional(SourceServerLog)
	}

	switch {
	case view.Source != "":
		visitor.Source = view.Source
	case view.Referrer != "" && view.Referrer != "direct":
		visitor.Source = view.Referrer
	default:
		visitor.Source = "direct"
	}

	return visitor
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
