// Package events contains the event model and the read-side aggregation
// pipeline: normalizing raw stored records, filtering loopback and exit
// traffic, and deriving the statistics bundle.
package events

// Event types carried on the wire. An absent eventType means page_view.
const (
	EventTypePageView = "page_view"
	EventTypePageExit = "page_exit"
)

// SourceServerLog marks records written by the pixel logger rather than the
// client-side tracker.
const SourceServerLog = "server-log"

// Event is one recorded interaction. Events are schema-less on the wire:
// clients send whatever fields they have, so everything here is optional.
// Fields that must distinguish "absent" from the zero value are pointers.
type Event struct {
	IP           string   `json:"ip,omitempty"`
	Path         string   `json:"path,omitempty"`
	Timestamp    string   `json:"timestamp,omitempty"`
	EventType    string   `json:"eventType,omitempty"`
	VisitorID    string   `json:"visitorId,omitempty"`
	SessionID    string   `json:"sessionId,omitempty"`
	DeviceType   string   `json:"deviceType,omitempty"`
	Browser      string   `json:"browser,omitempty"`
	OS           string   `json:"os,omitempty"`
	Source       string   `json:"source,omitempty"`
	SourceType   string   `json:"sourceType,omitempty"`
	Referrer     string   `json:"referrer,omitempty"`
	UserAgent    string   `json:"userAgent,omitempty"`
	IsNewVisitor *bool    `json:"isNewVisitor,omitempty"`
	Hour         *int     `json:"hour,omitempty"`
	DayName      string   `json:"dayName,omitempty"`
	TimeOnPage   float64  `json:"timeOnPage,omitempty"`
	ScrollDepth  *float64 `json:"scrollDepth,omitempty"`
	CountryCode  string   `json:"countryCode,omitempty"`
	RegionCode   string   `json:"regionCode,omitempty"`
	City         string   `json:"city,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
}

// IsPageExit reports whether the event is an engagement (page-exit) event.
func (e *Event) IsPageExit() bool {
	return e.EventType == EventTypePageExit
}
