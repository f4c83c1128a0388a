package events

import "strings"

// IsLoopbackAddress reports whether a network address identifies the server
// itself: 127.0.0.0/8, "localhost", or the IPv6 loopback forms. An empty
// address or the literal "unknown" is ordinary unclassified traffic.
func IsLoopbackAddress(ip string) bool {
	if ip == "" || ip == "unknown" {
		return false
	}
	lower := strings.ToLower(strings.TrimSpace(ip))
	if lower == "127.0.0.1" || lower == "localhost" || strings.HasPrefix(lower, "127.") {
		return true
	}
	if lower == "::1" || lower == "::ffff:127.0.0.1" {
		return true
	}
	return false
}

// IsLoopbackSource reports whether a free-text traffic source refers to the
// server itself. Only used to strip noise from the traffic-source breakdown.
func IsLoopbackSource(source string) bool {
	if source == "" {
		return false
	}
	lower := strings.ToLower(strings.TrimSpace(source))
	return lower == "localhost" ||
		strings.Contains(lower, "localhost") ||
		strings.Contains(lower, "127.0.0.1") ||
		strings.HasPrefix(lower, "http://localhost") ||
		strings.HasPrefix(lower, "https://localhost")
}

// FilteredEvents is the aggregation input after noise removal.
type FilteredEvents struct {
	// PageViews holds non-exit events from non-loopback addresses, most
	// recent first.
	PageViews []Event
	// ExitEvents holds page_exit events from non-loopback addresses.
	ExitEvents []Event
	// DistinctIPs is the stored unique-address set minus loopback entries.
	DistinctIPs []string
}

// Filter splits normalized events into page views and exit events, dropping
// loopback-address traffic from both, and removes loopback entries from the
// unique-address set.
func Filter(normalized []Event, uniqueIPs []string) FilteredEvents {
	filtered := FilteredEvents{
		PageViews:   make([]Event, 0, len(normalized)),
		ExitEvents:  make([]Event, 0),
		DistinctIPs: make([]string, 0, len(uniqueIPs)),
	}

	for _, event := range normalized {
		if IsLoopbackAddress(event.IP) {
			continue
		}
		if event.IsPageExit() {
			filtered.ExitEvents = append(filtered.ExitEvents, event)
		} else {
			filtered.PageViews = append(filtered.PageViews, event)
		}
	}

	for _, ip := range uniqueIPs {
		if !IsLoopbackAddress(ip) {
			filtered.DistinctIPs = append(filtered.DistinctIPs, ip)
		}
	}

	return filtered
}
