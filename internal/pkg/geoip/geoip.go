// Package geoip provides optional GeoLite2 lookups for ingestion-side
// enrichment. The database is optional: a missing or unreadable file
// disables lookups without failing startup.
package geoip

import (
	"log/slog"
	"net"
	"os"

	"github.com/oschwald/geoip2-golang"
)

// Location is the subset of GeoLite2 city data stored on events.
type Location struct {
	CountryCode string
	RegionCode  string
	City        string
	Latitude    float64
	Longitude   float64
}

// Reader wraps an optional GeoLite2 city database.
type Reader struct {
	db     *geoip2.Reader
	logger *slog.Logger
}

// Open loads the GeoLite2 database at path. When path is empty or the file
// cannot be opened the returned Reader is still usable; every lookup just
// reports a miss.
func Open(path string, logger *slog.Logger) *Reader {
	reader := &Reader{logger: logger}

	if path == "" {
		logger.Debug("GeoIP database path not configured - geo enrichment disabled")
		return reader
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		logger.Info("GeoLite2 database not found - geo enrichment disabled",
			slog.String("path", path),
			slog.String("hint", "Download from https://www.maxmind.com/en/geolite2/signup"))
		return reader
	}

	db, err := geoip2.Open(path)
	if err != nil {
		logger.Error("Failed to open GeoLite2 database",
			slog.String("path", path),
			slog.Any("error", err))
		return reader
	}

	logger.Info("GeoLite2 database loaded", slog.String("path", path))
	reader.db = db
	return reader
}

// Lookup resolves an address to a location. Returns false when the database
// is unavailable, the address does not parse, or no city record exists.
func (r *Reader) Lookup(ip string) (Location, bool) {
	if r.db == nil {
		return Location{}, false
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return Location{}, false
	}

	record, err := r.db.City(parsed)
	if err != nil {
		r.logger.Debug("GeoIP lookup failed", slog.String("ip", ip), slog.Any("error", err))
		return Location{}, false
	}
	if record.Country.IsoCode == "" {
		return Location{}, false
	}

	location := Location{
		CountryCode: record.Country.IsoCode,
		City:        record.City.Names["en"],
		Latitude:    record.Location.Latitude,
		Longitude:   record.Location.Longitude,
	}
	if len(record.Subdivisions) > 0 {
		location.RegionCode = record.Subdivisions[0].IsoCode
	}
	return location, true
}

// Close releases the underlying database, if one was opened.
func (r *Reader) Close() {
	if r.db != nil {
		r.db.Close()
	}
}
