package geo

import (
	"net"

	"github.com/oschwald/geoip2-golang"
)

// GeoIP：MaxMind GeoIP2/GeoLite2 mmdb（City 或 Country 版本）
type GeoIP struct {
	db *geoip2.Reader
}

func OpenGeoIP(path string) (*GeoIP, error) {
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, err
	}
	return &GeoIP{db: db}, nil
}

// Lookup：先按 City 查询，库类型不支持时退回 Country
func (g *GeoIP) Lookup(ip string) (Location, bool) {
	p := net.ParseIP(ip)
	if p == nil {
		return Location{}, false
	}
	var l Location
	if rec, err := g.db.City(p); err == nil {
		l.Country = rec.Country.IsoCode
		if len(rec.Subdivisions) > 0 {
			l.Region = rec.Subdivisions[0].Names["en"]
		}
		l.City = rec.City.Names["en"]
	} else if rec, err := g.db.Country(p); err == nil {
		l.Country = rec.Country.IsoCode
	} else {
		return Location{}, false
	}
	if l.empty() {
		return Location{}, false
	}
	l.Source = "geoip"
	return l, true
}

func (g *GeoIP) Close() error { return g.db.Close() }
