// Package geo resolves IP addresses against MaxMind databases.
package geo

import (
	"net/netip"
	"strconv"

	"github.com/oschwald/geoip2-golang/v2"
	"github.com/pkg/errors"
)

type Location struct {
	City    string
	Region  string
	Country string
	ASN     string
	Org     string
}

func (l Location) Empty() bool {
	return l == Location{}
}

type Resolver interface {
	Lookup(addr netip.Addr) (Location, error)
	Close() error
}

type cityReader interface {
	City(addr netip.Addr) (*geoip2.City, error)
	Close() error
}

type asnReader interface {
	ASN(addr netip.Addr) (*geoip2.ASN, error)
	Close() error
}

// GeoIP answers from a City database, an ASN database, or both.
type GeoIP struct {
	city cityReader
	asn  asnReader
}

// Open opens whichever of the two database paths are non-empty. It returns
// nil and no error when both are empty.
func Open(cityPath, asnPath string) (*GeoIP, error) {
	if cityPath == "" && asnPath == "" {
		return nil, nil
	}
	g := &GeoIP{}
	if cityPath != "" {
		db, err := geoip2.Open(cityPath)
		if err != nil {
			return nil, errors.Wrapf(err, "open city database %s", cityPath)
		}
		g.city = db
	}
	if asnPath != "" {
		db, err := geoip2.Open(asnPath)
		if err != nil {
			g.Close()
			return nil, errors.Wrapf(err, "open asn database %s", asnPath)
		}
		g.asn = db
	}
	return g, nil
}

func (g *GeoIP) Lookup(addr netip.Addr) (Location, error) {
	var loc Location
	if g.city != nil {
		rec, err := g.city.City(addr)
		if err != nil {
			return loc, errors.Wrapf(err, "city lookup %s", addr)
		}
		applyCity(&loc, rec)
	}
	if g.asn != nil {
		rec, err := g.asn.ASN(addr)
		if err != nil {
			return loc, errors.Wrapf(err, "asn lookup %s", addr)
		}
		applyASN(&loc, rec)
	}
	return loc, nil
}

func applyCity(loc *Location, rec *geoip2.City) {
	if rec == nil {
		return
	}
	loc.City = rec.City.Names.English
	loc.Country = rec.Country.ISOCode
	if len(rec.Subdivisions) > 0 {
		loc.Region = rec.Subdivisions[0].ISOCode
		if loc.Region == "" {
			loc.Region = rec.Subdivisions[0].Names.English
		}
	}
}

// applyASN treats AS number 0 as unset.
func applyASN(loc *Location, rec *geoip2.ASN) {
	if rec == nil {
		return
	}
	if rec.AutonomousSystemNumber != 0 {
		loc.ASN = strconv.FormatUint(uint64(rec.AutonomousSystemNumber), 10)
	}
	loc.Org = rec.AutonomousSystemOrganization
}

func (g *GeoIP) Close() error {
	var first error
	if g.city != nil {
		first = g.city.Close()
	}
	if g.asn != nil {
		if err := g.asn.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
