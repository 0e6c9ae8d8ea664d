package geoip

import (
	"fmt"
	"log/slog"
	"net"

	"github.com/oschwald/geoip2-golang"
)

type Record struct {
	IP          net.IP
	CountryCode string
	City        string
	Latitude    float64
	Longitude   float64
	ASN         uint
	ASNOrg      string
}

type Resolver interface {
	Resolve(ip net.IP) *Record
}

type resolver struct {
	log *slog.Logger

	cityDB *geoip2.Reader
	asnDB  *geoip2.Reader
}

func NewResolver(log *slog.Logger, cityDB *geoip2.Reader, asnDB *geoip2.Reader) (*resolver, error) {
	if log == nil {
		return nil, fmt.Errorf("log is nil")
	}
	if cityDB == nil {
		return nil, fmt.Errorf("cityDB is nil")
	}
	if asnDB == nil {
		return nil, fmt.Errorf("asnDB is nil")
	}
	return &resolver{
		log:    log,
		cityDB: cityDB,
		asnDB:  asnDB,
	}, nil
}

// Resolve looks the address up in both databases. A miss in the city database
// leaves the coordinates at zero but the ASN lookup is still performed. It
// returns nil only when neither database knows the address.
func (r *resolver) Resolve(ip net.IP) *Record {
	if ip == nil {
		return nil
	}

	if r.cityDB == nil && r.asnDB == nil {
		return nil
	}

	var (
		countryCode, city string
		cityID            uint
		lat, lon          float64
		asnNum            uint
		asnOrg            string
	)

	if r.cityDB != nil {
		rec, err := r.cityDB.City(ip)
		if err != nil {
			r.log.Debug("geoip: city lookup failed", "ip", ip.String(), "error", err)
		} else {
			countryCode = rec.Country.IsoCode
			cityID = rec.City.GeoNameID
			city = rec.City.Names["en"]
			lat = rec.Location.Latitude
			lon = rec.Location.Longitude
		}
	}

	if r.asnDB != nil {
		rec, err := r.asnDB.ASN(ip)
		if err != nil {
			r.log.Debug("geoip: asn lookup failed", "ip", ip.String(), "error", err)
		} else {
			asnNum = rec.AutonomousSystemNumber
			asnOrg = rec.AutonomousSystemOrganization
		}
	}

	cityFound := countryCode != "" || cityID != 0 || lat != 0 || lon != 0
	if !cityFound && asnNum == 0 && asnOrg == "" {
		return nil
	}

	return &Record{
		IP:          ip,
		CountryCode: countryCode,
		City:        city,
		Latitude:    lat,
		Longitude:   lon,
		ASN:         asnNum,
		ASNOrg:      asnOrg,
	}
}
