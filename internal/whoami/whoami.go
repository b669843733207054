// Package whoami builds the server's view of a visitor from request headers,
// the edge request context and, optionally, a GeoIP database.
package whoami

import (
	"net/http"
	"net/netip"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"privacymirror/internal/edge"
	"privacymirror/internal/geo"
	"privacymirror/internal/types"
	"privacymirror/internal/utils"
)

type Resolver struct {
	Geo                geo.Resolver
	RemoteAddrFallback bool
	Logger             zerolog.Logger
}

// Resolve answers from the first source that has data: Vercel geo headers,
// then the edge context object, then a GeoIP lookup.
func (res *Resolver) Resolve(r *http.Request) types.WhoAmI {
	ip := utils.ClientIP(r, res.RemoteAddrFallback)
	who := types.WhoAmI{
		IP:         types.StringPtr(ip),
		Method:     types.MethodUnknown,
		HeaderHash: utils.RequestHeaderHash(r),
	}
	who.ServerCookieNames = utils.CookieNames(r.Header)
	who.ServerCookieCount = len(who.ServerCookieNames)

	if fromVercel(r, &who) {
		return who
	}
	if cf, ok := edge.FromContext(r.Context()); ok && cf.HasGeo() {
		fromEdge(cf, &who)
		return who
	}
	res.fromLookup(ip, &who)
	return who
}

func fromVercel(r *http.Request, who *types.WhoAmI) bool {
	country := r.Header.Get("X-Vercel-IP-Country")
	city := r.Header.Get("X-Vercel-IP-City")
	asn := r.Header.Get("X-Vercel-IP-ASN")
	if country == "" && city == "" && asn == "" {
		return false
	}
	// Vercel percent-encodes the city name.
	if decoded, err := url.QueryUnescape(city); err == nil {
		city = decoded
	}
	who.City = types.StringPtr(city)
	who.Region = types.StringPtr(r.Header.Get("X-Vercel-IP-Country-Region"))
	who.Country = types.StringPtr(country)
	who.ASN = types.StringPtr(asn)
	who.Org = types.StringPtr(r.Header.Get("X-Vercel-IP-AS-Org"))
	who.Method = types.MethodHeaders
	return true
}

func fromEdge(cf *edge.Context, who *types.WhoAmI) {
	region := cf.Region
	if region == "" {
		region = cf.RegionCode
	}
	// asn is always a string here, empty when the edge did not supply one.
	asn := cf.ASN.String()
	if asn == "0" {
		asn = ""
	}
	who.City = types.StringPtr(cf.City)
	who.Region = types.StringPtr(region)
	who.Country = types.StringPtr(cf.Country)
	who.ASN = &asn
	who.Org = types.StringPtr(cf.ASOrganization)
	who.Method = types.MethodCFObject
}

func (res *Resolver) fromLookup(ip string, who *types.WhoAmI) {
	if res.Geo == nil || ip == "" {
		return
	}
	addr, err := netip.ParseAddr(strings.TrimSpace(ip))
	if err != nil {
		res.Logger.Debug().Err(err).Msg("client address is not an IP, skipping lookup")
		return
	}
	loc, err := res.Geo.Lookup(addr.Unmap())
	if err != nil {
		res.Logger.Warn().Err(err).Msg("geoip lookup failed")
		return
	}
	if loc.Empty() {
		return
	}
	who.City = types.StringPtr(loc.City)
	who.Region = types.StringPtr(loc.Region)
	who.Country = types.StringPtr(loc.Country)
	who.ASN = types.StringPtr(loc.ASN)
	who.Org = types.StringPtr(loc.Org)
	who.Method = types.MethodLookup
}
