package catalog

import "strings"

// Provider identifies which DAAC's S3-credentials endpoint to broker
// against (spec.md §6, -p/--provider).
type Provider string

const (
	ProviderPOCLOUD  Provider = "POCLOUD"
	ProviderLPDAAC   Provider = "lpdaac"
	ProviderORNLDAAC Provider = "ornldaac"
	ProviderGESDISC  Provider = "gesdisc"
)

// credentialEndpoints maps each recognized provider to its S3-credentials
// broker endpoint.
var credentialEndpoints = map[Provider]string{
	ProviderPOCLOUD:  "https://archive.podaac.earthdata.nasa.gov/s3credentials",
	ProviderLPDAAC:   "https://data.lpdaac.earthdatacloud.nasa.gov/s3credentials",
	ProviderORNLDAAC: "https://data.ornldaac.earthdata.nasa.gov/s3credentials",
	ProviderGESDISC:  "https://data.gesdisc.earthdata.nasa.gov/s3credentials",
}

// ParseProvider validates and normalizes a -p/--provider flag value.
func ParseProvider(s string) (Provider, error) {
	for p := range credentialEndpoints {
		if strings.EqualFold(string(p), s) {
			return p, nil
		}
	}
	return "", ErrUnknownProvider
}

// Endpoint returns the provider's S3-credentials broker URL.
func (p Provider) Endpoint() (string, error) {
	url, ok := credentialEndpoints[p]
	if !ok {
		return "", ErrUnknownProvider
	}
	return url, nil
}
