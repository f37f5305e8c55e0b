package catalog

import "strings"

// continentCodes is the continent→granule-code table from spec.md §6: a
// granule's URI carries one of the listed codes, grouped under the
// continent that consumes it (e.g. both AS and SI granules belong to the
// "AS" continent run).
var continentCodes = map[string][]string{
	"AF": {"AF"},
	"AS": {"AS", "SI"},
	"EU": {"EU"},
	"NA": {"NA", "AR", "GR"},
	"OC": {"AU"},
	"SA": {"SA"},
}

// Continents lists every recognized continent code, ascending, for flag
// validation and help text.
func Continents() []string {
	return []string{"AF", "AS", "EU", "NA", "OC", "SA"}
}

// granuleCodesFor resolves a continent to the set of granule codes that
// belong to it.
func granuleCodesFor(continent string) ([]string, error) {
	codes, ok := continentCodes[strings.ToUpper(continent)]
	if !ok {
		return nil, ErrUnknownContinent
	}
	return codes, nil
}

// belongsToContinent reports whether a granule URI carries one of the
// continent's granule codes. Matches original_source/datagen/S3List.py's
// `continent in s3` substring test, but anchored against the table's
// distinct codes instead of a single raw continent string so a continent
// such as NA also matches its AR/GR granule codes.
func belongsToContinent(uri, continent string) (bool, error) {
	codes, err := granuleCodesFor(continent)
	if err != nil {
		return false, err
	}
	for _, code := range codes {
		if strings.Contains(uri, code) {
			return true, nil
		}
	}
	return false, nil
}

// FilterByContinent returns the subset of uris that belong to continent.
func FilterByContinent(uris []string, continent string) ([]string, error) {
	out := make([]string, 0, len(uris))
	for _, u := range uris {
		ok, err := belongsToContinent(u, continent)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, u)
		}
	}
	return out, nil
}
