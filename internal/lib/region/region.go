package region

import (
	"parcelsync/entity"
	"sort"
)

// DefaultZipCode is used for regions missing from the table (Tunis).
const DefaultZipCode = "1000"

var zipCodes = map[string]string{
	"Ariana":      "2080",
	"Béja":        "9000",
	"Ben Arous":   "2013",
	"Bizerte":     "7000",
	"Gabès":       "6000",
	"Gafsa":       "2100",
	"Jendouba":    "8100",
	"Kairouan":    "3100",
	"Kasserine":   "1200",
	"Kébili":      "4200",
	"La Manouba":  "2010",
	"Le Kef":      "7100",
	"Mahdia":      "5100",
	"Médenine":    "4100",
	"Monastir":    "5000",
	"Nabeul":      "8000",
	"Sfax":        "3000",
	"Sidi Bouzid": "9100",
	"Siliana":     "6100",
	"Sousse":      "4000",
	"Tataouine":   "3200",
	"Tozeur":      "2200",
	"Tunis":       "1000",
	"Zaghouan":    "1100",
}

// Lookup matches the region name exactly, case-sensitive.
func Lookup(name string) (string, bool) {
	code, ok := zipCodes[name]
	return code, ok
}

// ZipCode returns the postal code of the region or DefaultZipCode.
func ZipCode(name string) string {
	if code, ok := Lookup(name); ok {
		return code
	}
	return DefaultZipCode
}

// All returns the table sorted by region name.
func All() []entity.Region {
	regions := make([]entity.Region, 0, len(zipCodes))
	for name, code := range zipCodes {
		regions = append(regions, entity.Region{Name: name, ZipCode: code})
	}
	sort.Slice(regions, func(i, j int) bool {
		return regions[i].Name < regions[j].Name
	})
	return regions
}
