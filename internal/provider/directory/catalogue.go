// Package directory implements the business-directory lead sources.
package directory

import "github.com/octobees/leads-generator/discovery/internal/entity"

// Directory describes a known business directory for a market.
type Directory struct {
	Name            string `json:"name"`
	URL             string `json:"url"`
	APIAvailable    bool   `json:"api_available"`
	RequiresBackend bool   `json:"requires_backend"`
}

var catalogue = map[entity.Country][]Directory{
	entity.CountryUnitedKingdom: {
		{Name: "Yell.com", URL: "https://www.yell.com", RequiresBackend: true},
		{Name: "Thomson Local", URL: "https://www.thomsonlocal.com", RequiresBackend: true},
		{Name: "192.com", URL: "https://www.192.com", RequiresBackend: true},
		{Name: "FreeIndex", URL: "https://www.freeindex.co.uk", RequiresBackend: true},
	},
	entity.CountryUnitedStates: {
		{Name: "Yellow Pages", URL: "https://www.yellowpages.com", RequiresBackend: true},
		{Name: "Yelp", URL: "https://www.yelp.com", APIAvailable: true},
		{Name: "Better Business Bureau", URL: "https://www.bbb.org", RequiresBackend: true},
		{Name: "Angi (Angie's List)", URL: "https://www.angi.com", RequiresBackend: true},
	},
	entity.CountryAustralia: {
		{Name: "Yellow Pages AU", URL: "https://www.yellowpages.com.au", RequiresBackend: true},
		{Name: "TrueLocal", URL: "https://www.truelocal.com.au", RequiresBackend: true},
		{Name: "Hotfrog", URL: "https://www.hotfrog.com.au", RequiresBackend: true},
	},
	entity.CountryGhana: {
		{Name: "BusinessGhana Directory", URL: "https://www.businessghana.com/site/directory", RequiresBackend: true},
		{Name: "Yellow Pages Ghana", URL: "https://www.yellowpagesghana.com", RequiresBackend: true},
		{Name: "GhanaWeb Business", URL: "https://www.ghanaweb.com", RequiresBackend: true},
		{Name: "Jumia Business", URL: "https://www.jumia.com.gh", RequiresBackend: true},
		{Name: "Tonaton", URL: "https://www.tonaton.com", RequiresBackend: true},
	},
}

// Available lists the directories known for a country. Unknown
// countries return an empty slice.
func Available(country entity.Country) []Directory {
	dirs := catalogue[country]
	out := make([]Directory, len(dirs))
	copy(out, dirs)
	return out
}

// RequiresBackend reports whether any directory of the country is only
// reachable through the directory backend.
func RequiresBackend(country entity.Country) bool {
	for _, d := range catalogue[country] {
		if d.RequiresBackend {
			return true
		}
	}
	return false
}
