// Package region resolves country labels to standardized ISO3 codes.
package region

import (
	"strings"

	"github.com/pariz/gountries"
)

// Resolver maps free-form country labels to ISO3 codes using the gountries
// reference data, with an alias table in front for informal labels that the
// reference names miss. Lookup is best-effort: trimmed, case-insensitive,
// falling back to 2/3-letter code matching so labels like "USA" resolve.
type Resolver struct {
	query   *gountries.Query
	aliases map[string]string
}

// aliases for labels that show up in exports but are not the reference
// common or official name.
var defaultAliases = map[string]string{
	"uk":          "GBR",
	"u.k.":        "GBR",
	"u.s.":        "USA",
	"u.s.a.":      "USA",
	"south korea": "KOR",
	"north korea": "PRK",
	"russia":      "RUS",
	"ivory coast": "CIV",
}

// NewResolver creates a resolver backed by the embedded country reference data.
func NewResolver() *Resolver {
	return &Resolver{
		query:   gountries.New(),
		aliases: defaultAliases,
	}
}

// Resolve returns the ISO3 code for a country label, or ok=false when no
// match exists.
func (r *Resolver) Resolve(name string) (string, bool) {
	cleaned := strings.TrimSpace(name)
	if cleaned == "" {
		return "", false
	}

	if code, ok := r.aliases[strings.ToLower(cleaned)]; ok {
		return code, true
	}

	if country, err := r.query.FindCountryByName(cleaned); err == nil {
		return country.Alpha3, true
	}

	// Short labels may already be alpha-2/alpha-3 codes.
	if n := len(cleaned); n == 2 || n == 3 {
		if country, err := r.query.FindCountryByAlpha(strings.ToUpper(cleaned)); err == nil {
			return country.Alpha3, true
		}
	}

	return "", false
}
