package pipeline

import (
	"strings"

	"github.com/antzucaro/matchr"
	"github.com/biter777/countries"

	"medals/internal/util"
)

// ISO2Resolver maps a canonical country name to its ISO 3166-1 alpha-2 code.
type ISO2Resolver interface {
	ResolveISO2(name string) (string, bool)
}

const defaultFuzzyThreshold = 0.92

type countryCandidate struct {
	key    string
	alpha2 string
}

// CountryResolver searches the ISO 3166 country list: exact name first, then
// a country name found inside the label, then the label found inside exactly one
// country name, then Jaro-Winkler similarity above a threshold.
type CountryResolver struct {
	exact      func(name string) (string, bool)
	byKey      map[string]string
	candidates []countryCandidate
	threshold  float64
}

func NewCountryResolver() *CountryResolver {
	all := countries.All()
	candidates := make([]countryCandidate, 0, len(all))
	for _, c := range all {
		alpha2 := c.Alpha2()
		if len(alpha2) != 2 {
			continue
		}
		candidates = append(candidates, countryCandidate{key: util.NameKey(c.String()), alpha2: alpha2})
	}
	return newCountryResolver(candidates, byCountryName)
}

func newCountryResolver(candidates []countryCandidate, exact func(string) (string, bool)) *CountryResolver {
	r := &CountryResolver{
		exact:      exact,
		byKey:      map[string]string{},
		candidates: candidates,
		threshold:  defaultFuzzyThreshold,
	}
	for _, c := range candidates {
		if _, ok := r.byKey[c.key]; !ok && c.key != "" {
			r.byKey[c.key] = c.alpha2
		}
	}
	return r
}

func byCountryName(name string) (string, bool) {
	code := countries.ByName(name)
	if code == countries.Unknown {
		return "", false
	}
	alpha2 := code.Alpha2()
	return alpha2, len(alpha2) == 2
}

func (r *CountryResolver) ResolveISO2(name string) (string, bool) {
	if r.exact != nil {
		if alpha2, ok := r.exact(name); ok {
			return alpha2, true
		}
	}

	key := util.NameKey(name)
	if key == "" {
		return "", false
	}
	if alpha2, ok := r.byKey[key]; ok {
		return alpha2, true
	}

	if alpha2, ok := r.containedIn(key); ok {
		return alpha2, true
	}
	if alpha2, ok := r.containing(key); ok {
		return alpha2, true
	}

	best, bestScore := "", 0.0
	for _, c := range r.candidates {
		score := matchr.JaroWinkler(key, c.key, false)
		if score > bestScore {
			best, bestScore = c.alpha2, score
		}
	}
	if bestScore >= r.threshold {
		return best, true
	}
	return "", false
}

// containedIn returns the longest candidate that appears in key as a whole-word
// phrase, so "the gambia" finds "gambia" and "republic of the congo" finds "congo".
func (r *CountryResolver) containedIn(key string) (string, bool) {
	best := countryCandidate{}
	haystack := " " + key + " "
	for _, c := range r.candidates {
		if c.key == "" || !strings.Contains(haystack, " "+c.key+" ") {
			continue
		}
		if len(c.key) > len(best.key) {
			best = c
		}
	}
	return best.alpha2, best.alpha2 != ""
}

// containing accepts key as a whole-word phrase of a longer name only when
// exactly one country carries it.
func (r *CountryResolver) containing(key string) (string, bool) {
	var match countryCandidate
	found := 0
	needle := " " + key + " "
	for _, c := range r.candidates {
		if strings.Contains(" "+c.key+" ", needle) {
			match = c
			found++
		}
	}
	if found != 1 {
		return "", false
	}
	return match.alpha2, true
}
