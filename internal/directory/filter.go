// Package directory filters the provider listing shown to customers.
//
// Filtering never reorders: results keep the order of the input slice, which the
// store returns in insertion order.
package directory

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/suPer8Hu/talent-market/internal/geo"
	"github.com/suPer8Hu/talent-market/internal/provider"
)

type Filter struct {
	SearchTerm      string
	Skill           string
	City            string
	UseLiveLocation bool
	UserCoordinate  *geo.Coordinate
}

// Refinement holds the advanced facets. It is applied as its own step after Apply.
type Refinement struct {
	PriceMin     *float64
	PriceMax     *float64
	MinRating    float64
	Availability []string
}

func (r Refinement) Active() bool {
	return r.PriceMin != nil || r.PriceMax != nil || r.MinRating > 0 || len(r.Availability) > 0
}

// Match reports whether p passes every set predicate of f.
func (f Filter) Match(p *provider.Provider) bool {
	if term := strings.ToLower(strings.TrimSpace(f.SearchTerm)); term != "" && !matchesText(p, term) {
		return false
	}
	if f.Skill != "" && !p.HasSkill(f.Skill) {
		return false
	}
	if f.City != "" && p.Location.City != f.City {
		return false
	}
	// with no known user position nothing is within radius
	if f.UseLiveLocation && !geo.WithinRadius(f.UserCoordinate, p.Location.Coordinate(), geo.LiveRadiusKm) {
		return false
	}
	return true
}

func matchesText(p *provider.Provider, term string) bool {
	if strings.Contains(strings.ToLower(p.Name), term) || strings.Contains(strings.ToLower(p.Bio), term) {
		return true
	}
	for _, s := range p.Skills {
		if strings.Contains(strings.ToLower(s), term) {
			return true
		}
	}
	return false
}

// Apply returns the providers matching f, in input order.
func Apply(providers []provider.Provider, f Filter) []provider.Provider {
	out := make([]provider.Provider, 0, len(providers))
	for i := range providers {
		if f.Match(&providers[i]) {
			out = append(out, providers[i])
		}
	}
	return out
}

// Refine narrows an already filtered list by price, rating and availability.
func Refine(providers []provider.Provider, r Refinement) []provider.Provider {
	out := make([]provider.Provider, 0, len(providers))
	for i := range providers {
		if r.match(&providers[i]) {
			out = append(out, providers[i])
		}
	}
	return out
}

func (r Refinement) match(p *provider.Provider) bool {
	if r.PriceMin != nil || r.PriceMax != nil {
		price, ok := ParsePrice(p.Pricing)
		if !ok {
			return false
		}
		if r.PriceMin != nil && price < *r.PriceMin {
			return false
		}
		if r.PriceMax != nil && price > *r.PriceMax {
			return false
		}
	}
	if r.MinRating > 0 {
		var rating float64
		if p.Rating != nil {
			rating = *p.Rating
		}
		if rating < r.MinRating {
			return false
		}
	}
	if len(r.Availability) > 0 {
		avail := strings.ToLower(p.Availability)
		found := false
		for _, tag := range r.Availability {
			if tag = strings.ToLower(strings.TrimSpace(tag)); tag != "" && strings.Contains(avail, tag) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

var priceRe = regexp.MustCompile(`\d[\d,]*(\.\d+)?`)

// ParsePrice extracts the first number from free-text pricing such as "Rs 1,500/visit".
func ParsePrice(text string) (float64, bool) {
	m := priceRe.FindString(text)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// AdminSearch is the moderation search: like the text predicate, but the city matches too.
func AdminSearch(providers []provider.Provider, term string) []provider.Provider {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return providers
	}
	out := make([]provider.Provider, 0, len(providers))
	for i := range providers {
		p := &providers[i]
		if matchesText(p, term) || strings.Contains(strings.ToLower(p.Location.City), term) {
			out = append(out, *p)
		}
	}
	return out
}
