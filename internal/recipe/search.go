package recipe

import (
	"sort"
	"strings"
)

// SortNewestFirst orders recipes by creation time, most recent first.
func SortNewestFirst(recipes []Recipe) {
	sort.SliceStable(recipes, func(i, j int) bool {
		return recipes[i].CreatedAt.After(recipes[j].CreatedAt)
	})
}

// Matches reports whether term appears, case-insensitively, in the title,
// the creator, an ingredient name or a tag. An empty term matches everything.
func Matches(r Recipe, term string) bool {
	t := strings.ToLower(strings.TrimSpace(term))
	if t == "" {
		return true
	}
	if strings.Contains(strings.ToLower(r.Title), t) ||
		strings.Contains(strings.ToLower(r.CreatorUsername), t) {
		return true
	}
	for _, ing := range r.Ingredients {
		if strings.Contains(strings.ToLower(ing.Name), t) {
			return true
		}
	}
	for _, tag := range r.Tags {
		if strings.Contains(strings.ToLower(tag), t) {
			return true
		}
	}
	return false
}

// Search returns the recipes matching term, preserving order.
func Search(recipes []Recipe, term string) []Recipe {
	out := make([]Recipe, 0, len(recipes))
	for _, r := range recipes {
		if Matches(r, term) {
			out = append(out, r)
		}
	}
	return out
}
