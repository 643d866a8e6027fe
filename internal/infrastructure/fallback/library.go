// Package fallback provides the static, in-memory dish catalog used when
// the LLM is unreachable or returns unrepairable output. Selection is
// deterministic so the engine's fallback guarantee is testable.
package fallback

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/nutriplan/mealengine/internal/domain/meal"
)

// Portion scale bounds. Catalog servings are adjusted toward the target
// calories, but never shrunk or grown past the point where the dish stops
// resembling its recipe.
const (
	minPortionScale = 0.6
	maxPortionScale = 1.6
)

// Library selects dishes from the static catalog. Stateless beyond its
// logger; safe for concurrent use.
type Library struct {
	entries []entry
	logger  *zap.Logger
}

// NewLibrary creates a fallback library over the built-in catalog.
func NewLibrary(logger *zap.Logger) *Library {
	return &Library{
		entries: catalog,
		logger:  logger.Named("fallback-library"),
	}
}

// Select returns the single best dish for the request: filter by meal
// type, then cuisine, exclude allergens, and pick the dish whose macros
// are nearest (L1) to the target. Empty filter sets relax cuisine, then
// preferences; the last resort is the nearest allergy-safe dish overall.
func (l *Library) Select(req meal.Request) meal.Dish {
	candidates := l.Candidates(req, 1)
	if len(candidates) > 0 {
		return candidates[0]
	}
	// Catalog exhausted by the allergy filter. Fall back to the nearest
	// dish in the whole catalog; allergy exclusion has priority over meal
	// type at this point, so try allergy-safe first.
	safe := l.filter(meal.Request{Target: req.Target, Allergies: req.Allergies}, false, false)
	if len(safe) == 0 {
		l.logger.Warn("allergy filter excluded entire catalog, ignoring allergies",
			zap.Strings("allergies", req.Allergies))
		safe = l.filter(meal.Request{Target: req.Target}, false, false)
	}
	sortByDistance(safe, req.Target)
	return scalePortion(safe[0], req.Target)
}

// Candidates returns up to n allergy-safe dishes ranked by macro distance,
// applying the same relaxation ladder as Select.
func (l *Library) Candidates(req meal.Request, n int) []meal.Dish {
	dishes := l.filter(req, true, true)
	if len(dishes) == 0 {
		dishes = l.filter(req, false, true)
	}
	if len(dishes) == 0 {
		dishes = l.filter(req, false, false)
	}
	if len(dishes) == 0 {
		return nil
	}
	sortByDistance(dishes, req.Target)
	if n > 0 && len(dishes) > n {
		dishes = dishes[:n]
	}
	scaled := make([]meal.Dish, len(dishes))
	for i, d := range dishes {
		scaled[i] = scalePortion(d, req.Target)
	}
	return scaled
}

// scalePortion adjusts a catalog serving toward the target calories so a
// single dish can stand in for a whole meal. The scale factor is clamped
// to keep the serving realistic; macros scale proportionally.
func scalePortion(d meal.Dish, target meal.Target) meal.Dish {
	if target.Calories <= 0 || d.Nutrition.Calories <= 0 {
		return d
	}
	factor := target.Calories / d.Nutrition.Calories
	if factor < minPortionScale {
		factor = minPortionScale
	}
	if factor > maxPortionScale {
		factor = maxPortionScale
	}
	d.Nutrition = d.Nutrition.Scale(factor)
	return d
}

// filter applies meal type, optional cuisine/preference filters, and the
// allergy exclusion. Meal type is skipped when the request leaves it empty.
func (l *Library) filter(req meal.Request, useCuisine, usePreferences bool) []meal.Dish {
	var out []meal.Dish
	for _, e := range l.entries {
		if req.MealType != "" && e.mealType != req.MealType {
			continue
		}
		if useCuisine && req.Cuisine != "" && !strings.EqualFold(e.cuisine, req.Cuisine) {
			continue
		}
		if usePreferences && len(req.Preferences) > 0 && !matchesPreference(e, req.Preferences) {
			continue
		}
		if containsAnyAllergen(e.dish, req.Allergies) {
			continue
		}
		out = append(out, e.dish)
	}
	return out
}

// matchesPreference reports whether any preference appears in the entry's
// tags, dish name, or description.
func matchesPreference(e entry, preferences []string) bool {
	for _, pref := range preferences {
		needle := strings.ToLower(strings.TrimSpace(pref))
		if needle == "" {
			continue
		}
		for _, tag := range e.tags {
			if strings.Contains(strings.ToLower(tag), needle) {
				return true
			}
		}
		if strings.Contains(strings.ToLower(e.dish.Name), needle) ||
			strings.Contains(strings.ToLower(e.dish.Description), needle) {
			return true
		}
	}
	return false
}

func containsAnyAllergen(d meal.Dish, allergies []string) bool {
	for _, a := range allergies {
		if d.ContainsAllergen(a) {
			return true
		}
	}
	return false
}

// sortByDistance orders dishes by L1 macro distance to the target,
// breaking ties by name for determinism.
func sortByDistance(dishes []meal.Dish, target meal.Target) {
	goal := target.Nutrition()
	sort.SliceStable(dishes, func(i, j int) bool {
		di := dishes[i].Nutrition.L1Distance(goal)
		dj := dishes[j].Nutrition.L1Distance(goal)
		if di == dj {
			return dishes[i].Name < dishes[j].Name
		}
		return di < dj
	})
}
