package meal

import (
	"sort"
	"strings"
)

// Ingredient is a single dish component. Amount is free-text quantity,
// e.g. "100g" or "2 tbsp", because the upstream model does not emit
// machine-parsable units reliably.
type Ingredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// Dish is a single named food item with ingredients, steps, and nutrition.
type Dish struct {
	Name            string       `json:"name"`
	Description     string       `json:"description"`
	Ingredients     []Ingredient `json:"ingredients"`
	Preparation     []string     `json:"preparation"`
	Nutrition       Nutrition    `json:"nutrition"`
	PreparationTime string       `json:"preparation_time"`
	HealthBenefits  StringList   `json:"health_benefits,omitempty"`
	VideoURL        string       `json:"video_url,omitempty"`
}

// Valid reports whether the dish satisfies the engine's output invariants.
func (d Dish) Valid() bool {
	return d.Name != "" && d.Nutrition.Valid()
}

// ContainsAllergen reports whether any ingredient name contains the given
// allergen string, case-insensitively.
func (d Dish) ContainsAllergen(allergen string) bool {
	needle := strings.ToLower(strings.TrimSpace(allergen))
	if needle == "" {
		return false
	}
	for _, ing := range d.Ingredients {
		if strings.Contains(strings.ToLower(ing.Name), needle) {
			return true
		}
	}
	return false
}

// Meal is a named slot holding one or more dishes. Nutrition is always the
// aggregate over all dishes; the aggregator enforces that equality.
type Meal struct {
	Type      MealType  `json:"meal_type"`
	Dishes    []Dish    `json:"dishes"`
	Nutrition Nutrition `json:"nutrition"`
	Source    Source    `json:"source"`
}

// DishNames returns the names of all dishes in the meal.
func (m Meal) DishNames() []string {
	names := make([]string, 0, len(m.Dishes))
	for _, d := range m.Dishes {
		names = append(names, d.Name)
	}
	return names
}

// DayPlan is the three-meal aggregation for one day.
type DayPlan struct {
	Day       Day       `json:"day_of_week"`
	Breakfast Meal      `json:"breakfast"`
	Lunch     Meal      `json:"lunch"`
	Dinner    Meal      `json:"dinner"`
	Nutrition Nutrition `json:"nutrition"`
}

// Meals returns the day's meals in slot order.
func (p DayPlan) Meals() []Meal {
	return []Meal{p.Breakfast, p.Lunch, p.Dinner}
}

// WeeklyPlan is the seven-day aggregation. Days are emitted as an ordered
// list starting on Monday; this is the canonical persisted shape.
type WeeklyPlan struct {
	Days           []DayPlan `json:"days"`
	TotalNutrition Nutrition `json:"total_nutrition"`
}

/// Request describes one meal suggestion call. It is ephemeral: the engine
// builds a fresh request per call and never mutates it.
type Request struct {
	MealType    MealType
	Day         Day
	Target      Target
	Preferences []string
	Allergies   []string
	Cuisine     string
	UseLLM      bool
}

// SortedPreferences returns a copied, sorted preference list so prompt
// construction stays deterministic for identical inputs.
func (r Request) SortedPreferences() []string {
	return sortedCopy(r.Preferences)
}

// SortedAllergies returns a copied, sorted allergy list.
func (r Request) SortedAllergies() []string {
	return sortedCopy(r.Allergies)
}

func sortedCopy(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	sort.Strings(out)
	return out
}
