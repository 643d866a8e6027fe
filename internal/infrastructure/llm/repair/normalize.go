package repair

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/nutriplan/mealengine/internal/domain/meal"
)

// canonicalKeys maps alternate spellings observed in model output to the
// canonical Dish field names.
var canonicalKeys = map[string]string{
	"name":             "name",
	"dish_name":        "name",
	"title":            "name",
	"description":      "description",
	"ingredients":      "ingredients",
	"preparation":      "preparation",
	"instructions":     "preparation",
	"steps":            "preparation",
	"nutrition":        "nutrition",
	"preparation_time": "preparation_time",
	"prep_time":        "preparation_time",
	"cooking_time":     "preparation_time",
	"health_benefits":  "health_benefits",
	"benefits":         "health_benefits",
	"video_url":        "video_url",
}

// normalizeDish converts a decoded JSON object into a Dish, applying key
// normalization and numeric coercion. Dishes whose name is empty after
// repair are rejected.
func normalizeDish(obj map[string]json.RawMessage) (meal.Dish, bool) {
	fields := make(map[string]json.RawMessage, len(obj))
	for k, v := range obj {
		canon, ok := canonicalKeys[strings.ToLower(strings.TrimSpace(k))]
		if !ok {
			continue
		}
		if _, exists := fields[canon]; !exists {
			fields[canon] = v
		}
	}

	var dish meal.Dish

	if raw, ok := fields["name"]; ok {
		dish.Name = decodeString(raw)
	}
	if strings.TrimSpace(dish.Name) == "" {
		return meal.Dish{}, false
	}

	if raw, ok := fields["description"]; ok {
		dish.Description = decodeString(raw)
	}
	if raw, ok := fields["ingredients"]; ok {
		dish.Ingredients = decodeIngredients(raw)
	}
	if raw, ok := fields["preparation"]; ok {
		dish.Preparation = decodeStrings(raw)
	}
	if raw, ok := fields["nutrition"]; ok {
		if n, ok := decodeNutrition(raw); ok {
			dish.Nutrition = n
		}
	}
	if raw, ok := fields["preparation_time"]; ok {
		dish.PreparationTime = decodeString(raw)
	}
	if raw, ok := fields["health_benefits"]; ok {
		var benefits meal.StringList
		if err := json.Unmarshal(raw, &benefits); err == nil {
			dish.HealthBenefits = benefits
		}
	}
	if raw, ok := fields["video_url"]; ok {
		dish.VideoURL = decodeString(raw)
	}

	return dish, true
}

// decodeString unmarshals a JSON string, tolerating bare numbers.
func decodeString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	return ""
}

// decodeStrings unmarshals an array of strings, dropping non-string items.
func decodeStrings(raw json.RawMessage) []string {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		if s := decodeString(raw); s != "" {
			return []string{s}
		}
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := decodeString(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// decodeIngredients accepts ingredient objects with name/amount fields,
// coercing numeric amounts to text, and tolerates plain-string items.
func decodeIngredients(raw json.RawMessage) []meal.Ingredient {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]meal.Ingredient, 0, len(items))
	for _, item := range items {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(item, &obj); err == nil {
			ing := meal.Ingredient{}
			for k, v := range obj {
				switch strings.ToLower(strings.TrimSpace(k)) {
				case "name", "ingredient":
					ing.Name = decodeString(v)
				case "amount", "quantity":
					ing.Amount = decodeString(v)
				}
			}
			if ing.Name != "" {
				out = append(out, ing)
			}
			continue
		}
		if s := decodeString(item); s != "" {
			out = append(out, meal.Ingredient{Name: s})
		}
	}
	return out
}

// decodeNutrition parses the nutrition object, coercing numeric strings.
// The four macros must all resolve for the object to count.
func decodeNutrition(raw json.RawMessage) (meal.Nutrition, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return meal.Nutrition{}, false
	}

	var n meal.Nutrition
	found := make(map[string]bool, 4)
	for k, v := range obj {
		value, ok := decodeNumber(v)
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(k)) {
		case "calories", "calo", "kcal":
			n.Calories = value
			found["calories"] = true
		case "protein":
			n.Protein = value
			found["protein"] = true
		case "fat":
			n.Fat = value
			found["fat"] = true
		case "carbs", "carbohydrates":
			n.Carbs = value
			found["carbs"] = true
		case "fiber":
			f := value
			n.Fiber = &f
		case "sugar":
			s := value
			n.Sugar = &s
		case "sodium":
			s := value
			n.Sodium = &s
		}
	}

	if len(found) < 4 {
		return meal.Nutrition{}, false
	}
	return n, true
}

// decodeNumber accepts a JSON number or a numeric string like "377" or
// "377 kcal".
func decodeNumber(raw json.RawMessage) (float64, bool) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	s = strings.TrimSpace(s)
	if m := numericPrefixPattern.FindString(s); m != "" {
		if f, err := strconv.ParseFloat(m, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
