// Package meal contains the core domain model for meal suggestion:
// nutrition values, dishes, meals, and plan aggregates.
package meal

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// Nutrition holds the four tracked macros plus optional extras.
// Units are kcal for calories and grams for everything else.
type Nutrition struct {
	Calories float64  `json:"calories"`
	Protein  float64  `json:"protein"`
	Fat      float64  `json:"fat"`
	Carbs    float64  `json:"carbs"`
	Fiber    *float64 `json:"fiber,omitempty"`
	Sugar    *float64 `json:"sugar,omitempty"`
	Sodium   *float64 `json:"sodium,omitempty"`
}

// Add returns the component-wise sum of two nutrition values.
// Optional macros survive only when present on both operands.
func (n Nutrition) Add(other Nutrition) Nutrition {
	sum := Nutrition{
		Calories: n.Calories + other.Calories,
		Protein:  n.Protein + other.Protein,
		Fat:      n.Fat + other.Fat,
		Carbs:    n.Carbs + other.Carbs,
	}
	if n.Fiber != nil && other.Fiber != nil {
		v := *n.Fiber + *other.Fiber
		sum.Fiber = &v
	}
	if n.Sugar != nil && other.Sugar != nil {
		v := *n.Sugar + *other.Sugar
		sum.Sugar = &v
	}
	if n.Sodium != nil && other.Sodium != nil {
		v := *n.Sodium + *other.Sodium
		sum.Sodium = &v
	}
	return sum
}

// Scale returns the nutrition multiplied by the given factor. Optional
// macros scale along when present.
func (n Nutrition) Scale(factor float64) Nutrition {
	out := Nutrition{
		Calories: n.Calories * factor,
		Protein:  n.Protein * factor,
		Fat:      n.Fat * factor,
		Carbs:    n.Carbs * factor,
	}
	if n.Fiber != nil {
		v := *n.Fiber * factor
		out.Fiber = &v
	}
	if n.Sugar != nil {
		v := *n.Sugar * factor
		out.Sugar = &v
	}
	if n.Sodium != nil {
		v := *n.Sodium * factor
		out.Sodium = &v
	}
	return out
}

// L1Distance returns the Manhattan distance over the four macros.
func (n Nutrition) L1Distance(other Nutrition) float64 {
	return math.Abs(n.Calories-other.Calories) +
		math.Abs(n.Protein-other.Protein) +
		math.Abs(n.Fat-other.Fat) +
		math.Abs(n.Carbs-other.Carbs)
}

// Equals reports component-wise equality within the given tolerance.
func (n Nutrition) Equals(other Nutrition, tolerance float64) bool {
	return math.Abs(n.Calories-other.Calories) <= tolerance &&
		math.Abs(n.Protein-other.Protein) <= tolerance &&
		math.Abs(n.Fat-other.Fat) <= tolerance &&
		math.Abs(n.Carbs-other.Carbs) <= tolerance
}

// Valid reports whether all four macros are present and non-negative.
func (n Nutrition) Valid() bool {
	return n.Calories >= 0 && n.Protein >= 0 && n.Fat >= 0 && n.Carbs >= 0
}

// Target is the nutrition goal for a meal or a day.
type Target struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
}

// Nutrition converts the target into a comparable nutrition value.
func (t Target) Nutrition() Nutrition {
	return Nutrition{Calories: t.Calories, Protein: t.Protein, Fat: t.Fat, Carbs: t.Carbs}
}

// Scale returns the target multiplied by the given factor.
func (t Target) Scale(factor float64) Target {
	return Target{
		Calories: t.Calories * factor,
		Protein:  t.Protein * factor,
		Fat:      t.Fat * factor,
		Carbs:    t.Carbs * factor,
	}
}

// Valid reports whether all four components are non-negative.
func (t Target) Valid() bool {
	return t.Calories >= 0 && t.Protein >= 0 && t.Fat >= 0 && t.Carbs >= 0
}

// MealType identifies the meal slot
type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
	MealTypeSnack     MealType = "snack"
)

// mealTypeSynonyms maps lowercased locale spellings to canonical meal types.
// The mobile app historically sends Vietnamese labels, with and without
// diacritics.
var mealTypeSynonyms = map[string]MealType{
	"breakfast": MealTypeBreakfast,
	"bữa sáng":  MealTypeBreakfast,
	"bua sang":  MealTypeBreakfast,
	"ăn sáng":   MealTypeBreakfast,
	"an sang":   MealTypeBreakfast,
	"lunch":     MealTypeLunch,
	"bữa trưa":  MealTypeLunch,
	"bua trua":  MealTypeLunch,
	"ăn trưa":   MealTypeLunch,
	"an trua":   MealTypeLunch,
	"dinner":    MealTypeDinner,
	"bữa tối":   MealTypeDinner,
	"bua toi":   MealTypeDinner,
	"ăn tối":    MealTypeDinner,
	"an toi":    MealTypeDinner,
	"snack":     MealTypeSnack,
	"bữa phụ":   MealTypeSnack,
	"bua phu":   MealTypeSnack,
	"ăn vặt":    MealTypeSnack,
	"an vat":    MealTypeSnack,
}

// vietnameseMealNames holds the prompt-facing Vietnamese labels.
var vietnameseMealNames = map[MealType]string{
	MealTypeBreakfast: "bữa sáng",
	MealTypeLunch:     "bữa trưa",
	MealTypeDinner:    "bữa tối",
	MealTypeSnack:     "bữa phụ",
}

// ParseMealType normalizes a locale-specific meal label to the canonical set.
func ParseMealType(raw string) (MealType, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if mt, ok := mealTypeSynonyms[key]; ok {
		return mt, nil
	}
	return "", fmt.Errorf("unknown meal type %q", raw)
}

// Vietnamese returns the Vietnamese label used in prompts.
func (m MealType) Vietnamese() string {
	if name, ok := vietnameseMealNames[m]; ok {
		return name
	}
	return string(m)
}

// Valid reports whether the meal type belongs to the canonical set.
func (m MealType) Valid() bool {
	switch m {
	case MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnack:
		return true
	}
	return false
}

// Day identifies a day of the week
type Day string

const (
	Monday    Day = "monday"
	Tuesday   Day = "tuesday"
	Wednesday Day = "wednesday"
	Thursday  Day = "thursday"
	Friday    Day = "friday"
	Saturday  Day = "saturday"
	Sunday    Day = "sunday"
)

// WeekDays lists the days in plan order.
var WeekDays = []Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

var dayAliases = map[string]Day{
	"monday": Monday, "mon": Monday,
	"tuesday": Tuesday, "tue": Tuesday,
	"wednesday": Wednesday, "wed": Wednesday,
	"thursday": Thursday, "thu": Thursday,
	"friday": Friday, "fri": Friday,
	"saturday": Saturday, "sat": Saturday,
	"sunday": Sunday, "sun": Sunday,
}

// ParseDay normalizes a day-of-week label.
func ParseDay(raw string) (Day, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if d, ok := dayAliases[key]; ok {
		return d, nil
	}
	return "", fmt.Errorf("unknown day of week %q", raw)
}

// Source records where a meal's dishes came from
type Source string

const (
	SourceLLM      Source = "llm"
	SourceFallback Source = "fallback"
	SourceMixed    Source = "mixed"
)

// Diagnosis classifies the provider's reachability
type Diagnosis string

const (
	DiagnosisOK            Diagnosis = "ok"
	DiagnosisRegionBlocked Diagnosis = "region_blocked"
	DiagnosisUnauthorized  Diagnosis = "unauthorized"
	DiagnosisRateLimited   Diagnosis = "rate_limited"
	DiagnosisNetworkError  Diagnosis = "network_error"
	DiagnosisUnknown       Diagnosis = "unknown"
)

// HealthVerdict is the cached judgment of LLM reachability.
type HealthVerdict struct {
	Reachable   bool      `json:"reachable"`
	AuthOK      bool      `json:"auth_ok"`
	LastChecked time.Time `json:"last_checked"`
	Diagnosis   Diagnosis `json:"diagnosis"`
}

// UsableForLLM reports whether the engine should attempt the LLM path.
// An unknown verdict is optimistic: the pipeline will probe on failure.
func (v HealthVerdict) UsableForLLM() bool {
	return v.Diagnosis == DiagnosisOK || v.Diagnosis == DiagnosisUnknown
}

// StringList unmarshals either a JSON string or an array of strings.
// The LLM emits health_benefits in both shapes.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (s *StringList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*s = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	if single == "" {
		*s = nil
		return nil
	}
	*s = []string{single}
	return nil
}
