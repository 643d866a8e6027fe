package meal

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMealTypeSynonyms(t *testing.T) {
	cases := map[string]MealType{
		"breakfast": MealTypeBreakfast,
		"Bữa sáng":  MealTypeBreakfast,
		"bua sang":  MealTypeBreakfast,
		"  LUNCH  ": MealTypeLunch,
		"ăn trưa":   MealTypeLunch,
		"bữa tối":   MealTypeDinner,
		"an toi":    MealTypeDinner,
		"bữa phụ":   MealTypeSnack,
	}
	for raw, want := range cases {
		got, err := ParseMealType(raw)
		require.NoError(t, err, "input %q", raw)
		assert.Equal(t, want, got, "input %q", raw)
	}
}

func TestParseMealTypeUnknown(t *testing.T) {
	_, err := ParseMealType("brunch")
	assert.Error(t, err)

	_, err = ParseMealType("")
	assert.Error(t, err)
}

func TestParseDay(t *testing.T) {
	got, err := ParseDay(" Monday ")
	require.NoError(t, err)
	assert.Equal(t, Monday, got)

	got, err = ParseDay("wed")
	require.NoError(t, err)
	assert.Equal(t, Wednesday, got)

	_, err = ParseDay("someday")
	assert.Error(t, err)
}

func TestNutritionAddAndScale(t *testing.T) {
	a := Nutrition{Calories: 100, Protein: 10, Fat: 5, Carbs: 12}
	b := Nutrition{Calories: 200, Protein: 5, Fat: 10, Carbs: 30}

	sum := a.Add(b)
	assert.Equal(t, 300.0, sum.Calories)
	assert.Equal(t, 15.0, sum.Protein)

	fiber := 4.0
	a.Fiber = &fiber
	scaled := a.Scale(2)
	assert.Equal(t, 200.0, scaled.Calories)
	require.NotNil(t, scaled.Fiber)
	assert.Equal(t, 8.0, *scaled.Fiber)
	// The original is untouched.
	assert.Equal(t, 4.0, *a.Fiber)
}

func TestNutritionL1Distance(t *testing.T) {
	a := Nutrition{Calories: 500, Protein: 30, Fat: 20, Carbs: 50}
	b := Nutrition{Calories: 450, Protein: 35, Fat: 18, Carbs: 55}

	assert.Equal(t, 62.0, a.L1Distance(b))
	assert.Equal(t, a.L1Distance(b), b.L1Distance(a))
	assert.Equal(t, 0.0, a.L1Distance(a))
}

func TestStringListUnmarshal(t *testing.T) {
	var fromString StringList
	require.NoError(t, json.Unmarshal([]byte(`"một lợi ích"`), &fromString))
	assert.Equal(t, StringList{"một lợi ích"}, fromString)

	var fromArray StringList
	require.NoError(t, json.Unmarshal([]byte(`["a", "b"]`), &fromArray))
	assert.Equal(t, StringList{"a", "b"}, fromArray)
}

func TestHealthVerdictUsableForLLM(t *testing.T) {
	assert.True(t, HealthVerdict{Diagnosis: DiagnosisOK}.UsableForLLM())
	assert.True(t, HealthVerdict{Diagnosis: DiagnosisUnknown}.UsableForLLM())
	assert.False(t, HealthVerdict{Diagnosis: DiagnosisRegionBlocked}.UsableForLLM())
	assert.False(t, HealthVerdict{Diagnosis: DiagnosisUnauthorized}.UsableForLLM())
	assert.False(t, HealthVerdict{Diagnosis: DiagnosisNetworkError}.UsableForLLM())
}

func TestDishContainsAllergen(t *testing.T) {
	dish := Dish{
		Name: "Gỏi Tôm",
		Ingredients: []Ingredient{
			{Name: "Tôm sú", Amount: "100g"},
			{Name: "Rau thơm", Amount: "50g"},
		},
	}

	assert.True(t, dish.ContainsAllergen("tôm"))
	assert.True(t, dish.ContainsAllergen("TÔM"))
	assert.False(t, dish.ContainsAllergen("đậu phộng"))
	assert.False(t, dish.ContainsAllergen(""))
}

func TestRequestSortedCopiesDoNotMutate(t *testing.T) {
	req := Request{
		Preferences: []string{"b", "a"},
		Allergies:   []string{"z", "y"},
	}

	assert.Equal(t, []string{"a", "b"}, req.SortedPreferences())
	assert.Equal(t, []string{"b", "a"}, req.Preferences)
	assert.Equal(t, []string{"y", "z"}, req.SortedAllergies())
	assert.Equal(t, []string{"z", "y"}, req.Allergies)
}
