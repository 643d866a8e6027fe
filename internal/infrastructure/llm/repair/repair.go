// Package repair recovers structured dishes from the frequently-malformed
// JSON the LLM returns. The cascade is a pipeline of pure stages; each
// stage's output feeds forward only while the text is still unparsable.
// New defect shapes get new stages, never loosened earlier ones.
package repair

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/nutriplan/mealengine/internal/domain/meal"
)

// Stage labels which cascade stage produced the dishes, for telemetry.
type Stage string

const (
	StageStrict     Stage = "strict"
	StageLeadingKey Stage = "leading_key"
	StagePositional Stage = "positional"
	StageSalvage    Stage = "salvage"
	StageNone       Stage = "none"
)

// All patterns are resolved at module load. The source this design
// replaces repeatedly shadowed its regex module inside function bodies;
// package-level compilation rules that defect out structurally.
var (
	fencePattern         = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")
	leadingKeyPattern    = regexp.MustCompile(`\{\s*"((?:[^"\\]|\\.)+)"\s*,`)
	prepTimePattern      = regexp.MustCompile(`(?i)\d+\s*(min|phút|minutes)`)
	namedTokenPattern    = regexp.MustCompile(`"name"\s*:\s*"((?:[^"\\]|\\.)+)"`)
	macroTokenPattern    = regexp.MustCompile(`"(calories|protein|fat|carbs)"\s*:\s*"?(\d+(?:\.\d+)?)"?`)
	numericPrefixPattern = regexp.MustCompile(`^\d+(?:\.\d+)?`)
)

// Degenerate defaults for salvaged dishes.
var (
	defaultIngredients = []meal.Ingredient{{Name: "Nguyên liệu chính", Amount: "100g"}}
	defaultPreparation = []string{
		"Sơ chế nguyên liệu",
		"Chế biến theo hướng dẫn và nêm nếm vừa ăn",
	}
)

// Result carries the recovered dishes and the stage that produced them.
type Result struct {
	Dishes []meal.Dish
	Stage  Stage
}

// Parser runs the repair cascade. It holds no mutable state.
type Parser struct {
	logger *zap.Logger
}

// NewParser creates a new repair parser
func NewParser(logger *zap.Logger) *Parser {
	return &Parser{logger: logger.Named("json-repair")}
}

// Parse returns every dish recoverable from the raw model text. It never
// fails; unrecoverable input yields an empty slice.
func (p *Parser) Parse(raw string) []meal.Dish {
	return p.ParseDetailed(raw).Dishes
}

// ParseDetailed runs the cascade and reports which stage succeeded.
func (p *Parser) ParseDetailed(raw string) Result {
	text := deFence(raw)

	if dishes, ok := strictParse(text); ok {
		return Result{Dishes: dishes, Stage: StageStrict}
	}

	if dishes, ok := strictParse(repairLeadingKeys(text)); ok {
		p.logger.Debug("recovered dishes via leading-key repair", zap.Int("count", len(dishes)))
		return Result{Dishes: dishes, Stage: StageLeadingKey}
	}

	if dishes, ok := positionalParse(text); ok {
		p.logger.Debug("recovered dishes via positional-key recovery", zap.Int("count", len(dishes)))
		return Result{Dishes: dishes, Stage: StagePositional}
	}

	if dishes := salvage(text); len(dishes) > 0 {
		p.logger.Warn("salvaged degenerate dishes from unparsable output",
			zap.Int("count", len(dishes)),
			zap.Int("raw_length", len(raw)),
		)
		return Result{Dishes: dishes, Stage: StageSalvage}
	}

	p.logger.Warn("no dish recoverable from model output", zap.Int("raw_length", len(raw)))
	return Result{Dishes: []meal.Dish{}, Stage: StageNone}
}

// deFence trims whitespace, removes a wrapping markdown code fence, and
// narrows surrounding prose down to the outermost JSON array when present.
func deFence(raw string) string {
	text := strings.TrimSpace(raw)
	if m := fencePattern.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}
	// A single top-level object is treated as a one-dish array. This must
	// happen before prose narrowing: the object's own ingredient array
	// would otherwise be mistaken for the dish array.
	if strings.HasPrefix(text, "{") && strings.HasSuffix(text, "}") {
		return "[" + text + "]"
	}
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start != -1 && end > start {
		// Keep the narrowing only when it still looks like a dish array;
		// a bare "[...]" inside prose without braces is not one.
		candidate := text[start : end+1]
		if strings.Contains(candidate, "{") {
			return candidate
		}
	}
	return text
}

// strictParse attempts a plain JSON decode of a dish array, then key
// normalization. At least one valid dish must survive.
func strictParse(text string) ([]meal.Dish, bool) {
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(text), &items); err != nil {
		return nil, false
	}

	dishes := make([]meal.Dish, 0, len(items))
	for _, item := range items {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(item, &obj); err != nil {
			continue
		}
		if dish, ok := normalizeDish(obj); ok {
			dishes = append(dishes, dish)
		}
	}

	if len(dishes) == 0 {
		return nil, false
	}
	return dishes, true
}

// repairLeadingKeys rewrites the recurring defect where a dish object's
// first element is a bare string instead of a name pair:
// {"Bánh Mì Chay", ...} becomes {"name": "Bánh Mì Chay", ...}.
func repairLeadingKeys(text string) string {
	return leadingKeyPattern.ReplaceAllString(text, `{"name": "$1",`)
}

// positionalParse handles dishes whose values appear in the known order
// without keys at all. Each top-level object is extracted by brace
// matching; keyed objects are normalized directly, keyless ones have keys
// assigned by type and position.
func positionalParse(text string) ([]meal.Dish, bool) {
	objects := splitTopLevelObjects(text)
	if len(objects) == 0 {
		return nil, false
	}

	dishes := make([]meal.Dish, 0, len(objects))
	for _, objText := range objects {
		if dish, ok := parseOneObject(objText); ok {
			dishes = append(dishes, dish)
		}
	}

	if len(dishes) == 0 {
		return nil, false
	}
	return dishes, true
}

// parseOneObject tries keyed decoding (with leading-key repair) first,
// then positional assignment.
func parseOneObject(objText string) (meal.Dish, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(repairLeadingKeys(objText)), &obj); err == nil {
		if dish, ok := normalizeDish(obj); ok {
			return dish, true
		}
	}

	// Rewrite the object's outer braces into array brackets so the bare
	// values decode as an ordered list.
	inner := strings.TrimSpace(objText)
	if !strings.HasPrefix(inner, "{") || !strings.HasSuffix(inner, "}") {
		return meal.Dish{}, false
	}
	arrayText := "[" + inner[1:len(inner)-1] + "]"

	var values []json.RawMessage
	if err := json.Unmarshal([]byte(arrayText), &values); err != nil {
		return meal.Dish{}, false
	}
	return dishFromPositional(values)
}

// dishFromPositional assigns dish fields by value type and position:
// first bare string is the name, second the description, the ingredient-
// shaped array becomes ingredients, the string array preparation, the
// numeric object nutrition, a short duration-looking string the
// preparation time, and a trailing long string the health benefits.
func dishFromPositional(values []json.RawMessage) (meal.Dish, bool) {
	var dish meal.Dish
	nutritionFound := false

	for _, raw := range values {
		trimmed := strings.TrimSpace(string(raw))
		if trimmed == "" {
			continue
		}
		switch trimmed[0] {
		case '"':
			s := decodeString(raw)
			switch {
			case dish.PreparationTime == "" && len(s) <= 30 && prepTimePattern.MatchString(s):
				dish.PreparationTime = s
			case dish.Name == "":
				dish.Name = s
			case dish.Description == "":
				dish.Description = s
			default:
				dish.HealthBenefits = append(dish.HealthBenefits, s)
			}
		case '[':
			if ings := decodeIngredients(raw); len(ings) > 0 && looksLikeIngredientArray(raw) {
				if dish.Ingredients == nil {
					dish.Ingredients = ings
				}
				continue
			}
			if steps := decodeStrings(raw); len(steps) > 0 && dish.Preparation == nil {
				dish.Preparation = steps
			}
		case '{':
			if n, ok := decodeNutrition(raw); ok && !nutritionFound {
				dish.Nutrition = n
				nutritionFound = true
			}
		}
	}

	if strings.TrimSpace(dish.Name) == "" || !nutritionFound {
		return meal.Dish{}, false
	}
	return dish, true
}

// looksLikeIngredientArray reports whether the array's first element is an
// object, distinguishing ingredient lists from preparation-step lists.
func looksLikeIngredientArray(raw json.RawMessage) bool {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil || len(items) == 0 {
		return false
	}
	first := strings.TrimSpace(string(items[0]))
	return strings.HasPrefix(first, "{")
}

// splitTopLevelObjects extracts each top-level {...} run from the text
// with a string-aware brace scan.
func splitTopLevelObjects(text string) []string {
	var objects []string
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i := 0; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 && start >= 0 {
					objects = append(objects, text[start:i+1])
					start = -1
				}
			}
		}
	}
	return objects
}

// salvage scans for name tokens and synthesizes degenerate dishes with
// default ingredients and regex-extracted macros. It is the last resort
// before giving up on the response entirely.
func salvage(text string) []meal.Dish {
	nameMatches := namedTokenPattern.FindAllStringSubmatchIndex(text, -1)
	if len(nameMatches) == 0 {
		return nil
	}

	dishes := make([]meal.Dish, 0, len(nameMatches))
	for i, m := range nameMatches {
		name := text[m[2]:m[3]]
		if strings.TrimSpace(name) == "" {
			continue
		}

		segmentEnd := len(text)
		if i+1 < len(nameMatches) {
			segmentEnd = nameMatches[i+1][0]
		}
		segment := text[m[0]:segmentEnd]

		var n meal.Nutrition
		for _, macro := range macroTokenPattern.FindAllStringSubmatch(segment, -1) {
			value, err := strconv.ParseFloat(macro[2], 64)
			if err != nil {
				continue
			}
			switch macro[1] {
			case "calories":
				n.Calories = value
			case "protein":
				n.Protein = value
			case "fat":
				n.Fat = value
			case "carbs":
				n.Carbs = value
			}
		}

		prepTime := "30 phút"
		if t := prepTimePattern.FindString(segment); t != "" {
			prepTime = t
		}

		dishes = append(dishes, meal.Dish{
			Name:            name,
			Description:     "Món ăn được khôi phục từ phản hồi không hợp lệ",
			Ingredients:     append([]meal.Ingredient(nil), defaultIngredients...),
			Preparation:     append([]string(nil), defaultPreparation...),
			Nutrition:       n,
			PreparationTime: prepTime,
		})
	}
	return dishes
}
