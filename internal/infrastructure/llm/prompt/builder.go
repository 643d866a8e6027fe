// Package prompt builds deterministic chat prompts for meal suggestion.
package prompt

import (
	"fmt"
	"strings"

	"github.com/nutriplan/mealengine/internal/domain/meal"
)

// macroTolerance widens each macro target into an acceptable range.
const macroTolerance = 0.10

// dishSkeleton is the fixed example the model is asked to imitate. Keys
// match the Dish wire shape exactly; the repair stage depends on them.
const dishSkeleton = `[
  {
    "name": "Tên món ăn",
    "description": "Mô tả ngắn gọn về món ăn",
    "ingredients": [
      {"name": "Nguyên liệu 1", "amount": "100g"},
      {"name": "Nguyên liệu 2", "amount": "2 thìa canh"}
    ],
    "preparation": [
      "Bước 1: ...",
      "Bước 2: ..."
    ],
    "nutrition": {"calories": 350, "protein": 25, "fat": 12, "carbs": 40},
    "preparation_time": "20 phút",
    "health_benefits": "Lợi ích sức khỏe của món ăn"
  }
]`

// Builder produces prompts for the meal suggestion pipeline. It is
// stateless; identical requests yield byte-identical prompts.
type Builder struct{}

// NewBuilder creates a new prompt builder
func NewBuilder() *Builder {
	return &Builder{}
}

// Build renders the full prompt for one meal request.
func (b *Builder) Build(req meal.Request) string {
	var sb strings.Builder

	sb.WriteString("Bạn là chuyên gia dinh dưỡng. Hãy gợi ý món ăn Việt Nam cho ")
	sb.WriteString(req.MealType.Vietnamese())
	sb.WriteString(".\n\n")

	sb.WriteString("Yêu cầu dinh dưỡng cho bữa ăn:\n")
	sb.WriteString(macroRange("- Calories", req.Target.Calories, "kcal"))
	sb.WriteString(macroRange("- Protein", req.Target.Protein, "g"))
	sb.WriteString(macroRange("- Fat", req.Target.Fat, "g"))
	sb.WriteString(macroRange("- Carbs", req.Target.Carbs, "g"))

	if allergies := req.SortedAllergies(); len(allergies) > 0 {
		sb.WriteString("\nTUYỆT ĐỐI KHÔNG dùng các nguyên liệu sau (dị ứng): ")
		sb.WriteString(strings.Join(allergies, ", "))
		sb.WriteString("\n")
	}

	if prefs := req.SortedPreferences(); len(prefs) > 0 {
		sb.WriteString("\nƯu tiên nếu phù hợp: ")
		sb.WriteString(strings.Join(prefs, ", "))
		sb.WriteString("\n")
	}

	if req.Cuisine != "" {
		sb.WriteString("\nPhong cách ẩm thực: ")
		sb.WriteString(req.Cuisine)
		sb.WriteString("\n")
	}

	sb.WriteString("\nCHỈ trả về một mảng JSON hợp lệ, không có văn bản nào khác, không markdown.\n")
	sb.WriteString("Mỗi phần tử là một món ăn với CHÍNH XÁC các khóa như ví dụ sau:\n\n")
	sb.WriteString(dishSkeleton)
	sb.WriteString("\n")

	return sb.String()
}

// macroRange renders one macro line as a ±10% numeric range.
func macroRange(label string, value float64, unit string) string {
	low := value * (1 - macroTolerance)
	high := value * (1 + macroTolerance)
	return fmt.Sprintf("%s: %.0f-%.0f %s\n", label, low, high, unit)
}
