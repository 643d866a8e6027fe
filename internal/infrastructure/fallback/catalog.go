package fallback

import (
	"github.com/nutriplan/mealengine/internal/domain/meal"
)

// CuisineVietnamese and CuisineInternational are the catalog's cuisine keys.
const (
	CuisineVietnamese    = "vietnamese"
	CuisineInternational = "international"
)

// entry pairs a fully-populated dish with its selection metadata.
type entry struct {
	mealType meal.MealType
	cuisine  string
	tags     []string
	dish     meal.Dish
}

func f64(v float64) *float64 { return &v }

// catalog is the static dish library. Every dish carries deterministic
// nutrition so fallback output is reproducible.
var catalog = []entry{
	// Breakfast
	{
		mealType: meal.MealTypeBreakfast,
		cuisine:  CuisineVietnamese,
		tags:     []string{"soup", "chicken", "warm"},
		dish: meal.Dish{
			Name:        "Phở Gà",
			Description: "Phở gà truyền thống với nước dùng thanh ngọt và bánh phở mềm",
			Ingredients: []meal.Ingredient{
				{Name: "Bánh phở", Amount: "150g"},
				{Name: "Thịt gà", Amount: "100g"},
				{Name: "Hành lá", Amount: "10g"},
				{Name: "Giá đỗ", Amount: "50g"},
				{Name: "Nước dùng gà", Amount: "400ml"},
			},
			Preparation: []string{
				"Ninh xương gà lấy nước dùng trong 45 phút",
				"Trụng bánh phở qua nước sôi",
				"Xếp thịt gà xé lên trên, chan nước dùng nóng",
				"Thêm hành lá, giá đỗ và thưởng thức",
			},
			Nutrition:       meal.Nutrition{Calories: 450, Protein: 27, Fat: 18, Carbs: 45, Fiber: f64(2)},
			PreparationTime: "45 phút",
			HealthBenefits:  meal.StringList{"Giàu protein nạc", "Nước dùng ấm tốt cho tiêu hóa"},
		},
	},
	{
		mealType: meal.MealTypeBreakfast,
		cuisine:  CuisineVietnamese,
		tags:     []string{"bread", "egg", "quick"},
		dish: meal.Dish{
			Name:        "Bánh Mì Trứng",
			Description: "Bánh mì giòn kẹp trứng ốp la và rau thơm",
			Ingredients: []meal.Ingredient{
				{Name: "Bánh mì", Amount: "1 ổ"},
				{Name: "Trứng gà", Amount: "2 quả"},
				{Name: "Dưa leo", Amount: "30g"},
				{Name: "Rau mùi", Amount: "5g"},
			},
			Preparation: []string{
				"Ốp la trứng với chút dầu ăn",
				"Rạch bánh mì, cho trứng và rau vào",
				"Thêm chút nước tương và thưởng thức",
			},
			Nutrition:       meal.Nutrition{Calories: 400, Protein: 24, Fat: 16, Carbs: 40, Fiber: f64(2)},
			PreparationTime: "10 phút",
			HealthBenefits:  meal.StringList{"Bữa sáng nhanh gọn đủ năng lượng"},
		},
	},
	{
		mealType: meal.MealTypeBreakfast,
		cuisine:  CuisineVietnamese,
		tags:     []string{"sticky-rice", "vegetarian", "chay"},
		dish: meal.Dish{
			Name:        "Xôi Đậu Xanh",
			Description: "Xôi nếp dẻo với đậu xanh bùi và hành phi",
			Ingredients: []meal.Ingredient{
				{Name: "Gạo nếp", Amount: "120g"},
				{Name: "Đậu xanh", Amount: "50g"},
				{Name: "Hành phi", Amount: "10g"},
				{Name: "Muối vừng", Amount: "10g"},
			},
			Preparation: []string{
				"Ngâm nếp và đậu xanh 4 tiếng",
				"Đồ xôi trong 30 phút đến khi chín dẻo",
				"Rắc hành phi và muối vừng lên trên",
			},
			Nutrition:       meal.Nutrition{Calories: 472, Protein: 25, Fat: 16, Carbs: 57, Fiber: f64(4)},
			PreparationTime: "40 phút",
			HealthBenefits:  meal.StringList{"Thuần chay", "No lâu nhờ tinh bột hấp thu chậm"},
		},
	},
	{
		mealType: meal.MealTypeBreakfast,
		cuisine:  CuisineInternational,
		tags:     []string{"oats", "yogurt", "light", "vegetarian"},
		dish: meal.Dish{
			Name:        "Yến Mạch Sữa Chua",
			Description: "Yến mạch ngâm sữa chua với trái cây tươi theo mùa",
			Ingredients: []meal.Ingredient{
				{Name: "Yến mạch cán dẹt", Amount: "60g"},
				{Name: "Sữa chua không đường", Amount: "150g"},
				{Name: "Chuối", Amount: "1 quả"},
				{Name: "Hạt chia", Amount: "10g"},
			},
			Preparation: []string{
				"Trộn yến mạch với sữa chua, để 10 phút",
				"Thái chuối, xếp lên trên",
				"Rắc hạt chia và thưởng thức",
			},
			Nutrition:       meal.Nutrition{Calories: 382, Protein: 22, Fat: 14, Carbs: 42, Fiber: f64(7)},
			PreparationTime: "15 phút",
			HealthBenefits:  meal.StringList{"Giàu chất xơ", "Tốt cho hệ vi sinh đường ruột"},
		},
	},
	// Lunch
	{
		mealType: meal.MealTypeLunch,
		cuisine:  CuisineVietnamese,
		tags:     []string{"rice", "chicken", "grilled"},
		dish: meal.Dish{
			Name:        "Cơm Gà Nướng",
			Description: "Cơm trắng với đùi gà nướng mật ong và rau luộc",
			Ingredients: []meal.Ingredient{
				{Name: "Cơm trắng", Amount: "200g"},
				{Name: "Đùi gà", Amount: "150g"},
				{Name: "Mật ong", Amount: "1 thìa canh"},
				{Name: "Rau cải luộc", Amount: "100g"},
			},
			Preparation: []string{
				"Ướp gà với mật ong, tỏi, nước mắm trong 30 phút",
				"Nướng gà ở 200 độ C trong 25 phút",
				"Luộc rau cải, dọn kèm cơm trắng",
			},
			Nutrition:       meal.Nutrition{Calories: 640, Protein: 40, Fat: 24, Carbs: 66, Fiber: f64(3)},
			PreparationTime: "60 phút",
			HealthBenefits:  meal.StringList{"Cân đối đạm và tinh bột cho bữa chính"},
		},
	},
	{
		mealType: meal.MealTypeLunch,
		cuisine:  CuisineVietnamese,
		tags:     []string{"noodle", "pork", "grilled"},
		dish: meal.Dish{
			Name:        "Bún Chả",
			Description: "Bún tươi với chả thịt nướng và nước mắm chua ngọt",
			Ingredients: []meal.Ingredient{
				{Name: "Bún tươi", Amount: "180g"},
				{Name: "Thịt ba chỉ", Amount: "120g"},
				{Name: "Rau sống", Amount: "80g"},
				{Name: "Nước mắm pha", Amount: "100ml"},
			},
			Preparation: []string{
				"Ướp thịt với hành, tỏi, nước mắm trong 30 phút",
				"Nướng thịt trên than hoặc nồi chiên không dầu",
				"Pha nước chấm chua ngọt, dọn kèm bún và rau sống",
			},
			Nutrition:       meal.Nutrition{Calories: 600, Protein: 33, Fat: 24, Carbs: 63, Fiber: f64(3)},
			PreparationTime: "50 phút",
			HealthBenefits:  meal.StringList{"Nhiều rau sống bổ sung vitamin"},
		},
	},
	{
		mealType: meal.MealTypeLunch,
		cuisine:  CuisineVietnamese,
		tags:     []string{"fish", "braised", "rice"},
		dish: meal.Dish{
			Name:        "Cá Kho Tộ",
			Description: "Cá lóc kho tộ đậm đà ăn kèm cơm trắng",
			Ingredients: []meal.Ingredient{
				{Name: "Cá lóc", Amount: "150g"},
				{Name: "Cơm trắng", Amount: "180g"},
				{Name: "Nước màu", Amount: "1 thìa cà phê"},
				{Name: "Tiêu", Amount: "1/2 thìa cà phê"},
			},
			Preparation: []string{
				"Ướp cá với nước mắm, nước màu trong 20 phút",
				"Kho cá lửa nhỏ 30 phút đến khi sệt nước",
				"Dọn kèm cơm trắng nóng",
			},
			Nutrition:       meal.Nutrition{Calories: 560, Protein: 36, Fat: 20, Carbs: 59, Fiber: f64(1)},
			PreparationTime: "55 phút",
			HealthBenefits:  meal.StringList{"Cá giàu đạm, ít chất béo bão hòa"},
		},
	},
	{
		mealType: meal.MealTypeLunch,
		cuisine:  CuisineInternational,
		tags:     []string{"salad", "chicken", "light", "low-carb"},
		dish: meal.Dish{
			Name:        "Salad Ức Gà",
			Description: "Salad rau củ với ức gà áp chảo và sốt dầu giấm",
			Ingredients: []meal.Ingredient{
				{Name: "Ức gà", Amount: "150g"},
				{Name: "Xà lách", Amount: "100g"},
				{Name: "Cà chua bi", Amount: "80g"},
				{Name: "Dầu ô liu", Amount: "1 thìa canh"},
			},
			Preparation: []string{
				"Áp chảo ức gà với chút muối tiêu",
				"Trộn rau củ với dầu ô liu và giấm",
				"Thái gà, xếp lên salad",
			},
			Nutrition:       meal.Nutrition{Calories: 430, Protein: 30, Fat: 18, Carbs: 37, Fiber: f64(5)},
			PreparationTime: "20 phút",
			HealthBenefits:  meal.StringList{"Ít tinh bột", "Phù hợp chế độ giảm cân"},
		},
	},
	// Dinner
	{
		mealType: meal.MealTypeDinner,
		cuisine:  CuisineVietnamese,
		tags:     []string{"soup", "fish", "sour"},
		dish: meal.Dish{
			Name:        "Canh Chua Cá",
			Description: "Canh chua cá basa với thơm, cà chua và giá đỗ",
			Ingredients: []meal.Ingredient{
				{Name: "Cá basa", Amount: "150g"},
				{Name: "Thơm", Amount: "50g"},
				{Name: "Cà chua", Amount: "80g"},
				{Name: "Giá đỗ", Amount: "50g"},
				{Name: "Cơm trắng", Amount: "150g"},
			},
			Preparation: []string{
				"Phi thơm tỏi, xào cà chua và thơm",
				"Thêm nước, nấu sôi rồi thả cá",
				"Nêm chua ngọt, thêm giá trước khi tắt bếp",
				"Dọn kèm cơm trắng",
			},
			Nutrition:       meal.Nutrition{Calories: 520, Protein: 31, Fat: 20, Carbs: 54, Fiber: f64(4)},
			PreparationTime: "35 phút",
			HealthBenefits:  meal.StringList{"Nhẹ bụng cho bữa tối", "Giàu vitamin C"},
		},
	},
	{
		mealType: meal.MealTypeDinner,
		cuisine:  CuisineVietnamese,
		tags:     []string{"chicken", "braised", "ginger"},
		dish: meal.Dish{
			Name:        "Gà Kho Gừng",
			Description: "Gà kho gừng ấm bụng với cơm trắng và rau luộc",
			Ingredients: []meal.Ingredient{
				{Name: "Thịt gà", Amount: "150g"},
				{Name: "Gừng", Amount: "20g"},
				{Name: "Cơm trắng", Amount: "150g"},
				{Name: "Rau muống luộc", Amount: "100g"},
			},
			Preparation: []string{
				"Ướp gà với gừng thái sợi và nước mắm",
				"Kho lửa nhỏ 25 phút đến khi thấm",
				"Dọn kèm cơm và rau luộc",
			},
			Nutrition:       meal.Nutrition{Calories: 550, Protein: 34, Fat: 22, Carbs: 54, Fiber: f64(3)},
			PreparationTime: "40 phút",
			HealthBenefits:  meal.StringList{"Gừng hỗ trợ tiêu hóa buổi tối"},
		},
	},
	{
		mealType: meal.MealTypeDinner,
		cuisine:  CuisineVietnamese,
		tags:     []string{"beef", "stir-fry", "vegetables"},
		dish: meal.Dish{
			Name:        "Bò Xào Rau Củ",
			Description: "Thịt bò xào với ớt chuông, cà rốt và bông cải",
			Ingredients: []meal.Ingredient{
				{Name: "Thịt bò", Amount: "130g"},
				{Name: "Ớt chuông", Amount: "60g"},
				{Name: "Bông cải xanh", Amount: "80g"},
				{Name: "Cơm trắng", Amount: "150g"},
			},
			Preparation: []string{
				"Ướp bò với tỏi và dầu hào trong 15 phút",
				"Xào bò lửa lớn, để riêng",
				"Xào rau củ, cho bò vào đảo đều",
			},
			Nutrition:       meal.Nutrition{Calories: 580, Protein: 36, Fat: 24, Carbs: 55, Fiber: f64(4)},
			PreparationTime: "30 phút",
			HealthBenefits:  meal.StringList{"Giàu sắt từ thịt bò", "Nhiều rau củ"},
		},
	},
	{
		mealType: meal.MealTypeDinner,
		cuisine:  CuisineInternational,
		tags:     []string{"soup", "vegetarian", "light", "chay"},
		dish: meal.Dish{
			Name:        "Súp Bí Đỏ",
			Description: "Súp bí đỏ kem dừa mịn màng ăn kèm bánh mì nướng",
			Ingredients: []meal.Ingredient{
				{Name: "Bí đỏ", Amount: "250g"},
				{Name: "Nước cốt dừa", Amount: "80ml"},
				{Name: "Bánh mì nướng", Amount: "2 lát"},
				{Name: "Hành tây", Amount: "40g"},
			},
			Preparation: []string{
				"Xào hành tây, thêm bí đỏ và nước",
				"Ninh mềm rồi xay nhuyễn",
				"Thêm nước cốt dừa, nêm vừa ăn",
			},
			Nutrition:       meal.Nutrition{Calories: 421, Protein: 19, Fat: 17, Carbs: 48, Fiber: f64(6)},
			PreparationTime: "35 phút",
			HealthBenefits:  meal.StringList{"Thuần chay", "Giàu beta-carotene"},
		},
	},
	// Snacks
	{
		mealType: meal.MealTypeSnack,
		cuisine:  CuisineVietnamese,
		tags:     []string{"sweet", "dessert", "vegetarian", "chay"},
		dish: meal.Dish{
			Name:        "Chè Đậu Xanh",
			Description: "Chè đậu xanh nước cốt dừa thanh mát",
			Ingredients: []meal.Ingredient{
				{Name: "Đậu xanh", Amount: "80g"},
				{Name: "Nước cốt dừa", Amount: "50ml"},
				{Name: "Đường", Amount: "20g"},
			},
			Preparation: []string{
				"Ninh đậu xanh đến khi mềm",
				"Thêm đường, khuấy tan",
				"Chan nước cốt dừa khi dùng",
			},
			Nutrition:       meal.Nutrition{Calories: 300, Protein: 10, Fat: 8, Carbs: 47, Fiber: f64(5)},
			PreparationTime: "30 phút",
			HealthBenefits:  meal.StringList{"Thanh nhiệt", "Nguồn đạm thực vật"},
		},
	},
	{
		mealType: meal.MealTypeSnack,
		cuisine:  CuisineInternational,
		tags:     []string{"fruit", "yogurt", "light", "vegetarian"},
		dish: meal.Dish{
			Name:        "Sữa Chua Trái Cây",
			Description: "Sữa chua không đường với trái cây tươi thái hạt lựu",
			Ingredients: []meal.Ingredient{
				{Name: "Sữa chua không đường", Amount: "150g"},
				{Name: "Xoài", Amount: "50g"},
				{Name: "Dâu tây", Amount: "50g"},
			},
			Preparation: []string{
				"Thái nhỏ trái cây",
				"Trộn với sữa chua lạnh",
			},
			Nutrition:       meal.Nutrition{Calories: 201, Protein: 10, Fat: 5, Carbs: 29, Fiber: f64(3)},
			PreparationTime: "5 phút",
			HealthBenefits:  meal.StringList{"Ít calo", "Bổ sung lợi khuẩn"},
		},
	},
	{
		mealType: meal.MealTypeSnack,
		cuisine:  CuisineInternational,
		tags:     []string{"nuts", "protein", "vegetarian"},
		dish: meal.Dish{
			Name:        "Hạt Điều Rang",
			Description: "Hạt điều rang muối nhạt cho bữa phụ gọn nhẹ",
			Ingredients: []meal.Ingredient{
				{Name: "Hạt điều", Amount: "40g"},
			},
			Preparation: []string{
				"Rang hạt điều lửa nhỏ đến khi vàng thơm",
			},
			Nutrition:       meal.Nutrition{Calories: 230, Protein: 7, Fat: 18, Carbs: 10, Fiber: f64(1)},
			PreparationTime: "10 phút",
			HealthBenefits:  meal.StringList{"Chất béo không bão hòa tốt cho tim mạch"},
		},
	},
}
