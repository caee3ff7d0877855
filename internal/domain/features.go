package domain

// Размерности признаков. Порядок блоков фиксирован и является контрактом с моделью brand encoder:
// [BrandDim эмбеддинг][1 пол + 8 возрастных корзин][13 категорий товаров].
const (
	BrandDim        = 1024
	AgeBucketCount  = 8
	DemographicDim  = 1 + AgeBucketCount
	CategoryDim     = 13
	BrandFeatureDim = BrandDim + DemographicDim + CategoryDim
	CelebrityDim    = 1024
)

// AgeBucket описывает полуоткрытый возрастной диапазон [Lo, Hi).
type AgeBucket struct {
	Label string
	Lo    int
	Hi    int
}

// AgeBuckets — восемь непересекающихся десятилетних корзин в порядке признаков.
var AgeBuckets = [AgeBucketCount]AgeBucket{
	{Label: "10-20", Lo: 10, Hi: 20},
	{Label: "20-30", Lo: 20, Hi: 30},
	{Label: "30-40", Lo: 30, Hi: 40},
	{Label: "40-50", Lo: 40, Hi: 50},
	{Label: "50-60", Lo: 50, Hi: 60},
	{Label: "60-70", Lo: 60, Hi: 70},
	{Label: "70-80", Lo: 70, Hi: 80},
	{Label: "80-90", Lo: 80, Hi: 90},
}

// ProductCategories — словарь категорий товаров в порядке признаков.
// Значения совпадают с названиями колонок исходного датасета.
var ProductCategories = [CategoryDim]string{
	"公益慈善",
	"名牌珠寶精品",
	"居家生活",
	"手機電腦",
	"汽車機車自行車",
	"生活家電",
	"美妝保養",
	"美食生鮮與日用品",
	"行李箱與旅行相關配件",
	"軟體電玩遊戲",
	"運動健身戶外",
	"醫療保健",
	"鞋包服飾",
}

// CategoryIndex возвращает позицию категории в словаре.
func CategoryIndex(name string) (int, bool) {
	for i, c := range ProductCategories {
		if c == name {
			return i, true
		}
	}

	return -1, false
}
