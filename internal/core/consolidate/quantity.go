package consolidate

import (
	"math"

	"meal-planner/internal/pkg/common"
)

// roundQuantity 四捨五入到小數第三位，避免浮點累加後的雜訊
func roundQuantity(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// FormatSmartQuantity 將基礎單位數量轉為較易閱讀的顯示數量
// 質量 g 達 1000 以上改以 kg 顯示，體積 ml 達 1000 以上改以 l 顯示
// 可數單位（piece、cup 等）不做轉換
func FormatSmartQuantity(baseQuantity float64, baseUnit string) common.Quantity {
	unit := NormalizeUnit(baseUnit)
	switch unit {
	case "g":
		if baseQuantity >= 1000 {
			return common.Quantity{Value: roundQuantity(baseQuantity / 1000), Unit: "kg"}
		}
	case "ml":
		if baseQuantity >= 1000 {
			return common.Quantity{Value: roundQuantity(baseQuantity / 1000), Unit: "l"}
		}
	}
	return common.Quantity{Value: roundQuantity(baseQuantity), Unit: unit}
}

// ConvertBackToBase 將使用者編輯後的顯示數量換算回基礎單位
// 與 FormatSmartQuantity 互為反函數（浮點誤差內）
func ConvertBackToBase(displayValue float64, displayUnit, baseUnit string) float64 {
	du := NormalizeUnit(displayUnit)
	bu := NormalizeUnit(baseUnit)

	switch {
	case du == "kg" && bu == "g":
		return displayValue * 1000
	case du == "l" && bu == "ml":
		return displayValue * 1000
	case du == "g" && bu == "kg":
		return displayValue / 1000
	case du == "ml" && bu == "l":
		return displayValue / 1000
	}
	return displayValue
}

// StepSize 數量加減按鈕的單步增減量
// 呼叫端負責把結果夾在零以上，數量歸零時視為移除該項目
func StepSize(displayUnit string) float64 {
	switch NormalizeUnit(displayUnit) {
	case "kg", "l":
		return 0.1
	case "g", "ml":
		return 10
	case "tbsp", "tsp":
		return 0.5
	default:
		return 1
	}
}
