package consolidate

import (
	"testing"

	"meal-planner/internal/pkg/common"

	"github.com/stretchr/testify/assert"
)

func TestFormatSmartQuantity(t *testing.T) {
	tests := []struct {
		name     string
		quantity float64
		unit     string
		want     common.Quantity
	}{
		{"克不足一公斤", 500, "g", common.Quantity{Value: 500, Unit: "g"}},
		{"克滿一公斤", 1500, "g", common.Quantity{Value: 1.5, Unit: "kg"}},
		{"克剛好一公斤", 1000, "g", common.Quantity{Value: 1, Unit: "kg"}},
		{"毫升滿一公升", 2500, "ml", common.Quantity{Value: 2.5, Unit: "l"}},
		{"毫升不足一公升", 999, "ml", common.Quantity{Value: 999, Unit: "ml"}},
		{"可數單位不換算", 1200, "piece", common.Quantity{Value: 1200, Unit: "piece"}},
		{"單位同義詞先正規化", 1500, "grams", common.Quantity{Value: 1.5, Unit: "kg"}},
		{"浮點雜訊四捨五入", 1000.0004, "g", common.Quantity{Value: 1, Unit: "kg"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSmartQuantity(tt.quantity, tt.unit))
		})
	}
}

func TestConvertBackToBase(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		du    string
		bu    string
		want  float64
	}{
		{"公斤換回克", 1.5, "kg", "g", 1500},
		{"公升換回毫升", 2.5, "l", "ml", 2500},
		{"克換成公斤", 500, "g", "kg", 0.5},
		{"同單位不換算", 3, "piece", "piece", 3},
		{"未知組合原樣返回", 2, "cup", "g", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, ConvertBackToBase(tt.value, tt.du, tt.bu), 1e-9)
		})
	}
}

// 顯示數量換算回基礎單位後必須等於原值（浮點誤差內）
func TestQuantityRoundTrip(t *testing.T) {
	cases := []struct {
		quantity float64
		unit     string
	}{
		{1500, "g"},
		{999, "g"},
		{1000, "g"},
		{2750, "ml"},
		{42, "piece"},
		{3.5, "tbsp"},
	}

	for _, c := range cases {
		display := FormatSmartQuantity(c.quantity, c.unit)
		back := ConvertBackToBase(display.Value, display.Unit, NormalizeUnit(c.unit))
		assert.InDelta(t, c.quantity, back, 1e-6,
			"round trip failed for %g %s", c.quantity, c.unit)
	}
}

func TestStepSize(t *testing.T) {
	assert.Equal(t, 0.1, StepSize("kg"))
	assert.Equal(t, 0.1, StepSize("l"))
	assert.Equal(t, float64(10), StepSize("g"))
	assert.Equal(t, float64(10), StepSize("ml"))
	assert.Equal(t, 0.5, StepSize("tbsp"))
	assert.Equal(t, 0.5, StepSize("teaspoon"))
	assert.Equal(t, float64(1), StepSize("piece"))
	assert.Equal(t, float64(1), StepSize(""))
}
