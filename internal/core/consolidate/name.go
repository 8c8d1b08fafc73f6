package consolidate

import (
	"strings"
)

// articles 名稱開頭要移除的英文冠詞
var articles = []string{"a ", "an ", "the "}

// NormalizeName 正規化食材名稱，作為合併鍵與參考資料查詢鍵
// 小寫、去除前後空白、去除結尾句點逗點、壓縮連續空白、移除開頭冠詞、複數轉單數
func NormalizeName(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	name = strings.TrimRight(name, ".,")
	name = strings.Join(strings.Fields(name), " ")
	for _, article := range articles {
		if strings.HasPrefix(name, article) {
			name = strings.TrimPrefix(name, article)
			break
		}
	}
	return singularize(name)
}

// singularize 把名稱最後一個單字的英文複數轉為單數
// 啟發式規則，涵蓋常見食材即可；不處理不規則複數
func singularize(name string) string {
	words := strings.Fields(name)
	if len(words) == 0 {
		return name
	}
	last := words[len(words)-1]
	switch {
	case strings.HasSuffix(last, "ies") && len(last) > 4:
		last = strings.TrimSuffix(last, "ies") + "y"
	case strings.HasSuffix(last, "oes") || strings.HasSuffix(last, "ches") ||
		strings.HasSuffix(last, "shes") || strings.HasSuffix(last, "sses") ||
		strings.HasSuffix(last, "xes"):
		last = strings.TrimSuffix(last, "es")
	case strings.HasSuffix(last, "s") && !strings.HasSuffix(last, "ss") && !strings.HasSuffix(last, "us"):
		last = strings.TrimSuffix(last, "s")
	}
	words[len(words)-1] = last
	return strings.Join(words, " ")
}
