package pitch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/DRSN-tech/starmatch-backend/internal/usecase"
)

const (
	systemPrompt = "你是品牌策略顧問，專門幫行銷長準備提案簡報。你的重點是『品牌 fit』跟『溝通對象的命中率』"

	noBrandDescription = "（暫無品牌描述）"
	noPersona          = "（暫無藝人描述）"
	noData             = "（無資料）"
)

// buildUserPrompt собирает пользовательский промпт из контекста пары бренд/артист.
func buildUserPrompt(pc *usecase.PitchContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[品牌敘述]\n%s：\n%s\n\n", pc.Brand, orDefault(pc.BrandDescription, noBrandDescription))
	fmt.Fprintf(&b, "[藝人敘述]\n%s：\n%s\n\n", pc.Artist, orDefault(pc.Persona, noPersona))
	fmt.Fprintf(&b, "[該藝人曾經合作或代言過的品牌類型 / 品牌示例]\n%s\n\n", joinOrDefault(pc.PastBrands))
	fmt.Fprintf(&b, "[受眾/市場推測]\n和 %s 相近、可替代或氣質接近的其他藝人：\n%s\n\n", pc.Artist, joinOrDefault(pc.SimilarArtists))
	fmt.Fprintf(&b, "[品牌與藝人的整體契合度分數 (0~10 越高越契合)]\n%s / 10\n\n", strconv.FormatFloat(pc.Score, 'f', -1, 64))

	b.WriteString("請根據以上資料，告訴行銷主管：\n")
	fmt.Fprintf(&b, "1. 為什麼「%s」應該優先考慮「%s」。\n", pc.Brand, pc.Artist)
	b.WriteString("2. 這位藝人可以幫品牌具體加強什麼品牌印象。\n")
	b.WriteString("3. 哪一群消費族群、哪種溝通場景會特別容易被說服。\n\n")

	b.WriteString("輸出規格：\n")
	b.WriteString("- 繁體中文。\n")
	b.WriteString("- 2~3 句順口提案，不要條列。\n")
	b.WriteString("- 字數上限約 120 字。\n")
	fmt.Fprintf(&b, "- 一定要點名 %s 和 %s。\n", pc.Brand, pc.Artist)
	b.WriteString("- 不要只說「很紅」，要說品牌語氣/族群 fit。")

	return b.String()
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

func joinOrDefault(items []string) string {
	if len(items) == 0 {
		return noData
	}
	return strings.Join(items, ", ")
}
