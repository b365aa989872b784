package profiler

import (
	"math"
	"strings"
	"unicode"

	"github.com/rushteam/courserec/core"
)

// tokenize 把文本切成小写 token：非字母数字一律作为分隔符。
func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// courseTokens 从课程的文本字段提取 token。
// title 和 skills 是最强的语义信号，重复计入以放大 tf。
func courseTokens(c core.Course) []string {
	tokens := make([]string, 0, 32)
	title := tokenize(c.Title)
	tokens = append(tokens, title...)
	tokens = append(tokens, title...) // title ×2
	tokens = append(tokens, tokenize(c.Description)...)
	tokens = append(tokens, tokenize(c.Category)...)
	for _, sk := range c.Skills {
		skTokens := tokenize(sk)
		tokens = append(tokens, skTokens...)
		tokens = append(tokens, skTokens...) // skills ×2
	}
	return tokens
}

// tfidfWeights 计算整个目录的 TF-IDF 词权重。
// 返回每门课的 term → weight 稀疏表示。
//
// idf 采用平滑形式 ln((N+1)/(df+1))+1，保证全量出现的词权重也不为 0。
func tfidfWeights(courses []core.Course) []map[string]float64 {
	n := len(courses)
	docTF := make([]map[string]float64, n)
	df := make(map[string]int)

	for i, c := range courses {
		tokens := courseTokens(c)
		tf := make(map[string]float64, len(tokens))
		for _, t := range tokens {
			tf[t]++
		}
		// tf 归一化到词频占比
		total := float64(len(tokens))
		if total > 0 {
			for t := range tf {
				tf[t] /= total
			}
		}
		docTF[i] = tf
		for t := range tf {
			df[t]++
		}
	}

	out := make([]map[string]float64, n)
	for i, tf := range docTF {
		weights := make(map[string]float64, len(tf))
		for t, f := range tf {
			idf := math.Log(float64(n+1)/float64(df[t]+1)) + 1
			weights[t] = f * idf
		}
		out[i] = weights
	}
	return out
}
