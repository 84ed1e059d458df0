package analytics

import (
	"bytes"
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// wordPattern 匹配 Unicode 字母、数字与下划线组成的连续片段。
var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// lowerCaser 不绑定具体语言的小写转换。cases.Caser 非并发安全，因此每次调用新建。
func lowerCaser() cases.Caser {
	return cases.Lower(language.Und)
}

// WordCount 是单个词及其出现次数。
type WordCount struct {
	Word  string
	Count int
}

// WordFrequency 是按次数降序排列的词频表，JSON 编码为保持顺序的对象。
type WordFrequency []WordCount

// MarshalJSON 输出 {"word": count, ...}，保持切片顺序。
func (w WordFrequency) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, item := range w {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(item.Word)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(item.Count))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Map 转换为普通 map，便于断言与调试。
func (w WordFrequency) Map() map[string]int {
	out := make(map[string]int, len(w))
	for _, item := range w {
		out[item.Word] = item.Count
	}
	return out
}

// countWords 对文本统一小写后分词计数，按次数降序，次数相同时保持首次出现的顺序。
// limit <= 0 表示返回全部。
func countWords(text string, limit int) WordFrequency {
	lowered := lowerCaser().String(text)
	tokens := wordPattern.FindAllString(lowered, -1)

	counts := make(map[string]int, len(tokens))
	order := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if _, seen := counts[token]; !seen {
			order = append(order, token)
		}
		counts[token]++
	}

	result := make(WordFrequency, 0, len(order))
	for _, word := range order {
		result = append(result, WordCount{Word: word, Count: counts[word]})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})

	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}

// whitespaceStats 统计按空白切分的总词数与小写去重后的词数。
func whitespaceStats(texts []string) (total int, unique int) {
	caser := lowerCaser()
	seen := make(map[string]struct{})
	for _, text := range texts {
		for _, token := range strings.Fields(text) {
			total++
			seen[caser.String(token)] = struct{}{}
		}
	}
	return total, len(seen)
}
