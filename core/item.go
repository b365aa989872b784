package core

import "github.com/rushteam/courserec/pkg/utils"

// Item 是推荐链路中的统一承载结构：候选课程、分数、元信息、标签。
// Labels 用于解释与策略驱动；Score 用于排序决策；Source 标记产生该候选的引擎。
type Item struct {
	ID     string // 课程 ID
	Score  float64
	Source string // collaborative / content / popularity
	Meta   map[string]any
	Labels map[string]utils.Label
}

func NewItem(id string) *Item {
	return &Item{
		ID:     id,
		Score:  0,
		Meta:   make(map[string]any),
		Labels: make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}
