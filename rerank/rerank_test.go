package rerank

import (
	"context"
	"testing"

	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/pkg/utils"
)

func testRctx() *core.RecommendContext {
	snap := core.NewSnapshot([]core.Course{
		{ID: "c1", Category: "Data Science", IsActive: true},
		{ID: "c2", Category: "Data Science", IsActive: true},
		{ID: "c3", Category: "Data Science", IsActive: true},
		{ID: "c4", Category: "Programming", IsActive: true},
		{ID: "c5", Category: "", IsActive: true},
	}, nil)
	return &core.RecommendContext{UserID: "u1", Data: snap}
}

func items(ids ...string) []*core.Item {
	out := make([]*core.Item, 0, len(ids))
	for i, id := range ids {
		it := core.NewItem(id)
		it.Score = 1.0 - float64(i)*0.1
		out = append(out, it)
	}
	return out
}

func TestDiversity_CategoryCap(t *testing.T) {
	n := &Diversity{MaxPerCategory: 2}
	got, err := n.Process(context.Background(), testRctx(), items("c1", "c2", "c3", "c4"))
	if err != nil {
		t.Fatalf("重排失败: %v", err)
	}
	// Data Science 被限到 2 条，c3 被挤出
	want := []string{"c1", "c2", "c4"}
	if len(got) != len(want) {
		t.Fatalf("期望 %d 条，实际 %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("位置 %d 期望 %s，实际 %s", i, id, got[i].ID)
		}
	}
}

func TestDiversity_NoCategoryPasses(t *testing.T) {
	n := &Diversity{MaxPerCategory: 1}
	got, err := n.Process(context.Background(), testRctx(), items("c5", "c5"))
	if err != nil {
		t.Fatalf("重排失败: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("无类别候选不应被限制，实际 %d 条", len(got))
	}
}

func TestDiversity_LabelTakesPrecedence(t *testing.T) {
	in := items("c1", "c2")
	in[0].PutLabel("category", utils.Label{Value: "Art", Source: "test"})
	in[1].PutLabel("category", utils.Label{Value: "Art", Source: "test"})

	n := &Diversity{MaxPerCategory: 1}
	got, err := n.Process(context.Background(), testRctx(), in)
	if err != nil {
		t.Fatalf("重排失败: %v", err)
	}
	if len(got) != 1 || got[0].ID != "c1" {
		t.Errorf("label 类别应优先于目录类别，实际 %v", got)
	}
}

func TestDiversity_Disabled(t *testing.T) {
	n := &Diversity{}
	in := items("c1", "c2", "c3")
	got, err := n.Process(context.Background(), testRctx(), in)
	if err != nil {
		t.Fatalf("重排失败: %v", err)
	}
	if len(got) != 3 {
		t.Errorf("MaxPerCategory 为 0 时不应截断，实际 %d 条", len(got))
	}
}

func TestTopN(t *testing.T) {
	tests := []struct {
		name string
		n    int
		in   int
		want int
	}{
		{"truncate", 2, 5, 2},
		{"fewer_than_n", 10, 3, 3},
		{"disabled", 0, 4, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ids := make([]string, tt.in)
			for i := range ids {
				ids[i] = string(rune('a' + i))
			}
			node := &TopN{N: tt.n}
			got, err := node.Process(context.Background(), nil, items(ids...))
			if err != nil {
				t.Fatalf("截断失败: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("期望 %d 条，实际 %d", tt.want, len(got))
			}
		})
	}
}
