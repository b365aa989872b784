package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rushteam/courserec/config"
	_ "github.com/rushteam/courserec/config/builders"
	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/pipeline"
	"github.com/rushteam/courserec/recall"
)

const pipelineYAML = `
pipeline:
  name: cold_start
  nodes:
    - type: recall.popularity
      config:
        floor: 0.5
        ceil: 0.8
    - type: filter
      config:
        filters:
          - type: attribute
            difficulty: beginner
    - type: rerank.diversity
      config:
        max_per_category: 2
    - type: rerank.topn
      config:
        n: 5
`

const pipelineJSON = `{
  "pipeline": {
    "name": "cold_start",
    "nodes": [
      {"type": "recall.popularity", "config": {"floor": 0.5, "ceil": 0.8}},
      {"type": "rerank.topn", "config": {"n": 3}}
    ]
  }
}`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("写临时文件失败: %v", err)
	}
	return path
}

func testRctx() *core.RecommendContext {
	snap := core.NewSnapshot([]core.Course{
		{ID: "c1", Category: "Data Science", Difficulty: "beginner", EnrollmentCount: 500, IsActive: true},
		{ID: "c2", Category: "Data Science", Difficulty: "beginner", EnrollmentCount: 400, IsActive: true},
		{ID: "c3", Category: "Data Science", Difficulty: "beginner", EnrollmentCount: 300, IsActive: true},
		{ID: "c4", Category: "Art", Difficulty: "beginner", EnrollmentCount: 200, IsActive: true},
		{ID: "c5", Category: "Art", Difficulty: "advanced", EnrollmentCount: 100, IsActive: true},
	}, nil)
	return &core.RecommendContext{UserID: "u1", Data: snap}
}

// TestBuildPipelineFromYAML 验证 YAML 配置端到端构建并运行
func TestBuildPipelineFromYAML(t *testing.T) {
	cfg, err := pipeline.LoadFromYAML(writeTemp(t, "pipeline.yaml", pipelineYAML))
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	if cfg.Pipeline.Name != "cold_start" {
		t.Errorf("pipeline name 错误: %q", cfg.Pipeline.Name)
	}
	if err := config.ValidatePipelineConfig(cfg); err != nil {
		t.Fatalf("校验失败: %v", err)
	}

	p, err := cfg.BuildPipeline(config.DefaultFactory())
	if err != nil {
		t.Fatalf("构建失败: %v", err)
	}
	if len(p.Nodes) != 4 {
		t.Fatalf("期望 4 个节点，实际 %d", len(p.Nodes))
	}
	if _, ok := p.Nodes[0].(*recall.Popularity); !ok {
		t.Errorf("首节点应为 recall.Popularity，实际 %T", p.Nodes[0])
	}

	items, err := p.Run(context.Background(), testRctx(), nil)
	if err != nil {
		t.Fatalf("运行失败: %v", err)
	}
	// advanced 的 c5 被过滤，Data Science 限 2 条 → c1 c2 c4
	if len(items) != 3 {
		t.Fatalf("期望 3 条，实际 %d", len(items))
	}
	for _, it := range items {
		if it.ID == "c5" {
			t.Error("advanced 课程应被属性过滤")
		}
		if it.ID == "c3" {
			t.Error("超出类别上限的 c3 应被多样性重排挤出")
		}
	}
}

// TestBuildPipelineFromJSON 验证 JSON 配置与 YAML 等价
func TestBuildPipelineFromJSON(t *testing.T) {
	cfg, err := pipeline.LoadFromJSON(writeTemp(t, "pipeline.json", pipelineJSON))
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}
	p, err := cfg.BuildPipeline(config.DefaultFactory())
	if err != nil {
		t.Fatalf("构建失败: %v", err)
	}

	items, err := p.Run(context.Background(), testRctx(), nil)
	if err != nil {
		t.Fatalf("运行失败: %v", err)
	}
	if len(items) != 3 {
		t.Errorf("TopN(3) 应截到 3 条，实际 %d", len(items))
	}
}

// TestValidatePipelineConfig_Unsupported 验证未注册类型被拒绝
func TestValidatePipelineConfig_Unsupported(t *testing.T) {
	var cfg pipeline.Config
	cfg.Pipeline.Nodes = []pipeline.NodeConfig{{Type: "recall.magic"}}
	if err := config.ValidatePipelineConfig(&cfg); err == nil {
		t.Error("未注册类型应报错")
	}
}

// TestSupportedTypes 验证内置节点均已注册
func TestSupportedTypes(t *testing.T) {
	got := map[string]bool{}
	for _, tp := range config.SupportedTypes() {
		got[tp] = true
	}
	for _, want := range []string{"recall.popularity", "filter", "rerank.diversity", "rerank.topn"} {
		if !got[want] {
			t.Errorf("内置类型 %s 未注册", want)
		}
	}
}
