// Package builders 注册内置 Node 的配置构建器。
// 入口处 import _ "github.com/rushteam/courserec/config/builders" 触发注册。
package builders

import (
	"fmt"

	"github.com/rushteam/courserec/config"
	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/filter"
	"github.com/rushteam/courserec/pipeline"
	"github.com/rushteam/courserec/pkg/conv"
	"github.com/rushteam/courserec/recall"
	"github.com/rushteam/courserec/rerank"
)

func init() {
	config.Register("recall.popularity", buildPopularityNode)
	config.Register("filter", buildFilterNode)
	config.Register("rerank.diversity", buildDiversityNode)
	config.Register("rerank.topn", buildTopNNode)
}

func buildPopularityNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &recall.Popularity{
		Floor:     conv.ConfigGetFloat64(cfg, "floor", 0.5),
		Ceil:      conv.ConfigGetFloat64(cfg, "ceil", 0.8),
		Step:      conv.ConfigGetFloat64(cfg, "step", 0.05),
		TopKItems: int(conv.ConfigGetInt64(cfg, "top_k", 0)),
	}, nil
}

func buildDiversityNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.Diversity{
		MaxPerCategory: int(conv.ConfigGetInt64(cfg, "max_per_category", 0)),
		LabelKey:       conv.ConfigGet[string](cfg, "label_key", ""),
	}, nil
}

func buildTopNNode(cfg map[string]interface{}) (pipeline.Node, error) {
	return &rerank.TopN{N: int(conv.ConfigGetInt64(cfg, "n", 0))}, nil
}

func buildFilterNode(cfg map[string]interface{}) (pipeline.Node, error) {
	filtersConfig, ok := cfg["filters"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("filters not found or invalid")
	}

	filters := make([]filter.Filter, 0, len(filtersConfig))
	for _, fc := range filtersConfig {
		filterMap, ok := fc.(map[string]interface{})
		if !ok {
			continue
		}
		filterType := conv.ConfigGet[string](filterMap, "type", "")
		switch filterType {
		case "blacklist":
			ids := conv.SliceAnyToString(filterMap["course_ids"])
			if ids == nil {
				ids = []string{}
			}
			filters = append(filters, &filter.Blacklist{CourseIDs: ids})

		case "expression":
			expr := conv.ConfigGet[string](filterMap, "expr", "")
			filters = append(filters, &filter.Expression{Expr: expr})

		case "attribute":
			spec := &core.FilterSpec{
				Difficulty:       conv.ConfigGet[string](filterMap, "difficulty", ""),
				Categories:       conv.SliceAnyToString(filterMap["categories"]),
				MaxDurationHours: conv.ConfigGetFloat64(filterMap, "max_duration_hours", 0),
				ContentType:      conv.ConfigGet[string](filterMap, "content_type", ""),
			}
			attr := &filter.Attribute{Spec: spec}
			if err := attr.Validate(); err != nil {
				return nil, err
			}
			filters = append(filters, attr)

		default:
			return nil, fmt.Errorf("unknown filter type: %s", filterType)
		}
	}

	return &filter.Node{Filters: filters}, nil
}
