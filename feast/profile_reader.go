package feast

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rushteam/courserec/core"
	"github.com/rushteam/courserec/pkg/conv"
)

// 画像特征视图约定：离线分析任务按这些名字物化到 Feast 在线存储
const (
	featInteractionCount = "user_profile:interaction_count"
	featEnrollmentCount  = "user_profile:enrollment_count"
	featCompletedCount   = "user_profile:completed_count"
	featCategories       = "user_profile:preferred_categories" // JSON: {"Data Science": 0.6}
	featDifficulties     = "user_profile:preferred_difficulties"
	featContentTypes     = "user_profile:preferred_content_types"
	featTargetSkills     = "user_profile:target_skills" // JSON: ["python","ml"]
	featUpdatedAt        = "user_profile:updated_at"    // unix 秒
)

var profileFeatures = []string{
	featInteractionCount,
	featEnrollmentCount,
	featCompletedCount,
	featCategories,
	featDifficulties,
	featContentTypes,
	featTargetSkills,
	featUpdatedAt,
}

// ProfileReader 把 Feast 在线特征适配为 core.ProfileReader。
//
// 画像缺失不是错误：Feast 里没有该用户时返回零计数画像，
// 数据充分性门会自然把这种用户引向热门兜底。
type ProfileReader struct {
	Client Client

	// EntityKey 实体键名，默认 "user_id"
	EntityKey string
}

func NewProfileReader(client Client) *ProfileReader {
	return &ProfileReader{Client: client, EntityKey: "user_id"}
}

var _ core.ProfileReader = (*ProfileReader)(nil)

func (r *ProfileReader) GetProfile(ctx context.Context, userID string) (*core.UserLearningProfile, error) {
	entityKey := r.EntityKey
	if entityKey == "" {
		entityKey = "user_id"
	}

	resp, err := r.Client.GetOnlineFeatures(ctx, &GetOnlineFeaturesRequest{
		Features:   profileFeatures,
		EntityRows: []map[string]interface{}{{entityKey: userID}},
	})
	if err != nil {
		return nil, core.NewDomainError(core.ModuleProfiler, core.ErrorCodeUnavailable,
			"profiler: feast unavailable: "+err.Error())
	}
	if len(resp.FeatureVectors) == 0 {
		return core.NewUserLearningProfile(userID), nil
	}

	values := resp.FeatureVectors[0].Values
	p := core.NewUserLearningProfile(userID)
	p.InteractionCount = asInt(values[featInteractionCount])
	p.EnrollmentCount = asInt(values[featEnrollmentCount])
	p.CompletedCount = asInt(values[featCompletedCount])
	p.PreferredCategories = asFloatMap(values[featCategories])
	p.PreferredDifficulties = asFloatMap(values[featDifficulties])
	p.PreferredContentTypes = asFloatMap(values[featContentTypes])
	p.TargetSkills = asStringSlice(values[featTargetSkills])
	if ts := asInt(values[featUpdatedAt]); ts > 0 {
		p.UpdatedAt = time.Unix(int64(ts), 0).UTC()
	}
	return p, nil
}

func asInt(v interface{}) int {
	f, ok := conv.ToFloat64(v)
	if !ok {
		return 0
	}
	return int(f)
}

// asFloatMap 解析 JSON 编码的偏好表，例如 {"Data Science": 0.6}
func asFloatMap(v interface{}) map[string]float64 {
	s, ok := v.(string)
	if !ok || s == "" {
		return map[string]float64{}
	}
	var raw map[string]float64
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return map[string]float64{}
	}
	return raw
}

// asStringSlice 解析 JSON 编码的字符串数组，例如 ["python","ml"]
func asStringSlice(v interface{}) []string {
	s, ok := v.(string)
	if !ok || s == "" {
		return nil
	}
	var raw []string
	if err := json.Unmarshal([]byte(s), &raw); err != nil {
		return nil
	}
	return raw
}
