package store

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/rushteam/courserec/core"
)

// 存储键约定
const (
	keyCourses          = "courses"           // Hash: courseID -> Course JSON
	keyInteractions     = "interactions"      // ZSet: Interaction JSON，score = 发生时间(unix)
	keyUserInteractions = "interactions:user" // ZSet per user: "interactions:user:{id}"
)

// Catalog 把 KeyValueStore 适配为课程目录与交互日志的领域接口。
//
// 布局：
//   - 课程放 Hash，单课程读写 O(1)，全量读一次 HGetAll
//   - 交互放有序集合，score 是发生时间，窗口裁剪直接走 ZSet 语义
//
// 同一个 Catalog 可以压在 MemoryStore（测试）或 RedisStore（生产）上。
type Catalog struct {
	KV core.KeyValueStore
}

func NewCatalog(kv core.KeyValueStore) *Catalog {
	return &Catalog{KV: kv}
}

var (
	_ core.CatalogReader     = (*Catalog)(nil)
	_ core.InteractionReader = (*Catalog)(nil)
	_ core.InteractionWriter = (*Catalog)(nil)
)

// ListCourses 返回全部课程，按 ID 升序（遍历顺序确定）。
func (s *Catalog) ListCourses(ctx context.Context) ([]core.Course, error) {
	fields, err := s.KV.HGetAll(ctx, keyCourses)
	if err != nil {
		return nil, err
	}
	out := make([]core.Course, 0, len(fields))
	for _, raw := range fields {
		var c core.Course
		if err := json.Unmarshal(raw, &c); err != nil {
			// 脏数据跳过，不让单条坏记录拖垮整个目录
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetCourse 按 ID 查询课程。
func (s *Catalog) GetCourse(ctx context.Context, id string) (*core.Course, error) {
	raw, err := s.KV.HGet(ctx, keyCourses, id)
	if err != nil {
		if core.IsStoreNotFound(err) {
			return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeNotFound,
				"store: course not found: "+id)
		}
		return nil, err
	}
	var c core.Course
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, core.NewDomainError(core.ModuleStore, core.ErrorCodeInternalError,
			"store: corrupt course record: "+id)
	}
	return &c, nil
}

// SaveCourse 写入/覆盖课程（目录同步任务使用）。
func (s *Catalog) SaveCourse(ctx context.Context, c core.Course) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return err
	}
	return s.KV.HSet(ctx, keyCourses, c.ID, raw)
}

// AppendInteraction 追加一条交互：同时写入全局与按用户的有序集合。
func (s *Catalog) AppendInteraction(ctx context.Context, in core.Interaction) error {
	raw, err := json.Marshal(in)
	if err != nil {
		return err
	}
	score := float64(in.OccurredAt.Unix())
	if err := s.KV.ZAdd(ctx, keyInteractions, score, string(raw)); err != nil {
		return err
	}
	return s.KV.ZAdd(ctx, keyUserInteractions+":"+in.UserID, score, string(raw))
}

// ListInteractions 返回 since 之后的全部交互。
func (s *Catalog) ListInteractions(ctx context.Context, since time.Time) ([]core.Interaction, error) {
	return s.listZSet(ctx, keyInteractions, since)
}

// ListUserInteractions 返回 since 之后指定用户的交互。
func (s *Catalog) ListUserInteractions(ctx context.Context, userID string, since time.Time) ([]core.Interaction, error) {
	return s.listZSet(ctx, keyUserInteractions+":"+userID, since)
}

func (s *Catalog) listZSet(ctx context.Context, key string, since time.Time) ([]core.Interaction, error) {
	members, err := s.KV.ZRange(ctx, key, 0, -1)
	if err != nil {
		return nil, err
	}
	out := make([]core.Interaction, 0, len(members))
	for _, m := range members {
		var in core.Interaction
		if err := json.Unmarshal([]byte(m), &in); err != nil {
			continue
		}
		if in.OccurredAt.Before(since) {
			continue
		}
		out = append(out, in)
	}
	return out, nil
}
