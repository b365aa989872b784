// Package courserec 是一个课程推荐引擎（Course Recommender）。
//
// 设计要点：
// - Pipeline-first: 推荐逻辑通过 Node 串联（Recall → Fusion → Filter → ReRank）
// - Snapshot-first: 每次请求取一份一致性快照，打分全程只读这一份数据
// - Labels-first: labels 全链路透传与标准化 merge，每条推荐都能回答"为什么是它"
// - 永不空手而归: 个性化数据不足、超时或无候选时转热门兜底，而不是报错
//
// 入口是 engine.Engine（Recommend / SimilarCourses / DataRequirements / RecordFeedback）。
package courserec

import "github.com/rushteam/courserec/pipeline"

// 轻量 facade：便于用户直接 import "courserec" 使用核心抽象。
type Pipeline = pipeline.Pipeline
type Node = pipeline.Node
type Kind = pipeline.Kind

const (
	KindRecall      = pipeline.KindRecall
	KindFilter      = pipeline.KindFilter
	KindFusion      = pipeline.KindFusion
	KindReRank      = pipeline.KindReRank
	KindPostProcess = pipeline.KindPostProcess
)
