package core

// Algorithm 是推荐算法的封闭枚举。
// 通过枚举 + 单一 Recommender 契约做静态分发，新增引擎是编译期可检查的变更，
// 避免 string-keyed 的动态分发在运行期才暴露拼写错误。
type Algorithm int

const (
	AlgorithmHybrid Algorithm = iota // 默认：协同 + 内容融合
	AlgorithmCollaborative
	AlgorithmContent
	AlgorithmPopularity
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmCollaborative:
		return "collaborative"
	case AlgorithmContent:
		return "content"
	case AlgorithmHybrid:
		return "hybrid"
	case AlgorithmPopularity:
		return "popularity"
	}
	return "unknown"
}

// ParseAlgorithm 供传输层把外部字符串转为枚举。
// 未知算法名是调用方误用，返回硬错误（不降级）。
func ParseAlgorithm(s string) (Algorithm, error) {
	switch s {
	case "collaborative":
		return AlgorithmCollaborative, nil
	case "content":
		return AlgorithmContent, nil
	case "hybrid", "":
		return AlgorithmHybrid, nil
	case "popularity":
		return AlgorithmPopularity, nil
	}
	return 0, NewDomainError(ModuleEngine, ErrorCodeInvalidInput, "engine: unknown algorithm "+s)
}

// Recommendation 是引擎的最终输出单元，无状态、不由引擎持久化。
//
// 不变量：
//   - Confidence ∈ [0,1]
//   - 同一结果列表内 CourseID 不重复
//   - Rank 为 1..N 的稠密排名，按 Confidence 降序、CourseID 升序稳定可复现
type Recommendation struct {
	CourseID   string
	Confidence float64
	Reason     string
	Rank       int
	Source     string // collaborative / content / hybrid / popularity
}
