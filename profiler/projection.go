package profiler

import "hash/fnv"

// project 把稀疏 TF-IDF 词权重投影为固定维度的稠密向量（signed feature hashing）。
//
// 设计要点：
//   - 维度由词表哈希决定，与目录内容无关：同一个词在任何快照里都落在同一维
//   - 符号位取哈希的最低位，期望上抵消碰撞词之间的干扰
//   - 投影是确定性的线性映射：同一目录快照永远得到相同的向量
func project(weights map[string]float64, dims int) Vector {
	v := make(Vector, dims)
	for term, w := range weights {
		h := fnv.New64a()
		h.Write([]byte(term))
		sum := h.Sum64()

		dim := int(sum % uint64(dims))
		if sum&(1<<63) != 0 {
			v[dim] -= w
		} else {
			v[dim] += w
		}
	}
	return Normalize(v)
}
