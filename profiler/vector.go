package profiler

import "math"

// Vector 是稠密内容向量（构建时已 L2 归一化）。
type Vector []float64

// Dot 点积，维度不一致时返回 0。
func Dot(a, b Vector) float64 {
	if len(a) != len(b) {
		return 0
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Norm L2 范数。
func Norm(v Vector) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Cosine 余弦相似度，零向量与任何向量的相似度为 0。
func Cosine(a, b Vector) float64 {
	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return Dot(a, b) / (na * nb)
}

// Normalize 原地 L2 归一化，零向量保持不变。
func Normalize(v Vector) Vector {
	n := Norm(v)
	if n == 0 {
		return v
	}
	for i := range v {
		v[i] /= n
	}
	return v
}
