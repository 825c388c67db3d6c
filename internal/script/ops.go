package script

import "github.com/samber/lo"

type op func(a, b int) int

var ops = map[string]op{
	"add":    func(a, b int) int { return a + b },
	"sub":    func(a, b int) int { return a - b },
	"mul":    func(a, b int) int { return a * b },
	"max":    func(a, b int) int { return max(a, b) },
	"min":    func(a, b int) int { return min(a, b) },
	"first":  func(a, _ int) int { return a },
	"second": func(_, b int) int { return b },
}

var cmps = map[string]func(a, b int) bool{
	"gt": func(a, b int) bool { return a > b },
	"lt": func(a, b int) bool { return a < b },
	"eq": func(a, b int) bool { return a == b },
	"ne": func(a, b int) bool { return a != b },
}

// reduce folds vs from the left. vs is never empty.
func (f op) reduce(vs []int) int {
	return lo.Reduce(vs[1:], func(acc, v int, _ int) int { return f(acc, v) }, vs[0])
}
