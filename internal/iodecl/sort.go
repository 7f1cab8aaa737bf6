package iodecl

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gnames/gnviews/pkg/views"
)

// sortByDependencies orders declarations so that every view comes after
// the views it depends on. Independent declarations keep manifest order.
func sortByDependencies(
	path string,
	decls []views.Declaration,
) ([]views.Declaration, error) {
	index := make(map[string]int, len(decls))
	for i, d := range decls {
		index[d.Owner] = i
	}

	inDegree := make([]int, len(decls))
	dependents := make([][]int, len(decls))
	for i, d := range decls {
		for _, dep := range d.Options.Dependencies {
			j := index[dep]
			dependents[j] = append(dependents[j], i)
			inDegree[i]++
		}
	}

	var ready []int
	for i, n := range inDegree {
		if n == 0 {
			ready = append(ready, i)
		}
	}

	res := make([]views.Declaration, 0, len(decls))
	for len(ready) > 0 {
		slices.Sort(ready)
		i := ready[0]
		ready = ready[1:]
		res = append(res, decls[i])

		for _, j := range dependents[i] {
			inDegree[j]--
			if inDegree[j] == 0 {
				ready = append(ready, j)
			}
		}
	}

	if len(res) < len(decls) {
		var cycle []string
		for i, n := range inDegree {
			if n > 0 {
				cycle = append(cycle, decls[i].Name)
			}
		}
		return nil, ManifestError(path, fmt.Errorf(
			"dependency cycle between views: %s", strings.Join(cycle, ", "),
		))
	}
	return res, nil
}
