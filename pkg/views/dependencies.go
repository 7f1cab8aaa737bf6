package views

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/gnames/gnlib"
)

// DependencyMismatchError is returned when the declared dependencies of a
// view differ from the managed views its query actually reads.
type DependencyMismatchError struct {
	error
	gnlib.MessageBase

	// Owner of the view that failed the check.
	Owner string

	// Missing are owners found in the catalog but not declared.
	Missing []string

	// Extra are owners declared but not found in the catalog.
	Extra []string
}

// CheckDependencies compares declared dependency owners of a view with the
// ones discovered in the catalog. Missing dependencies are reported first,
// the same way as the database would complain about them on rebuild.
func CheckDependencies(owner string, declared, actual []string) error {
	declared = sortedUnique(declared)
	actual = sortedUnique(actual)

	missing := difference(actual, declared)
	extra := difference(declared, actual)

	if len(missing) > 0 {
		noun := "a dependency"
		if len(missing) > 1 {
			noun = "dependencies"
		}
		example := fmt.Sprintf("dependencies: [%s]", strings.Join(actual, ", "))
		msg := fmt.Sprintf("%s must be specified as %s of %s: `%s`",
			toSentence(missing), noun, owner, example)
		return &DependencyMismatchError{
			error: errors.New(msg),
			MessageBase: gnlib.NewMessage(
				"<warning>%s</warning> must be declared as %s of <em>%s</em>:\n  %s",
				[]any{toSentence(missing), noun, owner, example},
			),
			Owner:   owner,
			Missing: missing,
			Extra:   extra,
		}
	}

	if len(extra) > 0 {
		verb, noun := "is", "a dependency"
		if len(extra) > 1 {
			verb, noun = "are", "dependencies"
		}
		msg := fmt.Sprintf("%s %s not %s of %s",
			toSentence(extra), verb, noun, owner)
		return &DependencyMismatchError{
			error: errors.New(msg),
			MessageBase: gnlib.NewMessage(
				"<warning>%s</warning> %s not %s of <em>%s</em>",
				[]any{toSentence(extra), verb, noun, owner},
			),
			Owner: owner,
			Extra: extra,
		}
	}

	return nil
}

// toSentence joins words as "a", "a and b", "a, b, and c".
func toSentence(words []string) string {
	switch len(words) {
	case 0:
		return ""
	case 1:
		return words[0]
	case 2:
		return words[0] + " and " + words[1]
	}
	last := len(words) - 1
	return strings.Join(words[:last], ", ") + ", and " + words[last]
}

func sortedUnique(s []string) []string {
	res := slices.Clone(s)
	slices.Sort(res)
	return slices.Compact(res)
}

// difference returns elements of a that are not in b. Both are sorted.
func difference(a, b []string) []string {
	var res []string
	for _, v := range a {
		if _, found := slices.BinarySearch(b, v); !found {
			res = append(res, v)
		}
	}
	return res
}
