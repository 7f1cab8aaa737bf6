package views

import (
	"fmt"
	"maps"
	"slices"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Options describe how a view is created.
type Options struct {
	// Materialized creates a materialized view instead of a plain one.
	Materialized bool `json:"materialized,omitempty" yaml:"materialized"`

	// UniqueColumns creates a unique index '<name>_pkey' on the given
	// columns. It requires Materialized.
	UniqueColumns []string `json:"unique_columns,omitempty" yaml:"unique_columns"`

	// Indexes creates one index '<name>_<column>_index' per column.
	Indexes []string `json:"indexes,omitempty" yaml:"indexes"`

	// Dependencies are owners of managed views this view reads from
	// directly. Kept sorted.
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies"`
}

var optionKeys = map[string]struct{}{
	"materialized":   {},
	"unique_columns": {},
	"indexes":        {},
	"dependencies":   {},
}

// OptionsFromMap converts loosely typed options (for example decoded from
// YAML) to Options. Unknown keys and wrong value types are rejected.
func OptionsFromMap(name string, m map[string]any) (Options, error) {
	var res Options
	for _, k := range slices.Sorted(maps.Keys(m)) {
		if _, ok := optionKeys[k]; !ok {
			return res, UnknownOptionError(name, k)
		}
	}
	if len(m) == 0 {
		return res, nil
	}

	bs, err := json.Marshal(m)
	if err != nil {
		return res, OptionValueError(name, err)
	}
	if err = json.Unmarshal(bs, &res); err != nil {
		return res, OptionValueError(name, err)
	}
	return res.Normalize(), nil
}

// Validate checks option combinations.
func (o Options) Validate(name string) error {
	if len(o.UniqueColumns) > 0 && !o.Materialized {
		return UniqueColumnsError(name)
	}
	if len(o.Indexes) > 0 && !o.Materialized {
		return IndexesError(name)
	}
	for _, v := range o.Dependencies {
		if v == "" {
			return OptionValueError(name,
				fmt.Errorf("dependency owner cannot be empty"))
		}
	}
	return nil
}

// Normalize returns a copy with sorted unique dependencies and empty
// lists replaced by nil.
func (o Options) Normalize() Options {
	res := o
	res.UniqueColumns = nilIfEmpty(slices.Clone(o.UniqueColumns))
	res.Indexes = nilIfEmpty(slices.Clone(o.Indexes))
	deps := slices.Clone(o.Dependencies)
	slices.Sort(deps)
	res.Dependencies = nilIfEmpty(slices.Compact(deps))
	return res
}

// Equal compares options, nil and empty lists are the same.
func (o Options) Equal(other Options) bool {
	return o.Materialized == other.Materialized &&
		slices.Equal(o.UniqueColumns, other.UniqueColumns) &&
		slices.Equal(o.Indexes, other.Indexes) &&
		slices.Equal(o.Dependencies, other.Dependencies)
}

// MarshalOptions encodes options to JSON as they are kept in the
// metadata table.
func MarshalOptions(o Options) ([]byte, error) {
	return json.Marshal(o)
}

// UnmarshalOptions decodes options from the metadata table.
func UnmarshalOptions(bs []byte) (Options, error) {
	var res Options
	if len(bs) == 0 {
		return res, nil
	}
	err := json.Unmarshal(bs, &res)
	return res, err
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}
