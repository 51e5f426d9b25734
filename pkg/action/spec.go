package action

import (
	"fmt"
	"strings"

	"github.com/databrook/databrook/pkg/sample"
)

// ErrFuncSpec is returned when a predicate/key/mapper spec string does not
// parse, or names an operation this package doesn't implement. Concrete
// predicates/key functions/mappers are ordinarily supplied as Go closures
// (see pkg/operator.Filter/Sort/GroupBy/Map); this tiny spec vocabulary
// exists only so the CLI and declarative YAML workflow documents — which
// carry strings, not closures — can still reference the handful of
// structural, key-driven operations a dataset pipeline commonly needs
// without requiring the out-of-scope module/plugin loader spec.md §1
// excludes.
var ErrFuncSpec = fmt.Errorf("action: invalid function spec")

func fieldString(s sample.Sample, key string) (string, bool, error) {
	it, ok := s.Get(key)
	if !ok {
		return "", false, nil
	}

	v, err := it.Get()
	if err != nil {
		return "", false, err
	}

	return fmt.Sprintf("%v", v), true, nil
}

// ParsePredicate builds a Filter predicate from spec, one of:
//   - "exists:<key>"        keep samples that have key
//   - "not-exists:<key>"    keep samples that lack key
//   - "eq:<key>=<value>"    keep samples whose key's string value == value
//   - "ne:<key>=<value>"    keep samples whose key's string value != value
func ParsePredicate(spec string) (func(i int, s sample.Sample) (bool, error), error) {
	verb, rest, _ := strings.Cut(spec, ":")

	switch verb {
	case "exists":
		key := rest

		return func(_ int, s sample.Sample) (bool, error) {
			_, ok := s.Get(key)

			return ok, nil
		}, nil
	case "not-exists":
		key := rest

		return func(_ int, s sample.Sample) (bool, error) {
			_, ok := s.Get(key)

			return !ok, nil
		}, nil
	case "eq", "ne":
		key, want, ok := strings.Cut(rest, "=")
		if !ok {
			return nil, fmt.Errorf("%w: %q wants key=value", ErrFuncSpec, spec)
		}

		negate := verb == "ne"

		return func(_ int, s sample.Sample) (bool, error) {
			got, present, err := fieldString(s, key)
			if err != nil {
				return false, err
			}

			if !present {
				return negate, nil
			}

			return (got == want) != negate, nil
		}, nil
	default:
		return nil, fmt.Errorf("%w: unrecognized predicate verb %q", ErrFuncSpec, verb)
	}
}

// ParseKeyFunc builds a Sort/GroupBy key function from spec: "field:<key>"
// reads the string form of the item at key (missing keys sort/group as the
// empty string).
func ParseKeyFunc(spec string) (func(i int, s sample.Sample) (string, error), error) {
	verb, rest, _ := strings.Cut(spec, ":")
	if verb != "field" {
		return nil, fmt.Errorf("%w: unrecognized key-function verb %q", ErrFuncSpec, verb)
	}

	key := rest

	return func(_ int, s sample.Sample) (string, error) {
		v, _, err := fieldString(s, key)

		return v, err
	}, nil
}

// ParseMapper builds a Map mapper from spec, one of:
//   - "identity"                 pass the sample through unchanged
//   - "typeless"                 drop any schema (Sample.Typeless)
//   - "only:<k1>,<k2>,..."       keep only the listed keys, in the sample's own order
//   - "without:<k1>,<k2>,..."    drop the listed keys
//   - "remap:<old>=<new>,..."    rename keys (non-listed keys pass through)
func ParseMapper(spec string) (func(i int, s sample.Sample) (sample.Sample, error), error) {
	verb, rest, _ := strings.Cut(spec, ":")

	switch verb {
	case "identity":
		return func(_ int, s sample.Sample) (sample.Sample, error) { return s, nil }, nil
	case "typeless":
		return func(_ int, s sample.Sample) (sample.Sample, error) { return s.Typeless(), nil }, nil
	case "only":
		keys := splitNonEmpty(rest)

		return func(_ int, s sample.Sample) (sample.Sample, error) { return s.WithOnly(keys...), nil }, nil
	case "without":
		keys := splitNonEmpty(rest)

		return func(_ int, s sample.Sample) (sample.Sample, error) { return s.Without(keys...), nil }, nil
	case "remap":
		fromTo, err := parseRemap(rest)
		if err != nil {
			return nil, err
		}

		return func(_ int, s sample.Sample) (sample.Sample, error) { return s.Remap(fromTo, false), nil }, nil
	default:
		return nil, fmt.Errorf("%w: unrecognized mapper verb %q", ErrFuncSpec, verb)
	}
}

func splitNonEmpty(s string) []string {
	var out []string

	for _, part := range strings.Split(s, ",") {
		if part != "" {
			out = append(out, part)
		}
	}

	return out
}

func parseRemap(s string) (map[string]string, error) {
	fromTo := make(map[string]string)

	for _, pair := range strings.Split(s, ",") {
		if pair == "" {
			continue
		}

		from, to, ok := strings.Cut(pair, "=")
		if !ok {
			return nil, fmt.Errorf("%w: remap entry %q wants old=new", ErrFuncSpec, pair)
		}

		fromTo[from] = to
	}

	return fromTo, nil
}
