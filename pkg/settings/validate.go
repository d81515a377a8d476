package settings

import (
	"fmt"
	"sort"
)

// Validate checks a set of preference values for structural correctness.
func Validate(values map[string]any) []error {
	var errs []error

	for _, key := range sortedKeys(values) {
		d, ok := definitions[key]
		if !ok {
			errs = append(errs, fmt.Errorf("unknown key %q", key))
			continue
		}
		v := values[key]
		switch d.typ {
		case TypeInt:
			if _, ok := v.(int); !ok {
				errs = append(errs, fmt.Errorf("%s: must be an integer, got %v", key, v))
			}
		case TypeBool:
			if _, ok := v.(bool); !ok {
				errs = append(errs, fmt.Errorf("%s: must be true or false, got %v", key, v))
			}
		case TypeString:
			if _, ok := v.(string); !ok {
				errs = append(errs, fmt.Errorf("%s: must be a string, got %v", key, v))
			}
		}
	}

	if n, ok := values[MaxItemsPerSection].(int); ok && n < 1 {
		errs = append(errs, fmt.Errorf("%s: must be at least 1, got %d", MaxItemsPerSection, n))
	}

	system := boolOr(values, SystemdFilterSystemServices)
	user := boolOr(values, SystemdFilterUserServices)
	if !system && !user {
		errs = append(errs, fmt.Errorf("%s and %s cannot both be false", SystemdFilterSystemServices, SystemdFilterUserServices))
	}

	return errs
}

func boolOr(values map[string]any, key string) bool {
	if b, ok := values[key].(bool); ok {
		return b
	}
	b, _ := definitions[key].def.(bool)
	return b
}

func sortedKeys(values map[string]any) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
