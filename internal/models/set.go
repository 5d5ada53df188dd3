package models

import "slices"

// Contains reports whether v is in set.
func Contains(set []string, v string) bool {
	return slices.Contains(set, v)
}

// Union returns set with every value of add not already present appended in
// order. The input slice is not modified.
func Union(set []string, add ...string) []string {
	out := make([]string, 0, len(set)+len(add))
	out = append(out, set...)
	for _, v := range add {
		if v == "" || slices.Contains(out, v) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// Remove returns set without any of the given values.
func Remove(set []string, drop ...string) []string {
	out := make([]string, 0, len(set))
	for _, v := range set {
		if !slices.Contains(drop, v) {
			out = append(out, v)
		}
	}
	return out
}

// Dedup keeps the first occurrence of each non-empty value.
func Dedup(values []string) []string {
	return Union(nil, values...)
}
