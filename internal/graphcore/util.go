package graphcore

import "sort"

// sortStrings sorts s in place. Construction needs a handful of
// deterministic orderings over address strings; wrapping sort.Strings
// keeps those call sites terse.
func sortStrings(s []string) {
	sort.Strings(s)
}
