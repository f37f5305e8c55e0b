package catalog

import (
	"regexp"
	"sort"
	"strconv"
)

var digitRun = regexp.MustCompile(`\d+`)

// naturalToken is one piece of a string split on runs of digits: either a
// parsed number or a literal substring between numbers.
type naturalToken struct {
	isNum bool
	num   int64
	str   string
}

// naturalTokens splits s the way original_source/generate_data.py's
// sort_shapefiles does with re.split(r'(\d+)', shapefile), except each
// digit run is parsed up front (that function's strtoi) instead of at
// comparison time.
func naturalTokens(s string) []naturalToken {
	idx := digitRun.FindAllStringIndex(s, -1)
	tokens := make([]naturalToken, 0, 2*len(idx)+1)
	pos := 0
	for _, m := range idx {
		if m[0] > pos {
			tokens = append(tokens, naturalToken{str: s[pos:m[0]]})
		}
		n, _ := strconv.ParseInt(s[m[0]:m[1]], 10, 64)
		tokens = append(tokens, naturalToken{isNum: true, num: n})
		pos = m[1]
	}
	if pos < len(s) {
		tokens = append(tokens, naturalToken{str: s[pos:]})
	}
	return tokens
}

// naturalLess reports whether a sorts before b under natural-numeric
// ordering: a run of digits compares by value, everything else compares
// lexicographically, so "...12_..." sorts after "...9_..." instead of
// before it.
func naturalLess(a, b string) bool {
	ta, tb := naturalTokens(a), naturalTokens(b)
	for i := 0; i < len(ta) && i < len(tb); i++ {
		x, y := ta[i], tb[i]
		if x.isNum && y.isNum {
			if x.num != y.num {
				return x.num < y.num
			}
			continue
		}
		if x.str != y.str {
			return x.str < y.str
		}
	}
	return len(ta) < len(tb)
}

// NaturalSortStrings sorts ss in place by natural-numeric key (spec.md
// §5): the cycle/pass/tile numbers embedded in a granule filename compare
// by value rather than lexicographically, so CycleIndexer assigns dense
// cycle/pass ids in the same first-appearance order run to run regardless
// of how wide the filename's numeric fields are zero-padded.
func NaturalSortStrings(ss []string) {
	sort.Slice(ss, func(i, j int) bool { return naturalLess(ss[i], ss[j]) })
}
