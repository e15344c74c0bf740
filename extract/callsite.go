package extract

import (
	"iter"
	"regexp"
	"sort"
	"strings"
)

// Shape describes where a marker function keeps its translatable
// arguments, as indexes into the literals found in its argument list.
// A negative index means the role is not used by the marker.
type Shape struct {
	Plural  int
	Context int
}

var (
	shapePlain            = Shape{Plural: -1, Context: -1}
	shapeContextual       = Shape{Plural: -1, Context: 2}
	shapePlural           = Shape{Plural: 1, Context: -1}
	shapePluralContextual = Shape{Plural: 1, Context: 3}
	shapePluralNoopCtx    = Shape{Plural: 1, Context: 2}
)

// Markers maps each recognized marker function (lower case) to its shape.
// The contextual forms carry the text domain in the second slot, which is
// skipped even when it happens to be a literal.
var Markers = map[string]Shape{
	"__":         shapePlain,
	"_e":         shapePlain,
	"esc_html__": shapePlain,
	"esc_html_e": shapePlain,
	"esc_attr__": shapePlain,
	"esc_attr_e": shapePlain,

	"_x":         shapeContextual,
	"_ex":        shapeContextual,
	"esc_html_x": shapeContextual,
	"esc_attr_x": shapeContextual,

	"_n":      shapePlural,
	"_n_noop": shapePlural,

	"_nx":      shapePluralContextual,
	"_nx_noop": shapePluralNoopCtx,
}

var markerPattern = compileMarkers()

func compileMarkers() *regexp.Regexp {
	names := make([]string, 0, len(Markers))
	for name := range Markers {
		names = append(names, regexp.QuoteMeta(name))
	}
	// Longest first so that a shorter name never shadows a longer one.
	sort.Slice(names, func(i, j int) bool {
		if len(names[i]) != len(names[j]) {
			return len(names[i]) > len(names[j])
		}
		return names[i] < names[j]
	})
	return regexp.MustCompile(`(?i)\b(` + strings.Join(names, "|") + `)\s*\(`)
}

// Candidate is one marker call found in a source text.
type Candidate struct {
	// Marker is the lower-cased marker function name.
	Marker string
	MsgID  string
	Plural string
	// Context is the disambiguation tag, empty for the default context.
	Context string
	// Offset is the byte offset of the marker name in the source.
	Offset int
	// Unbalanced is set when the call's parentheses never close; its
	// argument list then runs to the end of the text.
	Unbalanced bool
}

// Scan returns the marker calls in src in source order. The sequence holds
// no state between iterations and may be ranged over any number of times.
func Scan(src string) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		pos := 0
		for pos < len(src) {
			m := markerPattern.FindStringSubmatchIndex(src[pos:])
			if m == nil {
				return
			}
			open := pos + m[1] // just past '('
			name := strings.ToLower(src[pos+m[2] : pos+m[3]])
			end, balanced := argumentSpan(src, open)

			c := classify(name, Literals(src[open:end]))
			c.Offset = pos + m[0]
			c.Unbalanced = !balanced
			if !yield(c) {
				return
			}
			// Resume inside the arguments so nested markers are found too.
			pos = open
		}
	}
}

// Candidates collects Scan(src) into a slice.
func Candidates(src string) []Candidate {
	var out []Candidate
	for c := range Scan(src) {
		out = append(out, c)
	}
	return out
}

// argumentSpan returns the end offset (exclusive, pointing at the closing
// parenthesis) of the argument list that starts at open. Nesting depth
// starts at 1. When depth never returns to zero the span extends to the
// end of src and balanced is false.
func argumentSpan(src string, open int) (end int, balanced bool) {
	depth := 1
	for i := open; i < len(src); i++ {
		switch src[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return len(src), false
}

// classify maps the literals of a call to their roles for the marker.
func classify(name string, lits []Literal) Candidate {
	shape, ok := Markers[name]
	if !ok {
		shape = shapePlain
	}
	c := Candidate{Marker: name}
	c.MsgID = literalAt(lits, 0)
	c.Plural = literalAt(lits, shape.Plural)
	c.Context = literalAt(lits, shape.Context)
	return c
}

func literalAt(lits []Literal, i int) string {
	if i < 0 || i >= len(lits) {
		return ""
	}
	return lits[i].Text
}
