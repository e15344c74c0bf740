package extract

import "strings"

// Literal is a quoted string token found inside a call's argument span.
type Literal struct {
	// Text is the unescaped, trimmed body with raw line breaks removed.
	Text string
	// Start is the offset of the opening quote within the span.
	Start int
	// End is the offset just past the closing quote within the span.
	End int
}

// NextLiteral returns the first well-formed quoted literal that starts at or
// after offset within span. Both ' and " open a literal; a backslash escapes
// the following character, and only an unescaped quote of the opening kind
// closes it. A quote that is never closed inside span does not form a
// literal, and scanning continues after it. ok is false when no literal
// remains.
func NextLiteral(span string, offset int) (lit Literal, ok bool) {
	for start := offset; start < len(span); start++ {
		q := span[start]
		if q != '\'' && q != '"' {
			continue
		}
		end, closed := closingQuote(span, start+1, q)
		if !closed {
			continue
		}
		return Literal{
			Text:  NormalizeLiteral(span[start+1 : end]),
			Start: start,
			End:   end + 1,
		}, true
	}
	return Literal{}, false
}

// Literals collects every literal in span, left to right.
func Literals(span string) []Literal {
	var out []Literal
	for pos := 0; ; {
		lit, ok := NextLiteral(span, pos)
		if !ok {
			return out
		}
		out = append(out, lit)
		pos = lit.End
	}
}

// closingQuote finds the unescaped quote q at or after i.
func closingQuote(span string, i int, q byte) (int, bool) {
	for i < len(span) {
		switch span[i] {
		case '\\':
			if i+1 < len(span) {
				i += 2
				continue
			}
			// A trailing backslash escapes nothing.
			i++
		case q:
			return i, true
		default:
			i++
		}
	}
	return 0, false
}

// NormalizeLiteral resolves \' \" and \\ to their literal characters,
// drops raw CR/LF and trims surrounding whitespace. Other escape sequences
// are kept verbatim since their meaning depends on the quote style.
func NormalizeLiteral(body string) string {
	if body == "" {
		return ""
	}
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body) && (body[i+1] == '\'' || body[i+1] == '"' || body[i+1] == '\\'):
			b.WriteByte(body[i+1])
			i++
		case c == '\r' || c == '\n':
		default:
			b.WriteByte(c)
		}
	}
	return strings.TrimSpace(b.String())
}
