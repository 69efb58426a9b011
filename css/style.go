package css

import (
	"errors"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"golang.org/x/net/html"
)

// ParseStyle parses inline style attribute value into a table of CSS
// declarations. Property names are lower-cased, values are kept raw (minus
// "!important"), the last declaration of a property wins.
//
// Entities are decoded before the text is split into declarations, browsers
// accept encoded separators: <span style="text-decoration&#58;underline&#59;color:red">.
func ParseStyle(raw string) *Attributes {
	attrs := NewAttributes()
	if strings.TrimSpace(raw) == "" {
		return attrs
	}

	decoded := html.UnescapeString(raw)

	parser := css.NewParser(parse.NewInputString(decoded), true)
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			// syntax errors are local to a declaration, parser resynchronizes
			// on the next ';' - everything else (EOF included) ends the input
			var perr *parse.Error
			if errors.As(parser.Err(), &perr) {
				continue
			}
			return attrs

		case css.DeclarationGrammar:
			name := strings.ToLower(strings.TrimSpace(string(data)))
			if name == "" {
				continue
			}
			value := declarationValue(parser.Values())
			if value == "" {
				continue
			}
			attrs.values[name] = value

		case css.CustomPropertyGrammar:
			// --var: value, not interpreted
			continue
		}
	}
}

// declarationValue rebuilds raw value text from tokens collapsing whitespace
// and dropping "!important" priority.
func declarationValue(tokens []css.Token) string {
	var sb strings.Builder
	space := false
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken {
			space = sb.Len() > 0
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.Write(t.Data)
	}
	value := strings.TrimSpace(sb.String())

	lower := strings.ToLower(value)
	if i := strings.LastIndex(lower, "!"); i >= 0 && strings.TrimSpace(lower[i+1:]) == "important" {
		value = strings.TrimSpace(value[:i])
	}
	return value
}

// unquote removes surrounding quotes from a string.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) < 2 {
		return s
	}
	if (s[0] == '"' && s[len(s)-1] == '"') ||
		(s[0] == '\'' && s[len(s)-1] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}
