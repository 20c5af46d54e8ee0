package scaffold

import (
	"regexp"
	"strings"
)

// placeholder matches $$, $NAME and ${NAME}.
var placeholder = regexp.MustCompile(`\$(?:(\$)|([_a-zA-Z][_a-zA-Z0-9]*)|\{([_a-zA-Z][_a-zA-Z0-9]*)\})`)

// Substitute replaces $NAME and ${NAME} with values from ctx. Unknown names
// and stray dollar signs are left untouched; $$ becomes a single $.
func Substitute(text string, ctx Context) string {
	if !strings.Contains(text, "$") {
		return text
	}
	matches := placeholder.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m[0]])
		last = m[1]

		switch {
		case m[2] >= 0:
			b.WriteByte('$')
		case m[4] >= 0:
			writeValue(&b, ctx, text[m[4]:m[5]], text[m[0]:m[1]])
		case m[6] >= 0:
			writeValue(&b, ctx, text[m[6]:m[7]], text[m[0]:m[1]])
		}
	}
	b.WriteString(text[last:])
	return b.String()
}

func writeValue(b *strings.Builder, ctx Context, key, original string) {
	if v, ok := ctx[key]; ok {
		b.WriteString(v)
		return
	}
	b.WriteString(original)
}

// Placeholders returns the distinct placeholder names referenced in text in
// order of first appearance.
func Placeholders(text string) []string {
	var names []string
	seen := map[string]bool{}
	for _, m := range placeholder.FindAllStringSubmatch(text, -1) {
		name := m[2]
		if name == "" {
			name = m[3]
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}
