package resolver

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/Zachacious/rs-respec/internal/model"
	"github.com/Zachacious/rs-respec/internal/syntax"
)

// serdeOptions collects the serde keys of one container, field or variant.
type serdeOptions struct {
	rename    *string
	renameAll string
	skip      bool
	flatten   bool
}

// parseSerde reads every #[serde(..)] attribute in attrs. Later keys win.
func parseSerde(attrs []*syntax.Attribute) serdeOptions {
	var opts serdeOptions
	for _, a := range attrs {
		if a.Inner || a.Name() != "serde" {
			continue
		}
		for _, m := range a.Metas() {
			switch m.Name() {
			case "rename":
				if v, ok := serializeValue(m); ok {
					opts.rename = &v
				}
			case "rename_all":
				if v, ok := serializeValue(m); ok {
					opts.renameAll = v
				}
			case "skip", "skip_serializing", "skip_deserializing":
				opts.skip = true
			case "flatten":
				opts.flatten = true
			}
		}
	}
	return opts
}

// serializeValue returns the value of `key = "v"`, or the serialize half of
// `key(serialize = "a", deserialize = "b")`.
func serializeValue(m syntax.Meta) (string, bool) {
	if !m.IsList {
		return m.StringValue()
	}
	for _, inner := range m.List {
		if inner.Name() == "serialize" {
			return inner.StringValue()
		}
	}
	return "", false
}

func (o serdeOptions) attrs() model.SerdeAttrs {
	return model.SerdeAttrs{Rename: o.rename, Skip: o.skip, Flatten: o.flatten}
}

// applyRenameAll converts name to the serde rule. Field names are split at
// underscores; variant names are split before each upper-case letter.
// Unknown rules leave the name unchanged.
func applyRenameAll(name, rule string, variant bool) string {
	var words []string
	if variant {
		words = splitPascal(name)
	} else {
		words = strings.FieldsFunc(name, func(r rune) bool { return r == '_' })
	}
	if len(words) == 0 {
		return name
	}

	// Casers keep state, so each conversion gets its own.
	lower, upper := cases.Lower(language.Und), cases.Upper(language.Und)
	switch rule {
	case "lowercase":
		return lower.String(name)
	case "UPPERCASE":
		return upper.String(name)
	case "PascalCase":
		return joinTitled(words)
	case "camelCase":
		return lower.String(words[0]) + joinTitled(words[1:])
	case "snake_case":
		return joinMapped(words, lower, "_")
	case "SCREAMING_SNAKE_CASE":
		return joinMapped(words, upper, "_")
	case "kebab-case":
		return joinMapped(words, lower, "-")
	case "SCREAMING-KEBAB-CASE":
		return joinMapped(words, upper, "-")
	}
	return name
}

func splitPascal(name string) []string {
	var words []string
	start := 0
	for i, r := range name {
		if i > 0 && unicode.IsUpper(r) {
			words = append(words, name[start:i])
			start = i
		}
	}
	return append(words, name[start:])
}

func joinTitled(words []string) string {
	title := cases.Title(language.Und)
	var sb strings.Builder
	for _, w := range words {
		sb.WriteString(title.String(w))
	}
	return sb.String()
}

func joinMapped(words []string, c cases.Caser, sep string) string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = c.String(w)
	}
	return strings.Join(out, sep)
}
