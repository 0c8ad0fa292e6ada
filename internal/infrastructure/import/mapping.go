package dataimport

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Mapping maps a source column header to a target field name.
// Columns mapped to "" are ignored.
type Mapping map[string]string

var (
	stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folder     = cases.Fold()
)

// NormalizeHeader reduces a header to a comparison key: accents stripped,
// case folded and everything but letters and digits dropped, so
// "Prénom", "First_Name" and "first name" compare by their letters alone.
func NormalizeHeader(s string) string {
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}
	s = folder.String(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SuggestMapping matches headers to fields. Exact name or label matches win
// over alias matches, and each field is claimed by at most one column.
func SuggestMapping(fields []Field, headers []string) Mapping {
	primary := make(map[string]string)
	alias := make(map[string]string)
	for _, f := range fields {
		primary[NormalizeHeader(f.Name)] = f.Name
		primary[NormalizeHeader(f.Label)] = f.Name
	}
	for _, f := range fields {
		for _, a := range f.Aliases {
			key := NormalizeHeader(a)
			if _, taken := primary[key]; taken {
				continue
			}
			if _, taken := alias[key]; !taken {
				alias[key] = f.Name
			}
		}
	}

	mapping := make(Mapping, len(headers))
	claimed := make(map[string]bool)
	for _, lookup := range []map[string]string{primary, alias} {
		for _, h := range headers {
			if _, done := mapping[h]; done {
				continue
			}
			if name, ok := lookup[NormalizeHeader(h)]; ok && !claimed[name] {
				mapping[h] = name
				claimed[name] = true
			}
		}
	}
	for _, h := range headers {
		if _, ok := mapping[h]; !ok {
			mapping[h] = ""
		}
	}
	return mapping
}

// ValidateMapping checks that every mapped column exists, every target is
// a known field mapped at most once and every required field is mapped.
func ValidateMapping(fields []Field, headers []string, mapping Mapping) error {
	known := fieldIndex(fields)
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	var problems []string
	targets := make(map[string][]string)
	for source, target := range mapping {
		if target == "" {
			continue
		}
		if !present[source] {
			problems = append(problems, fmt.Sprintf("column %q is not in the file", source))
			continue
		}
		if _, ok := known[target]; !ok {
			problems = append(problems, fmt.Sprintf("field %q does not exist", target))
			continue
		}
		targets[target] = append(targets[target], source)
	}
	for target, sources := range targets {
		if len(sources) > 1 {
			sort.Strings(sources)
			problems = append(problems, fmt.Sprintf("field %q is mapped from several columns: %s", target, strings.Join(sources, ", ")))
		}
	}
	for _, f := range fields {
		if f.Required && len(targets[f.Name]) == 0 {
			problems = append(problems, fmt.Sprintf("required field %q is not mapped", f.Name))
		}
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("%w: %s", ErrInvalidMapping, strings.Join(problems, "; "))
	}
	return nil
}

// ParseMappingPairs reads "column=field" pairs as given on the command line
func ParseMappingPairs(pairs []string) (Mapping, error) {
	m := make(Mapping, len(pairs))
	for _, p := range pairs {
		source, target, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(source) == "" {
			return nil, fmt.Errorf("%w: %q is not column=field", ErrInvalidMapping, p)
		}
		m[strings.TrimSpace(source)] = strings.TrimSpace(target)
	}
	return m, nil
}
