package extract

import (
	"regexp"
	"strings"

	"github.com/eduvault/eduvault-api/internal/models"
)

// locator resolves a single field against a parsed document. A nil result
// means the heuristic found nothing.
type locator func(d *document) *string

type rule struct {
	field  string
	locate locator
}

type document struct {
	text  string
	lines []string
}

var lineBreak = regexp.MustCompile(`\r?\n`)

func newDocument(text string) *document {
	return &document{text: text, lines: lineBreak.Split(text, -1)}
}

// Extract runs the kind's field schema over raw document text. It never
// fails: every schema field is present in the result, with a nil value when
// the heuristic could not locate it. Unknown kinds yield an empty map.
func Extract(kind models.Kind, text string) models.FieldMap {
	fields := models.FieldMap{}
	schema, ok := schemas[kind]
	if !ok {
		return fields
	}
	doc := newDocument(text)
	for _, r := range schema {
		fields[r.field] = r.locate(doc)
	}
	return fields
}

func trimmed(s string) *string {
	t := strings.TrimSpace(s)
	return &t
}

// labelValue matches "label <whitespace> value" where value follows the label
// after at least one whitespace character. First match wins.
func labelValue(label, pattern string) locator {
	re := regexp.MustCompile(`(?i)` + label + `\s+(` + pattern + `)`)
	return func(d *document) *string {
		if m := re.FindStringSubmatch(d.text); m != nil {
			return trimmed(m[1])
		}
		return nil
	}
}

// labelTight is labelValue with optional whitespace between label and value,
// for layouts where the value can abut the label.
func labelTight(label, pattern string) locator {
	re := regexp.MustCompile(`(?is)` + label + `\s*(` + pattern + `)`)
	return func(d *document) *string {
		if m := re.FindStringSubmatch(d.text); m != nil {
			return trimmed(m[1])
		}
		return nil
	}
}

// match applies a standalone pattern anywhere in the text and returns the
// first capture group, or the whole match when the pattern has no group.
func match(expr string) locator {
	re := regexp.MustCompile(`(?is)` + expr)
	return func(d *document) *string {
		m := re.FindStringSubmatch(d.text)
		if m == nil {
			return nil
		}
		if len(m) > 1 {
			return trimmed(m[1])
		}
		return trimmed(m[0])
	}
}

// firstOf tries locators in order and keeps the first hit.
func firstOf(locators ...locator) locator {
	return func(d *document) *string {
		for _, loc := range locators {
			if v := loc(d); v != nil {
				return v
			}
		}
		return nil
	}
}

// fullLine returns the first line that matches the pattern in its entirety.
func fullLine(expr string) locator {
	re := regexp.MustCompile(`^(?:` + expr + `)$`)
	return func(d *document) *string {
		for _, line := range d.lines {
			if re.MatchString(line) {
				return trimmed(line)
			}
		}
		return nil
	}
}

// labelScan handles tabular layouts where the value sits on the label's own
// line or on one of the next two lines. A candidate line repeating the label
// is skipped, and scanning resumes at later label occurrences when an
// occurrence yields nothing.
func labelScan(label string) locator {
	upper := strings.ToUpper(label)
	strip := regexp.MustCompile(`(?i)` + label)
	return func(d *document) *string {
		for i, raw := range d.lines {
			line := strings.TrimSpace(raw)
			if !strings.Contains(strings.ToUpper(line), upper) {
				continue
			}
			if cleaned := strings.TrimSpace(strip.ReplaceAllString(line, "")); cleaned != "" {
				return &cleaned
			}
			for off := 1; off <= 2; off++ {
				if i+off >= len(d.lines) {
					break
				}
				next := strings.TrimSpace(d.lines[i+off])
				if next != "" && !strings.Contains(strings.ToUpper(next), upper) {
					return &next
				}
			}
		}
		return nil
	}
}
