package gitpress

import (
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Required front matter fields, in the order they are emitted.
var requiredFields = []string{"title", "date", "description", "topic"}

// MetaField is an unrecognized front matter key carried through opaquely.
type MetaField struct {
	Key   string
	Value string
}

// Meta is the parsed front matter of a post document. Extra holds unknown
// keys in the order they appeared, so serialization round-trips them.
type Meta struct {
	Title       string `json:"title"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Topic       string `json:"topic"`
	Published   bool   `json:"published"`
	Extra       []MetaField
}

// ParseDocument splits raw into front matter and body. The front matter
// block must open the document with a "---" line and close with another;
// anything else is ErrMalformed. The published field is coerced to a bool,
// defaulting to false when absent.
func ParseDocument(raw string) (Meta, string, error) {
	var m Meta

	if !strings.HasPrefix(raw, "---\n") {
		return m, "", fmt.Errorf("%w: missing front matter marker", ErrMalformed)
	}
	rest := raw[4:]
	end := closingMarker(rest)
	if end < 0 {
		return m, "", fmt.Errorf("%w: unterminated front matter block", ErrMalformed)
	}
	block := rest[:end]
	body := rest[end+4:]
	body = strings.TrimPrefix(body, "\n")

	// Decode via yaml.Node rather than a map so unknown keys keep their
	// document order.
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(block), &doc); err != nil {
		return m, "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return m, "", fmt.Errorf("%w: front matter is not a mapping", ErrMalformed)
	}

	mapping := doc.Content[0]
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := mapping.Content[i].Value
		value := mapping.Content[i+1].Value
		switch key {
		case "title":
			m.Title = value
		case "date":
			m.Date = value
		case "description":
			m.Description = value
		case "topic":
			m.Topic = value
		case "published":
			m.Published = value == "true"
		default:
			m.Extra = append(m.Extra, MetaField{Key: key, Value: value})
		}
	}
	return m, body, nil
}

// closingMarker finds the index in s of the "\n---" that closes the front
// matter block. The marker must be a complete line: "\n---\n" or "\n---"
// at end of input. A line that merely starts with "---" (a "----"
// horizontal rule, for one) does not close the block.
func closingMarker(s string) int {
	from := 0
	for {
		idx := strings.Index(s[from:], "\n---")
		if idx < 0 {
			return -1
		}
		pos := from + idx
		after := pos + 4
		if after == len(s) || s[after] == '\n' {
			return pos
		}
		from = pos + 1
	}
}

// Serialize is the inverse of ParseDocument. The emitted key order is fixed
// (title, date, description, topic, published, then extras in insertion
// order) so identical input always produces identical file text.
func (m Meta) Serialize(body string) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("title: " + m.Title + "\n")
	b.WriteString("date: " + m.Date + "\n")
	b.WriteString("description: " + m.Description + "\n")
	b.WriteString("topic: " + m.Topic + "\n")
	b.WriteString("published: " + strconv.FormatBool(m.Published) + "\n")
	for _, f := range m.Extra {
		b.WriteString(f.Key + ": " + f.Value + "\n")
	}
	b.WriteString("---\n")
	b.WriteString(body)
	return b.String()
}

// missingRequired returns the names of required fields that are empty.
func (m Meta) missingRequired() []string {
	var missing []string
	for _, f := range requiredFields {
		var v string
		switch f {
		case "title":
			v = m.Title
		case "date":
			v = m.Date
		case "description":
			v = m.Description
		case "topic":
			v = m.Topic
		}
		if strings.TrimSpace(v) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}
