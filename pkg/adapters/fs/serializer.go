package fs

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/aretw0/remindme/pkg/core"
)

const frontmatterDelim = "---"

// parseMarkdown splits a markdown file into its YAML frontmatter and body.
// It also returns the raw frontmatter block (delimiters included) so that an
// unchanged header can be written back exactly as the user left it.
func parseMarkdown(data []byte) (core.Note, []byte, error) {
	n := core.Note{Metadata: make(core.Metadata)}

	first, rest, ok := cutLine(data)
	if !ok || string(bytes.TrimRight(first, "\r")) != frontmatterDelim {
		n.Content = string(data)
		return n, nil, nil
	}

	offset := len(data) - len(rest)
	for len(rest) > 0 {
		line, next, _ := cutLine(rest)
		if string(bytes.TrimRight(line, "\r")) == frontmatterDelim {
			yamlData := data[offset : len(data)-len(rest)]
			if err := yaml.Unmarshal(yamlData, &n.Metadata); err != nil {
				return core.Note{}, nil, fmt.Errorf("failed to parse frontmatter: %w", err)
			}
			if n.Metadata == nil {
				n.Metadata = make(core.Metadata)
			}
			end := len(data) - len(next)
			n.Content = string(next)
			return n, data[:end], nil
		}
		rest = next
	}
	return core.Note{}, nil, errors.New("frontmatter started but no closing delimiter found")
}

// cutLine returns the first line of data without its '\n', the remainder, and
// whether a newline was found.
func cutLine(data []byte) (line, rest []byte, found bool) {
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return data[:i], data[i+1:], true
	}
	return data, nil, false
}

// serializeMarkdown renders a note. A non-nil frontmatter block is used verbatim.
func serializeMarkdown(n core.Note, frontmatter []byte) ([]byte, error) {
	var buf bytes.Buffer
	switch {
	case frontmatter != nil:
		buf.Write(frontmatter)
	case len(n.Metadata) > 0:
		buf.WriteString(frontmatterDelim + "\n")
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(map[string]any(n.Metadata)); err != nil {
			return nil, err
		}
		if err := encoder.Close(); err != nil {
			return nil, err
		}
		buf.WriteString(frontmatterDelim + "\n")
	}
	buf.WriteString(n.Content)
	return buf.Bytes(), nil
}
