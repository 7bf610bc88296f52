package chunker

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// frontMatter holds the recognized YAML front-matter keys of a runbook.
type frontMatter struct {
	Title            string   `yaml:"title"`
	Tags             []string `yaml:"tags"`
	ApplicableShapes []string `yaml:"applicable_shapes"`
}

// extractFrontMatter parses a leading `---` fenced YAML block.
// Returns the parsed metadata and the body with the block removed.
// Documents without front-matter (or with an unparseable block) come back
// unchanged with empty metadata.
func extractFrontMatter(doc string) (frontMatter, string) {
	var fm frontMatter

	rest, ok := strings.CutPrefix(doc, "---\n")
	if !ok {
		rest, ok = strings.CutPrefix(doc, "---\r\n")
		if !ok {
			return fm, doc
		}
	}

	// The closing fence is a line consisting of "---".
	end := -1
	offset := 0
	for _, line := range strings.SplitAfter(rest, "\n") {
		if strings.TrimRight(line, "\r\n") == "---" {
			end = offset
			offset += len(line)
			break
		}
		offset += len(line)
	}
	if end == -1 {
		return frontMatter{}, doc
	}

	block := rest[:end]
	body := rest[offset:]

	if err := yaml.Unmarshal([]byte(block), &fm); err != nil {
		return frontMatter{}, doc
	}
	if fm.Tags == nil {
		fm.Tags = []string{}
	}
	if fm.ApplicableShapes == nil {
		fm.ApplicableShapes = []string{}
	}
	return fm, body
}
