// Package chunker turns structured runbook markdown into size-bounded
// semantic chunks. The splitter is a line-oriented state machine rather than
// a regex pass so that fenced code blocks are never split, regardless of
// what they contain.
package chunker

import (
	"strings"
)

const (
	// DefaultMinChunkSize is the merge-up threshold in characters.
	DefaultMinChunkSize = 100
	// DefaultMaxChunkSize is the split threshold in characters.
	DefaultMaxChunkSize = 2000

	introductionTitle = "Introduction"
	continuationMark  = " (cont.)"
)

// ParsedChunk is one emitted chunk before embedding.
type ParsedChunk struct {
	SectionTitle     string
	Content          string
	Tags             []string
	ApplicableShapes []string
}

// Chunker splits markdown documents deterministically.
type Chunker struct {
	minSize int
	maxSize int
}

// New creates a Chunker. Non-positive bounds fall back to the defaults.
func New(minSize, maxSize int) *Chunker {
	if minSize <= 0 {
		minSize = DefaultMinChunkSize
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxChunkSize
	}
	if maxSize < minSize {
		maxSize = minSize
	}
	return &Chunker{minSize: minSize, maxSize: maxSize}
}

// Chunk parses a runbook document into ordered chunks. Every chunk inherits
// the document's front-matter tags and applicable shapes. Identical input
// and bounds always produce identical output.
func (c *Chunker) Chunk(doc string) []ParsedChunk {
	fm, body := extractFrontMatter(doc)
	sections := splitSections(body)

	var chunks []ParsedChunk
	emit := func(title, content string) {
		for i, part := range c.splitOversize(content) {
			partTitle := title
			if i > 0 {
				partTitle = title + continuationMark
			}
			chunks = append(chunks, ParsedChunk{
				SectionTitle:     partTitle,
				Content:          part,
				Tags:             append([]string{}, fm.Tags...),
				ApplicableShapes: append([]string{}, fm.ApplicableShapes...),
			})
		}
	}

	var buf strings.Builder
	bufTitle := ""
	flush := func() {
		if buf.Len() > 0 {
			emit(bufTitle, buf.String())
			buf.Reset()
		}
	}

	for _, sec := range sections {
		if strings.TrimSpace(sec.content) == "" {
			continue
		}
		if buf.Len() > 0 && buf.Len()+len(sec.content) > c.maxSize {
			flush()
		}
		if buf.Len() == 0 {
			bufTitle = sec.title
		} else {
			buf.WriteString("\n\n")
		}
		buf.WriteString(sec.content)
		if buf.Len() >= c.minSize {
			flush()
		}
	}

	// A trailing buffer below min merges into the previously emitted chunk;
	// with no prior chunk it is emitted as-is.
	if buf.Len() > 0 {
		if len(chunks) > 0 {
			chunks[len(chunks)-1].Content += "\n\n" + buf.String()
		} else {
			emit(bufTitle, buf.String())
		}
	}

	return chunks
}

// section is one header-delimited partition of the body.
type section struct {
	title   string
	content string
}

// splitSections partitions the body at ## and ### headers. Header lines that
// appear inside fenced code blocks are content, not headers. The header line
// itself stays in the section content so emitted chunks cover the whole body.
func splitSections(body string) []section {
	lines := strings.SplitAfter(body, "\n")

	var sections []section
	var cur strings.Builder
	curTitle := introductionTitle
	inFence := false

	finish := func() {
		if cur.Len() > 0 {
			sections = append(sections, section{title: curTitle, content: strings.TrimRight(cur.String(), "\n")})
			cur.Reset()
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimRight(line, "\r\n")
		if isFenceLine(trimmed) {
			inFence = !inFence
			cur.WriteString(line)
			continue
		}
		if !inFence {
			if title, ok := headerTitle(trimmed); ok {
				finish()
				curTitle = title
				cur.WriteString(line)
				continue
			}
		}
		cur.WriteString(line)
	}
	finish()

	return sections
}

func isFenceLine(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t"), "```")
}

func headerTitle(line string) (string, bool) {
	if rest, ok := strings.CutPrefix(line, "### "); ok {
		return strings.TrimSpace(rest), true
	}
	if rest, ok := strings.CutPrefix(line, "## "); ok {
		return strings.TrimSpace(rest), true
	}
	return "", false
}

// splitOversize breaks content into parts of at most maxSize characters,
// preferring a paragraph boundary at least minSize characters in and never
// cutting inside a fenced code block. A fence too large to fit is force-
// included whole in a single part, which may exceed maxSize.
func (c *Chunker) splitOversize(content string) []string {
	if len(content) <= c.maxSize {
		return []string{content}
	}

	fences := fenceSpans(content)

	var parts []string
	rest := content
	restOffset := 0
	for len(rest) > c.maxSize {
		cut := c.findCut(rest, restOffset, fences)
		if cut <= 0 || cut >= len(rest) {
			break
		}
		parts = append(parts, strings.TrimRight(rest[:cut], "\n"))
		next := strings.TrimLeft(rest[cut:], "\n")
		restOffset += len(rest) - len(next)
		rest = next
	}
	if rest != "" {
		parts = append(parts, rest)
	}
	return parts
}

// findCut picks a split position in rest (whose absolute start is offset).
// Preference order: last paragraph boundary within [minSize, maxSize], else
// the hard maxSize limit, in both cases shifted out of any intersecting
// code fence.
func (c *Chunker) findCut(rest string, offset int, fences []span) int {
	window := rest[:c.maxSize]
	cut := -1
	if idx := strings.LastIndex(window, "\n\n"); idx >= c.minSize {
		cut = idx
	}
	if cut == -1 {
		cut = c.maxSize
	}

	// Shift the cut out of an intersecting fence: keep the whole block on
	// the left when its start is too early to cut before, otherwise cut
	// right before the block.
	for _, f := range fences {
		start, end := f.start-offset, f.end-offset
		if start < cut && cut < end {
			if start >= c.minSize {
				cut = start
			} else {
				cut = end
				if cut > len(rest) {
					cut = len(rest)
				}
			}
			break
		}
	}
	return cut
}

// span is a half-open [start, end) byte range of a fenced code block,
// including both fence lines.
type span struct {
	start, end int
}

func fenceSpans(content string) []span {
	var spans []span
	offset := 0
	open := -1
	for _, line := range strings.SplitAfter(content, "\n") {
		if isFenceLine(strings.TrimRight(line, "\r\n")) {
			if open == -1 {
				open = offset
			} else {
				spans = append(spans, span{start: open, end: offset + len(line)})
				open = -1
			}
		}
		offset += len(line)
	}
	if open != -1 {
		// Unclosed fence runs to the end of the document.
		spans = append(spans, span{start: open, end: len(content)})
	}
	return spans
}
