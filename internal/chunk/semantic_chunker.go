package chunk

import (
	"math"
	"regexp"
	"sort"
	"strings"
)

var (
	headerH1        = regexp.MustCompile(`^#\s+(.+)$`)
	headerH2        = regexp.MustCompile(`^##\s+(.+)$`)
	headerH3Plus    = regexp.MustCompile(`^#{3,6}\s+(.+)$`)
	headerAllCaps   = regexp.MustCompile(`^([A-Z][A-Z\s]{2,}):?$`)
	headerNumbered  = regexp.MustCompile(`^(\d+)\.\s+([A-Z].+)$`)
	headerSubNumber = regexp.MustCompile(`^(\d+\.\d+)\s+(.+)$`)
	headerRoman     = regexp.MustCompile(`^([IVXLCDM]+)\.\s+(.+)$`)
	headerChapter   = regexp.MustCompile(`^Chapter\s+\d+(?::\s*(.+))?$`)
	headerSection   = regexp.MustCompile(`^Section\s+\d+(?::\s*(.+))?$`)

	tableLinePattern = regexp.MustCompile(`\|.*\|.*\|`)
	tableRulePattern = regexp.MustCompile(`\+[-=]+\+`)
	codeFencePattern = regexp.MustCompile("^```")

	definitionPattern = regexp.MustCompile(`^([A-Z][\w\s\-]+)\s*[:–—]\s+(.{20,})`)
	sentenceEnd       = regexp.MustCompile(`(?:[.!?])\s+[A-Z]`)

	stripLeadingMarkup = regexp.MustCompile(`^[#\d.\s\-:]+`)

	techMarkers = []string{
		"example", "important", "note", "warning", "definition",
		"algorithm", "protocol", "syntax", "command", "function",
	}
)

// headerDetection matches a pattern to the stack level it implies.
type headerDetection struct {
	re    *regexp.Regexp
	level int
}

var headerDetections = []headerDetection{
	{headerH1, 1},
	{headerH2, 2},
	{headerH3Plus, 3},
	{headerAllCaps, 1},
	{headerNumbered, 2},
	{headerSubNumber, 3},
	{headerRoman, 2},
	{headerChapter, 1},
	{headerSection, 2},
}

// SemanticChunker turns a page of extracted text into an ordered list of
// Chunks, tracking a 3-deep header stack and never splitting a code fence or
// table mid-block.
type SemanticChunker struct {
	ChunkSize    int
	ChunkOverlap int
	MinChunkSize int
}

// NewSemanticChunker builds a chunker with the package defaults.
func NewSemanticChunker() *SemanticChunker {
	return &SemanticChunker{
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
		MinChunkSize: DefaultMinChunkSize,
	}
}

// detectHeader tries each header pattern in priority order and returns the
// cleaned title and stack level, or ok=false if no pattern matches.
func detectHeader(line string) (title string, level int, ok bool) {
	trimmed := strings.TrimRight(line, " \t")
	for _, d := range headerDetections {
		m := d.re.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		var raw string
		switch {
		case len(m) > 2 && m[2] != "":
			raw = m[2]
		case len(m) > 1 && m[1] != "":
			raw = m[1]
		default:
			raw = trimmed
		}
		cleaned := strings.TrimSpace(stripLeadingMarkup.ReplaceAllString(raw, ""))
		if cleaned == "" {
			continue
		}
		return cleaned, d.level, true
	}
	return "", 0, false
}

// ChunkText splits page text into an ordered list of Chunks. It is pure:
// output depends only on text, page, filename and the chunker's parameters.
func (c *SemanticChunker) ChunkText(text string, page int, filename string) []*Chunk {
	if len(strings.TrimSpace(text)) < 30 {
		return nil
	}

	var chunks []*Chunk
	headerStack := [3]string{}

	var buf strings.Builder
	chunkStart := 0
	cursor := 0
	inCode := false
	inTable := false

	parentHeader := func() string {
		for i := 0; i < 3; i++ {
			if headerStack[i] != "" {
				return headerStack[i]
			}
		}
		return ""
	}
	currentHeader := func() string {
		for i := 2; i >= 0; i-- {
			if headerStack[i] != "" {
				return headerStack[i]
			}
		}
		return ""
	}

	flush := func(chunkType ContentType) {
		content := strings.TrimSpace(buf.String())
		buf.Reset()
		if len(content) < c.MinChunkSize {
			chunkStart = cursor
			return
		}
		header := currentHeader()
		parent := parentHeader()
		if parent == header {
			parent = ""
		}
		text := content
		if header != "" {
			text = "## " + header + "\n\n" + content
		}
		ch := &Chunk{
			Text:          text,
			Page:          page,
			Filename:      filename,
			Header:        header,
			ParentHeader:  parent,
			ChunkType:     chunkType,
			CharStart:     chunkStart,
			CharEnd:       chunkStart + len(content),
			SentenceCount: countSentences(content),
		}
		ch.ImportanceScore = computeImportance(ch)
		chunks = append(chunks, ch)
		chunkStart = cursor
	}

	lines := strings.Split(text, "\n")
	for idx, line := range lines {
		lineLen := len(line) + 1
		isCodeFenceLine := codeFencePattern.MatchString(strings.TrimSpace(line))
		isTableLine := tableLinePattern.MatchString(line) || tableRulePattern.MatchString(line)

		switch {
		case isCodeFenceLine:
			if !inCode {
				flush(currentFlushType(inTable))
				inCode = true
				buf.WriteString(line)
				buf.WriteString("\n")
			} else {
				buf.WriteString(line)
				buf.WriteString("\n")
				flush(ContentTypeCode)
				inCode = false
			}
		case inCode:
			buf.WriteString(line)
			buf.WriteString("\n")
		case isTableLine:
			if !inTable {
				flush(ContentTypeParagraph)
				inTable = true
			}
			buf.WriteString(line)
			buf.WriteString("\n")
		case inTable && !isTableLine:
			flush(ContentTypeTable)
			inTable = false
			if title, level, ok := detectHeader(line); ok {
				setHeader(&headerStack, title, level)
			} else if strings.TrimSpace(line) != "" {
				buf.WriteString(line)
				buf.WriteString("\n")
			}
		default:
			if title, level, ok := detectHeader(line); ok {
				flush(ContentTypeParagraph)
				setHeader(&headerStack, title, level)
			} else if strings.TrimSpace(line) == "" {
				// blank lines are dropped, not carried into chunk content
			} else {
				if buf.Len()+lineLen <= c.ChunkSize {
					buf.WriteString(line)
					buf.WriteString("\n")
				} else {
					combined := buf.String() + line
					first, rest := splitAtSentenceBoundary(combined, c.ChunkSize, c.MinChunkSize)
					buf.Reset()
					buf.WriteString(first)
					flush(ContentTypeParagraph)
					overlap := rest
					if len(first) > c.ChunkOverlap {
						overlap = first[len(first)-c.ChunkOverlap:] + rest
					}
					buf.WriteString(overlap)
				}
			}
		}

		cursor += lineLen
		_ = idx
	}

	switch {
	case inCode:
		flush(ContentTypeCode)
	case inTable:
		flush(ContentTypeTable)
	default:
		flush(ContentTypeParagraph)
	}

	return chunks
}

func currentFlushType(inTable bool) ContentType {
	if inTable {
		return ContentTypeTable
	}
	return ContentTypeParagraph
}

func setHeader(stack *[3]string, title string, level int) {
	idx := level - 1
	if idx > 2 {
		idx = 2
	}
	if idx < 0 {
		idx = 0
	}
	stack[idx] = title
	for i := idx + 1; i < 3; i++ {
		stack[i] = ""
	}
}

// splitAtSentenceBoundary picks the boundary closest to target among all
// sentence-end offsets (plus 0 and len(text)), subject to boundary > minSize.
func splitAtSentenceBoundary(text string, target, minSize int) (first, rest string) {
	boundaries := []int{0, len(text)}
	for _, m := range sentenceEnd.FindAllStringIndex(text, -1) {
		boundaries = append(boundaries, m[1]-1)
	}
	sort.Ints(boundaries)

	best := len(text)
	bestDist := math.MaxInt64
	for _, b := range boundaries {
		if b <= minSize {
			continue
		}
		dist := b - target
		if dist < 0 {
			dist = -dist
		}
		if dist < bestDist {
			bestDist = dist
			best = b
		}
	}
	if best > len(text) {
		best = len(text)
	}
	return strings.TrimSpace(text[:best]), strings.TrimSpace(text[best:])
}

func countSentences(text string) int {
	return len(sentenceEnd.FindAllString(text, -1)) + 1
}

// computeImportance implements the 7-step multiplicative scoring formula.
func computeImportance(c *Chunk) float64 {
	score := 1.0
	if c.Header != "" {
		score *= 1.3
	}
	for _, line := range strings.Split(c.Text, "\n") {
		if definitionPattern.MatchString(line) {
			score *= 1.4
			break
		}
	}
	if c.ChunkType == ContentTypeCode {
		score *= 1.2
	}
	lower := strings.ToLower(c.Text)
	for _, marker := range techMarkers {
		if strings.Contains(lower, marker) {
			score *= 1.1
			break
		}
	}
	if len(c.Text) < 100 {
		score *= 0.7
	}
	if score > 2.0 {
		score = 2.0
	}
	return math.Round(score*100) / 100
}
