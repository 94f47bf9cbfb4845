package rag

import "strings"

const (
	// DefaultChunkSize is the target chunk length in characters.
	DefaultChunkSize = 500
	// DefaultChunkOverlap is how many characters consecutive chunks share.
	DefaultChunkOverlap = 50
)

// defaultSeparators are tried in order, coarsest first. The empty separator
// is the terminal fallback that windows raw runes.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// Splitter cuts document text into overlapping chunks for embedding. It
// prefers splitting on paragraph and sentence boundaries, falling back to
// ever finer separators when a piece still exceeds the chunk size.
type Splitter struct {
	chunkSize  int
	overlap    int
	separators []string
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = DefaultChunkOverlap
	}
	return &Splitter{
		chunkSize:  chunkSize,
		overlap:    overlap,
		separators: defaultSeparators,
	}
}

// Split chunks text. Every returned chunk is non-empty, trimmed, and at most
// chunkSize runes long.
func (s *Splitter) Split(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return s.split(text, s.separators)
}

func (s *Splitter) split(text string, seps []string) []string {
	if runeLen(text) <= s.chunkSize {
		if trimmed := strings.TrimSpace(text); trimmed != "" {
			return []string{trimmed}
		}
		return nil
	}

	sep, rest := pickSeparator(text, seps)
	if sep == "" {
		return s.window(text)
	}

	return s.merge(strings.Split(text, sep), sep, rest)
}

// merge packs pieces into chunks up to chunkSize, carrying an overlap tail
// from one chunk into the next. Oversized pieces recurse with finer
// separators.
func (s *Splitter) merge(pieces []string, sep string, rest []string) []string {
	var chunks []string
	var current []string
	curLen := 0
	fresh := false
	sepLen := runeLen(sep)

	emit := func() {
		if !fresh {
			return
		}
		chunk := strings.TrimSpace(strings.Join(current, sep))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}

		// Keep a tail of pieces within the overlap budget as the seed of
		// the next chunk.
		var keep []string
		keepLen := 0
		for i := len(current) - 1; i >= 0; i-- {
			pl := runeLen(current[i]) + sepLen
			if keepLen+pl > s.overlap {
				break
			}
			keep = append([]string{current[i]}, keep...)
			keepLen += pl
		}
		current = keep
		curLen = keepLen
		fresh = false
	}

	for _, piece := range pieces {
		pl := runeLen(piece)

		if pl > s.chunkSize {
			emit()
			current = nil
			curLen = 0
			fresh = false
			chunks = append(chunks, s.split(piece, rest)...)
			continue
		}

		if curLen+pl+sepLen > s.chunkSize && len(current) > 0 {
			emit()
		}
		for curLen+pl+sepLen > s.chunkSize && len(current) > 0 {
			curLen -= runeLen(current[0]) + sepLen
			current = current[1:]
		}
		current = append(current, piece)
		curLen += pl + sepLen
		fresh = true
	}
	emit()

	return chunks
}

// window slices text into fixed rune windows, the last resort when no
// separator fits.
func (s *Splitter) window(text string) []string {
	runes := []rune(text)
	step := s.chunkSize - s.overlap
	if step <= 0 {
		step = s.chunkSize
	}

	var out []string
	for start := 0; start < len(runes); start += step {
		end := start + s.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunk := strings.TrimSpace(string(runes[start:end]))
		if chunk != "" {
			out = append(out, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return out
}

// pickSeparator returns the first separator present in text and the finer
// ones after it.
func pickSeparator(text string, seps []string) (string, []string) {
	for i, sep := range seps {
		if sep == "" {
			return "", nil
		}
		if strings.Contains(text, sep) {
			return sep, seps[i+1:]
		}
	}
	return "", nil
}

func runeLen(s string) int {
	return len([]rune(s))
}
