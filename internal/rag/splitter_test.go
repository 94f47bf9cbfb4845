package rag

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitter_ShortTextSingleChunk(t *testing.T) {
	s := NewSplitter(500, 50)

	chunks := s.Split("A short document about heat transfer.")

	require.Len(t, chunks, 1)
	assert.Equal(t, "A short document about heat transfer.", chunks[0])
}

func TestSplitter_EmptyText(t *testing.T) {
	s := NewSplitter(500, 50)

	assert.Nil(t, s.Split(""))
	assert.Nil(t, s.Split("   \n\n  "))
}

func TestSplitter_RespectsChunkSize(t *testing.T) {
	s := NewSplitter(500, 50)

	var b strings.Builder
	for i := 0; i < 80; i++ {
		b.WriteString("Heat flows from hot bodies to cold bodies until equilibrium. ")
	}

	chunks := s.Split(b.String())

	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), 500)
		assert.NotEmpty(t, strings.TrimSpace(c))
	}
}

func TestSplitter_PrefersParagraphBoundaries(t *testing.T) {
	s := NewSplitter(100, 10)

	para1 := "First paragraph about the zeroth law of thermodynamics."
	para2 := "Second paragraph about the first law and conservation of energy."
	chunks := s.Split(para1 + "\n\n" + para2)

	require.Len(t, chunks, 2)
	assert.Equal(t, para1, chunks[0])
	assert.Equal(t, para2, chunks[1])
}

func TestSplitter_ConsecutiveChunksOverlap(t *testing.T) {
	s := NewSplitter(100, 30)

	words := make([]string, 60)
	for i := range words {
		words[i] = "entropy"
	}
	chunks := s.Split(strings.Join(words, " "))

	require.Greater(t, len(chunks), 1)
	for i := 1; i < len(chunks); i++ {
		prevTail := chunks[i-1][len(chunks[i-1])-7:]
		assert.Contains(t, chunks[i], prevTail)
	}
}

func TestSplitter_NoSeparatorsFallsBackToWindows(t *testing.T) {
	s := NewSplitter(100, 10)

	solid := strings.Repeat("x", 350)
	chunks := s.Split(solid)

	require.Greater(t, len(chunks), 1)
	total := 0
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c), 100)
		total += len(c)
	}
	// Windows overlap, so the chunks together cover at least the input.
	assert.GreaterOrEqual(t, total, 350)
}

func TestSplitter_CoversAllContent(t *testing.T) {
	s := NewSplitter(120, 20)

	sentences := []string{
		"The zeroth law defines thermal equilibrium.",
		"The first law is conservation of energy.",
		"The second law introduces entropy.",
		"The third law concerns absolute zero.",
	}
	text := strings.Join(sentences, " ")

	chunks := s.Split(text)
	joined := strings.Join(chunks, " ")

	for _, sentence := range sentences {
		assert.Contains(t, joined, strings.TrimSuffix(sentence, "."))
	}
}

func TestSplitter_ResplitIsStable(t *testing.T) {
	s := NewSplitter(120, 20)

	paragraphs := []string{
		"Thermal conduction moves heat through direct molecular contact in solids.",
		"Convection transports heat through the bulk motion of fluids and gases.",
		"Radiation carries heat as electromagnetic waves and needs no medium at all.",
		"Phase changes absorb or release latent heat without a temperature change.",
	}
	chunks := s.Split(strings.Join(paragraphs, "\n\n"))
	require.Greater(t, len(chunks), 1)

	// Every chunk fits the size cap, so splitting it again must return the
	// chunk unchanged.
	for _, c := range chunks {
		again := s.Split(c)
		require.Len(t, again, 1)
		assert.Equal(t, c, again[0])
	}
}

func TestSplitter_OverlapStaysWithinBudget(t *testing.T) {
	s := NewSplitter(100, 30)

	words := make([]string, 60)
	for i := range words {
		words[i] = fmt.Sprintf("word%02d", i)
	}
	chunks := s.Split(strings.Join(words, " "))
	require.Greater(t, len(chunks), 1)

	for i := 1; i < len(chunks); i++ {
		shared := sharedOverlap(chunks[i-1], chunks[i])
		assert.LessOrEqual(t, shared, 30,
			"chunks %d and %d share more than the overlap budget", i-1, i)
	}
}

// sharedOverlap returns the rune length of the longest suffix of prev that is
// a prefix of next.
func sharedOverlap(prev, next string) int {
	p := []rune(prev)
	n := []rune(next)
	max := len(p)
	if len(n) < max {
		max = len(n)
	}
	for k := max; k > 0; k-- {
		if string(p[len(p)-k:]) == string(n[:k]) {
			return k
		}
	}
	return 0
}
