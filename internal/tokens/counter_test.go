package tokens

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHeuristic_Count(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		ratio int
		text  string
		want  int
	}{
		{name: "empty", ratio: 4, text: "", want: 0},
		{name: "exact multiple", ratio: 4, text: "abcdefgh", want: 2},
		{name: "rounds up", ratio: 4, text: "abcde", want: 2},
		{name: "single char", ratio: 4, text: "a", want: 1},
		{name: "custom ratio", ratio: 3, text: "abcdefg", want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, NewHeuristic(tt.ratio).Count(tt.text))
		})
	}
}

func TestNewHeuristic_DefaultRatio(t *testing.T) {
	t.Parallel()

	require.Equal(t, 4, NewHeuristic(0).CharsPerToken)
	require.Equal(t, 4, NewHeuristic(-2).CharsPerToken)
}

func TestHeuristic_Deterministic(t *testing.T) {
	t.Parallel()

	h := NewHeuristic(4)
	text := strings.Repeat("grounded answer ", 100)
	require.Equal(t, h.Count(text), h.Count(text))
}

func TestTiktoken_Count(t *testing.T) {
	counter, err := NewTiktoken(DefaultEncoding)
	if err != nil {
		t.Skipf("tiktoken encoding unavailable: %v", err)
	}

	require.Equal(t, 0, counter.Count(""))
	require.Greater(t, counter.Count("Hello, world! This is a test."), 0)
	require.Equal(t, DefaultEncoding, counter.Encoding())
}

func TestNewTiktoken_UnknownEncoding(t *testing.T) {
	_, err := NewTiktoken("no_such_encoding")
	require.Error(t, err)
}
