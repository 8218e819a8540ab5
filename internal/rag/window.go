package rag

import "kbchat/internal/tokens"

// MinRetainedTurns is the number of most recent turns kept regardless of budget.
const MinRetainedTurns = 2

// TokenBudget is the fixed part of a prompt's token accounting.
type TokenBudget struct {
	MaxTotal     int `json:"max_total"`
	SystemTokens int `json:"system_tokens"`
	QueryTokens  int `json:"query_tokens"`
}

// HistoryAllowance is what remains for conversation history. It may be negative.
func (b TokenBudget) HistoryAllowance() int {
	return b.MaxTotal - b.SystemTokens - b.QueryTokens
}

// Window is the outcome of fitting history into a budget.
type Window struct {
	// Turns is a suffix of the input history; it shares the input's backing array.
	Turns         []Turn
	Budget        TokenBudget
	HistoryTokens int
	Dropped       int
}

// Total is the token count of the prompt the window describes.
func (w Window) Total() int {
	return w.Budget.SystemTokens + w.Budget.QueryTokens + w.HistoryTokens
}

// Fits reports whether the window is within budget. It can be false only when
// the retained-turn floor was reached.
func (w Window) Fits() bool {
	return w.Total() <= w.Budget.MaxTotal
}

// WindowManager trims conversation history to a token budget.
type WindowManager struct {
	counter tokens.Counter
}

// NewWindowManager creates a window manager counting with counter.
func NewWindowManager(counter tokens.Counter) *WindowManager {
	return &WindowManager{counter: counter}
}

// Fit returns history with the oldest turns removed until skeleton, query and the
// remaining turns fit in maxTokens, or until MinRetainedTurns remain.
// The input is never reordered or modified.
func (m *WindowManager) Fit(skeleton string, history []Turn, query string, maxTokens int) []Turn {
	return m.Measure(skeleton, history, query, maxTokens).Turns
}

// Measure is Fit with the token accounting that produced the result.
func (m *WindowManager) Measure(skeleton string, history []Turn, query string, maxTokens int) Window {
	budget := TokenBudget{
		MaxTotal:     maxTokens,
		SystemTokens: m.counter.Count(skeleton),
		QueryTokens:  m.counter.Count(query),
	}

	turnTokens := make([]int, len(history))
	historyTokens := 0
	for i, turn := range history {
		turnTokens[i] = m.counter.Count(turn.Content)
		historyTokens += turnTokens[i]
	}

	allowance := budget.HistoryAllowance()
	drop := 0
	for historyTokens > allowance && len(history)-drop > MinRetainedTurns {
		historyTokens -= turnTokens[drop]
		drop++
	}

	return Window{
		Turns:         history[drop:],
		Budget:        budget,
		HistoryTokens: historyTokens,
		Dropped:       drop,
	}
}
