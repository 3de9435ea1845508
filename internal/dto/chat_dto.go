package dto

// ConversationTurn is one entry of the client-side conversation history. The
// backend forwards it verbatim inside the prompt; it is never persisted.
type ConversationTurn struct {
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp,omitempty"`
}

type ChatRequest struct {
	Question string             `json:"question" validate:"required"`
	History  []ConversationTurn `json:"history,omitempty"`
}

type SourceDTO struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata"`
}

type ChatResponse struct {
	Answer      string      `json:"answer"`
	Sources     []SourceDTO `json:"sources"`
	ContextUsed int         `json:"context_used"`
}

// SearchResultDTO is one scored retrieval hit. Score is a percentage rounded
// to two decimals, the form the prompt and the UI both consume.
type SearchResultDTO struct {
	Id       string            `json:"id"`
	Title    string            `json:"title"`
	Content  string            `json:"content"`
	Score    float64           `json:"similarity_score"`
	Type     string            `json:"type"`
	Metadata map[string]string `json:"metadata"`
}

// RetrievalResult carries the per-kind top-K lists. Kinds are never
// cross-merged: each list stands on its own.
type RetrievalResult struct {
	Formations []SearchResultDTO `json:"formations"`
	Sessions   []SearchResultDTO `json:"sessions"`
}
