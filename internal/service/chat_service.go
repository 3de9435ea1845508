package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"catalog-assistant-be/internal/dto"
	"catalog-assistant-be/internal/pkg/logger"
	"catalog-assistant-be/pkg/llm"
)

// ErrMissingQuestion is the only chat failure surfaced as an HTTP error; every
// provider-side problem degrades to an apologetic answer instead.
var ErrMissingQuestion = errors.New("missing question")

// Chat modes. RAG grounds the answer on vector retrieval; simple skips the
// index and stuffs a slice of the raw catalog into the system prompt.
const (
	ChatModeRAG    = "rag"
	ChatModeSimple = "simple"
)

const (
	ragSystemPrompt    = "Tu es un assistant spécialisé dans les formations et sessions. Réponds uniquement en te basant sur les informations fournies. Réponds en français de manière concise et utile."
	simpleSystemPrompt = "Tu es un assistant spécialisé dans les formations et leurs sessions. Réponds brièvement en français en te basant sur les données fournies."

	missingKeyAnswer = "Clé API OpenAI manquante. Contactez un administrateur."
	apologyAnswer    = "Désolé, je rencontre un problème technique. Veuillez réessayer plus tard."
	emptyAnswer      = "(pas de réponse)"

	simpleContextRecords = 10
)

type IChatService interface {
	// Chat answers a catalog question. Returns ErrMissingQuestion when the
	// question is blank; all other failures produce a degraded answer.
	Chat(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error)
}

type chatService struct {
	retrievalService IRetrievalService
	catalogService   ICatalogService
	llmProvider      llm.LLMProvider
	mode             string
	searchLimit      int
	hasAPIKey        bool
	log              logger.ILogger
}

func NewChatService(
	retrievalService IRetrievalService,
	catalogService ICatalogService,
	llmProvider llm.LLMProvider,
	mode string,
	searchLimit int,
	hasAPIKey bool,
	log logger.ILogger,
) IChatService {
	if mode != ChatModeSimple {
		mode = ChatModeRAG
	}
	if searchLimit <= 0 {
		searchLimit = 5
	}
	return &chatService{
		retrievalService: retrievalService,
		catalogService:   catalogService,
		llmProvider:      llmProvider,
		mode:             mode,
		searchLimit:      searchLimit,
		hasAPIKey:        hasAPIKey,
		log:              log,
	}
}

func (cs *chatService) Chat(ctx context.Context, request *dto.ChatRequest) (*dto.ChatResponse, error) {
	question := strings.TrimSpace(request.Question)
	if question == "" {
		return nil, ErrMissingQuestion
	}

	question = appendHistory(question, request.History)

	if cs.mode == ChatModeSimple {
		return cs.simpleChat(ctx, question)
	}
	return cs.ragChat(ctx, question)
}

func (cs *chatService) ragChat(ctx context.Context, question string) (*dto.ChatResponse, error) {
	retrieved, err := cs.retrievalService.Retrieve(ctx, question, cs.searchLimit)
	if err != nil {
		cs.log.Error("chat", "retrieval failed", map[string]interface{}{"error": err.Error()})
		return &dto.ChatResponse{
			Answer:      apologyAnswer,
			Sources:     []dto.SourceDTO{},
			ContextUsed: 0,
		}, nil
	}

	sources := extractSources(retrieved)
	contextUsed := len(retrieved.Formations) + len(retrieved.Sessions)

	if !cs.hasAPIKey {
		return &dto.ChatResponse{
			Answer:      missingKeyAnswer,
			Sources:     sources,
			ContextUsed: contextUsed,
		}, nil
	}

	history := []llm.Message{
		{Role: "system", Content: ragSystemPrompt},
		{Role: "user", Content: "Contexte :\n" + buildContext(retrieved) + "\n\nQuestion : " + question},
	}

	answer, err := cs.llmProvider.Chat(ctx, history,
		llm.WithTemperature(0.2),
		llm.WithMaxTokens(500),
	)
	if err != nil {
		cs.log.Error("chat", "answer generation failed", map[string]interface{}{"error": err.Error()})
		return &dto.ChatResponse{
			Answer:      apologyAnswer,
			Sources:     sources,
			ContextUsed: 0,
		}, nil
	}
	if answer == "" {
		answer = emptyAnswer
	}

	return &dto.ChatResponse{
		Answer:      answer,
		Sources:     sources,
		ContextUsed: contextUsed,
	}, nil
}

// simpleChat answers without the vector index: the first records of each kind
// go straight into the system prompt. Kept as a fallback for installs that
// have no pgvector database.
func (cs *chatService) simpleChat(ctx context.Context, question string) (*dto.ChatResponse, error) {
	if !cs.hasAPIKey {
		return &dto.ChatResponse{
			Answer:  missingKeyAnswer,
			Sources: []dto.SourceDTO{},
		}, nil
	}

	formations, err := cs.catalogService.GetFormations(ctx)
	if err != nil {
		cs.log.Error("chat", "loading formations failed", map[string]interface{}{"error": err.Error()})
		return &dto.ChatResponse{Answer: apologyAnswer, Sources: []dto.SourceDTO{}}, nil
	}
	sessions, err := cs.catalogService.GetSessions(ctx)
	if err != nil {
		cs.log.Error("chat", "loading sessions failed", map[string]interface{}{"error": err.Error()})
		return &dto.ChatResponse{Answer: apologyAnswer, Sources: []dto.SourceDTO{}}, nil
	}

	if len(formations) > simpleContextRecords {
		formations = formations[:simpleContextRecords]
	}
	if len(sessions) > simpleContextRecords {
		sessions = sessions[:simpleContextRecords]
	}

	prompt := simpleSystemPrompt
	if len(formations) > 0 || len(sessions) > 0 {
		var sb strings.Builder
		sb.WriteString(prompt)
		sb.WriteString("\n\nVoici les données disponibles :\n")
		if len(formations) > 0 {
			sb.WriteString("\nFORMATIONS DISPONIBLES :\n")
			for _, f := range formations {
				title := f.String("title")
				if title == "" {
					title = "Formation sans titre"
				}
				sb.WriteString("- " + title + "\n\n")
			}
		}
		if len(sessions) > 0 {
			sb.WriteString("\nSESSIONS DISPONIBLES :\n")
			for _, s := range sessions {
				title := s.String("title")
				if title == "" {
					title = "Session sans titre"
				}
				sb.WriteString("- " + title + "\n")
				if v := s.String("field_ville"); v != "" {
					sb.WriteString("  Lieu: " + v + "\n")
				}
				if p := s.String("field_price_eur_number"); p != "" {
					sb.WriteString("  Prix: " + p + "\n")
				}
				sb.WriteString("\n")
			}
		}
		sb.WriteString("\nUtilise ces informations pour répondre précisément aux questions sur les formations et sessions.")
		prompt = sb.String()
	}
	prompt += "\n\nSi l'utilisateur fournit un contexte de conversation précédente en JSON, utilise-le pour maintenir la cohérence et répondre en tenant compte de l'historique."

	answer, err := cs.llmProvider.Chat(ctx,
		[]llm.Message{
			{Role: "system", Content: prompt},
			{Role: "user", Content: question},
		},
		llm.WithTemperature(0.7),
		llm.WithMaxTokens(1000),
	)
	if err != nil {
		cs.log.Error("chat", "answer generation failed", map[string]interface{}{"error": err.Error()})
		return &dto.ChatResponse{Answer: apologyAnswer, Sources: []dto.SourceDTO{}}, nil
	}
	if answer == "" {
		answer = emptyAnswer
	}

	return &dto.ChatResponse{
		Answer:      answer,
		Sources:     []dto.SourceDTO{},
		ContextUsed: len(formations) + len(sessions),
	}, nil
}

// buildContext renders the retrieved hits as the prompt context block: a
// bullet per hit with its relevance percentage and a 200-rune excerpt.
func buildContext(retrieved *dto.RetrievalResult) string {
	var sb strings.Builder
	sb.WriteString("Données pertinentes trouvées :\n\n")

	if len(retrieved.Formations) > 0 {
		sb.WriteString("FORMATIONS PERTINENTES :\n")
		for _, f := range retrieved.Formations {
			fmt.Fprintf(&sb, "• %s (Pertinence: %v%%)\n", f.Title, f.Score)
			sb.WriteString("  " + excerpt(f.Content, 200) + "\n\n")
		}
	}
	if len(retrieved.Sessions) > 0 {
		sb.WriteString("SESSIONS PERTINENTES :\n")
		for _, s := range retrieved.Sessions {
			fmt.Fprintf(&sb, "• %s (Pertinence: %v%%)\n", s.Title, s.Score)
			sb.WriteString("  " + excerpt(s.Content, 200) + "\n\n")
		}
	}

	return sb.String()
}

func extractSources(retrieved *dto.RetrievalResult) []dto.SourceDTO {
	sources := make([]dto.SourceDTO, 0, len(retrieved.Formations)+len(retrieved.Sessions))
	for _, f := range retrieved.Formations {
		sources = append(sources, dto.SourceDTO{Type: f.Type, Title: f.Title, Score: f.Score, Metadata: f.Metadata})
	}
	for _, s := range retrieved.Sessions {
		sources = append(sources, dto.SourceDTO{Type: s.Type, Title: s.Title, Score: s.Score, Metadata: s.Metadata})
	}
	return sources
}

// appendHistory inlines the client-side conversation history as a fenced JSON
// block after the question, the shape the prompts were written against.
func appendHistory(question string, history []dto.ConversationTurn) string {
	if len(history) == 0 {
		return question
	}
	data, err := json.MarshalIndent(history, "", "  ")
	if err != nil {
		return question
	}
	return question + "\n\nCONTEXTE DE LA CONVERSATION:\n```json\n" + string(data) + "\n```"
}

func excerpt(s string, budget int) string {
	runes := []rune(s)
	if len(runes) <= budget {
		return s
	}
	return string(runes[:budget]) + "..."
}
