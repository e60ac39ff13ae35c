package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"github.com/shelfmark/shelfmark/internal/domain"
	"github.com/shelfmark/shelfmark/internal/logger"
)

const recommendSystemPrompt = `You are a book recommendation expert. Suggest books that match the user's request.
Respond with JSON in exactly this shape:
{
  "message": "short explanation of the picks",
  "bookTitles": ["title 1", "title 2", "title 3"]
}
Recommend at most 5 books.`

// ChatCompleter is the slice of the OpenAI client the recommender needs.
// *openai.Client satisfies it.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// TitleResolver resolves a recommended title to a catalog record.
// *catalog.Client satisfies it.
type TitleResolver interface {
	Search(ctx context.Context, query string, max int) ([]*domain.Book, error)
}

// Message is one turn of the recommendation conversation.
type Message struct {
	Role    string `json:"role"` // "user" | "assistant"
	Content string `json:"content"`
}

// Recommendation is the assistant's reply with every recommended title
// resolved against the catalog. Books may be empty when the model answered
// in free text or no title matched the catalog.
type Recommendation struct {
	Message string         `json:"message"`
	Books   []*domain.Book `json:"books"`
}

// Recommender turns a chat history into catalog-backed book suggestions.
type Recommender struct {
	chat    ChatCompleter
	catalog TitleResolver
	model   string
	logger  logger.Logger
}

// NewRecommender creates the recommendation service.
func NewRecommender(chat ChatCompleter, catalog TitleResolver, model string, log logger.Logger) *Recommender {
	return &Recommender{
		chat:    chat,
		catalog: catalog,
		model:   model,
		logger:  log,
	}
}

// Recommend sends the history to the model, parses the structured reply and
// resolves each suggested title to a catalog record (first hit wins).
// A reply that fails to parse degrades to a message-only recommendation
// rather than an error.
func (r *Recommender) Recommend(ctx context.Context, history []Message) (*Recommendation, error) {
	if len(history) == 0 {
		return nil, fmt.Errorf("recommend: empty message history")
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: recommendSystemPrompt,
	})
	for _, m := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := r.chat.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       r.model,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	content := resp.Choices[0].Message.Content
	message, titles, ok := parseRecommendation(content)
	if !ok {
		r.logger.Warn("recommendation reply was not valid JSON, returning raw text")
		return &Recommendation{Message: content, Books: []*domain.Book{}}, nil
	}

	return &Recommendation{
		Message: message,
		Books:   r.resolveTitles(ctx, titles),
	}, nil
}

// resolveTitles looks every title up in the catalog concurrently. Titles the
// catalog cannot resolve are dropped silently; the message still mentions
// them.
func (r *Recommender) resolveTitles(ctx context.Context, titles []string) []*domain.Book {
	results := make([]*domain.Book, len(titles))

	var wg sync.WaitGroup
	for i, title := range titles {
		wg.Add(1)
		go func(i int, title string) {
			defer wg.Done()
			books, err := r.catalog.Search(ctx, title, 1)
			if err != nil {
				r.logger.Warn("failed to resolve recommended title",
					logger.String("title", title),
					logger.Error(err))
				return
			}
			if len(books) > 0 {
				results[i] = books[0]
			}
		}(i, title)
	}
	wg.Wait()

	books := make([]*domain.Book, 0, len(titles))
	for _, b := range results {
		if b != nil {
			books = append(books, b)
		}
	}
	return books
}

type recommendationPayload struct {
	Message    string   `json:"message"`
	BookTitles []string `json:"bookTitles"`
}

// parseRecommendation extracts the structured reply, tolerating a fenced
// code block around the JSON (models add them despite instructions).
func parseRecommendation(content string) (message string, titles []string, ok bool) {
	cleaned := strings.TrimSpace(content)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var payload recommendationPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return "", nil, false
	}
	if payload.Message == "" && len(payload.BookTitles) == 0 {
		return "", nil, false
	}
	return payload.Message, payload.BookTitles, true
}
