package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"shopsmart/internal/model"
	"shopsmart/internal/observability"
	"shopsmart/internal/repository"
)

const (
	maxSearchNames  = 6
	maxSearchLength = 100
)

// Catalog is the product store the assistant reads from.
type Catalog interface {
	List(ctx context.Context) ([]model.Product, error)
	Get(ctx context.Context, id string) (model.Product, error)
	UpdateSentiment(ctx context.Context, id string, s model.Sentiment) error
}

// Server serves catalog reads and the LLM-backed shopping endpoints.
type Server struct {
	Catalog  Catalog
	Sessions History
	LLM      ChatClient
	Model    string
	Log      zerolog.Logger
}

type QARequest struct {
	SessionID string `json:"sessionId"`
	ProductID string `json:"productId"`
	Query     string `json:"query"`
}

type QAResponse struct {
	SessionID string `json:"sessionId"`
	Answer    string `json:"answer"`
}

type SearchRequest struct {
	Query string `json:"query"`
}

type SearchResponse struct {
	ProductNames []string `json:"productNames"`
}

type ReviewRequest struct {
	ProductID  string `json:"productId"`
	ReviewText string `json:"reviewText"`
}

// Routes returns the HTTP router for the assistant API.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/products", s.listProducts)
	r.Get("/products/{id}", s.getProduct)
	r.Post("/product-qa", s.productQA)
	r.Post("/ai-search", s.aiSearch)
	r.Post("/analyze-review", s.analyzeReview)
	r.Post("/detect-intent", s.detectIntent)
	r.Post("/recipe-details", s.recipeDetails)
	return r
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := s.Catalog.List(r.Context())
	if err != nil {
		s.Log.Error().Err(err).Msg("List products failed")
		writeError(w, http.StatusInternalServerError, "could not load products")
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	p, ok := s.loadProduct(w, r, chi.URLParam(r, "id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) productQA(w http.ResponseWriter, r *http.Request) {
	var req QARequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" || req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "query and productId are required")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	p, ok := s.loadProduct(w, r, req.ProductID)
	if !ok {
		return
	}

	ctx := r.Context()
	history, err := s.Sessions.Get(ctx, req.SessionID)
	if err != nil {
		// answer without history
		s.Log.Warn().Err(err).Str("session", req.SessionID).Msg("Could not load session history")
	}

	answer, err := s.CallLLM(ctx, SystemPrompt(), productContext(p), history, req.Query)
	if err != nil {
		s.llmFailed(w, "product_qa", err)
		return
	}
	observability.LLMRequests.WithLabelValues("product_qa", "ok").Inc()

	err = s.Sessions.Append(ctx, req.SessionID,
		model.ChatMessage{Role: "user", Content: req.Query},
		model.ChatMessage{Role: "assistant", Content: answer},
	)
	if err != nil {
		s.Log.Warn().Err(err).Str("session", req.SessionID).Msg("Could not save session history")
	}

	writeJSON(w, http.StatusOK, QAResponse{SessionID: req.SessionID, Answer: answer})
}

func (s *Server) aiSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	var reply struct {
		ProductNames []string `json:"productNames"`
	}
	if err := s.completeJSON(r.Context(), searchPrompt, req.Query, &reply); err != nil {
		s.llmFailed(w, "ai_search", err)
		return
	}
	observability.LLMRequests.WithLabelValues("ai_search", "ok").Inc()

	writeJSON(w, http.StatusOK, SearchResponse{ProductNames: capNames(reply.ProductNames)})
}

func (s *Server) analyzeReview(w http.ResponseWriter, r *http.Request) {
	var req ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.ReviewText) == "" || req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "reviewText and productId are required")
		return
	}

	p, ok := s.loadProduct(w, r, req.ProductID)
	if !ok {
		return
	}

	var reply struct {
		Positive *float64      `json:"positive"`
		Negative *float64      `json:"negative"`
		Aspects  model.Aspects `json:"aspects"`
	}
	msg, err := reviewMessage(p.Sentiment, req.ReviewText)
	if err != nil {
		s.Log.Error().Err(err).Str("product", p.ID).Msg("Build review prompt failed")
		writeError(w, http.StatusInternalServerError, "could not analyze review")
		return
	}
	if err := s.completeJSON(r.Context(), reviewPrompt, msg, &reply); err != nil {
		s.llmFailed(w, "analyze_review", err)
		return
	}
	observability.LLMRequests.WithLabelValues("analyze_review", "ok").Inc()

	updated := model.Sentiment{Positive: 50, Negative: 50, Aspects: reply.Aspects}
	if reply.Positive != nil {
		updated.Positive = int(*reply.Positive)
	}
	if reply.Negative != nil {
		updated.Negative = int(*reply.Negative)
	}
	if updated.Aspects == nil {
		updated.Aspects = model.Aspects{}
	}

	if err := s.Catalog.UpdateSentiment(r.Context(), p.ID, updated); err != nil {
		s.Log.Error().Err(err).Str("product", p.ID).Msg("Update sentiment failed")
		writeError(w, http.StatusInternalServerError, "could not save sentiment")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) loadProduct(w http.ResponseWriter, r *http.Request, id string) (model.Product, bool) {
	p, err := s.Catalog.Get(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "product not found")
		return p, false
	}
	if err != nil {
		s.Log.Error().Err(err).Str("product", id).Msg("Get product failed")
		writeError(w, http.StatusInternalServerError, "could not load product")
		return p, false
	}
	return p, true
}

func (s *Server) llmFailed(w http.ResponseWriter, endpoint string, err error) {
	observability.LLMRequests.WithLabelValues(endpoint, "error").Inc()
	s.Log.Error().Err(err).Str("endpoint", endpoint).Msg("LLM request failed")
	writeError(w, http.StatusBadGateway, "assistant is unavailable")
}

// capNames keeps the first non-empty names, each cut to maxSearchLength runes.
func capNames(names []string) []string {
	out := []string{}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if rs := []rune(n); len(rs) > maxSearchLength {
			n = string(rs[:maxSearchLength])
		}
		out = append(out, n)
		if len(out) == maxSearchNames {
			break
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
