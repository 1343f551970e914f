package assistant

import (
	"encoding/json"
	"net/http"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"shopsmart/internal/observability"
)

const (
	defaultIntentType = "product"
	defaultPrepTime   = "30 minutes"
	defaultServings   = 4
)

type IntentRequest struct {
	Query string `json:"query"`
}

type PriceRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Intent is the structured reading of a free-text shopping query.
type Intent struct {
	Type        string      `json:"type"`
	Keywords    []string    `json:"keywords"`
	Ingredients []string    `json:"ingredients"`
	PriceRange  *PriceRange `json:"priceRange"`
	SkinType    *string     `json:"skinType"`
	Category    *string     `json:"category"`
}

type RecipeRequest struct {
	Query string `json:"query"`
}

type Recipe struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Ingredients []string `json:"ingredients"`
	Steps       []string `json:"steps"`
	PrepTime    string   `json:"prepTime"`
	Servings    int      `json:"servings"`
}

// detectIntent classifies a query against the names in the catalog. When the
// model is unavailable it degrades to a plain keyword search.
func (s *Server) detectIntent(w http.ResponseWriter, r *http.Request) {
	var req IntentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	var names []string
	products, err := s.Catalog.List(r.Context())
	if err != nil {
		s.Log.Warn().Err(err).Msg("Could not load product names for intent detection")
		products = nil
	}
	for _, p := range products {
		names = append(names, p.Name)
	}

	var intent Intent
	if err := s.completeJSON(r.Context(), intentPrompt, intentMessage(req.Query, names), &intent); err != nil {
		observability.LLMRequests.WithLabelValues("detect_intent", "error").Inc()
		s.Log.Warn().Err(err).Msg("Intent detection failed, falling back to keyword search")
		writeJSON(w, http.StatusOK, Intent{
			Type:        defaultIntentType,
			Keywords:    strings.Fields(req.Query),
			Ingredients: []string{},
		})
		return
	}
	observability.LLMRequests.WithLabelValues("detect_intent", "ok").Inc()

	if intent.Type == "" {
		intent.Type = defaultIntentType
	}
	if intent.Keywords == nil {
		intent.Keywords = []string{}
	}
	if intent.Ingredients == nil {
		intent.Ingredients = []string{}
	}
	writeJSON(w, http.StatusOK, intent)
}

func (s *Server) recipeDetails(w http.ResponseWriter, r *http.Request) {
	var req RecipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	var recipe Recipe
	if err := s.completeJSON(r.Context(), recipePrompt, recipeMessage(req.Query), &recipe); err != nil {
		observability.LLMRequests.WithLabelValues("recipe_details", "error").Inc()
		s.Log.Warn().Err(err).Str("query", req.Query).Msg("Recipe generation failed, returning placeholder")
		writeJSON(w, http.StatusOK, Recipe{
			Name:        cases.Title(language.English).String(req.Query),
			Description: "Recipe details unavailable",
			Ingredients: []string{"Check recipe online for ingredients"},
			Steps:       []string{"Please search online for detailed instructions"},
			PrepTime:    defaultPrepTime,
			Servings:    defaultServings,
		})
		return
	}
	observability.LLMRequests.WithLabelValues("recipe_details", "ok").Inc()

	if recipe.Name == "" {
		recipe.Name = "Recipe"
	}
	if recipe.Description == "" {
		recipe.Description = "A delicious homemade recipe"
	}
	if recipe.Ingredients == nil {
		recipe.Ingredients = []string{}
	}
	if recipe.Steps == nil {
		recipe.Steps = []string{}
	}
	if recipe.PrepTime == "" {
		recipe.PrepTime = defaultPrepTime
	}
	if recipe.Servings <= 0 {
		recipe.Servings = defaultServings
	}
	writeJSON(w, http.StatusOK, recipe)
}
