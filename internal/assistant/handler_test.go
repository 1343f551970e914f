package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopsmart/internal/model"
	"shopsmart/internal/repository"
)

type fakeCatalog struct {
	products []model.Product
	updated  map[string]model.Sentiment
	err      error
}

func (f *fakeCatalog) List(context.Context) ([]model.Product, error) {
	return f.products, f.err
}

func (f *fakeCatalog) Get(_ context.Context, id string) (model.Product, error) {
	if f.err != nil {
		return model.Product{}, f.err
	}
	for _, p := range f.products {
		if p.ID == id {
			return p, nil
		}
	}
	return model.Product{}, repository.ErrNotFound
}

func (f *fakeCatalog) UpdateSentiment(_ context.Context, id string, s model.Sentiment) error {
	if f.updated == nil {
		f.updated = map[string]model.Sentiment{}
	}
	f.updated[id] = s
	return nil
}

type fakeHistory struct {
	sessions map[string][]model.ChatMessage
}

func (f *fakeHistory) Get(_ context.Context, id string) ([]model.ChatMessage, error) {
	return f.sessions[id], nil
}

func (f *fakeHistory) Append(_ context.Context, id string, msgs ...model.ChatMessage) error {
	if f.sessions == nil {
		f.sessions = map[string][]model.ChatMessage{}
	}
	f.sessions[id] = trimHistory(append(f.sessions[id], msgs...))
	return nil
}

type fakeLLM struct {
	reply    string
	err      error
	requests []openai.ChatCompletionRequest
}

func (f *fakeLLM) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: f.reply}}},
	}, nil
}

func newTestServer(llm *fakeLLM) (*Server, *fakeCatalog, *fakeHistory) {
	cat := &fakeCatalog{products: []model.Product{
		{ID: "1", Name: "Organic Bananas", Description: "<b>Fresh</b> &amp; ripe", Price: 0.59, Category: "Groceries",
			Tags: []string{"fruit"}, Sentiment: model.Sentiment{Positive: 80, Negative: 20, Aspects: model.Aspects{{Name: "taste", Score: 90}}}},
		{ID: "2", Name: "Laptop", Price: 899.99, Category: "Electronics"},
	}}
	hist := &fakeHistory{}
	return &Server{Catalog: cat, Sessions: hist, LLM: llm, Model: openai.GPT4oMini, Log: zerolog.Nop()}, cat, hist
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestProductsEndpoints(t *testing.T) {
	srv, _, _ := newTestServer(&fakeLLM{})
	h := srv.Routes()

	rec := do(t, h, http.MethodGet, "/products", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list []model.Product
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "Organic Bananas", list[0].Name)

	rec = do(t, h, http.MethodGet, "/products/2", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"name":"Laptop"`)

	rec = do(t, h, http.MethodGet, "/products/99", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProductsStoreFailure(t *testing.T) {
	srv, cat, _ := newTestServer(&fakeLLM{})
	cat.err = errors.New("connection refused")

	rec := do(t, srv.Routes(), http.MethodGet, "/products", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestProductQA(t *testing.T) {
	llm := &fakeLLM{reply: "Yes, they are organic."}
	srv, _, hist := newTestServer(llm)
	h := srv.Routes()

	rec := do(t, h, http.MethodPost, "/product-qa", `{"sessionId":"s1","productId":"1","query":"Are these organic?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp QAResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "s1", resp.SessionID)
	assert.Equal(t, "Yes, they are organic.", resp.Answer)
	assert.Len(t, hist.sessions["s1"], 2)

	require.Len(t, llm.requests, 1)
	msgs := llm.requests[0].Messages
	assert.Contains(t, msgs[1].Content, "Description: Fresh & ripe")
	assert.Contains(t, msgs[1].Content, "Price: $0.59")
	assert.Equal(t, "Are these organic?", msgs[len(msgs)-1].Content)

	// second turn carries the first one as history
	rec = do(t, h, http.MethodPost, "/product-qa", `{"sessionId":"s1","productId":"1","query":"How much?"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, llm.requests[1].Messages, 5)
}

func TestProductQAGeneratesSessionID(t *testing.T) {
	srv, _, _ := newTestServer(&fakeLLM{reply: "ok"})

	rec := do(t, srv.Routes(), http.MethodPost, "/product-qa", `{"productId":"2","query":"battery life?"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp QAResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.SessionID, 36)
}

func TestProductQAErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		llm  *fakeLLM
		want int
	}{
		{"bad json", `{`, &fakeLLM{}, http.StatusBadRequest},
		{"missing query", `{"productId":"1"}`, &fakeLLM{}, http.StatusBadRequest},
		{"unknown product", `{"productId":"9","query":"hi"}`, &fakeLLM{}, http.StatusNotFound},
		{"llm down", `{"productId":"1","query":"hi"}`, &fakeLLM{err: errors.New("timeout")}, http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _, _ := newTestServer(tt.llm)
			rec := do(t, srv.Routes(), http.MethodPost, "/product-qa", tt.body)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestAISearch(t *testing.T) {
	long := strings.Repeat("x", 150)
	llm := &fakeLLM{reply: `{"productNames":["bananas"," ","milk","` + long + `","a","b","c","d"]}`}
	srv, _, _ := newTestServer(llm)

	rec := do(t, srv.Routes(), http.MethodPost, "/ai-search", `{"query":"breakfast stuff"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.ProductNames, 6)
	assert.Equal(t, "bananas", resp.ProductNames[0])
	assert.Len(t, resp.ProductNames[2], 100)

	require.NotNil(t, llm.requests[0].ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, llm.requests[0].ResponseFormat.Type)
}

func TestAISearchBadReply(t *testing.T) {
	srv, _, _ := newTestServer(&fakeLLM{reply: "not json"})
	rec := do(t, srv.Routes(), http.MethodPost, "/ai-search", `{"query":"tv"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	srv, _, _ = newTestServer(&fakeLLM{reply: `{}`})
	rec = do(t, srv.Routes(), http.MethodPost, "/ai-search", `{"query":"tv"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"productNames":[]}`, rec.Body.String())
}

func TestDetectIntent(t *testing.T) {
	llm := &fakeLLM{reply: `{"type":"recipe","keywords":["banana","bread"],"ingredients":["Organic Bananas"],"priceRange":{"min":5,"max":20},"category":"Pantry"}`}
	srv, _, _ := newTestServer(llm)

	rec := do(t, srv.Routes(), http.MethodPost, "/detect-intent", `{"query":"banana bread under $20"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"type":"recipe","keywords":["banana","bread"],"ingredients":["Organic Bananas"],
		"priceRange":{"min":5,"max":20},"skinType":null,"category":"Pantry"}`, rec.Body.String())

	require.Len(t, llm.requests, 1)
	req := llm.requests[0]
	require.NotNil(t, req.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, req.ResponseFormat.Type)
	assert.Contains(t, req.Messages[1].Content, "AVAILABLE PRODUCTS:\nOrganic Bananas\nLaptop\n")
}

func TestDetectIntentFallsBackToKeywords(t *testing.T) {
	tests := []struct {
		name string
		llm  *fakeLLM
	}{
		{"llm down", &fakeLLM{err: errors.New("timeout")}},
		{"malformed reply", &fakeLLM{reply: "type: recipe"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _, _ := newTestServer(tt.llm)
			rec := do(t, srv.Routes(), http.MethodPost, "/detect-intent", `{"query":"cheap  4k tv"}`)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.JSONEq(t, `{"type":"product","keywords":["cheap","4k","tv"],"ingredients":[],
				"priceRange":null,"skinType":null,"category":null}`, rec.Body.String())
		})
	}
}

func TestDetectIntentDefaults(t *testing.T) {
	srv, cat, _ := newTestServer(&fakeLLM{reply: `{}`})
	cat.err = errors.New("connection refused")

	rec := do(t, srv.Routes(), http.MethodPost, "/detect-intent", `{"query":"moisturizer"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var intent Intent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &intent))
	assert.Equal(t, "product", intent.Type)
	assert.Empty(t, intent.Keywords)
	assert.NotNil(t, intent.Ingredients)
	assert.Nil(t, intent.PriceRange)
}

func TestRecipeDetails(t *testing.T) {
	llm := &fakeLLM{reply: `{"name":"Banana Bread","description":"Moist loaf.","ingredients":["3 Organic Bananas","2 cups flour"],"steps":["Mash","Bake"],"prepTime":"1 hour","servings":8}`}
	srv, _, _ := newTestServer(llm)

	rec := do(t, srv.Routes(), http.MethodPost, "/recipe-details", `{"query":"banana bread"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var recipe Recipe
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recipe))
	assert.Equal(t, Recipe{
		Name:        "Banana Bread",
		Description: "Moist loaf.",
		Ingredients: []string{"3 Organic Bananas", "2 cups flour"},
		Steps:       []string{"Mash", "Bake"},
		PrepTime:    "1 hour",
		Servings:    8,
	}, recipe)
	assert.Contains(t, llm.requests[0].Messages[1].Content, `"banana bread"`)
}

func TestRecipeDetailsDefaults(t *testing.T) {
	srv, _, _ := newTestServer(&fakeLLM{reply: `{"steps":["Cook"]}`})

	rec := do(t, srv.Routes(), http.MethodPost, "/recipe-details", `{"query":"rice"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"Recipe","description":"A delicious homemade recipe","ingredients":[],
		"steps":["Cook"],"prepTime":"30 minutes","servings":4}`, rec.Body.String())
}

func TestRecipeDetailsFallback(t *testing.T) {
	srv, _, _ := newTestServer(&fakeLLM{err: errors.New("rate limited")})

	rec := do(t, srv.Routes(), http.MethodPost, "/recipe-details", `{"query":"chicken CURRY"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var recipe Recipe
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recipe))
	assert.Equal(t, "Chicken Curry", recipe.Name)
	assert.Equal(t, "Recipe details unavailable", recipe.Description)
	assert.Equal(t, []string{"Check recipe online for ingredients"}, recipe.Ingredients)
	assert.Equal(t, []string{"Please search online for detailed instructions"}, recipe.Steps)
	assert.Equal(t, "30 minutes", recipe.PrepTime)
	assert.Equal(t, 4, recipe.Servings)
}

func TestQueryRequired(t *testing.T) {
	srv, _, _ := newTestServer(&fakeLLM{reply: `{}`})
	h := srv.Routes()

	for _, path := range []string{"/detect-intent", "/recipe-details", "/ai-search"} {
		assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, path, `{"query":"  "}`).Code, path)
		assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, path, `{`).Code, path)
	}
}

func TestReviewMessage(t *testing.T) {
	msg, err := reviewMessage(model.Sentiment{Positive: 60, Negative: 40, Aspects: model.Aspects{{Name: "fit", Score: 70}}}, "Runs small")
	require.NoError(t, err)
	assert.Contains(t, msg, `Current Sentiment: {"positive":60,"negative":40,"aspects":{"fit":70}}`)
	assert.Contains(t, msg, `New Review: "Runs small"`)
}

func TestAnalyzeReview(t *testing.T) {
	llm := &fakeLLM{reply: `{"positive":72.6,"negative":28,"aspects":{"taste":95,"price":40}}`}
	srv, cat, _ := newTestServer(llm)

	rec := do(t, srv.Routes(), http.MethodPost, "/analyze-review", `{"productId":"1","reviewText":"Great taste, bit pricey"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"positive":72,"negative":28,"aspects":{"taste":95,"price":40}}`, rec.Body.String())

	saved := cat.updated["1"]
	assert.Equal(t, 72, saved.Positive)
	assert.Equal(t, model.Aspects{{Name: "taste", Score: 95}, {Name: "price", Score: 40}}, saved.Aspects)
	assert.Contains(t, llm.requests[0].Messages[1].Content, `"taste":90`)
}

func TestAnalyzeReviewDefaults(t *testing.T) {
	srv, cat, _ := newTestServer(&fakeLLM{reply: `{}`})

	rec := do(t, srv.Routes(), http.MethodPost, "/analyze-review", `{"productId":"2","reviewText":"meh"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"positive":50,"negative":50,"aspects":{}}`, rec.Body.String())
	assert.Contains(t, cat.updated, "2")
}

func TestAnalyzeReviewValidation(t *testing.T) {
	srv, cat, _ := newTestServer(&fakeLLM{reply: `{}`})
	h := srv.Routes()

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/analyze-review", `{"productId":"1"}`).Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodPost, "/analyze-review", `{"productId":"x","reviewText":"ok"}`).Code)
	assert.Empty(t, cat.updated)
}

func TestTrimHistory(t *testing.T) {
	var h []model.ChatMessage
	for i := 0; i < 9; i++ {
		h = append(h, model.ChatMessage{Role: "user", Content: string(rune('a' + i))})
	}
	got := trimHistory(h)
	require.Len(t, got, historyLimit)
	assert.Equal(t, "d", got[0].Content)
	assert.Equal(t, "i", got[len(got)-1].Content)
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "plain words", PlainText("plain words"))
	assert.Equal(t, "Bold and italic text", PlainText("<p><b>Bold</b> and <i>italic</i>\n text</p>"))
	assert.Equal(t, "Salt & Pepper", PlainText("Salt &amp; Pepper"))
}
