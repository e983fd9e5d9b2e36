package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recipebox/internal/importer"
	"recipebox/internal/recipe"
)

// mockStore is a mock of the RecipeStore.
type mockStore struct {
	recipes     map[int64]*recipe.Recipe
	nextID      int64
	returnError error

	receivedInput  recipe.Input
	receivedPantry []string
	matchResults   []recipe.MatchResult
}

func newMockStore() *mockStore {
	return &mockStore{recipes: make(map[int64]*recipe.Recipe), nextID: 1}
}

func (m *mockStore) ListRecipes(ctx context.Context) ([]recipe.Recipe, error) {
	if m.returnError != nil {
		return nil, m.returnError
	}
	var out []recipe.Recipe
	for _, r := range m.recipes {
		out = append(out, *r)
	}
	return out, nil
}

func (m *mockStore) GetRecipe(ctx context.Context, id int64) (*recipe.Recipe, error) {
	if m.returnError != nil {
		return nil, m.returnError
	}
	r, ok := m.recipes[id]
	if !ok {
		return nil, recipe.ErrNotFound
	}
	return r, nil
}

func (m *mockStore) CreateRecipe(ctx context.Context, in recipe.Input) (int64, error) {
	if m.returnError != nil {
		return 0, m.returnError
	}
	m.receivedInput = in
	id := m.nextID
	m.nextID++
	m.recipes[id] = &recipe.Recipe{ID: id, Title: in.Title, Directions: in.Directions}
	return id, nil
}

func (m *mockStore) UpdateRecipe(ctx context.Context, id int64, in recipe.Input) error {
	if m.returnError != nil {
		return m.returnError
	}
	if _, ok := m.recipes[id]; !ok {
		return recipe.ErrNotFound
	}
	m.receivedInput = in
	m.recipes[id].Title = in.Title
	return nil
}

func (m *mockStore) DeleteRecipe(ctx context.Context, id int64) error {
	if m.returnError != nil {
		return m.returnError
	}
	if _, ok := m.recipes[id]; !ok {
		return recipe.ErrNotFound
	}
	delete(m.recipes, id)
	return nil
}

func (m *mockStore) ListCategories(ctx context.Context) ([]recipe.Category, error) {
	if m.returnError != nil {
		return nil, m.returnError
	}
	return []recipe.Category{{ID: 1, Name: "dinner", Description: "Evening meals"}}, nil
}

func (m *mockStore) ListIngredients(ctx context.Context) ([]recipe.Ingredient, error) {
	if m.returnError != nil {
		return nil, m.returnError
	}
	return []recipe.Ingredient{{ID: 1, Name: "chicken breast"}}, nil
}

func (m *mockStore) FridgeSearch(ctx context.Context, pantry []string) ([]recipe.MatchResult, error) {
	if m.returnError != nil {
		return nil, m.returnError
	}
	m.receivedPantry = pantry
	return m.matchResults, nil
}

// mockImporter is a mock of the RecipeImporter.
type mockImporter struct {
	returnError error
	receivedURL string
	result      *importer.ParsedRecipe
}

func (m *mockImporter) ImportFromURL(ctx context.Context, rawURL string) (*importer.ParsedRecipe, error) {
	m.receivedURL = rawURL
	if m.returnError != nil {
		return nil, m.returnError
	}
	if m.result != nil {
		return m.result, nil
	}
	return &importer.ParsedRecipe{
		Title:       "Mock Imported Recipe",
		Directions:  "Step 1: Mix everything.",
		Ingredients: []importer.ParsedIngredient{{Name: "flour", Quantity: "2", Unit: "cups"}},
	}, nil
}

func newTestRouter(store *mockStore, imp *mockImporter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()
	handler := NewHandler(store, imp, logger)
	return NewRouter(handler, logger, []string{"http://localhost:3000"})
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func validInput() recipe.Input {
	return recipe.Input{
		Title:      "Pancakes",
		Directions: "Step 1: Whisk. Step 2: Fry.",
		Ingredients: []recipe.IngredientInput{
			{Name: "flour", Quantity: "2", Unit: "cups"},
			{Name: "milk", Quantity: "1", Unit: "cup"},
		},
	}
}

func TestHealth(t *testing.T) {
	router := newTestRouter(newMockStore(), &mockImporter{})

	rr := doJSON(t, router, http.MethodGet, "/", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Recipe Manager API is running", rr.Body.String())
}

func TestCreateRecipe(t *testing.T) {
	store := newMockStore()
	router := newTestRouter(store, &mockImporter{})

	rr := doJSON(t, router, http.MethodPost, "/api/recipes", validInput())

	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp map[string]int64
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp["id"])
	assert.Equal(t, "Pancakes", store.receivedInput.Title)
}

func TestCreateRecipeNoNamedIngredients(t *testing.T) {
	router := newTestRouter(newMockStore(), &mockImporter{})

	in := validInput()
	in.Ingredients = []recipe.IngredientInput{{Name: "   "}, {Name: ""}}
	rr := doJSON(t, router, http.MethodPost, "/api/recipes", in)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "At least one ingredient with a name is required")
}

func TestCreateRecipeFiltersNamelessEntries(t *testing.T) {
	store := newMockStore()
	router := newTestRouter(store, &mockImporter{})

	in := validInput()
	in.Ingredients = append(in.Ingredients, recipe.IngredientInput{Name: "  ", Quantity: "1"})
	rr := doJSON(t, router, http.MethodPost, "/api/recipes", in)

	assert.Equal(t, http.StatusCreated, rr.Code)
	// The nameless row travels with the input; the store filters it.
	assert.Len(t, store.receivedInput.NamedIngredients(), 2)
}

func TestGetRecipe(t *testing.T) {
	store := newMockStore()
	store.recipes[7] = &recipe.Recipe{ID: 7, Title: "Stew"}
	router := newTestRouter(store, &mockImporter{})

	rr := doJSON(t, router, http.MethodGet, "/api/recipes/7", nil)

	assert.Equal(t, http.StatusOK, rr.Code)

	var got recipe.Recipe
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "Stew", got.Title)
}

func TestGetRecipeNotFound(t *testing.T) {
	router := newTestRouter(newMockStore(), &mockImporter{})

	rr := doJSON(t, router, http.MethodGet, "/api/recipes/99", nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), "Recipe not found")
}

func TestGetRecipeInvalidID(t *testing.T) {
	router := newTestRouter(newMockStore(), &mockImporter{})

	rr := doJSON(t, router, http.MethodGet, "/api/recipes/abc", nil)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Invalid recipe id")
}

func TestUpdateRecipe(t *testing.T) {
	store := newMockStore()
	store.recipes[3] = &recipe.Recipe{ID: 3, Title: "Old Title"}
	router := newTestRouter(store, &mockImporter{})

	in := validInput()
	in.Title = "New Title"
	rr := doJSON(t, router, http.MethodPut, "/api/recipes/3", in)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "New Title", store.recipes[3].Title)
}

func TestUpdateRecipeNotFound(t *testing.T) {
	router := newTestRouter(newMockStore(), &mockImporter{})

	rr := doJSON(t, router, http.MethodPut, "/api/recipes/42", validInput())

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestDeleteRecipe(t *testing.T) {
	store := newMockStore()
	store.recipes[5] = &recipe.Recipe{ID: 5, Title: "Toast"}
	router := newTestRouter(store, &mockImporter{})

	rr := doJSON(t, router, http.MethodDelete, "/api/recipes/5", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "Recipe deleted successfully")
	assert.Empty(t, store.recipes)
}

func TestDeleteRecipeNotFound(t *testing.T) {
	router := newTestRouter(newMockStore(), &mockImporter{})

	rr := doJSON(t, router, http.MethodDelete, "/api/recipes/5", nil)

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListCategories(t *testing.T) {
	router := newTestRouter(newMockStore(), &mockImporter{})

	rr := doJSON(t, router, http.MethodGet, "/api/categories", nil)

	assert.Equal(t, http.StatusOK, rr.Code)

	var categories []recipe.Category
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &categories))
	require.Len(t, categories, 1)
	assert.Equal(t, "dinner", categories[0].Name)
}

func TestListIngredients(t *testing.T) {
	router := newTestRouter(newMockStore(), &mockImporter{})

	rr := doJSON(t, router, http.MethodGet, "/api/ingredients", nil)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "chicken breast")
}

func TestFridgeSearch(t *testing.T) {
	store := newMockStore()
	store.matchResults = []recipe.MatchResult{
		{RecipeID: 1, Title: "Chicken Rice", MatchingCount: 2, TotalIngredients: 2, MatchPercentage: 100},
	}
	router := newTestRouter(store, &mockImporter{})

	rr := doJSON(t, router, http.MethodPost, "/api/fridge-search",
		map[string][]string{"ingredients": {"chicken", "rice"}})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"chicken", "rice"}, store.receivedPantry)

	var results []recipe.MatchResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &results))
	require.Len(t, results, 1)
	assert.Equal(t, float64(100), results[0].MatchPercentage)
}

func TestFridgeSearchNoIngredients(t *testing.T) {
	router := newTestRouter(newMockStore(), &mockImporter{})

	rr := doJSON(t, router, http.MethodPost, "/api/fridge-search",
		map[string][]string{"ingredients": {}})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "No ingredients provided")
}

func TestFridgeSearchStoreError(t *testing.T) {
	store := newMockStore()
	store.returnError = errors.New("db down")
	router := newTestRouter(store, &mockImporter{})

	rr := doJSON(t, router, http.MethodPost, "/api/fridge-search",
		map[string][]string{"ingredients": {"chicken"}})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestImportRecipe(t *testing.T) {
	imp := &mockImporter{}
	router := newTestRouter(newMockStore(), imp)

	rr := doJSON(t, router, http.MethodPost, "/api/recipes/import",
		map[string]string{"url": "https://example.com/recipe"})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "https://example.com/recipe", imp.receivedURL)

	var parsed importer.ParsedRecipe
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &parsed))
	assert.Equal(t, "Mock Imported Recipe", parsed.Title)
	require.Len(t, parsed.Ingredients, 1)
	assert.Equal(t, "flour", parsed.Ingredients[0].Name)
}

func TestImportRecipeLegacyPath(t *testing.T) {
	imp := &mockImporter{}
	router := newTestRouter(newMockStore(), imp)

	rr := doJSON(t, router, http.MethodPost, "/api/import-recipe",
		map[string]string{"url": "https://example.com/recipe"})

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestImportRecipeMissingURL(t *testing.T) {
	router := newTestRouter(newMockStore(), &mockImporter{})

	rr := doJSON(t, router, http.MethodPost, "/api/recipes/import", map[string]string{})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "URL is required")
}

func TestImportRecipeUnreachable(t *testing.T) {
	imp := &mockImporter{returnError: importer.ErrUnreachable}
	router := newTestRouter(newMockStore(), imp)

	rr := doJSON(t, router, http.MethodPost, "/api/recipes/import",
		map[string]string{"url": "https://nope.invalid/recipe"})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Unable to access the provided URL")
}

func TestImportRecipeGenericFailure(t *testing.T) {
	imp := &mockImporter{returnError: errors.New("parse blew up")}
	router := newTestRouter(newMockStore(), imp)

	rr := doJSON(t, router, http.MethodPost, "/api/recipes/import",
		map[string]string{"url": "https://example.com/recipe"})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), "Failed to import recipe")
}
