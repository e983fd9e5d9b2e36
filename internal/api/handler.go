package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recipebox/internal/importer"
	"recipebox/internal/recipe"
)

// RecipeStore defines the interface for recipe data operations.
type RecipeStore interface {
	ListRecipes(ctx context.Context) ([]recipe.Recipe, error)
	GetRecipe(ctx context.Context, id int64) (*recipe.Recipe, error)
	CreateRecipe(ctx context.Context, in recipe.Input) (int64, error)
	UpdateRecipe(ctx context.Context, id int64, in recipe.Input) error
	DeleteRecipe(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]recipe.Category, error)
	ListIngredients(ctx context.Context) ([]recipe.Ingredient, error)
	FridgeSearch(ctx context.Context, pantry []string) ([]recipe.MatchResult, error)
}

// RecipeImporter defines the interface for URL imports.
type RecipeImporter interface {
	ImportFromURL(ctx context.Context, rawURL string) (*importer.ParsedRecipe, error)
}

const dbTimeout = 5 * time.Second

// Handler handles HTTP requests.
type Handler struct {
	Store    RecipeStore
	Importer RecipeImporter
	Logger   *zap.Logger
}

// NewHandler creates a new Handler.
func NewHandler(store RecipeStore, imp RecipeImporter, logger *zap.Logger) *Handler {
	return &Handler{Store: store, Importer: imp, Logger: logger}
}

// Health reports that the API is up.
func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "Recipe Manager API is running")
}

// ListRecipes returns all recipe summaries ordered by title.
func (h *Handler) ListRecipes(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	recipes, err := h.Store.ListRecipes(ctx)
	if err != nil {
		h.serverError(c, "failed to list recipes", err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

// GetRecipe returns one recipe with its joined ingredient rows and
// category name.
func (h *Handler) GetRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	r, err := h.Store.GetRecipe(ctx, id)
	if err != nil {
		if errors.Is(err, recipe.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		h.serverError(c, "failed to get recipe", err)
		return
	}
	c.JSON(http.StatusOK, r)
}

// CreateRecipe validates the payload and stores a new recipe together
// with its ingredient associations.
func (h *Handler) CreateRecipe(c *gin.Context) {
	in, ok := bindRecipeInput(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	id, err := h.Store.CreateRecipe(ctx, *in)
	if err != nil {
		h.serverError(c, "failed to create recipe", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// UpdateRecipe rewrites a recipe and replaces all of its ingredient
// associations.
func (h *Handler) UpdateRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	in, ok := bindRecipeInput(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	if err := h.Store.UpdateRecipe(ctx, id, *in); err != nil {
		if errors.Is(err, recipe.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		h.serverError(c, "failed to update recipe", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// DeleteRecipe removes a recipe; its ingredient associations cascade.
func (h *Handler) DeleteRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	if err := h.Store.DeleteRecipe(ctx, id); err != nil {
		if errors.Is(err, recipe.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Recipe not found"})
			return
		}
		h.serverError(c, "failed to delete recipe", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Recipe deleted successfully"})
}

// ListCategories returns all categories ordered by name.
func (h *Handler) ListCategories(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	categories, err := h.Store.ListCategories(ctx)
	if err != nil {
		h.serverError(c, "failed to list categories", err)
		return
	}
	c.JSON(http.StatusOK, categories)
}

// ListIngredients returns all known ingredients ordered by name.
func (h *Handler) ListIngredients(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	ingredients, err := h.Store.ListIngredients(ctx)
	if err != nil {
		h.serverError(c, "failed to list ingredients", err)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

// FridgeSearch ranks recipes by how completely the submitted pantry
// covers their ingredient lists.
func (h *Handler) FridgeSearch(c *gin.Context) {
	var req struct {
		Ingredients []string `json:"ingredients"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if len(req.Ingredients) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No ingredients provided"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
	defer cancel()

	results, err := h.Store.FridgeSearch(ctx, req.Ingredients)
	if err != nil {
		h.serverError(c, "fridge search failed", err)
		return
	}
	c.JSON(http.StatusOK, results)
}

// ImportRecipe fetches a recipe from a URL and returns a ParsedRecipe
// for client-side review. Only a truly unreachable URL is an error;
// partial extraction still returns a recipe-shaped object.
func (h *Handler) ImportRecipe(c *gin.Context) {
	var req struct {
		URL string `json:"url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "URL is required"})
		return
	}

	parsed, err := h.Importer.ImportFromURL(c.Request.Context(), req.URL)
	if err != nil {
		if errors.Is(err, importer.ErrUnreachable) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unable to access the provided URL. Please check the URL and try again."})
			return
		}
		h.Logger.Error("recipe import failed", zap.String("url", req.URL), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to import recipe. The website might not be supported or the recipe format is not recognized."})
		return
	}
	c.JSON(http.StatusOK, parsed)
}

func recipeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe id"})
		return 0, false
	}
	return id, true
}

// bindRecipeInput decodes the create/update payload and enforces the
// one hard validation rule: at least one ingredient with a name.
// Nameless entries are filtered at write time rather than rejected,
// and the category stays optional on every entry path.
func bindRecipeInput(c *gin.Context) (*recipe.Input, bool) {
	var in recipe.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return nil, false
	}
	if len(in.NamedIngredients()) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "At least one ingredient with a name is required"})
		return nil, false
	}
	return &in, true
}

func (h *Handler) serverError(c *gin.Context, msg string, err error) {
	h.Logger.Error(msg, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
