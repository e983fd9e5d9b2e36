package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter wires middleware and routes around the handler.
func NewRouter(h *Handler, logger *zap.Logger, allowOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestid.New())
	r.Use(RequestLogger(logger))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", h.Health)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/recipes", h.ListRecipes)
		apiGroup.GET("/recipes/:id", h.GetRecipe)
		apiGroup.POST("/recipes", h.CreateRecipe)
		apiGroup.PUT("/recipes/:id", h.UpdateRecipe)
		apiGroup.DELETE("/recipes/:id", h.DeleteRecipe)
		apiGroup.POST("/recipes/import", h.ImportRecipe)
		// Older clients still post to the flat import path.
		apiGroup.POST("/import-recipe", h.ImportRecipe)

		apiGroup.GET("/categories", h.ListCategories)
		apiGroup.GET("/ingredients", h.ListIngredients)
		apiGroup.POST("/fridge-search", h.FridgeSearch)
	}

	return r
}
