package recipe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// ErrNotFound is returned when a recipe id does not exist.
var ErrNotFound = errors.New("recipe not found")

// Store defines the interface for recipe data operations.
type Store interface {
	ListRecipes(ctx context.Context) ([]Recipe, error)
	GetRecipe(ctx context.Context, id int64) (*Recipe, error)
	CreateRecipe(ctx context.Context, in Input) (int64, error)
	UpdateRecipe(ctx context.Context, id int64, in Input) error
	DeleteRecipe(ctx context.Context, id int64) error
	ListCategories(ctx context.Context) ([]Category, error)
	ListIngredients(ctx context.Context) ([]Ingredient, error)
	FridgeSearch(ctx context.Context, pantry []string) ([]MatchResult, error)
}

// PostgresStore implements the Store interface for PostgreSQL.
type PostgresStore struct {
	db *sqlx.DB
}

var defaultCategories = []Category{
	{Name: "breakfast", Description: "Morning meals"},
	{Name: "appetizer", Description: "Starters and snacks"},
	{Name: "lunch", Description: "Midday meals"},
	{Name: "dinner", Description: "Evening meals"},
	{Name: "dessert", Description: "Sweet treats"},
	{Name: "before sleep meal", Description: "Light meals before bedtime"},
}

// NewPostgresStore connects to the database and bootstraps the schema.
// Every statement is idempotent, so restarts are safe.
func NewPostgresStore(dataSourceName string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS categories (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS recipes (
		id SERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		category_id INTEGER REFERENCES categories (id),
		directions TEXT NOT NULL DEFAULT '',
		prep_time INTEGER,
		serving_size INTEGER,
		notes TEXT NOT NULL DEFAULT '',
		date_added TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS ingredients (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	);

	CREATE TABLE IF NOT EXISTS recipe_ingredients (
		recipe_id INTEGER NOT NULL REFERENCES recipes (id) ON DELETE CASCADE,
		ingredient_id INTEGER NOT NULL REFERENCES ingredients (id),
		quantity TEXT NOT NULL DEFAULT '',
		unit TEXT NOT NULL DEFAULT '',
		is_alternative BOOLEAN NOT NULL DEFAULT FALSE,
		alternative_for INTEGER REFERENCES ingredients (id),
		PRIMARY KEY (recipe_id, ingredient_id)
	);

	CREATE INDEX IF NOT EXISTS idx_ingredients_name ON ingredients (name);
	CREATE INDEX IF NOT EXISTS idx_recipes_title ON recipes (title);
	CREATE INDEX IF NOT EXISTS idx_recipes_category_id ON recipes (category_id);
	CREATE INDEX IF NOT EXISTS idx_recipe_ingredients_recipe_id ON recipe_ingredients (recipe_id);
	CREATE INDEX IF NOT EXISTS idx_recipe_ingredients_ingredient_id ON recipe_ingredients (ingredient_id);
	`
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	for _, c := range defaultCategories {
		_, err := db.Exec(
			"INSERT INTO categories (name, description) VALUES ($1, $2) ON CONFLICT (name) DO NOTHING",
			c.Name, c.Description,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to seed category %q: %w", c.Name, err)
		}
	}

	return &PostgresStore{db: db}, nil
}

// ListRecipes returns all recipe rows ordered by title.
func (s *PostgresStore) ListRecipes(ctx context.Context) ([]Recipe, error) {
	recipes := []Recipe{}
	err := s.db.SelectContext(ctx, &recipes,
		"SELECT id, title, category_id, directions, prep_time, serving_size, notes, date_added FROM recipes ORDER BY title")
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, nil
}

// GetRecipe returns a single recipe with its category name and joined
// ingredient rows.
func (s *PostgresStore) GetRecipe(ctx context.Context, id int64) (*Recipe, error) {
	var r Recipe
	err := s.db.GetContext(ctx, &r, `
		SELECT r.id, r.title, r.category_id, r.directions, r.prep_time, r.serving_size,
		       r.notes, r.date_added, c.name AS category_name
		FROM recipes r
		LEFT JOIN categories c ON r.category_id = c.id
		WHERE r.id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get recipe: %w", err)
	}

	r.Ingredients = []RecipeIngredient{}
	err = s.db.SelectContext(ctx, &r.Ingredients, `
		SELECT ri.recipe_id, ri.ingredient_id, i.name AS ingredient_name,
		       ri.quantity, ri.unit, ri.is_alternative, ri.alternative_for
		FROM recipe_ingredients ri
		JOIN ingredients i ON ri.ingredient_id = i.id
		WHERE ri.recipe_id = $1
		ORDER BY ri.ingredient_id`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe ingredients: %w", err)
	}

	return &r, nil
}

// CreateRecipe inserts a recipe and its ingredient associations in one
// transaction and returns the new id.
func (s *PostgresStore) CreateRecipe(ctx context.Context, in Input) (int64, error) {
	var id int64
	err := s.withTx(ctx, func(tx *sqlx.Tx) error {
		err := tx.QueryRowxContext(ctx, `
			INSERT INTO recipes (title, category_id, directions, prep_time, serving_size, notes)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			strings.TrimSpace(in.Title), in.CategoryID, in.Directions,
			in.PrepTime, in.ServingSize, in.Notes,
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("failed to insert recipe: %w", err)
		}
		return s.replaceIngredients(ctx, tx, id, in.NamedIngredients())
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

// UpdateRecipe rewrites the recipe row and replaces all of its
// ingredient associations in one transaction.
func (s *PostgresStore) UpdateRecipe(ctx context.Context, id int64, in Input) error {
	return s.withTx(ctx, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE recipes
			SET title = $1, category_id = $2, directions = $3, prep_time = $4, serving_size = $5, notes = $6
			WHERE id = $7`,
			strings.TrimSpace(in.Title), in.CategoryID, in.Directions,
			in.PrepTime, in.ServingSize, in.Notes, id,
		)
		if err != nil {
			return fmt.Errorf("failed to update recipe: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read update result: %w", err)
		}
		if n == 0 {
			return ErrNotFound
		}

		if _, err := tx.ExecContext(ctx, "DELETE FROM recipe_ingredients WHERE recipe_id = $1", id); err != nil {
			return fmt.Errorf("failed to clear recipe ingredients: %w", err)
		}
		return s.replaceIngredients(ctx, tx, id, in.NamedIngredients())
	})
}

// DeleteRecipe removes a recipe; the junction rows cascade. Shared
// ingredient rows stay behind for other recipes.
func (s *PostgresStore) DeleteRecipe(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM recipes WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListCategories returns all categories ordered by name.
func (s *PostgresStore) ListCategories(ctx context.Context) ([]Category, error) {
	categories := []Category{}
	err := s.db.SelectContext(ctx, &categories,
		"SELECT id, name, description FROM categories ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// ListIngredients returns all ingredients ordered by name.
func (s *PostgresStore) ListIngredients(ctx context.Context) ([]Ingredient, error) {
	ingredients := []Ingredient{}
	err := s.db.SelectContext(ctx, &ingredients,
		"SELECT id, name FROM ingredients ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return ingredients, nil
}

// FridgeSearch loads every recipe/ingredient pair and scores it
// against the pantry in memory.
func (s *PostgresStore) FridgeSearch(ctx context.Context, pantry []string) ([]MatchResult, error) {
	rows := []MatchRow{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT r.id, r.title, r.prep_time, c.name AS category, i.name AS ingredient_name
		FROM recipes r
		JOIN recipe_ingredients ri ON r.id = ri.recipe_id
		JOIN ingredients i ON ri.ingredient_id = i.id
		LEFT JOIN categories c ON r.category_id = c.id
		ORDER BY r.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to load fridge search rows: %w", err)
	}
	return MatchRecipes(pantry, rows), nil
}

// withTx runs fn inside a transaction, rolling back on any error.
func (s *PostgresStore) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// replaceIngredients creates any missing ingredient rows and writes the
// junction rows for the recipe. Ingredient names are case-normalized,
// and repeats of the same name collapse into the first entry so the
// composite primary key is never violated.
func (s *PostgresStore) replaceIngredients(ctx context.Context, tx *sqlx.Tx, recipeID int64, ingredients []IngredientInput) error {
	seen := make(map[string]bool)
	for _, ing := range ingredients {
		name := strings.ToLower(strings.TrimSpace(ing.Name))
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		ingredientID, err := ensureIngredient(ctx, tx, name)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO recipe_ingredients (recipe_id, ingredient_id, quantity, unit, is_alternative, alternative_for)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			recipeID, ingredientID, ing.Quantity, ing.Unit, ing.IsAlternative, ing.AlternativeFor,
		)
		if err != nil {
			return fmt.Errorf("failed to link ingredient %q: %w", name, err)
		}
	}
	return nil
}

// ensureIngredient inserts an ingredient name if absent and returns its
// id. Two requests racing on the same new name both succeed: the loser
// of the insert re-reads the winner's row instead of failing the
// transaction.
func ensureIngredient(ctx context.Context, tx *sqlx.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRowxContext(ctx,
		"INSERT INTO ingredients (name) VALUES ($1) ON CONFLICT (name) DO NOTHING RETURNING id",
		name,
	).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) && !isUniqueViolation(err) {
		return 0, fmt.Errorf("failed to insert ingredient %q: %w", name, err)
	}

	if err := tx.QueryRowxContext(ctx, "SELECT id FROM ingredients WHERE name = $1", name).Scan(&id); err != nil {
		return 0, fmt.Errorf("failed to look up ingredient %q: %w", name, err)
	}
	return id, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}
