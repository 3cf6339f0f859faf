// Package mealdb fetches random recipes from TheMealDB and adapts its raw
// records into recipe.Recipe values.
package mealdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"foodflow/internal/recipe"
)

// UnknownMealName is used when a record carries no name.
const UnknownMealName = "Unknown Meal"

// slotCount is the number of ingredient/measure pairs in a raw record.
const slotCount = 20

// RawMeal is one record as returned by the API. The numbered
// strIngredientN/strMeasureN fields are collected into fixed arrays.
type RawMeal struct {
	ID           *string
	Name         *string
	Instructions *string
	Thumb        *string
	Category     *string
	Area         *string
	Tags         *string
	Youtube      *string
	Source       *string
	Ingredients  [slotCount]string
	Measures     [slotCount]string
}

// UnmarshalJSON reads the flat API object. Null and non-string values are
// treated as absent.
func (m *RawMeal) UnmarshalJSON(data []byte) error {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	str := func(key string) *string {
		if s, ok := fields[key].(string); ok {
			return &s
		}
		return nil
	}

	m.ID = str("idMeal")
	m.Name = str("strMeal")
	m.Instructions = str("strInstructions")
	m.Thumb = str("strMealThumb")
	m.Category = str("strCategory")
	m.Area = str("strArea")
	m.Tags = str("strTags")
	m.Youtube = str("strYoutube")
	m.Source = str("strSource")

	for i := 0; i < slotCount; i++ {
		if s := str(fmt.Sprintf("strIngredient%d", i+1)); s != nil {
			m.Ingredients[i] = *s
		}
		if s := str(fmt.Sprintf("strMeasure%d", i+1)); s != nil {
			m.Measures[i] = *s
		}
	}
	return nil
}

// Response is the top-level structure of the API response.
type Response struct {
	Meals []RawMeal `json:"meals"`
}

// Client talks to the TheMealDB JSON API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        logrus.FieldLogger
}

// NewClient creates a new TheMealDB client. baseURL is the API root, e.g.
// https://www.themealdb.com/api/json/v1/1.
func NewClient(baseURL string, timeout time.Duration, log logrus.FieldLogger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

// RandomRecipe fetches one random recipe.
func (c *Client) RandomRecipe(ctx context.Context) (*recipe.Recipe, error) {
	url := c.baseURL + "/random.php"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("mealdb api error: status %d", resp.StatusCode)
	}

	var body Response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(body.Meals) == 0 {
		return nil, fmt.Errorf("mealdb returned no meals")
	}

	rec := Parse(body.Meals[0])
	c.log.WithFields(logrus.Fields{"id": rec.ID, "name": rec.Name}).Debug("fetched random recipe")
	return &rec, nil
}

// Parse adapts a raw record.
//
// Ingredient and measure slots are paired by index. An empty ingredient
// drops the slot, an empty measure yields the bare ingredient, otherwise the
// line reads "<measure> <ingredient>".
func Parse(raw RawMeal) recipe.Recipe {
	rec := recipe.Recipe{
		ID:           deref(raw.ID),
		Name:         deref(raw.Name),
		Instructions: deref(raw.Instructions),
		ImageURL:     deref(raw.Thumb),
		Category:     deref(raw.Category),
		Area:         deref(raw.Area),
		VideoURL:     deref(raw.Youtube),
		SourceURL:    deref(raw.Source),
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Name == "" {
		rec.Name = UnknownMealName
	}

	for i := 0; i < slotCount; i++ {
		ingredient := strings.TrimSpace(raw.Ingredients[i])
		if ingredient == "" {
			continue
		}
		measure := strings.TrimSpace(raw.Measures[i])
		if measure == "" {
			rec.Ingredients = append(rec.Ingredients, ingredient)
		} else {
			rec.Ingredients = append(rec.Ingredients, measure+" "+ingredient)
		}
	}

	if raw.Tags != nil {
		for _, tag := range strings.Split(*raw.Tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				rec.Tags = append(rec.Tags, tag)
			}
		}
	}

	return rec
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
