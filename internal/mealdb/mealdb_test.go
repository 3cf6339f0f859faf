package mealdb

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodflow/internal/logger"
)

const sampleResponse = `{
	"meals": [{
		"idMeal": "52772",
		"strMeal": "Teriyaki Chicken Casserole",
		"strCategory": "Chicken",
		"strArea": "Japanese",
		"strInstructions": "Preheat oven to 350.\r\n\r\nCombine soy sauce and sugar.",
		"strMealThumb": "https://www.themealdb.com/images/media/meals/wvpsxx1468256321.jpg",
		"strTags": "Meat, Casserole,",
		"strYoutube": "https://www.youtube.com/watch?v=4aZr5hZXP_s",
		"strIngredient1": "soy sauce",
		"strIngredient2": "water",
		"strIngredient3": " ",
		"strIngredient4": "chicken breasts",
		"strIngredient5": null,
		"strMeasure1": "3/4 cup",
		"strMeasure2": "",
		"strMeasure3": "1 tbs",
		"strMeasure4": " 2 ",
		"strSource": null,
		"dateModified": null
	}]
}`

func TestParse(t *testing.T) {
	var body Response
	require.NoError(t, json.Unmarshal([]byte(sampleResponse), &body))
	require.Len(t, body.Meals, 1)

	rec := Parse(body.Meals[0])

	assert.Equal(t, "52772", rec.ID)
	assert.Equal(t, "Teriyaki Chicken Casserole", rec.Name)
	assert.Equal(t, "Chicken", rec.Category)
	assert.Equal(t, "Japanese", rec.Area)
	assert.Equal(t, []string{"3/4 cup soy sauce", "water", "2 chicken breasts"}, rec.Ingredients)
	assert.Equal(t, []string{"Meat", "Casserole"}, rec.Tags)
	assert.Empty(t, rec.SourceURL)
	assert.NotEmpty(t, rec.VideoURL)
}

func TestParseDefaults(t *testing.T) {
	rec := Parse(RawMeal{})

	_, err := uuid.Parse(rec.ID)
	assert.NoError(t, err, "missing id should be replaced with a uuid")
	assert.Equal(t, UnknownMealName, rec.Name)
	assert.Empty(t, rec.Ingredients)
	assert.Nil(t, rec.Tags)

	other := Parse(RawMeal{})
	assert.NotEqual(t, rec.ID, other.ID)
}

func TestRandomRecipe(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/random.php", r.URL.Path)
			w.WriteHeader(http.StatusOK)
			fmt.Fprint(w, sampleResponse)
		}))
		defer server.Close()

		client := NewClient(server.URL+"/", time.Second, logger.Discard())
		rec, err := client.RandomRecipe(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Teriyaki Chicken Casserole", rec.Name)
	})

	t.Run("ServerError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewClient(server.URL, time.Second, logger.Discard())
		_, err := client.RandomRecipe(ctx)
		assert.ErrorContains(t, err, "status 500")
	})

	t.Run("EmptyMeals", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"meals": null}`)
		}))
		defer server.Close()

		client := NewClient(server.URL, time.Second, logger.Discard())
		_, err := client.RandomRecipe(ctx)
		assert.Error(t, err)
	})

	t.Run("Malformed", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `<html>`)
		}))
		defer server.Close()

		client := NewClient(server.URL, time.Second, logger.Discard())
		_, err := client.RandomRecipe(ctx)
		assert.ErrorContains(t, err, "failed to decode response")
	})
}
