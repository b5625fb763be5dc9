package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestCategoryHandler_GetCategories(t *testing.T) {
	r := gin.New()
	r.GET("/categories", NewCategoryHandler().GetCategories)

	rec := doRequest(r, "GET", "/categories", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	categories := parseJSON(t, rec)["categories"].([]interface{})
	if len(categories) != 13 {
		t.Fatalf("expected 13 categories, got %d", len(categories))
	}
	if categories[0] != "Food" {
		t.Errorf("expected Food first, got %v", categories[0])
	}
	found := false
	for _, c := range categories {
		if c == "Bike Repairing" {
			found = true
		}
	}
	if !found {
		t.Error("expected Bike Repairing in categories")
	}
}
