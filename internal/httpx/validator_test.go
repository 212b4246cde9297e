package httpx

import (
	"strings"
	"testing"
)

type searchInput struct {
	Term       string   `json:"q" validate:"max=10"`
	Categories []string `json:"categories" validate:"max=2,dive,max=5"`
}

func TestValidateStruct_ValidInput(t *testing.T) {
	if errs := ValidateStruct(searchInput{Term: "war", Categories: []string{"Drama"}}); len(errs) != 0 {
		t.Errorf("Expected no validation errors, got %v", errs)
	}
}

func TestValidateStruct_TooLong(t *testing.T) {
	errs := ValidateStruct(searchInput{Term: strings.Repeat("x", 11)})
	if len(errs) != 1 {
		t.Fatalf("Expected 1 validation error, got %d", len(errs))
	}
	if errs[0].Field != "q" {
		t.Errorf("Expected field q, got %s", errs[0].Field)
	}
	if !strings.Contains(errs[0].Message, "at most 10") {
		t.Errorf("Unexpected message %q", errs[0].Message)
	}
}

func TestValidateStruct_TooManyCategories(t *testing.T) {
	errs := ValidateStruct(searchInput{Categories: []string{"a", "b", "c"}})
	if len(errs) != 1 || errs[0].Field != "categories" {
		t.Errorf("Expected a categories error, got %v", errs)
	}
}

func TestValidateStruct_CategoryTooLong(t *testing.T) {
	errs := ValidateStruct(searchInput{Categories: []string{"Science Fiction"}})
	if len(errs) != 1 || !strings.HasPrefix(errs[0].Field, "categories[0]") {
		t.Errorf("Expected a categories[0] error, got %v", errs)
	}
}
