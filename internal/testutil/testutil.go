package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

// LibrosJSON is a small catalog exercising every shape the category
// field takes in the wild.
const LibrosJSON = `[
  {"titulo": "Dune", "autor": "Herbert", "ubicacion": "Shelf A", "portada": "img/dune.jpg", "categoria": "Sci-Fi"},
  {"titulo": "Emma", "autor": "Austen", "categoria": ["Romance", "Classic"]},
  {"titulo": "War and Peace", "autor": "Tolstoy", "ubicacion": "Shelf B", "categoria": "Fiction, Drama"},
  {"autor": "Anonymous", "categoria": ["Fiction"]},
  {"titulo": "The Art of War", "autor": "Sun Tzu", "categoria": 42},
  {"titulo": "Persuasion", "autor": "Austen", "categoria": ["Romance"]}
]`

// WriteCatalogFile writes content to a temporary libros.json and
// returns its path.
func WriteCatalogFile(t testing.TB, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "libros.json")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("write catalog file: %v", err)
	}
	return p
}

// RecordResponse records the HTTP response for testing
type RecordResponse struct {
	Code int
	Body map[string]any
	Raw  string
}

// RecordHTTPResponse decodes the JSON envelope of a recorded response.
func RecordHTTPResponse(w *httptest.ResponseRecorder) RecordResponse {
	result := w.Result()
	defer result.Body.Close()

	bodyBytes, _ := io.ReadAll(result.Body)

	var bodyMap map[string]any
	if len(bodyBytes) > 0 {
		_ = json.NewDecoder(bytes.NewReader(bodyBytes)).Decode(&bodyMap)
	}

	return RecordResponse{
		Code: result.StatusCode,
		Body: bodyMap,
		Raw:  string(bodyBytes),
	}
}
