package docs

import (
	"strings"
	"testing"

	"github.com/swaggo/swag"
)

func TestSwaggerInfoRegistered(t *testing.T) {
	if SwaggerInfo == nil {
		t.Fatal("swagger info not initialized")
	}
	if SwaggerInfo.Title != "Crypto Analytics API" {
		t.Fatalf("unexpected title %q", SwaggerInfo.Title)
	}

	doc, err := swag.ReadDoc()
	if err != nil {
		t.Fatalf("read doc: %v", err)
	}
	for _, path := range []string{"/api/summary", "/api/coins/export.csv", "/api/history/{days}", "/api/preferences/toggle", "/api/retry"} {
		if !strings.Contains(doc, path) {
			t.Errorf("expected %s in swagger doc", path)
		}
	}
}
