package parser

import "testing"

func TestDjangoAnnotatorExtractsRoutes(t *testing.T) {
	a := NewDjangoAnnotator(&PythonParser{})
	src := "from django.urls import path\n\nurlpatterns = [\n    path('users/', views.list_users),\n]\n"
	r := a.Parse("urls.py", []byte(src))

	if r.Files["urls.py"].Framework != "django" {
		t.Fatalf("expected framework=django, got %q", r.Files["urls.py"].Framework)
	}
	if len(r.APIEndpoints) != 1 || r.APIEndpoints[0].Route != "users/" {
		t.Fatalf("expected one users/ endpoint, got %+v", r.APIEndpoints)
	}
}

func TestFastAPIAnnotatorExtractsRoutes(t *testing.T) {
	a := NewFastAPIAnnotator(&PythonParser{})
	src := "@app.get(\"/items\")\ndef list_items():\n    return []\n"
	r := a.Parse("main.py", []byte(src))

	if len(r.APIEndpoints) != 1 || r.APIEndpoints[0].Method != "GET" || r.APIEndpoints[0].Route != "/items" {
		t.Fatalf("expected GET /items endpoint, got %+v", r.APIEndpoints)
	}
}
