package translate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTranslateParsesSegments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("sl") != "auto" {
			t.Errorf("sl = %q, want auto", q.Get("sl"))
		}
		if q.Get("tl") != "fr" {
			t.Errorf("tl = %q, want fr", q.Get("tl"))
		}
		if q.Get("q") != "The hostel fee is due." {
			t.Errorf("q = %q", q.Get("q"))
		}
		w.Write([]byte(`[[["Les frais d'auberge ","The hostel fee ",null,null,1],["sont dus.","is due.",null,null,1]],null,"en"]`))
	}))
	defer srv.Close()

	tr := NewGoogleTranslatorWithBaseURL(srv.URL)
	got, err := tr.Translate(context.Background(), "The hostel fee is due.", "auto", "fr")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	want := "Les frais d'auberge sont dus."
	if got != want {
		t.Errorf("Translate = %q, want %q", got, want)
	}
}

func TestTranslateNonOKStatusIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	tr := NewGoogleTranslatorWithBaseURL(srv.URL)
	if _, err := tr.Translate(context.Background(), "hello", "auto", "hi"); err == nil {
		t.Error("expected error on 429 response")
	}
}

func TestTranslateMalformedBodyIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>blocked</html>`))
	}))
	defer srv.Close()

	tr := NewGoogleTranslatorWithBaseURL(srv.URL)
	if _, err := tr.Translate(context.Background(), "hello", "auto", "hi"); err == nil {
		t.Error("expected error on malformed response")
	}
}
