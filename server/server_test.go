package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sketchwire/makereal"
	"github.com/sketchwire/makereal/makerealtest"
	"github.com/sketchwire/makereal/server"
)

func postToHTML(t *testing.T, handler http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/toHtml", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestToHTMLSuccess(t *testing.T) {
	client := makerealtest.NewMockCompletionClient().
		Enqueue(makerealtest.NewMockSendResultAnswer("```html\n<button>Login</button>\n```"))
	srv := server.New(client, server.Options{})

	rec := postToHTML(t, srv.Handler(), `{"image": "data:image/png;base64,AAAA"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		HTML string `json:"html"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.HTML != "<button>Login</button>" {
		t.Errorf("html = %q", resp.HTML)
	}

	reqs := client.TrackedRequests()
	if len(reqs) != 1 {
		t.Fatalf("expected 1 completion call, got %d", len(reqs))
	}
	if reqs[0].ImageDataURL != "data:image/png;base64,AAAA" {
		t.Errorf("image = %q", reqs[0].ImageDataURL)
	}
	if reqs[0].PriorMarkup != nil {
		t.Error("unexpected prior markup")
	}
}

func TestToHTMLForwardsPriorMarkup(t *testing.T) {
	client := makerealtest.NewMockCompletionClient().
		Enqueue(makerealtest.NewMockSendResultAnswer("<p>revised</p>"))
	srv := server.New(client, server.Options{})

	rec := postToHTML(t, srv.Handler(), `{"image": "data:image/png;base64,AAAA", "html": "<p>old</p>"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	reqs := client.TrackedRequests()
	if reqs[0].PriorMarkup == nil || !strings.Contains(*reqs[0].PriorMarkup, "<p>old</p>") {
		t.Errorf("prior markup = %v", reqs[0].PriorMarkup)
	}
}

func TestToHTMLRejectsNonDataURL(t *testing.T) {
	client := makerealtest.NewMockCompletionClient()
	srv := server.New(client, server.Options{})

	rec := postToHTML(t, srv.Handler(), `{"image": "/tmp/sketch.png"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(client.TrackedRequests()) != 0 {
		t.Error("no completion call should be made")
	}
}

func TestToHTMLServiceErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"unconfigured", makereal.NewUnconfiguredError("no key"), http.StatusInternalServerError},
		{"rejected", makereal.NewServiceRejectedError(429, "rate limited"), http.StatusBadGateway},
		{"timeout", makereal.NewTimeoutError(nil), http.StatusGatewayTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := makerealtest.NewMockCompletionClient().
				Enqueue(makerealtest.NewMockSendResultError(tt.err))
			srv := server.New(client, server.Options{})

			rec := postToHTML(t, srv.Handler(), `{"image": "data:image/png;base64,AAAA"}`)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			var body struct {
				Error struct {
					Kind    string `json:"kind"`
					Message string `json:"message"`
				} `json:"error"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Error.Kind == "" || body.Error.Message == "" {
				t.Errorf("error body = %+v", body)
			}
		})
	}
}

func TestToHTMLEmptyGeneration(t *testing.T) {
	client := makerealtest.NewMockCompletionClient().
		Enqueue(makerealtest.NewMockSendResultAnswer("   "))
	srv := server.New(client, server.Options{})

	rec := postToHTML(t, srv.Handler(), `{"image": "data:image/png;base64,AAAA"}`)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
}
