package twitch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"clip2gif/internal/domain"
)

func TestGetAccessTokenPostsClientCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("unexpected method %s", r.Method)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("client_id") != "id" || r.PostForm.Get("client_secret") != "secret" {
			t.Fatalf("unexpected credentials: %v", r.PostForm)
		}
		if r.PostForm.Get("grant_type") != "client_credentials" {
			t.Fatalf("unexpected grant type %q", r.PostForm.Get("grant_type"))
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"abc","expires_in":3600,"token_type":"bearer"}`))
	}))
	defer server.Close()

	api := New("id", "secret", server.URL, server.URL)

	token, err := api.GetAccessToken(context.Background())
	if err != nil {
		t.Fatalf("GetAccessToken returned error: %v", err)
	}
	if token != "abc" {
		t.Fatalf("token = %q, want abc", token)
	}
}

func TestGetAccessTokenFailuresAreUpstreamErrors(t *testing.T) {
	tests := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"message":"invalid client"}`, http.StatusForbidden)
		},
		"empty token": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"token_type":"bearer"}`))
		},
		"bad json": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		},
	}

	for name, handler := range tests {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(handler)
			defer server.Close()

			_, err := New("id", "secret", server.URL, server.URL).GetAccessToken(context.Background())
			if !errors.Is(err, domain.ErrUpstream) {
				t.Fatalf("expected upstream error, got %v", err)
			}
		})
	}
}

func TestGetAccessTokenTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	authURL := server.URL
	server.Close()

	_, err := New("id", "secret", authURL, authURL).GetAccessToken(context.Background())
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestGetClipByIDSendsAuthHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/helix/clips" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("id") != "AbCd123-_X" {
			t.Fatalf("unexpected id %q", r.URL.Query().Get("id"))
		}
		if r.Header.Get("Client-ID") != "id" {
			t.Fatalf("unexpected Client-ID %q", r.Header.Get("Client-ID"))
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Fatalf("unexpected Authorization %q", r.Header.Get("Authorization"))
		}
		_, _ = w.Write([]byte(`{"data":[{"id":"AbCd123-_X","title":"Big play","creator_name":"viewer","duration":15.2,"thumbnail_url":"https://clips-media.example/123-preview-480x272.jpg"}]}`))
	}))
	defer server.Close()

	api := New("id", "secret", server.URL, server.URL+"/helix/")

	clip, err := api.GetClipByID(context.Background(), "AbCd123-_X", "tok")
	if err != nil {
		t.Fatalf("GetClipByID returned error: %v", err)
	}
	if clip == nil {
		t.Fatal("expected a clip")
	}
	if clip.Title != "Big play" || clip.CreatorName != "viewer" || clip.Duration != 15.2 {
		t.Fatalf("unexpected clip %+v", clip)
	}
}

func TestGetClipByIDEmptyResultIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":[],"pagination":{}}`))
	}))
	defer server.Close()

	clip, err := New("id", "secret", server.URL, server.URL).GetClipByID(context.Background(), "missing", "tok")
	if err != nil {
		t.Fatalf("GetClipByID returned error: %v", err)
	}
	if clip != nil {
		t.Fatalf("expected nil clip, got %+v", clip)
	}
}

func TestGetClipByIDStatusFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer server.Close()

	_, err := New("id", "secret", server.URL, server.URL).GetClipByID(context.Background(), "x", "tok")
	if !errors.Is(err, domain.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestDownloadURL(t *testing.T) {
	tests := []struct {
		name      string
		thumbnail string
		want      string
		wantErr   bool
	}{
		{
			name:      "preview suffix",
			thumbnail: "https://clips-media-assets2.twitch.tv/AT-cm%7C123456-preview-480x272.jpg",
			want:      "https://clips-media-assets2.twitch.tv/AT-cm%7C123456.mp4",
		},
		{
			name:      "second preview segment left behind",
			thumbnail: "https://cdn.example/a-preview-1.jpg-preview-2.jpg",
			wantErr:   true,
		},
		{
			name:      "no preview segment",
			thumbnail: "https://static-cdn.example/twitch-clip-thumbnail.jpg",
			wantErr:   true,
		},
		{
			name:    "missing thumbnail",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DownloadURL(&domain.Clip{ThumbnailURL: tt.thumbnail})
			if tt.wantErr {
				if !errors.Is(err, domain.ErrDerivation) {
					t.Fatalf("expected derivation error, got %v (%q)", err, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("DownloadURL returned error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("DownloadURL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClipDownloadURLNilClip(t *testing.T) {
	_, err := New("id", "secret", "", "").ClipDownloadURL(nil)
	if !errors.Is(err, domain.ErrDerivation) {
		t.Fatalf("expected derivation error, got %v", err)
	}
}
