package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"
)

type e2e struct {
	tokenCalls   atomic.Int32
	clipCalls    atomic.Int32
	webhookCalls atomic.Int32
	envFile      string
}

func setupEnd2End(t *testing.T, webhookStatus int, clipJSON string) *e2e {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("fake ffmpeg relies on /bin/sh")
	}

	s := &e2e{envFile: filepath.Join(t.TempDir(), "missing.env")}

	twitch := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/oauth2/token":
			s.tokenCalls.Add(1)
			_, _ = w.Write([]byte(`{"access_token":"tok","expires_in":3600,"token_type":"bearer"}`))
		case "/helix/clips":
			s.clipCalls.Add(1)
			if r.Header.Get("Authorization") != "Bearer tok" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(clipJSON))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(twitch.Close)

	webhook := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.webhookCalls.Add(1)
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(webhookStatus)
	}))
	t.Cleanup(webhook.Close)

	ffmpeg := filepath.Join(t.TempDir(), "ffmpeg")
	if err := os.WriteFile(ffmpeg, []byte("#!/bin/sh\nprintf 'GIF89a'\n"), 0o755); err != nil {
		t.Fatalf("write fake ffmpeg: %v", err)
	}

	for _, key := range []string{
		"TWITCH_CLIP_ID", "TWITCH_CLIP_URL", "DISCORD_MESSAGE", "DISCORD_MESSAGE_TEMPLATE", "DISCORD_USERNAME",
		"GIF_WIDTH", "GIF_FPS", "GIF_LOOP", "GIF_MAX_DURATION_SECONDS", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "DEBUG",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("TWITCH_CLIENT_ID", "id")
	t.Setenv("TWITCH_CLIENT_SECRET", "secret")
	t.Setenv("DISCORD_WEBHOOK_URL", webhook.URL)
	t.Setenv("TWITCH_AUTH_URL", twitch.URL+"/oauth2/token")
	t.Setenv("TWITCH_API_BASE_URL", twitch.URL+"/helix")
	t.Setenv("FFMPEG_PATH", ffmpeg)

	return s
}

const clipJSON = `{"data":[{"id":"AbCd123","url":"https://clips.twitch.tv/AbCd123","title":"Big play","creator_name":"viewer","duration":15,"thumbnail_url":"https://clips-media.example/123-preview-480x272.jpg"}]}`

func TestRunSucceeds(t *testing.T) {
	s := setupEnd2End(t, http.StatusOK, clipJSON)

	code := run([]string{"--env-file", s.envFile, "https://clips.twitch.tv/AbCd123"})
	if code != 0 {
		t.Fatalf("exit code = %d, want 0", code)
	}

	if s.tokenCalls.Load() != 1 || s.clipCalls.Load() != 1 || s.webhookCalls.Load() != 1 {
		t.Fatalf("calls token=%d clip=%d webhook=%d, want one each",
			s.tokenCalls.Load(), s.clipCalls.Load(), s.webhookCalls.Load())
	}
}

func TestRunWebhookFailureExitsOne(t *testing.T) {
	s := setupEnd2End(t, http.StatusInternalServerError, clipJSON)

	code := run([]string{"--env-file", s.envFile, "AbCd123"})
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if s.webhookCalls.Load() != 1 {
		t.Fatalf("webhook called %d times, want exactly 1", s.webhookCalls.Load())
	}
}

func TestRunClipNotFoundExitsOne(t *testing.T) {
	s := setupEnd2End(t, http.StatusOK, `{"data":[]}`)

	code := run([]string{"--env-file", s.envFile, "Missing"})
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if s.webhookCalls.Load() != 0 {
		t.Fatalf("webhook should not be called, got %d calls", s.webhookCalls.Load())
	}
}

func TestRunMissingConfigExitsOne(t *testing.T) {
	s := setupEnd2End(t, http.StatusOK, clipJSON)
	t.Setenv("TWITCH_CLIENT_SECRET", "")

	code := run([]string{"--env-file", s.envFile, "AbCd123"})
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
	if s.tokenCalls.Load() != 0 {
		t.Fatalf("no upstream calls expected, got %d", s.tokenCalls.Load())
	}
}

func TestRunRejectsExtraArguments(t *testing.T) {
	s := setupEnd2End(t, http.StatusOK, clipJSON)

	code := run([]string{"--env-file", s.envFile, "one", "two"})
	if code != 1 {
		t.Fatalf("exit code = %d, want 1", code)
	}
}
