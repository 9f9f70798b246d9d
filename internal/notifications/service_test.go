package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"reelpress/internal/notifications"
	"reelpress/internal/testsupport"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(cfg)
	if err := svc.NotifyBatchStarted(context.Background(), 3); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		notify         func(svc notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "batch started",
			notify: func(svc notifications.Service) error {
				return svc.NotifyBatchStarted(context.Background(), 4)
			},
			expectTitle:   "Reelpress - Batch Started",
			expectMessage: "Started processing batch with 4 items",
			expectTags:    "reelpress,batch,started",
		},
		{
			name: "batch completed",
			notify: func(svc notifications.Service) error {
				return svc.NotifyBatchCompleted(context.Background(), 5, 0, 90*time.Second)
			},
			expectTitle:   "Reelpress - Batch Complete",
			expectMessage: "Batch complete: 5 items rendered in 1m30s",
			expectTags:    "reelpress,batch,completed",
		},
		{
			name: "batch completed with failures",
			notify: func(svc notifications.Service) error {
				return svc.NotifyBatchCompleted(context.Background(), 3, 2, time.Minute)
			},
			expectTitle:   "Reelpress - Batch Complete (with errors)",
			expectMessage: "Batch complete: 3 succeeded, 2 failed in 1m0s",
			expectTags:    "reelpress,batch,completed",
		},
		{
			name: "item completed",
			notify: func(svc notifications.Service) error {
				return svc.NotifyItemCompleted(context.Background(), "dance clip", "dance_clip.mp4")
			},
			expectTitle:   "Reelpress - Item Complete",
			expectMessage: "Rendered: dance clip\nFile: dance_clip.mp4",
			expectTags:    "reelpress,item,completed",
		},
		{
			name: "needs review",
			notify: func(svc notifications.Service) error {
				return svc.NotifyItemNeedsReview(context.Background(), "dance clip", "caption generation failed")
			},
			expectTitle:   "Reelpress - Needs Review",
			expectMessage: "Review needed: dance clip\ncaption generation failed",
			expectTags:    "reelpress,review",
		},
		{
			name: "error",
			notify: func(svc notifications.Service) error {
				return svc.NotifyError(context.Background(), errors.New("render failed"), "render")
			},
			expectTitle:    "Reelpress - Error",
			expectMessage:  "Error with render: render failed",
			expectTags:     "reelpress,error,alert",
			expectPriority: "high",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Fatalf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := testsupport.NewConfig(t)
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5

			svc := notifications.NewService(cfg)
			if err := tc.notify(svc); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceHonorsToggles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for disabled notification: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.BatchStart = false
	cfg.Notifications.BatchComplete = false
	cfg.Notifications.Errors = false

	svc := notifications.NewService(cfg)
	if err := svc.NotifyBatchStarted(context.Background(), 1); err != nil {
		t.Fatalf("expected disabled batch start to return nil, got %v", err)
	}
	if err := svc.NotifyBatchCompleted(context.Background(), 1, 0, time.Second); err != nil {
		t.Fatalf("expected disabled batch complete to return nil, got %v", err)
	}
	if err := svc.NotifyError(context.Background(), errors.New("boom"), "render"); err != nil {
		t.Fatalf("expected disabled error notification to return nil, got %v", err)
	}
}

func TestNtfyServiceSurfacesHTTPFailures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("topic forbidden"))
	}))
	defer server.Close()

	cfg := testsupport.NewConfig(t)
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(cfg)
	err := svc.TestNotification(context.Background())
	if err == nil {
		t.Fatal("expected error for forbidden topic")
	}
}
