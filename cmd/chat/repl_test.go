package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"plotchat/internal/chat"
	"plotchat/internal/domain"
	"plotchat/internal/remote"
)

type scriptedRemote struct {
	mu       sync.Mutex
	replies  []chat.Reply
	sessions []domain.Session
	fetchErr error
	requests []chat.SendRequest
}

func (r *scriptedRemote) FetchSessions(context.Context) ([]domain.Session, error) {
	return r.sessions, r.fetchErr
}

func (r *scriptedRemote) SendMessage(_ context.Context, req chat.SendRequest) (chat.Reply, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests = append(r.requests, req)
	if len(r.replies) == 0 {
		return chat.Reply{}, errors.New("no scripted reply")
	}
	reply := r.replies[0]
	r.replies = r.replies[1:]
	return reply, nil
}

func newREPLController(r chat.Remote) *chat.Controller {
	now := func() time.Time { return time.UnixMilli(1_700_000_000_000) }
	return chat.NewController(zap.NewNop(), chat.NewStore(0, now), r, chat.NewIdentityPolicy(0), chat.Options{
		FAQs: []string{"Graph", "Tell me a fun fact"},
		Now:  now,
	})
}

func TestREPL_GraphThenPlot(t *testing.T) {
	r := &scriptedRemote{replies: []chat.Reply{
		{Text: "#", SessionID: 3},
		{Text: "#1"},
	}}
	ctrl := newREPLController(r)

	var out bytes.Buffer
	in := strings.NewReader("Graph\n/plot 1\n/quit\n")
	if err := runREPL(context.Background(), ctrl, in, &out, zap.NewNop()); err != nil {
		t.Fatalf("runREPL: %v", err)
	}

	got := out.String()
	for _, want := range []string{"0 chats loaded.", "Select any of these plot types:", "[1] BarPlot", "Sample Bar Graph"} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
	if len(r.requests) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(r.requests))
	}
	if id := r.requests[1].SessionID; id == nil || *id != 3 {
		t.Fatalf("plot pick should target promoted session 3, got %v", id)
	}
}

func TestREPL_FAQOnNewChat(t *testing.T) {
	r := &scriptedRemote{replies: []chat.Reply{{Text: "Penguins can't fly."}}}
	ctrl := newREPLController(r)

	var out bytes.Buffer
	in := strings.NewReader("/new\n/faq 2\n/faq 1\n")
	if err := runREPL(context.Background(), ctrl, in, &out, zap.NewNop()); err != nil {
		t.Fatalf("runREPL: %v", err)
	}

	got := out.String()
	if !strings.Contains(got, "[2] Tell me a fun fact") || !strings.Contains(got, "Penguins can't fly.") {
		t.Fatalf("unexpected output:\n%s", got)
	}
	if !strings.Contains(got, "only available on an empty chat") {
		t.Fatalf("second FAQ should be rejected:\n%s", got)
	}
	if title := r.requests[0].SessionTitle; title == nil || *title != "Tell me a fun fact" {
		t.Fatalf("expected FAQ label as title, got %v", title)
	}
}

func TestREPL_OfflineAndErrors(t *testing.T) {
	r := &scriptedRemote{
		fetchErr: errors.New("connection refused"),
		sessions: nil,
	}
	ctrl := newREPLController(r)

	var out bytes.Buffer
	in := strings.NewReader("/open 4\n/bogus\nhello")
	if err := runREPL(context.Background(), ctrl, in, &out, zap.NewNop()); err != nil {
		t.Fatalf("runREPL: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"offline: could not load chats",
		"pick a number between 1 and 0",
		"unknown command /bogus",
		"network error: send message failed",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
}

func TestREPL_OpenShowsHistory(t *testing.T) {
	r := &scriptedRemote{sessions: []domain.Session{{
		ID:    5,
		Title: "Graph",
		Messages: []domain.Message{
			{ID: 1, Text: "Graph", Sender: domain.SenderUser},
			{ID: 2, Text: "#", Sender: domain.SenderAssistant},
		},
	}}}
	ctrl := newREPLController(r)

	var out bytes.Buffer
	if err := runREPL(context.Background(), ctrl, strings.NewReader("/open 1\n/list\n"), &out, zap.NewNop()); err != nil {
		t.Fatalf("runREPL: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "you: Graph") || !strings.Contains(got, "*[1] Graph") {
		t.Fatalf("unexpected output:\n%s", got)
	}
}

func TestDescribeAPIError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unauthorized", &remote.StatusError{Code: 401}, "login: invalid credentials or expired session"},
		{"rate limited", &remote.StatusError{Code: 429}, "login: too many attempts, try again later"},
		{"server message", &remote.StatusError{Code: 400, Body: `{"error":"username already taken"}`}, "login: username already taken"},
		{"plain", errors.New("dial tcp"), "login: dial tcp"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describeAPIError("login", tt.err).Error(); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}
