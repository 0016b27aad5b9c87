package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"

	"plotchat/internal/domain"
	"plotchat/internal/llm"
	"plotchat/internal/repository"
)

func newTestSentenceService(client llm.LLMClient) (*SentenceService, *repository.MemorySessionRepository) {
	repo := repository.NewMemorySessionRepository()
	svc := NewSentenceService(zap.NewNop(), repo, client)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC) }
	return svc, repo
}

func int64Ptr(v int64) *int64 { return &v }
func strPtr(v string) *string { return &v }

func TestSentenceService_KeywordReplies(t *testing.T) {
	cases := map[string]string{
		"Graph":       "#",
		"graph":       "#",
		"BarPlot":     "#1",
		"PiePlot":     "#2",
		"ScatterPlot": "#3",
		"LinePlot":    "#4",
	}
	mock := &llm.MockClient{Response: "unused"}
	svc, _ := newTestSentenceService(mock)

	for input, want := range cases {
		res, err := svc.Generate(context.Background(), "u1", SentenceRequest{Input: input})
		if err != nil {
			t.Fatalf("generate %q: %v", input, err)
		}
		if res.Reply != want {
			t.Fatalf("input %q: expected %q, got %q", input, want, res.Reply)
		}
	}
	if len(mock.Prompts()) != 0 {
		t.Fatalf("keywords must not reach the llm, got %v", mock.Prompts())
	}
	if _, ok := KeywordReply("GRAPH"); ok {
		t.Fatalf("keywords are case sensitive")
	}
}

func TestSentenceService_LLMPromptAndCleaning(t *testing.T) {
	mock := &llm.MockClient{Response: "```\n\"The cat sat on the mat.\"\n```"}
	svc, _ := newTestSentenceService(mock)

	res, err := svc.Generate(context.Background(), "u1", SentenceRequest{Input: "cat mat", SessionTitle: strPtr("cat mat")})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if res.Reply != "The cat sat on the mat." {
		t.Fatalf("unexpected reply %q", res.Reply)
	}
	if diff := cmp.Diff([]string{"generate a sentence with cat mat these words"}, mock.Prompts()); diff != "" {
		t.Fatalf("prompt mismatch (-want +got):\n%s", diff)
	}
}

func TestSentenceService_CreatesSessionWithTitle(t *testing.T) {
	svc, repo := newTestSentenceService(&llm.MockClient{Response: "ok"})
	ctx := context.Background()

	res, err := svc.Generate(ctx, "u1", SentenceRequest{Input: "Graph", SessionTitle: strPtr("Mi chat")})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !res.Created || res.SessionID == 0 {
		t.Fatalf("expected a new session, got %+v", res)
	}

	rec, err := repo.GetForUser(ctx, "u1", res.SessionID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.Title != "Mi chat" {
		t.Fatalf("unexpected title %q", rec.Title)
	}
	want := []domain.Turn{{User: "Graph", Assistant: "#", Time: "2024-05-01 10:30:00"}}
	if diff := cmp.Diff(want, rec.Turns); diff != "" {
		t.Fatalf("turns mismatch (-want +got):\n%s", diff)
	}
}

func TestSentenceService_TitleFallsBackToInput(t *testing.T) {
	svc, repo := newTestSentenceService(&llm.MockClient{Response: "ok"})
	ctx := context.Background()

	res, err := svc.Generate(ctx, "u1", SentenceRequest{Input: "Hello world, this is a test"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	rec, _ := repo.GetForUser(ctx, "u1", res.SessionID)
	if rec.Title != "Hello world, this is..." {
		t.Fatalf("unexpected derived title %q", rec.Title)
	}
}

func TestSentenceService_AppendsToExistingSession(t *testing.T) {
	svc, _ := newTestSentenceService(&llm.MockClient{Response: "ok"})
	ctx := context.Background()

	first, err := svc.Generate(ctx, "u1", SentenceRequest{Input: "Graph", SessionTitle: strPtr("Graph")})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	second, err := svc.Generate(ctx, "u1", SentenceRequest{Input: "BarPlot", SessionID: int64Ptr(first.SessionID)})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if second.Created || second.SessionID != first.SessionID {
		t.Fatalf("expected same session, got %+v", second)
	}

	sess, err := svc.GetSession(ctx, "u1", first.SessionID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	want := []domain.Message{
		{ID: 1, Text: "Graph", Sender: domain.SenderUser},
		{ID: 2, Text: "#", Sender: domain.SenderAssistant},
		{ID: 3, Text: "BarPlot", Sender: domain.SenderUser},
		{ID: 4, Text: "#1", Sender: domain.SenderAssistant},
	}
	if diff := cmp.Diff(want, sess.Messages); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}

	list, err := svc.ListSessions(ctx, "u1")
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one session, got %d (%v)", len(list), err)
	}
}

func TestSentenceService_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("empty input creates nothing", func(t *testing.T) {
		svc, repo := newTestSentenceService(&llm.MockClient{Response: "ok"})
		if _, err := svc.Generate(ctx, "u1", SentenceRequest{Input: "   ", SessionTitle: strPtr("x")}); !errors.Is(err, ErrEmptyInput) {
			t.Fatalf("expected ErrEmptyInput, got %v", err)
		}
		list, _ := repo.ListByUser(ctx, "u1")
		if len(list) != 0 {
			t.Fatalf("expected no sessions, got %d", len(list))
		}
	})

	t.Run("foreign session", func(t *testing.T) {
		svc, _ := newTestSentenceService(&llm.MockClient{Response: "ok"})
		res, err := svc.Generate(ctx, "u1", SentenceRequest{Input: "Graph"})
		if err != nil {
			t.Fatalf("generate: %v", err)
		}
		if _, err := svc.Generate(ctx, "u2", SentenceRequest{Input: "Graph", SessionID: int64Ptr(res.SessionID)}); !errors.Is(err, ErrSessionNotFound) {
			t.Fatalf("expected ErrSessionNotFound, got %v", err)
		}
		if _, err := svc.GetSession(ctx, "u2", res.SessionID); !errors.Is(err, ErrSessionNotFound) {
			t.Fatalf("expected ErrSessionNotFound, got %v", err)
		}
	})

	t.Run("llm failure creates nothing", func(t *testing.T) {
		svc, repo := newTestSentenceService(&llm.MockClient{Err: errors.New("quota")})
		if _, err := svc.Generate(ctx, "u1", SentenceRequest{Input: "hola", SessionTitle: strPtr("hola")}); !errors.Is(err, ErrGenerationFailed) {
			t.Fatalf("expected ErrGenerationFailed, got %v", err)
		}
		list, _ := repo.ListByUser(ctx, "u1")
		if len(list) != 0 {
			t.Fatalf("expected no sessions after failure, got %d", len(list))
		}
	})

	t.Run("blank llm response", func(t *testing.T) {
		svc, _ := newTestSentenceService(&llm.MockClient{Response: "```\n```"})
		if _, err := svc.Generate(ctx, "u1", SentenceRequest{Input: "hola"}); !errors.Is(err, ErrGenerationFailed) {
			t.Fatalf("expected ErrGenerationFailed, got %v", err)
		}
	})
}

func TestCleanLLMResponse(t *testing.T) {
	cases := map[string]string{
		"  plain  ":            "plain",
		"\uFEFFwith bom":       "with bom",
		"```text\nfenced\n```": "fenced",
		"\"quoted sentence\"":  "quoted sentence",
		"":                     "",
	}
	for in, want := range cases {
		if got := cleanLLMResponse(in); got != want {
			t.Fatalf("cleanLLMResponse(%q) = %q, want %q", in, got, want)
		}
	}
}
