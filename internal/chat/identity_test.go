package chat

import (
	"encoding/json"
	"testing"

	"plotchat/internal/domain"
)

func marshal(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(b)
}

func TestIdentityPolicy_Ephemeral(t *testing.T) {
	p := NewIdentityPolicy(0)
	cases := map[int64]bool{
		1:             false,
		42:            false,
		1000:          false,
		1001:          true,
		1700000000000: true,
	}
	for id, want := range cases {
		if got := p.Ephemeral(id); got != want {
			t.Fatalf("Ephemeral(%d) = %v, want %v", id, got, want)
		}
	}
}

func TestIdentityPolicy_ConfigurableThreshold(t *testing.T) {
	p := NewIdentityPolicy(50)
	if !p.Ephemeral(51) || p.Ephemeral(50) {
		t.Fatalf("threshold not honored")
	}
}

func TestIdentityPolicy_PersistedSession(t *testing.T) {
	p := NewIdentityPolicy(DefaultEphemeralThreshold)
	req := p.Request(domain.Session{ID: 42, Title: "Old"}, "Hi", "Hi", "Hi")

	if got, want := marshal(t, req), `{"input":"Hi","session_id":42}`; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
	if !req.Persisted() {
		t.Fatalf("expected persisted request")
	}
}

func TestIdentityPolicy_EphemeralSession(t *testing.T) {
	p := NewIdentityPolicy(DefaultEphemeralThreshold)
	req := p.Request(domain.Session{ID: 1700000000000, Title: "Hi"}, "Hi", "Hi", "Hi")

	if got, want := marshal(t, req), `{"input":"Hi","session_title":"Hi"}`; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestIdentityPolicy_EmptyBoxUsesFallback(t *testing.T) {
	p := NewIdentityPolicy(DefaultEphemeralThreshold)
	sess := domain.Session{ID: 1700000000000, Title: "What can you do?"}
	req := p.Request(sess, "What can you do? Tell me everything", "  ", "What can you do? Tell me everything")

	if req.SessionTitle == nil || *req.SessionTitle != "What can you do? Tell me everything" {
		t.Fatalf("expected literal fallback title, got %+v", req.SessionTitle)
	}
}

func TestIdentityPolicy_Deterministic(t *testing.T) {
	p := NewIdentityPolicy(DefaultEphemeralThreshold)
	sess := domain.Session{ID: 1700000000001, Title: "Titulo"}
	first := marshal(t, p.Request(sess, "texto", "texto", "texto"))
	for i := 0; i < 5; i++ {
		p.Request(domain.Session{ID: 7}, "otro", "otro", "otro")
		if got := marshal(t, p.Request(sess, "texto", "texto", "texto")); got != first {
			t.Fatalf("request changed between calls: %s vs %s", first, got)
		}
	}
}
