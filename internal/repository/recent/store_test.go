package recent

import (
	"context"
	"testing"
	"time"

	"github.com/studylens/fuserank/internal/db"
)

type mockKV struct {
	data map[string][]byte
	ttls map[string]time.Duration
}

func newMockKV() *mockKV {
	return &mockKV{data: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (m *mockKV) Get(_ context.Context, key string) ([]byte, error) {
	if v, ok := m.data[key]; ok {
		return v, nil
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKV) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	kv := newMockKV()
	store := New(kv, time.Hour)

	vec := []float32{0.6, 0.8, -0.1}
	if err := store.Save(context.Background(), "alice", vec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, ok, err := store.Load(context.Background(), "alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Fatal("expected recent vector")
	}
	if len(got) != len(vec) {
		t.Fatalf("dim changed: %d != %d", len(got), len(vec))
	}
	for i := range vec {
		if got[i] != vec[i] {
			t.Errorf("component %d: %f != %f", i, got[i], vec[i])
		}
	}

	for _, ttl := range kv.ttls {
		if ttl != time.Hour {
			t.Errorf("expected TTL 1h, got %v", ttl)
		}
	}
}

func TestLoad_NoActivity(t *testing.T) {
	store := New(newMockKV(), time.Hour)

	_, ok, err := store.Load(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("missing key must not error: %v", err)
	}
	if ok {
		t.Error("expected ok=false for a user with no recent activity")
	}
}

func TestSave_EmptyVectorSkipped(t *testing.T) {
	kv := newMockKV()
	store := New(kv, time.Hour)

	if err := store.Save(context.Background(), "alice", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(kv.data) != 0 {
		t.Error("empty vectors must not be stored")
	}
}
