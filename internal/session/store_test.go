package session

import (
	"sync"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	store := NewMemoryStoreWithTTL(time.Hour)
	t.Cleanup(store.Stop)
	return store
}

func TestMemoryStore_PutAndGet(t *testing.T) {
	store := newTestStore(t)

	store.Put(Record{
		SessionID:   "sub-123",
		AccessToken: "ya29.token",
		Email:       "user@example.com",
		Name:        "Test User",
	})

	record, ok := store.Get("sub-123")
	if !ok {
		t.Fatal("Get() should find the stored record")
	}
	if record.AccessToken != "ya29.token" {
		t.Errorf("Get() AccessToken = %s, want ya29.token", record.AccessToken)
	}
	if record.Email != "user@example.com" {
		t.Errorf("Get() Email = %s, want user@example.com", record.Email)
	}
	if record.CreatedAt.IsZero() {
		t.Error("Put() should stamp CreatedAt")
	}
}

func TestMemoryStore_GetAbsent(t *testing.T) {
	store := newTestStore(t)

	if _, ok := store.Get("unknown"); ok {
		t.Error("Get() for absent session should return ok=false")
	}
	if store.Has("unknown") {
		t.Error("Has() for absent session should return false")
	}
}

func TestMemoryStore_PutOverwritesSameSubject(t *testing.T) {
	store := newTestStore(t)

	store.Put(Record{SessionID: "sub-123", AccessToken: "first"})
	store.Put(Record{SessionID: "sub-123", AccessToken: "second"})

	if store.Len() != 1 {
		t.Fatalf("Len() = %d after re-auth of same subject, want 1", store.Len())
	}

	record, ok := store.Get("sub-123")
	if !ok {
		t.Fatal("Get() should find the record")
	}
	if record.AccessToken != "second" {
		t.Errorf("Get() AccessToken = %s, want second (last write wins)", record.AccessToken)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	store := newTestStore(t)

	store.Put(Record{SessionID: "sub-123"})
	store.Delete("sub-123")

	if store.Has("sub-123") {
		t.Error("Has() should return false after Delete()")
	}

	// Deleting an absent session is a no-op
	store.Delete("unknown")
}

func TestMemoryStore_GetRefreshesLastAccess(t *testing.T) {
	store := newTestStore(t)

	store.Put(Record{SessionID: "sub-123"})
	first, _ := store.Get("sub-123")

	time.Sleep(10 * time.Millisecond)

	second, _ := store.Get("sub-123")
	if !second.LastAccess.After(first.LastAccess) {
		t.Error("Get() should refresh LastAccess on each lookup")
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.Put(Record{SessionID: "sub-123", AccessToken: "token"})
		}()
		go func() {
			defer wg.Done()
			store.Get("sub-123")
			store.Has("sub-123")
		}()
	}
	wg.Wait()

	if store.Len() != 1 {
		t.Errorf("Len() = %d after concurrent writes to one subject, want 1", store.Len())
	}
}
