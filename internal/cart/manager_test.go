package cart

import (
	"context"
	"sync"
	"testing"
	"time"
)

type fakeFactory struct {
	mu     sync.Mutex
	stores map[string]*fakeStore
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{stores: map[string]*fakeStore{}}
}

func (f *fakeFactory) ForUser(userID string) Store {
	f.mu.Lock()
	defer f.mu.Unlock()
	store, ok := f.stores[userID]
	if !ok {
		store = newFakeStore()
		f.stores[userID] = store
	}
	return store
}

func newTestManager(t *testing.T, stores StoreFactory) *Manager {
	t.Helper()
	m, err := NewManager(ManagerParams{Stores: stores, Debounce: time.Hour})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return m
}

func TestNewManagerRequiresFactory(t *testing.T) {
	t.Parallel()

	if _, err := NewManager(ManagerParams{}); err == nil {
		t.Fatal("expected error without store factory")
	}
}

func TestForUserReturnsSameContainer(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, newFakeFactory())
	defer m.Close(context.Background())

	first, err := m.ForUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := m.ForUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatal("expected the same container across calls")
	}

	other, err := m.ForUser(context.Background(), "user-2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if other == first {
		t.Fatal("expected distinct containers per user")
	}
}

func TestForUserRequiresUserID(t *testing.T) {
	t.Parallel()

	m := newTestManager(t, newFakeFactory())
	if _, err := m.ForUser(context.Background(), ""); err == nil {
		t.Fatal("expected error for empty user id")
	}
}

func TestForUserRehydratesFromStore(t *testing.T) {
	t.Parallel()

	factory := newFakeFactory()
	factory.ForUser("user-1").(*fakeStore).records[RecordItems] =
		`[{"id":3,"warungId":9,"name":"Es Teh","price":5000,"quantity":4}]`

	m := newTestManager(t, factory)
	defer m.Close(context.Background())

	container, err := m.ForUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	items := container.Items()
	if len(items) != 1 || items[0].Quantity != 4 {
		t.Fatalf("expected saved cart restored, got %+v", items)
	}
}

func TestReleasePersistsAndRestoresAcrossSessions(t *testing.T) {
	t.Parallel()

	factory := newFakeFactory()
	m := newTestManager(t, factory)
	defer m.Close(context.Background())

	container, err := m.ForUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	container.SwitchVendor(VendorDescriptor{ID: 7, Name: "Warung Bu Siti"})
	container.AddItem(lineItem(1, 7, 12000))

	if err := m.Release(context.Background(), "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The next login gets a fresh session rehydrated from the same records.
	restored, err := m.ForUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if restored == container {
		t.Fatal("expected a new container after release")
	}
	if got := len(restored.Items()); got != 1 {
		t.Fatalf("expected cart restored after release, got %d lines", got)
	}
	if v := restored.Vendor(); v == nil || v.ID != 7 {
		t.Fatalf("expected vendor restored after release, got %+v", v)
	}
}

func TestFlushUserWritesPendingState(t *testing.T) {
	t.Parallel()

	factory := newFakeFactory()
	m := newTestManager(t, factory)
	defer m.Close(context.Background())

	container, err := m.ForUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	container.AddItem(lineItem(1, 7, 12000))

	if err := m.FlushUser(context.Background(), "user-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	store := factory.ForUser("user-1").(*fakeStore)
	if _, ok := store.get(RecordItems); !ok {
		t.Fatal("expected items written by flush")
	}

	// Flushing an unknown user is a no-op.
	if err := m.FlushUser(context.Background(), "nobody"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCloseFlushesAllSessions(t *testing.T) {
	t.Parallel()

	factory := newFakeFactory()
	m := newTestManager(t, factory)

	for _, userID := range []string{"user-1", "user-2"} {
		container, err := m.ForUser(context.Background(), userID)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		container.AddItem(lineItem(1, 7, 12000))
	}

	if err := m.Close(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, userID := range []string{"user-1", "user-2"} {
		store := factory.ForUser(userID).(*fakeStore)
		if _, ok := store.get(RecordItems); !ok {
			t.Fatalf("expected %s cart written on close", userID)
		}
	}
}
