package storage

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"aromasens/models"
)

func newStores(t *testing.T) map[string]Store {
	t.Helper()
	sqlStore, err := OpenSQLite(filepath.Join(t.TempDir(), "aromasens.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = sqlStore.Close() })
	return map[string]Store{
		"memory": NewMemStore(),
		"sqlite": sqlStore,
	}
}

func TestSeedAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			n, err := Seed(ctx, store)
			if err != nil {
				t.Fatalf("Seed: %v", err)
			}
			if n != len(Catalog) {
				t.Fatalf("seeded=%d", n)
			}
			for i := range Catalog {
				p, err := store.GetPerfume(ctx, int64(i+1))
				if err != nil {
					t.Fatalf("GetPerfume(%d): %v", i+1, err)
				}
				if p.Name != Catalog[i].Name {
					t.Fatalf("id %d name=%q want %q", i+1, p.Name, Catalog[i].Name)
				}
				if len(p.Notes) != len(Catalog[i].Notes) {
					t.Fatalf("id %d notes=%v", i+1, p.Notes)
				}
			}

			again, err := Seed(ctx, store)
			if err != nil {
				t.Fatalf("second Seed: %v", err)
			}
			if again != 0 {
				t.Fatalf("second Seed inserted %d", again)
			}
		})
	}
}

func TestListPerfumesByGender(t *testing.T) {
	ctx := context.Background()
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := Seed(ctx, store); err != nil {
				t.Fatalf("Seed: %v", err)
			}
			fem, err := store.ListPerfumesByGender(ctx, models.GenderFeminine)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(fem) != 3 {
				t.Fatalf("feminine=%d", len(fem))
			}
			for i, p := range fem {
				if p.Gender != models.GenderFeminine {
					t.Fatalf("gender=%q", p.Gender)
				}
				if p.ID != int64(i+1) {
					t.Fatalf("order: got id %d at %d", p.ID, i)
				}
			}

			unknown, err := store.ListPerfumesByGender(ctx, "unisex")
			if err != nil {
				t.Fatalf("unknown gender returned error: %v", err)
			}
			if len(unknown) != 0 {
				t.Fatalf("unknown gender returned %d", len(unknown))
			}
		})
	}
}

func TestGetMissingRecords(t *testing.T) {
	ctx := context.Background()
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.GetPerfume(ctx, 99); !errors.Is(err, ErrNotFound) {
				t.Fatalf("GetPerfume err=%v", err)
			}
			if _, err := store.GetChatSession(ctx, 99); !errors.Is(err, ErrNotFound) {
				t.Fatalf("GetChatSession err=%v", err)
			}
		})
	}
}

func TestSessionAndRecommendationRoundTrip(t *testing.T) {
	ctx := context.Background()
	prefs := models.ChatPreferences{Age: "25", Experience: "ninguna", Occasion: "uso diario", Preferences: "floral"}
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			sess, err := store.CreateChatSession(ctx, models.ChatSession{Gender: models.GenderFeminine, Preferences: prefs})
			if err != nil {
				t.Fatalf("CreateChatSession: %v", err)
			}
			if sess.ID != 1 {
				t.Fatalf("session id=%d", sess.ID)
			}
			rec, err := store.CreateRecommendation(ctx, models.Recommendation{ChatSessionID: sess.ID, PerfumeID: 2, Reason: "dulce"})
			if err != nil {
				t.Fatalf("CreateRecommendation: %v", err)
			}
			if rec.ChatSessionID != sess.ID {
				t.Fatalf("chatSessionId=%d", rec.ChatSessionID)
			}

			got, err := store.GetChatSession(ctx, sess.ID)
			if err != nil {
				t.Fatalf("GetChatSession: %v", err)
			}
			if got.Preferences != prefs {
				t.Fatalf("preferences=%+v", got.Preferences)
			}
			recs, err := store.ListRecommendationsBySession(ctx, sess.ID)
			if err != nil {
				t.Fatalf("ListRecommendationsBySession: %v", err)
			}
			if len(recs) != 1 || recs[0].PerfumeID != 2 || recs[0].Reason != "dulce" {
				t.Fatalf("recs=%+v", recs)
			}
		})
	}
}

func TestMemStoreConcurrentAppendsGetUniqueIDs(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()

	const n = 64
	ids := make(chan int64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := store.CreateChatSession(ctx, models.ChatSession{Gender: models.GenderMasculine})
			if err != nil {
				t.Errorf("CreateChatSession: %v", err)
				return
			}
			ids <- s.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool, n)
	for id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %d", id)
		}
		if id < 1 || id > n {
			t.Fatalf("id %d out of range", id)
		}
		seen[id] = true
	}
	if len(seen) != n {
		t.Fatalf("got %d ids", len(seen))
	}
}

func TestMemStoreReturnsCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemStore()
	if _, err := Seed(ctx, store); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	p, _ := store.GetPerfume(ctx, 1)
	p.Notes[0] = "mutated"
	again, _ := store.GetPerfume(ctx, 1)
	if again.Notes[0] == "mutated" {
		t.Fatalf("store leaked internal slice")
	}
}
