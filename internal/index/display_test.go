package index

import (
	"errors"
	"testing"

	"github.com/renderdash/rdash/internal/domain"
)

func TestDisplaySetUpsertAndEvict(t *testing.T) {
	ds := NewDisplaySet()

	ds.Upsert(&domain.Service{ID: "srv-1", Name: "chat", Status: domain.StatusAvailable}, 1)

	e, ok := ds.Get("srv-1")
	if !ok {
		t.Fatal("entry missing after Upsert")
	}
	if e.Service.Status != domain.StatusAvailable {
		t.Errorf("Status = %v", e.Service.Status)
	}

	// Replacement is wholesale.
	ds.Upsert(&domain.Service{ID: "srv-1", Name: "chat", Status: domain.StatusFailed}, 1)
	e, _ = ds.Get("srv-1")
	if e.Service.Status != domain.StatusFailed {
		t.Errorf("Status = %v after replacement, want Failed", e.Service.Status)
	}
	if ds.Count() != 1 {
		t.Errorf("Count = %d, want 1 (replace, not append)", ds.Count())
	}

	ds.Evict("srv-1")
	if _, ok := ds.Get("srv-1"); ok {
		t.Error("entry still present after Evict")
	}

	// Evicting an absent id is a no-op.
	ds.Evict("srv-ghost")
	if ds.Count() != 0 {
		t.Errorf("Count = %d, want 0", ds.Count())
	}
}

func TestDisplaySetOrdering(t *testing.T) {
	ds := NewDisplaySet()
	ds.Upsert(&domain.Service{ID: "srv-b", Name: "beta"}, 2)
	ds.Upsert(&domain.Service{ID: "srv-a", Name: "Alpha"}, 2)
	ds.Upsert(&domain.Service{ID: "srv-c", Name: "zulu"}, 1)

	all := ds.All()
	if len(all) != 3 {
		t.Fatalf("len = %d, want 3", len(all))
	}
	got := []string{all[0].Service.ID, all[1].Service.ID, all[2].Service.ID}
	want := []string{"srv-c", "srv-a", "srv-b"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("order = %v, want %v", got, want)
			break
		}
	}
}

func TestDisplaySetRefreshBookkeeping(t *testing.T) {
	ds := NewDisplaySet()

	if !ds.LastRefresh().IsZero() {
		t.Error("LastRefresh non-zero before first cycle")
	}

	failures := []Failure{{ServiceID: "srv-2", Err: errors.New("connect refused")}}
	ds.MarkRefreshed(failures)

	if ds.LastRefresh().IsZero() {
		t.Error("LastRefresh still zero after MarkRefreshed")
	}
	if got := ds.Failures(); len(got) != 1 || got[0].ServiceID != "srv-2" {
		t.Errorf("Failures = %+v", got)
	}

	// A clean cycle clears the failure record.
	ds.MarkRefreshed(nil)
	if got := ds.Failures(); len(got) != 0 {
		t.Errorf("Failures = %+v after clean cycle, want empty", got)
	}
}
