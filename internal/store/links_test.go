package store

import (
	"context"
	"reflect"
	"testing"
)

func TestLinks(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Put(ctx, PutParams{Category: "projects", Filename: "roadmap.md", Content: "# Roadmap\nsee [[people/alice]] and [[budget]]"})
	s.Put(ctx, PutParams{Category: "projects", Filename: "budget.md", Content: "back to [[roadmap]]"})
	s.Put(ctx, PutParams{Category: "journal", Filename: "monday.md", Content: "reviewed [[projects/roadmap.md]]"})
	s.Put(ctx, PutParams{Category: "journal", Filename: "tuesday.md", Content: "nothing linked"})

	set, err := s.Links(ctx, "projects", "roadmap.md")
	if err != nil {
		t.Fatalf("links: %v", err)
	}
	if want := []string{"budget", "people/alice"}; !reflect.DeepEqual(set.Outgoing, want) {
		t.Errorf("expected outgoing %v, got %v", want, set.Outgoing)
	}
	want := []LinkRef{{Category: "journal", Filename: "monday.md"}, {Category: "projects", Filename: "budget.md"}}
	if !reflect.DeepEqual(set.Backlinks, want) {
		t.Errorf("expected backlinks %v, got %v", want, set.Backlinks)
	}
}

func TestLinks_OnlyLatestVersionCounts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Put(ctx, PutParams{Category: "c", Filename: "target.md", Content: "target"})
	s.Put(ctx, PutParams{Category: "c", Filename: "src.md", Content: "links [[target]]"})
	s.Put(ctx, PutParams{Category: "c", Filename: "src.md", Content: "link removed"})

	set, err := s.Links(ctx, "c", "target.md")
	if err != nil {
		t.Fatal(err)
	}
	if len(set.Backlinks) != 0 {
		t.Errorf("expected no backlinks, got %v", set.Backlinks)
	}
}

func TestLinks_NotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Links(context.Background(), "c", "missing.md"); err == nil {
		t.Error("expected error for missing file")
	}
}
