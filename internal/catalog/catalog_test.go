package catalog

import "testing"

func TestCatalog_Entries(t *testing.T) {
	all := All()
	if len(all) != 19 {
		t.Fatalf("len(All) = %d, want 19", len(all))
	}
	for i, g := range all {
		if g.UnlockIndex != i {
			t.Errorf("%s UnlockIndex = %d, want %d", g.ID, g.UnlockIndex, i)
		}
		if err := g.Validate(); err != nil {
			t.Errorf("Validate(%s): %v", g.ID, err)
		}
	}
}

func TestLookup(t *testing.T) {
	g, ok := Lookup("reading-detective")
	if !ok {
		t.Fatal("reading-detective not found")
	}
	if g.Layout != LayoutRich {
		t.Errorf("Layout = %q, want rich", g.Layout)
	}
	if _, ok := Lookup("missing"); ok {
		t.Error("Lookup(missing) = ok")
	}
}

func TestWithLocks(t *testing.T) {
	entries := WithLocks(2)
	for _, e := range entries {
		wantLocked := e.UnlockIndex > 2
		if e.Locked != wantLocked {
			t.Errorf("%s Locked = %v, want %v", e.ID, e.Locked, wantLocked)
		}
	}
}

func TestValidate_LayoutRules(t *testing.T) {
	simple := Simple("x", "X", CategoryVocabulary, 0, 5, 60, 0)
	if err := simple.Validate(); err == nil {
		t.Error("simple layout without level validated")
	}

	rich := Rich("y", "Y", CategoryReading, "", []string{"read"}, nil, 5, 60, 0)
	if err := rich.Validate(); err == nil {
		t.Error("rich layout without scoring validated")
	}

	untimed := Simple("z", "Z", CategoryVocabulary, 1, 5, 0, 0)
	if err := untimed.Validate(); err == nil {
		t.Error("game without time limit validated")
	}
}

func TestRich_AppendsProctoringRules(t *testing.T) {
	g := Rich("y", "Y", CategoryReading, "", []string{"read"}, []string{"1 point"}, 5, 60, 0)
	if len(g.Instructions) != 1+len(defaultInstructions) {
		t.Errorf("Instructions = %v", g.Instructions)
	}
	if g.Instructions[0] != "read" {
		t.Errorf("first instruction = %q, want the game's own", g.Instructions[0])
	}
}
