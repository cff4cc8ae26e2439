package player

import (
	"sync"
	"testing"
)

func TestRegistry_RegisterInterns(t *testing.T) {
	r := NewRegistry()

	p1 := r.Register("alice")
	p2 := r.Register("alice")

	if p1 != p2 {
		t.Fatal("Register() returned distinct Players for the same name")
	}
}

func TestRegistry_RegisterConcurrentSameName(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	results := make([]*Player, 32)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = r.Register("racer")
		}(i)
	}
	wg.Wait()

	for _, p := range results[1:] {
		if p != results[0] {
			t.Fatal("Register() under concurrency produced more than one Player for the same name")
		}
	}
}

func TestRegistry_All(t *testing.T) {
	r := NewRegistry()
	r.Register("bob")
	r.Register("alice")

	all := r.All()
	if len(all) != 2 {
		t.Fatalf("All() returned %d players, want 2", len(all))
	}
	if all[0].Name() != "alice" || all[1].Name() != "bob" {
		t.Fatalf("All() = [%s, %s], want sorted [alice, bob]", all[0].Name(), all[1].Name())
	}
}
