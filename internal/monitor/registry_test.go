package monitor

import (
	"sync"
	"testing"
)

func TestRegistryRegisterLookup(t *testing.T) {
	r := NewRegistry()

	called := ""
	r.Register("shaders/main.vs", func(p string) { called = p })

	fn, ok := r.Lookup("shaders/main.vs")
	if !ok {
		t.Fatal("Lookup failed for registered path")
	}
	fn("shaders/main.vs")
	if called != "shaders/main.vs" {
		t.Errorf("callback received %q", called)
	}

	if _, ok := r.Lookup("shaders/other.vs"); ok {
		t.Error("Lookup should fail for unregistered path")
	}
}

func TestRegistryReplace(t *testing.T) {
	r := NewRegistry()

	hits := 0
	r.Register("a.json", func(string) { hits += 1 })
	r.Register("a.json", func(string) { hits += 10 })

	fn, _ := r.Lookup("a.json")
	fn("a.json")
	if hits != 10 {
		t.Errorf("hits = %d, want 10 (second registration wins)", hits)
	}
	if r.Len() != 1 {
		t.Errorf("Len = %d, want 1", r.Len())
	}
}

func TestRegistryUnregister(t *testing.T) {
	r := NewRegistry()
	r.Register("x", func(string) {})

	if !r.Unregister("x") {
		t.Error("Unregister should report an existing registration")
	}
	if _, ok := r.Lookup("x"); ok {
		t.Error("Lookup should fail after Unregister")
	}
	if r.Unregister("x") {
		t.Error("second Unregister should report nothing removed")
	}
}

func TestRegistryLenAndClear(t *testing.T) {
	r := NewRegistry()
	r.Register("a", func(string) {})
	r.Register("b", func(string) {})
	r.Register("c", func(string) {})

	if r.Len() != 3 {
		t.Errorf("Len = %d, want 3", r.Len())
	}
	if n := r.Clear(); n != 3 {
		t.Errorf("Clear = %d, want 3", n)
	}
	if r.Len() != 0 {
		t.Errorf("Len after Clear = %d, want 0", r.Len())
	}
}

func TestRegistryConcurrent(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			paths := []string{"p/one", "p/two", "p/three"}
			for j := 0; j < 100; j++ {
				p := paths[(id+j)%len(paths)]
				r.Register(p, func(string) {})
				r.Lookup(p)
				r.Unregister(p)
			}
		}(i)
	}
	wg.Wait()
}
