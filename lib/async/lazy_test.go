package async

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// stubController counts constructions and lets tests flip resolution.
type stubController struct {
	resolved  bool
	destroyed bool
}

func (s *stubController) Resolved() bool { return s.resolved }
func (s *stubController) Destroy()       { s.destroyed = true }

func countingDecl(name string, priority int, built *[]*stubController) Declaration {
	return Declaration{
		Name:     name,
		Priority: priority,
		Construct: func() Controller {
			c := &stubController{}
			*built = append(*built, c)
			return c
		},
	}
}

func TestCompositionEagerAndLazy(t *testing.T) {
	var hero, gallery []*stubController
	c := NewComposition(10,
		countingDecl("hero", 10, &hero),
		countingDecl("gallery", 1, &gallery),
	)

	if len(hero) != 1 {
		t.Errorf("hero constructed %d times at load, want 1", len(hero))
	}
	if len(gallery) != 0 {
		t.Errorf("gallery constructed %d times while not requested, want 0", len(gallery))
	}
	if got := c.Visibility("gallery"); got != NotRequested {
		t.Errorf("gallery visibility = %v, want not-requested", got)
	}
	if c.Controller("gallery") != nil {
		t.Error("Controller(gallery) != nil while not requested")
	}
	if !c.Eager("hero") || c.Eager("gallery") {
		t.Error("Eager() disagrees with priority threshold")
	}
	if diff := cmp.Diff([]string{"hero", "gallery"}, c.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}

func TestCompositionRequestConstructsOnce(t *testing.T) {
	var built []*stubController
	c := NewComposition(10, countingDecl("gallery", 0, &built))

	first, err := c.Request("gallery")
	if err != nil {
		t.Fatalf("Request() = %v", err)
	}
	second, err := c.Request("gallery")
	if err != nil {
		t.Fatalf("Request() = %v", err)
	}
	if len(built) != 1 {
		t.Errorf("constructed %d controllers, want 1", len(built))
	}
	if first != second {
		t.Error("Request() returned different controllers")
	}
}

func TestCompositionActivateReportsFirstOnce(t *testing.T) {
	var built []*stubController
	c := NewComposition(10, countingDecl("gallery", 0, &built))

	var firsts atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, first, err := c.Activate("gallery")
			if err != nil {
				t.Errorf("Activate() = %v", err)
			}
			if first {
				firsts.Add(1)
			}
		}()
	}
	wg.Wait()

	if n := firsts.Load(); n != 1 {
		t.Errorf("%d callers saw first, want 1", n)
	}
	if len(built) != 1 {
		t.Errorf("constructed %d controllers, want 1", len(built))
	}
	if _, first, _ := c.Activate("gallery"); first {
		t.Error("Activate() after construction reported first")
	}
}

func TestCompositionVisibilityLifecycle(t *testing.T) {
	var built []*stubController
	c := NewComposition(10, countingDecl("gallery", 0, &built))

	c.Request("gallery")
	if got := c.Visibility("gallery"); got != Requested {
		t.Fatalf("visibility = %v, want requested", got)
	}
	built[0].resolved = true
	if got := c.Visibility("gallery"); got != Ready {
		t.Fatalf("visibility = %v, want ready", got)
	}
	// A later retry puts the controller back into a loading state; the
	// section stays Ready.
	built[0].resolved = false
	if got := c.Visibility("gallery"); got != Ready {
		t.Errorf("visibility regressed to %v", got)
	}
}

func TestCompositionStaticSection(t *testing.T) {
	c := NewComposition(10, Declaration{Name: "features", Priority: 0})

	ctrl, err := c.Request("features")
	if err != nil {
		t.Fatalf("Request() = %v", err)
	}
	if ctrl != nil {
		t.Errorf("static section controller = %v, want nil", ctrl)
	}
	if got := c.Visibility("features"); got != Ready {
		t.Errorf("visibility = %v, want ready", got)
	}
}

func TestCompositionSectionsAreIndependent(t *testing.T) {
	var a, b []*stubController
	c := NewComposition(10, countingDecl("a", 0, &a), countingDecl("b", 0, &b))
	c.Request("a")
	c.Request("b")
	b[0].resolved = true

	if got := c.Visibility("a"); got != Requested {
		t.Errorf("a visibility = %v, want requested", got)
	}
	if got := c.Visibility("b"); got != Ready {
		t.Errorf("b visibility = %v, want ready", got)
	}
}

func TestCompositionErrors(t *testing.T) {
	var built []*stubController
	c := NewComposition(10, countingDecl("gallery", 0, &built), countingDecl("hero", 10, &built))

	if _, err := c.Request("missing"); !errors.Is(err, ErrUnknownSection) {
		t.Errorf("Request(missing) = %v, want ErrUnknownSection", err)
	}
	if got := c.Visibility("missing"); got != NotRequested {
		t.Errorf("Visibility(missing) = %v, want not-requested", got)
	}

	c.Destroy()
	for _, ctrl := range built {
		if !ctrl.destroyed {
			t.Error("controller not destroyed with composition")
		}
	}
	if _, err := c.Request("gallery"); !errors.Is(err, ErrCompositionClosed) {
		t.Errorf("Request() after Destroy = %v, want ErrCompositionClosed", err)
	}
	if len(built) != 1 {
		t.Errorf("constructed %d controllers, want 1 (hero only)", len(built))
	}
	c.Destroy() // idempotent
}

func TestCompositionPanicsOnBadDeclarations(t *testing.T) {
	tests := []struct {
		name  string
		decls []Declaration
	}{
		{"empty name", []Declaration{{Name: ""}}},
		{"duplicate", []Declaration{{Name: "a"}, {Name: "a"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("NewComposition did not panic")
				}
			}()
			NewComposition(0, tt.decls...)
		})
	}
}

func TestCompositionWithRealControllers(t *testing.T) {
	sched := &ManualScheduler{}
	src := &fakeSource{records: []RawRecord{{ID: "1"}}}
	c := NewComposition(10,
		Declaration{Name: "gallery", Construct: func() Controller {
			fc := NewFetchController(src, WithScheduler(sched))
			fc.Start(galleryQuery)
			return fc
		}},
		Declaration{Name: "newsletter", Construct: func() Controller {
			return NewSubmitController(&fakeSink{}, WithScheduler(sched))
		}},
	)

	c.Request("gallery")
	c.Request("newsletter")
	if got := c.Visibility("newsletter"); got != Ready {
		t.Errorf("newsletter visibility = %v, want ready", got)
	}
	if got := c.Visibility("gallery"); got != Requested {
		t.Errorf("gallery visibility = %v, want requested", got)
	}
	sched.RunAll()
	if got := c.Visibility("gallery"); got != Ready {
		t.Errorf("gallery visibility = %v, want ready", got)
	}
	if got := src.callCount(); got != 1 {
		t.Errorf("searches = %d, want 1", got)
	}
}
