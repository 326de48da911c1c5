package markup

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/a-h/templ"
)

func TestWriter(t *testing.T) {
	var sb strings.Builder
	w := New(context.Background(), &sb)
	w.Open("p", Class("note")).Text("a < b").Close("p").
		Elem("a", templ.Attributes{"href": "/x?a=1&b=2"}, "link")
	if err := w.Err(); err != nil {
		t.Fatal(err)
	}
	want := `<p class="note">a &lt; b</p><a href="/x?a=1&amp;b=2">link</a>`
	if sb.String() != want {
		t.Errorf("got  %s\nwant %s", sb.String(), want)
	}
}

type failWriter struct{ n int }

func (f *failWriter) Write(p []byte) (int, error) {
	f.n++
	return 0, errors.New("closed")
}

func TestWriterStopsAfterError(t *testing.T) {
	fw := &failWriter{}
	w := New(context.Background(), fw)
	w.Raw("a", "b").Text("c").Component(templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t.Error("component rendered after error")
		return nil
	}))
	if w.Err() == nil || fw.n != 1 {
		t.Errorf("err=%v writes=%d", w.Err(), fw.n)
	}
}

func TestMerge(t *testing.T) {
	base := Class("a")
	got := Merge(base, templ.Attributes{"class": "b", "id": "x"})
	if got["class"] != "b" || got["id"] != "x" || base["class"] != "a" {
		t.Errorf("Merge() = %v, base = %v", got, base)
	}
}

func TestSafeURL(t *testing.T) {
	if got := SafeURL("https://www.pexels.com/@ana"); got != "https://www.pexels.com/@ana" {
		t.Errorf("SafeURL(https) = %q", got)
	}
	if got := SafeURL("javascript:alert(1)"); !strings.HasPrefix(got, "about:invalid") {
		t.Errorf("SafeURL(javascript) = %q", got)
	}
}
