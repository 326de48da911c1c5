// Package markup writes HTML for templ.ComponentFunc bodies.
package markup

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/pthm/hxsite"
)

// Writer accumulates the first write error so callers can emit a run of
// fragments and check once at the end.
type Writer struct {
	w   io.Writer
	ctx context.Context
	err error
}

// New wraps w.
func New(ctx context.Context, w io.Writer) *Writer {
	return &Writer{w: w, ctx: ctx}
}

// Raw writes trusted markup.
func (w *Writer) Raw(parts ...string) *Writer {
	for _, p := range parts {
		if w.err != nil {
			return w
		}
		_, w.err = io.WriteString(w.w, p)
	}
	return w
}

// Text writes s escaped.
func (w *Writer) Text(s string) *Writer {
	return w.Raw(templ.EscapeString(s))
}

// Open writes a start tag with attributes.
func (w *Writer) Open(tag string, attrs templ.Attributes) *Writer {
	return w.Raw("<", tag, hxsite.FormatAttrs(attrs), ">")
}

// Close writes an end tag.
func (w *Writer) Close(tag string) *Writer {
	return w.Raw("</", tag, ">")
}

// Elem writes <tag attrs>text</tag> with text escaped.
func (w *Writer) Elem(tag string, attrs templ.Attributes, text string) *Writer {
	return w.Open(tag, attrs).Text(text).Close(tag)
}

// Component renders c in place.
func (w *Writer) Component(c templ.Component) *Writer {
	if w.err != nil || c == nil {
		return w
	}
	w.err = c.Render(w.ctx, w.w)
	return w
}

// Err returns the first error encountered.
func (w *Writer) Err() error {
	return w.err
}

// Class is shorthand for a class-only attribute set.
func Class(class string) templ.Attributes {
	return templ.Attributes{"class": class}
}

// Merge returns a copy of a with every key of b set over it.
func Merge(a templ.Attributes, b ...templ.Attributes) templ.Attributes {
	out := templ.Attributes{}
	for k, v := range a {
		out[k] = v
	}
	for _, m := range b {
		for k, v := range m {
			out[k] = v
		}
	}
	return out
}

// SafeURL returns u if it is safe for an href or src, and "about:invalid"
// otherwise.
func SafeURL(u string) string {
	return string(templ.URL(u))
}
