package area

import (
	"fmt"

	"github.com/brunt/sulis/internal/catalogs"
)

type Transition struct {
	From         Point
	Size         *catalogs.ObjectSize
	To           Destination
	HoverText    string
	ImageDisplay *catalogs.Image
}

// ReadTransitions keeps, in authored order, every transition whose image
// and size resolve and whose footprint [from, from+size) fits the area.
// Everything else is reported and dropped.
func ReadTransitions(areaID string, in []TransitionBuilder, width, height int, res Resources) ([]Transition, []Diagnostic) {
	var (
		out   []Transition
		diags []Diagnostic
	)
	drop := func(i int, kind DiagnosticKind, from Point, format string, args ...any) {
		diags = append(diags, Diagnostic{
			AreaID:   areaID,
			Kind:     kind,
			Index:    i,
			Location: &from,
			Message:  fmt.Sprintf(format, args...),
		})
	}

	for i, tb := range in {
		img, ok := res.Image(tb.ImageDisplay)
		if !ok {
			drop(i, DiagTransitionImage, tb.From, "image '%s' not found for transition %d", tb.ImageDisplay, i)
			continue
		}
		size, ok := res.Size(tb.Size)
		if !ok {
			drop(i, DiagTransitionSize, tb.From, "size '%s' not found for transition %d", tb.Size, i)
			continue
		}

		if !tb.From.InBounds(width, height) {
			drop(i, DiagTransitionOutOfBounds, tb.From, "transition %d falls outside area bounds", i)
			continue
		}
		if size.Width <= 0 || size.Height <= 0 || !tb.From.Add(size.Width-1, size.Height-1).InBounds(width, height) {
			drop(i, DiagTransitionOutOfBounds, tb.From, "transition %d with size %s falls outside area bounds", i, size.ID)
			continue
		}

		out = append(out, Transition{
			From:         tb.From,
			Size:         size,
			To:           tb.To,
			HoverText:    tb.HoverText,
			ImageDisplay: img,
		})
	}
	return out, diags
}
