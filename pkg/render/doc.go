// Package render draws the iteration-canvas overlay.
//
// # Overview
//
// A [Scene] is a read-only view of one canvas session: the viewport, the
// guides, committed annotations and strokes, and whatever gesture is in
// progress. Renderers map canvas coordinates to overlay pixels through the
// viewport, so output always matches what the user sees.
//
//   - [SVG] produces a standalone SVG document of the overlay.
//   - [PNG] rasterizes the overlay onto a transparent image.
//   - [CompositePNG] draws the overlay onto a captured preview snapshot so the
//     regeneration service sees the user's marks.
//
// # Rulers
//
// [WithRulers] adds the top and left ruler bands. Tick placement comes from
// the ruler package and is identical in both formats.
package render
