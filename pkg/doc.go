// Package pkg provides the libraries behind the sitecanvas iteration canvas.
//
// # Overview
//
// Sitecanvas is the interaction layer a site editor shows over a generated
// preview: rulers, draggable guides, circle annotations, freehand strokes,
// pan and zoom, and alignment of the elements the user selected. The pkg
// directory is organized into four areas:
//
//  1. Geometry - [geom], [viewport] and [ruler] map between screen and
//     canvas space and place ruler ticks.
//  2. Interaction - [pointer], [guides], [annotate], [align] and [tool] turn
//     pointer events into gestures; [canvas] assembles one session.
//  3. Editor - [viewmode] owns the step navigation and the URL fragment;
//     [editor] mounts a canvas only in the iterate step and captures
//     snapshots for regeneration.
//  4. Infrastructure - [render], [capture], [cache], [store], [errors] and
//     [observability].
//
// # Data Flow
//
//	pointer event (client coordinates)
//	         ↓
//	    [tool] machine or ruler/guide hit
//	         ↓
//	    gesture session on the [pointer] surface
//	         ↓
//	    [guides] / [annotate] state in canvas coordinates
//	         ↓
//	    [render] overlay (SVG, PNG, or burned into a [capture] snapshot)
//
// [geom]: https://pkg.go.dev/github.com/matzehuels/sitecanvas/pkg/geom
// [viewport]: https://pkg.go.dev/github.com/matzehuels/sitecanvas/pkg/viewport
// [ruler]: https://pkg.go.dev/github.com/matzehuels/sitecanvas/pkg/ruler
// [pointer]: https://pkg.go.dev/github.com/matzehuels/sitecanvas/pkg/pointer
// [guides]: https://pkg.go.dev/github.com/matzehuels/sitecanvas/pkg/guides
// [annotate]: https://pkg.go.dev/github.com/matzehuels/sitecanvas/pkg/annotate
// [align]: https://pkg.go.dev/github.com/matzehuels/sitecanvas/pkg/align
// [tool]: https://pkg.go.dev/github.com/matzehuels/sitecanvas/pkg/tool
// [canvas]: https://pkg.go.dev/github.com/matzehuels/sitecanvas/pkg/canvas
// [viewmode]: https://pkg.go.dev/github.com/matzehuels/sitecanvas/pkg/viewmode
// [editor]: https://pkg.go.dev/github.com/matzehuels/sitecanvas/pkg/editor
// [render]: https://pkg.go.dev/github.com/matzehuels/sitecanvas/pkg/render
// [capture]: https://pkg.go.dev/github.com/matzehuels/sitecanvas/pkg/capture
// [cache]: https://pkg.go.dev/github.com/matzehuels/sitecanvas/pkg/cache
// [store]: https://pkg.go.dev/github.com/matzehuels/sitecanvas/pkg/store
// [errors]: https://pkg.go.dev/github.com/matzehuels/sitecanvas/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/sitecanvas/pkg/observability
package pkg
