package sjoin

import (
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"github.com/tdewolff/canvas/renderers/svg"
)

// VectorRenderer draws a join result as vector graphics: polygons with a
// white fill and black edges, and one colored circle per result point.
type VectorRenderer struct {
	Polygons *Collection
	Result   *AggregatedTable

	Padding    float64           // padding in coordinate units
	Resolution canvas.Resolution // resolution for PNG output (default 300 DPI)
	MarkerSize float64           // point circle radius in coordinate units
}

// NewVectorRenderer creates a vector renderer with default settings.
func NewVectorRenderer(polygons *Collection, result *AggregatedTable) *VectorRenderer {
	return &VectorRenderer{
		Polygons:   polygons,
		Result:     result,
		Padding:    0.5,
		Resolution: canvas.DPI(300),
		MarkerSize: 0.05,
	}
}

// DPI converts a dots-per-inch value into the renderer resolution unit.
func DPI(dpi float64) canvas.Resolution {
	return canvas.DPI(dpi)
}

// canvasRenderer is an interface that both svg and rasterizer renderers implement
type canvasRenderer interface {
	RenderPath(path *canvas.Path, style canvas.Style, m canvas.Matrix)
}

// RenderToSVG writes the map as an SVG to the provided writer.
func (r *VectorRenderer) RenderToSVG(w io.Writer) error {
	minX, minY, maxX, maxY := r.bounds()
	width := (maxX - minX) + 2*r.Padding
	height := (maxY - minY) + 2*r.Padding

	svgRenderer := svg.New(w, width, height, nil)
	r.renderToCanvas(svgRenderer, minX, minY, width, height)

	return svgRenderer.Close()
}

// RenderToPNG writes the map as a rasterized PNG to the provided writer.
func (r *VectorRenderer) RenderToPNG(w io.Writer) error {
	minX, minY, maxX, maxY := r.bounds()
	width := (maxX - minX) + 2*r.Padding
	height := (maxY - minY) + 2*r.Padding

	rast := rasterizer.New(width, height, r.Resolution, canvas.DefaultColorSpace)
	r.renderToCanvas(rast, minX, minY, width, height)

	// Rasterizer implements draw.Image, which embeds image.Image.
	return png.Encode(w, rast)
}

// renderToCanvas renders the result to a canvas renderer (shared logic for
// SVG and PNG).
func (r *VectorRenderer) renderToCanvas(renderer canvasRenderer, minX, minY, width, height float64) {
	// White background.
	bgStyle := canvas.DefaultStyle
	bgStyle.Fill = canvas.Paint{Color: canvas.White}
	renderer.RenderPath(canvas.Rectangle(width, height), bgStyle, canvas.Identity)

	toCanvas := func(x, y float64) (float64, float64) {
		return (x - minX) + r.Padding, (y - minY) + r.Padding
	}

	// Polygons: white fill with black edges.
	polyStyle := canvas.DefaultStyle
	polyStyle.Fill = canvas.Paint{Color: canvas.White}
	polyStyle.Stroke = canvas.Paint{Color: canvas.Black}
	polyStyle.StrokeWidth = 0.01

	for _, f := range r.Polygons.Features {
		poly := orbPolygon(f.Geometry)
		for _, ring := range poly {
			if len(ring) < 2 {
				continue
			}
			cp := &canvas.Path{}
			for i, pt := range ring {
				cx, cy := toCanvas(pt[0], pt[1])
				if i == 0 {
					cp.MoveTo(cx, cy)
				} else {
					cp.LineTo(cx, cy)
				}
			}
			cp.Close()
			renderer.RenderPath(cp, polyStyle, canvas.Identity)
		}
	}

	// Point markers colored by merged identity.
	colors := r.markerColors()
	for _, row := range r.Result.Rows {
		cx, cy := toCanvas(row.PointGeometry[0], row.PointGeometry[1])

		markerStyle := canvas.DefaultStyle
		markerStyle.Fill = canvas.Paint{Color: colors[row.PolygonID]}
		markerStyle.Stroke = canvas.Paint{Color: canvas.Black}
		markerStyle.StrokeWidth = 0.005

		markerPath := canvas.Circle(r.MarkerSize)
		markerPath = markerPath.Translate(cx, cy)
		renderer.RenderPath(markerPath, markerStyle, canvas.Identity)
	}
}

// markerColors assigns palette colors to distinct merged identities in
// encounter order; the sentinel identity maps to grey.
func (r *VectorRenderer) markerColors() map[string]color.RGBA {
	spec := r.Result.Spec.withDefaults()
	colors := make(map[string]color.RGBA)
	next := 0
	for _, row := range r.Result.Rows {
		if _, ok := colors[row.PolygonID]; ok {
			continue
		}
		if row.PolygonID == spec.Missing {
			colors[row.PolygonID] = sentinelColor
			continue
		}
		colors[row.PolygonID] = markerPalette[next%len(markerPalette)]
		next++
	}
	return colors
}

// bounds computes the coordinate extent of the polygons and result points.
func (r *VectorRenderer) bounds() (minX, minY, maxX, maxY float64) {
	minX, minY = math.MaxFloat64, math.MaxFloat64
	maxX, maxY = -math.MaxFloat64, -math.MaxFloat64

	for _, f := range r.Polygons.Features {
		for _, ring := range orbPolygon(f.Geometry) {
			for _, p := range ring {
				minX = math.Min(minX, p[0])
				minY = math.Min(minY, p[1])
				maxX = math.Max(maxX, p[0])
				maxY = math.Max(maxY, p[1])
			}
		}
	}
	for _, row := range r.Result.Rows {
		minX = math.Min(minX, row.PointGeometry[0])
		minY = math.Min(minY, row.PointGeometry[1])
		maxX = math.Max(maxX, row.PointGeometry[0])
		maxY = math.Max(maxY, row.PointGeometry[1])
	}

	if minX > maxX {
		return 0, 0, 1, 1
	}
	return
}
