package sjoin

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"

	"github.com/paulmach/orb"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// RasterRenderer draws a join result as a raster image: polygon outlines,
// one marker per point colored by its merged polygon identity, and a text
// label "pointID,mergedID" beside each marker.
type RasterRenderer struct {
	Polygons *Collection
	Result   *AggregatedTable

	Scale   float64 // pixels per coordinate unit
	Padding float64 // padding in coordinate units
}

// NewRasterRenderer creates a raster renderer with default settings.
func NewRasterRenderer(polygons *Collection, result *AggregatedTable) *RasterRenderer {
	return &RasterRenderer{
		Polygons: polygons,
		Result:   result,
		Scale:    200.0,
		Padding:  0.5,
	}
}

// markerPalette colors point markers by merged identity. Assignment follows
// first-encounter order of the distinct merged identities.
var markerPalette = []color.RGBA{
	{31, 119, 180, 255},  // blue
	{255, 127, 14, 255},  // orange
	{44, 160, 44, 255},   // green
	{214, 39, 40, 255},   // red
	{148, 103, 189, 255}, // purple
	{140, 86, 75, 255},   // brown
}

// sentinelColor marks points with no polygon match.
var sentinelColor = color.RGBA{128, 128, 128, 255}

// Render draws the result into a new RGBA image.
func (r *RasterRenderer) Render() *image.RGBA {
	minX, minY, maxX, maxY := r.bounds()

	width := int(math.Ceil((maxX - minX + 2*r.Padding) * r.Scale))
	height := int(math.Ceil((maxY - minY + 2*r.Padding) * r.Scale))
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))

	// White background.
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}

	// Image y axis points down; flip so north is up.
	toImage := func(p orb.Point) (int, int) {
		x := (p[0] - minX + r.Padding) * r.Scale
		y := (maxY - p[1] + r.Padding) * r.Scale
		return int(math.Round(x)), int(math.Round(y))
	}

	// Polygon outlines in black.
	black := color.RGBA{0, 0, 0, 255}
	for _, f := range r.Polygons.Features {
		poly := orbPolygon(f.Geometry)
		for _, ring := range poly {
			for i := 0; i < len(ring)-1; i++ {
				x0, y0 := toImage(ring[i])
				x1, y1 := toImage(ring[i+1])
				drawLine(img, x0, y0, x1, y1, black)
			}
			if len(ring) > 1 && ring[0] != ring[len(ring)-1] {
				x0, y0 := toImage(ring[len(ring)-1])
				x1, y1 := toImage(ring[0])
				drawLine(img, x0, y0, x1, y1, black)
			}
		}
	}

	// Point markers and labels.
	colors := r.markerColors()
	for _, row := range r.Result.Rows {
		cx, cy := toImage(row.PointGeometry)
		drawFilledCircle(img, cx, cy, 5, colors[row.PolygonID])
		label := fmt.Sprintf("%s,%s", row.PointID, row.PolygonID)
		drawText(img, cx+8, cy-6, label, black)
	}

	return img
}

// SavePNG renders the result and writes it to a PNG file.
func (r *RasterRenderer) SavePNG(path string) error {
	img := r.Render()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding PNG: %w", err)
	}
	return nil
}

// markerColors assigns a palette color to each distinct merged identity in
// encounter order; the sentinel identity always maps to grey.
func (r *RasterRenderer) markerColors() map[string]color.RGBA {
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
func (r *RasterRenderer) bounds() (minX, minY, maxX, maxY float64) {
	minX, minY = math.MaxFloat64, math.MaxFloat64
	maxX, maxY = -math.MaxFloat64, -math.MaxFloat64

	extend := func(p orb.Point) {
		minX = math.Min(minX, p[0])
		minY = math.Min(minY, p[1])
		maxX = math.Max(maxX, p[0])
		maxY = math.Max(maxY, p[1])
	}

	for _, f := range r.Polygons.Features {
		for _, ring := range orbPolygon(f.Geometry) {
			for _, p := range ring {
				extend(p)
			}
		}
	}
	for _, row := range r.Result.Rows {
		extend(row.PointGeometry)
	}

	if minX > maxX {
		// Nothing to draw; produce a unit extent.
		return 0, 0, 1, 1
	}
	return
}

// drawLine draws a line between two pixels using Bresenham's algorithm.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		img.Set(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

// drawFilledCircle draws a filled circle centered at (cx, cy).
func drawFilledCircle(img *image.RGBA, cx, cy, radius int, c color.RGBA) {
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				img.Set(cx+dx, cy+dy, c)
			}
		}
	}
}

// drawText renders a text label with the basic 7x13 bitmap font.
func drawText(img *image.RGBA, x, y int, text string, c color.RGBA) {
	face := basicfont.Face7x13
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
