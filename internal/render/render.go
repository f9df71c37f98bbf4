// Package render rasterizes the map: county choropleth fills, state borders,
// wildfire markers, and a legend panel, encoded as PNG.
package render

import (
	"bytes"
	"fmt"
	"image"
	"strconv"
	"strings"

	"github.com/fogleman/gg"

	"github.com/couchcryptid/wildfire-map-viewer/internal/classify"
	"github.com/couchcryptid/wildfire-map-viewer/internal/domain"
	"github.com/couchcryptid/wildfire-map-viewer/internal/geo"
	"github.com/couchcryptid/wildfire-map-viewer/internal/readmodel"
	"github.com/couchcryptid/wildfire-map-viewer/internal/regions"
)

const (
	countyStrokeColor = "#333333"
	countyStrokeWidth = 0.3
	borderStrokeColor = "#000000"
	borderStrokeWidth = 0.6
	markerFillAlpha   = 128 // 0.5 opacity
	markerStrokeWidth = 0.5

	legendX         = 810.0
	legendY         = 40.0
	legendSwatch    = 18.0
	legendRowHeight = 24.0
	legendFontSize  = 13.0
	legendTitleSize = 15.0
)

// Options tunes a Renderer.
type Options struct {
	// FontPath points at a TTF file for legend text. When empty or
	// unloadable the legend degrades to color swatches only.
	FontPath string
	// CacheFrames caps how many encoded frames are kept. Zero disables
	// caching.
	CacheFrames int
}

// Renderer draws map frames over a fixed region set. Safe for concurrent
// use; encoded frames are cached per snapshot generation.
type Renderer struct {
	regions *regions.Set
	font    string
	cache   *frameCache
}

// NewRenderer builds a renderer over the projected region set.
func NewRenderer(set *regions.Set, opts Options) *Renderer {
	r := &Renderer{
		regions: set,
		font:    opts.FontPath,
	}
	if opts.CacheFrames > 0 {
		r.cache = newFrameCache(opts.CacheFrames)
	}
	return r
}

// Render produces a PNG frame for the model under the given display mode.
// Hazard markers are only drawn when showHazards is set.
func (r *Renderer) Render(m readmodel.Model, mode domain.DisplayMode, showHazards bool) ([]byte, error) {
	key := fmt.Sprintf("%d|%s|%t", m.Generation, mode, showHazards)
	if r.cache != nil {
		if frame, ok := r.cache.get(key); ok {
			return frame, nil
		}
	}

	frame, err := r.draw(m, mode, showHazards)
	if err != nil {
		return nil, err
	}
	if r.cache != nil {
		r.cache.put(key, frame)
	}
	return frame, nil
}

func (r *Renderer) draw(m readmodel.Model, mode domain.DisplayMode, showHazards bool) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, int(geo.CanvasWidth), int(geo.CanvasHeight)))
	dc := gg.NewContextForRGBA(img)

	dc.SetRGB(1, 1, 1)
	dc.DrawRectangle(0, 0, geo.CanvasWidth, geo.CanvasHeight)
	dc.Fill()

	scale := classify.ForMode(mode)
	for _, region := range r.regions.All() {
		fill := classify.NoDataColor
		if rec, ok := m.WeatherByRegion[region.Key]; ok {
			fill = scale.Color(rec.Measurement(mode))
		}
		tracePath(dc, region.Rings)
		if err := setColor(dc, fill, 255); err != nil {
			return nil, err
		}
		dc.FillPreserve()
		if err := setColor(dc, countyStrokeColor, 255); err != nil {
			return nil, err
		}
		dc.SetLineWidth(countyStrokeWidth)
		dc.Stroke()
	}

	tracePath(dc, r.regions.Borders())
	if err := setColor(dc, borderStrokeColor, 255); err != nil {
		return nil, err
	}
	dc.SetLineWidth(borderStrokeWidth)
	dc.Stroke()

	if showHazards {
		if err := r.drawHazards(dc, m.Hazards); err != nil {
			return nil, err
		}
	}

	if err := r.drawLegend(dc, mode); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) drawHazards(dc *gg.Context, hazards []readmodel.Hazard) error {
	for _, h := range hazards {
		size := *h.Record.SizeAcres
		radius := classify.WildfireRadius(size)
		if radius == 0 {
			continue
		}
		dc.DrawCircle(h.Point.X, h.Point.Y, radius)
		if err := setColor(dc, classify.WildfireColor.Color(&size), markerFillAlpha); err != nil {
			return err
		}
		dc.FillPreserve()
		dc.SetRGBA255(0, 0, 0, markerFillAlpha)
		dc.SetLineWidth(markerStrokeWidth)
		dc.Stroke()
	}
	return nil
}

func (r *Renderer) drawLegend(dc *gg.Context, mode domain.DisplayMode) error {
	entries := classify.LegendFor(mode)
	withText := r.font != ""
	if withText {
		if err := dc.LoadFontFace(r.font, legendTitleSize); err != nil {
			withText = false
		}
	}

	if withText {
		dc.SetRGB(0, 0, 0)
		dc.DrawString(mode.Label(), legendX, legendY-10)
		if err := dc.LoadFontFace(r.font, legendFontSize); err != nil {
			withText = false
		}
	}

	for i, e := range entries {
		y := legendY + float64(i)*legendRowHeight
		if err := setColor(dc, e.Color, 255); err != nil {
			return err
		}
		dc.DrawRectangle(legendX, y, legendSwatch, legendSwatch)
		dc.Fill()
		if withText {
			dc.SetRGB(0, 0, 0)
			dc.DrawString(e.Label, legendX+legendSwatch+6, y+legendSwatch-4)
		}
	}
	return nil
}

// tracePath adds every ring as a closed subpath without filling or stroking.
func tracePath(dc *gg.Context, rings []geo.Ring) {
	for _, ring := range rings {
		for i, p := range ring {
			if i == 0 {
				dc.MoveTo(p.X, p.Y)
			} else {
				dc.LineTo(p.X, p.Y)
			}
		}
		dc.ClosePath()
	}
}

// setColor applies a CSS color literal with the given alpha. Both #rrggbb
// and rgb(r,g,b) forms appear in the color scales.
func setColor(dc *gg.Context, css string, alpha int) error {
	r, g, b, err := parseColor(css)
	if err != nil {
		return err
	}
	dc.SetRGBA255(r, g, b, alpha)
	return nil
}

func parseColor(css string) (int, int, int, error) {
	css = strings.TrimSpace(css)
	switch {
	case strings.HasPrefix(css, "#") && len(css) == 7:
		v, err := strconv.ParseUint(css[1:], 16, 32)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("parse color %q: %w", css, err)
		}
		return int(v >> 16), int(v >> 8 & 0xff), int(v & 0xff), nil
	case strings.HasPrefix(css, "rgb(") && strings.HasSuffix(css, ")"):
		var r, g, b int
		_, err := fmt.Sscanf(css, "rgb(%d,%d,%d)", &r, &g, &b)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("parse color %q: %w", css, err)
		}
		return r, g, b, nil
	}
	return 0, 0, 0, fmt.Errorf("parse color %q: unsupported form", css)
}
