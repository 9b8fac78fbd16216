package explorer

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"callscope/internal/domain"
)

// Stroke width bounds for relevant edges
const (
	MinEdgeWidth = 3.0
	MaxEdgeWidth = 6.0
)

// viridis control points, low to high
var viridis = []string{"#440154", "#3b528b", "#21918c", "#5ec962", "#fde725"}

// DiffColorer maps the diff value of relevant edges onto a colour and a
// stroke width. Values are rescaled linearly between the minimum and
// maximum of the current edge set; an empty or constant set uses [0, 1].
type DiffColorer struct {
	scale []colorful.Color
}

// NewDiffColorer creates a colorer on the viridis scale
func NewDiffColorer() *DiffColorer {
	scale := make([]colorful.Color, len(viridis))
	for i, hex := range viridis {
		c, err := colorful.Hex(hex)
		if err != nil {
			panic(fmt.Sprintf("invalid viridis stop %q: %v", hex, err))
		}
		scale[i] = c
	}
	return &DiffColorer{scale: scale}
}

// Styles computes the style of every relevant edge in edges, keyed by edge id
func (d *DiffColorer) Styles(edges []domain.Edge) map[string]domain.EdgeStyle {
	styles := make(map[string]domain.EdgeStyle)

	lo, hi := math.Inf(1), math.Inf(-1)
	var relevant []domain.Edge
	for _, e := range edges {
		if !e.IsRelevant() {
			continue
		}
		relevant = append(relevant, e)
		v := e.DiffValue()
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if len(relevant) == 0 {
		return styles
	}

	degenerate := lo == hi
	colorLo, colorHi := lo, hi
	if degenerate {
		colorLo, colorHi = 0, 1
	}

	for _, e := range relevant {
		v := e.DiffValue()
		percent := 0.0
		if !degenerate {
			percent = (v - lo) / (hi - lo)
		}
		styles[e.Data.ID] = domain.EdgeStyle{
			Color: d.Color((v - colorLo) / (colorHi - colorLo)),
			Width: MinEdgeWidth + percent*(MaxEdgeWidth-MinEdgeWidth),
		}
	}
	return styles
}

// Color returns the hex colour of weight on the scale; weight is clamped to [0, 1]
func (d *DiffColorer) Color(weight float64) string {
	weight = math.Max(0, math.Min(1, weight))
	if math.IsNaN(weight) {
		weight = 0
	}

	segments := len(d.scale) - 1
	pos := weight * float64(segments)
	i := int(math.Floor(pos))
	if i >= segments {
		return d.scale[segments].Hex()
	}
	t := pos - float64(i)
	if t == 0 {
		return d.scale[i].Hex()
	}
	return d.scale[i].BlendLab(d.scale[i+1], t).Clamped().Hex()
}
