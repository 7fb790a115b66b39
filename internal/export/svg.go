package export

import (
	"fmt"
	"math"
	"strings"
)

// Series is one polyline of a profile plot.
type Series struct {
	Name   string
	Color  string
	Values []float64
}

// ProfileSVG plots each series against its sample index. Non-finite samples
// break the line. Returns "" when no series has two points.
func ProfileSVG(series []Series, width, height int) string {
	minY, maxY := math.Inf(1), math.Inf(-1)
	maxLen := 0
	for _, s := range series {
		maxLen = max(maxLen, len(s.Values))
		for _, v := range s.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			minY = math.Min(minY, v)
			maxY = math.Max(maxY, v)
		}
	}
	if maxLen < 2 || minY > maxY {
		return ""
	}

	// Add padding
	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY
	rangeX := float64(maxLen - 1)

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#0a0a0a"/>
`, width, height, width, height))

	for _, s := range series {
		if len(s.Values) < 2 {
			continue
		}
		color := s.Color
		if color == "" {
			color = "#00ff88"
		}

		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="`, color))
		pen := "M"
		for i, v := range s.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				pen = "M"
				continue
			}
			x := float64(i) / rangeX * float64(width)
			y := float64(height) - (v-minY)/rangeY*float64(height)
			if i > 0 && pen == "M" {
				sb.WriteString(" ")
			}
			sb.WriteString(fmt.Sprintf("%s%.1f,%.1f", pen, x, y))
			pen = " L"
		}
		sb.WriteString(`"`)
		if s.Name != "" {
			sb.WriteString(fmt.Sprintf(`><title>%s</title></path>`, s.Name))
		} else {
			sb.WriteString(`/>`)
		}
		sb.WriteString("\n")
	}

	sb.WriteString("</svg>")
	return sb.String()
}
