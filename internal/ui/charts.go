package ui

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/NimbleMarkets/ntcharts/canvas"
	"github.com/NimbleMarkets/ntcharts/linechart"
	"github.com/charmbracelet/lipgloss"

	"plotchat/internal/chat"
)

// series es un conjunto de datos con etiquetas por categoria.
type series struct {
	title  string
	label  string
	labels []string
	values []float64
}

type point struct{ x, y int }

var (
	barData = series{
		title:  "Sample Bar Graph",
		label:  "Sales",
		labels: []string{"January", "February", "March", "April", "May", "June"},
		values: []float64{30, 45, 28, 50, 40, 60},
	}
	pieData = series{
		title:  "Sample Pie Graph",
		label:  "Votes",
		labels: []string{"Red", "Blue", "Yellow", "Green", "Purple", "Orange"},
		values: []float64{12, 19, 3, 5, 2, 3},
	}
	lineData = series{
		title:  "Sample Line Graph",
		label:  "Revenue ($)",
		labels: []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun"},
		values: []float64{50, 60, 70, 80, 90, 100},
	}
	scatterTitle = "Sample Scatter Graph"
	scatterSets  = []struct {
		label  string
		marker rune
		points []point
	}{
		{label: "Dataset 1", marker: '●', points: []point{{1, 2}, {2, 3}, {3, 7}, {4, 5}, {5, 9}}},
		{label: "Dataset 2", marker: '◆', points: []point{{1, 5}, {2, 2}, {3, 4}, {4, 6}, {5, 3}}},
	}
	pieGlyphs = []rune{'█', '▓', '▒', '░', '▚', '▞'}
)

const (
	minChartWidth = 20
	maxChartWidth = 60
	chartHeight   = 12
)

var barValueStyle = lipgloss.NewStyle().Foreground(colorPrimary)

// chartLines dibuja kind en a lo sumo width columnas.
func chartLines(kind chat.ChartKind, width int) []string {
	width = clamp(width, minChartWidth, maxChartWidth)
	switch kind {
	case chat.ChartBar:
		return barLines(barData, width)
	case chat.ChartPie:
		return pieLines(pieData, width)
	case chat.ChartScatter:
		return scatterLines(width)
	case chat.ChartLine:
		return lineLines(lineData, width)
	default:
		return []string{fmt.Sprintf("unknown chart %q", kind.String())}
	}
}

func barLines(s series, width int) []string {
	data := make([]barchart.BarData, len(s.values))
	for i, v := range s.values {
		data[i] = barchart.BarData{
			Label:  s.labels[i],
			Values: []barchart.BarValue{{Name: s.label, Value: v, Style: barValueStyle}},
		}
	}
	bc := barchart.New(width, chartHeight)
	bc.PushAll(data)
	bc.Draw()

	values := make([]string, len(s.values))
	for i, v := range s.values {
		values[i] = fmt.Sprintf("%.3s %g", s.labels[i], v)
	}
	lines := []string{s.title, "▇ " + s.label}
	lines = append(lines, viewLines(bc.View())...)
	return append(lines, strings.Join(values, "  "))
}

// pieLines dibuja una tira proporcional con leyenda; ntcharts no tiene torta.
func pieLines(s series, width int) []string {
	total := 0.0
	for _, v := range s.values {
		total += v
	}

	var strip strings.Builder
	cum, prevEnd := 0.0, 0
	for i, v := range s.values {
		cum += v
		end := int(math.Round(cum / total * float64(width)))
		strip.WriteString(strings.Repeat(string(pieGlyphs[i%len(pieGlyphs)]), end-prevEnd))
		prevEnd = end
	}

	labelWidth := 0
	for _, l := range s.labels {
		labelWidth = max(labelWidth, utf8.RuneCountInString(l))
	}
	lines := []string{s.title, strip.String()}
	for i, v := range s.values {
		lines = append(lines, fmt.Sprintf("%c %-*s %3g %5.1f%%", pieGlyphs[i%len(pieGlyphs)], labelWidth, s.labels[i], v, v/total*100))
	}
	return lines
}

const (
	scatterMaxX = 6
	scatterMaxY = 10
)

func scatterLines(width int) []string {
	lc := linechart.New(width, chartHeight, 0, scatterMaxX, 0, scatterMaxY)
	lc.DrawXYAxisAndLabel()
	for _, set := range scatterSets {
		for _, p := range set.points {
			lc.DrawRune(canvas.Float64Point{X: float64(p.x), Y: float64(p.y)}, set.marker)
		}
	}

	legend := make([]string, 0, len(scatterSets))
	for _, set := range scatterSets {
		legend = append(legend, fmt.Sprintf("%c %s", set.marker, set.label))
	}
	lines := []string{scatterTitle, strings.Join(legend, "   ")}
	return append(lines, viewLines(lc.View())...)
}

const lineYStep = 10

func lineLines(s series, width int) []string {
	lo := math.Floor(minOf(s.values)/lineYStep)*lineYStep - lineYStep
	hi := math.Ceil(maxOf(s.values)/lineYStep) * lineYStep

	lc := linechart.New(width, chartHeight, 0, float64(len(s.values)-1), lo, hi)
	lc.DrawXYAxisAndLabel()
	at := func(i int) canvas.Float64Point {
		return canvas.Float64Point{X: float64(i), Y: s.values[i]}
	}
	for i := 1; i < len(s.values); i++ {
		lc.DrawBrailleLine(at(i-1), at(i))
	}
	for i := range s.values {
		lc.DrawRune(at(i), '●')
	}

	lines := []string{s.title, "● " + s.label}
	lines = append(lines, viewLines(lc.View())...)
	return append(lines, "Months: "+strings.Join(s.labels, " "))
}

// viewLines parte la vista de un grafico en lineas sin espacios sobrantes.
func viewLines(view string) []string {
	raw := strings.Split(strings.TrimRight(view, "\n"), "\n")
	out := make([]string, 0, len(raw))
	for _, l := range raw {
		out = append(out, strings.TrimRight(l, " "))
	}
	return out
}

func maxOf(values []float64) float64 {
	m := math.Inf(-1)
	for _, v := range values {
		m = math.Max(m, v)
	}
	return m
}

func minOf(values []float64) float64 {
	m := math.Inf(1)
	for _, v := range values {
		m = math.Min(m, v)
	}
	return m
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
