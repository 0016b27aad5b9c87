package chat

// Codigos que el asistente usa para pedir UI alternativa.
const (
	SentinelPlotSelector = "#"
	SentinelBarChart     = "#1"
	SentinelPieChart     = "#2"
	SentinelScatterChart = "#3"
	SentinelLineChart    = "#4"
)

// PlotChoices son las opciones del selector, en orden. La elegida se envia
// como mensaje del usuario.
var PlotChoices = []string{"BarPlot", "PiePlot", "ScatterPlot", "LinePlot"}

// ChartKind identifica uno de los cuatro graficos.
type ChartKind int

const (
	ChartBar ChartKind = iota + 1
	ChartPie
	ChartScatter
	ChartLine
)

func (k ChartKind) String() string {
	switch k {
	case ChartBar:
		return "bar"
	case ChartPie:
		return "pie"
	case ChartScatter:
		return "scatter"
	case ChartLine:
		return "line"
	default:
		return "unknown"
	}
}

// Render es el resultado de clasificar el texto de un mensaje. Las unicas
// variantes son PlainText, OpenPlotSelector y RenderChart.
type Render interface {
	isRender()
}

// PlainText se muestra literal.
type PlainText struct {
	Text string
}

// OpenPlotSelector muestra el selector de tipo de grafico.
type OpenPlotSelector struct{}

// RenderChart muestra el grafico Kind.
type RenderChart struct {
	Kind ChartKind
}

func (PlainText) isRender()        {}
func (OpenPlotSelector) isRender() {}
func (RenderChart) isRender()      {}

// Classify decide como renderizar text. Es pura: no mira el estado de la sesion.
func Classify(text string) Render {
	switch text {
	case SentinelPlotSelector:
		return OpenPlotSelector{}
	case SentinelBarChart:
		return RenderChart{Kind: ChartBar}
	case SentinelPieChart:
		return RenderChart{Kind: ChartPie}
	case SentinelScatterChart:
		return RenderChart{Kind: ChartScatter}
	case SentinelLineChart:
		return RenderChart{Kind: ChartLine}
	default:
		return PlainText{Text: text}
	}
}
