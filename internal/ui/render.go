package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"plotchat/internal/chat"
	"plotchat/internal/domain"
)

const plotSelectorPrompt = "Select any of these plot types:"

const welcomeText = `Welcome to plotchat.

Press ctrl+n to start a new chat, or just type a message.
Type "Graph" to pick a chart.`

// RenderChart dibuja el grafico kind con estilo.
func RenderChart(kind chat.ChartKind, width int) string {
	return chartStyle.Render(strings.Join(chartLines(kind, width), "\n"))
}

// renderBody decide como se muestra el texto de un mensaje.
func renderBody(text string, width int) string {
	switch r := chat.Classify(text).(type) {
	case chat.PlainText:
		return textStyle.Width(width).Render(r.Text)
	case chat.OpenPlotSelector:
		return renderPlotSelector(-1)
	case chat.RenderChart:
		return RenderChart(r.Kind, width)
	default:
		panic("ui: unhandled render variant")
	}
}

func renderPlotSelector(active int) string {
	return dimStyle.Render(plotSelectorPrompt) + "\n" + renderChips(chat.PlotChoices, active)
}

func renderChips(labels []string, active int) string {
	chips := make([]string, 0, len(labels))
	for i, l := range labels {
		style := chipStyle
		if i == active {
			style = chipActiveStyle
		}
		chips = append(chips, style.Render(l))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, chips...)
}

// renderTranscript arma el contenido del viewport para sess.
func renderTranscript(sess domain.Session, width int) string {
	if len(sess.Messages) == 0 {
		return dimStyle.Render("No messages yet.")
	}
	blocks := make([]string, 0, len(sess.Messages))
	for _, msg := range sess.Messages {
		label := botLabelStyle.Render("Assistant")
		if msg.Sender == domain.SenderUser {
			label = userLabelStyle.Render("You")
		}
		blocks = append(blocks, label+"\n"+renderBody(msg.Text, width))
	}
	return strings.Join(blocks, "\n\n")
}

// hasPlotSelector indica si algun mensaje de sess abre el selector de graficos.
func hasPlotSelector(sess domain.Session) bool {
	for _, msg := range sess.Messages {
		if _, ok := chat.Classify(msg.Text).(chat.OpenPlotSelector); ok {
			return true
		}
	}
	return false
}
