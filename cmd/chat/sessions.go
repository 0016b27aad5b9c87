package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"plotchat/internal/chat"
	"plotchat/internal/ui"
)

const chartWidth = 60

var sendSession int64

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "List your chats",
	RunE: func(cmd *cobra.Command, _ []string) error {
		sessions, err := current.client.FetchSessions(cmd.Context())
		if err != nil {
			return describeAPIError("sessions", err)
		}
		out := cmd.OutOrStdout()
		if len(sessions) == 0 {
			fmt.Fprintln(out, "No chats yet.")
			return nil
		}
		for _, s := range sessions {
			fmt.Fprintf(out, "%6d  %-24s %d messages\n", s.ID, s.Title, len(s.Messages))
		}
		return nil
	},
}

var sendCmd = &cobra.Command{
	Use:   "send [message]",
	Short: "Send one message and print the reply",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.TrimSpace(strings.Join(args, " "))
		if text == "" {
			return chat.ErrEmptyInput
		}

		req := chat.SendRequest{Input: text}
		if sendSession > 0 {
			req.SessionID = &sendSession
		} else {
			title := chat.DeriveTitle(text, current.cfg.TitleMax)
			req.SessionTitle = &title
		}

		reply, err := current.client.SendMessage(cmd.Context(), req)
		if err != nil {
			return describeAPIError("send", err)
		}
		out := cmd.OutOrStdout()
		printReply(out, reply.Text)
		if reply.SessionID > 0 {
			fmt.Fprintf(out, "\n(session %d)\n", reply.SessionID)
		}
		return nil
	},
}

func init() {
	sendCmd.Flags().Int64VarP(&sendSession, "session", "s", 0, "Existing session id (a new session is created when omitted)")
	rootCmd.AddCommand(sessionsCmd, sendCmd)
}

// printReply escribe un mensaje del asistente en modo linea.
func printReply(w io.Writer, text string) {
	switch r := chat.Classify(text).(type) {
	case chat.OpenPlotSelector:
		fmt.Fprintln(w, "Select any of these plot types:")
		for i, c := range chat.PlotChoices {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, c)
		}
	case chat.RenderChart:
		fmt.Fprintln(w, ui.RenderChart(r.Kind, chartWidth))
	case chat.PlainText:
		fmt.Fprintln(w, r.Text)
	}
}

// apiErrorMessage extrae el campo "error" de un cuerpo JSON del servicio.
func apiErrorMessage(body string) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return ""
	}
	return payload.Error
}
