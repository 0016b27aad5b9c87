package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"plotchat/internal/chat"
	"plotchat/internal/domain"
)

const replHelp = `Commands:
  /new        start a new chat
  /list       list chats
  /open N     open chat N from /list
  /faq N      send frequent question N
  /plot N     pick plot type N
  /quit       exit
Anything else is sent as a message.`

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Line-mode chat for terminals without full-screen support",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctrl := current.newController(current.client)
		return runREPL(cmd.Context(), ctrl, cmd.InOrStdin(), cmd.OutOrStdout(), current.logger)
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runREPL(ctx context.Context, ctrl *chat.Controller, in io.Reader, out io.Writer, logger *zap.Logger) error {
	reader := bufio.NewReader(in)

	if err := ctrl.Hydrate(ctx); err != nil {
		fmt.Fprintln(out, "offline: could not load chats")
	} else {
		fmt.Fprintf(out, "%d chats loaded.\n", len(ctrl.Store().List()))
	}
	fmt.Fprintln(out, replHelp)

	for {
		fmt.Fprint(out, "> ")
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read input: %w", err)
		}
		eof := err != nil
		line = strings.TrimSpace(line)

		if line != "" {
			quit, cmdErr := replLine(ctx, ctrl, out, line)
			if cmdErr != nil {
				logger.Debug("repl command failed", zap.String("line", line), zap.Error(cmdErr))
				fmt.Fprintln(out, "error:", describeChatError(cmdErr))
			}
			if quit {
				return nil
			}
		}
		if eof {
			fmt.Fprintln(out)
			return nil
		}
	}
}

func replLine(ctx context.Context, ctrl *chat.Controller, out io.Writer, line string) (bool, error) {
	if !strings.HasPrefix(line, "/") {
		ctrl.SetDraft(line)
		outcome, err := ctrl.Submit(ctx)
		return false, printOutcome(out, outcome, err)
	}

	name, arg, _ := strings.Cut(line, " ")
	switch name {
	case "/quit", "/exit":
		return true, nil
	case "/help":
		fmt.Fprintln(out, replHelp)
	case "/new":
		sess := ctrl.NewChat()
		fmt.Fprintf(out, "Started %q.\n", sess.Title)
		printFAQs(ctrl, out)
	case "/list":
		selected, hasSel := ctrl.Store().SelectedID()
		for i, s := range ctrl.Store().List() {
			mark := " "
			if hasSel && s.ID == selected {
				mark = "*"
			}
			fmt.Fprintf(out, "%s[%d] %s\n", mark, i+1, s.Title)
		}
	case "/open":
		sessions := ctrl.Store().List()
		idx, err := choice(arg, len(sessions))
		if err != nil {
			return false, err
		}
		ctrl.Select(sessions[idx].ID)
		for _, msg := range sessions[idx].Messages {
			printMessage(out, msg.Sender == domain.SenderUser, msg.Text)
		}
		printFAQs(ctrl, out)
	case "/faq":
		if !ctrl.FAQVisible() {
			return false, errors.New("frequent questions are only available on an empty chat")
		}
		faqs := ctrl.FAQs()
		idx, err := choice(arg, len(faqs))
		if err != nil {
			return false, err
		}
		outcome, err := ctrl.ClickFAQ(ctx, faqs[idx])
		return false, printOutcome(out, outcome, err)
	case "/plot":
		idx, err := choice(arg, len(chat.PlotChoices))
		if err != nil {
			return false, err
		}
		outcome, err := ctrl.ClickPlot(ctx, chat.PlotChoices[idx])
		return false, printOutcome(out, outcome, err)
	default:
		return false, fmt.Errorf("unknown command %s", name)
	}
	return false, nil
}

func printOutcome(out io.Writer, outcome chat.Outcome, err error) error {
	if err != nil {
		return err
	}
	printReply(out, outcome.Reply.Text)
	return nil
}

func printMessage(out io.Writer, fromUser bool, text string) {
	if fromUser {
		fmt.Fprintf(out, "you: %s\n", text)
		return
	}
	printReply(out, text)
}

func printFAQs(ctrl *chat.Controller, out io.Writer) {
	if !ctrl.FAQVisible() {
		return
	}
	fmt.Fprintln(out, "Frequent questions:")
	for i, f := range ctrl.FAQs() {
		fmt.Fprintf(out, "  [%d] %s\n", i+1, f)
	}
}

func choice(arg string, n int) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || i < 1 || i > n {
		return 0, fmt.Errorf("pick a number between 1 and %d", n)
	}
	return i - 1, nil
}

func describeChatError(err error) string {
	var netErr *chat.NetworkError
	switch {
	case errors.Is(err, chat.ErrEmptyInput):
		return "nothing to send"
	case errors.Is(err, chat.ErrNoSession):
		return "that chat no longer exists"
	case errors.As(err, &netErr):
		return fmt.Sprintf("network error: %s failed", netErr.Op)
	default:
		return err.Error()
	}
}
