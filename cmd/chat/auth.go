package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"plotchat/internal/remote"
)

var (
	loginUser    string
	loginPass    string
	signupEmail  string
	skipPassword bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the access token",
	RunE: func(cmd *cobra.Command, _ []string) error {
		in := bufio.NewReader(cmd.InOrStdin())
		user, err := flagOrPrompt(in, cmd.OutOrStdout(), loginUser, "Username: ")
		if err != nil {
			return err
		}
		pass, err := flagOrPrompt(in, cmd.OutOrStdout(), loginPass, "Password: ")
		if err != nil {
			return err
		}

		a := current
		creds, err := a.client.Login(cmd.Context(), user, pass)
		if err != nil {
			return describeAPIError("login", err)
		}
		if err := a.tokens.Save(creds.Token); err != nil {
			return err
		}
		a.logger.Info("logged in", zap.String("user_id", creds.UserID))
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", creds.Username)
		return nil
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, _ []string) error {
		in := bufio.NewReader(cmd.InOrStdin())
		out := cmd.OutOrStdout()
		user, err := flagOrPrompt(in, out, loginUser, "Username: ")
		if err != nil {
			return err
		}
		email, err := flagOrPrompt(in, out, signupEmail, "Email: ")
		if err != nil {
			return err
		}
		pass, err := flagOrPrompt(in, out, loginPass, "Password: ")
		if err != nil {
			return err
		}

		if err := current.client.Signup(cmd.Context(), user, email, pass); err != nil {
			return describeAPIError("signup", err)
		}
		fmt.Fprintf(out, "Account %s created. Run `plotchat login` to start.\n", user)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Revoke the stored token and delete it",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a := current
		if a.tokens.Token() == "" {
			fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
			return nil
		}
		if err := a.client.Logout(cmd.Context()); err != nil {
			var statusErr *remote.StatusError
			if !errors.As(err, &statusErr) || statusErr.Code != http.StatusUnauthorized {
				return describeAPIError("logout", err)
			}
			a.logger.Warn("token already rejected by server")
		}
		if err := a.tokens.Clear(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out.")
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, signupCmd} {
		c.Flags().StringVarP(&loginUser, "username", "u", "", "Username")
		c.Flags().StringVarP(&loginPass, "password", "p", "", "Password (prompted when empty)")
	}
	signupCmd.Flags().StringVarP(&signupEmail, "email", "e", "", "Email")
	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd)
}

func flagOrPrompt(in *bufio.Reader, out io.Writer, value, prompt string) (string, error) {
	if value != "" {
		return value, nil
	}
	fmt.Fprint(out, prompt)
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("%s is required", strings.TrimSuffix(strings.ToLower(prompt), ": "))
	}
	return line, nil
}

// describeAPIError traduce los errores del servicio a algo legible.
func describeAPIError(op string, err error) error {
	var statusErr *remote.StatusError
	if !errors.As(err, &statusErr) {
		return fmt.Errorf("%s: %w", op, err)
	}
	switch statusErr.Code {
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: invalid credentials or expired session", op)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%s: too many attempts, try again later", op)
	default:
		if msg := apiErrorMessage(statusErr.Body); msg != "" {
			return fmt.Errorf("%s: %s", op, msg)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
}
