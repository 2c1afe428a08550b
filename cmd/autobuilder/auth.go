package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/agenticauto/autobuilder/internal/automation"
	"github.com/agenticauto/autobuilder/internal/config"
	"github.com/agenticauto/autobuilder/internal/logging"
)

var (
	authEmail     string
	passwordStdin bool
)

func init() {
	for _, c := range []*cobra.Command{loginCmd, signupCmd} {
		c.Flags().StringVar(&authEmail, "email", "", "Account email")
		c.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
		_ = c.MarkFlagRequired("email")
	}
	rootCmd.AddCommand(loginCmd, signupCmd, logoutCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the backend",
	Long: `Log in and save the session token. The token is only sent to the
backend that issued it.`,
	Example: `  autobuilder login --email you@example.com
  echo "$PASSWORD" | autobuilder login --email you@example.com --password-stdin`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAuth(cmd, false)
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and log in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAuth(cmd, true)
	},
}

func runAuth(cmd *cobra.Command, signup bool) error {
	s, err := newSession(cmd, "")
	if err != nil {
		return err
	}
	if err := automation.ValidateEmail(authEmail); err != nil {
		return fmt.Errorf("--email: %w", err)
	}

	password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	creds := automation.Credentials{Email: strings.TrimSpace(authEmail), Password: password}

	var sess *automation.Session
	if signup {
		sess, err = s.client.Signup(cmd.Context(), creds)
	} else {
		sess, err = s.client.Login(cmd.Context(), creds)
	}
	if err != nil {
		action := "log in"
		if signup {
			action = "sign up"
		}
		return fmt.Errorf("failed to %s: %w", action, err)
	}

	email := sess.Email
	if email == "" {
		email = creds.Email
	}
	saved := &config.Credentials{
		APIURL:      s.client.BaseURL,
		Email:       email,
		AccessToken: sess.AccessToken,
		SavedAt:     time.Now().UTC(),
	}
	if err := saved.Save(); err != nil {
		return fmt.Errorf("logged in but could not save the session: %w", err)
	}
	logging.Info("Session saved", zap.String("email", email), zap.String("api_url", saved.APIURL))

	if s.jsonOutput() {
		return s.printer.PrintJSON(map[string]string{"email": email, "api_url": saved.APIURL})
	}
	s.printer.PrintSuccess("Logged in", map[string]string{"Email": email, "Backend": saved.APIURL})
	return nil
}

// readPassword prompts on the terminal without echo, or reads one line
// when stdin is not a terminal or --password-stdin is set.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && !passwordStdin && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("no password on stdin")
	}
	return strings.TrimRight(line, "\r\n"), nil
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the session and forget the saved token",
	Args:  cobra.NoArgs,
	RunE:  runLogout,
}

func runLogout(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, "")
	if err != nil {
		return err
	}
	if !s.creds.LoggedIn() {
		s.printer.PrintWarning("Not logged in", nil)
		return nil
	}

	// the local token is dropped even when the backend cannot be told
	if s.client.Token != "" {
		if err := s.client.Logout(cmd.Context()); err != nil {
			logging.Warn("Backend logout failed", zap.Error(err))
		}
	}
	if err := config.ClearCredentials(); err != nil {
		return err
	}

	if s.jsonOutput() {
		return s.printer.PrintJSON(map[string]bool{"logged_out": true})
	}
	s.printer.PrintSuccess("Logged out", map[string]string{"Email": s.creds.Email})
	return nil
}
