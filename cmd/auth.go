package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/hemoscan/internal/auth"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}
		if email == "" || password == "" {
			return errors.New("email and password are required")
		}

		d, err := setup(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		return printAuthResult(cmd, d.manager.Login(cmd.Context(), email, password))
	},
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		username, _ := cmd.Flags().GetString("username")
		email, _ := cmd.Flags().GetString("email")
		password, err := readPassword(cmd)
		if err != nil {
			return err
		}
		if username == "" || email == "" || password == "" {
			return errors.New("username, email and password are required")
		}

		d, err := setup(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		return printAuthResult(cmd, d.manager.Signup(cmd.Context(), username, email, password))
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		// Logout purges storage even when no session was restored.
		d.manager.Logout()
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := setup(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		sess, err := d.session(cmd.Context())
		if err != nil {
			return err
		}
		printUser(cmd.OutOrStdout(), sess)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, signupCmd} {
		c.Flags().String("email", "", "Account email")
		c.Flags().String("password", "", "Account password (prefer --password-stdin)")
		c.Flags().Bool("password-stdin", false, "Read the password from the first line of stdin")
	}
	signupCmd.Flags().String("username", "", "Username")
}

// readPassword returns --password, or the first stdin line with
// --password-stdin.
func readPassword(cmd *cobra.Command) (string, error) {
	if fromStdin, _ := cmd.Flags().GetBool("password-stdin"); fromStdin {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
	p, _ := cmd.Flags().GetString("password")
	return p, nil
}

func printAuthResult(cmd *cobra.Command, res auth.Result) error {
	if !res.OK {
		return errors.New(res.Error)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Signed in.")
	printUser(cmd.OutOrStdout(), auth.Session{User: res.User})
	return nil
}

func printUser(w io.Writer, sess auth.Session) {
	if sess.User == nil {
		return
	}
	fmt.Fprintf(w, "  Username: %s\n", sess.User.Username)
	fmt.Fprintf(w, "  Email:    %s\n", sess.User.Email)
	fmt.Fprintf(w, "  Role:     %s\n", sess.User.Role)
}
