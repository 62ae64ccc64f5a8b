package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/intellidetect/dashboard/pkg/domain"
	"github.com/intellidetect/dashboard/pkg/session"
)

func newLoginCmd(c *cli) *cobra.Command {
	var username string
	var passwordStdin bool
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in := bufio.NewReader(cmd.InOrStdin())
			if username == "" {
				u, err := prompt(cmd.ErrOrStderr(), in, "Username: ")
				if err != nil {
					return err
				}
				username = u
			}
			password, err := c.readPassword(cmd, in, passwordStdin, "Password: ")
			if err != nil {
				return err
			}
			u, err := c.login(cmd.Context(), domain.Credentials{Username: username, Password: password})
			if err != nil {
				return err
			}
			return c.emit(cmd.OutOrStdout(), u, func() string {
				return status("signed in as " + boldStyle.Render(u.Username))
			})
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "account name (prompted when omitted)")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

// login signs in and makes sure a profile is cached for the dashboard.
func (c *cli) login(ctx context.Context, creds domain.Credentials) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, c.deadline())
	defer cancel()

	users := c.services(nil).Users()
	res, err := users.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	if res.User != nil {
		return res.User, nil
	}
	u, err := users.GetUserByUsername(ctx, creds.Username)
	if err != nil {
		return nil, err
	}
	if err := session.SaveUser(c.store, u); err != nil {
		return nil, err
	}
	return u, nil
}

func newLogoutCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Clear the stored session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := session.Logout(c.store); err != nil {
				return err
			}
			return c.emit(cmd.OutOrStdout(), map[string]bool{"loggedOut": true}, func() string {
				return status("signed out")
			})
		},
	}
}

func newRegisterCmd(c *cli) *cobra.Command {
	var reg domain.Registration
	var passwordStdin bool
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if reg.Username == "" {
				return errors.New("--username is required")
			}
			in := bufio.NewReader(cmd.InOrStdin())
			password, err := c.readPassword(cmd, in, passwordStdin, "Choose a password: ")
			if err != nil {
				return err
			}
			reg.Password = password

			ctx, cancel := context.WithTimeout(cmd.Context(), c.deadline())
			defer cancel()
			u, err := c.commandServices().Users().Register(ctx, reg)
			if err != nil {
				return err
			}
			return c.emit(cmd.OutOrStdout(), u, func() string {
				return status("account " + boldStyle.Render(u.Username) + " created, run `intellidetect login` to sign in")
			})
		},
	}
	cmd.Flags().StringVarP(&reg.Username, "username", "u", "", "account name")
	cmd.Flags().StringVar(&reg.Email, "email", "", "email address")
	cmd.Flags().StringVar(&reg.PhoneNumber, "phone", "", "phone number")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	return cmd
}

func newWhoamiCmd(c *cli) *cobra.Command {
	var refresh bool
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			u := session.CachedUser(c.store)
			if refresh || u == nil {
				fresh, err := c.refreshProfile(cmd.Context(), u)
				if err != nil {
					return err
				}
				u = fresh
			}
			return c.emit(cmd.OutOrStdout(), u, func() string { return formatUserHuman(u) })
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "fetch the profile from the server")
	return cmd
}

// refreshProfile reloads the signed-in profile and updates the cache.
func (c *cli) refreshProfile(ctx context.Context, cached *domain.User) (*domain.User, error) {
	if cached == nil {
		return nil, errors.New("no cached profile, run `intellidetect login` again")
	}
	ctx, cancel := context.WithTimeout(ctx, c.deadline())
	defer cancel()
	u, err := c.commandServices().Users().GetUser(ctx, cached.ID)
	if err != nil {
		return nil, err
	}
	if err := session.SaveUser(c.store, u); err != nil {
		return nil, err
	}
	return u, nil
}

func newAccountCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage the signed-in account",
	}

	var passwordStdin bool
	password := &cobra.Command{
		Use:   "password",
		Short: "Change the account password",
		Long: `Change the account password. With --password-stdin the current and new
passwords are read from the first two lines of stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			in := bufio.NewReader(cmd.InOrStdin())
			var change domain.PasswordChange
			var err error
			if change.OldPassword, err = c.readPassword(cmd, in, passwordStdin, "Current password: "); err != nil {
				return err
			}
			if change.NewPassword, err = c.readPassword(cmd, in, passwordStdin, "New password: "); err != nil {
				return err
			}
			if change.NewPassword == "" {
				return errors.New("new password must not be empty")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), c.deadline())
			defer cancel()
			if err := c.commandServices().Users().UpdatePassword(ctx, change); err != nil {
				return err
			}
			return c.emit(cmd.OutOrStdout(), map[string]bool{"updated": true}, func() string {
				return status("password updated")
			})
		},
	}
	password.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read passwords from stdin")

	var yes bool
	del := &cobra.Command{
		Use:   "delete",
		Short: "Delete the account and sign out",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.requireSession(); err != nil {
				return err
			}
			if !yes {
				return errors.New("refusing to delete the account without --yes")
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), c.deadline())
			defer cancel()
			if err := c.commandServices().Users().DeleteUser(ctx); err != nil {
				return err
			}
			return c.emit(cmd.OutOrStdout(), map[string]bool{"deleted": true}, func() string {
				return status("account deleted")
			})
		},
	}
	del.Flags().BoolVar(&yes, "yes", false, "confirm deletion")

	cmd.AddCommand(password, del)
	return cmd
}

// readPassword reads a line from in when fromStdin is set, otherwise prompts
// without echo on the controlling terminal.
func (c *cli) readPassword(cmd *cobra.Command, in *bufio.Reader, fromStdin bool, label string) (string, error) {
	if fromStdin {
		line, err := readLine(in)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return line, nil
	}
	if !isTerminal(c.in) {
		return "", errors.New("stdin is not a terminal, use --password-stdin")
	}
	fmt.Fprint(cmd.ErrOrStderr(), label) //nolint:errcheck
	pw, err := term.ReadPassword(int(c.in.(*os.File).Fd()))
	fmt.Fprintln(cmd.ErrOrStderr()) //nolint:errcheck
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

func prompt(w io.Writer, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(w, label) //nolint:errcheck
	line, err := readLine(in)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", strings.TrimSuffix(strings.ToLower(label), ": "), err)
	}
	if line == "" {
		return "", errors.New("a value is required")
	}
	return line, nil
}

// readLine returns the next line without its terminator. A final line without
// a newline is accepted.
func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
