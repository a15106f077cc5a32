package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/qcom/litelist/internal/claims"
	"github.com/qcom/litelist/internal/session"
)

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:      "login",
		Usage:     "Log in and keep the session for later commands",
		ArgsUsage: "USERNAME",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Password (prompted when omitted)",
				EnvVars: []string{"LITELIST_PASSWORD"},
			},
		},
		Action: login,
	}
}

func login(c *cli.Context) error {
	username := strings.TrimSpace(c.Args().First())
	if username == "" {
		return cli.Exit("USERNAME is required", 1)
	}

	password := c.String("password")
	if password == "" {
		var err error
		if password, err = prompt(c, "Password: "); err != nil {
			return err
		}
	}

	a, err := bootstrap(c, false)
	if err != nil {
		return err
	}
	defer a.Close()

	err = a.controller.Login(c.Context, username, password)
	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		return cli.Exit("Invalid username or password", 1)
	case errors.Is(err, session.ErrServerUnavailable):
		return cli.Exit("Server error, try again later", 1)
	case err != nil:
		return err
	}

	s := a.controller.Session()
	fmt.Fprintf(c.App.Writer, "Logged in as %s\n", s.User.Username)
	return nil
}

func logoutCommand() *cli.Command {
	return &cli.Command{
		Name:  "logout",
		Usage: "Forget the stored session",
		Action: func(c *cli.Context) error {
			a, err := bootstrap(c, false)
			if err != nil {
				return err
			}
			defer a.Close()

			a.controller.Logout(c.Context)
			fmt.Fprintln(c.App.Writer, "Logged out")
			return nil
		},
	}
}

func whoamiCommand() *cli.Command {
	return &cli.Command{
		Name:  "whoami",
		Usage: "Show the logged in user",
		Action: func(c *cli.Context) error {
			a, err := bootstrap(c, false)
			if err != nil {
				return err
			}
			defer a.Close()

			s, err := a.requireSession(c.Context)
			if err != nil {
				return err
			}

			if ok, err := printStructured(c, s.User); ok {
				return err
			}
			role := "user"
			if s.User.Admin {
				role = "admin"
			}
			return printTable(c.App.Writer,
				[]string{"USERNAME", "EMAIL", "ROLE"},
				[][]string{{s.User.Username, s.User.Email, role}})
		},
	}
}

func renewCommand() *cli.Command {
	return &cli.Command{
		Name:  "renew",
		Usage: "Renew the stored token if it is close to expiry",
		Action: func(c *cli.Context) error {
			a, err := bootstrap(c, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if _, err := a.requireSession(c.Context); err != nil {
				return err
			}
			if err := a.controller.TryRenew(c.Context); err != nil {
				a.logger.WithError(err).Debug("Renewal failed")
				return cli.Exit("Session expired, log in again", 1)
			}

			s := a.controller.Session()
			remaining, err := claims.SecondsTilExpire(s.Token, time.Now())
			if err != nil {
				fmt.Fprintln(c.App.Writer, "Session active")
				return nil
			}
			fmt.Fprintf(c.App.Writer, "Session active, token valid for %ds\n", remaining)
			return nil
		},
	}
}

func registerCommand() *cli.Command {
	return &cli.Command{
		Name:      "register",
		Usage:     "Create an account",
		ArgsUsage: "USERNAME EMAIL",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "password",
				Aliases: []string{"p"},
				Usage:   "Password (prompted when omitted)",
				EnvVars: []string{"LITELIST_PASSWORD"},
			},
		},
		Action: func(c *cli.Context) error {
			username := strings.TrimSpace(c.Args().Get(0))
			email := strings.TrimSpace(c.Args().Get(1))
			if username == "" || email == "" {
				return cli.Exit("USERNAME and EMAIL are required", 1)
			}

			password := c.String("password")
			if password == "" {
				var err error
				if password, err = prompt(c, "Password: "); err != nil {
					return err
				}
			}

			a, err := bootstrap(c, false)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.client.Register(c.Context, username, email, password); err != nil {
				return fmt.Errorf("failed to register: %w", err)
			}
			fmt.Fprintf(c.App.Writer, "Registered %s, run `litelist login %s` to start\n", username, username)
			return nil
		},
	}
}

// prompt reads one line from the app's reader.
func prompt(c *cli.Context, label string) (string, error) {
	fmt.Fprint(c.App.ErrWriter, label)
	line, err := bufio.NewReader(c.App.Reader).ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
