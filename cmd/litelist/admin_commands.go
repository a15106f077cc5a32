package main

import (
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"
)

func adminCommand() *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "Administrator views",
		Subcommands: []*cli.Command{
			{
				Name:   "users",
				Usage:  "Show users with their list and note counts",
				Action: adminUsers,
			},
		},
	}
}

func adminUsers(c *cli.Context) error {
	a, err := bootstrap(c, false)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.requireSession(c.Context)
	if err != nil {
		return err
	}
	if !s.User.Admin {
		return cli.Exit("administrator access required", 1)
	}

	users, err := a.client.Users(c.Context, s.Token)
	if err != nil {
		return fmt.Errorf("failed to fetch users: %w", err)
	}

	if ok, err := printStructured(c, users); ok {
		return err
	}
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{
			u.Username,
			u.Email,
			strconv.FormatBool(u.Admin),
			strconv.Itoa(u.ListCount),
			strconv.Itoa(u.NoteCount),
		})
	}
	return printTable(c.App.Writer, []string{"USERNAME", "EMAIL", "ADMIN", "LISTS", "NOTES"}, rows)
}

func statusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show API server status",
		Action: func(c *cli.Context) error {
			a, err := bootstrap(c, false)
			if err != nil {
				return err
			}
			defer a.Close()

			status, err := a.client.Status(c.Context)
			if err != nil {
				return fmt.Errorf("failed to fetch status: %w", err)
			}

			if ok, err := printStructured(c, status); ok {
				return err
			}
			return printTable(c.App.Writer,
				[]string{"SERVER", "VIRTUAL MEMORY", "PHYSICAL MEMORY"},
				[][]string{{
					a.client.BaseURL(),
					strconv.FormatInt(status.VirtualMemory, 10),
					strconv.FormatInt(status.PhysicalMemory, 10),
				}})
		},
	}
}
