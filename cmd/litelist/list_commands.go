package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"
)

func listsCommand() *cli.Command {
	return &cli.Command{
		Name:  "lists",
		Usage: "Manage note lists",
		Subcommands: []*cli.Command{
			{
				Name:   "ls",
				Usage:  "Show all lists",
				Action: listsLs,
			},
			{
				Name:      "show",
				Usage:     "Show a list with its notes",
				ArgsUsage: "LIST_ID",
				Action:    listsShow,
			},
			{
				Name:      "create",
				Usage:     "Create a list",
				ArgsUsage: "NAME",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "description",
						Aliases: []string{"d"},
						Usage:   "List description",
					},
				},
				Action: listsCreate,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a list",
				ArgsUsage: "LIST_ID",
				Action:    listsDelete,
			},
		},
	}
}

func notesCommand() *cli.Command {
	return &cli.Command{
		Name:  "notes",
		Usage: "Manage notes in a list",
		Subcommands: []*cli.Command{
			{
				Name:      "add",
				Usage:     "Add a note to a list",
				ArgsUsage: "LIST_ID CONTENT...",
				Action:    notesAdd,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Delete a note",
				ArgsUsage: "LIST_ID NOTE_ID",
				Action:    notesDelete,
			},
		},
	}
}

func parseID(c *cli.Context, index int, name string) (int64, error) {
	raw := c.Args().Get(index)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, cli.Exit(fmt.Sprintf("invalid %s %q", name, raw), 1)
	}
	return id, nil
}

func listsLs(c *cli.Context) error {
	a, err := bootstrap(c, false)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.requireSession(c.Context)
	if err != nil {
		return err
	}

	lists, err := a.client.NoteLists(c.Context, s.Token)
	if err != nil {
		return fmt.Errorf("failed to fetch lists: %w", err)
	}

	if ok, err := printStructured(c, lists); ok {
		return err
	}
	rows := make([][]string, 0, len(lists))
	for _, list := range lists {
		rows = append(rows, []string{
			strconv.FormatInt(list.ID, 10),
			list.Name,
			strconv.Itoa(len(list.Notes)),
			list.Description,
		})
	}
	return printTable(c.App.Writer, []string{"ID", "NAME", "NOTES", "DESCRIPTION"}, rows)
}

func listsShow(c *cli.Context) error {
	id, err := parseID(c, 0, "LIST_ID")
	if err != nil {
		return err
	}

	a, err := bootstrap(c, false)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.requireSession(c.Context)
	if err != nil {
		return err
	}

	list, err := a.client.NoteList(c.Context, s.Token, id)
	if err != nil {
		return fmt.Errorf("failed to fetch list: %w", err)
	}

	if ok, err := printStructured(c, list); ok {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s\n", list.Name)
	if list.Description != "" {
		fmt.Fprintf(c.App.Writer, "%s\n", list.Description)
	}
	fmt.Fprintln(c.App.Writer)

	rows := make([][]string, 0, len(list.Notes))
	for _, note := range list.Notes {
		rows = append(rows, []string{strconv.FormatInt(note.ID, 10), note.Content})
	}
	return printTable(c.App.Writer, []string{"ID", "CONTENT"}, rows)
}

func listsCreate(c *cli.Context) error {
	name := strings.TrimSpace(c.Args().First())
	if name == "" {
		return cli.Exit("NAME is required", 1)
	}

	a, err := bootstrap(c, false)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.requireSession(c.Context)
	if err != nil {
		return err
	}

	list, err := a.client.CreateNoteList(c.Context, s.Token, name, strings.TrimSpace(c.String("description")))
	if err != nil {
		return fmt.Errorf("failed to create list: %w", err)
	}

	if ok, err := printStructured(c, list); ok {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Created list %d (%s)\n", list.ID, list.Name)
	return nil
}

func listsDelete(c *cli.Context) error {
	id, err := parseID(c, 0, "LIST_ID")
	if err != nil {
		return err
	}

	a, err := bootstrap(c, false)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.requireSession(c.Context)
	if err != nil {
		return err
	}

	if err := a.client.DeleteNoteList(c.Context, s.Token, id); err != nil {
		return fmt.Errorf("failed to delete list: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Deleted list %d\n", id)
	return nil
}

func notesAdd(c *cli.Context) error {
	listID, err := parseID(c, 0, "LIST_ID")
	if err != nil {
		return err
	}
	content := strings.TrimSpace(strings.Join(c.Args().Tail(), " "))
	if content == "" {
		return cli.Exit("CONTENT is required", 1)
	}

	a, err := bootstrap(c, false)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.requireSession(c.Context)
	if err != nil {
		return err
	}

	note, err := a.client.CreateNote(c.Context, s.Token, listID, content)
	if err != nil {
		return fmt.Errorf("failed to add note: %w", err)
	}

	if ok, err := printStructured(c, note); ok {
		return err
	}
	fmt.Fprintf(c.App.Writer, "Added note %d to list %d\n", note.ID, listID)
	return nil
}

func notesDelete(c *cli.Context) error {
	listID, err := parseID(c, 0, "LIST_ID")
	if err != nil {
		return err
	}
	noteID, err := parseID(c, 1, "NOTE_ID")
	if err != nil {
		return err
	}

	a, err := bootstrap(c, false)
	if err != nil {
		return err
	}
	defer a.Close()

	s, err := a.requireSession(c.Context)
	if err != nil {
		return err
	}

	if err := a.client.DeleteNote(c.Context, s.Token, listID, noteID); err != nil {
		return fmt.Errorf("failed to delete note: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Deleted note %d\n", noteID)
	return nil
}
