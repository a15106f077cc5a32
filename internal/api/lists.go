package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/qcom/litelist/internal/models"
)

func (c *Client) NoteLists(ctx context.Context, token string) ([]models.NoteList, error) {
	var lists []models.NoteList
	if err := c.do(ctx, http.MethodGet, "/lists", token, nil, &lists); err != nil {
		return nil, err
	}
	return lists, nil
}

func (c *Client) NoteList(ctx context.Context, token string, id int64) (*models.NoteList, error) {
	var list models.NoteList
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/lists/%d", id), token, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// CreateNoteList creates a list. An empty description is sent as null.
func (c *Client) CreateNoteList(ctx context.Context, token, name, description string) (*models.NoteList, error) {
	req := models.NewNoteList{Name: name}
	if description != "" {
		req.Description = &description
	}

	var list models.NoteList
	if err := c.do(ctx, http.MethodPost, "/lists", token, req, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

func (c *Client) DeleteNoteList(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/lists/%d", id), token, nil, nil)
}

func (c *Client) CreateNote(ctx context.Context, token string, listID int64, content string) (*models.Note, error) {
	var note models.Note
	path := fmt.Sprintf("/lists/%d/notes", listID)
	if err := c.do(ctx, http.MethodPost, path, token, models.NewNote{Content: content}, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) DeleteNote(ctx context.Context, token string, listID, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/lists/%d/notes/%d", listID, id), token, nil, nil)
}
