package models

type Note struct {
	ID         int64  `json:"id"`
	Ordinality int    `json:"ordinality"`
	Content    string `json:"content"`
	NoteListID int64  `json:"noteListId"`
}

type NoteList struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Ordinality  int    `json:"ordinality"`
	Description string `json:"description"`
	Notes       []Note `json:"notes"`
}

type NewNoteList struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

type NewNote struct {
	Content string `json:"content"`
}

// StatusInfo is the body of the unauthenticated GET /status probe.
type StatusInfo struct {
	VirtualMemory  int64 `json:"virtualMemory"`
	PhysicalMemory int64 `json:"physicalMemory"`
}
