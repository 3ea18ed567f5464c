package model

// Bubble Tea message types

// ErrorMsg represents an error message.
type ErrorMsg struct {
	Err error
}

// DatasetLoadedMsg is sent when the institution dataset is loaded.
type DatasetLoadedMsg struct {
	Entries []InstitutionEntry
	Info    DatasetInfo
}

// ExportedMsg is sent when the current table was written as HTML.
type ExportedMsg struct {
	Path string
	Rows int
}

// Screen represents different app screens.
type Screen int

const (
	ScreenRates Screen = iota
	ScreenDetail
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNav Mode = iota
	ModeInsert
)
