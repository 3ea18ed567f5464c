package ui

type tableController interface {
	NextColumn()
	PrevColumn()
	JumpToColumn(number int) bool
	SortActiveColumn() string
	HideActiveColumn() bool
	ShowAllColumns()
	TableMeta() string
}
