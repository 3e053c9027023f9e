package model

// Book is a catalog entry with its copy counters.
type Book struct {
	ID              int64
	Title           string
	Author          string
	ISBN            string
	Category        string
	TotalCopies     int
	AvailableCopies int
}

// NewBook carries the fields an administrator supplies when cataloging a book.
type NewBook struct {
	Title       string
	Author      string
	ISBN        string
	Category    string
	TotalCopies int
}
