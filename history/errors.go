package history

import "fmt"

// Common errors
var (
	ErrNoRuns             = fmt.Errorf("no runs recorded")
	ErrInvalidInput       = fmt.Errorf("invalid input")
	ErrDatabaseConnection = fmt.Errorf("database connection error")
)
