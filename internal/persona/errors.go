package persona

import "fmt"

// NotFoundError is returned when a persona id is not in the store
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("persona %q not found", e.ID)
}
