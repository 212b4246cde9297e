package catalog

import (
	"errors"
	"fmt"
)

// LoadFailedMessage is shown to the user whenever the catalog cannot be
// loaded. The underlying cause is only logged.
const LoadFailedMessage = "Error: could not load the book database. Check the libros.json file."

// ErrNotLoaded is returned by Service methods until Load has succeeded.
var ErrNotLoaded = errors.New("catalog not loaded")

// LoadError reports a catalog that could not be fetched or decoded.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load catalog from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Message is the static, displayable text for the failure.
func (e *LoadError) Message() string {
	return LoadFailedMessage
}
