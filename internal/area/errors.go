package area

import (
	"errors"
	"fmt"
)

var (
	ErrMissingDefinition = errors.New("missing definition")
	ErrBadDimensions     = errors.New("bad area dimensions")
	ErrGridSize          = errors.New("grid size does not match area dimensions")
	ErrNoOnRest          = errors.New("on_rest is not set")
)

// MissingDefinitionError reports a registry lookup that aborted area construction.
type MissingDefinitionError struct {
	AreaID string
	Kind   string // "encounter", "prop", "sprite", "sound"
	ID     string
}

func (e *MissingDefinitionError) Error() string {
	return fmt.Sprintf("unable to create area %s: no %s '%s' found", e.AreaID, e.Kind, e.ID)
}

func (e *MissingDefinitionError) Is(target error) bool { return target == ErrMissingDefinition }

func missing(areaID, kind, id string) error {
	return &MissingDefinitionError{AreaID: areaID, Kind: kind, ID: id}
}
