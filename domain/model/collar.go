package model

import "fmt"

// Collar is the surface location and total depth of a single drillhole.
type Collar struct {
	HoleID     string
	X          float64
	Y          float64
	Z          float64
	TotalDepth float64
}

// Validate checks the collar record.
func (c Collar) Validate() error {
	if c.HoleID == "" {
		return fmt.Errorf("collar has empty hole id")
	}
	if c.TotalDepth < 0 {
		return fmt.Errorf("collar %q has negative total depth %g", c.HoleID, c.TotalDepth)
	}
	return nil
}
