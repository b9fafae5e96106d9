package model

import (
	"fmt"
	"sort"
)

// SurveyStation is a measured orientation at a depth along a hole.
// Azimuth and Dip are stored in radians; the interpretation of Dip is
// controlled by Config.
type SurveyStation struct {
	Depth   float64
	Azimuth float64
	Dip     float64
}

// Validate checks the station record.
func (s SurveyStation) Validate() error {
	if s.Depth < 0 {
		return fmt.Errorf("survey station has negative depth %g", s.Depth)
	}
	return nil
}

// SortStations sorts stations by depth in place.
func SortStations(stations []SurveyStation) {
	sort.SliceStable(stations, func(i, j int) bool {
		return stations[i].Depth < stations[j].Depth
	})
}
