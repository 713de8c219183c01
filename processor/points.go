package processor

import (
	"encoding/json"
	"fmt"
	"io/ioutil"

	"github.com/nci/csvgrid/utils"
	geo "github.com/nci/geometry"
)

// DrillPoint is one coordinate a series is drilled at.
type DrillPoint struct {
	Lat float64
	Lon float64
}

// Header is the column title for the point's values.
func (p DrillPoint) Header() string {
	return fmt.Sprintf("value at (%v,%v)", p.Lon, p.Lat)
}

type pointCoordinates struct {
	Coordinates []float64 `json:"coordinates"`
}

// LoadDrillPoints reads a GeoJSON FeatureCollection of Point features.
// Coordinates are GeoJSON ordered: longitude first.
func LoadDrillPoints(pointsFile string) ([]DrillPoint, error) {
	raw, err := ioutil.ReadFile(pointsFile)
	if err != nil {
		return nil, &utils.ConfigError{Option: "points", Msg: pointsFile, Err: err}
	}
	return ParseDrillPoints(raw)
}

func ParseDrillPoints(raw []byte) ([]DrillPoint, error) {
	var featCol geo.FeatureCollection
	if err := json.Unmarshal(raw, &featCol); err != nil {
		return nil, &utils.ConfigError{Option: "points", Msg: "Problem unmarshalling GeoJSON object", Err: err}
	}
	if len(featCol.Features) == 0 {
		return nil, &utils.ConfigError{Option: "points", Msg: "the feature collection has no features"}
	}

	var points []DrillPoint
	for i, feat := range featCol.Features {
		switch geom := feat.Geometry.(type) {
		case *geo.Point:
			geomJSON, err := json.Marshal(geom)
			if err != nil {
				return nil, &utils.ConfigError{Option: "points", Msg: fmt.Sprintf("feature %d", i), Err: err}
			}
			var pt pointCoordinates
			if err = json.Unmarshal(geomJSON, &pt); err != nil || len(pt.Coordinates) < 2 {
				return nil, &utils.ConfigError{Option: "points", Msg: fmt.Sprintf("feature %d: invalid point coordinates", i)}
			}
			points = append(points, DrillPoint{Lon: pt.Coordinates[0], Lat: pt.Coordinates[1]})
		default:
			return nil, &utils.ConfigError{Option: "points", Msg: fmt.Sprintf("feature %d: geometry type %T is not supported, only Point", i, geom)}
		}
	}
	return points, nil
}
