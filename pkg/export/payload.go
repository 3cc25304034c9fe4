// Package export formats a point-to-CT session as the plane extraction request
// understood by the backend.
package export

import (
	"encoding/json"

	"github.com/pkg/errors"

	"point2ct/pkg/geometry"
	"point2ct/pkg/plane"
	"point2ct/pkg/session"
)

// Payload is the plane extraction request body. Field names and the array
// encoding of point and normal are fixed by the backend.
type Payload struct {
	BatchID           string     `json:"batchId"`
	Point             [3]float64 `json:"point"`
	Normal            [3]float64 `json:"normal"`
	AxisChar          string     `json:"axisChar"`
	ExpandAlongNormal bool       `json:"expandAlongNormal"`
	Angle1            float64    `json:"angle1"`
	Angle2            float64    `json:"angle2"`
	Angle3            float64    `json:"angle3"`
	SideLength        float64    `json:"sideLength"`
}

// ToPayload builds the request for st. It returns false while the point,
// normal or batch id is still missing.
func ToPayload(st session.State) (*Payload, bool) {
	if st.Point == nil || st.Normal == nil || st.BatchID == "" {
		return nil, false
	}

	side := st.SideLength
	if !(side > 0) {
		side = plane.DefaultSideLength
	}

	return &Payload{
		BatchID:           st.BatchID,
		Point:             geometry.ToArray(*st.Point),
		Normal:            geometry.ToArray(*st.Normal),
		AxisChar:          st.Axis.Char(),
		ExpandAlongNormal: true,
		Angle1:            plane.ClampAngle(st.Angles[0]),
		Angle2:            plane.ClampAngle(st.Angles[1]),
		Angle3:            plane.ClampAngle(st.Angles[2]),
		SideLength:        side,
	}, true
}

// Marshal encodes p as indented JSON.
func Marshal(p *Payload) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "error marshaling payload")
	}
	return data, nil
}
