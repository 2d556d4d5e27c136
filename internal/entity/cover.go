package entity

// DeviceClass refines how a cover is presented.
type DeviceClass string

// Cover device classes.
const (
	DeviceClassShade DeviceClass = "shade"
	DeviceClassBlind DeviceClass = "blind"
)

// CoverFeature is a bitmask of supported cover actions.
// Values match Home Assistant's CoverEntityFeature.
type CoverFeature uint

// Cover features.
const (
	CoverOpen      CoverFeature = 1
	CoverClose     CoverFeature = 2
	CoverStop      CoverFeature = 8
	CoverOpenTilt  CoverFeature = 16
	CoverCloseTilt CoverFeature = 32
	CoverStopTilt  CoverFeature = 64
)

// Has reports whether all bits of feature are set.
func (f CoverFeature) Has(feature CoverFeature) bool {
	return f&feature == feature
}

// HasTilt reports whether any tilt action is supported.
func (f CoverFeature) HasTilt() bool {
	return f&(CoverOpenTilt|CoverCloseTilt|CoverStopTilt) != 0
}
