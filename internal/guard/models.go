package guard

// WriteRequest is one write attempt. PrevValue is accepted for wire
// compatibility; validators always see the proxy's current value.
type WriteRequest struct {
	PointLabel string   `json:"point_label" validate:"required"`
	Value      float64  `json:"value"`
	PrevValue  *float64 `json:"prev_value,omitempty"`
}

// WriteResult is returned for an accepted write.
type WriteResult struct {
	OK    bool    `json:"ok"`
	Point string  `json:"point"`
	Value float64 `json:"value"`
}

// ReadResult carries the current value of a point; Value is nil when the
// proxy holds no value for it.
type ReadResult struct {
	PointLabel string   `json:"point_label"`
	Value      *float64 `json:"value"`
}

// PointRef pairs an identifier with its label.
type PointRef struct {
	ID    string `json:"iri"`
	Label string `json:"label"`
}

// CapabilitiesResult lists everything an instance may touch.
type CapabilitiesResult struct {
	Instance string     `json:"app_instance"`
	Points   []PointRef `json:"points"`
}

// Reasons recorded by the pipeline itself.
const (
	ReasonOK           = "ok"
	ReasonNoCapWrite   = "no-cap-write"
	ReasonNoCapRead    = "no-cap-read"
	ReasonNoValidators = "no-validators"
)
