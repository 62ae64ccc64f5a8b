package domain

import "time"

// DetectionType classifies a road-surface detection.
type DetectionType string

// Detection types.
const (
	DetectionStone DetectionType = "stone"
	DetectionTrash DetectionType = "trash"
)

// Coordinates is a WGS84 position.
type Coordinates struct {
	Longitude float64 `json:"longitude"`
	Latitude  float64 `json:"latitude"`
}

// Detection is a single realtime detection reported by the camera pipeline.
type Detection struct {
	ID          int64         `json:"id"`
	Timestamp   time.Time     `json:"timestamp"`
	Coordinates Coordinates   `json:"coordinates"`
	Type        DetectionType `json:"type"`
	Size        float64       `json:"size"`       // centimeters
	Confidence  float64       `json:"confidence"` // 0..1
	ImageURL    string        `json:"image_url"`
}

// ManualDetection is an operator-submitted annotation.
type ManualDetection struct {
	Coordinates Coordinates   `json:"coordinates"`
	Type        DetectionType `json:"type"`
	Size        float64       `json:"size"`
	Notes       string        `json:"notes,omitempty"`
}
