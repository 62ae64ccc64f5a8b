package domain

// Accident is a detected traffic accident record.
type Accident struct {
	ID                       int64  `json:"id"`
	VideoURL                 string `json:"videoUrl"`
	ImageURL                 string `json:"imageUrl"`
	AccidentDescription      string `json:"accidentDescription"`
	AccidentDescriptionText  string `json:"accidentDescriptionText"`
	AccidentDescriptionTime  string `json:"accidentDescriptionTime"`
	AccidentDescriptionState string `json:"accidentDescriptionState"`
	DisplayInfo              string `json:"displayInfo,omitempty"`
	CreateTime               string `json:"createTime,omitempty"`
	UpdateTime               string `json:"updateTime,omitempty"`
}

// AccidentInput is the payload for creating an accident record.
type AccidentInput struct {
	VideoURL                 string `json:"videoUrl"`
	ImageURL                 string `json:"imageUrl"`
	AccidentDescription      string `json:"accidentDescription"`
	AccidentDescriptionText  string `json:"accidentDescriptionText"`
	AccidentDescriptionTime  string `json:"accidentDescriptionTime"`
	AccidentDescriptionState string `json:"accidentDescriptionState"`
}

// AccidentStats holds aggregate accident counters.
type AccidentStats struct {
	TotalAccidents    int     `json:"totalAccidents"`
	ResolvedAccidents int     `json:"resolvedAccidents"`
	PendingAccidents  int     `json:"pendingAccidents"`
	AccidentRate      float64 `json:"accidentRate"`
}
