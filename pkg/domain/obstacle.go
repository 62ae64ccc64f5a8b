package domain

// ObstacleType classifies a detected obstacle.
type ObstacleType string

// Obstacle types.
const (
	ObstacleBuilding  ObstacleType = "building"
	ObstacleCrane     ObstacleType = "crane"
	ObstacleTree      ObstacleType = "tree"
	ObstacleEquipment ObstacleType = "equipment"
	ObstacleOther     ObstacleType = "other"
)

// ObstacleTypes lists every known obstacle type in display order.
var ObstacleTypes = []ObstacleType{
	ObstacleBuilding,
	ObstacleCrane,
	ObstacleTree,
	ObstacleEquipment,
	ObstacleOther,
}

// Valid reports whether t is a known obstacle type.
func (t ObstacleType) Valid() bool {
	for _, known := range ObstacleTypes {
		if t == known {
			return true
		}
	}
	return false
}

// RiskLevel grades how dangerous an obstacle is.
type RiskLevel string

// Risk levels.
const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Obstacle is a detected obstacle record.
type Obstacle struct {
	ID          int64        `json:"id"`
	Type        ObstacleType `json:"type"`
	Latitude    float64      `json:"latitude"`
	Longitude   float64      `json:"longitude"`
	Height      float64      `json:"height,omitempty"` // meters
	RiskLevel   RiskLevel    `json:"riskLevel"`
	Description string       `json:"description"`
	ImageURL    string       `json:"imageUrl"`
	DisplayInfo string       `json:"displayInfo,omitempty"`
	CreateTime  string       `json:"createTime,omitempty"`
	UpdateTime  string       `json:"updateTime,omitempty"`
}

// ObstacleInput is the payload for creating an obstacle record.
type ObstacleInput struct {
	Type        ObstacleType `json:"type"`
	Latitude    float64      `json:"latitude"`
	Longitude   float64      `json:"longitude"`
	Height      float64      `json:"height,omitempty"`
	RiskLevel   RiskLevel    `json:"riskLevel"`
	Description string       `json:"description"`
	ImageURL    string       `json:"imageUrl"`
}

// ObstacleStats holds aggregate obstacle counters.
type ObstacleStats struct {
	TotalObstacles    int                  `json:"totalObstacles"`
	HighRiskObstacles int                  `json:"highRiskObstacles"`
	ByType            map[ObstacleType]int `json:"byType,omitempty"`
}
