package mockapi

import (
	"fmt"
	"time"

	"github.com/intellidetect/dashboard/pkg/domain"
)

// Demo account created by Seed.
const (
	DemoUsername = "demo"
	DemoPassword = "demo123"
)

// Seed fills the server with a demo account and a handful of records so the
// dashboard has something to show.
func (s *Server) Seed() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.addUserLocked(domain.Registration{
		Username:    DemoUsername,
		Password:    DemoPassword,
		PhoneNumber: "13800000000",
		Email:       "demo@intellidetect.local",
	}); err != nil {
		return fmt.Errorf("seed user: %w", err)
	}

	states := []string{"pending", resolvedState, "pending", resolvedState, "pending"}
	for i := range 23 {
		s.addAccidentLocked(domain.AccidentInput{
			VideoURL:                 fmt.Sprintf("https://media.intellidetect.local/accidents/%d.mp4", i+1),
			ImageURL:                 fmt.Sprintf("https://media.intellidetect.local/accidents/%d.jpg", i+1),
			AccidentDescription:      fmt.Sprintf("Collision at checkpoint %d", i+1),
			AccidentDescriptionText:  "Two vehicles stopped in lane after contact.",
			AccidentDescriptionTime:  s.now().Add(-time.Duration(i) * time.Hour).UTC().Format(time.RFC3339),
			AccidentDescriptionState: states[i%len(states)],
		})
	}

	risks := []domain.RiskLevel{domain.RiskLow, domain.RiskMedium, domain.RiskHigh}
	for i := range 14 {
		s.addObstacleLocked(domain.ObstacleInput{
			Type:        domain.ObstacleTypes[i%len(domain.ObstacleTypes)],
			Latitude:    31.2304 + float64(i)*0.001,
			Longitude:   121.4737 + float64(i)*0.001,
			Height:      float64(5 + i*3),
			RiskLevel:   risks[i%len(risks)],
			Description: fmt.Sprintf("Obstacle near flight corridor segment %d", i+1),
			ImageURL:    fmt.Sprintf("https://media.intellidetect.local/obstacles/%d.jpg", i+1),
		})
	}

	types := []domain.DetectionType{domain.DetectionStone, domain.DetectionTrash}
	base := s.now().UTC().Add(-30 * time.Minute)
	for i := range 15 {
		s.addDetectionLocked(domain.Detection{
			Timestamp:   base.Add(time.Duration(i) * 2 * time.Minute),
			Coordinates: domain.Coordinates{Longitude: 121.47 + float64(i)*0.0005, Latitude: 31.23},
			Type:        types[i%len(types)],
			Size:        float64(8 + i),
			Confidence:  0.7 + float64(i%3)*0.1,
			ImageURL:    fmt.Sprintf("https://media.intellidetect.local/detections/%d.jpg", i+1),
		})
	}
	return nil
}
