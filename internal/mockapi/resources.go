package mockapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/intellidetect/dashboard/pkg/domain"
)

// paginate slices items into the requested page.
func paginate[T any](items []T, r *http.Request) domain.Page[T] {
	page, _ := strconv.Atoi(r.URL.Query().Get("page")) //nolint:errcheck // zero falls back to the default
	size, _ := strconv.Atoi(r.URL.Query().Get("size")) //nolint:errcheck // zero falls back to the default
	page, size = domain.NormalizePaging(page, size)

	total := len(items)
	pages := (total + size - 1) / size
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := min(start+size, total)

	records := make([]T, end-start)
	copy(records, items[start:end])
	return domain.Page[T]{
		Records: records,
		Total:   total,
		Size:    size,
		Current: page,
		Pages:   pages,
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeFail(w, http.StatusBadRequest, codeBadRequest, "invalid id")
		return 0, false
	}
	return id, true
}

type displayBody struct {
	DisplayInfo string `json:"displayInfo"`
}

// Accidents

func (s *Server) handleListAccidents(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	p := paginate(s.accidents, r)
	s.mu.Unlock()
	writeOK(w, p)
}

func (s *Server) handleCreateAccident(w http.ResponseWriter, r *http.Request) {
	var in domain.AccidentInput
	if err := decodeBody(r, &in); err != nil {
		writeFail(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}
	s.mu.Lock()
	a := s.addAccidentLocked(in)
	s.mu.Unlock()
	writeOK(w, a)
}

func (s *Server) addAccidentLocked(in domain.AccidentInput) domain.Accident {
	now := s.timestamp()
	a := domain.Accident{
		ID:                       s.allocID(),
		VideoURL:                 in.VideoURL,
		ImageURL:                 in.ImageURL,
		AccidentDescription:      in.AccidentDescription,
		AccidentDescriptionText:  in.AccidentDescriptionText,
		AccidentDescriptionTime:  in.AccidentDescriptionTime,
		AccidentDescriptionState: in.AccidentDescriptionState,
		CreateTime:               now,
		UpdateTime:               now,
	}
	s.accidents = append(s.accidents, a)
	return a
}

func (s *Server) handleGetAccident(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.accidents {
		if a.ID == id {
			writeOK(w, a)
			return
		}
	}
	writeFail(w, http.StatusNotFound, codeNotFound, "accident not found")
}

func (s *Server) handleAccidentDisplay(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var body displayBody
	if err := decodeBody(r, &body); err != nil {
		writeFail(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.accidents {
		if s.accidents[i].ID == id {
			s.accidents[i].DisplayInfo = body.DisplayInfo
			s.accidents[i].UpdateTime = s.timestamp()
			writeOK(w, s.accidents[i])
			return
		}
	}
	writeFail(w, http.StatusNotFound, codeNotFound, "accident not found")
}

// resolvedState is the description state of a handled accident.
const resolvedState = "resolved"

func (s *Server) handleAccidentStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st domain.AccidentStats
	st.TotalAccidents = len(s.accidents)
	for _, a := range s.accidents {
		if a.AccidentDescriptionState == resolvedState {
			st.ResolvedAccidents++
		}
	}
	st.PendingAccidents = st.TotalAccidents - st.ResolvedAccidents
	if st.TotalAccidents > 0 {
		st.AccidentRate = float64(st.PendingAccidents) / float64(st.TotalAccidents)
	}
	writeOK(w, st)
}

// Obstacles

func (s *Server) handleListObstacles(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	p := paginate(s.obstacles, r)
	s.mu.Unlock()
	writeOK(w, p)
}

func (s *Server) handleCreateObstacle(w http.ResponseWriter, r *http.Request) {
	var in domain.ObstacleInput
	if err := decodeBody(r, &in); err != nil {
		writeFail(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}
	if !in.Type.Valid() {
		writeFail(w, http.StatusBadRequest, codeBadRequest, "unknown obstacle type")
		return
	}
	s.mu.Lock()
	o := s.addObstacleLocked(in)
	s.mu.Unlock()
	writeOK(w, o)
}

func (s *Server) addObstacleLocked(in domain.ObstacleInput) domain.Obstacle {
	now := s.timestamp()
	risk := in.RiskLevel
	if risk == "" {
		risk = domain.RiskLow
	}
	o := domain.Obstacle{
		ID:          s.allocID(),
		Type:        in.Type,
		Latitude:    in.Latitude,
		Longitude:   in.Longitude,
		Height:      in.Height,
		RiskLevel:   risk,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		CreateTime:  now,
		UpdateTime:  now,
	}
	s.obstacles = append(s.obstacles, o)
	return o
}

func (s *Server) handleGetObstacle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.obstacles {
		if o.ID == id {
			writeOK(w, o)
			return
		}
	}
	writeFail(w, http.StatusNotFound, codeNotFound, "obstacle not found")
}

func (s *Server) handleObstacleDisplay(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	var body displayBody
	if err := decodeBody(r, &body); err != nil {
		writeFail(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.obstacles {
		if s.obstacles[i].ID == id {
			s.obstacles[i].DisplayInfo = body.DisplayInfo
			s.obstacles[i].UpdateTime = s.timestamp()
			writeOK(w, s.obstacles[i])
			return
		}
	}
	writeFail(w, http.StatusNotFound, codeNotFound, "obstacle not found")
}

func (s *Server) handleObstacleStats(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := domain.ObstacleStats{
		TotalObstacles: len(s.obstacles),
		ByType:         make(map[domain.ObstacleType]int),
	}
	for _, o := range s.obstacles {
		if o.RiskLevel == domain.RiskHigh {
			st.HighRiskObstacles++
		}
		st.ByType[o.Type]++
	}
	writeOK(w, st)
}

func (s *Server) handleHighRisk(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Obstacle{}
	for _, o := range s.obstacles {
		if o.RiskLevel == domain.RiskHigh {
			out = append(out, o)
		}
	}
	writeOK(w, out)
}

// Detections

// realtimeWindow bounds how far back the realtime feed reaches.
const realtimeWindow = 10

func (s *Server) handleRealtime(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	start := max(len(s.detections)-realtimeWindow, 0)
	out := make([]domain.Detection, len(s.detections)-start)
	copy(out, s.detections[start:])
	writeOK(w, out)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	var start, end time.Time
	for key, dst := range map[string]*time.Time{"startTime": &start, "endTime": &end} {
		raw := r.URL.Query().Get(key)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeFail(w, http.StatusBadRequest, codeBadRequest, "invalid "+key)
			return
		}
		*dst = t
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Detection{}
	for _, d := range s.detections {
		if !start.IsZero() && d.Timestamp.Before(start) {
			continue
		}
		if !end.IsZero() && d.Timestamp.After(end) {
			continue
		}
		out = append(out, d)
	}
	writeOK(w, out)
}

func (s *Server) handleManual(w http.ResponseWriter, r *http.Request) {
	var in domain.ManualDetection
	if err := decodeBody(r, &in); err != nil {
		writeFail(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}
	if in.Type != domain.DetectionStone && in.Type != domain.DetectionTrash {
		writeFail(w, http.StatusBadRequest, codeBadRequest, "unknown detection type")
		return
	}
	s.mu.Lock()
	s.addDetectionLocked(domain.Detection{
		Timestamp:   s.now().UTC(),
		Coordinates: in.Coordinates,
		Type:        in.Type,
		Size:        in.Size,
		Confidence:  1,
	})
	s.mu.Unlock()
	writeOK(w, nil)
}

func (s *Server) addDetectionLocked(d domain.Detection) domain.Detection {
	d.ID = s.allocID()
	s.detections = append(s.detections, d)
	return d
}
