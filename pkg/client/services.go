package client

import "github.com/intellidetect/dashboard/pkg/session"

// Services bundles one client per backend service. Both share the session store
// and navigator, so a 401 from either one logs the user out everywhere.
type Services struct {
	// Accidents talks to the accident service, which also owns user accounts.
	Accidents *Client
	// Obstacles talks to the obstacle and detection service.
	Obstacles *Client
}

// NewServices creates clients for the accident and obstacle services.
func NewServices(accidentURL, obstacleURL string, store session.Store, opts ...Option) *Services {
	return &Services{
		Accidents: New(accidentURL, store, opts...),
		Obstacles: New(obstacleURL, store, opts...),
	}
}

// Users returns the client that owns user accounts.
func (s *Services) Users() *Client {
	return s.Accidents
}
