package health

// Service encapsulates health and discovery payloads.
type Service struct {
	store string
}

// NewService constructs a health service reporting the active store backend.
func NewService(store string) *Service {
	return &Service{store: store}
}

// Status returns a simple health payload.
func (s *Service) Status() map[string]any {
	return map[string]any{"ok": true, "store": s.store}
}

// Index describes the service for the root URL.
type Index struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Paths   []string `json:"paths"`
}

// Index returns the root URL payload.
func (s *Service) Index() Index {
	return Index{
		Name:    "Recommendation REST API Service",
		Version: "1.0",
		Paths: []string{
			"/recommendations",
			"/recommendations/{id}",
			"/recommendations/{id}/dislike",
			"/recommendations/reset",
		},
	}
}
