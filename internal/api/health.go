package api

import "net/http"

// Application identity reported by /health.
const (
	AppName    = "sentinel-vosk-server"
	AppVersion = "1.0.0"
)

type healthApp struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type healthEngine struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

type healthModel struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type healthDefaults struct {
	SampleRate int `json:"sample_rate"`
}

type healthSessions struct {
	Active int `json:"active"`
}

type healthResponse struct {
	Status   string         `json:"status"`
	App      healthApp      `json:"app"`
	Engine   healthEngine   `json:"engine"`
	Model    healthModel    `json:"model"`
	Defaults healthDefaults `json:"defaults"`
	Sessions healthSessions `json:"sessions"`
}

// handleHealth reports process status and loaded-model identification.
// No side effects.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	info := s.engine.Info()
	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		App:      healthApp{Name: AppName, Version: AppVersion},
		Engine:   healthEngine{Name: info.Name, Version: info.Version},
		Model:    healthModel{Name: info.ModelName, Path: info.ModelPath},
		Defaults: healthDefaults{SampleRate: s.cfg.STT.DefaultSampleRate},
		Sessions: healthSessions{Active: s.sessions.ActiveSessions()},
	})
}
