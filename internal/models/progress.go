package models

// Phase identifies where a run currently is. Phases are monotone within a
// single run but callers must not assume anything beyond that.
type Phase string

const (
	PhaseStarting       Phase = "starting"
	PhaseCloudflare     Phase = "cloudflare"
	PhaseCategories     Phase = "categories"
	PhaseExtracting     Phase = "extracting"
	PhaseParsing        Phase = "parsing"
	PhaseComplete       Phase = "complete"
	PhaseError          Phase = "error"
	PhaseFallbackToMock Phase = "fallback_to_mock"
)

// Progress is pushed synchronously to the caller-supplied callback at each
// phase transition. Ephemeral; never persisted.
type Progress struct {
	Phase    Phase  `json:"phase"`
	Category string `json:"category,omitempty"`
	Found    int    `json:"found,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}
