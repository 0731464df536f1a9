package domain

// AppConfig is the read-only view of the running configuration served to
// the settings panel. It never carries credentials.
type AppConfig struct {
	Models         ModelParams     `json:"models"`
	TimeoutSeconds float64         `json:"timeout_seconds"`
	Categories     []CategoryEntry `json:"categories"`
}

// ModelParams names the models used by each pipeline stage.
type ModelParams struct {
	Classifier string `json:"classifier"`
	Primary    string `json:"primary"`
}

type CategoryEntry struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}
