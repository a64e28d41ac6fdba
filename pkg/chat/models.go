package chat

// Model is a static catalog entry describing a selectable backend model.
// The catalog only validates and labels a session's model field; it is
// immutable at runtime.
type Model struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Provider    string `json:"provider"`
	Description string `json:"description"`
}

// DefaultModel is the model used for new sessions when none is selected.
const DefaultModel = "google/gemini-2.0-flash-001"

// DefaultModels is the built-in model catalog.
var DefaultModels = []Model{
	{
		ID:          "google/gemini-2.0-flash-001",
		Name:        "Gemini 2.0 Flash",
		Provider:    "Google",
		Description: "Optimized for fast, efficient responses. Great for most common tasks.",
	},
	{
		ID:          "anthropic/claude-3.7-sonnet:beta",
		Name:        "Claude 3.7 Sonnet",
		Provider:    "Anthropic",
		Description: "Advanced model optimized for thoughtful, nuanced responses and complex reasoning.",
	},
	{
		ID:          "google/gemini-2.0-flash-thinking-exp:free",
		Name:        "Gemini 2.0 Flash Thinking",
		Provider:    "Google",
		Description: "Fast, efficient model with experimental thinking capabilities.",
	},
	{
		ID:          "google/gemma-3-27b-it:free",
		Name:        "Gemma 3 27B",
		Provider:    "Google",
		Description: "Open model based on Gemini technology with 27B parameters.",
	},
	{
		ID:          "deepseek/deepseek-r1:free",
		Name:        "DeepSeek R1",
		Provider:    "DeepSeek",
		Description: "Research model with strong reasoning and problem-solving capabilities.",
	},
}

// ValidModel reports whether id names a model in the catalog.
func ValidModel(id string) bool {
	for _, m := range DefaultModels {
		if m.ID == id {
			return true
		}
	}
	return false
}
