package dto

type SiteResponse struct {
	DefaultLanguage string   `json:"defaultLanguage"`
	Languages       []string `json:"languages"`
	DefaultTheme    string   `json:"defaultTheme"`
	Themes          []string `json:"themes"`
	ProjectTypes    []string `json:"projectTypes"`
}

type BotOption struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

type BotMenuResponse struct {
	Language string      `json:"language"`
	Welcome  string      `json:"welcome"`
	Options  []BotOption `json:"options"`
}

type BotReplyRequest struct {
	Option   string `json:"option"`
	Language string `json:"language"`
}

type BotReplyResponse struct {
	Language      string                  `json:"language"`
	Option        string                  `json:"option"`
	Text          string                  `json:"text"`
	RequiresLogin bool                    `json:"requiresLogin"`
	Session       *SupportSessionResponse `json:"session,omitempty"`
}
