package domain

import "time"

// Session is the record the generation loop saves; the field names match
// what the desktop front end writes through save_session_data.
type Session struct {
	Timestamp        time.Time `json:"timestamp"`
	TotalGenerations int       `json:"totalGenerations"`
	Loops            []Loop    `json:"loops"`
}

type Loop struct {
	Generation      int    `json:"generation"`
	Prompt          string `json:"prompt"`
	PromptID        int64  `json:"promptId,omitempty"`
	ImageFilename   string `json:"imageFilename"`
	ArtistStatement string `json:"artistStatement"`
	CriticOpinion   string `json:"criticOpinion"`
	NewPrompt       string `json:"newPrompt"`
}
