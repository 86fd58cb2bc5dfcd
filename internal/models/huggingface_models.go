package models

type ClassifyRequest struct {
	Text string `json:"text"`
}

// ClassifyResponse mirrors the inference endpoint payload. Scores holds one
// entry per label, as returned by a text-classification head with all scores.
type ClassifyResponse struct {
	Label  string       `json:"label"`
	Scores []LabelScore `json:"scores"`
}

type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}
