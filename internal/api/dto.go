package api

// GenerateRequest is the body of POST /v1/generate.
type GenerateRequest struct {
	// Model selects the loaded model variant ("rnn", "gru", "lstm").
	// Empty means the server default.
	Model string `json:"model,omitempty"`
	// Seed is the seed text; empty means the server-side default seed.
	Seed string `json:"seed,omitempty"`
	// Length is the number of characters to generate beyond the seed.
	Length int `json:"length"`
	// Temperature must be positive when set; omitted means the default.
	Temperature *float64 `json:"temperature,omitempty"`
	// RNGSeed fixes the sampling RNG for reproducible output.
	RNGSeed *int64 `json:"rng_seed,omitempty"`
	// Strict rejects seed text containing out-of-vocabulary characters.
	Strict bool `json:"strict,omitempty"`
}

type GenerateResponse struct {
	ID        string        `json:"id"`
	Object    string        `json:"object"`
	CreatedAt int64         `json:"created_at"`
	Model     string        `json:"model"`
	Text      string        `json:"text"`
	Stats     GenerateStats `json:"stats"`
}

type GenerateStats struct {
	CharsGenerated int     `json:"chars_generated"`
	DurationMS     int64   `json:"duration_ms"`
	CPS            float64 `json:"cps"`
}

type ModelInfo struct {
	ID         string `json:"id"`
	Object     string `json:"object"`
	VocabSize  int    `json:"vocab_size"`
	HiddenSize int    `json:"hidden_size"`
	Layers     int    `json:"layers"`
	Topology   string `json:"topology"`
}

type ModelList struct {
	Object string      `json:"object"`
	Data   []ModelInfo `json:"data"`
}

type ErrorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}
