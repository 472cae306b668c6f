package domain

// KeyPrefix namespaces every key popchoice reads from or writes to a key-value store.
const KeyPrefix = "popchoice:"

// PipelineConfig holds the retrieval and generation knobs of one recommendation run.
type PipelineConfig struct {
	Threshold            float64
	TopK                 int
	Dimensions           int
	SummaryTemperature   float32
	SynthesisTemperature float32
	SynthesisMaxTokens   int
	FrequencyPenalty     float32
}

// DefaultPipelineConfig returns the defaults for text-embedding-ada-002 and gpt-4o-mini.
func DefaultPipelineConfig() PipelineConfig {
	return PipelineConfig{
		Threshold:            0.50,
		TopK:                 4,
		Dimensions:           1536,
		SummaryTemperature:   0.3,
		SynthesisTemperature: 0.65,
		SynthesisMaxTokens:   300,
		FrequencyPenalty:     0.5,
	}
}

// VectorConfig describes the embedding space shared by the seeding job and the store.
type VectorConfig struct {
	Model          string
	Dimensions     int
	DistanceMetric string
}

// DefaultVectorConfig returns the OpenAI ada-002 embedding space.
func DefaultVectorConfig() VectorConfig {
	return VectorConfig{
		Model:          "text-embedding-ada-002",
		Dimensions:     1536,
		DistanceMetric: "cosine",
	}
}
