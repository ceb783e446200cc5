package generate

// Config holds generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64

	// Questions is the number of questions requested per exam.
	Questions int
}

// DefaultConfig returns the generation defaults. Curricula are large
// documents; exams are small.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   8192,
		Temperature: 0.4,
		Questions:   5,
	}
}
