package predictor

// basePredictor provides common bookkeeping for predictors
type basePredictor struct {
	name  string
	calls int
}

func newBasePredictor(name string) basePredictor {
	return basePredictor{name: name}
}

// Name returns the name of the predictor
func (b *basePredictor) Name() string {
	return b.name
}

// Calls returns how many lookups were made
func (b *basePredictor) Calls() int {
	return b.calls
}

func (b *basePredictor) countCall() {
	b.calls++
}
