package evaluation

import (
	"context"

	"github.com/kailas-cloud/lexdex/internal/usecase/admission"
)

// Evaluator runs one question through the admission pipeline.
type Evaluator interface {
	Evaluate(ctx context.Context, question string, background map[string]string) (admission.Decision, error)
}
