package ranking

import "github.com/kailas-cloud/lexdex/internal/lexical"

// IndexSource yields the currently published index.
type IndexSource interface {
	Current() (*lexical.Index, error)
}
