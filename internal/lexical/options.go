package lexical

import "github.com/kailas-cloud/lexdex/internal/domain"

// Options are the index hyperparameters.
type Options struct {
	NGramMin     int      `yaml:"ngram_min" cbor:"ngram_min"`
	NGramMax     int      `yaml:"ngram_max" cbor:"ngram_max"`
	MaxDF        float64  `yaml:"max_df" cbor:"max_df"`             // (0,1], fraction of documents
	MinDF        int      `yaml:"min_df" cbor:"min_df"`             // absolute document count
	MaxFeatures  int      `yaml:"max_features" cbor:"max_features"` // 0 = unlimited
	StopWords    string   `yaml:"stop_words" cbor:"stop_words"`     // english | none
	StopWordList []string `yaml:"stop_word_list" cbor:"stop_word_list"`
	TitleWeight  int      `yaml:"title_weight" cbor:"title_weight"`
}

// Default hyperparameter values.
const (
	DefaultNGramMin    = 1
	DefaultNGramMax    = 2
	DefaultMaxDF       = 0.95
	DefaultMinDF       = 1
	DefaultTitleWeight = 3
)

// DefaultOptions returns the default hyperparameters.
func DefaultOptions() Options {
	return Options{
		NGramMin:    DefaultNGramMin,
		NGramMax:    DefaultNGramMax,
		MaxDF:       DefaultMaxDF,
		MinDF:       DefaultMinDF,
		StopWords:   StopWordsEnglish,
		TitleWeight: DefaultTitleWeight,
	}
}

// Validate checks hyperparameter ranges.
func (o Options) Validate() error {
	if o.NGramMin < 1 || o.NGramMax < o.NGramMin {
		return domain.Configurationf("ngram range (%d,%d) is invalid", o.NGramMin, o.NGramMax)
	}
	if o.MaxDF <= 0 || o.MaxDF > 1 {
		return domain.Configurationf("max_df must be in (0,1], got %v", o.MaxDF)
	}
	if o.MinDF < 1 {
		return domain.Configurationf("min_df must be >= 1, got %d", o.MinDF)
	}
	if o.MaxFeatures < 0 {
		return domain.Configurationf("max_features must be >= 0, got %d", o.MaxFeatures)
	}
	if o.TitleWeight < 0 {
		return domain.Configurationf("title_weight must be >= 0, got %d", o.TitleWeight)
	}
	switch o.StopWords {
	case "", StopWordsEnglish, StopWordsNone:
	default:
		return domain.Configurationf("unknown stop_words set %q", o.StopWords)
	}
	return nil
}
