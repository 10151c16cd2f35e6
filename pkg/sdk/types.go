package lexdex

// Article is one legislative article. Its position in the corpus is its doc index.
type Article struct {
	Title   string
	Content string
}

// Match is one scored article.
type Match struct {
	DocIndex   int
	Title      string
	Similarity float64
}

// Answer is the outcome of Ask.
type Answer struct {
	Text     string            // article title when released, the fallback text otherwise
	Released bool              // whether the gate let the title through
	Selected Match             // row chosen by the selection rule
	Criteria map[string]string // criterion name -> "PASS"/"FAIL"
}

// Selection names the rule that picks the top article.
type Selection string

// Selection rules.
const (
	SelectionPosition   Selection = "position"
	SelectionSimilarity Selection = "similarity"
)
