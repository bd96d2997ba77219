package search

import (
	"context"
	"sort"
	"strings"

	pcxerrors "pcx/internal/errors"
	"pcx/internal/index"
)

// Field weights for concept ranking. The declaration name dominates, the
// signature and doc text refine, the file description is a weak tiebreaker.
const (
	weightName        = 3.0
	weightSignature   = 1.5
	weightDoc         = 1.0
	weightDescription = 0.5

	// exactNameBonus rewards a query token equal to the whole identifier
	exactNameBonus = 2.0
)

// ConceptHit is one ranked declaration
type ConceptHit struct {
	Declaration index.Declaration `json:"declaration"`
	Score       float64           `json:"score"`
}

// ConceptResult is the outcome of one concept search
type ConceptResult struct {
	Hits      []ConceptHit
	Truncated bool // deadline ended scoring early
	Scored    int  // declarations considered
}

// Concept ranks the indexed declarations against a free-text query. Scoring
// is purely lexical and deterministic: the same index and query always
// produce the same ordering. Ties break by path, then start line.
func Concept(ctx context.Context, query string, decls []index.Declaration, descriptions map[string]string, topN int) (*ConceptResult, error) {
	if err := ValidateQuery(query); err != nil {
		return nil, err
	}
	if topN <= 0 {
		return nil, pcxerrors.New(pcxerrors.InvalidRequest, "top_n must be > 0")
	}

	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 {
		return nil, pcxerrors.New(pcxerrors.InvalidRequest, "search query has no usable tokens")
	}

	res := &ConceptResult{}
	var hits []ConceptHit
	for i, d := range decls {
		if i%deadlineBatch == 0 && ctx.Err() != nil {
			res.Truncated = true
			break
		}
		res.Scored++
		score := scoreDecl(queryTokens, d, descriptions[d.FilePath])
		if score > 0 {
			hits = append(hits, ConceptHit{Declaration: d, Score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Declaration.FilePath != b.Declaration.FilePath {
			return a.Declaration.FilePath < b.Declaration.FilePath
		}
		return a.Declaration.StartLine < b.Declaration.StartLine
	})
	if len(hits) > topN {
		hits = hits[:topN]
	}
	res.Hits = hits
	return res, nil
}

// scoreDecl sums term-frequency weighted field matches for one declaration
func scoreDecl(queryTokens []string, d index.Declaration, description string) float64 {
	nameTokens := tokenFreq(Tokenize(d.Name))
	sigTokens := tokenFreq(Tokenize(d.Signature))
	docTokens := tokenFreq(Tokenize(d.Doc))
	descTokens := tokenFreq(Tokenize(description))
	lowerName := strings.ToLower(d.Name)

	score := 0.0
	for _, q := range queryTokens {
		score += weightName * float64(nameTokens[q])
		score += weightSignature * float64(sigTokens[q])
		score += weightDoc * float64(docTokens[q])
		score += weightDescription * float64(descTokens[q])
		if q == lowerName {
			score += exactNameBonus
		}
	}
	return score
}

func tokenFreq(tokens []string) map[string]int {
	if len(tokens) == 0 {
		return nil
	}
	freq := make(map[string]int, len(tokens))
	for _, t := range tokens {
		freq[t]++
	}
	return freq
}
