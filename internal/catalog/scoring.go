package catalog

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	// Scoring weights
	ScoreExactMatch     = 100.0
	ScorePrefixMatch    = 75.0
	ScoreSubstringMatch = 50.0
	ScoreFuzzyMatch     = 25.0

	// Position bonus (earlier words are better)
	ScorePositionBonus = 10.0

	// Short names get a small boost
	ScoreLengthBonus = 5.0

	// Whole-name match bonus (huge boost)
	ScoreExactNameBonus = 200.0

	// Usage weight (click counter contributes to final score)
	ScoreUsageWeight = 0.1

	// Server relevance weight (link score is usually within [0,1])
	ScoreServerWeight = 20.0
)

// Candidate represents a catalog link with its match score
type Candidate struct {
	Record       *Record
	LexicalScore float64 // Score from fuzzy matching
	UsageScore   float64 // Score from click learning
	ServerScore  float64 // Score assigned by the search service
	TotalScore   float64 // Combined score
}

// Score calculates the match score for a catalog link against a query.
// Without a dot the query is matched against the link name. With a dot the
// part before it must match the app (name or package) and the rest, if any,
// must match the link name.
func Score(query *Query, r *Record) float64 {
	if query == nil || r == nil || r.Link == nil || len(query.Fragments) == 0 {
		return 0.0
	}

	name := r.Link.Name()
	if !query.HasDot {
		return scoreName(query.LinkFragments, name)
	}

	appWords := append(Words(r.Link.AppName()), strings.Split(strings.ToLower(r.Link.DestinationPackage()), ".")...)
	appScore := 0.0
	for _, qFrag := range query.AppFragments {
		best := bestFragmentScore(qFrag, appWords)
		if best == 0.0 {
			return 0.0
		}
		appScore += best
	}

	// "yelp." lists every link of the app
	if len(query.LinkFragments) == 0 {
		return appScore
	}

	linkScore := scoreName(query.LinkFragments, name)
	if linkScore == 0.0 {
		return 0.0
	}
	return appScore + linkScore
}

// scoreName requires every fragment to match one word of name.
func scoreName(fragments []string, name string) float64 {
	words := Words(name)
	if len(fragments) == 0 || len(words) == 0 {
		return 0.0
	}

	if normalizeFragment(strings.Join(fragments, "")) == normalizeFragment(name) {
		return ScoreExactMatch + ScoreExactNameBonus
	}

	var totalScore float64
	for _, qFrag := range fragments {
		best := bestFragmentScore(qFrag, words)
		if best == 0.0 {
			return 0.0
		}
		totalScore += best
	}

	if len(words) <= 3 {
		totalScore += ScoreLengthBonus
	}

	return totalScore
}

func bestFragmentScore(qFrag string, words []string) float64 {
	best := 0.0
	for i, w := range words {
		if s := scoreFragment(qFrag, w, i); s > best {
			best = s
		}
	}
	return best
}

// scoreFragment scores a single query fragment against a name word
func scoreFragment(queryFrag, word string, position int) float64 {
	queryFrag = normalizeFragment(queryFrag)
	word = normalizeFragment(word)

	if queryFrag == "" || word == "" {
		return 0.0
	}

	// Exact match
	if queryFrag == word {
		return ScoreExactMatch + calculatePositionBonus(position)
	}

	// Prefix match
	if strings.HasPrefix(word, queryFrag) {
		return ScorePrefixMatch + calculatePositionBonus(position)
	}

	// Substring match
	if index := strings.Index(word, queryFrag); index >= 0 {
		// Earlier substring matches get higher score
		substringBonus := ScorePositionBonus * (1.0 - float64(index)/float64(len(word)))
		return ScoreSubstringMatch + substringBonus
	}

	// Fuzzy match
	similarity := calculateSimilarity(queryFrag, word)
	if similarity > 0.5 {
		return ScoreFuzzyMatch * similarity
	}

	return 0.0
}

// calculatePositionBonus gives bonus for earlier positions
func calculatePositionBonus(position int) float64 {
	return ScorePositionBonus * math.Exp(-float64(position)*0.3)
}

// calculateSimilarity is the share of s1's runes that also appear in s2.
func calculateSimilarity(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0.0
	}

	matches := 0
	for _, c := range s1 {
		if strings.ContainsRune(s2, c) {
			matches++
		}
	}

	return float64(matches) / float64(utf8.RuneCountInString(s1))
}

// Rank ranks catalog links by combining lexical, usage and server scores.
// Disabled links and links that do not match are left out. Ties keep the
// lower id first so the order is stable across reloads.
func Rank(query *Query, records []*Record) []*Candidate {
	candidates := make([]*Candidate, 0, len(records))

	for _, r := range records {
		if r == nil || r.Disabled {
			continue
		}

		lexicalScore := Score(query, r)
		if lexicalScore == 0.0 {
			continue
		}

		// Logarithmic to prevent dominance
		usageScore := 0.0
		if r.Clicks > 0 {
			usageScore = math.Log10(float64(r.Clicks)+1) * ScoreUsageWeight * 100
		}

		serverScore := r.Link.Score() * ScoreServerWeight

		candidates = append(candidates, &Candidate{
			Record:       r,
			LexicalScore: lexicalScore,
			UsageScore:   usageScore,
			ServerScore:  serverScore,
			TotalScore:   lexicalScore + usageScore + serverScore,
		})
	}

	slices.SortStableFunc(candidates, func(a, b *Candidate) int {
		if c := cmp.Compare(b.TotalScore, a.TotalScore); c != 0 {
			return c
		}
		return cmp.Compare(a.Record.ID, b.Record.ID)
	})

	return candidates
}

// Best returns the best matching record, or nil.
func Best(query *Query, records []*Record) *Record {
	candidates := Rank(query, records)
	if len(candidates) == 0 {
		return nil
	}
	return candidates[0].Record
}
