package drill

// Pair is one positional comparison between an expected and a typed word.
type Pair struct {
	Expected  string
	Submitted string
	Correct   bool
}

// MatchResult holds the scored pairs of a submission. Trailing words without
// a counterpart on the other side are not scored. Unmatched keeps the expected
// words left over after a short submission for display only.
type MatchResult struct {
	Pairs        []Pair
	Unmatched    []string
	ExpectedLen  int
	SubmittedLen int
}

// Score compares submitted against expected word by word.
func Score(expected, submitted []string) MatchResult {
	n := min(len(expected), len(submitted))
	pairs := make([]Pair, n)
	for i := 0; i < n; i++ {
		pairs[i] = Pair{
			Expected:  expected[i],
			Submitted: submitted[i],
			Correct:   expected[i] == submitted[i],
		}
	}
	var unmatched []string
	if len(expected) > n {
		unmatched = append(unmatched, expected[n:]...)
	}
	return MatchResult{
		Pairs:        pairs,
		Unmatched:    unmatched,
		ExpectedLen:  len(expected),
		SubmittedLen: len(submitted),
	}
}

// IsPerfect reports whether every pair matched and nothing was left over.
func (r MatchResult) IsPerfect() bool {
	if r.ExpectedLen != r.SubmittedLen {
		return false
	}
	for _, p := range r.Pairs {
		if !p.Correct {
			return false
		}
	}
	return true
}

// Missed returns the expected words of mismatched pairs, in order.
func (r MatchResult) Missed() []string {
	var missed []string
	for _, p := range r.Pairs {
		if !p.Correct {
			missed = append(missed, p.Expected)
		}
	}
	return missed
}

// Counts tallies correct and incorrect pairs and their expected characters.
func (r MatchResult) Counts() (correctWords, incorrectWords, correctChars, incorrectChars int) {
	for _, p := range r.Pairs {
		if p.Correct {
			correctWords++
			correctChars += len(p.Expected)
			continue
		}
		incorrectWords++
		incorrectChars += len(p.Expected)
	}
	return correctWords, incorrectWords, correctChars, incorrectChars
}
