package games

import (
	"fmt"
	"math/rand"
	"time"
)

// AuthorQuiz asks players to guess which team member made each commit.
type AuthorQuiz struct {
	repo *Repo
	rng  *rand.Rand
}

func NewAuthorQuiz(repo *Repo) *AuthorQuiz {
	return &AuthorQuiz{repo: repo, rng: newRNG()}
}

func (g *AuthorQuiz) Name() string        { return "Author Quiz" }
func (g *AuthorQuiz) Description() string { return "Guess which team member made each commit!" }

func (g *AuthorQuiz) QuestionTimeout() time.Duration { return 15 * time.Second }
func (g *AuthorQuiz) DisplayInterval() time.Duration { return 5 * time.Second }

func (g *AuthorQuiz) GenerateQuestions() ([]Question, error) {
	commits, err := g.repo.Log(1000)
	if err != nil || len(commits) == 0 {
		return g.sampleQuestions(), nil
	}

	// Prefer the last year of history when it is deep enough.
	cutoff := time.Now().AddDate(-1, 0, 0)
	var recent []Commit
	for _, c := range commits {
		if c.Date.After(cutoff) {
			recent = append(recent, c)
		}
	}
	if len(recent) >= 10 {
		commits = recent
	}

	authors := uniqueAuthors(commits)
	if len(authors) < 2 {
		return g.sampleQuestions(), nil
	}

	picks := make([]Commit, len(commits))
	copy(picks, commits)
	g.rng.Shuffle(len(picks), func(i, j int) { picks[i], picks[j] = picks[j], picks[i] })
	if len(picks) > QuestionsPerRound {
		picks = picks[:QuestionsPerRound]
	}

	questions := make([]Question, 0, len(picks))
	for _, commit := range picks {
		decoys := sampleExcluding(g.rng, authors, commit.Author, 3)
		options := shuffled(g.rng, append([]string{commit.Author}, decoys...))

		questions = append(questions, Question{
			Prompt:     fmt.Sprintf("Who authored this commit?\n\n   %q", commit.Subject()),
			CommitInfo: fmt.Sprintf("%s (%s)", commit.ShortSHA(), commit.Date.Format("Jan 2, 2006")),
			Options:    options,
			Answer:     commit.Author,
			Type:       TypeChoice,
		})
	}
	if len(questions) == 0 {
		return g.sampleQuestions(), nil
	}
	return questions, nil
}

func (g *AuthorQuiz) EvaluateAnswers(q Question, subs map[string]Submission) map[string]Outcome {
	return evaluateChoice(q, subs)
}

func (g *AuthorQuiz) sampleQuestions() []Question {
	authors := []string{"Alice", "Bob", "Charlie", "David", "Emma"}

	questions := make([]Question, 0, QuestionsPerRound)
	for i := 0; i < QuestionsPerRound; i++ {
		correct := authors[g.rng.Intn(len(authors))]
		decoys := sampleExcluding(g.rng, authors, correct, 3)

		questions = append(questions, Question{
			Prompt:     fmt.Sprintf("Who authored this commit?\n\n   \"Sample commit message #%d\"", i+1),
			CommitInfo: fmt.Sprintf("abc123%d (Jan %d, 2025)", i, i+1),
			Options:    shuffled(g.rng, append([]string{correct}, decoys...)),
			Answer:     correct,
			Type:       TypeChoice,
		})
	}
	return questions
}

func uniqueAuthors(commits []Commit) []string {
	seen := make(map[string]bool, len(commits))
	var authors []string
	for _, c := range commits {
		if c.Author == "" || seen[c.Author] {
			continue
		}
		seen[c.Author] = true
		authors = append(authors, c.Author)
	}
	return authors
}
