package games

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// BlameGame shows a highlighted line of source in context and asks who last
// touched it. It needs at least two distinct authors in the history to
// produce decoys.
type BlameGame struct {
	repo *Repo
	rng  *rand.Rand
}

func NewBlameGame(repo *Repo) *BlameGame {
	return &BlameGame{repo: repo, rng: newRNG()}
}

func (g *BlameGame) Name() string        { return "Blame Game" }
func (g *BlameGame) Description() string { return "Who wrote that line? Point the finger!" }

func (g *BlameGame) QuestionTimeout() time.Duration { return 20 * time.Second }
func (g *BlameGame) DisplayInterval() time.Duration { return 5 * time.Second }

const blameContextLines = 7

func (g *BlameGame) GenerateQuestions() ([]Question, error) {
	authors, err := g.repo.Authors(1000)
	if err != nil || len(authors) < 2 {
		return g.sampleQuestions(), nil
	}
	files, err := g.repo.TrackedSourceFiles()
	if err != nil || len(files) == 0 {
		return g.sampleQuestions(), nil
	}
	g.rng.Shuffle(len(files), func(i, j int) { files[i], files[j] = files[j], files[i] })

	var questions []Question
	for _, path := range files {
		if len(questions) >= QuestionsPerRound {
			break
		}

		lines, err := g.repo.ReadLines(path, 500)
		if err != nil || len(lines) < blameContextLines {
			continue
		}

		lineNo := g.pickInterestingLine(lines)
		if lineNo == 0 {
			continue
		}

		author, when, err := g.repo.BlameLine(path, lineNo)
		if err != nil {
			continue
		}
		decoys := sampleExcluding(g.rng, authors, author, 3)
		if len(decoys) == 0 {
			continue
		}

		questions = append(questions, Question{
			Prompt:     fmt.Sprintf("Who last modified the highlighted line in %s?", path),
			Context:    renderContext(lines, lineNo),
			CommitInfo: fmt.Sprintf("%s, line %d (%s)", path, lineNo, when.Format("Jan 2, 2006")),
			Options:    shuffled(g.rng, append([]string{author}, decoys...)),
			Answer:     author,
			Type:       TypeChoice,
		})
	}

	if len(questions) < QuestionsPerRound {
		return g.sampleQuestions(), nil
	}
	return questions, nil
}

// pickInterestingLine returns a 1-based line number with real content on it,
// or 0 when the file is all blanks and braces.
func (g *BlameGame) pickInterestingLine(lines []string) int {
	var candidates []int
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) < 10 {
			continue
		}
		if strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "*") {
			continue
		}
		candidates = append(candidates, i+1)
	}
	if len(candidates) == 0 {
		return 0
	}
	return candidates[g.rng.Intn(len(candidates))]
}

// renderContext formats a window of lines around the target with the target
// marked, the way clients display it verbatim.
func renderContext(lines []string, lineNo int) string {
	half := blameContextLines / 2
	start := lineNo - 1 - half
	if start < 0 {
		start = 0
	}
	end := start + blameContextLines
	if end > len(lines) {
		end = len(lines)
	}

	var b strings.Builder
	for i := start; i < end; i++ {
		marker := "  "
		if i+1 == lineNo {
			marker = "> "
		}
		fmt.Fprintf(&b, "%s%4d | %s\n", marker, i+1, lines[i])
	}
	return b.String()
}

func (g *BlameGame) EvaluateAnswers(q Question, subs map[string]Submission) map[string]Outcome {
	return evaluateChoice(q, subs)
}

var blameSampleAuthors = []string{"Alice", "Bob", "Charlie", "David"}

var blameSampleSnippets = []struct {
	path    string
	context string
	line    int
}{
	{
		path: "src/auth.js",
		context: "    40 | function validateToken(token) {\n" +
			"    41 |   if (!token) {\n" +
			">   42 |     throw new AuthError('missing token');\n" +
			"    43 |   }\n" +
			"    44 |   return jwt.verify(token, SECRET);\n" +
			"    45 | }\n",
		line: 42,
	},
	{
		path: "lib/cache.rb",
		context: "    12 | def fetch(key)\n" +
			"    13 |   entry = @store[key]\n" +
			">   14 |   return entry.value unless entry.expired?\n" +
			"    15 |   @store.delete(key)\n" +
			"    16 |   nil\n" +
			"    17 | end\n",
		line: 14,
	},
	{
		path: "app/models/user.py",
		context: "    88 | def full_name(self):\n" +
			">   89 |     return f\"{self.first} {self.last}\".strip()\n" +
			"    90 | \n" +
			"    91 | def is_active(self):\n" +
			"    92 |     return self.status == 'active'\n",
		line: 89,
	},
	{
		path: "src/router.go",
		context: "    27 | func (r *Router) Handle(path string, h Handler) {\n" +
			">   28 | 	r.routes[path] = h\n" +
			"    29 | }\n" +
			"    30 | \n" +
			"    31 | func (r *Router) Serve(w http.ResponseWriter, req *http.Request) {\n",
		line: 28,
	},
	{
		path: "css/layout.css",
		context: "     5 | .container {\n" +
			">    6 |   display: grid;\n" +
			"     7 |   grid-template-columns: repeat(12, 1fr);\n" +
			"     8 |   gap: 1rem;\n" +
			"     9 | }\n",
		line: 6,
	},
}

func (g *BlameGame) sampleQuestions() []Question {
	questions := make([]Question, 0, QuestionsPerRound)
	for i := 0; i < QuestionsPerRound; i++ {
		s := blameSampleSnippets[i%len(blameSampleSnippets)]
		correct := blameSampleAuthors[g.rng.Intn(len(blameSampleAuthors))]
		decoys := sampleExcluding(g.rng, blameSampleAuthors, correct, 3)
		questions = append(questions, Question{
			Prompt:     fmt.Sprintf("Who last modified the highlighted line in %s? (SAMPLE)", s.path),
			Context:    s.context,
			CommitInfo: fmt.Sprintf("%s, line %d (Demo Question)", s.path, s.line),
			Options:    shuffled(g.rng, append([]string{correct}, decoys...)),
			Answer:     correct,
			Type:       TypeChoice,
		})
	}
	return questions
}
