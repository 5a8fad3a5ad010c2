package games

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// FileQuiz asks players to match a commit message to the file it changed.
type FileQuiz struct {
	repo *Repo
	rng  *rand.Rand
}

func NewFileQuiz(repo *Repo) *FileQuiz {
	return &FileQuiz{repo: repo, rng: newRNG()}
}

func (g *FileQuiz) Name() string        { return "File Quiz" }
func (g *FileQuiz) Description() string { return "Match the commit message to the right changed file!" }

func (g *FileQuiz) QuestionTimeout() time.Duration { return 15 * time.Second }
func (g *FileQuiz) DisplayInterval() time.Duration { return 5 * time.Second }

type commitFiles struct {
	commit Commit
	files  []string
}

func (g *FileQuiz) GenerateQuestions() ([]Question, error) {
	commits, err := g.repo.Log(1000)
	if err != nil || len(commits) == 0 {
		return g.sampleQuestions(), nil
	}
	g.rng.Shuffle(len(commits), func(i, j int) { commits[i], commits[j] = commits[j], commits[i] })

	var valid []commitFiles
	for _, commit := range commits {
		files, err := g.repo.ChangedFiles(commit.SHA)
		if err != nil || len(files) == 0 {
			continue
		}
		valid = append(valid, commitFiles{commit: commit, files: files})
		if len(valid) >= QuestionsPerRound*5 {
			break
		}
	}
	if len(valid) == 0 {
		return g.sampleQuestions(), nil
	}

	// Most interesting commits first: source changes and descriptive
	// messages beat .gitignore touches.
	sort.SliceStable(valid, func(i, j int) bool {
		return commitInterest(valid[i]) > commitInterest(valid[j])
	})
	if len(valid) > QuestionsPerRound {
		valid = valid[:QuestionsPerRound]
	}

	questions := make([]Question, 0, len(valid))
	for idx, cf := range valid {
		correct := mostInterestingFile(cf.files)

		var decoyPool []string
		for other, ocf := range valid {
			if other == idx {
				continue
			}
			for _, f := range ocf.files {
				if !contains(cf.files, f) {
					decoyPool = append(decoyPool, f)
				}
			}
		}
		if len(decoyPool) < 3 {
			for _, f := range sampleFilePool {
				if !contains(cf.files, f) {
					decoyPool = append(decoyPool, f)
				}
			}
		}
		decoys := sampleExcluding(g.rng, uniqueStrings(decoyPool), correct, 3)

		questions = append(questions, Question{
			Prompt:     fmt.Sprintf("Which file was most likely changed in this commit?\n\n   %q", cf.commit.Subject()),
			CommitInfo: fmt.Sprintf("%s (%s)", cf.commit.ShortSHA(), cf.commit.Date.Format("Jan 2, 2006")),
			Options:    shuffled(g.rng, append([]string{correct}, decoys...)),
			Answer:     correct,
			Type:       TypeChoice,
		})
	}

	if len(questions) < QuestionsPerRound {
		questions = append(questions, g.sampleQuestions()[:QuestionsPerRound-len(questions)]...)
	}
	return questions, nil
}

func (g *FileQuiz) EvaluateAnswers(q Question, subs map[string]Submission) map[string]Outcome {
	return evaluateChoice(q, subs)
}

var sampleFilePool = []string{
	"src/main.js", "lib/utils.js", "css/styles.css", "README.md",
	"package.json", "Dockerfile", ".github/workflows/ci.yml",
	"src/components/Header.js", "app/models/user.rb", "config/database.yml",
}

var sampleFileMessages = []string{
	"Update documentation with new API endpoints",
	"Fix styling issues in mobile view",
	"Add error handling for network failures",
	"Refactor authentication module for better performance",
	"Update dependencies to latest versions",
}

func (g *FileQuiz) sampleQuestions() []Question {
	files := []string{"src/main.js", "README.md", "lib/utils.js", "css/styles.css"}

	questions := make([]Question, 0, QuestionsPerRound)
	for i := 0; i < QuestionsPerRound; i++ {
		correct := files[i%len(files)]
		questions = append(questions, Question{
			Prompt:     fmt.Sprintf("Which file was most likely changed in this commit?\n\n   %q", sampleFileMessages[i%len(sampleFileMessages)]+" (SAMPLE)"),
			CommitInfo: fmt.Sprintf("sample%d (Demo Question)", i),
			Options:    shuffled(g.rng, files),
			Answer:     correct,
			Type:       TypeChoice,
		})
	}
	return questions
}

func commitInterest(cf commitFiles) int {
	score := 0
	for _, f := range cf.files {
		score += fileInterest(f) / 3
	}
	msgLen := len(strings.TrimSpace(cf.commit.Message))
	if bonus := msgLen / 20; bonus < 5 {
		score += bonus
	} else {
		score += 5
	}
	return score
}

func fileInterest(path string) int {
	score := 0
	switch strings.ToLower(filepath.Ext(path)) {
	case ".go", ".rb", ".js", ".py", ".java", ".tsx", ".jsx":
		score = 10
	case ".html", ".css", ".scss":
		score = 8
	case ".md", ".txt":
		score = 6
	case ".json", ".yaml", ".yml":
		score = 4
	case "":
		score = 0
	default:
		score = 5
	}
	if penalty := len(path) / 10; penalty < 5 {
		score -= penalty
	} else {
		score -= 5
	}
	if strings.HasPrefix(path, "src/") || strings.HasPrefix(path, "lib/") || strings.HasPrefix(path, "app/") {
		score += 3
	}
	return score
}

func mostInterestingFile(files []string) string {
	best := files[0]
	bestScore := fileInterest(best)
	for _, f := range files[1:] {
		if s := fileInterest(f); s > bestScore {
			best, bestScore = f, s
		}
	}
	return best
}

func contains(items []string, target string) bool {
	for _, item := range items {
		if item == target {
			return true
		}
	}
	return false
}

func uniqueStrings(items []string) []string {
	seen := make(map[string]bool, len(items))
	var out []string
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			out = append(out, item)
		}
	}
	return out
}
