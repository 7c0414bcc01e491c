package catalog

import "fmt"

var games = []Game{
	Simple("word-match", "Word Match", CategoryVocabulary, 1, 10, 180, 0),
	Simple("synonym-sprint", "Synonym Sprint", CategoryVocabulary, 1, 12, 180, 1),
	Simple("antonym-hunt", "Antonym Hunt", CategoryVocabulary, 2, 12, 180, 2),
	Simple("spelling-bee", "Spelling Bee", CategoryVocabulary, 2, 15, 240, 3),
	Rich("context-clues", "Context Clues", CategoryReading, "search",
		[]string{"Read each sentence and pick the meaning of the highlighted word."},
		[]string{"10 points per correct answer.", "No penalty for wrong answers."},
		10, 300, 4),
	Rich("reading-detective", "Reading Detective", CategoryReading, "book-open",
		[]string{"Read the passage carefully, then answer the questions about it."},
		[]string{"20 points per correct answer."},
		8, 420, 5),
	Rich("main-idea", "Main Idea Finder", CategoryReading, "lightbulb",
		[]string{"Choose the sentence that best sums up each paragraph."},
		[]string{"15 points per correct answer."},
		8, 360, 6),
	Rich("story-sequencing", "Story Sequencing", CategoryReading, "list-ordered",
		[]string{"Put the story events in the order they happened."},
		[]string{"25 points for a fully correct order.", "10 points if only one event is misplaced."},
		6, 360, 7),
	Rich("inference-challenge", "Inference Challenge", CategoryReading, "brain",
		[]string{"Use clues from the text to work out what is not stated directly."},
		[]string{"20 points per correct answer."},
		8, 420, 8),
	Rich("essay-builder", "Essay Builder", CategoryWriting, "pen",
		[]string{"Write a short essay in response to the prompt.", "Aim for at least 150 words."},
		[]string{"Up to 40 points for structure.", "Up to 40 points for grammar.", "Up to 20 points for vocabulary."},
		1, 900, 9),
	Simple("grammar-guardian", "Grammar Guardian", CategoryWriting, 3, 15, 300, 10),
	Simple("sentence-fixer", "Sentence Fixer", CategoryWriting, 3, 12, 300, 11),
	Rich("listening-lab", "Listening Lab", CategoryListening, "headphones",
		[]string{"Listen to each clip, then answer the question. Each clip plays twice."},
		[]string{"15 points per correct answer."},
		10, 480, 12),
	Rich("dictation-drill", "Dictation Drill", CategoryListening, "microphone",
		[]string{"Type exactly what you hear."},
		[]string{"1 point per correctly spelled word."},
		5, 480, 13),
	Rich("argument-analyzer", "Argument Analyzer", CategoryCritical, "scale",
		[]string{"Identify the claim, the evidence and the flaw in each argument."},
		[]string{"10 points for each part you identify correctly."},
		6, 600, 14),
	Simple("fact-or-opinion", "Fact or Opinion", CategoryCritical, 4, 20, 240, 15),
	Simple("logic-puzzles", "Logic Puzzles", CategoryCritical, 4, 8, 600, 16),
	Simple("binary-basics", "Binary Basics", CategoryTechnical, 5, 10, 300, 17),
	Simple("code-breaker", "Code Breaker", CategoryTechnical, 5, 8, 420, 18),
}

var byID map[string]Game

func init() {
	byID = make(map[string]Game, len(games))
	for _, g := range games {
		if err := g.Validate(); err != nil {
			panic(fmt.Sprintf("invalid catalog entry: %v", err))
		}
		byID[g.ID] = g
	}
}

func All() []Game {
	out := make([]Game, len(games))
	copy(out, games)
	return out
}

func Lookup(id string) (Game, bool) {
	g, ok := byID[id]
	return g, ok
}

type Entry struct {
	Game
	Locked bool `json:"locked"`
}

// WithLocks marks each game locked or playable for the given progress.
func WithLocks(gameProgress int) []Entry {
	entries := make([]Entry, 0, len(games))
	for _, g := range games {
		entries = append(entries, Entry{Game: g, Locked: !g.Unlocked(gameProgress)})
	}
	return entries
}
