// Package trivia pulls questions from the Open Trivia Database and tracks
// the active question per chat. Scores are credited through the stats store.
package trivia

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/glitchlabs/glitchbot/pkg/store"
)

const (
	DefaultBaseURL = "https://opentdb.com/api.php?amount=1"

	currentDoc = "current_trivia"
)

var difficultyPoints = map[string]int{
	"easy":   10,
	"medium": 20,
	"hard":   30,
}

type Question struct {
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
	AnswerList       []string `json:"answer_list"`
	GuessesLeft      int      `json:"guesses_left"`
}

type apiResponse struct {
	ResponseCode int `json:"response_code"`
	Results      []struct {
		Type             string   `json:"type"`
		Difficulty       string   `json:"difficulty"`
		Category         string   `json:"category"`
		Question         string   `json:"question"`
		CorrectAnswer    string   `json:"correct_answer"`
		IncorrectAnswers []string `json:"incorrect_answers"`
	} `json:"results"`
}

type Client struct {
	baseURL string
	http    *http.Client
	store   *store.Store
}

func NewClient(st *store.Store) *Client {
	return &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
		store:   st,
	}
}

// SetBaseURL overrides the question source, mainly for tests.
func (c *Client) SetBaseURL(url string) { c.baseURL = url }

// newQuestion builds a Question from raw API strings, normalizing answers
// and the initial guess budget.
func newQuestion(qType, difficulty, category, question, correct string, incorrect []string) *Question {
	q := &Question{
		Type:          qType,
		Difficulty:    strings.ToLower(difficulty),
		Category:      cleanText(lastSegment(category)),
		Question:      cleanText(question),
		CorrectAnswer: cleanText(correct),
	}
	for _, a := range incorrect {
		q.IncorrectAnswers = append(q.IncorrectAnswers, cleanText(a))
	}

	if q.Type == "boolean" {
		q.AnswerList = []string{"True", "False"}
	} else {
		q.AnswerList = append(append([]string{}, q.IncorrectAnswers...), q.CorrectAnswer)
		sort.Strings(q.AnswerList)
	}
	q.GuessesLeft = len(q.AnswerList) - 1
	return q
}

func lastSegment(category string) string {
	if i := strings.LastIndex(category, ":"); i >= 0 {
		return strings.TrimSpace(category[i+1:])
	}
	return category
}

func cleanText(s string) string {
	return strings.TrimSpace(html.UnescapeString(s))
}

// Fetch pulls one fresh question from the API.
func (c *Client) Fetch(ctx context.Context) (*Question, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("trivia request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("trivia API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var parsed apiResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse trivia response: %w", err)
	}
	if len(parsed.Results) == 0 {
		return nil, fmt.Errorf("trivia API returned no questions (code %d)", parsed.ResponseCode)
	}

	r := parsed.Results[0]
	return newQuestion(r.Type, r.Difficulty, r.Category, r.Question, r.CorrectAnswer, r.IncorrectAnswers), nil
}

// Current returns the chat's active question, fetching a new one when the
// chat has none.
func (c *Client) Current(ctx context.Context, chatID string) (*Question, error) {
	current := map[string]*Question{}
	if err := c.store.Load(currentDoc, &current); err != nil {
		return nil, err
	}
	if q := current[chatID]; q != nil {
		return q, nil
	}

	q, err := c.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	if err := c.saveCurrent(chatID, q); err != nil {
		return nil, err
	}
	return q, nil
}

// Active returns the chat's question without fetching, or nil.
func (c *Client) Active(chatID string) (*Question, error) {
	current := map[string]*Question{}
	if err := c.store.Load(currentDoc, &current); err != nil {
		return nil, err
	}
	return current[chatID], nil
}

func (c *Client) saveCurrent(chatID string, q *Question) error {
	current := map[string]*Question{}
	return c.store.Update(currentDoc, &current, func() (bool, error) {
		current[chatID] = q
		return true, nil
	})
}

// ClearCurrent forgets the chat's active question.
func (c *Client) ClearCurrent(chatID string) error {
	current := map[string]*Question{}
	return c.store.Update(currentDoc, &current, func() (bool, error) {
		if _, ok := current[chatID]; !ok {
			return false, nil
		}
		delete(current, chatID)
		return true, nil
	})
}

// Prompt renders the question with lettered answers and the guess budget.
func (q *Question) Prompt() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[Category: %s - %s]\n", q.Category, titleCase(q.Difficulty))
	fmt.Fprintf(&b, "Q. %s\n", q.Question)
	for i, answer := range q.AnswerList {
		fmt.Fprintf(&b, "    %c. %s\n", 'A'+i, answer)
	}
	plural := "es"
	if q.GuessesLeft == 1 {
		plural = ""
	}
	fmt.Fprintf(&b, "Type /guess [your answer] to answer (%d guess%s remaining)", q.GuessesLeft, plural)
	return b.String()
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Letter returns the lowercase letter for an answer on the list, or 0.
func (q *Question) Letter(answer string) byte {
	for i, a := range q.AnswerList {
		if strings.EqualFold(answer, a) {
			return byte('a' + i)
		}
	}
	return 0
}

// IsCorrect accepts either the answer text or its single letter.
func (q *Question) IsCorrect(guess string) bool {
	if len(guess) == 1 && strings.ToLower(guess)[0] == q.Letter(q.CorrectAnswer) {
		return true
	}
	return strings.EqualFold(guess, q.CorrectAnswer)
}

// OnList reports whether the guess names any listed answer or letter.
func (q *Question) OnList(guess string) bool {
	if len(guess) == 1 {
		c := strings.ToLower(guess)[0]
		return c >= 'a' && c < byte('a'+len(q.AnswerList))
	}
	for _, a := range q.AnswerList {
		if strings.EqualFold(guess, a) {
			return true
		}
	}
	return false
}

// Points computes the score for a correct answer: difficulty points scaled
// by the share of guesses still left.
func (q *Question) Points() int {
	potential := difficultyPoints[q.Difficulty]
	total := len(q.AnswerList) - 1
	if total <= 0 {
		return potential
	}
	return potential * q.GuessesLeft / total
}

// RecordMiss burns one guess and persists or clears the question.
// Returns whether guesses remain.
func (c *Client) RecordMiss(chatID string, q *Question) (bool, error) {
	q.GuessesLeft--
	if q.GuessesLeft > 0 {
		return true, c.saveCurrent(chatID, q)
	}
	return false, c.ClearCurrent(chatID)
}
