package gemini

import (
	"context"
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	_ "embed"

	"github.com/avoran/jobscout/internal/ai"
	"github.com/avoran/jobscout/internal/faults"
	"github.com/avoran/jobscout/internal/logger"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Scorer rates resume/job fit through a Gemini prompt.
type Scorer struct {
	generator contentGenerator
	timeout   time.Duration
	logger    *zap.Logger
	maxLogLen int
}

//go:embed match_prompt.md
var matchPromptTemplate string

const (
	defaultMaxLogLength = 200
	defaultCallTimeout  = 30 * time.Second
)

func NewScorer(generator contentGenerator, logger *zap.Logger, timeout time.Duration, maxLogLength int) *Scorer {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}

	return &Scorer{
		generator: generator,
		timeout:   timeout,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Score sends one resume/job pair to the oracle and returns the parsed verdict.
func (s *Scorer) Score(ctx context.Context, resume, jobDescription, jobTitle string) (*ai.MatchScore, error) {
	if strings.TrimSpace(resume) == "" {
		return nil, faults.New(faults.Validation, "resume must not be empty")
	}
	if strings.TrimSpace(jobDescription) == "" {
		return nil, faults.New(faults.Validation, "job description must not be empty")
	}
	if strings.TrimSpace(jobTitle) == "" {
		return nil, faults.New(faults.Validation, "job title must not be empty")
	}

	prompt := buildMatchPrompt(resume, jobDescription, jobTitle)

	s.logger.Debug("gemini match request",
		zap.String("job_title", jobTitle),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, s.maxLogLen)),
	)

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.generator.GenerateContent(callCtx, prompt)
	if err != nil {
		return nil, faults.Wrap(faults.Oracle, "scoring oracle", err)
	}

	s.logger.Debug("gemini match response",
		zap.String("job_title", jobTitle),
		zap.String("response_preview", logger.TruncateForLog(raw, s.maxLogLen)),
	)

	return parseMatchResponse(raw)
}

func buildMatchPrompt(resume, jobDescription, jobTitle string) string {
	prompt := strings.ReplaceAll(matchPromptTemplate, "{{RESUME}}", resume)
	prompt = strings.ReplaceAll(prompt, "{{JOB_DESCRIPTION}}", jobDescription)
	return strings.ReplaceAll(prompt, "{{JOB_TITLE}}", jobTitle)
}

// matchPayload is the oracle's wire schema. Decoded weakly so a string-typed
// score or a single bare skill still parses.
type matchPayload struct {
	MatchingScore  int      `mapstructure:"matchingScore"`
	MatchingSkills []string `mapstructure:"matchingSkills"`
	LackingSkills  []string `mapstructure:"lackingSkills"`
}

func parseMatchResponse(raw string) (*ai.MatchScore, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &data); err != nil {
		return nil, faults.Wrap(faults.Oracle, "parse scoring response", err)
	}

	if _, ok := data["matchingScore"]; !ok {
		return nil, faults.New(faults.Oracle, "scoring response has no matchingScore")
	}

	var payload matchPayload
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &payload,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, faults.Wrap(faults.Oracle, "build response decoder", err)
	}
	if err := decoder.Decode(data); err != nil {
		return nil, faults.Wrap(faults.Oracle, "decode scoring response", err)
	}

	return ai.NewMatchScore(payload.MatchingScore, payload.MatchingSkills, payload.LackingSkills), nil
}

// extractJSON unwraps a markdown code fence when the model adds one.
func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
