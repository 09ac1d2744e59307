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

//go:embed tailor_prompt.md
var tailorPromptTemplate string

const defaultLanguage = "en"

// Tailor produces a tailored resume and cover letter through a Gemini prompt.
type Tailor struct {
	generator contentGenerator
	timeout   time.Duration
	logger    *zap.Logger
	maxLogLen int
}

func NewTailor(generator contentGenerator, logger *zap.Logger, timeout time.Duration, maxLogLength int) *Tailor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if timeout <= 0 {
		timeout = defaultCallTimeout
	}

	return &Tailor{
		generator: generator,
		timeout:   timeout,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

func (t *Tailor) Tailor(ctx context.Context, resume, jobDescription, language string) (*ai.TailoredApplication, error) {
	if strings.TrimSpace(resume) == "" {
		return nil, faults.New(faults.Validation, "resume must not be empty")
	}
	if strings.TrimSpace(jobDescription) == "" {
		return nil, faults.New(faults.Validation, "job description must not be empty")
	}
	if language = strings.TrimSpace(language); language == "" {
		language = defaultLanguage
	}

	prompt := strings.ReplaceAll(tailorPromptTemplate, "{{RESUME}}", resume)
	prompt = strings.ReplaceAll(prompt, "{{JOB_DESCRIPTION}}", jobDescription)
	prompt = strings.ReplaceAll(prompt, "{{LANGUAGE}}", language)

	t.logger.Debug("gemini tailor request",
		zap.String("language", language),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
	)

	callCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	raw, err := t.generator.GenerateContent(callCtx, prompt)
	if err != nil {
		return nil, faults.Wrap(faults.Oracle, "tailoring oracle", err)
	}

	t.logger.Debug("gemini tailor response",
		zap.String("response_preview", logger.TruncateForLog(raw, t.maxLogLen)),
	)

	return parseTailorResponse(raw)
}

func parseTailorResponse(raw string) (*ai.TailoredApplication, error) {
	var data map[string]any
	if err := json.Unmarshal([]byte(extractJSON(raw)), &data); err != nil {
		return nil, faults.Wrap(faults.Oracle, "parse tailoring response", err)
	}

	var app ai.TailoredApplication
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &app,
		WeaklyTypedInput: true,
		TagName:          "json",
	})
	if err != nil {
		return nil, faults.Wrap(faults.Oracle, "build response decoder", err)
	}
	if err := decoder.Decode(data); err != nil {
		return nil, faults.Wrap(faults.Oracle, "decode tailoring response", err)
	}

	if strings.TrimSpace(app.Resume) == "" {
		return nil, faults.New(faults.Oracle, "tailoring response has no resume")
	}

	normalized := ai.NewMatchScore(app.MatchingScore, app.MatchingSkills, app.LackingSkills)
	app.MatchingScore = normalized.Score
	app.MatchingSkills = normalized.MatchingSkills
	app.LackingSkills = normalized.LackingSkills

	return &app, nil
}
