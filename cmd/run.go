package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/avoran/jobscout/internal/adzuna"
	"github.com/avoran/jobscout/internal/ai/gemini"
	"github.com/avoran/jobscout/internal/archive"
	"github.com/avoran/jobscout/internal/logger"
	"github.com/avoran/jobscout/internal/matching"
	"github.com/avoran/jobscout/internal/secrets"
	"github.com/avoran/jobscout/internal/session"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptSearch   = "Search jobs"
	PromptAnalyze  = "Analyze next batch"
	PromptShow     = "Show results"
	PromptToggle   = "Toggle score-sorted view"
	PromptArchive  = "Archive a job"
	PromptExit     = "Exit"
	PromptBack     = "back"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "Next action?",
	Items: []string{PromptSearch, PromptAnalyze, PromptShow, PromptToggle, PromptArchive, PromptExit},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the jobscout main command",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("sorted", "s", false, "start with the score-sorted view enabled")
}

// pipeline bundles everything the action loop operates on.
type pipeline struct {
	client   *adzuna.Client
	orch     *matching.Orchestrator
	archiver *archive.Archiver
	session  *session.Session
	filters  *adzuna.SearchFilters
	resume   string
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the jobscout", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	if config.Resume == nil || config.Resume.File == "" {
		logger.Fatal("resume file is required under resume.file to score and archive jobs")
	}

	resume, err := os.ReadFile(config.Resume.File)
	if err != nil {
		logger.Fatal("reading resume file", zap.Error(err), zap.String("path", config.Resume.File))
	}
	if strings.TrimSpace(string(resume)) == "" {
		logger.Fatal("resume file is empty", zap.String("path", config.Resume.File))
	}

	client, err := buildSearchClient(ctx, config, logger)
	if err != nil {
		logger.Fatal(
			"building search client",
			zap.Error(err),
			zap.String("hint", "set ADZUNA_APP_ID_FILE and ADZUNA_APP_KEY_FILE or the adzuna section in the configuration file"),
		)
	}

	scorer, tailor, err := buildOracles(ctx, config.Gemini, logger)
	if err != nil {
		logger.Fatal(
			"building gemini oracles",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY_FILE or gemini.api-key-file in the configuration file"),
		)
	}

	store := buildSessionStore(ctx, config.Session, logger)
	sess := session.Attach(ctx, store, logger)

	if cmd.Flag("sorted").Value.String() == "true" {
		sess.SetSorted(true)
	}

	batchLimit, groupSize := 0, 0
	if config.Matching != nil {
		batchLimit = config.Matching.BatchLimit
		groupSize = config.Matching.GroupSize
	}
	orch := matching.NewOrchestrator(scorer, logger, batchLimit, groupSize)

	archiver := buildArchiver(ctx, config.Archive, tailor, logger)

	p := &pipeline{
		client:   client,
		orch:     orch,
		archiver: archiver,
		session:  sess,
		filters:  config.Search,
		resume:   string(resume),
	}

	if sess.Jobs().Len() > 0 {
		logger.Info("continuing a restored search",
			zap.Int("jobs", sess.Jobs().Len()),
			zap.Int("scored", len(sess.Scores())),
		)
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(ctx, action, p, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Error("action failed", zap.String("action", action), zap.Error(err))
		}
	}
}

func handleAction(ctx context.Context, action string, p *pipeline, logger *zap.Logger) error {
	switch action {
	case PromptSearch:
		return search(ctx, p, logger)
	case PromptAnalyze:
		return analyze(ctx, p, logger)
	case PromptShow:
		showResults(p)
		return nil
	case PromptToggle:
		p.session.SetSorted(!p.session.Sorted())
		logger.Info("toggled result view", zap.Bool("sorted_by_score", p.session.Sorted()))
		return nil
	case PromptArchive:
		return archiveJob(ctx, p, logger)
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func search(ctx context.Context, p *pipeline, logger *zap.Logger) error {
	filters := p.filters
	if filters == nil {
		filters = &adzuna.SearchFilters{}
	}

	logger.Info("starting the search",
		zap.String("what", filters.What),
		zap.String("where", filters.Where),
	)

	result, err := p.client.Search(filters)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	generation := p.session.StartSearch(ctx, filters, result.Jobs)

	logger.Info("got search results",
		zap.Int("page_results", result.Jobs.Len()),
		zap.Int("total_count", result.Count),
		zap.Uint64("generation", generation),
	)

	return nil
}

func analyze(ctx context.Context, p *pipeline, logger *zap.Logger) error {
	jobs := p.session.Jobs()
	if jobs.Len() == 0 {
		logger.Info("nothing to analyze", zap.String("reason", "no search results yet"))
		return nil
	}

	// The generation captured here invalidates the delta if a new search
	// lands while the batch is in flight.
	generation := p.session.Generation()

	delta, err := p.orch.ScoreNextBatch(ctx, jobs, p.resume, p.session.Scores())
	if errors.Is(err, matching.ErrNothingToScore) {
		logger.Info("all jobs are analyzed", zap.Int("jobs", jobs.Len()))
		return nil
	}
	if err != nil {
		return fmt.Errorf("batch scoring: %w", err)
	}

	if !p.session.MergeScores(ctx, generation, delta) {
		return nil
	}

	logger.Info("merged batch scores",
		zap.Int("new_scores", len(delta)),
		zap.Int("total_scores", len(p.session.Scores())),
		zap.Int("jobs", jobs.Len()),
	)

	return nil
}

func showResults(p *pipeline) {
	jobs := p.session.View()
	if jobs.Len() == 0 {
		fmt.Println("no results yet; run a search first")
		return
	}

	scores := p.session.Scores()
	for i, job := range jobs {
		scoreLabel := "  -"
		if score, ok := scores[job.ID]; ok {
			scoreLabel = fmt.Sprintf("%3d", score.Score)
		}

		savedLabel := " "
		if p.session.IsSaved(job.ID) {
			savedLabel = "*"
		}

		line := fmt.Sprintf("%2d. [%s]%s %s / %s / %s", i+1, scoreLabel, savedLabel, job.Title, job.Company, job.Location)
		if job.Salary != "" {
			line += " / " + job.Salary
		}
		fmt.Println(line)
	}
}

func archiveJob(ctx context.Context, p *pipeline, logger *zap.Logger) error {
	if p.archiver == nil {
		logger.Warn("archiving is disabled", zap.String("hint", "set DATABASE_URL or archive.database-url in the configuration file"))
		return nil
	}

	scores := p.session.Scores()

	items := make([]string, 0)
	for _, job := range p.session.View() {
		if p.session.IsSaved(job.ID) {
			continue
		}

		label := fmt.Sprintf("%s %s / %s", job.ID, job.Title, job.Company)
		if score, ok := scores[job.ID]; ok {
			label += fmt.Sprintf(" / score %d", score.Score)
		}
		items = append(items, label)
	}

	if len(items) == 0 {
		logger.Info("nothing to archive", zap.String("reason", "no unsaved jobs in the current results"))
		return nil
	}

	jobPrompt := promptui.Select{
		Label: "Choose a job and press ENTER",
		Items: append(items, PromptBack),
	}

	_, selected, err := jobPrompt.Run()
	if err != nil {
		return err
	}

	if selected == PromptBack {
		return nil
	}

	jobID := strings.Split(selected, " ")[0]
	job := p.session.Jobs().FindByID(jobID)
	if job == nil {
		return fmt.Errorf("there is no such job id %s", jobID)
	}

	recordID, err := p.archiver.Archive(ctx, job, scores[job.ID], p.resume)
	if err != nil {
		return fmt.Errorf("archive job %s: %w", job.ID, err)
	}

	// Mark as saved only now: a failed archive must stay retryable.
	p.session.MarkSaved(ctx, job.ID)

	logger.Info("successfully archived application",
		zap.String("record_id", recordID),
		zap.String("job_id", job.ID),
		zap.String("job_title", job.Title),
	)

	return nil
}

func buildSearchClient(ctx context.Context, config *Config, logger *zap.Logger) (*adzuna.Client, error) {
	adzunaCfg := config.Adzuna
	if adzunaCfg == nil {
		adzunaCfg = &AdzunaConfig{}
	}

	appID, err := secrets.Load(secrets.Source{
		Name: "adzuna app id",
		File: firstNonEmpty(adzunaCfg.AppIDFile, viper.GetString("adzuna.app-id-file")),
	})
	if err != nil {
		return nil, err
	}

	appKey, err := secrets.Load(secrets.Source{
		Name: "adzuna app key",
		File: firstNonEmpty(adzunaCfg.AppKeyFile, viper.GetString("adzuna.app-key-file")),
	})
	if err != nil {
		return nil, err
	}

	return adzuna.New(ctx, logger, appID, appKey, adzunaCfg.Country)
}

func buildOracles(ctx context.Context, cfg *GeminiConfig, logger *zap.Logger) (*gemini.Scorer, *gemini.Tailor, error) {
	if cfg == nil {
		cfg = &GeminiConfig{}
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: firstNonEmpty(cfg.APIKeyFile, viper.GetString("gemini.api-key-file")),
	})
	if err != nil {
		return nil, nil, err
	}

	genLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", cfg.Model),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Model, cfg.MaxRetries, genLogger)
	if err != nil {
		return nil, nil, err
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	scorer := gemini.NewScorer(generator, genLogger, timeout, cfg.MaxLogLength)
	tailor := gemini.NewTailor(generator, genLogger, timeout, cfg.MaxLogLength)

	return scorer, tailor, nil
}

func buildSessionStore(ctx context.Context, cfg *SessionConfig, logger *zap.Logger) session.Store {
	if cfg == nil || strings.TrimSpace(cfg.RedisURL) == "" {
		logger.Info("no redis url configured, session state lives in memory only")
		return session.NewMemoryStore()
	}

	client, err := session.Dial(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn("connecting to redis failed, session state lives in memory only", zap.Error(err))
		return session.NewMemoryStore()
	}

	ttl := time.Duration(cfg.TTLHours) * time.Hour
	return session.NewRedisStore(client, cfg.Key, ttl)
}

func buildArchiver(ctx context.Context, cfg *ArchiveConfig, tailor *gemini.Tailor, logger *zap.Logger) *archive.Archiver {
	if cfg == nil || strings.TrimSpace(cfg.DatabaseURL) == "" {
		logger.Warn("no database url configured, archiving is disabled")
		return nil
	}

	pool, err := archive.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Warn("connecting to database failed, archiving is disabled", zap.Error(err))
		return nil
	}

	store := archive.NewPostgresStore(pool, cfg.Owner)

	return archive.New(tailor, store, logger, cfg.Language)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
