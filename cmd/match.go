package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/nikip0/matchsim/internal/agent"
	"github.com/nikip0/matchsim/internal/ai"
	"github.com/nikip0/matchsim/internal/ai/gemini"
	"github.com/nikip0/matchsim/internal/logger"
	"github.com/nikip0/matchsim/internal/matching"
	"github.com/nikip0/matchsim/internal/profile"
	"github.com/nikip0/matchsim/internal/secrets"
	"github.com/nikip0/matchsim/internal/simulation"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes            = "Yes"
	PromptNo             = "No"
	PromptShowBreakdown  = "Show dimension breakdown"
	PromptShowTranscript = "Show a sample transcript"
	PromptResultsToFile  = "Dump simulation results to file"
	PromptExit           = "Exit"

	defaultSimulationCount = 100
)

var errExit = errors.New("exit requested")

var confirmPrompt = promptui.Select{
	Label: "Proceed?",
	Items: []string{PromptYes, PromptNo},
}

var actionPrompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptShowBreakdown, PromptShowTranscript, PromptResultsToFile, PromptExit},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Run the simulation batch for a participant pair and score the match",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before running the batch")
	matchCmd.Flags().IntP("count", "n", 0, "number of simulations to run (overrides the config)")
	matchCmd.Flags().StringP("output-file", "o", "", "write the compatibility result to this file")

	viper.BindPFlag("output-file", matchCmd.Flags().Lookup("output-file"))
}

// match is the main command for the cli.
func match(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting matchsim", zap.String("version", version))

	if config == nil {
		logger.Fatal("config is required")
	}

	if config.Profiles == nil || config.Profiles.A == "" || config.Profiles.B == "" {
		logger.Fatal("both participant profile ids are required under profiles.a and profiles.b")
	}

	count := defaultSimulationCount
	if config.Simulations != nil && config.Simulations.Count > 0 {
		count = config.Simulations.Count
	}
	if flagCount, _ := cmd.Flags().GetInt("count"); flagCount > 0 {
		count = flagCount
	}

	concurrency := 1
	if config.Simulations != nil && config.Simulations.Concurrency > 0 {
		concurrency = config.Simulations.Concurrency
	}

	generator, maxLogLen, err := newGenerator(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal(
			"building the generator",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY_FILE or the 'ai.gemini.api-key-file' key in the configuration file"),
		)
	}

	repo, err := profile.NewFileRepository(config.Profiles.Dir)
	if err != nil {
		logger.Fatal("opening the profile repository", zap.Error(err))
	}

	agentA, profileA, err := loadParticipant(repo, config.Profiles.A, generator, maxLogLen, logger)
	if err != nil {
		logger.Fatal("loading participant a", zap.Error(err))
	}

	agentB, profileB, err := loadParticipant(repo, config.Profiles.B, generator, maxLogLen, logger)
	if err != nil {
		logger.Fatal("loading participant b", zap.Error(err))
	}

	logger.Info("participants loaded",
		zap.String("participant_a", profileA.UserID),
		zap.Float64("confidence_a", profileA.ConfidenceScore),
		zap.String("participant_b", profileB.UserID),
		zap.Float64("confidence_b", profileB.ConfidenceScore),
	)

	if autoApprove, _ := cmd.Flags().GetBool("auto-approve"); !autoApprove {
		logger.Info("about to run simulations",
			zap.Int("count", count),
			zap.Int("concurrency", concurrency),
		)
		_, answer, err := confirmPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}
		if answer != PromptYes {
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	extractor := simulation.NewExtractor(generator, maxLogLen, logger)
	engine := simulation.NewEngine(extractor, concurrency, logger)

	results, err := engine.RunBatch(ctx, agentA, agentB, count)
	if err != nil {
		logger.Fatal("running the simulation batch", zap.Error(err))
	}

	verdict := matching.Score(results, profileA, profileB)

	logger.Info("compatibility computed",
		zap.Float64("overall_score", verdict.OverallScore),
		zap.String("confidence", verdict.Confidence),
		zap.Int("simulation_count", verdict.SimulationCount),
		zap.Float64("alignment_bonus", verdict.ProfileAlignmentBonus),
		zap.Strings("top_strengths", verdict.TopStrengths),
		zap.Strings("top_concerns", verdict.TopConcerns),
	)

	fmt.Println(verdict.Recommendation)

	if output := viper.GetString("output-file"); output != "" {
		if err := writeJSONFile(output, verdict); err != nil {
			logger.Fatal("writing the result file", zap.Error(err))
		}
		logger.Info("result written", zap.String("filename", output))
	}

	for {
		_, action, err := actionPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, logger, verdict, results); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, verdict *matching.Result, results []*simulation.Result) error {
	switch action {
	case PromptShowBreakdown:
		pretty, _ := json.MarshalIndent(verdict, "", "  ")
		fmt.Println(string(pretty))
		return nil
	case PromptShowTranscript:
		if len(results) == 0 {
			logger.Info("no transcripts available")
			return nil
		}
		sample := results[0]
		fmt.Printf("scenario: %s\n", sample.Scenario)
		for _, turn := range sample.Conversation {
			fmt.Printf("%s: %s\n", turn.Speaker, turn.Message)
		}
		return nil
	case PromptResultsToFile:
		filename, err := dumpResultsToTmpFile(results)
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping results to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func newGenerator(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Generator, int, error) {
	if cfg == nil || cfg.Gemini == nil {
		return nil, 0, fmt.Errorf("ai.gemini configuration is required")
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, 0, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, 0, err
	}

	genLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", cfg.Gemini.Model),
	)

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, 0, err
	}

	return generator, cfg.Gemini.MaxLogLength, nil
}

func loadParticipant(repo profile.Repository, id string, generator ai.Generator, maxLogLen int, logger *zap.Logger) (*agent.Agent, *profile.Profile, error) {
	p, err := repo.Get(id)
	if err != nil {
		return nil, nil, err
	}

	a, err := agent.New(p, generator, maxLogLen, logger.With(zap.String("user_id", p.UserID)))
	if err != nil {
		return nil, nil, err
	}

	return a, p, nil
}

func writeJSONFile(path string, v any) error {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func dumpResultsToTmpFile(results []*simulation.Result) (string, error) {
	file, err := os.CreateTemp("", "simulations_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return "", err
	}
	return file.Name(), nil
}
