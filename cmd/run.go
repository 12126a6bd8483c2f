package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"li-responder/internal/ai"
	"li-responder/internal/answers"
	"li-responder/internal/browser"
	"li-responder/internal/config"
	"li-responder/internal/filtering"
	"li-responder/internal/form"
	"li-responder/internal/jobs"
	"li-responder/internal/linkedin"
	"li-responder/internal/logger"
	"li-responder/internal/manager"
	"li-responder/internal/pdf"
	"li-responder/internal/profile"
	"li-responder/internal/secrets"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"

	envLinkedInEmail    = "LINKEDIN_EMAIL"
	envLinkedInPassword = "LINKEDIN_PASSWORD"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the li-responder main loop",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("resume", "r", "resume.json", "path to the structured resume json")
	runCmd.Flags().Bool("headless", false, "run chrome without a window (security checkpoints need a visible browser)")
	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before starting")

	runCmd.Flags().String("llm-provider", "", "llm backend: gemini, anthropic or ollama (default: probed from environment)")
	runCmd.Flags().String("llm-model", "", "model name override for the selected backend")
	runCmd.Flags().String("llm-api-key", "", "api key override for the selected backend")
	runCmd.Flags().String("llm-base-url", "", "base url for the ollama backend")
	runCmd.Flags().Float64("llm-temperature", 0.2, "sampling temperature for answers")
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	// .env first so the provider probing below sees its variables.
	_ = godotenv.Load()

	logger, err := logger.New(viper.GetBool("json-logs"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	cfg, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatal("validating the config", zap.Error(err))
	}

	logger.Info("starting the li-responder", zap.String("version", version))

	resumePath, _ := cmd.Flags().GetString("resume")
	resume, err := profile.Load(resumePath)
	if err != nil {
		logger.Fatal("loading the resume profile", zap.Error(err))
	}

	aiOpts, err := ai.Resolve(ai.Options{
		Provider:    flagString(cmd, "llm-provider"),
		Model:       flagString(cmd, "llm-model"),
		APIKey:      flagString(cmd, "llm-api-key"),
		BaseURL:     flagString(cmd, "llm-base-url"),
		Temperature: flagFloat(cmd, "llm-temperature"),
	})
	if err != nil {
		logger.Fatal("selecting the llm backend", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	completer, err := ai.New(ctx, aiOpts, logger.Named("ai"))
	if err != nil {
		logger.Fatal("building the llm client", zap.Error(err))
	}

	autoApprove, _ := cmd.Flags().GetBool("auto-approve")
	if !autoApprove && !confirm(cfg, aiOpts.Provider) {
		logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return
	}

	headless, _ := cmd.Flags().GetBool("headless")
	session, err := browser.NewSession(ctx, browser.Options{Headless: headless}, logger.Named("browser"))
	if err != nil {
		logger.Fatal("starting chrome", zap.Error(err))
	}
	defer session.Close()

	client := linkedin.New(session, logger.Named("linkedin"))
	if err := client.Login(ctx, loadCredentials()); err != nil {
		logger.Fatal(
			"logging in",
			zap.Error(err),
			zap.String("hint", fmt.Sprintf("set %s and %s or log in manually once so the chrome profile keeps the cookies", envLinkedInEmail, envLinkedInPassword)),
		)
	}

	store := answers.NewStore(filepath.Join(cfg.OutputDir, "answers.json"), logger.Named("answers"))
	answerer := ai.NewAnswerer(completer, resume, logger.Named("answerer"))
	resolver := answers.NewResolver(store, answerer, logger.Named("answers"))

	filler := form.NewFiller(session, resolver, answerer, resume, pdf.NewRenderer(), form.Options{
		Uploads:   cfg.Uploads,
		OutputDir: cfg.OutputDir,
	}, logger.Named("form"))

	filters := []filtering.Filter{
		filtering.NewApplyMethod(),
		filtering.NewTitleBlacklist(cfg.TitleBlacklist),
		filtering.NewCompanyBlacklist(cfg.CompanyBlacklist),
		filtering.NewSeenLinks(),
	}

	outcomes := jobs.NewOutcomeWriter(cfg.OutputDir, logger.Named("outcomes"))

	mgr := manager.New(cfg, client, filler, outcomes, filters, logger.Named("manager"))
	if err := mgr.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("run loop failed", zap.Error(err))
	}

	logger.Info("exiting", zap.String("reason", "interrupted"))
}

func confirm(cfg *config.Config, provider string) bool {
	prompt := promptui.Select{
		Label: fmt.Sprintf("Apply to %s in %s using %s. Proceed?",
			strings.Join(cfg.Positions, ", "),
			strings.Join(cfg.Locations, ", "),
			provider,
		),
		Items: []string{PromptYes, PromptNo},
	}

	_, action, err := prompt.Run()
	return err == nil && action == PromptYes
}

// loadCredentials tolerates missing values: with a warmed-up chrome profile
// the cookie session logs in without them.
func loadCredentials() linkedin.Credentials {
	email, _ := secrets.Load(secrets.Source{Name: "linkedin email", Env: envLinkedInEmail})
	password, _ := secrets.Load(secrets.Source{Name: "linkedin password", Env: envLinkedInPassword})
	return linkedin.Credentials{Email: email, Password: password}
}

func flagString(cmd *cobra.Command, name string) string {
	value, _ := cmd.Flags().GetString(name)
	return value
}

func flagFloat(cmd *cobra.Command, name string) float64 {
	value, _ := cmd.Flags().GetFloat64(name)
	return value
}
