// Command automate fires deal stage automation from the command line, for
// one deal or as a backfill over many.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/sangkips/dealflow-api/internal/application/service"
	"github.com/sangkips/dealflow-api/internal/bootstrap"
	"github.com/sangkips/dealflow-api/internal/config"
	"github.com/sangkips/dealflow-api/internal/domain/enum"
	domainRepo "github.com/sangkips/dealflow-api/internal/domain/repository"
	"github.com/sangkips/dealflow-api/pkg/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	rulesPath  string
	actorID    string
	dealID     string
	triggerArg string
	dealIDs    []string
	stageName  string
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "automate",
		Short:         "Run deal stage automation against the entity store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&rulesPath, "rules", "", "YAML rule table (defaults to AUTOMATION_RULES_FILE or the built-in table)")
	root.PersistentFlags().StringVar(&actorID, "actor", "", "User id recorded on activity rows")

	triggerCmd := &cobra.Command{
		Use:   "trigger",
		Short: "Fire one trigger for one deal",
		RunE:  runTrigger,
	}
	triggerCmd.Flags().StringVar(&dealID, "deal", "", "Deal id")
	triggerCmd.Flags().StringVar(&triggerArg, "trigger", "", "Trigger kind, e.g. order_created")
	_ = triggerCmd.MarkFlagRequired("deal")
	_ = triggerCmd.MarkFlagRequired("trigger")

	backfillCmd := &cobra.Command{
		Use:   "backfill",
		Short: "Fire one trigger for many deals, continuing past failures",
		RunE:  runBackfill,
	}
	backfillCmd.Flags().StringVar(&triggerArg, "trigger", "", "Trigger kind, e.g. invoice_paid")
	backfillCmd.Flags().StringSliceVar(&dealIDs, "deals", nil, "Comma separated deal ids")
	backfillCmd.Flags().StringVar(&stageName, "stage", "", "Select every deal currently in the first stage with this name")
	_ = backfillCmd.MarkFlagRequired("trigger")

	root.AddCommand(triggerCmd, backfillCmd)
	return root
}

// env is what a subcommand needs to run
type env struct {
	store    *domainRepo.Store
	services *bootstrap.Services
	log      *zap.Logger
	close    func()
}

func setup(ctx context.Context) (*env, error) {
	cfg := config.Load()
	if rulesPath != "" {
		cfg.Automation.RulesFile = rulesPath
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	store, closeStore, err := bootstrap.OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	rules, err := bootstrap.LoadRules(cfg.Automation.RulesFile, log)
	if err != nil {
		closeStore()
		return nil, err
	}

	return &env{
		store:    store,
		services: bootstrap.NewServices(store, cfg.Automation, rules, log),
		log:      log,
		close: func() {
			closeStore()
			_ = log.Sync()
		},
	}, nil
}

func actorContext(ctx context.Context) (context.Context, error) {
	if actorID == "" {
		return ctx, nil
	}
	id, err := uuid.Parse(actorID)
	if err != nil {
		return nil, fmt.Errorf("invalid --actor: %w", err)
	}
	return service.WithActor(ctx, id), nil
}

func parseTrigger(value string) (enum.Trigger, error) {
	trigger := enum.Trigger(value)
	if !trigger.IsValid() {
		return "", fmt.Errorf("unknown trigger %q", value)
	}
	return trigger, nil
}

func runTrigger(cmd *cobra.Command, _ []string) error {
	trigger, err := parseTrigger(triggerArg)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(dealID)
	if err != nil {
		return fmt.Errorf("invalid --deal: %w", err)
	}
	ctx, err := actorContext(cmd.Context())
	if err != nil {
		return err
	}

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	result, err := e.services.Automation.AutomateDealStage(ctx, trigger, id, nil)
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}

func runBackfill(cmd *cobra.Command, _ []string) error {
	trigger, err := parseTrigger(triggerArg)
	if err != nil {
		return err
	}
	if len(dealIDs) == 0 && stageName == "" {
		return fmt.Errorf("one of --deals or --stage is required")
	}
	ctx, err := actorContext(cmd.Context())
	if err != nil {
		return err
	}

	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.close()

	ids, err := selectDeals(ctx, e)
	if err != nil {
		return err
	}

	items := make([]service.BatchItem, len(ids))
	for i, id := range ids {
		items[i] = service.BatchItem{DealID: id, Trigger: trigger}
	}

	result := e.services.Automation.BatchAutomateDealStages(ctx, items)
	e.log.Info("Backfill finished",
		zap.String("trigger", trigger.String()),
		zap.Int("success", result.Success),
		zap.Int("failed", result.Failed),
	)
	return printJSON(cmd.OutOrStdout(), result)
}

// selectDeals returns the --deals ids followed by the deals in --stage
func selectDeals(ctx context.Context, e *env) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(dealIDs))
	for _, raw := range dealIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid deal id %q: %w", raw, err)
		}
		ids = append(ids, id)
	}

	if stageName != "" {
		stageID, err := e.services.Resolver.ResolveStageID(ctx, stageName, nil)
		if err != nil {
			return nil, err
		}
		if stageID == nil {
			return nil, fmt.Errorf("stage %q not found", stageName)
		}
		inStage, err := e.store.Deals.ListIDsByStage(ctx, *stageID)
		if err != nil {
			return nil, err
		}
		ids = append(ids, inStage...)
	}
	return ids, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
