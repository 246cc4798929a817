// Package cmd provides the root command and CLI setup for refit.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"refit.dev/pkg/refit/internal/adapter"
	"refit.dev/pkg/refit/internal/controller"
	"refit.dev/pkg/refit/internal/domain"
	m "refit.dev/pkg/refit/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var writer adapter.ChangeSetWriter
var upgrader domain.Upgrader
var ui controller.UI

// rulesFileFlag points at the YAML ruleset driving the migration.
var rulesFileFlag string

// excludePatterns is a root-level flag that filters files for applicable commands.
var excludePatterns []string

// journalPathFlag is where apply records its operations for later viewing.
var journalPathFlag string

// verboseFlag switches the file logger to debug level.
var verboseFlag bool

func init() {
	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	writer = adapter.NewDiskWriter(fsAdapter)
	upgrader = domain.NewUpgrader(fsAdapter)
}

const rootLongDescription = `Refit is an automated source migration tool. It scans a project with a set
of upgrade rules, shows what would change as a colored diff with per-line
warnings, and applies the change set to disk once you are satisfied.

The rules live in a YAML ruleset file (see 'refit init' for the config and
the --rules flag for the ruleset location).`

const planLongDescription = `Scan the given path (default: current directory) with the configured
ruleset and show the resulting change set as a diff preview, without
touching any file.`

const applyLongDescription = `Scan the given path (default: current directory) with the configured
ruleset and write the resulting change set to disk. The applied operations
are journaled and can be reviewed later with 'refit view'.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refit",
		Short: "Automated source migration tool",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger("", verboseFlag)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

// configureRootFlags registers the persistent flags. Defaults come from
// the config constants; reading them through viper here would race the
// package init order, as flags are registered before viper's defaults.
// Config and env values still win over unchanged flags via the binding.
func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&rulesFileFlag, rulesFlagName, "r",
			defaultRulesFile,
			"path to the YAML ruleset file",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(rulesFlagName), rulesConfigKey)

	cmd.PersistentFlags().StringArrayVarP(&excludePatterns, excludeFlagName, "x", nil, "exclude files matching regex (can be repeated)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(excludeFlagName), excludeConfigKey)

	cmd.PersistentFlags().StringVar(&journalPathFlag, journalFlagName, defaultJournal, "path of the journal recording applied operations")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(journalFlagName), journalConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", defaultLogVerbose, "log at debug level")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func parseRoot(args []string) m.Path {
	if len(args) == 0 {
		return m.Path(".")
	}

	return m.Path(args[0])
}

// buildPlan loads the configured ruleset and runs the upgrader over root.
func buildPlan(ctx context.Context, args []string) (*m.ChangeSet, error) {
	ruleset, err := adapter.LoadRuleset(m.Path(viper.GetString(rulesConfigKey)))
	if err != nil {
		return nil, err
	}

	rules, err := domain.CompileRules(ruleset.Rules)
	if err != nil {
		return nil, err
	}

	return upgrader.Plan(ctx, domain.PlanArgs{
		Root:     parseRoot(args),
		Rules:    rules,
		Exclude:  viper.GetStringSlice(excludeConfigKey),
		Parallel: viper.GetInt(parallelConfigKey),
	})
}
