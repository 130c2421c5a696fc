// Command gynstage stages gynecologic cancers from TNM findings and serves the
// staging engine over HTTP and MCP.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lionsmanic/gyn-cancer-staging/internal/app"
	"github.com/lionsmanic/gyn-cancer-staging/internal/config"
	"github.com/lionsmanic/gyn-cancer-staging/internal/domain"
)

var (
	v          *viper.Viper
	configFile string

	configManager *config.Manager
	logger        *logrus.Logger
	closeLog      = func() error { return nil }
)

func newRootCmd() *cobra.Command {
	v = viper.New()
	configFile = ""

	root := &cobra.Command{
		Use:   "gynstage",
		Short: "Gynecologic cancer TNM/FIGO staging",
		Long: `gynstage maps TNM findings to FIGO stages for endometrial, ovarian, cervical,
uterine sarcoma, vulvar melanoma, vaginal, vulvar and gestational trophoblastic
cancers, and scores GTN prognostic risk.`,
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
	}
	addPersistentFlags(root)
	registerCommands(root)
	return root
}

func loadConfig(cmd *cobra.Command, args []string) error {
	opts := []config.ManagerOption{config.WithViper(v)}
	if configFile != "" {
		opts = append(opts, config.WithConfigFile(configFile))
	}
	m, err := config.NewManager(opts...)
	if err != nil {
		return err
	}
	if err := m.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	l, closeFn, err := app.NewLogger(m.GetConfig().Logging)
	if err != nil {
		return err
	}
	_ = closeLog()
	configManager, logger, closeLog = m, l, closeFn
	return nil
}

func main() {
	err := newRootCmd().Execute()
	_ = closeLog()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addPersistentFlags(root *cobra.Command) {
	flags := root.PersistentFlags()
	flags.StringVarP(&configFile, "config", "c", "", "config file (default ./config.yaml)")
	flags.Bool("json", false, "output JSON")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (json, text)")
	_ = v.BindPFlag("json", flags.Lookup("json"))
	_ = v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = v.BindPFlag("logging.format", flags.Lookup("log-format"))
}

func registerCommands(root *cobra.Command) {
	root.AddCommand(classifyCmd())
	root.AddCommand(gtnRiskCmd())
	root.AddCommand(protocolsCmd())
	root.AddCommand(describeCmd())
	root.AddCommand(readReportCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(feedbackCmd())
	root.AddCommand(setupCmd())
}

func cfg() *domain.Config {
	return configManager.GetConfig()
}

func jsonOutput() bool {
	return v.GetBool("json")
}

func printJSON(w io.Writer, value any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(value)
}
