package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lionsmanic/gyn-cancer-staging/internal/app"
	"github.com/lionsmanic/gyn-cancer-staging/pkg/external"
)

func readReportCmd() *cobra.Command {
	var cancerContext, apiKey string
	cmd := &cobra.Command{
		Use:   "read-report <file>...",
		Short: "Read pathology report pages with Gemini (advisory only)",
		Example: `  GEMINI_API_KEY=... gynstage read-report page1.png page2.png --context cervical
  gynstage read-report report.txt --api-key $KEY`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctxValue, err := external.ParseCancerContext(cancerContext)
			if err != nil {
				return err
			}

			artifacts := make([]external.Artifact, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", path, err)
				}
				artifacts = append(artifacts, external.Artifact{Name: filepath.Base(path), Data: data})
			}

			if apiKey == "" {
				apiKey = os.Getenv("GEMINI_API_KEY")
			}

			c, err := app.NewCache(cmd.Context(), cfg().Cache, logger)
			if err != nil {
				return err
			}
			defer c.Close()

			reader := app.NewReportReader(cfg().AIBridge, c, logger)
			result, err := reader.Read(cmd.Context(), external.ReadRequest{
				Artifacts: artifacts,
				Context:   ctxValue,
				APIKey:    apiKey,
			})
			if err != nil {
				var bridgeErr *external.BridgeError
				if errors.As(err, &bridgeErr) {
					return errors.New(bridgeErr.Advisory())
				}
				return err
			}

			if jsonOutput() {
				return printJSON(cmd.OutOrStdout(), result)
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Text)
			fmt.Fprintln(cmd.ErrOrStderr(), "\nAI 判讀結果僅供輔助，需由醫師再次確認，且不影響系統計算之分期。")
			return nil
		},
	}
	cmd.Flags().StringVar(&cancerContext, "context", "", "cancer type hint (default auto-detect)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Gemini API key (default $GEMINI_API_KEY or ai_bridge.api_key)")
	return cmd
}
