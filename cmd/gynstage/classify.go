package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lionsmanic/gyn-cancer-staging/internal/domain"
	"github.com/lionsmanic/gyn-cancer-staging/internal/service"
)

func classifyCmd() *cobra.Command {
	var file string
	var set map[string]string
	cmd := &cobra.Command{
		Use:   "classify <protocol>",
		Short: "Stage a finding set",
		Example: `  gynstage classify cervical --set t=T1b1 --set n=N0 --set m=M0
  gynstage classify endometrial -f findings.yaml --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			protocol, err := domain.ParseProtocol(args[0])
			if err != nil {
				return err
			}
			findings, err := loadFindings(cmd.InOrStdin(), file, set)
			if err != nil {
				return err
			}
			raw, err := json.Marshal(findings)
			if err != nil {
				return fmt.Errorf("failed to encode findings: %w", err)
			}

			staging := service.NewStagingService(logger)
			result, err := staging.ClassifyJSON(cmd.Context(), protocol, raw)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return printJSON(cmd.OutOrStdout(), result)
			}
			renderResult(cmd.OutOrStdout(), result)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML or JSON findings file (- for stdin)")
	cmd.Flags().StringToStringVar(&set, "set", nil, "finding field=value, repeatable")
	return cmd
}

func gtnRiskCmd() *cobra.Command {
	var file string
	var set map[string]string
	cmd := &cobra.Command{
		Use:   "gtn-risk",
		Short: "Score GTN prognostic factors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			findings, err := loadFindings(cmd.InOrStdin(), file, set)
			if err != nil {
				return err
			}
			raw, err := json.Marshal(findings)
			if err != nil {
				return fmt.Errorf("failed to encode risk factors: %w", err)
			}
			input, err := service.DecodeGTNRiskInput(raw)
			if err != nil {
				return err
			}

			assessment, err := service.NewStagingService(logger).AssessGTNRisk(cmd.Context(), input)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return printJSON(cmd.OutOrStdout(), assessment)
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"Factor", "Option", "Score"})
			for _, f := range assessment.Factors {
				tw.AppendRow(table.Row{f.Factor, f.Label, f.Weight})
			}
			tw.AppendFooter(table.Row{"Total", assessment.Category, assessment.Score})
			tw.Render()
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML or JSON risk factor file (- for stdin)")
	cmd.Flags().StringToStringVar(&set, "set", nil, "factor=option, repeatable")
	return cmd
}

func protocolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "protocols",
		Short: "List staging protocols",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOutput() {
				type info struct {
					ID   domain.Protocol `json:"id"`
					Name string          `json:"name"`
				}
				out := make([]info, 0, len(domain.Protocols))
				for _, p := range domain.Protocols {
					out = append(out, info{ID: p, Name: p.DisplayName()})
				}
				return printJSON(cmd.OutOrStdout(), out)
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.AppendHeader(table.Row{"ID", "Name"})
			for _, p := range domain.Protocols {
				tw.AppendRow(table.Row{p, p.DisplayName()})
			}
			tw.Render()
			return nil
		},
	}
}

func describeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <protocol>",
		Short: "Show the fields a protocol accepts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			protocol, err := domain.ParseProtocol(args[0])
			if err != nil {
				return err
			}
			fields, err := service.NewStagingService(logger).Describe(protocol)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return printJSON(cmd.OutOrStdout(), fields)
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			tw.SetTitle(protocol.DisplayName())
			tw.AppendHeader(table.Row{"Field", "Kind", "Code", "Description"})
			for _, f := range fields {
				if len(f.Options) == 0 {
					tw.AppendRow(table.Row{f.Field, f.Kind, "", ""})
					continue
				}
				for i, opt := range f.Options {
					name, kind := f.Field, f.Kind
					if i > 0 {
						name, kind = "", ""
					}
					tw.AppendRow(table.Row{name, kind, opt.Code, opt.Description})
				}
				tw.AppendSeparator()
			}
			tw.Render()
			return nil
		},
	}
}

func renderResult(w io.Writer, result *domain.ClassificationResult) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetTitle(result.Protocol.DisplayName())
	tw.AppendRow(table.Row{"TNM", result.TNMString()})
	tw.AppendRow(table.Row{"FIGO", result.FIGOStage})
	tw.AppendRow(table.Row{"Staged", result.Staged})
	if result.MatchedRule != "" {
		tw.AppendRow(table.Row{"Rule", result.MatchedRule})
	}
	if result.Risk != nil {
		tw.AppendRow(table.Row{"Risk", fmt.Sprintf("%d (%s)", result.Risk.Score, result.Risk.Category)})
	}
	if result.Notes != "" {
		tw.AppendRow(table.Row{"Notes", result.Notes})
	}
	tw.Render()
}

// loadFindings reads a YAML (or JSON) findings document and applies --set
// overrides on top of it.
func loadFindings(stdin io.Reader, file string, set map[string]string) (map[string]any, error) {
	findings := map[string]any{}

	if file != "" {
		var data []byte
		var err error
		if file == "-" {
			data, err = io.ReadAll(stdin)
		} else {
			data, err = os.ReadFile(file)
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read findings: %w", err)
		}
		if err := yaml.Unmarshal(data, &findings); err != nil {
			return nil, fmt.Errorf("failed to parse findings: %w", err)
		}
		if findings == nil {
			findings = map[string]any{}
		}
	}

	for key, value := range set {
		findings[strings.TrimSpace(key)] = scalar(value)
	}
	if len(findings) == 0 {
		return nil, fmt.Errorf("no findings given: use --file or --set")
	}
	return findings, nil
}

// scalar keeps codes as strings but lets boolean flags through as booleans.
func scalar(s string) any {
	if b, err := strconv.ParseBool(s); err == nil && (s == "true" || s == "false") {
		return b
	}
	return s
}
