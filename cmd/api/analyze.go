package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/healthsync/internal/application"
	appai "github.com/bryanwahyu/healthsync/internal/application/ai"
	"github.com/bryanwahyu/healthsync/internal/domain/analysis"
	"github.com/bryanwahyu/healthsync/internal/infra/pdf"
	"github.com/bryanwahyu/healthsync/internal/render"
)

// analyzeCmd runs one report file through the analysis pipeline without a database.
func analyzeCmd() *cobra.Command {
	var (
		file     string
		name     string
		age      int
		pdfOut   string
		provider string
		view     string
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze a lab report text file and print the result",
		RunE: func(cmd *cobra.Command, _ []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return err
			}
			logger := newLogger("warn", true)

			apiKey := os.Getenv("AI_API_KEY")
			client, err := newAIClient(cmd.Context(), provider, apiKey, "", "")
			if err != nil {
				return err
			}

			patient := analysis.PatientInfo{Name: name}
			if cmd.Flags().Changed("age") {
				patient.Age = &age
			}

			svc := appai.NewService(client, application.SystemClock{}, logger)
			res := svc.AnalyzeLabReport(cmd.Context(), string(data), patient)
			if !res.Success {
				return errors.New(res.Error)
			}

			out := cmd.OutOrStdout()
			if view != "" {
				v, err := render.ParseView(view)
				if err != nil {
					return err
				}
				rec := &analysis.Record{AnalysisText: res.Analysis, Structured: res.Structured}
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(render.Render(render.SourceOf(rec), v, time.Now())); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(out, res.Analysis)
			}
			if res.IsDemo {
				fmt.Fprintln(cmd.ErrOrStderr(), "note: demo analysis (no AI key or quota exhausted)")
			}

			if pdfOut != "" {
				f, err := os.Create(pdfOut)
				if err != nil {
					return err
				}
				defer f.Close()
				meta := pdf.Meta{ReportName: file, PatientName: name, Date: time.Now().Format("Jan 2, 2006")}
				if err := pdf.Export(f, res.Analysis, meta); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "report text file")
	cmd.Flags().StringVar(&name, "name", "", "patient name")
	cmd.Flags().IntVar(&age, "age", 0, "patient age")
	cmd.Flags().StringVar(&pdfOut, "pdf", "", "also write the analysis as PDF to this path")
	cmd.Flags().StringVar(&provider, "provider", "local", "gemini | openai | local")
	cmd.Flags().StringVar(&view, "view", "", "print render blocks as JSON for this view (patient | doctor)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
