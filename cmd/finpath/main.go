package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/finpath/trajectory-engine/internal/calculation"
	"github.com/finpath/trajectory-engine/internal/config"
	"github.com/finpath/trajectory-engine/internal/domain"
	"github.com/finpath/trajectory-engine/internal/output"
	"github.com/finpath/trajectory-engine/internal/scanner"
)

// version is overridden at build time via -ldflags.
var version = "dev"

func main() {
	// Load env from .env before any flag or env lookup.
	godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "finpath",
		Short: "Multi-year financial trajectory projection",
		Long: "finpath projects income, taxes, debts, and assets year by year,\n" +
			"compares what-if scenarios, and scans trajectories for missed opportunities.",
		SilenceUsage: true,
	}
	root.AddCommand(
		newGenerateCmd(),
		newCompareCmd(),
		newScanCmd(),
		newExampleCmd(),
		newVersionCmd(),
	)
	return root
}

func newLogger() *logrus.Logger {
	logger := logrus.New()
	if os.Getenv("FINPATH_LOG_JSON") == "1" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	level, err := logrus.ParseLevel(os.Getenv("FINPATH_LOG_LEVEL"))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	return logger
}

// buildEngine assembles a projection engine with logging wired up. A zero
// baseYear means the current calendar year.
func buildEngine(baseYear int) *calculation.Engine {
	var engine *calculation.Engine
	if baseYear > 0 {
		engine = calculation.NewEngineWithBaseYear(baseYear)
	} else {
		engine = calculation.NewEngine()
	}
	engine.SetLogger(newLogger())
	return engine
}

func loadProfile(path string) (*domain.Profile, error) {
	return config.NewProfileLoader().LoadProfile(path)
}

func newGenerateCmd() *cobra.Command {
	var (
		format   string
		outDir   string
		years    int
		baseYear int
	)
	cmd := &cobra.Command{
		Use:   "generate <profile.yaml>",
		Short: "Project a financial trajectory from a profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := loadProfile(args[0])
			if err != nil {
				return err
			}
			engine := buildEngine(baseYear)

			var trajectory *domain.Trajectory
			if years > 0 {
				trajectory, err = engine.GenerateQuick(cmd.Context(), profile, years)
			} else {
				trajectory, err = engine.GenerateTrajectory(cmd.Context(), profile)
			}
			if err != nil {
				return err
			}

			if outDir == "" {
				if output.NormalizeFormatName(format) == "all" {
					return fmt.Errorf("format all requires --output-dir")
				}
				f, err := output.GetFormatterByName(format)
				if err != nil {
					return err
				}
				data, err := f.Format(trajectory)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			if output.NormalizeFormatName(format) == "all" {
				paths, err := output.WriteAllReports(trajectory, outDir)
				for _, path := range paths {
					fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
				}
				return err
			}
			path, err := output.WriteReport(trajectory, format, outDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "console",
		"report format: console, csv, json, xlsx, or all (with --output-dir)")
	cmd.Flags().StringVarP(&outDir, "output-dir", "o", "",
		"write a timestamped report file here instead of stdout")
	cmd.Flags().IntVar(&years, "years", 0, "project only the first N years")
	cmd.Flags().IntVar(&baseYear, "base-year", 0,
		"first calendar year of the projection (default: current year)")
	return cmd
}

func newCompareCmd() *cobra.Command {
	var (
		name     string
		format   string
		baseYear int
	)
	cmd := &cobra.Command{
		Use:   "compare <baseline.yaml> <alternate.yaml>",
		Short: "Compare the trajectories of two profiles",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			baseline, err := loadProfile(args[0])
			if err != nil {
				return err
			}
			alternate, err := loadProfile(args[1])
			if err != nil {
				return err
			}
			engine := buildEngine(baseYear)

			baseTrajectory, err := engine.GenerateTrajectory(cmd.Context(), baseline)
			if err != nil {
				return err
			}
			altTrajectory, err := engine.GenerateTrajectory(cmd.Context(), alternate)
			if err != nil {
				return err
			}

			if name == "" {
				name = alternate.Name
			}
			if name == "" {
				name = "Alternate scenario"
			}
			comparison, err := engine.CompareTrajectories(baseTrajectory, altTrajectory, nil, name)
			if err != nil {
				return err
			}

			if output.NormalizeFormatName(format) == "json" {
				data, err := json.MarshalIndent(comparison, "", "  ")
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			report, err := output.ComparisonReport(comparison)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(report)
			return err
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "scenario name (default: alternate profile name)")
	cmd.Flags().StringVarP(&format, "format", "f", "console", "report format: console or json")
	cmd.Flags().IntVar(&baseYear, "base-year", 0,
		"first calendar year of both projections (default: current year)")
	return cmd
}

func newScanCmd() *cobra.Command {
	var (
		format   string
		baseYear int
	)
	cmd := &cobra.Command{
		Use:   "scan <profile.yaml>",
		Short: "Scan a projected trajectory for missed opportunities",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := loadProfile(args[0])
			if err != nil {
				return err
			}
			s := scanner.NewScanner(buildEngine(baseYear))
			findings, err := s.Scan(cmd.Context(), profile, nil)
			if err != nil {
				return err
			}

			if output.NormalizeFormatName(format) == "json" {
				data, err := json.MarshalIndent(findings, "", "  ")
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}

			w := cmd.OutOrStdout()
			if len(findings) == 0 {
				fmt.Fprintln(w, "No findings. The profile looks healthy.")
				return nil
			}
			for _, f := range findings {
				fmt.Fprintf(w, "[%s] %s\n", f.Severity, f.Summary)
				if f.Detail != "" {
					fmt.Fprintf(w, "    %s\n", f.Detail)
				}
				if f.HasImpact {
					fmt.Fprintf(w, "    Estimated impact: %s\n", f.Impact.Format())
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "console", "report format: console or json")
	cmd.Flags().IntVar(&baseYear, "base-year", 0,
		"first calendar year of the projection (default: current year)")
	return cmd
}

func newExampleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "example [file]",
		Short: "Write a fully populated example profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(config.CreateExampleProfile())
			if err != nil {
				return err
			}
			if len(args) == 0 {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(args[0], data, 0644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", args[0])
			return nil
		},
	}
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the finpath version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "finpath %s\n", version)
		},
	}
}
