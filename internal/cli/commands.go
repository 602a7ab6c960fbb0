package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dehvCurtis/rustdefend/internal/cache"
	"github.com/dehvCurtis/rustdefend/internal/config"
	"github.com/dehvCurtis/rustdefend/internal/engine"
	"github.com/dehvCurtis/rustdefend/internal/logging"
	"github.com/dehvCurtis/rustdefend/internal/model"
	"github.com/dehvCurtis/rustdefend/internal/plugins"
	"github.com/dehvCurtis/rustdefend/internal/report"
	"github.com/dehvCurtis/rustdefend/internal/rules"
	"github.com/dehvCurtis/rustdefend/internal/tui"
)

const scannerVersion = "0.3.0"

// ErrFindingsPresent signals a successful scan that produced findings, so
// main can exit 1 instead of the configuration-error code.
var ErrFindingsPresent = errors.New("findings present")

func AddCommands(root *cobra.Command) {
	root.AddCommand(newScanCmd())
	root.AddCommand(newDetectorsCmd())
	root.AddCommand(newInitCmd())
}

func newScanCmd() *cobra.Command {
	var (
		chainsFlag    []string
		severityFlag  []string
		confidence    string
		detectorsFlag []string
		format        string
		outFile       string
		rulesFile     string
		configFile    string
		baselineFile  string
		saveBaseline  string
		incremental   bool
		cachePath     string
		jobs          int
		quiet         bool
		verbose       bool
		useTUI        bool
	)
	cmd := &cobra.Command{
		Use:   "scan [path]",
		Short: "Scan Rust smart contracts for vulnerabilities",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) > 0 {
				root = args[0]
			}
			logging.Init(verbose, quiet)

			opts, ruleContent, err := buildOptions(root, scanFlags{
				chains:       chainsFlag,
				severities:   severityFlag,
				confidence:   confidence,
				detectors:    detectorsFlag,
				rulesFile:    rulesFile,
				configFile:   configFile,
				baseline:     baselineFile,
				saveBaseline: saveBaseline,
				incremental:  incremental,
				cachePath:    cachePath,
				jobs:         jobs,
			})
			if err != nil {
				return err
			}
			opts.CacheVersion = cache.VersionKey(
				scannerVersion+"|"+strings.Join(chainsFlag, ",")+"|"+
					strings.Join(severityFlag, ",")+"|"+strings.Join(detectorsFlag, ","),
				ruleContent)

			eng, err := engine.New(opts)
			if err != nil {
				return err
			}
			result, err := eng.Scan(cmd.Context(), root)
			if err != nil {
				return err
			}

			if useTUI {
				if err := tui.Run(result.Findings); err != nil {
					return err
				}
			} else if err := writeReport(cmd, result, format, outFile); err != nil {
				return err
			}

			if len(result.Findings) > 0 {
				return ErrFindingsPresent
			}
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&chainsFlag, "chain", nil, "Override chain classification (solana|cosmwasm|near|ink, repeatable)")
	cmd.Flags().StringSliceVar(&severityFlag, "severity", nil, "Only run detectors of these severities")
	cmd.Flags().StringVar(&confidence, "confidence", "", "Drop findings below this confidence (low|medium|high)")
	cmd.Flags().StringSliceVar(&detectorsFlag, "detector", nil, "Only run the listed detector ids")
	cmd.Flags().StringVarP(&format, "format", "f", "text", "Output format: text|json|sarif")
	cmd.Flags().StringVarP(&outFile, "out", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().StringVar(&rulesFile, "rules", "", "Load custom [[rules]] from a TOML file")
	cmd.Flags().StringVar(&configFile, "config", "", "Explicit project config (default: .rustdefend.toml at the root)")
	cmd.Flags().StringVar(&baselineFile, "baseline", "", "Suppress findings recorded in this baseline file")
	cmd.Flags().StringVar(&saveBaseline, "save-baseline", "", "Write the scan's fingerprints to a baseline file")
	cmd.Flags().BoolVar(&incremental, "incremental", false, "Reuse cached results for unchanged files")
	cmd.Flags().StringVar(&cachePath, "cache-path", "", "Cache file location (default: .rustdefend-cache.json at the root)")
	cmd.Flags().IntVar(&jobs, "jobs", 0, "Number of parallel workers (default: NumCPU)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress diagnostic logging")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.Flags().BoolVar(&useTUI, "tui", false, "Browse findings interactively")
	return cmd
}

type scanFlags struct {
	chains       []string
	severities   []string
	confidence   string
	detectors    []string
	rulesFile    string
	configFile   string
	baseline     string
	saveBaseline string
	incremental  bool
	cachePath    string
	jobs         int
}

// buildOptions validates flags and loads config and rule files. Every failure
// here is a configuration error. Returns the rule file content for the cache
// version key.
func buildOptions(root string, f scanFlags) (engine.Options, []byte, error) {
	var opts engine.Options

	for _, raw := range f.chains {
		c, ok := model.ParseChain(raw)
		if !ok {
			return opts, nil, fmt.Errorf("unknown chain %q", raw)
		}
		opts.Chains = append(opts.Chains, c)
	}
	for _, raw := range f.severities {
		s, ok := model.ParseSeverity(raw)
		if !ok {
			return opts, nil, fmt.Errorf("unknown severity %q", raw)
		}
		opts.Severities = append(opts.Severities, s)
	}
	if f.confidence != "" {
		if _, ok := model.ParseConfidence(f.confidence); !ok {
			return opts, nil, fmt.Errorf("unknown confidence %q", f.confidence)
		}
	}
	opts.DetectorIDs = f.detectors

	if f.configFile != "" {
		cfg, err := config.Load(f.configFile)
		if err != nil {
			return opts, nil, err
		}
		opts.Config = cfg
	} else {
		opts.Config = config.LoadOrDefault(root)
	}
	if f.confidence != "" {
		opts.Config.MinConfidence = f.confidence
	}

	var ruleContent []byte
	if f.rulesFile != "" {
		detectors, err := rules.Load(f.rulesFile)
		if err != nil {
			return opts, nil, err
		}
		opts.Rules = detectors
		ruleContent, _ = os.ReadFile(f.rulesFile)
	}

	opts.BaselinePath = f.baseline
	opts.SaveBaselinePath = f.saveBaseline
	opts.Incremental = f.incremental
	opts.CachePath = f.cachePath
	opts.Jobs = f.jobs
	return opts, ruleContent, nil
}

func writeReport(cmd *cobra.Command, result *model.ScanResult, format, outFile string) error {
	reporter, err := report.ForFormat(format)
	if err != nil {
		return err
	}
	if outFile == "" {
		return reporter.Write(cmd.OutOrStdout(), result)
	}
	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()
	return reporter.Write(f, result)
}

func newDetectorsCmd() *cobra.Command {
	var chainFlag string
	cmd := &cobra.Command{Use: "detectors", Short: "Inspect the detector registry"}
	list := &cobra.Command{
		Use:   "list",
		Short: "List built-in detectors",
		RunE: func(cmd *cobra.Command, args []string) error {
			var filter model.Chain
			if chainFlag != "" {
				c, ok := model.ParseChain(chainFlag)
				if !ok {
					return fmt.Errorf("unknown chain %q", chainFlag)
				}
				filter = c
			}
			reg := plugins.NewRegistry()
			reg.RegisterBuiltin()
			for _, d := range reg.Detectors() {
				m := d.Meta()
				if filter != "" && m.Chain != filter {
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %-10s %-8s %-6s %s\n",
					m.ID, m.Chain.Display(), m.Severity, m.Confidence, m.Name)
			}
			return nil
		},
	}
	list.Flags().StringVar(&chainFlag, "chain", "", "Only list detectors for one chain")
	cmd.AddCommand(list)
	return cmd
}
