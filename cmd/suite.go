package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/eykd/storytest-go/internal/suite"
)

// SuiteIO handles I/O for the suite command.
type SuiteIO interface {
	// ReadSuite reads the suite YAML file at path.
	ReadSuite(path string) ([]byte, error)
	// ReadStory reads a story file referenced by the suite.
	ReadStory(path string) ([]byte, error)
}

// suiteOutput is the JSON output schema for the suite command.
type suiteOutput struct {
	Version string         `json:"version"`
	Results []suite.Result `json:"results"`
	Summary suite.Summary  `json:"summary"`
}

// NewSuiteCmd creates the suite subcommand.
func NewSuiteCmd(io SuiteIO, catalog CatalogSource) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "suite <suite.yaml>",
		Short:        "Run every story listed in a YAML suite",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonMode, _ := cmd.Flags().GetBool("json")
			path := args[0]

			data, err := io.ReadSuite(path)
			if err != nil {
				return fmt.Errorf("reading suite: %w", err)
			}
			s, err := suite.Parse(data)
			if err != nil {
				return err
			}
			c, err := catalog()
			if err != nil {
				return fmt.Errorf("loading types: %w", err)
			}

			runner := &suite.Runner{
				Engine:   newEngine(cmd),
				Catalog:  c,
				Logger:   loggerFrom(cmd),
				ReadFile: io.ReadStory,
			}
			results := runner.Run(s, filepath.Dir(path))
			if results == nil {
				results = []suite.Result{}
			}
			sum := suite.Summarize(results)

			if jsonMode {
				out := suiteOutput{Version: "1", Results: results, Summary: sum}
				if err := json.NewEncoder(cmd.OutOrStdout()).Encode(out); err != nil {
					return fmt.Errorf("encoding output: %w", err)
				}
			} else {
				w := cmd.OutOrStdout()
				for _, r := range results {
					printRunOutput(w, runOutput{Target: r.Name, Status: string(r.Status), Report: r.Report, Error: r.Error})
				}
				fmt.Fprintf(w, "%d passed, %d failed, %d errors\n", sum.Passed, sum.Failed, sum.Errors)
			}

			if !sum.OK() {
				return fmt.Errorf("suite failed: %d failed, %d errors", sum.Failed, sum.Errors)
			}
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "Output results as JSON")

	return cmd
}

// fileSuiteIO implements SuiteIO using OS file I/O.
type fileSuiteIO struct{}

func newDefaultSuiteIO() *fileSuiteIO {
	return &fileSuiteIO{}
}

func (f *fileSuiteIO) ReadSuite(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (f *fileSuiteIO) ReadStory(path string) ([]byte, error) {
	return os.ReadFile(path)
}
