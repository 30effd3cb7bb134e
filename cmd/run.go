package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/eykd/storytest-go/internal/engine"
	"github.com/eykd/storytest-go/internal/story"
)

// StoryReader reads story files.
type StoryReader interface {
	ReadStory(path string) ([]byte, error)
}

// runOutput is the JSON output schema for the run command.
type runOutput struct {
	Version string         `json:"version"`
	Target  string         `json:"target"`
	Status  string         `json:"status"`
	Report  *engine.Report `json:"report,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// NewRunCmd creates the run subcommand.
func NewRunCmd(reader StoryReader, catalog CatalogSource) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "run <story-file|story.json>",
		Short:        "Run a story against a registered type",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, _ := cmd.Flags().GetString("type")
			nested, _ := cmd.Flags().GetBool("nested")
			jsonMode, _ := cmd.Flags().GetBool("json")

			typ, err := lookupType(catalog, target)
			if err != nil {
				return err
			}
			data, err := reader.ReadStory(args[0])
			if err != nil {
				return fmt.Errorf("reading story: %w", err)
			}

			st, err := loadStory(args[0], data)
			if err == nil {
				eng := newEngine(cmd)
				if nested {
					err = eng.RunStoryNested(st, typ)
				} else {
					err = eng.RunStory(st, typ)
				}
			}

			out := newRunOutput(typ.Name(), err)
			if jsonMode {
				if encErr := json.NewEncoder(cmd.OutOrStdout()).Encode(out); encErr != nil {
					return fmt.Errorf("encoding output: %w", encErr)
				}
			} else {
				printRunOutput(cmd.OutOrStdout(), out)
			}

			switch out.Status {
			case "passed":
				return nil
			case "failed":
				return &reportedError{summary: "story failed", err: err}
			default:
				return &reportedError{summary: "story aborted", err: err}
			}
		},
	}

	cmd.Flags().StringP("type", "t", "", "Registered target type to run the story against")
	cmd.Flags().Bool("nested", false, "Search nested types when the target declares no matching Given")
	cmd.Flags().Bool("json", false, "Output result as JSON")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

// loadStory parses story text, or decodes the JSON document written by
// stt parse when path ends in .json.
func loadStory(path string, data []byte) (story.Story, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		st, err := story.Deserialize(data)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		return st, nil
	}
	return story.Parse(string(data))
}

// reportedError is returned once the run's outcome has been written to
// stdout. Its message is only a summary.
type reportedError struct {
	summary string
	err     error
}

func (e *reportedError) Error() string { return e.summary }

func (e *reportedError) Unwrap() error { return e.err }

func newRunOutput(target string, err error) runOutput {
	out := runOutput{Version: "1", Target: target, Status: "passed"}
	var rep *engine.Report
	switch {
	case err == nil:
	case errors.As(err, &rep):
		out.Status = "failed"
		out.Report = rep
	default:
		out.Status = "error"
		out.Error = err.Error()
	}
	return out
}

func printRunOutput(w io.Writer, out runOutput) {
	switch out.Status {
	case "passed":
		fmt.Fprintf(w, "PASS %s\n", sanitizeText(out.Target))
	case "failed":
		fmt.Fprintf(w, "FAIL %s: %d then sentence(s) failed\n", sanitizeText(out.Target), out.Report.Count)
		fmt.Fprintf(w, "  first:    %s\n", sanitizeText(out.Report.Sentence.Raw))
		fmt.Fprintf(w, "  expected: %s\n", sanitizeText(out.Report.Expected))
		fmt.Fprintf(w, "  actual:   %s\n", sanitizeText(out.Report.Actual))
		if out.Report.Diff != "" {
			fmt.Fprintf(w, "  diff:\n%s", out.Report.Diff)
		}
	default:
		fmt.Fprintf(w, "ERROR %s: %s\n", sanitizeText(out.Target), sanitizeText(out.Error))
	}
}

// fileStoryReader implements StoryReader using OS file I/O.
type fileStoryReader struct{}

func newDefaultStoryReader() *fileStoryReader {
	return &fileStoryReader{}
}

func (r *fileStoryReader) ReadStory(path string) ([]byte, error) {
	return os.ReadFile(path)
}
