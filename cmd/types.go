package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/eykd/storytest-go/internal/handler"
)

// typeJSON is the JSON output type for one registered type.
type typeJSON struct {
	Name      string        `json:"name"`
	Parent    string        `json:"parent,omitempty"`
	Enclosing string        `json:"enclosing,omitempty"`
	Nested    []string      `json:"nested"`
	Handlers  []handlerJSON `json:"handlers"`
}

type handlerJSON struct {
	Role     string `json:"role"`
	Phrase   string `json:"phrase"`
	Receiver string `json:"receiver"`
}

// NewTypesCmd creates the types subcommand.
func NewTypesCmd(catalog CatalogSource) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "types",
		Short:        "List registered target types and their handlers",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			jsonMode, _ := cmd.Flags().GetBool("json")
			c, err := catalog()
			if err != nil {
				return fmt.Errorf("loading types: %w", err)
			}

			types := make([]typeJSON, 0)
			for _, name := range c.Names() {
				typ, _ := c.Lookup(name)
				types = append(types, describeType(typ))
			}

			if jsonMode {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(types)
			}
			w := cmd.OutOrStdout()
			for _, t := range types {
				fmt.Fprint(w, t.Name)
				if t.Parent != "" {
					fmt.Fprintf(w, " extends %s", t.Parent)
				}
				if t.Enclosing != "" {
					fmt.Fprintf(w, " (nested in %s)", t.Enclosing)
				}
				fmt.Fprintln(w)
				for _, h := range t.Handlers {
					fmt.Fprintf(w, "  %-5s %s\n", h.Role, h.Phrase)
				}
			}
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "Output types as JSON")

	return cmd
}

func describeType(t *handler.Type) typeJSON {
	out := typeJSON{Name: t.Name(), Nested: []string{}, Handlers: []handlerJSON{}}
	if p := t.Parent(); p != nil {
		out.Parent = p.Name()
	}
	if e := t.Enclosing(); e != nil {
		out.Enclosing = e.Name()
	}
	for _, n := range t.Nested() {
		out.Nested = append(out.Nested, n.Name())
	}
	for _, h := range t.Handlers() {
		out.Handlers = append(out.Handlers, handlerJSON{Role: h.Role.String(), Phrase: h.Phrase, Receiver: h.Receiver()})
	}
	return out
}
