package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/samuelfneumann/pmc/catalog"
)

// EntryInfo describes a catalogue entry in JSON output.
type EntryInfo struct {
	Name   string      `json:"name"`
	Value  string      `json:"value"`
	Params []ParamInfo `json:"params"`
	Checks []string    `json:"checks"`
	Heavy  bool        `json:"heavy,omitempty"`
}

// ParamInfo describes the Domain of one parameter.
type ParamInfo struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the distributions in the catalogue",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := &OutputFormatter{
				Format: rootOpts.Format,
				Writer: cmd.OutOrStdout(),
			}
			return list(f)
		},
	}
}

func list(f *OutputFormatter) error {
	entries := catalog.All()

	if f.Format == "json" {
		infos := make([]EntryInfo, 0, len(entries))
		for _, e := range entries {
			info := EntryInfo{
				Name:   e.Name,
				Value:  e.Value.String(),
				Params: []ParamInfo{},
				Checks: e.CheckNames(),
				Heavy:  e.Heavy,
			}
			for _, p := range e.Params {
				info.Params = append(info.Params, ParamInfo{
					Name:   p.Name,
					Domain: p.Domain.String(),
				})
			}
			infos = append(infos, info)
		}
		return f.JSON("ok", infos)
	}

	for _, e := range entries {
		params := "-"
		if len(e.Params) > 0 {
			names := make([]string, len(e.Params))
			for i, p := range e.Params {
				names[i] = p.Name
			}
			params = strings.Join(names, ",")
		}
		if e.Heavy {
			params += " (heavy)"
		}
		f.Printf("%-20s %-10s %s\n", e.Name, strings.Join(e.CheckNames(), ","),
			params)
	}
	return nil
}
