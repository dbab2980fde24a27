package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fabbro/internal/fem"
)

type primeInfo struct {
	Purpose    string        `json:"purpose"`
	Commands   []commandInfo `json:"commands"`
	Markers    []markerInfo  `json:"femSyntax"`
	Workflow   []string      `json:"workflow"`
	DataLayout []string      `json:"dataLayout"`
}

type commandInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type markerInfo struct {
	Syntax      string `json:"syntax"`
	Type        string `json:"type"`
	Description string `json:"description"`
}

var markerDescriptions = map[fem.Kind]string{
	fem.KindComment:  "General comment",
	fem.KindDelete:   "Mark for deletion",
	fem.KindQuestion: "Ask a question",
	fem.KindExpand:   "Request more detail",
	fem.KindKeep:     "Mark as good, keep as is",
	fem.KindUnclear:  "Mark as unclear",
	fem.KindChange:   "Replacement text",
}

func buildPrimeInfo() primeInfo {
	markers := make([]markerInfo, 0, len(fem.Kinds()))
	for _, kind := range fem.Kinds() {
		delims := fem.Markers[kind]
		markers = append(markers, markerInfo{
			Syntax:      delims.Open + " text " + delims.Close,
			Type:        string(kind),
			Description: markerDescriptions[kind],
		})
	}
	return primeInfo{
		Purpose: "fabbro is a local-first review annotation tool. Reviewers leave typed notes inline as FEM markers; fabbro parses them back into a structured list for the author or an AI agent to act on.",
		Commands: []commandInfo{
			{Name: "fabbro init", Description: "Initialize fabbro in the current directory (creates .fabbro/)"},
			{Name: "fabbro review <file>", Description: "Start a review session with file content"},
			{Name: "fabbro review --stdin", Description: "Start a review session from stdin (e.g. git diff | fabbro review --stdin)"},
			{Name: "fabbro annotate <session-id> --line N --kind K --text T", Description: "Add an annotation to a line"},
			{Name: "fabbro apply <session-id> --json", Description: "Output annotations as JSON for programmatic use"},
			{Name: "fabbro apply --file <path>", Description: "Show annotations of the latest session for a source file"},
			{Name: "fabbro export <session-id>", Description: "Print a markdown review summary"},
			{Name: "fabbro session list", Description: "List review sessions"},
			{Name: "fabbro session show <session-id>", Description: "Print the stored .fem document"},
		},
		Markers: markers,
		Workflow: []string{
			"Run 'fabbro review <file>' and note the session id",
			"Annotate with 'fabbro annotate' or edit the markers in the .fem document",
			"Read the notes back with 'fabbro apply <session-id> --json'",
			"Markers never span lines and may not contain another opening delimiter",
		},
		DataLayout: []string{
			".fabbro/config.toml - settings",
			".fabbro/sessions/<id>.fem - one document per session (file backend)",
			".fabbro/fabbro.db - session database (bbolt backend)",
		},
	}
}

func (c *cli) newPrimeCmd() *cobra.Command {
	var jsonFlag bool
	cmd := &cobra.Command{
		Use:   "prime",
		Short: "Print workflow context for AI agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := buildPrimeInfo()
			out := cmd.OutOrStdout()
			if jsonFlag {
				return writeJSON(out, info)
			}

			fmt.Fprintln(out, "# fabbro workflow context")
			fmt.Fprintln(out)
			fmt.Fprintln(out, "## Purpose")
			fmt.Fprintln(out, info.Purpose)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "## Commands")
			for _, command := range info.Commands {
				fmt.Fprintf(out, "  %s\n    %s\n", command.Name, command.Description)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "## FEM syntax")
			for _, marker := range info.Markers {
				fmt.Fprintf(out, "  %s → %s (%s)\n", marker.Syntax, marker.Type, marker.Description)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "## Workflow")
			for i, step := range info.Workflow {
				fmt.Fprintf(out, "  %d. %s\n", i+1, step)
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, "## Files")
			for _, entry := range info.DataLayout {
				fmt.Fprintf(out, "  %s\n", entry)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonFlag, "json", false, "output as JSON")
	return cmd
}
