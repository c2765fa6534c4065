package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/born-ml/stanmath/internal/models"
)

func newModelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the built-in log densities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tDIM\tDESCRIPTION")
			for _, m := range models.All() {
				fmt.Fprintf(w, "%s\t%d\t%s\n", m.Name, m.Dim(), m.Description)
			}
			return w.Flush()
		},
	}
}

// modelAt resolves a model and the evaluation point; an empty point means
// the model's initial point.
func modelAt(name string, at []float64) (models.Model, []float64, error) {
	m, err := models.Lookup(name)
	if err != nil {
		return m, nil, err
	}
	if len(at) == 0 {
		at = append([]float64(nil), m.Init...)
	}
	if err := m.CheckDim(at); err != nil {
		return m, nil, err
	}
	return m, at, nil
}
