package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vneseyoungster/Financial-Analyzer-Project/internal/store"
)

var analysesLimit int

var analysesCmd = &cobra.Command{
	Use:   "analyses",
	Short: "List recent analysis runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := store.NewSQLite(cfg.Store.Path)
		if err != nil {
			return err
		}
		defer st.Close()
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		analyses, err := st.ListAnalyses(ctx, analysesLimit)
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSOURCE\tSTATUS\tCREATED")
		for _, a := range analyses {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				a.ID, a.Source, a.Status, a.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		return w.Flush()
	},
}

func init() {
	analysesCmd.Flags().IntVar(&analysesLimit, "limit", 20, "maximum number of runs to list")
	rootCmd.AddCommand(analysesCmd)
}
