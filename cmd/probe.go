package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/vneseyoungster/Financial-Analyzer-Project/pkg/llm"
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check whether the completion server is reachable",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := llm.NewClient(llm.WithBaseURL(cfg.LLM.BaseURL))

		if !client.CheckServer(cmd.Context()) {
			return eris.Errorf("completion server at %s is not reachable", cfg.LLM.BaseURL)
		}

		fmt.Printf("completion server at %s is reachable\n", cfg.LLM.BaseURL)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(probeCmd)
}
