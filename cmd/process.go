package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	processFile   string
	processText   string
	processNoDB   bool
	processStrict bool
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run one document through parsing, analysis, and extraction",
	RunE: func(cmd *cobra.Command, args []string) error {
		if processFile == "" && processText == "" {
			return eris.New("either --file or --text is required")
		}

		ctx := cmd.Context()
		env, err := initEnv(ctx, envOptions{noStore: processNoDB, strictSchema: processStrict})
		if err != nil {
			return err
		}
		defer env.Close()

		source := "stdin"
		text := processText
		if processFile != "" {
			source = filepath.Base(processFile)
			text, err = env.Reader.ExtractText(ctx, processFile)
			if err != nil {
				return err
			}
		}

		result, err := env.Pipeline.Run(ctx, source, text)
		if err != nil {
			return err
		}

		out, err := json.MarshalIndent(result.Record, "", "  ")
		if err != nil {
			return eris.Wrap(err, "marshal record")
		}
		fmt.Println(string(out))
		return nil
	},
}

func init() {
	processCmd.Flags().StringVar(&processFile, "file", "", "document file to process (pdf, txt, md)")
	processCmd.Flags().StringVar(&processText, "text", "", "raw document text to process")
	processCmd.Flags().BoolVar(&processNoDB, "no-store", false, "skip the analysis registry")
	processCmd.Flags().BoolVar(&processStrict, "strict-schema", false, "reject records with fields outside the fixed schema")
	rootCmd.AddCommand(processCmd)
}
