package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <dir>",
	Short: "Index knowledge files into the vector store",
	Long: `Index every .txt file in a directory into the knowledge base.

Files that are not valid UTF-8 are decoded as Windows-1252 before
indexing. Re-running ingest on the same directory overwrites documents
with the same position, so it is safe to repeat after edits.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	_, store, err := buildAssistant(ctx, cfg)
	if err != nil {
		return err
	}

	n, err := store.IngestDir(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Indexed %d documents (collection now holds %d).\n", n, store.Count())
	return nil
}
