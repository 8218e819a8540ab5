// Package main is the entry point for the kbctl operator CLI.
package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"kbchat/internal/config"
	"kbchat/internal/service"
	"kbchat/internal/storage"
	"kbchat/internal/vectorstore"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "kbctl",
		Short:         "Operate kbchat knowledge bases, documents and usage",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("db", "", "SQLite database path (defaults to DB_PATH)")
	root.AddCommand(collectionCmd(), usageCmd(), documentsCmd())
	return root
}

func collectionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "collection <identity>",
		Short: "Print the vector collection name derived from a user identity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := vectorstore.CollectionName(args[0])
			if name == "" {
				return fmt.Errorf("identity %q has no usable characters", args[0])
			}
			out := cmd.OutOrStdout()

			inspect, _ := cmd.Flags().GetBool("inspect")
			if !inspect {
				_, _ = fmt.Fprintln(out, name)
				return nil
			}

			cfg, err := config.LoadTooling()
			if err != nil {
				return err
			}
			store, err := vectorstore.Open(cmd.Context(), cfg.VectorBackend, cfg.QdrantURL, cfg.PostgresDSN)
			if err != nil {
				return err
			}
			defer func() {
				_ = store.Close()
			}()

			info, err := store.CollectionInfo(cmd.Context(), name)
			if err != nil {
				return err
			}
			return printCollection(out, info)
		},
	}
	cmd.Flags().Bool("inspect", false, "Query the vector backend for collection statistics")
	return cmd
}

func printCollection(out io.Writer, info *vectorstore.CollectionInfo) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "name\t%s\n", info.Name)
	_, _ = fmt.Fprintf(w, "status\t%s\n", info.Status)
	_, _ = fmt.Fprintf(w, "vector_size\t%d\n", info.VectorSize)
	_, _ = fmt.Fprintf(w, "points\t%d\n", info.PointsCount)
	return w.Flush()
}

func usageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Print a user's aggregated token usage for one month",
		RunE: func(cmd *cobra.Command, _ []string) error {
			user, _ := cmd.Flags().GetString("user")
			month, _ := cmd.Flags().GetString("month")
			window, _ := cmd.Flags().GetString("window")
			asJSON, _ := cmd.Flags().GetBool("json")

			db, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			report, err := service.NewUsageService(storage.NewUsageRepo(db)).MonthlyUsage(cmd.Context(), user, month, window)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "TIMESTAMP\tTOKENS")
			for _, b := range report.Buckets {
				_, _ = fmt.Fprintf(w, "%s\t%d\n", b.Timestamp, b.TotalTokens)
			}
			_, _ = fmt.Fprintf(w, "total\t%d\n", report.Total)
			return w.Flush()
		},
	}
	cmd.Flags().String("user", "", "User identity")
	cmd.Flags().String("month", "", "Month as YYYY-MM (defaults to the current month)")
	cmd.Flags().String("window", "1d", "Bucket width: 15m, 1h or 1d")
	cmd.Flags().Bool("json", false, "Print the report as JSON")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func documentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "documents",
		Short: "Document management",
	}
	cmd.AddCommand(toggleCmd("enable", true), toggleCmd("disable", false))
	return cmd
}

func toggleCmd(verb string, enabled bool) *cobra.Command {
	cmd := &cobra.Command{
		Use:   verb + " <document-id>",
		Short: "Mark a document as " + verb + "d for answering",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			user, _ := cmd.Flags().GetString("user")

			db, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			doc, err := service.NewDocumentService(storage.NewDocumentRepo(db)).SetEnabled(cmd.Context(), user, args[0], enabled)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s (%s) enabled=%t\n", doc.ID, doc.Name, doc.Enabled)
			return nil
		},
	}
	cmd.Flags().String("user", "", "User identity")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

// openDB opens and migrates the metadata database named by --db or DB_PATH.
func openDB(cmd *cobra.Command) (*sql.DB, error) {
	path, _ := cmd.Flags().GetString("db")
	if path == "" {
		cfg, err := config.LoadTooling()
		if err != nil {
			return nil, err
		}
		path = cfg.DBPath
	}

	db, err := storage.New(path)
	if err != nil {
		return nil, err
	}
	if err := storage.Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
