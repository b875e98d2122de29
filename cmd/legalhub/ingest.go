package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/sangwajesly/legalhub-backend-sub000/internal/rag"
	"github.com/sangwajesly/legalhub-backend-sub000/internal/scheduler"
	"github.com/sangwajesly/legalhub-backend-sub000/internal/sources"
)

var (
	ingestDocType      string
	ingestTitle        string
	ingestJurisdiction string
	syncDaemon         bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Index local documents into the vector store",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp()
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := cmd.Context()
		for _, path := range args {
			content, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			docID := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			docType := rag.DocType(ingestDocType)
			if docType == "" {
				docType = rag.DocTypeText
				if strings.EqualFold(filepath.Ext(path), ".pdf") {
					docType = rag.DocTypePDF
				}
			}

			meta := &rag.Metadata{
				Title:        ingestTitle,
				Jurisdiction: ingestJurisdiction,
				Source:       fmt.Sprintf("%s:%s", docType, filepath.Base(path)),
			}

			ids, err := app.Ingestor.Ingest(ctx, content, docID, docType, meta)
			if err != nil {
				return fmt.Errorf("ingest %s: %w", path, err)
			}
			fmt.Printf("%s: %d chunks indexed\n", path, len(ids))
		}
		return nil
	},
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape [url...]",
	Short: "Fetch web pages and index their text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp()
		if err != nil {
			return err
		}
		defer app.Close()

		ctx := cmd.Context()
		for _, rawURL := range args {
			page, err := app.Scraper.Fetch(ctx, rawURL)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", rawURL, err)
			}

			meta := &rag.Metadata{
				Title:        page.Title,
				Jurisdiction: ingestJurisdiction,
				Source:       "web:" + rawURL,
			}

			ids, err := app.Ingestor.Ingest(ctx, []byte(page.Text), slugFromURL(rawURL), rag.DocTypeWeb, meta)
			if err != nil {
				return fmt.Errorf("ingest %s: %w", rawURL, err)
			}
			fmt.Printf("%s: %d chunks indexed\n", rawURL, len(ids))
		}
		return nil
	},
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Sync all documents from the sources manifest",
	Long: `Sync resolves every entry in the sources manifest, skipping documents
whose content is unchanged since the last pass. With --daemon it keeps
running and repeats the sync on the configured schedule.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := loadApp()
		if err != nil {
			return err
		}
		defer app.Close()

		manifestPath := app.Config.Sources.ManifestPath
		runSync := func(ctx context.Context) error {
			manifest, err := sources.LoadManifest(manifestPath)
			if err != nil {
				return err
			}
			summary, err := app.Loader.Sync(ctx, manifest)
			if err != nil {
				return err
			}
			fmt.Printf("sync: %d ingested, %d skipped, %d failed\n",
				summary.Ingested, summary.Skipped, summary.Failed)
			return nil
		}

		if !syncDaemon {
			return runSync(cmd.Context())
		}

		sched, err := scheduler.New(app.Config.Sources.Schedule, runSync)
		if err != nil {
			return err
		}
		if err := sched.RunNow(); err != nil {
			fmt.Fprintf(os.Stderr, "initial sync failed: %v\n", err)
		}
		sched.Start()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		<-stop
		sched.Stop()
		return nil
	},
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDocType, "type", "", "document type (pdf, text or web; inferred if empty)")
	ingestCmd.Flags().StringVar(&ingestTitle, "title", "", "document title metadata")
	for _, cmd := range []*cobra.Command{ingestCmd, scrapeCmd} {
		cmd.Flags().StringVar(&ingestJurisdiction, "jurisdiction", "", "jurisdiction metadata")
	}
	syncCmd.Flags().BoolVar(&syncDaemon, "daemon", false, "keep running and sync on the configured schedule")
}

// slugFromURL turns a URL into a stable document id.
func slugFromURL(rawURL string) string {
	s := strings.TrimPrefix(rawURL, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.Trim(s, "/")
	replacer := strings.NewReplacer("/", "-", ".", "-", "?", "-", "&", "-", "=", "-", "#", "-")
	return replacer.Replace(s)
}
