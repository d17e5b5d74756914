package client

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"

	"gitdocsync/internal/clientconfig"
	"gitdocsync/internal/pkg/logutil"
)

type ShowOptions struct {
	Targets  []string
	Username string
	Password string
}

// Where the listing is printed; tests point this at a buffer.
var showOut io.Writer = os.Stdout

// RunShow prints the current remote version of every mapped document,
// one target at a time. Per-target failures are logged and skipped.
func RunShow(ctx context.Context, cfg *clientconfig.Config, fm *FileMap, opts ShowOptions) error {
	if err := fm.HasAllTargets(opts.Targets); err != nil {
		return err
	}
	shown := 0
	for _, target := range opts.Targets {
		tcfg, err := cfg.Target(target)
		if err != nil {
			return err
		}
		api, err := NewAPIClient(tcfg, opts.Username, opts.Password)
		if err != nil {
			return err
		}
		records, err := api.Show(ctx, fm.DocIDs(target))
		if err != nil {
			logutil.L().Error("show failed", zap.String("target", target), zap.Error(err))
			continue
		}
		printShowRecords(target, fm.FilenamesByDocID(target), records)
		shown++
	}
	if shown == 0 {
		return fmt.Errorf("no target answered")
	}
	return nil
}

func printShowRecords(target string, filenames map[string]string, records map[string]ShowRecord) {
	docIDs := make([]string, 0, len(records))
	for docID := range records {
		docIDs = append(docIDs, docID)
	}
	sort.Strings(docIDs)

	fmt.Fprintf(showOut, "%s:\n", target)
	for _, docID := range docIDs {
		rec := records[docID]
		name, ok := filenames[docID]
		if !ok {
			name = docID
		}
		edited := time.Unix(rec.EditDate, 0).Format(time.RFC3339)
		fmt.Fprintf(showOut, "  %s\tv%s\t%s\t%s\t%s\t%s\n",
			name, rec.VersionLabel, edited, rec.CheckedInBy, rec.CheckedInComment, rec.ContentURL)
	}
}
