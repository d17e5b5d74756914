package client

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"gitdocsync/internal/clientconfig"
	"gitdocsync/internal/pkg/logutil"
)

type PullOptions struct {
	Targets   []string
	Username  string
	Password  string
	AssumeYes bool
}

// RunPull overwrites mapped local files with the current remote content.
// Each target is confirmed (default no) since this clobbers the worktree.
func RunPull(ctx context.Context, cfg *clientconfig.Config, fm *FileMap, opts PullOptions) error {
	if err := fm.HasAllTargets(opts.Targets); err != nil {
		return err
	}
	written := 0
	for _, target := range opts.Targets {
		if !opts.AssumeYes && !ConfirmyN(fmt.Sprintf("Overwrite local files from %s.", target)) {
			continue
		}
		n, err := pullFromTarget(ctx, cfg, fm, target, opts)
		if err != nil {
			logutil.L().Error("pull from target failed", zap.String("target", target), zap.Error(err))
			continue
		}
		written += n
	}
	if written == 0 {
		return fmt.Errorf("no files pulled")
	}
	fmt.Printf("Pulled %d file(s)\n", written)
	return nil
}

func pullFromTarget(ctx context.Context, cfg *clientconfig.Config, fm *FileMap, target string, opts PullOptions) (int, error) {
	tcfg, err := cfg.Target(target)
	if err != nil {
		return 0, err
	}
	api, err := NewAPIClient(tcfg, opts.Username, opts.Password)
	if err != nil {
		return 0, err
	}
	records, err := api.Pull(ctx, fm.DocIDs(target))
	if err != nil {
		return 0, err
	}

	filenames := fm.FilenamesByDocID(target)
	written := 0
	for docID, rec := range records {
		filename, ok := filenames[docID]
		if !ok {
			logutil.L().Warn("server returned an unmapped document", zap.String("doc_id", docID))
			continue
		}
		content, err := base64.StdEncoding.DecodeString(rec.Content)
		if err != nil {
			logutil.L().Error("undecodable content, skipping", zap.String("doc_id", docID), zap.Error(err))
			continue
		}
		path := filepath.Join(fm.Root, filename)
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return written, fmt.Errorf("write %s: %w", path, err)
		}
		logutil.L().Info("pulled file",
			zap.String("file", filename),
			zap.String("version", rec.VersionLabel))
		written++
	}
	return written, nil
}
