package client

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"gitdocsync/internal/clientconfig"
	"gitdocsync/internal/gitx"
	"gitdocsync/internal/model"
	"gitdocsync/internal/pkg/logutil"
)

type PushOptions struct {
	Targets          []string
	Username         string
	Password         string
	VersionType      model.VersionType
	AllowUncommitted bool
	AssumeYes        bool
}

// RunPush uploads every mapped file to each selected target, mirrors
// module directories, and tags HEAD with the remapped server responses.
// Per-target failures are logged and skipped.
func RunPush(ctx context.Context, cfg *clientconfig.Config, repo *gitx.Repo, fm *FileMap, opts PushOptions) error {
	if err := fm.HasAllTargets(opts.Targets); err != nil {
		return err
	}
	if !opts.AllowUncommitted {
		dirty, err := repo.HasUncommittedChanges()
		if err != nil {
			return err
		}
		if dirty {
			return fmt.Errorf("uncommitted changes present; commit first or use --allow-uncommitted")
		}
	}
	head, err := repo.Head()
	if err != nil {
		return err
	}
	data := model.ClientData{
		CurrentBranch:    head.Branch,
		CurrentSHAHash:   head.SHA,
		CurrentCommitMsg: head.CommitMessage,
		VersionType:      strings.ToLower(string(opts.VersionType)),
	}

	responses := make(map[string]map[string]VersionInfo)
	for _, target := range opts.Targets {
		if !opts.AssumeYes && !ConfirmYn(fmt.Sprintf("Sending files to %s.", target)) {
			continue
		}
		resp, err := pushToTarget(ctx, cfg, fm, target, opts, data)
		if err != nil {
			logutil.L().Error("push to target failed", zap.String("target", target), zap.Error(err))
			continue
		}
		responses[target] = resp
	}
	if len(responses) == 0 {
		return fmt.Errorf("no target accepted the push")
	}

	remapped := remapToFilenames(fm, responses)
	tagName := pushTagName(remapped, time.Now())
	message, err := json.MarshalIndent(remapped, "", "    ")
	if err != nil {
		return err
	}
	if err := repo.CreateAnnotatedTag(tagName, string(message), opts.Username); err != nil {
		return err
	}
	fmt.Printf("Tagged push as %s\n%s\n", tagName, message)
	return nil
}

func pushToTarget(ctx context.Context, cfg *clientconfig.Config, fm *FileMap, target string, opts PushOptions, data model.ClientData) (map[string]VersionInfo, error) {
	tcfg, err := cfg.Target(target)
	if err != nil {
		return nil, err
	}
	api, err := NewAPIClient(tcfg, opts.Username, opts.Password)
	if err != nil {
		return nil, err
	}
	files, err := fm.ReadMappedFiles(target)
	if err != nil {
		return nil, err
	}
	resp, err := api.PushFiles(ctx, files, data)
	if err != nil {
		return nil, err
	}
	if dir := fm.ModuleDirectory(target); dir != "" {
		local := filepath.Join(fm.Root, filepath.Base(dir))
		if err := SyncModuleDirectory(dir, local, data); err != nil {
			logutil.L().Error("module directory sync failed", zap.String("target", target), zap.Error(err))
		}
	}
	return resp, nil
}

// remapToFilenames swaps document ids back to local filenames before
// tagging; ids with no mapping are kept as is.
func remapToFilenames(fm *FileMap, responses map[string]map[string]VersionInfo) map[string]map[string]VersionInfo {
	remapped := make(map[string]map[string]VersionInfo, len(responses))
	for target, docMap := range responses {
		reversed := fm.FilenamesByDocID(target)
		byFile := make(map[string]VersionInfo, len(docMap))
		for docID, info := range docMap {
			key := docID
			if filename, ok := reversed[docID]; ok {
				key = filename
			}
			byFile[key] = info
		}
		remapped[target] = byFile
	}
	return remapped
}

// pushTagName builds `push.<t1>-<t2>.<timestamp>` from the targets that
// answered.
func pushTagName(responses map[string]map[string]VersionInfo, now time.Time) string {
	targets := make([]string, 0, len(responses))
	for target := range responses {
		targets = append(targets, target)
	}
	sort.Strings(targets)
	return "push." + strings.Join(targets, "-") + "." + now.Format("20060102T150405")
}
