package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gitdocsync/internal/client"
	"gitdocsync/internal/clientconfig"
	"gitdocsync/internal/config"
	"gitdocsync/internal/gitx"
	"gitdocsync/internal/model"
	"gitdocsync/internal/pkg/logutil"
	"gitdocsync/internal/server"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gitdocsync",
		Short: "bridge between git worktrees and the document service",
	}
	rootCmd.AddCommand(
		newServeCmd(),
		newPushCmd(),
		newShowCmd(),
		newPullCmd(),
		newInitCmd(),
	)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "run the bridge server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logutil.Init(cfg.LogLevel, cfg.LogConsole)
			logutil.L().Info("config loaded", zap.String("config", configPath))
			return server.Run(cfg)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	return cmd
}

// clientFlags are shared by push/show/pull.
type clientFlags struct {
	targets    []string
	username   string
	password   string
	configPath string
}

func (f *clientFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&f.targets, "targets", "t", nil, "target names from the client config")
	cmd.Flags().StringVarP(&f.username, "username", "u", "", "account username")
	cmd.Flags().StringVarP(&f.password, "password", "p", "", "account password (prompted when omitted)")
	cmd.Flags().StringVar(&f.configPath, "config", "", "path to the client config")
	_ = cmd.MarkFlagRequired("targets")
}

// clientSetup loads the client config, opens the surrounding git repo,
// loads the filemap from its toplevel, and resolves credentials.
func clientSetup(f *clientFlags) (*clientconfig.Config, *gitx.Repo, *client.FileMap, error) {
	logutil.Init("info", true)
	cfg, err := clientconfig.Load(f.configPath)
	if err != nil {
		return nil, nil, nil, err
	}
	repo, err := gitx.Open(".")
	if err != nil {
		return nil, nil, nil, err
	}
	fm, err := client.LoadFileMap(repo.Root(), cfg.MapFilename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if client.ConfirmYn(fmt.Sprintf("No %s found at %s. Write a template?", cfg.MapFilename, repo.Root())) {
				if werr := client.WriteTemplate(repo.Root(), cfg.MapFilename); werr != nil {
					return nil, nil, nil, werr
				}
				return nil, nil, nil, fmt.Errorf("wrote %s template; fill it in and rerun",
					cfg.MapFilename)
			}
			return nil, nil, nil, fmt.Errorf("no %s found at %s", cfg.MapFilename, repo.Root())
		}
		return nil, nil, nil, err
	}

	if f.username == "" {
		f.username = cfg.DefaultUsername
	}
	if f.username == "" {
		if f.username, err = client.PromptUsername(); err != nil {
			return nil, nil, nil, err
		}
	}
	if f.password == "" {
		if f.password, err = client.PromptPassword(); err != nil {
			return nil, nil, nil, err
		}
	}
	return cfg, repo, fm, nil
}

func newPushCmd() *cobra.Command {
	var flags clientFlags
	var versionType string
	var allowUncommitted bool
	var yes bool
	cmd := &cobra.Command{
		Use:   "push",
		Short: "upload mapped files and tag the commit with the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			vt, err := model.ParseVersionType(versionType)
			if err != nil {
				return err
			}
			cfg, repo, fm, err := clientSetup(&flags)
			if err != nil {
				return err
			}
			return client.RunPush(context.Background(), cfg, repo, fm, client.PushOptions{
				Targets:          flags.targets,
				Username:         flags.username,
				Password:         flags.password,
				VersionType:      vt,
				AllowUncommitted: allowUncommitted,
				AssumeYes:        yes,
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVarP(&versionType, "version", "V", "minor", "version bump: major or minor")
	cmd.Flags().BoolVar(&allowUncommitted, "allow-uncommitted", false, "push even with uncommitted changes")
	cmd.Flags().BoolVar(&yes, "yes", false, "skip confirmation prompts")
	return cmd
}

func newShowCmd() *cobra.Command {
	var flags clientFlags
	cmd := &cobra.Command{
		Use:   "show",
		Short: "list the current remote version of every mapped file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, fm, err := clientSetup(&flags)
			if err != nil {
				return err
			}
			return client.RunShow(context.Background(), cfg, fm, client.ShowOptions{
				Targets:  flags.targets,
				Username: flags.username,
				Password: flags.password,
			})
		},
	}
	flags.register(cmd)
	return cmd
}

func newPullCmd() *cobra.Command {
	var flags clientFlags
	var yes bool
	cmd := &cobra.Command{
		Use:   "pull",
		Short: "overwrite mapped local files with the current remote content",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, fm, err := clientSetup(&flags)
			if err != nil {
				return err
			}
			return client.RunPull(context.Background(), cfg, fm, client.PullOptions{
				Targets:   flags.targets,
				Username:  flags.username,
				Password:  flags.password,
				AssumeYes: yes,
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&yes, "yes", false, "skip confirmation prompts")
	return cmd
}

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "write a filemap skeleton at the git toplevel",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := gitx.Open(".")
			if err != nil {
				return err
			}
			path := filepath.Join(repo.Root(), clientconfig.DefaultMapFilename)
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := client.WriteTemplate(repo.Root(), clientconfig.DefaultMapFilename); err != nil {
				return err
			}
			fmt.Printf("Wrote %s; fill in your targets and mappings\n", path)
			return nil
		},
	}
	return cmd
}
