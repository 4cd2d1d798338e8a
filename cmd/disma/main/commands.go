package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/fuad-daoud/disma/config"
	"github.com/fuad-daoud/disma/guild"
	statushttp "github.com/fuad-daoud/disma/http"
	"github.com/fuad-daoud/disma/integrations/digitalocean"
	"github.com/fuad-daoud/disma/integrations/discordapi"
	"github.com/fuad-daoud/disma/logger/dlog"
	"github.com/fuad-daoud/disma/params"
	"github.com/fuad-daoud/disma/reconcile"
	"github.com/fuad-daoud/disma/render"
)

var (
	tokenFlag    string
	configPath   string
	logDirFlag   string
	verbose      bool
	guildFlag    string
	documentPath string
	force        bool
	upload       bool
	schedule     string
	listenAddr   string

	cfg       config.Config
	logCloser io.Closer

	rootCmd = &cobra.Command{
		Use:               "disma",
		Short:             "Keep a Discord guild in line with a layout document",
		Long:              `disma compares the roles, categories and channels of a guild with a YAML or JSON document and applies the difference.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setup,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logCloser != nil {
				_ = logCloser.Close()
			}
		},
	}

	changesCmd = &cobra.Command{
		Use:   "changes",
		Short: "List the changes apply would make, without applying them",
		RunE:  runChanges,
	}
	applyCmd = &cobra.Command{
		Use:   "apply",
		Short: "Apply the document to the guild after confirmation",
		RunE:  runApply,
	}
	saveCmd = &cobra.Command{
		Use:   "save",
		Short: "Export the current guild layout to a document",
		RunE:  runSave,
	}
	guildsCmd = &cobra.Command{
		Use:   "guilds",
		Short: "List the guilds the bot has joined",
		RunE:  runGuilds,
	}
	driftCmd = &cobra.Command{
		Use:   "drift",
		Short: "Periodically report changes between the guild and the document",
		RunE:  runDrift,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "", "bot token (default $"+config.EnvToken+")")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default $"+config.EnvConfig+" or ~/.config/disma/config.toml)")
	rootCmd.PersistentFlags().StringVar(&logDirFlag, "log-dir", "", "directory for JSON logs (default $"+config.EnvLogDir+")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	for _, cmd := range []*cobra.Command{changesCmd, applyCmd, saveCmd, driftCmd} {
		cmd.Flags().StringVarP(&guildFlag, "guild", "g", "", "guild id (default $"+config.EnvGuild+")")
		cmd.Flags().StringVarP(&documentPath, "file", "f", "guild.yaml", "layout document, a .yaml, .yml or .json path or a "+digitalocean.URLScheme+" key")
	}
	applyCmd.Flags().BoolVar(&force, "force", false, "apply without asking")
	saveCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing document")
	saveCmd.Flags().BoolVar(&upload, "upload", false, "also upload the document to Spaces")
	driftCmd.Flags().StringVar(&schedule, "schedule", "", "cron schedule (default from config, @every 1h)")
	driftCmd.Flags().StringVar(&listenAddr, "listen", "", "serve the last check on http://<addr>/status")

	rootCmd.AddCommand(changesCmd, applyCmd, saveCmd, guildsCmd, driftCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	cfg = loaded
	if tokenFlag != "" {
		cfg.Token = tokenFlag
	}
	if logDirFlag != "" {
		cfg.LogDir = logDirFlag
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logCloser, err = dlog.Setup(dlog.Config{Level: level, LogDir: cfg.LogDir, Color: !color.NoColor})
	return err
}

func guildID() (string, error) {
	id := guildFlag
	if id == "" {
		id = cfg.Guild
	}
	if id == "" {
		return "", fmt.Errorf("no guild given, use --guild or $%s", config.EnvGuild)
	}
	return id, nil
}

func newClient() (*discordapi.Client, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("no bot token given, use --token or $%s", config.EnvToken)
	}
	return discordapi.NewClient(cfg.Token), nil
}

func loadDesired(ctx context.Context) (guild.DesiredGuild, error) {
	var p params.GuildParams
	if strings.HasPrefix(documentPath, digitalocean.URLScheme) {
		format, err := params.FormatOf(documentPath)
		if err != nil {
			return guild.DesiredGuild{}, err
		}
		spaces, err := digitalocean.New(cfg.Spaces)
		if err != nil {
			return guild.DesiredGuild{}, err
		}
		data, err := spaces.Download(ctx, documentPath)
		if err != nil {
			return guild.DesiredGuild{}, err
		}
		if p, err = params.Decode(data, format); err != nil {
			return guild.DesiredGuild{}, fmt.Errorf("%s: %w", documentPath, err)
		}
	} else {
		var err error
		if p, err = params.Load(documentPath); err != nil {
			return guild.DesiredGuild{}, err
		}
	}
	return params.ToDesired(p)
}

// seededQuerier keeps the commander's name cache in line with the snapshot the
// changes are computed from.
type seededQuerier struct {
	guild.GuildQuerier
	commander *discordapi.Commander
}

func (q seededQuerier) GetGuild(ctx context.Context, guildID string) (guild.LiveGuild, error) {
	live, err := q.GuildQuerier.GetGuild(ctx, guildID)
	if err != nil {
		return guild.LiveGuild{}, err
	}
	return live, q.commander.Seed(live)
}

func runChanges(cmd *cobra.Command, args []string) error {
	id, err := guildID()
	if err != nil {
		return err
	}
	client, err := newClient()
	if err != nil {
		return err
	}
	desired, err := loadDesired(cmd.Context())
	if err != nil {
		return err
	}
	runner := reconcile.NewRunner(client, nil, NonInteractivePrompter{}, render.New(os.Stdout))
	_, err = runner.Run(cmd.Context(), id, desired, reconcile.Options{DryRun: true})
	return err
}

func runApply(cmd *cobra.Command, args []string) error {
	id, err := guildID()
	if err != nil {
		return err
	}
	client, err := newClient()
	if err != nil {
		return err
	}
	desired, err := loadDesired(cmd.Context())
	if err != nil {
		return err
	}
	commander, err := client.Commander(id, guild.LiveGuild{})
	if err != nil {
		return err
	}

	var prompter reconcile.Prompter = NonInteractivePrompter{}
	if isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd()) {
		prompter = NewInteractivePrompter(os.Stdin, os.Stdout)
	}
	runner := reconcile.NewRunner(seededQuerier{GuildQuerier: client, commander: commander}, commander, prompter, render.New(os.Stdout))
	report, err := runner.Run(cmd.Context(), id, desired, reconcile.Options{Force: force})
	if err != nil {
		return err
	}
	if report.State == reconcile.Aborted {
		fmt.Fprintln(os.Stdout, "Nothing applied.")
	}
	return nil
}

func runSave(cmd *cobra.Command, args []string) error {
	id, err := guildID()
	if err != nil {
		return err
	}
	client, err := newClient()
	if err != nil {
		return err
	}
	format, err := params.FormatOf(documentPath)
	if err != nil {
		return err
	}

	live, err := client.GetGuild(cmd.Context(), id)
	if err != nil {
		return err
	}
	document := params.FromLive(live)
	if err := params.Save(documentPath, document, force); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%s already exists, use --force to overwrite", documentPath)
		}
		return err
	}
	dlog.Info("Saved guild", "guild", id, "file", documentPath)

	if !upload {
		return nil
	}
	spaces, err := digitalocean.New(cfg.Spaces)
	if err != nil {
		return err
	}
	data, err := params.Marshal(document, format)
	if err != nil {
		return err
	}
	key, err := spaces.UploadSnapshot(cmd.Context(), id, format.Extension(), data)
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, digitalocean.URLScheme+key)
	return nil
}

func runGuilds(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	guilds, err := client.ListGuilds(cmd.Context())
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME")
	for _, g := range guilds {
		fmt.Fprintf(w, "%s\t%s\n", g.ID, g.Name)
	}
	return w.Flush()
}

func runDrift(cmd *cobra.Command, args []string) error {
	id, err := guildID()
	if err != nil {
		return err
	}
	client, err := newClient()
	if err != nil {
		return err
	}
	desired, err := loadDesired(cmd.Context())
	if err != nil {
		return err
	}
	expr := schedule
	if expr == "" {
		expr = cfg.DriftSchedule
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	presenter := render.New(os.Stdout)
	status := statushttp.NewStatus()
	watcher := reconcile.NewDriftWatcher(client, id, desired, func(report reconcile.DriftReport, err error) {
		status.Record(report, err)
		if err == nil && report.Drifted() {
			presenter.ShowChanges(report.Changes)
		}
	})
	if err := watcher.Start(ctx, expr); err != nil {
		return err
	}

	var server *http.Server
	if listenAddr != "" {
		server = statushttp.NewServer(listenAddr, status)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				dlog.Error("Status server stopped", "addr", listenAddr, "error", err)
				stop()
			}
		}()
		dlog.Info("Serving drift status", "addr", listenAddr)
	}

	<-ctx.Done()
	watcher.Stop()
	if server != nil {
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdown)
	}
	dlog.Info("Stopped drift detection", "guild", id)
	return nil
}
