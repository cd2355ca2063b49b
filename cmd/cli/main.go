package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/rs/zerolog/log"

	"github.com/skillsync/skillsync/cmd/cli/internal/commands"
	"github.com/skillsync/skillsync/internal/logger"
)

var (
	version = "dev"
	cli     struct {
		SignIn    commands.SignInCmd    `cmd:"" name:"signin" help:"Sign in to SkillSync"`
		SignUp    commands.SignUpCmd    `cmd:"" name:"signup" help:"Create an account"`
		SignOut   commands.SignOutCmd   `cmd:"" name:"signout" help:"Sign out and forget the stored session"`
		WhoAmI    commands.WhoAmICmd    `cmd:"" name:"whoami" help:"Show the signed in user"`
		Open      commands.OpenCmd      `cmd:"" help:"Open a page, following redirects for the current session"`
		SWOT      commands.SWOTCmd      `cmd:"" name:"swot" help:"View or save your SWOT analysis"`
		Dashboard commands.DashboardCmd `cmd:"" help:"Show your dashboard"`
		Insights  commands.InsightsCmd  `cmd:"" help:"Show AI insights about your recent activity"`
		Evaluate  commands.EvaluateCmd  `cmd:"" help:"Get an AI evaluation of a scenario answer"`

		Debug       bool   `help:"Enable debug mode." env:"SKILLSYNC_DEBUG"`
		Config      string `help:"Config file (default ~/.skillsync/config.yaml)" type:"path" env:"SKILLSYNC_CONFIG"`
		APIURL      string `name:"api-url" help:"Backend base URL" env:"API_URL"`
		Storage     string `help:"Session storage: file, redis or memory" env:"SKILLSYNC_STORAGE"`
		StorageDir  string `name:"storage-dir" help:"Directory for file session storage" type:"path" env:"SKILLSYNC_STORAGE_DIR"`
		RedisAddr   string `name:"redis-addr" help:"Redis address for redis session storage" env:"SKILLSYNC_REDIS_ADDR"`
		DatabaseURL string `name:"database-url" help:"Activity database connection string" env:"SKILLSYNC_DATABASE_URL"`
		Cache       bool   `help:"Cache backend responses" env:"SKILLSYNC_CACHE"`
		Tracing     bool   `help:"Export traces and metrics over OTLP" env:"SKILLSYNC_TRACING"`
		Version     kong.VersionFlag
	}
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := kong.Parse(&cli,
		kong.Name("skillsync"),
		kong.Description("SkillSync command line client."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))

	log.Logger = logger.Setup(cli.Debug)

	err := cmd.Run(&commands.Globals{
		Debug:       cli.Debug,
		Version:     version,
		ConfigPath:  cli.Config,
		APIURL:      cli.APIURL,
		Storage:     cli.Storage,
		StorageDir:  cli.StorageDir,
		RedisAddr:   cli.RedisAddr,
		DatabaseURL: cli.DatabaseURL,
		Cache:       cli.Cache,
		Tracing:     cli.Tracing,
	})
	cmd.FatalIfErrorf(err)
}
