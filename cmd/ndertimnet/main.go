package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/term"

	"github.com/ndertimnet/ndertimnet-client/internal/accounts"
	"github.com/ndertimnet/ndertimnet-client/internal/jobrequests"
	"github.com/ndertimnet/ndertimnet-client/internal/leads"
	"github.com/ndertimnet/ndertimnet-client/internal/session"
	"github.com/ndertimnet/ndertimnet-client/internal/taxonomy"
	"github.com/ndertimnet/ndertimnet-client/pkg/config"
	"github.com/ndertimnet/ndertimnet-client/pkg/httpx"
	"github.com/ndertimnet/ndertimnet-client/pkg/logger"
	"github.com/ndertimnet/ndertimnet-client/pkg/metrics"
	"github.com/ndertimnet/ndertimnet-client/pkg/tokenstore"
)

const usage = `usage: ndertimnet <command> [args]

commands:
  login        authenticate (flags: -email, -remember)
  logout       clear stored credentials
  me           show the current user and onboarding step
  professions  list professions
  cities       list cities
  jobs list    list job requests
  leads list   list lead matches
`

type app struct {
	cfg      *config.Config
	logg     *logger.Logger
	tokens   *tokenstore.Selector
	session  *session.Manager
	accounts *accounts.Client
	taxonomy *taxonomy.Client
	jobs     *jobrequests.Client
	leads    *leads.Client
}

func main() {
	logg := logger.New(logger.Options{ServiceName: "ndertimnet"})

	if err := godotenv.Load(); err != nil {
		logg.Debug(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "ndertimnet",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	a, err := newApp(cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap client", err)
		os.Exit(1)
	}

	if err := a.run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newApp(cfg *config.Config, logg *logger.Logger) (*app, error) {
	var durable tokenstore.Store
	if cfg.State.Dir != "" {
		sqliteStore, err := tokenstore.OpenSQLite(cfg.State.Dir)
		if err != nil {
			return nil, err
		}
		durable = sqliteStore
	}
	tokens, err := tokenstore.NewSelector(durable, tokenstore.NewMemoryStore())
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	api, err := httpx.NewClient(cfg.API.BaseURL, tokens,
		httpx.WithTimeout(cfg.API.Timeout),
		httpx.WithLogger(logg),
		httpx.WithMetrics(metrics.NewAPIMetrics(registry)),
	)
	if err != nil {
		return nil, err
	}

	accountsClient, err := accounts.NewClient(api)
	if err != nil {
		return nil, err
	}
	sessionManager, err := session.NewManager(session.ManagerParams{
		Accounts: accountsClient,
		Tokens:   tokens,
		Logger:   logg,
	})
	if err != nil {
		return nil, err
	}
	taxonomyClient, err := taxonomy.NewClient(api)
	if err != nil {
		return nil, err
	}
	jobsClient, err := jobrequests.NewClient(api)
	if err != nil {
		return nil, err
	}
	leadsClient, err := leads.NewClient(api, tokens)
	if err != nil {
		return nil, err
	}

	return &app{
		cfg:      cfg,
		logg:     logg,
		tokens:   tokens,
		session:  sessionManager,
		accounts: accountsClient,
		taxonomy: taxonomyClient,
		jobs:     jobsClient,
		leads:    leadsClient,
	}, nil
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("missing command")
	}

	switch args[0] {
	case "login":
		return a.login(ctx, args[1:])
	case "logout":
		a.session.Logout(ctx)
		fmt.Println("logged out")
		return nil
	case "me":
		return a.me(ctx)
	case "professions":
		return a.professions(ctx)
	case "cities":
		return a.cities(ctx)
	case "jobs":
		if len(args) > 1 && args[1] == "list" {
			return a.listJobs(ctx)
		}
		return fmt.Errorf("unknown jobs subcommand, want: jobs list")
	case "leads":
		if len(args) > 1 && args[1] == "list" {
			return a.listLeads(ctx)
		}
		return fmt.Errorf("unknown leads subcommand, want: leads list")
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

func (a *app) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "account email")
	remember := fs.Bool("remember", false, "persist the session across restarts")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *email == "" {
		fmt.Print("email: ")
		reader := bufio.NewReader(os.Stdin)
		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		*email = strings.TrimSpace(line)
	}
	fmt.Print("password: ")
	password, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return err
	}

	user, err := a.session.Login(ctx, *email, string(password), *remember)
	if err != nil {
		return err
	}
	fmt.Printf("logged in as %s (%s)\n", user.Email, user.Role)
	return nil
}

func (a *app) me(ctx context.Context) error {
	if err := a.session.Init(ctx); err != nil {
		return err
	}
	snap := a.session.Snapshot()
	if snap.User == nil {
		fmt.Println("not logged in")
		return nil
	}
	fmt.Printf("%s %s <%s>\n", snap.User.FirstName, snap.User.LastName, snap.User.Email)
	fmt.Printf("role: %s\n", snap.User.Role)
	fmt.Printf("onboarding: %s\n", snap.Step)
	return nil
}

func (a *app) professions(ctx context.Context) error {
	professions, err := a.taxonomy.Professions(ctx)
	if err != nil {
		return err
	}
	for _, p := range professions {
		fmt.Printf("%d\t%s\n", p.ID, p.Name)
	}
	return nil
}

func (a *app) cities(ctx context.Context) error {
	cities, err := a.taxonomy.Cities(ctx)
	if err != nil {
		return err
	}
	for _, c := range cities {
		fmt.Printf("%d\t%s\n", c.ID, c.Name)
	}
	return nil
}

func (a *app) listJobs(ctx context.Context) error {
	if err := a.session.Init(ctx); err != nil {
		return err
	}
	jobs, err := a.jobs.List(ctx)
	if err != nil {
		return err
	}
	for _, job := range jobs {
		status := "inactive"
		if job.IsActive {
			status = "active"
		}
		fmt.Printf("%d\t%-8s\t%s\n", job.ID, status, job.Title)
	}
	return nil
}

func (a *app) listLeads(ctx context.Context) error {
	if err := a.session.Init(ctx); err != nil {
		return err
	}
	matches, err := a.leads.List(ctx)
	if err != nil {
		return err
	}
	for _, lead := range matches {
		fmt.Printf("%d\tjob=%d\t%s\tchat=%v\n", lead.ID, lead.JobRequest, lead.Status, lead.CanChat)
	}
	return nil
}
