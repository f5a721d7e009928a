package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/storesight/console/internal/client/fetch"
	"github.com/storesight/console/internal/client/services"
)

var errUsage = errors.New("usage")

func (a *app) run(ctx context.Context, args []string) error {
	cmd, rest := args[0], args[1:]
	if cmd != "login" && cmd != "help" {
		if err := a.session.RequireAuth(); err != nil {
			return fmt.Errorf("%w; run `console login` first", err)
		}
	}
	switch cmd {
	case "login":
		return a.login(ctx, rest, os.Stdin)
	case "logout":
		return a.logout(ctx)
	case "me":
		return a.me(ctx)
	case "stores":
		return a.stores(ctx)
	case "cameras":
		return a.cameras(ctx, rest)
	case "alerts":
		return a.alerts(ctx, rest)
	case "employees":
		return a.employees(ctx, rest)
	case "roi":
		return a.roi(ctx, rest)
	case "help":
		fmt.Fprint(a.out, usage)
		return nil
	}
	return errUsage
}

func (a *app) login(ctx context.Context, args []string, stdin io.Reader) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "Account e-mail")
	password := fs.String("password", os.Getenv("CONSOLE_PASSWORD"), "Password (default: env CONSOLE_PASSWORD, else prompt)")
	if err := fs.Parse(args); err != nil || *email == "" {
		return errUsage
	}
	if *password == "" {
		fmt.Fprint(a.out, "Password: ")
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read password: %w", err)
		}
		*password = strings.TrimRight(line, "\r\n")
	}
	u, err := a.session.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s (%s, %s plan)\n", u.Email, u.Role, u.Plan)
	return nil
}

func (a *app) logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		a.logger.Sugar().Warnf("server logout failed: %v", err)
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

func (a *app) me(ctx context.Context) error {
	u, err := a.svc.Me.Profile(ctx)
	if err != nil {
		return err
	}
	rep, err := a.svc.Me.Report(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "%s <%s>  role=%s  plan=%s", u.Name, u.Email, u.Role, rep.Plan)
	if rep.TrialDaysLeft != nil {
		fmt.Fprintf(a.out, "  trial=%dd", *rep.TrialDaysLeft)
	}
	fmt.Fprintln(a.out)
	fmt.Fprintf(a.out, "stores=%d cameras=%d offline=%d employees=%d\n",
		rep.Stores, rep.Cameras, rep.CamerasOffline, rep.Employees)
	fmt.Fprintf(a.out, "open alerts=%d (critical=%d warning=%d info=%d)\n",
		rep.OpenAlerts, rep.BySeverity["critical"], rep.BySeverity["warning"], rep.BySeverity["info"])
	return nil
}

func (a *app) storeList(ctx context.Context) ([]services.Store, error) {
	return fetch.Query(ctx, a.cache, "stores", a.svc.Stores.List)
}

// resolveStore accepts a store id or a case-insensitive store name.
func (a *app) resolveStore(ctx context.Context, ref string) (services.Store, error) {
	list, err := a.storeList(ctx)
	if err != nil {
		return services.Store{}, err
	}
	for _, s := range list {
		if s.ID == ref || strings.EqualFold(s.Name, ref) {
			return s, nil
		}
	}
	return services.Store{}, fmt.Errorf("no store matches %q", ref)
}

func (a *app) stores(ctx context.Context) error {
	list, err := a.storeList(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tTIMEZONE\tTAGS")
	for _, s := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", s.ID, s.Name, s.Timezone, strings.Join(s.Tags, ","))
	}
	return tw.Flush()
}

func (a *app) cameras(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	s, err := a.resolveStore(ctx, args[0])
	if err != nil {
		return err
	}
	list, err := fetch.Query(ctx, a.cache, "cameras:"+s.ID, func(ctx context.Context) ([]services.Camera, error) {
		return a.svc.Cameras.ListByStore(ctx, s.ID)
	})
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tLAST SEEN\tAGENT")
	for _, c := range list {
		seen := "-"
		if c.LastSeenAt != nil {
			seen = c.LastSeenAt.Local().Format(time.DateTime)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.Name, c.Status, seen, c.AgentVersion)
	}
	return tw.Flush()
}

func (a *app) alerts(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("alerts", flag.ContinueOnError)
	store := fs.String("store", "", "Store id or name")
	status := fs.String("status", "", "open, acknowledged or resolved")
	severity := fs.String("severity", "", "info, warning or critical")
	watch := fs.Bool("watch", false, "Stream new alerts until interrupted")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	filter := services.AlertFilter{Status: *status, Severity: *severity}
	if *store != "" {
		s, err := a.resolveStore(ctx, *store)
		if err != nil {
			return err
		}
		filter.StoreID = s.ID
	}
	list, err := a.svc.Alerts.List(ctx, filter)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSEVERITY\tSTATUS\tTYPE\tCREATED\tMESSAGE")
	for _, al := range list {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", al.ID, al.Severity, al.Status, al.Type,
			al.CreatedAt.Local().Format(time.DateTime), al.Message)
	}
	if err := tw.Flush(); err != nil || !*watch {
		return err
	}

	fmt.Fprintln(a.out, "-- watching for alerts (Ctrl-C to stop)")
	err = services.WatchAlerts(ctx, a.api, func(ev services.AlertEvent) {
		al := ev.Alert
		if filter.StoreID != "" && al.StoreID != filter.StoreID {
			return
		}
		fmt.Fprintf(a.out, "%s  %-12s %-8s %s\n", time.Now().Format(time.TimeOnly), ev.Type, al.Severity, al.Message)
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}

func (a *app) employees(ctx context.Context, args []string) error {
	if len(args) != 3 || args[0] != "import" {
		return errUsage
	}
	s, err := a.resolveStore(ctx, args[1])
	if err != nil {
		return err
	}
	f, err := os.Open(args[2])
	if err != nil {
		return err
	}
	defer f.Close()

	drafts, err := readRoster(f)
	if err != nil {
		return fmt.Errorf("%s: %w", args[2], err)
	}
	res, err := a.svc.Employees.BulkCreate(ctx, s.ID, drafts)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Imported into %s: created=%d skipped=%d\n", s.Name, res.Created, res.Skipped)
	return nil
}
