// minectl is the operator CLI: it talks to the backend through the typed
// client, applies the dashboard view-model locally and prints tables or
// exports them as CSV/PDF.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/minetrack/minetrack-backend-go/pkg/client"
	"github.com/minetrack/minetrack-backend-go/pkg/dashboard"
)

const usage = `Usage: minectl [-server URL] <command> [flags]

Commands:
  login       -u <username> -p <password>
  logout
  attendance  [-day YYYY-MM-DD] [-q text] [-csv file] [-pdf file] [-watch dur]
  events      [-employee no] [-type T] [-status S] [-limit N]
  exams       [-result R] [-limit N]
  dashboard
  sync-exams
`

func main() {
	server := flag.String("server", envOr("MINETRACK_SERVER", "http://localhost:8080"), "backend base URL")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(2)
	}

	sessionPath, err := client.DefaultSessionPath()
	if err != nil {
		fatal(err)
	}
	api := client.New(*server, client.NewSessionStore(sessionPath))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd, args := flag.Arg(0), flag.Args()[1:]
	switch cmd {
	case "login":
		err = runLogin(ctx, api, args)
	case "logout":
		err = api.Logout()
	case "attendance":
		err = runAttendance(ctx, api, args)
	case "events":
		err = runEvents(ctx, api, args)
	case "exams":
		err = runExams(ctx, api, args)
	case "dashboard":
		err = runDashboard(ctx, api)
	case "sync-exams":
		err = api.SyncExams(ctx)
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil {
		fatal(err)
	}
}

func runLogin(ctx context.Context, api *client.Client, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("u", "", "username")
	password := fs.String("p", "", "password")
	_ = fs.Parse(args)
	resp, err := api.Login(ctx, *username, *password)
	if err != nil {
		return err
	}
	fmt.Printf("logged in as %s (%s)\n", resp.Username, resp.Role)
	return nil
}

func runAttendance(ctx context.Context, api *client.Client, args []string) error {
	fs := flag.NewFlagSet("attendance", flag.ExitOnError)
	day := fs.String("day", "", "facility-local day, default today")
	query := fs.String("q", "", "free-text filter")
	csvPath := fs.String("csv", "", "export CSV to file")
	pdfPath := fs.String("pdf", "", "export PDF to file")
	watch := fs.Duration("watch", 0, "refresh interval, 0 for a single fetch")
	_ = fs.Parse(args)

	fetch := func(ctx context.Context) (dashboard.Attendance, error) {
		rows, err := api.DailyMineSummary(ctx, *day)
		if err != nil {
			return dashboard.Attendance{}, err
		}
		view := dashboard.BuildAttendance(rows, time.Now())
		view.Rows = dashboard.FilterRows(view.Rows, dashboard.Filter{Query: *query})
		return view, nil
	}

	if *watch > 0 {
		poller := &client.Poller[dashboard.Attendance]{
			Interval: *watch,
			Fetch:    fetch,
			Update:   printAttendance,
			OnError: func(err error) {
				fmt.Fprintln(os.Stderr, "fetch failed:", err)
			},
		}
		poller.Run(ctx)
		return nil
	}

	view, err := fetch(ctx)
	if err != nil {
		return err
	}
	if *csvPath != "" {
		data, err := dashboard.ExportCSV(view.Rows)
		if err != nil {
			return err
		}
		if err := os.WriteFile(*csvPath, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d rows)\n", *csvPath, len(view.Rows))
		return nil
	}
	if *pdfPath != "" {
		data, err := dashboard.ExportPDF(view.Rows, view.Day, time.Now())
		if err != nil {
			return err
		}
		if err := os.WriteFile(*pdfPath, data, 0o644); err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d rows)\n", *pdfPath, len(view.Rows))
		return nil
	}
	printAttendance(view)
	return nil
}

func printAttendance(view dashboard.Attendance) {
	fmt.Printf("%s  inside=%d outside=%d\n", view.Day, view.InsideCount, view.OutsideCount)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NO\tNAME\tIN\tOUT\tDURATION\tINSIDE")
	for _, row := range view.Rows {
		inside := ""
		if row.IsInside {
			inside = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			row.EmployeeNo, row.FullName,
			dashboard.FormatClock(row.LastIn), dashboard.FormatClock(row.LastOut),
			dashboard.FormatDuration(row.TotalMinutes), inside)
	}
	w.Flush()
}

func runEvents(ctx context.Context, api *client.Client, args []string) error {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	employee := fs.String("employee", "", "employee number substring")
	eventType := fs.String("type", "", "event type")
	status := fs.String("status", "", "ACCEPTED or REJECTED")
	limit := fs.Int("limit", 50, "max rows")
	_ = fs.Parse(args)

	events, err := api.Events(ctx, client.EventQuery{
		EmployeeNo: *employee,
		EventType:  *eventType,
		Status:     *status,
		Limit:      *limit,
	})
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TS\tTYPE\tSTATUS\tEMPLOYEE\tREASON")
	for _, e := range events {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			e.EventTS.Format(time.RFC3339), e.EventType, e.Status,
			strVal(e.EmployeeNo), strVal(e.RejectReason))
	}
	return w.Flush()
}

func runExams(ctx context.Context, api *client.Client, args []string) error {
	fs := flag.NewFlagSet("exams", flag.ExitOnError)
	result := fs.String("result", "", "result filter")
	limit := fs.Int("limit", 50, "max rows")
	_ = fs.Parse(args)

	exams, err := api.MedicalExams(ctx, client.ExamQuery{Result: *result, Limit: *limit})
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TS\tEMPLOYEE\tRESULT\tSTATUS")
	for _, e := range exams {
		bucket := dashboard.Normalize(e.Result)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			e.Timestamp.Format("2006-01-02 15:04"), strVal(e.EmployeeFullName),
			e.Result, bucket.ColorToken())
	}
	return w.Flush()
}

func runDashboard(ctx context.Context, api *client.Client) error {
	kpi, err := api.ReportDashboard(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("inside mine:     %d\n", kpi.InsideCount)
	fmt.Printf("blocked today:   %d\n", kpi.BlockedToday)
	fmt.Printf("esmo today:      %d passed / %d review / %d failed\n",
		kpi.Esmo.Passed, kpi.Esmo.Review, kpi.Esmo.Failed)
	fmt.Printf("turnstile in:    %d\n", kpi.Summary.TurnstileIn)
	fmt.Printf("turnstile out:   %d\n", kpi.Summary.TurnstileOut)
	return nil
}

func strVal(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}
