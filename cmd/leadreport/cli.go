package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"estate_portal_backend/internal/access"
	"estate_portal_backend/internal/analytics"
	"estate_portal_backend/internal/bootstrap"
	"estate_portal_backend/internal/leads/filter"
	"estate_portal_backend/internal/reports"
	"estate_portal_backend/platform/config"
	"estate_portal_backend/platform/logger"
	"estate_portal_backend/platform/validator"

	"github.com/spf13/cobra"
)

// stdoutPath writes the report to standard output instead of a file.
const stdoutPath = "-"

type exportOptions struct {
	reportType string
	format     string
	userID     string
	roles      []string
	out        string
	timezone   string

	search    string
	statuses  []string
	sources   []string
	agent     string
	preset    string
	start     string
	end       string
	dateField string
}

// exportFunc builds the exporter for a run. Tests swap it for an in-memory one.
type exportFunc func(ctx context.Context) (*reports.Exporter, *validator.Validator, func(), error)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "leadreport",
		Short:         "Export lead pipeline reports from the command line",
		SilenceUsage: true,
	}
	root.AddCommand(newExportCmd(connect))
	return root
}

func newExportCmd(open exportFunc) *cobra.Command {
	var opts exportOptions
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Build one report and write it to a file",
		Example: "  leadreport export --type leads --user u-1 --role admin --preset thisMonth\n" +
			"  leadreport export --type funnel --format xlsx --out /tmp/",
		RunE: func(cmd *cobra.Command, args []string) error {
			exporter, val, closeFn, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			req, err := opts.request(exporter.Analytics(), val)
			if err != nil {
				return err
			}
			file, err := exporter.Export(cmd.Context(), req)
			if err != nil {
				return err
			}
			return opts.write(cmd.OutOrStdout(), file)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.reportType, "type", "", "report type (overview, leads, agents, performance, sources, activities, funnel)")
	f.StringVar(&opts.format, "format", string(reports.FormatCSV), "output format (csv, xlsx)")
	f.StringVar(&opts.userID, "user", "cli", "user id the report is built for")
	f.StringSliceVar(&opts.roles, "role", []string{"admin"}, "roles of the user")
	f.StringVar(&opts.out, "out", "", "output file or directory; - writes to stdout")
	f.StringVar(&opts.timezone, "tz", "", "IANA time zone for date presets and formatting")
	f.StringVar(&opts.search, "search", "", "free-text search over name, email and phone")
	f.StringSliceVar(&opts.statuses, "status", nil, "lead statuses")
	f.StringArrayVar(&opts.sources, "source", nil, "lead source (repeat for several)")
	f.StringVar(&opts.agent, "agent", "", "assigned agent id, or \"unassigned\"")
	f.StringVar(&opts.preset, "preset", "", "date preset (today, yesterday, last7days, last30days, thisMonth, lastMonth, last3months, thisYear)")
	f.StringVar(&opts.start, "start", "", "custom range start day (2006-01-02)")
	f.StringVar(&opts.end, "end", "", "custom range end day (2006-01-02)")
	f.StringVar(&opts.dateField, "date-field", "", "lead date the range applies to (createdAt, receivedDate)")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func (o exportOptions) request(svc *analytics.Service, val *validator.Validator) (reports.ExportRequest, error) {
	t, ok := reports.ParseType(o.reportType)
	if !ok {
		return reports.ExportRequest{}, fmt.Errorf("unknown report type %q", o.reportType)
	}
	format, ok := reports.ParseFormat(o.format)
	if !ok {
		return reports.ExportRequest{}, fmt.Errorf("unsupported report format %q", o.format)
	}

	var loc *time.Location
	if o.timezone != "" {
		l, err := time.LoadLocation(o.timezone)
		if err != nil {
			return reports.ExportRequest{}, fmt.Errorf("invalid time zone %q: %w", o.timezone, err)
		}
		loc = l
	}

	criteria, err := o.query().Build(val, svc.Now(loc))
	if err != nil {
		return reports.ExportRequest{}, err
	}

	return reports.ExportRequest{
		Request: analytics.Request{
			Principal: access.Principal{UserID: o.userID, Roles: o.roles},
			Criteria:  criteria,
			Refresh:   true,
			Location:  loc,
		},
		Type:   t,
		Format: format,
	}, nil
}

func (o exportOptions) query() filter.Query {
	values := url.Values{}
	set := func(key, value string) {
		if strings.TrimSpace(value) != "" {
			values.Set(key, value)
		}
	}
	set("search", o.search)
	set("assignedAgent", o.agent)
	set("datePreset", o.preset)
	set("startDate", o.start)
	set("endDate", o.end)
	set("dateFilterType", o.dateField)
	for _, s := range o.statuses {
		values.Add("status", s)
	}
	for _, s := range o.sources {
		values.Add("source", s)
	}
	return filter.QueryFromValues(values)
}

// write stores file at the requested path. An empty path or a directory
// keeps the generated file name.
func (o exportOptions) write(stdout io.Writer, file reports.File) error {
	if o.out == stdoutPath {
		_, err := stdout.Write(file.Data)
		return err
	}

	path := o.out
	if path == "" {
		path = file.Name
	} else if isDir(path) {
		path = filepath.Join(path, file.Name)
	}

	if err := os.WriteFile(path, file.Data, 0o644); err != nil {
		return err
	}
	_, err := fmt.Fprintf(stdout, "wrote %s (%d rows)\n", path, file.Rows)
	return err
}

func isDir(path string) bool {
	if strings.HasSuffix(path, string(os.PathSeparator)) {
		return true
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func connect(ctx context.Context) (*reports.Exporter, *validator.Validator, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.Env)

	pool, err := bootstrap.Connect(ctx, cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}

	val, err := bootstrap.Validator()
	if err != nil {
		pool.Close()
		return nil, nil, nil, err
	}

	svc, err := bootstrap.Analytics(cfg, pool, nil, nil, log)
	if err != nil {
		pool.Close()
		return nil, nil, nil, err
	}

	return reports.NewExporter(svc, log, nil), val, pool.Close, nil
}
