package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/uefiscdi/constants"
	"github.com/joseph-ayodele/uefiscdi/internal/async"
	"github.com/joseph-ayodele/uefiscdi/internal/common"
	"github.com/joseph-ayodele/uefiscdi/internal/entity"
	"github.com/joseph-ayodele/uefiscdi/internal/export"
	"github.com/joseph-ayodele/uefiscdi/internal/extract"
	"github.com/joseph-ayodele/uefiscdi/internal/pipeline"
	"github.com/joseph-ayodele/uefiscdi/internal/repository"
	"github.com/joseph-ayodele/uefiscdi/internal/search"
	"github.com/joseph-ayodele/uefiscdi/internal/server"
	"github.com/joseph-ayodele/uefiscdi/internal/sheet"
	"github.com/joseph-ayodele/uefiscdi/internal/utils"
)

func parseKind(s string) (constants.Database, error) {
	kind, ok := constants.Canonicalize(s)
	if !ok {
		return "", fmt.Errorf("%w: unknown database %q (want one of %v)", common.ErrInvalidInput, s, constants.AsStringSlice())
	}
	return kind, nil
}

// yearOr returns year, or the configured version when it is unset.
func (a *app) yearOr(year int) int {
	if year == 0 {
		return a.cfg.Version
	}
	return year
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newDatabasesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "databases",
		Short: "List the supported databases and releases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "DATABASE\tYEAR\tFORMAT\tKEY\tDESCRIPTION\tURL")
			for _, r := range extract.Supported() {
				u, err := a.cfg.URL(string(r.Kind), r.Year)
				if err != nil {
					u = "-"
				}
				_, _ = fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n", r.Kind, r.Year, r.Format, r.Kind.Key(), r.Kind.Description(), u)
			}
			return tw.Flush()
		},
	}
}

func newIndexCmd(a *app) *cobra.Command {
	var (
		year    int
		kinds   []string
		opts    pipeline.Options
		list    bool
	)
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Download and extract databases into the cache",
		Long:  "Download and extract databases into the cache. Without -d every database of the year is indexed.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			year = a.yearOr(year)

			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()
			proc := a.processor(store)

			if len(kinds) == 0 {
				results, err := proc.IndexAll(ctx, year, opts)
				for _, r := range results {
					if r.Err == nil {
						printIndexed(cmd.OutOrStdout(), r.Database, list)
					}
				}
				return err
			}

			var errs []error
			for _, k := range kinds {
				kind, err := parseKind(k)
				if err != nil {
					return err
				}
				db, err := proc.Index(ctx, kind, year, opts)
				if err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", kind, err))
					continue
				}
				printIndexed(cmd.OutOrStdout(), db, list)
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "release year (default: configured version)")
	cmd.Flags().StringSliceVarP(&kinds, "database", "d", nil, "database to index (repeatable)")
	cmd.Flags().BoolVar(&opts.Overwrite, "overwrite", false, "re-extract even when cached")
	cmd.Flags().StringVar(&opts.Password, "password", "", "spreadsheet password (default: configured)")
	cmd.Flags().StringVar(&opts.URL, "url", "", "source URL or local path for a single database")
	cmd.Flags().BoolVar(&list, "list", false, "print every entry")
	return cmd
}

func printIndexed(w io.Writer, db *entity.Database, entries bool) {
	_, _ = fmt.Fprintf(w, "%s %d: %d entries\n", db.ID, db.Version, len(db.Entries))
	if !entries {
		return
	}
	for _, e := range db.Entries {
		_, _ = fmt.Fprintf(w, "  %s\n", e.Describe(db.ID))
	}
}

func newExtractCmd(a *app) *cobra.Command {
	var (
		password string
		out      string
	)
	cmd := &cobra.Command{
		Use:   "extract DATABASE YEAR PATH",
		Short: "Extract a local source document and print the cache document",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			year, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("%w: year %q", common.ErrInvalidInput, args[1])
			}
			spec, err := extract.Lookup(kind, year)
			if err != nil {
				return err
			}

			path := args[2]
			if spec.Format == constants.XLSX {
				if password == "" {
					password = a.cfg.Password
				}
				plain, release, err := sheet.Decrypt(path, password, a.logger)
				defer release()
				if err != nil {
					return common.TransportError(string(kind), year, path, err)
				}
				path = plain
			}

			db, err := a.extractor().Extract(cmd.Context(), extract.Request{Kind: kind, Year: year, Path: path, URL: args[2]})
			if err != nil {
				return err
			}
			data, err := repository.Encode(db)
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			return os.WriteFile(out, data, 0o644)
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "spreadsheet password (default: configured)")
	cmd.Flags().StringVarP(&out, "output", "o", "", "write the document to a file instead of stdout")
	return cmd
}

func newSearchCmd(a *app) *cobra.Command {
	var (
		year   int
		filter search.Filter
		remote string
	)
	cmd := &cobra.Command{
		Use:   "search DATABASE",
		Short: "Filter a cached database and print matching entries as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			year = a.yearOr(year)

			var entries []entity.Entry
			if remote != "" {
				entries, err = remoteSearch(cmd, remote, kind, year, filter)
			} else {
				entries, err = localSearch(cmd, a, kind, year, filter)
			}
			if err != nil {
				return err
			}

			items := make([]map[string]any, 0, len(entries))
			for _, e := range entries {
				items = append(items, utils.EntryMap(e))
			}
			return writeJSON(cmd.OutOrStdout(), items)
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "release year (default: configured version)")
	cmd.Flags().StringVar(&filter.Category, "category", "", "category substring")
	cmd.Flags().IntVar(&filter.MaxQuartile, "quartile", 0, "keep quartiles up to N (1-4)")
	cmd.Flags().StringVarP(&filter.Query, "query", "q", ".", "case-insensitive regular expression")
	cmd.Flags().StringVar(&remote, "server", "", "query a running lookup service at this address")
	return cmd
}

func localSearch(cmd *cobra.Command, a *app, kind constants.Database, year int, filter search.Filter) ([]entity.Entry, error) {
	store, err := a.openStore(cmd.Context())
	if err != nil {
		return nil, err
	}
	defer func() { _ = store.Close() }()

	db, err := store.Load(cmd.Context(), string(kind), year)
	if err != nil {
		return nil, fmt.Errorf("%s %d (run index first): %w", kind, year, err)
	}
	hits, err := search.Search(db.Entries, filter)
	if err != nil {
		return nil, err
	}
	entries := make([]entity.Entry, 0, len(hits))
	for _, h := range hits {
		entries = append(entries, h.Entry)
	}
	return entries, nil
}

func remoteSearch(cmd *cobra.Command, addr string, kind constants.Database, year int, filter search.Filter) ([]entity.Entry, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	defer func() { _ = conn.Close() }()

	req, err := structpb.NewStruct(map[string]any{
		"database": string(kind),
		"version":  year,
		"category": filter.Category,
		"quartile": filter.MaxQuartile,
		"query":    filter.Query,
	})
	if err != nil {
		return nil, err
	}
	resp, err := server.NewClient(conn).Search(cmd.Context(), req)
	if err != nil {
		return nil, err
	}
	var entries []entity.Entry
	for _, v := range resp.GetFields()["entries"].GetListValue().GetValues() {
		entries = append(entries, utils.FromPBEntry(v.GetStructValue()))
	}
	return entries, nil
}

func newResolveCmd(a *app) *cobra.Command {
	var (
		year   int
		policy string
	)
	cmd := &cobra.Command{
		Use:   "resolve DATABASE NAME",
		Short: "Find the entry for a journal name or ISSN",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			p, err := search.ParsePolicy(policy)
			if err != nil {
				return err
			}
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			db, err := store.Load(cmd.Context(), string(kind), a.yearOr(year))
			if err != nil {
				return err
			}
			e, err := search.Resolve(db.Entries, args[1], p)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), utils.EntryMap(e))
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "release year (default: configured version)")
	cmd.Flags().StringVar(&policy, "policy", "first", "first or unique")
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var (
		year int
		out  string
	)
	cmd := &cobra.Command{
		Use:   "export DATABASE",
		Short: "Write a cached database to an XLSX workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			year = a.yearOr(year)
			if out == "" {
				out = fmt.Sprintf("%s-%d.xlsx", kind, year)
			}

			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			db, err := store.Load(cmd.Context(), string(kind), year)
			if err != nil {
				return err
			}
			if err := export.NewService(a.logger).WriteFile(cmd.Context(), db, out); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().IntVar(&year, "year", 0, "release year (default: configured version)")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output path (default DATABASE-YEAR.xlsx)")
	return cmd
}

func newServeCmd(a *app) *cobra.Command {
	var (
		addr    string
		workers int
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve cached databases over gRPC",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if addr == "" {
				addr = a.cfg.Server.GRPCAddr
			}

			store, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			lis, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen %s: %w", addr, err)
			}
			queue := async.NewIndexQueue(a.processor(store), a.logger, async.WithWorkers(workers))
			lookup := server.NewLookupServer(store, a.cfg.Version, a.logger).WithQueue(queue)
			srv := server.NewGRPCServer(lookup)

			a.logger.Info("uefiscdi listening", "addr", lis.Addr().String())
			errc := make(chan error, 1)
			go func() { errc <- srv.Serve(lis) }()

			select {
			case err := <-errc:
				queue.Shutdown(context.Background())
				return err
			case <-ctx.Done():
			}
			a.logger.Info("shutting down")
			srv.GracefulStop()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			queue.Shutdown(shutdownCtx)
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: configured)")
	cmd.Flags().IntVar(&workers, "workers", 2, "background index workers")
	return cmd
}

func newCacheCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the extraction cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "ping",
		Short: "Check that the cache backend is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			start := time.Now()
			if p, ok := store.(interface{ Ping(ctx context.Context) error }); ok {
				if err := p.Ping(cmd.Context()); err != nil {
					return err
				}
			} else if _, err := store.List(cmd.Context()); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "cache %s: OK (%s)\n", a.cfg.Cache.Backend, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}, &cobra.Command{
		Use:   "list",
		Short: "List cached databases",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			sums, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			_, _ = fmt.Fprintln(tw, "DATABASE\tVERSION\tENTRIES\tEXTRACTED\tURL")
			for _, s := range sums {
				_, _ = fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n", s.ID, s.Version, s.Entries, s.ExtractedAt.Format(time.RFC3339), s.URL)
			}
			return tw.Flush()
		},
	})
	return cmd
}
