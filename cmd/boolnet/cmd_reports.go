package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvandessel/boolnet/internal/backup"
	"github.com/nvandessel/boolnet/internal/store"
)

func newReportsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Browse saved analysis reports",
		Long: `Every analysis command saves a report to the report store
(~/.boolnet/reports.db by default) unless --no-save is given.

Examples:
  boolnet reports list
  boolnet reports list --for rule30-n5
  boolnet reports show <id>
  boolnet reports delete <id>
  boolnet reports export --keep 5
  boolnet reports import ~/.boolnet/backups/boolnet-reports-20260101-120000.000.json.gz
  boolnet reports verify archive.json.gz
  boolnet reports archives`,
	}
	cmd.AddCommand(
		newReportsListCmd(),
		newReportsShowCmd(),
		newReportsDeleteCmd(),
		newReportsExportCmd(),
		newReportsImportCmd(),
		newReportsVerifyCmd(),
		newReportsArchivesCmd(),
	)
	return cmd
}

// withStore opens a session and its report store for fn.
func withStore(cmd *cobra.Command, fn func(s *session, st store.ReportStore) error) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	st, err := s.openStore()
	if err != nil {
		return fmt.Errorf("opening report store: %w", err)
	}
	defer st.Close()
	return fn(s, st)
}

func newReportsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved reports, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("for")
			return withStore(cmd, func(s *session, st store.ReportStore) error {
				reports, err := st.ListReports(cmd.Context(), name)
				if err != nil {
					return err
				}
				if reports == nil {
					reports = []store.Report{}
				}
				return s.emit(map[string]any{"reports": reports, "count": len(reports)}, func(w io.Writer) {
					if len(reports) == 0 {
						fmt.Fprintln(w, "No reports found.")
						return
					}
					for _, r := range reports {
						fmt.Fprintf(w, "%s  %s  %-28s %s (%s)\n",
							r.ID, r.CreatedAt.Local().Format(time.DateTime), r.Analysis, r.Network,
							r.Duration.Round(time.Millisecond))
					}
				})
			})
		},
	}
	cmd.Flags().String("for", "", "Only reports for this network name")
	return cmd
}

func newReportsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(s *session, st store.ReportStore) error {
				r, err := st.GetReport(cmd.Context(), args[0])
				if errors.Is(err, store.ErrNotFound) {
					return fmt.Errorf("report %s: %w", args[0], err)
				}
				if err != nil {
					return err
				}
				return s.emit(r, func(w io.Writer) {
					fmt.Fprintf(w, "id:          %s\n", r.ID)
					fmt.Fprintf(w, "network:     %s\n", r.Network)
					fmt.Fprintf(w, "fingerprint: %s\n", r.Fingerprint)
					fmt.Fprintf(w, "analysis:    %s\n", r.Analysis)
					fmt.Fprintf(w, "created:     %s\n", r.CreatedAt.Local().Format(time.RFC3339))
					fmt.Fprintf(w, "duration:    %s\n", r.Duration)
					if len(r.Params) > 0 {
						fmt.Fprintf(w, "params:      %s\n", r.Params)
					}
					fmt.Fprintf(w, "result:      %s\n", r.Result)
				})
			})
		},
	}
}

func newReportsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete one report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, func(s *session, st store.ReportStore) error {
				if err := st.DeleteReport(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("report %s: %w", args[0], err)
				}
				return s.emit(map[string]string{"deleted": args[0]}, func(w io.Writer) {
					fmt.Fprintf(w, "Deleted report %s\n", args[0])
				})
			})
		},
	}
}

func newReportsExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write saved reports to a checksummed archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("for")
			out, _ := cmd.Flags().GetString("out")
			keep, _ := cmd.Flags().GetInt("keep")
			maxAge, _ := cmd.Flags().GetString("max-age")

			var policies backup.AnyOf
			if keep > 0 {
				policies = append(policies, backup.LatestPerNetwork{Keep: keep})
			}
			if maxAge != "" {
				d, err := backup.ParseDuration(maxAge)
				if err != nil {
					return fmt.Errorf("--max-age: %w", err)
				}
				policies = append(policies, backup.NewerThan{MaxAge: d})
			}

			return withStore(cmd, func(s *session, st store.ReportStore) error {
				dir := ""
				if out == "" {
					var err error
					if dir, err = backup.DefaultDir(); err != nil {
						return err
					}
					out = backup.GeneratePath(dir, name, time.Now())
				}

				header, err := backup.Export(cmd.Context(), st, name, out)
				if err != nil {
					return err
				}
				s.logger.Debug("exported reports", "path", out, "reports", header.ReportCount)

				var deleted []string
				if len(policies) > 0 && dir != "" {
					deleted, err = backup.ApplyRetention(dir, policies)
					if err != nil {
						return fmt.Errorf("applying retention: %w", err)
					}
				}
				return s.emit(map[string]any{
					"path":   out,
					"header": header,
					"pruned": len(deleted),
				}, func(w io.Writer) {
					fmt.Fprintf(w, "Exported %d reports to %s\n", header.ReportCount, out)
					if len(deleted) > 0 {
						fmt.Fprintf(w, "Pruned %d old archives\n", len(deleted))
					}
				})
			})
		},
	}
	cmd.Flags().String("for", "", "Only reports for this network name")
	cmd.Flags().StringP("out", "o", "", "Archive path (default ~/.boolnet/backups/boolnet-reports-<time>.json.gz)")
	cmd.Flags().Int("keep", 0, "Keep only the N newest archives of each network in the default directory")
	cmd.Flags().String("max-age", "", "Keep archives newer than this (e.g. 30d, 2w); combined with --keep as a union")
	return cmd
}

func newReportsImportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <path>",
		Short: "Load reports from an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			replace, _ := cmd.Flags().GetBool("replace")
			mode := backup.RestoreMerge
			if replace {
				mode = backup.RestoreReplace
			}
			return withStore(cmd, func(s *session, st store.ReportStore) error {
				res, err := backup.Import(cmd.Context(), st, args[0], mode)
				if err != nil {
					return err
				}
				return s.emit(res, func(w io.Writer) {
					fmt.Fprintf(w, "Restored %d reports, skipped %d\n", res.Restored, res.Skipped)
				})
			})
		},
	}
	cmd.Flags().Bool("replace", false, "Overwrite reports whose ID already exists")
	return cmd
}

func newReportsVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <path>",
		Short: "Check an archive's checksum",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := backup.VerifyChecksum(args[0]); err != nil {
				return err
			}
			header, err := backup.ReadHeader(args[0])
			if err != nil {
				return err
			}
			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(header)
			}
			fmt.Fprintf(out, "OK: %d reports, created %s\n",
				header.ReportCount, header.CreatedAt.Local().Format(time.RFC3339))
			return nil
		},
	}
}

// archiveView is one archive in the backup directory.
type archiveView struct {
	Path      string    `json:"path"`
	Network   string    `json:"network,omitempty"`
	Reports   int       `json:"reports"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

func newReportsArchivesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "archives",
		Short: "List archives in the default backup directory, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := backup.DefaultDir()
			if err != nil {
				return err
			}
			archives, err := backup.List(dir)
			if err != nil {
				return err
			}
			views := make([]archiveView, len(archives))
			for i, a := range archives {
				views[i] = archiveView{Path: a.Path, Network: a.Network, Reports: a.Reports, Size: a.Size, CreatedAt: a.CreatedAt}
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()
			if jsonOut {
				return json.NewEncoder(out).Encode(views)
			}
			if len(views) == 0 {
				fmt.Fprintf(out, "No archives in %s\n", dir)
				return nil
			}
			for _, v := range views {
				network := v.Network
				if network == "" {
					network = "(all)"
				}
				fmt.Fprintf(out, "%s  %-20s %4d reports  %s\n",
					v.CreatedAt.Local().Format(time.RFC3339), network, v.Reports, filepath.Base(v.Path))
			}
			return nil
		},
	}
}
