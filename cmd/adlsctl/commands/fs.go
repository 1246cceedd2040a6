package commands

import (
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/adlstore/adls_sdk_go/internal/cli/output"
	"github.com/adlstore/adls_sdk_go/pkg/adls"
)

func (a *app) lsCmd() *cobra.Command {
	var (
		pageSize int
		minimal  bool
		oid      bool
	)
	cmd := &cobra.Command{
		Use:   "ls PATH",
		Short: "List a directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "/"
			if len(args) == 1 {
				path = args[0]
			}
			opts := &adls.ListOptions{}
			if minimal {
				opts.Selection = adls.SelectionMinimal
			}
			if oid {
				opts.Repr = adls.ReprOID
			}
			entries, err := a.client.ListAll(a.ctx(cmd), path, pageSize, opts)
			if err != nil {
				return err
			}
			list := newEntryList(entries)
			return a.print(cmd, list, list, "No entries found.")
		},
	}
	cmd.Flags().IntVar(&pageSize, "page-size", 0, "entries per request (default 4000)")
	cmd.Flags().BoolVar(&minimal, "minimal", false, "request the minimal selection")
	cmd.Flags().BoolVar(&oid, "oid", false, "show owners as object ids")
	return cmd
}

func (a *app) statCmd() *cobra.Command {
	var oid bool
	cmd := &cobra.Command{
		Use:   "stat PATH",
		Short: "Show the status of a file or directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &adls.StatusOptions{ConsistentLength: true}
			if oid {
				opts.Repr = adls.ReprOID
			}
			entry, err := a.client.GetFileStatus(a.ctx(cmd), args[0], opts)
			if err != nil {
				return err
			}
			view := viewOf(*entry)
			if a.out == output.FormatTable {
				return output.SimpleTable(a.writer(cmd), view.pairs())
			}
			return a.print(cmd, view, nil, "")
		},
	}
	cmd.Flags().BoolVar(&oid, "oid", false, "show owners as object ids")
	return cmd
}

func (a *app) mkdirCmd() *cobra.Command {
	var perm string
	cmd := &cobra.Command{
		Use:   "mkdir PATH",
		Short: "Create a directory and any missing parents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := a.client.Mkdir(a.ctx(cmd), args[0], perm)
			if err != nil {
				return err
			}
			if !ok {
				return errors.Errorf("mkdir %s: not created", args[0])
			}
			a.done(cmd, "Created %s", args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&perm, "mode", "m", "", "octal permission, e.g. 750")
	return cmd
}

func (a *app) rmCmd() *cobra.Command {
	var recursive bool
	cmd := &cobra.Command{
		Use:   "rm PATH",
		Short: "Delete a file or directory (moves it to the trash)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := a.client.Delete(a.ctx(cmd), args[0], recursive)
			if err != nil {
				return err
			}
			if !ok {
				return errors.Errorf("rm %s: nothing deleted", args[0])
			}
			a.done(cmd, "Deleted %s", args[0])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "delete non-empty directories")
	return cmd
}

func (a *app) mvCmd() *cobra.Command {
	var overwrite bool
	cmd := &cobra.Command{
		Use:   "mv SOURCE DESTINATION",
		Short: "Rename a file or directory",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := a.client.Rename(a.ctx(cmd), args[0], args[1], overwrite)
			if err != nil {
				return err
			}
			if !ok {
				return errors.Errorf("mv %s %s: rename refused", args[0], args[1])
			}
			a.done(cmd, "Renamed %s to %s", args[0], args[1])
			return nil
		},
	}
	cmd.Flags().BoolVarP(&overwrite, "force", "f", false, "overwrite an existing destination")
	return cmd
}

func (a *app) duCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "du PATH",
		Short: "Summarize the content below a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.client.GetContentSummary(a.ctx(cmd), args[0])
			if err != nil {
				return err
			}
			view := summaryView{
				Directories:   s.DirectoryCount,
				Files:         s.FileCount,
				Length:        s.Length,
				SpaceConsumed: s.SpaceConsumed,
			}
			if a.out == output.FormatTable {
				return output.SimpleTable(a.writer(cmd), view.pairs())
			}
			return a.print(cmd, view, nil, "")
		},
	}
}

func (a *app) touchCmd() *cobra.Command {
	var noCreate bool
	cmd := &cobra.Command{
		Use:   "touch PATH",
		Short: "Set access and modification times to now, creating the file if needed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := a.ctx(cmd)
			path := args[0]
			if _, err := a.client.GetFileStatus(ctx, path, nil); err != nil {
				if !isNotFound(err) || noCreate {
					return err
				}
				if err := a.client.Create(ctx, path, adls.ByteRegion{}, nil); err != nil {
					return err
				}
			}
			now := time.Now().UnixMilli()
			return a.client.SetTimes(ctx, path, now, now)
		},
	}
	cmd.Flags().BoolVarP(&noCreate, "no-create", "c", false, "do not create missing files")
	return cmd
}
