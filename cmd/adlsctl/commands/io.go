package commands

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/adlstore/adls_sdk_go/pkg/adls"
)

const defaultChunk = "4MiB"

func parseChunk(s string) (int, error) {
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, errors.Wrapf(err, "chunk size %q", s)
	}
	if n == 0 || n > 1<<30 {
		return 0, errors.Errorf("chunk size %q out of range", s)
	}
	return int(n), nil
}

// readLocal reads a local file, or stdin for "-".
func readLocal(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(name)
	return data, errors.Wrapf(err, "read %s", name)
}

func (a *app) catCmd() *cobra.Command {
	var (
		offset int64
		length int64
		chunk  string
	)
	cmd := &cobra.Command{
		Use:   "cat PATH",
		Short: "Write a file's content to stdout",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := a.ctx(cmd)
			size, err := parseChunk(chunk)
			if err != nil {
				return err
			}
			entry, err := a.client.GetFileStatus(ctx, args[0], &adls.StatusOptions{ConsistentLength: true})
			if err != nil {
				return err
			}
			if entry.Type == adls.TypeDirectory {
				return errors.Errorf("cat %s: is a directory", args[0])
			}
			end := entry.Length
			if length >= 0 && offset+length < end {
				end = offset + length
			}

			session := adls.NewSessionID()
			buf := make([]byte, size)
			w := a.writer(cmd)
			for pos := offset; pos < end; {
				want := int(min(int64(size), end-pos))
				n, err := a.client.Open(ctx, args[0], pos, adls.Region(buf[:want]), session)
				if err != nil {
					return err
				}
				if n == 0 {
					break
				}
				if _, err := w.Write(buf[:n]); err != nil {
					return err
				}
				pos += int64(n)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&offset, "offset", 0, "byte offset to start reading at")
	cmd.Flags().Int64Var(&length, "length", -1, "maximum number of bytes to read")
	cmd.Flags().StringVar(&chunk, "chunk", defaultChunk, "bytes per read request")
	return cmd
}

func (a *app) putCmd() *cobra.Command {
	var (
		overwrite bool
		perm      string
		chunk     string
	)
	cmd := &cobra.Command{
		Use:   "put LOCAL PATH",
		Short: "Upload a local file (- for stdin)",
		Long: `Upload a local file. Content larger than --chunk is sent as a create
followed by appends at increasing offsets under one lease.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := a.ctx(cmd)
			size, err := parseChunk(chunk)
			if err != nil {
				return err
			}
			data, err := readLocal(cmd, args[0])
			if err != nil {
				return err
			}
			remote := args[1]

			lease, session := adls.NewLeaseID(), adls.NewSessionID()
			first := min(len(data), size)
			opts := adls.DefaultCreateOptions()
			opts.Overwrite = overwrite
			opts.Permission = perm
			opts.LeaseID = lease
			opts.SessionID = session
			opts.SyncFlag = syncFor(first == len(data))
			if err := a.client.Create(ctx, remote, adls.Region(data[:first]), opts); err != nil {
				return err
			}
			for off := first; off < len(data); {
				n := min(len(data)-off, size)
				region := adls.ByteRegion{Buf: data, Offset: off, Count: n}
				err := a.client.Append(ctx, remote, int64(off), region, &adls.AppendOptions{
					LeaseID:   lease,
					SessionID: session,
					SyncFlag:  syncFor(off+n == len(data)),
				})
				if err != nil {
					return err
				}
				off += n
			}
			a.done(cmd, "Uploaded %s to %s", humanize.IBytes(uint64(len(data))), remote)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&overwrite, "force", "f", false, "overwrite an existing file")
	cmd.Flags().StringVarP(&perm, "mode", "m", "", "octal permission of the new file")
	cmd.Flags().StringVar(&chunk, "chunk", defaultChunk, "bytes per request")
	return cmd
}

func syncFor(last bool) adls.SyncFlag {
	if last {
		return adls.SyncFlagClose
	}
	return adls.SyncFlagData
}

func (a *app) appendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "append LOCAL PATH",
		Short: "Append a local file (- for stdin) at the end of a remote file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := a.ctx(cmd)
			data, err := readLocal(cmd, args[0])
			if err != nil {
				return err
			}
			entry, err := a.client.GetFileStatus(ctx, args[1], &adls.StatusOptions{ConsistentLength: true})
			if err != nil {
				return err
			}
			err = a.client.Append(ctx, args[1], entry.Length, adls.Region(data), &adls.AppendOptions{SyncFlag: adls.SyncFlagClose})
			if err != nil {
				return err
			}
			a.done(cmd, "Appended %s to %s", humanize.IBytes(uint64(len(data))), args[1])
			return nil
		},
	}
}

func (a *app) ingestCmd() *cobra.Command {
	var writers int
	cmd := &cobra.Command{
		Use:   "ingest PATH LOCAL...",
		Short: "Concurrently append local files to one remote file",
		Long: `Each local file is appended as one record with concurrent append.
Records land in arrival order, so the order between files is not preserved.
The remote file is created on first append.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if writers < 1 {
				return errors.Errorf("--writers must be at least 1, got %d", writers)
			}
			remote, locals := args[0], args[1:]

			var total atomic.Int64
			g, ctx := errgroup.WithContext(a.ctx(cmd))
			g.SetLimit(writers)
			for _, local := range locals {
				local := local
				g.Go(func() error {
					data, err := readLocal(cmd, local)
					if err != nil {
						return err
					}
					if err := a.client.ConcurrentAppend(ctx, remote, adls.Region(data), true); err != nil {
						return err
					}
					total.Add(int64(len(data)))
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			a.done(cmd, "Appended %d records (%s) to %s", len(locals), humanize.IBytes(uint64(total.Load())), remote)
			return nil
		},
	}
	cmd.Flags().IntVarP(&writers, "writers", "w", 4, "concurrent writers")
	return cmd
}

func (a *app) concatCmd() *cobra.Command {
	var deleteSourceDir bool
	cmd := &cobra.Command{
		Use:   "concat DESTINATION SOURCE...",
		Short: "Concatenate source files into the destination and remove them",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Concat(a.ctx(cmd), args[0], args[1:], deleteSourceDir); err != nil {
				return err
			}
			a.done(cmd, "Concatenated %d files into %s", len(args)-1, args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&deleteSourceDir, "delete-source-dir", false, "delete the sources' directory afterwards")
	return cmd
}
