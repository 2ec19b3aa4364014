// Command lifecyclectl is the administrator CLI for the document lifecycle store.
// It talks to the configured store directly and needs no running API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"

	"github.com/kirillkom/doc-lifecycle/internal/bootstrap"
	"github.com/kirillkom/doc-lifecycle/internal/config"
	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
	"github.com/kirillkom/doc-lifecycle/internal/core/ports"
	"github.com/kirillkom/doc-lifecycle/internal/observability/logging"
)

// CLI defines the command-line interface for lifecyclectl.
type CLI struct {
	Admin string `name:"admin" default:"admin" env:"LIFECYCLECTL_ADMIN" help:"Administrator id recorded on admin actions"`

	Locks    LocksGroup    `cmd:"" help:"Inspect and reclaim edit locks"`
	Handover HandoverGroup `cmd:"" help:"Handover operations"`
	Doc      DocGroup      `cmd:"" help:"Document inspection"`
}

type LocksGroup struct {
	List    LocksListCmd    `cmd:"" help:"List active locks"`
	Reclaim LocksReclaimCmd `cmd:"" help:"Destroy the lock on a document regardless of holder"`
}

type HandoverGroup struct {
	Convert HandoverConvertCmd `cmd:"" help:"Return a handed-over document to the pending pool"`
}

type DocGroup struct {
	List   DocListCmd   `cmd:"" help:"List documents"`
	Show   DocShowCmd   `cmd:"" help:"Show a document with its current version, lock and progress"`
	Events DocEventsCmd `cmd:"" help:"Show the recorded lifecycle events of a document"`
}

// env carries the services every command runs against.
type env struct {
	lifecycle ports.LifecycleService
	locks     ports.LockService
	reader    ports.DocumentReader
	history   ports.EventHistory
	out       io.Writer
	admin     string
	now       func() time.Time
}

type LocksListCmd struct {
	Stale bool `help:"Only show locks older than 24 hours"`
}

func (c *LocksListCmd) Run(e *env) error {
	ctx := context.Background()
	locks, err := e.locks.ListLocks(ctx)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DOCUMENT\tHOLDER\tACQUIRED\tAGE\tSTALE\tUNITS")
	for _, lock := range locks {
		if c.Stale && !lock.IsStale {
			continue
		}
		acquired, age := "-", "-"
		if lock.AcquiredAt != nil {
			acquired = lock.AcquiredAt.Format(time.RFC3339)
			age = e.now().Sub(*lock.AcquiredAt).Truncate(time.Minute).String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%d\n",
			lock.DocumentID, holderLabel(lock), acquired, age, lock.IsStale, len(lock.CompletedUnits))
	}
	return tw.Flush()
}

type LocksReclaimCmd struct {
	Document string `arg:"" help:"Document id"`
}

func (c *LocksReclaimCmd) Run(e *env) error {
	ctx := context.Background()
	if err := e.lifecycle.ReclaimLock(ctx, c.Document, e.admin); err != nil {
		return err
	}
	fmt.Fprintf(e.out, "lock on %s reclaimed by %s\n", c.Document, e.admin)
	return nil
}

type HandoverConvertCmd struct {
	Document string `arg:"" help:"Document id"`
}

func (c *HandoverConvertCmd) Run(e *env) error {
	ctx := context.Background()
	result, err := e.lifecycle.ConvertToPending(ctx, c.Document, e.admin)
	if err != nil {
		return err
	}
	if result.AppendedVersion == nil {
		fmt.Fprintf(e.out, "document %s is %s; no translation to copy forward\n", c.Document, result.Document.Status)
		return nil
	}
	fmt.Fprintf(e.out, "document %s is %s; work copied forward as version %d\n",
		c.Document, result.Document.Status, result.AppendedVersion.Number)
	return nil
}

type DocListCmd struct {
	Status   string `help:"Filter by status, e.g. PENDING_TRANSLATION"`
	Category string `help:"Filter by category id"`
}

func (c *DocListCmd) Run(e *env) error {
	ctx := context.Background()
	docs, err := e.reader.List(ctx, domain.DocumentFilter{
		Status:     domain.DocumentStatus(strings.ToUpper(strings.TrimSpace(c.Status))),
		CategoryID: strings.TrimSpace(c.Category),
	})
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tCATEGORY\tTITLE\tUPDATED")
	for _, doc := range docs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			doc.ID, doc.Status, doc.CategoryID, doc.Title, doc.UpdatedAt.Format(time.RFC3339))
	}
	return tw.Flush()
}

type DocShowCmd struct {
	Document string `arg:"" help:"Document id"`
	Content  bool   `help:"Include current version content"`
}

func (c *DocShowCmd) Run(e *env) error {
	ctx := context.Background()
	view, err := e.reader.View(ctx, c.Document)
	if err != nil {
		return err
	}
	if !c.Content && view.CurrentVersion != nil {
		current := *view.CurrentVersion
		current.Content = ""
		view.CurrentVersion = &current
	}
	enc := json.NewEncoder(e.out)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}

type DocEventsCmd struct {
	Document string `arg:"" help:"Document id"`
}

func (c *DocEventsCmd) Run(e *env) error {
	ctx := context.Background()
	events, err := e.history.History(ctx, c.Document)
	if err != nil {
		return err
	}
	tw := tabwriter.NewWriter(e.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "OCCURRED\tACTION\tFROM\tTO\tACTOR\tVERSION")
	for _, event := range events {
		version := "-"
		if event.VersionNumber > 0 {
			version = fmt.Sprintf("%d", event.VersionNumber)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			event.OccurredAt.Format(time.RFC3339), event.Action, event.FromStatus, event.ToStatus, event.ActorID, version)
	}
	return tw.Flush()
}

func holderLabel(lock domain.LockState) string {
	if lock.HolderName == "" || lock.HolderName == lock.HolderID {
		return lock.HolderID
	}
	return fmt.Sprintf("%s (%s)", lock.HolderName, lock.HolderID)
}

func main() {
	cfg := config.Load()
	logging.Install("lifecyclectl", cfg.LogLevel)

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("lifecyclectl"),
		kong.Description("Administer document locks, handovers and lifecycle history"),
		kong.UsageOnError(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, nil)
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	err = kctx.Run(&env{
		lifecycle: app.LifecycleUC,
		locks:     app.LockUC,
		reader:    app.ReaderUC,
		history:   app.AuditUC,
		out:       os.Stdout,
		admin:     cli.Admin,
		now:       func() time.Time { return time.Now().UTC() },
	})
	kctx.FatalIfErrorf(err)
}
