package printer

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/traduct/dashsync/internal/cache"
	"github.com/traduct/dashsync/internal/model"
)

// TablePrinter prints dashboard information in a table format.
type TablePrinter struct {
	writer io.Writer
}

// NewTablePrinter creates a new table printer.
func NewTablePrinter(w io.Writer) *TablePrinter {
	return &TablePrinter{writer: w}
}

// PrintTaskList prints translation tasks in a table format with a paging
// footer.
func (t *TablePrinter) PrintTaskList(tasks cache.Collection[model.Task]) error {
	if len(tasks.Entities) == 0 {
		fmt.Fprintln(t.writer, "No tasks.")
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)

	// Print header
	fmt.Fprintln(tw, "ID\tDOCUMENT\tLANGS\tSTATUS\tPROGRESS\tOWNER\tCREATED")

	// Print rows
	for _, task := range tasks.Entities {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			task.ID,
			task.DocumentName,
			langs(task),
			taskStatus(task),
			progress(task),
			task.OwnerEmail,
			TimeAgo(task.CreatedAt),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(t.writer, "\nShowing %d of %d tasks\n", len(tasks.Entities), tasks.Total)

	return nil
}

// PrintGrantList prints a group's provider access list in priority order.
func (t *TablePrinter) PrintGrantList(grants cache.Collection[model.Grant]) error {
	if len(grants.Entities) == 0 {
		fmt.Fprintln(t.writer, "No providers granted.")
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "PRIORITY\tPROVIDER\tGRANTED")

	for i, g := range grants.Entities {
		fmt.Fprintf(tw, "%d\t%s\t%s\n", i, g.ProviderID, TimeAgo(g.CreatedAt))
	}

	return nil
}

// PrintProviderList prints provider configurations in a table format.
func (t *TablePrinter) PrintProviderList(providers []model.Provider) error {
	if len(providers) == 0 {
		fmt.Fprintln(t.writer, "No providers.")
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tNAME\tTYPE\tACTIVE\tBACKEND\tCREATED")

	for _, p := range providers {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\t%s\n",
			p.ID, p.Name, p.Type, p.Active, model.SettingsSummary(p.Settings), TimeAgo(p.CreatedAt))
	}

	return nil
}

// PrintUserList prints user accounts in a table format.
func (t *TablePrinter) PrintUserList(users []model.User) error {
	if len(users) == 0 {
		fmt.Fprintln(t.writer, "No users.")
		return nil
	}

	tw := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ID\tEMAIL\tNAME\tROLE\tACTIVE\tPAGES TODAY\tCREATED")

	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%s\t%s\n",
			u.ID, u.Email, u.Name, u.Role, u.Active, pageUsage(u), TimeAgo(u.CreatedAt))
	}

	return nil
}

// PrintNotification prints a settled mutation outcome as a one-line report.
func (t *TablePrinter) PrintNotification(n model.Notification) error {
	var parts []string

	switch n.Level {
	case model.NotificationSuccess:
		parts = append(parts, "OK")
	case model.NotificationWarning:
		parts = append(parts, "WARN")
	default:
		parts = append(parts, "FAILED")
	}

	parts = append(parts, string(n.Action))
	if n.EntityID != "" {
		parts = append(parts, n.EntityID)
	}
	if n.Message != "" {
		parts = append(parts, "("+n.Message+")")
	}
	if n.Retry {
		parts = append(parts, "[retryable]")
	}

	fmt.Fprintln(t.writer, strings.Join(parts, " "))

	return nil
}

// PrintMessage prints a simple message.
func (t *TablePrinter) PrintMessage(msg string) error {
	fmt.Fprintln(t.writer, msg)
	return nil
}

func langs(task model.Task) string {
	if task.SourceLang == "" && task.TargetLang == "" {
		return "-"
	}
	return task.SourceLang + ">" + task.TargetLang
}

func taskStatus(task model.Task) string {
	if task.Status == model.TaskStatusFailed && task.Error != "" {
		return fmt.Sprintf("%s (%s)", task.Status, task.Error)
	}
	return string(task.Status)
}

func progress(task model.Task) string {
	s := fmt.Sprintf("%d%%", task.Progress)
	if task.ProgressMessage != "" {
		s += " " + task.ProgressMessage
	}
	return s
}

func pageUsage(u model.User) string {
	if u.DailyPageLimit <= 0 {
		return fmt.Sprintf("%d", u.DailyPageUsed)
	}
	return fmt.Sprintf("%d/%d", u.DailyPageUsed, u.DailyPageLimit)
}
