package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/plannr/internal/store"
)

// ToCSV writes one row per task across all partitions.
func ToCSV(tasks []store.Task, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	// Header
	if err := w.Write([]string{"ID", "Text", "Partition", "Estimated", "Actual (s)", "Actual", "Completed", "Created", "Completed At", "Source"}); err != nil {
		return err
	}

	for _, t := range tasks {
		completedAt := ""
		if t.CompletedAt != nil {
			completedAt = t.CompletedAt.Local().Format(time.RFC3339)
		}
		completed := "no"
		if t.Completed {
			completed = "yes"
		}

		row := []string{
			t.ID,
			t.Text,
			string(t.Partition),
			t.EstimatedTime,
			fmt.Sprintf("%d", t.ActualTime),
			formatDuration(t.ActualTime),
			completed,
			t.CreatedAt.Local().Format(time.RFC3339),
			completedAt,
			t.Source,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	return w.Error()
}

func formatDuration(secs int64) string {
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
