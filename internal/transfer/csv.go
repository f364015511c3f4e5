// Package transfer implements the CSV export/import side channel. The format
// is fixed: fifteen columns, every data field double-quoted with embedded
// quotes doubled, tags and subtasks as ";"-joined sub-lists, and the full
// completion history JSON-encoded into the final column.
package transfer

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/kwheeler/garage/internal/errs"
	"github.com/kwheeler/garage/internal/models"
)

// Header is the exact column row every export starts with.
const Header = "id,title,description,type,interval,kilometers,lastDate,nextDate,lastKm,nextKm,tags,tasks,createdByUser,isRecurring,completionHistory"

// headerPrefix must appear in a file before import parsing proceeds.
const headerPrefix = "id,title,description,type"

// listSeparator joins tags and subtasks inside one field. Values containing
// it cannot round-trip; this is a known limitation of the format.
const listSeparator = ";"

// field ties one column to its encode and decode halves. The schema is this
// ordered list; nothing else indexes columns by position.
type field struct {
	name   string
	encode func(task models.MaintenanceTask) string
	decode func(value string, task *models.MaintenanceTask) error
}

var taskFields = []field{
	{
		name:   "id",
		encode: func(task models.MaintenanceTask) string { return task.ID },
		decode: func(value string, task *models.MaintenanceTask) error {
			task.ID = value
			return nil
		},
	},
	{
		name:   "title",
		encode: func(task models.MaintenanceTask) string { return task.Title },
		decode: func(value string, task *models.MaintenanceTask) error {
			task.Title = value
			return nil
		},
	},
	{
		name:   "description",
		encode: func(task models.MaintenanceTask) string { return task.Description },
		decode: func(value string, task *models.MaintenanceTask) error {
			task.Description = value
			return nil
		},
	},
	{
		name:   "type",
		encode: func(task models.MaintenanceTask) string { return string(task.Kind) },
		decode: func(value string, task *models.MaintenanceTask) error {
			kind, err := parseKind(value)
			if err != nil {
				return err
			}
			task.Kind = kind
			return nil
		},
	},
	{
		name:   "interval",
		encode: func(task models.MaintenanceTask) string { return task.Interval },
		decode: func(value string, task *models.MaintenanceTask) error {
			task.Interval = value
			return nil
		},
	},
	{
		name:   "kilometers",
		encode: func(task models.MaintenanceTask) string { return formatDistance(task.DistanceInterval) },
		decode: func(value string, task *models.MaintenanceTask) error {
			distance, err := parseDistance(value)
			if err != nil {
				return fmt.Errorf("kilometers: %w", err)
			}
			task.DistanceInterval = distance
			return nil
		},
	},
	{
		name:   "lastDate",
		encode: func(task models.MaintenanceTask) string { return formatDate(task.LastCompletedAt) },
		decode: func(value string, task *models.MaintenanceTask) error {
			date, err := parseDate(value)
			if err != nil {
				return fmt.Errorf("lastDate: %w", err)
			}
			task.LastCompletedAt = date
			return nil
		},
	},
	{
		name:   "nextDate",
		encode: func(task models.MaintenanceTask) string { return formatDate(task.NextDueAt) },
		decode: func(value string, task *models.MaintenanceTask) error {
			date, err := parseDate(value)
			if err != nil {
				return fmt.Errorf("nextDate: %w", err)
			}
			task.NextDueAt = date
			return nil
		},
	},
	{
		name:   "lastKm",
		encode: func(task models.MaintenanceTask) string { return formatOptionalDistance(task.LastCompletedAtDistance) },
		decode: func(value string, task *models.MaintenanceTask) error {
			distance, err := parseOptionalDistance(value)
			if err != nil {
				return fmt.Errorf("lastKm: %w", err)
			}
			task.LastCompletedAtDistance = distance
			return nil
		},
	},
	{
		name:   "nextKm",
		encode: func(task models.MaintenanceTask) string { return formatOptionalDistance(task.NextDueAtDistance) },
		decode: func(value string, task *models.MaintenanceTask) error {
			distance, err := parseOptionalDistance(value)
			if err != nil {
				return fmt.Errorf("nextKm: %w", err)
			}
			task.NextDueAtDistance = distance
			return nil
		},
	},
	{
		name:   "tags",
		encode: func(task models.MaintenanceTask) string { return strings.Join(task.Tags, listSeparator) },
		decode: func(value string, task *models.MaintenanceTask) error {
			task.Tags = splitList(value)
			return nil
		},
	},
	{
		name:   "tasks",
		encode: func(task models.MaintenanceTask) string { return strings.Join(task.Subtasks, listSeparator) },
		decode: func(value string, task *models.MaintenanceTask) error {
			task.Subtasks = splitList(value)
			return nil
		},
	},
	{
		name:   "createdByUser",
		encode: func(task models.MaintenanceTask) string { return strconv.FormatBool(task.CreatedByUser) },
		decode: func(value string, task *models.MaintenanceTask) error {
			if value == "" {
				task.CreatedByUser = false
				return nil
			}
			created, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("createdByUser: %w", err)
			}
			task.CreatedByUser = created
			return nil
		},
	},
	{
		name:   "isRecurring",
		encode: func(task models.MaintenanceTask) string { return strconv.FormatBool(task.IsRecurring) },
		decode: func(value string, task *models.MaintenanceTask) error {
			if value == "" {
				task.IsRecurring = true
				return nil
			}
			recurring, err := strconv.ParseBool(value)
			if err != nil {
				return fmt.Errorf("isRecurring: %w", err)
			}
			task.IsRecurring = recurring
			return nil
		},
	},
	{
		name: "completionHistory",
		encode: func(task models.MaintenanceTask) string {
			records := task.CompletionHistory
			if records == nil {
				records = []models.CompletionRecord{}
			}
			encoded, err := json.Marshal(records)
			if err != nil {
				slog.Warn("encoding completion history, exporting empty", "task", task.ID, "error", err)
				return "[]"
			}
			return stripControl(string(encoded))
		},
		decode: func(value string, task *models.MaintenanceTask) error {
			if value == "" {
				return nil
			}
			var records []models.CompletionRecord
			if err := json.Unmarshal([]byte(value), &records); err != nil {
				// Tolerant by contract: a corrupt history yields an empty
				// history for this task, not an aborted import.
				slog.Warn("decoding completion history, importing empty", "task", task.ID, "error", err)
				return nil
			}
			if len(records) > 0 {
				task.CompletionHistory = records
			}
			return nil
		},
	},
}

// Encode renders the task collection in export form.
func Encode(tasks []models.MaintenanceTask) string {
	var builder strings.Builder
	builder.WriteString(Header)
	builder.WriteString("\n")

	for _, task := range tasks {
		for i, column := range taskFields {
			if i > 0 {
				builder.WriteString(",")
			}
			builder.WriteString(quote(column.encode(task)))
		}
		builder.WriteString("\n")
	}
	return builder.String()
}

// Decode parses export-form content back into tasks. Any row that cannot be
// tokenized, decoded, or validated aborts the whole decode with a
// row-numbered FormatError; only history corruption is tolerated per-task.
func Decode(content string) ([]models.MaintenanceTask, error) {
	if !strings.Contains(content, headerPrefix) {
		return nil, errs.Format(0, "missing required header "+strconv.Quote(headerPrefix))
	}

	rows, err := tokenize(content)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errs.Format(0, "file contains no rows")
	}

	tasks := make([]models.MaintenanceTask, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		rowNumber := i + 2

		if len(cells) == 1 && cells[0] == "" {
			continue
		}
		if len(cells) != len(taskFields) {
			return nil, errs.Format(rowNumber, fmt.Sprintf("expected %d fields, got %d", len(taskFields), len(cells)))
		}

		var task models.MaintenanceTask
		for j, column := range taskFields {
			if err := column.decode(cells[j], &task); err != nil {
				return nil, errs.Format(rowNumber, err.Error())
			}
		}

		if task.ID == "" {
			return nil, errs.Format(rowNumber, "task id is required")
		}
		if task.Title == "" {
			return nil, errs.Format(rowNumber, "task title is required")
		}

		tasks = append(tasks, task)
	}
	return tasks, nil
}

// Filename names an export file for the given day.
func Filename(now time.Time) string {
	return fmt.Sprintf("maintenance_tasks_%s.csv", now.Format("2006-01-02"))
}

// tokenize is a quote-aware splitter over the whole document: commas and
// newlines inside quoted fields are data, a doubled quote inside a quoted
// field is a literal quote.
func tokenize(content string) ([][]string, error) {
	var rows [][]string
	var cells []string
	var current strings.Builder
	inQuotes := false
	row := 1

	runes := []rune(content)
	for i := 0; i < len(runes); i++ {
		ch := runes[i]

		if inQuotes {
			if ch == '"' {
				if i+1 < len(runes) && runes[i+1] == '"' {
					current.WriteRune('"')
					i++
					continue
				}
				inQuotes = false
				continue
			}
			current.WriteRune(ch)
			continue
		}

		switch ch {
		case '"':
			inQuotes = true
		case ',':
			cells = append(cells, current.String())
			current.Reset()
		case '\r':
		case '\n':
			cells = append(cells, current.String())
			current.Reset()
			rows = append(rows, cells)
			cells = nil
			row++
		default:
			current.WriteRune(ch)
		}
	}

	if inQuotes {
		return nil, errs.Format(row, "unterminated quoted field")
	}
	if current.Len() > 0 || len(cells) > 0 {
		cells = append(cells, current.String())
		rows = append(rows, cells)
	}
	return rows, nil
}

func quote(value string) string {
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, listSeparator)
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if part != "" {
			items = append(items, part)
		}
	}
	if len(items) == 0 {
		return nil
	}
	return items
}

// parseKind accepts the validator's narrow set: the two schedule kinds plus
// the "undefined" sentinel older exports carry, which maps to time-based.
func parseKind(value string) (models.TaskKind, error) {
	switch value {
	case string(models.KindTimeBased):
		return models.KindTimeBased, nil
	case string(models.KindDistanceBased):
		return models.KindDistanceBased, nil
	case "undefined":
		return models.KindTimeBased, nil
	}
	return "", fmt.Errorf("unsupported task type %q", value)
}

func formatDate(date *time.Time) string {
	if date == nil {
		return ""
	}
	return date.Format(time.RFC3339Nano)
}

func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	date, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return nil, err
	}
	return &date, nil
}

func formatDistance(kilometers float64) string {
	if kilometers == 0 {
		return ""
	}
	return strconv.FormatFloat(kilometers, 'f', -1, 64)
}

func parseDistance(value string) (float64, error) {
	if value == "" {
		return 0, nil
	}
	return strconv.ParseFloat(value, 64)
}

func formatOptionalDistance(kilometers *float64) string {
	if kilometers == nil {
		return ""
	}
	return strconv.FormatFloat(*kilometers, 'f', -1, 64)
}

func parseOptionalDistance(value string) (*float64, error) {
	if value == "" {
		return nil, nil
	}
	kilometers, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, err
	}
	return &kilometers, nil
}

func stripControl(value string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 {
			return -1
		}
		return r
	}, value)
}
