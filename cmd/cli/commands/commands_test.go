package commands

import (
	"context"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseCommandLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{"plain words", "fulfill 12 3 4", []string{"fulfill", "12", "3", "4"}},
		{"extra whitespace", "  rankCandidates \t 7  ", []string{"rankCandidates", "7"}},
		{"double quotes", `rejectSchedule abc 3 --reason "family emergency"`, []string{"rejectSchedule", "abc", "3", "--reason", "family emergency"}},
		{"single quotes", `filePermit 3 sick 2025-01-01 2025-01-02 --reason 'flu, fever'`, []string{"filePermit", "3", "sick", "2025-01-01", "2025-01-02", "--reason", "flu, fever"}},
		{"empty quotes", `rejectSchedule abc 3 --reason ""`, []string{"rejectSchedule", "abc", "3", "--reason", ""}},
		{"quote inside word", `a"b c"d`, []string{"ab cd"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCommandLine(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommandLine_UnclosedQuote(t *testing.T) {
	_, err := parseCommandLine(`rejectSchedule abc 3 --reason "oops`)
	assert.ErrorContains(t, err, "unclosed quote")
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs("employee_id", []string{"3", "10", "2"})
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 10, 2}, ids)

	for _, bad := range []string{"0", "-1", "abc", ""} {
		_, err := parseIDs("employee_id", []string{"1", bad})
		assert.ErrorContains(t, err, "employee_id must be a positive number", bad)
	}
}

func TestParseDate(t *testing.T) {
	date, err := parseDate("from", "2025-03-09")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC), date)

	_, err = parseDate("from", "09/03/2025")
	assert.ErrorContains(t, err, "from must be a date in YYYY-MM-DD format")
}

func TestRunInteractive_ResetsFlagsBetweenRuns(t *testing.T) {
	var reasons []string
	var reason string
	cmd := &cobra.Command{
		Use:  "rejectSchedule",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reasons = append(reasons, reason)
			return nil
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "", "")

	require.NoError(t, runInteractive(cmd, []string{"abc", "3", "--reason", "sick"}))
	require.NoError(t, runInteractive(cmd, []string{"def", "4"}))
	assert.Equal(t, []string{"sick", ""}, reasons)

	err := runInteractive(cmd, []string{"only-one"})
	assert.Error(t, err)
	assert.Len(t, reasons, 2)
}

func TestAppContextClose_ClosesRedis(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	app := &AppContext{Redis: rdb, Logger: zap.NewNop()}

	app.Close()

	assert.ErrorIs(t, rdb.Ping(context.Background()).Err(), redis.ErrClosed)
}

func TestAppContextClose_NothingOpened(t *testing.T) {
	assert.NotPanics(t, func() { (&AppContext{}).Close() })
}
