package commands

import (
	"fmt"
	"strconv"
	"time"

	"github.com/jakechorley/manpower/pkg/core/model"
)

func parseID(name, value string) (int64, error) {
	id, err := strconv.ParseInt(value, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%s must be a positive number, got %q", name, value)
	}
	return id, nil
}

func parseIDs(name string, values []string) ([]int64, error) {
	ids := make([]int64, 0, len(values))
	for _, v := range values {
		id, err := parseID(name, v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseDate(name, value string) (time.Time, error) {
	date, err := model.ParseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be a date in YYYY-MM-DD format, got %q", name, value)
	}
	return date, nil
}

// referenceDate returns the --date flag value, or today in the configured timezone
func (app *AppContext) referenceDate(value string) (time.Time, error) {
	if value == "" {
		return app.Cfg.Today(), nil
	}
	return parseDate("date", value)
}
