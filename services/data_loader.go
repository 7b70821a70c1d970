package services

import (
	"context"
	"fmt"
	"os"

	"github.com/bytedance/sonic"

	"pickem-app/logging"
)

// DataLoader seeds the schedule from a JSON file at startup
type DataLoader struct {
	schedule *ScheduleService
	logger   *logging.Logger
}

func NewDataLoader(schedule *ScheduleService) *DataLoader {
	return &DataLoader{
		schedule: schedule,
		logger:   logging.WithPrefix("DataLoader"),
	}
}

// ReadScheduleFile decodes a JSON array of schedule rows
func ReadScheduleFile(path string) ([]ScheduleRow, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schedule %s: %w", path, err)
	}

	var rows []ScheduleRow
	if err := sonic.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode schedule %s: %w", path, err)
	}
	return rows, nil
}

// LoadScheduleFile imports the seed file unless the schedule already has games
func (dl *DataLoader) LoadScheduleFile(ctx context.Context, path string) error {
	dl.logger.Infof("Loading schedule from %s", path)

	rows, err := ReadScheduleFile(path)
	if err != nil {
		return err
	}

	inserted, err := dl.schedule.LoadInitial(ctx, rows)
	if err != nil {
		return err
	}

	dl.logger.Infof("Schedule seed complete: %d of %d rows inserted", inserted, len(rows))
	return nil
}
