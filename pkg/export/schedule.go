package export

import (
	"strconv"
	"time"
)

// Schedule table column names.
const (
	ColumnIndex = "#"
	ColumnDate  = "Date"
	ColumnDay   = "Day"
	ColumnStart = "Start"
	ColumnEnd   = "End"
)

// ScheduleDataset tabulates occurrences of an activity for CSV and PDF export.
func ScheduleDataset(occurrences []time.Time, minutes int) Dataset {
	data := Dataset{
		Headers: []string{ColumnIndex, ColumnDate, ColumnDay, ColumnStart, ColumnEnd},
		Rows:    make([]map[string]string, 0, len(occurrences)),
	}
	for i, start := range occurrences {
		data.Rows = append(data.Rows, map[string]string{
			ColumnIndex: strconv.Itoa(i + 1),
			ColumnDate:  start.Format("2006-01-02"),
			ColumnDay:   start.Weekday().String(),
			ColumnStart: start.Format("15:04"),
			ColumnEnd:   EventEnd(start, minutes).Format("15:04"),
		})
	}
	return data
}
