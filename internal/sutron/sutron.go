package sutron

import (
	"bufio"
	"fmt"
	"os"
	"time"
)

// datetimeLayout covers the first 19 characters of a record line.
const datetimeLayout = "01/02/2006,15:04:05"

// header is the first line of every Sutron log file.
const header = "Station Name"

// Log is one Sutron log file, usually named ssp.txt.
type Log struct {
	stationName string
	records     []Record
}

// Record is a single log entry: a timestamp and whatever the logger wrote.
type Record struct {
	// Datetime is when the record was laid down.
	Datetime time.Time

	// Data is the record body. The logger only ever writes text.
	Data string
}

// ReadFile reads and parses the log file at path.
func ReadFile(path string) (*Log, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("sutron: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return nil, fmt.Errorf("sutron: %s: log is too short", path)
	}
	if got := scanner.Text(); got != header {
		return nil, fmt.Errorf("sutron: %s: bad log header %q", path, got)
	}
	if !scanner.Scan() {
		return nil, fmt.Errorf("sutron: %s: log is too short", path)
	}
	log := &Log{stationName: scanner.Text()}

	for scanner.Scan() {
		record, err := ParseRecord(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("sutron: %s: %w", path, err)
		}
		log.records = append(log.records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("sutron: %s: %w", path, err)
	}
	return log, nil
}

// StationName returns the station name from the log header.
func (l *Log) StationName() string { return l.stationName }

// Records returns the log's records in file order.
func (l *Log) Records() []Record { return l.records }

// ParseRecord parses one record line. The line starts with a fixed-width
// datetime, then a comma, then the data, which may be empty.
func ParseRecord(line string) (Record, error) {
	if len(line) < 20 {
		return Record{}, fmt.Errorf("record is too short: %d characters", len(line))
	}
	if line[19] != ',' {
		return Record{}, fmt.Errorf("record is missing its comma: %q", line[19])
	}
	datetime, err := time.Parse(datetimeLayout, line[:19])
	if err != nil {
		return Record{}, fmt.Errorf("record datetime: %w", err)
	}
	return Record{Datetime: datetime.UTC(), Data: line[20:]}, nil
}
