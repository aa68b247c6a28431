package heartbeat

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gadomski/atlas/internal/sbd"
	"github.com/gadomski/atlas/internal/units"
)

// v1NumFields is the fixed field count of a format-1 report.
const v1NumFields = 49

// v1Prefix starts every format-1 message. The 2015 firmware had no real
// header, so this is all the framing format 1 gets.
const v1Prefix = "0,"

// v1DatetimeLayout parses the format-1 scan start, after the month has been
// corrected (the station encodes it zero-based in this format only).
const v1DatetimeLayout = "01/02/06 15:04:05"

// v2DatetimeLayout parses the row timestamps in a format-2 body.
const v2DatetimeLayout = "01/02/06 15:04:05"

var (
	// v2Header matches the first message of a format-2 record: either a
	// counted multi-message header or the bare single-message marker.
	v2Header = regexp.MustCompile(`^(1,(?P<id>\d+),\d+,(?P<bytes>\d+):)|(0)ATHB02\d\d\d\r`)

	// v2SecondaryHeader matches every continuation message of a counted
	// format-2 record.
	v2SecondaryHeader = regexp.MustCompile(`^1,(?P<id>\d+),\d+:`)
)

// Builder accumulates the messages of one not-yet-finalized heartbeat.
//
// A builder is owned by exactly one caller at a time. Push either accepts a
// continuation message or returns ErrRejectedMessage leaving the builder
// untouched; Full reports whether the accumulated messages could form a
// complete record; Heartbeat finalizes. Finalization failures do not destroy
// the constituent messages, which remain available through Messages.
type Builder interface {
	// Push offers a continuation message. ErrRejectedMessage means the
	// message is not part of this record and must be kept by the caller.
	Push(m sbd.Message) error

	// Full reports whether the builder could be finalized. A full format-1
	// builder may still accept one more push: its last field can be
	// truncated mid-number by a message split, and the field count alone
	// cannot tell. Format 2 counts bytes and has no such ambiguity.
	Full() bool

	// Heartbeat finalizes the accumulated messages into a record.
	Heartbeat() (*Heartbeat, error)

	// Messages returns the constituent messages in arrival order.
	Messages() []sbd.Message
}

// NewBuilder classifies a message as the start of a new record. Format 2 is
// tried first, format 1 as the fallback; ErrRejectedMessage means the
// message starts neither and the caller keeps it unchanged.
func NewBuilder(m sbd.Message) (Builder, error) {
	b2, err := newBuilderV2(m)
	if err == nil {
		return b2, nil
	}
	if !errors.Is(err, ErrRejectedMessage) {
		return nil, err
	}
	return newBuilderV1(m)
}

// builderV1 reassembles the comma-counted 2015-era format.
type builderV1 struct {
	messages []sbd.Message
}

func newBuilderV1(m sbd.Message) (*builderV1, error) {
	text, err := m.PayloadText()
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(text, v1Prefix) {
		return nil, ErrRejectedMessage
	}
	return &builderV1{messages: []sbd.Message{m}}, nil
}

func (b *builderV1) Messages() []sbd.Message { return b.messages }

func (b *builderV1) payload() string {
	var sb strings.Builder
	for _, m := range b.messages {
		// Payloads were validated when the message was accepted.
		text, _ := m.PayloadText()
		sb.WriteString(text)
	}
	return sb.String()
}

func (b *builderV1) fieldCount() int {
	return strings.Count(b.payload(), ",") + 1
}

func (b *builderV1) Push(m sbd.Message) error {
	if _, err := m.PayloadText(); err != nil {
		return err
	}
	b.messages = append(b.messages, m)
	if b.fieldCount() > v1NumFields {
		b.messages = b.messages[:len(b.messages)-1]
		return ErrRejectedMessage
	}
	return nil
}

func (b *builderV1) Full() bool {
	return b.fieldCount() == v1NumFields
}

func (b *builderV1) Heartbeat() (*Heartbeat, error) {
	fields := strings.Split(b.payload(), ",")
	if len(fields) != v1NumFields {
		return nil, parseErr("record", "",
			fmt.Errorf("got %d fields, want %d", len(fields), v1NumFields))
	}

	scanStart, err := parseV1ScanStart(fields[11])
	if err != nil {
		return nil, parseErr("field 11", fields[11], err)
	}

	externalTemperature, err := parseV1Float(fields, 1)
	if err != nil {
		return nil, err
	}
	pressure, err := parseV1Float(fields, 2)
	if err != nil {
		return nil, err
	}
	humidity, err := parseV1Float(fields, 3)
	if err != nil {
		return nil, err
	}
	mountTemperature, err := parseV1Float(fields, 26)
	if err != nil {
		return nil, err
	}
	soc1, err := parseV1Float(fields, 37)
	if err != nil {
		return nil, err
	}
	soc2, err := parseV1Float(fields, 40)
	if err != nil {
		return nil, err
	}

	return &Heartbeat{
		StartTime:           b.messages[0].SessionTime(),
		ExternalTemperature: units.Celsius(externalTemperature),
		MountTemperature:    units.Celsius(mountTemperature),
		Pressure:            units.Millibar(pressure),
		Humidity:            units.Percentage(humidity),
		SOC1:                units.OrionPercentage(soc1),
		SOC2:                units.OrionPercentage(soc2),
		LastScan:            Scan{Start: scanStart},
	}, nil
}

// parseV1ScanStart handles the zero-based month: the leading two digits are
// incremented before date parsing.
func parseV1ScanStart(field string) (time.Time, error) {
	if len(field) < 2 {
		return time.Time{}, fmt.Errorf("datetime too short")
	}
	month, err := strconv.ParseUint(field[:2], 10, 8)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(v1DatetimeLayout, fmt.Sprintf("%02d%s", month+1, field[2:]))
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func parseV1Float(fields []string, i int) (float64, error) {
	f, err := strconv.ParseFloat(fields[i], 64)
	if err != nil {
		return 0, parseErr(fmt.Sprintf("field %d", i), fields[i], err)
	}
	return f, nil
}

// v2HeaderInfo is the counted header of a multi-message format-2 record. It
// lives only as long as its builder.
type v2HeaderInfo struct {
	id    uint64
	bytes int
}

// builderV2 reassembles the byte-counted 2016-era format.
type builderV2 struct {
	// header is nil for single-message records, which carry the bare marker
	// and no length. Such a builder is full from the start.
	header   *v2HeaderInfo
	messages []sbd.Message
}

func newBuilderV2(m sbd.Message) (*builderV2, error) {
	text, err := m.PayloadText()
	if err != nil {
		return nil, err
	}
	match := v2Header.FindStringSubmatch(text)
	if match == nil {
		return nil, ErrRejectedMessage
	}
	var header *v2HeaderInfo
	id := match[v2Header.SubexpIndex("id")]
	bytes := match[v2Header.SubexpIndex("bytes")]
	if id != "" && bytes != "" {
		// The capture groups only match digits.
		parsedID, _ := strconv.ParseUint(id, 10, 64)
		parsedBytes, _ := strconv.Atoi(bytes)
		header = &v2HeaderInfo{id: parsedID, bytes: parsedBytes}
	}
	return &builderV2{header: header, messages: []sbd.Message{m}}, nil
}

func (b *builderV2) Messages() []sbd.Message { return b.messages }

// body concatenates the payloads with their headers stripped.
func (b *builderV2) body() string {
	var sb strings.Builder
	for _, m := range b.messages {
		text, _ := m.PayloadText()
		if b.header != nil {
			if idx := strings.IndexByte(text, ':'); idx >= 0 {
				text = text[idx+1:]
			}
		} else {
			// Single-message records carry just a leading zero.
			text = text[1:]
		}
		sb.WriteString(text)
	}
	return sb.String()
}

func (b *builderV2) Push(m sbd.Message) error {
	if b.Full() {
		return ErrRejectedMessage
	}
	text, err := m.PayloadText()
	if err != nil {
		return err
	}
	match := v2SecondaryHeader.FindStringSubmatch(text)
	if match == nil {
		return ErrRejectedMessage
	}
	// Non-full builders always have a header: only counted records can be
	// incomplete.
	id, _ := strconv.ParseUint(match[v2SecondaryHeader.SubexpIndex("id")], 10, 64)
	if id != b.header.id {
		return ErrRejectedMessage
	}
	b.messages = append(b.messages, m)
	return nil
}

func (b *builderV2) Full() bool {
	return b.header == nil || len(b.body()) == b.header.bytes
}

// v2Rows walks the newline-delimited body rows in their fixed sequence.
type v2Rows struct {
	lines []string
	next  int
}

func (r *v2Rows) row(name string) ([]string, error) {
	if r.next >= len(r.lines) {
		return nil, parseErr(name, "", fmt.Errorf("record body ended early"))
	}
	line := strings.TrimSuffix(r.lines[r.next], "\r")
	r.next++
	return strings.Split(line, ","), nil
}

// field returns column i of row, which must exist.
func field(row []string, i int, name string) (string, error) {
	if i >= len(row) {
		return "", parseErr(name, strings.Join(row, ","),
			fmt.Errorf("row has %d columns, need at least %d", len(row), i+1))
	}
	return row[i], nil
}

func (b *builderV2) Heartbeat() (*Heartbeat, error) {
	// The first body line is the report tag, not data.
	rows := &v2Rows{lines: strings.Split(b.body(), "\n"), next: 1}

	row, err := rows.row("scanner-on row")
	if err != nil {
		return nil, err
	}
	scannerOn, err := parseScannerOn(row)
	if err != nil {
		return nil, err
	}

	row, err = rows.row("weather row")
	if err != nil {
		return nil, err
	}
	externalTemperature, err := parseV2Float(row, 0, "weather row")
	if err != nil {
		return nil, err
	}
	pressure, err := parseV2Float(row, 1, "weather row")
	if err != nil {
		return nil, err
	}
	humidity, err := parseV2Float(row, 2, "weather row")
	if err != nil {
		return nil, err
	}

	row, err = rows.row("scan-start row")
	if err != nil {
		return nil, err
	}
	scanStart, err := parseV2Datetime(row, 0, "scan-start row")
	if err != nil {
		return nil, err
	}

	row, err = rows.row("scan-detail row")
	if err != nil {
		return nil, err
	}
	scanEnd, err := parseV2Datetime(row, 0, "scan-detail row")
	if err != nil {
		return nil, err
	}
	detail, err := parseScanDetail(row)
	if err != nil {
		return nil, err
	}

	row, err = rows.row("scan-skip row")
	if err != nil {
		return nil, err
	}
	scanSkip, err := parseSkippedScan(row)
	if err != nil {
		return nil, err
	}

	efoy1, err := parseEfoyRow(rows, "efoy-1 row")
	if err != nil {
		return nil, err
	}
	efoy2, err := parseEfoyRow(rows, "efoy-2 row")
	if err != nil {
		return nil, err
	}

	row, err = rows.row("battery row")
	if err != nil {
		return nil, err
	}
	mountTemperature, err := parseV2Float(row, 0, "battery row")
	if err != nil {
		return nil, err
	}
	soc1, err := parseV2Float(row, 1, "battery row")
	if err != nil {
		return nil, err
	}
	soc2, err := parseV2Float(row, 2, "battery row")
	if err != nil {
		return nil, err
	}

	return &Heartbeat{
		StartTime:           b.messages[0].SessionTime(),
		ExternalTemperature: units.Celsius(externalTemperature),
		MountTemperature:    units.Celsius(mountTemperature),
		Pressure:            units.Millibar(pressure),
		Humidity:            units.Percentage(humidity),
		SOC1:                units.OrionPercentage(soc1),
		SOC2:                units.OrionPercentage(soc2),
		LastScan:            Scan{Start: scanStart, End: &scanEnd, Detail: detail},
		LastScannerOn:       scannerOn,
		LastScanSkip:        scanSkip,
		LastEfoy1Action:     efoy1,
		LastEfoy2Action:     efoy2,
	}, nil
}

func parseScannerOn(row []string) (*ScannerOn, error) {
	const name = "scanner-on row"
	datetime, err := parseV2Datetime(row, 0, name)
	if err != nil {
		return nil, err
	}
	voltage, err := parseV2Float(row, 1, name)
	if err != nil {
		return nil, err
	}
	temperature, err := parseV2Float(row, 2, name)
	if err != nil {
		return nil, err
	}
	memoryExternal, err := parseV2Float(row, 3, name)
	if err != nil {
		return nil, err
	}
	memoryInternal, err := parseV2Float(row, 4, name)
	if err != nil {
		return nil, err
	}
	return &ScannerOn{
		Datetime:           datetime,
		ScannerVoltage:     units.Volt(voltage),
		ScannerTemperature: units.Celsius(temperature),
		MemoryExternal:     units.Kilobyte(memoryExternal),
		MemoryInternal:     units.Kilobyte(memoryInternal),
	}, nil
}

func parseScanDetail(row []string) (*ScanDetail, error) {
	const name = "scan-detail row"
	numPointsText, err := field(row, 1, name)
	if err != nil {
		return nil, err
	}
	numPoints, err := strconv.ParseUint(numPointsText, 10, 64)
	if err != nil {
		return nil, parseErr(name, numPointsText, err)
	}
	minimumRange, err := parseV2Float(row, 2, name)
	if err != nil {
		return nil, err
	}
	maximumRange, err := parseV2Float(row, 3, name)
	if err != nil {
		return nil, err
	}
	fileSize, err := parseV2Float(row, 4, name)
	if err != nil {
		return nil, err
	}
	minimumAmplitude, err := parseV2Int(row, 5, name)
	if err != nil {
		return nil, err
	}
	maximumAmplitude, err := parseV2Int(row, 6, name)
	if err != nil {
		return nil, err
	}
	roll, err := parseV2Float(row, 7, name)
	if err != nil {
		return nil, err
	}
	pitch, err := parseV2Float(row, 8, name)
	if err != nil {
		return nil, err
	}
	latitude, err := parseV2Float(row, 9, name)
	if err != nil {
		return nil, err
	}
	longitude, err := parseV2Float(row, 10, name)
	if err != nil {
		return nil, err
	}
	return &ScanDetail{
		NumPoints:        numPoints,
		MinimumRange:     units.Meter(minimumRange),
		MaximumRange:     units.Meter(maximumRange),
		FileSize:         units.Kilobyte(fileSize),
		MinimumAmplitude: minimumAmplitude,
		MaximumAmplitude: maximumAmplitude,
		Roll:             units.Degree(roll),
		Pitch:            units.Degree(pitch),
		Latitude:         units.Degree(latitude),
		Longitude:        units.Degree(longitude),
	}, nil
}

func parseSkippedScan(row []string) (*SkippedScan, error) {
	const name = "scan-skip row"
	datetime, err := parseV2Datetime(row, 0, name)
	if err != nil {
		return nil, err
	}
	code, err := field(row, 1, name)
	if err != nil {
		return nil, err
	}
	description, err := field(row, 2, name)
	if err != nil {
		return nil, err
	}
	reason, err := parseSkipReason(code, description)
	if err != nil {
		return nil, parseErr(name, code, err)
	}
	return &SkippedScan{Datetime: datetime, Reason: reason, Description: description}, nil
}

// parseEfoyRow consumes an action row plus the following line, which repeats
// information we do not need and is discarded.
func parseEfoyRow(rows *v2Rows, name string) (*EfoyAction, error) {
	row, err := rows.row(name)
	if err != nil {
		return nil, err
	}
	datetime, err := field(row, 0, name)
	if err != nil {
		return nil, err
	}
	word, err := field(row, 1, name)
	if err != nil {
		return nil, err
	}
	action, err := parseEfoyAction(datetime, word)
	if err != nil {
		return nil, parseErr(name, strings.Join(row, ","), err)
	}
	if _, err := rows.row(name); err != nil {
		return nil, err
	}
	return action, nil
}

func parseV2Float(row []string, i int, name string) (float64, error) {
	text, err := field(row, i, name)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, parseErr(name, text, err)
	}
	return f, nil
}

func parseV2Int(row []string, i int, name string) (int, error) {
	text, err := field(row, i, name)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return 0, parseErr(name, text, err)
	}
	return n, nil
}

func parseV2Datetime(row []string, i int, name string) (time.Time, error) {
	text, err := field(row, i, name)
	if err != nil {
		return time.Time{}, err
	}
	t, err := time.Parse(v2DatetimeLayout, text)
	if err != nil {
		return time.Time{}, parseErr(name, text, err)
	}
	return t.UTC(), nil
}
