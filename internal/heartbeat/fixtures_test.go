package heartbeat

import (
	"fmt"
	"strings"
	"time"

	"github.com/gadomski/atlas/internal/sbd"
)

const testIMEI = "300234063909200"

// testBase is a fixed session time so all fixtures are deterministic.
var testBase = time.Date(2016, 8, 16, 18, 1, 58, 0, time.UTC)

// message builds a test message n seconds after testBase, so fixture order
// follows construction order.
func message(n int, payload string) sbd.Message {
	return sbd.NewMessage(testIMEI, testBase.Add(time.Duration(n)*time.Second), []byte(payload))
}

// v1Payload is a complete 49-field format-1 report. Field 11 carries the
// zero-based month (06 = July).
func v1Payload() string {
	fields := make([]string, 49)
	for i := range fields {
		fields[i] = "1"
	}
	fields[0] = "0"
	fields[1] = "11.095"
	fields[2] = "962.690"
	fields[3] = "36.487"
	fields[11] = "06/31/15 18:02:18"
	fields[26] = "16.1175"
	fields[37] = "4.68509"
	fields[40] = "4.69742"
	return strings.Join(fields, ",")
}

// oneV1Message is a format-1 report that fits in a single transmission.
func oneV1Message() sbd.Message {
	return message(0, v1Payload())
}

// twoV1Messages splits the same report across two transmissions, cutting in
// the middle of a field.
func twoV1Messages() []sbd.Message {
	payload := v1Payload()
	return []sbd.Message{
		message(0, payload[:20]),
		message(1, payload[20:]),
	}
}

// v2Body is a complete format-2 report body: the tag line, then the fixed
// row sequence.
func v2Body() string {
	return strings.Join([]string{
		"ATHB02123",
		"08/16/16 12:01:47,23.4,11.8,740991025.152,995349954.56",
		"9.915,942.240,40.932",
		"08/16/16 12:01:58",
		"08/16/16 12:40:24,20035104,-40.277,5164.539,282005.084,0,42,-0.488,-0.108,66.329918,-38.174053",
		"08/11/16 18:25:35,1,could not connect",
		"08/11/2016 19:00:00,start",
		"cartridge,0.00",
		"08/12/2016 11:00:00,start",
		"cartridge,0.00",
		"12.4,4.097,4.132",
	}, "\r\n")
}

// oneV2Message carries the whole report with the bare single-message marker
// and no counted header.
func oneV2Message() sbd.Message {
	return message(0, "0"+v2Body())
}

// twoV2Messages splits the report body across two counted transmissions
// sharing group id 123.
func twoV2Messages() []sbd.Message {
	body := v2Body()
	split := len(body) / 2
	return []sbd.Message{
		message(0, fmt.Sprintf("1,123,0,%d:%s", len(body), body[:split])),
		message(1, "1,123,1:"+body[split:]),
	}
}
