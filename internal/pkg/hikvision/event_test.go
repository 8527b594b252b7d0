package hikvision

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleAlert = `<?xml version="1.0" encoding="UTF-8"?>
<EventNotificationAlert version="2.0" xmlns="http://www.hikvision.com/ver20/XMLSchema">
	<ipAddress>192.168.1.64</ipAddress>
	<macAddress>a4:14:37:00:00:01</macAddress>
	<dateTime>2025-03-10T08:15:30+05:00</dateTime>
	<eventType>AccessControllerEvent</eventType>
	<eventDescription>Entry Card Authenticated</eventDescription>
	<AccessControllerEvent>
		<employeeNoString>1042</employeeNoString>
		<cardNo>0001734512</cardNo>
		<serialNo>287455</serialNo>
		<cardReaderNo>1</cardReaderNo>
		<doorNo>1</doorNo>
	</AccessControllerEvent>
</EventNotificationAlert>`

func TestParse(t *testing.T) {
	n, err := Parse([]byte(sampleAlert))
	require.NoError(t, err)

	assert.Equal(t, "192.168.1.64", n.IPAddress)
	assert.Equal(t, "AccessControllerEvent", n.EventType)
	assert.Equal(t, "1042", n.EmployeeNo)
	assert.Equal(t, "287455", n.SerialNo)
	assert.Equal(t, 1, n.CardReaderNo)
	assert.Equal(t, 1, n.DoorNo)
	assert.True(t, n.IsAccessEvent())
}

func TestParseRejectsGarbage(t *testing.T) {
	_, err := Parse([]byte("not xml at all"))
	assert.Error(t, err)
}

func TestSubjectIDFallsBackToCard(t *testing.T) {
	n := Notification{CardNo: "0001734512"}
	assert.Equal(t, "0001734512", n.SubjectID())

	n.EmployeeNo = "1042"
	assert.Equal(t, "1042", n.SubjectID())
}

func TestRawID(t *testing.T) {
	n := Notification{SerialNo: "287455", DateTime: "2025-03-10T08:15:30+05:00", EmployeeNo: "1042"}
	assert.Equal(t, "287455", n.RawID())

	n.SerialNo = ""
	assert.Equal(t, "2025-03-10T08:15:30+05:00_1042", n.RawID())

	assert.Empty(t, Notification{}.RawID())
}

func TestDirectionIn(t *testing.T) {
	tests := []struct {
		name string
		n    Notification
		in   bool
	}{
		{"description says exit", Notification{EventDescription: "Exit Card Authenticated", CardReaderNo: 1, DoorNo: 1}, false},
		{"description says entry", Notification{EventDescription: "Entry Card Authenticated", CardReaderNo: 2, DoorNo: 2}, true},
		{"reader 2 means exit", Notification{CardReaderNo: 2, DoorNo: 1}, false},
		{"even door means exit", Notification{CardReaderNo: 1, DoorNo: 2}, false},
		{"reader 1 odd door means entry", Notification{CardReaderNo: 1, DoorNo: 1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.in, tt.n.DirectionIn())
		})
	}
}

func TestEventTime(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)

	n := Notification{DateTime: "2025-03-10T08:15:30+05:00"}
	got := n.EventTime(loc)
	assert.Equal(t, time.Date(2025, 3, 10, 3, 15, 30, 0, time.UTC), got.UTC())

	// No offset: the device clock is assumed to be facility-local.
	n = Notification{DateTime: "2025-03-10T08:15:30"}
	got = n.EventTime(loc)
	assert.Equal(t, time.Date(2025, 3, 10, 3, 15, 30, 0, time.UTC), got.UTC())

	// Unparseable falls back to roughly now.
	n = Notification{DateTime: "garbage"}
	assert.WithinDuration(t, time.Now(), n.EventTime(loc), 5*time.Second)
}
