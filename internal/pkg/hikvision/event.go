// Package hikvision parses EventNotificationAlert pushes from Hikvision
// turnstiles (HTTP Listening mode). The turnstiles push to us; nothing here
// ever writes back to a device.
package hikvision

import (
	"encoding/xml"
	"strconv"
	"strings"
	"time"
)

// Notification is the subset of EventNotificationAlert the journal needs.
type Notification struct {
	IPAddress        string
	MACAddress       string
	DateTime         string
	EventType        string
	EventDescription string
	EmployeeNo       string
	CardNo           string
	SerialNo         string
	CardReaderNo     int
	DoorNo           int
}

type alertXML struct {
	XMLName          xml.Name `xml:"EventNotificationAlert"`
	IPAddress        string   `xml:"ipAddress"`
	MACAddress       string   `xml:"macAddress"`
	DateTime         string   `xml:"dateTime"`
	EventType        string   `xml:"eventType"`
	EventDescription string   `xml:"eventDescription"`
	ACE              struct {
		EmployeeNoString string `xml:"employeeNoString"`
		CardNo           string `xml:"cardNo"`
		SerialNo         string `xml:"serialNo"`
		CardReaderNo     string `xml:"cardReaderNo"`
		DoorNo           string `xml:"doorNo"`
	} `xml:"AccessControllerEvent"`
}

// Parse decodes an EventNotificationAlert XML body. Both the hikvision.com
// and std-cgi.com namespaces decode with the same element names.
func Parse(body []byte) (Notification, error) {
	var raw alertXML
	if err := xml.Unmarshal(body, &raw); err != nil {
		return Notification{}, err
	}

	n := Notification{
		IPAddress:        strings.TrimSpace(raw.IPAddress),
		MACAddress:       strings.TrimSpace(raw.MACAddress),
		DateTime:         strings.TrimSpace(raw.DateTime),
		EventType:        strings.TrimSpace(raw.EventType),
		EventDescription: strings.TrimSpace(raw.EventDescription),
		EmployeeNo:       strings.TrimSpace(raw.ACE.EmployeeNoString),
		CardNo:           strings.TrimSpace(raw.ACE.CardNo),
		SerialNo:         strings.TrimSpace(raw.ACE.SerialNo),
	}
	n.CardReaderNo, _ = strconv.Atoi(strings.TrimSpace(raw.ACE.CardReaderNo))
	if v, err := strconv.Atoi(strings.TrimSpace(raw.ACE.DoorNo)); err == nil {
		n.DoorNo = v
	} else {
		n.DoorNo = 1
	}
	return n, nil
}

// IsAccessEvent reports whether the notification carries turnstile access
// data. Heartbeats and video events are ignored.
func (n Notification) IsAccessEvent() bool {
	return n.EventType == "" || n.EventType == "AccessControllerEvent"
}

// SubjectID returns the employee identifier the turnstile reported.
func (n Notification) SubjectID() string {
	if n.EmployeeNo != "" {
		return n.EmployeeNo
	}
	return n.CardNo
}

// RawID builds the deduplication key: device serial when present, otherwise
// timestamp plus subject.
func (n Notification) RawID() string {
	if n.SerialNo != "" {
		return n.SerialNo
	}
	if n.DateTime == "" && n.SubjectID() == "" {
		return ""
	}
	return n.DateTime + "_" + n.SubjectID()
}

// DirectionIn decides entry vs exit: the event description wins when it names
// a direction, otherwise reader 2 or an even door number means exit.
func (n Notification) DirectionIn() bool {
	desc := strings.ToLower(n.EventDescription)
	if strings.Contains(desc, "exit") || strings.Contains(desc, "out") {
		return false
	}
	if strings.Contains(desc, "entry") || strings.Contains(desc, "in") {
		return true
	}
	if n.CardReaderNo == 2 || n.DoorNo%2 == 0 {
		return false
	}
	return true
}

// EventTime parses the device timestamp, assuming the facility zone when the
// device reports no offset, and falling back to now.
func (n Notification) EventTime(loc *time.Location) time.Time {
	s := n.DateTime
	if s == "" {
		return time.Now().In(loc)
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", s, loc); err == nil {
		return t
	}
	return time.Now().In(loc)
}
