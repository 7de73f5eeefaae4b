package responseformat

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chrissnell/fluxdecay/internal/decay"
)

// Format is an event table encoding
type Format string

const (
	FormatCSV     Format = "csv"
	FormatJSON    Format = "json"
	FormatMsgPack Format = "msgpack"
)

// ParseFormat validates a format name from configuration
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatMsgPack:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q", s)
	}
}

// EventTableHeader holds the CSV column names of the event table
var EventTableHeader = []string{
	"Event Number",
	"Start Year",
	"End Year",
	"Start Fractional Day",
	"End Fractional Day",
	"Start Hour",
	"End Hour",
	"Elements Decaying",
	"Non-Decaying Elements",
}

// elementSeparator joins element names inside a single CSV cell
const elementSeparator = ";"

// WriteEvents writes the event table to w in the given format
func WriteEvents(w io.Writer, format Format, events []decay.DecayEvent) error {
	if events == nil {
		events = []decay.DecayEvent{}
	}

	switch format {
	case FormatCSV:
		return writeEventsCSV(w, events)
	case FormatJSON:
		return encodeJSON(w, events)
	case FormatMsgPack:
		return encodeMsgPack(w, events)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

func writeEventsCSV(w io.Writer, events []decay.DecayEvent) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(EventTableHeader); err != nil {
		return err
	}

	for _, e := range events {
		record := []string{
			strconv.Itoa(e.Number),
			strconv.Itoa(e.StartYear),
			strconv.Itoa(e.EndYear),
			formatFloat(e.StartFractionalDay),
			formatFloat(e.EndFractionalDay),
			formatFloat(e.StartHour),
			formatFloat(e.EndHour),
			strconv.Itoa(e.ElementsDecaying),
			strings.Join(e.NonDecayingElements, elementSeparator),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
