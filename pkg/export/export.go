// Package export writes solved shift schedules to CSV or JSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/loadshift/core/shift"
)

// WriteJSON writes the shift schedule to w in JSON format.
func WriteJSON(w io.Writer, records []shift.Record) error {
	enc := json.NewEncoder(w)
	return enc.Encode(records)
}

// WriteCSV writes the shift schedule to w in CSV format.
func WriteCSV(w io.Writer, records []shift.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"zone", "step", "cycle", "shift_up_mw", "shift_down_mw", "net_shift_mw", "recovery_mw", "active"}); err != nil {
		return err
	}
	for _, r := range records {
		rec := []string{
			r.Zone,
			strconv.Itoa(r.Step),
			strconv.Itoa(r.Cycle),
			strconv.FormatFloat(r.ShiftUpMW, 'f', -1, 64),
			strconv.FormatFloat(r.ShiftDownMW, 'f', -1, 64),
			strconv.FormatFloat(r.NetShiftMW, 'f', -1, 64),
			strconv.FormatFloat(r.RecoveryMW, 'f', -1, 64),
			strconv.FormatBool(r.Active),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
